package dedup

import (
	"github.com/piramie/reportmerge/pkg/reportmerge/models"
)

// KeySet holds the identity keys already present in the master.
type KeySet map[Key]struct{}

// BuildKeySet derives the key of every row in the table.
func BuildKeySet(table *models.Table, fields []models.Field) KeySet {
	set := make(KeySet, len(table.Rows))
	for _, row := range table.Rows {
		set[BuildKey(row, fields)] = struct{}{}
	}
	return set
}

// Has reports whether k is in the set.
func (s KeySet) Has(k Key) bool {
	_, ok := s[k]
	return ok
}

// Merge filters candidate rows whose key already exists, preserving
// candidate order. Duplicates within the candidate itself collapse to the
// first occurrence: the set grows as the scan proceeds. The existing set
// is not modified. Returns the surviving rows and the dropped count.
func Merge(existing KeySet, candidate *models.Table, fields []models.Field) ([]models.Row, int) {
	seen := make(KeySet, len(existing)+len(candidate.Rows))
	for k := range existing {
		seen[k] = struct{}{}
	}

	var kept []models.Row
	dropped := 0
	for _, row := range candidate.Rows {
		k := BuildKey(row, fields)
		if seen.Has(k) {
			dropped++
			continue
		}
		seen[k] = struct{}{}
		kept = append(kept, row)
	}
	return kept, dropped
}
