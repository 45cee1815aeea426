// Package dedup derives row identity keys and filters duplicates.
package dedup

import (
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/piramie/reportmerge/pkg/reportmerge/models"
)

// Key is a row's derived de-duplication identity. Equal keys mean the
// rows are duplicates regardless of other field differences.
type Key string

// keyTimeLayout pins dates to second precision so formatting differences
// do not create false distinctness.
const keyTimeLayout = "2006-01-02 15:04:05"

// keySep separates key components; 0x1F never occurs in cell text.
const keySep = "\x1f"

var innerSpace = regexp.MustCompile(`\s+`)

// normText normalizes a text component: collapse whitespace, trim, uppercase.
func normText(s string) string {
	return strings.ToUpper(strings.TrimSpace(innerSpace.ReplaceAllString(s, " ")))
}

// BuildKey derives the key for a row from the ordered key fields. It is a
// pure function of the row's content: position in the table never matters.
// Missing fields contribute an empty component.
func BuildKey(row models.Row, fields []models.Field) Key {
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		v, ok := row.Get(f)
		if !ok {
			parts = append(parts, "")
			continue
		}
		switch val := v.(type) {
		case time.Time:
			parts = append(parts, val.Truncate(time.Second).Format(keyTimeLayout))
		case decimal.Decimal:
			parts = append(parts, val.Round(2).StringFixed(2))
		case string:
			parts = append(parts, normText(val))
		default:
			parts = append(parts, "")
		}
	}
	return Key(strings.Join(parts, keySep))
}
