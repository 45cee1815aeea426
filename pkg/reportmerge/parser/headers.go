// Package parser turns raw worksheet rows into canonical tables.
package parser

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/piramie/reportmerge/pkg/reportmerge/models"
)

var spaceRun = regexp.MustCompile(`\s+`)

// NormalizeHeaderText collapses whitespace runs, trims, and lowercases a
// header cell so that spelling variants compare equal.
func NormalizeHeaderText(s string) string {
	return strings.ToLower(strings.TrimSpace(spaceRun.ReplaceAllString(s, " ")))
}

// aliases maps normalized header spellings to canonical fields. The table
// is fixed; Validate checks it exhaustively at init.
var aliases = map[string]models.Field{
	"vendor":        models.FieldVendor,
	"vendor name":   models.FieldVendor,
	"cust name":     models.FieldVendor,
	"customer name": models.FieldVendor,

	"cust type":     models.FieldCustomerType,
	"customer type": models.FieldCustomerType,

	"msisdn":     models.FieldAccount,
	"account":    models.FieldAccount,
	"account no": models.FieldAccount,

	"purchase date": models.FieldDate,
	"txn date":      models.FieldDate,
	"date":          models.FieldDate,

	"prod name":    models.FieldProduct,
	"product name": models.FieldProduct,

	"amount":          models.FieldAmount,
	"amt":             models.FieldAmount,
	"amt ($)":         models.FieldAmount,
	"purchase amount": models.FieldAmount,
	"purchase amt":    models.FieldAmount,

	"package status": models.FieldStatus,
	"stat":           models.FieldStatus,
	"status":         models.FieldStatus,

	"api credit type": models.FieldCreditType,
	"credit type":     models.FieldCreditType,

	"prod code":  models.FieldProductID,
	"product id": models.FieldProductID,

	"crtr_id":     models.FieldContractID,
	"crtr id":     models.FieldContractID,
	"contract id": models.FieldContractID,
}

func init() {
	if err := validateAliases(); err != nil {
		panic(err)
	}
}

// validateAliases checks that every alias targets a schema field and that
// every canonical field has at least one accepted spelling.
func validateAliases() error {
	covered := make(map[models.Field]bool, len(models.Schema))
	for spelling, f := range aliases {
		if !f.Valid() {
			return fmt.Errorf("alias %q targets unknown field %q", spelling, f)
		}
		if spelling != NormalizeHeaderText(spelling) {
			return fmt.Errorf("alias %q is not in normalized form", spelling)
		}
		covered[f] = true
	}
	for _, f := range models.Schema {
		if !covered[f] {
			return fmt.Errorf("field %q has no accepted spellings", f)
		}
	}
	return nil
}

// MissingFieldError reports a required canonical field with no match
// among the input headers.
type MissingFieldError struct {
	Field  models.Field
	Header []string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("required field %q not found among headers %v", e.Field, e.Header)
}

// HeaderMap maps a raw column index (0-based) to its canonical field.
type HeaderMap map[int]models.Field

// Column returns the column index carrying f, or -1.
func (m HeaderMap) Column(f models.Field) int {
	for col, field := range m {
		if field == f {
			return col
		}
	}
	return -1
}

// MapHeader resolves a raw header row against the alias table. Columns
// with no known mapping are dropped and returned for reporting. The first
// column claiming a field wins; later claimants are treated as unmapped.
// Returns a MissingFieldError when a required field has no match.
func MapHeader(header []string) (HeaderMap, []string, error) {
	mapped := make(HeaderMap)
	taken := make(map[models.Field]bool)
	var unmapped []string

	for col, cell := range header {
		if strings.TrimSpace(cell) == "" {
			continue
		}
		f, ok := aliases[NormalizeHeaderText(cell)]
		if !ok || taken[f] {
			unmapped = append(unmapped, cell)
			continue
		}
		mapped[col] = f
		taken[f] = true
	}

	for _, f := range models.RequiredFields {
		if !taken[f] {
			return nil, unmapped, &MissingFieldError{Field: f, Header: header}
		}
	}

	if len(unmapped) > 0 {
		log.Warn().Strs("columns", unmapped).Msg("dropping unrecognized columns")
	}
	return mapped, unmapped, nil
}

// headerScanLimit bounds the auto-location scan; monthly reports put a
// title block above the header but never this deep.
const headerScanLimit = 10

// LocateHeaderRow finds the header row within raw sheet rows. When
// configured is positive it is used as-is (1-based). Otherwise the first
// headerScanLimit rows are scanned and the row matching the most aliases
// wins, provided it covers every required field.
func LocateHeaderRow(rows [][]string, configured int) (int, error) {
	if configured > 0 {
		if configured > len(rows) {
			return 0, fmt.Errorf("header row %d beyond sheet end (%d rows)", configured, len(rows))
		}
		return configured, nil
	}

	best, bestHits := 0, 0
	limit := min(headerScanLimit, len(rows))
	for i := 0; i < limit; i++ {
		hits := 0
		required := make(map[models.Field]bool)
		for _, cell := range rows[i] {
			if f, ok := aliases[NormalizeHeaderText(cell)]; ok {
				hits++
				required[f] = true
			}
		}
		for _, f := range models.RequiredFields {
			if !required[f] {
				hits = 0
				break
			}
		}
		if hits > bestHits {
			best, bestHits = i+1, hits
		}
	}
	if bestHits == 0 {
		return 0, fmt.Errorf("no header row found in first %d rows", limit)
	}
	return best, nil
}
