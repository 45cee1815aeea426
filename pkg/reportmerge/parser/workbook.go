package parser

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/piramie/reportmerge/pkg/reportmerge/models"
)

// SheetReport carries per-sheet parse diagnostics alongside the table.
type SheetReport struct {
	// HeaderRow is the 1-based row the headers were found on.
	HeaderRow int
	// Header is the resolved column mapping.
	Header HeaderMap
	// LastDataRow is the last 1-based row holding any value under the header.
	LastDataRow int
	// Malformed counts rows skipped as unparseable.
	Malformed int
	// Unmapped lists header cells with no canonical match.
	Unmapped []string
}

// DataRows returns the number of data rows between header and last used row.
func (r SheetReport) DataRows() int {
	if r.LastDataRow <= r.HeaderRow {
		return 0
	}
	return r.LastDataRow - r.HeaderRow
}

// ReadTable reads one sheet of an open workbook into a canonical Table.
// headerRow of 0 triggers auto-location. The returned error is a
// *MissingFieldError when a required column cannot be resolved.
func ReadTable(f *excelize.File, source, sheet string, headerRow int) (*models.Table, SheetReport, error) {
	var report SheetReport

	raw, err := f.GetRows(sheet)
	if err != nil {
		return nil, report, fmt.Errorf("reading sheet %q: %w", sheet, err)
	}

	report.HeaderRow, err = LocateHeaderRow(raw, headerRow)
	if err != nil {
		return nil, report, err
	}

	report.Header, report.Unmapped, err = MapHeader(raw[report.HeaderRow-1])
	if err != nil {
		return nil, report, err
	}

	report.LastDataRow = lastDataRow(raw, report.HeaderRow, headerWidth(raw[report.HeaderRow-1]))

	data := raw[report.HeaderRow:]
	var rows []models.Row
	rows, report.Malformed = ParseRows(data, report.Header, report.HeaderRow+1)

	return &models.Table{Source: source, Sheet: sheet, Rows: rows}, report, nil
}

// FirstSheet returns the name of the first sheet in the workbook.
func FirstSheet(f *excelize.File) (string, error) {
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return "", fmt.Errorf("workbook has no sheets")
	}
	return sheets[0], nil
}

// HasSheet reports whether the workbook contains the named sheet.
func HasSheet(f *excelize.File, name string) bool {
	for _, s := range f.GetSheetList() {
		if s == name {
			return true
		}
	}
	return false
}

// headerWidth is the index (1-based) of the rightmost non-empty header cell.
func headerWidth(header []string) int {
	width := 0
	for i, cell := range header {
		if strings.TrimSpace(cell) != "" {
			width = i + 1
		}
	}
	return width
}

// lastDataRow finds the last 1-based row below headerRow with any value
// in columns 1..width.
func lastDataRow(raw [][]string, headerRow, width int) int {
	last := headerRow
	for i := headerRow; i < len(raw); i++ {
		row := raw[i]
		for c := 0; c < width && c < len(row); c++ {
			if strings.TrimSpace(row[c]) != "" {
				last = i + 1
				break
			}
		}
	}
	return last
}
