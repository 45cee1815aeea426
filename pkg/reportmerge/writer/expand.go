package writer

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/xuri/excelize/v2"

	"github.com/piramie/reportmerge/pkg/reportmerge/parser"
)

// ExpandRanges grows the sheet's structured tables, or its AutoFilter
// when no table exists, to cover rows headerRow..lastRow so downstream
// sorting and filtering still include appended data. Only tables anchored
// on the header row are touched; their width is preserved.
func ExpandRanges(f *excelize.File, sheet string, headerRow, lastCol, lastRow int) error {
	tables, err := f.GetTables(sheet)
	if err != nil {
		return fmt.Errorf("listing tables on %q: %w", sheet, err)
	}

	expanded := false
	for _, tbl := range tables {
		startCol, startRow, endCol, _, err := parseRange(tbl.Range)
		if err != nil {
			log.Warn().Str("table", tbl.Name).Str("range", tbl.Range).Msg("skipping table with unparseable range")
			continue
		}
		if startRow != headerRow {
			continue
		}
		newRange, err := formatRange(startCol, startRow, endCol, lastRow)
		if err != nil {
			return err
		}
		if newRange == tbl.Range {
			expanded = true
			continue
		}
		if err := f.DeleteTable(tbl.Name); err != nil {
			return fmt.Errorf("expanding table %q: %w", tbl.Name, err)
		}
		tbl.Range = newRange
		if err := f.AddTable(sheet, &tbl); err != nil {
			return fmt.Errorf("re-adding table %q: %w", tbl.Name, err)
		}
		expanded = true
	}

	if expanded {
		return nil
	}

	filterRange, err := formatRange(1, headerRow, lastCol, lastRow)
	if err != nil {
		return err
	}
	if err := f.AutoFilter(sheet, filterRange, nil); err != nil {
		return fmt.Errorf("setting autofilter on %q: %w", sheet, err)
	}
	return nil
}

// NormalizeDateColumn rewrites every cell of the given column (1-based)
// between firstRow and lastRow into a true datetime with a uniform number
// format. Cells that do not parse are left as-is.
func NormalizeDateColumn(f *excelize.File, sheet string, col, firstRow, lastRow int) error {
	if col < 1 {
		return nil
	}
	dateStyle, err := newDateStyle(f)
	if err != nil {
		return err
	}
	for row := firstRow; row <= lastRow; row++ {
		cell, err := excelize.CoordinatesToCellName(col, row)
		if err != nil {
			return err
		}
		raw, err := f.GetCellValue(sheet, cell)
		if err != nil {
			return err
		}
		t, ok := parser.ParseDate(raw)
		if !ok {
			continue
		}
		if err := f.SetCellValue(sheet, cell, t); err != nil {
			return err
		}
		if err := f.SetCellStyle(sheet, cell, cell, dateStyle); err != nil {
			return err
		}
	}
	return nil
}

func parseRange(ref string) (startCol, startRow, endCol, endRow int, err error) {
	start, end, ok := strings.Cut(ref, ":")
	if !ok {
		return 0, 0, 0, 0, fmt.Errorf("invalid range %q", ref)
	}
	startCol, startRow, err = excelize.CellNameToCoordinates(start)
	if err != nil {
		return 0, 0, 0, 0, err
	}
	endCol, endRow, err = excelize.CellNameToCoordinates(end)
	if err != nil {
		return 0, 0, 0, 0, err
	}
	return startCol, startRow, endCol, endRow, nil
}

func formatRange(startCol, startRow, endCol, endRow int) (string, error) {
	start, err := excelize.CoordinatesToCellName(startCol, startRow)
	if err != nil {
		return "", err
	}
	end, err := excelize.CoordinatesToCellName(endCol, endRow)
	if err != nil {
		return "", err
	}
	return start + ":" + end, nil
}
