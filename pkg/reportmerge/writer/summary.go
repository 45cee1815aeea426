package writer

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/piramie/reportmerge/pkg/reportmerge/models"
)

// SummarySource yields summary tables one at a time.
type SummarySource interface {
	Next() (*models.SummaryTable, bool)
}

// Excel caps sheet names at 31 characters.
const maxSheetName = 31

// WriteSummaries renders each summary table as a sheet of a new workbook
// at path: header row, frozen panes below it, auto-fit column widths.
// The summary workbook is separate output; the master is never touched.
func WriteSummaries(path string, src SummarySource) error {
	f := excelize.NewFile()
	defer f.Close()

	wrote := 0
	used := make(map[string]bool)
	for {
		table, ok := src.Next()
		if !ok {
			break
		}
		name := uniqueSheetName(table.Name, used)
		if err := writeSummarySheet(f, name, table, wrote == 0); err != nil {
			return err
		}
		wrote++
	}
	if wrote == 0 {
		return fmt.Errorf("no summary tables to write")
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("saving summary workbook %s: %w", path, err)
	}
	return nil
}

func writeSummarySheet(f *excelize.File, name string, table *models.SummaryTable, first bool) error {
	if first {
		// reuse the default sheet excelize creates
		if err := f.SetSheetName(f.GetSheetName(0), name); err != nil {
			return err
		}
	} else if _, err := f.NewSheet(name); err != nil {
		return err
	}

	widths := make([]int, len(table.Columns))
	for col, header := range table.Columns {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(name, cell, header); err != nil {
			return err
		}
		widths[col] = len(header)
	}

	for i, row := range table.Rows {
		for col, v := range row {
			cell, err := excelize.CoordinatesToCellName(col+1, i+2)
			if err != nil {
				return err
			}
			if d, ok := v.(decimal.Decimal); ok {
				fl, _ := d.Float64()
				v = fl
			}
			if err := f.SetCellValue(name, cell, v); err != nil {
				return err
			}
			if col < len(widths) {
				if w := len(cellText(v)); w > widths[col] {
					widths[col] = w
				}
			}
		}
	}

	if err := f.SetPanes(name, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return err
	}

	for col, w := range widths {
		letter, err := excelize.ColumnNumberToName(col + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(name, letter, letter, float64(w+2)); err != nil {
			return err
		}
	}
	return nil
}

// uniqueSheetName truncates to Excel's sheet-name limit and suffixes a
// counter when two tables would otherwise land on the same sheet.
func uniqueSheetName(name string, used map[string]bool) string {
	base := name
	if len(base) > maxSheetName {
		base = base[:maxSheetName]
	}
	candidate := base
	for n := 2; used[candidate]; n++ {
		suffix := fmt.Sprintf("-%d", n)
		trimmed := base
		if len(trimmed)+len(suffix) > maxSheetName {
			trimmed = trimmed[:maxSheetName-len(suffix)]
		}
		candidate = trimmed + suffix
	}
	used[candidate] = true
	return candidate
}

func cellText(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case time.Time:
		return val.Format("2006-01-02 15:04:05")
	default:
		return fmt.Sprint(val)
	}
}
