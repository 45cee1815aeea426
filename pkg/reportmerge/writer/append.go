// Package writer mutates workbooks: appending merged rows to the master
// and rendering summary workbooks.
package writer

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/piramie/reportmerge/pkg/reportmerge/models"
)

// dateNumFmt is applied to every date cell so Excel sorts them natively.
const dateNumFmt = "yyyy-mm-dd hh:mm:ss"

// AppendRows writes rows into the sheet starting at startRow, placing
// each field into the master column given by cols (1-based). Fields with
// no master column are dropped. Rows are placed compactly, no gaps.
// Returns the last row written, or startRow-1 when rows is empty.
func AppendRows(f *excelize.File, sheet string, startRow int, rows []models.Row, cols map[models.Field]int) (int, error) {
	dateStyle, err := newDateStyle(f)
	if err != nil {
		return 0, err
	}

	row := startRow - 1
	for _, r := range rows {
		row++
		for field, col := range cols {
			v, ok := r.Get(field)
			if !ok {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(col, row)
			if err != nil {
				return 0, err
			}
			switch val := v.(type) {
			case time.Time:
				if err := f.SetCellValue(sheet, cell, val); err != nil {
					return 0, err
				}
				if err := f.SetCellStyle(sheet, cell, cell, dateStyle); err != nil {
					return 0, err
				}
			case decimal.Decimal:
				fl, _ := val.Float64()
				if err := f.SetCellValue(sheet, cell, fl); err != nil {
					return 0, err
				}
			default:
				if err := f.SetCellValue(sheet, cell, val); err != nil {
					return 0, err
				}
			}
		}
	}
	return row, nil
}

// ColumnsForFields inverts a column->field header mapping into the
// field->column form appending needs.
func ColumnsForFields(header map[int]models.Field) map[models.Field]int {
	cols := make(map[models.Field]int, len(header))
	for col, field := range header {
		cols[field] = col + 1
	}
	return cols
}

func newDateStyle(f *excelize.File) (int, error) {
	numFmt := dateNumFmt
	style, err := f.NewStyle(&excelize.Style{CustomNumFmt: &numFmt})
	if err != nil {
		return 0, fmt.Errorf("creating date style: %w", err)
	}
	return style, nil
}
