package parser

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/piramie/reportmerge/pkg/reportmerge/models"
)

// MalformedRowError reports a data row that cannot be parsed into the
// canonical schema. Such rows are skipped and counted, never fatal.
type MalformedRowError struct {
	RowNum int // 1-based sheet row
	Field  models.Field
	Reason string
}

func (e *MalformedRowError) Error() string {
	return fmt.Sprintf("row %d: field %q: %s", e.RowNum, e.Field, e.Reason)
}

// dateLayouts are the spellings accepted for date cells. excelize renders
// styled date cells as formatted strings, so several shapes show up in
// practice.
var dateLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"2006/01/02 15:04:05",
	"2006/01/02",
	"01-02-06",
	"1/2/06 15:04",
	"01/02/2006 15:04:05",
	"01/02/2006",
	"1/2/2006",
	"02-Jan-06",
	"2-Jan-2006",
	time.RFC3339,
}

// excelEpoch is day zero of the 1900 date system (serial 1 = 1900-01-01,
// with the historical leap-year bug folded in).
var excelEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

// ParseDate parses a date cell. Accepts the known layouts and raw Excel
// serial numbers; the result is truncated to second precision.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Truncate(time.Second), true
		}
	}
	if serial, err := strconv.ParseFloat(s, 64); err == nil && serial > 0 {
		d := time.Duration(serial * 24 * float64(time.Hour))
		return excelEpoch.Add(d).Truncate(time.Second), true
	}
	return time.Time{}, false
}

// ParseAmount parses a monetary cell, tolerating currency symbols and
// thousands separators.
func ParseAmount(s string) (decimal.Decimal, bool) {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, ",", "")
	s = strings.ReplaceAll(s, "$", "")
	if s == "" {
		return decimal.Decimal{}, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, false
	}
	return d, true
}

// cleanText trims a text cell and clears stringified-null artifacts.
func cleanText(s string) string {
	s = strings.TrimSpace(s)
	switch strings.ToLower(s) {
	case "nan", "none", "null":
		return ""
	}
	return s
}

// ParseRows converts raw data rows (everything below the header) into
// canonical Rows. Fully empty rows are dropped silently; rows that fail
// to parse a required field are skipped and counted. firstRowNum is the
// 1-based sheet row of the first data row, used in error reporting.
func ParseRows(raw [][]string, header HeaderMap, firstRowNum int) ([]models.Row, int) {
	var rows []models.Row
	malformed := 0

	for i, rawRow := range raw {
		rowNum := firstRowNum + i
		values := make(map[models.Field]any)
		empty := true
		var rowErr *MalformedRowError

		for col, f := range header {
			var cell string
			if col < len(rawRow) {
				cell = cleanText(rawRow[col])
			}
			if cell == "" {
				continue
			}
			empty = false

			switch f {
			case models.FieldAmount:
				d, ok := ParseAmount(cell)
				if !ok {
					rowErr = &MalformedRowError{RowNum: rowNum, Field: f, Reason: fmt.Sprintf("non-numeric amount %q", cell)}
					continue
				}
				values[f] = d
			case models.FieldDate:
				t, ok := ParseDate(cell)
				if !ok {
					rowErr = &MalformedRowError{RowNum: rowNum, Field: f, Reason: fmt.Sprintf("unparseable date %q", cell)}
					continue
				}
				values[f] = t
			default:
				values[f] = cell
			}
		}

		if empty {
			continue
		}
		if rowErr == nil {
			for _, f := range models.RequiredFields {
				if _, ok := values[f]; !ok {
					rowErr = &MalformedRowError{RowNum: rowNum, Field: f, Reason: "missing value"}
					break
				}
			}
		}
		if rowErr != nil {
			malformed++
			log.Debug().Err(rowErr).Msg("skipping malformed row")
			continue
		}
		rows = append(rows, models.NewRow(values))
	}

	return rows, malformed
}
