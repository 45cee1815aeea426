// Package reportmerge consolidates monthly purchase reports into a master
// workbook and builds aggregate summary views from it.
package reportmerge

import "github.com/piramie/reportmerge/pkg/reportmerge/models"

// Monthly reports carry a title block above the data, so their headers
// sit on row 4 by default. The master keeps headers on row 1.
const (
	defaultMasterSheet      = "Purchases"
	defaultMasterHeaderRow  = 1
	defaultMonthlyHeaderRow = 4
)

// Options configures ingestion and summary building.
type Options struct {
	// MasterSheet is the master sheet appended to.
	MasterSheet string
	// MasterHeaderRow is the 1-based header row of the master sheet.
	// Zero means auto-locate.
	MasterHeaderRow int
	// MonthlySheet names the monthly report sheet; empty means first sheet.
	MonthlySheet string
	// MonthlyHeaderRow is the 1-based header row of the monthly report.
	// Zero means auto-locate.
	MonthlyHeaderRow int
	// BackupDir receives backup copies. Empty means a _backups directory
	// beside the master.
	BackupDir string
	// KeyFields overrides the fields forming the de-duplication key.
	// Empty means models.DefaultKeyFields.
	KeyFields []models.Field
}

// DefaultOptions returns the options a stock deployment uses.
func DefaultOptions() Options {
	return Options{
		MasterSheet:      defaultMasterSheet,
		MasterHeaderRow:  defaultMasterHeaderRow,
		MonthlyHeaderRow: defaultMonthlyHeaderRow,
	}
}

func (o Options) masterSheet() string {
	if o.MasterSheet != "" {
		return o.MasterSheet
	}
	return defaultMasterSheet
}

func (o Options) keyFields() []models.Field {
	if len(o.KeyFields) > 0 {
		return o.KeyFields
	}
	return models.DefaultKeyFields
}
