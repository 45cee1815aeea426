package models

// SummaryTable is a derived, read-only aggregate view of the master.
// It is recomputed from the current master state on every run and is
// never written back into the master workbook.
type SummaryTable struct {
	// Name identifies the view; also used as the output sheet name.
	Name string
	// Columns holds the header row: group columns first, then one column
	// per aggregate.
	Columns []string
	// Rows holds one row per group, in first-seen group order.
	Rows [][]any
}
