package models

// IngestResult summarizes a completed ingestion run for user-facing
// reporting.
type IngestResult struct {
	// RowsBefore is the master data row count before the run.
	RowsBefore int `json:"rows_before"`
	// RowsAppended is the number of rows written to the master.
	RowsAppended int `json:"rows_appended"`
	// RowsSkippedAsDuplicate counts candidate rows dropped because their
	// key was already present, including duplicates within the monthly
	// report itself.
	RowsSkippedAsDuplicate int `json:"rows_skipped_as_duplicate"`
	// RowsSkippedMalformed counts monthly rows that could not be parsed
	// into the canonical schema.
	RowsSkippedMalformed int `json:"rows_skipped_malformed"`
	// RowsAfter is the master data row count after the run.
	RowsAfter int `json:"rows_after"`
	// BackupPath is where the pre-write master copy was placed.
	BackupPath string `json:"backup_path"`
	// Sheet is the master sheet that was appended to.
	Sheet string `json:"sheet"`
	// UnmappedColumns lists monthly header cells with no canonical match.
	UnmappedColumns []string `json:"unmapped_columns,omitempty"`
}
