package reportmerge_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/piramie/reportmerge/pkg/reportmerge"
	"github.com/piramie/reportmerge/pkg/reportmerge/models"
)

func writeSheet(t *testing.T, f *excelize.File, sheet string, rows [][]any) {
	t.Helper()
	for r, row := range rows {
		for c, v := range row {
			if v == nil {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(c+1, r+1)
			require.NoError(t, err)
			require.NoError(t, f.SetCellValue(sheet, cell, v))
		}
	}
}

// master with three purchases keyed on accounts 100, 200, 300
func writeMasterFixture(t *testing.T, dir string) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	require.NoError(t, f.SetSheetName("Sheet1", "Purchases"))

	writeSheet(t, f, "Purchases", [][]any{
		{"Vendor", "Account", "Date", "Product Name", "Amount", "Product ID", "Contract ID", "Credit Type"},
		{"Alice", "100", "2025-03-01 09:00:00", "Bundle S", "10.00", "PS", "C100", "encisia"},
		{"Bob", "200", "2025-03-02 09:00:00", "Bundle M", "20.00", "PM", "C200", ""},
		{"Cara", "300", "2025-03-03 09:00:00", "Bundle L", "30.00", "PL", "C300", ""},
	})

	path := filepath.Join(dir, "master.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

// monthly report: title block, header on row 4, candidate keys
// {200, 300, 400, 400} against the master's {100, 200, 300}
func writeMonthlyFixture(t *testing.T, dir string) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	writeSheet(t, f, "Sheet1", [][]any{
		{"Monthly Purchases Report"},
		{"April 2025"},
		{},
		{"Vendor Name", "MSISDN", "Txn Date", "Prod Name", "Amt ($)", "Prod Code", "CRTR_ID"},
		{"Bob", "200", "2025-03-02 09:00:00", "Bundle M", "20", "PM", "C200"},
		{"Cara", "300", "2025-03-03 09:00:00", "Bundle L", "30", "PL", "C300"},
		{"Dave", "400", "2025-04-04 09:00:00", "Bundle XL", "$40.00", "PX", "C400"},
		{"Dave", "400", "2025-04-04 09:00:00", "Bundle XL", "40", "PX", "C400"},
	})

	path := filepath.Join(dir, "monthly.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func TestIngestAppendsOnlyNewRows(t *testing.T) {
	dir := t.TempDir()
	master := writeMasterFixture(t, dir)
	monthly := writeMonthlyFixture(t, dir)

	pipeline := reportmerge.NewPipeline(reportmerge.DefaultOptions())
	result, err := pipeline.Ingest(master, monthly)
	require.NoError(t, err)
	assert.Equal(t, reportmerge.StateDone, pipeline.State())

	assert.Equal(t, 1, result.RowsAppended)
	assert.Equal(t, 3, result.RowsSkippedAsDuplicate)
	assert.Equal(t, 0, result.RowsSkippedMalformed)
	assert.Equal(t, 3, result.RowsBefore)
	assert.Equal(t, 4, result.RowsAfter)
	assert.FileExists(t, result.BackupPath)

	f, err := excelize.OpenFile(master)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Purchases")
	require.NoError(t, err)
	require.Len(t, rows, 5) // header + 4 data rows

	appended := rows[4]
	assert.Equal(t, "Dave", appended[0])
	assert.Equal(t, "400", appended[1])
	assert.Equal(t, "Bundle XL", appended[3])
}

func TestIngestIdempotent(t *testing.T) {
	dir := t.TempDir()
	master := writeMasterFixture(t, dir)
	monthly := writeMonthlyFixture(t, dir)

	opts := reportmerge.DefaultOptions()
	first, err := reportmerge.NewPipeline(opts).Ingest(master, monthly)
	require.NoError(t, err)
	require.Equal(t, 1, first.RowsAppended)

	afterFirst, err := os.ReadFile(master)
	require.NoError(t, err)

	second, err := reportmerge.NewPipeline(opts).Ingest(master, monthly)
	require.NoError(t, err)
	assert.Equal(t, 0, second.RowsAppended)
	assert.Equal(t, 4, second.RowsSkippedAsDuplicate)
	assert.Equal(t, 4, second.RowsBefore)
	assert.Equal(t, 4, second.RowsAfter)

	// nothing to write, so the master stays byte-identical
	afterSecond, err := os.ReadFile(master)
	require.NoError(t, err)
	assert.Equal(t, afterFirst, afterSecond)
}

func TestIngestBackupFailureLeavesMasterUntouched(t *testing.T) {
	dir := t.TempDir()
	master := writeMasterFixture(t, dir)
	monthly := writeMonthlyFixture(t, dir)

	before, err := os.ReadFile(master)
	require.NoError(t, err)
	info, err := os.Stat(master)
	require.NoError(t, err)
	mtime := info.ModTime()

	// a file where the backup directory should go forces the copy to fail
	blocker := filepath.Join(dir, "blocked")
	require.NoError(t, os.WriteFile(blocker, []byte(""), 0o644))

	opts := reportmerge.DefaultOptions()
	opts.BackupDir = filepath.Join(blocker, "nested")

	pipeline := reportmerge.NewPipeline(opts)
	_, err = pipeline.Ingest(master, monthly)
	require.Error(t, err)
	assert.ErrorIs(t, err, reportmerge.ErrBackupFailed)
	assert.Equal(t, reportmerge.StateFailed, pipeline.State())

	after, err := os.ReadFile(master)
	require.NoError(t, err)
	assert.Equal(t, before, after)
	info, err = os.Stat(master)
	require.NoError(t, err)
	assert.Equal(t, mtime, info.ModTime())
}

func TestIngestMissingRequiredColumnAborts(t *testing.T) {
	dir := t.TempDir()
	master := writeMasterFixture(t, dir)

	f := excelize.NewFile()
	writeSheet(t, f, "Sheet1", [][]any{
		{},
		{},
		{},
		{"Vendor Name", "Txn Date", "Prod Name"}, // no amount column
		{"Dave", "2025-04-04", "Bundle XL"},
	})
	monthly := filepath.Join(dir, "monthly.xlsx")
	require.NoError(t, f.SaveAs(monthly))
	f.Close()

	before, err := os.ReadFile(master)
	require.NoError(t, err)

	pipeline := reportmerge.NewPipeline(reportmerge.DefaultOptions())
	_, err = pipeline.Ingest(master, monthly)
	require.Error(t, err)
	assert.ErrorIs(t, err, reportmerge.ErrUnrecognizedSchedule)

	var pipeErr *reportmerge.PipelineError
	require.ErrorAs(t, err, &pipeErr)
	assert.Equal(t, reportmerge.StateNormalizing, pipeErr.Stage)

	after, err := os.ReadFile(master)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestIngestMissingFiles(t *testing.T) {
	dir := t.TempDir()
	master := writeMasterFixture(t, dir)

	pipeline := reportmerge.NewPipeline(reportmerge.DefaultOptions())
	_, err := pipeline.Ingest(master, filepath.Join(dir, "nope.xlsx"))
	require.Error(t, err)
	assert.ErrorIs(t, err, reportmerge.ErrFileNotFound)

	_, err = reportmerge.NewPipeline(reportmerge.DefaultOptions()).Ingest(filepath.Join(dir, "nope.xlsx"), master)
	require.Error(t, err)
	assert.ErrorIs(t, err, reportmerge.ErrFileNotFound)
}

func TestIngestWrongMasterSheet(t *testing.T) {
	dir := t.TempDir()
	master := writeMasterFixture(t, dir)
	monthly := writeMonthlyFixture(t, dir)

	opts := reportmerge.DefaultOptions()
	opts.MasterSheet = "No Such Sheet"

	_, err := reportmerge.NewPipeline(opts).Ingest(master, monthly)
	require.Error(t, err)
	assert.ErrorIs(t, err, reportmerge.ErrSheetNotFound)
}

func TestIngestCountsMalformedRows(t *testing.T) {
	dir := t.TempDir()
	master := writeMasterFixture(t, dir)

	f := excelize.NewFile()
	writeSheet(t, f, "Sheet1", [][]any{
		{},
		{},
		{},
		{"Vendor Name", "MSISDN", "Txn Date", "Amt ($)"},
		{"Dave", "400", "2025-04-04 09:00:00", "40"},
		{"Evil", "500", "2025-04-05 09:00:00", "not a number"},
	})
	monthly := filepath.Join(dir, "monthly.xlsx")
	require.NoError(t, f.SaveAs(monthly))
	f.Close()

	result, err := reportmerge.NewPipeline(reportmerge.DefaultOptions()).Ingest(master, monthly)
	require.NoError(t, err)
	assert.Equal(t, 1, result.RowsAppended)
	assert.Equal(t, 1, result.RowsSkippedMalformed)
	assert.Equal(t, 0, result.RowsSkippedAsDuplicate)
}

func TestLoadMaster(t *testing.T) {
	dir := t.TempDir()
	master := writeMasterFixture(t, dir)

	table, err := reportmerge.LoadMaster(master, reportmerge.DefaultOptions())
	require.NoError(t, err)
	require.Len(t, table.Rows, 3)
	assert.Equal(t, "Alice", table.Rows[0].Text(models.FieldVendor))
	assert.Equal(t, "Purchases", table.Sheet)
}
