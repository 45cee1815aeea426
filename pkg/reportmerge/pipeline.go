package reportmerge

import (
	"errors"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/xuri/excelize/v2"

	"github.com/piramie/reportmerge/pkg/reportmerge/dedup"
	"github.com/piramie/reportmerge/pkg/reportmerge/models"
	"github.com/piramie/reportmerge/pkg/reportmerge/parser"
	"github.com/piramie/reportmerge/pkg/reportmerge/writer"
)

// State is an ingestion pipeline stage. Stages run strictly in order;
// any failure short-circuits to StateFailed and the master file is left
// untouched, because the only step that persists anything is Writing.
type State string

const (
	StateIdle        State = "idle"
	StateLoading     State = "loading"
	StateNormalizing State = "normalizing"
	StateMerging     State = "merging"
	StateBackingUp   State = "backing up"
	StateWriting     State = "writing"
	StateDone        State = "done"
	StateFailed      State = "failed"
)

// Pipeline runs one ingestion at a time. It holds no state across runs
// beyond its options; a Pipeline is not safe for concurrent use, and the
// caller dispatches one action at a time.
type Pipeline struct {
	opts  Options
	state State
}

// NewPipeline returns an idle pipeline with the given options.
func NewPipeline(opts Options) *Pipeline {
	return &Pipeline{opts: opts, state: StateIdle}
}

// State returns the stage the last run reached.
func (p *Pipeline) State() State {
	return p.state
}

func (p *Pipeline) transition(next State) {
	log.Debug().Str("from", string(p.state)).Str("to", string(next)).Msg("pipeline transition")
	p.state = next
}

func (p *Pipeline) fail(err error) (*models.IngestResult, error) {
	stage := p.state
	p.state = StateFailed
	return nil, &PipelineError{Stage: stage, Err: err}
}

// Ingest appends the monthly report's new rows into the master workbook.
// The master is backed up before the single save that persists all
// appended rows; on any earlier failure the file on disk is unchanged.
func (p *Pipeline) Ingest(masterPath, monthlyPath string) (*models.IngestResult, error) {
	p.transition(StateLoading)

	if _, err := os.Stat(masterPath); err != nil {
		return p.fail(fmt.Errorf("%w: master %s", ErrFileNotFound, masterPath))
	}
	if _, err := os.Stat(monthlyPath); err != nil {
		return p.fail(fmt.Errorf("%w: monthly report %s", ErrFileNotFound, monthlyPath))
	}

	master, err := excelize.OpenFile(masterPath)
	if err != nil {
		return p.fail(fmt.Errorf("opening master: %w", err))
	}
	defer master.Close()

	sheet := p.opts.masterSheet()
	if !parser.HasSheet(master, sheet) {
		return p.fail(fmt.Errorf("%w: %q in master", ErrSheetNotFound, sheet))
	}

	monthly, err := excelize.OpenFile(monthlyPath)
	if err != nil {
		return p.fail(fmt.Errorf("opening monthly report: %w", err))
	}
	defer monthly.Close()

	monthlySheet := p.opts.MonthlySheet
	if monthlySheet == "" {
		if monthlySheet, err = parser.FirstSheet(monthly); err != nil {
			return p.fail(err)
		}
	}

	p.transition(StateNormalizing)

	candidate, candidateReport, err := parser.ReadTable(monthly, monthlyPath, monthlySheet, p.opts.MonthlyHeaderRow)
	if err != nil {
		return p.fail(wrapSchedule(err))
	}
	masterTable, masterReport, err := parser.ReadTable(master, masterPath, sheet, p.opts.MasterHeaderRow)
	if err != nil {
		return p.fail(wrapSchedule(err))
	}

	p.transition(StateMerging)

	keyFields := p.opts.keyFields()
	existing := dedup.BuildKeySet(masterTable, keyFields)
	kept, dropped := dedup.Merge(existing, candidate, keyFields)

	result := &models.IngestResult{
		RowsBefore:             masterReport.DataRows(),
		RowsSkippedAsDuplicate: dropped,
		RowsSkippedMalformed:   candidateReport.Malformed,
		Sheet:                  sheet,
		UnmappedColumns:        candidateReport.Unmapped,
	}

	p.transition(StateBackingUp)

	result.BackupPath, err = Backup(masterPath, p.opts.BackupDir)
	if err != nil {
		return p.fail(err)
	}

	if len(kept) == 0 {
		// nothing to write; the master stays byte-identical
		result.RowsAfter = result.RowsBefore
		p.transition(StateDone)
		log.Info().Int("duplicates", dropped).Msg("no new rows to append")
		return result, nil
	}

	p.transition(StateWriting)

	cols := writer.ColumnsForFields(masterReport.Header)
	startRow := masterReport.LastDataRow + 1
	lastRow, err := writer.AppendRows(master, sheet, startRow, kept, cols)
	if err != nil {
		return p.fail(fmt.Errorf("%w: %v", ErrWriteFailed, err))
	}

	lastCol := 0
	for _, col := range cols {
		if col > lastCol {
			lastCol = col
		}
	}
	if err := writer.ExpandRanges(master, sheet, masterReport.HeaderRow, lastCol, lastRow); err != nil {
		return p.fail(fmt.Errorf("%w: %v", ErrWriteFailed, err))
	}
	if dateCol := masterReport.Header.Column(models.FieldDate); dateCol >= 0 {
		if err := writer.NormalizeDateColumn(master, sheet, dateCol+1, masterReport.HeaderRow+1, lastRow); err != nil {
			return p.fail(fmt.Errorf("%w: %v", ErrWriteFailed, err))
		}
	}

	if err := master.Save(); err != nil {
		return p.fail(fmt.Errorf("%w: %v", ErrWriteFailed, err))
	}

	result.RowsAppended = len(kept)
	result.RowsAfter = result.RowsBefore + len(kept)
	p.transition(StateDone)

	log.Info().
		Int("appended", result.RowsAppended).
		Int("duplicates", result.RowsSkippedAsDuplicate).
		Int("malformed", result.RowsSkippedMalformed).
		Str("backup", result.BackupPath).
		Msg("ingestion complete")
	return result, nil
}

// LoadMaster reads the master sheet into a canonical table, for summary
// building or inspection.
func LoadMaster(masterPath string, opts Options) (*models.Table, error) {
	f, err := excelize.OpenFile(masterPath)
	if err != nil {
		return nil, fmt.Errorf("opening master: %w", err)
	}
	defer f.Close()

	sheet := opts.masterSheet()
	if !parser.HasSheet(f, sheet) {
		return nil, fmt.Errorf("%w: %q in master", ErrSheetNotFound, sheet)
	}
	table, _, err := parser.ReadTable(f, masterPath, sheet, opts.MasterHeaderRow)
	if err != nil {
		return nil, wrapSchedule(err)
	}
	return table, nil
}

// wrapSchedule tags missing-column failures with the taxonomy sentinel.
func wrapSchedule(err error) error {
	var missing *parser.MissingFieldError
	if errors.As(err, &missing) {
		return fmt.Errorf("%w: %v", ErrUnrecognizedSchedule, err)
	}
	return err
}
