package reportmerge

import (
	"errors"
	"fmt"
)

// ErrFileNotFound indicates an input file does not exist.
var ErrFileNotFound = errors.New("file not found")

// ErrSheetNotFound indicates the configured master sheet is missing.
var ErrSheetNotFound = errors.New("sheet not found")

// ErrUnrecognizedSchedule indicates a required canonical column could not
// be resolved among a file's headers; the run aborts without touching the
// master.
var ErrUnrecognizedSchedule = errors.New("unrecognized schedule layout")

// ErrBackupFailed indicates the pre-write backup copy could not be made;
// the run aborts before any write.
var ErrBackupFailed = errors.New("backup failed")

// ErrWriteFailed indicates the final save did not complete, e.g. the
// master is locked by another program.
var ErrWriteFailed = errors.New("write failed")

// PipelineError wraps a failure with the ingestion stage it occurred in.
type PipelineError struct {
	Stage State
	Err   error
}

func (e *PipelineError) Error() string {
	return fmt.Sprintf("ingestion failed during %s: %v", e.Stage, e.Err)
}

func (e *PipelineError) Unwrap() error {
	return e.Err
}
