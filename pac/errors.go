package pac

import (
	"fmt"
)

// Stage names, used in errors so the user knows where the run died
const (
	StageOpen      = "open"
	StageHeader    = "header"
	StageTable     = "partition table"
	StageExtract   = "extract"
	StageOutputDir = "output directory"
)

// The container is not something we can parse: too short, no board info,
// offsets pointing outside the file, that kind of thing. Always fatal.
type FormatError struct {
	Stage  string
	Reason string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("%s: invalid container: %s", e.Stage, e.Reason)
}

func formatErrorf(stage string, format string, args ...any) *FormatError {
	return &FormatError{Stage: stage, Reason: fmt.Sprintf(format, args...)}
}

// Some underlying file operation failed (open, seek, short read, write...)
type IoError struct {
	Stage string
	Path  string
	Err   error
}

func (e *IoError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: io error on %s: %s", e.Stage, e.Path, e.Err)
	}
	return fmt.Sprintf("%s: io error: %s", e.Stage, e.Err)
}

func (e *IoError) Unwrap() error {
	return e.Err
}

// Make sure the error carries the given stage. IoErrors coming out of the
// stream don't know what the caller was doing, so they get restamped.
func withStage(stage string, err error) error {
	switch v := err.(type) {
	case *IoError:
		return &IoError{Stage: stage, Path: v.Path, Err: v.Err}
	case *FormatError:
		return &FormatError{Stage: stage, Reason: v.Reason}
	default:
		return err
	}
}
