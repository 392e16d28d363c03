package analytics

import (
	"errors"
	"fmt"
)

// Sentinel kinds for report errors.
var (
	ErrInvalidParameter = errors.New("invalid report parameter")
	ErrQueryExecution   = errors.New("report query failed")
)

// ReportError tags a report failure with the report name.
type ReportError struct {
	Report string
	Err    error
}

func (e *ReportError) Error() string {
	return fmt.Sprintf("report %s: %v", e.Report, e.Err)
}

// Unwrap exposes the cause.
func (e *ReportError) Unwrap() error {
	return e.Err
}
