package domain

import "fmt"

// AnalysisError signals that generator output could not be parsed as a
// document-shaped value at all. Partially malformed documents are never an
// error; they are repaired in place.
type AnalysisError struct {
	Reason string
	Err    error
}

func (e *AnalysisError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("analysis failed: %s: %v", e.Reason, e.Err)
	}
	return "analysis failed: " + e.Reason
}

func (e *AnalysisError) Unwrap() error { return e.Err }
