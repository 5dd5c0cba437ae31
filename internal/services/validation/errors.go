package validation

import "fmt"

// PipelineError means the pipeline itself could not run on the input, as
// opposed to the input containing invalid rows.
type PipelineError struct {
	Stage string
	Err   error
}

func (e *PipelineError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *PipelineError) Unwrap() error {
	return e.Err
}
