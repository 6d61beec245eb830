package apperrors

import "errors"

// Benchmark run errors
var (
	// ErrProvisioning indicates a schema or index DDL failure. Always fatal:
	// nothing is generated against a store we could not provision.
	ErrProvisioning = errors.New("schema provisioning failed")

	// ErrGenerationConstraint indicates a generated row violated uniqueness,
	// a foreign key, or a check constraint. This is a generator bug, never a
	// transient store condition, so it is fatal and never retried.
	ErrGenerationConstraint = errors.New("generated row violates a store constraint")

	// ErrBatchFlush indicates a transient store failure while committing a
	// batch. Recoverable: the whole batch may be retried a bounded number of
	// times before escalating.
	ErrBatchFlush = errors.New("batch flush failed")

	// ErrQueryTimeout indicates a single measurement exceeded its ceiling.
	// Recovered locally: recorded as a sentinel result, the run continues.
	ErrQueryTimeout = errors.New("query execution exceeded timeout ceiling")

	// ErrQueryExecution indicates a store-side query failure unrelated to
	// timing. Recorded as a failed measurement.
	ErrQueryExecution = errors.New("query execution failed")
)

// Configuration errors
var (
	ErrInvalidConfig = errors.New("invalid configuration")
)

// BenchError carries run context (scale, batch offset, query id) alongside
// one of the sentinel errors above, so a fatal abort is reproducible from
// its log line alone.
type BenchError struct {
	Err     error
	Message string
	Details map[string]interface{}
}

// Error implements the error interface
func (e *BenchError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "unknown error"
}

// Unwrap implements errors.Unwrap interface
func (e *BenchError) Unwrap() error {
	return e.Err
}

// NewBenchError creates a BenchError wrapping a sentinel error
func NewBenchError(err error, message string) *BenchError {
	return &BenchError{
		Err:     err,
		Message: message,
	}
}

// WithDetails adds context details to the error
func (e *BenchError) WithDetails(details map[string]interface{}) *BenchError {
	e.Details = details
	return e
}

// Is returns whether target matches err or any of the errors in errList
func Is(err, target error, errList ...error) bool {
	if errors.Is(err, target) {
		return true
	}

	for _, e := range errList {
		if errors.Is(err, e) {
			return true
		}
	}

	return false
}
