// File path: internal/exact/errors.go
package exact

import "fmt"

// QueryGenerationError reports a failure to obtain a usable SQL statement
// from the model. Query holds whatever text was produced, for debugging.
type QueryGenerationError struct {
	Query string
	Err   error
}

func (e *QueryGenerationError) Error() string {
	if e.Query != "" {
		return fmt.Sprintf("query generation failed: %v (generated: %s)", e.Err, e.Query)
	}
	return fmt.Sprintf("query generation failed: %v", e.Err)
}

func (e *QueryGenerationError) Unwrap() error { return e.Err }

// QueryExecutionError reports a generated statement the database rejected.
// Query carries the offending statement.
type QueryExecutionError struct {
	Query string
	Err   error
}

func (e *QueryExecutionError) Error() string {
	return fmt.Sprintf("query execution failed: %v (query: %s)", e.Err, e.Query)
}

func (e *QueryExecutionError) Unwrap() error { return e.Err }
