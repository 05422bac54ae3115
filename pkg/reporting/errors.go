package reporting

import (
	"errors"
	"fmt"
)

// ValidationError reports malformed filter input. It surfaces to clients as a
// 400; everything else in this package degrades instead of failing.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// IsValidationError reports whether err is a ValidationError
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// DataSourceError wraps a failure of one physical source. It never escapes
// the Selector; it exists so logs can say which source and metric failed.
type DataSourceError struct {
	Source string
	Metric string
	Err    error
}

func (e *DataSourceError) Error() string {
	return fmt.Sprintf("source %s failed for metric %s: %v", e.Source, e.Metric, e.Err)
}

func (e *DataSourceError) Unwrap() error {
	return e.Err
}
