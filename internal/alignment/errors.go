package alignment

import (
	"errors"
	"fmt"
)

// ErrMalformedRecord marks an alignment row that does not fit the schema.
// It is fatal for the whole load; there is no partial table.
var ErrMalformedRecord = errors.New("malformed alignment record")

// RecordError carries the offending line number.
type RecordError struct {
	Line int
	Msg  string
}

func (e *RecordError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%s: line %d: %s", ErrMalformedRecord, e.Line, e.Msg)
}

func (e *RecordError) Unwrap() error { return ErrMalformedRecord }

func malformedf(line int, format string, args ...any) error {
	return &RecordError{Line: line, Msg: fmt.Sprintf(format, args...)}
}
