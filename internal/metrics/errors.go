package metrics

import "fmt"

// MalformedInputError reports a raw table that cannot be processed: a
// required column is absent or a value in it cannot be parsed.
type MalformedInputError struct {
	Column string
	Row    int // 1-based data row, 0 when the whole column is at fault
	Reason string
}

func (e *MalformedInputError) Error() string {
	if e.Row > 0 {
		return fmt.Sprintf("malformed input: column %q row %d: %s", e.Column, e.Row, e.Reason)
	}
	return fmt.Sprintf("malformed input: column %q: %s", e.Column, e.Reason)
}
