package dataset

import (
	"errors"
	"fmt"
)

// Common errors
var (
	ErrNotFound      = errors.New("dataset not found")
	ErrSchema        = errors.New("schema error")
	ErrDataInvariant = errors.New("data invariant violated")
)

// SchemaError reports a column that is absent or has the wrong element type.
type SchemaError struct {
	Column string
	Want   string
	Got    string // empty when the column is missing
}

func (e *SchemaError) Error() string {
	if e.Got == "" {
		return fmt.Sprintf("schema: missing column %q (want %s)", e.Column, e.Want)
	}
	return fmt.Sprintf("schema: column %q has type %s, want %s", e.Column, e.Got, e.Want)
}

// Is makes SchemaError match ErrSchema.
func (e *SchemaError) Is(target error) bool {
	return target == ErrSchema
}

// DataInvariantError reports a structurally corrupt dataset. Row is -1 when
// the violation concerns whole columns rather than a single scan.
type DataInvariantError struct {
	Row    int
	Reason string
}

func (e *DataInvariantError) Error() string {
	if e.Row < 0 {
		return "data invariant: " + e.Reason
	}
	return fmt.Sprintf("data invariant: row %d: %s", e.Row, e.Reason)
}

// Is makes DataInvariantError match ErrDataInvariant.
func (e *DataInvariantError) Is(target error) bool {
	return target == ErrDataInvariant
}
