package record

import "fmt"

// SchemaError reports a required field that is absent from the schema, or Null on
// some row. Row is the 0-based row index, or -1 when the schema itself lacks the field.
// Reason, when set, replaces the default "is missing" wording (e.g. a kind mismatch).
type SchemaError struct {
	Report string
	Field  string
	Row    int
	Reason string
}

func (e *SchemaError) Error() string {
	prefix := "schema"
	if e.Report != "" {
		prefix = e.Report + ": schema"
	}
	reason := e.Reason
	if reason == "" {
		reason = "is missing"
	}
	if e.Row < 0 {
		return fmt.Sprintf("%s: required field %q %s", prefix, e.Field, reason)
	}
	return fmt.Sprintf("%s: required field %q %s on row %d", prefix, e.Field, reason, e.Row+1)
}

// DomainError reports an invalid parameter, e.g. a non-positive NTILE bucket count.
type DomainError struct {
	Param  string
	Value  any
	Reason string
}

func (e *DomainError) Error() string {
	return fmt.Sprintf("invalid %s=%v: %s", e.Param, e.Value, e.Reason)
}
