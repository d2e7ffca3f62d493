package ratelimits

import "fmt"

// Field names a semantic slot of a rate-limit convention.
type Field uint8

const (
	FieldLimit Field = iota + 1
	FieldRemaining
	FieldUsed
	FieldReset
	FieldRetryAfter
	FieldPolicy
	FieldWindow
)

var fieldNames = map[Field]string{
	FieldLimit:      "limit",
	FieldRemaining:  "remaining",
	FieldUsed:       "used",
	FieldReset:      "reset",
	FieldRetryAfter: "retry-after",
	FieldPolicy:     "policy",
	FieldWindow:     "window",
}

func (f Field) String() string {
	if name, ok := fieldNames[f]; ok {
		return name
	}
	return fmt.Sprintf("field(%d)", uint8(f))
}

// MissingFieldError reports a header the vendor's convention requires.
type MissingFieldError struct {
	Vendor Vendor
	Field  Field
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("ratelimits: %s headers: missing %s", e.Vendor, e.Field)
}

// MalformedIntegerError reports a count that is not a non-negative integer.
type MalformedIntegerError struct {
	Vendor Vendor
	Field  Field
	Value  string
	Err    error
}

func (e *MalformedIntegerError) Error() string {
	msg := fmt.Sprintf("ratelimits: %s headers: malformed integer in %s: %q", e.Vendor, e.Field, e.Value)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *MalformedIntegerError) Unwrap() error { return e.Err }

// MalformedTimestampError reports a reset value that matches no accepted
// time format for the field.
type MalformedTimestampError struct {
	Vendor Vendor
	Field  Field
	Value  string
	Err    error
}

func (e *MalformedTimestampError) Error() string {
	msg := fmt.Sprintf("ratelimits: %s headers: malformed time in %s: %q", e.Vendor, e.Field, e.Value)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *MalformedTimestampError) Unwrap() error { return e.Err }

// AmbiguityError reports rate-limit headers that cannot be attributed to a
// single convention or that contradict each other.
type AmbiguityError struct {
	Vendor Vendor
	Reason string
}

func (e *AmbiguityError) Error() string {
	return fmt.Sprintf("ratelimits: %s headers: %s", e.Vendor, e.Reason)
}
