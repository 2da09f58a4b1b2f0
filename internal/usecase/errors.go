package usecase

import (
	"fmt"

	crerr "github.com/cockroachdb/errors"
)

var (
	ErrInvalidInput          = crerr.New("invalid input")
	ErrNotFound              = crerr.New("resource not found")
	ErrDependencyUnavailable = crerr.New("dependency unavailable")
	ErrSchema                = crerr.New("schema error")
)

// SchemaError reports a missing column or join key. It is fatal for the run.
type SchemaError struct {
	Table  string
	Field  string
	Key    string
	Reason string
}

func (e *SchemaError) Error() string {
	msg := fmt.Sprintf("schema error: table=%s field=%s", e.Table, e.Field)
	if e.Key != "" {
		msg += " key=" + e.Key
	}
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	return msg
}

func (e *SchemaError) Unwrap() error {
	return ErrSchema
}

func newSchemaError(table, field, key, reason string) error {
	return &SchemaError{Table: table, Field: field, Key: key, Reason: reason}
}
