package models

import (
	"errors"
	"sort"
	"strings"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrForbidden          = errors.New("permission denied")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrConflict           = errors.New("already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// NonFieldErrors is the FormError key for errors not tied to a single field.
const NonFieldErrors = "non_field_errors"

// FormError carries user-facing validation messages keyed by field.
type FormError struct {
	Fields map[string][]string
}

func NewFormError() *FormError {
	return &FormError{Fields: map[string][]string{}}
}

func (e *FormError) Add(field, message string) {
	e.Fields[field] = append(e.Fields[field], message)
}

func (e *FormError) Empty() bool {
	return e == nil || len(e.Fields) == 0
}

func (e *FormError) Has(field string) bool {
	return e != nil && len(e.Fields[field]) > 0
}

func (e *FormError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+strings.Join(e.Fields[k], "; "))
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

// AsFormError unwraps err into a *FormError when it is one.
func AsFormError(err error) (*FormError, bool) {
	var fe *FormError
	if errors.As(err, &fe) {
		return fe, true
	}
	return nil, false
}
