package requests

import (
	"errors"
	"strings"
)

var (
	ErrRequestNotFound     = errors.New("request not found")
	ErrAlreadyResolved     = errors.New("request already resolved")
	ErrActiveRequestExists = errors.New("active request already exists")
)

type FieldError struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+" "+f.Reason)
	}
	return "invalid request: " + strings.Join(parts, "; ")
}

func (e *ValidationError) add(field, reason string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Reason: reason})
}

func (e *ValidationError) orNil() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}

// RejectedError carries every eligibility rule the request failed.
type RejectedError struct {
	Reasons []string
}

func (e *RejectedError) Error() string {
	return "request not eligible: " + strings.Join(e.Reasons, "; ")
}
