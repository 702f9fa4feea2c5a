package validation

import (
	"net/http"
	"strings"
)

// FieldError describes one invalid input field. Field is a JSON path such as
// "email" or "skills[2]"; it is "body" or "query" for request-level problems.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Rule    string `json:"rule,omitempty"`
}

// Errors is the normalized form of every input problem: decoding failures,
// query parsing failures and rule violations all end up here.
type Errors struct {
	Status  int
	Message string
	Fields  []FieldError
}

const defaultMessage = "Validation failed"

func (e *Errors) Error() string {
	if e == nil {
		return ""
	}
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		if f.Field == "" {
			parts = append(parts, f.Message)
			continue
		}
		parts = append(parts, f.Field+" "+f.Message)
	}
	msg := e.Summary()
	if len(parts) == 0 {
		return strings.ToLower(msg)
	}
	return strings.ToLower(msg) + ": " + strings.Join(parts, "; ")
}

// Summary is the top-level message shown to clients.
func (e *Errors) Summary() string {
	if e.Message != "" {
		return e.Message
	}
	return defaultMessage
}

// StatusCode defaults to 400.
func (e *Errors) StatusCode() int {
	if e.Status != 0 {
		return e.Status
	}
	return http.StatusBadRequest
}

// Add appends a field error.
func (e *Errors) Add(field, rule, message string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Rule: rule, Message: message})
}

// OrNil returns nil when no field errors were collected.
func (e *Errors) OrNil() error {
	if e == nil || len(e.Fields) == 0 {
		return nil
	}
	return e
}

// Field builds a single-field validation error.
func Field(field, rule, message string) *Errors {
	errs := &Errors{}
	errs.Add(field, rule, message)
	return errs
}
