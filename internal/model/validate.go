package model

import (
	"fmt"
	"strings"
)

// ValidationError holds a list of field-level validation errors.
type ValidationError struct {
	Errors []FieldError
}

// FieldError represents a single validation failure on a named field.
type FieldError struct {
	Field   string
	Message string
}

// Error formats the validation error as a semicolon-separated list of field messages.
func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Errors))
	for i, fe := range e.Errors {
		parts[i] = fe.Field + ": " + fe.Message
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// HasErrors reports whether the validation error contains any field errors.
func (e *ValidationError) HasErrors() bool {
	return len(e.Errors) > 0
}

func (e *ValidationError) add(field, msg string) {
	e.Errors = append(e.Errors, FieldError{Field: field, Message: msg})
}

// ValidatePrize checks a Prize for constraint violations.
// It returns a *ValidationError if any rules fail, or nil if the prize is valid.
func ValidatePrize(p *Prize) error {
	var ve ValidationError

	if strings.TrimSpace(p.Year) == "" {
		ve.add("year", "is required")
	}
	if strings.TrimSpace(p.Category) == "" {
		ve.add("category", "is required")
	}
	validateLaureates(&ve, p.Laureates)

	if ve.HasErrors() {
		return &ve
	}
	return nil
}

// ValidateUpdate checks a PrizeUpdate on its own. Required fields may be
// omitted but not set to null or blank.
func ValidateUpdate(u *PrizeUpdate) error {
	var ve ValidationError

	if u.Year.Present && (u.Year.Null || strings.TrimSpace(u.Year.Value) == "") {
		ve.add("year", "cannot be null or empty")
	}
	if u.Category.Present && (u.Category.Null || strings.TrimSpace(u.Category.Value) == "") {
		ve.add("category", "cannot be null or empty")
	}
	if u.Laureates.IsSet() {
		validateLaureates(&ve, u.Laureates.Value)
	}

	if ve.HasErrors() {
		return &ve
	}
	return nil
}

func validateLaureates(ve *ValidationError, laureates []Laureate) {
	for i, l := range laureates {
		if strings.TrimSpace(l.Firstname) == "" {
			ve.add(fmt.Sprintf("laureates[%d].firstname", i), "is required")
		}
	}
}
