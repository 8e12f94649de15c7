// Package errors provides the roster engine's unified error framework.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code identifies an error category.
type Code string

const (
	CodeUnknown      Code = "UNKNOWN"
	CodeInternal     Code = "INTERNAL_ERROR"
	CodeInvalidInput Code = "INVALID_INPUT"
	CodeTimeout      Code = "TIMEOUT"

	// Roster-specific: unknown shift code, date outside the configured
	// horizon, contradictory preassignments, or a person reference that
	// doesn't resolve: always rejected at the boundary (category 1).
	CodeUnknownCode          Code = "UNKNOWN_CODE"
	CodeDateOutOfHorizon     Code = "DATE_OUT_OF_HORIZON"
	CodeContradictoryPreassign Code = "CONTRADICTORY_PREASSIGNMENT"
	CodeUnknownPerson        Code = "UNKNOWN_PERSON"

	// Solve outcomes (categories 2-4): infeasibility with locum slack
	// surfaces as data (elevated locum counts), never as one of these;
	// these two are reserved for the solver's terminal status.
	CodeNoFeasibleSolution  Code = "NO_FEASIBLE_SOLUTION"
	CodeConstraintViolation Code = "CONSTRAINT_VIOLATION"
)

// AppError is the engine's structured error type, carrying enough
// context for both a human message and a machine-checkable code.
type AppError struct {
	Code       Code                   `json:"code"`
	Message    string                 `json:"message"`
	Details    string                 `json:"details,omitempty"`
	HTTPStatus int                    `json:"-"`
	Cause      error                  `json:"-"`
	Fields     map[string]interface{} `json:"fields,omitempty"`
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithDetails attaches a free-text detail string.
func (e *AppError) WithDetails(details string) *AppError {
	e.Details = details
	return e
}

// WithCause attaches the underlying error this one wraps.
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// WithField attaches a structured field for logging/reporting.
func (e *AppError) WithField(key string, value interface{}) *AppError {
	if e.Fields == nil {
		e.Fields = make(map[string]interface{})
	}
	e.Fields[key] = value
	return e
}

// New creates an AppError of the given code.
func New(code Code, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: codeToHTTPStatus(code),
	}
}

// Wrap creates an AppError that chains an underlying cause.
func Wrap(err error, code Code, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: codeToHTTPStatus(code),
		Cause:      err,
	}
}

func codeToHTTPStatus(code Code) int {
	switch code {
	case CodeInvalidInput, CodeUnknownCode, CodeDateOutOfHorizon, CodeContradictoryPreassign, CodeUnknownPerson:
		return http.StatusBadRequest
	case CodeTimeout:
		return http.StatusGatewayTimeout
	case CodeNoFeasibleSolution:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// Is reports whether err is an AppError of the given code.
func Is(err error, code Code) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// GetCode extracts the AppError code from err, or CodeUnknown.
func GetCode(err error) Code {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeUnknown
}

// UnknownCode reports a shift code not present in the catalogue.
func UnknownCode(code string) *AppError {
	return New(CodeUnknownCode, fmt.Sprintf("unknown shift code %q", code))
}

// DateOutOfHorizon reports a date outside the configured start/end range.
func DateOutOfHorizon(what, date string) *AppError {
	return New(CodeDateOutOfHorizon, fmt.Sprintf("%s date %s falls outside the horizon", what, date))
}

// ContradictoryPreassignment reports two preassignments that cannot both
// hold for the same person and day.
func ContradictoryPreassignment(person, date string) *AppError {
	return New(CodeContradictoryPreassign, fmt.Sprintf("contradictory preassignments for %s on %s", person, date))
}

// UnknownPerson reports a person reference that doesn't resolve against
// the problem's roster of persons.
func UnknownPerson(id string) *AppError {
	return New(CodeUnknownPerson, fmt.Sprintf("unknown person %q", id))
}

// NoFeasibleSolution reports that a solve pass found no feasible
// assignment even with locum slack exhausted.
func NoFeasibleSolution(reason string) *AppError {
	return New(CodeNoFeasibleSolution, reason)
}

// ValidationErrors collects every invariant violation found by a single
// validator pass, instead of failing on the first.
type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

// ValidationError is one failed check, named by the invariant it breaks.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (ve *ValidationErrors) Error() string {
	if len(ve.Errors) == 0 {
		return "validation failed"
	}
	return fmt.Sprintf("validation failed: %s - %s", ve.Errors[0].Field, ve.Errors[0].Message)
}

// Add records one validation failure.
func (ve *ValidationErrors) Add(field, message string) {
	ve.Errors = append(ve.Errors, ValidationError{Field: field, Message: message})
}

// HasErrors reports whether any failure was recorded.
func (ve *ValidationErrors) HasErrors() bool {
	return len(ve.Errors) > 0
}

// ToAppError flattens every recorded failure into a single AppError.
func (ve *ValidationErrors) ToAppError() *AppError {
	err := New(CodeInvalidInput, "validation failed")
	err.Fields = make(map[string]interface{})
	for _, e := range ve.Errors {
		err.Fields[e.Field] = e.Message
	}
	return err
}
