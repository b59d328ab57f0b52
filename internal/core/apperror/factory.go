package apperror

import (
	"fmt"
	"net/http"
)

// NewValidation reports rejected input (422).
func NewValidation(message string) *AppError {
	return newError(http.StatusUnprocessableEntity, CodeValidation, message)
}

// NewBusinessRule reports a domain rule violation under its own code (422),
// for example CodeUnknownTank.
func NewBusinessRule(code, message string) *AppError {
	return newError(http.StatusUnprocessableEntity, code, message)
}

// NewPeriodClosed rejects a change to a date on or before the closing date (422).
func NewPeriodClosed(period string) *AppError {
	return newError(http.StatusUnprocessableEntity, CodePeriodClosed,
		fmt.Sprintf("Period %s is closed for modifications", period)).
		WithDetail("period", period)
}

func NewNotFound(entity string, key any) *AppError {
	return newError(http.StatusNotFound, CodeNotFound, entity+" not found").
		WithDetail("entity", entity).
		WithDetail("id", key)
}

// NewDuplicate reports a second record where one per key is allowed (409).
func NewDuplicate(entity, field, value string) *AppError {
	return newError(http.StatusConflict, CodeDuplicate,
		fmt.Sprintf("%s with this %s already exists", entity, field)).
		WithDetail("entity", entity).
		WithDetail("field", field).
		WithDetail("value", value)
}

// NewConcurrentModification reports a stale version on update (409).
func NewConcurrentModification(entity string, key any) *AppError {
	return newError(http.StatusConflict, CodeConcurrentModification,
		"Record was modified by another user. Please refresh and try again.").
		WithDetail("entity", entity).
		WithDetail("id", key)
}

func NewUnauthorized(message string) *AppError {
	return newError(http.StatusUnauthorized, CodeUnauthorized, message)
}

func NewForbidden(message string) *AppError {
	return newError(http.StatusForbidden, CodeForbidden, message)
}

// NewUnavailable reports an unreachable dependency such as an ERP database (503).
func NewUnavailable(component string, cause error) *AppError {
	return newError(http.StatusServiceUnavailable, CodeUnavailable, component+" is unavailable").WithCause(cause)
}

// NewInternal hides cause from the client (500).
func NewInternal(cause error) *AppError {
	return newError(http.StatusInternalServerError, CodeInternal, "Internal server error").WithCause(cause)
}
