package util

import (
	"errors"
	"fmt"
	"net/http"
)

// Error codes shared by services and the HTTP layer.
const (
	CodeValidation                    = "VALIDATION_FAILED"
	CodeNotFound                      = "NOT_FOUND"
	CodeUnauthorized                  = "UNAUTHORIZED"
	CodeForbidden                     = "FORBIDDEN"
	CodeConflict                      = "CONFLICT"
	CodeNoAvailableSpot               = "NO_AVAILABLE_SPOT"
	CodeAlreadyReleased               = "ALREADY_RELEASED"
	CodeInsufficientRemovableCapacity = "INSUFFICIENT_REMOVABLE_CAPACITY"
	CodeLotNotEmpty                   = "LOT_NOT_EMPTY"
	CodeDuplicateIdentity             = "DUPLICATE_IDENTITY"
	CodeRequestCancelled              = "REQUEST_CANCELLED"
	CodeInternal                      = "INTERNAL_ERROR"
)

// DomainError standardizes application errors.
type DomainError struct {
	Code       string
	Message    string
	HTTPStatus int
	Details    map[string]any
	Err        error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError constructs a DomainError.
func NewDomainError(code, message string, status int, details map[string]any) *DomainError {
	return &DomainError{Code: code, Message: message, HTTPStatus: status, Details: details}
}

func NewValidationError(message string, details map[string]any) error {
	return NewDomainError(CodeValidation, message, http.StatusBadRequest, details)
}

func NewNotFound(resource string, details map[string]any) error {
	if details == nil {
		details = map[string]any{}
	}
	return &DomainError{
		Code:       CodeNotFound,
		Message:    fmt.Sprintf("%s not found", resource),
		HTTPStatus: http.StatusNotFound,
		Details:    details,
	}
}

// NewUnauthorized reports missing, invalid or revoked credentials (401).
func NewUnauthorized(message string) error {
	return NewDomainError(CodeUnauthorized, message, http.StatusUnauthorized, nil)
}

// NewForbidden reports an authenticated caller acting outside its role or
// on a reservation it does not own (403). Ownership and role failures use
// CodeForbidden, never CodeUnauthorized.
func NewForbidden(message string) error {
	return NewDomainError(CodeForbidden, message, http.StatusForbidden, nil)
}

// NewConflict reports a lost race against a concurrent writer. Callers may
// retry the whole operation.
func NewConflict(message string, err error) error {
	return &DomainError{
		Code:       CodeConflict,
		Message:    message,
		HTTPStatus: http.StatusConflict,
		Details:    map[string]any{"retryable": true},
		Err:        err,
	}
}

func NewNoAvailableSpot(lotID string) error {
	return NewDomainError(CodeNoAvailableSpot, "no available spot in this lot", http.StatusConflict,
		map[string]any{"lot_id": lotID})
}

func NewAlreadyReleased(reservationID string) error {
	return NewDomainError(CodeAlreadyReleased, "reservation already released", http.StatusConflict,
		map[string]any{"reservation_id": reservationID})
}

func NewInsufficientRemovableCapacity(lotID string, requested, removable int) error {
	return NewDomainError(CodeInsufficientRemovableCapacity, "not enough available spots to shrink lot", http.StatusConflict,
		map[string]any{"lot_id": lotID, "requested": requested, "removable": removable})
}

func NewLotNotEmpty(lotID string, occupied int) error {
	return NewDomainError(CodeLotNotEmpty, "cannot delete lot with occupied spots", http.StatusConflict,
		map[string]any{"lot_id": lotID, "occupied": occupied})
}

func NewDuplicateIdentity(field string) error {
	return NewDomainError(CodeDuplicateIdentity, fmt.Sprintf("%s already registered", field), http.StatusConflict,
		map[string]any{"field": field})
}

func NewRequestCancelled(err error) error {
	return &DomainError{
		Code:       CodeRequestCancelled,
		Message:    "request cancelled or timed out",
		HTTPStatus: http.StatusServiceUnavailable,
		Err:        err,
	}
}

func NewInternalError(err error) error {
	return &DomainError{
		Code:       CodeInternal,
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// ToDomainError converts generic errors to DomainError.
func ToDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	return &DomainError{
		Code:       CodeInternal,
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// MapError converts err to a DomainError, leaving nil untouched.
func MapError(err error) error {
	if err == nil {
		return nil
	}
	return ToDomainError(err)
}

// HasCode reports whether err carries a DomainError with the given code.
func HasCode(err error, code string) bool {
	var domainErr *DomainError
	if !errors.As(err, &domainErr) {
		return false
	}
	return domainErr.Code == code
}
