package errors

import (
	"errors"
	"fmt"
)

// ErrorCode identifies a class of application error
type ErrorCode int

// AppError represents an application error
type AppError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Err     error     `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Error codes. Everything below ErrInternal is an expected business-rule
// outcome and is returned to the caller as-is; ErrInternal is logged and
// surfaced as a generic failure.
const (
	ErrNotFound ErrorCode = iota + 1000
	ErrBadRequest
	ErrUnauthorized
	ErrInvalidStatus
	ErrInvalidTransition
	ErrNotReschedulable
	ErrPastDate
	ErrNoAvailabilityWindow
	ErrDoubleBooked
	ErrSlotContended
	ErrConcurrentUpdate
	ErrInternal
)

func (c ErrorCode) String() string {
	switch c {
	case ErrNotFound:
		return "not_found"
	case ErrBadRequest:
		return "bad_request"
	case ErrUnauthorized:
		return "unauthorized"
	case ErrInvalidStatus:
		return "invalid_status"
	case ErrInvalidTransition:
		return "invalid_transition"
	case ErrNotReschedulable:
		return "not_reschedulable"
	case ErrPastDate:
		return "past_date"
	case ErrNoAvailabilityWindow:
		return "no_availability_window"
	case ErrDoubleBooked:
		return "double_booked"
	case ErrSlotContended:
		return "slot_contended"
	case ErrConcurrentUpdate:
		return "concurrent_update"
	default:
		return "internal"
	}
}

// CodeOf extracts the ErrorCode from err, or ErrInternal when err is not
// an AppError.
func CodeOf(err error) ErrorCode {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ErrInternal
}

// IsExpected reports whether err is an expected business-rule outcome
// rather than a system failure.
func IsExpected(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code != ErrInternal
}

// Error constructors
func NotFound(resource string, err error) *AppError {
	return &AppError{
		Code:    ErrNotFound,
		Message: fmt.Sprintf("%s not found", resource),
		Err:     err,
	}
}

func BadRequest(message string, err error) *AppError {
	return &AppError{
		Code:    ErrBadRequest,
		Message: message,
		Err:     err,
	}
}

func Unauthorized(message string) *AppError {
	if message == "" {
		message = "not permitted"
	}
	return &AppError{
		Code:    ErrUnauthorized,
		Message: message,
	}
}

func InvalidStatus(value string) *AppError {
	return &AppError{
		Code:    ErrInvalidStatus,
		Message: fmt.Sprintf("unrecognized appointment status %q", value),
	}
}

func InvalidTransition(from, to string) *AppError {
	return &AppError{
		Code:    ErrInvalidTransition,
		Message: fmt.Sprintf("appointment cannot move from %s to %s", from, to),
	}
}

func NotReschedulable(status string) *AppError {
	return &AppError{
		Code:    ErrNotReschedulable,
		Message: fmt.Sprintf("appointment in status %s cannot be rescheduled", status),
	}
}

func PastDate() *AppError {
	return &AppError{
		Code:    ErrPastDate,
		Message: "appointment time must be in the future",
	}
}

func NoAvailabilityWindow() *AppError {
	return &AppError{
		Code:    ErrNoAvailabilityWindow,
		Message: "doctor is not available at the requested time",
	}
}

func DoubleBooked() *AppError {
	return &AppError{
		Code:    ErrDoubleBooked,
		Message: "doctor already has an appointment in this time slot",
	}
}

func SlotContended() *AppError {
	return &AppError{
		Code:    ErrSlotContended,
		Message: "time slot is being booked by another request, please retry",
	}
}

func ConcurrentUpdate() *AppError {
	return &AppError{
		Code:    ErrConcurrentUpdate,
		Message: "appointment was modified by another request, please retry",
	}
}

func Internal(err error) *AppError {
	return &AppError{
		Code:    ErrInternal,
		Message: "internal server error",
		Err:     err,
	}
}
