package failure

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Kind classifies a Failure so callers can branch on the outcome without parsing messages.
type Kind string

const (
	KindBadRequest         Kind = "bad_request"
	KindUnauthorized       Kind = "unauthorized"
	KindForbidden          Kind = "forbidden"
	KindNotFound           Kind = "not_found"
	KindConflict           Kind = "conflict"
	KindInternal           Kind = "internal"
	KindValidation         Kind = "validation_error"
	KindCapacityExceeded   Kind = "capacity_exceeded"
	KindSlotConflict       Kind = "slot_conflict"
	KindInsufficientTokens Kind = "insufficient_tokens"
	KindAlreadyCancelled   Kind = "already_cancelled"
	KindPaymentGateway     Kind = "payment_gateway_error"
	KindInconsistentState  Kind = "inconsistent_state"
)

const inconsistentStateNotice = "booking could not be completed, please try again later"

// Failure is a wrapper for error messages and codes using standard HTTP response codes.
type Failure struct {
	Code    int      `json:"code"`
	Message string   `json:"message"`
	Kind    Kind     `json:"kind,omitempty"`
	Fields  []string `json:"fields,omitempty"`
	cause   error
}

var ForbiddenError = &Failure{Code: http.StatusForbidden, Message: "You don't have the required permissions", Kind: KindForbidden}

// Error returns the error code and message in a formatted string.
func (e *Failure) Error() string {
	return e.Message
}

// Unwrap exposes the underlying cause, if any.
func (e *Failure) Unwrap() error {
	return e.cause
}

// BadRequest returns a new Failure with code for bad requests.
func BadRequest(err error) error {
	if err != nil {
		return &Failure{
			Code:    http.StatusBadRequest,
			Message: err.Error(),
			Kind:    KindBadRequest,
		}
	}

	return nil
}

// BadRequestFromString returns a new Failure with code for bad requests with message set from string.
func BadRequestFromString(msg string) error {
	return &Failure{
		Code:    http.StatusBadRequest,
		Message: msg,
		Kind:    KindBadRequest,
	}
}

// Unauthorized returns a new Failure with code for unauthorized requests.
func Unauthorized(msg string) error {
	return &Failure{
		Code:    http.StatusUnauthorized,
		Message: msg,
		Kind:    KindUnauthorized,
	}
}

// InternalError returns a new Failure with code for internal error and message derived from an error interface.
func InternalError(err error) error {
	if err != nil {
		return &Failure{
			Code:    http.StatusInternalServerError,
			Message: err.Error(),
			Kind:    KindInternal,
			cause:   err,
		}
	}

	return nil
}

// NotFound returns a new Failure with code for entity not found.
func NotFound(entityName string) error {
	return &Failure{
		Code:    http.StatusNotFound,
		Message: entityName,
		Kind:    KindNotFound,
	}
}

// Conflict returns a new Failure with code for conflict situations.
func Conflict(message string) error {
	return &Failure{
		Code:    http.StatusConflict,
		Message: message,
		Kind:    KindConflict,
	}
}

func Forbidden(msg string) error {
	return &Failure{
		Code:    http.StatusForbidden,
		Message: msg,
		Kind:    KindForbidden,
	}
}

// Validation reports every field-level issue found in a request.
func Validation(issues ...string) error {
	return &Failure{
		Code:    http.StatusUnprocessableEntity,
		Message: "invalid request: " + strings.Join(issues, "; "),
		Kind:    KindValidation,
		Fields:  issues,
	}
}

// CapacityExceeded reports a slot that cannot hold the requested guests.
func CapacityExceeded(remaining, requested int) error {
	if remaining < 0 {
		remaining = 0
	}

	return &Failure{
		Code:    http.StatusConflict,
		Message: fmt.Sprintf("slot has %d place(s) left, %d requested", remaining, requested),
		Kind:    KindCapacityExceeded,
	}
}

// SlotConflict reports a private/communal clash on a slot.
func SlotConflict(msg string) error {
	return &Failure{
		Code:    http.StatusConflict,
		Message: msg,
		Kind:    KindSlotConflict,
	}
}

// InsufficientTokens reports a token allocation larger than the usable balance.
func InsufficientTokens(available, requested int) error {
	return &Failure{
		Code:    http.StatusConflict,
		Message: fmt.Sprintf("insufficient session tokens: %d available, %d requested", available, requested),
		Kind:    KindInsufficientTokens,
	}
}

// AlreadyCancelled is returned when a booking is cancelled twice.
func AlreadyCancelled(bookingID string) error {
	return &Failure{
		Code:    http.StatusConflict,
		Message: fmt.Sprintf("booking %s is already cancelled", bookingID),
		Kind:    KindAlreadyCancelled,
	}
}

// PaymentGateway wraps a failed or rejected call to the payment provider.
func PaymentGateway(err error) error {
	return &Failure{
		Code:    http.StatusBadGateway,
		Message: "payment provider unavailable, please try again",
		Kind:    KindPaymentGateway,
		cause:   err,
	}
}

// InconsistentState marks a multi-step write that failed midway. The message shown to users is
// generic, the cause stays reachable through errors.Unwrap for operators.
func InconsistentState(operation string, err error) error {
	return &Failure{
		Code:    http.StatusInternalServerError,
		Message: inconsistentStateNotice,
		Kind:    KindInconsistentState,
		cause:   fmt.Errorf("%s: %w", operation, err),
	}
}

// GetCode returns the error code of an error interface.
func GetCode(err error) int {
	var fail *Failure
	if errors.As(err, &fail) {
		return fail.Code
	}

	return http.StatusInternalServerError
}

// GetKind returns the kind of a Failure, or KindInternal for any other error.
func GetKind(err error) Kind {
	var fail *Failure
	if errors.As(err, &fail) && fail.Kind != "" {
		return fail.Kind
	}

	return KindInternal
}

// Is reports whether err is a Failure of the given kind.
func Is(err error, kind Kind) bool {
	if err == nil {
		return false
	}

	return GetKind(err) == kind
}
