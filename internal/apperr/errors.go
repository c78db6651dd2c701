package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

type ErrorCode string

const (
	ErrValidation            ErrorCode = "VALIDATION_ERROR"
	ErrUnauthorized          ErrorCode = "UNAUTHORIZED"
	ErrForbidden             ErrorCode = "FORBIDDEN"
	ErrInvalidCredentials    ErrorCode = "INVALID_CREDENTIALS"
	ErrUsernameTaken         ErrorCode = "USERNAME_TAKEN"
	ErrUserNotFound          ErrorCode = "USER_NOT_FOUND"
	ErrOrderNotFound         ErrorCode = "ORDER_NOT_FOUND"
	ErrInvalidState          ErrorCode = "INVALID_STATE"
	ErrOrderConflict         ErrorCode = "ORDER_CONFLICT"
	ErrAlreadyAccepted       ErrorCode = "ALREADY_ACCEPTED"
	ErrNotAssignedRider      ErrorCode = "NOT_ASSIGNED_RIDER"
	ErrAlreadyPaid           ErrorCode = "ALREADY_PAID"
	ErrInvalidPaymentMethod  ErrorCode = "INVALID_PAYMENT_METHOD"
	ErrCartEmpty             ErrorCode = "CART_EMPTY"
	ErrCapacityReached       ErrorCode = "CAPACITY_REACHED"
	ErrMenuItemNotFound      ErrorCode = "MENU_ITEM_NOT_FOUND"
	ErrMenuItemUnavailable   ErrorCode = "MENU_ITEM_UNAVAILABLE"
	ErrSetNotFound           ErrorCode = "SET_NOT_FOUND"
	ErrIngredientNotFound    ErrorCode = "INGREDIENT_NOT_FOUND"
	ErrVoucherNotFound       ErrorCode = "VOUCHER_NOT_FOUND"
	ErrVoucherExists         ErrorCode = "VOUCHER_ALREADY_EXISTS"
	ErrVoucherInactive       ErrorCode = "VOUCHER_INACTIVE"
	ErrVoucherMinOrderNotMet ErrorCode = "VOUCHER_MIN_ORDER_NOT_MET"
	ErrInvalidImage          ErrorCode = "INVALID_IMAGE"
	ErrStorageUnavailable    ErrorCode = "STORAGE_UNAVAILABLE"
	ErrInternal              ErrorCode = "INTERNAL_ERROR"
)

type Error struct {
	Code       ErrorCode
	Message    string
	StatusCode int
	Details    map[string]any
}

func (e *Error) Error() string {
	return e.Message
}

func New(code ErrorCode, message string, status int, details map[string]any) *Error {
	return &Error{Code: code, Message: message, StatusCode: status, Details: details}
}

func Validation(message string, details map[string]any) *Error {
	return New(ErrValidation, message, http.StatusBadRequest, details)
}

func BadRequest(code ErrorCode, message string) *Error {
	return New(code, message, http.StatusBadRequest, nil)
}

func NotFound(code ErrorCode, message string) *Error {
	return New(code, message, http.StatusNotFound, nil)
}

func Conflict(code ErrorCode, message string) *Error {
	return New(code, message, http.StatusConflict, nil)
}

func Forbidden(message string) *Error {
	return New(ErrForbidden, message, http.StatusForbidden, nil)
}

// InvalidState reports a transition whose precondition does not hold for the current status.
func InvalidState(format string, args ...any) *Error {
	return New(ErrInvalidState, fmt.Sprintf(format, args...), http.StatusConflict, nil)
}

// As unwraps err into an *Error when one is present in its chain.
func As(err error) (*Error, bool) {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// HasCode reports whether err carries the given code.
func HasCode(err error, code ErrorCode) bool {
	appErr, ok := As(err)
	return ok && appErr.Code == code
}
