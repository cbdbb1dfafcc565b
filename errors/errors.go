package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

type AppError struct {
	Code    int    `json:"-"`
	Message string `json:"error"`
	Op      string `json:"-"`
	Err     error  `json:"-"`
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

func New(code int, op string, err error, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Op:      op,
		Err:     err,
	}
}

func InvalidInput(op string, err error, message string) *AppError {
	return New(http.StatusBadRequest, op, err, message)
}

func NotFound(op string, err error, message string) *AppError {
	return New(http.StatusNotFound, op, err, message)
}

func Internal(op string, err error, message string) *AppError {
	return New(http.StatusInternalServerError, op, err, message)
}

// Unprocessable marks a well-formed request whose execution failed.
func Unprocessable(op string, err error, message string) *AppError {
	return New(http.StatusUnprocessableEntity, op, err, message)
}

func TooManyRequests(op string, message string) *AppError {
	return New(http.StatusTooManyRequests, op, nil, message)
}

// As returns the outermost AppError in err's chain.
func As(err error) (*AppError, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

func IsNotFound(err error) bool {
	appErr, ok := As(err)
	return ok && appErr.Code == http.StatusNotFound
}
