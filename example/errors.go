package example

import (
	"net/http"

	"github.com/starius/errshape/respond"
)

// AppError is the base error of the notes service. Its message and code
// are shown to clients as is.
type AppError struct {
	Msg     string
	ErrCode string
	Status  int
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func (e *AppError) Message() string {
	return e.Msg
}

func (e *AppError) Code() interface{} {
	return e.ErrCode
}

func (e *AppError) StatusCode() int {
	return e.Status
}

func errInvalidToken(err error) *AppError {
	return &AppError{Msg: "Invalid token", ErrCode: "AUTH001", Status: http.StatusUnauthorized, Err: err}
}

func errBadCredentials() *AppError {
	return &AppError{Msg: "Invalid user or password", ErrCode: "AUTH002", Status: http.StatusUnauthorized}
}

func errNotOwner() *AppError {
	return &AppError{Msg: "The note belongs to another user", ErrCode: "NOTE001", Status: http.StatusForbidden}
}

func init() {
	respond.Register("example.AppError", respond.As[*AppError]())
}
