// Package errors holds the errors the toolkit itself understands: errors
// carrying a gRPC code, request validation errors with per-field messages
// and manual responses built by handlers.
package errors

import (
	"fmt"

	"github.com/grpc-ecosystem/grpc-gateway/v2/runtime"
	"github.com/starius/errshape/msgtree"
	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// HttpError is implemented by errors which know their HTTP status.
type HttpError interface {
	HttpCode() int
}

type CodeError struct {
	code   codes.Code
	err    error
	detail msgtree.Tree
}

func (e *CodeError) Error() string {
	return e.err.Error()
}

func (e *CodeError) Unwrap() error {
	return e.err
}

func (e *CodeError) Code() codes.Code {
	return e.code
}

func (e *CodeError) HttpCode() int {
	return runtime.HTTPStatusFromCode(e.code)
}

// GRPCStatus allows returning CodeError from gRPC handlers as is. Fields of
// a Map detail travel as BadRequest field violations.
func (e *CodeError) GRPCStatus() *status.Status {
	st := status.New(e.code, e.err.Error())
	fields, ok := e.detail.(msgtree.Map)
	if !ok || len(fields) == 0 {
		return st
	}
	badRequest := &errdetails.BadRequest{}
	for _, f := range fields {
		for _, msg := range msgtree.Flatten(f.Value) {
			badRequest.FieldViolations = append(badRequest.FieldViolations, &errdetails.BadRequest_FieldViolation{
				Field:       f.Key,
				Description: msg,
			})
		}
	}
	withDetails, err := st.WithDetails(badRequest)
	if err != nil {
		return st
	}
	return withDetails
}

// Detail returns the message tree attached with WithDetail, or nil.
func (e *CodeError) Detail() msgtree.Tree {
	return e.detail
}

// WithDetail returns a copy of the error carrying per-field messages.
// When detail is set, clients see the flattened detail instead of Error().
func (e *CodeError) WithDetail(detail msgtree.Tree) *CodeError {
	return &CodeError{
		code:   e.code,
		err:    e.err,
		detail: detail,
	}
}

func makeError(code codes.Code, format string, a ...interface{}) *CodeError {
	return &CodeError{
		code: code,
		err:  fmt.Errorf(format, a...),
	}
}

// Validation reports malformed input. Each leaf of detail becomes one
// message of the response.
//
//	errors.Validation(msgtree.Map{
//		{Key: "email", Value: msgtree.List{msgtree.Text("Enter a valid email address.")}},
//	})
func Validation(detail msgtree.Tree) *CodeError {
	return makeError(codes.InvalidArgument, "invalid input").WithDetail(detail)
}

// Canceled indicates the operation was canceled by the caller.
func Canceled(format string, a ...interface{}) *CodeError {
	return makeError(codes.Canceled, format, a...)
}

// Unknown error, raised by APIs that do not return enough information.
func Unknown(format string, a ...interface{}) *CodeError {
	return makeError(codes.Unknown, format, a...)
}

// InvalidArgument indicates the client specified an invalid argument,
// regardless of the state of the system.
func InvalidArgument(format string, a ...interface{}) *CodeError {
	return makeError(codes.InvalidArgument, format, a...)
}

// DeadlineExceeded means the operation expired before completion.
func DeadlineExceeded(format string, a ...interface{}) *CodeError {
	return makeError(codes.DeadlineExceeded, format, a...)
}

// NotFound means some requested entity was not found.
func NotFound(format string, a ...interface{}) *CodeError {
	return makeError(codes.NotFound, format, a...)
}

// AlreadyExists means the entity a client attempted to create already exists.
func AlreadyExists(format string, a ...interface{}) *CodeError {
	return makeError(codes.AlreadyExists, format, a...)
}

// PermissionDenied indicates the identified caller may not execute the
// operation. Use Unauthenticated when the caller is not identified.
func PermissionDenied(format string, a ...interface{}) *CodeError {
	return makeError(codes.PermissionDenied, format, a...)
}

// ResourceExhausted indicates a quota or some other resource ran out.
func ResourceExhausted(format string, a ...interface{}) *CodeError {
	return makeError(codes.ResourceExhausted, format, a...)
}

// FailedPrecondition indicates the system is not in a state required for
// the operation. The client should not retry until the state is fixed.
func FailedPrecondition(format string, a ...interface{}) *CodeError {
	return makeError(codes.FailedPrecondition, format, a...)
}

// Aborted indicates the operation was aborted by a concurrency conflict,
// e.g. a transaction abort.
func Aborted(format string, a ...interface{}) *CodeError {
	return makeError(codes.Aborted, format, a...)
}

// OutOfRange means the operation was attempted past the valid range.
func OutOfRange(format string, a ...interface{}) *CodeError {
	return makeError(codes.OutOfRange, format, a...)
}

// Unimplemented indicates the operation is not supported.
func Unimplemented(format string, a ...interface{}) *CodeError {
	return makeError(codes.Unimplemented, format, a...)
}

// Internal means some invariant of the system is broken.
func Internal(format string, a ...interface{}) *CodeError {
	return makeError(codes.Internal, format, a...)
}

// Unavailable indicates a transient failure; retrying may help.
func Unavailable(format string, a ...interface{}) *CodeError {
	return makeError(codes.Unavailable, format, a...)
}

// DataLoss indicates unrecoverable data loss or corruption.
func DataLoss(format string, a ...interface{}) *CodeError {
	return makeError(codes.DataLoss, format, a...)
}

// Unauthenticated indicates missing or invalid credentials.
func Unauthenticated(format string, a ...interface{}) *CodeError {
	return makeError(codes.Unauthenticated, format, a...)
}
