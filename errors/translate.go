package errors

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"

	"github.com/grpc-ecosystem/grpc-gateway/v2/runtime"
	"github.com/starius/errshape/msgtree"
	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Translator maps an error to an HTTP status and a message tree.
// The last result is false if the error is not recognized.
type Translator func(err error) (int, msgtree.Tree, bool)

// Translate is the default Translator of the toolkit. It recognizes
//   - *CodeError, reporting its detail tree if one is attached;
//   - JSON decoding errors (400);
//   - request bodies over the size limit (413);
//   - any error implementing HttpError;
//   - gRPC status errors, including BadRequest field violations.
func Translate(err error) (int, msgtree.Tree, bool) {
	var codeErr *CodeError
	if stderrors.As(err, &codeErr) {
		if codeErr.detail != nil {
			return codeErr.HttpCode(), codeErr.detail, true
		}
		return codeErr.HttpCode(), msgtree.Text(codeErr.Error()), true
	}

	var syntaxErr *json.SyntaxError
	if stderrors.As(err, &syntaxErr) {
		return http.StatusBadRequest, msgtree.Text(fmt.Sprintf("JSON parse error at offset %d: %v", syntaxErr.Offset, syntaxErr)), true
	}
	var typeErr *json.UnmarshalTypeError
	if stderrors.As(err, &typeErr) {
		msg := msgtree.Text(fmt.Sprintf("Expected %s, got %s.", typeErr.Type, typeErr.Value))
		if typeErr.Field == "" {
			return http.StatusBadRequest, msg, true
		}
		return http.StatusBadRequest, msgtree.Map{{Key: typeErr.Field, Value: msgtree.List{msg}}}, true
	}
	var maxBytesErr *http.MaxBytesError
	if stderrors.As(err, &maxBytesErr) {
		return http.StatusRequestEntityTooLarge, msgtree.Text(fmt.Sprintf("Request body is larger than %d bytes.", maxBytesErr.Limit)), true
	}

	var httpErr HttpError
	if stderrors.As(err, &httpErr) {
		return httpErr.HttpCode(), msgtree.Text(err.Error()), true
	}

	if st, ok := status.FromError(err); ok && st.Code() != codes.OK {
		return runtime.HTTPStatusFromCode(st.Code()), statusTree(st), true
	}

	return 0, nil, false
}

// statusTree prefers field violations over the status message.
func statusTree(st *status.Status) msgtree.Tree {
	var fields msgtree.Map
	for _, detail := range st.Details() {
		badRequest, ok := detail.(*errdetails.BadRequest)
		if !ok {
			continue
		}
		for _, v := range badRequest.GetFieldViolations() {
			fields = appendField(fields, v.GetField(), msgtree.Text(v.GetDescription()))
		}
	}
	if len(fields) == 0 {
		return msgtree.Text(st.Message())
	}
	return fields
}

func appendField(m msgtree.Map, key string, value msgtree.Tree) msgtree.Map {
	for i, f := range m {
		if f.Key == key {
			list, _ := f.Value.(msgtree.List)
			m[i].Value = append(list, value)
			return m
		}
	}
	return append(m, msgtree.Field{Key: key, Value: msgtree.List{value}})
}

// Chain combines translators; the first one recognizing the error wins.
func Chain(translators ...Translator) Translator {
	return func(err error) (int, msgtree.Tree, bool) {
		for _, t := range translators {
			if t == nil {
				continue
			}
			if code, tree, ok := t(err); ok {
				return code, tree, true
			}
		}
		return 0, nil, false
	}
}
