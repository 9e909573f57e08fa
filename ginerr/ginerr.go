// Package ginerr plugs a respond.Responder into gin.
//
// Handlers report failures with c.Error(err) and return without writing a
// response; the middleware answers with the standard error payload. Do not
// use c.AbortWithError, it writes the status before the middleware runs.
package ginerr

import (
	stderrors "errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/starius/errshape/errors"
	"github.com/starius/errshape/msgtree"
	"github.com/starius/errshape/respond"
)

// Middleware handles the last error of the request and panics of the
// handlers after it. Failures after the response was written are still
// classified and logged; only the payload is not sent.
func Middleware(r *respond.Responder) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			v := recover()
			if v == nil {
				return
			}
			if v == http.ErrAbortHandler {
				panic(v)
			}
			write(c, r, respond.NewPanicError(v))
		}()

		c.Next()

		if len(c.Errors) == 0 {
			return
		}
		write(c, r, c.Errors.Last().Err)
	}
}

func write(c *gin.Context, r *respond.Responder, err error) {
	payload, code := r.Handle(c.Request.Context(), err, c.Request)
	if c.Writer.Written() {
		c.Abort()
		return
	}
	c.AbortWithStatusJSON(code, payload)
}

// Translate recognizes validator.ValidationErrors, as returned by binding
// of gin, and reports them per field with status 400.
func Translate(err error) (int, msgtree.Tree, bool) {
	var verrs validator.ValidationErrors
	if !stderrors.As(err, &verrs) {
		return 0, nil, false
	}
	var fields msgtree.Map
	for _, fe := range verrs {
		fields = addMessage(fields, fe.Field(), fieldMessage(fe))
	}
	return http.StatusBadRequest, fields, true
}

func addMessage(m msgtree.Map, key, message string) msgtree.Map {
	for i, f := range m {
		if f.Key == key {
			list, _ := f.Value.(msgtree.List)
			m[i].Value = append(list, msgtree.Text(message))
			return m
		}
	}
	return append(m, msgtree.Field{Key: key, Value: msgtree.List{msgtree.Text(message)}})
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "email":
		return "Enter a valid email address."
	case "min":
		return fmt.Sprintf("Ensure this value is at least %s.", fe.Param())
	case "max":
		return fmt.Sprintf("Ensure this value is at most %s.", fe.Param())
	case "oneof":
		return fmt.Sprintf("Must be one of: %s.", fe.Param())
	}
	return fmt.Sprintf("Failed on the %q rule.", fe.Tag())
}

// Translator returns Translate followed by errors.Translate.
func Translator() errors.Translator {
	return errors.Chain(Translate, errors.Translate)
}
