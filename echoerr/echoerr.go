// Package echoerr plugs a respond.Responder into the echo framework, so that
// echo applications answer every failure with the standard error payload.
//
//	e := echo.New()
//	responder := respond.New(respond.WithTranslator(echoerr.Translator()))
//	e.HTTPErrorHandler = echoerr.HTTPErrorHandler(responder)
//	e.Use(echoerr.Recover())
package echoerr

import (
	stderrors "errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/starius/errshape/errors"
	"github.com/starius/errshape/msgtree"
	"github.com/starius/errshape/respond"
)

// Translate recognizes *echo.HTTPError. A missing message is replaced with
// the status text.
func Translate(err error) (int, msgtree.Tree, bool) {
	var he *echo.HTTPError
	if !stderrors.As(err, &he) {
		return 0, nil, false
	}
	if he.Message == nil {
		return he.Code, msgtree.Text(http.StatusText(he.Code)), true
	}
	return he.Code, msgtree.FromValue(he.Message), true
}

// Translator returns Translate followed by errors.Translate.
func Translator() errors.Translator {
	return errors.Chain(Translate, errors.Translate)
}

// HTTPErrorHandler returns an echo error handler writing the payload built
// by r. Errors on committed responses are classified and logged, but
// nothing more is written.
func HTTPErrorHandler(r *respond.Responder) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		req := c.Request()
		payload, code := r.Handle(req.Context(), err, req)
		if c.Response().Committed {
			return
		}
		if req.Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		_ = c.JSON(code, payload)
	}
}

// Recover turns panics of handlers into *respond.PanicError and passes them
// to the error handler of echo.
func Recover() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) (err error) {
			defer func() {
				v := recover()
				if v == nil {
					return
				}
				if v == http.ErrAbortHandler {
					panic(v)
				}
				c.Error(respond.NewPanicError(v))
			}()
			return next(c)
		}
	}
}
