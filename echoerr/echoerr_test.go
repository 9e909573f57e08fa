package echoerr

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/starius/errshape/errors"
	"github.com/starius/errshape/model"
	"github.com/starius/errshape/msgtree"
	"github.com/starius/errshape/respond"
	"github.com/stretchr/testify/require"
)

func newEcho(logs *bytes.Buffer) *echo.Echo {
	responder := respond.New(
		respond.WithLogger(zerolog.New(logs)),
		respond.WithTranslator(Translator()),
	)

	e := echo.New()
	e.HTTPErrorHandler = HTTPErrorHandler(responder)
	e.Use(Recover())

	e.GET("/http-error", func(c echo.Context) error {
		return echo.NewHTTPError(http.StatusForbidden, "Not yours.")
	})
	e.GET("/http-error-map", func(c echo.Context) error {
		return echo.NewHTTPError(http.StatusBadRequest, map[string]interface{}{
			"title": []string{"Required."},
			"body":  "Too short.",
		})
	})
	e.GET("/http-error-empty", func(c echo.Context) error {
		return &echo.HTTPError{Code: http.StatusTeapot}
	})
	e.GET("/response", func(c echo.Context) error {
		return errors.NewResponse(http.StatusConflict, []string{"Already exists."})
	})
	e.GET("/missing", func(c echo.Context) error {
		return fmt.Errorf("load note: %w", sql.ErrNoRows)
	})
	e.GET("/invalid", func(c echo.Context) error {
		return model.Invalid("Title is empty.")
	})
	e.GET("/internal", func(c echo.Context) error {
		return fmt.Errorf("disk full")
	})
	e.GET("/panic", func(c echo.Context) error {
		panic("boom")
	})
	e.GET("/committed", func(c echo.Context) error {
		if err := c.String(http.StatusOK, "partial"); err != nil {
			return err
		}
		return fmt.Errorf("too late")
	})
	e.GET("/committed-panic", func(c echo.Context) error {
		if err := c.String(http.StatusOK, "partial"); err != nil {
			return err
		}
		panic("late boom")
	})

	return e
}

func TestHTTPErrorHandler(t *testing.T) {
	var logs bytes.Buffer
	e := newEcho(&logs)

	cases := []struct {
		path        string
		wantCode    int
		wantPayload string
	}{
		{
			path:        "/http-error",
			wantCode:    http.StatusForbidden,
			wantPayload: `{"status": false, "message": ["Not yours."]}`,
		},
		{
			path:        "/http-error-map",
			wantCode:    http.StatusBadRequest,
			wantPayload: `{"status": false, "message": ["Too short.", "Required."]}`,
		},
		{
			path:        "/http-error-empty",
			wantCode:    http.StatusTeapot,
			wantPayload: `{"status": false, "message": ["I'm a teapot"]}`,
		},
		{
			path:        "/response",
			wantCode:    http.StatusConflict,
			wantPayload: `{"status": false, "message": ["Already exists."]}`,
		},
		{
			path:        "/missing",
			wantCode:    http.StatusNotFound,
			wantPayload: `{"status": false, "message": ["Requested object not found."]}`,
		},
		{
			path:        "/invalid",
			wantCode:    http.StatusBadRequest,
			wantPayload: `{"status": false, "message": ["Title is empty."]}`,
		},
		{
			path:        "/no-such-route",
			wantCode:    http.StatusNotFound,
			wantPayload: `{"status": false, "message": ["Not Found"]}`,
		},
	}

	for _, tc := range cases {
		t.Run(tc.path, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tc.path, nil)
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)
			require.Equal(t, tc.wantCode, rec.Code)
			require.JSONEq(t, tc.wantPayload, rec.Body.String())
		})
	}
}

func TestUnclassified(t *testing.T) {
	for _, path := range []string{"/internal", "/panic"} {
		t.Run(path, func(t *testing.T) {
			var logs bytes.Buffer
			e := newEcho(&logs)

			req := httptest.NewRequest(http.MethodGet, path, nil)
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)
			require.Equal(t, http.StatusInternalServerError, rec.Code)

			var payload respond.Payload
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
			require.False(t, payload.Status)
			require.NotEmpty(t, payload.ErrorID)
			require.Contains(t, logs.String(), payload.ErrorID)
		})
	}
}

func TestCommitted(t *testing.T) {
	cases := []struct {
		path        string
		wantMessage string
	}{
		{path: "/committed", wantMessage: "too late"},
		{path: "/committed-panic", wantMessage: "late boom"},
	}

	for _, tc := range cases {
		t.Run(tc.path, func(t *testing.T) {
			var logs bytes.Buffer
			e := newEcho(&logs)

			req := httptest.NewRequest(http.MethodGet, tc.path, nil)
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)
			require.Equal(t, http.StatusOK, rec.Code)
			require.Equal(t, "partial", rec.Body.String())

			var entry map[string]interface{}
			require.NoError(t, json.Unmarshal(logs.Bytes(), &entry))
			require.Equal(t, "error", entry["level"])
			require.NotEmpty(t, entry["error_id"])
			require.Contains(t, entry["message"], tc.wantMessage)
		})
	}
}

func TestHead(t *testing.T) {
	var logs bytes.Buffer
	e := newEcho(&logs)
	e.HEAD("/head", func(c echo.Context) error {
		return echo.ErrUnauthorized
	})

	req := httptest.NewRequest(http.MethodHead, "/head", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Empty(t, rec.Body.String())
}

func TestTranslate(t *testing.T) {
	_, _, ok := Translate(fmt.Errorf("plain"))
	require.False(t, ok)

	code, tree, ok := Translate(fmt.Errorf("wrapped: %w", echo.NewHTTPError(http.StatusGone, "Gone for good.")))
	require.True(t, ok)
	require.Equal(t, http.StatusGone, code)
	require.Equal(t, []string{"Gone for good."}, msgtree.Flatten(tree))

	// Errors of the toolkit still pass through the chained translator.
	code, tree, ok = Translator()(errors.NotFound("no note"))
	require.True(t, ok)
	require.Equal(t, http.StatusNotFound, code)
	require.Equal(t, []string{"no note"}, msgtree.Flatten(tree))
}
