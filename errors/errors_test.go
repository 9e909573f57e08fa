package errors

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/starius/errshape/msgtree"
	"github.com/stretchr/testify/require"
	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type teapotError struct{}

func (teapotError) Error() string { return "short and stout" }
func (teapotError) HttpCode() int { return http.StatusTeapot }

func TestTranslate(t *testing.T) {
	badRequest, err := status.New(codes.InvalidArgument, "bad request").WithDetails(&errdetails.BadRequest{
		FieldViolations: []*errdetails.BadRequest_FieldViolation{
			{Field: "name", Description: "Too short."},
			{Field: "age", Description: "Must be positive."},
			{Field: "name", Description: "Must start with a letter."},
		},
	})
	require.NoError(t, err)

	var syntaxErr error = json.Unmarshal([]byte(`{"a":`), &struct{}{})
	var typeErr error = json.Unmarshal([]byte(`{"age":"old"}`), &struct {
		Age int `json:"age"`
	}{})

	bodyTooLarge := func() error {
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("0123456789"))
		body := http.MaxBytesReader(httptest.NewRecorder(), r.Body, 4)
		_, err := io.ReadAll(body)
		return err
	}()

	cases := []struct {
		name     string
		err      error
		wantCode int
		wantTree msgtree.Tree
		wantOk   bool
	}{
		{
			name:     "not found",
			err:      NotFound("document is not found"),
			wantCode: http.StatusNotFound,
			wantTree: msgtree.Text("document is not found"),
			wantOk:   true,
		},
		{
			name:     "wrapped code error",
			err:      fmt.Errorf("can not find the document with ID 123: %w", NotFound("document is not found")),
			wantCode: http.StatusNotFound,
			wantTree: msgtree.Text("document is not found"),
			wantOk:   true,
		},
		{
			name: "validation",
			err: Validation(msgtree.Map{
				{Key: "email", Value: msgtree.List{msgtree.Text("Enter a valid email address.")}},
			}),
			wantCode: http.StatusBadRequest,
			wantTree: msgtree.Map{
				{Key: "email", Value: msgtree.List{msgtree.Text("Enter a valid email address.")}},
			},
			wantOk: true,
		},
		{
			name:     "internal",
			err:      Internal("all shards failed"),
			wantCode: http.StatusInternalServerError,
			wantTree: msgtree.Text("all shards failed"),
			wantOk:   true,
		},
		{
			name:     "unauthenticated",
			err:      Unauthenticated("no token"),
			wantCode: http.StatusUnauthorized,
			wantTree: msgtree.Text("no token"),
			wantOk:   true,
		},
		{
			name:     "json syntax",
			err:      syntaxErr,
			wantCode: http.StatusBadRequest,
			wantTree: msgtree.Text("JSON parse error at offset 5: unexpected end of JSON input"),
			wantOk:   true,
		},
		{
			name:     "json type",
			err:      typeErr,
			wantCode: http.StatusBadRequest,
			wantTree: msgtree.Map{{Key: "age", Value: msgtree.List{msgtree.Text("Expected int, got string.")}}},
			wantOk:   true,
		},
		{
			name:     "body too large",
			err:      bodyTooLarge,
			wantCode: http.StatusRequestEntityTooLarge,
			wantTree: msgtree.Text("Request body is larger than 4 bytes."),
			wantOk:   true,
		},
		{
			name:     "http error",
			err:      fmt.Errorf("kettle: %w", teapotError{}),
			wantCode: http.StatusTeapot,
			wantTree: msgtree.Text("kettle: short and stout"),
			wantOk:   true,
		},
		{
			name:     "grpc status",
			err:      status.Error(codes.PermissionDenied, "not yours"),
			wantCode: http.StatusForbidden,
			wantTree: msgtree.Text("not yours"),
			wantOk:   true,
		},
		{
			name:     "grpc field violations",
			err:      badRequest.Err(),
			wantCode: http.StatusBadRequest,
			wantTree: msgtree.Map{
				{Key: "name", Value: msgtree.List{msgtree.Text("Too short."), msgtree.Text("Must start with a letter.")}},
				{Key: "age", Value: msgtree.List{msgtree.Text("Must be positive.")}},
			},
			wantOk: true,
		},

		// Not recognized.
		{
			name: "eof",
			err:  io.EOF,
		},
		{
			name: "plain",
			err:  errors.New("some error"),
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			code, tree, ok := Translate(tc.err)
			require.Equal(t, tc.wantOk, ok)
			require.Equal(t, tc.wantCode, code)
			require.Equal(t, tc.wantTree, tree)
		})
	}
}

func TestChain(t *testing.T) {
	gone := func(err error) (int, msgtree.Tree, bool) {
		if errors.Is(err, os.ErrNotExist) {
			return http.StatusGone, msgtree.Text("gone"), true
		}
		return 0, nil, false
	}
	translate := Chain(nil, gone, Translate)

	code, tree, ok := translate(fmt.Errorf("open: %w", os.ErrNotExist))
	require.True(t, ok)
	require.Equal(t, http.StatusGone, code)
	require.Equal(t, msgtree.Text("gone"), tree)

	code, _, ok = translate(NotFound("missing"))
	require.True(t, ok)
	require.Equal(t, http.StatusNotFound, code)

	_, _, ok = translate(io.EOF)
	require.False(t, ok)
}

func TestUnwrap(t *testing.T) {
	cases := []struct {
		err  error
		is   error
		want bool
	}{
		{
			err:  AlreadyExists("document already exists: %w", os.ErrExist),
			is:   os.ErrExist,
			want: true,
		},
		{
			err:  AlreadyExists("document already exists"),
			is:   os.ErrExist,
			want: false,
		},
		{
			err:  AlreadyExists("document already exists: %w", os.ErrExist).WithDetail(msgtree.Text("taken")),
			is:   os.ErrExist,
			want: true,
		},
	}

	for _, tc := range cases {
		got := errors.Is(tc.err, tc.is)
		if got != tc.want {
			t.Errorf("errors.Is(%v, %v) returned %v, want %v.", tc.err, tc.is, got, tc.want)
		}
	}
}

func TestGRPCStatus(t *testing.T) {
	st, ok := status.FromError(fmt.Errorf("wrapped: %w", ResourceExhausted("quota")))
	require.True(t, ok)
	require.Equal(t, codes.ResourceExhausted, st.Code())
	require.Equal(t, "wrapped: quota", st.Message())
	require.Empty(t, st.Details())
}

func TestGRPCStatusDetails(t *testing.T) {
	tree := msgtree.Map{
		{Key: "email", Value: msgtree.List{msgtree.Text("Required."), msgtree.Text("Invalid.")}},
		{Key: "name", Value: msgtree.List{msgtree.Text("Too long.")}},
	}
	st, ok := status.FromError(Validation(tree))
	require.True(t, ok)
	require.Equal(t, codes.InvalidArgument, st.Code())
	require.Len(t, st.Details(), 1)

	// The status alone carries enough to rebuild the tree.
	code, got, ok := Translate(st.Err())
	require.True(t, ok)
	require.Equal(t, http.StatusBadRequest, code)
	require.Equal(t, tree, got)
}

func TestResponse(t *testing.T) {
	r := NewResponse(http.StatusConflict, map[string][]string{"slug": {"Already used."}})
	require.Equal(t, msgtree.Map{{Key: "slug", Value: msgtree.List{msgtree.Text("Already used.")}}}, r.Body)
	require.Equal(t, "409 Conflict: [Already used.]", r.Error())
}
