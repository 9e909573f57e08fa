package errshape

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/starius/errshape/model"
	"github.com/starius/errshape/respond"
)

func TestEncodeError(t *testing.T) {
	own := respond.New(respond.WithLogger(zerolog.Nop()), respond.WithDebug(true))
	fromCtx := respond.New(respond.WithLogger(zerolog.Nop()))

	cases := []struct {
		name      string
		transport *JsonTransport
		ctx       context.Context
		err       error
		wantCode  int
		wantBody  string
	}{
		{
			name:      "fallback responder",
			transport: &JsonTransport{},
			ctx:       context.Background(),
			err:       model.ErrNotFound,
			wantCode:  http.StatusNotFound,
			wantBody:  `{"status":false,"message":["Requested object not found."]}` + "\n",
		},
		{
			name:      "responder from context",
			transport: &JsonTransport{},
			ctx:       context.WithValue(context.Background(), responderType{}, fromCtx),
			err:       model.Invalid("Too short."),
			wantCode:  http.StatusBadRequest,
			wantBody:  `{"status":false,"message":["Too short."]}` + "\n",
		},
		{
			name:      "human",
			transport: &JsonTransport{Responder: own},
			ctx:       context.WithValue(context.Background(), humanType{}, true),
			err:       model.Invalid("Too short."),
			wantCode:  http.StatusBadRequest,
			wantBody:  "{\n  \"status\": false,\n  \"message\": [\n    \"Too short.\"\n  ]\n}\n",
		},
		{
			name: "custom encoder",
			transport: &JsonTransport{
				ErrorEncoder: func(ctx context.Context, w http.ResponseWriter, err error) error {
					w.WriteHeader(http.StatusTeapot)
					_, err = io.WriteString(w, err.Error())
					return err
				},
			},
			ctx:      context.Background(),
			err:      errors.New("custom"),
			wantCode: http.StatusTeapot,
			wantBody: "custom",
		},
	}

	for _, tc := range cases {
		rec := httptest.NewRecorder()
		if err := tc.transport.EncodeError(tc.ctx, rec, tc.err); err != nil {
			t.Errorf("%s: EncodeError failed: %v", tc.name, err)
			continue
		}
		if rec.Code != tc.wantCode {
			t.Errorf("%s: got status %d, want %d", tc.name, rec.Code, tc.wantCode)
		}
		if rec.Body.String() != tc.wantBody {
			t.Errorf("%s: got body %q, want %q", tc.name, rec.Body.String(), tc.wantBody)
		}
	}
}

func TestEncodeErrorPrefersOwnResponder(t *testing.T) {
	var logs bytes.Buffer
	own := respond.New(respond.WithLogger(zerolog.New(&logs)))
	fromCtx := respond.New(respond.WithLogger(zerolog.Nop()))

	transport := &JsonTransport{Responder: own}
	ctx := context.WithValue(context.Background(), responderType{}, fromCtx)
	if err := transport.EncodeError(ctx, httptest.NewRecorder(), errors.New("boom")); err != nil {
		t.Fatalf("EncodeError failed: %v", err)
	}
	if !strings.Contains(logs.String(), "Unhandled error: boom") {
		t.Errorf("own responder did not log the failure, logs: %s", logs.String())
	}
}

func TestDecodeError(t *testing.T) {
	cases := []struct {
		name    string
		status  string
		body    string
		want    *APIError
		wantErr string
	}{
		{
			name:   "payload",
			status: "401 Unauthorized",
			body:   `{"status": false, "message": ["Invalid token"], "code": "AUTH001"}`,
			want: &APIError{
				StatusCode: http.StatusUnauthorized,
				Status:     "401 Unauthorized",
				Messages:   []string{"Invalid token"},
				Code:       "AUTH001",
			},
		},
		{
			name:   "error id",
			status: "500 Internal Server Error",
			body:   `{"status": false, "message": ["Something went wrong."], "error_id": "abc"}`,
			want: &APIError{
				StatusCode: http.StatusInternalServerError,
				Status:     "500 Internal Server Error",
				Messages:   []string{"Something went wrong."},
				ErrorID:    "abc",
			},
		},
		{
			name:    "no messages",
			status:  "400 Bad Request",
			body:    `{"status": false, "message": []}`,
			wantErr: `failed to decode error message {"status": false, "message": []}, HTTP status 400 Bad Request: no messages`,
		},
		{
			name:    "not json",
			status:  "502 Bad Gateway",
			body:    `bad gateway`,
			wantErr: "failed to decode error message bad gateway, HTTP status 502 Bad Gateway: invalid character 'b' looking for beginning of value",
		},
	}

	for _, tc := range cases {
		var code int
		if _, err := fmt.Sscanf(tc.status, "%d", &code); err != nil {
			t.Fatalf("%s: bad status %q", tc.name, tc.status)
		}
		res := &http.Response{
			StatusCode: code,
			Status:     tc.status,
			Body:       io.NopCloser(strings.NewReader(tc.body)),
		}
		err := DefaultTransport.DecodeError(context.Background(), res)
		if tc.want == nil {
			if err == nil || err.Error() != tc.wantErr {
				t.Errorf("%s: got error %v, want %q", tc.name, err, tc.wantErr)
			}
			continue
		}
		var apiErr *APIError
		if !errors.As(err, &apiErr) {
			t.Errorf("%s: got error %v, want *APIError", tc.name, err)
			continue
		}
		if !reflect.DeepEqual(apiErr, tc.want) {
			t.Errorf("%s: got %#v, want %#v", tc.name, apiErr, tc.want)
		}
		if apiErr.HttpCode() != code {
			t.Errorf("%s: HttpCode() = %d, want %d", tc.name, apiErr.HttpCode(), code)
		}
	}
}

func TestDecodeRequestEmptyBody(t *testing.T) {
	type request struct {
		Foo string `json:"foo"`
	}
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(""))
	req := &request{}
	if _, err := DefaultTransport.DecodeRequest(context.Background(), r, req); err != nil {
		t.Errorf("empty body: %v", err)
	}
}
