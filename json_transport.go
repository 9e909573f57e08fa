package errshape

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"

	apierrors "github.com/starius/errshape/errors"
	"github.com/starius/errshape/respond"
)

// JsonTransport implements interface Transport for JSON encoding of requests and responses.
//
// Errors are written as the standard error payload built by a
// respond.Responder: the one in the Responder field, or else the one passed
// to BindRoutes with WithResponder.
//
// To redefine some methods, set corresponding fields in the struct:
//
//	&JsonTransport{RequestDecoder: func ...
type JsonTransport struct {
	Responder *respond.Responder

	RequestDecoder  func(context.Context, *http.Request, interface{}) (context.Context, error)
	ResponseEncoder func(context.Context, http.ResponseWriter, interface{}) error
	ErrorEncoder    func(context.Context, http.ResponseWriter, error) error
	RequestEncoder  func(ctx context.Context, method, url string, req interface{}) (*http.Request, error)
	ResponseDecoder func(context.Context, *http.Response, interface{}) error
	ErrorDecoder    func(context.Context, *http.Response) error
}

type humanType struct{}

type responderType struct{}

type requestType struct{}

func isHuman(ctx context.Context) bool {
	human, _ := ctx.Value(humanType{}).(bool)
	return human
}

func newEncoder(w io.Writer, human bool) *json.Encoder {
	encoder := json.NewEncoder(w)
	if human {
		encoder.SetIndent("", "  ")
	}
	return encoder
}

func (h *JsonTransport) DecodeRequest(ctx context.Context, r *http.Request, req interface{}) (context.Context, error) {
	if h.RequestDecoder != nil {
		return h.RequestDecoder(ctx, r, req)
	}

	if err := json.NewDecoder(r.Body).Decode(req); err != nil && err != io.EOF {
		if err == io.ErrUnexpectedEOF {
			return ctx, apierrors.InvalidArgument("failed to parse request: %v", err)
		}
		return ctx, err
	}

	return ctx, nil
}

func (h *JsonTransport) EncodeResponse(ctx context.Context, w http.ResponseWriter, res interface{}) error {
	if h.ResponseEncoder != nil {
		return h.ResponseEncoder(ctx, w, res)
	}

	w.Header().Set("Content-Type", "application/json")
	return newEncoder(w, isHuman(ctx)).Encode(res)
}

var (
	fallbackResponderOnce sync.Once
	fallbackResponder     *respond.Responder
)

func (h *JsonTransport) responder(ctx context.Context) *respond.Responder {
	if h.Responder != nil {
		return h.Responder
	}
	if r, ok := ctx.Value(responderType{}).(*respond.Responder); ok {
		return r
	}
	fallbackResponderOnce.Do(func() {
		fallbackResponder = NewDefaultConfig().getResponder()
	})
	return fallbackResponder
}

func (h *JsonTransport) EncodeError(ctx context.Context, w http.ResponseWriter, err error) error {
	if h.ErrorEncoder != nil {
		return h.ErrorEncoder(ctx, w, err)
	}

	req, _ := ctx.Value(requestType{}).(*http.Request)
	payload, code := h.responder(ctx).Handle(ctx, err, req)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	return newEncoder(w, isHuman(ctx)).Encode(payload)
}

func (h *JsonTransport) EncodeRequest(ctx context.Context, method, url string, req interface{}) (*http.Request, error) {
	if h.RequestEncoder != nil {
		return h.RequestEncoder(ctx, method, url, req)
	}

	requestJSON, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}
	request, err := http.NewRequestWithContext(ctx, method, url, bytes.NewReader(requestJSON))
	if err != nil {
		return nil, err
	}
	request.Header.Set("Content-Type", "application/json")
	return request, nil
}

func (h *JsonTransport) DecodeResponse(ctx context.Context, res *http.Response, response interface{}) error {
	if h.ResponseDecoder != nil {
		return h.ResponseDecoder(ctx, res, response)
	}

	return json.NewDecoder(res.Body).Decode(response)
}

func (h *JsonTransport) DecodeError(ctx context.Context, res *http.Response) error {
	if h.ErrorDecoder != nil {
		return h.ErrorDecoder(ctx, res)
	}

	buf, err := io.ReadAll(res.Body)
	if err != nil {
		return err
	}
	var payload respond.Payload
	if err := json.Unmarshal(buf, &payload); err != nil || len(payload.Message) == 0 {
		if err == nil {
			err = errors.New("no messages")
		}
		return fmt.Errorf("failed to decode error message %s, HTTP status %s: %v", string(buf), res.Status, err)
	}
	return &APIError{
		StatusCode: res.StatusCode,
		Status:     res.Status,
		Messages:   payload.Message,
		Code:       payload.Code,
		ErrorID:    payload.ErrorID,
	}
}

// APIError is returned by Client when the server responds with an error
// payload.
type APIError struct {
	StatusCode int
	Status     string
	Messages   []string
	Code       interface{}
	ErrorID    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API returned error with HTTP status %s: %s", e.Status, strings.Join(e.Messages, "; "))
}

func (e *APIError) HttpCode() int {
	return e.StatusCode
}
