package errshape

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"reflect"

	"github.com/rs/zerolog"
)

// HttpClient is the part of *http.Client used by Client.
type HttpClient interface {
	Do(req *http.Request) (*http.Response, error)
	CloseIdleConnections()
}

// Client is used on client-side to call remote methods provided by the API.
// Error payloads returned by the server are converted to *APIError.
type Client struct {
	routeMap      map[signature]Route
	client        HttpClient
	baseURL       string
	logger        zerolog.Logger
	authorization string
	maxBody       int64
}

type signature struct {
	request  reflect.Type
	response reflect.Type
}

// NewClient creates new instance of client.
//
// The list of routes must provide all routes that this client is aware of.
// Paths from the table of routes are appended to baseURL to generate final
// URL used by HTTP client.
// All pairs of (request type, response type) must be unique in the table
// of routes.
func NewClient(routes []Route, baseURL string, opts ...Option) *Client {
	routeMap := make(map[signature]Route, len(routes))
	for _, route := range routes {
		handlerType := reflect.TypeOf(handlerFunc(route.Handler))
		validateHandler(handlerType, route.Path)
		key := signature{
			request:  handlerType.In(1),
			response: handlerType.Out(0),
		}
		if _, has := routeMap[key]; has {
			panic(fmt.Sprintf("Already has a handler with signature %v.", key))
		}
		routeMap[key] = route
	}

	config := NewDefaultConfig()
	for _, opt := range opts {
		opt(config)
	}
	var client HttpClient = &http.Client{
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
	if config.client != nil {
		client = config.client
	}

	return &Client{
		routeMap:      routeMap,
		client:        client,
		baseURL:       baseURL,
		logger:        config.logger,
		authorization: config.authorization,
		maxBody:       config.maxBody,
	}
}

// Call calls remote method deduced by request and response types.
// Both request and response must be pointers to structs.
// The method must be called on exactly the same types as the
// corresponding method of a service.
func (c *Client) Call(ctx context.Context, response, request interface{}) error {
	key := signature{
		request:  reflect.TypeOf(request),
		response: reflect.TypeOf(response),
	}
	route, has := c.routeMap[key]
	if !has {
		panic(fmt.Sprintf("No registered method with signature %v %v.", key.request, key.response))
	}

	t := route.Transport
	if t == nil {
		t = DefaultTransport
	}

	req, err := t.EncodeRequest(ctx, route.Method, c.baseURL+route.Path, request)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}

	if c.authorization != "" {
		req.Header.Set("Authorization", c.authorization)
	}

	res, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	res.Body = http.MaxBytesReader(nil, res.Body, c.maxBody)
	defer func() {
		if err := res.Body.Close(); err != nil {
			c.logger.Error().Err(err).Msg("failed to close response body")
		}
	}()

	if 200 <= res.StatusCode && res.StatusCode < 300 {
		// Handle all 2xx responses as success.
		return t.DecodeResponse(req.Context(), res, response)
	}
	return t.DecodeError(req.Context(), res)
}

func (c *Client) Close() error {
	c.client.CloseIdleConnections()

	if closer, ok := c.client.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			return err
		}
	}

	return nil
}
