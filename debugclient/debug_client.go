// Package debugclient wraps an HTTP client and logs every exchange: the
// request as a curl command and the dumped response. Error payloads are
// logged with their error ID, which is what support asks for.
package debugclient

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httputil"
	"sync/atomic"

	"github.com/rs/zerolog"
	"github.com/starius/errshape/respond"
	"moul.io/http2curl"
)

type HttpClient interface {
	Do(req *http.Request) (*http.Response, error)
	CloseIdleConnections()
}

type DebugClient struct {
	impl   HttpClient
	logger zerolog.Logger
	n      uint64
}

func New(impl HttpClient, logger zerolog.Logger) *DebugClient {
	return &DebugClient{
		impl:   impl,
		logger: logger,
	}
}

func (c *DebugClient) Do(req *http.Request) (*http.Response, error) {
	n := atomic.AddUint64(&c.n, 1)

	curl, err := http2curl.GetCurlCommand(req)
	if err != nil {
		return nil, fmt.Errorf("http2curl.GetCurlCommand failed for %d: %w", n, err)
	}
	c.logger.Debug().Uint64("n", n).Str("curl", curl.String()).Msg("client request")

	res, err := c.impl.Do(req)
	if err != nil {
		c.logger.Debug().Uint64("n", n).Err(err).Msg("client request failed")
		return nil, err
	}

	resDump, err := httputil.DumpResponse(res, true)
	if err != nil {
		return nil, fmt.Errorf("httputil.DumpResponse failed for %d: %w", n, err)
	}
	c.logger.Debug().Uint64("n", n).Int("status", res.StatusCode).Str("response", string(resDump)).Msg("server response")

	if res.StatusCode >= http.StatusBadRequest {
		c.logErrorPayload(n, res)
	}

	return res, nil
}

// logErrorPayload peeks into the body; DumpResponse has already replaced
// it with an in-memory copy.
func (c *DebugClient) logErrorPayload(n uint64, res *http.Response) {
	body, err := io.ReadAll(res.Body)
	if err != nil {
		return
	}
	res.Body = io.NopCloser(bytes.NewReader(body))

	var payload respond.Payload
	if err := json.Unmarshal(body, &payload); err != nil || len(payload.Message) == 0 {
		return
	}
	event := c.logger.Warn().Uint64("n", n).Int("status", res.StatusCode).Strs("messages", payload.Message)
	if payload.ErrorID != "" {
		event = event.Str("error_id", payload.ErrorID)
	}
	event.Msg("server returned error")
}

func (c *DebugClient) CloseIdleConnections() {
	c.impl.CloseIdleConnections()
}
