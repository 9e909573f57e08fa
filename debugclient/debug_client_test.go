package debugclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/starius/errshape"
	"github.com/stretchr/testify/require"
)

func TestDebugClient(t *testing.T) {
	type HelloRequest struct {
		Foo int `json:"foo"`
	}
	type HelloResponse struct {
		Bar int `json:"bar"`
	}

	helloHandler := func(ctx context.Context, req *HelloRequest) (res *HelloResponse, err error) {
		if req.Foo < 0 {
			return nil, fmt.Errorf("negative foo")
		}
		return &HelloResponse{Bar: req.Foo + 1}, nil
	}

	routes := []errshape.Route{
		{
			Method:  http.MethodPost,
			Path:    "/hello",
			Handler: helloHandler,
		},
	}

	mux := http.NewServeMux()
	errshape.BindRoutes(mux, routes, errshape.Logger(zerolog.Nop()))
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	var log bytes.Buffer
	debugClient := New(http.DefaultClient, zerolog.New(&log))
	client := errshape.NewClient(routes, server.URL, errshape.CustomClient(debugClient))
	t.Cleanup(func() {
		_ = client.Close()
	})

	ctx := context.Background()

	helloRes := &HelloResponse{}
	require.NoError(t, client.Call(ctx, helloRes, &HelloRequest{Foo: 123}))
	require.Equal(t, 124, helloRes.Bar)

	entries := parseLog(t, &log)
	require.Len(t, entries, 2)
	require.Equal(t, "client request", entries[0]["message"])
	require.Equal(t, float64(1), entries[0]["n"])
	curl := entries[0]["curl"].(string)
	require.True(t, strings.HasPrefix(curl, "curl -X 'POST' -d '{\"foo\":123}'"), curl)
	require.Contains(t, curl, server.URL+"/hello")
	require.Equal(t, "server response", entries[1]["message"])
	require.Equal(t, float64(200), entries[1]["status"])
	require.Contains(t, entries[1]["response"], "{\"bar\":124}")

	log.Reset()
	err := client.Call(ctx, &HelloResponse{}, &HelloRequest{Foo: -1})
	var apiErr *errshape.APIError
	require.ErrorAs(t, err, &apiErr)
	require.NotEmpty(t, apiErr.ErrorID)

	entries = parseLog(t, &log)
	require.Len(t, entries, 3)
	require.Equal(t, "warn", entries[2]["level"])
	require.Equal(t, "server returned error", entries[2]["message"])
	require.Equal(t, float64(2), entries[2]["n"])
	require.Equal(t, apiErr.ErrorID, entries[2]["error_id"])
}

func parseLog(t *testing.T, log *bytes.Buffer) []map[string]interface{} {
	var entries []map[string]interface{}
	for _, line := range strings.Split(strings.TrimSpace(log.String()), "\n") {
		if line == "" {
			continue
		}
		var entry map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(line), &entry))
		entries = append(entries, entry)
	}
	return entries
}
