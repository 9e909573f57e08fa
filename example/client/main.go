package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"

	"github.com/rs/zerolog"
	"github.com/starius/errshape"
	"github.com/starius/errshape/debugclient"
	"github.com/starius/errshape/example"
)

func main() {
	var (
		addr     = flag.String("addr", "http://127.0.0.1:8080", "Address of notes-server")
		user     = flag.String("user", "alice", "User name")
		password = flag.String("password", "", "Password")
		verbose  = flag.Bool("verbose", false, "Log every request and response")
	)
	flag.Parse()

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(zerolog.InfoLevel)
	var opts []errshape.Option
	if *verbose {
		logger = logger.Level(zerolog.DebugLevel)
		opts = append(opts, errshape.CustomClient(debugclient.New(&http.Client{}, logger)))
	}

	ctx := context.Background()
	routes := example.GetRoutes(nil)

	anonymous := errshape.NewClient(routes, *addr, opts...)
	defer anonymous.Close()

	loginRes := &example.LoginResponse{}
	if err := anonymous.Call(ctx, loginRes, &example.LoginRequest{User: *user, Password: *password}); err != nil {
		report(logger, err)
		os.Exit(1)
	}

	client := errshape.NewClient(routes, *addr, append(opts, errshape.AuthorizationHeader("Bearer "+loginRes.Token))...)
	defer client.Close()

	createRes := &example.CreateResponse{}
	err := client.Call(ctx, createRes, &example.CreateRequest{
		Slug:  "hello",
		Title: "Hello",
		Body:  "First note.",
	})
	if err != nil {
		report(logger, err)
	} else {
		fmt.Printf("created %s\n", createRes.Note.Slug)
	}

	// The second attempt hits the unique constraint.
	err = client.Call(ctx, createRes, &example.CreateRequest{
		Slug:  "hello",
		Title: "Hello again",
		Body:  "Same slug.",
	})
	report(logger, err)

	err = client.Call(ctx, &example.GetResponse{}, &example.GetRequest{Slug: "no-such-note"})
	report(logger, err)

	err = client.Call(ctx, &example.FailResponse{}, &example.FailRequest{Mode: "panic"})
	report(logger, err)
}

func report(logger zerolog.Logger, err error) {
	if err == nil {
		return
	}
	var apiErr *errshape.APIError
	if !errors.As(err, &apiErr) {
		logger.Error().Err(err).Msg("Request failed")
		return
	}
	event := logger.Warn().Int("status", apiErr.StatusCode).Strs("messages", apiErr.Messages)
	if apiErr.Code != nil {
		event = event.Interface("code", apiErr.Code)
	}
	if apiErr.ErrorID != "" {
		event = event.Str("error_id", apiErr.ErrorID)
	}
	event.Msg("Server returned error")
}
