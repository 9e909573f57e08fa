package errshape

import (
	"context"
	"fmt"
	"net/http"
	"reflect"
	"sort"
	"strings"

	"github.com/rs/zerolog"
	"github.com/starius/errshape/errors"
	"github.com/starius/errshape/respond"
)

type Router interface {
	HandleFunc(pattern string, handler func(http.ResponseWriter, *http.Request))
}

// BindRoutes adds handlers of routes to http.ServeMux.
//
// Every failure, including panics of handlers, unsupported methods and
// malformed requests, is answered with the standard error payload.
func BindRoutes(mux Router, routes []Route, opts ...Option) {
	config := NewDefaultConfig()
	for _, opt := range opts {
		opt(config)
	}
	responder := config.getResponder()
	logger := config.logger

	path2routes := make(map[string][]Route)
	for _, route := range routes {
		path2routes[route.Path] = append(path2routes[route.Path], route)
	}

	for path, routes := range path2routes {
		method2handler := make(map[string]http.HandlerFunc, len(routes))
		for _, route := range routes {
			if _, has := method2handler[route.Method]; has {
				panic(fmt.Sprintf("duplicate route %s %s", route.Method, route.Path))
			}
			method2handler[route.Method] = newHTTPHandler(route, logger)
		}
		allowed := make([]string, 0, len(method2handler))
		for method := range method2handler {
			allowed = append(allowed, method)
		}
		sort.Strings(allowed)

		// Unsupported methods are answered by the transport of the first route.
		var pathTransport Transport = DefaultTransport
		if routes[0].Transport != nil {
			pathTransport = routes[0].Transport
		}

		mux.HandleFunc(path, func(w http.ResponseWriter, r *http.Request) {
			// The limit is set before the request is put into the context,
			// so logging code reading the body is bounded too.
			r.Body = http.MaxBytesReader(w, r.Body, config.maxBody)

			ctx := context.WithValue(r.Context(), responderType{}, responder)
			ctx = context.WithValue(ctx, requestType{}, r)
			if config.human || r.URL.Query().Get("human") != "" {
				ctx = context.WithValue(ctx, humanType{}, true)
			}
			r = r.WithContext(ctx)

			handler, has := method2handler[r.Method]
			if !has {
				w.Header().Set("Allow", strings.Join(allowed, ", "))
				err := errors.NewResponse(http.StatusMethodNotAllowed, fmt.Sprintf("Method %q not allowed.", r.Method))
				if err := pathTransport.EncodeError(ctx, w, err); err != nil {
					logger.Error().Err(err).Str("path", r.URL.Path).Msg("failed to send MethodNotAllowed error to client")
				}
				return
			}
			handler(w, r)
		})
	}
}

func newHTTPHandler(route Route, logger zerolog.Logger) http.HandlerFunc {
	h := handlerFunc(route.Handler)
	t := route.Transport
	if t == nil {
		t = DefaultTransport
	}

	handlerValue := reflect.ValueOf(h)
	handlerType := handlerValue.Type()
	validateHandler(handlerType, route.Path)

	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		defer func() {
			v := recover()
			if v == nil {
				return
			}
			if v == http.ErrAbortHandler {
				panic(v)
			}
			if err := t.EncodeError(ctx, w, respond.NewPanicError(v)); err != nil {
				logger.Error().Err(err).Str("method", r.Method).Str("path", r.URL.Path).Msg("handler failed to send panic error to client")
			}
		}()

		req := reflect.New(handlerType.In(1).Elem()).Interface()
		ctx, err := t.DecodeRequest(ctx, r, req)
		if err != nil {
			logger.Debug().Err(err).Str("method", r.Method).Str("path", r.URL.Path).Msg("handler failed to parse request")
			if err := t.EncodeError(ctx, w, err); err != nil {
				logger.Error().Err(err).Str("method", r.Method).Str("path", r.URL.Path).Msg("handler failed to send parsing error to client")
			}
			return
		}

		results := handlerValue.Call([]reflect.Value{reflect.ValueOf(ctx), reflect.ValueOf(req)})
		resp := results[0].Interface()
		errReflect := results[1].Interface()

		if errReflect != nil {
			logger.Debug().Err(errReflect.(error)).Str("method", r.Method).Str("path", r.URL.Path).Msg("handler failed")
			if err := t.EncodeError(ctx, w, errReflect.(error)); err != nil {
				logger.Error().Err(err).Str("method", r.Method).Str("path", r.URL.Path).Msg("handler failed to send handler error to client")
			}
			return
		}

		if err := t.EncodeResponse(ctx, w, resp); err != nil {
			logger.Error().Err(err).Str("method", r.Method).Str("path", r.URL.Path).Msg("handler failed to write response")
			return
		}
	}
}
