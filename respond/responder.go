// Package respond turns any error raised while serving a request into the
// standard error payload and an HTTP status.
//
// Errors are classified in a fixed order, the first match wins:
//
//  1. manual responses (*errors.Response) keep their status;
//  2. errors known to the framework (errors.Translate or WithTranslator);
//  3. application base exceptions (WithBaseException, WithBaseExceptionName);
//  4. model validation errors: 400;
//  5. missing objects: 404 "Requested object not found.";
//  6. integrity violations: 400 "Database integrity error.";
//  7. anything else: 500 with a fresh error ID, logged with its trace.
//
// The trace of an unclassified failure is sent to the client only in debug
// mode.
package respond

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/starius/errshape/errors"
	"github.com/starius/errshape/model"
	"github.com/starius/errshape/msgtree"
	"moul.io/http2curl"
)

const (
	NotFoundMessage  = "Requested object not found."
	IntegrityMessage = "Database integrity error."
)

// Kind is the category of a classified error.
type Kind int

const (
	KindManualResponse Kind = iota + 1
	KindFramework
	KindApplication
	KindModelValidation
	KindNotFound
	KindIntegrity
	KindUnclassified
)

var kindNames = map[Kind]string{
	KindManualResponse:  "manual_response",
	KindFramework:       "framework",
	KindApplication:     "application",
	KindModelValidation: "model_validation",
	KindNotFound:        "not_found",
	KindIntegrity:       "integrity",
	KindUnclassified:    "unclassified",
}

func (k Kind) String() string {
	if name, has := kindNames[k]; has {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Category is the result of classification. Body is set for manual
// responses and framework errors, Exception for application errors.
type Category struct {
	Kind       Kind
	StatusCode int
	Body       msgtree.Tree
	Exception  Exception
}

// Responder classifies errors and builds payloads. It is safe for
// concurrent use.
type Responder struct {
	logger    zerolog.Logger
	debug     bool
	translate errors.Translator
	bases     []BaseException
}

// New creates a Responder. Base exception names are resolved here, once;
// a name that can not be resolved is logged as a warning and skipped.
func New(opts ...Option) *Responder {
	c := newDefaultConfig()
	for _, opt := range opts {
		opt(c)
	}

	bases := append([]BaseException(nil), c.bases...)
	for _, nb := range c.baseNames {
		base, err := nb.registry.Lookup(nb.name)
		if err != nil {
			c.logger.Warn().Err(err).Str("base_exception", nb.name).Msg("Could not resolve base exception, ignoring it")
			continue
		}
		bases = append(bases, base)
	}

	return &Responder{
		logger:    c.logger,
		debug:     c.debug,
		translate: c.translate,
		bases:     bases,
	}
}

// Debug tells whether traces of unclassified failures reach clients.
func (r *Responder) Debug() bool {
	return r.debug
}

// Classify finds the category of err.
func (r *Responder) Classify(err error) Category {
	var resp *errors.Response
	if stderrors.As(err, &resp) {
		return Category{Kind: KindManualResponse, StatusCode: validStatus(resp.StatusCode), Body: resp.Body}
	}

	if r.translate != nil {
		if code, tree, ok := r.translate(err); ok {
			return Category{Kind: KindFramework, StatusCode: validStatus(code), Body: tree}
		}
	}

	for _, base := range r.bases {
		if exc, ok := base(err); ok {
			return Category{Kind: KindApplication, StatusCode: exc.status(), Exception: exc}
		}
	}

	if _, ok := model.AsValidation(err); ok {
		return Category{Kind: KindModelValidation, StatusCode: http.StatusBadRequest}
	}
	if model.IsNotFound(err) {
		return Category{Kind: KindNotFound, StatusCode: http.StatusNotFound}
	}
	if model.IsIntegrity(err) {
		return Category{Kind: KindIntegrity, StatusCode: http.StatusBadRequest}
	}

	return Category{Kind: KindUnclassified, StatusCode: http.StatusInternalServerError}
}

// Handle builds the payload and status for err. The request is optional;
// it enriches the log entry of unclassified failures.
func (r *Responder) Handle(ctx context.Context, err error, req *http.Request) (*Payload, int) {
	logger := r.loggerFor(ctx)
	cat := r.Classify(err)

	switch cat.Kind {
	case KindManualResponse, KindFramework:
		return failure(flattenOrStatus(cat.Body, cat.StatusCode)...), cat.StatusCode

	case KindApplication:
		logger.Warn().
			Str("error_message", cat.Exception.Message).
			Interface("error_code", cat.Exception.Code).
			Msgf("Project base exception: %s (Code: %v)", cat.Exception.Message, cat.Exception.Code)
		payload := failure(cat.Exception.Message)
		payload.Code = cat.Exception.Code
		return payload, cat.StatusCode

	case KindModelValidation:
		return failure(err.Error()), cat.StatusCode

	case KindNotFound:
		return failure(NotFoundMessage), cat.StatusCode

	case KindIntegrity:
		return failure(IntegrityMessage), cat.StatusCode

	case KindUnclassified:
		return r.unhandled(logger, err, req), cat.StatusCode
	}

	panic(fmt.Sprintf("unknown error category %v", cat.Kind))
}

func (r *Responder) unhandled(logger *zerolog.Logger, err error, req *http.Request) *Payload {
	errorID := uuid.NewString()
	trace := Trace(err)

	event := logger.Error().
		Str("error_id", errorID).
		Str("trace", trace)
	if req != nil {
		event = event.Str("method", req.Method).Str("path", req.URL.Path)
		if r.debug {
			// Headers may hold credentials, so only in debug.
			if curl, curlErr := http2curl.GetCurlCommand(req); curlErr == nil {
				event = event.Str("curl", curl.String())
			}
		}
	}
	event.Msgf("[Error ID: %s] Unhandled error: %v", errorID, err)

	var payload *Payload
	if r.debug {
		payload = failure("Error ID: "+errorID, trace)
	} else {
		payload = failure("Something went wrong. Please share this error ID with support: " + errorID)
	}
	payload.ErrorID = errorID
	return payload
}

// Write sends the payload for err as JSON.
func (r *Responder) Write(ctx context.Context, w http.ResponseWriter, req *http.Request, err error) error {
	payload, code := r.Handle(ctx, err, req)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	return json.NewEncoder(w).Encode(payload)
}

func (r *Responder) loggerFor(ctx context.Context) *zerolog.Logger {
	if ctx != nil {
		if l := zerolog.Ctx(ctx); l.GetLevel() != zerolog.Disabled {
			return l
		}
	}
	return &r.logger
}

func flattenOrStatus(body msgtree.Tree, code int) []string {
	messages := msgtree.Flatten(body)
	if len(messages) == 0 {
		text := http.StatusText(code)
		if text == "" {
			text = fmt.Sprintf("HTTP %d", code)
		}
		messages = append(messages, text)
	}
	return messages
}

func validStatus(code int) int {
	if code < 100 || code > 999 {
		return http.StatusInternalServerError
	}
	return code
}
