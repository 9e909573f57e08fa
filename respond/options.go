package respond

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/starius/errshape/errors"
)

type config struct {
	logger    zerolog.Logger
	debug     bool
	translate errors.Translator
	bases     []BaseException
	baseNames []namedBase
}

type namedBase struct {
	name     string
	registry *Registry
}

func newDefaultConfig() *config {
	return &config{
		logger:    zerolog.New(os.Stderr).With().Timestamp().Logger(),
		translate: errors.Translate,
	}
}

type Option func(*config)

// WithLogger sets the logger used when the request context has none.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

// WithDebug makes unclassified failures expose their trace to the client.
// Never enable it in production.
func WithDebug(debug bool) Option {
	return func(c *config) {
		c.debug = debug
	}
}

// WithTranslator replaces the framework default translator
// (errors.Translate). Use errors.Chain to extend it instead of losing it.
func WithTranslator(translate errors.Translator) Option {
	return func(c *config) {
		c.translate = translate
	}
}

// WithBaseException adds an application base exception. Several can be
// added; they are tried in order.
func WithBaseException(base BaseException) Option {
	return func(c *config) {
		c.bases = append(c.bases, base)
	}
}

// WithBaseExceptionName adds the base exception registered under name.
// A nil registry means DefaultRegistry. An empty name is ignored.
// The name is resolved once, in New; if it can not be resolved, a warning
// is logged and the base exception rule is skipped.
func WithBaseExceptionName(name string, registry *Registry) Option {
	return func(c *config) {
		if name == "" {
			return
		}
		if registry == nil {
			registry = DefaultRegistry
		}
		c.baseNames = append(c.baseNames, namedBase{name: name, registry: registry})
	}
}
