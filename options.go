package errshape

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/starius/errshape/respond"
)

const defaultMaxBody = 10 * 1024 * 1024

type Config struct {
	logger        zerolog.Logger
	responder     *respond.Responder
	human         bool
	maxBody       int64
	client        HttpClient
	authorization string
}

func NewDefaultConfig() *Config {
	return &Config{
		logger:  zerolog.New(os.Stderr).With().Timestamp().Logger(),
		maxBody: defaultMaxBody,
	}
}

type Option func(*Config)

// Logger sets the logger for failures of the transport itself. It is also
// passed to the default Responder.
func Logger(logger zerolog.Logger) Option {
	return func(config *Config) {
		config.logger = logger
	}
}

// WithResponder sets the Responder which turns handler errors into error
// payloads. By default a Responder without base exceptions and with debug
// disabled is used.
func WithResponder(responder *respond.Responder) Option {
	return func(config *Config) {
		config.responder = responder
	}
}

// HumanJSON makes the server indent JSON responses.
func HumanJSON(human bool) Option {
	return func(config *Config) {
		config.human = human
	}
}

// MaxBody limits the size of request bodies on server side and of response
// bodies on client side.
func MaxBody(maxBody int64) Option {
	return func(config *Config) {
		config.maxBody = maxBody
	}
}

// CustomClient replaces the HTTP client used by Client.
func CustomClient(client HttpClient) Option {
	return func(config *Config) {
		config.client = client
	}
}

// AuthorizationHeader sets the Authorization header sent by Client.
func AuthorizationHeader(authorization string) Option {
	return func(config *Config) {
		config.authorization = authorization
	}
}

func (config *Config) getResponder() *respond.Responder {
	if config.responder != nil {
		return config.responder
	}
	return respond.New(respond.WithLogger(config.logger))
}
