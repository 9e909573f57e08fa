package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/starius/errshape"
	"github.com/starius/errshape/example"
	"github.com/starius/errshape/respond"
)

type config struct {
	Listen        string            `mapstructure:"listen"`
	Debug         bool              `mapstructure:"debug"`
	BaseException string            `mapstructure:"base_exception"`
	Database      string            `mapstructure:"database"`
	JWTSecret     string            `mapstructure:"jwt_secret"`
	Quota         int               `mapstructure:"quota"`
	Users         map[string]string `mapstructure:"users"`
}

// newRootCmd returns the command and the viper instance bound to its flags.
func newRootCmd() (*cobra.Command, *viper.Viper) {
	v := viper.New()

	cmd := &cobra.Command{
		Use:          "notes-server",
		Short:        "Serves the notes API with the standard error payload",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(v)
			if err != nil {
				return err
			}
			return run(cmd.Context(), cfg)
		},
	}

	flags := cmd.Flags()
	flags.String("config", "", "Config file (TOML)")
	flags.String("listen", ":8080", "Address to listen on")
	flags.Bool("debug", false, "Send traces of internal errors to clients")
	flags.String("base-exception", "example.AppError", "Registered name of the application base error")
	flags.String("database", "notes.db", "SQLite database")
	flags.String("jwt-secret", "", "Secret used to sign tokens")
	flags.Int("quota", 100, "Maximum number of notes per user")

	for key, flag := range map[string]string{
		"config":         "config",
		"listen":         "listen",
		"debug":          "debug",
		"base_exception": "base-exception",
		"database":       "database",
		"jwt_secret":     "jwt-secret",
		"quota":          "quota",
	} {
		if err := v.BindPFlag(key, flags.Lookup(flag)); err != nil {
			panic(err)
		}
	}
	v.SetEnvPrefix("ERRSHAPE")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	return cmd, v
}

func loadConfig(v *viper.Viper) (*config, error) {
	if file := v.GetString("config"); file != "" {
		v.SetConfigFile(file)
		v.SetConfigType("toml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("jwt_secret is required")
	}
	if cfg.Quota <= 0 {
		return nil, fmt.Errorf("quota must be positive, got %d", cfg.Quota)
	}
	return cfg, nil
}

func run(ctx context.Context, cfg *config) error {
	level := zerolog.InfoLevel
	if cfg.Debug {
		level = zerolog.DebugLevel
	}
	logger := zerolog.New(os.Stderr).Level(level).With().Timestamp().Logger()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := example.OpenStore(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer store.Close()

	if len(cfg.Users) == 0 {
		logger.Warn().Msg("No users configured, nobody can log in")
	}
	auth := example.NewAuth([]byte(cfg.JWTSecret), cfg.Users, 24*time.Hour)
	notes := example.NewNotes(store, auth, cfg.Quota)

	responder := respond.New(
		respond.WithLogger(logger),
		respond.WithDebug(cfg.Debug),
		respond.WithBaseExceptionName(cfg.BaseException, nil),
	)

	routes := example.GetRoutes(notes)
	mux := http.NewServeMux()
	errshape.BindRoutes(mux, routes, errshape.WithResponder(responder), errshape.Logger(logger))

	doc, err := json.Marshal(example.OpenAPI(routes))
	if err != nil {
		return fmt.Errorf("failed to marshal OpenAPI document: %w", err)
	}
	mux.HandleFunc("/openapi.json", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(doc)
	})

	// Request scoped loggers carry the request ID into error logs.
	handler := hlog.NewHandler(logger)(hlog.RequestIDHandler("request_id", "Request-Id")(mux))

	server := &http.Server{
		Addr:              cfg.Listen,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		logger.Info().Str("listen", cfg.Listen).Bool("debug", cfg.Debug).Msg("Serving notes API")
		errc <- server.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func main() {
	cmd, _ := newRootCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
