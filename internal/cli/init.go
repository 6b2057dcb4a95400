// Package cli provides common initialization shared by cmd/lifeos and
// cmd/lifeos-worker.
package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"

	"github.com/joho/godotenv"

	"lifeos/internal/agent"
	"lifeos/internal/amqp"
	"lifeos/internal/config"
	"lifeos/internal/log"
	"lifeos/internal/storage"
)

// ErrInternal is what users see when a command panics.
var ErrInternal = errors.New("something went wrong, please try again")

// SetupLogger builds the process logger and makes it the slog default.
// verbose forces debug level regardless of level.
func SetupLogger(level string, verbose bool, component string) (*log.Logger, error) {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	if verbose {
		lvl = slog.LevelDebug
	}
	cfg := log.DefaultConfig()
	cfg.Level = lvl
	cfg.Component = component
	logger := log.New(cfg)
	log.SetDefault(logger)
	return logger, nil
}

// LoadEnvFile loads the .env file for local development.
// Errors are ignored silently as this is optional in production.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// LoadAndValidateConfig loads configuration from the environment and
// validates it.
func LoadAndValidateConfig() (*config.Config, error) {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// OpenStore opens the configured blob store.
func OpenStore(cfg *config.Config, logger *log.Logger) (storage.BlobStore, error) {
	switch cfg.StorageBackend {
	case "memory":
		logger.Info("Using in-memory storage, nothing will survive this process", "backend", cfg.StorageBackend)
		return storage.NewMemoryStore(), nil
	case "sqlite":
		store, err := storage.NewSQLiteStore(cfg.DBPath)
		if err != nil {
			return nil, fmt.Errorf("open sqlite store at %s: %w", cfg.DBPath, err)
		}
		logger.Debug("Opened SQLite store", "path", cfg.DBPath)
		return store, nil
	default:
		return nil, fmt.Errorf("unknown storage backend: %s", cfg.StorageBackend)
	}
}

// AgentIDs returns the configured agent ids, falling back to the defaults
// per capability.
func AgentIDs(cfg *config.Config) agent.IDs {
	ids := agent.DefaultIDs()
	if cfg.AgentInsightID != "" {
		ids.Insight = cfg.AgentInsightID
	}
	if cfg.AgentTrackerID != "" {
		ids.Tracker = cfg.AgentTrackerID
	}
	if cfg.AgentCoachID != "" {
		ids.Coach = cfg.AgentCoachID
	}
	return ids
}

// BuildCaller returns the agent caller for the configured backend.
func BuildCaller(cfg *config.Config) (agent.Caller, error) {
	switch cfg.AgentBackend {
	case "mock":
		return agent.NewMockCaller(AgentIDs(cfg)), nil
	case "http":
		return agent.NewHTTPCaller(nil, cfg.AgentAPIURL, cfg.AgentAPIKey, cfg.AgentTimeout), nil
	default:
		return nil, fmt.Errorf("unknown agent backend: %s", cfg.AgentBackend)
	}
}

// OpenEvents connects to the broker when events are enabled. A broker that
// cannot be reached is logged and skipped; entries still get logged.
func OpenEvents(cfg *config.Config, logger *log.Logger) *amqp.Client {
	if !cfg.EventsEnabled() {
		return nil
	}
	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
	if err != nil {
		logger.Warn("AMQP unavailable, entry events disabled",
			log.NewFields().WithOperation(log.OpStartup).WithErrorType(log.ErrorTypeTransport).WithError(err).ToSlice()...)
		return nil
	}
	return client
}

// SignalContext returns a context cancelled on SIGINT or SIGTERM.
func SignalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
}

// Recover turns a panic in the calling function into ErrInternal and logs
// the stack. Use as: defer cli.Recover(logger, &err).
func Recover(logger *log.Logger, err *error) {
	r := recover()
	if r == nil {
		return
	}
	if logger == nil {
		logger = log.Discard()
	}
	logger.Error("Recovered from panic",
		log.FieldErrorType, log.ErrorTypeInternal,
		"panic", fmt.Sprint(r),
		"stack", string(debug.Stack()))
	*err = ErrInternal
}

// Fatal prints err and exits with status 1.
func Fatal(logger *log.Logger, msg string, err error) {
	if logger != nil {
		logger.Error(msg, log.FieldError, err.Error())
	}
	fmt.Fprintf(os.Stderr, "%s: %v\n", msg, err)
	os.Exit(1)
}
