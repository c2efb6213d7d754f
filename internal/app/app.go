// Package app implements the body of the cipherguard2 command.
//
// Run is the single call the command line delegates to. It receives the
// verbose flag exactly as parsed and reports failure through its error.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/cipherguard2/cipherguard2/internal/config"
	"github.com/cipherguard2/cipherguard2/internal/history"
	"github.com/cipherguard2/cipherguard2/internal/log"
)

// ReadyMessage is written to stdout once a session has started.
const ReadyMessage = "CipherGuard2 is ready."

// Runner holds the process resources Run depends on.
type Runner struct {
	// Stdout receives user-facing output.
	Stdout io.Writer

	// Stderr receives log output.
	Stderr io.Writer

	// ConfigPath is an explicit configuration file. Empty means search.
	ConfigPath string

	// Now is the clock used for session timestamps.
	Now func() time.Time
}

// New returns a Runner wired to the current process.
func New() *Runner {
	return &Runner{
		Stdout:     os.Stdout,
		Stderr:     os.Stderr,
		ConfigPath: os.Getenv(config.EnvConfigFile),
		Now:        time.Now,
	}
}

// Run runs one session with a process-wired Runner.
func Run(ctx context.Context, verbose bool) error {
	return New().Run(ctx, verbose)
}

// Run loads configuration, sets up logging, records the session in history
// when enabled and reports readiness.
func (r *Runner) Run(ctx context.Context, verbose bool) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}

	cfg, err := config.Load(r.ConfigPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := log.New(r.Stderr, verbose, cfg.LogFormat)
	slog.SetDefault(logger)

	logger.Debug("configuration loaded",
		"config_file", configSource(cfg),
		"data_dir", cfg.DataDir,
		"log_format", string(cfg.LogFormat.Resolve(r.Stderr)),
		"history", cfg.History,
	)

	if cfg.History {
		store, id, berr := r.beginSession(ctx, logger, cfg, verbose)
		if berr != nil {
			return berr
		}
		defer func() {
			r.finishSession(logger, store, cfg, id, err)
			if cerr := store.Close(); cerr != nil {
				logger.Warn("failed to close history", "error", cerr)
			}
		}()
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	if _, err := fmt.Fprintln(r.Stdout, ReadyMessage); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return ctx.Err()
}

func (r *Runner) beginSession(ctx context.Context, logger *slog.Logger, cfg *config.Config, verbose bool) (*history.Store, int64, error) {
	store, err := history.Open(ctx, cfg.DataDir, history.DefaultOptions())
	if err != nil {
		return nil, 0, fmt.Errorf("failed to open history: %w", err)
	}

	last, err := store.Last(ctx)
	switch {
	case errors.Is(err, history.ErrSessionNotFound):
		logger.Debug("no previous session")
	case err != nil:
		logger.Warn("failed to read previous session", "error", err)
	default:
		logger.Debug("previous session",
			"id", last.ID,
			"started_at", last.StartedAt,
			"status", string(last.Status),
		)
	}

	id, err := store.Begin(ctx, r.Now(), verbose)
	if err != nil {
		_ = store.Close()
		return nil, 0, err
	}
	logger.Debug("session started", "id", id, "db", store.Path())
	return store, id, nil
}

// finishSession records the outcome. It runs after ctx may have been
// cancelled, so it uses its own context; failures are logged only.
func (r *Runner) finishSession(logger *slog.Logger, store *history.Store, cfg *config.Config, id int64, runErr error) {
	ctx := context.Background()

	status, msg := outcome(runErr)
	if err := store.Finish(ctx, id, r.Now(), status, msg); err != nil {
		logger.Warn("failed to record session outcome", "id", id, "error", err)
		return
	}

	removed, err := store.Prune(ctx, cfg.HistoryLimit)
	if err != nil {
		logger.Warn("failed to prune history", "error", err)
		return
	}
	logger.Debug("session finished", "id", id, "status", string(status), "pruned", removed)
}

func outcome(err error) (history.Status, string) {
	switch {
	case err == nil:
		return history.StatusOK, ""
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return history.StatusCancelled, err.Error()
	default:
		return history.StatusFailed, err.Error()
	}
}

func configSource(cfg *config.Config) string {
	if cfg.ConfigFilePath == "" {
		return "(defaults)"
	}
	return cfg.ConfigFilePath
}
