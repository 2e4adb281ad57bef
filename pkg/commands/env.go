package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"tableflip.dev/diary/pkg/app"
	"tableflip.dev/diary/pkg/classify"
	"tableflip.dev/diary/pkg/config"
	"tableflip.dev/diary/pkg/journal"
	"tableflip.dev/diary/pkg/logging"
	"tableflip.dev/diary/pkg/receipts"
	"tableflip.dev/diary/pkg/session"
	"tableflip.dev/diary/pkg/store"
)

// env is everything a command needs to operate on the journal.
type env struct {
	Config      *config.Config
	Log         logging.Logger
	Sessions    *session.Manager
	Session     *session.Session
	Persistence store.Persistence
	Journal     *journal.Journal
	Classifier  *classify.Classifier
	Service     *app.Service

	mu       sync.Mutex
	writeErr error
}

func loadConfig() (*config.Config, error) {
	if ro.ConfigPath != "" {
		return config.LoadFile(ro.ConfigPath)
	}
	return config.Load()
}

func newLogger(cfg *config.Config) logging.Logger {
	level := cfg.Log.Level
	if ro.LogLevel != "" {
		level = ro.LogLevel
	}
	return logging.New(os.Stderr, level)
}

func sessionManager(cfg *config.Config) (*session.Manager, error) {
	return session.NewManager(cfg.Auth.SessionPath, []byte(cfg.Auth.JWTSecret))
}

// openEnv loads config, resolves the signed-in owner, opens the configured
// store and loads the journal. The caller must Close the env.
func openEnv(ctx context.Context) (*env, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	e := &env{Config: cfg, Log: newLogger(cfg)}

	if e.Sessions, err = sessionManager(cfg); err != nil {
		return nil, err
	}
	s, err := e.Sessions.Current()
	switch {
	case err == nil:
		e.Session = s
	case cfg.Backend == config.BackendPostgres:
		return nil, fmt.Errorf("%w: run `diary login` first: %w", store.ErrUnauthorized, err)
	default:
		e.Log.Debug(ctx, "no session, using the local journal", "err", err)
	}
	owner := ""
	if e.Session != nil {
		owner = e.Session.Owner
	}

	if e.Persistence, err = store.Load(ctx, cfg, e.Log); err != nil {
		return nil, err
	}
	e.Journal = journal.New(e.Persistence,
		journal.WithOwner(owner),
		journal.WithLogger(e.Log),
		journal.WithErrorHandler(e.writeFailed(os.Stderr)),
	)
	if err := e.Journal.Load(ctx); err != nil {
		_ = e.Close()
		return nil, err
	}

	e.Service = &app.Service{Journal: e.Journal, Log: e.Log}

	if cfg.Gemini.APIKey != "" {
		g, err := classify.NewGemini(ctx, classify.GeminiConfig{
			APIKey:    cfg.Gemini.APIKey,
			Model:     cfg.Gemini.Model,
			LiveModel: cfg.Gemini.LiveModel,
			Timeout:   cfg.Gemini.Timeout,
		})
		if err != nil {
			e.Log.Warn(ctx, "classifier unavailable", "err", err)
		} else {
			e.Classifier = classify.New(g, g, e.Log)
			e.Service.Classifier = e.Classifier
		}
	}

	if cfg.Receipts.Bucket != "" {
		archive, err := receipts.NewS3(ctx, receipts.Config{
			Bucket:    cfg.Receipts.Bucket,
			Region:    cfg.Receipts.Region,
			Endpoint:  cfg.Receipts.Endpoint,
			AccessKey: cfg.Receipts.AccessKey,
			SecretKey: cfg.Receipts.SecretKey,
		})
		if err != nil {
			e.Log.Warn(ctx, "receipt archive unavailable", "err", err)
		} else {
			e.Service.Receipts = archive
		}
	}
	return e, nil
}

// writeFailed returns a journal error handler that prints each failed write
// on w and keeps it so the command can exit non-zero.
func (e *env) writeFailed(w io.Writer) func(error) {
	return func(err error) {
		var we *journal.WriteError
		if errors.As(err, &we) && we.Reverted {
			_, _ = fmt.Fprintf(w, "could not save %s, change undone: %v\n", we.ID, we.Err)
		} else {
			_, _ = fmt.Fprintf(w, "could not save: %v\n", err)
		}
		e.mu.Lock()
		e.writeErr = errors.Join(e.writeErr, err)
		e.mu.Unlock()
	}
}

// WriteErr is every background write that failed so far.
func (e *env) WriteErr() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.writeErr
}

// Close flushes pending writes, then releases the store.
func (e *env) Close() error {
	if e.Journal != nil {
		_ = e.Journal.Close()
	}
	if e.Persistence != nil {
		return e.Persistence.Close()
	}
	return nil
}

// withEnv opens the env, runs fn and closes the env, returning fn's error
// first and failed background writes last.
func withEnv(ctx context.Context, fn func(*env) error) error {
	e, err := openEnv(ctx)
	if err != nil {
		return err
	}
	err = fn(e)
	return e.finish(err)
}

// finish closes e and returns err, else the close error, else any background
// write that failed while the journal drained.
func (e *env) finish(err error) error {
	cerr := e.Close()
	if err != nil {
		return err
	}
	if cerr != nil {
		return cerr
	}
	return e.WriteErr()
}
