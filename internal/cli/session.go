package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"

	"daytask/internal/config"
	"daytask/internal/persist"
	"daytask/internal/session"
	"daytask/internal/store"
	"daytask/internal/suggest"
)

// NewLogger returns the program logger: stderr, prefixed, Warn unless debug.
func NewLogger(w io.Writer, debug bool) *log.Logger {
	level := log.WarnLevel
	if debug {
		level = log.DebugLevel
	}
	return log.NewWithOptions(w, log.Options{
		Prefix: config.AppName,
		Level:  level,
	})
}

// OpenSession builds the session described by cfg: the persistence adapter
// for cfg.Storage, the suggestion client and the API key, if one was given.
func OpenSession(ctx context.Context, cfg *config.Config) (*session.Session, error) {
	logger := NewLogger(os.Stderr, cfg.Debug)

	adapter, err := newAdapter(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	sess := session.New(session.Options{
		Adapter: adapter,
		Suggester: suggest.NewGemini(
			suggest.WithModel(cfg.Model),
			suggest.WithTimeout(cfg.APITimeout),
		),
		Logger: logger,
	})
	if err := sess.Open(ctx); err != nil {
		return nil, err
	}
	if cfg.Storage == config.StorageDir {
		if err := sess.Connect(ctx, cfg.Directory); err != nil {
			return nil, err
		}
	}

	applyKey(sess, cfg, logger)
	logger.Debug("session ready", "storage", cfg.Storage, "store", sess.Store.String())
	return sess, nil
}

func newAdapter(ctx context.Context, cfg *config.Config, logger *log.Logger) (store.Adapter, error) {
	switch cfg.Storage {
	case config.StorageMemory, config.StorageDir:
		// The directory adapter is attached by Connect once the handle is open.
		return persist.Nop{}, nil
	case config.StorageRedis:
		kv, err := persist.DialRedis(ctx, cfg.RedisAddr, cfg.RedisDB)
		if err != nil {
			return nil, fmt.Errorf("connect redis %s: %w", cfg.RedisAddr, err)
		}
		return persist.NewSnapshot(kv, cfg.StorageKey, logger), nil
	default:
		return persist.NewSnapshot(persist.NewFileKV(cfg.SnapshotPath), cfg.StorageKey, logger), nil
	}
}

// applyKey puts the environment key, then the key file, into the session.
// A key file that cannot be read is reported and otherwise ignored.
func applyKey(sess *session.Session, cfg *config.Config, logger *log.Logger) {
	if cfg.APIKey != "" {
		sess.Keys.SetKey(cfg.APIKey)
	}
	if cfg.KeyFile == "" {
		return
	}
	key, msg := sess.Keys.LoadFile(cfg.KeyFile, cfg.Passphrase)
	if key == "" {
		logger.Warn(msg, "path", cfg.KeyFile)
		return
	}
	sess.Keys.SetKey(key)
}
