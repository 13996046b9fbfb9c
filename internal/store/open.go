package store

import (
	"fmt"
	"log/slog"
	"time"
)

// Backend names accepted by Open.
const (
	BackendSQLite  = "sqlite"
	BackendLevelDB = "leveldb"
	BackendMemory  = "memory"
)

// Config selects and configures a backend.
type Config struct {
	Backend   string
	Path      string
	Timeout   time.Duration
	CacheSize int
}

// Open opens the configured backend and wraps it in a CAS. A backend that
// cannot be opened is reported as unavailable.
func Open(cfg Config, logger *slog.Logger) (*CAS, error) {
	var backend Backend
	switch cfg.Backend {
	case BackendSQLite:
		b, err := OpenSQLite(cfg.Path)
		if err != nil {
			return nil, unavailable("open", "", err)
		}
		backend = b
	case BackendLevelDB:
		b, err := OpenLevelDB(cfg.Path)
		if err != nil {
			return nil, unavailable("open", "", err)
		}
		backend = b
	case BackendMemory:
		backend = NewMemoryBackend()
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, cfg.Backend)
	}

	cas, err := New(backend, Options{
		Timeout:   cfg.Timeout,
		CacheSize: cfg.CacheSize,
		Logger:    logger,
	})
	if err != nil {
		backend.Close()
		return nil, err
	}
	if logger != nil {
		logger.Debug("store opened", "backend", cfg.Backend, "path", cfg.Path)
	}
	return cas, nil
}
