package store

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync/atomic"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"

	"github.com/roach88/spikeview/internal/canon"
)

// DefaultTimeout bounds a single backend operation when Options.Timeout is zero.
const DefaultTimeout = 30 * time.Second

// Options configures a CAS.
type Options struct {
	// Timeout bounds each backend call. Zero means DefaultTimeout; a
	// negative value disables the bound and relies on the caller's context.
	Timeout time.Duration

	// CacheSize is the number of addresses remembered as already stored.
	// Zero disables the cache, so every Put consults the backend.
	CacheSize int

	Logger *slog.Logger
}

// Stats are cumulative counters for a CAS.
type Stats struct {
	Puts         int64 // Put and PutBytes calls that succeeded
	Writes       int64 // objects physically written
	Deduplicated int64 // puts satisfied without a write
	BytesWritten int64 // uncompressed bytes physically written
}

// CAS is a content-addressed store over a Backend.
// It is safe for concurrent use.
type CAS struct {
	backend Backend
	timeout time.Duration
	known   *lru.Cache[canon.Address, struct{}]
	flight  singleflight.Group
	logger  *slog.Logger

	puts         atomic.Int64
	writes       atomic.Int64
	deduplicated atomic.Int64
	bytesWritten atomic.Int64
}

// New wraps backend in a CAS.
func New(backend Backend, opts Options) (*CAS, error) {
	c := &CAS{
		backend: backend,
		timeout: opts.Timeout,
		logger:  opts.Logger,
	}
	if c.timeout == 0 {
		c.timeout = DefaultTimeout
	}
	if c.logger == nil {
		c.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if opts.CacheSize > 0 {
		known, err := lru.New[canon.Address, struct{}](opts.CacheSize)
		if err != nil {
			return nil, fmt.Errorf("create address cache: %w", err)
		}
		c.known = known
	}
	return c, nil
}

// Put canonicalizes v, stores the canonical bytes if absent, and returns
// their address. Calling Put twice with equal values returns the same
// address and writes at most once.
func (c *CAS) Put(ctx context.Context, v canon.Value) (canon.Address, error) {
	addr, data, err := canon.Sum(v)
	if err != nil {
		return "", fmt.Errorf("put: %w", err)
	}
	if err := c.put(ctx, addr, data); err != nil {
		return "", err
	}
	return addr, nil
}

// PutBytes stores bytes that are already in canonical form.
func (c *CAS) PutBytes(ctx context.Context, data []byte) (canon.Address, error) {
	addr := canon.Digest(data)
	if err := c.put(ctx, addr, data); err != nil {
		return "", err
	}
	return addr, nil
}

func (c *CAS) put(ctx context.Context, addr canon.Address, data []byte) error {
	if c.known != nil && c.known.Contains(addr) {
		c.puts.Add(1)
		c.deduplicated.Add(1)
		return nil
	}

	// Concurrent puts of one address share a single check-then-write. The
	// shared call is detached from any one caller's cancellation; each
	// caller still stops waiting when its own context ends.
	ch := c.flight.DoChan(string(addr), func() (any, error) {
		return nil, c.store(context.WithoutCancel(ctx), addr, data)
	})
	select {
	case <-ctx.Done():
		return fmt.Errorf("put %s: %w", addr, ctx.Err())
	case r := <-ch:
		if r.Err != nil {
			return r.Err
		}
	}
	c.puts.Add(1)
	return nil
}

func (c *CAS) store(ctx context.Context, addr canon.Address, data []byte) error {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	exists, err := c.backend.Has(ctx, addr)
	if err != nil {
		return unavailable("has", addr, err)
	}
	if exists {
		c.deduplicated.Add(1)
		c.remember(addr)
		c.logger.Debug("object already stored", "address", addr)
		return nil
	}

	inserted, err := c.backend.Write(ctx, addr, data)
	if err != nil {
		return unavailable("write", addr, err)
	}
	if inserted {
		c.writes.Add(1)
		c.bytesWritten.Add(int64(len(data)))
		c.logger.Debug("object stored", "address", addr, "bytes", len(data))
	} else {
		c.deduplicated.Add(1)
	}
	c.remember(addr)
	return nil
}

// Resolve returns the canonical bytes stored at addr. An unknown address
// yields found == false and a nil error.
func (c *CAS) Resolve(ctx context.Context, addr canon.Address) ([]byte, bool, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	data, found, err := c.backend.Read(ctx, addr)
	if err != nil {
		return nil, false, unavailable("read", addr, err)
	}
	if !found {
		return nil, false, nil
	}
	if canon.Digest(data) != addr {
		return nil, false, fmt.Errorf("resolve %s: %w", addr, ErrCorrupt)
	}
	return data, true, nil
}

// Stats returns a snapshot of the counters.
func (c *CAS) Stats() Stats {
	return Stats{
		Puts:         c.puts.Load(),
		Writes:       c.writes.Load(),
		Deduplicated: c.deduplicated.Load(),
		BytesWritten: c.bytesWritten.Load(),
	}
}

// Close closes the backend.
func (c *CAS) Close() error {
	return c.backend.Close()
}

func (c *CAS) remember(addr canon.Address) {
	if c.known != nil {
		c.known.Add(addr, struct{}{})
	}
}

func (c *CAS) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.timeout < 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, c.timeout)
}
