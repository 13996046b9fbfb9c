package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/golang/snappy"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/filter"
	"github.com/syndtr/goleveldb/leveldb/opt"

	"github.com/roach88/spikeview/internal/canon"
)

var blobPrefix = []byte("/blob/")

func toBlobKey(addr canon.Address) []byte {
	return append(append([]byte(nil), blobPrefix...), addr.Hex()...)
}

// LevelDBBackend stores snappy-compressed objects in a LevelDB directory.
// LevelDB has no conditional put, so Write holds a mutex across Has and Put.
type LevelDBBackend struct {
	db *leveldb.DB
	mu sync.Mutex
}

// OpenLevelDB creates or opens a LevelDB store in dir.
func OpenLevelDB(dir string) (*LevelDBBackend, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create leveldb dir: %w", err)
	}
	db, err := leveldb.OpenFile(dir, &opt.Options{
		Compression: opt.NoCompression,
		Filter:      filter.NewBloomFilter(10), // 10 bits/key
		WriteBuffer: 1 << 24,                   // 16MiB
	})
	if err != nil {
		return nil, fmt.Errorf("open leveldb: %w", err)
	}
	return &LevelDBBackend{db: db}, nil
}

func (l *LevelDBBackend) Has(ctx context.Context, addr canon.Address) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	// Not a real read, so don't let it fill the block cache.
	return l.db.Has(toBlobKey(addr), &opt.ReadOptions{DontFillCache: true})
}

func (l *LevelDBBackend) Write(ctx context.Context, addr canon.Address, data []byte) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	key := toBlobKey(addr)

	l.mu.Lock()
	defer l.mu.Unlock()

	exists, err := l.db.Has(key, &opt.ReadOptions{DontFillCache: true})
	if err != nil {
		return false, err
	}
	if exists {
		return false, nil
	}
	if err := l.db.Put(key, snappy.Encode(nil, data), &opt.WriteOptions{Sync: true}); err != nil {
		return false, err
	}
	return true, nil
}

func (l *LevelDBBackend) Read(ctx context.Context, addr canon.Address) ([]byte, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	stored, err := l.db.Get(toBlobKey(addr), nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	data, err := snappy.Decode(nil, stored)
	if err != nil {
		return nil, false, fmt.Errorf("decode blob %s: %w", addr, err)
	}
	return data, true, nil
}

func (l *LevelDBBackend) Close() error {
	return l.db.Close()
}
