package store

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/roach88/spikeview/internal/canon"
)

type backendFactory struct {
	name   string
	open   func(t *testing.T, dir string) Backend
	reopen bool
}

var backendFactories = []backendFactory{
	{
		name: "memory",
		open: func(t *testing.T, dir string) Backend { return NewMemoryBackend() },
	},
	{
		name: "sqlite",
		open: func(t *testing.T, dir string) Backend {
			b, err := OpenSQLite(filepath.Join(dir, "store.db"))
			if err != nil {
				t.Fatalf("OpenSQLite() failed: %v", err)
			}
			return b
		},
		reopen: true,
	},
	{
		name: "leveldb",
		open: func(t *testing.T, dir string) Backend {
			b, err := OpenLevelDB(filepath.Join(dir, "ldb"))
			if err != nil {
				t.Fatalf("OpenLevelDB() failed: %v", err)
			}
			return b
		},
		reopen: true,
	},
}

func TestBackend_WriteIsCreateIfAbsent(t *testing.T) {
	for _, f := range backendFactories {
		t.Run(f.name, func(t *testing.T) {
			b := f.open(t, t.TempDir())
			defer b.Close()
			ctx := context.Background()

			data := []byte(`{"a":1}`)
			addr := canon.Digest(data)

			inserted, err := b.Write(ctx, addr, data)
			if err != nil {
				t.Fatalf("first Write() failed: %v", err)
			}
			if !inserted {
				t.Error("first Write() should insert")
			}

			inserted, err = b.Write(ctx, addr, []byte("something else"))
			if err != nil {
				t.Fatalf("second Write() failed: %v", err)
			}
			if inserted {
				t.Error("second Write() should not insert")
			}

			got, found, err := b.Read(ctx, addr)
			if err != nil {
				t.Fatalf("Read() failed: %v", err)
			}
			if !found {
				t.Fatal("Read() did not find written object")
			}
			if !bytes.Equal(got, data) {
				t.Errorf("Read() = %q, want %q", got, data)
			}
		})
	}
}

func TestBackend_Has(t *testing.T) {
	for _, f := range backendFactories {
		t.Run(f.name, func(t *testing.T) {
			b := f.open(t, t.TempDir())
			defer b.Close()
			ctx := context.Background()

			addr := canon.Digest([]byte("x"))
			has, err := b.Has(ctx, addr)
			if err != nil {
				t.Fatalf("Has() failed: %v", err)
			}
			if has {
				t.Error("Has() = true before write")
			}

			if _, err := b.Write(ctx, addr, []byte("x")); err != nil {
				t.Fatalf("Write() failed: %v", err)
			}
			has, err = b.Has(ctx, addr)
			if err != nil {
				t.Fatalf("Has() failed: %v", err)
			}
			if !has {
				t.Error("Has() = false after write")
			}
		})
	}
}

func TestBackend_ReadMissing(t *testing.T) {
	for _, f := range backendFactories {
		t.Run(f.name, func(t *testing.T) {
			b := f.open(t, t.TempDir())
			defer b.Close()

			data, found, err := b.Read(context.Background(), canon.Digest([]byte("nope")))
			if err != nil {
				t.Fatalf("Read() failed: %v", err)
			}
			if found || data != nil {
				t.Errorf("Read() = %q, %v; want nil, false", data, found)
			}
		})
	}
}

func TestBackend_LargeObjectRoundTrip(t *testing.T) {
	payload := bytes.Repeat([]byte(`{"binCounts":[0,1,2,3]}`), 4096)
	for _, f := range backendFactories {
		t.Run(f.name, func(t *testing.T) {
			b := f.open(t, t.TempDir())
			defer b.Close()
			ctx := context.Background()

			addr := canon.Digest(payload)
			if _, err := b.Write(ctx, addr, payload); err != nil {
				t.Fatalf("Write() failed: %v", err)
			}
			got, _, err := b.Read(ctx, addr)
			if err != nil {
				t.Fatalf("Read() failed: %v", err)
			}
			if !bytes.Equal(got, payload) {
				t.Errorf("Read() returned %d bytes, want %d", len(got), len(payload))
			}
		})
	}
}

func TestBackend_PersistsAcrossReopen(t *testing.T) {
	for _, f := range backendFactories {
		if !f.reopen {
			continue
		}
		t.Run(f.name, func(t *testing.T) {
			dir := t.TempDir()
			ctx := context.Background()
			data := []byte(`[1,2,3]`)
			addr := canon.Digest(data)

			b1 := f.open(t, dir)
			if _, err := b1.Write(ctx, addr, data); err != nil {
				t.Fatalf("Write() failed: %v", err)
			}
			if err := b1.Close(); err != nil {
				t.Fatalf("Close() failed: %v", err)
			}

			b2 := f.open(t, dir)
			defer b2.Close()
			got, found, err := b2.Read(ctx, addr)
			if err != nil {
				t.Fatalf("Read() after reopen failed: %v", err)
			}
			if !found || !bytes.Equal(got, data) {
				t.Errorf("Read() after reopen = %q, %v", got, found)
			}
		})
	}
}

func TestBackend_CancelledContext(t *testing.T) {
	for _, f := range backendFactories {
		t.Run(f.name, func(t *testing.T) {
			b := f.open(t, t.TempDir())
			defer b.Close()

			ctx, cancel := context.WithCancel(context.Background())
			cancel()

			if _, err := b.Write(ctx, canon.Digest([]byte("y")), []byte("y")); err == nil {
				t.Error("Write() with cancelled context should fail")
			}
		})
	}
}
