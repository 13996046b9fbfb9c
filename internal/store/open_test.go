package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/spikeview/internal/canon"
)

func TestOpen_Backends(t *testing.T) {
	for _, backend := range []string{BackendMemory, BackendSQLite, BackendLevelDB} {
		t.Run(backend, func(t *testing.T) {
			cas, err := Open(Config{
				Backend:   backend,
				Path:      filepath.Join(t.TempDir(), "store"),
				CacheSize: 4,
			}, nil)
			require.NoError(t, err)
			defer cas.Close()

			ctx := context.Background()
			v := canon.NewObject(canon.P("a", canon.Int(1)))
			addr, err := cas.Put(ctx, v)
			require.NoError(t, err)

			data, found, err := cas.Resolve(ctx, addr)
			require.NoError(t, err)
			require.True(t, found)
			assert.Equal(t, `{"a":1}`, string(data))
		})
	}
}

func TestOpen_UnknownBackend(t *testing.T) {
	_, err := Open(Config{Backend: "s3"}, nil)
	assert.True(t, errors.Is(err, ErrUnknownBackend))
}

func TestOpen_FailureIsUnavailable(t *testing.T) {
	// A file where the LevelDB directory should be.
	path := filepath.Join(t.TempDir(), "blobs")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))

	_, err := Open(Config{Backend: BackendLevelDB, Path: path}, nil)
	require.Error(t, err)
	assert.True(t, IsUnavailable(err))
	assert.Contains(t, err.Error(), "store open")
}
