package store

import (
	"context"

	"github.com/roach88/spikeview/internal/canon"
)

// Backend is the physical storage behind a CAS.
//
// Write must be create-if-absent: when the address already exists the
// stored bytes are left untouched and inserted is false. A Write that
// returns an error must not leave a readable object behind.
type Backend interface {
	Has(ctx context.Context, addr canon.Address) (bool, error)
	Write(ctx context.Context, addr canon.Address, data []byte) (inserted bool, err error)
	Read(ctx context.Context, addr canon.Address) (data []byte, found bool, err error)
	Close() error
}
