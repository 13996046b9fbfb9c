package store

import (
	"errors"
	"fmt"

	"github.com/roach88/spikeview/internal/canon"
)

// ErrStoreUnavailable marks transient backend failures (timeouts, I/O
// errors, closed databases). It is never retried inside the store.
var ErrStoreUnavailable = errors.New("store unavailable")

// ErrCorrupt is returned by Resolve when the stored bytes do not hash to
// the requested address.
var ErrCorrupt = errors.New("stored content does not match its address")

// ErrUnknownBackend is returned by Open for an unrecognised backend name.
var ErrUnknownBackend = errors.New("unknown store backend")

// UnavailableError describes a failed backend operation.
type UnavailableError struct {
	Op      string
	Address canon.Address
	Err     error
}

func (e *UnavailableError) Error() string {
	if e.Address == "" {
		return fmt.Sprintf("store %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("store %s %s: %v", e.Op, e.Address, e.Err)
}

// Unwrap exposes both ErrStoreUnavailable and the underlying cause.
func (e *UnavailableError) Unwrap() []error {
	return []error{ErrStoreUnavailable, e.Err}
}

// IsUnavailable reports whether err is a store connectivity failure.
func IsUnavailable(err error) bool {
	return errors.Is(err, ErrStoreUnavailable)
}

func unavailable(op string, addr canon.Address, err error) error {
	return &UnavailableError{Op: op, Address: addr, Err: err}
}
