// Package store provides the content-addressed store for published view
// records and layout documents.
//
// A CAS canonicalizes a value, hashes the canonical bytes with SHA-256 and
// writes them to a Backend only if the address is not already present:
//   - Put: canonicalize, hash, check-then-write (create-if-absent)
//   - Resolve: lookup by address; a miss is reported as found == false
//
// Concurrent puts of the same content are collapsed per address, so a
// backend never sees two racing writes for one digest. Unrelated
// addresses are written concurrently.
//
// # Backends
//
//   - SQLiteBackend: single blobs table, INSERT ... ON CONFLICT DO NOTHING
//   - LevelDBBackend: chunk-store layout keyed by digest, Has before Put
//   - MemoryBackend: map with a write counter, used by tests and dry runs
//
// Persistent backends store snappy-compressed bytes. Every I/O failure is
// returned as an *UnavailableError wrapping ErrStoreUnavailable; callers
// decide whether to retry.
package store
