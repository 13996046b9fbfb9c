package canon

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

// AddressScheme prefixes every content address.
const AddressScheme = "sha256://"

// Address is the content address of a canonical byte sequence:
// "sha256://" followed by the lowercase hex SHA-256 digest.
type Address string

// Digest computes the address of canonical bytes.
func Digest(data []byte) Address {
	sum := sha256.Sum256(data)
	return Address(AddressScheme + hex.EncodeToString(sum[:]))
}

// Sum canonicalizes v and returns its address together with the bytes that
// were hashed.
func Sum(v any) (Address, []byte, error) {
	data, err := Marshal(v)
	if err != nil {
		return "", nil, fmt.Errorf("canonicalize: %w", err)
	}
	return Digest(data), data, nil
}

// ParseAddress validates s as an Address.
func ParseAddress(s string) (Address, error) {
	digest, ok := strings.CutPrefix(s, AddressScheme)
	if !ok {
		return "", fmt.Errorf("address %q: missing %s prefix", s, AddressScheme)
	}
	if len(digest) != sha256.Size*2 {
		return "", fmt.Errorf("address %q: digest must be %d hex characters", s, sha256.Size*2)
	}
	if _, err := hex.DecodeString(digest); err != nil {
		return "", fmt.Errorf("address %q: %w", s, err)
	}
	if strings.ToLower(digest) != digest {
		return "", fmt.Errorf("address %q: digest must be lowercase", s)
	}
	return Address(s), nil
}

// Hex returns the digest without the scheme.
func (a Address) Hex() string {
	return strings.TrimPrefix(string(a), AddressScheme)
}

// String implements fmt.Stringer.
func (a Address) String() string {
	return string(a)
}

// MustSum is like Sum but panics on error.
// Use only in tests or when the value is known to be valid.
func MustSum(v any) Address {
	addr, _, err := Sum(v)
	if err != nil {
		panic(err)
	}
	return addr
}
