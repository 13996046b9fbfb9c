// Package canon provides the canonical value model used for content addressing.
//
// Every view record and published document is converted to a canon.Value
// before it is hashed or stored. canon imports nothing internal; all other
// packages depend on it.
//
// Key constraints:
//   - Object keys are emitted in UTF-16 code unit order (RFC 8785)
//   - Strings and object keys are NFC normalized at the serialization
//     boundary, and Equal compares them the same way
//   - Objects tagged {"_type":"ndarray"} are reserved for NDArray values
//   - Floats must be finite; they are written in shortest round-trip form
//   - Numeric arrays are NDArray values with an explicit dtype and
//     little-endian byte layout, never lists of JSON numbers
//   - Addresses are SHA-256 digests of the canonical bytes
package canon
