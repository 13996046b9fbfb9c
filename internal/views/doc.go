// Package views turns a sorting (and optionally its recording) into typed
// view records ready to be stored.
//
// Each record type is one variant of the closed View sum type and has an
// explicit mapping to its canonical value. Numeric arrays are narrowed to
// 32-bit before serialization.
package views
