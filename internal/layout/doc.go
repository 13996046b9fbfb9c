// Package layout models the published document: a tree of containers and
// view references plus the table of views those references resolve to.
//
// Trees are built from four closed node variants (Box, Splitter, TabLayout
// and View). Sizing hints on containers are opaque to this package; they
// are checked for shape and passed through unchanged.
//
// A Document must pass Validate before it is published. Builder does this
// as part of Build.
package layout
