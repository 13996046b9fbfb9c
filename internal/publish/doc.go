// Package publish turns a sorting into a stored layout document.
//
// A publish run builds every enabled view concurrently, stores each view
// record, arranges the stored views in a layout, validates the result and
// finally stores the document itself. A view that fails to build is
// reported and left out; a store that cannot be reached aborts the run.
package publish
