//go:build !memdebug

package memalloc

// validateRedBlack always reports no violations in a release build,
// since walking the tree on every mutation to check its shape is a
// debug-only cost. See poolindex_debug.go for the real check.
func validateRedBlack(idx *poolIndex) []string { return nil }
