// Package memalloc implements custom memory management for the
// limdy application: a pool-based heap allocator layered under a
// small-object slab cache, with pools tracked by total capacity in a
// size-keyed balanced tree for best-fit routing.
//
// align:
//
// Alignment primitives shared by the pool heap and the slab cache.
//
// poolindex:
//
// A left-leaning red-black tree ordering pools by (capacity, id) so
// the façade can find the smallest pool able to satisfy a request in
// O(log n).
//
// slab:
//
// Fixed size-class free lists for small, high-frequency allocations,
// backed by lazily grown slabs of Config.ObjectsPerSlab objects each
// (64 by default).
//
// pool:
//
// A first-fit, splitting, boundary-coalescing heap carved out of one
// contiguous Go-owned byte region.
//
// allocator:
//
// The façade tying the above together: slab first, then best-fit
// small pool, then the large pool, mirroring the routing policy of
// the system this package replaces.
package memalloc
