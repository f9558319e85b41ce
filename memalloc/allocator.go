package memalloc

import (
	"context"
	"fmt"
	"sync"

	"github.com/dev-mirzabicer/limdy/errctx"
)

// Allocator is the façade consumers use: it routes small requests
// through the slab cache, routes mid-size requests to the best-fit
// small pool, and falls back to one large pool for everything else.
//
// Lock ordering is admin -> pool -> slab and is never taken in
// reverse: a call that must touch more than one of these mutexes
// always acquires them in this order.
type Allocator struct {
	cfg Config

	admin      sync.Mutex
	largePool  *Pool
	smallPools []*Pool
	index      poolIndex
	slabs      *slabCache
}

// Init creates the large pool, MaxPools-1 small pools, and the slab
// cache, leaving one registry slot free for Create. Every small pool
// is registered in the pool index for best-fit lookup.
func Init(cfg Config) (*Allocator, error) {
	cfg = cfg.withDefaults()

	a := &Allocator{
		cfg:   cfg,
		slabs: newSlabCache(cfg.ObjectsPerSlab),
	}
	a.largePool = newPool(cfg.LargePoolSize)

	for i := 0; i < cfg.MaxPools-1; i++ {
		p := newPool(cfg.SmallPoolSize)
		a.smallPools = append(a.smallPools, p)
		a.index.insert(p)
	}

	errctx.Log(context.Background(), errctx.CodeSuccess, errctx.LevelInfo,
		"memalloc initialized: %d small pools of %d bytes, large pool %d bytes",
		len(a.smallPools), cfg.SmallPoolSize, cfg.LargePoolSize)
	return a, nil
}

// Cleanup drops every pool and slab owned by a. After Cleanup, a must
// not be used again.
func (a *Allocator) Cleanup() {
	a.admin.Lock()
	defer a.admin.Unlock()
	a.smallPools = nil
	a.largePool = nil
	a.index = poolIndex{}
	a.slabs = newSlabCache(a.cfg.ObjectsPerSlab)
}

// Alloc returns a slice of at least size bytes, or nil if no pool
// could satisfy the request. The length is size rounded up to its
// slab class, or to MemoryAlignment for a pool block (longer still
// when the block's remainder was too small to split off). Slab
// objects come back zeroed; pool blocks keep whatever bytes an
// earlier allocation left in them. A size of zero is normalized to one
// minimum-aligned block and still round-trips through a real
// allocation instead of short-circuiting to an empty slice.
func (a *Allocator) Alloc(size int64) []byte {
	ctx := context.Background()
	size = AlignedSize(size)

	if size <= SlabMaxSize {
		if ptr, ok := a.slabs.alloc(size); ok {
			trackAlloc(ptr, size, 2)
			return ptr
		}
	}

	a.admin.Lock()
	best := a.index.findBestFit(size)
	a.admin.Unlock()

	if best != nil {
		if ptr, ok := best.Allocate(ctx, size); ok {
			trackAlloc(ptr, size, 2)
			return ptr
		}
	}

	ptr, ok := a.largePool.Allocate(ctx, size)
	if !ok {
		errctx.Log(ctx, errctx.CodeMemoryPoolAllocFailed, errctx.LevelError,
			"failed to allocate %d bytes: every pool is exhausted", size)
		return nil
	}
	trackAlloc(ptr, size, 2)
	return ptr
}

// findOwner returns the pool owning ptr, checking small pools before
// the large pool. The admin mutex is held only long enough to copy
// the small-pool slice; Contains itself only needs each pool's own
// rw mutex, per the documented lock ordering.
func (a *Allocator) findOwner(ptr []byte) *Pool {
	a.admin.Lock()
	pools := make([]*Pool, len(a.smallPools))
	copy(pools, a.smallPools)
	large := a.largePool
	a.admin.Unlock()

	for _, p := range pools {
		if p.Contains(ptr) {
			return p
		}
	}
	if large != nil && large.Contains(ptr) {
		return large
	}
	return nil
}

// Free releases ptr, whichever pool or slab class it was carved
// from. Freeing a nil or empty slice is a no-op.
func (a *Allocator) Free(ptr []byte) {
	if len(ptr) == 0 {
		return
	}
	ctx := context.Background()
	untrackAlloc(ptr)

	if a.slabs.free(ptr) {
		return
	}

	owner := a.findOwner(ptr)
	if owner == nil {
		errctx.Log(ctx, errctx.CodeMemoryPoolInvalidFree, errctx.LevelError,
			"attempt to free memory not allocated by any pool")
		return
	}
	owner.Free(ctx, ptr)
}

// Realloc resizes ptr to newSize, preserving min(oldLen, newSize)
// bytes of content. A nil ptr behaves like Alloc; a newSize of zero
// behaves like Free and returns nil.
func (a *Allocator) Realloc(ptr []byte, newSize int64) []byte {
	if len(ptr) == 0 {
		return a.Alloc(newSize)
	}
	if newSize == 0 {
		a.Free(ptr)
		return nil
	}
	ctx := context.Background()
	newSize = AlignedSize(newSize)

	if a.slabs.contains(ptr) {
		// Slab objects are fixed-size within their class; growing
		// past the class ceiling means migrating to the pool heap.
		fresh := a.Alloc(newSize)
		if fresh == nil {
			return nil
		}
		copy(fresh, ptr)
		a.Free(ptr)
		return fresh
	}

	owner := a.findOwner(ptr)
	if owner == nil {
		errctx.Log(ctx, errctx.CodeMemoryPoolInvalidFree, errctx.LevelError,
			"attempt to reallocate memory not allocated by any pool")
		return nil
	}
	grown, ok := owner.Reallocate(ctx, ptr, newSize)
	if ok {
		return grown
	}

	fresh := a.Alloc(newSize)
	if fresh == nil {
		return nil
	}
	copy(fresh, ptr)
	owner.Free(ctx, ptr)
	return fresh
}

// Stats sums capacity and in-use bytes across every pool, small and
// large. The slab cache is excluded: its slabs are accounted for as
// ordinary Go heap memory, not pool capacity.
func (a *Allocator) Stats() (totalAllocated, totalUsed int64) {
	a.admin.Lock()
	pools := make([]*Pool, len(a.smallPools))
	copy(pools, a.smallPools)
	large := a.largePool
	a.admin.Unlock()

	for _, p := range pools {
		t, u := p.Stats()
		totalAllocated += t
		totalUsed += u
	}
	if large != nil {
		t, u := large.Stats()
		totalAllocated += t
		totalUsed += u
	}
	return totalAllocated, totalUsed
}

// Create registers a new small pool of the given size, subject to
// cfg.MaxPools. The returned Pool can be targeted directly with
// AllocFrom/FreeTo/ReallocFrom.
func (a *Allocator) Create(size int64) (*Pool, error) {
	a.admin.Lock()
	defer a.admin.Unlock()

	if len(a.smallPools) >= a.cfg.MaxPools {
		errctx.Log(context.Background(), errctx.CodeMemoryPoolFull, errctx.LevelError,
			"maximum number of pools reached")
		return nil, fmt.Errorf("memalloc: maximum of %d pools already registered", a.cfg.MaxPools)
	}
	p := newPool(size)
	a.smallPools = append(a.smallPools, p)
	a.index.insert(p)
	return p, nil
}

// Destroy unregisters pool. It is an error to Destroy the allocator's
// large pool or a pool not owned by a.
func (a *Allocator) Destroy(pool *Pool) error {
	a.admin.Lock()
	defer a.admin.Unlock()

	for i, p := range a.smallPools {
		if p == pool {
			a.index.remove(p)
			a.smallPools[i] = a.smallPools[len(a.smallPools)-1]
			a.smallPools = a.smallPools[:len(a.smallPools)-1]
			return nil
		}
	}
	errctx.Log(context.Background(), errctx.CodeMemoryPoolInvalidPool, errctx.LevelError,
		"attempt to destroy invalid pool")
	return fmt.Errorf("memalloc: pool %d not registered with this allocator", pool.ID())
}

// AllocFrom allocates size bytes from pool specifically, bypassing
// best-fit routing.
func (a *Allocator) AllocFrom(pool *Pool, size int64) []byte {
	ptr, ok := pool.Allocate(context.Background(), AlignedSize(size))
	if !ok {
		return nil
	}
	return ptr
}

// FreeTo releases ptr back to pool specifically. It is an error for
// ptr not to belong to pool.
func (a *Allocator) FreeTo(pool *Pool, ptr []byte) {
	if len(ptr) == 0 {
		return
	}
	if !pool.Contains(ptr) {
		errctx.Log(context.Background(), errctx.CodeMemoryPoolInvalidFree, errctx.LevelError,
			"attempt to free memory to the wrong pool")
		return
	}
	pool.Free(context.Background(), ptr)
}

// ReallocFrom resizes ptr within pool specifically.
func (a *Allocator) ReallocFrom(pool *Pool, ptr []byte, newSize int64) []byte {
	if len(ptr) == 0 {
		return a.AllocFrom(pool, newSize)
	}
	if newSize == 0 {
		a.FreeTo(pool, ptr)
		return nil
	}
	if !pool.Contains(ptr) {
		errctx.Log(context.Background(), errctx.CodeMemoryPoolInvalidFree, errctx.LevelError,
			"attempt to reallocate memory from the wrong pool")
		return nil
	}
	grown, ok := pool.Reallocate(context.Background(), ptr, AlignedSize(newSize))
	if !ok {
		return nil
	}
	return grown
}

// Contains reports whether ptr was allocated from pool.
func (a *Allocator) Contains(pool *Pool, ptr []byte) bool {
	return pool.Contains(ptr)
}

// Defragment merges adjacent free blocks within pool.
func (a *Allocator) Defragment(pool *Pool) {
	pool.Defragment()
}
