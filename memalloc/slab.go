package memalloc

import "sync"

// SlabMinSize and SlabMaxSize bound the size classes the slab cache
// serves; requests above SlabMaxSize fall through to the pool heap,
// and requests below SlabMinSize use the SlabMinSize class.
const (
	SlabMinSize int64 = 16
	SlabMaxSize int64 = 128
	// slabClasses counts the sizes from SlabMinSize to SlabMaxSize,
	// doubling each step: 16, 32, 64, 128.
	slabClasses = 4
)

type slabClass struct {
	objSize        int64
	objectsPerSlab int64
	slabs          [][]byte // backing regions, grown lazily
	free           []int64  // stack of globally-flattened free offsets
}

// slabCache is a set of fixed size-class free lists for small,
// high-frequency allocations. Each class grows by whole slabs of
// objectsPerSlab objects; freed objects return to a free-offset
// stack instead of threading a pointer through the first word of the
// freed object itself.
type slabCache struct {
	mu      sync.Mutex
	classes [slabClasses]*slabClass
}

func newSlabCache(objectsPerSlab int64) *slabCache {
	sc := &slabCache{}
	size := SlabMinSize
	for i := 0; i < slabClasses; i++ {
		sc.classes[i] = &slabClass{objSize: size, objectsPerSlab: objectsPerSlab}
		size <<= 1
	}
	return sc
}

func (sc *slabCache) classFor(size int64) *slabClass {
	for _, c := range sc.classes {
		if c.objSize >= size {
			return c
		}
	}
	return nil
}

func (c *slabClass) grow() {
	slabSize := c.objSize * c.objectsPerSlab
	region := make([]byte, slabSize)
	idx := int64(len(c.slabs))
	c.slabs = append(c.slabs, region)
	for i := int64(0); i < c.objectsPerSlab; i++ {
		c.free = append(c.free, idx*c.objectsPerSlab+i)
	}
}

func (c *slabClass) slot(flatOffset int64) []byte {
	slabIdx := flatOffset / c.objectsPerSlab
	obj := flatOffset % c.objectsPerSlab
	region := c.slabs[slabIdx]
	start := obj * c.objSize
	return region[start : start+c.objSize : start+c.objSize]
}

// alloc returns a zero-valued object from the smallest class able to
// hold size, growing that class by one slab first if it is
// exhausted. ok is false when size exceeds SlabMaxSize.
func (sc *slabCache) alloc(size int64) ([]byte, bool) {
	if size > SlabMaxSize {
		return nil, false
	}
	sc.mu.Lock()
	defer sc.mu.Unlock()

	c := sc.classFor(size)
	if c == nil {
		return nil, false
	}
	if len(c.free) == 0 {
		c.grow()
	}
	last := len(c.free) - 1
	flat := c.free[last]
	c.free = c.free[:last]
	obj := c.slot(flat)
	for i := range obj {
		obj[i] = 0
	}
	return obj, true
}

// free returns ptr to its class's free list if ptr's address falls
// within a region owned by this cache. ok reports whether ptr was
// recognized as slab-owned.
func (sc *slabCache) free(ptr []byte) bool {
	if len(ptr) == 0 {
		return false
	}
	sc.mu.Lock()
	defer sc.mu.Unlock()

	addr := sliceAddr(ptr)
	for _, c := range sc.classes {
		for slabIdx, region := range c.slabs {
			if !regionContains(region, addr) {
				continue
			}
			off, _ := offsetIn(region, addr)
			obj := off / c.objSize
			c.free = append(c.free, int64(slabIdx)*c.objectsPerSlab+obj)
			return true
		}
	}
	return false
}

// contains reports whether ptr was carved from any slab region,
// without mutating any free list.
func (sc *slabCache) contains(ptr []byte) bool {
	if len(ptr) == 0 {
		return false
	}
	sc.mu.Lock()
	defer sc.mu.Unlock()

	addr := sliceAddr(ptr)
	for _, c := range sc.classes {
		for _, region := range c.slabs {
			if regionContains(region, addr) {
				return true
			}
		}
	}
	return false
}
