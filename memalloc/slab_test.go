package memalloc

import "testing"

func TestSlabCacheAllocRoutesToSmallestClass(t *testing.T) {
	sc := newSlabCache(64)
	tests := []struct {
		size int64
		want int64
	}{
		{1, 16},
		{16, 16},
		{17, 32},
		{65, 128},
		{128, 128},
	}
	for _, tc := range tests {
		ptr, ok := sc.alloc(tc.size)
		if !ok {
			t.Fatalf("alloc(%d): expected success", tc.size)
		}
		if int64(len(ptr)) != tc.want {
			t.Errorf("alloc(%d) = %d bytes, want %d", tc.size, len(ptr), tc.want)
		}
	}
}

func TestSlabCacheRejectsOversizeRequests(t *testing.T) {
	sc := newSlabCache(64)
	if _, ok := sc.alloc(SlabMaxSize + 1); ok {
		t.Fatal("expected alloc above SlabMaxSize to fail")
	}
}

func TestSlabCacheFreeReturnsObjectToItsClass(t *testing.T) {
	sc := newSlabCache(64)
	ptr, ok := sc.alloc(32)
	if !ok {
		t.Fatal("expected alloc to succeed")
	}
	if !sc.free(ptr) {
		t.Fatal("expected free to recognize a slab-owned pointer")
	}

	// The freed slot should be reused rather than growing a new slab.
	c := sc.classFor(32)
	slabsBefore := len(c.slabs)
	if _, ok := sc.alloc(32); !ok {
		t.Fatal("expected a second alloc to succeed")
	}
	if len(c.slabs) != slabsBefore {
		t.Fatalf("expected the freed slot to be reused without growing, had %d slabs, now have %d",
			slabsBefore, len(c.slabs))
	}
}

func TestSlabCacheGrowsLazily(t *testing.T) {
	sc := newSlabCache(64)
	c := sc.classFor(16)
	if len(c.slabs) != 0 {
		t.Fatal("expected no slabs before the first allocation")
	}
	if _, ok := sc.alloc(16); !ok {
		t.Fatal("expected alloc to succeed")
	}
	if len(c.slabs) != 1 {
		t.Fatalf("expected exactly one slab after the first allocation, got %d", len(c.slabs))
	}
}

func TestSlabCacheFreeRejectsForeignPointer(t *testing.T) {
	sc := newSlabCache(64)
	foreign := make([]byte, 16)
	if sc.free(foreign) {
		t.Fatal("expected free to reject a pointer the cache never handed out")
	}
}

func TestSlabCacheContains(t *testing.T) {
	sc := newSlabCache(64)
	ptr, _ := sc.alloc(64)
	if !sc.contains(ptr) {
		t.Fatal("expected contains to recognize its own allocation")
	}
	foreign := make([]byte, 64)
	if sc.contains(foreign) {
		t.Fatal("expected contains to reject a foreign slice")
	}
}
