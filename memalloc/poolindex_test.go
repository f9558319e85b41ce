package memalloc

import "testing"

func TestPoolIndexFindBestFit(t *testing.T) {
	var idx poolIndex
	sizes := []int64{1024, 4096, 256, 16384, 512}
	pools := make([]*Pool, 0, len(sizes))
	for _, s := range sizes {
		p := newPool(s)
		pools = append(pools, p)
		idx.insert(p)
	}

	tests := []struct {
		want    int64
		bestCap int64
	}{
		{100, 256},
		{256, 256},
		{300, 512},
		{5000, 16384},
		{16384, 16384},
	}
	for _, tc := range tests {
		got := idx.findBestFit(tc.want)
		if got == nil {
			t.Fatalf("findBestFit(%d): expected a pool, got nil", tc.want)
		}
		if got.TotalSize() != tc.bestCap {
			t.Errorf("findBestFit(%d) = pool of size %d, want %d", tc.want, got.TotalSize(), tc.bestCap)
		}
	}

	if got := idx.findBestFit(20000); got != nil {
		t.Errorf("findBestFit(20000) = pool of size %d, want nil", got.TotalSize())
	}
}

func TestPoolIndexRemove(t *testing.T) {
	var idx poolIndex
	p1 := newPool(1024)
	p2 := newPool(1024)
	idx.insert(p1)
	idx.insert(p2)

	idx.remove(p1)

	var seen []*Pool
	idx.walk(func(p *Pool) { seen = append(seen, p) })
	if len(seen) != 1 || seen[0] != p2 {
		t.Fatalf("expected only p2 to remain, got %v", seen)
	}
}

func TestPoolIndexEqualSizeTieBreak(t *testing.T) {
	var idx poolIndex
	var pools []*Pool
	for i := 0; i < 20; i++ {
		p := newPool(4096)
		pools = append(pools, p)
		idx.insert(p)
	}
	var seen []*Pool
	idx.walk(func(p *Pool) { seen = append(seen, p) })
	if len(seen) != len(pools) {
		t.Fatalf("expected %d nodes for %d equal-size pools, got %d", len(pools), len(pools), len(seen))
	}
}

func TestPoolIndexStaysValidRedBlackAfterMutation(t *testing.T) {
	var idx poolIndex
	var pools []*Pool
	sizes := []int64{100, 900, 300, 700, 500, 500, 200, 800, 400, 600}
	for _, s := range sizes {
		p := newPool(s)
		pools = append(pools, p)
		idx.insert(p)
		if violations := validateRedBlack(&idx); len(violations) != 0 {
			t.Fatalf("after inserting size %d: %v", s, violations)
		}
	}

	for i, p := range pools {
		idx.remove(p)
		if violations := validateRedBlack(&idx); len(violations) != 0 {
			t.Fatalf("after removing pool %d (size %d): %v", i, p.TotalSize(), violations)
		}
	}
}

func TestPoolIndexWalkAscending(t *testing.T) {
	var idx poolIndex
	sizes := []int64{500, 100, 900, 300, 700}
	for _, s := range sizes {
		idx.insert(newPool(s))
	}
	var prev int64 = -1
	idx.walk(func(p *Pool) {
		if p.TotalSize() < prev {
			t.Fatalf("walk not in ascending order: saw %d after %d", p.TotalSize(), prev)
		}
		prev = p.TotalSize()
	})
}
