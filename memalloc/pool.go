package memalloc

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/dev-mirzabicer/limdy/errctx"
)

var poolIDSeq uint64

func nextPoolID() uint64 {
	return atomic.AddUint64(&poolIDSeq, 1)
}

// Pool is a first-fit, splitting, boundary-coalescing heap carved
// out of a single contiguous region. Block headers never live
// in-band; they are kept in blocks, addressed by the byte offset of
// the payload they describe.
type Pool struct {
	id        uint64
	totalSize int64
	region    []byte

	mu     sync.Mutex   // guards blocks/head: structural mutation
	rw     sync.RWMutex // guards used and region-range reads
	blocks map[int64]*blockHeader
	head   int64 // offset of the first block
	used   int64
}

func newPool(size int64) *Pool {
	p := &Pool{
		id:        nextPoolID(),
		totalSize: size,
		region:    make([]byte, size),
		blocks:    make(map[int64]*blockHeader),
		head:      0,
	}
	p.blocks[0] = &blockHeader{
		magic:  blockMagic,
		offset: 0,
		size:   size,
		inUse:  false,
		next:   noBlock,
		prev:   noBlock,
	}
	return p
}

// ID returns the pool's stable identifier, used as the tie-breaker
// key in the pool index instead of the pool's address.
func (p *Pool) ID() uint64 { return p.id }

// TotalSize returns the pool's fixed capacity.
func (p *Pool) TotalSize() int64 { return p.totalSize }

// Stats returns the pool's capacity and currently in-use byte count.
func (p *Pool) Stats() (total, used int64) {
	p.rw.RLock()
	defer p.rw.RUnlock()
	return p.totalSize, p.used
}

// Contains reports whether ptr's storage was carved from this pool's
// region.
func (p *Pool) Contains(ptr []byte) bool {
	if len(ptr) == 0 {
		return false
	}
	p.rw.RLock()
	defer p.rw.RUnlock()
	return regionContains(p.region, sliceAddr(ptr))
}

func (p *Pool) blockFor(ptr []byte) (*blockHeader, bool) {
	off, ok := offsetIn(p.region, sliceAddr(ptr))
	if !ok {
		return nil, false
	}
	b, ok := p.blocks[off]
	return b, ok
}

func verifyMagic(ctx context.Context, b *blockHeader) {
	if b.magic != blockMagic {
		errctx.Log(ctx, errctx.CodeCorruptBlock, errctx.LevelFatal,
			"memory corruption detected: invalid block magic at offset %d", b.offset)
		panic("memalloc: corrupt block header")
	}
}

// Allocate carves size bytes (already alignment-rounded by the
// caller) out of the first free block large enough to hold them,
// splitting off the remainder when it is worth keeping as its own
// free block.
func (p *Pool) Allocate(ctx context.Context, size int64) ([]byte, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	off := p.head
	for off != noBlock {
		b := p.blocks[off]
		verifyMagic(ctx, b)
		if !b.inUse && b.size >= size {
			if b.size >= size+minBlockSize {
				p.split(b, size)
			}
			b.inUse = true
			p.rw.Lock()
			p.used += b.size
			p.rw.Unlock()
			return p.region[b.offset : b.offset+b.size : b.offset+b.size], true
		}
		off = b.next
	}
	return nil, false
}

// split carves a new free block out of the tail of b, leaving b
// exactly size bytes long.
func (p *Pool) split(b *blockHeader, size int64) {
	nb := &blockHeader{
		magic:  blockMagic,
		offset: b.offset + size,
		size:   b.size - size,
		inUse:  false,
		next:   b.next,
		prev:   b.offset,
	}
	if b.next != noBlock {
		p.blocks[b.next].prev = nb.offset
	}
	p.blocks[nb.offset] = nb
	b.next = nb.offset
	b.size = size
}

// Free releases ptr's block back to this pool, coalescing it with an
// immediately adjacent free neighbor on either side.
func (p *Pool) Free(ctx context.Context, ptr []byte) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	b, ok := p.blockFor(ptr)
	if !ok {
		return false
	}
	verifyMagic(ctx, b)
	if !b.inUse {
		errctx.Log(ctx, errctx.CodeDoubleFree, errctx.LevelError,
			"double free detected at offset %d", b.offset)
		return false
	}
	b.inUse = false
	p.rw.Lock()
	p.used -= b.size
	p.rw.Unlock()

	p.coalesce(b)
	return true
}

func (p *Pool) coalesce(b *blockHeader) {
	if b.prev != noBlock {
		if prev := p.blocks[b.prev]; !prev.inUse {
			prev.size += b.size
			prev.next = b.next
			if b.next != noBlock {
				p.blocks[b.next].prev = prev.offset
			}
			delete(p.blocks, b.offset)
			b = prev
		}
	}
	if b.next != noBlock {
		if next := p.blocks[b.next]; !next.inUse {
			b.size += next.size
			b.next = next.next
			if next.next != noBlock {
				p.blocks[next.next].prev = b.offset
			}
			delete(p.blocks, next.offset)
		}
	}
}

// Reallocate resizes ptr's block to newSize, growing in place when
// the immediately following block is free and large enough, and
// falling back to allocate-copy-free otherwise. ok is false when the
// pool has no room to satisfy newSize at all.
func (p *Pool) Reallocate(ctx context.Context, ptr []byte, newSize int64) ([]byte, bool) {
	p.mu.Lock()

	b, ok := p.blockFor(ptr)
	if !ok || !b.inUse {
		p.mu.Unlock()
		return nil, false
	}

	if newSize <= b.size {
		shrunk := p.region[b.offset : b.offset+newSize : b.offset+newSize]
		p.mu.Unlock()
		return shrunk, true
	}

	if b.next != noBlock {
		if next := p.blocks[b.next]; !next.inUse && b.size+next.size >= newSize {
			oldSize := b.size
			total := b.size + next.size
			delete(p.blocks, next.offset)
			b.next = next.next
			if next.next != noBlock {
				p.blocks[next.next].prev = b.offset
			}
			b.size = total
			if total-newSize >= minBlockSize {
				p.split(b, newSize)
			}
			p.rw.Lock()
			p.used += b.size - oldSize
			p.rw.Unlock()
			grown := p.region[b.offset : b.offset+b.size : b.offset+b.size]
			p.mu.Unlock()
			return grown, true
		}
	}
	p.mu.Unlock()

	fresh, ok := p.Allocate(ctx, newSize)
	if !ok {
		return nil, false
	}
	copy(fresh, ptr)
	p.Free(ctx, ptr)
	return fresh, true
}

// Defragment walks the block list once, merging every run of
// adjacent free blocks. Free already coalesces on the fly;
// this exists for callers that want to collapse fragmentation left
// behind by a burst of AllocFrom/FreeTo calls against this pool
// specifically.
func (p *Pool) Defragment() {
	p.mu.Lock()
	defer p.mu.Unlock()

	off := p.head
	for off != noBlock {
		b := p.blocks[off]
		if b.next == noBlock {
			break
		}
		next := p.blocks[b.next]
		if !b.inUse && !next.inUse {
			b.size += next.size
			b.next = next.next
			if next.next != noBlock {
				p.blocks[next.next].prev = b.offset
			}
			delete(p.blocks, next.offset)
			continue // re-examine b against its new next
		}
		off = b.next
	}
}
