package memalloc

import sigar "github.com/cloudfoundry/gosigar"

// Config parameterizes an Allocator at Init time. Zero or negative
// fields are replaced with the fixed defaults below (64-byte blocks,
// 1MiB small pools, a 10MiB large pool, 8 pools, 64 objects per
// slab); unlike DefaultConfig, these are not scaled to free memory.
type Config struct {
	// SmallBlockSize is kept in the Allocator's configuration; it does
	// not affect pool sizing or bound any single allocation.
	SmallBlockSize int64
	// SmallPoolSize is the capacity given to each small pool created
	// at Init time.
	SmallPoolSize int64
	// LargePoolSize is the capacity of the single fallback pool used
	// when no small pool can satisfy a request.
	LargePoolSize int64
	// MaxPools bounds how many small pools Init and Create together
	// may register.
	MaxPools int
	// ObjectsPerSlab is how many objects each slab-cache size class
	// grows by when its free list runs dry.
	ObjectsPerSlab int64
}

const (
	defaultSmallBlockSize int64 = 64
	defaultSmallPoolSize  int64 = 1 << 20  // 1MiB
	defaultLargePoolSize  int64 = 10 << 20 // 10MiB
	defaultMaxPools       int   = 8
	defaultObjectsPerSlab int64 = 64
)

// DefaultConfig returns a MaxPools of eight and pool sizes scaled off
// free system memory, the same relative-to-RAM sizing the teacher's
// own llrb/bogn packages derive via getsysmem: the large pool gets a
// sixteenth of free memory and each small pool an eighth of that.
// When a sixteenth of free memory does not exceed the 10MiB default
// large pool, the fixed constants below are used instead.
func DefaultConfig() Config {
	free := freeSystemMemory()
	smallPoolSize := defaultSmallPoolSize
	largePoolSize := defaultLargePoolSize
	if budget := int64(free) / 16; budget > largePoolSize {
		largePoolSize = budget
		smallPoolSize = budget / int64(defaultMaxPools)
	}
	return Config{
		SmallBlockSize: defaultSmallBlockSize,
		SmallPoolSize:  smallPoolSize,
		LargePoolSize:  largePoolSize,
		MaxPools:       defaultMaxPools,
		ObjectsPerSlab: defaultObjectsPerSlab,
	}
}

// freeSystemMemory reports free physical memory, mirroring the
// getsysmem helper the teacher's llrb and bogn config packages use to
// size their own arenas off sigar.Mem rather than a hardcoded figure.
func freeSystemMemory() uint64 {
	mem := sigar.Mem{}
	if err := mem.Get(); err != nil {
		return 0
	}
	return mem.Free
}

func (c Config) withDefaults() Config {
	if c.SmallBlockSize <= 0 {
		c.SmallBlockSize = defaultSmallBlockSize
	}
	if c.SmallPoolSize <= 0 {
		c.SmallPoolSize = defaultSmallPoolSize
	}
	if c.LargePoolSize <= 0 {
		c.LargePoolSize = defaultLargePoolSize
	}
	if c.MaxPools <= 0 {
		c.MaxPools = defaultMaxPools
	}
	if c.ObjectsPerSlab <= 0 {
		c.ObjectsPerSlab = defaultObjectsPerSlab
	}
	return c
}
