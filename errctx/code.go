package errctx

// Code enumerates the fixed error vocabulary shared by every
// component of the memory subsystem. Values below codeBase form this
// shared vocabulary; component-specific codes sit above codeBase,
// starting with the memalloc codes defined at the end of this file.
type Code int

const (
	CodeSuccess Code = iota
	CodeNullPointer
	CodeInvalidArgument
	CodeMemoryAllocation
	CodeFileIO
	CodeNetwork
	CodeUnknown
	CodeThreadLock
	CodeThreadUnlock
	CodeThreadInit
	CodeMemoryPoolInitFailed
	CodeMemoryPoolAllocFailed
	CodeMemoryPoolInvalidFree
	CodeMemoryPoolFull
	CodeMemoryPoolInvalidPool

	// codeBase is the first value available to application-specific
	// codes; component packages should add their own offsets from
	// here rather than picking arbitrary integers.
	codeBase Code = 1000
)

// CodeBase returns the base of the component-specific code range.
// This package already uses CodeBase()+1 through CodeBase()+6 for
// the memalloc codes below, so another component's codes collide
// with none of this package's codes only when they start above those.
func CodeBase() Code { return codeBase }

func (c Code) String() string {
	switch c {
	case CodeSuccess:
		return "success"
	case CodeNullPointer:
		return "null_pointer"
	case CodeInvalidArgument:
		return "invalid_argument"
	case CodeMemoryAllocation:
		return "memory_allocation"
	case CodeFileIO:
		return "file_io"
	case CodeNetwork:
		return "network"
	case CodeThreadLock:
		return "thread_lock"
	case CodeThreadUnlock:
		return "thread_unlock"
	case CodeThreadInit:
		return "thread_init"
	case CodeMemoryPoolInitFailed:
		return "memory_pool_init_failed"
	case CodeMemoryPoolAllocFailed:
		return "memory_pool_alloc_failed"
	case CodeMemoryPoolInvalidFree:
		return "memory_pool_invalid_free"
	case CodeMemoryPoolFull:
		return "memory_pool_full"
	case CodeMemoryPoolInvalidPool:
		return "memory_pool_invalid_pool"
	case CodeUnknown:
		return "unknown"
	}
	return "unknown"
}

// Memalloc-specific codes, offset from codeBase so they never
// collide with codes a translator/aligner consumer defines for
// itself.
const (
	CodeAllocatorNotInitialized = codeBase + iota + 1
	CodeAllocatorAlreadyInitialized
	CodePoolExhausted
	CodeInvalidSize
	CodeDoubleFree
	CodeCorruptBlock
)
