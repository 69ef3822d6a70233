// Package buf provides the backing memory sources used by the allocators.
package buf

// Allocator is a low level memory source. Every buffer an allocator in this
// module owns is obtained from an Allocator and returned to it when released.
type Allocator interface {
	// Allocate allocate a []byte with len(data) >= size, and the returned
	// []byte cannot be expanded in use.
	Allocate(size int) ([]byte, error)
	// Free free the allocated memory. The value must be a slice previously
	// returned by Allocate on the same Allocator.
	Free(buf []byte) error
}

// Default the memory source used when none is configured, allocating from
// the Go heap and leaving reclamation to the GC.
var Default Allocator = newHeapAllocator()

type heapAllocator struct {
}

func newHeapAllocator() Allocator {
	return &heapAllocator{}
}

func (ha *heapAllocator) Allocate(size int) ([]byte, error) {
	return make([]byte, size), nil
}

func (ha *heapAllocator) Free([]byte) error {
	return nil
}
