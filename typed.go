package memkit

import (
	"fmt"
	"unsafe"

	"github.com/fagongzi/util/hack"
)

// Allocator is the surface shared by the bump style allocators. Linear,
// Stack and Arena implement it, Pool does not, its chunks have a fixed size.
type Allocator interface {
	// Alloc allocates size bytes at the configured default alignment.
	Alloc(size int) ([]byte, error)
	// AllocAligned allocates size bytes starting at a multiple of alignment.
	AllocAligned(size, alignment int) ([]byte, error)
}

var (
	_ Allocator = (*Linear)(nil)
	_ Allocator = (*Stack)(nil)
	_ Allocator = (*Arena)(nil)
)

// New allocates zeroed storage for a value of T inside the allocator and
// returns a pointer to it. T must not contain pointers of any kind, the
// garbage collector does not scan allocator memory, anything referenced only
// from there can be reclaimed while still in use.
func New[T any](a Allocator) (*T, error) {
	var zero T
	size := int(unsafe.Sizeof(zero))
	if size == 0 {
		return new(T), nil
	}

	data, err := a.AllocAligned(size, int(unsafe.Alignof(zero)))
	if err != nil {
		return nil, err
	}
	clear(data)
	return (*T)(unsafe.Pointer(unsafe.SliceData(data))), nil
}

// MakeSlice allocates zeroed storage for n values of T inside the allocator,
// returning a slice with len and cap both n. The pointer rules of New apply,
// and appending beyond cap silently leaves allocator memory.
func MakeSlice[T any](a Allocator, n int) ([]T, error) {
	if n < 0 {
		panic(fmt.Sprintf("invalid slice length %d", n))
	}
	var zero T
	size := int(unsafe.Sizeof(zero))
	if size == 0 || n == 0 {
		return make([]T, n), nil
	}

	data, err := a.AllocAligned(size*n, int(unsafe.Alignof(zero)))
	if err != nil {
		return nil, err
	}
	clear(data)
	return unsafe.Slice((*T)(unsafe.Pointer(unsafe.SliceData(data))), n), nil
}

// InternBytes copies v into the allocator and returns the copy.
func InternBytes(a Allocator, v []byte) ([]byte, error) {
	data, err := a.AllocAligned(len(v), 1)
	if err != nil {
		return nil, err
	}
	copy(data, v)
	return data, nil
}

// InternString copies v into the allocator and returns a string view backed
// by allocator memory. This method requires special care, the string becomes
// invalid once its bytes are reclaimed by a reset or rollback.
func InternString(a Allocator, v string) (string, error) {
	data, err := a.AllocAligned(len(v), 1)
	if err != nil {
		return "", err
	}
	copy(data, v)
	return hack.SliceToString(data), nil
}
