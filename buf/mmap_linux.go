package buf

import (
	"fmt"
	"os"
	"sync"
	"unsafe"

	"golang.org/x/sys/unix"
)

// NewMmapAllocator create an Allocator backed by anonymous private mappings,
// keeping the buffers outside the Go heap. Sizes are rounded up to the page
// size, so len(data) may exceed the requested size. Mappings stay alive
// until Free, the GC never reclaims them.
func NewMmapAllocator() (Allocator, error) {
	return &mmapAllocator{
		pageSize: os.Getpagesize(),
		active:   make(map[*byte][]byte),
	}, nil
}

type mmapAllocator struct {
	pageSize int

	mu     sync.Mutex
	active map[*byte][]byte
}

func (ma *mmapAllocator) Allocate(size int) ([]byte, error) {
	if size < 0 {
		panic(fmt.Sprintf("invalid allocation size %d", size))
	}
	if size == 0 {
		return nil, nil
	}

	length := (size + ma.pageSize - 1) &^ (ma.pageSize - 1)
	data, err := unix.Mmap(-1, 0, length,
		unix.PROT_READ|unix.PROT_WRITE,
		unix.MAP_ANONYMOUS|unix.MAP_PRIVATE)
	if err != nil {
		return nil, err
	}

	ma.mu.Lock()
	ma.active[unsafe.SliceData(data)] = data
	ma.mu.Unlock()
	return data, nil
}

// Free releases the mapping that backs data. Any prefix of a slice returned
// by Allocate is accepted, the whole mapping is released.
func (ma *mmapAllocator) Free(data []byte) error {
	if len(data) == 0 {
		return nil
	}

	ma.mu.Lock()
	mapping, ok := ma.active[unsafe.SliceData(data)]
	if ok {
		delete(ma.active, unsafe.SliceData(data))
	}
	ma.mu.Unlock()
	if !ok {
		return unix.EINVAL
	}
	return unix.Munmap(mapping)
}
