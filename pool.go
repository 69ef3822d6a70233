package memkit

import (
	"fmt"
	"unsafe"
)

// Pool divides one fixed buffer into equally sized chunks and hands them out
// in O(1). Unlike the other allocators chunks can be freed individually, in
// any order. Free chunks are tracked by a stack of chunk indices, so chunks
// carry no header and the chunk size has no minimum beyond one byte.
//
// Alloc performs no validation beyond the empty check. Free validates that
// the chunk belongs to the pool and is not already free.
//
// A Pool is not safe for concurrent use.
type Pool struct {
	buf        []byte
	chunkSize  int
	chunkCount int
	free       []int32
	taken      []bool
	closed     bool
	opts       options
}

// NewPool create a pool of chunkCount chunks of chunkSize bytes each. The
// chunk size is rounded up to the configured default alignment, so every
// chunk starts aligned. chunkCount may be zero, such a pool holds no memory
// and every Alloc returns ErrNoSpace.
func NewPool(chunkCount, chunkSize int, opts ...Option) (*Pool, error) {
	if chunkCount < 0 {
		panic(fmt.Sprintf("invalid chunk count %d", chunkCount))
	}
	if chunkSize <= 0 {
		panic(fmt.Sprintf("invalid chunk size %d", chunkSize))
	}

	p := &Pool{chunkCount: chunkCount}
	for _, opt := range opts {
		opt(&p.opts)
	}
	p.opts.adjust()
	p.opts.logger = p.opts.logger.Named("pool")
	p.chunkSize = alignUp(chunkSize, p.opts.alignment)

	buf, err := p.opts.alloc.Allocate(p.chunkSize * chunkCount)
	if err != nil {
		return nil, err
	}
	p.buf = buf
	p.free = make([]int32, 0, chunkCount)
	p.taken = make([]bool, chunkCount)
	p.reload()
	return p, nil
}

// reload rebuilds the free stack so that chunks are handed out in buffer
// order again, chunk 0 first.
func (p *Pool) reload() {
	p.free = p.free[:0]
	for i := p.chunkCount - 1; i >= 0; i-- {
		p.free = append(p.free, int32(i))
	}
	for i := range p.taken {
		p.taken[i] = false
	}
}

// Alloc takes a free chunk from the pool. The chunk keeps whatever bytes it
// held when it was last freed. Returns ErrNoSpace when every chunk is taken.
func (p *Pool) Alloc() ([]byte, error) {
	if p.closed {
		return nil, ErrClosed
	}
	if len(p.free) == 0 {
		return nil, ErrNoSpace
	}

	idx := int(p.free[len(p.free)-1])
	p.free = p.free[:len(p.free)-1]
	p.taken[idx] = true
	start := idx * p.chunkSize
	return p.buf[start : start+p.chunkSize : start+p.chunkSize], nil
}

// MustAlloc is similar to Alloc, but panics if every chunk is taken.
func (p *Pool) MustAlloc() []byte {
	chunk, err := p.Alloc()
	if err != nil {
		panic(err)
	}
	return chunk
}

// Free returns a chunk to the pool. The chunk must be a slice returned by
// Alloc on this pool: ErrForeignChunk when it is not, ErrDoubleFree when the
// chunk is already free. The freed chunk is the first one Alloc hands out
// next.
func (p *Pool) Free(chunk []byte) error {
	if p.closed {
		return ErrClosed
	}
	if len(chunk) != p.chunkSize {
		return ErrForeignChunk
	}

	base := uintptr(unsafe.Pointer(unsafe.SliceData(p.buf)))
	ptr := uintptr(unsafe.Pointer(unsafe.SliceData(chunk)))
	if ptr < base {
		return ErrForeignChunk
	}
	diff := ptr - base
	if diff%uintptr(p.chunkSize) != 0 {
		return ErrForeignChunk
	}
	idx := int(diff / uintptr(p.chunkSize))
	if idx >= p.chunkCount {
		return ErrForeignChunk
	}
	if !p.taken[idx] {
		return ErrDoubleFree
	}

	p.taken[idx] = false
	p.free = append(p.free, int32(idx))
	return nil
}

// MustFree is similar to Free, but panics if the chunk is foreign or already
// free.
func (p *Pool) MustFree(chunk []byte) {
	if err := p.Free(chunk); err != nil {
		panic(err)
	}
}

// FreeAll returns every chunk to the pool at once, restoring the original
// hand out order.
func (p *Pool) FreeAll() {
	if p.closed {
		return
	}
	p.reload()
}

// ChunkCount returns the number of chunks the pool holds.
func (p *Pool) ChunkCount() int {
	return p.chunkCount
}

// ChunkSize returns the size of every chunk in bytes, after rounding up to
// the configured default alignment.
func (p *Pool) ChunkSize() int {
	return p.chunkSize
}

// Available returns the number of free chunks.
func (p *Pool) Available() int {
	return len(p.free)
}

// Close releases the buffer back to the memory source. The pool cannot be
// used afterwards.
func (p *Pool) Close() error {
	if p.closed {
		return ErrClosed
	}
	p.closed = true
	buf := p.buf
	p.buf = nil
	p.free = nil
	p.taken = nil
	return p.opts.alloc.Free(buf)
}
