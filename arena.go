package memkit

import (
	"fmt"

	"go.uber.org/zap"
)

type block struct {
	buf      []byte
	capacity int
	offset   int
}

// Arena chains blocks into an allocator that grows instead of running out of
// space. Allocations bump the current block, when it cannot hold the request
// the arena moves to the next block kept by an earlier Reset or obtains a
// bigger one from the memory source.
//
// | block 0 |    | block 1 |    | block 2 |
// |  filled | -> | current | -> |  empty  |
//
// Reset reclaims all allocations while keeping every block for reuse, Free
// shrinks the arena back to its head block, Pack copies everything allocated
// so far into one contiguous buffer. An Arena is not safe for concurrent
// use.
type Arena struct {
	blocks  []*block
	current int
	total   int
	closed  bool
	opts    options
}

// NewArena create an arena whose head block holds capacity bytes. The arena
// grows by obtaining more blocks on demand, an allocation only fails when
// the memory source does.
func NewArena(capacity int, opts ...Option) (*Arena, error) {
	checkSize(capacity)
	a := &Arena{}
	for _, opt := range opts {
		opt(&a.opts)
	}
	a.opts.adjust()
	a.opts.logger = a.opts.logger.Named("arena")

	head, err := a.newBlock(capacity)
	if err != nil {
		return nil, err
	}
	a.blocks = append(a.blocks, head)
	return a, nil
}

func (a *Arena) newBlock(capacity int) (*block, error) {
	buf, err := a.opts.alloc.Allocate(capacity)
	if err != nil {
		return nil, err
	}
	return &block{buf: buf, capacity: capacity}, nil
}

// Alloc allocates size bytes aligned to the configured default alignment.
func (a *Arena) Alloc(size int) ([]byte, error) {
	return a.AllocAligned(size, a.opts.alignment)
}

// AllocAligned allocates size bytes starting at a multiple of alignment
// within the block that serves the request. Alignment must be a power of
// two, alignment 1 disables padding.
func (a *Arena) AllocAligned(size, alignment int) ([]byte, error) {
	checkSize(size)
	checkAlignment(alignment)
	if a.closed {
		return nil, ErrClosed
	}

	if data, ok := a.allocFrom(a.blocks[a.current], size, alignment); ok {
		return data, nil
	}

	// a block kept by an earlier Reset may already be big enough
	if a.current+1 < len(a.blocks) {
		if data, ok := a.allocFrom(a.blocks[a.current+1], size, alignment); ok {
			a.current++
			return data, nil
		}
	}

	grown := a.blocks[a.current].capacity + a.blocks[a.current].capacity/2
	if grown < size {
		grown = size
	}
	nb, err := a.newBlock(grown)
	if err != nil {
		return nil, err
	}

	// splice right after the current block so that downstream blocks stay
	// reachable for reuse and release
	a.blocks = append(a.blocks, nil)
	copy(a.blocks[a.current+2:], a.blocks[a.current+1:])
	a.blocks[a.current+1] = nb
	a.current++
	a.opts.logger.Debug("arena grown",
		zap.Int("block-capacity", grown),
		zap.Int("blocks", len(a.blocks)))

	data, _ := a.allocFrom(nb, size, alignment)
	return data, nil
}

// MustAlloc is similar to Alloc, but panics when the memory source fails.
func (a *Arena) MustAlloc(size int) []byte {
	data, err := a.Alloc(size)
	if err != nil {
		panic(err)
	}
	return data
}

func (a *Arena) allocFrom(b *block, size, alignment int) ([]byte, bool) {
	corrected := alignUp(b.offset, alignment)
	if size > b.capacity-corrected {
		return nil, false
	}
	a.total += corrected + size - b.offset
	b.offset = corrected + size
	return b.buf[corrected:b.offset:b.offset], true
}

// Reset reclaims every allocation at once while keeping all blocks for
// reuse. Later allocations fill the same blocks again in order. The block
// contents are not cleared.
func (a *Arena) Reset() {
	if a.closed {
		return
	}
	for _, b := range a.blocks {
		b.offset = 0
	}
	a.current = 0
	a.total = 0
}

// Free reclaims every allocation and releases all blocks except the head
// back to the memory source, shrinking the arena to its construction
// footprint.
func (a *Arena) Free() error {
	if a.closed {
		return ErrClosed
	}

	var err error
	for i := 1; i < len(a.blocks); i++ {
		if e := a.opts.alloc.Free(a.blocks[i].buf); e != nil && err == nil {
			err = e
		}
		a.blocks[i] = nil
	}
	a.blocks = a.blocks[:1]
	a.blocks[0].offset = 0
	a.current = 0
	a.total = 0
	return err
}

// Pack copies the allocated bytes of every block, in block order, into one
// contiguous buffer obtained from the memory source. The result holds
// exactly Len() bytes. Returns ErrNoData when nothing is allocated. The
// caller owns the returned buffer and releases it through the memory source
// when the source requires that.
func (a *Arena) Pack() ([]byte, error) {
	if a.closed {
		return nil, ErrClosed
	}
	if a.total == 0 {
		return nil, ErrNoData
	}

	packed, err := a.opts.alloc.Allocate(a.total)
	if err != nil {
		return nil, err
	}
	n := 0
	for _, b := range a.blocks[:a.current+1] {
		n += copy(packed[n:], b.buf[:b.offset])
	}
	if n != a.total {
		panic(fmt.Sprintf("bug: packed %d bytes, allocated %d", n, a.total))
	}
	return packed[:n:n], nil
}

// Len returns the number of allocated bytes across all blocks, alignment
// padding included.
func (a *Arena) Len() int {
	return a.total
}

// Capacity returns the total capacity of all blocks in bytes.
func (a *Arena) Capacity() int {
	c := 0
	for _, b := range a.blocks {
		c += b.capacity
	}
	return c
}

// Blocks returns the number of blocks the arena holds.
func (a *Arena) Blocks() int {
	return len(a.blocks)
}

// Close releases every block back to the memory source. The arena cannot be
// used afterwards.
func (a *Arena) Close() error {
	if a.closed {
		return ErrClosed
	}
	a.closed = true

	var err error
	for i, b := range a.blocks {
		if e := a.opts.alloc.Free(b.buf); e != nil && err == nil {
			err = e
		}
		a.blocks[i] = nil
	}
	a.blocks = nil
	a.current = 0
	a.total = 0
	return err
}
