package memkit

import (
	"go.uber.org/zap"
)

// Linear is the simplest allocator: one fixed buffer and an offset that only
// moves forward. Alloc hands out the next aligned range and advances the
// offset, Reset reclaims everything at once. Individual allocations cannot
// be freed.
//
// |   allocated bytes   |   free bytes   |
// |                     |                |
// 0        <=        offset     <=    capacity
//
// A Linear allocator is not safe for concurrent use.
type Linear struct {
	buf      []byte
	capacity int
	offset   int
	closed   bool
	opts     options
}

// NewLinear create a linear allocator with a fixed capacity in bytes.
func NewLinear(capacity int, opts ...Option) (*Linear, error) {
	checkSize(capacity)
	l := &Linear{capacity: capacity}
	for _, opt := range opts {
		opt(&l.opts)
	}
	l.opts.adjust()
	l.opts.logger = l.opts.logger.Named("linear")

	buf, err := l.opts.alloc.Allocate(capacity)
	if err != nil {
		return nil, err
	}
	l.buf = buf
	return l, nil
}

// Alloc allocates size bytes aligned to the configured default alignment.
// Returns ErrNoSpace when the remaining capacity cannot hold the padded
// allocation, leaving the offset untouched.
func (l *Linear) Alloc(size int) ([]byte, error) {
	return l.AllocAligned(size, l.opts.alignment)
}

// AllocAligned allocates size bytes starting at a multiple of alignment.
// Alignment must be a power of two, alignment 1 disables padding.
func (l *Linear) AllocAligned(size, alignment int) ([]byte, error) {
	checkSize(size)
	checkAlignment(alignment)
	if l.closed {
		return nil, ErrClosed
	}

	corrected := alignUp(l.offset, alignment)
	if size > l.capacity-corrected {
		return nil, ErrNoSpace
	}

	l.offset = corrected + size
	return l.buf[corrected:l.offset:l.offset], nil
}

// MustAlloc is similar to Alloc, but panics if there is no space left.
func (l *Linear) MustAlloc(size int) []byte {
	data, err := l.Alloc(size)
	if err != nil {
		panic(err)
	}
	return data
}

// Reset moves the offset back to zero, reclaiming all allocations at once.
// The buffer contents are not cleared, ranges handed out before the reset
// must no longer be used.
func (l *Linear) Reset() {
	l.offset = 0
}

// Resize grows the buffer to capacity bytes, copying the allocated prefix
// [0, offset) into the new buffer and releasing the old one to the memory
// source. A smaller or equal capacity is a no-op. Ranges handed out before
// the grow no longer alias the allocator's buffer.
func (l *Linear) Resize(capacity int) error {
	checkSize(capacity)
	if l.closed {
		return ErrClosed
	}
	if capacity <= l.capacity {
		return nil
	}

	newBuf, err := l.opts.alloc.Allocate(capacity)
	if err != nil {
		return err
	}
	copy(newBuf, l.buf[:l.offset])
	l.opts.logger.Debug("buffer resized",
		zap.Int("old-capacity", l.capacity),
		zap.Int("new-capacity", capacity))

	old := l.buf
	l.buf = newBuf
	l.capacity = capacity
	return l.opts.alloc.Free(old)
}

// Offset returns the number of bytes in use, alignment padding included.
func (l *Linear) Offset() int {
	return l.offset
}

// Capacity returns the buffer size in bytes.
func (l *Linear) Capacity() int {
	return l.capacity
}

// RawBuf returns the underlying buffer. This method requires special care,
// as Resize replaces the buffer and invalidates the returned slice.
func (l *Linear) RawBuf() []byte {
	return l.buf[:l.capacity]
}

// Close releases the buffer back to the memory source. The allocator cannot
// be used afterwards.
func (l *Linear) Close() error {
	if l.closed {
		return ErrClosed
	}
	l.closed = true
	buf := l.buf
	l.buf = nil
	l.capacity = 0
	l.offset = 0
	return l.opts.alloc.Free(buf)
}
