package memkit

import (
	"fmt"

	"go.uber.org/zap"
)

// Marker is a position saved from a Stack allocator. Rolling back to a
// marker frees every allocation made after the marker was taken. A marker
// is only valid for the allocator that issued it.
type Marker int

// Stack extends the linear strategy with LIFO rollback: Marker saves the
// current position and FreeToMarker moves the offset back to it, freeing
// everything allocated in between as a group.
//
// |   allocated bytes   |  freed by FreeToMarker  |   free bytes   |
// |                     |                         |                |
// 0       <=         marker        <=          offset  <=     capacity
//
// Only the range of a marker is validated. Rolling back to a marker taken
// before an earlier rollback that already discarded it is not detected, the
// caller owns the LIFO discipline. A Stack allocator is not safe for
// concurrent use.
type Stack struct {
	buf      []byte
	capacity int
	offset   int
	closed   bool
	opts     options
}

// NewStack create a stack allocator with a fixed capacity in bytes.
func NewStack(capacity int, opts ...Option) (*Stack, error) {
	checkSize(capacity)
	s := &Stack{capacity: capacity}
	for _, opt := range opts {
		opt(&s.opts)
	}
	s.opts.adjust()
	s.opts.logger = s.opts.logger.Named("stack")

	buf, err := s.opts.alloc.Allocate(capacity)
	if err != nil {
		return nil, err
	}
	s.buf = buf
	return s, nil
}

// Alloc allocates size bytes aligned to the configured default alignment.
// Returns ErrNoSpace when the remaining capacity cannot hold the padded
// allocation, leaving the offset untouched.
func (s *Stack) Alloc(size int) ([]byte, error) {
	return s.AllocAligned(size, s.opts.alignment)
}

// AllocAligned allocates size bytes starting at a multiple of alignment.
// Alignment must be a power of two, alignment 1 disables padding.
func (s *Stack) AllocAligned(size, alignment int) ([]byte, error) {
	checkSize(size)
	checkAlignment(alignment)
	if s.closed {
		return nil, ErrClosed
	}

	corrected := alignUp(s.offset, alignment)
	if size > s.capacity-corrected {
		return nil, ErrNoSpace
	}

	s.offset = corrected + size
	return s.buf[corrected:s.offset:s.offset], nil
}

// MustAlloc is similar to Alloc, but panics if there is no space left.
func (s *Stack) MustAlloc(size int) []byte {
	data, err := s.Alloc(size)
	if err != nil {
		panic(err)
	}
	return data
}

// Marker returns the current position.
func (s *Stack) Marker() Marker {
	return Marker(s.offset)
}

// FreeToMarker rolls the offset back to m, freeing every allocation made
// after the marker was taken. Panics when the marker lies outside
// [0, Offset()].
func (s *Stack) FreeToMarker(m Marker) {
	if m < 0 || int(m) > s.offset {
		panic(fmt.Sprintf("invalid marker %d, offset %d", m, s.offset))
	}
	s.offset = int(m)
}

// FreeAll frees every allocation at once, moving the offset back to zero.
// The buffer contents are not cleared.
func (s *Stack) FreeAll() {
	s.offset = 0
}

// Resize grows the buffer to capacity bytes, copying the allocated prefix
// [0, offset) into the new buffer and releasing the old one to the memory
// source. A smaller or equal capacity is a no-op. Markers stay valid across
// a resize, ranges handed out before it no longer alias the allocator's
// buffer.
func (s *Stack) Resize(capacity int) error {
	checkSize(capacity)
	if s.closed {
		return ErrClosed
	}
	if capacity <= s.capacity {
		return nil
	}

	newBuf, err := s.opts.alloc.Allocate(capacity)
	if err != nil {
		return err
	}
	copy(newBuf, s.buf[:s.offset])
	s.opts.logger.Debug("buffer resized",
		zap.Int("old-capacity", s.capacity),
		zap.Int("new-capacity", capacity))

	old := s.buf
	s.buf = newBuf
	s.capacity = capacity
	return s.opts.alloc.Free(old)
}

// Offset returns the number of bytes in use, alignment padding included.
func (s *Stack) Offset() int {
	return s.offset
}

// Capacity returns the buffer size in bytes.
func (s *Stack) Capacity() int {
	return s.capacity
}

// Close releases the buffer back to the memory source. The allocator cannot
// be used afterwards.
func (s *Stack) Close() error {
	if s.closed {
		return ErrClosed
	}
	s.closed = true
	buf := s.buf
	s.buf = nil
	s.capacity = 0
	s.offset = 0
	return s.opts.alloc.Free(buf)
}
