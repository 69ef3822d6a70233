package memkit

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStackAlloc(t *testing.T) {
	s, err := NewStack(64, WithDefaultAlignment(8))
	assert.NoError(t, err)
	defer s.Close()

	data, err := s.Alloc(10)
	assert.NoError(t, err)
	assert.Equal(t, 10, len(data))
	assert.Equal(t, 10, s.Offset())

	data, err = s.Alloc(20)
	assert.NoError(t, err)
	assert.Equal(t, 20, len(data))
	assert.Equal(t, 36, s.Offset())

	_, err = s.Alloc(64)
	assert.ErrorIs(t, err, ErrNoSpace)
	assert.Equal(t, 36, s.Offset())
}

func TestStackMarkerRollback(t *testing.T) {
	s, err := NewStack(64, WithDefaultAlignment(8))
	assert.NoError(t, err)
	defer s.Close()

	_, err = s.Alloc(24)
	assert.NoError(t, err)

	m := s.Marker()
	assert.Equal(t, Marker(24), m)

	first, err := s.Alloc(10)
	assert.NoError(t, err)
	_, err = s.Alloc(10)
	assert.NoError(t, err)
	assert.Equal(t, 50, s.Offset())

	s.FreeToMarker(m)
	assert.Equal(t, 24, s.Offset())

	// the rolled back range is handed out again
	second, err := s.Alloc(10)
	assert.NoError(t, err)
	assert.Same(t, &first[0], &second[0])
}

func TestStackNestedMarkers(t *testing.T) {
	s, err := NewStack(64, WithDefaultAlignment(8))
	assert.NoError(t, err)
	defer s.Close()

	_, err = s.Alloc(8)
	assert.NoError(t, err)
	m1 := s.Marker()

	_, err = s.Alloc(8)
	assert.NoError(t, err)
	m2 := s.Marker()

	_, err = s.Alloc(8)
	assert.NoError(t, err)
	assert.Equal(t, 24, s.Offset())

	s.FreeToMarker(m2)
	assert.Equal(t, 16, s.Offset())
	s.FreeToMarker(m1)
	assert.Equal(t, 8, s.Offset())
}

func TestStackFreeAll(t *testing.T) {
	s, err := NewStack(64)
	assert.NoError(t, err)
	defer s.Close()

	_, err = s.Alloc(32)
	assert.NoError(t, err)
	s.FreeAll()
	assert.Equal(t, 0, s.Offset())

	_, err = s.Alloc(64)
	assert.NoError(t, err)
}

func TestStackMarkerRange(t *testing.T) {
	s, err := NewStack(64)
	assert.NoError(t, err)
	defer s.Close()

	_, err = s.Alloc(16)
	assert.NoError(t, err)
	m := s.Marker()
	s.FreeAll()

	// the marker now points past the offset
	assert.Panics(t, func() {
		s.FreeToMarker(m)
	})
	assert.Panics(t, func() {
		s.FreeToMarker(Marker(-1))
	})
}

func TestStackResize(t *testing.T) {
	s, err := NewStack(32, WithDefaultAlignment(8))
	assert.NoError(t, err)
	defer s.Close()

	data, err := s.Alloc(24)
	assert.NoError(t, err)
	copy(data, bytes.Repeat([]byte{'d'}, 24))
	m := s.Marker()

	assert.NoError(t, s.Resize(128))
	assert.Equal(t, 128, s.Capacity())
	assert.Equal(t, 24, s.Offset())
	assert.Equal(t, bytes.Repeat([]byte{'d'}, 24), s.buf[:24])

	// markers stay valid across a resize
	_, err = s.Alloc(64)
	assert.NoError(t, err)
	s.FreeToMarker(m)
	assert.Equal(t, 24, s.Offset())
}

func TestStackClose(t *testing.T) {
	src := &recordSource{}
	s, err := NewStack(32, WithAllocator(src))
	assert.NoError(t, err)

	assert.NoError(t, s.Close())
	assert.Equal(t, 1, src.frees)

	_, err = s.Alloc(1)
	assert.ErrorIs(t, err, ErrClosed)
	assert.ErrorIs(t, s.Resize(64), ErrClosed)
	assert.ErrorIs(t, s.Close(), ErrClosed)
}

func BenchmarkStackMarkerCycle(b *testing.B) {
	s, err := NewStack(1 << 16)
	assert.NoError(b, err)
	defer s.Close()

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		m := s.Marker()
		if _, err := s.Alloc(64); err != nil {
			s.FreeAll()
			continue
		}
		s.FreeToMarker(m)
	}
}
