package memkit

import (
	"errors"
	"testing"

	"github.com/fagongzi/memkit/buf"
	"github.com/stretchr/testify/assert"
)

var errSourceExhausted = errors.New("source exhausted")

// errSource serves the first remaining allocations from the heap and fails
// afterwards.
type errSource struct {
	remaining int
}

func (s *errSource) Allocate(size int) ([]byte, error) {
	if s.remaining <= 0 {
		return nil, errSourceExhausted
	}
	s.remaining--
	return make([]byte, size), nil
}

func (s *errSource) Free([]byte) error {
	return nil
}

// recordSource counts releases back to the source.
type recordSource struct {
	frees int
}

func (s *recordSource) Allocate(size int) ([]byte, error) {
	return make([]byte, size), nil
}

func (s *recordSource) Free([]byte) error {
	s.frees++
	return nil
}

func TestOptionDefaults(t *testing.T) {
	var opts options
	opts.adjust()
	assert.Equal(t, buf.Default, opts.alloc)
	assert.Equal(t, DefaultAlignment, opts.alignment)
	assert.NotNil(t, opts.logger)
}

func TestWithDefaultAlignment(t *testing.T) {
	l, err := NewLinear(64, WithDefaultAlignment(16))
	assert.NoError(t, err)
	defer l.Close()

	_, err = l.Alloc(1)
	assert.NoError(t, err)
	_, err = l.Alloc(1)
	assert.NoError(t, err)
	assert.Equal(t, 17, l.Offset())
}

func TestWithInvalidAlignment(t *testing.T) {
	assert.Panics(t, func() {
		_, _ = NewLinear(64, WithDefaultAlignment(3))
	})
	assert.Panics(t, func() {
		_, _ = NewLinear(64, WithDefaultAlignment(-8))
	})
}

func TestConstructorSourceFailure(t *testing.T) {
	_, err := NewLinear(64, WithAllocator(&errSource{}))
	assert.ErrorIs(t, err, errSourceExhausted)

	_, err = NewStack(64, WithAllocator(&errSource{}))
	assert.ErrorIs(t, err, errSourceExhausted)

	_, err = NewPool(4, 16, WithAllocator(&errSource{}))
	assert.ErrorIs(t, err, errSourceExhausted)

	_, err = NewArena(64, WithAllocator(&errSource{}))
	assert.ErrorIs(t, err, errSourceExhausted)
}
