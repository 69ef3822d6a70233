//go:build !linux

package buf

import (
	"errors"
)

// NewMmapAllocator is only available on linux.
func NewMmapAllocator() (Allocator, error) {
	return nil, errors.ErrUnsupported
}
