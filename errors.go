package memkit

import (
	"errors"
)

var (
	// ErrNoSpace returned when an allocator has not enough free space left
	// to satisfy an allocation.
	ErrNoSpace = errors.New("memkit: not enough space")
	// ErrNoData returned when packing an arena that holds no allocated bytes.
	ErrNoData = errors.New("memkit: no data to pack")
	// ErrClosed returned when using an allocator after Close.
	ErrClosed = errors.New("memkit: allocator is closed")
	// ErrForeignChunk returned when freeing a chunk that does not belong to
	// the pool.
	ErrForeignChunk = errors.New("memkit: chunk does not belong to this pool")
	// ErrDoubleFree returned when freeing a pool chunk that is already free.
	ErrDoubleFree = errors.New("memkit: chunk is already free")
)
