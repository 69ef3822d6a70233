package memkit

import (
	"github.com/fagongzi/memkit/buf"
	"go.uber.org/zap"
)

// Option configures how an allocator is built.
type Option func(*options)

// WithAllocator set the memory source used to create, resize and release the
// underlying buffers. All buffers an allocator owns come from this source
// and are returned to it on Close.
func WithAllocator(alloc buf.Allocator) Option {
	return func(opts *options) {
		opts.alloc = alloc
	}
}

// WithDefaultAlignment set the alignment applied by Alloc. Must be a power
// of two. Alignment 1 disables padding entirely.
func WithDefaultAlignment(alignment int) Option {
	return func(opts *options) {
		opts.alignment = alignment
	}
}

// WithLogger set logger for the allocator
func WithLogger(logger *zap.Logger) Option {
	return func(opts *options) {
		opts.logger = logger
	}
}

type options struct {
	alloc     buf.Allocator
	alignment int
	logger    *zap.Logger
}

func (opts *options) adjust() {
	if opts.alloc == nil {
		opts.alloc = buf.Default
	}
	if opts.alignment == 0 {
		opts.alignment = DefaultAlignment
	}
	checkAlignment(opts.alignment)
	opts.logger = adjustLogger(opts.logger)
}
