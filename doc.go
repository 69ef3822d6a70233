// Package memkit provides deterministic allocation strategies over plain
// byte slices for code that cannot afford general purpose heap allocation on
// its hot path, such as per frame scratch memory or request parsing.
//
//   - Linear: one fixed buffer where allocations only move forward and Reset
//     reclaims everything at once.
//   - Stack: linear plus markers, FreeToMarker rolls allocations back in
//     LIFO groups.
//   - Pool: one fixed buffer divided into equal chunks that are freed
//     individually in any order, O(1) both ways.
//   - Arena: a chain of blocks that grows on demand instead of running out
//     of space, Pack exports everything allocated as one contiguous buffer.
//
// None of the allocators is safe for concurrent use, the intended pattern is
// one instance per goroutine or per unit of work. Backing buffers come from
// a buf.Allocator memory source, the Go heap by default or anonymous
// mappings via buf.NewMmapAllocator.
package memkit
