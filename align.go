package memkit

import (
	"fmt"
	"unsafe"
)

// DefaultAlignment the alignment applied by Alloc when no explicit alignment
// is configured, the native word size.
const DefaultAlignment = int(unsafe.Sizeof(uintptr(0)))

// alignUp returns the smallest multiple of align >= n. align must be a
// power of two.
func alignUp(n, align int) int {
	return (n + align - 1) &^ (align - 1)
}

func isPowerOfTwo(n int) bool {
	return n > 0 && n&(n-1) == 0
}

func checkAlignment(align int) {
	if !isPowerOfTwo(align) {
		panic(fmt.Sprintf("invalid alignment %d, must be a power of two", align))
	}
}

func checkSize(size int) {
	if size < 0 {
		panic(fmt.Sprintf("invalid allocation size %d", size))
	}
}
