package kernel

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// MapAnonymous requests a fresh, zeroed, private anonymous mapping of
// length bytes at an address chosen by the kernel. It mirrors spec.md's
// map_anonymous(length) collaborator.
//
// Grounded on the pack's only direct unix.Mmap caller
// (other_examples dittofs/pkg/cache/wal/mmap.go), adapted from a
// file-backed MAP_SHARED mapping to an anonymous MAP_PRIVATE one.
func MapAnonymous(length int) ([]byte, error) {
	if length <= 0 {
		return nil, fmt.Errorf("map_anonymous: invalid length %d", length)
	}

	data, err := unix.Mmap(-1, 0, length, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_PRIVATE|unix.MAP_ANON)
	if err != nil {
		return nil, fmt.Errorf("map_anonymous(%d): %w", length, err)
	}

	return data, nil
}

// Unmap releases exactly the range backing data, as returned by a prior
// MapAnonymous call. It mirrors spec.md's unmap(addr, length).
func Unmap(data []byte) error {
	if len(data) == 0 {
		return nil
	}

	if err := unix.Munmap(data); err != nil {
		return fmt.Errorf("unmap: %w", err)
	}

	return nil
}

// PageSize returns the system page size in bytes, spec.md's page_size().
func PageSize() int {
	return unix.Getpagesize()
}
