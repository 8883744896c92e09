package kernel

import (
	"fmt"
	"unsafe"
)

// Break emulates a process program break on top of a single large
// anonymous reservation. Go has no safe way to call the libc sbrk
// directly (it would race the Go runtime's own heap and stack probing),
// so this reserves one big anonymous mapping up front — cheap, because
// anonymous pages are not committed by the kernel until first touched —
// and tracks a watermark offset into it. Moving the break advances the
// watermark; growing past the reservation is a fatal kernel failure,
// never a silent remap, because remapping could relocate addresses
// already handed out to the allocator's callers.
//
// Grounded on the bump-pointer/reserved-backing-slice shape of the
// teacher's internal/allocator/arena.go (ArenaAllocatorImpl.buffer +
// current) and other_examples cpusim/alloc.go's Block, applied to the
// break-emulation problem instead of to arena allocation directly.
type Break struct {
	region []byte
	base   uintptr
	mark   uintptr
}

// NewBreak reserves reserveBytes of anonymous address space and starts
// the emulated break at offset 0 (an empty heap).
func NewBreak(reserveBytes int) (*Break, error) {
	if reserveBytes <= 0 {
		return nil, fmt.Errorf("new_break: reservation size must be positive, got %d", reserveBytes)
	}

	region, err := MapAnonymous(reserveBytes)
	if err != nil {
		return nil, err
	}

	return &Break{
		region: region,
		base:   uintptr(unsafe.Pointer(&region[0])),
	}, nil
}

// Move advances the break by delta bytes and returns the break address
// as it was before the advance — the start of the newly available
// space. delta == 0 queries the current break without moving it. delta
// must never be negative: the program break never decreases.
func (b *Break) Move(delta int) (uintptr, error) {
	if delta == 0 {
		return b.base + b.mark, nil
	}

	if delta < 0 {
		return 0, fmt.Errorf("move_break: program break never decreases (requested delta %d)", delta)
	}

	grown := b.mark + uintptr(delta)
	if grown > uintptr(len(b.region)) {
		return 0, fmt.Errorf("move_break: %d-byte reservation exhausted (in use %d, requested +%d)",
			len(b.region), b.mark, delta)
	}

	prev := b.base + b.mark
	b.mark = grown

	return prev, nil
}

// Base returns the address of the first byte of the reservation — the
// heap's origin address, fixed for the process's lifetime.
func (b *Break) Base() uintptr {
	return b.base
}

// Current returns the current break address without moving it.
func (b *Break) Current() uintptr {
	return b.base + b.mark
}

// Pointer converts an address inside the reservation to an unsafe.Pointer.
func (b *Break) Pointer(addr uintptr) unsafe.Pointer {
	return unsafe.Pointer(addr) //nolint:govet // address arithmetic over the reservation's own backing slice
}

// Release unmaps the entire reservation. Only used by tests: a real
// process's heap lives for the process's lifetime, per spec.md's
// "heap memory is never returned to the kernel".
func (b *Break) Release() error {
	return Unmap(b.region)
}
