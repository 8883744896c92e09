// Package allocator implements the block manager described by
// spec.md: a two-tier allocator routing small/medium requests to a
// program-break-backed heap and large requests to individually-mapped
// anonymous regions, behind the classical
// allocate/free/zeroed-allocate/resize quartet.
//
// Grounded throughout on original_source/src/osmem.c (the literal
// origin of this design) for the core algorithms, and on the teacher's
// internal/allocator package for Go construction idiom (Config/Option,
// an Allocator type aggregating its subsystems).
package allocator

import (
	"unsafe"

	"github.com/Octa476/Memory-Allocation-Library/internal/kernel"
)

// Allocator is the block manager: one heap list, one mapped list, and
// the kernel handle backing the heap's program break.
type Allocator struct {
	heap   *heapState
	mapped *mappedState
	fatal  kernel.Fatal

	// zeroThreshold is min(page_size, 4080), the routing threshold
	// ZeroedAllocate uses instead of the heap pool size (spec.md §3).
	zeroThreshold uintptr

	allocationCount uint64
	freeCount       uint64
}

// New constructs an Allocator, reserving the address space its
// program-break emulation needs up front.
func New(options ...Option) (*Allocator, error) {
	cfg := defaultConfig()
	for _, opt := range options {
		opt(cfg)
	}

	brk, err := kernel.NewBreak(cfg.ReserveBytes)
	if err != nil {
		return nil, err
	}

	zeroThreshold := uintptr(kernel.PageSize())
	if zeroThreshold > 4080 {
		zeroThreshold = 4080
	}

	return &Allocator{
		heap:          newHeapState(brk, cfg.HeapPool, cfg.Fatal),
		mapped:        newMappedState(),
		fatal:         cfg.Fatal,
		zeroThreshold: zeroThreshold,
	}, nil
}

// Close releases the program-break reservation. Real processes never
// do this (the heap lives for the process's lifetime, per spec.md
// §5's "the program break never shrinks"); it exists so tests don't
// leak address space across hundreds of Allocator instances.
func (a *Allocator) Close() error {
	return a.heap.brk.Release()
}

// Allocate is the allocate(size) primitive of spec.md §4.5.
func (a *Allocator) Allocate(size uintptr) unsafe.Pointer {
	if size == 0 {
		return nil
	}

	aligned := alignUp(size, 8)
	if aligned >= a.heap.poolSize {
		node, err := a.mapped.mmapNew(size)
		if err != nil {
			a.fatal("map_anonymous: allocate", err)

			return nil
		}

		a.allocationCount++

		return node.payloadPtr()
	}

	a.heap.preallocate()
	a.heap.coalesceAll()

	node, ok := a.heap.bestFit(aligned)
	if !ok {
		node = a.heap.extendHeap(aligned)
		if node == nil {
			return nil
		}
	}

	a.allocationCount++

	return node.payloadPtr()
}

// Free is the free(ptr) primitive of spec.md §4.5. Any status other
// than ALLOCATED or MAPPED is undefined behavior per spec.md §4.5 and
// is not observed on well-formed input; this implementation treats it
// as a no-op rather than corrupting the lists further.
func (a *Allocator) Free(ptr unsafe.Pointer) {
	if ptr == nil {
		return
	}

	node := headerOf(ptr)

	switch node.status {
	case statusAllocated:
		node.status = statusFree
		a.freeCount++
	case statusMapped:
		if err := a.mapped.mmapRelease(node); err != nil {
			a.fatal("unmap: free", err)

			return
		}

		a.freeCount++
	}
}

// ZeroedAllocate is the zeroed_allocate(count, size) primitive of
// spec.md §4.5. It routes by min(page_size, 4080) rather than
// HeapPool: zeroed mapped regions are kernel-zeroed for free, so only
// the heap path needs an explicit clear.
func (a *Allocator) ZeroedAllocate(count, size uintptr) unsafe.Pointer {
	total := count * size
	if total == 0 {
		return nil
	}

	if total >= a.zeroThreshold {
		node, err := a.mapped.mmapNew(total)
		if err != nil {
			a.fatal("map_anonymous: zeroed_allocate", err)

			return nil
		}

		a.allocationCount++

		return node.payloadPtr()
	}

	a.heap.preallocate()
	a.heap.coalesceAll()

	aligned := alignUp(total, 8)

	node, ok := a.heap.bestFit(aligned)
	if !ok {
		node = a.heap.extendHeap(aligned)
		if node == nil {
			return nil
		}
	}

	a.allocationCount++

	clearBytes(node.payload(), aligned)

	return node.payloadPtr()
}

// Resize is the resize(ptr, size) state machine of spec.md §4.5.
func (a *Allocator) Resize(ptr unsafe.Pointer, size uintptr) unsafe.Pointer {
	if ptr == nil {
		return a.Allocate(size)
	}

	if size == 0 {
		a.Free(ptr)

		return nil
	}

	node := headerOf(ptr)

	switch node.status {
	case statusFree:
		return nil
	case statusAllocated:
		return a.resizeHeap(node, size)
	case statusMapped:
		return a.resizeMapped(node, size)
	default:
		return nil
	}
}

// resizeHeap implements the ALLOCATED rows of spec.md §4.5's resize
// table: route-to-mapped on growth past HeapPool, in-place truncate,
// grow-via-coalesce, grow-at-heap-tail, and interior
// allocate-and-copy.
func (a *Allocator) resizeHeap(node *header, size uintptr) unsafe.Pointer {
	aligned := alignUp(size, 8)

	if aligned >= a.heap.poolSize {
		oldPayload := node.payload()
		oldSize := node.size
		node.status = statusFree
		a.freeCount++

		newNode, err := a.mapped.mmapNew(size)
		if err != nil {
			a.fatal("map_anonymous: resize heap->mapped", err)

			return nil
		}

		a.allocationCount++
		copyMin(newNode.payload(), oldPayload, oldSize, newNode.size)

		return newNode.payloadPtr()
	}

	if aligned <= node.size {
		node.size = aligned
		a.heap.reclaimTail(node, aligned)

		return node.payloadPtr()
	}

	a.heap.coalesceFrom(node)

	if node.size >= aligned {
		node.size = aligned
		a.heap.reclaimTail(node, aligned)

		return node.payloadPtr()
	}

	if node.next == a.heap.list.end() {
		deficit := aligned - node.size

		if _, err := a.heap.brk.Move(int(deficit)); err != nil {
			a.fatal("move_break: resize grow at tail", err)

			return nil
		}

		node.size = aligned

		return node.payloadPtr()
	}

	oldPayload := node.payload()
	oldSize := node.size

	newPtr := a.Allocate(size)
	if newPtr == nil {
		return nil
	}

	node.status = statusFree
	a.freeCount++
	copyMin(uintptr(newPtr), oldPayload, oldSize, alignUp(size, 8))

	return newPtr
}

// resizeMapped implements the MAPPED rows of spec.md §4.5's resize
// table.
func (a *Allocator) resizeMapped(node *header, size uintptr) unsafe.Pointer {
	aligned := alignUp(size, 8)

	if aligned >= a.heap.poolSize {
		newNode, err := a.mapped.mmapNew(size)
		if err != nil {
			a.fatal("map_anonymous: resize mapped->mapped", err)

			return nil
		}

		a.allocationCount++
		copyMin(newNode.payload(), node.payload(), node.size, newNode.size)

		if err := a.mapped.mmapRelease(node); err != nil {
			a.fatal("unmap: resize mapped->mapped", err)

			return nil
		}

		a.freeCount++

		return newNode.payloadPtr()
	}

	newPtr := a.Allocate(size)
	if newPtr == nil {
		return nil
	}

	copyMin(uintptr(newPtr), node.payload(), node.size, alignUp(size, 8))

	if err := a.mapped.mmapRelease(node); err != nil {
		a.fatal("unmap: resize mapped->heap", err)

		return nil
	}

	a.freeCount++

	return newPtr
}

// copyMin copies min(oldSize, newSize) bytes from src to dst, the
// bound spec.md §9 mandates for both open questions it raises about
// resize's copy length.
func copyMin(dst, src uintptr, oldSize, newSize uintptr) {
	n := oldSize
	if newSize < n {
		n = newSize
	}

	if n == 0 {
		return
	}

	copy(bytesAt(dst, n), bytesAt(src, n))
}

// clearBytes zeroes size bytes starting at addr, for ZeroedAllocate's
// heap path.
func clearBytes(addr uintptr, size uintptr) {
	b := bytesAt(addr, size)
	for i := range b {
		b[i] = 0
	}
}
