package allocator

import (
	"unsafe"

	"github.com/Octa476/Memory-Allocation-Library/internal/kernel"
)

// mappedState owns the insertion-ordered mapped list — one entry per
// live large allocation, each its own independent anonymous mapping
// with its header stored in the mapped region itself.
//
// Grounded on original_source/src/osmem.c's block_head_mmap global and
// its add_meta_cell_mmap/delete_meta_cell_mmap, restated per spec.md
// §4.4 over golang.org/x/sys/unix via internal/kernel (the pack's
// dittofs mmap.go is the model for the Mmap/Munmap call shape).
type mappedState struct {
	list *list
}

func newMappedState() *mappedState {
	return &mappedState{list: newList()}
}

// mmapNew requests a fresh anonymous mapping of header+aligned(size)
// bytes, installs a MAPPED header at its start, appends it to the
// mapped list, and returns the header.
func (m *mappedState) mmapNew(size uintptr) (*header, error) {
	aligned := alignUp(size, 8)
	total := headerSize + aligned

	data, err := kernel.MapAnonymous(int(total))
	if err != nil {
		return nil, err
	}

	node := headerAt(uintptr(unsafe.Pointer(&data[0])))
	node.status = statusMapped
	node.size = aligned

	linkAfter(m.list.end().prev, node)

	return node, nil
}

// mmapRelease unlinks node from the mapped list and unmaps exactly the
// header+size bytes it occupies.
func (m *mappedState) mmapRelease(node *header) error {
	unlink(node)

	total := headerSize + node.size
	data := unsafe.Slice((*byte)(unsafe.Pointer(node)), total) //nolint:govet // reconstructing the exact mmap'd range to unmap it

	return kernel.Unmap(data)
}
