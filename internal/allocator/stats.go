package allocator

// Stats is a read-only snapshot of the allocator's bookkeeping: block
// counts and byte totals come from walking the two lists the block
// manager already maintains, HeapBytesReserved from the program break,
// and AllocationCount/FreeCount from two counters the Allocator keeps.
// No guard pages, poisoning, or leak tracking (explicit Non-goals). Scoped down from the
// teacher's internal/allocator.AllocatorStats to what this design
// actually tracks.
type Stats struct {
	HeapBytesReserved uintptr
	HeapBytesUsed     uintptr
	MappedBytes       uintptr
	LiveHeapBlocks    int
	LiveMappedBlocks  int
	AllocationCount   uint64
	FreeCount         uint64
}

// Stats returns a fresh snapshot. Walking both lists is O(blocks);
// fine for the single-threaded, small-heap assumption spec.md §9
// already relies on for best-fit.
func (a *Allocator) Stats() Stats {
	s := Stats{
		AllocationCount: a.allocationCount,
		FreeCount:       a.freeCount,
	}

	if a.heap.preallocated {
		if cur, err := a.heap.brk.Move(0); err == nil {
			s.HeapBytesReserved = cur - a.heap.brk.Base()
		}
	}

	for cur := a.heap.list.head(); cur != a.heap.list.end(); cur = cur.next {
		s.LiveHeapBlocks++

		if cur.status == statusAllocated {
			s.HeapBytesUsed += cur.size
		}
	}

	for cur := a.mapped.list.head(); cur != a.mapped.list.end(); cur = cur.next {
		s.LiveMappedBlocks++
		s.MappedBytes += cur.size
	}

	return s
}
