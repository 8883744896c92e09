package allocator

import "github.com/Octa476/Memory-Allocation-Library/internal/kernel"

// heapState owns the address-ordered heap list and the program-break
// handle backing it. All heap-bound allocation paths (Allocate,
// ZeroedAllocate, Resize) share a single heapState.
//
// Grounded on original_source/src/osmem.c's block_head_brk global plus
// its heap_preallocation/coalesce_block/coalesce_blocks/
// use_unused_space/search_best_fit/increase_heap functions, restated
// as methods per spec.md §4.3.
type heapState struct {
	list         *list
	brk          *kernel.Break
	poolSize     uintptr
	preallocated bool
	fatal        kernel.Fatal
}

func newHeapState(brk *kernel.Break, poolSize uintptr, fatal kernel.Fatal) *heapState {
	return &heapState{
		list:     newList(),
		brk:      brk,
		poolSize: poolSize,
		fatal:    fatal,
	}
}

// preallocate moves the break forward by poolSize on the first
// heap-bound request of the process and installs one FREE block
// spanning the whole preallocation. Subsequent calls are no-ops.
func (h *heapState) preallocate() {
	if h.preallocated {
		return
	}

	start, err := h.brk.Move(int(h.poolSize))
	if err != nil {
		h.fatal("move_break: heap preallocation", err)

		return
	}

	node := headerAt(start)
	node.status = statusFree
	node.size = h.poolSize - headerSize
	linkAfter(h.list.end(), node)

	h.preallocated = true
}

// coalesceFrom merges node with every immediately-following FREE block,
// regardless of node's own status — coalesceAll calls it only on FREE
// nodes (restoring the "no adjacent FREEs" invariant), but Resize also
// calls it directly on an ALLOCATED node to try to grow in place by
// absorbing trailing free space, exactly as osmem.c's coalesce_block is
// shared between coalesce_blocks() and os_realloc()'s extend path.
func (h *heapState) coalesceFrom(node *header) {
	cur := node.next
	for cur != h.list.end() && cur.status == statusFree {
		nxt := cur.next
		unlink(cur)
		cur = nxt
	}

	node.next = cur
	cur.prev = node

	var end uintptr
	if cur == h.list.end() {
		var err error

		end, err = h.brk.Move(0)
		if err != nil {
			h.fatal("move_break: query for coalesce", err)

			return
		}
	} else {
		end = cur.addr()
	}

	node.size = end - node.payload()
}

// coalesceAll restores the "no adjacent FREEs" invariant across the
// whole list. Invoked at the start of every heap-bound allocation.
func (h *heapState) coalesceAll() {
	cur := h.list.head()
	for cur != h.list.end() {
		if cur.status == statusFree {
			h.coalesceFrom(cur)
		}

		cur = cur.next
	}
}

// reclaimTail carves a new FREE block out of the unused tail of node,
// the bytes between node's payload + align_up(used, 8) and whatever
// comes next (the following block, or the program break if node is
// last). A gap of header size or less is left as internal
// fragmentation rather than linked as a block too small to ever be
// useful.
func (h *heapState) reclaimTail(node *header, used uintptr) {
	start := node.payload() + alignUp(used, 8)

	var stop uintptr
	if node.next == h.list.end() {
		var err error

		stop, err = h.brk.Move(0)
		if err != nil {
			h.fatal("move_break: query for reclaim", err)

			return
		}
	} else {
		stop = node.next.addr()
	}

	if stop <= start {
		return
	}

	gap := stop - start
	if gap > headerSize {
		tail := headerAt(start)
		tail.status = statusFree
		tail.size = gap - headerSize
		linkAfter(node, tail)
	}
}

// bestFit scans the heap list for the smallest FREE block whose size
// is at least size, ties broken by earliest address. On a hit it
// unlinks the winner and relinks it in place as ALLOCATED with size
// exactly size, then reclaims the unused tail.
func (h *heapState) bestFit(size uintptr) (*header, bool) {
	var best *header

	for cur := h.list.head(); cur != h.list.end(); cur = cur.next {
		if cur.status != statusFree {
			continue
		}

		if cur.size < size {
			continue
		}

		if best == nil || cur.size < best.size {
			best = cur
		}
	}

	if best == nil {
		return nil, false
	}

	prev := best.prev
	unlink(best)
	best.status = statusAllocated
	best.size = size
	linkAfter(prev, best)

	h.reclaimTail(best, size)

	return best, true
}

// extendHeap grows the program break to satisfy a request that
// survived coalescing and best-fit with no hit. If the heap's last
// block is FREE, only the deficit beyond it is requested from the
// kernel; otherwise a fresh header+payload span is appended.
func (h *heapState) extendHeap(size uintptr) *header {
	last := h.list.end().prev

	if last.status == statusFree {
		lastEnd := last.payloadEnd()

		brkNow, err := h.brk.Move(0)
		if err != nil {
			h.fatal("move_break: query before extend", err)

			return nil
		}

		slack := brkNow - lastEnd
		deficit := size - last.size - slack

		if deficit > 0 {
			if _, err := h.brk.Move(int(deficit)); err != nil {
				h.fatal("move_break: extend heap (free tail)", err)

				return nil
			}
		}

		prev := last.prev
		unlink(last)
		last.status = statusAllocated
		last.size = size
		linkAfter(prev, last)

		return last
	}

	total := headerSize + size

	start, err := h.brk.Move(int(total))
	if err != nil {
		h.fatal("move_break: extend heap (new block)", err)

		return nil
	}

	node := headerAt(start)
	node.status = statusAllocated
	node.size = size
	linkAfter(last, node)

	return node
}
