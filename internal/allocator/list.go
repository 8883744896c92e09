package allocator

// list is a circular doubly-linked sentinel list of headers. The heap
// list and the mapped list are each one of these, distinguished only by
// which invariant their caller maintains (address order for the heap,
// none for the mapped list).
//
// Grounded on original_source/src/osmem.c's block_head_brk/
// block_head_mmap globals and their init_list_*/add_meta_cell_*/
// delete_meta_cell_* helpers, restated as two primitives (linkAfter,
// unlink) per spec.md §4.2.
type list struct {
	sentinel header
}

// newList returns a list whose sentinel already points to itself —
// an empty, initialized list. Mirrors osmem.c's init_list_brk/
// init_list_mmap, but performed eagerly instead of latched on first
// use, since Go has no static-storage globals to lazily discover.
func newList() *list {
	l := &list{}
	l.sentinel.status = statusSentinel
	l.sentinel.prev = &l.sentinel
	l.sentinel.next = &l.sentinel

	return l
}

func (l *list) empty() bool {
	return l.sentinel.next == &l.sentinel
}

func (l *list) head() *header {
	return l.sentinel.next
}

func (l *list) end() *header {
	return &l.sentinel
}

// linkAfter splices node in immediately after anchor. For the heap
// list, the caller always passes the address-order predecessor so the
// address-ordering invariant holds after every insertion.
func linkAfter(anchor, node *header) {
	node.next = anchor.next
	node.prev = anchor

	anchor.next.prev = node
	anchor.next = node
}

// unlink removes node from whatever list it is currently in, without
// touching node's own status or size. node.prev/next are left
// dangling; the caller either discards node or immediately relinks it.
func unlink(node *header) {
	node.prev.next = node.next
	node.next.prev = node.prev
}
