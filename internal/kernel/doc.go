// Package kernel provides the operating-system collaborators the block
// manager in internal/allocator treats as external: moving the program
// break, mapping and unmapping anonymous memory, querying the page size,
// and reporting a fatal, unrecoverable failure.
//
// None of these types know anything about headers, free lists, or
// size classes. They exist so internal/allocator can depend on a small
// interface instead of golang.org/x/sys/unix directly.
package kernel
