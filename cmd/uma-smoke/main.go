// Command uma-smoke drives the allocator through a short scripted
// scenario exercising all four primitives, mirroring the shape of the
// teacher's own smoke-test binaries (a single main walking a fixed
// sequence, failing hard via log.Fatalf on the first surprise).
package main

import (
	"fmt"
	"log"
	"unsafe"

	"github.com/Octa476/Memory-Allocation-Library/internal/allocator"
)

func main() {
	fmt.Println("=== Memory Allocator Smoke Test ===")

	a, err := allocator.New()
	if err != nil {
		log.Fatalf("allocator.New failed: %v", err)
	}
	defer a.Close()

	smallRoundTrip(a)
	fmt.Println("small heap allocation round-trip passed")

	largeRoundTrip(a)
	fmt.Println("large mapped allocation round-trip passed")

	resizeScenario(a)
	fmt.Println("resize state machine scenario passed")

	zeroedScenario(a)
	fmt.Println("zeroed-allocate scenario passed")

	stats := a.Stats()
	fmt.Printf("final stats: %+v\n", stats)
	fmt.Println("all smoke tests passed")
}

func smallRoundTrip(a *allocator.Allocator) {
	p := a.Allocate(100)
	if p == nil {
		log.Fatalf("Allocate(100) returned nil")
	}

	writeFill(p, 100, 0xAB)
	a.Free(p)
}

func largeRoundTrip(a *allocator.Allocator) {
	m := a.Allocate(1 << 20)
	if m == nil {
		log.Fatalf("Allocate(1MiB) returned nil")
	}

	writeFill(m, 64, 0xCD)
	a.Free(m)
}

func resizeScenario(a *allocator.Allocator) {
	p := a.Resize(nil, 64)
	if p == nil {
		log.Fatalf("Resize(nil, 64) returned nil")
	}
	writeFill(p, 64, 0xEF)

	grown := a.Resize(p, 200000)
	if grown == nil {
		log.Fatalf("Resize(p, 200000) returned nil")
	}
	if readByte(grown, 0) != 0xEF {
		log.Fatalf("resize heap->mapped lost payload bytes")
	}

	shrunk := a.Resize(grown, 32)
	if shrunk == nil {
		log.Fatalf("Resize(grown, 32) returned nil")
	}
	if readByte(shrunk, 0) != 0xEF {
		log.Fatalf("resize mapped->heap lost payload bytes")
	}

	if a.Resize(shrunk, 0) != nil {
		log.Fatalf("Resize(shrunk, 0) should return nil")
	}
}

func zeroedScenario(a *allocator.Allocator) {
	warm := a.Allocate(512)
	writeFill(warm, 512, 0xFF)
	a.Free(warm)

	z := a.ZeroedAllocate(512, 1)
	if z == nil {
		log.Fatalf("ZeroedAllocate(512, 1) returned nil")
	}
	for i := 0; i < 512; i++ {
		if readByte(z, i) != 0 {
			log.Fatalf("zeroed-allocate byte %d was not zero", i)
		}
	}
	a.Free(z)
}

func writeFill(ptr unsafe.Pointer, n int, v byte) {
	b := unsafe.Slice((*byte)(ptr), n)
	for i := range b {
		b[i] = v
	}
}

func readByte(ptr unsafe.Pointer, i int) byte {
	return *(*byte)(unsafe.Add(ptr, i))
}
