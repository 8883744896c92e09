package allocator

import "github.com/Octa476/Memory-Allocation-Library/internal/kernel"

// HeapPool is both the initial heap preallocation amount and the
// routing threshold between the heap and the mapped list for Allocate
// and Resize: requests with aligned size >= HeapPool go to the mapped
// list. Fixed by spec.md §3 at 128 KiB.
const HeapPool = 128 * 1024

// defaultReservation is how much virtual address space New reserves
// up front to emulate the program break (internal/kernel.Break).
// Anonymous pages are not committed by the kernel until touched, so
// reserving generously is cheap; it only bounds how far the heap can
// grow over the process's lifetime before a request is treated as a
// fatal kernel failure (the heap itself never shrinks, per spec.md §5).
const defaultReservation = 1 << 30 // 1 GiB

// Config configures an Allocator. Grounded on the teacher's
// internal/allocator.Config/Option/With...() construction pattern.
type Config struct {
	// HeapPool overrides the routing threshold and preallocation size.
	// Defaults to HeapPool. A smaller value lets the invariants be
	// exercised without multi-hundred-kilobyte buffers.
	HeapPool uintptr

	// ReserveBytes overrides the size of the program-break emulation's
	// backing reservation. Defaults to defaultReservation.
	ReserveBytes int

	// Fatal overrides the handler invoked on an unrecoverable kernel
	// failure. Defaults to kernel.Die. Tests inject a non-terminating
	// handler so a forced exhaustion can be observed.
	Fatal kernel.Fatal
}

// Option configures a Config field. Grounded on the teacher's
// With...() functional-option family.
type Option func(*Config)

func defaultConfig() *Config {
	return &Config{
		HeapPool:     HeapPool,
		ReserveBytes: defaultReservation,
		Fatal:        kernel.Die,
	}
}

// WithHeapPool overrides the heap preallocation/routing threshold.
func WithHeapPool(size uintptr) Option {
	return func(c *Config) { c.HeapPool = size }
}

// WithReservation overrides the program-break emulation's reservation.
func WithReservation(bytes int) Option {
	return func(c *Config) { c.ReserveBytes = bytes }
}

// WithFatal overrides the fatal-kernel-failure handler.
func WithFatal(fatal kernel.Fatal) Option {
	return func(c *Config) { c.Fatal = fatal }
}
