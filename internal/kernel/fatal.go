package kernel

import "log"

// Fatal reports an unrecoverable failure in a kernel primitive and never
// returns. The default implementation terminates the process, matching
// the teacher's own fatal-path idiom (log.Fatalf on unrecoverable setup
// failure in cmd/orizon-smoke-test and cmd/orizon-compiler).
//
// Tests inject a non-terminating Fatal (via allocator.Config) so a forced
// kernel failure can be observed instead of killing the test binary.
type Fatal func(label string, err error)

// Die is the default Fatal: log the label and error, then exit.
func Die(label string, err error) {
	log.Fatalf("kernel: fatal: %s: %v", label, err)
}
