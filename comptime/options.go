package comptime

import "go.uber.org/zap"

// Endianness selects the byte order used by typed load/store instructions,
// independent of the host's native order, per spec.md §3/§6.
type Endianness uint8

const (
	LittleEndian Endianness = iota
	BigEndian
)

// Options configures a VM at construction time. The compiler driver is
// responsible for producing these values (spec.md §1 puts configuration
// parsing with the driver, not the core); the core never reads a file or a
// flag itself.
type Options struct {
	// PointerWidth is the configured width (4 or 8) used for the pointer
	// Type's size/align, per spec.md §3.
	PointerWidth uint32

	Endianness Endianness

	// Segment sizes, in bytes. Segments are laid out contiguously in the
	// order global < stack < heap < meta, per spec.md §3.
	GlobalSegmentSize uint64
	StackSegmentSize  uint64
	HeapSegmentSize   uint64
	MetaSegmentSize   uint64

	// StepBudget caps the number of instructions a single VM run will
	// execute before it is cancelled (spec.md §5). Zero means unbounded.
	StepBudget uint64

	// Verbose mirrors the source's compiler-wide "verbose" singleton
	// (spec.md §9); here it is a constructor argument instead of global
	// state. It is the value the is_option_set instruction reports; it does
	// not change what is logged.
	Verbose bool

	// Logger receives the Memory Manager's and Executor's trace output
	// (debug level) and their warnings and errors; its level decides what
	// is emitted. If nil, a no-op logger is used.
	Logger *zap.SugaredLogger

	// ReportLeaks, when true, causes still-live heap allocations at VM
	// teardown to be reported (spec.md §5). They never fail the build.
	ReportLeaks bool
}

// DefaultOptions returns sane defaults for a 64-bit little-endian target
// with generous segment sizes, suitable for tests and the demo driver.
func DefaultOptions() Options {
	return Options{
		PointerWidth:      8,
		Endianness:        LittleEndian,
		GlobalSegmentSize: 1 << 24,
		StackSegmentSize:  1 << 24,
		HeapSegmentSize:   1 << 28,
		MetaSegmentSize:   1 << 24,
		StepBudget:        0,
		Verbose:           false,
		ReportLeaks:       true,
	}
}

func (o Options) logger() *zap.SugaredLogger {
	if o.Logger != nil {
		return o.Logger
	}
	return zap.NewNop().Sugar()
}
