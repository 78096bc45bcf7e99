package arena

import (
	"github.com/go-kit/log"
)

// ZeroPolicy selects whether allocated blocks are cleared before they are
// handed out.
type ZeroPolicy int

const (
	// ZeroOnAlloc clears every block, so typed allocations start at their
	// zero value even when the bytes were reused after a rollback.
	ZeroOnAlloc ZeroPolicy = iota
	// LeaveAsIs returns blocks with whatever bytes the buffer holds.
	LeaveAsIs
)

func (p ZeroPolicy) String() string {
	switch p {
	case ZeroOnAlloc:
		return "zero-on-alloc"
	case LeaveAsIs:
		return "leave-as-is"
	default:
		return "unknown"
	}
}

// DefaultName labels arenas constructed without WithName.
const DefaultName = "default"

// Option configures an Arena at construction.
type Option func(*options)

type options struct {
	zero    ZeroPolicy
	name    string
	logger  log.Logger
	metrics *Metrics
}

func defaultOptions() options {
	return options{
		zero:   ZeroOnAlloc,
		name:   DefaultName,
		logger: log.NewNopLogger(),
	}
}

// WithZeroPolicy sets the zeroing behaviour of allocations.
func WithZeroPolicy(p ZeroPolicy) Option {
	return func(o *options) {
		o.zero = p
	}
}

// WithName names the arena in log lines and metric labels.
func WithName(name string) Option {
	return func(o *options) {
		if name != "" {
			o.name = name
		}
	}
}

// WithLogger sets the logger used to report failed allocations and
// misuse of temporary regions. A nil logger is ignored.
func WithLogger(l log.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithMetrics attaches Prometheus instruments created by NewMetrics.
// Several arenas may share one Metrics as long as their names differ.
func WithMetrics(m *Metrics) Option {
	return func(o *options) {
		o.metrics = m
	}
}
