package airport

import (
	"io"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// options configures the Airport behavior (internal only).
type options struct {
	tokenValidity     time.Duration
	operationDuration time.Duration
	reapInterval      time.Duration
	logger            *slog.Logger
	journal           Journal
	tracer            trace.Tracer
}

// defaultOptions returns sensible defaults.
func defaultOptions() options {
	var tokenValidity = 4 * time.Second
	return options{
		tokenValidity:     tokenValidity,
		operationDuration: 5 * time.Second,
		reapInterval:      tokenValidity / 2,
		logger:            slog.New(slog.NewTextHandler(io.Discard, nil)),
		journal:           nopJournal{},
		tracer:            noop.NewTracerProvider().Tracer(tracerName),
	}
}

// Option is a functional option for configuring an Airport.
type Option func(*options)

// WithTokenValidity sets how long a Proceed token stays valid after it is issued.
// The reaper interval follows it unless WithReapInterval is applied afterwards.
func WithTokenValidity(validity time.Duration) Option {
	return func(o *options) {
		o.tokenValidity = validity
		o.reapInterval = validity / 2
	}
}

// WithOperationDuration sets how long a landing or takeoff keeps the runway in operation.
func WithOperationDuration(duration time.Duration) Option {
	return func(o *options) {
		o.operationDuration = duration
	}
}

// WithReapInterval sets how often abandoned reservations are checked for expiry.
// A zero or negative interval disables the reaper; expired reservations are then
// only reclaimed by a late perform call.
func WithReapInterval(interval time.Duration) Option {
	return func(o *options) {
		o.reapInterval = interval
	}
}

// WithLogger sets the logger for the airport.
// If the logger is nil, the airport will use a no-op logger.
// DEFAULT: A no-op logger
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger == nil {
			o.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
			return
		}

		o.logger = logger
	}
}

// WithJournal sets the sink that receives completed and expired movements.
// DEFAULT: movements are discarded
func WithJournal(journal Journal) Option {
	return func(o *options) {
		if journal == nil {
			o.journal = nopJournal{}
			return
		}

		o.journal = journal
	}
}

// WithTracer sets the tracer used for request and perform spans.
// DEFAULT: A no-op tracer
func WithTracer(tracer trace.Tracer) Option {
	return func(o *options) {
		if tracer == nil {
			o.tracer = noop.NewTracerProvider().Tracer(tracerName)
			return
		}

		o.tracer = tracer
	}
}
