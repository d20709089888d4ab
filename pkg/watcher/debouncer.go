package watcher

import (
	"context"
	"time"

	"github.com/ritzau/jdeps-cycles/pkg/logging"
)

// DefaultMaxWait bounds how long a steady stream of changes can postpone
// re-analysis
const DefaultMaxWait = 10 * time.Second

// Debouncer merges rapid change events into one, emitted after the input
// has been quiet for quietPeriod or maxWait after the first pending event,
// whichever comes first
type Debouncer struct {
	input       <-chan ChangeEvent
	output      chan ChangeEvent
	quietPeriod time.Duration
	maxWait     time.Duration
}

// NewDebouncer creates a new event debouncer
func NewDebouncer(input <-chan ChangeEvent, quietPeriod, maxWait time.Duration) *Debouncer {
	return &Debouncer{
		input:       input,
		output:      make(chan ChangeEvent, 1),
		quietPeriod: quietPeriod,
		maxWait:     maxWait,
	}
}

// Start begins processing events with debouncing
func (d *Debouncer) Start(ctx context.Context) {
	go d.run(ctx)
}

// Output returns the channel of debounced events. It is closed when the
// input closes or ctx is cancelled.
func (d *Debouncer) Output() <-chan ChangeEvent {
	return d.output
}

func (d *Debouncer) run(ctx context.Context) {
	defer close(d.output)

	var (
		pending  *ChangeEvent
		seen     map[string]bool
		quiet    <-chan time.Time
		deadline <-chan time.Time
	)

	flush := func() {
		if pending == nil {
			return
		}
		logging.Debug("flushing accumulated changes", "type", pending.Type.String(), "paths", len(pending.Paths))
		pending.Timestamp = time.Now()
		select {
		case d.output <- *pending:
		case <-ctx.Done():
		}
		pending, seen = nil, nil
		quiet, deadline = nil, nil
	}

	for {
		select {
		case <-ctx.Done():
			return

		case ev, ok := <-d.input:
			if !ok {
				flush()
				return
			}

			if pending == nil {
				pending = &ChangeEvent{Type: ev.Type}
				seen = make(map[string]bool)
				deadline = time.After(d.maxWait)
			}
			if ev.Type > pending.Type {
				pending.Type = ev.Type
			}
			for _, p := range ev.Paths {
				if !seen[p] {
					seen[p] = true
					pending.Paths = append(pending.Paths, p)
				}
			}
			quiet = time.After(d.quietPeriod)

		case <-quiet:
			flush()

		case <-deadline:
			flush()
		}
	}
}
