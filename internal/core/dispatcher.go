package core

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"ExchangeCore/internal/domain"
	"ExchangeCore/internal/event"
	"ExchangeCore/internal/observability"
)

// Processor is one domain state machine. Domain validation failures are
// handled inside Process (recorded on the entity and the event); a non-nil
// error here means the processor itself gave up on the event.
type Processor interface {
	Process(evt *event.Event) (*domain.ProcessResult, error)
}

// Dispatcher runs as the sequencer's single consumer: dedup check, processor
// selection, result forwarding. It guarantees at-most-once business effect
// under at-least-once delivery and marks every event processed whether the
// processor succeeded, failed, panicked or returned nothing, so a poisoned
// event is never retried.
type Dispatcher struct {
	dedup      *DedupCache
	processors map[event.Family]Processor
	results    chan<- *domain.ProcessResult
	log        zerolog.Logger
	metrics    *observability.Metrics
}

// NewDispatcher wires the dispatcher to its processor set and the result
// channel consumed by the output workers.
func NewDispatcher(dedup *DedupCache, processors map[event.Family]Processor, results chan<- *domain.ProcessResult, log zerolog.Logger, metrics *observability.Metrics) *Dispatcher {
	return &Dispatcher{
		dedup:      dedup,
		processors: processors,
		results:    results,
		log:        log.With().Str("component", "dispatcher").Logger(),
		metrics:    metrics,
	}
}

// Handle processes one sequenced event and forwards the result downstream.
// The send blocks when the output workers fall behind; no result is ever
// dropped.
func (d *Dispatcher) Handle(evt event.Event) {
	if evt.BatchBoundary {
		d.results <- domain.NewProcessResult(&evt)
		return
	}

	start := time.Now()
	res := d.dispatch(&evt)

	if d.metrics != nil {
		d.metrics.EventsProcessed.WithLabelValues(string(evt.Family), string(evt.Operation)).Inc()
		d.metrics.ProcessDuration.WithLabelValues(string(evt.Family)).Observe(time.Since(start).Seconds())
	}

	// A nil result from a processor is tolerated and forwarded as-is.
	d.results <- res
}

func (d *Dispatcher) dispatch(evt *event.Event) (res *domain.ProcessResult) {
	eventID := evt.EventID()

	if d.dedup.IsProcessed(eventID) {
		// Duplicate delivery: skip domain mutation but still build a
		// result-carrying record so the fan-out step runs symmetrically.
		d.log.Debug().Str("event_id", eventID).Str("family", string(evt.Family)).Msg("duplicate event, mutation skipped")
		if d.metrics != nil {
			d.metrics.EventsDuplicate.WithLabelValues(string(evt.Family)).Inc()
		}
		return domain.NewProcessResult(evt)
	}

	// Unconditional: success, failure, panic or nil result, the event is
	// marked processed and never retried.
	defer d.dedup.MarkProcessed(eventID)

	defer func() {
		if r := recover(); r != nil {
			msg := fmt.Sprintf("processor crashed: %v", r)
			d.log.Error().Str("event_id", eventID).Str("family", string(evt.Family)).Msg(msg)
			evt.ErrorMessage = msg
			res = domain.NewProcessResult(evt)
			if d.metrics != nil {
				d.metrics.ProcessorErrors.WithLabelValues(string(evt.Family)).Inc()
			}
		}
	}()

	proc, ok := d.processors[evt.Family]
	if !ok {
		evt.ErrorMessage = fmt.Sprintf("no processor for family %q", evt.Family)
		d.log.Error().Str("event_id", eventID).Msg(evt.ErrorMessage)
		return domain.NewProcessResult(evt)
	}

	r, err := proc.Process(evt)
	if err != nil {
		evt.ErrorMessage = err.Error()
		d.log.Error().Err(err).Str("event_id", eventID).Str("family", string(evt.Family)).Msg("processor failed")
		if d.metrics != nil {
			d.metrics.ProcessorErrors.WithLabelValues(string(evt.Family)).Inc()
		}
		if r == nil {
			r = domain.NewProcessResult(evt)
		}
	}
	return r
}
