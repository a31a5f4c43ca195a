package sequencer

import (
	"errors"
	"sync"

	"github.com/rs/zerolog"

	"ExchangeCore/internal/event"
	"ExchangeCore/internal/observability"
)

// ErrShutdown is returned by Publish after Shutdown has begun.
var ErrShutdown = errors.New("sequencer: shut down")

// Handler consumes sequenced events. Exactly one goroutine invokes it, so all
// domain mutation behind it is single-threaded.
type Handler interface {
	Handle(evt event.Event)
}

// Sequencer is the single-writer, multi-producer ordering primitive: a
// bounded ring with one consumer goroutine. Producers hand over an owned,
// immutable snapshot of the event; a full ring blocks the producer
// (backpressure) rather than dropping. Slot order is the delivery order
// across all producers.
type Sequencer struct {
	slots   chan event.Event
	handler Handler
	log     zerolog.Logger
	metrics *observability.Metrics

	mu     sync.RWMutex
	closed bool

	done chan struct{}
}

// New creates a sequencer with the given ring capacity.
func New(capacity int, handler Handler, log zerolog.Logger, metrics *observability.Metrics) *Sequencer {
	return &Sequencer{
		slots:   make(chan event.Event, capacity),
		handler: handler,
		log:     log.With().Str("component", "sequencer").Logger(),
		metrics: metrics,
		done:    make(chan struct{}),
	}
}

// Start launches the single consumer goroutine.
func (s *Sequencer) Start() {
	go s.run()
}

func (s *Sequencer) run() {
	s.log.Info().Int("capacity", cap(s.slots)).Msg("sequencer started")
	for evt := range s.slots {
		if s.metrics != nil {
			s.metrics.SequencerDepth.Set(float64(len(s.slots)))
		}
		s.handler.Handle(evt)
	}
	s.log.Info().Msg("sequencer drained")
	close(s.done)
}

// Publish copies the caller's event into the next free slot and makes it
// visible to the consumer in FIFO order. Blocks while the ring is full.
func (s *Sequencer) Publish(evt event.Event) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrShutdown
	}
	s.slots <- evt
	if s.metrics != nil {
		s.metrics.EventsPublished.WithLabelValues(string(evt.Family)).Inc()
		s.metrics.SequencerFree.Set(float64(cap(s.slots) - len(s.slots)))
	}
	return nil
}

// PublishBoundary enqueues a batch-boundary marker that forces a full cache
// flush once it reaches the fan-out stage.
func (s *Sequencer) PublishBoundary() error {
	return s.Publish(event.Boundary())
}

// RemainingCapacity reports free slots, for monitoring.
func (s *Sequencer) RemainingCapacity() int {
	return cap(s.slots) - len(s.slots)
}

// Shutdown stops accepting publishes, then blocks until the consumer has
// drained every already-published event.
func (s *Sequencer) Shutdown() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		<-s.done
		return
	}
	s.closed = true
	close(s.slots)
	s.mu.Unlock()
	<-s.done
}
