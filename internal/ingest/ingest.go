package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go/jetstream"
	"github.com/rs/zerolog"

	"ExchangeCore/internal/event"
	"ExchangeCore/internal/sequencer"
)

const (
	streamName   = "TX_REQUESTS"
	subjectSpace = "tx.requests.>"
	durableName  = "exchange-core"
)

// Consumer pulls transaction request events from JetStream and feeds them to
// the sequencer. Messages are acked after the publish succeeds, so a full
// sequencer propagates backpressure to the broker instead of losing events.
type Consumer struct {
	js  jetstream.JetStream
	seq *sequencer.Sequencer
	log zerolog.Logger

	cctx jetstream.ConsumeContext
}

func NewConsumer(js jetstream.JetStream, seq *sequencer.Sequencer, log zerolog.Logger) *Consumer {
	return &Consumer{
		js:  js,
		seq: seq,
		log: log.With().Str("component", "ingest").Logger(),
	}
}

// EnsureStream creates the inbound request stream if it does not exist.
func EnsureStream(ctx context.Context, js jetstream.JetStream) error {
	_, err := js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:      streamName,
		Subjects:  []string{subjectSpace},
		Storage:   jetstream.FileStorage,
		Retention: jetstream.WorkQueuePolicy,
		MaxAge:    72 * time.Hour,
		Replicas:  1,
	})
	if err != nil {
		return fmt.Errorf("create stream %s: %w", streamName, err)
	}
	return nil
}

// Start creates the durable consumer and begins feeding the sequencer.
func (c *Consumer) Start(ctx context.Context) error {
	cons, err := c.js.CreateOrUpdateConsumer(ctx, streamName, jetstream.ConsumerConfig{
		Durable:       durableName,
		AckPolicy:     jetstream.AckExplicitPolicy,
		AckWait:       30 * time.Second,
		MaxAckPending: 1024,
	})
	if err != nil {
		return fmt.Errorf("create consumer %s: %w", durableName, err)
	}

	cctx, err := cons.Consume(func(msg jetstream.Msg) {
		c.handle(msg)
	})
	if err != nil {
		return fmt.Errorf("consume %s: %w", streamName, err)
	}
	c.cctx = cctx

	c.log.Info().Str("stream", streamName).Msg("ingest consumer started")
	return nil
}

// Stop halts message delivery. In-flight events already handed to the
// sequencer are unaffected.
func (c *Consumer) Stop() {
	if c.cctx != nil {
		c.cctx.Stop()
	}
}

func (c *Consumer) handle(msg jetstream.Msg) {
	var evt event.Event
	if err := json.Unmarshal(msg.Data(), &evt); err != nil {
		// Unparseable payloads are acked so the broker does not redeliver
		// them forever.
		c.log.Warn().Err(err).Str("subject", msg.Subject()).Msg("dropping unparseable event")
		_ = msg.Ack()
		return
	}

	if err := c.seq.Publish(evt); err != nil {
		// Shutting down: leave the message for redelivery after restart.
		_ = msg.Nak()
		return
	}
	_ = msg.Ack()
}
