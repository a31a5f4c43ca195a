package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/rs/zerolog"

	"ExchangeCore/internal/domain"
	"ExchangeCore/internal/event"
)

// NATSPublisher publishes entity updates to JetStream. Subjects follow
// tx.events.{family}; the generic fallback goes to tx.events.result.
type NATSPublisher struct {
	js  jetstream.JetStream
	log zerolog.Logger
}

// Connect establishes a NATS connection and returns its JetStream handle,
// shared between the publisher and the inbound consumer.
func Connect(url string, log zerolog.Logger) (*nats.Conn, jetstream.JetStream, error) {
	nc, err := nats.Connect(url,
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			log.Warn().Err(err).Msg("NATS disconnected")
		}),
		nats.ReconnectHandler(func(_ *nats.Conn) {
			log.Info().Msg("NATS reconnected")
		}),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("nats connect: %w", err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, nil, fmt.Errorf("jetstream: %w", err)
	}

	return nc, js, nil
}

// NewPublisher wraps a JetStream handle as the outbound notifier.
func NewPublisher(js jetstream.JetStream, log zerolog.Logger) *NATSPublisher {
	return &NATSPublisher{js: js, log: log.With().Str("component", "notify").Logger()}
}

// EnsureStream creates the outbound events stream if it does not exist.
func EnsureStream(ctx context.Context, js jetstream.JetStream) error {
	_, err := js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:      "TX_EVENTS",
		Subjects:  []string{"tx.events.>"},
		Storage:   jetstream.FileStorage,
		Retention: jetstream.LimitsPolicy,
		MaxAge:    72 * time.Hour,
		Replicas:  1,
	})
	if err != nil {
		return fmt.Errorf("create stream TX_EVENTS: %w", err)
	}
	return nil
}

// envelope is the wire shape of one notification.
type envelope struct {
	EventID string      `json:"eventId"`
	Kind    string      `json:"kind"`
	Entity  interface{} `json:"entity,omitempty"`
}

func (p *NATSPublisher) publish(subject, eventID, kind string, entity interface{}) error {
	data, err := json.Marshal(envelope{EventID: eventID, Kind: kind, Entity: entity})
	if err != nil {
		return fmt.Errorf("marshal %s notification: %w", kind, err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := p.js.Publish(ctx, subject, data); err != nil {
		return fmt.Errorf("publish %s: %w", subject, err)
	}
	return nil
}

func (p *NATSPublisher) SendAccountUpdate(eventID string, a *domain.Account) error {
	return p.publish("tx.events.account", eventID, "account", a)
}

func (p *NATSPublisher) SendAccountHistory(eventID string, h *domain.AccountHistory) error {
	return p.publish("tx.events.account_history", eventID, "account_history", h)
}

func (p *NATSPublisher) SendWithdrawalUpdate(eventID string, w *domain.CoinWithdrawal) error {
	return p.publish("tx.events.withdrawal", eventID, "withdrawal", w)
}

func (p *NATSPublisher) SendDepositUpdate(eventID string, d *domain.CoinDeposit) error {
	return p.publish("tx.events.deposit", eventID, "deposit", d)
}

func (p *NATSPublisher) SendPoolUpdate(eventID string, pool *domain.AmmPool) error {
	return p.publish("tx.events.amm_pool", eventID, "amm_pool", pool)
}

func (p *NATSPublisher) SendPositionUpdate(eventID string, pos *domain.AmmPosition) error {
	return p.publish("tx.events.amm_position", eventID, "amm_position", pos)
}

func (p *NATSPublisher) SendOrderUpdate(eventID string, o *domain.AmmOrder) error {
	return p.publish("tx.events.amm_order", eventID, "amm_order", o)
}

func (p *NATSPublisher) SendTradeUpdate(eventID string, t *domain.Trade) error {
	return p.publish("tx.events.trade", eventID, "trade", t)
}

func (p *NATSPublisher) SendOfferUpdate(eventID string, o *domain.Offer) error {
	return p.publish("tx.events.offer", eventID, "offer", o)
}

func (p *NATSPublisher) SendLockUpdate(eventID string, l *domain.BalanceLock) error {
	return p.publish("tx.events.balance_lock", eventID, "balance_lock", l)
}

func (p *NATSPublisher) SendEscrowUpdate(eventID string, e *domain.MerchantEscrow) error {
	return p.publish("tx.events.merchant_escrow", eventID, "merchant_escrow", e)
}

// SendTransactionResult is the generic fallback for results carrying no
// pool/position/order entity.
func (p *NATSPublisher) SendTransactionResult(evt *event.Event) error {
	return p.publish("tx.events.result", evt.EventID(), "transaction_result", evt)
}
