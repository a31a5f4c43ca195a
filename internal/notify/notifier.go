package notify

import (
	"ExchangeCore/internal/domain"
	"ExchangeCore/internal/event"
)

// Notifier is the outbound notification channel. One send per entity family
// plus the generic transaction-result fallback. Implementations must keep
// failures to themselves as far as callers are concerned; the fan-out logs
// returned errors and moves on, they never block cache persistence.
type Notifier interface {
	SendAccountUpdate(eventID string, a *domain.Account) error
	SendAccountHistory(eventID string, h *domain.AccountHistory) error
	SendWithdrawalUpdate(eventID string, w *domain.CoinWithdrawal) error
	SendDepositUpdate(eventID string, d *domain.CoinDeposit) error
	SendPoolUpdate(eventID string, p *domain.AmmPool) error
	SendPositionUpdate(eventID string, p *domain.AmmPosition) error
	SendOrderUpdate(eventID string, o *domain.AmmOrder) error
	SendTradeUpdate(eventID string, t *domain.Trade) error
	SendOfferUpdate(eventID string, o *domain.Offer) error
	SendLockUpdate(eventID string, l *domain.BalanceLock) error
	SendEscrowUpdate(eventID string, e *domain.MerchantEscrow) error
	SendTransactionResult(evt *event.Event) error
}

// Noop discards every notification. Used in tests and when the channel is
// disabled by config.
type Noop struct{}

func (Noop) SendAccountUpdate(string, *domain.Account) error           { return nil }
func (Noop) SendAccountHistory(string, *domain.AccountHistory) error   { return nil }
func (Noop) SendWithdrawalUpdate(string, *domain.CoinWithdrawal) error { return nil }
func (Noop) SendDepositUpdate(string, *domain.CoinDeposit) error       { return nil }
func (Noop) SendPoolUpdate(string, *domain.AmmPool) error              { return nil }
func (Noop) SendPositionUpdate(string, *domain.AmmPosition) error      { return nil }
func (Noop) SendOrderUpdate(string, *domain.AmmOrder) error            { return nil }
func (Noop) SendTradeUpdate(string, *domain.Trade) error               { return nil }
func (Noop) SendOfferUpdate(string, *domain.Offer) error               { return nil }
func (Noop) SendLockUpdate(string, *domain.BalanceLock) error          { return nil }
func (Noop) SendEscrowUpdate(string, *domain.MerchantEscrow) error     { return nil }
func (Noop) SendTransactionResult(*event.Event) error                  { return nil }
