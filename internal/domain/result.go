package domain

import "ExchangeCore/internal/event"

// ProcessResult is the sole contract between domain processors and the result
// fan-out. Fields are settable in any order; the originating event is always
// present. Single-slot fields cover the common one-account case, the
// collections carry multi-account operations. Created once per event,
// consumed once by the fan-out, then discarded.
type ProcessResult struct {
	Event *event.Event

	Account        *Account
	AccountHistory *AccountHistory

	Accounts         []*Account
	AccountHistories []*AccountHistory

	Withdrawal  *CoinWithdrawal
	Deposit     *CoinDeposit
	Pool        *AmmPool
	Position    *AmmPosition
	AmmOrder    *AmmOrder
	Trade       *Trade
	Offer       *Offer
	BalanceLock *BalanceLock
	Escrow      *MerchantEscrow

	Ticks       []*Tick
	TickBitmaps []*TickBitmap
}

// NewProcessResult wraps evt with no entities attached.
func NewProcessResult(evt *event.Event) *ProcessResult {
	return &ProcessResult{Event: evt}
}

// AddAccount appends to the multi-account collection, preserving order.
func (r *ProcessResult) AddAccount(a *Account, h *AccountHistory) {
	r.Accounts = append(r.Accounts, a)
	if h != nil {
		r.AccountHistories = append(r.AccountHistories, h)
	}
}

// Failed reports whether the originating event carries an error.
func (r *ProcessResult) Failed() bool {
	return r.Event != nil && r.Event.ErrorMessage != ""
}
