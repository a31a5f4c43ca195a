package processor

import (
	"fmt"

	"ExchangeCore/internal/cache"
	"ExchangeCore/internal/domain"
	"ExchangeCore/internal/event"
)

// Withdrawal drives the withdrawal state machine:
//
//	PROCESSING → COMPLETED (RELEASING)
//	PROCESSING → CANCELLED (full reversal)
//	PROCESSING → FAILED    (terminal no-op, settlement failed externally)
//
// Every transition records before/after balances into an AccountHistory tied
// to the withdrawal identifier. Domain errors are caught here: the message
// lands on the withdrawal's explanation and the event's error field, and the
// withdrawal record is persisted at the end of processing no matter what.
// This is the template every other processor follows.
type Withdrawal struct {
	accounts    *cache.AccountCache
	withdrawals *cache.Cache[*domain.CoinWithdrawal]
	histories   *cache.Cache[*domain.AccountHistory]
}

func NewWithdrawal(c *cache.Caches) *Withdrawal {
	return &Withdrawal{
		accounts:    c.Accounts,
		withdrawals: c.Withdrawals,
		histories:   c.Histories,
	}
}

func (p *Withdrawal) Process(evt *event.Event) (*domain.ProcessResult, error) {
	res := domain.NewProcessResult(evt)
	w := p.withdrawals.GetOrInit(evt.Identifier)

	switch evt.Operation {
	case event.OpCreate:
		p.create(evt, w, res)
	case event.OpReleasing:
		p.release(evt, w, res)
	case event.OpFailed:
		p.fail(evt, w, res)
	case event.OpCancelled:
		p.cancel(evt, w, res)
	default:
		evt.ErrorMessage = fmt.Sprintf("unknown withdrawal operation %q", evt.Operation)
	}

	// Guaranteed finalization: persisted regardless of success or failure.
	w.UpdatedAt = evt.Timestamp
	res.Withdrawal = p.withdrawals.Update(w)
	return res, nil
}

// create freezes amount+fee on the source account and opens the withdrawal.
func (p *Withdrawal) create(evt *event.Event, w *domain.CoinWithdrawal, res *domain.ProcessResult) {
	w.AccountKey = evt.AccountKey
	w.RecipientAccountKey = evt.RecipientAccountKey
	w.Amount = evt.Amount
	w.Fee = evt.Fee

	acct, ok := p.accounts.Get(evt.AccountKey)
	if !ok {
		p.failWith(evt, w, accountNotFound(evt.AccountKey))
		return
	}

	hold := w.TotalHold()
	if acct.Available.LessThan(hold) {
		p.failWith(evt, w, insufficientBalance(evt.AccountKey, acct.Available, hold))
		return
	}

	before := acct.Clone()
	acct.Available = acct.Available.Sub(hold)
	acct.Frozen = acct.Frozen.Add(hold)
	acct.UpdatedAt = evt.Timestamp

	w.Status = domain.StatusProcessing

	res.Account = p.accounts.Update(acct)
	res.AccountHistory = p.record(before, acct, w.Identifier, evt)
}

// release settles the withdrawal: unfreeze amount+fee, credit the recipient
// with amount only (fee excluded), transition to COMPLETED.
func (p *Withdrawal) release(evt *event.Event, w *domain.CoinWithdrawal, res *domain.ProcessResult) {
	if w.Status == "" {
		p.failWith(evt, w, fmt.Sprintf("Withdrawal not found identifier: %s", evt.Identifier))
		return
	}
	if w.IsTerminal() {
		p.reject(evt, w)
		return
	}

	acct, ok := p.accounts.Get(w.AccountKey)
	if !ok {
		p.failWith(evt, w, accountNotFound(w.AccountKey))
		return
	}

	var recipient *domain.Account
	if w.RecipientAccountKey != "" {
		recipient, ok = p.accounts.Get(w.RecipientAccountKey)
		if !ok {
			p.failWith(evt, w, accountNotFound(w.RecipientAccountKey))
			return
		}
	}

	hold := w.TotalHold()
	before := acct.Clone()
	acct.Frozen = acct.Frozen.Sub(hold)
	acct.UpdatedAt = evt.Timestamp

	res.Account = p.accounts.Update(acct)
	res.AccountHistory = p.record(before, acct, w.Identifier, evt)

	if recipient != nil {
		rBefore := recipient.Clone()
		recipient.Available = recipient.Available.Add(w.Amount)
		recipient.UpdatedAt = evt.Timestamp

		// Prefixed operation id distinguishes the recipient leg from the
		// sender's history row.
		rh := p.record(rBefore, recipient, "recipient-"+w.Identifier, evt)
		res.AddAccount(p.accounts.Update(recipient), rh)
	}

	w.Status = domain.StatusCompleted
}

// fail marks the withdrawal FAILED with no balance movement.
func (p *Withdrawal) fail(evt *event.Event, w *domain.CoinWithdrawal, res *domain.ProcessResult) {
	if w.Status == "" {
		p.failWith(evt, w, fmt.Sprintf("Withdrawal not found identifier: %s", evt.Identifier))
		return
	}
	if w.IsTerminal() {
		p.reject(evt, w)
		return
	}

	w.Status = domain.StatusFailed

	// Balances are untouched; record the no-op transition when the account
	// is known.
	if acct, ok := p.accounts.Get(w.AccountKey); ok {
		res.Account = acct.Clone()
		res.AccountHistory = p.record(acct, acct, w.Identifier, evt)
	}
}

// cancel fully reverses the hold: the frozen hold moves back to available.
func (p *Withdrawal) cancel(evt *event.Event, w *domain.CoinWithdrawal, res *domain.ProcessResult) {
	if w.Status == "" {
		p.failWith(evt, w, fmt.Sprintf("Withdrawal not found identifier: %s", evt.Identifier))
		return
	}
	if w.IsTerminal() {
		p.reject(evt, w)
		return
	}

	acct, ok := p.accounts.Get(w.AccountKey)
	if !ok {
		p.failWith(evt, w, accountNotFound(w.AccountKey))
		return
	}

	hold := w.TotalHold()
	before := acct.Clone()
	acct.Frozen = acct.Frozen.Sub(hold)
	acct.Available = acct.Available.Add(hold)
	acct.UpdatedAt = evt.Timestamp

	w.Status = domain.StatusCancelled

	res.Account = p.accounts.Update(acct)
	res.AccountHistory = p.record(before, acct, w.Identifier, evt)
}

func (p *Withdrawal) record(before, after *domain.Account, operationID string, evt *event.Event) *domain.AccountHistory {
	h := domain.NewAccountHistory(before, after, operationID, operationType(evt), evt.Timestamp)
	return p.histories.Update(h)
}

// failWith records a domain validation failure on both the withdrawal and the
// event and forces the FAILED status.
func (p *Withdrawal) failWith(evt *event.Event, w *domain.CoinWithdrawal, msg string) {
	w.Status = domain.StatusFailed
	w.StatusExplanation = msg
	evt.ErrorMessage = msg
}

// reject refuses a transition out of a terminal state without touching the
// recorded status.
func (p *Withdrawal) reject(evt *event.Event, w *domain.CoinWithdrawal) {
	msg := fmt.Sprintf("Withdrawal %s already in terminal status %s", w.Identifier, w.Status)
	w.StatusExplanation = msg
	evt.ErrorMessage = msg
}
