package processor

import (
	"fmt"

	"ExchangeCore/internal/cache"
	"ExchangeCore/internal/domain"
	"ExchangeCore/internal/event"
)

// MerchantEscrow moves a fixed amount between available and frozen on a
// merchant account: MINT freezes it, BURN thaws it.
type MerchantEscrow struct {
	accounts  *cache.AccountCache
	escrows   *cache.Cache[*domain.MerchantEscrow]
	histories *cache.Cache[*domain.AccountHistory]
}

func NewMerchantEscrow(c *cache.Caches) *MerchantEscrow {
	return &MerchantEscrow{
		accounts:  c.Accounts,
		escrows:   c.Escrows,
		histories: c.Histories,
	}
}

func (p *MerchantEscrow) Process(evt *event.Event) (*domain.ProcessResult, error) {
	res := domain.NewProcessResult(evt)
	e := p.escrows.GetOrInit(evt.EscrowID)

	switch evt.Operation {
	case event.OpMint:
		p.mint(evt, e, res)
	case event.OpBurn:
		p.burn(evt, e, res)
	default:
		evt.ErrorMessage = fmt.Sprintf("unknown merchant escrow operation %q", evt.Operation)
		return res, nil
	}

	e.UpdatedAt = evt.Timestamp
	res.Escrow = p.escrows.Update(e)
	return res, nil
}

func (p *MerchantEscrow) mint(evt *event.Event, e *domain.MerchantEscrow, res *domain.ProcessResult) {
	e.AccountKey = evt.AccountKey
	e.Amount = evt.Amount

	acct, ok := p.accounts.Get(evt.AccountKey)
	if !ok {
		msg := accountNotFound(evt.AccountKey)
		e.StatusExplanation = msg
		evt.ErrorMessage = msg
		return
	}

	if acct.Available.LessThan(e.Amount) {
		msg := insufficientBalance(evt.AccountKey, acct.Available, e.Amount)
		e.StatusExplanation = msg
		evt.ErrorMessage = msg
		return
	}

	before := acct.Clone()
	acct.Available = acct.Available.Sub(e.Amount)
	acct.Frozen = acct.Frozen.Add(e.Amount)
	acct.UpdatedAt = evt.Timestamp

	e.Status = domain.EscrowStatusMinted

	h := domain.NewAccountHistory(before, acct, e.EscrowID, operationType(evt), evt.Timestamp)
	res.Account = p.accounts.Update(acct)
	res.AccountHistory = p.histories.Update(h)
}

func (p *MerchantEscrow) burn(evt *event.Event, e *domain.MerchantEscrow, res *domain.ProcessResult) {
	if e.Status != domain.EscrowStatusMinted {
		msg := fmt.Sprintf("Escrow %s not minted, status: %s", evt.EscrowID, e.Status)
		e.StatusExplanation = msg
		evt.ErrorMessage = msg
		return
	}

	acct, ok := p.accounts.Get(e.AccountKey)
	if !ok {
		msg := accountNotFound(e.AccountKey)
		e.StatusExplanation = msg
		evt.ErrorMessage = msg
		return
	}

	before := acct.Clone()
	acct.Frozen = acct.Frozen.Sub(e.Amount)
	acct.Available = acct.Available.Add(e.Amount)
	acct.UpdatedAt = evt.Timestamp

	e.Status = domain.EscrowStatusBurned

	h := domain.NewAccountHistory(before, acct, e.EscrowID, operationType(evt), evt.Timestamp)
	res.Account = p.accounts.Update(acct)
	res.AccountHistory = p.histories.Update(h)
}
