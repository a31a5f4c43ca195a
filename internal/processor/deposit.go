package processor

import (
	"fmt"

	"ExchangeCore/internal/cache"
	"ExchangeCore/internal/domain"
	"ExchangeCore/internal/event"
)

// Deposit settles inbound transfers. A deposit has no intermediate state: one
// CREATE credits the account with amount minus fee and the record lands
// directly in COMPLETED. The account is created on the fly when the deposit is
// the first thing seen for that key.
type Deposit struct {
	accounts  *cache.AccountCache
	deposits  *cache.Cache[*domain.CoinDeposit]
	histories *cache.Cache[*domain.AccountHistory]
}

func NewDeposit(c *cache.Caches) *Deposit {
	return &Deposit{
		accounts:  c.Accounts,
		deposits:  c.Deposits,
		histories: c.Histories,
	}
}

func (p *Deposit) Process(evt *event.Event) (*domain.ProcessResult, error) {
	res := domain.NewProcessResult(evt)
	d := p.deposits.GetOrInit(evt.Identifier)

	switch evt.Operation {
	case event.OpCreate:
		p.create(evt, d, res)
	default:
		evt.ErrorMessage = fmt.Sprintf("unknown deposit operation %q", evt.Operation)
	}

	d.UpdatedAt = evt.Timestamp
	res.Deposit = p.deposits.Update(d)
	return res, nil
}

func (p *Deposit) create(evt *event.Event, d *domain.CoinDeposit, res *domain.ProcessResult) {
	d.AccountKey = evt.AccountKey
	d.Amount = evt.Amount
	d.Fee = evt.Fee

	acct := p.accounts.GetOrCreate(evt.AccountKey)
	before := acct.Clone()
	acct.Available = acct.Available.Add(d.NetAmount())
	acct.UpdatedAt = evt.Timestamp

	d.Status = domain.StatusCompleted

	h := domain.NewAccountHistory(before, acct, d.Identifier, operationType(evt), evt.Timestamp)
	res.Account = p.accounts.Update(acct)
	res.AccountHistory = p.histories.Update(h)
}
