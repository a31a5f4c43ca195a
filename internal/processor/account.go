package processor

import (
	"fmt"

	"ExchangeCore/internal/cache"
	"ExchangeCore/internal/domain"
	"ExchangeCore/internal/event"
)

// Account handles direct account lifecycle events: explicit creation and the
// administrative balance reset.
type Account struct {
	accounts  *cache.AccountCache
	histories *cache.Cache[*domain.AccountHistory]
}

func NewAccount(c *cache.Caches) *Account {
	return &Account{
		accounts:  c.Accounts,
		histories: c.Histories,
	}
}

func (p *Account) Process(evt *event.Event) (*domain.ProcessResult, error) {
	res := domain.NewProcessResult(evt)

	switch evt.Operation {
	case event.OpCreate:
		acct := p.accounts.GetOrCreate(evt.AccountKey)
		if acct.UpdatedAt == 0 {
			acct.UpdatedAt = evt.Timestamp
			res.Account = p.accounts.Update(acct)
		} else {
			res.Account = acct.Clone()
		}

	case event.OpBalanceReset:
		before, ok := p.accounts.Get(evt.AccountKey)
		if !ok {
			evt.ErrorMessage = accountNotFound(evt.AccountKey)
			return res, nil
		}
		snapshot := before.Clone()
		fresh := p.accounts.Reset(evt.AccountKey, evt.Timestamp)
		h := domain.NewAccountHistory(snapshot, fresh, evt.EventID(), operationType(evt), evt.Timestamp)
		res.Account = fresh
		res.AccountHistory = p.histories.Update(h)

	default:
		evt.ErrorMessage = fmt.Sprintf("unknown account operation %q", evt.Operation)
	}

	return res, nil
}
