package processor

import (
	"fmt"

	"github.com/shopspring/decimal"

	"ExchangeCore/internal/cache"
	"ExchangeCore/internal/domain"
	"ExchangeCore/internal/event"
)

// BalancesLock freezes the entire available balance of a set of accounts
// under one lock and thaws exactly those amounts on release. All accounts are
// validated before any balance moves, so a lock either applies to every
// account or to none.
type BalancesLock struct {
	accounts  *cache.AccountCache
	locks     *cache.Cache[*domain.BalanceLock]
	histories *cache.Cache[*domain.AccountHistory]
}

func NewBalancesLock(c *cache.Caches) *BalancesLock {
	return &BalancesLock{
		accounts:  c.Accounts,
		locks:     c.Locks,
		histories: c.Histories,
	}
}

func (p *BalancesLock) Process(evt *event.Event) (*domain.ProcessResult, error) {
	res := domain.NewProcessResult(evt)

	switch evt.Operation {
	case event.OpCreate:
		p.create(evt, res)
	case event.OpRelease:
		p.release(evt, res)
	default:
		evt.ErrorMessage = fmt.Sprintf("unknown balances lock operation %q", evt.Operation)
	}

	return res, nil
}

func (p *BalancesLock) create(evt *event.Event, res *domain.ProcessResult) {
	accts := make([]*domain.Account, 0, len(evt.AccountKeys))
	for _, key := range evt.AccountKeys {
		acct, ok := p.accounts.Get(key)
		if !ok {
			evt.ErrorMessage = accountNotFound(key)
			return
		}
		accts = append(accts, acct)
	}

	lock := p.locks.GetOrInit(evt.LockID)
	lock.AccountKeys = evt.AccountKeys
	lock.ActionType = evt.ActionType
	lock.ActionID = evt.ActionID
	lock.LockedAmounts = make(map[string]decimal.Decimal, len(accts))
	lock.Status = domain.LockStatusLocked
	lock.UpdatedAt = evt.Timestamp

	for _, acct := range accts {
		before := acct.Clone()
		lock.LockedAmounts[acct.Key] = acct.Available
		acct.Frozen = acct.Frozen.Add(acct.Available)
		acct.Available = decimal.Zero
		acct.UpdatedAt = evt.Timestamp

		h := p.histories.Update(domain.NewAccountHistory(before, acct, lock.LockID, operationType(evt), evt.Timestamp))
		res.AddAccount(p.accounts.Update(acct), h)
	}

	res.BalanceLock = p.locks.Update(lock)
}

func (p *BalancesLock) release(evt *event.Event, res *domain.ProcessResult) {
	lock, ok := p.locks.Get(evt.LockID)
	if !ok {
		evt.ErrorMessage = fmt.Sprintf("Lock not found lockId: %s", evt.LockID)
		return
	}
	if lock.Status == domain.LockStatusReleased {
		evt.ErrorMessage = fmt.Sprintf("Lock %s already released", lock.LockID)
		return
	}

	lock.Status = domain.LockStatusReleased
	lock.UpdatedAt = evt.Timestamp
	res.BalanceLock = p.locks.Update(lock)

	// Thaw exactly what create froze per account. Holds taken by other
	// operations (a withdrawal in flight, an escrow) stay frozen.
	for _, key := range lock.AccountKeys {
		acct, ok := p.accounts.Get(key)
		if !ok {
			// The account existed when the lock was taken; log via the event
			// error but keep releasing the rest.
			evt.ErrorMessage = accountNotFound(key)
			continue
		}
		locked := lock.LockedAmounts[key]
		before := acct.Clone()
		acct.Available = acct.Available.Add(locked)
		acct.Frozen = acct.Frozen.Sub(locked)
		acct.UpdatedAt = evt.Timestamp

		h := p.histories.Update(domain.NewAccountHistory(before, acct, lock.LockID, operationType(evt), evt.Timestamp))
		res.AddAccount(p.accounts.Update(acct), h)
	}
}
