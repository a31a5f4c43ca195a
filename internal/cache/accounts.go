package cache

import (
	"github.com/rs/zerolog"

	"ExchangeCore/internal/domain"
	"ExchangeCore/internal/observability"
)

// AccountCache is the write-behind cache for accounts with the extra reset
// operation.
type AccountCache struct {
	*Cache[*domain.Account]
}

// NewAccountCache builds the account cache with the standard account flush
// threshold.
func NewAccountCache(store Store[*domain.Account], policy FlushPolicy, log zerolog.Logger, metrics *observability.Metrics) *AccountCache {
	return &AccountCache{
		Cache: New[*domain.Account]("account", store, policy, domain.NewAccount, log, metrics),
	}
}

// Reset replaces the account with a fresh zero-balance instance only if the
// key currently exists, and stages the reset into the batch. Returns nil when
// the account is unknown.
func (c *AccountCache) Reset(key string, ts int64) *domain.Account {
	if _, ok := c.Get(key); !ok {
		return nil
	}
	fresh := domain.NewAccount(key)
	fresh.UpdatedAt = ts
	return c.Update(fresh)
}
