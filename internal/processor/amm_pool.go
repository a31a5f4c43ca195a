package processor

import (
	"fmt"

	"ExchangeCore/internal/cache"
	"ExchangeCore/internal/domain"
	"ExchangeCore/internal/event"
)

// AmmPool maintains pool-level state. CREATE registers the pool with its
// initial sqrt price; UPDATE applies a liquidity delta and, when present, a
// new sqrt price.
type AmmPool struct {
	pools *cache.Cache[*domain.AmmPool]
}

func NewAmmPool(c *cache.Caches) *AmmPool {
	return &AmmPool{pools: c.Pools}
}

func (p *AmmPool) Process(evt *event.Event) (*domain.ProcessResult, error) {
	res := domain.NewProcessResult(evt)

	switch evt.Operation {
	case event.OpCreate:
		pool := p.pools.GetOrInit(evt.PoolPair)
		pool.Liquidity = evt.Liquidity
		pool.SqrtPrice = evt.SqrtPrice
		pool.UpdatedAt = evt.Timestamp
		res.Pool = p.pools.Update(pool)

	case event.OpUpdate:
		pool, ok := p.pools.Get(evt.PoolPair)
		if !ok {
			evt.ErrorMessage = fmt.Sprintf("Pool not found pair: %s", evt.PoolPair)
			return res, nil
		}
		pool.Liquidity = pool.Liquidity.Add(evt.Liquidity)
		if !evt.SqrtPrice.IsZero() {
			pool.SqrtPrice = evt.SqrtPrice
		}
		pool.UpdatedAt = evt.Timestamp
		res.Pool = p.pools.Update(pool)

	default:
		evt.ErrorMessage = fmt.Sprintf("unknown amm pool operation %q", evt.Operation)
	}

	return res, nil
}
