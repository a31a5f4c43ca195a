package processor

import (
	"fmt"

	"ExchangeCore/internal/cache"
	"ExchangeCore/internal/domain"
	"ExchangeCore/internal/event"
)

// AmmPosition maintains liquidity positions and the tick bookkeeping that
// comes with them. Opening a position touches both boundary ticks (net
// liquidity in at the lower bound, out at the upper) and flips the bitmap
// bits so the pricing side can find initialized ticks without a scan.
type AmmPosition struct {
	positions *cache.Cache[*domain.AmmPosition]
	ticks     *cache.Cache[*domain.Tick]
	bitmaps   *cache.Cache[*domain.TickBitmap]
}

func NewAmmPosition(c *cache.Caches) *AmmPosition {
	return &AmmPosition{
		positions: c.Positions,
		ticks:     c.Ticks,
		bitmaps:   c.TickBitmaps,
	}
}

func (p *AmmPosition) Process(evt *event.Event) (*domain.ProcessResult, error) {
	res := domain.NewProcessResult(evt)

	switch evt.Operation {
	case event.OpCreate:
		p.create(evt, res)
	case event.OpUpdate:
		p.update(evt, res)
	default:
		evt.ErrorMessage = fmt.Sprintf("unknown amm position operation %q", evt.Operation)
	}

	return res, nil
}

func (p *AmmPosition) create(evt *event.Event, res *domain.ProcessResult) {
	pos := p.positions.GetOrInit(evt.Identifier)
	pos.PoolPair = evt.PoolPair
	pos.OwnerKey = evt.AccountKey
	pos.TickLower = evt.TickLower
	pos.TickUpper = evt.TickUpper
	pos.Liquidity = evt.Liquidity
	pos.UpdatedAt = evt.Timestamp
	res.Position = p.positions.Update(pos)

	lower := p.touchTick(evt.PoolPair, evt.TickLower, evt.Timestamp)
	lower.LiquidityNet = lower.LiquidityNet.Add(evt.Liquidity)
	lower.LiquidityGross = lower.LiquidityGross.Add(evt.Liquidity)

	upper := p.touchTick(evt.PoolPair, evt.TickUpper, evt.Timestamp)
	upper.LiquidityNet = upper.LiquidityNet.Sub(evt.Liquidity)
	upper.LiquidityGross = upper.LiquidityGross.Add(evt.Liquidity)

	res.Ticks = append(res.Ticks, p.ticks.Update(lower), p.ticks.Update(upper))

	for _, index := range []int32{evt.TickLower, evt.TickUpper} {
		bm := p.touchBitmap(evt.PoolPair, index, evt.Timestamp)
		bm.SetBit(index)
		res.TickBitmaps = append(res.TickBitmaps, p.bitmaps.Update(bm))
	}
}

func (p *AmmPosition) update(evt *event.Event, res *domain.ProcessResult) {
	pos, ok := p.positions.Get(evt.Identifier)
	if !ok {
		evt.ErrorMessage = fmt.Sprintf("Position not found id: %s", evt.Identifier)
		return
	}

	pos.Liquidity = pos.Liquidity.Add(evt.Liquidity)
	pos.UpdatedAt = evt.Timestamp
	res.Position = p.positions.Update(pos)

	lower := p.touchTick(pos.PoolPair, pos.TickLower, evt.Timestamp)
	lower.LiquidityNet = lower.LiquidityNet.Add(evt.Liquidity)
	lower.LiquidityGross = lower.LiquidityGross.Add(evt.Liquidity)

	upper := p.touchTick(pos.PoolPair, pos.TickUpper, evt.Timestamp)
	upper.LiquidityNet = upper.LiquidityNet.Sub(evt.Liquidity)
	upper.LiquidityGross = upper.LiquidityGross.Add(evt.Liquidity)

	res.Ticks = append(res.Ticks, p.ticks.Update(lower), p.ticks.Update(upper))

	// A position drained to zero clears its boundary bits when no other
	// liquidity remains on the tick.
	for i, tick := range []*domain.Tick{lower, upper} {
		if !tick.LiquidityGross.IsZero() {
			continue
		}
		index := pos.TickLower
		if i == 1 {
			index = pos.TickUpper
		}
		bm, ok := p.bitmaps.Get(domain.TickBitmapKey(pos.PoolPair, index))
		if !ok {
			continue
		}
		bm.ClearBit(index)
		bm.UpdatedAt = evt.Timestamp
		res.TickBitmaps = append(res.TickBitmaps, p.bitmaps.Update(bm))
	}
}

// touchTick fetches or initializes the tick record for one boundary.
func (p *AmmPosition) touchTick(pair string, index int32, ts int64) *domain.Tick {
	tick, ok := p.ticks.Get(domain.TickKey(pair, index))
	if !ok {
		tick = domain.NewTick(pair, index)
	}
	tick.UpdatedAt = ts
	return tick
}

func (p *AmmPosition) touchBitmap(pair string, index int32, ts int64) *domain.TickBitmap {
	bm, ok := p.bitmaps.Get(domain.TickBitmapKey(pair, index))
	if !ok {
		bm = domain.NewTickBitmap(pair, index)
	}
	bm.UpdatedAt = ts
	return bm
}
