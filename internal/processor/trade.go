package processor

import (
	"fmt"

	"ExchangeCore/internal/cache"
	"ExchangeCore/internal/domain"
	"ExchangeCore/internal/event"
)

// Trade records executed trades. Matching happens upstream, so the only
// operation is CREATE.
type Trade struct {
	trades *cache.Cache[*domain.Trade]
}

func NewTrade(c *cache.Caches) *Trade {
	return &Trade{trades: c.Trades}
}

func (p *Trade) Process(evt *event.Event) (*domain.ProcessResult, error) {
	res := domain.NewProcessResult(evt)

	switch evt.Operation {
	case event.OpCreate:
		t := p.trades.GetOrInit(evt.Identifier)
		t.PoolPair = evt.PoolPair
		t.MakerAccountKey = evt.MakerAccountKey
		t.TakerAccountKey = evt.TakerAccountKey
		t.Side = evt.Side
		t.Price = evt.Price
		t.Quantity = evt.Quantity
		t.UpdatedAt = evt.Timestamp
		res.Trade = p.trades.Update(t)

	default:
		evt.ErrorMessage = fmt.Sprintf("unknown trade operation %q", evt.Operation)
	}

	return res, nil
}
