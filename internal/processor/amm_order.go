package processor

import (
	"fmt"

	"ExchangeCore/internal/cache"
	"ExchangeCore/internal/domain"
	"ExchangeCore/internal/event"
)

// AmmOrder maintains pool-resident limit orders. Fills arrive as UPDATE
// events carrying the fill quantity; the order flips to FILLED once the
// cumulative fill covers the full amount.
type AmmOrder struct {
	orders *cache.Cache[*domain.AmmOrder]
}

func NewAmmOrder(c *cache.Caches) *AmmOrder {
	return &AmmOrder{orders: c.Orders}
}

func (p *AmmOrder) Process(evt *event.Event) (*domain.ProcessResult, error) {
	res := domain.NewProcessResult(evt)

	switch evt.Operation {
	case event.OpCreate:
		o := p.orders.GetOrInit(evt.Identifier)
		o.PoolPair = evt.PoolPair
		o.OwnerKey = evt.AccountKey
		o.Side = evt.Side
		o.Amount = evt.Amount
		o.Price = evt.Price
		o.Status = domain.OrderStatusOpen
		o.UpdatedAt = evt.Timestamp
		res.AmmOrder = p.orders.Update(o)

	case event.OpUpdate:
		o, ok := p.orders.Get(evt.Identifier)
		if !ok {
			evt.ErrorMessage = fmt.Sprintf("Order not found id: %s", evt.Identifier)
			return res, nil
		}
		if o.Status != domain.OrderStatusOpen {
			evt.ErrorMessage = fmt.Sprintf("Order %s not open, status: %s", o.ID, o.Status)
			return res, nil
		}
		o.Filled = o.Filled.Add(evt.Amount)
		if o.Filled.GreaterThanOrEqual(o.Amount) {
			o.Status = domain.OrderStatusFilled
		}
		o.UpdatedAt = evt.Timestamp
		res.AmmOrder = p.orders.Update(o)

	case event.OpCancelled:
		o, ok := p.orders.Get(evt.Identifier)
		if !ok {
			evt.ErrorMessage = fmt.Sprintf("Order not found id: %s", evt.Identifier)
			return res, nil
		}
		o.Status = domain.OrderStatusCancelled
		o.UpdatedAt = evt.Timestamp
		res.AmmOrder = p.orders.Update(o)

	default:
		evt.ErrorMessage = fmt.Sprintf("unknown amm order operation %q", evt.Operation)
	}

	return res, nil
}
