package processor

import (
	"fmt"

	"ExchangeCore/internal/cache"
	"ExchangeCore/internal/domain"
	"ExchangeCore/internal/event"
)

// Offer maintains resting offers: CREATE opens, CANCELLED closes.
type Offer struct {
	offers *cache.Cache[*domain.Offer]
}

func NewOffer(c *cache.Caches) *Offer {
	return &Offer{offers: c.Offers}
}

func (p *Offer) Process(evt *event.Event) (*domain.ProcessResult, error) {
	res := domain.NewProcessResult(evt)

	switch evt.Operation {
	case event.OpCreate:
		o := p.offers.GetOrInit(evt.Identifier)
		o.PoolPair = evt.PoolPair
		o.AccountKey = evt.AccountKey
		o.Side = evt.Side
		o.Price = evt.Price
		o.Quantity = evt.Quantity
		o.Status = domain.OfferStatusOpen
		o.UpdatedAt = evt.Timestamp
		res.Offer = p.offers.Update(o)

	case event.OpCancelled:
		o, ok := p.offers.Get(evt.Identifier)
		if !ok {
			evt.ErrorMessage = fmt.Sprintf("Offer not found id: %s", evt.Identifier)
			return res, nil
		}
		o.Status = domain.OfferStatusCancelled
		o.UpdatedAt = evt.Timestamp
		res.Offer = p.offers.Update(o)

	default:
		evt.ErrorMessage = fmt.Sprintf("unknown offer operation %q", evt.Operation)
	}

	return res, nil
}
