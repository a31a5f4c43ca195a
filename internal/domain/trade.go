package domain

import "github.com/shopspring/decimal"

// Trade is the persisted record of one executed trade. Matching happens
// upstream; this system records the result for the audit trail.
type Trade struct {
	ID              string          `json:"id"`
	PoolPair        string          `json:"poolPair"`
	MakerAccountKey string          `json:"makerAccountKey"`
	TakerAccountKey string          `json:"takerAccountKey"`
	Side            string          `json:"side"`
	Price           decimal.Decimal `json:"price"`
	Quantity        decimal.Decimal `json:"quantity"`
	UpdatedAt       int64           `json:"updatedAt"`
}

func NewTrade(id string) *Trade {
	return &Trade{
		ID:       id,
		Price:    decimal.Zero,
		Quantity: decimal.Zero,
	}
}

func (t *Trade) CacheKey() string { return t.ID }
func (t *Trade) Timestamp() int64 { return t.UpdatedAt }

func (t *Trade) Clone() *Trade {
	c := *t
	return &c
}

// Offer statuses.
const (
	OfferStatusOpen      = "OPEN"
	OfferStatusCancelled = "CANCELLED"
)

// Offer is a resting offer owned by one account.
type Offer struct {
	ID         string          `json:"id"`
	PoolPair   string          `json:"poolPair"`
	AccountKey string          `json:"accountKey"`
	Side       string          `json:"side"`
	Price      decimal.Decimal `json:"price"`
	Quantity   decimal.Decimal `json:"quantity"`
	Status     string          `json:"status"`
	UpdatedAt  int64           `json:"updatedAt"`
}

func NewOffer(id string) *Offer {
	return &Offer{
		ID:       id,
		Price:    decimal.Zero,
		Quantity: decimal.Zero,
	}
}

func (o *Offer) CacheKey() string { return o.ID }
func (o *Offer) Timestamp() int64 { return o.UpdatedAt }

func (o *Offer) Clone() *Offer {
	c := *o
	return &c
}
