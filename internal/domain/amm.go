package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// AmmPool holds the mutable pool-level state for one pair. The pricing and
// tick math live outside this system; the pool here is the persisted record.
type AmmPool struct {
	Pair      string          `json:"pair"`
	Liquidity decimal.Decimal `json:"liquidity"`
	SqrtPrice decimal.Decimal `json:"sqrtPrice"`
	UpdatedAt int64           `json:"updatedAt"`
}

func NewAmmPool(pair string) *AmmPool {
	return &AmmPool{
		Pair:      pair,
		Liquidity: decimal.Zero,
		SqrtPrice: decimal.Zero,
	}
}

func (p *AmmPool) CacheKey() string { return p.Pair }
func (p *AmmPool) Timestamp() int64 { return p.UpdatedAt }

func (p *AmmPool) Clone() *AmmPool {
	c := *p
	return &c
}

// AmmPosition is a liquidity position over a tick range of one pool.
type AmmPosition struct {
	ID        string          `json:"id"`
	PoolPair  string          `json:"poolPair"`
	OwnerKey  string          `json:"ownerKey"`
	TickLower int32           `json:"tickLower"`
	TickUpper int32           `json:"tickUpper"`
	Liquidity decimal.Decimal `json:"liquidity"`
	UpdatedAt int64           `json:"updatedAt"`
}

func NewAmmPosition(id string) *AmmPosition {
	return &AmmPosition{
		ID:        id,
		Liquidity: decimal.Zero,
	}
}

func (p *AmmPosition) CacheKey() string { return p.ID }
func (p *AmmPosition) Timestamp() int64 { return p.UpdatedAt }

func (p *AmmPosition) Clone() *AmmPosition {
	c := *p
	return &c
}

// AMM order statuses.
const (
	OrderStatusOpen      = "OPEN"
	OrderStatusFilled    = "FILLED"
	OrderStatusCancelled = "CANCELLED"
)

// AmmOrder is a pool-resident limit order.
type AmmOrder struct {
	ID        string          `json:"id"`
	PoolPair  string          `json:"poolPair"`
	OwnerKey  string          `json:"ownerKey"`
	Side      string          `json:"side"`
	Amount    decimal.Decimal `json:"amount"`
	Filled    decimal.Decimal `json:"filled"`
	Price     decimal.Decimal `json:"price"`
	Status    string          `json:"status"`
	UpdatedAt int64           `json:"updatedAt"`
}

func NewAmmOrder(id string) *AmmOrder {
	return &AmmOrder{
		ID:     id,
		Amount: decimal.Zero,
		Filled: decimal.Zero,
		Price:  decimal.Zero,
	}
}

func (o *AmmOrder) CacheKey() string { return o.ID }
func (o *AmmOrder) Timestamp() int64 { return o.UpdatedAt }

func (o *AmmOrder) Clone() *AmmOrder {
	c := *o
	return &c
}

// TickKey builds the cache key for a tick: "pair:index".
func TickKey(pair string, index int32) string {
	return fmt.Sprintf("%s:%d", pair, index)
}

// Tick accumulates the liquidity bookkeeping at one tick index.
type Tick struct {
	Key            string          `json:"key"`
	PoolPair       string          `json:"poolPair"`
	Index          int32           `json:"index"`
	LiquidityNet   decimal.Decimal `json:"liquidityNet"`
	LiquidityGross decimal.Decimal `json:"liquidityGross"`
	UpdatedAt      int64           `json:"updatedAt"`
}

func NewTick(pair string, index int32) *Tick {
	return &Tick{
		Key:            TickKey(pair, index),
		PoolPair:       pair,
		Index:          index,
		LiquidityNet:   decimal.Zero,
		LiquidityGross: decimal.Zero,
	}
}

func (t *Tick) CacheKey() string { return t.Key }
func (t *Tick) Timestamp() int64 { return t.UpdatedAt }

func (t *Tick) Clone() *Tick {
	c := *t
	return &c
}

// tickBitmapWordSize is the number of tick bits per bitmap word.
const tickBitmapWordSize = 64

// TickBitmapKey builds the cache key for the bitmap word covering index.
func TickBitmapKey(pair string, index int32) string {
	return fmt.Sprintf("%s:%d", pair, wordIndex(index))
}

func wordIndex(index int32) int32 {
	// Floor division so negative ticks land in the right word.
	w := index / tickBitmapWordSize
	if index%tickBitmapWordSize < 0 {
		w--
	}
	return w
}

// TickBitmap is one 64-bit word of the initialized-tick bitmap for a pool.
type TickBitmap struct {
	Key       string `json:"key"`
	PoolPair  string `json:"poolPair"`
	WordIndex int32  `json:"wordIndex"`
	Word      uint64 `json:"word"`
	UpdatedAt int64  `json:"updatedAt"`
}

func NewTickBitmap(pair string, index int32) *TickBitmap {
	return &TickBitmap{
		Key:       TickBitmapKey(pair, index),
		PoolPair:  pair,
		WordIndex: wordIndex(index),
	}
}

func (b *TickBitmap) CacheKey() string { return b.Key }
func (b *TickBitmap) Timestamp() int64 { return b.UpdatedAt }

func (b *TickBitmap) Clone() *TickBitmap {
	c := *b
	return &c
}

// SetBit marks the tick at index as initialized.
func (b *TickBitmap) SetBit(index int32) {
	b.Word |= 1 << bitPosition(index)
}

// ClearBit marks the tick at index as uninitialized.
func (b *TickBitmap) ClearBit(index int32) {
	b.Word &^= 1 << bitPosition(index)
}

// IsSet reports whether the tick at index is initialized.
func (b *TickBitmap) IsSet(index int32) bool {
	return b.Word&(1<<bitPosition(index)) != 0
}

func bitPosition(index int32) uint {
	pos := index % tickBitmapWordSize
	if pos < 0 {
		pos += tickBitmapWordSize
	}
	return uint(pos)
}
