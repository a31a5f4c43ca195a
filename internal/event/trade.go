package event

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// NewTradeCreate records an executed trade between maker and taker.
func NewTradeCreate(identifier, poolPair, makerKey, takerKey, side string, price, quantity decimal.Decimal, ts int64) Event {
	return Event{
		ID:              uuid.New(),
		Family:          FamilyTrade,
		Operation:       OpCreate,
		Timestamp:       ts,
		Identifier:      identifier,
		PoolPair:        poolPair,
		MakerAccountKey: makerKey,
		TakerAccountKey: takerKey,
		Side:            side,
		Price:           price,
		Quantity:        quantity,
	}
}

// NewOfferCreate places a resting offer.
func NewOfferCreate(identifier, poolPair, accountKey, side string, price, quantity decimal.Decimal, ts int64) Event {
	return Event{
		ID:         uuid.New(),
		Family:     FamilyOffer,
		Operation:  OpCreate,
		Timestamp:  ts,
		Identifier: identifier,
		PoolPair:   poolPair,
		AccountKey: accountKey,
		Side:       side,
		Price:      price,
		Quantity:   quantity,
	}
}

// NewOfferCancelled cancels a resting offer.
func NewOfferCancelled(identifier string, ts int64) Event {
	return Event{
		ID:         uuid.New(),
		Family:     FamilyOffer,
		Operation:  OpCancelled,
		Timestamp:  ts,
		Identifier: identifier,
	}
}
