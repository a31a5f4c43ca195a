package event

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// NewAmmPoolCreate registers a pool with its initial liquidity and price.
func NewAmmPoolCreate(poolPair string, liquidity, sqrtPrice decimal.Decimal, ts int64) Event {
	return Event{
		ID:        uuid.New(),
		Family:    FamilyAmmPool,
		Operation: OpCreate,
		Timestamp: ts,
		PoolPair:  poolPair,
		Liquidity: liquidity,
		SqrtPrice: sqrtPrice,
	}
}

// NewAmmPoolUpdate applies a liquidity delta and new price to a pool.
func NewAmmPoolUpdate(poolPair string, liquidityDelta, sqrtPrice decimal.Decimal, ts int64) Event {
	return Event{
		ID:        uuid.New(),
		Family:    FamilyAmmPool,
		Operation: OpUpdate,
		Timestamp: ts,
		PoolPair:  poolPair,
		Liquidity: liquidityDelta,
		SqrtPrice: sqrtPrice,
	}
}

// NewAmmPositionCreate opens a liquidity position over [tickLower, tickUpper].
// The owner is identified by accountKey.
func NewAmmPositionCreate(identifier, poolPair, accountKey string, tickLower, tickUpper int32, liquidity decimal.Decimal, ts int64) Event {
	return Event{
		ID:         uuid.New(),
		Family:     FamilyAmmPosition,
		Operation:  OpCreate,
		Timestamp:  ts,
		Identifier: identifier,
		PoolPair:   poolPair,
		AccountKey: accountKey,
		TickLower:  tickLower,
		TickUpper:  tickUpper,
		Liquidity:  liquidity,
	}
}

// NewAmmPositionUpdate applies a liquidity delta to an existing position.
func NewAmmPositionUpdate(identifier string, liquidityDelta decimal.Decimal, ts int64) Event {
	return Event{
		ID:         uuid.New(),
		Family:     FamilyAmmPosition,
		Operation:  OpUpdate,
		Timestamp:  ts,
		Identifier: identifier,
		Liquidity:  liquidityDelta,
	}
}

// NewAmmOrderCreate opens a pool-resident limit order.
func NewAmmOrderCreate(identifier, poolPair, accountKey, side string, amount, price decimal.Decimal, ts int64) Event {
	return Event{
		ID:         uuid.New(),
		Family:     FamilyAmmOrder,
		Operation:  OpCreate,
		Timestamp:  ts,
		Identifier: identifier,
		PoolPair:   poolPair,
		AccountKey: accountKey,
		Side:       side,
		Amount:     amount,
		Price:      price,
	}
}

// NewAmmOrderUpdate records fill progress against an AMM order.
func NewAmmOrderUpdate(identifier string, filled decimal.Decimal, ts int64) Event {
	return Event{
		ID:         uuid.New(),
		Family:     FamilyAmmOrder,
		Operation:  OpUpdate,
		Timestamp:  ts,
		Identifier: identifier,
		Amount:     filled,
	}
}
