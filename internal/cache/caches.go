package cache

import (
	"github.com/rs/zerolog"

	"ExchangeCore/internal/domain"
	"ExchangeCore/internal/observability"
)

// Per-type flush thresholds. High-volume aggregates flush on staged size,
// the rest on an update-counter modulo.
const (
	AccountFlushSize    = 10_000
	WithdrawalFlushSize = 10_000
	DepositFlushSize    = 10_000
	HistoryFlushSize    = 10_000

	PoolFlushEvery     = 100
	PositionFlushEvery = 100
	OrderFlushEvery    = 100
	TradeFlushEvery    = 100
	OfferFlushEvery    = 100
	LockFlushEvery     = 100
	EscrowFlushEvery   = 100
	BitmapFlushEvery   = 50
	TickFlushEvery     = 1_000
)

// Stores bundles the durable store adapter for every entity type.
type Stores struct {
	Accounts    Store[*domain.Account]
	Histories   Store[*domain.AccountHistory]
	Withdrawals Store[*domain.CoinWithdrawal]
	Deposits    Store[*domain.CoinDeposit]
	Pools       Store[*domain.AmmPool]
	Positions   Store[*domain.AmmPosition]
	Orders      Store[*domain.AmmOrder]
	Ticks       Store[*domain.Tick]
	TickBitmaps Store[*domain.TickBitmap]
	Trades      Store[*domain.Trade]
	Offers      Store[*domain.Offer]
	Locks       Store[*domain.BalanceLock]
	Escrows     Store[*domain.MerchantEscrow]
}

// Caches is the full set of entity caches, one per aggregate type. Each cache
// exclusively owns its in-memory map and pending batch.
type Caches struct {
	Accounts    *AccountCache
	Histories   *Cache[*domain.AccountHistory]
	Withdrawals *Cache[*domain.CoinWithdrawal]
	Deposits    *Cache[*domain.CoinDeposit]
	Pools       *Cache[*domain.AmmPool]
	Positions   *Cache[*domain.AmmPosition]
	Orders      *Cache[*domain.AmmOrder]
	Ticks       *Cache[*domain.Tick]
	TickBitmaps *Cache[*domain.TickBitmap]
	Trades      *Cache[*domain.Trade]
	Offers      *Cache[*domain.Offer]
	Locks       *Cache[*domain.BalanceLock]
	Escrows     *Cache[*domain.MerchantEscrow]
}

// NewCaches wires every entity cache to its store with its flush policy.
func NewCaches(s Stores, log zerolog.Logger, metrics *observability.Metrics) *Caches {
	newHistory := func(key string) *domain.AccountHistory { return &domain.AccountHistory{ID: key} }

	return &Caches{
		Accounts:    NewAccountCache(s.Accounts, SizeThreshold(AccountFlushSize), log, metrics),
		Histories:   New[*domain.AccountHistory]("account_history", s.Histories, SizeThreshold(HistoryFlushSize), newHistory, log, metrics),
		Withdrawals: New[*domain.CoinWithdrawal]("coin_withdrawal", s.Withdrawals, SizeThreshold(WithdrawalFlushSize), domain.NewCoinWithdrawal, log, metrics),
		Deposits:    New[*domain.CoinDeposit]("coin_deposit", s.Deposits, SizeThreshold(DepositFlushSize), domain.NewCoinDeposit, log, metrics),
		Pools:       New[*domain.AmmPool]("amm_pool", s.Pools, EveryNUpdates(PoolFlushEvery), domain.NewAmmPool, log, metrics),
		Positions:   New[*domain.AmmPosition]("amm_position", s.Positions, EveryNUpdates(PositionFlushEvery), domain.NewAmmPosition, log, metrics),
		Orders:      New[*domain.AmmOrder]("amm_order", s.Orders, EveryNUpdates(OrderFlushEvery), domain.NewAmmOrder, log, metrics),
		Ticks:       New[*domain.Tick]("tick", s.Ticks, EveryNUpdates(TickFlushEvery), func(key string) *domain.Tick { return &domain.Tick{Key: key} }, log, metrics),
		TickBitmaps: New[*domain.TickBitmap]("tick_bitmap", s.TickBitmaps, EveryNUpdates(BitmapFlushEvery), func(key string) *domain.TickBitmap { return &domain.TickBitmap{Key: key} }, log, metrics),
		Trades:      New[*domain.Trade]("trade", s.Trades, EveryNUpdates(TradeFlushEvery), domain.NewTrade, log, metrics),
		Offers:      New[*domain.Offer]("offer", s.Offers, EveryNUpdates(OfferFlushEvery), domain.NewOffer, log, metrics),
		Locks:       New[*domain.BalanceLock]("balance_lock", s.Locks, EveryNUpdates(LockFlushEvery), domain.NewBalanceLock, log, metrics),
		Escrows:     New[*domain.MerchantEscrow]("merchant_escrow", s.Escrows, EveryNUpdates(EscrowFlushEvery), domain.NewMerchantEscrow, log, metrics),
	}
}

// InitializeAll loads persisted state into every cache at startup. Each load
// failure is contained to its own cache.
func (c *Caches) InitializeAll() {
	c.Accounts.Initialize()
	c.Histories.Initialize()
	c.Withdrawals.Initialize()
	c.Deposits.Initialize()
	c.Pools.Initialize()
	c.Positions.Initialize()
	c.Orders.Initialize()
	c.Ticks.Initialize()
	c.TickBitmaps.Initialize()
	c.Trades.Initialize()
	c.Offers.Initialize()
	c.Locks.Initialize()
	c.Escrows.Initialize()
}

// FlushAll force-flushes every cache, used on batch boundaries and shutdown.
func (c *Caches) FlushAll() {
	c.Accounts.FlushToDisk()
	c.Histories.FlushToDisk()
	c.Withdrawals.FlushToDisk()
	c.Deposits.FlushToDisk()
	c.Pools.FlushToDisk()
	c.Positions.FlushToDisk()
	c.Orders.FlushToDisk()
	c.Ticks.FlushToDisk()
	c.TickBitmaps.FlushToDisk()
	c.Trades.FlushToDisk()
	c.Offers.FlushToDisk()
	c.Locks.FlushToDisk()
	c.Escrows.FlushToDisk()
}

// FlushDue flushes only the caches whose policy currently fires.
func (c *Caches) FlushDue() {
	for _, f := range c.flushables() {
		if f.ShouldFlush() {
			f.FlushToDisk()
		}
	}
}

// Flushable is the policy/flush surface shared by all typed caches.
type Flushable interface {
	Name() string
	ShouldFlush() bool
	FlushToDisk()
}

func (c *Caches) flushables() []Flushable {
	return []Flushable{
		c.Accounts, c.Histories, c.Withdrawals, c.Deposits,
		c.Pools, c.Positions, c.Orders, c.Ticks, c.TickBitmaps,
		c.Trades, c.Offers, c.Locks, c.Escrows,
	}
}
