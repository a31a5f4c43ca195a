package store

import (
	"sync"

	"ExchangeCore/internal/cache"
	"ExchangeCore/internal/domain"
)

// Memory is an in-memory Store implementation used in tests and as a
// stand-in when the embedded engine is disabled.
type Memory[T cache.Entity[T]] struct {
	mu      sync.Mutex
	data    map[string]T
	saves   int
	batches int

	// FailSaves makes every write fail, for error-path tests.
	FailSaves bool
}

// NewMemory returns an empty in-memory store.
func NewMemory[T cache.Entity[T]]() *Memory[T] {
	return &Memory[T]{data: make(map[string]T)}
}

func (m *Memory[T]) GetAll() ([]T, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]T, 0, len(m.data))
	for _, e := range m.data {
		out = append(out, e)
	}
	return out, nil
}

func (m *Memory[T]) Get(key string) (T, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.data[key]
	return e, ok, nil
}

func (m *Memory[T]) Save(e T) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailSaves {
		return errSaveFailed
	}
	m.data[e.CacheKey()] = e
	m.saves++
	return nil
}

func (m *Memory[T]) SaveBatch(batch map[string]T) error {
	if len(batch) == 0 {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailSaves {
		return errSaveFailed
	}
	for k, e := range batch {
		m.data[k] = e
	}
	m.batches++
	return nil
}

// Seed inserts entities directly, bypassing counters.
func (m *Memory[T]) Seed(entities ...T) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range entities {
		m.data[e.CacheKey()] = e
	}
}

// BatchWrites returns how many SaveBatch calls hit the store.
func (m *Memory[T]) BatchWrites() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.batches
}

// Len returns the number of stored entities.
func (m *Memory[T]) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.data)
}

// NewMemoryStores builds a full in-memory store set.
func NewMemoryStores() cache.Stores {
	return cache.Stores{
		Accounts:    NewMemory[*domain.Account](),
		Histories:   NewMemory[*domain.AccountHistory](),
		Withdrawals: NewMemory[*domain.CoinWithdrawal](),
		Deposits:    NewMemory[*domain.CoinDeposit](),
		Pools:       NewMemory[*domain.AmmPool](),
		Positions:   NewMemory[*domain.AmmPosition](),
		Orders:      NewMemory[*domain.AmmOrder](),
		Ticks:       NewMemory[*domain.Tick](),
		TickBitmaps: NewMemory[*domain.TickBitmap](),
		Trades:      NewMemory[*domain.Trade](),
		Offers:      NewMemory[*domain.Offer](),
		Locks:       NewMemory[*domain.BalanceLock](),
		Escrows:     NewMemory[*domain.MerchantEscrow](),
	}
}
