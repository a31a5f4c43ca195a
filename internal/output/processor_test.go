package output

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"ExchangeCore/internal/cache"
	"ExchangeCore/internal/domain"
	"ExchangeCore/internal/event"
	"ExchangeCore/internal/notify"
	"ExchangeCore/internal/processor"
	"ExchangeCore/internal/store"
)

// countingNotifier records sends and can fail a chosen entity kind.
type countingNotifier struct {
	notify.Noop
	mu       sync.Mutex
	accounts int
	results  int
	failKind string
}

func (n *countingNotifier) SendAccountUpdate(eventID string, a *domain.Account) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.failKind == "account" {
		return errors.New("account channel down")
	}
	n.accounts++
	return nil
}

func (n *countingNotifier) SendTransactionResult(evt *event.Event) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.results++
	return nil
}

func (n *countingNotifier) counts() (int, int) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.accounts, n.results
}

func newTestProcessor(n notify.Notifier) (*Processor, *cache.Caches, cache.Stores) {
	stores := store.NewMemoryStores()
	caches := cache.NewCaches(stores, zerolog.Nop(), nil)
	return New(caches, n, 1, 16, zerolog.Nop(), nil), caches, stores
}

func withdrawalResult(ts int64) *domain.ProcessResult {
	evt := event.NewWithdrawalCreate("w1", "btc:user1", "", decimal.NewFromInt(10), decimal.NewFromInt(1), ts)
	res := domain.NewProcessResult(&evt)

	a := domain.NewAccount("btc:user1")
	a.UpdatedAt = ts
	res.Account = a

	w := domain.NewCoinWithdrawal("w1")
	w.Status = domain.StatusProcessing
	w.UpdatedAt = ts
	res.Withdrawal = w
	return res
}

func TestFanoutStagesEntities(t *testing.T) {
	n := &countingNotifier{}
	p, caches, _ := newTestProcessor(n)
	p.Start()

	p.Results() <- withdrawalResult(10)
	p.Shutdown()

	if caches.Accounts.PendingBatchSize() != 0 {
		t.Fatal("shutdown must flush the staged account")
	}
	accounts, results := n.counts()
	if accounts != 1 {
		t.Fatalf("account notifications = %d", accounts)
	}
	// No pool/position/order entity: the generic fallback fires too.
	if results != 1 {
		t.Fatalf("transaction result notifications = %d", results)
	}
}

func TestFanoutNotifyErrorDoesNotBlockSiblings(t *testing.T) {
	n := &countingNotifier{failKind: "account"}
	p, _, stores := newTestProcessor(n)
	p.Start()

	p.Results() <- withdrawalResult(10)
	p.Shutdown()

	// The withdrawal is persisted even though the account notification failed.
	mem := stores.Withdrawals.(*store.Memory[*domain.CoinWithdrawal])
	if mem.Len() != 1 {
		t.Fatalf("withdrawal must be flushed, len=%d", mem.Len())
	}
}

func TestFanoutNilResultTolerated(t *testing.T) {
	p, _, _ := newTestProcessor(&countingNotifier{})
	p.Start()

	p.Results() <- nil
	p.Results() <- withdrawalResult(10)
	p.Shutdown()
}

func TestFanoutBoundaryForcesFlush(t *testing.T) {
	n := &countingNotifier{}
	p, caches, stores := newTestProcessor(n)
	p.Start()

	// Stage without reaching any flush threshold.
	res := withdrawalResult(10)
	p.Results() <- res

	boundary := event.Boundary()
	p.Results() <- domain.NewProcessResult(&boundary)

	// Drain before asserting; shutdown also flushes, so check the store saw
	// a write for the boundary rather than just the final state.
	p.Shutdown()

	mem := stores.Accounts.(*store.Memory[*domain.Account])
	if mem.Len() != 1 {
		t.Fatalf("boundary must flush staged accounts, len=%d", mem.Len())
	}
	if caches.Accounts.PendingBatchSize() != 0 {
		t.Fatal("nothing may remain staged")
	}
}

// balanceObserver records every account balance a notification carries.
type balanceObserver struct {
	notify.Noop
	mu   sync.Mutex
	seen []string
}

func (n *balanceObserver) SendAccountUpdate(_ string, a *domain.Account) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.seen = append(n.seen, a.Available.String())
	return nil
}

func TestFanoutReadsIsolatedFromProcessing(t *testing.T) {
	n := &balanceObserver{}
	p, caches, _ := newTestProcessor(n)
	p.Start()

	// Drive many deposits for one account through a real processor while the
	// worker reads the results. Each notification must carry the balance as
	// of its own event, not whatever the account holds by the time the worker
	// gets to it.
	dep := processor.NewDeposit(caches)
	const events = 200
	for i := 0; i < events; i++ {
		evt := event.NewDepositCreate(fmt.Sprintf("d%d", i), "btc:user1", decimal.NewFromInt(1), decimal.Zero, int64(i+1))
		res, err := dep.Process(&evt)
		if err != nil {
			t.Fatalf("deposit %d: %v", i, err)
		}
		p.Results() <- res
	}
	p.Shutdown()

	if len(n.seen) != events {
		t.Fatalf("account notifications = %d", len(n.seen))
	}
	for i, got := range n.seen {
		if want := decimal.NewFromInt(int64(i + 1)).String(); got != want {
			t.Fatalf("notification %d carried balance %s, want %s", i, got, want)
		}
	}
}

func TestFanoutGenericFallbackSuppressedForAmmEntities(t *testing.T) {
	n := &countingNotifier{}
	p, _, _ := newTestProcessor(n)
	p.Start()

	evt := event.NewAmmPoolCreate("BTC/USDT", decimal.NewFromInt(1), decimal.NewFromInt(1), 10)
	res := domain.NewProcessResult(&evt)
	res.Pool = domain.NewAmmPool("BTC/USDT")
	res.Pool.UpdatedAt = 10
	p.Results() <- res
	p.Shutdown()

	_, results := n.counts()
	if results != 0 {
		t.Fatalf("pool result must not trigger the generic fallback, got %d", results)
	}
}
