package processor

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"ExchangeCore/internal/cache"
	"ExchangeCore/internal/domain"
	"ExchangeCore/internal/event"
	"ExchangeCore/internal/store"
)

func newTestCaches() *cache.Caches {
	return cache.NewCaches(store.NewMemoryStores(), zerolog.Nop(), nil)
}

func fundAccount(c *cache.Caches, key string, available int64, ts int64) *domain.Account {
	a := domain.NewAccount(key)
	a.Available = decimal.NewFromInt(available)
	a.UpdatedAt = ts
	c.Accounts.Update(a)
	return a
}

func dec(n int64) decimal.Decimal { return decimal.NewFromInt(n) }

func TestWithdrawalLifecycle(t *testing.T) {
	c := newTestCaches()
	p := NewWithdrawal(c)
	key := domain.AccountKey("btc", "user1")
	fundAccount(c, key, 100, 1)

	// CREATE: amount 10, fee 1 → available 89, frozen 11, PROCESSING.
	evt := event.NewWithdrawalCreate("w1", key, "", dec(10), dec(1), 10)
	res, err := p.Process(&evt)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if evt.ErrorMessage != "" {
		t.Fatalf("create error: %s", evt.ErrorMessage)
	}

	acct, _ := c.Accounts.Get(key)
	if !acct.Available.Equal(dec(89)) || !acct.Frozen.Equal(dec(11)) {
		t.Fatalf("after create: %s/%s", acct.Available, acct.Frozen)
	}
	if res.Withdrawal.Status != domain.StatusProcessing {
		t.Fatalf("status = %s", res.Withdrawal.Status)
	}
	if res.AccountHistory == nil {
		t.Fatal("create must record a history")
	}
	if !res.AccountHistory.AvailableBefore.Equal(dec(100)) || !res.AccountHistory.AvailableAfter.Equal(dec(89)) {
		t.Fatalf("history before/after: %s/%s", res.AccountHistory.AvailableBefore, res.AccountHistory.AvailableAfter)
	}

	// RELEASING: frozen drops by 11, COMPLETED.
	rel := event.NewWithdrawalReleasing("w1", 20)
	res, err = p.Process(&rel)
	if err != nil {
		t.Fatalf("release: %v", err)
	}

	acct, _ = c.Accounts.Get(key)
	if !acct.Available.Equal(dec(89)) || !acct.Frozen.IsZero() {
		t.Fatalf("after release: %s/%s", acct.Available, acct.Frozen)
	}
	if res.Withdrawal.Status != domain.StatusCompleted {
		t.Fatalf("status = %s", res.Withdrawal.Status)
	}
}

func TestWithdrawalRecipientCreditsAmountOnly(t *testing.T) {
	c := newTestCaches()
	p := NewWithdrawal(c)
	sender := domain.AccountKey("btc", "sender")
	recipient := domain.AccountKey("btc", "recipient")
	fundAccount(c, sender, 100, 1)
	fundAccount(c, recipient, 0, 1)

	evt := event.NewWithdrawalCreate("w1", sender, recipient, dec(10), dec(1), 10)
	p.Process(&evt)

	rel := event.NewWithdrawalReleasing("w1", 20)
	res, _ := p.Process(&rel)

	// The recipient receives the amount, not amount+fee.
	r, _ := c.Accounts.Get(recipient)
	if !r.Available.Equal(dec(10)) {
		t.Fatalf("recipient credit = %s", r.Available)
	}

	if len(res.Accounts) != 1 || len(res.AccountHistories) != 1 {
		t.Fatalf("recipient leg missing: %d/%d", len(res.Accounts), len(res.AccountHistories))
	}
	if res.AccountHistories[0].OperationID != "recipient-w1" {
		t.Fatalf("recipient history id = %s", res.AccountHistories[0].OperationID)
	}
}

func TestWithdrawalResultCarriesBalanceSnapshot(t *testing.T) {
	c := newTestCaches()
	p := NewWithdrawal(c)
	key := domain.AccountKey("btc", "user1")
	fundAccount(c, key, 100, 1)

	first := event.NewWithdrawalCreate("w1", key, "", dec(10), dec(1), 10)
	res1, err := p.Process(&first)
	if err != nil {
		t.Fatalf("first create: %v", err)
	}

	second := event.NewWithdrawalCreate("w2", key, "", dec(20), dec(2), 20)
	p.Process(&second)

	// The first result still shows the balances as of its own event; later
	// events mutate the cached account, never the attached snapshot.
	if !res1.Account.Available.Equal(dec(89)) || !res1.Account.Frozen.Equal(dec(11)) {
		t.Fatalf("first result changed by later event: %s/%s", res1.Account.Available, res1.Account.Frozen)
	}
	live, _ := c.Accounts.Get(key)
	if res1.Account == live {
		t.Fatal("result must not alias the cached account")
	}
	if res1.Withdrawal == c.Withdrawals.GetOrInit("w1") {
		t.Fatal("result must not alias the cached withdrawal")
	}
}

func TestWithdrawalCreateInsufficientFunds(t *testing.T) {
	c := newTestCaches()
	p := NewWithdrawal(c)
	key := domain.AccountKey("btc", "user1")
	fundAccount(c, key, 5, 1)

	evt := event.NewWithdrawalCreate("w1", key, "", dec(10), dec(1), 10)
	res, err := p.Process(&evt)
	if err != nil {
		t.Fatalf("process: %v", err)
	}

	want := "Insufficient balance accountKey: btc:user1 available: 5 required: 11"
	if evt.ErrorMessage != want {
		t.Fatalf("error = %q", evt.ErrorMessage)
	}
	// Balances are untouched; the account never goes negative.
	acct, _ := c.Accounts.Get(key)
	if !acct.Available.Equal(dec(5)) || !acct.Frozen.IsZero() {
		t.Fatalf("balances must not move: %s/%s", acct.Available, acct.Frozen)
	}
	if res.Withdrawal.Status != domain.StatusFailed {
		t.Fatalf("status = %s", res.Withdrawal.Status)
	}
	if res.Withdrawal.StatusExplanation != want {
		t.Fatalf("explanation = %q", res.Withdrawal.StatusExplanation)
	}
}

func TestWithdrawalCreateUnknownAccount(t *testing.T) {
	c := newTestCaches()
	p := NewWithdrawal(c)

	evt := event.NewWithdrawalCreate("w1", "btc:ghost", "", dec(10), dec(1), 10)
	res, err := p.Process(&evt)
	if err != nil {
		t.Fatalf("process: %v", err)
	}

	want := "Account not found accountKey: btc:ghost"
	if evt.ErrorMessage != want {
		t.Fatalf("error = %q", evt.ErrorMessage)
	}
	// The withdrawal record is still persisted, reflecting the failure.
	w, ok := c.Withdrawals.Get("w1")
	if !ok {
		t.Fatal("failed withdrawal must still be persisted")
	}
	if w.Status != domain.StatusFailed {
		t.Fatalf("status = %s", w.Status)
	}
	if w.StatusExplanation != want {
		t.Fatalf("explanation = %q", w.StatusExplanation)
	}
	if res.Account != nil {
		t.Fatal("no account may be touched")
	}
}

func TestWithdrawalCancelRestoresBalance(t *testing.T) {
	c := newTestCaches()
	p := NewWithdrawal(c)
	key := domain.AccountKey("btc", "user1")
	fundAccount(c, key, 100, 1)

	evt := event.NewWithdrawalCreate("w1", key, "", dec(10), dec(1), 10)
	p.Process(&evt)

	cancel := event.NewWithdrawalCancelled("w1", 20)
	p.Process(&cancel)

	acct, _ := c.Accounts.Get(key)
	if !acct.Available.Equal(dec(100)) || !acct.Frozen.IsZero() {
		t.Fatalf("cancel must fully reverse: %s/%s", acct.Available, acct.Frozen)
	}
	w, _ := c.Withdrawals.Get("w1")
	if w.Status != domain.StatusCancelled {
		t.Fatalf("status = %s", w.Status)
	}
}

func TestWithdrawalFailedKeepsFunds(t *testing.T) {
	c := newTestCaches()
	p := NewWithdrawal(c)
	key := domain.AccountKey("btc", "user1")
	fundAccount(c, key, 100, 1)

	evt := event.NewWithdrawalCreate("w1", key, "", dec(10), dec(1), 10)
	p.Process(&evt)

	fail := event.NewWithdrawalFailed("w1", 20)
	p.Process(&fail)

	// No balance change: funds stay frozen for manual resolution.
	acct, _ := c.Accounts.Get(key)
	if !acct.Available.Equal(dec(89)) || !acct.Frozen.Equal(dec(11)) {
		t.Fatalf("failed must not move funds: %s/%s", acct.Available, acct.Frozen)
	}
	w, _ := c.Withdrawals.Get("w1")
	if w.Status != domain.StatusFailed {
		t.Fatalf("status = %s", w.Status)
	}
}

func TestWithdrawalTerminalGuard(t *testing.T) {
	c := newTestCaches()
	p := NewWithdrawal(c)
	key := domain.AccountKey("btc", "user1")
	fundAccount(c, key, 100, 1)

	create := event.NewWithdrawalCreate("w1", key, "", dec(10), dec(1), 10)
	p.Process(&create)
	rel := event.NewWithdrawalReleasing("w1", 20)
	p.Process(&rel)

	// A second release on a COMPLETED withdrawal is rejected, balances stay.
	again := event.NewWithdrawalReleasing("w1", 30)
	p.Process(&again)
	if again.ErrorMessage == "" {
		t.Fatal("terminal transition must be rejected")
	}
	acct, _ := c.Accounts.Get(key)
	if !acct.Available.Equal(dec(89)) || !acct.Frozen.IsZero() {
		t.Fatalf("balances must not move again: %s/%s", acct.Available, acct.Frozen)
	}
	w, _ := c.Withdrawals.Get("w1")
	if w.Status != domain.StatusCompleted {
		t.Fatalf("terminal status must stick, got %s", w.Status)
	}
}

func TestWithdrawalReleaseUnknownIdentifier(t *testing.T) {
	c := newTestCaches()
	p := NewWithdrawal(c)

	rel := event.NewWithdrawalReleasing("ghost", 10)
	p.Process(&rel)

	if rel.ErrorMessage != "Withdrawal not found identifier: ghost" {
		t.Fatalf("error = %q", rel.ErrorMessage)
	}
}

func TestWithdrawalConservation(t *testing.T) {
	c := newTestCaches()
	p := NewWithdrawal(c)
	key := domain.AccountKey("btc", "user1")
	fundAccount(c, key, 100, 1)

	create := event.NewWithdrawalCreate("w1", key, "", dec(30), dec(2), 10)
	p.Process(&create)

	// Freeze conserves Available+Frozen.
	acct, _ := c.Accounts.Get(key)
	if !acct.Total().Equal(dec(100)) {
		t.Fatalf("create must conserve total, got %s", acct.Total())
	}

	cancel := event.NewWithdrawalCancelled("w1", 20)
	p.Process(&cancel)
	acct, _ = c.Accounts.Get(key)
	if !acct.Total().Equal(dec(100)) {
		t.Fatalf("cancel must conserve total, got %s", acct.Total())
	}
}
