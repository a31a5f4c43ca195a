package processor

import (
	"testing"

	"ExchangeCore/internal/domain"
	"ExchangeCore/internal/event"
)

func TestDepositCreatesAccountAndCreditsNet(t *testing.T) {
	c := newTestCaches()
	p := NewDeposit(c)
	key := domain.AccountKey("btc", "newcomer")

	evt := event.NewDepositCreate("d1", key, dec(50), dec(2), 10)
	res, err := p.Process(&evt)
	if err != nil {
		t.Fatalf("process: %v", err)
	}

	// Account auto-created, credited amount minus fee.
	acct, ok := c.Accounts.Get(key)
	if !ok {
		t.Fatal("deposit must create the account")
	}
	if !acct.Available.Equal(dec(48)) {
		t.Fatalf("credit = %s", acct.Available)
	}
	if res.Deposit.Status != domain.StatusCompleted {
		t.Fatalf("deposit status = %s", res.Deposit.Status)
	}
	if res.AccountHistory == nil {
		t.Fatal("deposit must record a history")
	}
}

func TestAccountBalanceReset(t *testing.T) {
	c := newTestCaches()
	p := NewAccount(c)
	key := domain.AccountKey("btc", "user1")
	fundAccount(c, key, 42, 1)

	evt := event.NewAccountBalanceReset(key, 10)
	res, err := p.Process(&evt)
	if err != nil {
		t.Fatalf("process: %v", err)
	}

	if !res.Account.Available.IsZero() || !res.Account.Frozen.IsZero() {
		t.Fatalf("reset balances = %s/%s", res.Account.Available, res.Account.Frozen)
	}
	if res.AccountHistory == nil || !res.AccountHistory.AvailableBefore.Equal(dec(42)) {
		t.Fatal("reset must record the pre-reset balance")
	}

	ghost := event.NewAccountBalanceReset("btc:ghost", 20)
	p.Process(&ghost)
	if ghost.ErrorMessage != "Account not found accountKey: btc:ghost" {
		t.Fatalf("error = %q", ghost.ErrorMessage)
	}
}

func TestBalancesLockFreezesAll(t *testing.T) {
	c := newTestCaches()
	p := NewBalancesLock(c)
	k1 := domain.AccountKey("btc", "u1")
	k2 := domain.AccountKey("eth", "u1")
	fundAccount(c, k1, 10, 1)
	fundAccount(c, k2, 20, 1)

	evt := event.NewBalancesLockCreate("lock1", []string{k1, k2}, "audit", "case-7", 10)
	res, err := p.Process(&evt)
	if err != nil {
		t.Fatalf("process: %v", err)
	}

	if res.BalanceLock.Status != domain.LockStatusLocked {
		t.Fatalf("lock status = %s", res.BalanceLock.Status)
	}
	for _, key := range []string{k1, k2} {
		a, _ := c.Accounts.Get(key)
		if !a.Available.IsZero() {
			t.Fatalf("%s available = %s", key, a.Available)
		}
	}
	a1, _ := c.Accounts.Get(k1)
	if !a1.Frozen.Equal(dec(10)) {
		t.Fatalf("frozen = %s", a1.Frozen)
	}
	if len(res.Accounts) != 2 || len(res.AccountHistories) != 2 {
		t.Fatalf("per-account results: %d/%d", len(res.Accounts), len(res.AccountHistories))
	}

	rel := event.NewBalancesLockRelease("lock1", 20)
	p.Process(&rel)
	a1, _ = c.Accounts.Get(k1)
	if !a1.Available.Equal(dec(10)) || !a1.Frozen.IsZero() {
		t.Fatalf("release must thaw: %s/%s", a1.Available, a1.Frozen)
	}
	lock, _ := c.Locks.Get("lock1")
	if lock.Status != domain.LockStatusReleased {
		t.Fatalf("lock status = %s", lock.Status)
	}
}

func TestBalancesLockValidatesBeforeFreezing(t *testing.T) {
	c := newTestCaches()
	p := NewBalancesLock(c)
	k1 := domain.AccountKey("btc", "u1")
	fundAccount(c, k1, 10, 1)

	evt := event.NewBalancesLockCreate("lock1", []string{k1, "btc:ghost"}, "audit", "case-7", 10)
	p.Process(&evt)

	if evt.ErrorMessage == "" {
		t.Fatal("missing account must fail the lock")
	}
	// The valid account is untouched: all-or-nothing.
	a1, _ := c.Accounts.Get(k1)
	if !a1.Available.Equal(dec(10)) {
		t.Fatalf("no partial freeze allowed, available = %s", a1.Available)
	}
	if _, ok := c.Locks.Get("lock1"); ok {
		t.Fatal("failed lock must not be recorded")
	}
}

func TestBalancesLockReleasePreservesWithdrawalHold(t *testing.T) {
	c := newTestCaches()
	wp := NewWithdrawal(c)
	lp := NewBalancesLock(c)
	key := domain.AccountKey("btc", "user1")
	fundAccount(c, key, 100, 1)

	// A withdrawal in flight holds 11 (amount 10 + fee 1).
	wc := event.NewWithdrawalCreate("w1", key, "", dec(10), dec(1), 10)
	wp.Process(&wc)

	lc := event.NewBalancesLockCreate("lock1", []string{key}, "audit", "case-1", 20)
	lp.Process(&lc)

	a, _ := c.Accounts.Get(key)
	if !a.Available.IsZero() || !a.Frozen.Equal(dec(100)) {
		t.Fatalf("after lock: %s/%s", a.Available, a.Frozen)
	}
	lock, _ := c.Locks.Get("lock1")
	if !lock.LockedAmounts[key].Equal(dec(89)) {
		t.Fatalf("lock must record what it froze, got %s", lock.LockedAmounts[key])
	}

	// Release thaws only the 89 the lock froze; the withdrawal hold stays.
	lr := event.NewBalancesLockRelease("lock1", 30)
	lp.Process(&lr)

	a, _ = c.Accounts.Get(key)
	if !a.Available.Equal(dec(89)) || !a.Frozen.Equal(dec(11)) {
		t.Fatalf("after release: %s/%s", a.Available, a.Frozen)
	}

	// The withdrawal then settles cleanly against its intact hold.
	wr := event.NewWithdrawalReleasing("w1", 40)
	wp.Process(&wr)

	a, _ = c.Accounts.Get(key)
	if !a.Available.Equal(dec(89)) || !a.Frozen.IsZero() {
		t.Fatalf("after withdrawal release: %s/%s", a.Available, a.Frozen)
	}
	if a.Available.IsNegative() || a.Frozen.IsNegative() {
		t.Fatal("balances must stay non-negative")
	}
}

func TestMerchantEscrowMintAndBurn(t *testing.T) {
	c := newTestCaches()
	p := NewMerchantEscrow(c)
	key := domain.AccountKey("usdt", "merchant")
	fundAccount(c, key, 100, 1)

	mint := event.NewMerchantEscrowMint("esc1", key, dec(30), 10)
	res, err := p.Process(&mint)
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	if res.Escrow.Status != domain.EscrowStatusMinted {
		t.Fatalf("escrow status = %s", res.Escrow.Status)
	}
	a, _ := c.Accounts.Get(key)
	if !a.Available.Equal(dec(70)) || !a.Frozen.Equal(dec(30)) {
		t.Fatalf("after mint: %s/%s", a.Available, a.Frozen)
	}

	burn := event.NewMerchantEscrowBurn("esc1", 20)
	res, _ = p.Process(&burn)
	if res.Escrow.Status != domain.EscrowStatusBurned {
		t.Fatalf("escrow status = %s", res.Escrow.Status)
	}
	a, _ = c.Accounts.Get(key)
	if !a.Available.Equal(dec(100)) || !a.Frozen.IsZero() {
		t.Fatalf("after burn: %s/%s", a.Available, a.Frozen)
	}

	// Burning twice is rejected.
	again := event.NewMerchantEscrowBurn("esc1", 30)
	p.Process(&again)
	if again.ErrorMessage == "" {
		t.Fatal("double burn must be rejected")
	}
}

func TestMerchantEscrowMintInsufficientFunds(t *testing.T) {
	c := newTestCaches()
	p := NewMerchantEscrow(c)
	key := domain.AccountKey("usdt", "merchant")
	fundAccount(c, key, 10, 1)

	mint := event.NewMerchantEscrowMint("esc1", key, dec(30), 10)
	res, err := p.Process(&mint)
	if err != nil {
		t.Fatalf("mint: %v", err)
	}

	want := "Insufficient balance accountKey: usdt:merchant available: 10 required: 30"
	if mint.ErrorMessage != want {
		t.Fatalf("error = %q", mint.ErrorMessage)
	}
	a, _ := c.Accounts.Get(key)
	if !a.Available.Equal(dec(10)) || !a.Frozen.IsZero() {
		t.Fatalf("balances must not move: %s/%s", a.Available, a.Frozen)
	}
	if res.Escrow.Status == domain.EscrowStatusMinted {
		t.Fatal("underfunded mint must not open the escrow")
	}
	if res.Escrow.StatusExplanation != want {
		t.Fatalf("explanation = %q", res.Escrow.StatusExplanation)
	}
}

func TestAmmPoolCreateAndUpdate(t *testing.T) {
	c := newTestCaches()
	p := NewAmmPool(c)

	create := event.NewAmmPoolCreate("BTC/USDT", dec(1000), dec(79), 10)
	res, err := p.Process(&create)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if !res.Pool.Liquidity.Equal(dec(1000)) {
		t.Fatalf("liquidity = %s", res.Pool.Liquidity)
	}

	update := event.NewAmmPoolUpdate("BTC/USDT", dec(-200), dec(81), 20)
	res, _ = p.Process(&update)
	if !res.Pool.Liquidity.Equal(dec(800)) {
		t.Fatalf("liquidity after delta = %s", res.Pool.Liquidity)
	}
	if !res.Pool.SqrtPrice.Equal(dec(81)) {
		t.Fatalf("sqrt price = %s", res.Pool.SqrtPrice)
	}

	ghost := event.NewAmmPoolUpdate("ETH/USDT", dec(1), dec(1), 30)
	p.Process(&ghost)
	if ghost.ErrorMessage == "" {
		t.Fatal("update on unknown pool must fail")
	}
}

func TestAmmPositionTouchesTicksAndBitmap(t *testing.T) {
	c := newTestCaches()
	p := NewAmmPosition(c)

	evt := event.NewAmmPositionCreate("pos1", "BTC/USDT", "btc:lp", -10, 200, dec(500), 10)
	res, err := p.Process(&evt)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if len(res.Ticks) != 2 {
		t.Fatalf("both boundary ticks must be touched, got %d", len(res.Ticks))
	}
	lower, _ := c.Ticks.Get(domain.TickKey("BTC/USDT", -10))
	if !lower.LiquidityNet.Equal(dec(500)) || !lower.LiquidityGross.Equal(dec(500)) {
		t.Fatalf("lower tick: net=%s gross=%s", lower.LiquidityNet, lower.LiquidityGross)
	}
	upper, _ := c.Ticks.Get(domain.TickKey("BTC/USDT", 200))
	if !upper.LiquidityNet.Equal(dec(-500)) {
		t.Fatalf("upper tick net = %s", upper.LiquidityNet)
	}

	bmLower, ok := c.TickBitmaps.Get(domain.TickBitmapKey("BTC/USDT", -10))
	if !ok || !bmLower.IsSet(-10) {
		t.Fatal("lower tick bit must be set")
	}
	bmUpper, ok := c.TickBitmaps.Get(domain.TickBitmapKey("BTC/USDT", 200))
	if !ok || !bmUpper.IsSet(200) {
		t.Fatal("upper tick bit must be set")
	}

	// Draining the position to zero clears the bits.
	drain := event.NewAmmPositionUpdate("pos1", dec(-500), 20)
	p.Process(&drain)

	bmLower, _ = c.TickBitmaps.Get(domain.TickBitmapKey("BTC/USDT", -10))
	if bmLower.IsSet(-10) {
		t.Fatal("drained lower tick bit must be cleared")
	}
}

func TestAmmOrderFillLifecycle(t *testing.T) {
	c := newTestCaches()
	p := NewAmmOrder(c)

	create := event.NewAmmOrderCreate("o1", "BTC/USDT", "btc:trader", "buy", dec(10), dec(50_000), 10)
	res, _ := p.Process(&create)
	if res.AmmOrder.Status != domain.OrderStatusOpen {
		t.Fatalf("status = %s", res.AmmOrder.Status)
	}

	fill := event.NewAmmOrderUpdate("o1", dec(4), 20)
	res, _ = p.Process(&fill)
	if res.AmmOrder.Status != domain.OrderStatusOpen {
		t.Fatal("partial fill keeps the order open")
	}

	rest := event.NewAmmOrderUpdate("o1", dec(6), 30)
	res, _ = p.Process(&rest)
	if res.AmmOrder.Status != domain.OrderStatusFilled {
		t.Fatalf("full fill must close the order, status = %s", res.AmmOrder.Status)
	}
}

func TestTradeAndOffer(t *testing.T) {
	c := newTestCaches()

	tr := event.NewTradeCreate("t1", "BTC/USDT", "btc:maker", "btc:taker", "sell", dec(50_000), dec(2), 10)
	res, err := NewTrade(c).Process(&tr)
	if err != nil {
		t.Fatalf("trade: %v", err)
	}
	if res.Trade == nil || !res.Trade.Quantity.Equal(dec(2)) {
		t.Fatal("trade must be recorded")
	}

	op := NewOffer(c)
	off := event.NewOfferCreate("of1", "BTC/USDT", "btc:maker", "sell", dec(50_000), dec(2), 10)
	res, _ = op.Process(&off)
	if res.Offer.Status != domain.OfferStatusOpen {
		t.Fatalf("offer status = %s", res.Offer.Status)
	}

	cancel := event.NewOfferCancelled("of1", 20)
	res, _ = op.Process(&cancel)
	if res.Offer.Status != domain.OfferStatusCancelled {
		t.Fatalf("offer status = %s", res.Offer.Status)
	}
}

func TestRegistryCoversEveryFamily(t *testing.T) {
	reg := Registry(newTestCaches())
	families := []event.Family{
		event.FamilyWithdrawal, event.FamilyDeposit, event.FamilyAccount,
		event.FamilyAmmPool, event.FamilyAmmPosition, event.FamilyAmmOrder,
		event.FamilyTrade, event.FamilyOffer, event.FamilyBalancesLock,
		event.FamilyMerchantEscrow,
	}
	for _, f := range families {
		if reg[f] == nil {
			t.Fatalf("no processor for %s", f)
		}
	}
}
