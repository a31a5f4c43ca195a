package output

import (
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"ExchangeCore/internal/cache"
	"ExchangeCore/internal/domain"
	"ExchangeCore/internal/notify"
	"ExchangeCore/internal/observability"
)

// Processor is the result fan-out: a bounded worker pool, separate from the
// sequencer's consumer, that stages each result's entities into their caches,
// sends notifications, and triggers store flushes. Slow I/O here never
// backpressures event intake beyond the result channel's buffer.
type Processor struct {
	results  chan *domain.ProcessResult
	caches   *cache.Caches
	notifier notify.Notifier
	workers  int
	wg       sync.WaitGroup
	log      zerolog.Logger
	metrics  *observability.Metrics
}

// New creates the fan-out with the given worker count and queue size.
func New(caches *cache.Caches, notifier notify.Notifier, workers, queueSize int, log zerolog.Logger, metrics *observability.Metrics) *Processor {
	if workers < 1 {
		workers = 1
	}
	return &Processor{
		results:  make(chan *domain.ProcessResult, queueSize),
		caches:   caches,
		notifier: notifier,
		workers:  workers,
		log:      log.With().Str("component", "output").Logger(),
		metrics:  metrics,
	}
}

// Results is the channel the dispatcher forwards into.
func (p *Processor) Results() chan<- *domain.ProcessResult {
	return p.results
}

// Start launches the worker pool.
func (p *Processor) Start() {
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			for res := range p.results {
				p.handle(res)
			}
		}()
	}
}

// Shutdown stops intake, waits for in-flight results, then force-flushes all
// caches.
func (p *Processor) Shutdown() {
	close(p.results)
	p.wg.Wait()
	p.caches.FlushAll()
	p.log.Info().Msg("output processor stopped, caches flushed")
}

// handle processes one result: every populated entity field and collection is
// staged and notified; a failure on one entity never aborts its siblings.
func (p *Processor) handle(res *domain.ProcessResult) {
	if res == nil {
		return
	}
	if p.metrics != nil {
		p.metrics.ResultsFanned.Inc()
	}

	evt := res.Event
	if evt != nil && evt.BatchBoundary {
		p.caches.FlushAll()
		return
	}

	eventID := ""
	if evt != nil {
		eventID = evt.EventID()
	}

	if res.Account != nil {
		p.stage("account", eventID, func() {
			p.caches.Accounts.AddToBatch(res.Account)
		}, func() error {
			return p.notifier.SendAccountUpdate(eventID, res.Account)
		})
	}
	for _, a := range res.Accounts {
		a := a
		p.stage("account", eventID, func() {
			p.caches.Accounts.AddToBatch(a)
		}, func() error {
			return p.notifier.SendAccountUpdate(eventID, a)
		})
	}

	if res.AccountHistory != nil {
		p.stage("account_history", eventID, func() {
			p.caches.Histories.AddToBatch(res.AccountHistory)
		}, func() error {
			return p.notifier.SendAccountHistory(eventID, res.AccountHistory)
		})
	}
	for _, h := range res.AccountHistories {
		h := h
		p.stage("account_history", eventID, func() {
			p.caches.Histories.AddToBatch(h)
		}, func() error {
			return p.notifier.SendAccountHistory(eventID, h)
		})
	}

	if res.Withdrawal != nil {
		p.stage("coin_withdrawal", eventID, func() {
			p.caches.Withdrawals.AddToBatch(res.Withdrawal)
		}, func() error {
			return p.notifier.SendWithdrawalUpdate(eventID, res.Withdrawal)
		})
	}
	if res.Deposit != nil {
		p.stage("coin_deposit", eventID, func() {
			p.caches.Deposits.AddToBatch(res.Deposit)
		}, func() error {
			return p.notifier.SendDepositUpdate(eventID, res.Deposit)
		})
	}
	if res.Pool != nil {
		p.stage("amm_pool", eventID, func() {
			p.caches.Pools.AddToBatch(res.Pool)
		}, func() error {
			return p.notifier.SendPoolUpdate(eventID, res.Pool)
		})
	}
	if res.Position != nil {
		p.stage("amm_position", eventID, func() {
			p.caches.Positions.AddToBatch(res.Position)
		}, func() error {
			return p.notifier.SendPositionUpdate(eventID, res.Position)
		})
	}
	if res.AmmOrder != nil {
		p.stage("amm_order", eventID, func() {
			p.caches.Orders.AddToBatch(res.AmmOrder)
		}, func() error {
			return p.notifier.SendOrderUpdate(eventID, res.AmmOrder)
		})
	}
	if res.Trade != nil {
		p.stage("trade", eventID, func() {
			p.caches.Trades.AddToBatch(res.Trade)
		}, func() error {
			return p.notifier.SendTradeUpdate(eventID, res.Trade)
		})
	}
	if res.Offer != nil {
		p.stage("offer", eventID, func() {
			p.caches.Offers.AddToBatch(res.Offer)
		}, func() error {
			return p.notifier.SendOfferUpdate(eventID, res.Offer)
		})
	}
	if res.BalanceLock != nil {
		p.stage("balance_lock", eventID, func() {
			p.caches.Locks.AddToBatch(res.BalanceLock)
		}, func() error {
			return p.notifier.SendLockUpdate(eventID, res.BalanceLock)
		})
	}
	if res.Escrow != nil {
		p.stage("merchant_escrow", eventID, func() {
			p.caches.Escrows.AddToBatch(res.Escrow)
		}, func() error {
			return p.notifier.SendEscrowUpdate(eventID, res.Escrow)
		})
	}
	for _, t := range res.Ticks {
		t := t
		p.stage("tick", eventID, func() {
			p.caches.Ticks.AddToBatch(t)
		}, nil)
	}
	for _, b := range res.TickBitmaps {
		b := b
		p.stage("tick_bitmap", eventID, func() {
			p.caches.TickBitmaps.AddToBatch(b)
		}, nil)
	}

	// Generic fallback when the result carries no pool/position/order entity.
	if res.Pool == nil && res.Position == nil && res.AmmOrder == nil && evt != nil {
		if err := p.notifier.SendTransactionResult(evt); err != nil {
			p.log.Warn().Err(err).Str("event_id", eventID).Msg("transaction result notification failed")
			if p.metrics != nil {
				p.metrics.NotifyErrors.WithLabelValues(string(evt.Family)).Inc()
			}
		}
	}

	p.caches.FlushDue()
}

// stage runs the cache write and notification for one entity, containing any
// panic or notification error so sibling entities still get processed.
func (p *Processor) stage(entity, eventID string, addToBatch func(), send func() error) {
	defer func() {
		if r := recover(); r != nil {
			p.log.Error().Str("entity", entity).Str("event_id", eventID).Msg(fmt.Sprintf("entity staging crashed: %v", r))
			if p.metrics != nil {
				p.metrics.FanoutEntityErrs.WithLabelValues(entity).Inc()
			}
		}
	}()

	addToBatch()

	if send != nil {
		if err := send(); err != nil {
			p.log.Warn().Err(err).Str("entity", entity).Str("event_id", eventID).Msg("notification failed")
			if p.metrics != nil {
				p.metrics.FanoutEntityErrs.WithLabelValues(entity).Inc()
			}
		}
	}
}
