package processor

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"ExchangeCore/internal/cache"
	"ExchangeCore/internal/core"
	"ExchangeCore/internal/event"
)

// accountNotFound is the canonical message for a missing account reference.
func accountNotFound(accountKey string) string {
	return fmt.Sprintf("Account not found accountKey: %s", accountKey)
}

// insufficientBalance is the canonical message for a debit or hold exceeding
// the available balance.
func insufficientBalance(accountKey string, available, required decimal.Decimal) string {
	return fmt.Sprintf("Insufficient balance accountKey: %s available: %s required: %s", accountKey, available, required)
}

// operationType labels AccountHistory rows, e.g. "WITHDRAWAL_CREATE".
func operationType(evt *event.Event) string {
	return strings.ToUpper(string(evt.Family)) + "_" + string(evt.Operation)
}

// Registry builds the full processor set keyed by event family, all wired to
// the same cache set.
func Registry(c *cache.Caches) map[event.Family]core.Processor {
	return map[event.Family]core.Processor{
		event.FamilyWithdrawal:     NewWithdrawal(c),
		event.FamilyDeposit:        NewDeposit(c),
		event.FamilyAccount:        NewAccount(c),
		event.FamilyAmmPool:        NewAmmPool(c),
		event.FamilyAmmPosition:    NewAmmPosition(c),
		event.FamilyAmmOrder:       NewAmmOrder(c),
		event.FamilyTrade:          NewTrade(c),
		event.FamilyOffer:          NewOffer(c),
		event.FamilyBalancesLock:   NewBalancesLock(c),
		event.FamilyMerchantEscrow: NewMerchantEscrow(c),
	}
}
