package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// AccountKey builds the canonical "currency:owner" key.
func AccountKey(currency, owner string) string {
	return fmt.Sprintf("%s:%s", currency, owner)
}

// Account is the authoritative balance record for one currency+owner pair.
// Invariant: Available >= 0 and Frozen >= 0; freeze/release pairs for the
// same amount conserve Available+Frozen.
type Account struct {
	Key       string          `json:"key"`
	Available decimal.Decimal `json:"available"`
	Frozen    decimal.Decimal `json:"frozen"`
	UpdatedAt int64           `json:"updatedAt"`
}

// NewAccount returns a zero-balance account.
func NewAccount(key string) *Account {
	return &Account{
		Key:       key,
		Available: decimal.Zero,
		Frozen:    decimal.Zero,
	}
}

func (a *Account) CacheKey() string { return a.Key }
func (a *Account) Timestamp() int64 { return a.UpdatedAt }

// Total returns Available+Frozen.
func (a *Account) Total() decimal.Decimal {
	return a.Available.Add(a.Frozen)
}

// Clone returns a copy so callers can snapshot before/after balances.
func (a *Account) Clone() *Account {
	c := *a
	return &c
}

// AccountHistory is the immutable audit record of one balance mutation.
// Written once per mutating operation, never updated.
type AccountHistory struct {
	ID              string          `json:"id"`
	AccountKey      string          `json:"accountKey"`
	OperationID     string          `json:"operationId"`
	OperationType   string          `json:"operationType"`
	AvailableBefore decimal.Decimal `json:"availableBefore"`
	AvailableAfter  decimal.Decimal `json:"availableAfter"`
	FrozenBefore    decimal.Decimal `json:"frozenBefore"`
	FrozenAfter     decimal.Decimal `json:"frozenAfter"`
	UpdatedAt       int64           `json:"updatedAt"`
}

// NewAccountHistory captures the before/after balances of one mutation.
// before is the account state prior to the mutation, after the state once it
// is applied.
func NewAccountHistory(before, after *Account, operationID, operationType string, ts int64) *AccountHistory {
	return &AccountHistory{
		ID:              fmt.Sprintf("%s:%s:%s", operationID, operationType, after.Key),
		AccountKey:      after.Key,
		OperationID:     operationID,
		OperationType:   operationType,
		AvailableBefore: before.Available,
		AvailableAfter:  after.Available,
		FrozenBefore:    before.Frozen,
		FrozenAfter:     after.Frozen,
		UpdatedAt:       ts,
	}
}

func (h *AccountHistory) CacheKey() string { return h.ID }
func (h *AccountHistory) Timestamp() int64 { return h.UpdatedAt }

func (h *AccountHistory) Clone() *AccountHistory {
	c := *h
	return &c
}
