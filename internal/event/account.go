package event

import "github.com/google/uuid"

// NewAccountCreate ensures an account exists with zero balances.
func NewAccountCreate(accountKey string, ts int64) Event {
	return Event{
		ID:         uuid.New(),
		Family:     FamilyAccount,
		Operation:  OpCreate,
		Timestamp:  ts,
		AccountKey: accountKey,
	}
}

// NewAccountBalanceReset replaces an existing account with a fresh
// zero-balance instance. No-op if the account does not exist.
func NewAccountBalanceReset(accountKey string, ts int64) Event {
	return Event{
		ID:         uuid.New(),
		Family:     FamilyAccount,
		Operation:  OpBalanceReset,
		Timestamp:  ts,
		AccountKey: accountKey,
	}
}
