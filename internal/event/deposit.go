package event

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// NewDepositCreate credits amount minus fee to the account, creating the account if
// it does not exist yet. Deposits complete in a single step.
func NewDepositCreate(identifier, accountKey string, amount, fee decimal.Decimal, ts int64) Event {
	return Event{
		ID:         uuid.New(),
		Family:     FamilyDeposit,
		Operation:  OpCreate,
		Timestamp:  ts,
		Identifier: identifier,
		AccountKey: accountKey,
		Amount:     amount,
		Fee:        fee,
	}
}
