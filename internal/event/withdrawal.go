package event

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// NewWithdrawalCreate freezes amount+fee on the source account and opens the
// withdrawal in PROCESSING.
func NewWithdrawalCreate(identifier, accountKey, recipientKey string, amount, fee decimal.Decimal, ts int64) Event {
	return Event{
		ID:                  uuid.New(),
		Family:              FamilyWithdrawal,
		Operation:           OpCreate,
		Timestamp:           ts,
		Identifier:          identifier,
		AccountKey:          accountKey,
		RecipientAccountKey: recipientKey,
		Amount:              amount,
		Fee:                 fee,
	}
}

// NewWithdrawalReleasing settles a PROCESSING withdrawal as COMPLETED.
func NewWithdrawalReleasing(identifier string, ts int64) Event {
	return Event{
		ID:         uuid.New(),
		Family:     FamilyWithdrawal,
		Operation:  OpReleasing,
		Timestamp:  ts,
		Identifier: identifier,
	}
}

// NewWithdrawalFailed marks a withdrawal FAILED with no balance movement
// (settlement failed externally, funds stay frozen for manual resolution).
func NewWithdrawalFailed(identifier string, ts int64) Event {
	return Event{
		ID:         uuid.New(),
		Family:     FamilyWithdrawal,
		Operation:  OpFailed,
		Timestamp:  ts,
		Identifier: identifier,
	}
}

// NewWithdrawalCancelled reverses the frozen amount+fee back to available.
func NewWithdrawalCancelled(identifier string, ts int64) Event {
	return Event{
		ID:         uuid.New(),
		Family:     FamilyWithdrawal,
		Operation:  OpCancelled,
		Timestamp:  ts,
		Identifier: identifier,
	}
}
