package event

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// NewBalancesLockCreate freezes the full available balance of every listed
// account under one lock.
func NewBalancesLockCreate(lockID string, accountKeys []string, actionType, actionID string, ts int64) Event {
	keys := make([]string, len(accountKeys))
	copy(keys, accountKeys)
	return Event{
		ID:          uuid.New(),
		Family:      FamilyBalancesLock,
		Operation:   OpCreate,
		Timestamp:   ts,
		LockID:      lockID,
		AccountKeys: keys,
		ActionType:  actionType,
		ActionID:    actionID,
	}
}

// NewBalancesLockRelease releases a previously created lock.
func NewBalancesLockRelease(lockID string, ts int64) Event {
	return Event{
		ID:        uuid.New(),
		Family:    FamilyBalancesLock,
		Operation: OpRelease,
		Timestamp: ts,
		LockID:    lockID,
	}
}

// NewMerchantEscrowMint freezes amount on the merchant account and opens the
// escrow.
func NewMerchantEscrowMint(escrowID, accountKey string, amount decimal.Decimal, ts int64) Event {
	return Event{
		ID:         uuid.New(),
		Family:     FamilyMerchantEscrow,
		Operation:  OpMint,
		Timestamp:  ts,
		EscrowID:   escrowID,
		AccountKey: accountKey,
		Amount:     amount,
	}
}

// NewMerchantEscrowBurn destroys the escrowed amount and closes the escrow.
func NewMerchantEscrowBurn(escrowID string, ts int64) Event {
	return Event{
		ID:        uuid.New(),
		Family:    FamilyMerchantEscrow,
		Operation: OpBurn,
		Timestamp: ts,
		EscrowID:  escrowID,
	}
}
