package domain

import "github.com/shopspring/decimal"

// Balance lock statuses.
const (
	LockStatusLocked   = "LOCKED"
	LockStatusReleased = "RELEASED"
)

// BalanceLock freezes the available balance of a set of accounts under one
// lock identifier, tagged with the action that required it. LockedAmounts
// records per account exactly how much the lock froze, so release reverses
// that and nothing else.
type BalanceLock struct {
	LockID        string                     `json:"lockId"`
	AccountKeys   []string                   `json:"accountKeys"`
	LockedAmounts map[string]decimal.Decimal `json:"lockedAmounts,omitempty"`
	Status        string                     `json:"status"`
	ActionType    string                     `json:"actionType"`
	ActionID      string                     `json:"actionId"`
	UpdatedAt     int64                      `json:"updatedAt"`
}

func NewBalanceLock(lockID string) *BalanceLock {
	return &BalanceLock{LockID: lockID}
}

func (l *BalanceLock) CacheKey() string { return l.LockID }
func (l *BalanceLock) Timestamp() int64 { return l.UpdatedAt }

func (l *BalanceLock) Clone() *BalanceLock {
	c := *l
	c.AccountKeys = make([]string, len(l.AccountKeys))
	copy(c.AccountKeys, l.AccountKeys)
	if l.LockedAmounts != nil {
		c.LockedAmounts = make(map[string]decimal.Decimal, len(l.LockedAmounts))
		for k, v := range l.LockedAmounts {
			c.LockedAmounts[k] = v
		}
	}
	return &c
}

// Covers reports whether the lock references accountKey.
func (l *BalanceLock) Covers(accountKey string) bool {
	for _, k := range l.AccountKeys {
		if k == accountKey {
			return true
		}
	}
	return false
}

// Merchant escrow statuses.
const (
	EscrowStatusMinted = "MINTED"
	EscrowStatusBurned = "BURNED"
)

// MerchantEscrow holds an amount frozen on a merchant account between MINT
// and BURN.
type MerchantEscrow struct {
	EscrowID          string          `json:"escrowId"`
	AccountKey        string          `json:"accountKey"`
	Amount            decimal.Decimal `json:"amount"`
	Status            string          `json:"status"`
	StatusExplanation string          `json:"statusExplanation,omitempty"`
	UpdatedAt         int64           `json:"updatedAt"`
}

func NewMerchantEscrow(escrowID string) *MerchantEscrow {
	return &MerchantEscrow{
		EscrowID: escrowID,
		Amount:   decimal.Zero,
	}
}

func (e *MerchantEscrow) CacheKey() string { return e.EscrowID }
func (e *MerchantEscrow) Timestamp() int64 { return e.UpdatedAt }

func (e *MerchantEscrow) Clone() *MerchantEscrow {
	c := *e
	return &c
}
