package domain

import "github.com/shopspring/decimal"

// Status values shared by withdrawals and deposits. COMPLETED, FAILED and
// CANCELLED are terminal; each identifier reaches exactly one of them.
const (
	StatusProcessing = "PROCESSING"
	StatusCompleted  = "COMPLETED"
	StatusFailed     = "FAILED"
	StatusCancelled  = "CANCELLED"
)

// CoinWithdrawal tracks one withdrawal identifier through its state machine:
// PROCESSING → COMPLETED | CANCELLED, and PROCESSING → FAILED for settlements
// that fail externally without a balance reversal.
type CoinWithdrawal struct {
	Identifier          string          `json:"identifier"`
	AccountKey          string          `json:"accountKey"`
	RecipientAccountKey string          `json:"recipientAccountKey,omitempty"`
	Amount              decimal.Decimal `json:"amount"`
	Fee                 decimal.Decimal `json:"fee"`
	Status              string          `json:"status"`
	StatusExplanation   string          `json:"statusExplanation,omitempty"`
	UpdatedAt           int64           `json:"updatedAt"`
}

func NewCoinWithdrawal(identifier string) *CoinWithdrawal {
	return &CoinWithdrawal{
		Identifier: identifier,
		Amount:     decimal.Zero,
		Fee:        decimal.Zero,
	}
}

func (w *CoinWithdrawal) CacheKey() string { return w.Identifier }
func (w *CoinWithdrawal) Timestamp() int64 { return w.UpdatedAt }

func (w *CoinWithdrawal) Clone() *CoinWithdrawal {
	c := *w
	return &c
}

// TotalHold is the amount frozen for this withdrawal (amount+fee).
func (w *CoinWithdrawal) TotalHold() decimal.Decimal {
	return w.Amount.Add(w.Fee)
}

// IsTerminal reports whether no further transition is defined.
func (w *CoinWithdrawal) IsTerminal() bool {
	return w.Status == StatusCompleted || w.Status == StatusFailed || w.Status == StatusCancelled
}
