package domain

import "github.com/shopspring/decimal"

// CoinDeposit mirrors CoinWithdrawal for the inbound direction. Deposits
// settle in one step, so CREATE lands directly in a terminal status.
type CoinDeposit struct {
	Identifier        string          `json:"identifier"`
	AccountKey        string          `json:"accountKey"`
	Amount            decimal.Decimal `json:"amount"`
	Fee               decimal.Decimal `json:"fee"`
	Status            string          `json:"status"`
	StatusExplanation string          `json:"statusExplanation,omitempty"`
	UpdatedAt         int64           `json:"updatedAt"`
}

func NewCoinDeposit(identifier string) *CoinDeposit {
	return &CoinDeposit{
		Identifier: identifier,
		Amount:     decimal.Zero,
		Fee:        decimal.Zero,
	}
}

func (d *CoinDeposit) CacheKey() string { return d.Identifier }
func (d *CoinDeposit) Timestamp() int64 { return d.UpdatedAt }

func (d *CoinDeposit) Clone() *CoinDeposit {
	c := *d
	return &c
}

// NetAmount is what actually lands on the account (amount minus fee).
func (d *CoinDeposit) NetAmount() decimal.Decimal {
	return d.Amount.Sub(d.Fee)
}
