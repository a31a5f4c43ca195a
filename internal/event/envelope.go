package event

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Family selects the domain processor for an event.
type Family string

const (
	FamilyWithdrawal     Family = "withdrawal"
	FamilyDeposit        Family = "deposit"
	FamilyAccount        Family = "account"
	FamilyAmmPool        Family = "amm_pool"
	FamilyAmmPosition    Family = "amm_position"
	FamilyAmmOrder       Family = "amm_order"
	FamilyTrade          Family = "trade"
	FamilyOffer          Family = "offer"
	FamilyBalancesLock   Family = "balances_lock"
	FamilyMerchantEscrow Family = "merchant_escrow"
)

// Operation is the operation within a family.
type Operation string

const (
	OpCreate       Operation = "CREATE"
	OpReleasing    Operation = "RELEASING"
	OpFailed       Operation = "FAILED"
	OpCancelled    Operation = "CANCELLED"
	OpBalanceReset Operation = "BALANCE_RESET"
	OpUpdate       Operation = "UPDATE"
	OpRelease      Operation = "RELEASE"
	OpMint         Operation = "MINT"
	OpBurn         Operation = "BURN"
)

// Event is the flat envelope published to the sequencer. Producers build an
// owned snapshot via the per-family constructors; once published the event is
// immutable except for ErrorMessage, which the processing side fills in.
//
// Payload fields form a union, each family populates only the fields it
// needs. Timestamp is a logical timestamp assigned by the producer and becomes
// the UpdatedAt of every entity the event touches (last-write-wins ordering).
type Event struct {
	ID        uuid.UUID
	Family    Family
	Operation Operation
	Timestamp int64

	// Account / balance payload
	AccountKey          string
	RecipientAccountKey string

	// Withdrawal / deposit / trade / offer / order identifier
	Identifier string

	Amount decimal.Decimal
	Fee    decimal.Decimal

	// AMM payload
	PoolPair  string
	TickLower int32
	TickUpper int32
	Liquidity decimal.Decimal
	SqrtPrice decimal.Decimal

	// Trade / offer / order payload
	Side            string
	Price           decimal.Decimal
	Quantity        decimal.Decimal
	MakerAccountKey string
	TakerAccountKey string

	// Balance lock / escrow payload
	LockID      string
	AccountKeys []string
	ActionType  string
	ActionID    string
	EscrowID    string

	// Filled in by the dispatcher or a domain processor on failure.
	ErrorMessage string

	// BatchBoundary marks a flush barrier: the event carries no payload and
	// forces every entity cache to flush when it reaches the fan-out stage.
	BatchBoundary bool
}

// EventID returns the dedup key for this event.
func (e *Event) EventID() string {
	return e.ID.String()
}

// Boundary builds a batch-boundary marker event.
func Boundary() Event {
	return Event{ID: uuid.New(), BatchBoundary: true}
}
