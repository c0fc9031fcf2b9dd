package model

import (
	"strings"
	"time"

	"wellness/shared/model"
)

const (
	TableName  = "token_balances"
	EntityName = "token_balance"

	FieldID              = "id"
	FieldCustomerEmail   = "customer_email"
	FieldTokensRemaining = "tokens_remaining"
	FieldExpiresAt       = "expires_at"
	FieldNotes           = "notes"
)

const (
	AllocationTableName  = "token_allocations"
	AllocationEntityName = "token_allocation"

	FieldAllocationID             = "id"
	FieldAllocationBookingID      = "booking_id"
	FieldAllocationBalanceID      = "balance_id"
	FieldAllocationAmount         = "amount"
	FieldAllocationRefundedAmount = "refunded_amount"
)

// CatchAllNote marks the non-expiring balance that absorbs refunds with no recorded allocation.
const CatchAllNote = "refunded session tokens"

type TokenBalance struct {
	ID              string     `db:"id"`
	CustomerEmail   string     `db:"customer_email"`
	TokensRemaining int        `db:"tokens_remaining"`
	ExpiresAt       *time.Time `db:"expires_at"`
	Notes           string     `db:"notes"`
	model.Metadata
}

// UsableAt reports whether the balance can supply tokens at asOf.
func (b TokenBalance) UsableAt(asOf time.Time) bool {
	return b.TokensRemaining > 0 && (b.ExpiresAt == nil || b.ExpiresAt.After(asOf))
}

// TokenAllocation records how many tokens a balance gave to a booking, and how many of those
// have since gone back.
type TokenAllocation struct {
	ID             string `db:"id"`
	BookingID      string `db:"booking_id"`
	BalanceID      string `db:"balance_id"`
	Amount         int    `db:"amount"`
	RefundedAmount int    `db:"refunded_amount"`
	model.Metadata
}

func (a TokenAllocation) Outstanding() int {
	return max(0, a.Amount-a.RefundedAmount)
}

type PlanEntry struct {
	BalanceID string
	Amount    int
	ExpiresAt *time.Time
}

// AllocationPlan is a proposal to draw tokens from specific balances. It changes nothing until
// committed.
type AllocationPlan struct {
	Email   string
	AsOf    time.Time
	Entries []PlanEntry
}

func (p AllocationPlan) Total() int {
	total := 0
	for _, e := range p.Entries {
		total += e.Amount
	}

	return total
}

// NormalizeEmail is the identity used to match balances to customers.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
