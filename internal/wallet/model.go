package wallet

import (
	"time"

	"github.com/shopspring/decimal"
)

// Status is the ledger entry lifecycle. PENDING transitions exactly once to
// COMPLETED or FAILED via settlement, or to CANCELLED by the stale-link sweep.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusCompleted Status = "COMPLETED"
	StatusFailed    Status = "FAILED"
	StatusCancelled Status = "CANCELLED"
)

// Wallet holds a user's balance. The balance is authoritative only as the
// accumulated effect of COMPLETED ledger entries and is mutated exclusively
// inside Repository.Settle.
type Wallet struct {
	ID        int             `db:"id" json:"id"`
	UserID    int             `db:"user_id" json:"user_id"`
	Balance   decimal.Decimal `db:"balance" json:"balance"`
	Currency  string          `db:"currency" json:"currency"`
	CreatedAt time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt time.Time       `db:"updated_at" json:"updated_at"`
}

// LedgerEntry is one wallet transaction. TransactionCode is the merchant
// reference sent to the gateway and is how the asynchronous callback is
// correlated back to this row. UserID and PackageID record the paying user
// and purchased package so settlement can grant entitlement without
// trusting gateway-supplied identity.
type LedgerEntry struct {
	ID              int             `db:"id" json:"id"`
	WalletID        int             `db:"wallet_id" json:"wallet_id"`
	TransactionCode string          `db:"transaction_code" json:"transaction_code"`
	UserID          int             `db:"user_id" json:"user_id"`
	PackageID       int             `db:"package_id" json:"package_id"`
	Amount          decimal.Decimal `db:"amount" json:"amount"`
	BalanceBefore   decimal.Decimal `db:"balance_before" json:"balance_before"`
	BalanceAfter    decimal.Decimal `db:"balance_after" json:"balance_after"`
	Status          Status          `db:"status" json:"status"`
	Description     string          `db:"description" json:"description"`
	CreatedAt       time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time       `db:"updated_at" json:"updated_at"`
	CompletedAt     *time.Time      `db:"completed_at" json:"completed_at,omitempty"`
}
