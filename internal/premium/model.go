package premium

import (
	"time"

	"github.com/shopspring/decimal"
)

type SubscriptionStatus string

const (
	SubscriptionActive  SubscriptionStatus = "active"
	SubscriptionExpired SubscriptionStatus = "expired"
)

// Package is immutable reference data. Price is an integer in the smallest
// currency unit the gateway understands (VND has no minor unit).
type Package struct {
	ID           int       `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	Price        int64     `db:"price" json:"price"`
	DurationDays int       `db:"duration_days" json:"duration_days"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// Purchase records one premium buy: which user paid how much for which
// package, and the subscription period it opened. Created only after the
// ledger entry reached COMPLETED.
type Purchase struct {
	ID             int             `db:"id" json:"id"`
	UserID         int             `db:"user_id" json:"user_id"`
	PackageID      int             `db:"package_id" json:"package_id"`
	SubscriptionID int             `db:"subscription_id" json:"subscription_id"`
	Amount         decimal.Decimal `db:"amount" json:"amount"`
	PaymentMethod  string          `db:"payment_method" json:"payment_method"`
	Status         string          `db:"status" json:"status"`
	CreatedAt      time.Time       `db:"created_at" json:"created_at"`
}

type Subscription struct {
	ID        int                `db:"id" json:"id"`
	UserID    int                `db:"user_id" json:"user_id"`
	PackageID int                `db:"package_id" json:"package_id"`
	StartTime time.Time          `db:"start_time" json:"start_time"`
	EndTime   time.Time          `db:"end_time" json:"end_time"`
	Status    SubscriptionStatus `db:"status" json:"status"`
	CreatedAt time.Time          `db:"created_at" json:"created_at"`
	UpdatedAt time.Time          `db:"updated_at" json:"updated_at"`
}
