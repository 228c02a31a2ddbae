package wallet

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

type Store interface {
	GetOrCreate(ctx context.Context, userID int) (*Wallet, error)
	CreatePending(ctx context.Context, walletID int, code string, amount decimal.Decimal, userID, packageID int, description string) (*LedgerEntry, error)
	GetByCode(ctx context.Context, code string) (*LedgerEntry, error)
	Settle(ctx context.Context, code string, gatewayAmount decimal.Decimal, success bool) (*LedgerEntry, error)
	CancelStale(ctx context.Context, cutoff time.Time) (int64, error)
	ListEntries(ctx context.Context, walletID, limit, offset int) ([]LedgerEntry, error)
}
