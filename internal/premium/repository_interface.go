package premium

import (
	"context"

	"github.com/shopspring/decimal"
)

type Catalog interface {
	GetPackage(ctx context.Context, id int) (*Package, error)
	ListPackages(ctx context.Context) ([]Package, error)
}

// Activator grants entitlement after a completed settlement. The settlement
// engine guarantees at most one call per completed transaction.
type Activator interface {
	Activate(ctx context.Context, userID, packageID int, amount decimal.Decimal, paymentMethod string) (*Subscription, error)
}
