package premium

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

var ErrPackageNotFound = errors.New("premium package not found")

const packageColumns = "id, name, price, duration_days, created_at"
const subscriptionColumns = "id, user_id, package_id, start_time, end_time, status, created_at, updated_at"

type Repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) GetPackage(ctx context.Context, id int) (*Package, error) {
	pkg := &Package{}
	err := r.db.GetContext(ctx, pkg, `SELECT `+packageColumns+` FROM premium_packages WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPackageNotFound
	}
	if err != nil {
		return nil, err
	}
	return pkg, nil
}

func (r *Repository) ListPackages(ctx context.Context) ([]Package, error) {
	pkgs := []Package{}
	err := r.db.SelectContext(ctx, &pkgs, `SELECT `+packageColumns+` FROM premium_packages ORDER BY price ASC`)
	if err != nil {
		return nil, err
	}
	return pkgs, nil
}

// Activate opens a fresh subscription period for the user and records the
// purchase against it, in one transaction. A new period is always inserted;
// an existing active subscription is neither merged nor extended.
func (r *Repository) Activate(ctx context.Context, userID, packageID int, amount decimal.Decimal, paymentMethod string) (*Subscription, error) {
	pkg, err := r.GetPackage(ctx, packageID)
	if err != nil {
		return nil, err
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	now := time.Now()
	sub := &Subscription{}
	err = tx.QueryRowxContext(ctx,
		`INSERT INTO user_subscriptions (user_id, package_id, start_time, end_time, status) VALUES ($1, $2, $3, $4, 'active') RETURNING `+subscriptionColumns,
		userID, packageID, now, now.AddDate(0, 0, pkg.DurationDays),
	).StructScan(sub)
	if err != nil {
		return nil, err
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO transactions (user_id, package_id, subscription_id, amount, payment_method, status) VALUES ($1, $2, $3, $4, $5, 'SUCCESS')`,
		userID, packageID, sub.ID, amount, paymentMethod,
	)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return sub, nil
}

func (r *Repository) ListSubscriptions(ctx context.Context, userID int) ([]Subscription, error) {
	subs := []Subscription{}
	err := r.db.SelectContext(ctx, &subs,
		`SELECT `+subscriptionColumns+` FROM user_subscriptions WHERE user_id = $1 ORDER BY created_at DESC`,
		userID)
	if err != nil {
		return nil, err
	}
	return subs, nil
}

// ExpireSubscriptions marks active subscriptions past their end time as
// expired. Driven by the daily cron job.
func (r *Repository) ExpireSubscriptions(ctx context.Context) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE user_subscriptions SET status = 'expired', updated_at = NOW() WHERE status = 'active' AND end_time < NOW()`)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
