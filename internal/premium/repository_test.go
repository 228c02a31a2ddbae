package premium

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func setupPremiumMock(t *testing.T) (*Repository, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	sqlxDB := sqlx.NewDb(db, "sqlmock")
	repo := NewRepository(sqlxDB)

	closer := func() { sqlxDB.Close() }
	return repo, mock, closer
}

func packageRow(id int, name string, price int64, days int) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "name", "price", "duration_days", "created_at"}).
		AddRow(id, name, price, days, time.Now())
}

func TestGetPackage_NotFound(t *testing.T) {
	repo, mock, close := setupPremiumMock(t)
	defer close()

	mock.ExpectQuery(regexp.QuoteMeta("FROM premium_packages WHERE id = $1")).
		WithArgs(99).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetPackage(context.Background(), 99)
	require.ErrorIs(t, err, ErrPackageNotFound)
}

func TestActivate_InsertsSubscriptionAndPurchase(t *testing.T) {
	repo, mock, close := setupPremiumMock(t)
	defer close()

	mock.ExpectQuery(regexp.QuoteMeta("FROM premium_packages WHERE id = $1")).
		WithArgs(3).
		WillReturnRows(packageRow(3, "Premium 1 Month", 100000, 30))

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO user_subscriptions (user_id, package_id, start_time, end_time, status) VALUES ($1, $2, $3, $4, 'active') RETURNING")).
		WithArgs(42, 3, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "package_id", "start_time", "end_time", "status", "created_at", "updated_at"}).
			AddRow(11, 42, 3, time.Now(), time.Now().AddDate(0, 0, 30), "active", time.Now(), time.Now()))

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO transactions (user_id, package_id, subscription_id, amount, payment_method, status) VALUES ($1, $2, $3, $4, $5, 'SUCCESS')")).
		WithArgs(42, 3, 11, decimal.NewFromInt(100000), "VNPAY").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	sub, err := repo.Activate(context.Background(), 42, 3, decimal.NewFromInt(100000), "VNPAY")
	require.NoError(t, err)
	require.Equal(t, 11, sub.ID)
	require.Equal(t, SubscriptionActive, sub.Status)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestExpireSubscriptions(t *testing.T) {
	repo, mock, close := setupPremiumMock(t)
	defer close()

	mock.ExpectExec(regexp.QuoteMeta("UPDATE user_subscriptions SET status = 'expired', updated_at = NOW() WHERE status = 'active' AND end_time < NOW()")).
		WillReturnResult(sqlmock.NewResult(0, 2))

	n, err := repo.ExpireSubscriptions(context.Background())
	require.NoError(t, err)
	require.EqualValues(t, 2, n)
}
