package wallet

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func setupLedgerMock(t *testing.T) (*Repository, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	sqlxDB := sqlx.NewDb(db, "sqlmock")
	repo := NewRepository(sqlxDB)

	closer := func() { sqlxDB.Close() }
	return repo, mock, closer
}

func walletRow(id, userID int, balance string) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "user_id", "balance", "currency", "created_at", "updated_at"}).
		AddRow(id, userID, balance, "VND", time.Now(), time.Now())
}

func entryRow(id, walletID int, code string, amount string, status Status) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "wallet_id", "transaction_code", "user_id", "package_id",
		"amount", "balance_before", "balance_after", "status", "description",
		"created_at", "updated_at", "completed_at",
	}).AddRow(id, walletID, code, 42, 3, amount, "0", amount, string(status), "premium purchase", time.Now(), time.Now(), nil)
}

func TestGetOrCreate_WhenNotExists(t *testing.T) {
	repo, mock, close := setupLedgerMock(t)
	defer close()

	ctx := context.Background()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, user_id, balance, currency, created_at, updated_at FROM wallets WHERE user_id = $1")).
		WithArgs(10).
		WillReturnError(sql.ErrNoRows)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO wallets (user_id) VALUES ($1) RETURNING id, user_id, balance, currency, created_at, updated_at")).
		WithArgs(10).
		WillReturnRows(walletRow(5, 10, "0"))

	w, err := repo.GetOrCreate(ctx, 10)
	require.NoError(t, err)
	require.Equal(t, 5, w.ID)
	require.True(t, w.Balance.IsZero())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreatePending_SnapshotsBalance(t *testing.T) {
	repo, mock, close := setupLedgerMock(t)
	defer close()

	ctx := context.Background()
	amount := decimal.NewFromInt(100000)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, user_id, balance, currency, created_at, updated_at FROM wallets WHERE id = $1 FOR UPDATE")).
		WithArgs(7).
		WillReturnRows(walletRow(7, 1, "250000"))

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO wallet_transactions (wallet_id, transaction_code, user_id, package_id, amount, balance_before, balance_after, status, description) VALUES ($1, $2, $3, $4, $5, $6, $7, 'PENDING', $8) RETURNING")).
		WithArgs(7, "12345678", 42, 3, amount, decimal.NewFromInt(250000), decimal.NewFromInt(350000), "premium purchase").
		WillReturnRows(entryRow(101, 7, "12345678", "100000", StatusPending))
	mock.ExpectCommit()

	entry, err := repo.CreatePending(ctx, 7, "12345678", amount, 42, 3, "premium purchase")
	require.NoError(t, err)
	require.Equal(t, StatusPending, entry.Status)
	require.Equal(t, "12345678", entry.TransactionCode)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreatePending_DuplicateCode(t *testing.T) {
	repo, mock, close := setupLedgerMock(t)
	defer close()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FROM wallets WHERE id = $1 FOR UPDATE")).
		WithArgs(7).
		WillReturnRows(walletRow(7, 1, "0"))
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO wallet_transactions")).
		WillReturnError(&pq.Error{Code: "23505"})
	mock.ExpectRollback()

	_, err := repo.CreatePending(context.Background(), 7, "12345678", decimal.NewFromInt(100000), 42, 3, "premium purchase")
	require.ErrorIs(t, err, ErrDuplicateCode)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSettle_Success_CreditsWalletOnce(t *testing.T) {
	repo, mock, close := setupLedgerMock(t)
	defer close()

	amount := decimal.NewFromInt(100000)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FROM wallet_transactions WHERE transaction_code = $1 FOR UPDATE")).
		WithArgs("12345678").
		WillReturnRows(entryRow(101, 7, "12345678", "100000", StatusPending))

	mock.ExpectQuery(regexp.QuoteMeta("FROM wallets WHERE id = $1 FOR UPDATE")).
		WithArgs(7).
		WillReturnRows(walletRow(7, 1, "250000"))

	mock.ExpectExec(regexp.QuoteMeta("UPDATE wallets SET balance = $1, updated_at = NOW() WHERE id = $2")).
		WithArgs(decimal.NewFromInt(350000), 7).
		WillReturnResult(sqlmock.NewResult(0, 1))

	completed := entryRow(101, 7, "12345678", "100000", StatusCompleted)
	mock.ExpectQuery(regexp.QuoteMeta("UPDATE wallet_transactions SET status = 'COMPLETED', balance_before = $1, balance_after = $2, completed_at = NOW(), updated_at = NOW() WHERE id = $3 RETURNING")).
		WithArgs(decimal.NewFromInt(250000), decimal.NewFromInt(350000), 101).
		WillReturnRows(completed)
	mock.ExpectCommit()

	entry, err := repo.Settle(context.Background(), "12345678", amount, true)
	require.NoError(t, err)
	require.Equal(t, StatusCompleted, entry.Status)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSettle_FailureCode_NoLedgerMutation(t *testing.T) {
	repo, mock, close := setupLedgerMock(t)
	defer close()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FROM wallet_transactions WHERE transaction_code = $1 FOR UPDATE")).
		WithArgs("12345678").
		WillReturnRows(entryRow(101, 7, "12345678", "100000", StatusPending))

	// No wallet read, no balance update: only the status changes.
	mock.ExpectQuery(regexp.QuoteMeta("UPDATE wallet_transactions SET status = 'FAILED', updated_at = NOW() WHERE id = $1 RETURNING")).
		WithArgs(101).
		WillReturnRows(entryRow(101, 7, "12345678", "100000", StatusFailed))
	mock.ExpectCommit()

	entry, err := repo.Settle(context.Background(), "12345678", decimal.NewFromInt(100000), false)
	require.NoError(t, err)
	require.Equal(t, StatusFailed, entry.Status)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSettle_AlreadyFinal(t *testing.T) {
	repo, mock, close := setupLedgerMock(t)
	defer close()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FROM wallet_transactions WHERE transaction_code = $1 FOR UPDATE")).
		WithArgs("12345678").
		WillReturnRows(entryRow(101, 7, "12345678", "100000", StatusCompleted))
	mock.ExpectRollback()

	entry, err := repo.Settle(context.Background(), "12345678", decimal.NewFromInt(100000), true)
	require.ErrorIs(t, err, ErrAlreadyFinal)
	require.NotNil(t, entry)
	require.Equal(t, StatusCompleted, entry.Status)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSettle_AmountMismatch(t *testing.T) {
	repo, mock, close := setupLedgerMock(t)
	defer close()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FROM wallet_transactions WHERE transaction_code = $1 FOR UPDATE")).
		WithArgs("12345678").
		WillReturnRows(entryRow(101, 7, "12345678", "100000", StatusPending))
	mock.ExpectRollback()

	_, err := repo.Settle(context.Background(), "12345678", decimal.NewFromInt(99999), true)
	require.ErrorIs(t, err, ErrAmountMismatch)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSettle_UnknownCode(t *testing.T) {
	repo, mock, close := setupLedgerMock(t)
	defer close()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FROM wallet_transactions WHERE transaction_code = $1 FOR UPDATE")).
		WithArgs("00000000").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	_, err := repo.Settle(context.Background(), "00000000", decimal.NewFromInt(100000), true)
	require.ErrorIs(t, err, ErrEntryNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCancelStale(t *testing.T) {
	repo, mock, close := setupLedgerMock(t)
	defer close()

	cutoff := time.Now().Add(-15 * time.Minute)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE wallet_transactions SET status = 'CANCELLED', updated_at = NOW() WHERE status = 'PENDING' AND created_at < $1")).
		WithArgs(cutoff).
		WillReturnResult(sqlmock.NewResult(0, 3))

	n, err := repo.CancelStale(context.Background(), cutoff)
	require.NoError(t, err)
	require.EqualValues(t, 3, n)
	require.NoError(t, mock.ExpectationsWereMet())
}
