package wallet

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

var (
	ErrEntryNotFound  = errors.New("ledger entry not found")
	ErrAlreadyFinal   = errors.New("ledger entry already settled")
	ErrAmountMismatch = errors.New("callback amount does not match ledger entry")
	ErrDuplicateCode  = errors.New("transaction code already exists")
)

const uniqueViolation = "23505"

const walletColumns = "id, user_id, balance, currency, created_at, updated_at"
const entryColumns = "id, wallet_id, transaction_code, user_id, package_id, amount, balance_before, balance_after, status, description, created_at, updated_at, completed_at"

type Repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) GetOrCreate(ctx context.Context, userID int) (*Wallet, error) {
	w := &Wallet{}
	err := r.db.GetContext(ctx, w, `SELECT `+walletColumns+` FROM wallets WHERE user_id = $1`, userID)
	if err == nil {
		return w, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	err = r.db.QueryRowxContext(ctx,
		`INSERT INTO wallets (user_id) VALUES ($1) RETURNING `+walletColumns,
		userID,
	).StructScan(w)
	if err != nil {
		return nil, err
	}

	return w, nil
}

// CreatePending records the PENDING ledger entry issued together with a
// payment link. The wallet row is locked so the balance snapshot is
// consistent with concurrent settlements.
func (r *Repository) CreatePending(ctx context.Context, walletID int, code string, amount decimal.Decimal, userID, packageID int, description string) (*LedgerEntry, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var w Wallet
	err = tx.QueryRowxContext(ctx,
		`SELECT `+walletColumns+` FROM wallets WHERE id = $1 FOR UPDATE`,
		walletID,
	).StructScan(&w)
	if err != nil {
		return nil, err
	}

	entry := &LedgerEntry{}
	err = tx.QueryRowxContext(ctx,
		`INSERT INTO wallet_transactions (wallet_id, transaction_code, user_id, package_id, amount, balance_before, balance_after, status, description) VALUES ($1, $2, $3, $4, $5, $6, $7, 'PENDING', $8) RETURNING `+entryColumns,
		walletID, code, userID, packageID, amount, w.Balance, w.Balance.Add(amount), description,
	).StructScan(entry)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolation {
			return nil, ErrDuplicateCode
		}
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return entry, nil
}

func (r *Repository) GetByCode(ctx context.Context, code string) (*LedgerEntry, error) {
	entry := &LedgerEntry{}
	err := r.db.GetContext(ctx, entry,
		`SELECT `+entryColumns+` FROM wallet_transactions WHERE transaction_code = $1`, code)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrEntryNotFound
	}
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// Settle finalizes a PENDING entry exactly once. The row lock on the entry
// is the mutual-exclusion point: a second delivery for the same code blocks
// here until the first commits, then observes the non-PENDING status and
// gets ErrAlreadyFinal. The balance is mutated only on the success path,
// inside the same database transaction as the status update.
func (r *Repository) Settle(ctx context.Context, code string, gatewayAmount decimal.Decimal, success bool) (*LedgerEntry, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	entry := &LedgerEntry{}
	err = tx.QueryRowxContext(ctx,
		`SELECT `+entryColumns+` FROM wallet_transactions WHERE transaction_code = $1 FOR UPDATE`,
		code,
	).StructScan(entry)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrEntryNotFound
	}
	if err != nil {
		return nil, err
	}

	if entry.Status != StatusPending {
		return entry, ErrAlreadyFinal
	}

	if !entry.Amount.Equal(gatewayAmount) {
		return nil, ErrAmountMismatch
	}

	if success {
		var w Wallet
		err = tx.QueryRowxContext(ctx,
			`SELECT `+walletColumns+` FROM wallets WHERE id = $1 FOR UPDATE`,
			entry.WalletID,
		).StructScan(&w)
		if err != nil {
			return nil, err
		}

		newBalance := w.Balance.Add(entry.Amount)
		_, err = tx.ExecContext(ctx,
			`UPDATE wallets SET balance = $1, updated_at = NOW() WHERE id = $2`,
			newBalance, w.ID,
		)
		if err != nil {
			return nil, err
		}

		err = tx.QueryRowxContext(ctx,
			`UPDATE wallet_transactions SET status = 'COMPLETED', balance_before = $1, balance_after = $2, completed_at = NOW(), updated_at = NOW() WHERE id = $3 RETURNING `+entryColumns,
			w.Balance, newBalance, entry.ID,
		).StructScan(entry)
		if err != nil {
			return nil, err
		}
	} else {
		err = tx.QueryRowxContext(ctx,
			`UPDATE wallet_transactions SET status = 'FAILED', updated_at = NOW() WHERE id = $1 RETURNING `+entryColumns,
			entry.ID,
		).StructScan(entry)
		if err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return entry, nil
}

// CancelStale sweeps PENDING entries created before cutoff to CANCELLED so
// an expired payment link can no longer be settled.
func (r *Repository) CancelStale(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE wallet_transactions SET status = 'CANCELLED', updated_at = NOW() WHERE status = 'PENDING' AND created_at < $1`,
		cutoff,
	)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *Repository) ListEntries(ctx context.Context, walletID, limit, offset int) ([]LedgerEntry, error) {
	if limit <= 0 {
		limit = 50
	}

	entries := []LedgerEntry{}
	err := r.db.SelectContext(ctx, &entries,
		`SELECT `+entryColumns+` FROM wallet_transactions WHERE wallet_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
		walletID, limit, offset)
	if err != nil {
		return nil, err
	}
	return entries, nil
}
