package notify

import (
	"context"

	"github.com/jmoiron/sqlx"
)

type Store interface {
	Insert(ctx context.Context, userID int, kind, message string) error
	ListByUser(ctx context.Context, userID, limit, offset int) ([]Notification, error)
}

type Repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Insert(ctx context.Context, userID int, kind, message string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO notifications (user_id, kind, message) VALUES ($1, $2, $3)`,
		userID, kind, message)
	return err
}

func (r *Repository) ListByUser(ctx context.Context, userID, limit, offset int) ([]Notification, error) {
	if limit <= 0 {
		limit = 50
	}

	items := []Notification{}
	err := r.db.SelectContext(ctx, &items,
		`SELECT id, user_id, kind, message, is_read, created_at FROM notifications WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
		userID, limit, offset)
	if err != nil {
		return nil, err
	}
	return items, nil
}
