package notify

import (
	"context"
	"database/sql"
	"errors"

	"github.com/OG2511/maccabi-stickers-shop/internal/logger"

	"go.uber.org/zap"
)

var ErrNotificationNotFound = errors.New("notification not found")

type Repository interface {
	Create(ctx context.Context, n *Notification) error
	MarkSent(ctx context.Context, id int64) error
	List(ctx context.Context, limit int) ([]Notification, error)
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, n *Notification) error {
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO admin_notifications (order_id, message, sent)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`, n.OrderID, n.Message, n.Sent).Scan(&n.ID, &n.CreatedAt)
	if err != nil {
		logger.FromCtx(ctx).Error("failed to insert notification",
			zap.String("layer", "repository"),
			zap.String("order_id", n.OrderID),
			zap.Error(err),
		)
	}
	return err
}

func (r *repository) MarkSent(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE admin_notifications SET sent = TRUE WHERE id = $1`, id,
	)
	if err != nil {
		return err
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return ErrNotificationNotFound
	}
	return nil
}

func (r *repository) List(ctx context.Context, limit int) ([]Notification, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, order_id, message, sent, created_at
		FROM admin_notifications
		ORDER BY created_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Notification
	for rows.Next() {
		var n Notification
		if err := rows.Scan(&n.ID, &n.OrderID, &n.Message, &n.Sent, &n.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return out, nil
}
