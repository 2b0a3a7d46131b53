package order

import (
	"context"
	"database/sql"
	"errors"

	"github.com/OG2511/maccabi-stickers-shop/internal/logger"

	"github.com/lib/pq"
	"go.uber.org/zap"
)

type Repository interface {
	CreateOrderTx(ctx context.Context, o *Order) error
	GetOrder(ctx context.Context, id string) (*Order, error)
	GetStatus(ctx context.Context, id string) (Status, error)
	List(ctx context.Context, status *Status) ([]Order, error)
	UpdateStatusFrom(ctx context.Context, id string, from, to Status) error
	ConfirmOrderTx(ctx context.Context, id string) error
	UpdateOrderTx(ctx context.Context, o *Order) error
	Delete(ctx context.Context, id string) error
	BulkDelete(ctx context.Context, ids []string) (int64, error)
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

// CreateOrderTx inserts the order header and its frozen lines in one
// transaction, so a failed line insert never leaves an orphan order.
func (r *repository) CreateOrderTx(ctx context.Context, o *Order) error {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "CreateOrderTx"),
	)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		log.Error("failed to begin transaction", zap.Error(err))
		return err
	}

	committed := false
	defer func() {
		if !committed {
			if rbErr := tx.Rollback(); rbErr != nil {
				log.Error("failed to rollback transaction", zap.Error(rbErr))
			}
		}
	}()

	err = tx.QueryRowContext(ctx, `
		INSERT INTO orders (
			customer_name, phone, delivery_option, payment_method,
			city, street, house_number, zip_code,
			total_price, status
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
		RETURNING id, created_at, updated_at
	`,
		o.CustomerName,
		o.Phone,
		o.DeliveryOption,
		o.PaymentMethod,
		o.City,
		o.Street,
		o.HouseNumber,
		o.ZipCode,
		o.TotalPrice,
		o.Status,
	).Scan(&o.ID, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		log.Error("failed to insert order", zap.Error(err))
		return err
	}

	for i := range o.Items {
		item := &o.Items[i]
		err = tx.QueryRowContext(ctx, `
			INSERT INTO order_items (order_id, product_id, quantity, price_per_item)
			VALUES ($1,$2,$3,$4)
			RETURNING id
		`,
			o.ID,
			item.ProductID,
			item.Quantity,
			item.PricePerItem,
		).Scan(&item.ID)
		if err != nil {
			log.Error("failed to insert order item",
				zap.String("product_id", item.ProductID),
				zap.Error(err),
			)
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		log.Error("failed to commit transaction", zap.Error(err))
		return err
	}

	committed = true
	log.Info("order created", zap.String("order_id", o.ID))
	return nil
}

func (r *repository) GetOrder(ctx context.Context, id string) (*Order, error) {
	var o Order
	err := r.db.QueryRowContext(ctx, `
		SELECT
			id, customer_name, phone, delivery_option, payment_method,
			city, street, house_number, zip_code,
			total_price, status, created_at, updated_at
		FROM orders
		WHERE id = $1
	`, id).Scan(
		&o.ID,
		&o.CustomerName,
		&o.Phone,
		&o.DeliveryOption,
		&o.PaymentMethod,
		&o.City,
		&o.Street,
		&o.HouseNumber,
		&o.ZipCode,
		&o.TotalPrice,
		&o.Status,
		&o.CreatedAt,
		&o.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT oi.id, oi.product_id, COALESCE(p.name, ''), oi.quantity, oi.price_per_item
		FROM order_items oi
		LEFT JOIN products p ON p.id = oi.product_id
		WHERE oi.order_id = $1
		ORDER BY oi.id
	`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var item Item
		if err := rows.Scan(
			&item.ID,
			&item.ProductID,
			&item.ProductName,
			&item.Quantity,
			&item.PricePerItem,
		); err != nil {
			return nil, err
		}
		o.Items = append(o.Items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &o, nil
}

func (r *repository) GetStatus(ctx context.Context, id string) (Status, error) {
	var s Status
	err := r.db.QueryRowContext(ctx,
		`SELECT status FROM orders WHERE id = $1`, id,
	).Scan(&s)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrOrderNotFound
	}
	if err != nil {
		return "", err
	}
	return s, nil
}

func (r *repository) List(ctx context.Context, status *Status) ([]Order, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "List"),
	)

	query := `
		SELECT
			id, customer_name, phone, delivery_option, payment_method,
			city, street, house_number, zip_code,
			total_price, status, created_at, updated_at
		FROM orders
	`
	args := []any{}
	if status != nil {
		query += " WHERE status = $1"
		args = append(args, *status)
	}
	query += " ORDER BY created_at DESC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to query orders", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var orders []Order
	for rows.Next() {
		var o Order
		if err := rows.Scan(
			&o.ID,
			&o.CustomerName,
			&o.Phone,
			&o.DeliveryOption,
			&o.PaymentMethod,
			&o.City,
			&o.Street,
			&o.HouseNumber,
			&o.ZipCode,
			&o.TotalPrice,
			&o.Status,
			&o.CreatedAt,
			&o.UpdatedAt,
		); err != nil {
			log.Error("failed to scan order row", zap.Error(err))
			return nil, err
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return orders, nil
}

// UpdateStatusFrom flips an order's status only when it currently has
// the expected one.
func (r *repository) UpdateStatusFrom(ctx context.Context, id string, from, to Status) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE orders
		SET status = $1, updated_at = NOW()
		WHERE id = $2 AND status = $3
	`, to, id, from)
	if err != nil {
		return err
	}

	affected, _ := res.RowsAffected()
	if affected == 0 {
		// Distinguish a missing order from a guard failure.
		if _, err := r.GetStatus(ctx, id); err != nil {
			return err
		}
		return ErrInvalidTransition
	}
	return nil
}

// ConfirmOrderTx validates every line against live stock under row
// locks, then debits all lines and marks the order confirmed. Either
// every line is debited or none is. On a shortfall it returns a
// *StockConflictError listing all failing lines and the order stays
// pending.
func (r *repository) ConfirmOrderTx(ctx context.Context, id string) error {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "ConfirmOrderTx"),
		zap.String("order_id", id),
	)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		log.Error("failed to begin transaction", zap.Error(err))
		return err
	}

	committed := false
	defer func() {
		if !committed {
			if rbErr := tx.Rollback(); rbErr != nil {
				log.Error("failed to rollback transaction", zap.Error(rbErr))
			}
		}
	}()

	var status Status
	err = tx.QueryRowContext(ctx,
		`SELECT status FROM orders WHERE id = $1 FOR UPDATE`, id,
	).Scan(&status)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrOrderNotFound
	}
	if err != nil {
		return err
	}

	switch status {
	case StatusPending:
	case StatusConfirmed:
		return ErrAlreadyConfirmed
	default:
		return ErrInvalidTransition
	}

	// Lock every product row on the order, then compare quantities.
	rows, err := tx.QueryContext(ctx, `
		SELECT oi.product_id, oi.quantity, p.name, p.stock
		FROM order_items oi
		JOIN products p ON p.id = oi.product_id
		WHERE oi.order_id = $1
		FOR UPDATE OF p
	`, id)
	if err != nil {
		return err
	}

	type line struct {
		productID string
		quantity  int
	}

	var (
		lines      []line
		shortfalls []Shortfall
	)
	for rows.Next() {
		var (
			l     line
			name  string
			stock int
		)
		if err := rows.Scan(&l.productID, &l.quantity, &name, &stock); err != nil {
			rows.Close()
			return err
		}
		if stock < l.quantity {
			shortfalls = append(shortfalls, Shortfall{
				ProductID: l.productID,
				Name:      name,
				Requested: l.quantity,
				Available: stock,
			})
		}
		lines = append(lines, l)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	if len(lines) == 0 {
		return ErrEmptyOrder
	}
	if len(shortfalls) > 0 {
		log.Warn("stock conflict on confirm",
			zap.Int("shortfall_count", len(shortfalls)),
		)
		return &StockConflictError{Shortfalls: shortfalls}
	}

	for _, l := range lines {
		res, err := tx.ExecContext(ctx, `
			UPDATE products
			SET stock = stock - $1
			WHERE id = $2 AND stock >= $1
		`, l.quantity, l.productID)
		if err != nil {
			return err
		}
		affected, _ := res.RowsAffected()
		if affected == 0 {
			// Cannot happen while the row lock holds; bail out anyway.
			return &StockConflictError{Shortfalls: []Shortfall{{
				ProductID: l.productID,
				Requested: l.quantity,
			}}}
		}
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE orders
		SET status = $1, updated_at = NOW()
		WHERE id = $2
	`, StatusConfirmed, id)
	if err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		log.Error("failed to commit transaction", zap.Error(err))
		return err
	}

	committed = true
	log.Info("order confirmed, stock debited", zap.Int("line_count", len(lines)))
	return nil
}

// UpdateOrderTx rewrites the order header and replaces its lines.
// Admin edits only; stock is untouched.
func (r *repository) UpdateOrderTx(ctx context.Context, o *Order) error {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "UpdateOrderTx"),
		zap.String("order_id", o.ID),
	)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	committed := false
	defer func() {
		if !committed {
			if rbErr := tx.Rollback(); rbErr != nil {
				log.Error("failed to rollback transaction", zap.Error(rbErr))
			}
		}
	}()

	res, err := tx.ExecContext(ctx, `
		UPDATE orders
		SET customer_name = $1, phone = $2,
			delivery_option = $3, payment_method = $4,
			city = $5, street = $6, house_number = $7, zip_code = $8,
			total_price = $9, updated_at = NOW()
		WHERE id = $10
	`,
		o.CustomerName,
		o.Phone,
		o.DeliveryOption,
		o.PaymentMethod,
		o.City,
		o.Street,
		o.HouseNumber,
		o.ZipCode,
		o.TotalPrice,
		o.ID,
	)
	if err != nil {
		return err
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return ErrOrderNotFound
	}

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM order_items WHERE order_id = $1`, o.ID,
	); err != nil {
		return err
	}

	for i := range o.Items {
		item := &o.Items[i]
		err = tx.QueryRowContext(ctx, `
			INSERT INTO order_items (order_id, product_id, quantity, price_per_item)
			VALUES ($1,$2,$3,$4)
			RETURNING id
		`,
			o.ID,
			item.ProductID,
			item.Quantity,
			item.PricePerItem,
		).Scan(&item.ID)
		if err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	committed = true
	return nil
}

func (r *repository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM orders WHERE id = $1`, id)
	if err != nil {
		return err
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return ErrOrderNotFound
	}
	return nil
}

func (r *repository) BulkDelete(ctx context.Context, ids []string) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM orders WHERE id = ANY($1)`, pq.Array(ids),
	)
	if err != nil {
		return 0, err
	}
	affected, _ := res.RowsAffected()
	return affected, nil
}
