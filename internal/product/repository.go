package product

import (
	"context"
	"database/sql"

	"github.com/OG2511/maccabi-stickers-shop/internal/logger"

	"github.com/lib/pq"
	"go.uber.org/zap"
)

type Repository interface {
	GetAll(ctx context.Context, collection *string) ([]Product, error)
	GetByID(ctx context.Context, id string) (*Product, error)
	GetByIDs(ctx context.Context, ids []string) ([]Product, error)
	Create(ctx context.Context, params CreateParams) (*Product, error)
	Update(ctx context.Context, params UpdateParams) (*Product, error)
	Delete(ctx context.Context, id string) error
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

const productColumns = `id, name, price, stock, collection, image_url, created_at`

func (r *repository) GetAll(ctx context.Context, collection *string) ([]Product, error) {
	query := `
	SELECT ` + productColumns + `
	FROM products
	`
	args := []any{}
	if collection != nil && *collection != "" {
		query += ` WHERE collection = $1`
		args = append(args, *collection)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []Product
	for rows.Next() {
		var p Product
		if err := rows.Scan(
			&p.ID,
			&p.Name,
			&p.Price,
			&p.Stock,
			&p.Collection,
			&p.ImageURL,
			&p.CreatedAt,
		); err != nil {
			return nil, err
		}
		products = append(products, p)
	}

	return products, rows.Err()
}

func (r *repository) GetByID(ctx context.Context, id string) (*Product, error) {
	query := `
	SELECT ` + productColumns + `
	FROM products
	WHERE id = $1
	`

	var p Product
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&p.ID,
		&p.Name,
		&p.Price,
		&p.Stock,
		&p.Collection,
		&p.ImageURL,
		&p.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &p, nil
}

func (r *repository) GetByIDs(ctx context.Context, ids []string) ([]Product, error) {
	query := `
	SELECT ` + productColumns + `
	FROM products
	WHERE id = ANY($1)
	`

	rows, err := r.db.QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	products := make([]Product, 0, len(ids))
	for rows.Next() {
		var p Product
		if err := rows.Scan(
			&p.ID,
			&p.Name,
			&p.Price,
			&p.Stock,
			&p.Collection,
			&p.ImageURL,
			&p.CreatedAt,
		); err != nil {
			return nil, err
		}
		products = append(products, p)
	}

	return products, rows.Err()
}

func (r *repository) Create(ctx context.Context, params CreateParams) (*Product, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "CreateProduct"),
		zap.String("name", params.Name),
	)

	query := `
	INSERT INTO products (name, price, stock, collection, image_url)
	VALUES ($1, $2, $3, $4, $5)
	RETURNING ` + productColumns

	var p Product
	err := r.db.QueryRowContext(
		ctx,
		query,
		params.Name,
		params.Price,
		params.Stock,
		params.Collection,
		params.ImageURL,
	).Scan(
		&p.ID,
		&p.Name,
		&p.Price,
		&p.Stock,
		&p.Collection,
		&p.ImageURL,
		&p.CreatedAt,
	)
	if err != nil {
		log.Error("failed to create product", zap.Error(err))
		return nil, err
	}

	log.Info("product created", zap.String("product_id", p.ID))
	return &p, nil
}

func (r *repository) Update(ctx context.Context, params UpdateParams) (*Product, error) {
	query := `
	UPDATE products
	SET name = $1, price = $2, stock = $3, collection = $4, image_url = $5
	WHERE id = $6
	RETURNING ` + productColumns

	var p Product
	err := r.db.QueryRowContext(
		ctx,
		query,
		params.Name,
		params.Price,
		params.Stock,
		params.Collection,
		params.ImageURL,
		params.ID,
	).Scan(
		&p.ID,
		&p.Name,
		&p.Price,
		&p.Stock,
		&p.Collection,
		&p.ImageURL,
		&p.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, err
	}

	return &p, nil
}

func (r *repository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return err
	}

	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrProductNotFound
	}

	return nil
}
