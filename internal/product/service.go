package product

import (
	"context"

	"github.com/OG2511/maccabi-stickers-shop/internal/logger"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Service defines the business logic for the catalog.
type Service interface {
	GetAll(ctx context.Context, collection *string) ([]Product, error)
	GetByID(ctx context.Context, id string) (*Product, error)
	Create(ctx context.Context, params CreateParams) (*Product, error)
	Update(ctx context.Context, params UpdateParams) (*Product, error)
	Delete(ctx context.Context, id string) error
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) GetAll(ctx context.Context, collection *string) ([]Product, error) {
	return s.repo.GetAll(ctx, collection)
}

func (s *service) GetByID(ctx context.Context, id string) (*Product, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrProductNotFound
	}
	return p, nil
}

func (s *service) Create(ctx context.Context, params CreateParams) (*Product, error) {
	if err := validate(params.Name, params.Price, params.Stock); err != nil {
		return nil, err
	}

	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "CreateProduct"),
	)

	p, err := s.repo.Create(ctx, params)
	if err != nil {
		log.Error("failed to create product", zap.Error(err))
		return nil, err
	}

	return p, nil
}

func (s *service) Update(ctx context.Context, params UpdateParams) (*Product, error) {
	if err := validate(params.Name, params.Price, params.Stock); err != nil {
		return nil, err
	}

	return s.repo.Update(ctx, params)
}

func (s *service) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

func validate(name string, price decimal.Decimal, stock int) error {
	if name == "" {
		return ErrEmptyName
	}
	if price.IsNegative() {
		return ErrNegativePrice
	}
	if stock < 0 {
		return ErrNegativeStock
	}
	return nil
}
