package cart

import (
	"context"

	"github.com/OG2511/maccabi-stickers-shop/internal/logger"
	"github.com/OG2511/maccabi-stickers-shop/internal/product"

	"go.uber.org/zap"
)

// Snapshots is the persistence surface the service needs; *Store
// satisfies it.
type Snapshots interface {
	Get(ctx context.Context, token string) ([]Line, error)
	Save(ctx context.Context, token string, lines []Line) error
	Clear(ctx context.Context, token string) error
}

// MutationResult reports the outcome of a cart mutation. When the
// admission policy denies the change, Lines holds the unchanged cart
// and Decision carries the reason. Evicted lists special lines removed
// because the regular quantity dropped below the threshold.
type MutationResult struct {
	Lines    []Line `json:"lines"`
	Evicted  []Line `json:"evicted,omitempty"`
	Decision Decision
}

// Service defines the business logic for carts.
type Service interface {
	Get(ctx context.Context, token string) ([]Line, error)
	AddItem(ctx context.Context, token, productID string, quantity int) (*MutationResult, error)
	UpdateQuantity(ctx context.Context, token, productID string, quantity int) (*MutationResult, error)
	RemoveItem(ctx context.Context, token, productID string) (*MutationResult, error)
	Clear(ctx context.Context, token string) error
}

type service struct {
	snapshots   Snapshots
	productRepo product.Repository
	policy      Policy
}

func NewService(snapshots Snapshots, productRepo product.Repository, policy Policy) Service {
	return &service{snapshots: snapshots, productRepo: productRepo, policy: policy}
}

func (s *service) Get(ctx context.Context, token string) ([]Line, error) {
	return s.snapshots.Get(ctx, token)
}

func (s *service) AddItem(
	ctx context.Context,
	token, productID string,
	quantity int,
) (*MutationResult, error) {

	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}

	lines, err := s.snapshots.Get(ctx, token)
	if err != nil {
		return nil, err
	}

	// Always decide against live stock, never the snapshot.
	prod, err := s.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if prod == nil {
		return nil, ErrProductNotFound
	}

	decision := s.policy.CanAdd(lines, *prod, quantity)
	if !decision.Allowed {
		logger.FromCtx(ctx).Debug("cart addition denied",
			zap.String("product_id", productID),
			zap.String("reason", string(decision.Reason)),
		)
		return &MutationResult{Lines: lines, Decision: decision}, nil
	}

	if line := Find(lines, productID); line != nil {
		line.Product = *prod
		line.Quantity += quantity
	} else {
		lines = append(lines, Line{Product: *prod, Quantity: quantity})
	}

	if err := s.snapshots.Save(ctx, token, lines); err != nil {
		return nil, err
	}

	return &MutationResult{Lines: lines, Decision: allowed()}, nil
}

func (s *service) UpdateQuantity(
	ctx context.Context,
	token, productID string,
	quantity int,
) (*MutationResult, error) {

	if quantity <= 0 {
		// Zero or negative means remove, matching the storefront UI.
		return s.RemoveItem(ctx, token, productID)
	}

	lines, err := s.snapshots.Get(ctx, token)
	if err != nil {
		return nil, err
	}

	line := Find(lines, productID)
	if line == nil {
		return nil, ErrLineNotFound
	}

	prod, err := s.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if prod == nil {
		return nil, ErrProductNotFound
	}
	line.Product = *prod

	decision := s.policy.CanSetQuantity(lines, productID, quantity)
	if !decision.Allowed {
		return &MutationResult{Lines: lines, Decision: decision}, nil
	}

	line.Quantity = quantity

	kept, evicted := s.policy.EvictInvalidSpecials(lines)
	if err := s.snapshots.Save(ctx, token, kept); err != nil {
		return nil, err
	}

	return &MutationResult{Lines: kept, Evicted: evicted, Decision: allowed()}, nil
}

func (s *service) RemoveItem(
	ctx context.Context,
	token, productID string,
) (*MutationResult, error) {

	lines, err := s.snapshots.Get(ctx, token)
	if err != nil {
		return nil, err
	}

	remaining := make([]Line, 0, len(lines))
	found := false
	for _, l := range lines {
		if l.Product.ID == productID {
			found = true
			continue
		}
		remaining = append(remaining, l)
	}
	if !found {
		return nil, ErrLineNotFound
	}

	kept, evicted := s.policy.EvictInvalidSpecials(remaining)
	if err := s.snapshots.Save(ctx, token, kept); err != nil {
		return nil, err
	}

	return &MutationResult{Lines: kept, Evicted: evicted, Decision: allowed()}, nil
}

func (s *service) Clear(ctx context.Context, token string) error {
	return s.snapshots.Clear(ctx, token)
}
