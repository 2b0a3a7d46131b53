package order

import (
	"context"
	"errors"
	"strings"

	"github.com/OG2511/maccabi-stickers-shop/internal/cart"
	"github.com/OG2511/maccabi-stickers-shop/internal/logger"
	"github.com/OG2511/maccabi-stickers-shop/internal/metrics"
	"github.com/OG2511/maccabi-stickers-shop/internal/pricing"
	"github.com/OG2511/maccabi-stickers-shop/internal/product"
	"github.com/OG2511/maccabi-stickers-shop/internal/utils"

	"go.uber.org/zap"
)

// Notifier receives orders right after submission. Implementations
// must not block; delivery failures are theirs to handle.
type Notifier interface {
	OrderSubmitted(o *Order)
}

type SubmitItem struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

type SubmitParams struct {
	CustomerName   string         `json:"customer_name"`
	Phone          string         `json:"phone"`
	DeliveryOption DeliveryOption `json:"delivery_option"`
	PaymentMethod  PaymentMethod  `json:"payment_method"`
	City           *string        `json:"city,omitempty"`
	Street         *string        `json:"street,omitempty"`
	HouseNumber    *string        `json:"house_number,omitempty"`
	ZipCode        *string        `json:"zip_code,omitempty"`
	Items          []SubmitItem   `json:"items"`
}

type Service interface {
	Submit(ctx context.Context, params SubmitParams) (*Order, error)
	Get(ctx context.Context, id string) (*Order, error)
	GetStatus(ctx context.Context, id string) (Status, error)
	List(ctx context.Context, status *Status) ([]Order, error)
	Confirm(ctx context.Context, id string) (*Order, error)
	Reject(ctx context.Context, id string) (*Order, error)
	Cancel(ctx context.Context, id string) (*Order, error)
	Edit(ctx context.Context, id string, params SubmitParams) (*Order, error)
	Delete(ctx context.Context, id string) error
	BulkDelete(ctx context.Context, ids []string) (int64, error)
}

type service struct {
	repo        Repository
	productRepo product.Repository
	engine      *pricing.Engine
	policy      cart.Policy
	notifier    Notifier
	metrics     *metrics.Metrics
}

func NewService(
	repo Repository,
	productRepo product.Repository,
	engine *pricing.Engine,
	policy cart.Policy,
	notifier Notifier,
	m *metrics.Metrics,
) Service {
	return &service{
		repo:        repo,
		productRepo: productRepo,
		engine:      engine,
		policy:      policy,
		notifier:    notifier,
		metrics:     m,
	}
}

// Submit records a pending order. Stock is checked so the customer
// learns about shortfalls immediately, but nothing is debited until an
// admin confirms.
func (s *service) Submit(ctx context.Context, params SubmitParams) (*Order, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "Submit"),
	)

	o, lines, err := s.buildOrder(ctx, params)
	if err != nil {
		return nil, err
	}
	o.Status = StatusPending

	if err := s.checkStock(lines); err != nil {
		s.metrics.StockConflict()
		return nil, err
	}

	if err := s.repo.CreateOrderTx(ctx, o); err != nil {
		log.Error("failed to create order", zap.Error(err))
		return nil, err
	}

	s.metrics.OrderSubmitted()
	s.notifier.OrderSubmitted(o)

	log.Info("order submitted",
		zap.String("order_id", o.ID),
		zap.String("total", o.TotalPrice.String()),
	)
	return o, nil
}

func (s *service) Get(ctx context.Context, id string) (*Order, error) {
	return s.repo.GetOrder(ctx, id)
}

func (s *service) GetStatus(ctx context.Context, id string) (Status, error) {
	return s.repo.GetStatus(ctx, id)
}

func (s *service) List(ctx context.Context, status *Status) ([]Order, error) {
	return s.repo.List(ctx, status)
}

// Confirm debits stock for every line and flips the order to
// confirmed, all-or-nothing. A *StockConflictError leaves the order
// pending so the admin can adjust stock and retry.
func (s *service) Confirm(ctx context.Context, id string) (*Order, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "Confirm"),
		zap.String("order_id", id),
	)

	if err := s.repo.ConfirmOrderTx(ctx, id); err != nil {
		var conflict *StockConflictError
		if errors.As(err, &conflict) {
			s.metrics.StockConflict()
			log.Warn("confirm blocked by stock conflict",
				zap.Int("shortfall_count", len(conflict.Shortfalls)),
			)
		}
		return nil, err
	}

	s.metrics.OrderConfirmed()
	return s.repo.GetOrder(ctx, id)
}

func (s *service) Reject(ctx context.Context, id string) (*Order, error) {
	if err := s.repo.UpdateStatusFrom(ctx, id, StatusPending, StatusRejected); err != nil {
		return nil, err
	}
	s.metrics.OrderRejected()
	return s.repo.GetOrder(ctx, id)
}

// Cancel retires a confirmed order. Debited stock is not returned;
// restocking after a cancellation is a manual catalog edit.
func (s *service) Cancel(ctx context.Context, id string) (*Order, error) {
	if err := s.repo.UpdateStatusFrom(ctx, id, StatusConfirmed, StatusCancelled); err != nil {
		return nil, err
	}
	s.metrics.OrderCancelled()
	return s.repo.GetOrder(ctx, id)
}

// Edit replaces a pending order's details and lines. Unit prices are
// recomputed from the current catalog since nothing was debited yet.
func (s *service) Edit(ctx context.Context, id string, params SubmitParams) (*Order, error) {
	current, err := s.repo.GetStatus(ctx, id)
	if err != nil {
		return nil, err
	}
	if current != StatusPending {
		return nil, ErrInvalidTransition
	}

	o, _, err := s.buildOrder(ctx, params)
	if err != nil {
		return nil, err
	}
	o.ID = id
	o.Status = current

	if err := s.repo.UpdateOrderTx(ctx, o); err != nil {
		return nil, err
	}
	return s.repo.GetOrder(ctx, id)
}

func (s *service) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

func (s *service) BulkDelete(ctx context.Context, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	return s.repo.BulkDelete(ctx, ids)
}

// buildOrder validates params, resolves products, applies the cart
// rules and prices the order. It returns the priced order together
// with the resolved lines for stock checks.
func (s *service) buildOrder(
	ctx context.Context,
	params SubmitParams,
) (*Order, []cart.Line, error) {

	if strings.TrimSpace(params.CustomerName) == "" {
		return nil, nil, ErrMissingName
	}
	phone := utils.NormalizePhoneIL(params.Phone)
	if phone == "" {
		return nil, nil, ErrMissingPhone
	}
	if !params.DeliveryOption.Valid() {
		return nil, nil, ErrInvalidDelivery
	}
	if !params.PaymentMethod.Valid() {
		return nil, nil, ErrInvalidPayment
	}
	if params.DeliveryOption == DeliveryIsraelPost {
		if emptyPtr(params.City) || emptyPtr(params.Street) || emptyPtr(params.HouseNumber) {
			return nil, nil, ErrMissingAddress
		}
	}
	if len(params.Items) == 0 {
		return nil, nil, ErrEmptyOrder
	}

	ids := make([]string, 0, len(params.Items))
	for _, item := range params.Items {
		if item.Quantity <= 0 {
			return nil, nil, cart.ErrInvalidQuantity
		}
		ids = append(ids, item.ProductID)
	}

	products, err := s.productRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, nil, err
	}
	byID := make(map[string]product.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	lines := make([]cart.Line, 0, len(params.Items))
	for _, item := range params.Items {
		p, ok := byID[item.ProductID]
		if !ok {
			return nil, nil, ErrUnknownProduct
		}
		lines = append(lines, cart.Line{Product: p, Quantity: item.Quantity})
	}

	// The cart gates hold for direct submissions too.
	regular := s.policy.RegularQuantity(lines)
	special := s.policy.SpecialQuantity(lines)
	if special > 0 && regular < s.policy.MinRegularForSpecial {
		return nil, nil, cart.ErrSpecialRequiresRegular
	}
	if special > s.policy.MaxSpecialPerCart {
		return nil, nil, cart.ErrSpecialLimitExceeded
	}

	delivery := params.DeliveryOption == DeliveryIsraelPost
	result := s.engine.ComputeWithDelivery(lines, delivery)

	items := make([]Item, 0, len(lines))
	for _, l := range lines {
		items = append(items, Item{
			ProductID:    l.Product.ID,
			ProductName:  l.Product.Name,
			Quantity:     l.Quantity,
			PricePerItem: s.engine.EffectiveUnitPrice(l.Product, result.RegularQuantity),
		})
	}

	return &Order{
		CustomerName:   strings.TrimSpace(params.CustomerName),
		Phone:          phone,
		DeliveryOption: params.DeliveryOption,
		PaymentMethod:  params.PaymentMethod,
		City:           params.City,
		Street:         params.Street,
		HouseNumber:    params.HouseNumber,
		ZipCode:        params.ZipCode,
		TotalPrice:     result.FinalTotal,
		Items:          items,
	}, lines, nil
}

func (s *service) checkStock(lines []cart.Line) error {
	var shortfalls []Shortfall
	for _, l := range lines {
		if l.Product.Stock < l.Quantity {
			shortfalls = append(shortfalls, Shortfall{
				ProductID: l.Product.ID,
				Name:      l.Product.Name,
				Requested: l.Quantity,
				Available: l.Product.Stock,
			})
		}
	}
	if len(shortfalls) > 0 {
		return &StockConflictError{Shortfalls: shortfalls}
	}
	return nil
}

func emptyPtr(s *string) bool {
	return s == nil || strings.TrimSpace(*s) == ""
}
