package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/OG2511/maccabi-stickers-shop/internal/auth"
	"github.com/OG2511/maccabi-stickers-shop/internal/cart"
	"github.com/OG2511/maccabi-stickers-shop/internal/metrics"
	"github.com/OG2511/maccabi-stickers-shop/internal/notify"
	"github.com/OG2511/maccabi-stickers-shop/internal/order"
	"github.com/OG2511/maccabi-stickers-shop/internal/pricing"
	"github.com/OG2511/maccabi-stickers-shop/internal/product"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockProductService is a mock implementation of product.Service
type MockProductService struct {
	mock.Mock
}

func (m *MockProductService) GetAll(ctx context.Context, collection *string) ([]product.Product, error) {
	args := m.Called(ctx, collection)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]product.Product), args.Error(1)
}

func (m *MockProductService) GetByID(ctx context.Context, id string) (*product.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*product.Product), args.Error(1)
}

func (m *MockProductService) Create(ctx context.Context, params product.CreateParams) (*product.Product, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*product.Product), args.Error(1)
}

func (m *MockProductService) Update(ctx context.Context, params product.UpdateParams) (*product.Product, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*product.Product), args.Error(1)
}

func (m *MockProductService) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockCartService is a mock implementation of cart.Service
type MockCartService struct {
	mock.Mock
}

func (m *MockCartService) Get(ctx context.Context, token string) ([]cart.Line, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]cart.Line), args.Error(1)
}

func (m *MockCartService) AddItem(ctx context.Context, token, productID string, quantity int) (*cart.MutationResult, error) {
	args := m.Called(ctx, token, productID, quantity)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cart.MutationResult), args.Error(1)
}

func (m *MockCartService) UpdateQuantity(ctx context.Context, token, productID string, quantity int) (*cart.MutationResult, error) {
	args := m.Called(ctx, token, productID, quantity)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cart.MutationResult), args.Error(1)
}

func (m *MockCartService) RemoveItem(ctx context.Context, token, productID string) (*cart.MutationResult, error) {
	args := m.Called(ctx, token, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cart.MutationResult), args.Error(1)
}

func (m *MockCartService) Clear(ctx context.Context, token string) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

// MockOrderService is a mock implementation of order.Service
type MockOrderService struct {
	mock.Mock
}

func (m *MockOrderService) Submit(ctx context.Context, params order.SubmitParams) (*order.Order, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderService) Get(ctx context.Context, id string) (*order.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderService) GetStatus(ctx context.Context, id string) (order.Status, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(order.Status), args.Error(1)
}

func (m *MockOrderService) List(ctx context.Context, status *order.Status) ([]order.Order, error) {
	args := m.Called(ctx, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]order.Order), args.Error(1)
}

func (m *MockOrderService) Confirm(ctx context.Context, id string) (*order.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderService) Reject(ctx context.Context, id string) (*order.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderService) Cancel(ctx context.Context, id string) (*order.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderService) Edit(ctx context.Context, id string, params order.SubmitParams) (*order.Order, error) {
	args := m.Called(ctx, id, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderService) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockOrderService) BulkDelete(ctx context.Context, ids []string) (int64, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).(int64), args.Error(1)
}

// MockFeedRepository is a mock implementation of notify.Repository
type MockFeedRepository struct {
	mock.Mock
}

func (m *MockFeedRepository) Create(ctx context.Context, n *notify.Notification) error {
	args := m.Called(ctx, n)
	return args.Error(0)
}

func (m *MockFeedRepository) MarkSent(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockFeedRepository) List(ctx context.Context, limit int) ([]notify.Notification, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]notify.Notification), args.Error(1)
}

type testEnv struct {
	products *MockProductService
	carts    *MockCartService
	orders   *MockOrderService
	feed     *MockFeedRepository
	sessions *auth.Sessions
	mux      *http.ServeMux
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	hash, err := auth.HashPassword("sod-gadol")
	require.NoError(t, err)

	env := &testEnv{
		products: new(MockProductService),
		carts:    new(MockCartService),
		orders:   new(MockOrderService),
		feed:     new(MockFeedRepository),
		sessions: auth.NewSessions("test-secret", hash),
		mux:      http.NewServeMux(),
	}

	h := NewHandler(
		env.products,
		env.carts,
		env.orders,
		env.feed,
		env.sessions,
		pricing.NewEngine(pricing.DefaultRules()),
		metrics.New(),
		72*time.Hour,
	)
	h.RegisterRoutes(env.mux)
	return env
}

func (e *testEnv) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.mux.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) adminToken(t *testing.T) string {
	t.Helper()
	token, err := e.sessions.Login("sod-gadol")
	require.NoError(t, err)
	return token
}

func cartCookie(req *http.Request, token string) {
	req.AddCookie(&http.Cookie{Name: CartCookie, Value: token})
}

func regular(id string, price int64, stock int) product.Product {
	return product.Product{
		ID:         id,
		Name:       "sticker " + id,
		Price:      decimal.NewFromInt(price),
		Stock:      stock,
		Collection: "רטרו",
	}
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestListProducts(t *testing.T) {
	env := newTestEnv(t)
	env.products.On("GetAll", mock.Anything, (*string)(nil)).
		Return([]product.Product{regular("p-1", 10, 5)}, nil)

	rec := env.do(httptest.NewRequest(http.MethodGet, "/api/products", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	var got []product.Product
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Len(t, got, 1)
}

func TestGetProduct_NotFound(t *testing.T) {
	env := newTestEnv(t)
	env.products.On("GetByID", mock.Anything, "ghost").Return(nil, nil)

	rec := env.do(httptest.NewRequest(http.MethodGet, "/api/products/ghost", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAddCartItem(t *testing.T) {
	t.Run("Allowed returns priced cart and sets cookie", func(t *testing.T) {
		env := newTestEnv(t)
		lines := []cart.Line{{Product: regular("p-1", 10, 50), Quantity: 8}}
		env.carts.On("AddItem", mock.Anything, mock.Anything, "p-1", 8).
			Return(&cart.MutationResult{Lines: lines, Decision: cart.Decision{Allowed: true}}, nil)

		req := httptest.NewRequest(http.MethodPost, "/api/cart/items",
			strings.NewReader(`{"product_id":"p-1","quantity":8}`))
		rec := env.do(req)

		assert.Equal(t, http.StatusOK, rec.Code)

		var view cartView
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
		require.Len(t, view.Lines, 1)
		// 8 regular stickers hit the 10 percent tier.
		assert.True(t, view.Lines[0].UnitPrice.Equal(decimal.NewFromInt(9)))
		assert.True(t, view.Totals.FinalTotal.Equal(decimal.NewFromInt(72)))

		cookies := rec.Result().Cookies()
		require.NotEmpty(t, cookies)
		assert.Equal(t, CartCookie, cookies[0].Name)
	})

	t.Run("Denied returns 409 with the reason", func(t *testing.T) {
		env := newTestEnv(t)
		lines := []cart.Line{{Product: regular("p-1", 10, 5), Quantity: 3}}
		env.carts.On("AddItem", mock.Anything, "tok-1", "p-1", 3).
			Return(&cart.MutationResult{
				Lines:    lines,
				Decision: cart.Decision{Allowed: false, Reason: cart.DenyInsufficientStock},
			}, nil)

		req := httptest.NewRequest(http.MethodPost, "/api/cart/items",
			strings.NewReader(`{"product_id":"p-1","quantity":3}`))
		cartCookie(req, "tok-1")
		rec := env.do(req)

		assert.Equal(t, http.StatusConflict, rec.Code)
		var view cartView
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
		assert.Equal(t, string(cart.DenyInsufficientStock), view.Denied)
	})

	t.Run("Bad body", func(t *testing.T) {
		env := newTestEnv(t)
		req := httptest.NewRequest(http.MethodPost, "/api/cart/items", strings.NewReader("{"))
		rec := env.do(req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestGetCart_NoSession(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(httptest.NewRequest(http.MethodGet, "/api/cart", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	var view cartView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	assert.Empty(t, view.Lines)
	assert.True(t, view.Totals.FinalTotal.Equal(decimal.Zero))
}

func TestCheckout(t *testing.T) {
	body := `{
		"customer_name": "דני לוי",
		"phone": "050-1234567",
		"delivery_option": "self_pickup",
		"payment_method": "bit"
	}`

	t.Run("Submits the cart and clears it", func(t *testing.T) {
		env := newTestEnv(t)
		lines := []cart.Line{{Product: regular("p-1", 10, 50), Quantity: 8}}

		env.carts.On("Get", mock.Anything, "tok-1").Return(lines, nil)
		env.orders.On("Submit", mock.Anything, mock.MatchedBy(func(p order.SubmitParams) bool {
			return len(p.Items) == 1 && p.Items[0].ProductID == "p-1" && p.Items[0].Quantity == 8
		})).Return(&order.Order{ID: "o-1", Status: order.StatusPending}, nil)
		env.carts.On("Clear", mock.Anything, "tok-1").Return(nil)

		req := httptest.NewRequest(http.MethodPost, "/api/checkout", strings.NewReader(body))
		cartCookie(req, "tok-1")
		rec := env.do(req)

		assert.Equal(t, http.StatusCreated, rec.Code)
		env.carts.AssertCalled(t, "Clear", mock.Anything, "tok-1")
	})

	t.Run("Stock conflict surfaces every shortfall", func(t *testing.T) {
		env := newTestEnv(t)
		lines := []cart.Line{{Product: regular("p-1", 10, 2), Quantity: 8}}

		env.carts.On("Get", mock.Anything, "tok-1").Return(lines, nil)
		env.orders.On("Submit", mock.Anything, mock.Anything).
			Return(nil, &order.StockConflictError{Shortfalls: []order.Shortfall{
				{ProductID: "p-1", Name: "sticker p-1", Requested: 8, Available: 2},
			}})

		req := httptest.NewRequest(http.MethodPost, "/api/checkout", strings.NewReader(body))
		cartCookie(req, "tok-1")
		rec := env.do(req)

		assert.Equal(t, http.StatusConflict, rec.Code)
		var resp struct {
			Error      string            `json:"error"`
			Shortfalls []order.Shortfall `json:"shortfalls"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "insufficient_stock", resp.Error)
		require.Len(t, resp.Shortfalls, 1)
		assert.Equal(t, 2, resp.Shortfalls[0].Available)
		env.carts.AssertNotCalled(t, "Clear", mock.Anything, mock.Anything)
	})

	t.Run("No cart session", func(t *testing.T) {
		env := newTestEnv(t)
		req := httptest.NewRequest(http.MethodPost, "/api/checkout", strings.NewReader(body))
		rec := env.do(req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestOrderStatus(t *testing.T) {
	env := newTestEnv(t)
	env.orders.On("GetStatus", mock.Anything, "o-1").Return(order.StatusConfirmed, nil)

	rec := env.do(httptest.NewRequest(http.MethodGet, "/api/orders/o-1/status", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "confirmed", resp["status"])
}

func TestAdminLogin(t *testing.T) {
	t.Run("Success sets the session cookie", func(t *testing.T) {
		env := newTestEnv(t)
		req := httptest.NewRequest(http.MethodPost, "/api/admin/login",
			strings.NewReader(`{"password":"sod-gadol"}`))
		rec := env.do(req)

		assert.Equal(t, http.StatusOK, rec.Code)
		cookies := rec.Result().Cookies()
		require.NotEmpty(t, cookies)
		assert.Equal(t, auth.SessionCookie, cookies[0].Name)
		assert.NotEmpty(t, cookies[0].Value)
	})

	t.Run("Wrong password", func(t *testing.T) {
		env := newTestEnv(t)
		req := httptest.NewRequest(http.MethodPost, "/api/admin/login",
			strings.NewReader(`{"password":"wrong"}`))
		rec := env.do(req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestAdminRoutes_RequireSession(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(httptest.NewRequest(http.MethodGet, "/api/admin/orders", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAdminConfirmOrder(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		env := newTestEnv(t)
		env.orders.On("Confirm", mock.Anything, "o-1").
			Return(&order.Order{ID: "o-1", Status: order.StatusConfirmed}, nil)

		req := httptest.NewRequest(http.MethodPost, "/api/admin/orders/o-1/confirm", nil)
		req.Header.Set("Authorization", "Bearer "+env.adminToken(t))
		rec := env.do(req)

		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("Already confirmed maps to 409", func(t *testing.T) {
		env := newTestEnv(t)
		env.orders.On("Confirm", mock.Anything, "o-1").
			Return(nil, order.ErrAlreadyConfirmed)

		req := httptest.NewRequest(http.MethodPost, "/api/admin/orders/o-1/confirm", nil)
		req.Header.Set("Authorization", "Bearer "+env.adminToken(t))
		rec := env.do(req)

		assert.Equal(t, http.StatusConflict, rec.Code)
	})
}

func TestAdminBulkDelete(t *testing.T) {
	env := newTestEnv(t)
	env.orders.On("BulkDelete", mock.Anything, []string{"o-1", "o-2"}).Return(int64(2), nil)

	req := httptest.NewRequest(http.MethodPost, "/api/admin/orders/bulk-delete",
		strings.NewReader(`{"ids":["o-1","o-2"]}`))
	req.Header.Set("Authorization", "Bearer "+env.adminToken(t))
	rec := env.do(req)

	assert.Equal(t, http.StatusOK, rec.Code)
	var resp map[string]int64
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, int64(2), resp["deleted"])
}

func TestAdminCreateProduct(t *testing.T) {
	env := newTestEnv(t)
	created := regular("p-new", 10, 20)
	env.products.On("Create", mock.Anything, mock.MatchedBy(func(p product.CreateParams) bool {
		return p.Name == "מדבקה" && p.Price.Equal(decimal.RequireFromString("12.5"))
	})).Return(&created, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/admin/products",
		strings.NewReader(`{"name":"מדבקה","price":"12.5","stock":20,"collection":"רטרו"}`))
	req.Header.Set("Authorization", "Bearer "+env.adminToken(t))
	rec := env.do(req)

	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestAdminListNotifications(t *testing.T) {
	env := newTestEnv(t)
	env.feed.On("List", mock.Anything, 0).
		Return([]notify.Notification{{ID: 1, OrderID: "o-1", Message: "הזמנה"}}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/admin/notifications", nil)
	req.Header.Set("Authorization", "Bearer "+env.adminToken(t))
	rec := env.do(req)

	assert.Equal(t, http.StatusOK, rec.Code)
}
