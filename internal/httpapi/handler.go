package httpapi

import (
	"errors"
	"net/http"
	"time"

	"github.com/OG2511/maccabi-stickers-shop/internal/auth"
	"github.com/OG2511/maccabi-stickers-shop/internal/cart"
	"github.com/OG2511/maccabi-stickers-shop/internal/metrics"
	"github.com/OG2511/maccabi-stickers-shop/internal/middleware"
	"github.com/OG2511/maccabi-stickers-shop/internal/notify"
	"github.com/OG2511/maccabi-stickers-shop/internal/order"
	"github.com/OG2511/maccabi-stickers-shop/internal/pricing"
	"github.com/OG2511/maccabi-stickers-shop/internal/product"
	"github.com/OG2511/maccabi-stickers-shop/internal/utils"

	"github.com/google/uuid"
)

// CartCookie carries the anonymous cart session token.
const CartCookie = "cart_session"

type Handler struct {
	products product.Service
	carts    cart.Service
	orders   order.Service
	feed     notify.Repository
	sessions *auth.Sessions
	engine   *pricing.Engine
	metrics  *metrics.Metrics
	cartTTL  time.Duration
}

func NewHandler(
	products product.Service,
	carts cart.Service,
	orders order.Service,
	feed notify.Repository,
	sessions *auth.Sessions,
	engine *pricing.Engine,
	m *metrics.Metrics,
	cartTTL time.Duration,
) *Handler {
	return &Handler{
		products: products,
		carts:    carts,
		orders:   orders,
		feed:     feed,
		sessions: sessions,
		engine:   engine,
		metrics:  m,
		cartTTL:  cartTTL,
	}
}

func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", h.health)
	mux.Handle("GET /metrics", h.metrics.Handler())

	mux.HandleFunc("GET /api/products", h.listProducts)
	mux.HandleFunc("GET /api/products/{id}", h.getProduct)

	mux.HandleFunc("GET /api/cart", h.getCart)
	mux.HandleFunc("POST /api/cart/items", h.addCartItem)
	mux.HandleFunc("PATCH /api/cart/items/{id}", h.updateCartItem)
	mux.HandleFunc("DELETE /api/cart/items/{id}", h.removeCartItem)
	mux.HandleFunc("DELETE /api/cart", h.clearCart)

	mux.HandleFunc("POST /api/checkout", h.checkout)
	mux.HandleFunc("GET /api/orders/{id}/status", h.orderStatus)

	mux.HandleFunc("POST /api/admin/login", h.adminLogin)

	admin := middleware.RequireAdmin(h.sessions)
	mux.Handle("GET /api/admin/orders", admin(http.HandlerFunc(h.adminListOrders)))
	mux.Handle("GET /api/admin/orders/{id}", admin(http.HandlerFunc(h.adminGetOrder)))
	mux.Handle("POST /api/admin/orders/{id}/confirm", admin(http.HandlerFunc(h.adminConfirmOrder)))
	mux.Handle("POST /api/admin/orders/{id}/reject", admin(http.HandlerFunc(h.adminRejectOrder)))
	mux.Handle("POST /api/admin/orders/{id}/cancel", admin(http.HandlerFunc(h.adminCancelOrder)))
	mux.Handle("PUT /api/admin/orders/{id}", admin(http.HandlerFunc(h.adminEditOrder)))
	mux.Handle("DELETE /api/admin/orders/{id}", admin(http.HandlerFunc(h.adminDeleteOrder)))
	mux.Handle("POST /api/admin/orders/bulk-delete", admin(http.HandlerFunc(h.adminBulkDeleteOrders)))
	mux.Handle("GET /api/admin/notifications", admin(http.HandlerFunc(h.adminListNotifications)))

	mux.Handle("POST /api/admin/products", admin(http.HandlerFunc(h.adminCreateProduct)))
	mux.Handle("PUT /api/admin/products/{id}", admin(http.HandlerFunc(h.adminUpdateProduct)))
	mux.Handle("DELETE /api/admin/products/{id}", admin(http.HandlerFunc(h.adminDeleteProduct)))
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	utils.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// cartToken returns the session token from the cart cookie, minting a
// fresh one when create is set.
func (h *Handler) cartToken(w http.ResponseWriter, r *http.Request, create bool) string {
	if c, err := r.Cookie(CartCookie); err == nil && c.Value != "" {
		return c.Value
	}
	if !create {
		return ""
	}

	token := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     CartCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.cartTTL.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return token
}

// writeError maps domain errors onto HTTP statuses. A
// *order.StockConflictError gets a structured 409 body so the client
// can show every failing line.
func writeError(w http.ResponseWriter, err error) {
	var conflict *order.StockConflictError
	if errors.As(err, &conflict) {
		utils.WriteJSON(w, http.StatusConflict, map[string]any{
			"error":      "insufficient_stock",
			"shortfalls": conflict.Shortfalls,
		})
		return
	}

	switch {
	case errors.Is(err, product.ErrProductNotFound),
		errors.Is(err, cart.ErrProductNotFound),
		errors.Is(err, cart.ErrLineNotFound),
		errors.Is(err, order.ErrOrderNotFound),
		errors.Is(err, notify.ErrNotificationNotFound):
		utils.WriteJSONError(w, err.Error(), http.StatusNotFound)

	case errors.Is(err, order.ErrAlreadyConfirmed),
		errors.Is(err, order.ErrInvalidTransition):
		utils.WriteJSONError(w, err.Error(), http.StatusConflict)

	case errors.Is(err, auth.ErrInvalidCredentials):
		utils.WriteJSONError(w, err.Error(), http.StatusUnauthorized)

	case errors.Is(err, cart.ErrInvalidQuantity),
		errors.Is(err, cart.ErrSpecialRequiresRegular),
		errors.Is(err, cart.ErrSpecialLimitExceeded),
		errors.Is(err, product.ErrEmptyName),
		errors.Is(err, product.ErrNegativePrice),
		errors.Is(err, product.ErrNegativeStock),
		errors.Is(err, order.ErrEmptyOrder),
		errors.Is(err, order.ErrMissingName),
		errors.Is(err, order.ErrMissingPhone),
		errors.Is(err, order.ErrInvalidDelivery),
		errors.Is(err, order.ErrInvalidPayment),
		errors.Is(err, order.ErrMissingAddress),
		errors.Is(err, order.ErrUnknownProduct):
		utils.WriteJSONError(w, err.Error(), http.StatusBadRequest)

	default:
		utils.WriteJSONError(w, "internal server error", http.StatusInternalServerError)
	}
}
