package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/OG2511/maccabi-stickers-shop/internal/auth"
	"github.com/OG2511/maccabi-stickers-shop/internal/cart"
	"github.com/OG2511/maccabi-stickers-shop/internal/order"
	"github.com/OG2511/maccabi-stickers-shop/internal/pricing"
	"github.com/OG2511/maccabi-stickers-shop/internal/product"
	"github.com/OG2511/maccabi-stickers-shop/internal/utils"

	"github.com/shopspring/decimal"
)

type cartLineView struct {
	Product   product.Product `json:"product"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

type cartView struct {
	Lines   []cartLineView `json:"lines"`
	Evicted []cart.Line    `json:"evicted,omitempty"`
	Denied  string         `json:"denied,omitempty"`
	Totals  pricing.Result `json:"totals"`
}

// cartResponse prices the cart for pickup; the delivery fee is only
// known at checkout.
func (h *Handler) cartResponse(lines, evicted []cart.Line, denied cart.DenyReason) cartView {
	totals := h.engine.Compute(lines)

	views := make([]cartLineView, 0, len(lines))
	for _, l := range lines {
		views = append(views, cartLineView{
			Product:   l.Product,
			Quantity:  l.Quantity,
			UnitPrice: h.engine.EffectiveUnitPrice(l.Product, totals.RegularQuantity),
		})
	}

	return cartView{
		Lines:   views,
		Evicted: evicted,
		Denied:  string(denied),
		Totals:  totals,
	}
}

func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	var collection *string
	if c := r.URL.Query().Get("collection"); c != "" {
		collection = &c
	}

	products, err := h.products.GetAll(r.Context(), collection)
	if err != nil {
		writeError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, products)
}

func (h *Handler) getProduct(w http.ResponseWriter, r *http.Request) {
	p, err := h.products.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	if p == nil {
		utils.WriteJSONError(w, "product not found", http.StatusNotFound)
		return
	}
	utils.WriteJSON(w, http.StatusOK, p)
}

func (h *Handler) getCart(w http.ResponseWriter, r *http.Request) {
	token := h.cartToken(w, r, false)
	if token == "" {
		utils.WriteJSON(w, http.StatusOK, h.cartResponse(nil, nil, ""))
		return
	}

	lines, err := h.carts.Get(r.Context(), token)
	if err != nil {
		writeError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, h.cartResponse(lines, nil, ""))
}

func (h *Handler) addCartItem(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ProductID string `json:"product_id"`
		Quantity  int    `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	token := h.cartToken(w, r, true)
	res, err := h.carts.AddItem(r.Context(), token, req.ProductID, req.Quantity)
	if err != nil {
		writeError(w, err)
		return
	}

	h.writeMutation(w, res)
}

func (h *Handler) updateCartItem(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Quantity int `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	token := h.cartToken(w, r, true)
	res, err := h.carts.UpdateQuantity(r.Context(), token, r.PathValue("id"), req.Quantity)
	if err != nil {
		writeError(w, err)
		return
	}

	h.writeMutation(w, res)
}

func (h *Handler) removeCartItem(w http.ResponseWriter, r *http.Request) {
	token := h.cartToken(w, r, true)
	res, err := h.carts.RemoveItem(r.Context(), token, r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}

	h.writeMutation(w, res)
}

func (h *Handler) clearCart(w http.ResponseWriter, r *http.Request) {
	token := h.cartToken(w, r, false)
	if token != "" {
		if err := h.carts.Clear(r.Context(), token); err != nil {
			writeError(w, err)
			return
		}
	}
	utils.WriteJSON(w, http.StatusOK, h.cartResponse(nil, nil, ""))
}

// writeMutation renders a cart mutation outcome. Policy denials come
// back as 409 with the unchanged cart so the storefront can explain.
func (h *Handler) writeMutation(w http.ResponseWriter, res *cart.MutationResult) {
	code := http.StatusOK
	if !res.Decision.Allowed {
		code = http.StatusConflict
	}
	utils.WriteJSON(w, code, h.cartResponse(res.Lines, res.Evicted, res.Decision.Reason))
}

type checkoutRequest struct {
	CustomerName   string  `json:"customer_name"`
	Phone          string  `json:"phone"`
	DeliveryOption string  `json:"delivery_option"`
	PaymentMethod  string  `json:"payment_method"`
	City           *string `json:"city,omitempty"`
	Street         *string `json:"street,omitempty"`
	HouseNumber    *string `json:"house_number,omitempty"`
	ZipCode        *string `json:"zip_code,omitempty"`
}

func (h *Handler) checkout(w http.ResponseWriter, r *http.Request) {
	var req checkoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	token := h.cartToken(w, r, false)
	if token == "" {
		writeError(w, order.ErrEmptyOrder)
		return
	}

	lines, err := h.carts.Get(r.Context(), token)
	if err != nil {
		writeError(w, err)
		return
	}

	items := make([]order.SubmitItem, 0, len(lines))
	for _, l := range lines {
		items = append(items, order.SubmitItem{ProductID: l.Product.ID, Quantity: l.Quantity})
	}

	o, err := h.orders.Submit(r.Context(), order.SubmitParams{
		CustomerName:   req.CustomerName,
		Phone:          req.Phone,
		DeliveryOption: order.DeliveryOption(req.DeliveryOption),
		PaymentMethod:  order.PaymentMethod(req.PaymentMethod),
		City:           req.City,
		Street:         req.Street,
		HouseNumber:    req.HouseNumber,
		ZipCode:        req.ZipCode,
		Items:          items,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	// The cart is spent once the order exists.
	if err := h.carts.Clear(r.Context(), token); err == nil {
		http.SetCookie(w, &http.Cookie{
			Name:     CartCookie,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
	}

	utils.WriteJSON(w, http.StatusCreated, o)
}

func (h *Handler) orderStatus(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	status, err := h.orders.GetStatus(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]string{
		"id":     id,
		"status": string(status),
	})
}

func (h *Handler) adminLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	token, err := h.sessions.Login(req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     auth.SessionCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   24 * 60 * 60,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	utils.WriteJSON(w, http.StatusOK, map[string]string{"token": token})
}
