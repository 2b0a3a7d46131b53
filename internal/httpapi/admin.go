package httpapi

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/OG2511/maccabi-stickers-shop/internal/order"
	"github.com/OG2511/maccabi-stickers-shop/internal/product"
	"github.com/OG2511/maccabi-stickers-shop/internal/utils"

	"github.com/shopspring/decimal"
)

func (h *Handler) adminListOrders(w http.ResponseWriter, r *http.Request) {
	var status *order.Status
	if s := r.URL.Query().Get("status"); s != "" {
		st := order.Status(s)
		if !st.Valid() {
			utils.WriteJSONError(w, "invalid status filter", http.StatusBadRequest)
			return
		}
		status = &st
	}

	orders, err := h.orders.List(r.Context(), status)
	if err != nil {
		writeError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, orders)
}

func (h *Handler) adminGetOrder(w http.ResponseWriter, r *http.Request) {
	o, err := h.orders.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, o)
}

func (h *Handler) adminConfirmOrder(w http.ResponseWriter, r *http.Request) {
	o, err := h.orders.Confirm(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, o)
}

func (h *Handler) adminRejectOrder(w http.ResponseWriter, r *http.Request) {
	o, err := h.orders.Reject(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, o)
}

func (h *Handler) adminCancelOrder(w http.ResponseWriter, r *http.Request) {
	o, err := h.orders.Cancel(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, o)
}

func (h *Handler) adminEditOrder(w http.ResponseWriter, r *http.Request) {
	var params order.SubmitParams
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		utils.WriteJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	o, err := h.orders.Edit(r.Context(), r.PathValue("id"), params)
	if err != nil {
		writeError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, o)
}

func (h *Handler) adminDeleteOrder(w http.ResponseWriter, r *http.Request) {
	if err := h.orders.Delete(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) adminBulkDeleteOrders(w http.ResponseWriter, r *http.Request) {
	var req struct {
		IDs []string `json:"ids"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	deleted, err := h.orders.BulkDelete(r.Context(), req.IDs)
	if err != nil {
		writeError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]int64{"deleted": deleted})
}

func (h *Handler) adminListNotifications(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if l := r.URL.Query().Get("limit"); l != "" {
		limit, _ = strconv.Atoi(l)
	}

	notifications, err := h.feed.List(r.Context(), limit)
	if err != nil {
		writeError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, notifications)
}

type productRequest struct {
	Name       string  `json:"name"`
	Price      string  `json:"price"`
	Stock      int     `json:"stock"`
	Collection string  `json:"collection"`
	ImageURL   *string `json:"image_url,omitempty"`
}

func (r productRequest) price() (decimal.Decimal, error) {
	return decimal.NewFromString(r.Price)
}

func (h *Handler) adminCreateProduct(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	price, err := req.price()
	if err != nil {
		utils.WriteJSONError(w, "invalid price", http.StatusBadRequest)
		return
	}

	p, err := h.products.Create(r.Context(), product.CreateParams{
		Name:       req.Name,
		Price:      price,
		Stock:      req.Stock,
		Collection: req.Collection,
		ImageURL:   req.ImageURL,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, p)
}

func (h *Handler) adminUpdateProduct(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	price, err := req.price()
	if err != nil {
		utils.WriteJSONError(w, "invalid price", http.StatusBadRequest)
		return
	}

	p, err := h.products.Update(r.Context(), product.UpdateParams{
		ID:         r.PathValue("id"),
		Name:       req.Name,
		Price:      price,
		Stock:      req.Stock,
		Collection: req.Collection,
		ImageURL:   req.ImageURL,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, p)
}

func (h *Handler) adminDeleteProduct(w http.ResponseWriter, r *http.Request) {
	if err := h.products.Delete(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
