package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/fjod/gym_client/internal/cart"
	"github.com/fjod/gym_client/internal/domain"
	"github.com/fjod/gym_client/pkg/logger"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

type CartHandler struct {
	cart *cart.Store
	log  *slog.Logger
}

func NewCartHandler(store *cart.Store, log *slog.Logger) *CartHandler {
	if log == nil {
		log = slog.Default()
	}
	return &CartHandler{cart: store, log: log}
}

type CartResponse struct {
	Items      []domain.CartItem `json:"items"`
	TotalItems int               `json:"totalItems"`
	TotalPrice decimal.Decimal   `json:"totalPrice"`
}

type UpdateQuantityRequestDTO struct {
	Quantity int `json:"quantity"`
}

func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	h.respondCart(w, http.StatusOK)
}

// AddItem adds one unit of the posted product. Adds beyond stock leave the
// cart unchanged and still answer with the current cart.
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req domain.Product
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.ProductID == "" {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "productID is required")
		return
	}

	h.cart.AddToCart(req)
	logger.WithTrace(r.Context(), h.log).Debug("cart add", "product_id", req.ProductID, "request_id", getRequestID(r.Context()))
	h.respondCart(w, http.StatusOK)
}

func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "product_id")

	var req UpdateQuantityRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	h.cart.UpdateQuantity(productID, req.Quantity)
	h.respondCart(w, http.StatusOK)
}

func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	h.cart.RemoveFromCart(chi.URLParam(r, "product_id"))
	h.respondCart(w, http.StatusOK)
}

func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	h.cart.ClearCart()
	h.respondCart(w, http.StatusOK)
}

func (h *CartHandler) respondCart(w http.ResponseWriter, status int) {
	snap := h.cart.Snapshot()
	respondJSON(w, status, CartResponse{
		Items:      snap.Items,
		TotalItems: snap.TotalItems,
		TotalPrice: snap.TotalPrice,
	})
}
