package handler

import (
	"encoding/json"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/rl1809/webshop/internal/core/domain"
	"github.com/rl1809/webshop/internal/core/service"
)

type CartHandler struct {
	carts    *service.CartService
	identity *IdentityResolver
}

func NewCartHandler(carts *service.CartService, identity *IdentityResolver) *CartHandler {
	return &CartHandler{carts: carts, identity: identity}
}

type addToCartRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

type updateCartItemRequest struct {
	Quantity int `json:"quantity"`
}

type cartItemResponse struct {
	ProductID string          `json:"product_id"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

type cartResponse struct {
	ID     string             `json:"id"`
	Status string             `json:"status"`
	Items  []cartItemResponse `json:"items"`
	Total  decimal.Decimal    `json:"total"`
}

func toCartResponse(cart *domain.Cart) cartResponse {
	resp := cartResponse{
		ID:     cart.ID,
		Status: string(cart.Status),
		Items:  make([]cartItemResponse, 0, len(cart.Items)),
		Total:  cart.Total(),
	}
	for _, item := range cart.Items {
		resp.Items = append(resp.Items, cartItemResponse{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Price:     item.Price,
			Subtotal:  item.Subtotal(),
		})
	}
	return resp
}

// GetCart returns the caller's cart. When an authenticated request
// still carries a guest session cookie, the guest cart is folded into
// the user cart first.
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	identity := h.identity.Resolve(w, r)

	var cart *domain.Cart
	var err error
	if identity.IsAuthenticated() && identity.SessionID != "" {
		cart, err = h.carts.MergeGuestCart(r.Context(), identity.SessionID, identity.UserID)
	} else {
		cart, err = h.carts.GetOrCreate(r.Context(), identity.CartOwner())
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toCartResponse(cart))
}

func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	identity := h.identity.Resolve(w, r)

	var req addToCartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	if req.ProductID == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "product_id is required"})
		return
	}

	cart, err := h.carts.AddItem(r.Context(), identity.CartOwner(), req.ProductID, req.Quantity)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toCartResponse(cart))
}

func (h *CartHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	identity := h.identity.Resolve(w, r)
	productID := r.PathValue("productID")

	var req updateCartItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	cart, err := h.carts.UpdateItemQuantity(r.Context(), identity.CartOwner(), productID, req.Quantity)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toCartResponse(cart))
}

func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	identity := h.identity.Resolve(w, r)
	productID := r.PathValue("productID")

	cart, err := h.carts.RemoveItem(r.Context(), identity.CartOwner(), productID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toCartResponse(cart))
}

func (h *CartHandler) Clear(w http.ResponseWriter, r *http.Request) {
	identity := h.identity.Resolve(w, r)

	if err := h.carts.Clear(r.Context(), identity.CartOwner()); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "cart cleared"})
}
