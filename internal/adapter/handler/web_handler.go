package handler

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/rl1809/webshop/internal/core/domain"
	"github.com/rl1809/webshop/internal/core/service"
	"github.com/rl1809/webshop/internal/port"
)

// WebHandler backs the server-rendered flow: form posts answered with
// a redirect plus a flash message kept in the session store. Page
// rendering itself lives elsewhere; these endpoints only drive the
// flow.
type WebHandler struct {
	carts    *service.CartService
	orders   *service.OrderService
	sessions port.SessionRepository
	identity *IdentityResolver
}

func NewWebHandler(carts *service.CartService, orders *service.OrderService, sessions port.SessionRepository, identity *IdentityResolver) *WebHandler {
	return &WebHandler{carts: carts, orders: orders, sessions: sessions, identity: identity}
}

func (h *WebHandler) flash(r *http.Request, sessionID, message string) {
	if err := h.sessions.AddFlash(r.Context(), sessionID, message); err != nil {
		slog.Warn("failed to store flash message", "session_id", sessionID, "error", err)
	}
}

func (h *WebHandler) redirect(w http.ResponseWriter, r *http.Request, target string) {
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// AddToCart handles the storefront add-to-cart form.
func (h *WebHandler) AddToCart(w http.ResponseWriter, r *http.Request) {
	identity := h.identity.Resolve(w, r)

	if err := r.ParseForm(); err != nil {
		h.flash(r, identity.SessionID, "Invalid form submission")
		h.redirect(w, r, "/cart")
		return
	}
	productID := r.PostFormValue("product_id")
	quantity, err := strconv.Atoi(r.PostFormValue("quantity"))
	if err != nil {
		quantity = 1
	}

	if _, err := h.carts.AddItem(r.Context(), identity.CartOwner(), productID, quantity); err != nil {
		h.flash(r, identity.SessionID, "Error adding to cart: "+err.Error())
	} else {
		h.flash(r, identity.SessionID, "Product added to cart")
	}
	h.redirect(w, r, "/cart")
}

// ProcessCheckout handles the checkout form.
func (h *WebHandler) ProcessCheckout(w http.ResponseWriter, r *http.Request) {
	identity := h.identity.Resolve(w, r)

	if err := r.ParseForm(); err != nil {
		h.flash(r, identity.SessionID, "Invalid form submission")
		h.redirect(w, r, "/checkout")
		return
	}

	details := domain.CheckoutDetails{
		CustomerName:    r.PostFormValue("customer_name"),
		CustomerEmail:   r.PostFormValue("customer_email"),
		CustomerPhone:   r.PostFormValue("customer_phone"),
		ShippingAddress: r.PostFormValue("shipping_address"),
		City:            r.PostFormValue("city"),
		PostalCode:      r.PostFormValue("postal_code"),
		Country:         r.PostFormValue("country"),
		PaymentMethod:   r.PostFormValue("payment_method"),
		Notes:           r.PostFormValue("order_notes"),
	}

	order, err := h.orders.Checkout(r.Context(), identity, details)
	if err != nil {
		h.flash(r, identity.SessionID, "Error processing order: "+err.Error())
		h.redirect(w, r, "/checkout")
		return
	}

	h.flash(r, identity.SessionID, fmt.Sprintf("Order %s placed successfully", order.Number))
	h.redirect(w, r, "/checkout/success")
}

// CheckoutSuccess drains the session's flash messages for the
// confirmation page.
func (h *WebHandler) CheckoutSuccess(w http.ResponseWriter, r *http.Request) {
	identity := h.identity.Resolve(w, r)

	messages, err := h.sessions.PopFlashes(r.Context(), identity.SessionID)
	if err != nil {
		writeError(w, err)
		return
	}
	if messages == nil {
		messages = []string{}
	}
	writeJSON(w, http.StatusOK, map[string][]string{"messages": messages})
}
