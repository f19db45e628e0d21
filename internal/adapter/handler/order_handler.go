package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rl1809/webshop/internal/core/domain"
	"github.com/rl1809/webshop/internal/core/service"
)

type OrderHandler struct {
	orders   *service.OrderService
	identity *IdentityResolver
}

func NewOrderHandler(orders *service.OrderService, identity *IdentityResolver) *OrderHandler {
	return &OrderHandler{orders: orders, identity: identity}
}

type createOrderRequest struct {
	CustomerName    string `json:"customer_name"`
	CustomerEmail   string `json:"customer_email"`
	CustomerPhone   string `json:"customer_phone"`
	ShippingAddress string `json:"shipping_address"`
	City            string `json:"city"`
	PostalCode      string `json:"postal_code"`
	Country         string `json:"country"`
	PaymentMethod   string `json:"payment_method"`
	Notes           string `json:"notes"`
}

func (req createOrderRequest) details() domain.CheckoutDetails {
	return domain.CheckoutDetails{
		CustomerName:    req.CustomerName,
		CustomerEmail:   req.CustomerEmail,
		CustomerPhone:   req.CustomerPhone,
		ShippingAddress: req.ShippingAddress,
		City:            req.City,
		PostalCode:      req.PostalCode,
		Country:         req.Country,
		PaymentMethod:   req.PaymentMethod,
		Notes:           req.Notes,
	}
}

type orderItemResponse struct {
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"product_name"`
	Price       decimal.Decimal `json:"price"`
	Quantity    int             `json:"quantity"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

type orderResponse struct {
	ID              string              `json:"id"`
	Number          string              `json:"order_number"`
	Status          string              `json:"status"`
	CustomerName    string              `json:"customer_name"`
	CustomerEmail   string              `json:"customer_email"`
	ShippingAddress string              `json:"shipping_address"`
	PaymentMethod   string              `json:"payment_method"`
	TotalAmount     decimal.Decimal     `json:"total_amount"`
	Items           []orderItemResponse `json:"items"`
	CreatedAt       time.Time           `json:"created_at"`
	UpdatedAt       time.Time           `json:"updated_at"`
}

func toOrderResponse(order *domain.Order) orderResponse {
	resp := orderResponse{
		ID:              order.ID,
		Number:          order.Number,
		Status:          string(order.Status),
		CustomerName:    order.CustomerName,
		CustomerEmail:   order.CustomerEmail,
		ShippingAddress: order.ShippingAddress,
		PaymentMethod:   order.PaymentMethod,
		TotalAmount:     order.TotalAmount,
		Items:           make([]orderItemResponse, 0, len(order.Items)),
		CreatedAt:       order.CreatedAt,
		UpdatedAt:       order.UpdatedAt,
	}
	for _, item := range order.Items {
		resp.Items = append(resp.Items, orderItemResponse{
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Price:       item.Price,
			Quantity:    item.Quantity,
			Subtotal:    item.Subtotal(),
		})
	}
	return resp
}

func toOrderResponses(orders []domain.Order) []orderResponse {
	out := make([]orderResponse, 0, len(orders))
	for i := range orders {
		out = append(out, toOrderResponse(&orders[i]))
	}
	return out
}

func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	identity := h.identity.Resolve(w, r)

	var req createOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	order, err := h.orders.Checkout(r.Context(), identity, req.details())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toOrderResponse(order))
}

func (h *OrderHandler) MyOrders(w http.ResponseWriter, r *http.Request) {
	identity := h.identity.Resolve(w, r)

	orders, err := h.orders.ListUserOrders(r.Context(), identity)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponses(orders))
}

func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	identity := h.identity.Resolve(w, r)

	order, err := h.orders.GetOrder(r.Context(), identity, r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponse(order))
}

func (h *OrderHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	identity := h.identity.Resolve(w, r)

	order, err := h.orders.CancelOrder(r.Context(), identity, r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponse(order))
}

func (h *OrderHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	identity := h.identity.Resolve(w, r)

	orders, err := h.orders.ListAllOrders(r.Context(), identity)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponses(orders))
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	identity := h.identity.Resolve(w, r)

	var req updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	status, err := domain.ParseOrderStatus(req.Status)
	if err != nil {
		writeError(w, err)
		return
	}

	order, err := h.orders.UpdateStatus(r.Context(), identity, r.PathValue("id"), status)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponse(order))
}

func (h *OrderHandler) ListByStatus(w http.ResponseWriter, r *http.Request) {
	identity := h.identity.Resolve(w, r)

	status, err := domain.ParseOrderStatus(r.PathValue("status"))
	if err != nil {
		writeError(w, err)
		return
	}

	orders, err := h.orders.ListOrdersByStatus(r.Context(), identity, status)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponses(orders))
}
