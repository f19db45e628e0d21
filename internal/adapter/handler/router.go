package handler

import "net/http"

// NewRouter wires every endpoint onto a ServeMux.
func NewRouter(cart *CartHandler, order *OrderHandler, catalog *CatalogHandler, web *WebHandler) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", HealthCheck)

	mux.HandleFunc("GET /api/cart", cart.GetCart)
	mux.HandleFunc("POST /api/cart/add", cart.AddItem)
	mux.HandleFunc("PUT /api/cart/update/{productID}", cart.UpdateItem)
	mux.HandleFunc("DELETE /api/cart/remove/{productID}", cart.RemoveItem)
	mux.HandleFunc("DELETE /api/cart/clear", cart.Clear)

	mux.HandleFunc("POST /api/orders/create", order.Create)
	mux.HandleFunc("GET /api/orders/my-orders", order.MyOrders)
	mux.HandleFunc("GET /api/orders/all", order.ListAll)
	mux.HandleFunc("GET /api/orders/status/{status}", order.ListByStatus)
	mux.HandleFunc("GET /api/orders/{id}", order.Get)
	mux.HandleFunc("POST /api/orders/{id}/cancel", order.Cancel)
	mux.HandleFunc("PUT /api/orders/{id}/status", order.UpdateStatus)

	mux.HandleFunc("GET /api/products", catalog.ListProducts)
	mux.HandleFunc("GET /api/products/{id}", catalog.GetProduct)
	mux.HandleFunc("POST /api/products", catalog.CreateProduct)
	mux.HandleFunc("PUT /api/products/{id}", catalog.UpdateProduct)
	mux.HandleFunc("DELETE /api/products/{id}", catalog.DeleteProduct)

	mux.HandleFunc("GET /api/categories", catalog.ListCategories)
	mux.HandleFunc("GET /api/categories/{id}", catalog.GetCategory)
	mux.HandleFunc("POST /api/categories", catalog.CreateCategory)
	mux.HandleFunc("PUT /api/categories/{id}", catalog.UpdateCategory)
	mux.HandleFunc("DELETE /api/categories/{id}", catalog.DeleteCategory)

	mux.HandleFunc("POST /cart/add", web.AddToCart)
	mux.HandleFunc("POST /checkout/process", web.ProcessCheckout)
	mux.HandleFunc("GET /checkout/success", web.CheckoutSuccess)

	return mux
}

func HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
