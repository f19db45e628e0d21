package handler

import (
	"encoding/json"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/rl1809/webshop/internal/core/domain"
	"github.com/rl1809/webshop/internal/core/service"
)

// CatalogHandler serves products and categories: public reads, admin
// mutations.
type CatalogHandler struct {
	products   *service.ProductService
	categories *service.CategoryService
	identity   *IdentityResolver
}

func NewCatalogHandler(products *service.ProductService, categories *service.CategoryService, identity *IdentityResolver) *CatalogHandler {
	return &CatalogHandler{products: products, categories: categories, identity: identity}
}

type productRequest struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	ImageURL    string          `json:"image_url"`
	Price       decimal.Decimal `json:"price"`
	Quantity    int             `json:"quantity"`
	CategoryID  string          `json:"category_id"`
}

func (req productRequest) product() domain.Product {
	return domain.Product{
		Name:        req.Name,
		Description: req.Description,
		ImageURL:    req.ImageURL,
		Price:       req.Price,
		Quantity:    req.Quantity,
		CategoryID:  req.CategoryID,
	}
}

func (h *CatalogHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	var (
		products []domain.Product
		err      error
	)
	switch {
	case r.URL.Query().Get("category") != "":
		products, err = h.products.ListByCategory(r.Context(), r.URL.Query().Get("category"))
	case r.URL.Query().Get("q") != "":
		products, err = h.products.Search(r.Context(), r.URL.Query().Get("q"))
	case r.URL.Query().Get("min_price") != "" || r.URL.Query().Get("max_price") != "":
		products, err = h.listByPriceRange(r)
	default:
		products, err = h.products.List(r.Context())
	}
	if err != nil {
		writeError(w, err)
		return
	}
	if products == nil {
		products = []domain.Product{}
	}
	writeJSON(w, http.StatusOK, products)
}

func (h *CatalogHandler) listByPriceRange(r *http.Request) ([]domain.Product, error) {
	min, err := decimal.NewFromString(r.URL.Query().Get("min_price"))
	if err != nil {
		min = decimal.Zero
	}
	max, err := decimal.NewFromString(r.URL.Query().Get("max_price"))
	if err != nil {
		max = decimal.New(1, 9) // effectively unbounded
	}
	return h.products.ListByPriceRange(r.Context(), min, max)
}

func (h *CatalogHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	product, err := h.products.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, product)
}

func (h *CatalogHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	identity := h.identity.Resolve(w, r)

	var req productRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	product, err := h.products.Create(r.Context(), identity, req.product())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, product)
}

func (h *CatalogHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	identity := h.identity.Resolve(w, r)

	var req productRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	p := req.product()
	p.ID = r.PathValue("id")

	product, err := h.products.Update(r.Context(), identity, p)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, product)
}

func (h *CatalogHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	identity := h.identity.Resolve(w, r)

	if err := h.products.Delete(r.Context(), identity, r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "product deleted"})
}

type categoryRequest struct {
	Name string `json:"name"`
}

func (h *CatalogHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("with_counts") == "true" {
		counts, err := h.categories.ListWithProductCounts(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, counts)
		return
	}

	categories, err := h.categories.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	if categories == nil {
		categories = []domain.Category{}
	}
	writeJSON(w, http.StatusOK, categories)
}

func (h *CatalogHandler) GetCategory(w http.ResponseWriter, r *http.Request) {
	category, err := h.categories.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, category)
}

func (h *CatalogHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	identity := h.identity.Resolve(w, r)

	var req categoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	category, err := h.categories.Create(r.Context(), identity, req.Name)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, category)
}

func (h *CatalogHandler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	identity := h.identity.Resolve(w, r)

	var req categoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	category, err := h.categories.Update(r.Context(), identity, r.PathValue("id"), req.Name)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, category)
}

// DeleteCategory removes a category. With ?reassign_to=<id> (or
// ?detach=true) its products are moved first, as one transaction.
func (h *CatalogHandler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	identity := h.identity.Resolve(w, r)
	id := r.PathValue("id")

	var err error
	switch {
	case r.URL.Query().Get("reassign_to") != "":
		target := r.URL.Query().Get("reassign_to")
		err = h.categories.DeleteWithReassignment(r.Context(), identity, id, &target)
	case r.URL.Query().Get("detach") == "true":
		err = h.categories.DeleteWithReassignment(r.Context(), identity, id, nil)
	default:
		err = h.categories.Delete(r.Context(), identity, id)
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "category deleted"})
}
