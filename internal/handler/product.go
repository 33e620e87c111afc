package handler

import (
	"net/http"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/modesta/storefront-api/internal/domain/product"
)

type sizePayload struct {
	Label string `json:"label" validate:"required,max=20"`
	Stock int    `json:"stock" validate:"min=0"`
}

type createProductRequest struct {
	Name        string        `json:"name" validate:"required,max=200"`
	Description string        `json:"description" validate:"required,max=2000"`
	Category    string        `json:"category" validate:"required"`
	Price       string        `json:"price" validate:"required"`
	Features    []string      `json:"features" validate:"required,min=2,max=10,dive,max=200"`
	Media       []string      `json:"media" validate:"required,min=1,max=20,dive,url"`
	HasSizes    bool          `json:"hasSizes"`
	Stock       int           `json:"stock" validate:"min=0"`
	Sizes       []sizePayload `json:"sizes" validate:"omitempty,dive"`
}

type updateProductRequest struct {
	Name        *string        `json:"name" validate:"omitempty,max=200"`
	Description *string        `json:"description" validate:"omitempty,max=2000"`
	Category    *string        `json:"category"`
	Price       *string        `json:"price"`
	Features    *[]string      `json:"features" validate:"omitempty,min=2,max=10,dive,max=200"`
	Media       *[]string      `json:"media" validate:"omitempty,min=1,max=20,dive,url"`
	HasSizes    *bool          `json:"hasSizes"`
	Stock       *int           `json:"stock" validate:"omitempty,min=0"`
	Sizes       *[]sizePayload `json:"sizes" validate:"omitempty,dive"`
}

type productResponse struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Category    string         `json:"category"`
	Price       string         `json:"price"`
	Features    []string       `json:"features"`
	Media       []string       `json:"media"`
	HasSizes    bool           `json:"hasSizes"`
	Stock       int            `json:"stock"`
	Sizes       []product.Size `json:"sizes,omitempty"`
	CreatedAt   string         `json:"createdAt"`
	UpdatedAt   string         `json:"updatedAt"`
}

func toProductResponse(p *product.Product) productResponse {
	return productResponse{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Category:    string(p.Category),
		Price:       p.Price.String(),
		Features:    p.Features,
		Media:       p.Media,
		HasSizes:    p.HasSizes,
		Stock:       p.Stock,
		Sizes:       p.Sizes,
		CreatedAt:   p.CreatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
		UpdatedAt:   p.UpdatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
	}
}

// ListProducts returns the full catalog, newest first.
func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.catalog.List(r.Context())
	if err != nil {
		respondInternal(w, r, err)
		return
	}

	resp := make([]productResponse, len(products))
	for i := range products {
		resp[i] = toProductResponse(&products[i])
	}
	respondJSON(w, r, http.StatusOK, resp)
}

// GetProduct returns a single product by identifier.
func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	p, err := h.catalog.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		h.respondCatalogError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, toProductResponse(p))
}

// CreateProduct adds a new product to the catalog.
func (h *Handler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req createProductRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		respondError(w, r, http.StatusBadRequest, "Invalid product payload: "+err.Error())
		return
	}

	price, err := decimal.NewFromString(req.Price)
	if err != nil {
		respondError(w, r, http.StatusBadRequest, "Invalid price")
		return
	}

	p, err := h.catalog.Create(r.Context(), product.CreateInput{
		Name:        req.Name,
		Description: req.Description,
		Category:    product.Category(req.Category),
		Price:       price,
		Features:    req.Features,
		Media:       req.Media,
		HasSizes:    req.HasSizes,
		Stock:       req.Stock,
		Sizes:       toSizes(req.Sizes),
	})
	if err != nil {
		h.respondCatalogError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusCreated, toProductResponse(p))
}

// UpdateProduct applies a partial update to an existing product.
func (h *Handler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	var req updateProductRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		respondError(w, r, http.StatusBadRequest, "Invalid product payload: "+err.Error())
		return
	}

	in := product.UpdateInput{
		Name:        req.Name,
		Description: req.Description,
		Features:    req.Features,
		Media:       req.Media,
		HasSizes:    req.HasSizes,
		Stock:       req.Stock,
	}
	if req.Category != nil {
		c := product.Category(*req.Category)
		in.Category = &c
	}
	if req.Price != nil {
		price, err := decimal.NewFromString(*req.Price)
		if err != nil {
			respondError(w, r, http.StatusBadRequest, "Invalid price")
			return
		}
		in.Price = &price
	}
	if req.Sizes != nil {
		sizes := toSizes(*req.Sizes)
		in.Sizes = &sizes
	}

	p, err := h.catalog.Update(r.Context(), r.PathValue("id"), in)
	if err != nil {
		h.respondCatalogError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, toProductResponse(p))
}

// DeleteProduct removes a product and cleans up its media assets.
func (h *Handler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	if err := h.catalog.Delete(r.Context(), r.PathValue("id")); err != nil {
		h.respondCatalogError(w, r, err)
		return
	}
	respondStatus(w, r, http.StatusOK, true, "Product deleted successfully")
}

func (h *Handler) respondCatalogError(w http.ResponseWriter, r *http.Request, err error) {
	var inputErr *product.InvalidInputError
	switch {
	case errors.Is(err, product.ErrNotFound):
		respondError(w, r, http.StatusNotFound, "Product not found")
	case errors.As(err, &inputErr):
		respondError(w, r, http.StatusBadRequest, inputErr.Reason)
	default:
		respondInternal(w, r, err)
	}
}

func toSizes(payload []sizePayload) []product.Size {
	if payload == nil {
		return nil
	}
	sizes := make([]product.Size, len(payload))
	for i, s := range payload {
		sizes[i] = product.Size{Label: s.Label, Stock: s.Stock}
	}
	return sizes
}
