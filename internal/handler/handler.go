package handler

import (
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/modesta/storefront-api/internal/domain/auth"
	"github.com/modesta/storefront-api/internal/domain/media"
	"github.com/modesta/storefront-api/internal/domain/order"
	"github.com/modesta/storefront-api/internal/domain/product"
)

// Config holds non-dependency configuration for the Handler.
type Config struct {
	// UploadFolder groups uploaded assets on the media host.
	UploadFolder string
	// MaxUploadBytes caps the accepted multipart upload size.
	MaxUploadBytes int64
	// SecureCookies marks the admin session cookie as Secure.
	SecureCookies bool
}

// Handler serves the storefront API, delegating business logic to the
// injected domain services.
type Handler struct {
	cfg      Config
	catalog  *product.Service
	orders   *order.Service
	auth     *auth.Service
	media    media.Store
	validate *validator.Validate
}

// New constructs a Handler with the required domain dependencies.
func New(
	cfg Config,
	catalog *product.Service,
	orders *order.Service,
	authSvc *auth.Service,
	mediaStore media.Store,
) *Handler {
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 100 << 20
	}
	return &Handler{
		cfg:      cfg,
		catalog:  catalog,
		orders:   orders,
		auth:     authSvc,
		media:    mediaStore,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// Routes registers all API routes on the given mux.
func (h *Handler) Routes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/orders", h.PlaceOrder)

	mux.HandleFunc("GET /api/products", h.ListProducts)
	mux.HandleFunc("GET /api/products/{id}", h.GetProduct)
	mux.HandleFunc("POST /api/products", h.requireAdmin(h.CreateProduct))
	mux.HandleFunc("PUT /api/products/{id}", h.requireAdmin(h.UpdateProduct))
	mux.HandleFunc("DELETE /api/products/{id}", h.requireAdmin(h.DeleteProduct))

	mux.HandleFunc("POST /api/admin/login", h.Login)
	mux.HandleFunc("POST /api/admin/logout", h.Logout)

	mux.HandleFunc("POST /api/upload", h.requireAdmin(h.UploadMedia))
}
