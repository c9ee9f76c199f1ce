package catalog

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"giftlist/internal/transport/http/shared"
)

// Handler serves the public catalog listings.
type Handler struct {
	service *Service
	logger  *slog.Logger
}

func NewHandler(service *Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the catalog routes. All three are public reads.
func (h *Handler) Register(r chi.Router) {
	r.HandleFunc("/api/currency/", shared.Allow(map[string]http.HandlerFunc{
		http.MethodGet: h.handleListCurrencies,
	}))
	r.HandleFunc("/api/brand/", shared.Allow(map[string]http.HandlerFunc{
		http.MethodGet: h.handleListBrands,
	}))
	r.HandleFunc("/api/product/", shared.Allow(map[string]http.HandlerFunc{
		http.MethodGet: h.handleListProducts,
	}))
}

func (h *Handler) handleListCurrencies(w http.ResponseWriter, r *http.Request) {
	currencies, err := h.service.ListCurrencies(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "list currencies failed", "error", err)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, currencies)
}

func (h *Handler) handleListBrands(w http.ResponseWriter, r *http.Request) {
	brands, err := h.service.ListBrands(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "list brands failed", "error", err)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, brands)
}

func (h *Handler) handleListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.service.ListProducts(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "list products failed", "error", err)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, products)
}
