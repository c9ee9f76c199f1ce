// Package handler exposes the registry accounting core over HTTP. Paths and
// verbs mirror the public API: /api/list/ for the couple's own registry,
// /api/list/{id}/purchase/ for guests.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"giftlist/internal/registry/models"
	"giftlist/internal/transport/http/shared"
	dErrors "giftlist/pkg/domain-errors"
	"giftlist/pkg/requestcontext"
)

// Service is the accounting core surface the handler needs.
type Service interface {
	ListItems(ctx context.Context, ownerUserID int64) ([]*models.ItemView, error)
	AddItem(ctx context.Context, ownerUserID, productID int64) (*models.ItemView, error)
	RemoveItem(ctx context.Context, ownerUserID, itemID int64) (*models.ItemView, error)
	GuestView(ctx context.Context, guestUserID, giftListID int64) ([]*models.ItemView, error)
	ListPurchases(ctx context.Context, guestUserID, giftListID int64) ([]*models.Purchase, error)
	PurchaseItem(ctx context.Context, guestUserID, giftListID, itemID int64) (*models.Purchase, error)
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the registry routes. The caller wraps the router with the
// session middleware; everything here assumes an authenticated principal.
func (h *Handler) Register(r chi.Router) {
	r.HandleFunc("/api/list/", shared.Allow(map[string]http.HandlerFunc{
		http.MethodGet:  h.handleListItems,
		http.MethodPost: h.handleAddItem,
	}))
	r.HandleFunc("/api/list/{id}/", shared.Allow(map[string]http.HandlerFunc{
		http.MethodDelete: h.handleRemoveItem,
	}))
	r.HandleFunc("/api/list/{id}/purchase/", shared.Allow(map[string]http.HandlerFunc{
		http.MethodGet:  h.handleListPurchases,
		http.MethodPost: h.handlePurchaseItem,
	}))
	r.HandleFunc("/api/list/{id}/guest/", shared.Allow(map[string]http.HandlerFunc{
		http.MethodGet: h.handleGuestView,
	}))
}

func (h *Handler) handleListItems(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.ListItems(r.Context(), requestcontext.UserID(r.Context()))
	if err != nil {
		h.logAndWrite(w, r, "list items failed", err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, items)
}

func (h *Handler) handleAddItem(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ProductID *int64 `json:"product_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ProductID == nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "product_id must be an integer"))
		return
	}

	item, err := h.service.AddItem(r.Context(), requestcontext.UserID(r.Context()), *req.ProductID)
	if err != nil {
		h.logAndWrite(w, r, "add item failed", err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, item)
}

func (h *Handler) handleRemoveItem(w http.ResponseWriter, r *http.Request) {
	itemID, ok := pathID(w, r)
	if !ok {
		return
	}
	item, err := h.service.RemoveItem(r.Context(), requestcontext.UserID(r.Context()), itemID)
	if err != nil {
		h.logAndWrite(w, r, "remove item failed", err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, item)
}

func (h *Handler) handleGuestView(w http.ResponseWriter, r *http.Request) {
	giftListID, ok := pathID(w, r)
	if !ok {
		return
	}
	items, err := h.service.GuestView(r.Context(), requestcontext.UserID(r.Context()), giftListID)
	if err != nil {
		h.logAndWrite(w, r, "guest view failed", err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, items)
}

func (h *Handler) handleListPurchases(w http.ResponseWriter, r *http.Request) {
	giftListID, ok := pathID(w, r)
	if !ok {
		return
	}
	purchases, err := h.service.ListPurchases(r.Context(), requestcontext.UserID(r.Context()), giftListID)
	if err != nil {
		h.logAndWrite(w, r, "list purchases failed", err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, purchases)
}

func (h *Handler) handlePurchaseItem(w http.ResponseWriter, r *http.Request) {
	giftListID, ok := pathID(w, r)
	if !ok {
		return
	}
	var req struct {
		ItemID *int64 `json:"item_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ItemID == nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "item_id must be an integer"))
		return
	}

	purchase, err := h.service.PurchaseItem(r.Context(), requestcontext.UserID(r.Context()), giftListID, *req.ItemID)
	if err != nil {
		h.logAndWrite(w, r, "purchase failed", err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, purchase)
}

func (h *Handler) logAndWrite(w http.ResponseWriter, r *http.Request, msg string, err error) {
	if dErrors.CodeOf(err) == dErrors.CodeInternal {
		h.logger.ErrorContext(r.Context(), msg,
			"error", err,
			"request_id", requestcontext.RequestID(r.Context()),
		)
	} else {
		h.logger.WarnContext(r.Context(), msg,
			"error", err,
			"request_id", requestcontext.RequestID(r.Context()),
		)
	}
	shared.WriteError(w, err)
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "id must be an integer"))
		return 0, false
	}
	return id, true
}
