package report

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"giftlist/internal/transport/http/shared"
	"giftlist/pkg/requestcontext"
)

// Renderer turns a summary into document bytes. The pdf package satisfies it.
type Renderer func(title string, summary *Summary) ([]byte, error)

// Handler serves the owner's report as a PDF attachment.
type Handler struct {
	service *Service
	render  Renderer
	logger  *slog.Logger
}

func NewHandler(service *Service, render Renderer, logger *slog.Logger) *Handler {
	return &Handler{service: service, render: render, logger: logger}
}

// Register mounts the report route; the caller wraps it with the session
// middleware.
func (h *Handler) Register(r chi.Router) {
	r.HandleFunc("/api/report/", shared.Allow(map[string]http.HandlerFunc{
		http.MethodGet: h.handleReport,
	}))
}

func (h *Handler) handleReport(w http.ResponseWriter, r *http.Request) {
	summary, err := h.service.ForOwner(r.Context(), requestcontext.UserID(r.Context()))
	if err != nil {
		h.logger.WarnContext(r.Context(), "report failed",
			"error", err,
			"request_id", requestcontext.RequestID(r.Context()),
		)
		shared.WriteError(w, err)
		return
	}

	doc, err := h.render("Gift list report", summary)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "pdf rendering failed",
			"error", err,
			"request_id", requestcontext.RequestID(r.Context()),
		)
		shared.WriteError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename=report.pdf`)
	w.WriteHeader(http.StatusOK)
	w.Write(doc)
}
