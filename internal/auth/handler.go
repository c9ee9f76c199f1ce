package auth

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"giftlist/internal/transport/http/shared"
	dErrors "giftlist/pkg/domain-errors"
	"giftlist/pkg/requestcontext"
)

// Handler serves login and logout.
type Handler struct {
	service *Service
	logger  *slog.Logger
}

func NewHandler(service *Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the public login route on r; RegisterProtected mounts
// logout on the session-guarded router.
func (h *Handler) Register(r chi.Router) {
	r.HandleFunc("/api/auth/login", shared.Allow(map[string]http.HandlerFunc{
		http.MethodPost: h.handleLogin,
	}))
}

func (h *Handler) RegisterProtected(r chi.Router) {
	r.HandleFunc("/api/auth/logout", shared.Allow(map[string]http.HandlerFunc{
		http.MethodPost: h.handleLogout,
	}))
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Username == "" || req.Password == "" {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "username and password are required"))
		return
	}

	token, err := h.service.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		h.logger.WarnContext(r.Context(), "login failed",
			"username", req.Username,
			"request_id", requestcontext.RequestID(r.Context()),
		)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, map[string]string{"token": token})
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Logout(r.Context(), requestcontext.SessionID(r.Context())); err != nil {
		shared.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
