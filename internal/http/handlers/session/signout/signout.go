package signout

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/Eka2r/Padayon/internal/http/handlers"
	"github.com/Eka2r/Padayon/internal/http/response"
	"github.com/Eka2r/Padayon/internal/models"
	"github.com/Eka2r/Padayon/internal/services/session"
)

// Service ends sessions.
type Service interface {
	SignOut(ctx context.Context, current models.Session) session.Result
}

// Handler serves POST /session/signout.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New creates a Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Выход
// @Description Отзывает текущий токен и возвращает новую анонимную сессию.
// @Tags Session
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} response.Response "Анонимная сессия"
// @Failure 503 {object} response.ErrorResponse "Провайдер идентичности недоступен"
// @Router /session/signout [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.session.signout"
	log := handlers.RequestLogger(h.log, op, r)

	current, ok := handlers.Session(w, r)
	if !ok {
		return
	}

	res := h.service.SignOut(r.Context(), current)
	if res.Error != "" {
		log.Error("sign-out failed", slog.String("reason", res.Error))
		response.Fail(w, r, http.StatusServiceUnavailable, res.Error)
		return
	}
	log.Info("signed out", slog.String("previous", current.Identity.ID))
	response.OK(w, r, res)
}
