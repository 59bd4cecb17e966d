package reset

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/Eka2r/Padayon/internal/http/handlers"
	"github.com/Eka2r/Padayon/internal/http/response"
	"github.com/Eka2r/Padayon/internal/models"
)

// Service clears chat histories.
type Service interface {
	ResetChat(ctx context.Context, sess models.Session) error
}

// Handler serves DELETE /ai/chat.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New creates a Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Очистить AI-чат
// @Tags AI
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} response.Response "История очищена"
// @Failure 401 {object} response.ErrorResponse "Нет сессии"
// @Failure 502 {object} response.ErrorResponse "Хранилище истории недоступно"
// @Router /ai/chat [delete]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.ai.reset"
	log := handlers.RequestLogger(h.log, op, r)

	sess, ok := handlers.Session(w, r)
	if !ok {
		return
	}
	if err := h.service.ResetChat(r.Context(), sess); err != nil {
		handlers.Fail(w, r, log, "failed to reset chat", err)
		return
	}
	log.Info("chat reset")
	response.OK(w, r, "chat cleared")
}
