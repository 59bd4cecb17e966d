package history

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/Eka2r/Padayon/internal/http/handlers"
	"github.com/Eka2r/Padayon/internal/http/response"
	"github.com/Eka2r/Padayon/internal/models"
)

// Service reads chat histories.
type Service interface {
	History(ctx context.Context, sess models.Session) ([]models.ChatTurn, error)
}

// Handler serves GET /ai/chat.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New creates a Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary История AI-чата
// @Tags AI
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} response.Response "Реплики по порядку"
// @Failure 401 {object} response.ErrorResponse "Нет сессии"
// @Failure 502 {object} response.ErrorResponse "Хранилище истории недоступно"
// @Router /ai/chat [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.ai.history"
	log := handlers.RequestLogger(h.log, op, r)

	sess, ok := handlers.Session(w, r)
	if !ok {
		return
	}
	turns, err := h.service.History(r.Context(), sess)
	if err != nil {
		handlers.Fail(w, r, log, "failed to load chat history", err)
		return
	}
	if turns == nil {
		turns = []models.ChatTurn{}
	}
	response.OK(w, r, turns)
}
