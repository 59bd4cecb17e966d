package starter

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/Eka2r/Padayon/internal/http/handlers"
	"github.com/Eka2r/Padayon/internal/http/response"
	"github.com/Eka2r/Padayon/internal/models"
	"github.com/Eka2r/Padayon/internal/services/suggestion"
)

// Service generates conversation starters.
type Service interface {
	ConversationStarter(ctx context.Context, sess models.Session) (suggestion.Suggestion, error)
}

// Handler serves POST /ai/starter.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New creates a Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Тема для разговора в сообществе
// @Description Только для premium. Текст возвращается как черновик и никогда не отправляется сам.
// @Tags AI
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} response.Response "Черновик вопроса"
// @Failure 401 {object} response.ErrorResponse "Нет сессии"
// @Failure 403 {object} response.ErrorResponse "Нужен premium"
// @Router /ai/starter [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.ai.starter"
	log := handlers.RequestLogger(h.log, op, r)

	sess, ok := handlers.Session(w, r)
	if !ok {
		return
	}
	s, err := h.service.ConversationStarter(r.Context(), sess)
	if err != nil {
		handlers.Fail(w, r, log, "conversation starter refused", err)
		return
	}
	response.OK(w, r, s)
}
