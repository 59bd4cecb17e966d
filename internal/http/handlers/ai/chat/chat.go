package chat

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator"

	"github.com/Eka2r/Padayon/internal/http/handlers"
	"github.com/Eka2r/Padayon/internal/http/response"
	"github.com/Eka2r/Padayon/internal/models"
	"github.com/Eka2r/Padayon/internal/services/suggestion"
)

// Service answers chat turns.
type Service interface {
	Chat(ctx context.Context, sess models.Session, text string) (suggestion.Reply, error)
}

// Handler serves POST /ai/chat.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// New creates a Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Сообщение AI-собеседнику
// @Description Ответ добавляется в историю. Сбой модели даёт фиксированный ответ с fallback=true, а не ошибку.
// @Tags AI
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param request body models.ChatRequest true "Текст сообщения"
// @Success 200 {object} response.Response "Ответ и обновлённая история"
// @Failure 401 {object} response.ErrorResponse "Нет сессии"
// @Failure 422 {object} response.Response "Ошибка валидации"
// @Router /ai/chat [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.ai.chat"
	log := handlers.RequestLogger(h.log, op, r)

	sess, ok := handlers.Session(w, r)
	if !ok {
		return
	}
	var req models.ChatRequest
	if !handlers.Decode(w, r, log, h.validate, &req) {
		return
	}

	reply, err := h.service.Chat(r.Context(), sess, req.Text)
	if err != nil {
		handlers.Fail(w, r, log, "chat failed", err)
		return
	}

	log.Info("chat answered", slog.Bool("fallback", reply.Fallback), slog.Int("turns", len(reply.History)))
	response.OK(w, r, reply)
}
