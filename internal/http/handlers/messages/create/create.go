package create

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/Eka2r/Padayon/internal/http/handlers"
	"github.com/Eka2r/Padayon/internal/http/response"
	"github.com/Eka2r/Padayon/internal/models"
)

// Service sends community messages.
type Service interface {
	CreateMessage(ctx context.Context, sess models.Session, content string) (*models.Message, error)
}

// Handler serves POST /messages.
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
// @Summary Отправить сообщение в чат сообщества
// @Tags Messages
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param request body models.CreateMessageRequest true "Текст сообщения"
// @Success 201 {object} response.Response "Созданное сообщение"
// @Failure 400 {object} response.ErrorResponse "Пустой текст"
// @Failure 422 {object} response.Response "Ошибка валидации"
// @Failure 502 {object} response.ErrorResponse "Ошибка хранилища"
// @Router /messages [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.messages.create"
	log := handlers.RequestLogger(h.log, op, r)

	sess, ok := handlers.Session(w, r)
	if !ok {
		return
	}
	var req models.CreateMessageRequest
	if !handlers.Decode(w, r, log, h.validate, &req) {
		return
	}

	msg, err := h.service.CreateMessage(r.Context(), sess, req.Content)
	if err != nil {
		handlers.Fail(w, r, log, "failed to send message", err)
		return
	}

	log.Info("message sent", slog.String("message_id", msg.ID))
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, response.StatusOKWithData(msg))
}
