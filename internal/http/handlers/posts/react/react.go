package react

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-playground/validator"

	"github.com/Eka2r/Padayon/internal/http/handlers"
	"github.com/Eka2r/Padayon/internal/http/response"
	"github.com/Eka2r/Padayon/internal/models"
)

// Service records reactions.
type Service interface {
	AddReaction(ctx context.Context, sess models.Session, postID string, currentCount int) (int, error)
}

// Handler serves POST /posts/{id}/reactions.
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
// @Summary Поддержать пост
// @Description Записывает currentCount+1, где currentCount это значение, которое видел клиент.
// @Tags Posts
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param id path string true "ID поста"
// @Param request body models.ReactionRequest true "Наблюдаемое число реакций"
// @Success 200 {object} response.Response "Новое число реакций"
// @Failure 404 {object} response.ErrorResponse "Пост не найден"
// @Failure 422 {object} response.Response "Ошибка валидации"
// @Failure 502 {object} response.ErrorResponse "Ошибка хранилища"
// @Router /posts/{id}/reactions [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.posts.react"
	log := handlers.RequestLogger(h.log, op, r)

	sess, ok := handlers.Session(w, r)
	if !ok {
		return
	}
	postID := chi.URLParam(r, "id")
	var req models.ReactionRequest
	if !handlers.Decode(w, r, log, h.validate, &req) {
		return
	}

	count, err := h.service.AddReaction(r.Context(), sess, postID, req.CurrentCount)
	if err != nil {
		handlers.Fail(w, r, log, "failed to add reaction", err)
		return
	}

	log.Info("reaction added", slog.String("post_id", postID), slog.Int("count", count))
	response.OK(w, r, map[string]any{
		"id":            postID,
		"reactionCount": count,
	})
}
