package remove

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

// Service deletes posts.
type Service interface {
	DeletePost(ctx context.Context, sess models.Session, postID, postAuthorID string) error
}

// Handler serves DELETE /posts/{id}.
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
// @Summary Удалить свой пост
// @Description Доступно только premium-пользователю, который является автором.
// @Tags Posts
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param id path string true "ID поста"
// @Param request body models.DeletePostRequest true "Автор поста, как его видит клиент"
// @Success 200 {object} response.Response "Пост удалён"
// @Failure 403 {object} response.ErrorResponse "Нет прав"
// @Failure 404 {object} response.ErrorResponse "Пост не найден"
// @Failure 502 {object} response.ErrorResponse "Ошибка хранилища"
// @Router /posts/{id} [delete]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.posts.remove"
	log := handlers.RequestLogger(h.log, op, r)

	sess, ok := handlers.Session(w, r)
	if !ok {
		return
	}
	postID := chi.URLParam(r, "id")
	var req models.DeletePostRequest
	if !handlers.Decode(w, r, log, h.validate, &req) {
		return
	}

	if err := h.service.DeletePost(r.Context(), sess, postID, req.AuthorID); err != nil {
		handlers.Fail(w, r, log, "failed to delete post", err)
		return
	}

	log.Info("post deleted", slog.String("post_id", postID))
	response.OK(w, r, map[string]any{"id": postID, "deleted": true})
}
