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

// Service publishes posts.
type Service interface {
	CreatePost(ctx context.Context, sess models.Session, content string, anonymous bool) (*models.Post, error)
}

// Handler serves POST /posts.
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
// @Summary Опубликовать пост на Freedom Wall
// @Description Пустой текст отклоняется до записи. Анонимный пост подписывается "Anonymous".
// @Tags Posts
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param request body models.CreatePostRequest true "Текст и флаг анонимности"
// @Success 201 {object} response.Response "Созданный пост"
// @Failure 400 {object} response.ErrorResponse "Пустой текст"
// @Failure 422 {object} response.Response "Ошибка валидации"
// @Failure 502 {object} response.ErrorResponse "Ошибка хранилища"
// @Router /posts [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.posts.create"
	log := handlers.RequestLogger(h.log, op, r)

	sess, ok := handlers.Session(w, r)
	if !ok {
		return
	}
	var req models.CreatePostRequest
	if !handlers.Decode(w, r, log, h.validate, &req) {
		return
	}

	post, err := h.service.CreatePost(r.Context(), sess, req.Content, req.Anonymous)
	if err != nil {
		handlers.Fail(w, r, log, "failed to create post", err)
		return
	}

	log.Info("post created", slog.String("post_id", post.ID))
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, response.StatusOKWithData(post))
}
