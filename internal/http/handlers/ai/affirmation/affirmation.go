package affirmation

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

// Service suggests affirmations for drafts.
type Service interface {
	Affirmation(ctx context.Context, sess models.Session, draft string) (suggestion.Suggestion, error)
}

// Handler serves POST /ai/affirmation.
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
// @Summary Аффирмация к черновику поста
// @Description Только для premium. Пустой черновик возвращает подсказку без обращения к модели.
// @Tags AI
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param request body models.AffirmationRequest true "Черновик поста"
// @Success 200 {object} response.Response "Предложенный текст"
// @Failure 401 {object} response.ErrorResponse "Нет сессии"
// @Failure 403 {object} response.ErrorResponse "Нужен premium"
// @Router /ai/affirmation [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.ai.affirmation"
	log := handlers.RequestLogger(h.log, op, r)

	sess, ok := handlers.Session(w, r)
	if !ok {
		return
	}
	var req models.AffirmationRequest
	if !handlers.Decode(w, r, log, h.validate, &req) {
		return
	}

	s, err := h.service.Affirmation(r.Context(), sess, req.Draft)
	if err != nil {
		handlers.Fail(w, r, log, "affirmation refused", err)
		return
	}
	response.OK(w, r, s)
}
