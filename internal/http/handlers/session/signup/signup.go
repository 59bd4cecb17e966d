package signup

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/Eka2r/Padayon/internal/http/handlers"
	"github.com/Eka2r/Padayon/internal/http/response"
	"github.com/Eka2r/Padayon/internal/models"
	"github.com/Eka2r/Padayon/internal/services/session"
)

// Service registers email identities.
type Service interface {
	SignUp(ctx context.Context, current models.Session, email, password string) session.Result
}

// Handler serves POST /session/signup.
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
// @Summary Регистрация по email
// @Description Создаёт учётную запись и переводит сессию на неё. При ошибке сессия не меняется.
// @Tags Session
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param request body models.CredentialsRequest true "Email и пароль"
// @Success 200 {object} response.Response "Новая сессия"
// @Failure 401 {object} response.Response "Ошибка регистрации и прежняя сессия"
// @Failure 422 {object} response.Response "Ошибка валидации"
// @Router /session/signup [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.session.signup"
	log := handlers.RequestLogger(h.log, op, r)

	current, ok := handlers.Session(w, r)
	if !ok {
		return
	}
	var req models.CredentialsRequest
	if !handlers.Decode(w, r, log, h.validate, &req) {
		return
	}

	res := h.service.SignUp(r.Context(), current, req.Email, req.Password)
	if res.Error != "" {
		log.Warn("sign-up rejected", slog.String("reason", res.Error))
		render.Status(r, http.StatusUnauthorized)
		render.JSON(w, r, response.ErrorWithData(res.Error, res))
		return
	}

	log.Info("signed up", slog.String("identity", res.Session.Identity.ID))
	response.OK(w, r, res)
}
