package navigate

import (
	"log/slog"
	"net/http"

	"github.com/go-playground/validator"

	"github.com/Eka2r/Padayon/internal/http/handlers"
	"github.com/Eka2r/Padayon/internal/http/response"
	"github.com/Eka2r/Padayon/internal/lib/sl"
	"github.com/Eka2r/Padayon/internal/models"
	"github.com/Eka2r/Padayon/internal/view"
)

// Router switches pages.
type Router interface {
	Navigate(identityID string, page view.Page)
	Screen(sess models.Session, page view.Page) view.Screen
}

// Handler serves PUT /view.
type Handler struct {
	log      *slog.Logger
	router   Router
	validate *validator.Validate
}

// New creates a Handler.
func New(log *slog.Logger, router Router) *Handler {
	return &Handler{
		log:      log,
		router:   router,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Перейти на страницу
// @Description Переход не затрагивает подписки и запросы.
// @Tags View
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param request body models.NavigateRequest true "Страница"
// @Success 200 {object} response.Response "Новый экран"
// @Failure 400 {object} response.ErrorResponse "Неизвестная страница"
// @Failure 422 {object} response.Response "Ошибка валидации"
// @Router /view [put]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.view.navigate"
	log := handlers.RequestLogger(h.log, op, r)

	sess, ok := handlers.Session(w, r)
	if !ok {
		return
	}
	var req models.NavigateRequest
	if !handlers.Decode(w, r, log, h.validate, &req) {
		return
	}
	page, err := view.ParsePage(req.Page)
	if err != nil {
		log.Warn("unknown page", sl.Err(err))
		response.Fail(w, r, http.StatusBadRequest, err.Error())
		return
	}

	h.router.Navigate(sess.Identity.ID, page)
	log.Debug("navigated", slog.String("page", string(page)))
	response.OK(w, r, h.router.Screen(sess, page))
}
