package current

import (
	"net/http"

	"github.com/Eka2r/Padayon/internal/http/handlers"
	"github.com/Eka2r/Padayon/internal/http/response"
	"github.com/Eka2r/Padayon/internal/models"
	"github.com/Eka2r/Padayon/internal/view"
)

// Router knows the current page of every identity.
type Router interface {
	Current(identityID string) view.Page
	Screen(sess models.Session, page view.Page) view.Screen
}

// Handler serves GET /view.
type Handler struct {
	router Router
}

// New creates a Handler.
func New(router Router) *Handler {
	return &Handler{router: router}
}

// ServeHTTP godoc
// @Summary Текущий экран
// @Description Страница по умолчанию home.
// @Tags View
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} response.Response "Описание экрана"
// @Failure 401 {object} response.ErrorResponse "Нет сессии"
// @Router /view [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	sess, ok := handlers.Session(w, r)
	if !ok {
		return
	}
	response.OK(w, r, h.router.Screen(sess, h.router.Current(sess.Identity.ID)))
}
