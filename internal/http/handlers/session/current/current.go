package current

import (
	"net/http"

	"github.com/Eka2r/Padayon/internal/http/handlers"
	"github.com/Eka2r/Padayon/internal/http/response"
)

// Handler serves GET /session.
type Handler struct{}

// New creates a Handler.
func New() *Handler {
	return &Handler{}
}

// ServeHTTP godoc
// @Summary Текущая сессия
// @Tags Session
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} response.Response "Сессия и уровень доступа"
// @Failure 401 {object} response.ErrorResponse "Нет сессии"
// @Router /session [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	sess, ok := handlers.Session(w, r)
	if !ok {
		return
	}
	response.OK(w, r, sess)
}
