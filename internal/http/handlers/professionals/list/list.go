package list

import (
	"net/http"

	"github.com/Eka2r/Padayon/internal/http/response"
	"github.com/Eka2r/Padayon/internal/models"
)

// Directory lists professionals.
type Directory interface {
	List() []models.Professional
}

// Handler serves GET /professionals.
type Handler struct {
	directory Directory
}

// New creates a Handler.
func New(directory Directory) *Handler {
	return &Handler{directory: directory}
}

// ServeHTTP godoc
// @Summary Справочник специалистов
// @Tags Professionals
// @Produce  json
// @Success 200 {object} response.Response "Список специалистов"
// @Router /professionals [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	response.OK(w, r, h.directory.List())
}
