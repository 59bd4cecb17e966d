package get

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"

	"github.com/Eka2r/Padayon/internal/http/handlers"
	"github.com/Eka2r/Padayon/internal/http/response"
	"github.com/Eka2r/Padayon/internal/models"
	"github.com/Eka2r/Padayon/internal/services/directory"
)

// Directory finds one professional.
type Directory interface {
	Get(id int) (models.Professional, error)
}

// Handler serves GET /professionals/{id}.
type Handler struct {
	log       *slog.Logger
	directory Directory
}

// New creates a Handler.
func New(log *slog.Logger, directory Directory) *Handler {
	return &Handler{log: log, directory: directory}
}

// ServeHTTP godoc
// @Summary Карточка специалиста
// @Tags Professionals
// @Produce  json
// @Param id path int true "ID специалиста"
// @Success 200 {object} response.Response "Специалист"
// @Failure 400 {object} response.ErrorResponse "Некорректный id"
// @Failure 404 {object} response.ErrorResponse "Не найден"
// @Router /professionals/{id} [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.professionals.get"
	log := handlers.RequestLogger(h.log, op, r)

	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		log.Warn("invalid professional id", slog.String("id", chi.URLParam(r, "id")))
		response.Fail(w, r, http.StatusBadRequest, "invalid id")
		return
	}
	p, err := h.directory.Get(id)
	if errors.Is(err, directory.ErrNotFound) {
		response.Fail(w, r, http.StatusNotFound, "not found")
		return
	}
	if err != nil {
		log.Error("failed to get professional", slog.Int("id", id))
		response.Fail(w, r, http.StatusInternalServerError, "internal error")
		return
	}
	response.OK(w, r, p)
}
