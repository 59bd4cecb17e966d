package list

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/Eka2r/Padayon/internal/http/handlers"
	"github.com/Eka2r/Padayon/internal/http/response"
	"github.com/Eka2r/Padayon/internal/models"
)

// Board lists notices.
type Board interface {
	List(ctx context.Context, identityID string) ([]models.Notice, error)
}

// Handler serves GET /notices.
type Handler struct {
	log   *slog.Logger
	board Board
}

// New creates a Handler.
func New(log *slog.Logger, board Board) *Handler {
	return &Handler{log: log, board: board}
}

// ServeHTTP godoc
// @Summary Видимые сообщения
// @Description Ошибка авторизации держится до закрытия, остальные истекают сами.
// @Tags Notices
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} response.Response "Сообщения"
// @Failure 401 {object} response.ErrorResponse "Нет сессии"
// @Failure 502 {object} response.ErrorResponse "Хранилище недоступно"
// @Router /notices [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.notices.list"
	log := handlers.RequestLogger(h.log, op, r)

	sess, ok := handlers.Session(w, r)
	if !ok {
		return
	}
	list, err := h.board.List(r.Context(), sess.Identity.ID)
	if err != nil {
		handlers.Fail(w, r, log, "failed to list notices", err)
		return
	}
	response.OK(w, r, list)
}
