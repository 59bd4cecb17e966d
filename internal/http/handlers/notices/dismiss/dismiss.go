package dismiss

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-playground/validator"

	"github.com/Eka2r/Padayon/internal/http/handlers"
	"github.com/Eka2r/Padayon/internal/http/response"
	"github.com/Eka2r/Padayon/internal/lib/sl"
)

const kindRule = "required,oneof=auth mutation ai"

// Board clears notices.
type Board interface {
	Dismiss(ctx context.Context, identityID, kind string) error
}

// Handler serves DELETE /notices/{kind}.
type Handler struct {
	log      *slog.Logger
	board    Board
	validate *validator.Validate
}

// New creates a Handler.
func New(log *slog.Logger, board Board) *Handler {
	return &Handler{
		log:      log,
		board:    board,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Закрыть сообщение
// @Tags Notices
// @Produce  json
// @Security BearerAuth
// @Param kind path string true "auth, mutation или ai"
// @Success 200 {object} response.Response "Сообщение закрыто"
// @Failure 400 {object} response.ErrorResponse "Неизвестный вид"
// @Failure 401 {object} response.ErrorResponse "Нет сессии"
// @Router /notices/{kind} [delete]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.notices.dismiss"
	log := handlers.RequestLogger(h.log, op, r)

	sess, ok := handlers.Session(w, r)
	if !ok {
		return
	}
	kind := chi.URLParam(r, "kind")
	if err := h.validate.Var(kind, kindRule); err != nil {
		log.Warn("unknown notice kind", slog.String("kind", kind), sl.Err(err))
		response.Fail(w, r, http.StatusBadRequest, "unknown notice kind")
		return
	}
	if err := h.board.Dismiss(r.Context(), sess.Identity.ID, kind); err != nil {
		handlers.Fail(w, r, log, "failed to dismiss notice", err)
		return
	}
	response.OK(w, r, kind)
}
