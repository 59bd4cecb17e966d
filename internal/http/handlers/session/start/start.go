package start

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"github.com/Eka2r/Padayon/internal/http/handlers"
	"github.com/Eka2r/Padayon/internal/http/response"
	"github.com/Eka2r/Padayon/internal/lib/sl"
	"github.com/Eka2r/Padayon/internal/models"
	"github.com/Eka2r/Padayon/internal/services/session"
)

// Service opens sessions.
type Service interface {
	Start(ctx context.Context, continuationToken string) session.Result
}

// Handler serves POST /session.
type Handler struct {
	log          *slog.Logger
	service      Service
	initialToken string
}

// New creates a Handler. initialToken is redeemed when the body carries none.
func New(log *slog.Logger, service Service, initialToken string) *Handler {
	return &Handler{
		log:          log,
		service:      service,
		initialToken: initialToken,
	}
}

// ServeHTTP godoc
// @Summary Начать сессию
// @Description Погашает токен продолжения, а при его отсутствии или ошибке выдаёт новую анонимную идентичность.
// @Tags Session
// @Accept  json
// @Produce  json
// @Param request body models.StartRequest false "Токен продолжения"
// @Success 200 {object} response.Response "Сессия открыта"
// @Failure 400 {object} response.ErrorResponse "Некорректное тело запроса"
// @Failure 503 {object} response.ErrorResponse "Провайдер идентичности недоступен"
// @Router /session [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.session.start"
	log := handlers.RequestLogger(h.log, op, r)

	var req models.StartRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil && !errors.Is(err, io.EOF) {
		log.Error("failed to decode request body", sl.Err(err))
		response.Fail(w, r, http.StatusBadRequest, "invalid request body")
		return
	}
	token := req.Token
	if token == "" {
		token = h.initialToken
	}

	res := h.service.Start(r.Context(), token)
	if res.Session.Identity.ID == "" {
		log.Error("session start failed", slog.String("reason", res.Error))
		response.Fail(w, r, http.StatusServiceUnavailable, res.Error)
		return
	}

	log.Info("session started", slog.String("identity", res.Session.Identity.ID), slog.String("entitlement", string(res.Session.Entitlement)))
	response.OK(w, r, res)
}
