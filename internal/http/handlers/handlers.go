// Package handlers содержит общие для HTTP-обработчиков помощники: чтение и
// проверку тела запроса, извлечение сессии и сопоставление доменных ошибок с
// HTTP-статусами.
package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/Eka2r/Padayon/internal/http/middlewarectx"
	"github.com/Eka2r/Padayon/internal/http/response"
	"github.com/Eka2r/Padayon/internal/lib/sl"
	"github.com/Eka2r/Padayon/internal/models"
	"github.com/Eka2r/Padayon/internal/services/mutation"
	"github.com/Eka2r/Padayon/internal/services/suggestion"
)

// RequestLogger derives the per-request logger.
func RequestLogger(log *slog.Logger, op string, r *http.Request) *slog.Logger {
	return log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)
}

// Decode reads and validates a JSON body into req. On failure it writes the
// response and returns false.
func Decode(w http.ResponseWriter, r *http.Request, log *slog.Logger, validate *validator.Validate, req any) bool {
	if err := render.DecodeJSON(r.Body, req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		response.Fail(w, r, http.StatusBadRequest, "invalid request body")
		return false
	}
	if err := validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			log.Warn("validation failed", sl.Err(err))
			response.Invalid(w, r, verrs)
			return false
		}
		log.Error("validation failed", sl.Err(err))
		response.Fail(w, r, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

// Session returns the request session. It writes 401 and returns false when
// the route is not behind SessionMiddleware.
func Session(w http.ResponseWriter, r *http.Request) (models.Session, bool) {
	sess, ok := middlewarectx.SessionFrom(r.Context())
	if !ok {
		response.Fail(w, r, http.StatusUnauthorized, "session required")
		return models.Session{}, false
	}
	return sess, true
}

// Status maps a service error to a status code and a client message.
func Status(err error) (int, string) {
	switch {
	case errors.Is(err, mutation.ErrEmptyContent):
		return http.StatusBadRequest, "content is empty"
	case errors.Is(err, suggestion.ErrEmptyMessage):
		return http.StatusBadRequest, "message is empty"
	case errors.Is(err, mutation.ErrNotAuthenticated), errors.Is(err, suggestion.ErrNotAuthenticated):
		return http.StatusUnauthorized, "not authenticated"
	case errors.Is(err, mutation.ErrPermissionDenied):
		return http.StatusForbidden, "permission denied"
	case errors.Is(err, suggestion.ErrPremiumRequired):
		return http.StatusForbidden, "premium required"
	case errors.Is(err, mutation.ErrNotFound):
		return http.StatusNotFound, "not found"
	default:
		return http.StatusBadGateway, "upstream failure"
	}
}

// Fail logs err and writes the mapped error response.
func Fail(w http.ResponseWriter, r *http.Request, log *slog.Logger, msg string, err error) {
	status, text := Status(err)
	if status >= http.StatusInternalServerError {
		log.Error(msg, sl.Err(err))
	} else {
		log.Warn(msg, sl.Err(err))
	}
	response.Fail(w, r, status, text)
}
