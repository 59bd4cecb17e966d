package health

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/render"

	"github.com/Eka2r/Padayon/internal/http/response"
	"github.com/Eka2r/Padayon/internal/lib/sl"
)

const pingTimeout = 2 * time.Second

// Pinger is a dependency that can be checked.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Status is the health payload.
type Status struct {
	Status     string            `json:"status"`
	Version    string            `json:"version"`
	Components map[string]string `json:"components"`
}

// Handler serves GET /health.
type Handler struct {
	log        *slog.Logger
	version    string
	components map[string]Pinger
}

// New creates a Handler over named dependencies.
func New(log *slog.Logger, version string, components map[string]Pinger) *Handler {
	return &Handler{
		log:        log,
		version:    version,
		components: components,
	}
}

// ServeHTTP godoc
// @Summary Проверка работоспособности
// @Tags Health
// @Produce  json
// @Success 200 {object} response.Response "Все зависимости доступны"
// @Failure 503 {object} response.Response "Часть зависимостей недоступна"
// @Router /health [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.health"
	ctx, cancel := context.WithTimeout(r.Context(), pingTimeout)
	defer cancel()

	st := Status{Status: "ok", Version: h.version, Components: make(map[string]string, len(h.components))}
	for name, p := range h.components {
		if err := p.Ping(ctx); err != nil {
			h.log.Warn("health check failed", sl.Op(op), slog.String("component", name), sl.Err(err))
			st.Components[name] = "down"
			st.Status = "degraded"
			continue
		}
		st.Components[name] = "up"
	}

	if st.Status != "ok" {
		render.Status(r, http.StatusServiceUnavailable)
		render.JSON(w, r, response.ErrorWithData(st.Status, st))
		return
	}
	response.OK(w, r, st)
}
