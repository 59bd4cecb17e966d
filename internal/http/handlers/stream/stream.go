// Package stream отдаёт живые коллекции как Server-Sent Events. Каждый
// снимок коллекции уходит событием snapshot, ошибка загрузки событием error,
// которое действует до следующего снимка.
package stream

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/Eka2r/Padayon/internal/http/handlers"
	"github.com/Eka2r/Padayon/internal/http/response"
	"github.com/Eka2r/Padayon/internal/lib/sl"
	"github.com/Eka2r/Padayon/internal/live"
)

// DefaultHeartbeat is the comment ping interval keeping proxies from closing
// idle streams.
const DefaultHeartbeat = 15 * time.Second

// Event names.
const (
	EventSnapshot = "snapshot"
	EventError    = "error"
)

// Source opens live subscriptions of one collection.
type Source[T any] interface {
	Subscribe(ctx context.Context, sink func(live.State[T])) (*live.Subscription[T], error)
}

// Render turns the ordered documents into their wire form.
type Render[T any] func(items []T, now time.Time) any

// Snapshot is the data of a snapshot event.
type Snapshot struct {
	Version int64 `json:"version"`
	Items   any   `json:"items"`
}

// Failure is the data of an error event.
type Failure struct {
	Message string `json:"message"`
}

// Handler serves GET /{collection}/stream.
type Handler[T any] struct {
	log        *slog.Logger
	source     Source[T]
	render     Render[T]
	loadFailed string
	heartbeat  time.Duration
	now        func() time.Time
}

// New creates a Handler. loadFailed is the message of error events.
func New[T any](log *slog.Logger, source Source[T], render Render[T], loadFailed string) *Handler[T] {
	return &Handler[T]{
		log:        log,
		source:     source,
		render:     render,
		loadFailed: loadFailed,
		heartbeat:  DefaultHeartbeat,
		now:        time.Now,
	}
}

// WithHeartbeat overrides the ping interval.
func (h *Handler[T]) WithHeartbeat(d time.Duration) *Handler[T] {
	h.heartbeat = d
	return h
}

// ServeHTTP godoc
// @Summary Живая коллекция (SSE)
// @Description Поток событий snapshot с полным отсортированным списком и error при сбое загрузки.
// @Description Токен можно передать в параметре access_token.
// @Tags Live
// @Produce  text/event-stream
// @Security BearerAuth
// @Param access_token query string false "Токен сессии"
// @Success 200 {object} stream.Snapshot "Событие snapshot"
// @Failure 401 {object} response.ErrorResponse "Нет сессии"
// @Failure 502 {object} response.ErrorResponse "Подписка недоступна"
// @Router /posts/stream [get]
// @Router /messages/stream [get]
func (h *Handler[T]) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.stream"
	log := handlers.RequestLogger(h.log, op, r)

	if _, ok := handlers.Session(w, r); !ok {
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		log.Error("response writer does not support flushing")
		response.Fail(w, r, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	// Every snapshot is the whole collection, so only the latest pending
	// state matters. The sink has a single writer and never blocks.
	pending := make(chan live.State[T], 1)
	sink := func(st live.State[T]) {
		select {
		case <-pending:
		default:
		}
		pending <- st
	}

	sub, err := h.source.Subscribe(r.Context(), sink)
	if err != nil {
		log.Error("failed to subscribe", sl.Err(err))
		response.Fail(w, r, http.StatusBadGateway, "live stream unavailable")
		return
	}
	defer func() {
		if err := sub.Close(); err != nil {
			log.Warn("failed to close subscription", sl.Err(err))
		}
	}()

	// The server write timeout is meant for ordinary requests.
	_ = http.NewResponseController(w).SetWriteDeadline(time.Time{})

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()
	log.Info("stream opened")

	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			log.Info("stream closed by client")
			return
		case <-sub.Done():
			log.Warn("live subscription stopped")
			return
		case <-ticker.C:
			if _, err := fmt.Fprint(w, ": ping\n\n"); err != nil {
				return
			}
			flusher.Flush()
		case st := <-pending:
			if err := h.write(w, st); err != nil {
				log.Warn("failed to write event", sl.Err(err))
				return
			}
			flusher.Flush()
		}
	}
}

func (h *Handler[T]) write(w http.ResponseWriter, st live.State[T]) error {
	if st.Error != "" {
		return writeEvent(w, EventError, Failure{Message: h.loadFailed})
	}
	return writeEvent(w, EventSnapshot, Snapshot{Version: st.Version, Items: h.render(st.Items, h.now())})
}

func writeEvent(w http.ResponseWriter, name string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", name, payload)
	return err
}
