package live

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/Eka2r/Padayon/internal/models"
)

// ErrMalformedEvent is returned by Project for undecodable bodies. Such
// deliveries are dropped rather than requeued.
var ErrMalformedEvent = errors.New("malformed event")

// Refresher is a collection that can rebroadcast itself.
type Refresher interface {
	Collection() string
	Refresh(ctx context.Context) error
}

// Hub routes refresh requests by collection name.
type Hub struct {
	mu    sync.RWMutex
	feeds map[string]Refresher
}

// NewHub registers feeds by their collection name.
func NewHub(feeds ...Refresher) *Hub {
	h := &Hub{feeds: make(map[string]Refresher, len(feeds))}
	for _, f := range feeds {
		h.feeds[f.Collection()] = f
	}
	return h
}

// Refresh rebroadcasts one collection.
func (h *Hub) Refresh(ctx context.Context, collection string) error {
	const op = "live.Hub.Refresh"
	h.mu.RLock()
	f, ok := h.feeds[collection]
	h.mu.RUnlock()
	if !ok {
		return fmt.Errorf("%s: unknown collection %q", op, collection)
	}
	return f.Refresh(ctx)
}

// Publish refreshes the collection named by the event. It lets the hub stand
// in for the broker when none is configured.
func (h *Hub) Publish(ctx context.Context, event models.Event) error {
	return h.Refresh(ctx, event.Collection)
}

// Project handles one encoded event delivered by the broker.
func (h *Hub) Project(ctx context.Context, body []byte) error {
	const op = "live.Hub.Project"
	var event models.Event
	if err := json.Unmarshal(body, &event); err != nil {
		return fmt.Errorf("%s: %w: %w", op, ErrMalformedEvent, err)
	}
	if err := h.Refresh(ctx, event.Collection); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
