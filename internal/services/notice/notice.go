// Package notice хранит видимые пользователю сообщения: слот ошибок
// авторизации, который снимает сам пользователь, и временные сообщения об
// ошибках изменений и AI, которые истекают сами.
package notice

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/Eka2r/Padayon/internal/lib/sl"
	"github.com/Eka2r/Padayon/internal/models"
)

// Store is the key-value backend (Redis in production).
type Store interface {
	Get(ctx context.Context, key string, result any) (bool, error)
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
	Invalidate(ctx context.Context, keys ...string) error
	Keys(ctx context.Context, pattern string) ([]string, error)
}

// Board holds one slot per identity and kind. A newer notice replaces the
// older one of the same kind.
type Board struct {
	store Store
	log   *slog.Logger
}

// NewBoard creates a Board.
func NewBoard(store Store, log *slog.Logger) *Board {
	return &Board{store: store, log: log}
}

func key(identityID, kind string) string {
	return "notice:" + identityID + ":" + kind
}

// Post stores a notice. ttl=0 keeps it until dismissed.
func (b *Board) Post(ctx context.Context, identityID, kind, text string, ttl time.Duration) error {
	const op = "notice.Post"
	if identityID == "" {
		return nil
	}
	n := models.Notice{Kind: kind, Text: text}
	if err := b.store.Set(ctx, key(identityID, kind), n, ttl); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Flash stores a notice and only logs a failure. Used on error paths where
// the caller has nothing left to report to.
func (b *Board) Flash(ctx context.Context, identityID, kind, text string, ttl time.Duration) {
	if err := b.Post(ctx, identityID, kind, text, ttl); err != nil {
		b.log.Warn("failed to post notice", slog.String("kind", kind), sl.Err(err))
	}
}

// List returns live notices of an identity ordered by kind.
func (b *Board) List(ctx context.Context, identityID string) ([]models.Notice, error) {
	const op = "notice.List"
	keys, err := b.store.Keys(ctx, key(identityID, "*"))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	sort.Strings(keys)

	result := make([]models.Notice, 0, len(keys))
	for _, k := range keys {
		var n models.Notice
		found, err := b.store.Get(ctx, k, &n)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if found {
			result = append(result, n)
		}
	}
	return result, nil
}

// Dismiss clears one slot.
func (b *Board) Dismiss(ctx context.Context, identityID, kind string) error {
	const op = "notice.Dismiss"
	if strings.ContainsAny(kind, "*?[") {
		return fmt.Errorf("%s: invalid kind %q", op, kind)
	}
	if err := b.store.Invalidate(ctx, key(identityID, kind)); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
