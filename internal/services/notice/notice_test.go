package notice

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Eka2r/Padayon/internal/cache"
	"github.com/Eka2r/Padayon/internal/config"
	"github.com/Eka2r/Padayon/internal/models"
)

func setupBoard(t *testing.T) (*Board, *miniredis.Miniredis) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	c, err := cache.InitServer(context.Background(), config.RedisConnection{AddressRedis: mr.Addr()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	return NewBoard(c, slog.New(slog.NewTextHandler(io.Discard, nil))), mr
}

func TestBoard_TransientNoticeExpires(t *testing.T) {
	b, mr := setupBoard(t)
	ctx := context.Background()

	require.NoError(t, b.Post(ctx, "u1", models.NoticeMutation, "Could not create post.", 3*time.Second))

	list, err := b.List(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, []models.Notice{{Kind: models.NoticeMutation, Text: "Could not create post."}}, list)

	mr.FastForward(3 * time.Second)

	list, err = b.List(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestBoard_AuthNoticeStaysUntilDismissed(t *testing.T) {
	b, mr := setupBoard(t)
	ctx := context.Background()

	require.NoError(t, b.Post(ctx, "u1", models.NoticeAuth, "Invalid email or password.", 0))
	mr.FastForward(time.Hour)

	list, err := b.List(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, list, 1)

	require.NoError(t, b.Dismiss(ctx, "u1", models.NoticeAuth))
	list, err = b.List(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestBoard_NewerReplacesOlderAndIsolatesIdentities(t *testing.T) {
	b, _ := setupBoard(t)
	ctx := context.Background()

	b.Flash(ctx, "u1", models.NoticeAI, "first", time.Minute)
	b.Flash(ctx, "u1", models.NoticeAI, "second", time.Minute)
	b.Flash(ctx, "u2", models.NoticeAI, "other", time.Minute)
	b.Flash(ctx, "", models.NoticeAI, "nobody", time.Minute)

	list, err := b.List(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, []models.Notice{{Kind: models.NoticeAI, Text: "second"}}, list)
}

func TestBoard_DismissRejectsPatterns(t *testing.T) {
	b, _ := setupBoard(t)
	assert.Error(t, b.Dismiss(context.Background(), "u1", "*"))
}
