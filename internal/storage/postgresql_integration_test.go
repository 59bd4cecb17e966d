package storage

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/Eka2r/Padayon/internal/migrations"
	"github.com/Eka2r/Padayon/internal/models"
)

func setupTestDB(t *testing.T) *Storage {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("padayon"),
		postgres.WithUsername("padayon"),
		postgres.WithPassword("padayon"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(time.Minute),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	s, err := New(dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	path, err := filepath.Abs("../../migrations")
	require.NoError(t, err)
	require.NoError(t, migrations.Run(s.DB, path))
	return s
}

func TestStorage_Integration(t *testing.T) {
	s := setupTestDB(t)
	ctx := context.Background()

	t.Run("users", func(t *testing.T) {
		u, err := s.RegisterUser(ctx, "user@x.com", "hash")
		require.NoError(t, err)
		assert.NotEmpty(t, u.UUID)

		_, err = s.RegisterUser(ctx, "user@x.com", "hash")
		assert.ErrorIs(t, err, ErrEmailTaken)

		got, err := s.GetUserByEmail(ctx, "user@x.com")
		require.NoError(t, err)
		assert.Equal(t, u.UUID, got.UUID)

		byID, err := s.GetUser(ctx, u.UUID)
		require.NoError(t, err)
		assert.Equal(t, "user@x.com", byID.Email)
	})

	t.Run("posts are namespaced by app id", func(t *testing.T) {
		p, err := s.CreatePost(ctx, models.NewPost{AppID: "app-a", Content: "hi", AuthorID: "u1", AuthorName: "Anonymous", IsAnonymous: true})
		require.NoError(t, err)
		assert.Equal(t, 0, p.ReactionCount)
		assert.False(t, p.CreatedAt.IsZero())

		other, err := s.ListPosts(ctx, "app-b")
		require.NoError(t, err)
		assert.Empty(t, other)

		_, err = s.GetPost(ctx, "app-b", p.ID)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("stale reaction writes lose increments", func(t *testing.T) {
		p, err := s.CreatePost(ctx, models.NewPost{AppID: "app-a", Content: "race", AuthorID: "u1", AuthorName: "user@x.com"})
		require.NoError(t, err)
		_, err = s.SetReactionCount(ctx, "app-a", p.ID, 5)
		require.NoError(t, err)

		var wg sync.WaitGroup
		for range 2 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				n, err := s.SetReactionCount(ctx, "app-a", p.ID, 5+1)
				assert.NoError(t, err)
				assert.Equal(t, 6, n)
			}()
		}
		wg.Wait()

		got, err := s.GetPost(ctx, "app-a", p.ID)
		require.NoError(t, err)
		assert.Equal(t, 6, got.ReactionCount)

		n, err := s.IncrementReactionCount(ctx, "app-a", p.ID)
		require.NoError(t, err)
		assert.Equal(t, 7, n)
	})

	t.Run("stale reaction count never lowers the stored one", func(t *testing.T) {
		p, err := s.CreatePost(ctx, models.NewPost{AppID: "app-a", Content: "steady", AuthorID: "u1", AuthorName: "user@x.com"})
		require.NoError(t, err)
		_, err = s.SetReactionCount(ctx, "app-a", p.ID, 5)
		require.NoError(t, err)

		n, err := s.SetReactionCount(ctx, "app-a", p.ID, 0+1)
		require.NoError(t, err)
		assert.Equal(t, 5, n)

		got, err := s.GetPost(ctx, "app-a", p.ID)
		require.NoError(t, err)
		assert.Equal(t, 5, got.ReactionCount)
	})

	t.Run("delete", func(t *testing.T) {
		p, err := s.CreatePost(ctx, models.NewPost{AppID: "app-a", Content: "bye", AuthorID: "u1", AuthorName: "user@x.com"})
		require.NoError(t, err)
		assert.ErrorIs(t, s.DeletePost(ctx, "app-a", p.ID, "u2"), ErrNotFound, "only the author's delete matches")
		_, err = s.GetPost(ctx, "app-a", p.ID)
		require.NoError(t, err)

		require.NoError(t, s.DeletePost(ctx, "app-a", p.ID, "u1"))
		assert.ErrorIs(t, s.DeletePost(ctx, "app-a", p.ID, "u1"), ErrNotFound)
	})

	t.Run("messages", func(t *testing.T) {
		m, err := s.CreateMessage(ctx, models.NewMessage{AppID: "app-a", Content: "hello", AuthorID: "u1", AuthorName: "Guest"})
		require.NoError(t, err)

		list, err := s.ListMessages(ctx, "app-a")
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, m.ID, list[0].ID)
	})
}
