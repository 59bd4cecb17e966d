package stream_test

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Eka2r/Padayon/internal/cache"
	"github.com/Eka2r/Padayon/internal/config"
	"github.com/Eka2r/Padayon/internal/http/handlers/stream"
	"github.com/Eka2r/Padayon/internal/http/middlewarectx"
	"github.com/Eka2r/Padayon/internal/live"
	"github.com/Eka2r/Padayon/internal/models"
	"github.com/Eka2r/Padayon/internal/view"
)

type memPosts struct {
	mu    sync.Mutex
	items []models.Post
	err   error
}

func (m *memPosts) load(_ context.Context) ([]models.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.Post(nil), m.items...), m.err
}

func (m *memPosts) set(items []models.Post, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items, m.err = items, err
}

type event struct {
	name string
	data string
}

func readEvent(t *testing.T, r *bufio.Reader) event {
	t.Helper()
	var ev event
	for {
		line, err := r.ReadString('\n')
		require.NoError(t, err)
		line = strings.TrimRight(line, "\n")
		switch {
		case line == "" && ev.name != "":
			return ev
		case strings.HasPrefix(line, "event: "):
			ev.name = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			ev.data = strings.TrimPrefix(line, "data: ")
		}
	}
}

func setup(t *testing.T, src *memPosts) (*live.Feed[models.Post], *httptest.Server) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	c, err := cache.InitServer(context.Background(), config.RedisConnection{AddressRedis: mr.Addr()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	feed := live.NewFeed("test-app", live.Posts, src.load, live.PostsNewestFirst, live.NewRedisTransport(c), c, log, nil)

	render := func(items []models.Post, now time.Time) any { return view.Posts(items, now) }
	h := stream.New[models.Post](log, feed, render, "Could not load posts.").WithHeartbeat(50 * time.Millisecond)

	sess := models.NewSession(models.Identity{ID: "anon-1", Anonymous: true}, "tok")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h.ServeHTTP(w, r.WithContext(middlewarectx.WithSession(r.Context(), sess)))
	}))
	t.Cleanup(srv.Close)
	return feed, srv
}

func open(t *testing.T, srv *httptest.Server) (*bufio.Reader, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL, nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))
	return bufio.NewReader(resp.Body), cancel
}

func decodeSnapshot(t *testing.T, data string) []string {
	var snap struct {
		Items []view.PostItem `json:"items"`
	}
	require.NoError(t, json.Unmarshal([]byte(data), &snap))
	ids := make([]string, len(snap.Items))
	for i, p := range snap.Items {
		ids[i] = p.ID
	}
	return ids
}

func TestStream_SnapshotsInOrder(t *testing.T) {
	base := time.Now().Add(-time.Hour)
	src := &memPosts{items: []models.Post{{ID: "old", CreatedAt: base}}}
	feed, srv := setup(t, src)

	body, cancel := open(t, srv)
	defer cancel()

	first := readEvent(t, body)
	assert.Equal(t, stream.EventSnapshot, first.name)
	assert.Equal(t, []string{"old"}, decodeSnapshot(t, first.data))
	assert.Contains(t, first.data, `"createdAgo":"1 hour ago"`)

	src.set([]models.Post{
		{ID: "old", CreatedAt: base},
		{ID: "new", CreatedAt: base.Add(30 * time.Minute)},
	}, nil)
	require.NoError(t, feed.Refresh(context.Background()))

	second := readEvent(t, body)
	assert.Equal(t, []string{"new", "old"}, decodeSnapshot(t, second.data))
}

func TestStream_LoadFailureSendsErrorEvent(t *testing.T) {
	src := &memPosts{err: errors.New("db down")}
	_, srv := setup(t, src)

	body, cancel := open(t, srv)
	defer cancel()

	ev := readEvent(t, body)
	assert.Equal(t, stream.EventError, ev.name)
	assert.JSONEq(t, `{"message":"Could not load posts."}`, ev.data)
}

func TestStream_RequiresSession(t *testing.T) {
	h := stream.New[models.Post](slog.New(slog.NewTextHandler(io.Discard, nil)), nil, nil, "")
	rec := httptest.NewRecorder()

	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/posts/stream", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
