package navigate_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Eka2r/Padayon/internal/http/handlers/view/current"
	"github.com/Eka2r/Padayon/internal/http/handlers/view/navigate"
	"github.com/Eka2r/Padayon/internal/http/middlewarectx"
	"github.com/Eka2r/Padayon/internal/models"
	"github.com/Eka2r/Padayon/internal/view"
)

func TestNavigateThenCurrent(t *testing.T) {
	catalog, err := view.LoadCatalog()
	require.NoError(t, err)
	router := view.NewRouter(catalog, "calm", "en")
	sess := models.NewSession(models.Identity{ID: "anon-1", Anonymous: true}, "tok")
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	do := func(t *testing.T, h http.Handler, method, body string) (int, map[string]any) {
		t.Helper()
		req := httptest.NewRequest(method, "/view", bytes.NewBufferString(body))
		req = req.WithContext(middlewarectx.WithSession(req.Context(), sess))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		var got map[string]any
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
		return rec.Code, got
	}

	code, got := do(t, current.New(router), http.MethodGet, "")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "home", got["data"].(map[string]any)["page"])

	tests := []struct {
		name       string
		body       string
		wantStatus int
	}{
		{name: "freedom wall", body: `{"page":"freedom-wall"}`, wantStatus: http.StatusOK},
		{name: "unknown page", body: `{"page":"settings"}`, wantStatus: http.StatusBadRequest},
		{name: "missing page", body: `{}`, wantStatus: http.StatusUnprocessableEntity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, _ := do(t, navigate.New(log, router), http.MethodPut, tt.body)
			assert.Equal(t, tt.wantStatus, code)
		})
	}

	_, got = do(t, current.New(router), http.MethodGet, "")
	screen := got["data"].(map[string]any)
	assert.Equal(t, "freedom-wall", screen["page"], "failed navigations keep the page")
	assert.Equal(t, "freedom_wall_posts", screen["collection"])
}
