package dismiss

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/Eka2r/Padayon/internal/http/middlewarectx"
	"github.com/Eka2r/Padayon/internal/models"
)

type BoardMock struct {
	mock.Mock
}

func (m *BoardMock) Dismiss(ctx context.Context, identityID, kind string) error {
	return m.Called(ctx, identityID, kind).Error(0)
}

func TestDismissHandler_ServeHTTP(t *testing.T) {
	sess := models.NewSession(models.Identity{ID: "uid-1", Email: "user@x.com"}, "t")

	tests := []struct {
		name       string
		kind       string
		callsBoard bool
		wantStatus int
	}{
		{name: "auth slot", kind: "auth", callsBoard: true, wantStatus: http.StatusOK},
		{name: "ai slot", kind: "ai", callsBoard: true, wantStatus: http.StatusOK},
		{name: "pattern rejected", kind: "*", wantStatus: http.StatusBadRequest},
		{name: "unknown kind", kind: "payment", wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			board := new(BoardMock)
			if tt.callsBoard {
				board.On("Dismiss", mock.Anything, "uid-1", tt.kind).Return(nil).Once()
			}
			r := chi.NewRouter()
			r.Method(http.MethodDelete, "/notices/{kind}", http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
				New(slog.New(slog.NewTextHandler(io.Discard, nil)), board).
					ServeHTTP(w, req.WithContext(middlewarectx.WithSession(req.Context(), sess)))
			}))

			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/notices/"+tt.kind, nil))

			assert.Equal(t, tt.wantStatus, rec.Code)
			board.AssertExpectations(t)
		})
	}
}
