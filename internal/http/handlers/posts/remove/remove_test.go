package remove

import (
	"bytes"
	"context"
	"fmt"
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
	"github.com/Eka2r/Padayon/internal/services/mutation"
)

type ServiceMock struct {
	mock.Mock
}

func (m *ServiceMock) DeletePost(ctx context.Context, sess models.Session, postID, authorID string) error {
	return m.Called(ctx, sess, postID, authorID).Error(0)
}

func TestRemoveHandler_ServeHTTP(t *testing.T) {
	sess := models.NewSession(models.Identity{ID: "uid-1", Email: "user@x.com"}, "t")

	tests := []struct {
		name       string
		body       string
		mockErr    error
		callsSvc   bool
		wantStatus int
	}{
		{name: "deleted", body: `{"authorId":"uid-1"}`, callsSvc: true, wantStatus: http.StatusOK},
		{name: "not the author", body: `{"authorId":"other"}`, callsSvc: true, mockErr: fmt.Errorf("x: %w", mutation.ErrPermissionDenied), wantStatus: http.StatusForbidden},
		{name: "already gone", body: `{"authorId":"uid-1"}`, callsSvc: true, mockErr: fmt.Errorf("x: %w", mutation.ErrNotFound), wantStatus: http.StatusNotFound},
		{name: "missing author", body: `{}`, wantStatus: http.StatusUnprocessableEntity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(ServiceMock)
			if tt.callsSvc {
				svc.On("DeletePost", mock.Anything, sess, "p1", mock.Anything).Return(tt.mockErr).Once()
			}
			r := chi.NewRouter()
			r.Use(func(next http.Handler) http.Handler {
				return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
					next.ServeHTTP(w, req.WithContext(middlewarectx.WithSession(req.Context(), sess)))
				})
			})
			r.Method(http.MethodDelete, "/posts/{id}", New(slog.New(slog.NewTextHandler(io.Discard, nil)), svc))

			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/posts/p1", bytes.NewBufferString(tt.body)))

			assert.Equal(t, tt.wantStatus, rec.Code)
			svc.AssertExpectations(t)
		})
	}
}
