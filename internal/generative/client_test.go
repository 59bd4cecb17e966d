package generative

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Eka2r/Padayon/internal/models"
)

func TestGenerateContent_Success(t *testing.T) {
	var got generateRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/models/gemini-test:generateContent", r.URL.Path)
		assert.Equal(t, "k3y", r.URL.Query().Get("key"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"role":"model","parts":[{"text":"Breathe."},{"text":"ignored"}]}}]}`))
	}))
	defer server.Close()

	c := New("k3y").WithBaseURL(server.URL + "/").WithModel("gemini-test")
	turns := []models.ChatTurn{{Role: models.RoleUser, Text: "hi"}, {Role: models.RoleModel, Text: "hello"}, {Role: models.RoleUser, Text: "help"}}

	text, err := c.GenerateContent(context.Background(), FromTurns(turns))

	require.NoError(t, err)
	assert.Equal(t, "Breathe.", text)
	require.Len(t, got.Contents, 3)
	assert.Equal(t, "model", got.Contents[1].Role)
	assert.Equal(t, "help", got.Contents[2].Parts[0].Text)
}

func TestGenerateContent_Malformed(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{name: "no candidates", status: http.StatusOK, body: `{"candidates":[]}`, wantErr: ErrEmptyResponse},
		{name: "no parts", status: http.StatusOK, body: `{"candidates":[{"content":{"parts":[]}}]}`, wantErr: ErrEmptyResponse},
		{name: "not json", status: http.StatusOK, body: `<html>`, wantErr: ErrMalformedResponse},
		{name: "error status", status: http.StatusBadRequest, body: `{"error":{"message":"bad key"}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			_, err := New("k").WithBaseURL(server.URL).GenerateContent(context.Background(), nil)

			require.Error(t, err)
			assert.True(t, Malformed(err))
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				var statusErr *StatusError
				require.True(t, errors.As(err, &statusErr))
				assert.Equal(t, tt.status, statusErr.Status)
			}
		})
	}
}

func TestGenerateContent_TransportFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer server.Close()

	_, err := New("k").WithBaseURL(server.URL).WithTimeout(20*time.Millisecond).GenerateContent(context.Background(), nil)

	require.Error(t, err)
	assert.False(t, Malformed(err))
}

func TestGenerateContent_ContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New("k").WithBaseURL("http://127.0.0.1:1").GenerateContent(ctx, nil)

	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, Malformed(err))
}
