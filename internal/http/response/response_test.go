package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-playground/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidationError(t *testing.T) {
	type req struct {
		Email   string `validate:"required,email"`
		Content string `validate:"max=3"`
		Count   int    `validate:"gte=0"`
	}

	err := validator.New().Struct(req{Email: "nope", Content: "long", Count: -1})
	require.Error(t, err)

	resp := ValidationError(err.(validator.ValidationErrors))

	assert.Equal(t, StatusError, resp.Status)
	assert.Equal(t, "field Email must be a valid email, field Content must be at most 3 characters, field Count must be 0 or greater", resp.Error)
}

func TestFail(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	Fail(rec, req, http.StatusForbidden, "nope")

	assert.Equal(t, http.StatusForbidden, rec.Code)
	var got map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	assert.Equal(t, "Error", got["status"])
	assert.Equal(t, "nope", got["error"])
}

func TestOK(t *testing.T) {
	rec := httptest.NewRecorder()
	OK(rec, httptest.NewRequest(http.MethodGet, "/", nil), map[string]int{"n": 1})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"OK","data":{"n":1}}`, rec.Body.String())
}
