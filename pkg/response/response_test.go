package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestSuccessOmitsEmptyFields(t *testing.T) {
	rec := httptest.NewRecorder()
	Success(rec, map[string]int{"likes": 1}, "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	body := decode(t, rec)
	assert.Equal(t, true, body["success"])
	assert.NotContains(t, body, "message")
	assert.NotContains(t, body, "error")
	assert.Equal(t, map[string]any{"likes": float64(1)}, body["data"])
}

func TestCreated(t *testing.T) {
	rec := httptest.NewRecorder()
	Created(rec, "x", "Prayer created")

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "Prayer created", decode(t, rec)["message"])
}

func TestFail(t *testing.T) {
	rec := httptest.NewRecorder()
	Fail(rec, http.StatusBadRequest, "Title is required", FieldError{Field: "title"})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, false, body["success"])
	assert.NotContains(t, body, "data")
	assert.Equal(t, map[string]any{"field": "title"}, body["error"])
}
