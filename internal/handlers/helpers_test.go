package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequireMethod(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/api/demos", nil)
	w := httptest.NewRecorder()
	assert.True(t, RequireMethod(w, r, "POST"))

	w = httptest.NewRecorder()
	assert.False(t, RequireMethod(w, r, "GET"))
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestWriteJSONAndError(t *testing.T) {
	w := httptest.NewRecorder()
	require.NoError(t, WriteJSON(w, http.StatusAccepted, map[string]string{"id": "demo_1"}))
	assert.Equal(t, http.StatusAccepted, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "demo_1", body["id"])

	w = httptest.NewRecorder()
	require.NoError(t, WriteError(w, http.StatusBadRequest, "bad input"))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "error", body["status"])
	assert.Equal(t, "bad input", body["error"])
}

func TestQueryInt(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/api/demos?limit=25&offset=bogus", nil)
	assert.Equal(t, 25, QueryInt(r, "limit", 50))
	assert.Equal(t, 0, QueryInt(r, "offset", 0))
	assert.Equal(t, 50, QueryInt(r, "missing", 50))
}

func TestExtractDemoID(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/api/demos/demo_1", "demo_1"},
		{"/api/demos/demo_1/logs", "demo_1"},
		{"/api/demos/demo_1/cancel", "demo_1"},
		{"/api/demos/", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ExtractDemoID(tt.path), "path %q", tt.path)
	}
}
