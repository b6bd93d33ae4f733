package utils

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/notesync/models"
)

func TestWriteJSON(t *testing.T) {
	tests := []struct {
		name   string
		data   any
		status int
		body   string
	}{
		{
			name:   "listing",
			data:   []models.FileEntry{{Name: "data.json", Size: 12}, {Name: "note-assets", IsDir: true}},
			status: http.StatusOK,
			body:   `[{"name":"data.json","isDir":false,"size":12},{"name":"note-assets","isDir":true}]`,
		},
		{
			name:   "empty listing",
			data:   []models.FileEntry{},
			status: http.StatusOK,
			body:   `[]`,
		},
		{
			name:   "nil",
			data:   nil,
			status: http.StatusOK,
			body:   `null`,
		},
		{
			name:   "custom status",
			data:   map[string]string{"error": "not found"},
			status: http.StatusNotFound,
			body:   `{"error":"not found"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()

			n, err := WriteJSON(w, tt.data, tt.status)

			require.NoError(t, err)
			assert.Equal(t, len(tt.body), n)
			assert.Equal(t, tt.status, w.Code)
			assert.JSONEq(t, tt.body, w.Body.String())
			assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
			assert.Equal(t, strconv.Itoa(len(tt.body)), w.Header().Get("Content-Length"))
			assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))
		})
	}
}

func TestWriteJSON_Unencodable(t *testing.T) {
	w := httptest.NewRecorder()

	n, err := WriteJSON(w, make(chan int), http.StatusOK)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "encode response")
	assert.Zero(t, n)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
