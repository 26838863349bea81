package vision

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTestImage(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "shelf.jpg")
	require.NoError(t, os.WriteFile(path, []byte("fake-jpeg-bytes"), 0o644))
	return path
}

func TestStubDetector(t *testing.T) {
	detections, err := StubDetector{}.Detect(context.Background(), "any.jpg")
	require.NoError(t, err)
	assert.Empty(t, detections)
	assert.NotNil(t, detections)
}

func TestHTTPDetector(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/vision", r.URL.Path)

		// multipartで画像が送られてくることを確認
		require.NoError(t, r.ParseMultipartForm(1<<20))
		_, header, err := r.FormFile("file")
		require.NoError(t, err)
		assert.Equal(t, "shelf.jpg", header.Filename)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"detections":[{"label":"bottle","confidence":0.92,"box":[10,20,110,220]}]}`))
	}))
	t.Cleanup(server.Close)

	detector := NewHTTPDetector(server.URL)
	detections, err := detector.Detect(context.Background(), writeTestImage(t))
	require.NoError(t, err)

	require.Len(t, detections, 1)
	assert.Equal(t, "bottle", detections[0].Label)
	assert.InDelta(t, 0.92, detections[0].Confidence, 0.001)
	assert.Equal(t, [4]float64{10, 20, 110, 220}, detections[0].Box)
}

func TestHTTPDetector_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusInternalServerError)
	}))
	t.Cleanup(server.Close)

	detector := NewHTTPDetector(server.URL)
	_, err := detector.Detect(context.Background(), writeTestImage(t))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "model not loaded")
}

func TestHTTPDetector_EmptyDetections(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"detections":null}`))
	}))
	t.Cleanup(server.Close)

	detector := NewHTTPDetector(server.URL)
	detections, err := detector.Detect(context.Background(), writeTestImage(t))
	require.NoError(t, err)
	assert.NotNil(t, detections)
	assert.Empty(t, detections)
}
