package http

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"

	"github.com/mind-engage/cefr-assess/internal/storage"
)

// presigningStore hands out HTTP URLs the way the minio driver does.
type presigningStore struct {
	keys map[string]bool
}

func (p presigningStore) Put(context.Context, string, io.Reader, string) (string, error) {
	return "", nil
}

func (p presigningStore) Get(_ context.Context, key string) (io.ReadCloser, error) {
	return io.NopCloser(strings.NewReader("streamed")), nil
}

func (p presigningStore) Exists(_ context.Context, key string) (bool, error) {
	return p.keys[key], nil
}

func (p presigningStore) SignedURL(_ context.Context, key string) (string, error) {
	return "https://blobs.example/cefr-audio/" + key + "?X-Amz-Signature=abc", nil
}

var _ storage.BlobStore = presigningStore{}

func TestMountAudioRedirectsToPresignedURL(t *testing.T) {
	r := chi.NewRouter()
	r.Route("/audio", func(ar chi.Router) {
		MountAudio(ar, presigningStore{keys: map[string]bool{"audio/aunt.mp3": true}})
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/audio/aunt.mp3", nil))
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "https://blobs.example/cefr-audio/audio/aunt.mp3?X-Amz-Signature=abc", rec.Header().Get("Location"))

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/audio/uncle.mp3", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
