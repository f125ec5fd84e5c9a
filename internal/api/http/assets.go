package http

import (
	"io"
	"net/http"
	"path"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/mind-engage/cefr-assess/internal/storage"
)

var audioTypes = map[string]string{
	".mp3": "audio/mpeg",
	".wav": "audio/wav",
}

// MountAudio serves pre-generated audio from the blob store. Stores that can
// presign HTTP URLs (minio) get a redirect; the rest are streamed.
func MountAudio(r chi.Router, bs storage.BlobStore) {
	// GET /audio/*   -> returns the blob at audio/<whatever follows /audio/>
	r.Get("/*", func(w http.ResponseWriter, r *http.Request) {
		name := strings.TrimPrefix(chi.URLParam(r, "*"), "/")
		ct, ok := audioTypes[path.Ext(name)]
		if !ok {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		key := "audio/" + name
		if redirectAudio(w, r, bs, key) {
			return
		}
		rc, err := bs.Get(r.Context(), key)
		if err != nil {
			httpError(w, err)
			return
		}
		defer rc.Close()
		w.Header().Set("Content-Type", ct)
		w.Header().Set("Cache-Control", "public, max-age=86400")
		_, _ = io.Copy(w, rc)
	})
}

func redirectAudio(w http.ResponseWriter, r *http.Request, bs storage.BlobStore, key string) bool {
	u, err := bs.SignedURL(r.Context(), key)
	if err != nil || !(strings.HasPrefix(u, "http://") || strings.HasPrefix(u, "https://")) {
		return false
	}
	ok, err := bs.Exists(r.Context(), key)
	if err != nil {
		httpError(w, err)
		return true
	}
	if !ok {
		http.Error(w, "not found", http.StatusNotFound)
		return true
	}
	http.Redirect(w, r, u, http.StatusFound)
	return true
}
