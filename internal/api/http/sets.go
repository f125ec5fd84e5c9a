package http

import (
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	auth "github.com/mind-engage/cefr-assess/internal/auth/middleware"
	"github.com/mind-engage/cefr-assess/internal/content"
	"github.com/mind-engage/cefr-assess/internal/grading"
)

const maxSetBytes = 1 << 20

func ListSetsHandler(store content.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sets, err := store.ListSets(r.Context())
		if err != nil {
			httpError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, sets)
	}
}

// GetSetHandler serves the learner view; answer keys never leave the server.
func GetSetHandler(store content.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, err := store.GetSet(r.Context(), chi.URLParam(r, "setID"))
		if err != nil {
			httpError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, s.LearnerView())
	}
}

// CreateSetHandler validates an authored set and stores it, replacing any set
// with the same id. The author's username is logged with the change.
func CreateSetHandler(store content.Store, comparators grading.Comparators, log *zap.Logger) http.HandlerFunc {
	if log == nil {
		log = zap.NewNop()
	}
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(io.LimitReader(r.Body, maxSetBytes+1))
		if err != nil {
			http.Error(w, "read body", http.StatusBadRequest)
			return
		}
		if len(body) > maxSetBytes {
			http.Error(w, "set too large", http.StatusRequestEntityTooLarge)
			return
		}
		s, err := content.Decode(body, comparators)
		if err != nil {
			httpError(w, err)
			return
		}
		if err := store.PutSet(r.Context(), s); err != nil {
			httpError(w, err)
			return
		}
		log.Info("set stored",
			zap.String("set", s.ID),
			zap.Int("questions", len(s.Questions)),
			zap.String("by", auth.SubjectFromContext(r.Context())),
		)
		writeJSON(w, http.StatusCreated, s.Summary())
	}
}
