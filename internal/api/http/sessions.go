package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mind-engage/cefr-assess/internal/grading"
	"github.com/mind-engage/cefr-assess/internal/session"
)

func CreateSessionHandler(sessions *session.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			SetID string `json:"set_id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		if req.SetID == "" {
			http.Error(w, "set_id required", http.StatusBadRequest)
			return
		}
		s, err := sessions.Create(r.Context(), req.SetID)
		if err != nil {
			httpError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, s)
	}
}

func GetSessionHandler(sessions *session.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, err := sessions.Get(r.Context(), chi.URLParam(r, "sessionID"))
		if err != nil {
			httpError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, s)
	}
}

func StartSessionHandler(sessions *session.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, err := sessions.Start(r.Context(), chi.URLParam(r, "sessionID"))
		if err != nil {
			httpError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, s)
	}
}

// PUT /sessions/{sessionID}/answers  [ {"question_id": "...", ...}, ... ]
func SaveAnswersHandler(sessions *session.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var recs []grading.Answer
		if err := json.NewDecoder(r.Body).Decode(&recs); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		s, err := sessions.Answer(r.Context(), chi.URLParam(r, "sessionID"), recs...)
		if err != nil {
			httpError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, s)
	}
}

func SubmitSessionHandler(sessions *session.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, err := sessions.Submit(r.Context(), chi.URLParam(r, "sessionID"))
		if err != nil {
			httpError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, s)
	}
}

func ResetSessionHandler(sessions *session.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, err := sessions.Reset(r.Context(), chi.URLParam(r, "sessionID"))
		if err != nil {
			httpError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, s)
	}
}
