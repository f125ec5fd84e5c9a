package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/pkg/errors"

	"github.com/mind-engage/cefr-assess/internal/speech"
)

type Speaker interface {
	DataURI(ctx context.Context, text string) (string, error)
}

// SpeechHandler reports each outcome ("ok", "bad_request", "error") to observe.
func SpeechHandler(sp Speaker, observe func(outcome string)) http.HandlerFunc {
	if observe == nil {
		observe = func(string) {}
	}
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Text string `json:"text"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			observe("bad_request")
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		uri, err := sp.DataURI(r.Context(), req.Text)
		if err != nil {
			if errors.Is(err, speech.ErrEmptyText) {
				observe("bad_request")
			} else {
				observe("error")
			}
			httpError(w, err)
			return
		}
		observe("ok")
		writeJSON(w, http.StatusOK, map[string]string{"audio_data_uri": uri})
	}
}
