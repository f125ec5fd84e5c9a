package http

import (
	"net/http"

	"github.com/pkg/errors"

	"github.com/mind-engage/cefr-assess/internal/content"
	"github.com/mind-engage/cefr-assess/internal/session"
	"github.com/mind-engage/cefr-assess/internal/speech"
	"github.com/mind-engage/cefr-assess/internal/storage"
)

// statusOf maps domain errors to HTTP status codes.
func statusOf(err error) int {
	var ve *content.ValidationError
	switch {
	case errors.As(err, &ve),
		errors.Is(err, session.ErrInvalidTransition),
		errors.Is(err, session.ErrUnknownQuestion),
		errors.Is(err, session.ErrAnswerShape),
		errors.Is(err, speech.ErrEmptyText):
		return http.StatusBadRequest
	case errors.Is(err, content.ErrNotFound),
		errors.Is(err, session.ErrNotFound),
		errors.Is(err, storage.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, speech.ErrSynthesis):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func httpError(w http.ResponseWriter, err error) {
	code := statusOf(err)
	msg := err.Error()
	if code == http.StatusInternalServerError {
		msg = "internal error"
	}
	http.Error(w, msg, code)
}
