// Package speech turns prompt text into playable audio.
package speech

import (
	"context"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/time/rate"
)

var (
	// ErrSynthesis wraps every upstream failure. It is never retried.
	ErrSynthesis = errors.New("speech synthesis failed")
	ErrEmptyText = errors.New("text is required")
)

// Synthesizer returns raw PCM in the given format.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string) ([]byte, error)
	Format() Format
}

type Service struct {
	synth   Synthesizer
	limiter *rate.Limiter
}

type Option func(*Service)

// WithRateLimit caps upstream calls per second; burst lets short spikes through.
// A non-positive rate means unlimited. Burst is at least 1, otherwise no call
// could ever acquire a token.
func WithRateLimit(perSecond float64, burst int) Option {
	return func(s *Service) {
		limit := rate.Limit(perSecond)
		if perSecond <= 0 {
			limit = rate.Inf
		}
		s.limiter = rate.NewLimiter(limit, max(burst, 1))
	}
}

func NewService(synth Synthesizer, opts ...Option) *Service {
	s := &Service{synth: synth, limiter: rate.NewLimiter(rate.Inf, 0)}
	for _, o := range opts {
		o(s)
	}
	return s
}

// WAV synthesizes text and wraps the PCM in a WAV container.
func (s *Service) WAV(ctx context.Context, text string) ([]byte, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyText
	}
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, errors.Wrap(ErrSynthesis, err.Error())
	}
	pcm, err := s.synth.Synthesize(ctx, text)
	if err != nil {
		return nil, errors.Wrap(ErrSynthesis, err.Error())
	}
	if len(pcm) == 0 {
		return nil, errors.Wrap(ErrSynthesis, "no audio returned")
	}
	return EncodeWAV(pcm, s.synth.Format()), nil
}

// DataURI is WAV encoded as a data:audio/wav;base64 URI.
func (s *Service) DataURI(ctx context.Context, text string) (string, error) {
	wav, err := s.WAV(ctx, text)
	if err != nil {
		return "", err
	}
	return DataURI("audio/wav", wav), nil
}
