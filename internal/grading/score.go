package grading

import "github.com/pkg/errors"

var (
	// ErrInvalidState is returned when scoring an empty question list.
	ErrInvalidState = errors.New("invalid state: no questions to score")
	// ErrNoBand is returned when no band qualifies for a score; the band table
	// is missing its zero floor.
	ErrNoBand = errors.New("no level band qualifies for score")
)

// Score aggregates the graded results of one submission.
type Score struct {
	Total   int            `json:"total"`
	Correct int            `json:"correct"`
	Results []GradedResult `json:"results"`
}

// Percent is 100*Correct/Total, unrounded.
func (s Score) Percent() float64 {
	if s.Total == 0 {
		return 0
	}
	return 100 * float64(s.Correct) / float64(s.Total)
}

// Score grades every question in order against the answer map.
func (g *Grader) Score(questions []Question, answers map[string]Answer) (Score, error) {
	if len(questions) == 0 {
		return Score{}, ErrInvalidState
	}
	out := Score{Total: len(questions), Results: make([]GradedResult, 0, len(questions))}
	for _, q := range questions {
		a, ok := answers[q.ID]
		res := g.Grade(q, a, ok)
		if res.IsCorrect {
			out.Correct++
		}
		out.Results = append(out.Results, res)
	}
	return out, nil
}

// ScoreAll scores with the default grader.
func ScoreAll(questions []Question, answers map[string]Answer) (Score, error) {
	return defaultGrader.Score(questions, answers)
}
