package content

import (
	"sort"

	"github.com/mind-engage/cefr-assess/internal/grading"
)

// Kind is what a set is used for.
type Kind string

const (
	KindPlacement Kind = "placement" // quick assessment, bands are CEFR levels
	KindLesson    Kind = "lesson"    // practice block inside a grammar/vocabulary lesson
	KindQuiz      Kind = "quiz"      // literary-work comprehension quiz
	KindPractice  Kind = "practice"  // level practice / final tests
)

// Set is a named, ordered collection of questions with its band table.
type Set struct {
	ID           string              `json:"id"`
	Title        string              `json:"title"`
	Kind         Kind                `json:"kind"`
	Level        string              `json:"level,omitempty"`
	Description  string              `json:"description,omitempty"`
	TimeLimitSec int                 `json:"time_limit_sec,omitempty"` // enforced deadline
	PassPercent  int                 `json:"pass_percent,omitempty"`
	Bands        []grading.LevelBand `json:"bands,omitempty"`
	Questions    []grading.Question  `json:"questions"`

	// EstimatedMinutes is shown to learners only; it never ends a session.
	EstimatedMinutes int `json:"estimated_minutes,omitempty"`

	CreatedAt int64 `json:"created_at,omitempty"`
}

// Summary is the listing view of a set.
type Summary struct {
	ID               string `json:"id"`
	Title            string `json:"title"`
	Kind             Kind   `json:"kind"`
	Level            string `json:"level,omitempty"`
	QuestionCount    int    `json:"question_count"`
	TimeLimitSec     int    `json:"time_limit_sec,omitempty"`
	EstimatedMinutes int    `json:"estimated_minutes,omitempty"`
}

func (s Set) Summary() Summary {
	return Summary{
		ID:               s.ID,
		Title:            s.Title,
		Kind:             s.Kind,
		Level:            s.Level,
		QuestionCount:    len(s.Questions),
		TimeLimitSec:     s.TimeLimitSec,
		EstimatedMinutes: s.EstimatedMinutes,
	}
}

// Question returns the question with the given id.
func (s Set) Question(id string) (grading.Question, bool) {
	for _, q := range s.Questions {
		if q.ID == id {
			return q, true
		}
	}
	return grading.Question{}, false
}

// applyDefaults installs the lesson feedback table on sets authored without
// bands. Placement sets must bring their own.
func (s *Set) applyDefaults() {
	if len(s.Bands) == 0 && s.Kind != KindPlacement && len(s.Questions) > 0 {
		s.Bands = grading.LessonBands(len(s.Questions))
	}
}

// LearnerView strips answer keys so the set can be served to learners.
// Matching pairs are replaced by their lefts and an alphabetized list of rights.
func (s Set) LearnerView() Set {
	out := s
	out.Questions = make([]grading.Question, len(s.Questions))
	for i, q := range s.Questions {
		switch {
		case q.MultipleChoice != nil:
			mc := *q.MultipleChoice
			mc.Answer = nil
			q.MultipleChoice = &mc
		case q.FreeText != nil:
			q.FreeText = &grading.FreeText{Placeholder: q.FreeText.Placeholder}
		case q.Matching != nil:
			m := grading.Matching{}
			for _, p := range q.Matching.Pairs {
				m.Lefts = append(m.Lefts, p.Left)
				m.Rights = append(m.Rights, p.Right)
			}
			sort.Strings(m.Rights)
			q.Matching = &m
		}
		q.Explanation = ""
		out.Questions[i] = q
	}
	return out
}
