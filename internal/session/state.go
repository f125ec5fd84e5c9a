package session

import (
	"math"
	"time"

	"github.com/pkg/errors"

	"github.com/mind-engage/cefr-assess/internal/content"
	"github.com/mind-engage/cefr-assess/internal/grading"
)

type Phase string

const (
	PhaseIntro      Phase = "intro"
	PhaseInProgress Phase = "in_progress"
	PhaseCompleted  Phase = "completed"
)

var (
	ErrInvalidTransition = errors.New("invalid session transition")
	ErrUnknownQuestion   = errors.New("unknown question")
	ErrAnswerShape       = errors.New("answer does not match question kind")
	ErrNotFound          = errors.New("session not found")
)

// State is one learner's pass through a set. Times are unix seconds; zero
// means unset.
type State struct {
	ID      string                    `json:"id"`
	SetID   string                    `json:"set_id"`
	Phase   Phase                     `json:"phase"`
	Answers map[string]grading.Answer `json:"answers"`
	Report  *grading.Report           `json:"report,omitempty"`

	StartedAt        int64 `json:"started_at,omitempty"`
	SubmittedAt      int64 `json:"submitted_at,omitempty"`
	Deadline         int64 `json:"deadline,omitempty"`
	TimeSpentMinutes int   `json:"time_spent_minutes,omitempty"`
}

// New returns a session waiting on its intro screen.
func New(id, setID string) State {
	return State{ID: id, SetID: setID, Phase: PhaseIntro, Answers: map[string]grading.Answer{}}
}

// Start moves Intro to InProgress and arms the deadline when the set is timed.
func Start(s State, set content.Set, now time.Time) (State, error) {
	if s.Phase != PhaseIntro {
		return s, errors.Wrapf(ErrInvalidTransition, "start from %s", s.Phase)
	}
	s.Phase = PhaseInProgress
	s.Answers = map[string]grading.Answer{}
	s.StartedAt = now.Unix()
	s.Deadline = 0
	if set.TimeLimitSec > 0 {
		s.Deadline = now.Add(time.Duration(set.TimeLimitSec) * time.Second).Unix()
	}
	return s, nil
}

// Answer records answers, replacing earlier ones for the same questions. The
// batch is applied only if every record is valid.
func Answer(set content.Set, s State, recs ...grading.Answer) (State, error) {
	if s.Phase != PhaseInProgress {
		return s, errors.Wrapf(ErrInvalidTransition, "answer in %s", s.Phase)
	}
	for _, rec := range recs {
		q, ok := set.Question(rec.QuestionID)
		if !ok {
			return s, errors.Wrap(ErrUnknownQuestion, rec.QuestionID)
		}
		if !shapeFits(q.Kind, rec) {
			return s, errors.Wrapf(ErrAnswerShape, "%s is %s", q.ID, q.Kind)
		}
	}
	answers := make(map[string]grading.Answer, len(s.Answers)+len(recs))
	for k, v := range s.Answers {
		answers[k] = v
	}
	for _, rec := range recs {
		answers[rec.QuestionID] = rec
	}
	s.Answers = answers
	return s, nil
}

func shapeFits(k grading.Kind, a grading.Answer) bool {
	switch k {
	case grading.KindMultipleChoice:
		return a.Choice != nil && a.Text == "" && len(a.Pairs) == 0
	case grading.KindFreeText:
		return a.Choice == nil && len(a.Pairs) == 0
	case grading.KindMatching:
		return a.Choice == nil && a.Text == "" && len(a.Pairs) > 0
	}
	return false
}

// Submit grades the recorded answers and completes the session.
func Submit(set content.Set, s State, now time.Time, g *grading.Grader) (State, error) {
	if s.Phase != PhaseInProgress {
		return s, errors.Wrapf(ErrInvalidTransition, "submit from %s", s.Phase)
	}
	r, err := Evaluate(set, s.Answers, g)
	if err != nil {
		return s, err
	}
	s.Phase = PhaseCompleted
	s.Report = &r
	s.SubmittedAt = now.Unix()
	s.TimeSpentMinutes = int(math.Round(float64(s.SubmittedAt-s.StartedAt) / 60))
	return s, nil
}

// Evaluate runs score, classify and report over a set.
func Evaluate(set content.Set, answers map[string]grading.Answer, g *grading.Grader) (grading.Report, error) {
	sc, err := g.Score(set.Questions, answers)
	if err != nil {
		return grading.Report{}, errors.Wrapf(err, "score %s", set.ID)
	}
	band, err := grading.Classify(sc.Correct, set.Bands)
	if err != nil {
		return grading.Report{}, errors.Wrapf(err, "classify %s", set.ID)
	}
	return grading.BuildReport(sc, band, set.PassPercent), nil
}

// Reset discards answers and results so the set can be retaken.
func Reset(s State) (State, error) {
	if s.Phase != PhaseCompleted {
		return s, errors.Wrapf(ErrInvalidTransition, "reset from %s", s.Phase)
	}
	return New(s.ID, s.SetID), nil
}

// Expired reports whether a timed session ran out.
func Expired(s State, now time.Time) bool {
	return s.Phase == PhaseInProgress && s.Deadline > 0 && now.Unix() >= s.Deadline
}
