package content

import (
	"fmt"
	"strings"

	"github.com/mind-engage/cefr-assess/internal/grading"
)

// ValidationError lists every authoring problem found in a set.
type ValidationError struct {
	SetID    string
	Problems []string
}

func (e *ValidationError) Error() string {
	id := e.SetID
	if id == "" {
		id = "<unnamed>"
	}
	return fmt.Sprintf("set %s: %s", id, strings.Join(e.Problems, "; "))
}

var kinds = map[Kind]bool{KindPlacement: true, KindLesson: true, KindQuiz: true, KindPractice: true}

// Validate enforces the data-authoring invariants grading relies on: every
// question has exactly the payload its kind names with a usable key, and the
// band table has a zero floor without duplicate thresholds.
func (s Set) Validate(comparators grading.Comparators) error {
	var problems []string
	add := func(format string, args ...interface{}) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}

	if strings.TrimSpace(s.ID) == "" {
		add("id is required")
	}
	if !kinds[s.Kind] {
		add("unknown kind %q", s.Kind)
	}
	if s.TimeLimitSec < 0 {
		add("negative time_limit_sec")
	}
	if s.PassPercent < 0 || s.PassPercent > 100 {
		add("pass_percent %d out of range", s.PassPercent)
	}
	if len(s.Questions) == 0 {
		add("no questions")
	}

	seen := map[string]bool{}
	for i, q := range s.Questions {
		where := fmt.Sprintf("question #%d (%s)", i+1, q.ID)
		if strings.TrimSpace(q.ID) == "" {
			add("question #%d has no id", i+1)
		} else if seen[q.ID] {
			add("duplicate question id %q", q.ID)
		}
		seen[q.ID] = true
		if _, ok := comparators.Lookup(q.Policy); !ok {
			add("%s: unknown policy %q", where, q.Policy)
		}
		for _, p := range questionProblems(q) {
			add("%s: %s", where, p)
		}
	}

	for _, p := range grading.ValidateBands(s.Bands) {
		add("bands: %s", p)
	}
	if len(s.Bands) > 0 && len(s.Questions) > 0 {
		top := s.Bands[len(s.Bands)-1]
		if top.MinScore > len(s.Questions) {
			add("bands: band %q needs %d correct but the set has %d questions", top.Label, top.MinScore, len(s.Questions))
		}
	}

	if len(problems) > 0 {
		return &ValidationError{SetID: s.ID, Problems: problems}
	}
	return nil
}

func questionProblems(q grading.Question) []string {
	var out []string
	payloads := 0
	if q.MultipleChoice != nil {
		payloads++
	}
	if q.FreeText != nil {
		payloads++
	}
	if q.Matching != nil {
		payloads++
	}
	if payloads != 1 {
		out = append(out, fmt.Sprintf("want exactly one payload, got %d", payloads))
	}

	switch q.Kind {
	case grading.KindMultipleChoice:
		mc := q.MultipleChoice
		if mc == nil {
			return append(out, "multiple_choice payload missing")
		}
		if len(mc.Options) < 2 {
			out = append(out, "needs at least two options")
		}
		for j, o := range mc.Options {
			if strings.TrimSpace(o) == "" {
				out = append(out, fmt.Sprintf("option %d is blank", j))
			}
		}
		if mc.Answer == nil {
			out = append(out, "answer index missing")
		} else if *mc.Answer < 0 || *mc.Answer >= len(mc.Options) {
			out = append(out, fmt.Sprintf("answer index %d out of range", *mc.Answer))
		}
	case grading.KindFreeText:
		ft := q.FreeText
		if ft == nil {
			return append(out, "free_text payload missing")
		}
		if len(ft.Accept) == 0 {
			out = append(out, "no accepted answer")
		}
		for _, a := range ft.Accept {
			if grading.Normalize(a) == "" {
				out = append(out, "blank accepted answer")
			}
		}
	case grading.KindMatching:
		m := q.Matching
		if m == nil {
			return append(out, "matching payload missing")
		}
		if len(m.Pairs) == 0 {
			out = append(out, "no pairs")
		}
		lefts := map[string]bool{}
		for _, p := range m.Pairs {
			if grading.Normalize(p.Left) == "" || grading.Normalize(p.Right) == "" {
				out = append(out, "blank pair side")
			}
			if lefts[grading.Normalize(p.Left)] {
				out = append(out, fmt.Sprintf("duplicate left %q", p.Left))
			}
			lefts[grading.Normalize(p.Left)] = true
		}
	default:
		out = append(out, fmt.Sprintf("unknown kind %q", q.Kind))
	}
	return out
}

// Warnings lists authoring smells that do not break grading, such as a
// free-text placeholder that shows learners the accepted answer.
func (s Set) Warnings() []string {
	var out []string
	for _, q := range s.Questions {
		if q.FreeText == nil || q.FreeText.Placeholder == "" {
			continue
		}
		hint := grading.Normalize(q.FreeText.Placeholder)
		for _, a := range q.FreeText.Accept {
			if grading.Normalize(a) == hint {
				out = append(out, fmt.Sprintf("question %s: placeholder %q reveals the answer", q.ID, q.FreeText.Placeholder))
				break
			}
		}
	}
	return out
}
