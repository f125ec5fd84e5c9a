package grading

import (
	"sort"
	"strings"
)

// Strategy grades a single question of one kind. ok reports whether an answer
// was recorded for the question at all.
type Strategy interface {
	Grade(q Question, a Answer, ok bool, cmp Comparator) GradedResult
}

// Grader routes by question kind to the correct Strategy.
type Grader struct {
	strategies  map[Kind]Strategy
	comparators Comparators
}

// Engine options

type Option func(*Grader)

// WithComparator registers (or overrides) a named comparator policy.
func WithComparator(name string, c Comparator) Option {
	return func(g *Grader) { g.comparators[name] = c }
}

// WithStrategy overrides the strategy used for a kind.
func WithStrategy(k Kind, s Strategy) Option {
	return func(g *Grader) { g.strategies[k] = s }
}

// NewGrader installs built-in strategies and comparator policies.
func NewGrader(opts ...Option) *Grader {
	g := &Grader{
		strategies: map[Kind]Strategy{
			KindMultipleChoice: multipleChoiceStrategy{},
			KindFreeText:       freeTextStrategy{},
			KindMatching:       matchingStrategy{},
		},
		comparators: DefaultComparators(),
	}
	for _, o := range opts {
		o(g)
	}
	return g
}

// Comparators exposes the registered policies, e.g. for content validation.
func (g *Grader) Comparators() Comparators { return g.comparators }

var defaultGrader = NewGrader()

// GradeItem grades one question with the default grader.
func GradeItem(q Question, a Answer, ok bool) GradedResult {
	return defaultGrader.Grade(q, a, ok)
}

// Grade never fails: unknown kinds, unknown policies and malformed answers
// all yield an incorrect result.
func (g *Grader) Grade(q Question, a Answer, ok bool) GradedResult {
	cmp, found := g.comparators.Lookup(q.Policy)
	if !found {
		cmp = Exact
	}
	s, found := g.strategies[q.Kind]
	if !found {
		res := baseResult(q)
		res.UserAnswer = NoAnswer
		if ok {
			res.UserAnswer = displayRaw(a)
		}
		return res
	}
	return s.Grade(q, a, ok, cmp)
}

func baseResult(q Question) GradedResult {
	return GradedResult{
		QuestionID:  q.ID,
		Prompt:      q.Prompt,
		Level:       q.Level,
		Category:    q.Category,
		Explanation: q.Explanation,
	}
}

// --- Strategies ---

type multipleChoiceStrategy struct{}

func (multipleChoiceStrategy) Grade(q Question, a Answer, ok bool, _ Comparator) GradedResult {
	res := baseResult(q)
	res.UserAnswer = NoAnswer
	mc := q.MultipleChoice
	if mc == nil {
		return res
	}
	if mc.Answer != nil {
		res.CorrectAnswer = optionText(mc.Options, *mc.Answer)
	}
	if !ok || a.Choice == nil {
		return res
	}
	res.UserAnswer = optionText(mc.Options, *a.Choice)
	if res.UserAnswer == "" {
		res.UserAnswer = NoAnswer
		return res
	}
	res.IsCorrect = mc.Answer != nil && *a.Choice == *mc.Answer
	return res
}

func optionText(options []string, i int) string {
	if i < 0 || i >= len(options) {
		return ""
	}
	return options[i]
}

type freeTextStrategy struct{}

func (freeTextStrategy) Grade(q Question, a Answer, ok bool, cmp Comparator) GradedResult {
	res := baseResult(q)
	res.UserAnswer = NoAnswer
	ft := q.FreeText
	if ft == nil {
		return res
	}
	if len(ft.Accept) > 0 {
		res.CorrectAnswer = ft.Accept[0]
	}
	given := strings.TrimSpace(a.Text)
	if !ok || given == "" {
		return res
	}
	res.UserAnswer = given
	for _, k := range ft.Accept {
		if Normalize(k) == "" {
			continue
		}
		if cmp.Equal(k, given) {
			res.IsCorrect = true
			break
		}
	}
	return res
}

type matchingStrategy struct{}

func (matchingStrategy) Grade(q Question, a Answer, ok bool, cmp Comparator) GradedResult {
	res := baseResult(q)
	res.UserAnswer = NoAnswer
	m := q.Matching
	if m == nil {
		return res
	}
	want := make([]string, 0, len(m.Pairs))
	for _, p := range m.Pairs {
		want = append(want, p.Left+" → "+p.Right)
	}
	res.CorrectAnswer = strings.Join(want, "; ")
	if !ok || len(a.Pairs) == 0 {
		return res
	}
	res.UserAnswer = displayPairs(a.Pairs)
	if len(m.Pairs) == 0 {
		return res
	}
	given := make(map[string]string, len(a.Pairs))
	for left, right := range a.Pairs {
		given[Normalize(left)] = right
	}
	for _, p := range m.Pairs {
		got, has := given[Normalize(p.Left)]
		if !has || !cmp.Equal(p.Right, got) {
			return res
		}
	}
	res.IsCorrect = true
	return res
}

// helpers

func displayPairs(pairs map[string]string) string {
	keys := make([]string, 0, len(pairs))
	for k := range pairs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, k+" → "+pairs[k])
	}
	return strings.Join(out, "; ")
}

func displayRaw(a Answer) string {
	switch {
	case strings.TrimSpace(a.Text) != "":
		return strings.TrimSpace(a.Text)
	case len(a.Pairs) > 0:
		return displayPairs(a.Pairs)
	default:
		return NoAnswer
	}
}
