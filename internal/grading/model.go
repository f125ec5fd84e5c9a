package grading

// Kind tags the payload a Question carries.
type Kind string

const (
	KindMultipleChoice Kind = "multiple_choice"
	KindFreeText       Kind = "free_text"
	KindMatching       Kind = "matching"
)

// NoAnswer is shown in place of a user answer that was never given.
const NoAnswer = "(no answer)"

// Question is one evaluable item. Exactly one of MultipleChoice, FreeText or
// Matching is set, and it must agree with Kind.
type Question struct {
	ID          string `json:"id"`
	Kind        Kind   `json:"kind"`
	Prompt      string `json:"prompt,omitempty"`
	Level       string `json:"level,omitempty"`       // CEFR calibration, display only
	Category    string `json:"category,omitempty"`    // Grammar, Vocabulary, Reading, ...
	Policy      string `json:"policy,omitempty"`      // comparator name; "" means exact
	Explanation string `json:"explanation,omitempty"` // shown with the result

	MultipleChoice *MultipleChoice `json:"multiple_choice,omitempty"`
	FreeText       *FreeText       `json:"free_text,omitempty"`
	Matching       *Matching       `json:"matching,omitempty"`
}

type MultipleChoice struct {
	Options []string `json:"options"`
	Answer  *int     `json:"answer,omitempty"` // index into Options; nil in learner views
}

type FreeText struct {
	Accept      []string `json:"accept,omitempty"`
	Placeholder string   `json:"placeholder,omitempty"`
}

type Pair struct {
	Left  string `json:"left"`
	Right string `json:"right"`
}

// Matching asks the learner to map every left item to a right item.
// Lefts/Rights are only populated in learner views, where Pairs is stripped.
type Matching struct {
	Pairs  []Pair   `json:"pairs,omitempty"`
	Lefts  []string `json:"lefts,omitempty"`
	Rights []string `json:"rights,omitempty"`
}

// Answer is a user's response to one question. Which field is read depends on
// the question kind.
type Answer struct {
	QuestionID string            `json:"question_id"`
	Text       string            `json:"text,omitempty"`
	Choice     *int              `json:"choice,omitempty"`
	Pairs      map[string]string `json:"pairs,omitempty"`
}

// GradedResult is the outcome of grading one question.
type GradedResult struct {
	QuestionID    string `json:"question_id"`
	Prompt        string `json:"prompt,omitempty"`
	UserAnswer    string `json:"user_answer"`
	CorrectAnswer string `json:"correct_answer"`
	IsCorrect     bool   `json:"is_correct"`
	Level         string `json:"level,omitempty"`
	Category      string `json:"category,omitempty"`
	Explanation   string `json:"explanation,omitempty"`
}

// LevelBand is a classification bucket. MinScore is an inclusive lower bound
// on the correct count.
type LevelBand struct {
	Label       string `json:"label"`
	MinScore    int    `json:"min_score"`
	Name        string `json:"name,omitempty"`
	Description string `json:"description,omitempty"`
	Feedback    string `json:"feedback,omitempty"`
}

// Choice is a helper for building multiple choice keys and answers.
func Choice(i int) *int { return &i }
