package content

import (
	"fmt"

	"github.com/mind-engage/cefr-assess/internal/grading"
)

// LiteraryQuizQuestion is the quiz shape embedded in literary-work data,
// where the key is the text of the correct option.
type LiteraryQuizQuestion struct {
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correctAnswer"`
	Explanation   string   `json:"explanation"`
}

// FromLiteraryQuiz converts a literary work's quiz to an index-keyed quiz set.
// A correct answer that is not one of the options is an authoring error.
func FromLiteraryQuiz(id, title string, quiz []LiteraryQuizQuestion) (Set, error) {
	s := Set{ID: id, Title: title, Kind: KindQuiz}
	var problems []string
	for i, lq := range quiz {
		answer := -1
		for j, o := range lq.Options {
			if o == lq.CorrectAnswer {
				answer = j
				break
			}
		}
		if answer < 0 {
			problems = append(problems, fmt.Sprintf("question #%d: correct answer %q is not an option", i+1, lq.CorrectAnswer))
		}
		s.Questions = append(s.Questions, grading.Question{
			ID:          fmt.Sprintf("q%d", i+1),
			Kind:        grading.KindMultipleChoice,
			Prompt:      lq.Question,
			Explanation: lq.Explanation,
			MultipleChoice: &grading.MultipleChoice{
				Options: lq.Options,
				Answer:  grading.Choice(answer),
			},
		})
	}
	if len(problems) > 0 {
		return Set{}, &ValidationError{SetID: id, Problems: problems}
	}
	s.applyDefaults()
	if err := s.Validate(grading.DefaultComparators()); err != nil {
		return Set{}, err
	}
	return s, nil
}
