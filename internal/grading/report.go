package grading

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Report is the display-ready view of a graded submission.
type Report struct {
	Total      int             `json:"total"`
	Correct    int             `json:"correct"`
	Percent    int             `json:"percent"`
	Band       LevelBand       `json:"band"`
	Summary    string          `json:"summary"`
	Badge      string          `json:"badge"`
	Passed     *bool           `json:"passed,omitempty"`
	Categories []CategoryScore `json:"categories,omitempty"`

	CorrectResults   []GradedResult `json:"correct_results"`
	IncorrectResults []GradedResult `json:"incorrect_results"`
}

type CategoryScore struct {
	Category string `json:"category"`
	Correct  int    `json:"correct"`
	Total    int    `json:"total"`
	Percent  int    `json:"percent"`
}

// Badges mirror the score labels of the A1 practice tests, highest first.
var badges = []struct {
	min   float64
	label string
}{
	{90, "Excellent"},
	{70, "Good"},
	{50, "Satisfactory"},
	{0, "Needs Improvement"},
}

// Badge labels a percentage.
func Badge(percent float64) string {
	for _, b := range badges {
		if percent >= b.min {
			return b.label
		}
	}
	return badges[len(badges)-1].label
}

// Round rounds half up, matching how scores are shown to learners.
func Round(percent float64) int {
	return int(math.Floor(percent + 0.5))
}

// BuildReport partitions results and formats feedback. passPercent <= 0 means
// the set has no pass mark.
func BuildReport(s Score, band LevelBand, passPercent int) Report {
	pct := s.Percent()
	r := Report{
		Total:            s.Total,
		Correct:          s.Correct,
		Percent:          Round(pct),
		Band:             band,
		Badge:            Badge(pct),
		CorrectResults:   make([]GradedResult, 0, s.Correct),
		IncorrectResults: make([]GradedResult, 0, s.Total-s.Correct),
	}
	for _, res := range s.Results {
		if res.IsCorrect {
			r.CorrectResults = append(r.CorrectResults, res)
		} else {
			r.IncorrectResults = append(r.IncorrectResults, res)
		}
	}
	r.Summary = fmt.Sprintf("%s (%d%%)", expandFeedback(band.Feedback, s, r.Percent), r.Percent)
	r.Summary = strings.TrimSpace(r.Summary)
	if passPercent > 0 {
		passed := pct >= float64(passPercent)
		r.Passed = &passed
	}
	r.Categories = categoryBreakdown(s.Results)
	return r
}

func expandFeedback(tmpl string, s Score, percent int) string {
	return strings.NewReplacer(
		"{correct}", strconv.Itoa(s.Correct),
		"{total}", strconv.Itoa(s.Total),
		"{percent}", strconv.Itoa(percent),
	).Replace(tmpl)
}

func categoryBreakdown(results []GradedResult) []CategoryScore {
	var out []CategoryScore
	idx := map[string]int{}
	for _, res := range results {
		if res.Category == "" {
			continue
		}
		i, ok := idx[res.Category]
		if !ok {
			i = len(out)
			idx[res.Category] = i
			out = append(out, CategoryScore{Category: res.Category})
		}
		out[i].Total++
		if res.IsCorrect {
			out[i].Correct++
		}
	}
	for i := range out {
		out[i].Percent = Round(100 * float64(out[i].Correct) / float64(out[i].Total))
	}
	return out
}

// LessonBands is the feedback table used by lesson practice widgets: a
// generic message, and a congratulation once every answer is correct.
func LessonBands(total int) []LevelBand {
	return []LevelBand{
		{
			Label:    "practice",
			MinScore: 0,
			Name:     "Keep practicing",
			Feedback: "You got {correct} out of {total} correct. Review the detailed feedback below to improve!",
		},
		{
			Label:    "perfect",
			MinScore: total,
			Name:     "Excellent",
			Feedback: "Excellent! You got all {correct} answers correct!",
		},
	}
}
