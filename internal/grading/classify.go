package grading

import "fmt"

// Classify returns the band with the highest MinScore not exceeding correct.
// Bands must be ascending by MinScore; on a tie the later band wins.
func Classify(correct int, bands []LevelBand) (LevelBand, error) {
	var (
		best  LevelBand
		found bool
	)
	for _, b := range bands {
		if b.MinScore <= correct {
			best, found = b, true
		}
	}
	if !found {
		return LevelBand{}, ErrNoBand
	}
	return best, nil
}

// ValidateBands reports authoring problems in a band table: it must be
// non-empty, ascending, free of duplicate thresholds and have a zero floor.
func ValidateBands(bands []LevelBand) []string {
	if len(bands) == 0 {
		return []string{"band table is empty"}
	}
	var problems []string
	if bands[0].MinScore != 0 {
		problems = append(problems, fmt.Sprintf("lowest band %q has min_score %d, want 0", bands[0].Label, bands[0].MinScore))
	}
	labels := map[string]bool{}
	for i, b := range bands {
		if b.Label == "" {
			problems = append(problems, fmt.Sprintf("band #%d has no label", i+1))
		} else if labels[b.Label] {
			problems = append(problems, fmt.Sprintf("duplicate band label %q", b.Label))
		}
		labels[b.Label] = true
		if b.MinScore < 0 {
			problems = append(problems, fmt.Sprintf("band %q has negative min_score", b.Label))
		}
		if i == 0 {
			continue
		}
		prev := bands[i-1]
		switch {
		case b.MinScore == prev.MinScore:
			problems = append(problems, fmt.Sprintf("bands %q and %q share min_score %d", prev.Label, b.Label, b.MinScore))
		case b.MinScore < prev.MinScore:
			problems = append(problems, fmt.Sprintf("band %q (min_score %d) is out of order after %q (%d)", b.Label, b.MinScore, prev.Label, prev.MinScore))
		}
	}
	return problems
}
