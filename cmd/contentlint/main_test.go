package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mind-engage/cefr-assess/internal/grading"
)

const goodSet = `{"id":"pets","title":"Pets","kind":"lesson","questions":[
	{"id":"q1","kind":"free_text","prompt":"A cat says ____.","free_text":{"accept":["meow"]}}]}`

func TestLint(t *testing.T) {
	dir := t.TempDir()
	write := func(name, doc string) string {
		p := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(p, []byte(doc), 0o644))
		return p
	}
	good := write("good.json", goodSet)
	dup := write("dup.json", goodSet)
	bad := write("bad.json", `{"id":"x","title":"X","kind":"placement","bands":[{"label":"A2","min_score":1}],
		"questions":[{"id":"q1","kind":"multiple_choice","prompt":"p","multiple_choice":{"options":["a","b"],"answer":3}}]}`)

	var out bytes.Buffer
	failed := lint([]string{good, dup, bad, filepath.Join(dir, "missing.json")}, grading.DefaultComparators(), &out, true)
	assert.Equal(t, 3, failed)

	text := out.String()
	assert.Contains(t, text, "ok   "+good)
	assert.Contains(t, text, "already used by "+good)
	assert.Contains(t, text, "answer index 3 out of range")
	assert.Contains(t, text, "FAIL "+filepath.Join(dir, "missing.json"))
}

func TestLintWarnsOnRevealingPlaceholder(t *testing.T) {
	p := filepath.Join(t.TempDir(), "hint.json")
	doc := `{"id":"hint","title":"Hint","kind":"lesson","questions":[
		{"id":"q1","kind":"free_text","prompt":"She ____ a cat.","free_text":{"accept":["has"],"placeholder":" Has "}},
		{"id":"q2","kind":"free_text","prompt":"They ____ a dog.","free_text":{"accept":["have"],"placeholder":"verb"}}]}`
	require.NoError(t, os.WriteFile(p, []byte(doc), 0o644))

	var out bytes.Buffer
	assert.Zero(t, lint([]string{p}, grading.DefaultComparators(), &out, false))
	assert.Contains(t, out.String(), "WARN "+p+": question q1")
	assert.NotContains(t, out.String(), "question q2")
}
