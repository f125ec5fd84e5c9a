package audiogen

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mind-engage/cefr-assess/internal/storage"
)

type fakeWAV struct {
	mu    sync.Mutex
	fail  map[string]bool
	calls []string
}

func (f *fakeWAV) WAV(_ context.Context, text string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, text)
	if f.fail[text] {
		return nil, errors.New("quota exceeded")
	}
	return []byte("RIFF" + text), nil
}

func writeData(t *testing.T, dir, name, doc string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(doc), 0o644))
	return p
}

func TestProcessDir(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	family := writeData(t, dir, "family.json", `{"title":"Family","vocabulary":[{"word":"Aunt"},{"word":"Grand Father","audio":"/old.mp3"},{"word":""}]}`)
	writeData(t, dir, "grammar.json", `{"title":"Grammar","exercises":[]}`)

	blobs, err := storage.NewFSStore(t.TempDir())
	require.NoError(t, err)
	_, err = blobs.Put(ctx, "audio/aunt.wav", strings.NewReader("RIFFold"), "audio/wav")
	require.NoError(t, err)

	synth := &fakeWAV{}
	g := &Generator{Speech: synth, Blobs: blobs, Concurrency: 1}
	rep, err := g.ProcessDir(ctx, dir)
	require.NoError(t, err)

	assert.Equal(t, []string{"Grand Father"}, synth.calls, "existing audio is not regenerated")
	assert.Len(t, rep.Created, 1)
	assert.Len(t, rep.OK, 2)
	assert.Len(t, rep.Missing, 1, "the blank word has no audio key")
	assert.False(t, len(rep.Errors) > 0)
	assert.True(t, rep.Failed())

	b, err := os.ReadFile(family)
	require.NoError(t, err)
	var doc struct {
		Title      string              `json:"title"`
		Vocabulary []map[string]string `json:"vocabulary"`
	}
	require.NoError(t, json.Unmarshal(b, &doc))
	assert.Equal(t, "Family", doc.Title)
	assert.Equal(t, "/audio/aunt.wav", doc.Vocabulary[0]["audio"])
	assert.Equal(t, "/audio/grand-father.wav", doc.Vocabulary[1]["audio"])

	ok, err := blobs.Exists(ctx, "audio/grand-father.wav")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestProcessDirSynthesizesRepeatedWordsOnce(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	writeData(t, dir, "a.json", `{"vocabulary":[{"word":"Aunt"},{"word":"aunt"},{"word":" AUNT "},{"word":"Uncle"}]}`)
	writeData(t, dir, "b.json", `{"vocabulary":[{"word":"Uncle"}]}`)

	blobs, err := storage.NewFSStore(t.TempDir())
	require.NoError(t, err)
	synth := &fakeWAV{}
	g := &Generator{Speech: synth, Blobs: blobs, Concurrency: 4}
	rep, err := g.ProcessDir(ctx, dir)
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"Aunt", "Uncle"}, synth.calls)
	assert.Len(t, rep.Created, 2)
	assert.Len(t, rep.OK, 5)
	assert.False(t, rep.Failed())
}

func TestProcessDirReportsFailures(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	writeData(t, dir, "colors.json", `{"vocabulary":[{"word":"red"},{"word":"blue"}]}`)
	blobs, err := storage.NewFSStore(t.TempDir())
	require.NoError(t, err)

	g := &Generator{
		Speech: &fakeWAV{fail: map[string]bool{"blue": true}},
		Blobs:  blobs,
		MP3:    true,
		toMP3:  func(wav []byte) ([]byte, error) { return append([]byte("ID3"), wav...), nil },
	}
	rep, err := g.ProcessDir(ctx, dir)
	require.NoError(t, err)

	require.Len(t, rep.Errors, 1)
	assert.Contains(t, rep.Errors[0].Reason, "quota exceeded")
	require.Len(t, rep.Missing, 1)
	assert.Equal(t, "colors.json -> blue", rep.Missing[0].Item)
	require.Len(t, rep.OK, 1)
	assert.Equal(t, int64(len("ID3RIFFred")), rep.OK[0].Size)

	var out bytes.Buffer
	require.NoError(t, rep.WriteText(&out, time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)))
	text := out.String()
	assert.Contains(t, text, "2026-01-02T03:04:05Z")
	assert.Contains(t, text, "OK  - colors.json -> red (10 bytes)")
	assert.Contains(t, text, "MISS - colors.json -> blue :: file not found at /audio/blue.mp3")
	assert.Contains(t, text, "ERR - colors.json -> blue :: TTS generation failed")
}
