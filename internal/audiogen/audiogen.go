// Package audiogen pre-generates pronunciation audio for vocabulary data
// files and verifies that every entry points at a non-empty blob.
package audiogen

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mind-engage/cefr-assess/internal/speech"
	"github.com/mind-engage/cefr-assess/internal/storage"
)

// WAVSource is satisfied by *speech.Service.
type WAVSource interface {
	WAV(ctx context.Context, text string) ([]byte, error)
}

type Generator struct {
	Speech      WAVSource
	Blobs       storage.BlobStore
	MP3         bool // transcode with ffmpeg before storing
	Concurrency int
	Log         *zap.Logger

	// toMP3 is swapped out in tests.
	toMP3 func([]byte) ([]byte, error)
}

type Entry struct {
	Item   string `json:"item"`
	Reason string `json:"reason,omitempty"`
	Size   int64  `json:"size,omitempty"`
}

type Report struct {
	Created []Entry
	OK      []Entry
	Missing []Entry
	Empty   []Entry
	Errors  []Entry
}

// Failed reports whether verification found anything to fix.
func (r *Report) Failed() bool {
	return len(r.Missing)+len(r.Empty)+len(r.Errors) > 0
}

func (g *Generator) ext() string {
	if g.MP3 {
		return ".mp3"
	}
	return ".wav"
}

// Key is the blob key for a word's audio.
func (g *Generator) Key(word string) string {
	return "audio/" + speech.FileName(word) + g.ext()
}

type dataFile struct {
	path  string
	doc   map[string]json.RawMessage
	vocab []map[string]interface{}
}

func readDataFile(path string) (*dataFile, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	df := &dataFile{path: path}
	if err := json.Unmarshal(b, &df.doc); err != nil {
		return nil, errors.Wrapf(err, "parse %s", path)
	}
	raw, ok := df.doc["vocabulary"]
	if !ok {
		return df, nil
	}
	if err := json.Unmarshal(raw, &df.vocab); err != nil {
		return nil, errors.Wrapf(err, "parse %s vocabulary", path)
	}
	return df, nil
}

func (df *dataFile) write() error {
	raw, err := json.Marshal(df.vocab)
	if err != nil {
		return err
	}
	df.doc["vocabulary"] = raw
	b, err := json.MarshalIndent(df.doc, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(df.path, b, 0o644)
}

func word(entry map[string]interface{}) string {
	w, _ := entry["word"].(string)
	return strings.TrimSpace(w)
}

// ProcessDir synthesizes missing audio for every vocabulary entry in
// dir/*.json, points each entry's "audio" key at it, then verifies the
// blobs. Files without a vocabulary array are skipped.
func (g *Generator) ProcessDir(ctx context.Context, dir string) (*Report, error) {
	if g.toMP3 == nil {
		g.toMP3 = speech.ToMP3
	}
	if g.Log == nil {
		g.Log = zap.NewNop()
	}
	paths, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return nil, err
	}
	sort.Strings(paths)

	rep := &Report{}
	var mu sync.Mutex
	record := func(list *[]Entry, e Entry) {
		mu.Lock()
		*list = append(*list, e)
		mu.Unlock()
	}

	// each key is synthesized at most once per run
	queued := map[string]bool{}
	for _, p := range paths {
		df, err := readDataFile(p)
		if err != nil {
			return nil, err
		}
		if df.vocab == nil {
			continue
		}
		updated := false
		eg, egctx := errgroup.WithContext(ctx)
		eg.SetLimit(max(g.Concurrency, 1))
		for _, entry := range df.vocab {
			w := word(entry)
			if w == "" {
				continue
			}
			key := g.Key(w)
			rel := "/" + key
			if entry["audio"] != rel {
				entry["audio"] = rel
				updated = true
			}
			if queued[key] {
				continue
			}
			queued[key] = true
			item := filepath.Base(p) + " -> " + w
			eg.Go(func() error {
				created, err := g.ensure(egctx, w, key)
				switch {
				case err != nil:
					g.Log.Warn("tts failed", zap.String("item", item), zap.Error(err))
					record(&rep.Errors, Entry{Item: item, Reason: "TTS generation failed: " + err.Error()})
				case created:
					record(&rep.Created, Entry{Item: item})
				}
				return nil
			})
		}
		if err := eg.Wait(); err != nil {
			return nil, err
		}
		if updated {
			if err := df.write(); err != nil {
				return nil, errors.Wrapf(err, "write %s", p)
			}
		}
	}

	if err := g.verify(ctx, paths, rep); err != nil {
		return nil, err
	}
	return rep, nil
}

// ensure stores audio for text unless key already exists.
func (g *Generator) ensure(ctx context.Context, text, key string) (bool, error) {
	ok, err := g.Blobs.Exists(ctx, key)
	if err != nil {
		return false, err
	}
	if ok {
		return false, nil
	}
	audio, err := g.Speech.WAV(ctx, text)
	if err != nil {
		return false, err
	}
	ct := "audio/wav"
	if g.MP3 {
		if audio, err = g.toMP3(audio); err != nil {
			return false, err
		}
		ct = "audio/mpeg"
	}
	if _, err := g.Blobs.Put(ctx, key, bytes.NewReader(audio), ct); err != nil {
		return false, err
	}
	return true, nil
}

func (g *Generator) verify(ctx context.Context, paths []string, rep *Report) error {
	for _, p := range paths {
		df, err := readDataFile(p)
		if err != nil {
			return err
		}
		for _, entry := range df.vocab {
			item := filepath.Base(p) + " -> " + word(entry)
			rel, _ := entry["audio"].(string)
			if rel == "" {
				rep.Missing = append(rep.Missing, Entry{Item: item, Reason: "no audio key"})
				continue
			}
			size, err := g.size(ctx, strings.TrimPrefix(rel, "/"))
			switch {
			case errors.Is(err, storage.ErrNotFound):
				rep.Missing = append(rep.Missing, Entry{Item: item, Reason: "file not found at " + rel})
			case err != nil:
				return err
			case size == 0:
				rep.Empty = append(rep.Empty, Entry{Item: item, Reason: "zero bytes at " + rel})
			default:
				rep.OK = append(rep.OK, Entry{Item: item, Size: size})
			}
		}
	}
	return nil
}

func (g *Generator) size(ctx context.Context, key string) (int64, error) {
	rc, err := g.Blobs.Get(ctx, key)
	if err != nil {
		return 0, err
	}
	defer rc.Close()
	return io.Copy(io.Discard, rc)
}

// WriteText renders the verification report.
func (r *Report) WriteText(w io.Writer, now time.Time) error {
	var b strings.Builder
	b.WriteString("Audio Verification Report\n")
	b.WriteString(now.UTC().Format(time.RFC3339) + "\n\n")
	fmt.Fprintf(&b, "Created: %d\n\n", len(r.Created))
	b.WriteString("OK entries:\n")
	for _, e := range r.OK {
		fmt.Fprintf(&b, "OK  - %s (%d bytes)\n", e.Item, e.Size)
	}
	b.WriteString("\nMissing audio:\n")
	for _, e := range r.Missing {
		fmt.Fprintf(&b, "MISS - %s :: %s\n", e.Item, e.Reason)
	}
	b.WriteString("\nEmpty audio files:\n")
	for _, e := range r.Empty {
		fmt.Fprintf(&b, "EMPTY - %s :: %s\n", e.Item, e.Reason)
	}
	b.WriteString("\nErrors:\n")
	for _, e := range r.Errors {
		fmt.Fprintf(&b, "ERR - %s :: %s\n", e.Item, e.Reason)
	}
	_, err := io.WriteString(w, b.String())
	return err
}
