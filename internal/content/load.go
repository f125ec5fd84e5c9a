package content

import (
	"context"
	"embed"
	"encoding/json"
	"io/fs"
	"path"
	"sort"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"github.com/xeipuuv/gojsonschema"
	"golang.org/x/sync/errgroup"

	"github.com/mind-engage/cefr-assess/internal/grading"
)

//go:embed schema.json
var schemaJSON []byte

//go:embed builtin/*.json
var builtinFS embed.FS

var (
	schemaOnce sync.Once
	schema     *gojsonschema.Schema
	schemaErr  error
)

func compiledSchema() (*gojsonschema.Schema, error) {
	schemaOnce.Do(func() {
		schema, schemaErr = gojsonschema.NewSchema(gojsonschema.NewBytesLoader(schemaJSON))
	})
	return schema, schemaErr
}

// CheckSchema validates a raw document against the set schema. Problems are
// reported as a ValidationError.
func CheckSchema(data []byte) error {
	sch, err := compiledSchema()
	if err != nil {
		return errors.Wrap(err, "compile set schema")
	}
	res, err := sch.Validate(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return errors.Wrap(err, "read set document")
	}
	if res.Valid() {
		return nil
	}
	ve := &ValidationError{}
	for _, e := range res.Errors() {
		ve.Problems = append(ve.Problems, e.String())
	}
	var head struct {
		ID string `json:"id"`
	}
	_ = json.Unmarshal(data, &head)
	ve.SetID = head.ID
	return ve
}

// Decode turns a JSON document into a validated Set: schema first, then the
// semantic checks in Validate.
func Decode(data []byte, comparators grading.Comparators) (Set, error) {
	if err := CheckSchema(data); err != nil {
		return Set{}, err
	}
	var s Set
	if err := json.Unmarshal(data, &s); err != nil {
		return Set{}, errors.Wrap(err, "decode set")
	}
	s.applyDefaults()
	if err := s.Validate(comparators); err != nil {
		return Set{}, err
	}
	return s, nil
}

// literaryWork is the reader's data shape: a work with its comprehension quiz.
type literaryWork struct {
	ID        string                 `json:"id"`
	Slug      string                 `json:"slug"`
	Title     string                 `json:"title"`
	Quiz      []LiteraryQuizQuestion `json:"quiz"`
	Questions json.RawMessage        `json:"questions"`
}

// DecodeDocument accepts an authored set or a literary work carrying a quiz.
// A literary work without id or slug takes its id from the file name.
func DecodeDocument(name string, data []byte, comparators grading.Comparators) (Set, error) {
	var lw literaryWork
	if err := json.Unmarshal(data, &lw); err == nil && lw.Quiz != nil && lw.Questions == nil {
		id := lw.Slug
		if id == "" {
			id = lw.ID
		}
		if id == "" {
			id = strings.TrimSuffix(path.Base(name), path.Ext(name))
		}
		return FromLiteraryQuiz(strings.ToLower(id), lw.Title, lw.Quiz)
	}
	return Decode(data, comparators)
}

// LoadFS decodes every *.json file in dir, a few at a time; literary works
// become quiz sets. Sets come back
// sorted by id; the first failure cancels the rest.
func LoadFS(ctx context.Context, fsys fs.FS, dir string, comparators grading.Comparators) ([]Set, error) {
	names, err := fs.Glob(fsys, path.Join(dir, "*.json"))
	if err != nil {
		return nil, errors.Wrapf(err, "list %s", dir)
	}
	sets := make([]Set, len(names))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for i, name := range names {
		i, name := i, name
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			data, err := fs.ReadFile(fsys, name)
			if err != nil {
				return errors.Wrapf(err, "read %s", name)
			}
			s, err := DecodeDocument(name, data, comparators)
			if err != nil {
				return errors.Wrap(err, name)
			}
			sets[i] = s
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	sort.Slice(sets, func(a, b int) bool { return sets[a].ID < sets[b].ID })
	return sets, nil
}

// Builtin returns the sets shipped with the binary.
func Builtin(ctx context.Context) ([]Set, error) {
	return LoadFS(ctx, builtinFS, "builtin", grading.DefaultComparators())
}
