package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/pkg/errors"

	"github.com/mind-engage/cefr-assess/internal/content"
	"github.com/mind-engage/cefr-assess/internal/grading"
)

func main() {
	dir := flag.String("dir", "", "Directory of *.json question sets to check")
	builtin := flag.Bool("builtin", false, "Also check the sets compiled into the binary")
	verbose := flag.Bool("verbose", false, "Print every file, not just failures")
	flag.Parse()

	files := flag.Args()
	if *dir != "" {
		matches, err := filepath.Glob(filepath.Join(*dir, "*.json"))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reading directory: %v\n", err)
			os.Exit(1)
		}
		files = append(files, matches...)
	}
	if len(files) == 0 && !*builtin {
		fmt.Fprintf(os.Stderr, "Usage: contentlint [-dir DIR] [-builtin] [-verbose] [files...]\n")
		os.Exit(2)
	}
	sort.Strings(files)

	failed := lint(files, grading.DefaultComparators(), os.Stdout, *verbose)
	if *builtin {
		sets, err := content.Builtin(context.Background())
		if err != nil {
			report(os.Stdout, "<builtin>", err)
			failed++
		} else {
			for _, s := range sets {
				warn(os.Stdout, "<builtin>/"+s.ID, s)
			}
			if *verbose {
				fmt.Fprintln(os.Stdout, "ok   <builtin>")
			}
		}
	}
	if failed > 0 {
		fmt.Fprintf(os.Stderr, "%d file(s) with authoring errors\n", failed)
		os.Exit(1)
	}
}

// lint checks each file and returns how many failed.
func lint(files []string, comparators grading.Comparators, w io.Writer, verbose bool) int {
	failed := 0
	seen := map[string]string{}
	for _, f := range files {
		data, err := os.ReadFile(f)
		if err != nil {
			report(w, f, err)
			failed++
			continue
		}
		s, err := content.DecodeDocument(filepath.Base(f), data, comparators)
		if err != nil {
			report(w, f, err)
			failed++
			continue
		}
		if prev, dup := seen[s.ID]; dup {
			report(w, f, errors.Errorf("set id %q already used by %s", s.ID, prev))
			failed++
			continue
		}
		seen[s.ID] = f
		warn(w, f, s)
		if verbose {
			fmt.Fprintf(w, "ok   %s (%s, %d questions, %d bands)\n", f, s.ID, len(s.Questions), len(s.Bands))
		}
	}
	return failed
}

// warn prints non-fatal findings; they never fail the run.
func warn(w io.Writer, file string, s content.Set) {
	for _, msg := range s.Warnings() {
		fmt.Fprintf(w, "WARN %s: %s\n", file, msg)
	}
}

func report(w io.Writer, file string, err error) {
	var ve *content.ValidationError
	if errors.As(err, &ve) {
		fmt.Fprintf(w, "FAIL %s\n", file)
		for _, p := range ve.Problems {
			fmt.Fprintf(w, "     - %s\n", p)
		}
		return
	}
	fmt.Fprintf(w, "FAIL %s\n     - %v\n", file, err)
}
