// Package sample translates batches of lines, such as the sample data file
// behind the /test page and the CLI's --batch mode.
package sample

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/Adithya-Monish-Kumar-K/ipalizer/internal/phonetics"
)

// Result is the translation of one input line.
type Result struct {
	Input   string `json:"input"`
	Output  string `json:"output"`
	Warning bool   `json:"warning"`
}

// Message returns the advisory when the line did not fully conform.
func (r Result) Message() string {
	if r.Warning {
		return phonetics.WarningMessage
	}
	return ""
}

// ReadLines returns the trimmed, non-blank lines of r.
func ReadLines(r io.Reader) ([]string, error) {
	var lines []string
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" {
			lines = append(lines, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading lines: %w", err)
	}
	return lines, nil
}

// ReadFile opens path and calls ReadLines.
func ReadFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening samples: %w", err)
	}
	defer f.Close()
	return ReadLines(f)
}

// Run translates lines with up to concurrency workers. Results are in input
// order. Run stops early only when ctx is cancelled.
func Run(ctx context.Context, tr *phonetics.Translator, lines []string, concurrency int) ([]Result, error) {
	if concurrency <= 0 {
		concurrency = 1
	}
	results := make([]Result, len(lines))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for i, line := range lines {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			out, warning := tr.TranslateString(line)
			results[i] = Result{Input: line, Output: out, Warning: warning}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

// Render writes one "input ==> output" line per result, appending the
// advisory in parentheses for lines with a warning.
func Render(w io.Writer, results []Result) error {
	bw := bufio.NewWriter(w)
	for _, r := range results {
		if r.Warning {
			fmt.Fprintf(bw, "%s ==> %s  (WARNING: %s)\n", r.Input, r.Output, r.Message())
		} else {
			fmt.Fprintf(bw, "%s ==> %s\n", r.Input, r.Output)
		}
	}
	return bw.Flush()
}
