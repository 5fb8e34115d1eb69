package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/Adithya-Monish-Kumar-K/ipalizer/internal/phonetics"
	"github.com/Adithya-Monish-Kumar-K/ipalizer/internal/translation/sample"
	"github.com/Adithya-Monish-Kumar-K/ipalizer/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/ipalizer/pkg/proto"
	"github.com/Adithya-Monish-Kumar-K/ipalizer/pkg/resilience"
	"github.com/Adithya-Monish-Kumar-K/ipalizer/pkg/rpc"
)

// ErrNonConforming is returned under --strict when any input produced a
// warning.
var ErrNonConforming = errors.New("input did not fully conform")

// Translator translates one input. It is satisfied by the local and the
// RPC-backed implementations.
type Translator interface {
	Translate(ctx context.Context, input string) (proto.TranslateResponse, error)
}

type localTranslator struct {
	tr *phonetics.Translator
}

func (l localTranslator) Translate(_ context.Context, input string) (proto.TranslateResponse, error) {
	t := l.tr.Transcribe(input)
	return proto.TranslateResponse{
		Input:   t.Input,
		Output:  t.IPA(),
		Tokens:  t.Tokens,
		Symbols: t.Symbols,
		Warning: t.Warning,
		Message: t.Message(),
	}, nil
}

type remoteTranslator struct {
	client  *rpc.Client
	timeout time.Duration
}

func (r remoteTranslator) Translate(ctx context.Context, input string) (proto.TranslateResponse, error) {
	var resp proto.TranslateResponse
	err := resilience.WithTimeout(ctx, r.timeout, proto.MethodTranslate, func(ctx context.Context) error {
		var out proto.TranslateResponse
		if err := r.client.Call(ctx, proto.MethodTranslate, proto.TranslateRequest{Input: input}, &out); err != nil {
			// The connection deadline mirrors ctx, so it can fire first.
			if errors.Is(err, os.ErrDeadlineExceeded) {
				return fmt.Errorf("%w: %v", context.DeadlineExceeded, err)
			}
			return err
		}
		resp = out
		return nil
	})
	if err != nil {
		return proto.TranslateResponse{}, fmt.Errorf("translating %q: %w", input, err)
	}
	return resp, nil
}

// Run executes the command for args.
func Run(cmd *cobra.Command, args []string, flags *Flags) error {
	logger.SetupWriter(cmd.ErrOrStderr(), flags.LogLevel, "text")
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	var tr Translator = localTranslator{tr: phonetics.Default()}
	if flags.Remote != "" {
		dialCtx, cancel := context.WithTimeout(ctx, flags.Timeout)
		client, err := rpc.DialContext(dialCtx, flags.Remote)
		cancel()
		if err != nil {
			return err
		}
		defer client.Close()
		tr = remoteTranslator{client: client, timeout: flags.Timeout}
		slog.Debug("using remote translator", "addr", flags.Remote)
	}

	lines, err := inputLines(cmd, args, flags)
	if err != nil {
		return err
	}

	results, err := translateAll(ctx, tr, lines, flags.Concurrency)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if flags.BatchFile != "" {
		err = renderReport(out, results)
	} else {
		err = renderPlain(out, cmd.ErrOrStderr(), results, flags)
	}
	if err != nil {
		return err
	}

	warnings := 0
	for _, r := range results {
		if r.Warning {
			warnings++
		}
	}
	if flags.BatchFile != "" && !flags.QuietWarnings {
		fmt.Fprintf(cmd.ErrOrStderr(), "%d lines, %d with warnings\n", len(results), warnings)
	}
	if flags.Strict && warnings > 0 {
		return fmt.Errorf("%w: %d of %d inputs", ErrNonConforming, warnings, len(results))
	}
	return nil
}

func inputLines(cmd *cobra.Command, args []string, flags *Flags) ([]string, error) {
	switch {
	case flags.BatchFile != "":
		if len(args) > 0 {
			return nil, errors.New("--batch does not take arguments")
		}
		return sample.ReadFile(flags.BatchFile)
	case len(args) > 0:
		return []string{strings.Join(args, " ")}, nil
	default:
		return sample.ReadLines(cmd.InOrStdin())
	}
}

// translateAll translates lines with up to concurrency calls in flight and
// returns results in input order.
func translateAll(ctx context.Context, tr Translator, lines []string, concurrency int) ([]proto.TranslateResponse, error) {
	if concurrency <= 0 {
		concurrency = 1
	}
	results := make([]proto.TranslateResponse, len(lines))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for i, line := range lines {
		g.Go(func() error {
			resp, err := tr.Translate(gctx, line)
			if err != nil {
				return err
			}
			results[i] = resp
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func renderReport(w io.Writer, results []proto.TranslateResponse) error {
	report := make([]sample.Result, len(results))
	for i, r := range results {
		report[i] = sample.Result{Input: r.Input, Output: r.Output, Warning: r.Warning}
	}
	return sample.Render(w, report)
}

func renderPlain(out, errOut io.Writer, results []proto.TranslateResponse, flags *Flags) error {
	for _, r := range results {
		if _, err := fmt.Fprintln(out, r.Output); err != nil {
			return err
		}
		if flags.Tokens {
			pairs := make([]string, len(r.Tokens))
			for i, tok := range r.Tokens {
				sym := tok
				if i < len(r.Symbols) {
					sym = r.Symbols[i]
				}
				pairs[i] = tok + "→" + sym
			}
			fmt.Fprintf(out, "  %s\n", strings.Join(pairs, " "))
		}
		if r.Warning && !flags.QuietWarnings {
			fmt.Fprintf(errOut, "warning: %q: %s\n", r.Input, r.Message)
		}
	}
	return nil
}
