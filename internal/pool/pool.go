// Package pool runs one task per symbol on a bounded set of workers and
// collects the results by symbol.
package pool

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Func loads or computes the value for one symbol.
type Func[T any] func(ctx context.Context, symbol string) (T, error)

// Result is sent by workers for fan-in.
type Result[T any] struct {
	Symbol string
	Value  T
	Err    error
}

// Failure describes one failed symbol.
type Failure struct {
	Symbol string `json:"symbol"`
	Reason string `json:"reason"`
}

// Summary counts the outcome of a run.
type Summary struct {
	Success int
	Failed  []Failure
}

// Options configures Run.
type Options struct {
	// Workers bounds the number of concurrent tasks; values below 1 mean 1.
	Workers int
	// SkipOnError leaves failing symbols out of the result instead of
	// failing the run.
	SkipOnError bool
	Logger      *slog.Logger
}

// Run calls fn once per symbol with at most opts.Workers tasks in flight.
// Every symbol runs to completion and every failure lands in the Summary.
// Without SkipOnError the error of the first failing symbol in sorted order
// is returned, so the outcome does not depend on scheduling.
func Run[T any](ctx context.Context, symbols []string, fn Func[T], opts Options) (map[string]T, Summary, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	workers := opts.Workers
	if workers < 1 {
		workers = 1
	}

	var g errgroup.Group
	g.SetLimit(workers)

	results := make(chan Result[T], len(symbols))
	values := make(map[string]T, len(symbols))
	errs := make(map[string]error)
	var summary Summary
	var resWg sync.WaitGroup
	resWg.Add(1)
	go func() {
		defer resWg.Done()
		collect(results, values, errs, &summary)
	}()

	for _, symbol := range symbols {
		symbol := symbol
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			v, err := fn(ctx, symbol)
			if err != nil {
				logger.Warn("task fail", "symbol", symbol, "error", err, "skip", opts.SkipOnError)
			}
			results <- Result[T]{Symbol: symbol, Value: v, Err: err}
			return nil
		})
	}
	_ = g.Wait()
	close(results)
	resWg.Wait()

	logger.Debug("summary", "symbols", len(symbols), "success", summary.Success, "failed", len(summary.Failed), "workers", workers)
	if len(summary.Failed) > 0 {
		logger.Info("summary failed", "count", len(summary.Failed), "reasons", JoinFailedReasons(summary.Failed))
	}
	if err := ctx.Err(); err != nil {
		return values, summary, err
	}
	if !opts.SkipOnError && len(summary.Failed) > 0 {
		return values, summary, errs[summary.Failed[0].Symbol]
	}
	return values, summary, nil
}

func collect[T any](results <-chan Result[T], values map[string]T, errs map[string]error, summary *Summary) {
	for r := range results {
		if r.Err != nil {
			errs[r.Symbol] = r.Err
			summary.Failed = append(summary.Failed, Failure{Symbol: r.Symbol, Reason: r.Err.Error()})
			continue
		}
		summary.Success++
		values[r.Symbol] = r.Value
	}
	sort.Slice(summary.Failed, func(i, j int) bool { return summary.Failed[i].Symbol < summary.Failed[j].Symbol })
}

// JoinFailedReasons renders at most five failures on one line.
func JoinFailedReasons(failed []Failure) string {
	if len(failed) == 0 {
		return ""
	}
	var b strings.Builder
	for i, f := range failed {
		if i > 0 {
			b.WriteString("; ")
		}
		b.WriteString(f.Symbol)
		b.WriteString(": ")
		b.WriteString(f.Reason)
		if i >= 4 && len(failed) > 6 {
			b.WriteString(fmt.Sprintf(" (+%d more)", len(failed)-5))
			break
		}
	}
	return b.String()
}
