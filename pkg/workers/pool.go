// Package workers runs finite batches of independent tasks through a small
// paced pool, keeping one outcome per item.
package workers

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Task is one unit of a batch run.
type Task func(ctx context.Context) error

// Config tunes pool behaviour.
type Config struct {
	Workers int
	Pace    time.Duration
	Logger  *zap.Logger
}

// Failure pairs a failed task index with its error.
type Failure struct {
	Index int
	Err   error
}

// Summary aggregates the outcomes of one batch run. Skipped counts tasks
// never dispatched because the context ended first.
type Summary struct {
	Total     int
	Succeeded int
	Failed    int
	Skipped   int
	Failures  []Failure
}

// Pool dispatches batch tasks with pacing between dispatches so large
// selections do not hammer the accounts API.
type Pool struct {
	workers int
	pace    time.Duration
	logger  *zap.Logger
}

// NewPool builds a pool with defaults applied.
func NewPool(cfg Config) *Pool {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &Pool{workers: cfg.Workers, pace: cfg.Pace, logger: cfg.Logger}
}

// Run executes the tasks and blocks until every dispatched task finishes.
// Outcomes are independent; one failure never stops the rest.
func (p *Pool) Run(ctx context.Context, tasks []Task) Summary {
	summary := Summary{Total: len(tasks)}
	if len(tasks) == 0 {
		return summary
	}

	type result struct {
		index int
		err   error
	}

	jobs := make(chan int)
	results := make(chan result, len(tasks))

	var wg sync.WaitGroup
	for w := 0; w < p.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				results <- result{index: idx, err: tasks[idx](ctx)}
			}
		}()
	}

	dispatched := 0
dispatch:
	for i := range tasks {
		if i > 0 && p.pace > 0 {
			timer := time.NewTimer(p.pace)
			select {
			case <-ctx.Done():
				timer.Stop()
				break dispatch
			case <-timer.C:
			}
		}
		select {
		case <-ctx.Done():
			break dispatch
		case jobs <- i:
			dispatched++
		}
	}
	close(jobs)
	wg.Wait()
	close(results)

	for r := range results {
		if r.err != nil {
			summary.Failed++
			summary.Failures = append(summary.Failures, Failure{Index: r.index, Err: r.err})
			p.logger.Warn("batch task failed", zap.Int("index", r.index), zap.Error(r.err))
		} else {
			summary.Succeeded++
		}
	}
	sort.Slice(summary.Failures, func(i, j int) bool {
		return summary.Failures[i].Index < summary.Failures[j].Index
	})
	summary.Skipped = summary.Total - dispatched
	return summary
}
