package trainer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"
	log "github.com/sirupsen/logrus"

	"github.com/dmarx/trl/internal/corpus"
	"github.com/dmarx/trl/internal/metrics"
	"github.com/dmarx/trl/internal/policy"
	"github.com/dmarx/trl/internal/ppo"
	"github.com/dmarx/trl/internal/reward"
)

// Deps are the loop's injected collaborators.
type Deps struct {
	Iterator  corpus.BatchIterator
	Tokenizer corpus.Tokenizer
	Stage     *policy.Stage
	Scorer    *reward.Scorer
	Optimizer ppo.Optimizer
	Sink      metrics.Sink
	Logger    *log.Logger
	// Saver is optional; when present and SaveDest is configured, it
	// is invoked once after the final iteration.
	Saver policy.Saver
}

// Loop is the training orchestrator. Iterations are strictly
// sequential: the optimizer step of iteration k must finish before
// generation of iteration k+1 starts, since generation uses the
// weights that step just moved.
type Loop struct {
	cfg   Config
	deps  Deps
	runID string
}

// New validates the configuration and wires the loop.
func New(cfg Config, deps Deps) (*Loop, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if deps.Iterator == nil || deps.Tokenizer == nil || deps.Stage == nil ||
		deps.Scorer == nil || deps.Optimizer == nil {
		return nil, fmt.Errorf("loop requires iterator, tokenizer, stage, scorer, and optimizer")
	}
	if deps.Sink == nil {
		deps.Sink = metrics.Discard{}
	}
	if deps.Logger == nil {
		deps.Logger = log.StandardLogger()
	}
	return &Loop{cfg: cfg, deps: deps, runID: ulid.Make().String()}, nil
}

// RunID identifies this run in emitted metrics.
func (l *Loop) RunID() string { return l.runID }

// Run drives the loop to completion. It stops early without error when
// the corpus runs out of full batches; every other failure aborts the
// run. Returns the number of completed iterations.
func (l *Loop) Run(ctx context.Context) (int, error) {
	total := l.cfg.Iterations()
	l.deps.Logger.WithFields(log.Fields{
		"run_id":     l.runID,
		"iterations": total,
		"batch_size": l.cfg.BatchSize,
	}).Info("starting training run")

	completed := 0
	for iter := 0; iter < total; iter++ {
		records, fetchSecs, err := l.fetch(ctx)
		if errors.Is(err, corpus.ErrExhausted) {
			l.deps.Logger.WithFields(log.Fields{
				"run_id":    l.runID,
				"completed": completed,
				"requested": total,
			}).Warn("corpus exhausted before configured iteration count")
			break
		}
		if err != nil {
			return completed, fmt.Errorf("iteration %d: fetch batch: %w", iter, err)
		}

		rec, err := l.iterate(ctx, iter, records)
		if err != nil {
			return completed, fmt.Errorf("iteration %d: %w", iter, err)
		}
		rec.Timing["fetch"] = fetchSecs

		// Fire-and-forget: sink failures are the sink's problem.
		l.deps.Sink.Emit(ctx, rec)
		completed++
	}

	if l.cfg.SaveDest != "" && l.deps.Saver != nil {
		if err := l.deps.Saver.Save(ctx, l.cfg.SaveDest); err != nil {
			return completed, fmt.Errorf("save policy: %w", err)
		}
		l.deps.Logger.WithField("dest", l.cfg.SaveDest).Info("policy saved")
	}

	l.deps.Logger.WithFields(log.Fields{
		"run_id":    l.runID,
		"completed": completed,
	}).Info("training run finished")
	return completed, nil
}

func (l *Loop) fetch(ctx context.Context) ([]corpus.Record, float64, error) {
	start := time.Now()
	records, err := l.deps.Iterator.Next(ctx)
	if err != nil {
		return nil, 0, err
	}
	if len(records) != l.cfg.BatchSize {
		return nil, 0, fmt.Errorf("iterator returned %d records, want %d", len(records), l.cfg.BatchSize)
	}
	return records, time.Since(start).Seconds(), nil
}

// iterate runs Generate → Score → Optimize → assemble for one batch.
func (l *Loop) iterate(ctx context.Context, iter int, records []corpus.Record) (metrics.IterationRecord, error) {
	timing := map[string]float64{}

	// Generate: one independently drawn response length per item;
	// response order matches prompt order.
	start := time.Now()
	prompts := make([][]int, len(records))
	for i, r := range records {
		prompts[i] = r.TokenIDs
	}
	responses, err := l.deps.Stage.RespondBatch(ctx, prompts)
	if err != nil {
		return metrics.IterationRecord{}, fmt.Errorf("generate: %w", err)
	}
	timing["generate"] = time.Since(start).Seconds()

	// Score: query+response concatenation, no separator, batch order.
	start = time.Now()
	texts := make([]string, len(records))
	responseTexts := make([]string, len(records))
	for i, r := range records {
		responseTexts[i] = l.deps.Tokenizer.Decode(responses[i])
		texts[i] = r.Query + responseTexts[i]
	}
	rewards, err := l.deps.Scorer.Score(ctx, texts)
	if err != nil {
		return metrics.IterationRecord{}, fmt.Errorf("score: %w", err)
	}
	timing["score"] = time.Since(start).Seconds()

	// Per-item alignment is correctness-critical for the optimizer and
	// it has no cross-check of its own, so fail loudly here.
	if len(rewards) != len(records) {
		return metrics.IterationRecord{}, fmt.Errorf("got %d rewards for %d records", len(rewards), len(records))
	}

	// Optimize.
	start = time.Now()
	stats, err := l.deps.Optimizer.Step(ctx, prompts, responses, rewards)
	if err != nil {
		return metrics.IterationRecord{}, fmt.Errorf("optimize: %w", err)
	}
	timing["optimize"] = time.Since(start).Seconds()

	mean, std := ppo.MeanStd(rewards)
	l.deps.Logger.WithFields(log.Fields{
		"run_id":      l.runID,
		"iteration":   iter,
		"reward_mean": mean,
	}).Debug("iteration statistics")

	rows := make([]metrics.Row, len(records))
	for i, r := range records {
		rows[i] = metrics.Row{Query: r.Query, Response: responseTexts[i], Reward: rewards[i]}
	}

	return metrics.IterationRecord{
		RunID:      l.runID,
		Iteration:  iter,
		RewardMean: mean,
		RewardStd:  std,
		Rewards:    rewards,
		Rows:       rows,
		Timing:     timing,
		Optimizer:  stats,
		CreatedAt:  time.Now(),
	}, nil
}
