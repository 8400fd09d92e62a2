// Package metrics receives per-iteration training statistics. Sinks
// are fire-and-forget: the loop never blocks on or retries a sink.
package metrics

import (
	"context"
	"time"
)

// Row is one per-item (query, response, reward) line of an iteration.
type Row struct {
	Query    string  `json:"query"`
	Response string  `json:"response"`
	Reward   float64 `json:"reward"`
}

// IterationRecord is the write-once statistics record emitted after
// each training iteration.
type IterationRecord struct {
	RunID      string                 `json:"run_id"`
	Iteration  int                    `json:"iteration"`
	RewardMean float64                `json:"reward_mean"`
	RewardStd  float64                `json:"reward_std"`
	Rewards    []float64              `json:"rewards"`
	Rows       []Row                  `json:"rows,omitempty"`
	Timing     map[string]float64     `json:"timing"`
	Optimizer  map[string]interface{} `json:"optimizer,omitempty"`
	CreatedAt  time.Time              `json:"created_at"`
}

// Sink accepts iteration records. Implementations report failures
// through their own channels (logs); Emit never returns an error to
// the loop.
type Sink interface {
	Emit(ctx context.Context, rec IterationRecord)
}

// Multi fans a record out to several sinks in order.
type Multi []Sink

func (m Multi) Emit(ctx context.Context, rec IterationRecord) {
	for _, s := range m {
		s.Emit(ctx, rec)
	}
}

// Discard drops every record. Useful for tests and dry runs.
type Discard struct{}

func (Discard) Emit(context.Context, IterationRecord) {}
