// Package trainer drives the reward-guided fine-tuning loop: fetch a
// prompt batch, generate responses, score them, run one optimizer
// step, and report statistics.
package trainer

import "fmt"

// Config is the run configuration value object. It is constructed
// once, validated before the loop starts, and passed into components
// by the caller; nothing reads ambient global state.
type Config struct {
	// TotalSteps is the target number of training samples; the loop
	// runs ceil(TotalSteps / BatchSize) iterations.
	TotalSteps int
	// BatchSize is the number of records per optimizer step. Must be a
	// multiple of ForwardBatchSize.
	BatchSize int
	// ForwardBatchSize caps any single forward computation, bounding
	// peak accelerator memory independent of BatchSize.
	ForwardBatchSize int

	// Prompt token length range [TxtInMinLen, TxtInMaxLen).
	TxtInMinLen int
	TxtInMaxLen int
	// Response token length range [TxtOutMinLen, TxtOutMaxLen).
	TxtOutMinLen int
	TxtOutMaxLen int

	// MinChars is the corpus character pre-filter; zero uses the
	// corpus default.
	MinChars int

	// Seed, when non-zero, makes length sampling and generation
	// deterministic across runs.
	Seed int64

	// SaveDest, when set, asks the policy backend to persist weights
	// after the final iteration.
	SaveDest string
}

// Validate checks the configuration. All violations here are fatal
// configuration errors, surfaced before any generation or scoring.
func (c Config) Validate() error {
	if c.TotalSteps <= 0 {
		return fmt.Errorf("total steps must be positive, got %d", c.TotalSteps)
	}
	if c.BatchSize <= 0 {
		return fmt.Errorf("batch size must be positive, got %d", c.BatchSize)
	}
	if c.ForwardBatchSize <= 0 {
		return fmt.Errorf("forward batch size must be positive, got %d", c.ForwardBatchSize)
	}
	if c.BatchSize%c.ForwardBatchSize != 0 {
		return fmt.Errorf("batch size %d is not a multiple of forward batch size %d", c.BatchSize, c.ForwardBatchSize)
	}
	if c.TxtInMinLen >= c.TxtInMaxLen {
		return fmt.Errorf("invalid prompt length range [%d, %d)", c.TxtInMinLen, c.TxtInMaxLen)
	}
	if c.TxtOutMinLen >= c.TxtOutMaxLen {
		return fmt.Errorf("invalid response length range [%d, %d)", c.TxtOutMinLen, c.TxtOutMaxLen)
	}
	return nil
}

// Iterations returns the number of loop iterations the configuration
// asks for.
func (c Config) Iterations() int {
	return (c.TotalSteps + c.BatchSize - 1) / c.BatchSize
}
