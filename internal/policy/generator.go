// Package policy fronts the trainable generation model and produces
// fixed-length response continuations for prompts.
package policy

import "context"

// SamplingConfig mirrors the generation options the model backend
// recognizes. The defaults used for training disable every constraint:
// pure stochastic sampling over the full vocabulary.
type SamplingConfig struct {
	// MinLength of -1 disables the backend's early-stop minimum.
	MinLength int `json:"min_length"`
	// TopK of 0 disables top-k filtering.
	TopK int `json:"top_k"`
	// TopP of 1.0 disables nucleus filtering.
	TopP float64 `json:"top_p"`
	// DoSample selects stochastic sampling over greedy decoding.
	DoSample bool `json:"do_sample"`
	// PadTokenID is supplied only to satisfy the backend's batching;
	// pad tokens are stripped from output before slicing.
	PadTokenID int `json:"pad_token_id"`
	// Seed, when non-zero, pins the backend's sampling RNG.
	Seed int64 `json:"seed,omitempty"`
}

// UnconstrainedSampling returns the training-time config: no top-k, no
// nucleus cutoff, no minimum length, always sampling.
func UnconstrainedSampling(padTokenID int) SamplingConfig {
	return SamplingConfig{
		MinLength:  -1,
		TopK:       0,
		TopP:       1.0,
		DoSample:   true,
		PadTokenID: padTokenID,
	}
}

// Generator produces token continuations from the current policy
// weights. The returned buffer includes the prompt prefix followed by
// up to maxNewTokens generated tokens, possibly interleaved with pad
// tokens from batching.
type Generator interface {
	Generate(ctx context.Context, prompt []int, maxNewTokens int, cfg SamplingConfig) ([]int, error)
}

// Saver persists the current policy weights and tokenizer assets to a
// named destination. Implemented by backends that support end-of-run
// checkpointing.
type Saver interface {
	Save(ctx context.Context, dest string) error
}
