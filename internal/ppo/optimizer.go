// Package ppo defines the policy-optimization boundary: the clipped
// policy-gradient step is performed by a training backend; this side
// owns its configuration, the KL coefficient schedule, and reward
// shaping helpers.
package ppo

import "context"

// Stats is the diagnostics mapping returned by one optimizer step:
// loss components, KL estimate, value statistics, timing. Keys are
// backend-defined; the loop merges them into the iteration record
// without inspecting them.
type Stats map[string]interface{}

// Config carries the construction-time optimizer settings. Ranges and
// coefficients are consumed by the training backend; batch sizes bound
// its internal forward passes.
type Config struct {
	LearningRate     float64 `json:"lr"`
	PPOEpochs        int     `json:"ppo_epochs"`
	ClipRange        float64 `json:"cliprange"`
	ClipRangeValue   float64 `json:"cliprange_value"`
	VFCoef           float64 `json:"vf_coef"`
	Gamma            float64 `json:"gamma"`
	Lam              float64 `json:"lam"`
	AdaptiveKL       bool    `json:"adap_kl_ctrl"`
	InitKLCoef       float64 `json:"init_kl_coef"`
	TargetKL         float64 `json:"target"`
	KLHorizon        int     `json:"horizon"`
	BatchSize        int     `json:"batch_size"`
	ForwardBatchSize int     `json:"forward_batch_size"`
}

// DefaultConfig returns the standard settings for sentiment-style
// fine-tuning runs.
func DefaultConfig() Config {
	return Config{
		LearningRate:     1.41e-5,
		PPOEpochs:        4,
		ClipRange:        0.2,
		ClipRangeValue:   0.2,
		VFCoef:           0.1,
		Gamma:            1.0,
		Lam:              0.95,
		AdaptiveKL:       true,
		InitKLCoef:       0.2,
		TargetKL:         6.0,
		KLHorizon:        10000,
		BatchSize:        256,
		ForwardBatchSize: 16,
	}
}

// Optimizer performs one PPO update over a full batch of order-aligned
// (prompt, response, reward) triplets and returns its diagnostics. The
// backend owns how many internal epochs it runs per call and computes
// the reference-policy KL penalty itself.
type Optimizer interface {
	Step(ctx context.Context, prompts, responses [][]int, rewards []float64) (Stats, error)
}
