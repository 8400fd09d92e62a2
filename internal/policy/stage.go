package policy

import (
	"context"
	"fmt"

	"github.com/dmarx/trl/internal/sampler"
)

// Stage drives response generation for prompt batches. Each response
// gets a freshly drawn target length, so revisiting the same prompt
// later produces a different length.
type Stage struct {
	gen       Generator
	outputLen *sampler.LengthSampler
	cfg       SamplingConfig
}

// NewStage creates a generation stage. outputLen governs the response
// length drawn per generation call.
func NewStage(gen Generator, outputLen *sampler.LengthSampler, cfg SamplingConfig) (*Stage, error) {
	if gen == nil {
		return nil, fmt.Errorf("stage requires a generator")
	}
	if outputLen == nil {
		return nil, fmt.Errorf("stage requires an output length sampler")
	}
	return &Stage{gen: gen, outputLen: outputLen, cfg: cfg}, nil
}

// Respond generates one response for the prompt: draw a target length,
// run the generator, strip pad tokens, and keep exactly the last
// genLen tokens of the remaining buffer. End-of-sequence tokens are
// ordinary vocabulary tokens here: even if the model stopped early,
// the slice is taken from the raw buffer so response length stays
// exact. Changing this to stop-aware slicing would silently change the
// reward computation downstream.
func (s *Stage) Respond(ctx context.Context, prompt []int) ([]int, error) {
	genLen := s.outputLen.Sample()
	raw, err := s.gen.Generate(ctx, prompt, genLen, s.cfg)
	if err != nil {
		return nil, fmt.Errorf("generate: %w", err)
	}

	kept := raw[:0:0]
	for _, tok := range raw {
		if tok == s.cfg.PadTokenID {
			continue
		}
		kept = append(kept, tok)
	}
	if len(kept) < genLen {
		return nil, fmt.Errorf("generator returned %d non-pad tokens, need at least %d", len(kept), genLen)
	}
	return kept[len(kept)-genLen:], nil
}

// RespondBatch generates one response per prompt, in prompt order.
// Items are independent; sequencing here is an implementation choice,
// not a correctness requirement.
func (s *Stage) RespondBatch(ctx context.Context, prompts [][]int) ([][]int, error) {
	responses := make([][]int, len(prompts))
	for i, prompt := range prompts {
		resp, err := s.Respond(ctx, prompt)
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
		responses[i] = resp
	}
	return responses, nil
}
