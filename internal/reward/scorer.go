package reward

import (
	"context"
	"fmt"
)

// Scorer turns classifier outputs into one reward scalar per text. It
// chunks large inputs at forwardBatchSize to bound peak memory on the
// classifier side; chunking never changes output values or order.
type Scorer struct {
	classifier       Classifier
	forwardBatchSize int
}

// NewScorer creates a scorer. forwardBatchSize caps the number of
// texts sent to the classifier in one call.
func NewScorer(classifier Classifier, forwardBatchSize int) (*Scorer, error) {
	if classifier == nil {
		return nil, fmt.Errorf("scorer requires a classifier")
	}
	if forwardBatchSize < 1 {
		return nil, fmt.Errorf("forward batch size must be positive, got %d", forwardBatchSize)
	}
	return &Scorer{classifier: classifier, forwardBatchSize: forwardBatchSize}, nil
}

// Score returns the POSITIVE-class score for each text, in input order.
func (s *Scorer) Score(ctx context.Context, texts []string) ([]float64, error) {
	rewards := make([]float64, 0, len(texts))
	for start := 0; start < len(texts); start += s.forwardBatchSize {
		end := start + s.forwardBatchSize
		if end > len(texts) {
			end = len(texts)
		}
		chunk := texts[start:end]

		scores, err := s.classifier.Score(ctx, chunk)
		if err != nil {
			return nil, fmt.Errorf("score chunk [%d, %d): %w", start, end, err)
		}
		if len(scores) != len(chunk) {
			return nil, fmt.Errorf("classifier returned %d score vectors for %d texts", len(scores), len(chunk))
		}
		for i, vec := range scores {
			if len(vec) <= PositiveIndex {
				return nil, fmt.Errorf("item %d: score vector has %d classes, need %d", start+i, len(vec), PositiveIndex+1)
			}
			rewards = append(rewards, vec[PositiveIndex].Score)
		}
	}
	return rewards, nil
}
