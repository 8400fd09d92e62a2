// Package reward scores generated text with an external sentiment
// classifier and extracts the scalar reward signal.
package reward

import "context"

// Label ordering of the two-class classifier output.
const (
	LabelNegative = "NEGATIVE"
	LabelPositive = "POSITIVE"
)

// PositiveIndex is the position of the POSITIVE class in each per-item
// score vector.
const PositiveIndex = 1

// ClassScore is one class entry of a classifier output vector.
type ClassScore struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// Classifier maps a batch of texts to per-item score vectors ordered
// [NEGATIVE, POSITIVE]. Scores are raw logits, not probabilities, and
// scoring has no side effects on the model.
type Classifier interface {
	Score(ctx context.Context, texts []string) ([][]ClassScore, error)
}
