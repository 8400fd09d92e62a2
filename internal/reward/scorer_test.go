package reward

import (
	"context"
	"fmt"
	"hash/fnv"
	"testing"
)

// hashClassifier returns deterministic per-text scores so chunked and
// unchunked calls can be compared exactly.
type hashClassifier struct {
	calls    []int // chunk sizes observed
	maxChunk int
}

func (h *hashClassifier) Score(ctx context.Context, texts []string) ([][]ClassScore, error) {
	h.calls = append(h.calls, len(texts))
	if h.maxChunk > 0 && len(texts) > h.maxChunk {
		return nil, fmt.Errorf("chunk of %d exceeds limit %d", len(texts), h.maxChunk)
	}
	out := make([][]ClassScore, len(texts))
	for i, text := range texts {
		f := fnv.New32a()
		f.Write([]byte(text))
		v := float64(f.Sum32()%1000)/100 - 5
		out[i] = []ClassScore{
			{Label: LabelNegative, Score: -v},
			{Label: LabelPositive, Score: v},
		}
	}
	return out, nil
}

type constantClassifier struct {
	positive float64
	negative float64
}

func (c constantClassifier) Score(ctx context.Context, texts []string) ([][]ClassScore, error) {
	out := make([][]ClassScore, len(texts))
	for i := range texts {
		out[i] = []ClassScore{
			{Label: LabelNegative, Score: c.negative},
			{Label: LabelPositive, Score: c.positive},
		}
	}
	return out, nil
}

type shortVectorClassifier struct{}

func (shortVectorClassifier) Score(ctx context.Context, texts []string) ([][]ClassScore, error) {
	out := make([][]ClassScore, len(texts))
	for i := range texts {
		out[i] = []ClassScore{{Label: LabelNegative, Score: 0}}
	}
	return out, nil
}

func texts(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("sample text %d", i)
	}
	return out
}

func TestScore_ChunkInvariant(t *testing.T) {
	input := texts(11)

	whole, err := scoreWith(t, &hashClassifier{}, len(input), input)
	if err != nil {
		t.Fatalf("unchunked score: %v", err)
	}

	for _, chunkSize := range []int{1, 2, 3, 4, 5, 11, 16} {
		chunked, err := scoreWith(t, &hashClassifier{}, chunkSize, input)
		if err != nil {
			t.Fatalf("chunk size %d: %v", chunkSize, err)
		}
		if len(chunked) != len(whole) {
			t.Fatalf("chunk size %d: got %d rewards, want %d", chunkSize, len(chunked), len(whole))
		}
		for i := range whole {
			if chunked[i] != whole[i] {
				t.Errorf("chunk size %d, item %d: %v != %v", chunkSize, i, chunked[i], whole[i])
			}
		}
	}
}

func scoreWith(t *testing.T, c Classifier, forwardBatchSize int, input []string) ([]float64, error) {
	t.Helper()
	s, err := NewScorer(c, forwardBatchSize)
	if err != nil {
		t.Fatalf("NewScorer: %v", err)
	}
	return s.Score(context.Background(), input)
}

func TestScore_RespectsForwardBatchSize(t *testing.T) {
	c := &hashClassifier{maxChunk: 4}
	s, err := NewScorer(c, 4)
	if err != nil {
		t.Fatalf("NewScorer: %v", err)
	}
	if _, err := s.Score(context.Background(), texts(10)); err != nil {
		t.Fatalf("Score: %v", err)
	}
	// 10 texts at forward batch 4: chunks of 4, 4, 2.
	want := []int{4, 4, 2}
	if len(c.calls) != len(want) {
		t.Fatalf("expected %d classifier calls, got %d", len(want), len(c.calls))
	}
	for i, n := range want {
		if c.calls[i] != n {
			t.Errorf("call %d: expected chunk of %d, got %d", i, n, c.calls[i])
		}
	}
}

func TestScore_ExtractsPositiveClass(t *testing.T) {
	rewards, err := scoreWith(t, constantClassifier{positive: 5.0, negative: -5.0}, 4, texts(3))
	if err != nil {
		t.Fatalf("Score: %v", err)
	}
	for i, r := range rewards {
		if r != 5.0 {
			t.Errorf("item %d: expected reward 5.0, got %v", i, r)
		}
	}
}

func TestScore_ShortVectorFailsLoudly(t *testing.T) {
	if _, err := scoreWith(t, shortVectorClassifier{}, 4, texts(2)); err == nil {
		t.Error("expected error for single-class score vector")
	}
}

func TestScore_EmptyInput(t *testing.T) {
	rewards, err := scoreWith(t, &hashClassifier{}, 4, nil)
	if err != nil {
		t.Fatalf("Score: %v", err)
	}
	if len(rewards) != 0 {
		t.Errorf("expected no rewards, got %d", len(rewards))
	}
}

func TestNewScorer_InvalidBatchSize(t *testing.T) {
	if _, err := NewScorer(&hashClassifier{}, 0); err == nil {
		t.Error("expected error for forward batch size 0")
	}
}
