package corpus

import (
	"fmt"

	"github.com/dmarx/trl/internal/sampler"
)

// DefaultMinChars is the character-count pre-filter threshold. It is a
// cheap coarse filter: it avoids tokenizing documents too short to
// yield a useful prompt, but is deliberately measured in characters,
// not tokens, so minimal prompts can still slip through and must be
// tolerated downstream.
const DefaultMinChars = 200

// PreparerOptions configures corpus preparation.
type PreparerOptions struct {
	// MinChars drops raw items shorter than this many characters.
	// Zero means DefaultMinChars.
	MinChars int
}

// Preparer turns raw text items into Records: filter by length, encode,
// truncate to a freshly sampled prompt length, and decode the truncated
// ids back into the query string. The decoded query may differ from a
// character slice of the raw text because of tokenizer boundaries.
type Preparer struct {
	tok      Tokenizer
	inputLen *sampler.LengthSampler
	minChars int
	newID    func() string
}

// NewPreparer creates a Preparer. inputLen governs the prompt token
// length drawn per record. newID may be nil for tests.
func NewPreparer(tok Tokenizer, inputLen *sampler.LengthSampler, opts PreparerOptions, newID func() string) (*Preparer, error) {
	if tok == nil {
		return nil, fmt.Errorf("preparer requires a tokenizer")
	}
	if inputLen == nil {
		return nil, fmt.Errorf("preparer requires an input length sampler")
	}
	minChars := opts.MinChars
	if minChars == 0 {
		minChars = DefaultMinChars
	}
	if newID == nil {
		n := 0
		newID = func() string {
			n++
			return fmt.Sprintf("rec-%06d", n)
		}
	}
	return &Preparer{tok: tok, inputLen: inputLen, minChars: minChars, newID: newID}, nil
}

// Prepare converts raw items into Records, dropping items below the
// character threshold. Order of surviving items is preserved.
func (p *Preparer) Prepare(items []RawItem) []Record {
	records := make([]Record, 0, len(items))
	for _, it := range items {
		if len(it.Text) < p.minChars {
			continue
		}
		records = append(records, p.prepareOne(it))
	}
	return records
}

func (p *Preparer) prepareOne(it RawItem) Record {
	size := p.inputLen.Sample()
	tokens := p.tok.Encode(it.Text)
	if len(tokens) > size {
		tokens = tokens[:size]
	}
	// tokens may come up short of size for dense-vocabulary edge cases;
	// the record keeps whatever the slice produced.
	return Record{
		ID:       p.newID(),
		RawText:  it.Text,
		TokenIDs: tokens,
		Query:    p.tok.Decode(tokens),
	}
}
