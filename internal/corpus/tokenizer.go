package corpus

import (
	"fmt"

	tiktoken "github.com/pkoukk/tiktoken-go"
)

// Tokenizer converts between text and token ids. The pad id is used
// only as a batching filler during generation; decode never needs to
// round-trip exactly with encode.
type Tokenizer interface {
	Encode(text string) []int
	Decode(tokens []int) string
	PadID() int
	EOSID() int
}

// BPE wraps a tiktoken byte-pair encoding as a Tokenizer. GPT-2 style
// vocabularies have no dedicated pad token, so the end-of-text id
// doubles as the pad filler.
type BPE struct {
	enc *tiktoken.Tiktoken
	eot int
}

// NewBPE loads a named tiktoken encoding, e.g. "r50k_base" for GPT-2.
func NewBPE(encoding string) (*BPE, error) {
	enc, err := tiktoken.GetEncoding(encoding)
	if err != nil {
		return nil, fmt.Errorf("load encoding %q: %w", encoding, err)
	}
	eot := enc.Encode("<|endoftext|>", []string{"<|endoftext|>"}, nil)
	if len(eot) != 1 {
		return nil, fmt.Errorf("encoding %q has no end-of-text token", encoding)
	}
	return &BPE{enc: enc, eot: eot[0]}, nil
}

func (b *BPE) Encode(text string) []int {
	return b.enc.EncodeOrdinary(text)
}

func (b *BPE) Decode(tokens []int) string {
	return b.enc.Decode(tokens)
}

func (b *BPE) PadID() int { return b.eot }

func (b *BPE) EOSID() int { return b.eot }
