package tokenizer

import (
	"fmt"

	"github.com/pkoukk/tiktoken-go"
)

// Tiktoken wraps a BPE encoding from tiktoken-go.
type Tiktoken struct {
	encoding string
	enc      *tiktoken.Tiktoken
}

// NewTiktoken resolves the named BPE encoding up front, so an unknown or
// unavailable encoding fails at setup time rather than mid-analysis.
// Known encodings include "o200k_base" (gpt-4o family) and "cl100k_base"
// (gpt-4 family).
func NewTiktoken(encoding string) (*Tiktoken, error) {
	enc, err := tiktoken.GetEncoding(encoding)
	if err != nil {
		return nil, fmt.Errorf("failed to load encoding %q: %w", encoding, err)
	}

	return &Tiktoken{
		encoding: encoding,
		enc:      enc,
	}, nil
}

func (t *Tiktoken) Name() string {
	return t.encoding
}

func (t *Tiktoken) Encode(text string) []int {
	return t.enc.Encode(text, nil, nil)
}

func (t *Tiktoken) Count(text string) int {
	return len(t.enc.Encode(text, nil, nil))
}
