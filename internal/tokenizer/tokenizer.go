package tokenizer

// WordTokenizer splits text into word-level tokens for readable statistics
type WordTokenizer interface {
	Tokenize(text string) []string
}

// Encoder converts text into model-specific subword token IDs
type Encoder interface {
	Name() string
	Encode(text string) []int
	Count(text string) int
}

// EncoderProvider resolves encoding names to ready encoders, constructing
// each encoding once and sharing it across models that use it
type EncoderProvider struct {
	build func(encoding string) (Encoder, error)
	cache map[string]Encoder
}

// NewEncoderProvider returns a provider backed by tiktoken encodings
func NewEncoderProvider() *EncoderProvider {
	return NewEncoderProviderWith(func(encoding string) (Encoder, error) {
		return NewTiktoken(encoding)
	})
}

// NewEncoderProviderWith uses a custom encoder constructor so callers can
// substitute stub encoders
func NewEncoderProviderWith(build func(encoding string) (Encoder, error)) *EncoderProvider {
	return &EncoderProvider{
		build: build,
		cache: make(map[string]Encoder),
	}
}

func (p *EncoderProvider) For(encoding string) (Encoder, error) {
	if enc, ok := p.cache[encoding]; ok {
		return enc, nil
	}

	enc, err := p.build(encoding)
	if err != nil {
		return nil, err
	}

	p.cache[encoding] = enc
	return enc, nil
}
