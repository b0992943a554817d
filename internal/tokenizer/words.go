package tokenizer

import "unicode"

// Words is the production word tokenizer. A word is a maximal run of
// letters and digits; apostrophes and hyphens are kept inside a word when
// flanked by letters or digits, so "don't" and "well-known" stay single
// tokens. Every other non-space character becomes a token of its own.
// Case is preserved and nothing is normalized.
type Words struct{}

func NewWords() *Words {
	return &Words{}
}

func (w *Words) Tokenize(text string) []string {
	runes := []rune(text)
	var tokens []string

	i := 0
	for i < len(runes) {
		r := runes[i]
		switch {
		case unicode.IsSpace(r):
			i++

		case isWordRune(r):
			j := i + 1
			for j < len(runes) {
				if isWordRune(runes[j]) {
					j++
					continue
				}
				if isJoiner(runes[j]) && j+1 < len(runes) && isWordRune(runes[j+1]) {
					j += 2
					continue
				}
				break
			}
			tokens = append(tokens, string(runes[i:j]))
			i = j

		default:
			tokens = append(tokens, string(r))
			i++
		}
	}

	return tokens
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

func isJoiner(r rune) bool {
	return r == '\'' || r == '’' || r == '-'
}
