// Package tokenizer counts prompt tokens client-side with tiktoken.
package tokenizer

import (
	"sync"
	"unicode/utf8"

	"github.com/pkoukk/tiktoken-go"
)

// Encoding is the BPE used for counting. It matches current GPT and
// Gemini-class tokenizers closely enough for size reporting.
const Encoding = "cl100k_base"

// Tokenizer counts tokens in text.
type Tokenizer struct {
	encoder *tiktoken.Tiktoken
}

// New loads the encoding. The first call may download the BPE ranks.
func New() (*Tokenizer, error) {
	enc, err := tiktoken.GetEncoding(Encoding)
	if err != nil {
		return nil, err
	}
	return &Tokenizer{encoder: enc}, nil
}

// CountTokens returns the number of tokens in text. A nil tokenizer
// falls back to an estimate.
func (t *Tokenizer) CountTokens(text string) int {
	if t == nil || t.encoder == nil {
		return Estimate(text)
	}
	return len(t.encoder.Encode(text, nil, nil))
}

// Estimate approximates a token count at four characters per token.
func Estimate(text string) int {
	n := utf8.RuneCountInString(text)
	if n == 0 {
		return 0
	}
	return (n + 3) / 4
}

var (
	shared     *Tokenizer
	sharedOnce sync.Once
)

// CountTokens counts with a lazily loaded shared tokenizer, estimating
// when the encoding cannot be loaded.
func CountTokens(text string) int {
	sharedOnce.Do(func() {
		shared, _ = New()
	})
	return shared.CountTokens(text)
}
