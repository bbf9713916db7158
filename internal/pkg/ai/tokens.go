package ai

import (
	"sync"

	apperrors "github.com/lazycommit/lazycommit/internal/pkg/errors"
	"github.com/pkoukk/tiktoken-go"
	tiktoken_loader "github.com/pkoukk/tiktoken-go-loader"
)

// TokenEncoding is the tokenizer used to size prompts.
const TokenEncoding = "cl100k_base"

// TokenCounter counts prompt tokens.
type TokenCounter interface {
	Count(text string) int
}

// EstimateCounter assumes four bytes per token.
type EstimateCounter struct{}

// Count returns the estimated token count of text.
func (EstimateCounter) Count(text string) int {
	return (len(text) + 3) / 4
}

// offlineLoader makes tiktoken read encodings embedded in the binary
// instead of downloading them on first use.
var offlineLoader sync.Once

// TiktokenCounter counts with tiktoken, loading the encoding on first use.
// If the encoding cannot be loaded it falls back to EstimateCounter.
type TiktokenCounter struct {
	once sync.Once
	enc  *tiktoken.Tiktoken
}

// NewTokenCounter returns the default token counter.
func NewTokenCounter() *TiktokenCounter {
	return &TiktokenCounter{}
}

// Count returns the number of tokens in text.
func (c *TiktokenCounter) Count(text string) int {
	c.once.Do(func() {
		offlineLoader.Do(func() {
			tiktoken.SetBpeLoader(tiktoken_loader.NewOfflineLoader())
		})
		enc, err := tiktoken.GetEncoding(TokenEncoding)
		if err != nil {
			apperrors.Debug("tokenizer %s unavailable, estimating: %v", TokenEncoding, err)
			return
		}
		c.enc = enc
	})
	if c.enc == nil {
		return EstimateCounter{}.Count(text)
	}
	return len(c.enc.Encode(text, nil, nil))
}
