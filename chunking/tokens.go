package chunking

import (
	"log/slog"
	"strings"

	"github.com/pkoukk/tiktoken-go"
)

const defaultEncoding = "cl100k_base"

// heuristic ratios used when no tokenizer is available.
const (
	wordsPerToken = 1.3
)

// TokenCounter estimates token counts and truncates text to a token budget.
type TokenCounter interface {
	Count(text string) int
	Truncate(text string, maxTokens int) string
}

// NewTokenCounter returns a tiktoken-backed counter for the given encoding,
// falling back to a word-count heuristic if the encoding cannot be loaded
// (for example in offline environments where the BPE data is unavailable).
func NewTokenCounter(encoding string) TokenCounter {
	if encoding == "" {
		encoding = defaultEncoding
	}
	enc, err := tiktoken.GetEncoding(encoding)
	if err != nil {
		enc, err = tiktoken.EncodingForModel(encoding)
	}
	if err != nil {
		slog.Warn("tokenizer unavailable, using word-count heuristic",
			"encoding", encoding, "error", err)
		return heuristicCounter{}
	}
	return &tiktokenCounter{enc: enc}
}

// NewHeuristicCounter returns the word-count fallback counter directly.
func NewHeuristicCounter() TokenCounter {
	return heuristicCounter{}
}

type tiktokenCounter struct {
	enc *tiktoken.Tiktoken
}

func (c *tiktokenCounter) Count(text string) int {
	return len(c.enc.Encode(text, nil, nil))
}

func (c *tiktokenCounter) Truncate(text string, maxTokens int) string {
	ids := c.enc.Encode(text, nil, nil)
	if len(ids) <= maxTokens {
		return text
	}
	if maxTokens <= 0 {
		return ""
	}
	return c.enc.Decode(ids[:maxTokens])
}

// heuristicCounter estimates roughly 1.3 tokens per whitespace-separated
// word. Truncation drops whole words so the truncated text never counts
// higher than the budget under the same estimate.
type heuristicCounter struct{}

func (heuristicCounter) Count(text string) int {
	return int(float64(len(strings.Fields(text))) * wordsPerToken)
}

func (heuristicCounter) Truncate(text string, maxTokens int) string {
	words := strings.Fields(text)
	keep := int(float64(maxTokens) / wordsPerToken)
	if keep >= len(words) {
		return text
	}
	if keep <= 0 {
		return "..."
	}
	return strings.Join(words[:keep], " ") + "..."
}
