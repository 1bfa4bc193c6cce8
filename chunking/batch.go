package chunking

import (
	"github.com/poiesic/corpus/core"
)

const (
	// DefaultMaxBatchTokens is the token ceiling per embedding batch.
	DefaultMaxBatchTokens = 2000

	// prefixTokenOverhead accounts for the instruction prefix prepended to
	// each chunk before embedding.
	prefixTokenOverhead = 5
	// tokenSafetyMargin keeps truncated chunks comfortably under the ceiling.
	tokenSafetyMargin = 10
)

// Batcher groups chunks into batches whose estimated token cost stays under
// a fixed ceiling.
type Batcher struct {
	counter   TokenCounter
	maxTokens int
}

// NewBatcher creates a batcher. A nil counter falls back to the word-count
// heuristic; a non-positive ceiling falls back to the default.
func NewBatcher(counter TokenCounter, maxTokens int) *Batcher {
	if counter == nil {
		counter = NewHeuristicCounter()
	}
	if maxTokens <= 0 {
		maxTokens = DefaultMaxBatchTokens
	}
	return &Batcher{counter: counter, maxTokens: maxTokens}
}

// MakeBatches packs chunks into ordered batches. Chunk order is preserved
// within and across batches. A chunk whose cost alone exceeds the ceiling is
// truncated to fit and reported as a token truncation warning; after
// truncation every chunk fits in a batch by itself.
func (b *Batcher) MakeBatches(chunks []core.Chunk) ([]core.Batch, []core.TruncationWarning) {
	if len(chunks) == 0 {
		return nil, nil
	}

	var (
		batches   []core.Batch
		warnings  []core.TruncationWarning
		cur       core.Batch
		curTokens int
	)

	for _, chunk := range chunks {
		tokens := b.counter.Count(chunk.Text)
		if tokens+prefixTokenOverhead > b.maxTokens {
			budget := b.maxTokens - prefixTokenOverhead - tokenSafetyMargin
			truncated := b.counter.Truncate(chunk.Text, budget)
			newTokens := b.counter.Count(truncated)
			warnings = append(warnings, core.TruncationWarning{
				ChunkIndex:    chunk.Index,
				OriginalSize:  tokens,
				TruncatedSize: newTokens,
				Kind:          core.TruncationToken,
				SectionTitle:  chunk.SectionTitle,
			})
			chunk.Text = truncated
			tokens = newTokens
		}

		cost := tokens + prefixTokenOverhead
		if len(cur) > 0 && curTokens+cost > b.maxTokens {
			batches = append(batches, cur)
			cur = nil
			curTokens = 0
		}
		cur = append(cur, chunk)
		curTokens += cost
	}
	if len(cur) > 0 {
		batches = append(batches, cur)
	}
	return batches, warnings
}
