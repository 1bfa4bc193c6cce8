package mock

import (
	"context"
	"hash/fnv"
	"sync/atomic"

	"github.com/poiesic/corpus/ai"
	"github.com/poiesic/corpus/core"
)

// MockDenseEmbedder is a test double for ai.DenseEmbedder.
// It allows custom behavior injection via function fields.
type MockDenseEmbedder struct {
	// EmbedTextsFunc is called by EmbedTexts if set.
	// If nil, uses default deterministic behavior.
	EmbedTextsFunc func(ctx context.Context, texts []string) ([][]float32, error)

	// Archive workers share one provider, so the counter must be atomic.
	callCount atomic.Int64
}

var _ ai.DenseEmbedder = (*MockDenseEmbedder)(nil)

// NewMockDenseEmbedder creates a mock embedder with default deterministic
// behavior.
func NewMockDenseEmbedder() *MockDenseEmbedder {
	return &MockDenseEmbedder{}
}

// EmbedTexts generates deterministic embeddings for multiple texts.
func (m *MockDenseEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	m.callCount.Add(1)

	if m.EmbedTextsFunc != nil {
		return m.EmbedTextsFunc(ctx, texts)
	}

	embeddings := make([][]float32, len(texts))
	for i, text := range texts {
		embeddings[i] = generateDeterministicVector(text, 384)
	}
	return embeddings, nil
}

// CallCount returns the number of times EmbedTexts was called.
func (m *MockDenseEmbedder) CallCount() int {
	return int(m.callCount.Load())
}

// Reset clears the call count and injected behavior.
func (m *MockDenseEmbedder) Reset() {
	m.callCount.Store(0)
	m.EmbedTextsFunc = nil
}

// MockSparseEmbedder is a test double for ai.SparseEmbedder.
type MockSparseEmbedder struct {
	// EmbedSparseFunc is called by EmbedSparse if set.
	// If nil, uses default deterministic behavior.
	EmbedSparseFunc func(ctx context.Context, texts []string) ([]core.SparseVector, error)

	callCount atomic.Int64
}

var _ ai.SparseEmbedder = (*MockSparseEmbedder)(nil)

// NewMockSparseEmbedder creates a mock sparse embedder with default
// deterministic behavior.
func NewMockSparseEmbedder() *MockSparseEmbedder {
	return &MockSparseEmbedder{}
}

// EmbedSparse generates deterministic sparse vectors for multiple texts.
func (m *MockSparseEmbedder) EmbedSparse(ctx context.Context, texts []string) ([]core.SparseVector, error) {
	m.callCount.Add(1)

	if m.EmbedSparseFunc != nil {
		return m.EmbedSparseFunc(ctx, texts)
	}

	vectors := make([]core.SparseVector, len(texts))
	for i, text := range texts {
		h := fnv.New32a()
		h.Write([]byte(text))
		vectors[i] = core.SparseVector{
			Indices: []uint32{h.Sum32() % 100000},
			Values:  []float32{1.0},
		}
	}
	return vectors, nil
}

// CallCount returns the number of times EmbedSparse was called.
func (m *MockSparseEmbedder) CallCount() int {
	return int(m.callCount.Load())
}

// Reset clears the call count and injected behavior.
func (m *MockSparseEmbedder) Reset() {
	m.callCount.Store(0)
	m.EmbedSparseFunc = nil
}

// generateDeterministicVector creates a deterministic embedding vector from
// text. It uses FNV hash to ensure the same text always produces the same
// vector.
func generateDeterministicVector(text string, dim int) []float32 {
	h := fnv.New32a()
	h.Write([]byte(text))
	seed := h.Sum32()

	vector := make([]float32, dim)
	for i := 0; i < dim; i++ {
		// LCG constants
		seed = seed*1664525 + 1013904223
		vector[i] = float32(seed%1000) / 1000.0
	}
	return ai.Normalize(vector)
}
