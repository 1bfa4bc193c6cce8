package mock

import (
	"github.com/poiesic/corpus/ai"
)

// MockProvider is a test double for ai.Provider pairing the mock embedders.
type MockProvider struct {
	DenseEmbedder  *MockDenseEmbedder
	SparseEmbedder *MockSparseEmbedder

	closed bool
}

var _ ai.Provider = (*MockProvider)(nil)

// NewMockProvider creates a provider with default deterministic mocks.
func NewMockProvider() *MockProvider {
	return &MockProvider{
		DenseEmbedder:  NewMockDenseEmbedder(),
		SparseEmbedder: NewMockSparseEmbedder(),
	}
}

// Dense returns the mock dense embedder.
func (p *MockProvider) Dense() ai.DenseEmbedder {
	return p.DenseEmbedder
}

// Sparse returns the mock sparse embedder.
func (p *MockProvider) Sparse() ai.SparseEmbedder {
	return p.SparseEmbedder
}

// Close marks the provider closed.
func (p *MockProvider) Close() error {
	p.closed = true
	return nil
}

// Closed reports whether Close was called.
func (p *MockProvider) Closed() bool {
	return p.closed
}
