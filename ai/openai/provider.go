// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package openai

import (
	"log/slog"

	"github.com/poiesic/corpus/ai"
	"github.com/poiesic/corpus/ai/bm25"
)

// Provider implements ai.Provider using an OpenAI-compatible embedding
// service for dense vectors and the local BM25 encoder for sparse vectors.
type Provider struct {
	config   *ai.Config
	embedder *Embedder
	sparse   *bm25.Encoder
	logger   *slog.Logger
}

// NewProvider creates a new provider for OpenAI-compatible services.
// The config is validated and normalized before use.
//
// Returns ai.Provider interface (not *Provider) to enforce abstraction.
func NewProvider(config *ai.Config) (ai.Provider, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	embedder, err := newEmbedder(config)
	if err != nil {
		return nil, err
	}

	return &Provider{
		config:   config,
		embedder: embedder,
		sparse:   bm25.NewEncoder(),
		logger:   slog.Default().With("component", "openai-provider"),
	}, nil
}

// Dense returns the semantic embedding service.
func (p *Provider) Dense() ai.DenseEmbedder {
	return p.embedder
}

// Sparse returns the lexical sparse encoder.
func (p *Provider) Sparse() ai.SparseEmbedder {
	return p.sparse
}

// Close releases resources held by the provider.
// Currently a no-op as the underlying clients don't require explicit cleanup.
func (p *Provider) Close() error {
	p.logger.Debug("closing OpenAI provider")
	return nil
}
