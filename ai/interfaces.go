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


package ai

import (
	"context"

	"github.com/poiesic/corpus/core"
)

// DenseEmbedder generates semantic vector embeddings for batches of text.
type DenseEmbedder interface {
	// EmbedTexts embeds every text in order. The result has one vector per
	// input text, in the same order.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// SparseEmbedder generates lexical sparse vectors for batches of text.
type SparseEmbedder interface {
	// EmbedSparse embeds every text in order. The result has one sparse
	// vector per input text, in the same order.
	EmbedSparse(ctx context.Context, texts []string) ([]core.SparseVector, error)
}

// Provider bundles the dense and sparse embedders the pipeline needs.
type Provider interface {
	Dense() DenseEmbedder
	Sparse() SparseEmbedder

	// Close releases provider resources (HTTP clients, worker pools).
	Close() error
}
