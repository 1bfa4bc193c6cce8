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


package remote

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/go-resty/resty/v2"
	"github.com/panjf2000/ants/v2"

	"github.com/poiesic/corpus/ai"
)

// Embedder implements ai.DenseEmbedder against a hosted embedding endpoint.
type Embedder struct {
	client *resty.Client
	pool   *ants.Pool
	config *ai.Config
	logger *slog.Logger
}

// embeddingRequest is the OpenAI embeddings wire format.
type embeddingRequest struct {
	Input []string `json:"input"`
	Model string   `json:"model"`
}

type embeddingResponse struct {
	Data []struct {
		Index     int       `json:"index"`
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
}

// newEmbedder is an internal constructor that returns the concrete type.
func newEmbedder(config *ai.Config, pool *ants.Pool) (*Embedder, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	client := resty.New().
		SetBaseURL(config.EmbeddingHost).
		SetAuthToken(config.APIKey).
		SetTimeout(config.RequestTimeout).
		SetHeader("Content-Type", "application/json")

	return &Embedder{
		client: client,
		pool:   pool,
		config: config,
		logger: slog.Default().With("component", "remote-embedder"),
	}, nil
}

// NewEmbedder creates an embedder with its own worker pool.
//
// Returns ai.DenseEmbedder interface to enforce abstraction.
func NewEmbedder(config *ai.Config) (ai.DenseEmbedder, error) {
	pool, err := ants.NewPool(config.MaxConcurrent)
	if err != nil {
		return nil, err
	}
	return newEmbedder(config, pool)
}

// EmbedTexts sends one embeddings request for the whole batch, retrying
// transient failures with exponential backoff. Returned vectors are
// L2-normalized and ordered like the input.
func (e *Embedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, ai.ErrEmptyBatch
	}
	e.logger.Debug("generating embeddings for texts", "count", len(texts))

	var vectors [][]float32
	err := ai.RetryWithBackoff(ctx, func() error {
		result, err := e.requestThroughPool(ctx, texts)
		if err != nil {
			return err
		}
		vectors = result
		return nil
	}, e.config.MaxRetries, e.config.RetryBaseDelay)
	if err != nil {
		e.logger.Error("failed to generate embeddings", "count", len(texts), "err", err)
		return nil, err
	}

	for i, v := range vectors {
		vectors[i] = ai.Normalize(v)
	}
	return vectors, nil
}

// requestThroughPool runs the HTTP request on the bounded pool, blocking
// the caller until a worker is free and the request completes.
func (e *Embedder) requestThroughPool(ctx context.Context, texts []string) ([][]float32, error) {
	var (
		result [][]float32
		reqErr error
	)
	done := make(chan struct{})
	submitErr := e.pool.Submit(func() {
		defer close(done)
		result, reqErr = e.request(ctx, texts)
	})
	if submitErr != nil {
		return nil, submitErr
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-done:
	}
	return result, reqErr
}

func (e *Embedder) request(ctx context.Context, texts []string) ([][]float32, error) {
	var parsed embeddingResponse
	resp, err := e.client.R().
		SetContext(ctx).
		SetBody(embeddingRequest{Input: texts, Model: e.config.EmbeddingModel}).
		SetResult(&parsed).
		Post("/embeddings")
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, &ai.StatusError{Code: resp.StatusCode(), Body: resp.String()}
	}
	if len(parsed.Data) != len(texts) {
		return nil, fmt.Errorf("%w: got %d, want %d",
			ai.ErrVectorCountMismatch, len(parsed.Data), len(texts))
	}

	// The service may return items out of order.
	sort.Slice(parsed.Data, func(a, b int) bool {
		return parsed.Data[a].Index < parsed.Data[b].Index
	})
	vectors := make([][]float32, len(parsed.Data))
	for i, item := range parsed.Data {
		vectors[i] = item.Embedding
	}
	return vectors, nil
}

// Release returns the worker pool resources.
func (e *Embedder) Release() {
	e.pool.Release()
}
