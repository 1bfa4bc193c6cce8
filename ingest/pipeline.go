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


package ingest

import (
	"context"
	"errors"
	"log/slog"
	"runtime"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/poiesic/corpus/ai"
	"github.com/poiesic/corpus/chunking"
	"github.com/poiesic/corpus/core"
	"github.com/poiesic/corpus/extract"
	"github.com/poiesic/corpus/storage"
	"github.com/poiesic/corpus/storage/uploads"
)

// DefaultDenseDim is the dense vector dimension used when none is
// configured. Must match the embedding model's output.
const DefaultDenseDim = 384

// Pipeline orchestrates document ingestion: extraction, deduplication,
// chunking, batched embedding, and transactional indexing. Archive members
// are processed concurrently on a worker pool.
type Pipeline struct {
	store     storage.VectorStore
	provider  ai.Provider
	uploads   *uploads.FileStore
	extractor *extract.Extractor
	splitter  *chunking.Splitter
	batcher   *chunking.Batcher

	documentPrefix    string
	denseDim          int
	maxArchiveEntries int
	archiveMode       ArchiveMode
	archivePool       *ants.Pool
	libCache          *libraryCache
	logger            *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithPoolSize sets the worker pool size for concurrent archive processing.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}
		if p.archivePool != nil {
			p.archivePool.Release()
		}
		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		p.archivePool = pool
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger.With("component", "ingest")
		return nil
	}
}

// WithSplitter replaces the default chunk splitter.
func WithSplitter(splitter *chunking.Splitter) Option {
	return func(p *Pipeline) error {
		if splitter != nil {
			p.splitter = splitter
		}
		return nil
	}
}

// WithBatcher replaces the default batch scheduler.
func WithBatcher(batcher *chunking.Batcher) Option {
	return func(p *Pipeline) error {
		if batcher != nil {
			p.batcher = batcher
		}
		return nil
	}
}

// WithExtractor replaces the default text extractor.
func WithExtractor(extractor *extract.Extractor) Option {
	return func(p *Pipeline) error {
		if extractor != nil {
			p.extractor = extractor
		}
		return nil
	}
}

// WithDocumentPrefix sets the instruction prefix prepended to chunks before
// dense embedding.
func WithDocumentPrefix(prefix string) Option {
	return func(p *Pipeline) error {
		p.documentPrefix = prefix
		return nil
	}
}

// WithDenseDim sets the dense vector dimension the collection is created
// with.
func WithDenseDim(dim int) Option {
	return func(p *Pipeline) error {
		if dim > 0 {
			p.denseDim = dim
		}
		return nil
	}
}

// WithMaxArchiveEntries caps how many files one archive may carry.
func WithMaxArchiveEntries(max int) Option {
	return func(p *Pipeline) error {
		if max > 0 {
			p.maxArchiveEntries = max
		}
		return nil
	}
}

// WithArchiveMode selects partial-success or fail-fast archive handling.
func WithArchiveMode(mode ArchiveMode) Option {
	return func(p *Pipeline) error {
		if mode != ModePartial && mode != ModeFailFast {
			return errors.New("unknown archive mode: " + string(mode))
		}
		p.archiveMode = mode
		return nil
	}
}

// NewPipeline creates a new ingestion pipeline.
func NewPipeline(
	store storage.VectorStore,
	provider ai.Provider,
	uploadStore *uploads.FileStore,
	opts ...Option,
) (*Pipeline, error) {
	if store == nil {
		return nil, ErrStoreRequired
	}
	if provider == nil {
		return nil, ErrProviderRequired
	}
	if uploadStore == nil {
		return nil, ErrUploadsRequired
	}

	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}
	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		store:             store,
		provider:          provider,
		uploads:           uploadStore,
		extractor:         extract.NewExtractor(),
		splitter:          chunking.NewSplitter(),
		batcher:           chunking.NewBatcher(chunking.NewTokenCounter(""), chunking.DefaultMaxBatchTokens),
		denseDim:          DefaultDenseDim,
		maxArchiveEntries: core.MaxArchiveEntries,
		archiveMode:       ModePartial,
		archivePool:       pool,
		libCache:          newLibraryCache(DefaultLibraryCacheTTL),
		logger:            slog.Default().With("component", "ingest"),
	}

	for _, opt := range opts {
		if optErr := opt(p); optErr != nil {
			p.Release()
			return nil, optErr
		}
	}
	return p, nil
}

// Release releases the archive worker pool.
// The pipeline should not be used after calling Release.
func (p *Pipeline) Release() {
	if p.archivePool != nil {
		p.archivePool.Release()
	}
}

// Ingest processes one document end to end. On failure the returned error
// is a *core.IngestionError naming the pipeline step, and any points
// already written for this document have been rolled back.
func (p *Pipeline) Ingest(ctx context.Context, content []byte, filename, library, version string) (*core.IngestionResult, error) {
	start := time.Now()

	if err := core.ValidateUpload(library, filename); err != nil {
		return nil, core.NewIngestionError(core.StepExtraction, filename, "upload rejected", err)
	}

	text, err := p.extractor.Extract(ctx, filename, content)
	if err != nil {
		return nil, core.NewIngestionError(core.StepExtraction, filename, "text extraction failed", err)
	}

	doc := core.NewDocument(library, version, filename, text)

	if err := p.store.EnsureCollection(ctx, p.denseDim); err != nil {
		return nil, core.NewIngestionError(core.StepIndexing, filename, "collection setup failed", err)
	}

	result := &core.IngestionResult{
		Library:        library,
		Version:        version,
		FilesProcessed: 1,
	}

	if existing := p.checkDuplicate(ctx, doc); existing != nil {
		if err := p.linkDuplicate(ctx, doc, existing); err != nil {
			return nil, core.NewIngestionError(core.StepIndexing, filename, "duplicate linking failed", err)
		}
		p.saveUpload(doc)
		result.WasDuplicate = true
		result.LinkedTo = existingPath(existing)
		result.DurationSeconds = time.Since(start).Seconds()
		return result, nil
	}

	p.saveUpload(doc)

	chunks, charWarnings := p.splitter.Split(text)
	result.TruncationWarnings = charWarnings
	if len(chunks) == 0 {
		p.logger.Info("document produced no chunks", "file", filename)
		result.DurationSeconds = time.Since(start).Seconds()
		return result, nil
	}

	batches, tokenWarnings := p.batcher.MakeBatches(chunks)
	result.TruncationWarnings = append(result.TruncationWarnings, tokenWarnings...)

	title := extract.Title(filename, text)
	tx := newTransaction(p.store, p.logger)

	for _, batch := range batches {
		points, err := p.embedBatch(ctx, doc, title, batch, len(chunks))
		if err != nil {
			tx.rollback(ctx)
			return nil, p.embeddingError(filename, len(batch), err)
		}

		ids := make([]string, len(points))
		for i, point := range points {
			ids[i] = point.ID
		}
		tx.track(ids...)

		if err := p.store.Upsert(ctx, points); err != nil {
			tx.rollback(ctx)
			return nil, core.NewIngestionError(core.StepIndexing, filename, "point upsert failed", err).
				WithDetail("batch_size", len(points))
		}
		result.ChunksIndexed += len(points)
	}
	tx.commit()
	p.libCache.invalidate()

	result.DurationSeconds = time.Since(start).Seconds()
	p.logger.Info("ingested document",
		"file", filename,
		"library", library,
		"version", version,
		"chunks", result.ChunksIndexed,
		"batches", len(batches),
		"duration", time.Since(start))
	return result, nil
}

// embedBatch produces fully populated points for one batch: dense vectors
// from the provider (with the document prefix applied), sparse vectors from
// the lexical encoder.
func (p *Pipeline) embedBatch(ctx context.Context, doc *core.Document, title string, batch core.Batch, totalChunks int) ([]*core.Point, error) {
	texts := make([]string, len(batch))
	prefixed := make([]string, len(batch))
	for i, chunk := range batch {
		texts[i] = chunk.Text
		prefixed[i] = p.documentPrefix + chunk.Text
	}

	dense, err := p.provider.Dense().EmbedTexts(ctx, prefixed)
	if err != nil {
		return nil, err
	}
	sparse, err := p.provider.Sparse().EmbedSparse(ctx, texts)
	if err != nil {
		return nil, err
	}

	points := make([]*core.Point, len(batch))
	for i, chunk := range batch {
		points[i] = &core.Point{
			ID:     core.PointID(doc.Library, doc.Version, doc.Filename, chunk.Index, chunk.Text),
			Dense:  dense[i],
			Sparse: sparse[i],
			Payload: core.Payload{
				Content:     chunk.Text,
				Library:     doc.Library,
				Version:     doc.Version,
				Title:       title,
				FilePath:    doc.Filename,
				ChunkIndex:  chunk.Index,
				TotalChunks: totalChunks,
				ContentHash: doc.ContentHash,
			},
		}
	}
	return points, nil
}

// embeddingError classifies an embedding failure, carrying the retry
// outcome as details when available.
func (p *Pipeline) embeddingError(filename string, batchSize int, err error) error {
	ingErr := core.NewIngestionError(core.StepEmbedding, filename, "embedding request failed", err).
		WithDetail("batch_size", batchSize)

	var embErr *ai.EmbeddingError
	if errors.As(err, &embErr) {
		ingErr.WithDetail("attempts", embErr.Attempts).
			WithDetail("transient", embErr.Transient)
		if embErr.StatusCode != 0 {
			ingErr.WithDetail("status_code", embErr.StatusCode)
		}
	}
	return ingErr
}

// saveUpload persists the extracted text for operator inspection. Failures
// are logged, not fatal: the index stays authoritative.
func (p *Pipeline) saveUpload(doc *core.Document) {
	if _, err := p.uploads.Save(doc.Library, doc.Version, doc.Filename, doc.Content); err != nil {
		p.logger.Warn("failed to save upload copy", "file", doc.Filename, "err", err)
	}
}
