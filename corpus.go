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


package corpus

import (
	"context"
	"log/slog"
	"path/filepath"

	"github.com/poiesic/corpus/ai"
	"github.com/poiesic/corpus/ai/openai"
	"github.com/poiesic/corpus/ai/remote"
	"github.com/poiesic/corpus/core"
	"github.com/poiesic/corpus/extract"
	"github.com/poiesic/corpus/ingest"
	"github.com/poiesic/corpus/storage"
	"github.com/poiesic/corpus/storage/badger"
	"github.com/poiesic/corpus/storage/uploads"
)

// Index is the top-level handle: one vector store, one embedding provider,
// and the ingestion pipeline wired between them.
type Index struct {
	store        storage.VectorStore
	provider     ai.Provider
	pipeline     *ingest.Pipeline
	ownsStore    bool
	ownsProvider bool
	logger       *slog.Logger
}

// IndexOption configures an Index.
type IndexOption func(*indexOptions)

type indexOptions struct {
	aiConfig     *ai.Config
	store        storage.VectorStore
	provider     ai.Provider
	logger       *slog.Logger
	pipelineOpts []ingest.Option
}

// WithAIConfig sets the embedding provider configuration.
func WithAIConfig(cfg *ai.Config) IndexOption {
	return func(o *indexOptions) {
		if cfg != nil {
			o.aiConfig = cfg
		}
	}
}

// WithStore supplies an external vector store (e.g. a Qdrant-backed one)
// instead of the embedded Badger store. The caller keeps ownership: Close
// will not close it.
func WithStore(store storage.VectorStore) IndexOption {
	return func(o *indexOptions) {
		o.store = store
	}
}

// WithProvider supplies an external embedding provider. The caller keeps
// ownership: Close will not close it.
func WithProvider(provider ai.Provider) IndexOption {
	return func(o *indexOptions) {
		o.provider = provider
	}
}

// WithLogger sets the logger used by the index and its pipeline.
func WithLogger(logger *slog.Logger) IndexOption {
	return func(o *indexOptions) {
		o.logger = logger
	}
}

// WithPipelineOptions forwards options to the ingestion pipeline.
func WithPipelineOptions(opts ...ingest.Option) IndexOption {
	return func(o *indexOptions) {
		o.pipelineOpts = append(o.pipelineOpts, opts...)
	}
}

// Open creates an Index rooted at dataDir. The embedded vector store lives
// under dataDir/index and extracted upload copies under dataDir/uploads.
func Open(dataDir string, opts ...IndexOption) (*Index, error) {
	options := &indexOptions{
		aiConfig: ai.DefaultConfig(),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(options)
	}

	store := options.store
	ownsStore := false
	if store == nil {
		var err error
		store, err = badger.Open(filepath.Join(dataDir, "index"), false)
		if err != nil {
			return nil, err
		}
		ownsStore = true
	}

	uploadStore, err := uploads.NewFileStore(filepath.Join(dataDir, "uploads"))
	if err != nil {
		if ownsStore {
			store.Close()
		}
		return nil, err
	}

	provider := options.provider
	ownsProvider := false
	if provider == nil {
		if options.aiConfig.Mode == ai.ModeRemote {
			provider, err = remote.NewProvider(options.aiConfig)
		} else {
			provider, err = openai.NewProvider(options.aiConfig)
		}
		if err != nil {
			if ownsStore {
				store.Close()
			}
			return nil, err
		}
		ownsProvider = true
	}

	pipelineOpts := append([]ingest.Option{
		ingest.WithDocumentPrefix(options.aiConfig.DocumentPrefix),
		ingest.WithLogger(options.logger),
	}, options.pipelineOpts...)

	pipeline, err := ingest.NewPipeline(store, provider, uploadStore, pipelineOpts...)
	if err != nil {
		if ownsProvider {
			provider.Close()
		}
		if ownsStore {
			store.Close()
		}
		return nil, err
	}

	return &Index{
		store:        store,
		provider:     provider,
		pipeline:     pipeline,
		ownsStore:    ownsStore,
		ownsProvider: ownsProvider,
		logger:       options.logger,
	}, nil
}

// Close releases the pipeline and closes the provider and store the index
// owns. Externally supplied stores and providers are left open.
func (ix *Index) Close() error {
	ix.pipeline.Release()

	if ix.ownsProvider {
		if err := ix.provider.Close(); err != nil {
			ix.logger.Error("error closing embedding provider", "err", err)
		}
	}
	if ix.ownsStore {
		if err := ix.store.Close(); err != nil {
			ix.logger.Error("error closing vector store", "err", err)
			return err
		}
	}
	return nil
}

// Ingest indexes a single document. Archive uploads must go through
// IngestArchive; passing one here returns a *core.IngestionError.
func (ix *Index) Ingest(ctx context.Context, content []byte, filename, library, version string) (*core.IngestionResult, error) {
	return ix.pipeline.Ingest(ctx, content, filename, library, version)
}

// IngestArchive expands a zip upload and indexes every eligible member.
func (ix *Index) IngestArchive(ctx context.Context, content []byte, archiveName, library, version string) (*core.ArchiveResult, error) {
	return ix.pipeline.IngestArchive(ctx, content, archiveName, library, version)
}

// IsArchive reports whether an upload should go through IngestArchive.
func (ix *Index) IsArchive(filename string, content []byte) bool {
	return extract.IsArchive(filename, content)
}

// Libraries lists indexed library versions with document and chunk counts.
func (ix *Index) Libraries(ctx context.Context) ([]ingest.LibraryInfo, error) {
	return ix.pipeline.Libraries(ctx)
}

// DeleteLibrary removes a library's points and upload copies, returning the
// number of points deleted. An empty version deletes all versions.
func (ix *Index) DeleteLibrary(ctx context.Context, library, version string) (int, error) {
	return ix.pipeline.DeleteLibrary(ctx, library, version)
}

// Document reassembles an indexed document's text from its chunks.
func (ix *Index) Document(ctx context.Context, library, version, filePath string) (string, error) {
	return ix.pipeline.Document(ctx, library, version, filePath)
}

// Store exposes the underlying vector store for read-side consumers.
func (ix *Index) Store() storage.VectorStore {
	return ix.store
}
