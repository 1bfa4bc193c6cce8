package ingest

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/corpus/ai/mock"
	"github.com/poiesic/corpus/chunking"
	"github.com/poiesic/corpus/core"
	"github.com/poiesic/corpus/storage"
	"github.com/poiesic/corpus/storage/badger"
	"github.com/poiesic/corpus/storage/uploads"
)

func newTestStore(t *testing.T) storage.VectorStore {
	t.Helper()
	store, err := badger.Open(t.TempDir(), false)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func newTestPipeline(t *testing.T, store storage.VectorStore, opts ...Option) (*Pipeline, *mock.MockProvider) {
	t.Helper()
	provider := mock.NewMockProvider()
	uploadStore, err := uploads.NewFileStore(t.TempDir())
	require.NoError(t, err)

	p, err := NewPipeline(store, provider, uploadStore, opts...)
	require.NoError(t, err)
	t.Cleanup(p.Release)
	return p, provider
}

const sampleDoc = `# Getting Started

Install the package and run the init command to create a workspace.

## Configuration

Settings live in a single file. Every key has a sensible default.
`

func TestIngest_Success(t *testing.T) {
	store := newTestStore(t)
	p, _ := newTestPipeline(t, store)
	ctx := context.Background()

	result, err := p.Ingest(ctx, []byte(sampleDoc), "guide.md", "mylib", "1.0")
	require.NoError(t, err)

	assert.Equal(t, "mylib", result.Library)
	assert.Equal(t, 1, result.FilesProcessed)
	assert.False(t, result.WasDuplicate)
	assert.Greater(t, result.ChunksIndexed, 0)

	count, err := store.Count(ctx, storage.Filter{Library: "mylib", Version: "1.0"})
	require.NoError(t, err)
	assert.Equal(t, result.ChunksIndexed, count)

	points, _, err := store.Scroll(ctx, storage.Filter{Library: "mylib"}, 100, "")
	require.NoError(t, err)
	for _, point := range points {
		assert.Equal(t, "guide.md", point.Payload.FilePath)
		assert.Equal(t, "Getting Started", point.Payload.Title)
		assert.Equal(t, core.ContentHash(sampleDoc), point.Payload.ContentHash)
		assert.Equal(t, result.ChunksIndexed, point.Payload.TotalChunks)
		assert.NotEmpty(t, point.Dense)
		assert.NotEmpty(t, point.Sparse.Indices)
	}
}

func TestIngest_Idempotent(t *testing.T) {
	store := newTestStore(t)
	p, _ := newTestPipeline(t, store)
	ctx := context.Background()

	first, err := p.Ingest(ctx, []byte(sampleDoc), "guide.md", "mylib", "1.0")
	require.NoError(t, err)

	second, err := p.Ingest(ctx, []byte(sampleDoc), "guide.md", "mylib", "1.0")
	require.NoError(t, err)
	assert.True(t, second.WasDuplicate)
	assert.Equal(t, 0, second.ChunksIndexed)

	count, err := store.Count(ctx, storage.Filter{Library: "mylib"})
	require.NoError(t, err)
	assert.Equal(t, first.ChunksIndexed, count, "re-ingesting must not grow the index")
}

func TestIngest_RejectsBadUpload(t *testing.T) {
	p, _ := newTestPipeline(t, newTestStore(t))
	ctx := context.Background()

	_, err := p.Ingest(ctx, []byte("x"), "tool.exe", "lib", "1.0")
	require.Error(t, err)
	ingErr, ok := core.AsIngestionError(err)
	require.True(t, ok)
	assert.Equal(t, core.StepExtraction, ingErr.Step)
	assert.ErrorIs(t, err, core.ErrDisallowedExtension)

	_, err = p.Ingest(ctx, []byte("x"), "doc.md", "", "1.0")
	assert.ErrorIs(t, err, core.ErrLibraryRequired)
}

func TestIngest_ShortDocumentSingleChunk(t *testing.T) {
	p, _ := newTestPipeline(t, newTestStore(t))
	ctx := context.Background()

	result, err := p.Ingest(ctx, []byte("# Doc\n\nShort body."), "doc.md", "lib", "1.0")
	require.NoError(t, err)
	assert.Equal(t, 1, result.ChunksIndexed)
	assert.Empty(t, result.TruncationWarnings)
}

func TestIngest_EmptyDocumentSucceedsWithZeroChunks(t *testing.T) {
	store := newTestStore(t)
	p, _ := newTestPipeline(t, store)
	ctx := context.Background()

	result, err := p.Ingest(ctx, []byte("   \n"), "empty.md", "lib", "1.0")
	require.NoError(t, err)
	assert.Equal(t, 1, result.FilesProcessed)
	assert.Equal(t, 0, result.ChunksIndexed)

	count, err := store.Count(ctx, storage.Filter{Library: "lib"})
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestIngest_DuplicateLinksExistingPoints(t *testing.T) {
	store := newTestStore(t)
	p, _ := newTestPipeline(t, store)
	ctx := context.Background()

	first, err := p.Ingest(ctx, []byte(sampleDoc), "guide.md", "liba", "1.0")
	require.NoError(t, err)

	second, err := p.Ingest(ctx, []byte(sampleDoc), "copy.md", "libb", "2.0")
	require.NoError(t, err)
	assert.True(t, second.WasDuplicate)
	assert.Equal(t, "liba/1.0/guide.md", second.LinkedTo)
	assert.Equal(t, 0, second.ChunksIndexed)

	// No new points, but every original point now carries the link.
	count, err := store.Count(ctx, storage.Filter{})
	require.NoError(t, err)
	assert.Equal(t, first.ChunksIndexed, count)

	points, _, err := store.Scroll(ctx, storage.Filter{Library: "liba"}, 100, "")
	require.NoError(t, err)
	for _, point := range points {
		require.Len(t, point.Payload.LinkedFiles, 1)
		assert.Equal(t, "libb", point.Payload.LinkedFiles[0].Library)
		assert.Equal(t, "copy.md", point.Payload.LinkedFiles[0].FilePath)
	}

	// Linking is idempotent.
	_, err = p.Ingest(ctx, []byte(sampleDoc), "copy.md", "libb", "2.0")
	require.NoError(t, err)
	points, _, err = store.Scroll(ctx, storage.Filter{Library: "liba"}, 100, "")
	require.NoError(t, err)
	assert.Len(t, points[0].Payload.LinkedFiles, 1)
}

func TestIngest_EmbeddingFailureRollsBack(t *testing.T) {
	store := newTestStore(t)
	// A 30-token budget splits the two sections of sampleDoc into two
	// batches, so the second embed call hits a partially written document.
	p, provider := newTestPipeline(t, store,
		WithBatcher(chunking.NewBatcher(chunking.NewHeuristicCounter(), 30)))
	ctx := context.Background()

	calls := 0
	provider.DenseEmbedder.EmbedTextsFunc = func(_ context.Context, texts []string) ([][]float32, error) {
		calls++
		if calls >= 2 {
			return nil, errors.New("model crashed")
		}
		vecs := make([][]float32, len(texts))
		for i := range vecs {
			vecs[i] = []float32{1, 0, 0}
		}
		return vecs, nil
	}

	_, err := p.Ingest(ctx, []byte(sampleDoc), "guide.md", "lib", "1.0")
	require.Error(t, err)
	require.GreaterOrEqual(t, calls, 2, "needs at least two batches to exercise rollback")

	ingErr, ok := core.AsIngestionError(err)
	require.True(t, ok)
	assert.Equal(t, core.StepEmbedding, ingErr.Step)
	assert.Equal(t, "guide.md", ingErr.FileName)

	count, err := store.Count(ctx, storage.Filter{Library: "lib"})
	require.NoError(t, err)
	assert.Equal(t, 0, count, "partial batches must be rolled back")
}

// flakyStore delegates to a real store but fails Upsert after a threshold.
type flakyStore struct {
	storage.VectorStore
	upserts   int
	failAfter int
}

func (f *flakyStore) Upsert(ctx context.Context, points []*core.Point) error {
	f.upserts++
	if f.upserts > f.failAfter {
		return errors.New("write rejected")
	}
	return f.VectorStore.Upsert(ctx, points)
}

func TestIngest_IndexingFailureRollsBack(t *testing.T) {
	inner := newTestStore(t)
	store := &flakyStore{VectorStore: inner, failAfter: 1}
	p, _ := newTestPipeline(t, store,
		WithBatcher(chunking.NewBatcher(chunking.NewHeuristicCounter(), 30)))
	ctx := context.Background()

	_, err := p.Ingest(ctx, []byte(sampleDoc), "guide.md", "lib", "1.0")
	require.Error(t, err)

	ingErr, ok := core.AsIngestionError(err)
	require.True(t, ok)
	assert.Equal(t, core.StepIndexing, ingErr.Step)

	count, err := inner.Count(ctx, storage.Filter{Library: "lib"})
	require.NoError(t, err)
	assert.Equal(t, 0, count, "the successfully upserted batch must be deleted")
}

func TestIngest_ReportsTruncationWarnings(t *testing.T) {
	p, _ := newTestPipeline(t, newTestStore(t))
	ctx := context.Background()

	// One unbroken run far over the character ceiling.
	content := strings.Repeat("x", 4500)
	result, err := p.Ingest(ctx, []byte(content), "big.md", "lib", "1.0")
	require.NoError(t, err)

	require.NotEmpty(t, result.TruncationWarnings)
	assert.Equal(t, core.TruncationCharacter, result.TruncationWarnings[0].Kind)
}

func buildArchive(t *testing.T, files map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for name, content := range files {
		f, err := w.Create(name)
		require.NoError(t, err)
		_, err = f.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func TestIngestArchive_PartialSuccess(t *testing.T) {
	store := newTestStore(t)
	p, _ := newTestPipeline(t, store)
	ctx := context.Background()

	archive := buildArchive(t, map[string]string{
		"docs/intro.md":   "# Intro\n\nSome introduction text.",
		"docs/usage.md":   "# Usage\n\nHow to use the thing.",
		"docs/broken.pdf": "this is not a pdf",
	})

	result, err := p.IngestArchive(ctx, archive, "docs.zip", "lib", "1.0")
	require.NoError(t, err)

	assert.Equal(t, 2, result.FilesProcessed)
	assert.Equal(t, 1, result.FilesFailed)
	require.Len(t, result.Failures, 1)
	assert.Equal(t, "docs/broken.pdf", result.Failures[0].FileName)
	assert.Equal(t, core.StepExtraction, result.Failures[0].Step)
	assert.NotEmpty(t, result.Failures[0].Err)

	count, err := store.Count(ctx, storage.Filter{Library: "lib"})
	require.NoError(t, err)
	assert.Equal(t, result.ChunksIndexed, count)
}

func TestIngestArchive_PartialEmbeddingFailure(t *testing.T) {
	store := newTestStore(t)
	p, provider := newTestPipeline(t, store)
	ctx := context.Background()

	provider.DenseEmbedder.EmbedTextsFunc = func(_ context.Context, texts []string) ([][]float32, error) {
		for _, text := range texts {
			if strings.Contains(text, "UNEMBEDDABLE") {
				return nil, errors.New("model rejected input")
			}
		}
		vecs := make([][]float32, len(texts))
		for i := range vecs {
			vecs[i] = []float32{1, 0, 0}
		}
		return vecs, nil
	}

	archive := buildArchive(t, map[string]string{
		"one.md":   "# One\n\nfirst document",
		"two.md":   "# Two\n\nsecond document",
		"three.md": "# Three\n\nthird document",
		"bad.md":   "# Bad\n\nUNEMBEDDABLE content",
	})

	result, err := p.IngestArchive(ctx, archive, "docs.zip", "lib", "1.0")
	require.NoError(t, err)

	assert.Equal(t, 3, result.FilesProcessed)
	assert.Equal(t, 1, result.FilesFailed)
	require.Len(t, result.Failures, 1)
	assert.Equal(t, "bad.md", result.Failures[0].FileName)
	assert.Equal(t, core.StepEmbedding, result.Failures[0].Step)

	// The failing file's points were rolled back; siblings stay indexed.
	count, err := store.Count(ctx, storage.Filter{Library: "lib"})
	require.NoError(t, err)
	assert.Equal(t, result.ChunksIndexed, count)
}

func TestIngestArchive_SkipsIneligibleEntries(t *testing.T) {
	store := newTestStore(t)
	p, _ := newTestPipeline(t, store)
	ctx := context.Background()

	archive := buildArchive(t, map[string]string{
		"good.md":           "# Good\n\ncontent",
		".hidden.md":        "# Hidden",
		"sub/.secret/a.md":  "# Secret",
		"binary.exe":        "MZ",
		"notes/skipped.png": "PNG",
	})

	result, err := p.IngestArchive(ctx, archive, "docs.zip", "lib", "1.0")
	require.NoError(t, err)
	assert.Equal(t, 1, result.FilesProcessed)
	assert.Equal(t, 0, result.FilesFailed)
}

func TestIngestArchive_FailFast(t *testing.T) {
	store := newTestStore(t)
	p, _ := newTestPipeline(t, store, WithArchiveMode(ModeFailFast))
	ctx := context.Background()

	archive := buildArchive(t, map[string]string{
		"broken.pdf": "not a pdf",
		"fine.md":    "# Fine\n\ncontent",
	})

	_, err := p.IngestArchive(ctx, archive, "docs.zip", "lib", "1.0")
	require.Error(t, err)
	ingErr, ok := core.AsIngestionError(err)
	require.True(t, ok)
	assert.Equal(t, core.StepExtraction, ingErr.Step)
}

func TestIngestArchive_EntryCap(t *testing.T) {
	p, _ := newTestPipeline(t, newTestStore(t), WithMaxArchiveEntries(2))
	ctx := context.Background()

	archive := buildArchive(t, map[string]string{
		"a.md": "# A",
		"b.md": "# B",
		"c.md": "# C",
	})

	_, err := p.IngestArchive(ctx, archive, "docs.zip", "lib", "1.0")
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrArchiveTooLarge)
}

func TestIngestArchive_UnreadableArchive(t *testing.T) {
	p, _ := newTestPipeline(t, newTestStore(t))
	_, err := p.IngestArchive(context.Background(), []byte("not a zip"), "bad.zip", "lib", "1.0")
	require.Error(t, err)
	ingErr, ok := core.AsIngestionError(err)
	require.True(t, ok)
	assert.Equal(t, core.StepExtraction, ingErr.Step)
	assert.Equal(t, "bad.zip", ingErr.FileName)
}

func TestLibraries(t *testing.T) {
	store := newTestStore(t)
	p, _ := newTestPipeline(t, store)
	ctx := context.Background()

	_, err := p.Ingest(ctx, []byte("# A\n\ncontent a"), "a.md", "liba", "1.0")
	require.NoError(t, err)
	_, err = p.Ingest(ctx, []byte("# B\n\ncontent b"), "b.md", "liba", "1.0")
	require.NoError(t, err)
	_, err = p.Ingest(ctx, []byte("# C\n\ncontent c"), "c.md", "libb", "2.0")
	require.NoError(t, err)

	infos, err := p.Libraries(ctx)
	require.NoError(t, err)
	require.Len(t, infos, 2)

	assert.Equal(t, "liba", infos[0].Library)
	assert.Equal(t, 2, infos[0].Documents)
	assert.Equal(t, "libb", infos[1].Library)
	assert.Equal(t, 1, infos[1].Documents)
	assert.Greater(t, infos[0].Chunks, 0)
}

func TestLibraries_CacheInvalidatedByIngest(t *testing.T) {
	store := newTestStore(t)
	p, _ := newTestPipeline(t, store)
	ctx := context.Background()

	_, err := p.Ingest(ctx, []byte("# A\n\ntext"), "a.md", "liba", "1.0")
	require.NoError(t, err)

	infos, err := p.Libraries(ctx)
	require.NoError(t, err)
	require.Len(t, infos, 1)

	_, err = p.Ingest(ctx, []byte("# B\n\nother text"), "b.md", "libb", "1.0")
	require.NoError(t, err)

	infos, err = p.Libraries(ctx)
	require.NoError(t, err)
	assert.Len(t, infos, 2, "new ingest must invalidate the cached listing")
}

func TestDeleteLibrary(t *testing.T) {
	store := newTestStore(t)
	p, _ := newTestPipeline(t, store)
	ctx := context.Background()

	first, err := p.Ingest(ctx, []byte("# A\n\ntext"), "a.md", "liba", "1.0")
	require.NoError(t, err)
	_, err = p.Ingest(ctx, []byte("# B\n\nother text"), "b.md", "libb", "1.0")
	require.NoError(t, err)

	deleted, err := p.DeleteLibrary(ctx, "liba", "")
	require.NoError(t, err)
	assert.Equal(t, first.ChunksIndexed, deleted)

	count, err := store.Count(ctx, storage.Filter{Library: "liba"})
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	count, err = store.Count(ctx, storage.Filter{Library: "libb"})
	require.NoError(t, err)
	assert.Greater(t, count, 0, "other libraries stay untouched")
}

func TestDeleteLibrary_SingleVersion(t *testing.T) {
	store := newTestStore(t)
	p, _ := newTestPipeline(t, store)
	ctx := context.Background()

	_, err := p.Ingest(ctx, []byte("# V1\n\nold text"), "doc.md", "lib", "1.0")
	require.NoError(t, err)
	_, err = p.Ingest(ctx, []byte("# V2\n\nnew text"), "doc.md", "lib", "2.0")
	require.NoError(t, err)

	_, err = p.DeleteLibrary(ctx, "lib", "1.0")
	require.NoError(t, err)

	count, err := store.Count(ctx, storage.Filter{Library: "lib", Version: "1.0"})
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	count, err = store.Count(ctx, storage.Filter{Library: "lib", Version: "2.0"})
	require.NoError(t, err)
	assert.Greater(t, count, 0)
}

func TestDocument_Reassembles(t *testing.T) {
	store := newTestStore(t)
	p, _ := newTestPipeline(t, store)
	ctx := context.Background()

	_, err := p.Ingest(ctx, []byte(sampleDoc), "guide.md", "lib", "1.0")
	require.NoError(t, err)

	text, err := p.Document(ctx, "lib", "1.0", "guide.md")
	require.NoError(t, err)
	assert.Contains(t, text, "Getting Started")
	assert.Contains(t, text, "sensible default")

	_, err = p.Document(ctx, "lib", "1.0", "missing.md")
	assert.Error(t, err)
}

func TestNewPipeline_RequiresDependencies(t *testing.T) {
	uploadStore, err := uploads.NewFileStore(t.TempDir())
	require.NoError(t, err)
	provider := mock.NewMockProvider()
	store := newTestStore(t)

	_, err = NewPipeline(nil, provider, uploadStore)
	assert.ErrorIs(t, err, ErrStoreRequired)
	_, err = NewPipeline(store, nil, uploadStore)
	assert.ErrorIs(t, err, ErrProviderRequired)
	_, err = NewPipeline(store, provider, nil)
	assert.ErrorIs(t, err, ErrUploadsRequired)
}

func TestEmbeddingErrorDetails(t *testing.T) {
	p, provider := newTestPipeline(t, newTestStore(t))
	ctx := context.Background()

	provider.DenseEmbedder.EmbedTextsFunc = func(context.Context, []string) ([][]float32, error) {
		return nil, fmt.Errorf("request: %w", errors.New("boom"))
	}

	_, err := p.Ingest(ctx, []byte("# Doc\n\nsome text"), "doc.md", "lib", "1.0")
	require.Error(t, err)
	ingErr, ok := core.AsIngestionError(err)
	require.True(t, ok)
	assert.Equal(t, core.StepEmbedding, ingErr.Step)
	assert.NotNil(t, ingErr.Details["batch_size"])
}
