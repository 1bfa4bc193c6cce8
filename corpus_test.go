package corpus

import (
	"archive/zip"
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/corpus/ai/mock"
	"github.com/poiesic/corpus/core"
)

func openTestIndex(t *testing.T) *Index {
	t.Helper()
	ix, err := Open(t.TempDir(), WithProvider(mock.NewMockProvider()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = ix.Close() })
	return ix
}

func TestOpenIngestAndRead(t *testing.T) {
	ix := openTestIndex(t)
	ctx := context.Background()

	content := []byte("# API Reference\n\nEvery endpoint accepts JSON and returns JSON.")
	result, err := ix.Ingest(ctx, content, "api.md", "mylib", "1.0")
	require.NoError(t, err)
	assert.Greater(t, result.ChunksIndexed, 0)
	assert.False(t, result.WasDuplicate)

	text, err := ix.Document(ctx, "mylib", "1.0", "api.md")
	require.NoError(t, err)
	assert.Contains(t, text, "API Reference")

	infos, err := ix.Libraries(ctx)
	require.NoError(t, err)
	require.Len(t, infos, 1)
	assert.Equal(t, "mylib", infos[0].Library)
	assert.Equal(t, 1, infos[0].Documents)
}

func TestIndexPersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	ix, err := Open(dir, WithProvider(mock.NewMockProvider()))
	require.NoError(t, err)
	first, err := ix.Ingest(ctx, []byte("# Durable\n\nstill here after reopen"), "durable.md", "lib", "1.0")
	require.NoError(t, err)
	require.NoError(t, ix.Close())

	ix, err = Open(dir, WithProvider(mock.NewMockProvider()))
	require.NoError(t, err)
	defer ix.Close()

	infos, err := ix.Libraries(ctx)
	require.NoError(t, err)
	require.Len(t, infos, 1)
	assert.Equal(t, first.ChunksIndexed, infos[0].Chunks)
}

func TestIngestArchiveThroughIndex(t *testing.T) {
	ix := openTestIndex(t)
	ctx := context.Background()

	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for name, body := range map[string]string{
		"a.md": "# A\n\nalpha content",
		"b.md": "# B\n\nbeta content",
	} {
		f, err := w.Create(name)
		require.NoError(t, err)
		_, err = f.Write([]byte(body))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	assert.True(t, ix.IsArchive("docs.zip", buf.Bytes()))

	result, err := ix.IngestArchive(ctx, buf.Bytes(), "docs.zip", "lib", "2.0")
	require.NoError(t, err)
	assert.Equal(t, 2, result.FilesProcessed)
	assert.Equal(t, 0, result.FilesFailed)
}

func TestDeleteLibraryThroughIndex(t *testing.T) {
	ix := openTestIndex(t)
	ctx := context.Background()

	result, err := ix.Ingest(ctx, []byte("# Doc\n\nsome text"), "doc.md", "lib", "1.0")
	require.NoError(t, err)

	deleted, err := ix.DeleteLibrary(ctx, "lib", "")
	require.NoError(t, err)
	assert.Equal(t, result.ChunksIndexed, deleted)

	infos, err := ix.Libraries(ctx)
	require.NoError(t, err)
	assert.Empty(t, infos)
}

func TestIngestRejectsArchiveUpload(t *testing.T) {
	ix := openTestIndex(t)

	_, err := ix.Ingest(context.Background(), []byte("PK\x03\x04junk"), "docs.zip", "lib", "1.0")
	require.Error(t, err)
	ingErr, ok := core.AsIngestionError(err)
	require.True(t, ok)
	assert.Equal(t, core.StepExtraction, ingErr.Step)
}
