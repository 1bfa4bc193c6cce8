package ingest

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/poiesic/corpus/core"
	"github.com/poiesic/corpus/storage"
)

// Document reassembles an indexed document's text from its chunks, in
// chunk order. Chunk overlap means the result approximates, rather than
// byte-matches, the original extracted text; the exact copy lives in the
// upload store.
func (p *Pipeline) Document(ctx context.Context, library, version, filePath string) (string, error) {
	filter := storage.Filter{Library: library, Version: version, FilePath: filePath}

	var chunks []*core.Point
	cursor := ""
	for {
		points, next, err := p.store.Scroll(ctx, filter, libraryScrollPage, cursor)
		if err != nil {
			return "", err
		}
		chunks = append(chunks, points...)
		if next == "" {
			break
		}
		cursor = next
	}
	if len(chunks) == 0 {
		return "", fmt.Errorf("document not found: %s/%s/%s", library, version, filePath)
	}

	sort.Slice(chunks, func(a, b int) bool {
		return chunks[a].Payload.ChunkIndex < chunks[b].Payload.ChunkIndex
	})

	parts := make([]string, len(chunks))
	for i, chunk := range chunks {
		parts[i] = chunk.Payload.Content
	}
	return strings.Join(parts, "\n\n"), nil
}
