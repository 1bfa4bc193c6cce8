package mock

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockDenseEmbedder_Deterministic(t *testing.T) {
	m := NewMockDenseEmbedder()
	ctx := context.Background()

	first, err := m.EmbedTexts(ctx, []string{"hello"})
	require.NoError(t, err)
	second, err := m.EmbedTexts(ctx, []string{"hello"})
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Len(t, first[0], 384)
	assert.Equal(t, 2, m.CallCount())
}

func TestMockEmbedders_ConcurrentCallCount(t *testing.T) {
	dense := NewMockDenseEmbedder()
	sparse := NewMockSparseEmbedder()
	ctx := context.Background()

	// One provider is shared across archive workers, so the mocks must be
	// safe to call from many goroutines at once.
	const workers = 16
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := dense.EmbedTexts(ctx, []string{"text"})
			assert.NoError(t, err)
			_, err = sparse.EmbedSparse(ctx, []string{"text"})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, workers, dense.CallCount())
	assert.Equal(t, workers, sparse.CallCount())
}

func TestMockEmbedders_Reset(t *testing.T) {
	dense := NewMockDenseEmbedder()
	dense.EmbedTextsFunc = func(context.Context, []string) ([][]float32, error) {
		return nil, nil
	}
	_, _ = dense.EmbedTexts(context.Background(), []string{"x"})
	require.Equal(t, 1, dense.CallCount())

	dense.Reset()
	assert.Equal(t, 0, dense.CallCount())
	assert.Nil(t, dense.EmbedTextsFunc)
}
