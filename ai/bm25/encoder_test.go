package bm25

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbedSparse_Deterministic(t *testing.T) {
	e := NewEncoder()
	a, err := e.EmbedSparse(context.Background(), []string{"the quick brown fox"})
	require.NoError(t, err)
	b, err := e.EmbedSparse(context.Background(), []string{"the quick brown fox"})
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestEmbedSparse_OneVectorPerText(t *testing.T) {
	e := NewEncoder()
	vecs, err := e.EmbedSparse(context.Background(), []string{"alpha", "beta gamma", ""})
	require.NoError(t, err)
	require.Len(t, vecs, 3)
	assert.NotEmpty(t, vecs[0].Indices)
	assert.Empty(t, vecs[2].Indices)
}

func TestEmbedSparse_IndicesSortedUnique(t *testing.T) {
	e := NewEncoder()
	vecs, err := e.EmbedSparse(context.Background(), []string{"one two three two one one"})
	require.NoError(t, err)
	require.Len(t, vecs, 1)

	v := vecs[0]
	require.Len(t, v.Indices, 3)
	require.Len(t, v.Values, 3)
	for i := 1; i < len(v.Indices); i++ {
		assert.Less(t, v.Indices[i-1], v.Indices[i])
	}
}

func TestEmbedSparse_RepeatedTermsWeighHigher(t *testing.T) {
	e := NewEncoder()
	vecs, err := e.EmbedSparse(context.Background(), []string{"rare common common common"})
	require.NoError(t, err)

	v := vecs[0]
	rareIdx := tokenIndex("rare")
	commonIdx := tokenIndex("common")
	weights := map[uint32]float32{}
	for i, idx := range v.Indices {
		weights[idx] = v.Values[i]
	}
	assert.Greater(t, weights[commonIdx], weights[rareIdx])
}

func TestTokenize_CaseAndPunctuation(t *testing.T) {
	assert.Equal(t,
		[]string{"hello", "world", "it", "s", "go1", "21"},
		tokenize("Hello, WORLD! It's go1.21"))
}
