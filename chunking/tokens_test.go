package chunking

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHeuristicCount(t *testing.T) {
	c := NewHeuristicCounter()
	assert.Equal(t, 0, c.Count(""))
	// 10 words * 1.3 = 13
	assert.Equal(t, 13, c.Count(strings.Repeat("word ", 10)))
}

func TestHeuristicCount_Deterministic(t *testing.T) {
	c := NewHeuristicCounter()
	text := "the quick brown fox jumps over the lazy dog"
	assert.Equal(t, c.Count(text), c.Count(text))
}

func TestHeuristicTruncate_ShortTextUnchanged(t *testing.T) {
	c := NewHeuristicCounter()
	assert.Equal(t, "a b c", c.Truncate("a b c", 100))
}

func TestHeuristicTruncate_FitsBudgetAfterCut(t *testing.T) {
	c := NewHeuristicCounter()
	text := strings.Repeat("token ", 500)
	for _, budget := range []int{10, 50, 200} {
		got := c.Truncate(text, budget)
		require.True(t, strings.HasSuffix(got, "..."))
		assert.LessOrEqual(t, c.Count(got), budget, "budget %d", budget)
	}
}

func TestHeuristicTruncate_ZeroBudget(t *testing.T) {
	c := NewHeuristicCounter()
	assert.Equal(t, "...", c.Truncate("some long text here", 0))
}
