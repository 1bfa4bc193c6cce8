package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContentHash_Deterministic(t *testing.T) {
	text := "# Doc\n\nShort body."
	assert.Equal(t, ContentHash(text), ContentHash(text))
	assert.Len(t, ContentHash(text), 64)
}

func TestContentHash_SingleCharChange(t *testing.T) {
	assert.NotEqual(t, ContentHash("hello world"), ContentHash("hello world!"))
}

func TestContentHash_WhitespaceSensitive(t *testing.T) {
	// Dedup is intentionally strict: formatting changes are new documents.
	assert.NotEqual(t, ContentHash("a b"), ContentHash("a  b"))
	assert.NotEqual(t, ContentHash("a\nb"), ContentHash("a\r\nb"))
}

func TestContentHash_EmptyString(t *testing.T) {
	assert.Equal(t,
		"e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855",
		ContentHash(""))
}

func TestNewDocument_StampsHash(t *testing.T) {
	doc := NewDocument("mylib", "1.0", "readme.md", "content here")
	assert.Equal(t, ContentHash("content here"), doc.ContentHash)
}

func TestPointID_Deterministic(t *testing.T) {
	a := PointID("lib", "1.0", "doc.md", 3, "chunk text")
	b := PointID("lib", "1.0", "doc.md", 3, "chunk text")
	assert.Equal(t, a, b)
}

func TestPointID_VariesWithTuple(t *testing.T) {
	base := PointID("lib", "1.0", "doc.md", 0, "text")
	assert.NotEqual(t, base, PointID("other", "1.0", "doc.md", 0, "text"))
	assert.NotEqual(t, base, PointID("lib", "2.0", "doc.md", 0, "text"))
	assert.NotEqual(t, base, PointID("lib", "1.0", "other.md", 0, "text"))
	assert.NotEqual(t, base, PointID("lib", "1.0", "doc.md", 1, "text"))
	assert.NotEqual(t, base, PointID("lib", "1.0", "doc.md", 0, "different"))
}

func TestPointID_OnlyHeadOfTextMatters(t *testing.T) {
	head := make([]byte, 100)
	for i := range head {
		head[i] = 'a'
	}
	a := PointID("lib", "1.0", "doc.md", 0, string(head)+"tail one")
	b := PointID("lib", "1.0", "doc.md", 0, string(head)+"tail two")
	assert.Equal(t, a, b)
}

func TestPointID_IsUUID(t *testing.T) {
	id := PointID("lib", "1.0", "doc.md", 0, "text")
	require.Len(t, id, 36)
	assert.Equal(t, byte('-'), id[8])
}
