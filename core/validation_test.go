package core

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateUpload(t *testing.T) {
	assert.NoError(t, ValidateUpload("mylib", "guide.md"))
	assert.ErrorIs(t, ValidateUpload("", "guide.md"), ErrLibraryRequired)
	assert.ErrorIs(t, ValidateUpload("   ", "guide.md"), ErrLibraryRequired)
	assert.ErrorIs(t, ValidateUpload("mylib", ""), ErrFilenameRequired)
	assert.ErrorIs(t, ValidateUpload("mylib", "script.exe"), ErrDisallowedExtension)
}

func TestAllowedExtension(t *testing.T) {
	allowed := []string{"a.md", "b.markdown", "c.html", "d.htm", "e.txt", "f.pdf", "g.rst", "h.docx", "i.xlsx", "j.xls", "K.MD"}
	for _, name := range allowed {
		assert.True(t, AllowedExtension(name), name)
	}

	denied := []string{"a.exe", "b.zip", "c.png", "noext", "d.py"}
	for _, name := range denied {
		assert.False(t, AllowedExtension(name), name)
	}
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"guide.md", "guide.md"},
		{"My Doc.pdf", "My_Doc.md"},
		{"../../etc/passwd", "passwd.md"},
		{"docs/api/reference.html", "reference.md"},
		{"weird$name!.txt", "weird_name_.md"},
		{"..", "upload.md"},
		{"", "upload.md"},
		{"noextension", "noextension.md"},
		{"a\\b\\c.docx", "c.md"},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, SanitizeFilename(tc.in), tc.in)
	}
}

func TestSanitizeFilename_NeverContainsSeparators(t *testing.T) {
	for _, in := range []string{"/abs/path.md", "a/../b.md", "c:\\win\\doc.md"} {
		got := SanitizeFilename(in)
		assert.NotContains(t, got, "/")
		assert.NotContains(t, got, "\\")
	}
}

func TestIsHiddenEntry(t *testing.T) {
	assert.True(t, IsHiddenEntry(".hidden.md"))
	assert.True(t, IsHiddenEntry("docs/.secret/readme.md"))
	assert.False(t, IsHiddenEntry("docs/readme.md"))
}

func TestIngestionError_Structure(t *testing.T) {
	cause := errors.New("connection refused")
	err := NewIngestionError(StepEmbedding, "guide.md", "embedding request failed", cause).
		WithDetail("attempts", 3).
		WithDetail("batch_size", 8)

	assert.Equal(t, StepEmbedding, err.Step)
	assert.Equal(t, "guide.md", err.FileName)
	assert.Equal(t, 3, err.Details["attempts"])
	assert.Equal(t, 8, err.Details["batch_size"])
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "embedding failed for guide.md")
}

func TestAsIngestionError(t *testing.T) {
	inner := NewIngestionError(StepIndexing, "a.md", "upsert rejected", nil)
	wrapped := fmt.Errorf("pipeline: %w", inner)

	got, ok := AsIngestionError(wrapped)
	require.True(t, ok)
	assert.Equal(t, StepIndexing, got.Step)

	_, ok = AsIngestionError(errors.New("plain"))
	assert.False(t, ok)
}
