package ai

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsTransientStatus(t *testing.T) {
	transient := []int{429, 500, 502, 503, 504, 599}
	for _, code := range transient {
		assert.True(t, IsTransientStatus(code), "code %d", code)
	}

	permanent := []int{400, 401, 403, 404, 422}
	for _, code := range permanent {
		assert.False(t, IsTransientStatus(code), "code %d", code)
	}
}

func TestIsTransient(t *testing.T) {
	assert.True(t, IsTransient(errors.New("connection refused")))
	assert.True(t, IsTransient(&StatusError{Code: 503}))
	assert.False(t, IsTransient(&StatusError{Code: 401}))

	wrapped := fmt.Errorf("request: %w", &StatusError{Code: 400})
	assert.False(t, IsTransient(wrapped))

	// A 200 with the wrong number of vectors is malformed, not retryable.
	assert.False(t, IsTransient(ErrVectorCountMismatch))
	assert.False(t, IsTransient(fmt.Errorf("embed: %w", ErrVectorCountMismatch)))
}

func TestEmbeddingError_Message(t *testing.T) {
	cause := &StatusError{Code: 503, Body: "overloaded"}
	err := &EmbeddingError{Attempts: 3, StatusCode: 503, Transient: true, Err: cause}

	assert.Contains(t, err.Error(), "after 3 attempt(s)")
	assert.Contains(t, err.Error(), "transient")
	assert.ErrorIs(t, err, cause)
}
