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


package ai

import (
	"errors"
	"fmt"
)

// ErrEmptyBatch is returned when an embedder is asked to embed zero texts.
var ErrEmptyBatch = errors.New("embedding batch is empty")

// ErrVectorCountMismatch is returned when a service responds with a
// different number of vectors than texts submitted.
var ErrVectorCountMismatch = errors.New("embedding response vector count does not match input")

// StatusError carries the HTTP status of a rejected embedding request.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("embedding service returned %d: %s", e.Code, e.Body)
	}
	return fmt.Sprintf("embedding service returned %d", e.Code)
}

// EmbeddingError wraps an embedding failure with its retry outcome.
type EmbeddingError struct {
	// Attempts is how many times the request was tried before giving up.
	Attempts int
	// StatusCode is the last HTTP status, or 0 for non-HTTP failures.
	StatusCode int
	// Transient records whether the failure class was retryable.
	Transient bool
	Err       error
}

func (e *EmbeddingError) Error() string {
	kind := "permanent"
	if e.Transient {
		kind = "transient"
	}
	return fmt.Sprintf("embedding failed after %d attempt(s) (%s): %v", e.Attempts, kind, e.Err)
}

func (e *EmbeddingError) Unwrap() error {
	return e.Err
}

// IsTransientStatus classifies an HTTP status code. Rate limiting and
// server-side failures are retryable; client errors are not.
func IsTransientStatus(code int) bool {
	switch code {
	case 429, 502, 503, 504:
		return true
	}
	return code >= 500
}

// IsTransient classifies an error for retry purposes. HTTP statuses follow
// IsTransientStatus; a vector-count mismatch is a malformed success response
// and retrying won't change it; everything else (timeouts, connection
// resets, DNS failures) is treated as transient.
func IsTransient(err error) bool {
	if errors.Is(err, ErrVectorCountMismatch) {
		return false
	}
	var status *StatusError
	if errors.As(err, &status) {
		return IsTransientStatus(status.Code)
	}
	return true
}
