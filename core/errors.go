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


package core

import (
	"errors"
	"fmt"
)

// Domain validation errors
var (
	// ErrEmptyContent indicates a document with no extractable text.
	ErrEmptyContent = errors.New("content cannot be empty")

	// ErrLibraryRequired indicates a missing library name.
	ErrLibraryRequired = errors.New("library name required")

	// ErrFilenameRequired indicates a missing filename.
	ErrFilenameRequired = errors.New("filename required")

	// ErrDisallowedExtension indicates a file extension outside the allow-list.
	ErrDisallowedExtension = errors.New("file extension not allowed")

	// ErrArchiveTooLarge indicates an archive exceeding the entry ceiling.
	ErrArchiveTooLarge = errors.New("archive has too many entries")
)

// IngestionError is the only failure shape that crosses a pipeline stage
// boundary. Callers branch on Step to decide whether to retry the upload,
// fix the file, or wait out a transient condition. Details carries
// machine-readable context (error kind, attempt count, batch size).
type IngestionError struct {
	Step     ProcessingStep
	FileName string
	Message  string
	Details  map[string]any
	Err      error
}

// NewIngestionError wraps a stage failure into the structured form.
func NewIngestionError(step ProcessingStep, fileName, message string, err error) *IngestionError {
	return &IngestionError{
		Step:     step,
		FileName: fileName,
		Message:  message,
		Err:      err,
	}
}

// WithDetail attaches one machine-readable context entry and returns the
// error for chaining.
func (e *IngestionError) WithDetail(key string, value any) *IngestionError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

func (e *IngestionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s failed for %s: %s: %v", e.Step, e.FileName, e.Message, e.Err)
	}
	return fmt.Sprintf("%s failed for %s: %s", e.Step, e.FileName, e.Message)
}

func (e *IngestionError) Unwrap() error {
	return e.Err
}

// AsIngestionError extracts an IngestionError from an error chain.
func AsIngestionError(err error) (*IngestionError, bool) {
	var ie *IngestionError
	if errors.As(err, &ie) {
		return ie, true
	}
	return nil, false
}
