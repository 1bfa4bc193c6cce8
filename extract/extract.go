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


package extract

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// DefaultPDFTimeout bounds PDF text extraction, which can stall on
// malformed files.
const DefaultPDFTimeout = 60 * time.Second

// Extractor converts raw upload bytes into markdown text.
type Extractor struct {
	pdfTimeout time.Duration
	logger     *slog.Logger
}

// ExtractorOption configures an Extractor.
type ExtractorOption func(*Extractor)

// WithPDFTimeout bounds PDF extraction time.
func WithPDFTimeout(d time.Duration) ExtractorOption {
	return func(e *Extractor) {
		if d > 0 {
			e.pdfTimeout = d
		}
	}
}

// WithLogger sets the extractor's logger.
func WithLogger(logger *slog.Logger) ExtractorOption {
	return func(e *Extractor) {
		if logger != nil {
			e.logger = logger.With("component", "extractor")
		}
	}
}

// NewExtractor creates an extractor with the given options.
func NewExtractor(opts ...ExtractorOption) *Extractor {
	e := &Extractor{
		pdfTimeout: DefaultPDFTimeout,
		logger:     slog.Default().With("component", "extractor"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract converts file content to markdown text according to its detected
// type. Unknown types are treated as plain text.
func (e *Extractor) Extract(ctx context.Context, filename string, content []byte) (string, error) {
	fileType := DetectFileType(filename, content)
	e.logger.Debug("extracting text", "file", filename, "type", fileType, "bytes", len(content))

	switch fileType {
	case TypeHTML:
		return e.extractHTML(content)
	case TypePDF:
		return e.extractPDF(ctx, content)
	case TypeDocx:
		return extractDocx(content)
	case TypeExcel:
		return extractExcel(content)
	case TypeArchive:
		return "", fmt.Errorf("archive %q must be expanded before extraction", filename)
	default:
		return asText(content), nil
	}
}

// asText sanitizes raw bytes into a UTF-8 string with unix line endings.
func asText(content []byte) string {
	text := strings.ToValidUTF8(string(content), "�")
	return strings.ReplaceAll(text, "\r\n", "\n")
}
