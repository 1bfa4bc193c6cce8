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
	"fmt"
	"path"
	"strings"
)

// MaxArchiveEntries caps how many archive members are considered per upload.
const MaxArchiveEntries = 500

// allowedExtensions is the document allow-list applied to archive members
// and direct uploads alike.
var allowedExtensions = map[string]bool{
	".md":       true,
	".markdown": true,
	".html":     true,
	".htm":      true,
	".txt":      true,
	".pdf":      true,
	".rst":      true,
	".adoc":     true,
	".asciidoc": true,
	".docx":     true,
	".xlsx":     true,
	".xls":      true,
}

// AllowedExtension reports whether the file's extension is on the document
// allow-list.
func AllowedExtension(filename string) bool {
	return allowedExtensions[strings.ToLower(path.Ext(filename))]
}

// ValidateUpload checks the identifying metadata of an upload.
//
// NOT validated here:
//   - content emptiness (an empty document legally yields zero chunks)
//   - file size (enforced by the surrounding API layer)
func ValidateUpload(library, filename string) error {
	if strings.TrimSpace(library) == "" {
		return ErrLibraryRequired
	}
	if strings.TrimSpace(filename) == "" {
		return ErrFilenameRequired
	}
	if !AllowedExtension(filename) {
		return fmt.Errorf("%w: %s", ErrDisallowedExtension, filename)
	}
	return nil
}

// SanitizeFilename makes a filename safe for upload persistence. Path
// separators and anything outside [A-Za-z0-9._-] become underscores, and the
// extension is forced to .md since persisted uploads are always the
// extracted text.
func SanitizeFilename(filename string) string {
	// Drop any directory components first; archive entries carry paths.
	base := path.Base(strings.ReplaceAll(filename, "\\", "/"))

	var b strings.Builder
	b.Grow(len(base))
	for _, r := range base {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}

	safe := b.String()
	if safe == "" || safe == "." || safe == ".." {
		safe = "upload"
	}
	if ext := path.Ext(safe); ext != ".md" {
		safe = strings.TrimSuffix(safe, ext) + ".md"
	}
	return safe
}

// IsHiddenEntry reports whether an archive member is a dotfile or lives
// under a hidden directory.
func IsHiddenEntry(name string) bool {
	return strings.HasPrefix(name, ".") || strings.Contains(name, "/.")
}
