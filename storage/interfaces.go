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


package storage

import (
	"context"

	"github.com/poiesic/corpus/core"
)

// Filter selects points by payload fields. Empty fields match everything.
type Filter struct {
	Library     string
	Version     string
	FilePath    string
	ContentHash string
}

// Matches reports whether a point's payload satisfies every set field.
func (f Filter) Matches(p *core.Point) bool {
	if f.Library != "" && p.Payload.Library != f.Library {
		return false
	}
	if f.Version != "" && p.Payload.Version != f.Version {
		return false
	}
	if f.FilePath != "" && p.Payload.FilePath != f.FilePath {
		return false
	}
	if f.ContentHash != "" && p.Payload.ContentHash != f.ContentHash {
		return false
	}
	return true
}

// IsEmpty reports whether no field is set.
func (f Filter) IsEmpty() bool {
	return f == Filter{}
}

// VectorStore is the index the pipeline writes points into.
type VectorStore interface {
	// EnsureCollection creates the collection if it does not exist.
	// Idempotent.
	EnsureCollection(ctx context.Context, denseDim int) error

	// Upsert writes all points atomically: either every point becomes
	// visible or none do.
	Upsert(ctx context.Context, points []*core.Point) error

	// Scroll pages through points matching the filter. cursor is "" for the
	// first page; the returned cursor is "" when exhausted.
	Scroll(ctx context.Context, filter Filter, limit int, cursor string) ([]*core.Point, string, error)

	// SetLinkedFiles replaces the linked_files payload field of one point.
	SetLinkedFiles(ctx context.Context, id string, files []core.LinkedFile) error

	// DeleteByIDs removes points by ID. Missing IDs are not an error.
	DeleteByIDs(ctx context.Context, ids []string) error

	// DeleteByFilter removes every matching point and reports how many.
	DeleteByFilter(ctx context.Context, filter Filter) (int, error)

	// Count returns the number of points matching the filter.
	Count(ctx context.Context, filter Filter) (int, error)

	// Close releases the store.
	Close() error
}
