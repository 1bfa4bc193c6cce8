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


package badger

import (
	"context"
	"encoding/binary"
	"fmt"
	"log/slog"

	"github.com/dgraph-io/badger/v4"

	"github.com/poiesic/corpus/core"
	"github.com/poiesic/corpus/storage"
)

// Store implements storage.VectorStore on an embedded BadgerDB backend.
type Store struct {
	backend *Backend
	logger  *slog.Logger
}

var _ storage.VectorStore = (*Store)(nil)

// Open opens (or creates) a store at the given directory. Pass inMemory for
// throwaway stores in tests.
func Open(path string, inMemory bool) (*Store, error) {
	backend, err := OpenBackend(path, inMemory)
	if err != nil {
		return nil, err
	}
	return &Store{
		backend: backend,
		logger:  slog.Default().With("component", "badger-store"),
	}, nil
}

// EnsureCollection records the dense vector dimension on first use and
// verifies it on every later call. Idempotent.
func (s *Store) EnsureCollection(_ context.Context, denseDim int) error {
	return s.backend.WithTx(func(tx *badger.Txn) error {
		key := makeCollectionKey()
		item, err := tx.Get(key)
		if err == badger.ErrKeyNotFound {
			buf := make([]byte, 8)
			binary.BigEndian.PutUint64(buf, uint64(denseDim))
			if err := tx.Set(key, buf); err != nil {
				return err
			}
			s.logger.Info("created collection", "dense_dim", denseDim)
			return tx.Commit()
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			stored := int(binary.BigEndian.Uint64(val))
			if stored != denseDim {
				return fmt.Errorf("collection has dense dimension %d, got %d", stored, denseDim)
			}
			return nil
		})
	}, true)
}

// Upsert writes all points in a single transaction.
func (s *Store) Upsert(_ context.Context, points []*core.Point) error {
	if len(points) == 0 {
		return nil
	}
	err := s.backend.WithTx(func(tx *badger.Txn) error {
		for _, point := range points {
			if err := tx.Set(makePointKey(point.ID), storage.MarshalPoint(point)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
	if err != nil {
		return err
	}
	s.logger.Debug("upserted points", "count", len(points))
	return nil
}

// Scroll pages through matching points in key order. The returned cursor is
// the last point ID of the page; pass it back to resume.
func (s *Store) Scroll(_ context.Context, filter storage.Filter, limit int, cursor string) ([]*core.Point, string, error) {
	if limit <= 0 {
		limit = 100
	}

	var (
		points []*core.Point
		next   string
	)
	err := s.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(pointPrefix + ":")
		iter := tx.NewIterator(opts)
		defer iter.Close()

		start := opts.Prefix
		if cursor != "" {
			// Seek past the cursor key.
			start = append(makePointKey(cursor), 0)
		}
		for iter.Seek(start); iter.Valid(); iter.Next() {
			item := iter.Item()
			var point *core.Point
			err := item.Value(func(val []byte) error {
				var err error
				point, err = storage.UnmarshalPoint(val)
				return err
			})
			if err != nil {
				return err
			}
			if !filter.Matches(point) {
				continue
			}
			if len(points) == limit {
				next = points[limit-1].ID
				return nil
			}
			points = append(points, point)
		}
		return nil
	}, false)
	if err != nil {
		return nil, "", err
	}
	return points, next, nil
}

// SetLinkedFiles replaces the linked_files payload field of one point.
func (s *Store) SetLinkedFiles(_ context.Context, id string, files []core.LinkedFile) error {
	return s.backend.WithTx(func(tx *badger.Txn) error {
		key := makePointKey(id)
		item, err := tx.Get(key)
		if err == badger.ErrKeyNotFound {
			return fmt.Errorf("%w: %s", storage.ErrPointNotFound, id)
		}
		if err != nil {
			return err
		}

		var point *core.Point
		if err := item.Value(func(val []byte) error {
			point, err = storage.UnmarshalPoint(val)
			return err
		}); err != nil {
			return err
		}

		point.Payload.LinkedFiles = files
		if err := tx.Set(key, storage.MarshalPoint(point)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// DeleteByIDs removes points by ID. Missing IDs are ignored.
func (s *Store) DeleteByIDs(_ context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	return s.backend.WithTx(func(tx *badger.Txn) error {
		for _, id := range ids {
			if err := tx.Delete(makePointKey(id)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// DeleteByFilter removes every matching point. An empty filter is rejected
// so a bug cannot wipe the store.
func (s *Store) DeleteByFilter(ctx context.Context, filter storage.Filter) (int, error) {
	if filter.IsEmpty() {
		return 0, storage.ErrEmptyFilter
	}

	// Collect first, then delete in batches: Badger iterators must not
	// observe their own transaction's deletes.
	var ids []string
	err := s.scanIDs(filter, &ids)
	if err != nil {
		return 0, err
	}
	if err := s.DeleteByIDs(ctx, ids); err != nil {
		return 0, err
	}
	s.logger.Debug("deleted points by filter", "count", len(ids))
	return len(ids), nil
}

// Count returns the number of points matching the filter.
func (s *Store) Count(_ context.Context, filter storage.Filter) (int, error) {
	var ids []string
	if err := s.scanIDs(filter, &ids); err != nil {
		return 0, err
	}
	return len(ids), nil
}

func (s *Store) scanIDs(filter storage.Filter, out *[]string) error {
	return s.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(pointPrefix + ":")
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			item := iter.Item()
			matched := filter.IsEmpty()
			if !matched {
				err := item.Value(func(val []byte) error {
					point, err := storage.UnmarshalPoint(val)
					if err != nil {
						return err
					}
					matched = filter.Matches(point)
					return nil
				})
				if err != nil {
					return err
				}
			}
			if matched {
				*out = append(*out, pointKeyID(item.Key()))
			}
		}
		return nil
	}, false)
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.backend.Close()
}
