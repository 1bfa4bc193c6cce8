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


package qdrant

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/poiesic/corpus/core"
	"github.com/poiesic/corpus/storage"
)

// DefaultCollection is the collection name used when none is configured.
const DefaultCollection = "corpus"

// indexedFields get keyword payload indexes so filtered operations do not
// fall back to full scans.
var indexedFields = []string{"library", "version", "file_path", "content_hash"}

// Store implements storage.VectorStore against a Qdrant server.
type Store struct {
	client     *resty.Client
	collection string
	logger     *slog.Logger
}

var _ storage.VectorStore = (*Store)(nil)

// Option configures a Store.
type Option func(*Store)

// WithCollection overrides the collection name.
func WithCollection(name string) Option {
	return func(s *Store) {
		if name != "" {
			s.collection = name
		}
	}
}

// WithAPIKey sets the api-key header for Qdrant Cloud.
func WithAPIKey(key string) Option {
	return func(s *Store) {
		if key != "" {
			s.client.SetHeader("api-key", key)
		}
	}
}

// WithTimeout bounds each request.
func WithTimeout(d time.Duration) Option {
	return func(s *Store) {
		if d > 0 {
			s.client.SetTimeout(d)
		}
	}
}

// New creates a store for the Qdrant server at baseURL.
func New(baseURL string, opts ...Option) *Store {
	s := &Store{
		client: resty.New().
			SetBaseURL(baseURL).
			SetTimeout(30 * time.Second).
			SetHeader("Content-Type", "application/json"),
		collection: DefaultCollection,
		logger:     slog.Default().With("component", "qdrant-store"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) do(ctx context.Context, result any) *resty.Request {
	req := s.client.R().SetContext(ctx)
	if result != nil {
		req.SetResult(result)
	}
	return req
}

func checkResponse(resp *resty.Response, err error, op string) error {
	if err != nil {
		return fmt.Errorf("qdrant %s: %w", op, err)
	}
	if resp.IsError() {
		return fmt.Errorf("qdrant %s: status %d: %s", op, resp.StatusCode(), resp.String())
	}
	return nil
}

// EnsureCollection creates the collection and its payload indexes if they
// do not exist yet. Idempotent.
func (s *Store) EnsureCollection(ctx context.Context, denseDim int) error {
	resp, err := s.do(ctx, nil).Get("/collections/" + s.collection)
	if err != nil {
		return fmt.Errorf("qdrant check collection: %w", err)
	}
	if resp.StatusCode() == http.StatusOK {
		return nil
	}

	create := createCollectionRequest{
		Vectors: map[string]vectorParams{
			"dense": {Size: denseDim, Distance: "Cosine"},
		},
		SparseVectors: map[string]struct{}{
			"sparse": {},
		},
	}
	resp, err = s.do(ctx, nil).SetBody(create).Put("/collections/" + s.collection)
	if err := checkResponse(resp, err, "create collection"); err != nil {
		return err
	}
	s.logger.Info("created collection", "collection", s.collection, "dense_dim", denseDim)

	for _, field := range indexedFields {
		resp, err = s.do(ctx, nil).
			SetBody(createIndexRequest{FieldName: field, FieldSchema: "keyword"}).
			Put(fmt.Sprintf("/collections/%s/index", s.collection))
		if err := checkResponse(resp, err, "create payload index"); err != nil {
			return err
		}
	}
	return nil
}

// Upsert writes all points in one request with wait=true, so the write is
// applied atomically and durably before returning.
func (s *Store) Upsert(ctx context.Context, points []*core.Point) error {
	if len(points) == 0 {
		return nil
	}

	body := upsertRequest{Points: make([]point, len(points))}
	for i, p := range points {
		body.Points[i] = point{
			ID: p.ID,
			Vector: pointVectors{
				Dense:  p.Dense,
				Sparse: sparseVector{Indices: p.Sparse.Indices, Values: p.Sparse.Values},
			},
			Payload: p.Payload,
		}
	}

	resp, err := s.do(ctx, nil).
		SetQueryParam("wait", "true").
		SetBody(body).
		Put(fmt.Sprintf("/collections/%s/points", s.collection))
	if err := checkResponse(resp, err, "upsert"); err != nil {
		return err
	}
	s.logger.Debug("upserted points", "count", len(points))
	return nil
}

// Scroll pages through matching points. The cursor is Qdrant's page offset.
func (s *Store) Scroll(ctx context.Context, f storage.Filter, limit int, cursor string) ([]*core.Point, string, error) {
	if limit <= 0 {
		limit = 100
	}

	var parsed scrollResponse
	resp, err := s.do(ctx, &parsed).
		SetBody(scrollRequest{
			Filter:      toFilter(f),
			Limit:       limit,
			Offset:      cursor,
			WithPayload: true,
			WithVector:  true,
		}).
		Post(fmt.Sprintf("/collections/%s/points/scroll", s.collection))
	if err := checkResponse(resp, err, "scroll"); err != nil {
		return nil, "", err
	}

	points := make([]*core.Point, len(parsed.Result.Points))
	for i, sp := range parsed.Result.Points {
		p := &core.Point{ID: sp.ID, Dense: sp.Vector.Dense, Payload: sp.Payload}
		if sp.Vector.Sparse != nil {
			p.Sparse = core.SparseVector{Indices: sp.Vector.Sparse.Indices, Values: sp.Vector.Sparse.Values}
		}
		points[i] = p
	}
	return points, parsed.Result.NextPageOffset, nil
}

// SetLinkedFiles replaces the linked_files payload field of one point.
func (s *Store) SetLinkedFiles(ctx context.Context, id string, files []core.LinkedFile) error {
	resp, err := s.do(ctx, nil).
		SetQueryParam("wait", "true").
		SetBody(setPayloadRequest{
			Payload: map[string]any{"linked_files": files},
			Points:  []string{id},
		}).
		Post(fmt.Sprintf("/collections/%s/points/payload", s.collection))
	return checkResponse(resp, err, "set payload")
}

// DeleteByIDs removes points by ID.
func (s *Store) DeleteByIDs(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	resp, err := s.do(ctx, nil).
		SetQueryParam("wait", "true").
		SetBody(deletePointsRequest{Points: ids}).
		Post(fmt.Sprintf("/collections/%s/points/delete", s.collection))
	return checkResponse(resp, err, "delete points")
}

// DeleteByFilter removes every matching point. Counts before deleting since
// the delete endpoint does not report how many points it removed.
func (s *Store) DeleteByFilter(ctx context.Context, f storage.Filter) (int, error) {
	if f.IsEmpty() {
		return 0, storage.ErrEmptyFilter
	}

	count, err := s.Count(ctx, f)
	if err != nil {
		return 0, err
	}

	resp, err := s.do(ctx, nil).
		SetQueryParam("wait", "true").
		SetBody(deletePointsRequest{Filter: toFilter(f)}).
		Post(fmt.Sprintf("/collections/%s/points/delete", s.collection))
	if err := checkResponse(resp, err, "delete by filter"); err != nil {
		return 0, err
	}
	s.logger.Debug("deleted points by filter", "count", count)
	return count, nil
}

// Count returns the exact number of points matching the filter.
func (s *Store) Count(ctx context.Context, f storage.Filter) (int, error) {
	var parsed countResponse
	resp, err := s.do(ctx, &parsed).
		SetBody(countRequest{Filter: toFilter(f), Exact: true}).
		Post(fmt.Sprintf("/collections/%s/points/count", s.collection))
	if err := checkResponse(resp, err, "count"); err != nil {
		return 0, err
	}
	return parsed.Result.Count, nil
}

// Close releases the HTTP client. No server-side state to release.
func (s *Store) Close() error {
	return nil
}

func toFilter(f storage.Filter) *filter {
	if f.IsEmpty() {
		return nil
	}
	var conds []matchCondition
	add := func(key, value string) {
		if value == "" {
			return
		}
		c := matchCondition{Key: key}
		c.Match.Value = value
		conds = append(conds, c)
	}
	add("library", f.Library)
	add("version", f.Version)
	add("file_path", f.FilePath)
	add("content_hash", f.ContentHash)
	return &filter{Must: conds}
}
