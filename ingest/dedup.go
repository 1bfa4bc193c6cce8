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


package ingest

import (
	"context"
	"path"

	"github.com/poiesic/corpus/core"
	"github.com/poiesic/corpus/storage"
)

const dedupScrollPage = 100

// checkDuplicate looks for an already indexed document with the same
// content hash. Store errors are logged and treated as a miss: failing the
// whole ingestion over a dedup lookup would be worse than re-embedding.
func (p *Pipeline) checkDuplicate(ctx context.Context, doc *core.Document) *core.Point {
	points, _, err := p.store.Scroll(ctx, storage.Filter{ContentHash: doc.ContentHash}, 1, "")
	if err != nil {
		p.logger.Warn("duplicate lookup failed, proceeding as new document",
			"file", doc.Filename, "err", err)
		return nil
	}
	if len(points) == 0 {
		return nil
	}
	return points[0]
}

// linkDuplicate records the new upload on every point of the existing
// document, so queries can report all paths a piece of content lives under.
// Linking is idempotent: an already present link is left alone.
func (p *Pipeline) linkDuplicate(ctx context.Context, doc *core.Document, existing *core.Point) error {
	link := core.LinkedFile{
		Library:  doc.Library,
		Version:  doc.Version,
		FilePath: doc.Filename,
		Filename: path.Base(doc.Filename),
	}

	filter := storage.Filter{
		ContentHash: doc.ContentHash,
		Library:     existing.Payload.Library,
		Version:     existing.Payload.Version,
		FilePath:    existing.Payload.FilePath,
	}
	cursor := ""
	linked := 0
	for {
		points, next, err := p.store.Scroll(ctx, filter, dedupScrollPage, cursor)
		if err != nil {
			return err
		}
		for _, point := range points {
			if sameFile(point, doc) || hasLink(point.Payload.LinkedFiles, link) {
				continue
			}
			files := append(append([]core.LinkedFile{}, point.Payload.LinkedFiles...), link)
			if err := p.store.SetLinkedFiles(ctx, point.ID, files); err != nil {
				return err
			}
			linked++
		}
		if next == "" {
			break
		}
		cursor = next
	}

	p.logger.Info("linked duplicate upload to existing document",
		"file", doc.Filename,
		"existing", existingPath(existing),
		"points_linked", linked)
	return nil
}

func sameFile(point *core.Point, doc *core.Document) bool {
	return point.Payload.Library == doc.Library &&
		point.Payload.Version == doc.Version &&
		point.Payload.FilePath == doc.Filename
}

func hasLink(files []core.LinkedFile, link core.LinkedFile) bool {
	for _, f := range files {
		if f.Library == link.Library && f.Version == link.Version && f.FilePath == link.FilePath {
			return true
		}
	}
	return false
}

// existingPath formats the canonical location of the indexed original.
func existingPath(point *core.Point) string {
	return point.Payload.Library + "/" + point.Payload.Version + "/" + point.Payload.FilePath
}
