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
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/poiesic/corpus/core"
)

// ArchiveMode controls how per-file failures inside an archive are handled.
type ArchiveMode string

const (
	// ModePartial indexes every file it can and aggregates failures.
	ModePartial ArchiveMode = "partial"
	// ModeFailFast stops on the first failing file.
	ModeFailFast ArchiveMode = "fail_fast"
)

// archiveEntry is one eligible file pulled out of an uploaded archive.
type archiveEntry struct {
	name string
	data []byte
}

// IngestArchive expands a zip upload and ingests every eligible member.
// Directories, hidden entries, and files outside the extension allow-list
// are skipped silently. In partial mode each file fails independently; in
// fail-fast mode the first failure aborts the remaining files.
func (p *Pipeline) IngestArchive(ctx context.Context, content []byte, archiveName, library, version string) (*core.ArchiveResult, error) {
	start := time.Now()

	entries, err := p.readArchive(content)
	if err != nil {
		return nil, core.NewIngestionError(core.StepExtraction, archiveName, "archive could not be read", err)
	}
	p.logger.Info("expanding archive",
		"archive", archiveName,
		"library", library,
		"version", version,
		"files", len(entries),
		"mode", p.archiveMode)

	result := &core.ArchiveResult{Library: library, Version: version}
	if p.archiveMode == ModeFailFast {
		err = p.ingestEntriesFailFast(ctx, entries, library, version, result)
	} else {
		p.ingestEntriesPartial(ctx, entries, library, version, result)
	}
	result.DurationSeconds = time.Since(start).Seconds()
	if err != nil {
		return nil, err
	}
	return result, nil
}

// readArchive collects eligible members, enforcing the entry cap.
func (p *Pipeline) readArchive(content []byte) ([]archiveEntry, error) {
	reader, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return nil, fmt.Errorf("open zip: %w", err)
	}

	var entries []archiveEntry
	for _, f := range reader.File {
		if f.FileInfo().IsDir() || core.IsHiddenEntry(f.Name) || !core.AllowedExtension(f.Name) {
			continue
		}
		if len(entries) == p.maxArchiveEntries {
			return nil, fmt.Errorf("%w: more than %d eligible files",
				core.ErrArchiveTooLarge, p.maxArchiveEntries)
		}

		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("open archive member %s: %w", f.Name, err)
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("read archive member %s: %w", f.Name, err)
		}
		entries = append(entries, archiveEntry{name: f.Name, data: data})
	}
	return entries, nil
}

// ingestEntriesPartial fans files out across the worker pool, collecting
// per-file outcomes. A failing file never affects its siblings.
func (p *Pipeline) ingestEntriesPartial(ctx context.Context, entries []archiveEntry, library, version string, result *core.ArchiveResult) {
	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)
	for _, entry := range entries {
		entry := entry
		wg.Add(1)
		submitErr := p.archivePool.Submit(func() {
			defer wg.Done()
			fileResult, err := p.Ingest(ctx, entry.data, entry.name, library, version)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				result.FilesFailed++
				result.Failures = append(result.Failures, toFileFailure(entry.name, err))
				return
			}
			result.FilesProcessed++
			result.ChunksIndexed += fileResult.ChunksIndexed
			result.TruncationWarnings = append(result.TruncationWarnings, fileResult.TruncationWarnings...)
		})
		if submitErr != nil {
			wg.Done()
			mu.Lock()
			result.FilesFailed++
			result.Failures = append(result.Failures, core.FileFailure{
				FileName: entry.name,
				Step:     core.StepExtraction,
				Err:      submitErr.Error(),
			})
			mu.Unlock()
		}
	}
	wg.Wait()
}

// ingestEntriesFailFast processes files concurrently but cancels everything
// on the first failure.
func (p *Pipeline) ingestEntriesFailFast(ctx context.Context, entries []archiveEntry, library, version string, result *core.ArchiveResult) error {
	group, ctx := errgroup.WithContext(ctx)
	group.SetLimit(p.archivePool.Cap())

	var mu sync.Mutex
	for _, entry := range entries {
		entry := entry
		group.Go(func() error {
			fileResult, err := p.Ingest(ctx, entry.data, entry.name, library, version)
			if err != nil {
				return err
			}
			mu.Lock()
			defer mu.Unlock()
			result.FilesProcessed++
			result.ChunksIndexed += fileResult.ChunksIndexed
			result.TruncationWarnings = append(result.TruncationWarnings, fileResult.TruncationWarnings...)
			return nil
		})
	}
	return group.Wait()
}

// toFileFailure extracts the failing step from a pipeline error.
func toFileFailure(name string, err error) core.FileFailure {
	failure := core.FileFailure{FileName: name, Step: core.StepExtraction, Err: err.Error()}
	if ingErr, ok := core.AsIngestionError(err); ok {
		failure.Step = ingErr.Step
	}
	return failure
}
