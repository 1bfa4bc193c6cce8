package ingest

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/poiesic/corpus/storage"
)

// DefaultLibraryCacheTTL is how long a Libraries listing stays cached.
const DefaultLibraryCacheTTL = time.Minute

// LibraryInfo summarizes one indexed library version.
type LibraryInfo struct {
	Library   string `json:"library"`
	Version   string `json:"version"`
	Documents int    `json:"documents"`
	Chunks    int    `json:"chunks"`
}

// libraryCache holds one listing with an expiry. Listing scans the whole
// store, so repeated calls within the TTL reuse the last result.
type libraryCache struct {
	mu     sync.Mutex
	value  []LibraryInfo
	expiry time.Time
	ttl    time.Duration
}

func newLibraryCache(ttl time.Duration) *libraryCache {
	if ttl <= 0 {
		ttl = DefaultLibraryCacheTTL
	}
	return &libraryCache{ttl: ttl}
}

func (c *libraryCache) get() ([]LibraryInfo, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.value == nil || time.Now().After(c.expiry) {
		return nil, false
	}
	return c.value, true
}

func (c *libraryCache) set(value []LibraryInfo) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.value = value
	c.expiry = time.Now().Add(c.ttl)
}

func (c *libraryCache) invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.value = nil
}

const libraryScrollPage = 500

// Libraries lists every indexed library version with document and chunk
// counts. Results are cached; mutations go through Pipeline methods that
// invalidate the cache.
func (p *Pipeline) Libraries(ctx context.Context) ([]LibraryInfo, error) {
	if cached, ok := p.libCache.get(); ok {
		return cached, nil
	}

	type key struct{ library, version string }
	chunks := map[key]int{}
	docs := map[key]map[string]bool{}

	cursor := ""
	for {
		points, next, err := p.store.Scroll(ctx, storage.Filter{}, libraryScrollPage, cursor)
		if err != nil {
			return nil, err
		}
		for _, point := range points {
			k := key{point.Payload.Library, point.Payload.Version}
			chunks[k]++
			if docs[k] == nil {
				docs[k] = map[string]bool{}
			}
			docs[k][point.Payload.FilePath] = true
		}
		if next == "" {
			break
		}
		cursor = next
	}

	infos := make([]LibraryInfo, 0, len(chunks))
	for k, count := range chunks {
		infos = append(infos, LibraryInfo{
			Library:   k.library,
			Version:   k.version,
			Documents: len(docs[k]),
			Chunks:    count,
		})
	}
	sort.Slice(infos, func(a, b int) bool {
		if infos[a].Library != infos[b].Library {
			return infos[a].Library < infos[b].Library
		}
		return infos[a].Version < infos[b].Version
	})

	p.libCache.set(infos)
	return infos, nil
}

// DeleteLibrary removes a library's points and saved uploads. An empty
// version deletes every version. Returns how many points were deleted.
func (p *Pipeline) DeleteLibrary(ctx context.Context, library, version string) (int, error) {
	deleted, err := p.store.DeleteByFilter(ctx, storage.Filter{Library: library, Version: version})
	if err != nil {
		return 0, err
	}

	var uploadsErr error
	if version == "" {
		uploadsErr = p.uploads.RemoveLibrary(library)
	} else {
		uploadsErr = p.uploads.Remove(library, version)
	}
	if uploadsErr != nil {
		p.logger.Warn("failed to remove upload copies", "library", library, "err", uploadsErr)
	}

	p.libCache.invalidate()
	p.logger.Info("deleted library", "library", library, "version", version, "points", deleted)
	return deleted, nil
}
