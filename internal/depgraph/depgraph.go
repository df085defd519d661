package depgraph

import (
	"context"
	"strings"
	"sync"

	"github.com/standardbeagle/manifold/internal/compress"
	"github.com/standardbeagle/manifold/internal/ingest"
	"github.com/standardbeagle/manifold/internal/store"
)

// Cache builds the dependency graph once from the store's Python files and
// reuses it until Invalidate is called (spec.md §4.9 "Caching").
type Cache struct {
	mu    sync.Mutex
	graph *Graph
}

// Get returns the cached graph, building it on first use.
func (c *Cache) Get(ctx context.Context, st *store.Store) (*Graph, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.graph != nil {
		return c.graph, nil
	}

	sources, err := loadPythonSources(ctx, st)
	if err != nil {
		return nil, err
	}
	c.graph = Build(sources)
	return c.graph, nil
}

// Invalidate discards the cached graph so the next Get rebuilds it.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.graph = nil
}

// loadPythonSources scans every .py file under a skip-dir-filtered path and
// decompresses its document body.
func loadPythonSources(ctx context.Context, st *store.Store) (map[string]string, error) {
	sources := make(map[string]string)
	err := st.ScanFiles(ctx, "**/*.py", store.ReadBatchSize, func(batch []store.FileBatch) error {
		for _, fb := range batch {
			if inSkippedDir(fb.Rel) {
				continue
			}
			doc, ok := fb.Fields[store.FieldDoc]
			if !ok || strings.HasPrefix(doc, "[BINARY") {
				continue
			}
			sources[fb.Rel] = string(compress.DecodeString(doc))
		}
		return nil
	})
	return sources, err
}

func inSkippedDir(rel string) bool {
	for _, part := range strings.Split(rel, "/") {
		if ingest.IsSkippedDir(part) {
			return true
		}
	}
	return false
}
