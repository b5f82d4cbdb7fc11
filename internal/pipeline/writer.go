// Package pipeline persists resolved articles and generated feeds. Items
// with empty bodies are dropped before writing, and every write goes
// through a temp file so readers never observe a partial batch.
package pipeline

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jonesrussell/north-cloud/collector/internal/article"
	"github.com/jonesrussell/north-cloud/collector/internal/logger"
)

// Writer writes batches of resolved articles as JSON lines.
type Writer struct {
	// path is the base output path; each batch goes to a new file named
	// base-<unix timestamp>.ext next to it.
	path string

	log logger.Interface
	now func() time.Time
}

// NewWriter creates a Writer for the given base output path.
func NewWriter(path string, log logger.Interface) *Writer {
	return &Writer{
		path: path,
		log:  log.WithComponent("pipeline"),
		now:  time.Now,
	}
}

// WriteBatch writes the items as one JSON-lines file and returns its
// path. Items with empty bodies are dropped and logged. A batch with no
// surviving items writes nothing and returns an empty path.
func (w *Writer) WriteBatch(items []*article.Item) (string, error) {
	kept := w.dropMissingBody(items)
	if len(kept) == 0 {
		w.log.Info("no items to write", "dropped", len(items))
		return "", nil
	}

	var sb strings.Builder
	enc := json.NewEncoder(&sb)
	for _, item := range kept {
		if err := enc.Encode(item); err != nil {
			return "", fmt.Errorf("encode item %s: %w", item.URL, err)
		}
	}

	target := w.timestampedPath()
	if err := writeAtomic(target, []byte(sb.String())); err != nil {
		return "", err
	}

	w.log.Info("wrote item batch", "path", target, "items", len(kept), "dropped", len(items)-len(kept))
	return target, nil
}

// dropMissingBody filters out items whose body is empty.
func (w *Writer) dropMissingBody(items []*article.Item) []*article.Item {
	kept := make([]*article.Item, 0, len(items))
	for _, item := range items {
		if item.Body == "" {
			w.log.Warn("dropping item with empty body", "url", item.URL)
			continue
		}
		kept = append(kept, item)
	}
	return kept
}

// timestampedPath derives the batch file path from the base path, e.g.
// out/items.jsonl becomes out/items-1700000000.jsonl.
func (w *Writer) timestampedPath() string {
	ext := filepath.Ext(w.path)
	base := strings.TrimSuffix(w.path, ext)
	return fmt.Sprintf("%s-%d%s", base, w.now().Unix(), ext)
}

// writeAtomic writes data to a temp file in the target's directory and
// renames it into place, so the target is never observed half-written.
func writeAtomic(target string, data []byte) error {
	dir := filepath.Dir(target)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(target)+".tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err = tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err = tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("close temp file: %w", err)
	}

	if err = os.Rename(tmpPath, target); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}
