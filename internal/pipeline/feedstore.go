package pipeline

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jonesrussell/north-cloud/collector/internal/article"
	"github.com/jonesrussell/north-cloud/collector/internal/logger"
)

// ErrIncompleteFeedItem is returned when a feed item lacks a file name
// or content.
var ErrIncompleteFeedItem = errors.New("feed item missing file name or content")

// FeedStore persists generated feed documents to a directory, one file
// per feed, overwritten on each generation.
type FeedStore struct {
	dir string
	log logger.Interface
}

// NewFeedStore creates a FeedStore writing into dir.
func NewFeedStore(dir string, log logger.Interface) *FeedStore {
	return &FeedStore{dir: dir, log: log.WithComponent("pipeline")}
}

// Store writes one feed document. The file name comes from the item and
// is taken as a bare name, never a path.
func (s *FeedStore) Store(item *article.FeedItem) error {
	if item.FileName == "" || item.Content == "" {
		return fmt.Errorf("feed %s: %w", item.URL, ErrIncompleteFeedItem)
	}

	target := filepath.Join(s.dir, filepath.Base(item.FileName))
	if err := writeAtomic(target, []byte(item.Content)); err != nil {
		return fmt.Errorf("store feed %s: %w", item.FileName, err)
	}

	s.log.Info("stored feed", "path", target, "page_url", item.URL)
	return nil
}

// StoreAll stores every feed item, logging and skipping failures.
// Returns the count of stored feeds.
func (s *FeedStore) StoreAll(items []*article.FeedItem) int {
	stored := 0
	for _, item := range items {
		if err := s.Store(item); err != nil {
			s.log.Error("failed to store feed", "file_name", item.FileName, "error", err)
			continue
		}
		stored++
	}
	return stored
}

// Init creates the feed directory so a misconfigured path fails at
// startup rather than on the first poll.
func (s *FeedStore) Init() error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create feed dir: %w", err)
	}
	return nil
}
