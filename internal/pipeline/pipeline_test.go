package pipeline_test

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/north-cloud/collector/internal/article"
	"github.com/jonesrussell/north-cloud/collector/internal/logger"
	"github.com/jonesrussell/north-cloud/collector/internal/pipeline"
)

func item(url, body string) *article.Item {
	return &article.Item{URL: url, Body: body, Lang: "en", Sources: []*article.Item{}}
}

func TestWriteBatch(t *testing.T) {
	dir := t.TempDir()
	w := pipeline.NewWriter(filepath.Join(dir, "items.jsonl"), logger.NewNoOp())

	path, err := w.WriteBatch([]*article.Item{
		item("https://example.com/a", "<main><p>a</p></main>"),
		item("https://example.com/b", "<main><p>b</p></main>"),
	})
	require.NoError(t, err)
	require.NotEmpty(t, path)

	assert.True(t, strings.HasPrefix(filepath.Base(path), "items-"))
	assert.True(t, strings.HasSuffix(path, ".jsonl"))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(raw)), "\n")
	require.Len(t, lines, 2)

	var first article.Item
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &first))
	assert.Equal(t, "https://example.com/a", first.URL)
}

func TestWriteBatch_DropsEmptyBodies(t *testing.T) {
	dir := t.TempDir()
	w := pipeline.NewWriter(filepath.Join(dir, "items.jsonl"), logger.NewNoOp())

	path, err := w.WriteBatch([]*article.Item{
		item("https://example.com/empty", ""),
		item("https://example.com/full", "<main><p>x</p></main>"),
	})
	require.NoError(t, err)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)

	assert.Equal(t, 1, strings.Count(string(raw), "\n"))
	assert.NotContains(t, string(raw), "example.com/empty")
}

func TestWriteBatch_AllDropped(t *testing.T) {
	dir := t.TempDir()
	w := pipeline.NewWriter(filepath.Join(dir, "items.jsonl"), logger.NewNoOp())

	path, err := w.WriteBatch([]*article.Item{item("https://example.com/empty", "")})
	require.NoError(t, err)
	assert.Empty(t, path)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "no file may appear for an all-dropped batch")
}

func TestFeedStore(t *testing.T) {
	dir := t.TempDir()
	s := pipeline.NewFeedStore(dir, logger.NewNoOp())
	require.NoError(t, s.Init())

	err := s.Store(&article.FeedItem{
		URL:      "https://example.com/latest",
		FileName: "latest.xml",
		Content:  "<feed/>",
	})
	require.NoError(t, err)

	raw, err := os.ReadFile(filepath.Join(dir, "latest.xml"))
	require.NoError(t, err)
	assert.Equal(t, "<feed/>", string(raw))

	// same file name overwrites
	require.NoError(t, s.Store(&article.FeedItem{
		URL:      "https://example.com/latest",
		FileName: "latest.xml",
		Content:  "<feed>v2</feed>",
	}))

	raw, err = os.ReadFile(filepath.Join(dir, "latest.xml"))
	require.NoError(t, err)
	assert.Equal(t, "<feed>v2</feed>", string(raw))
}

func TestFeedStore_Incomplete(t *testing.T) {
	s := pipeline.NewFeedStore(t.TempDir(), logger.NewNoOp())

	err := s.Store(&article.FeedItem{URL: "https://example.com/latest", FileName: "f.xml"})
	assert.True(t, errors.Is(err, pipeline.ErrIncompleteFeedItem))
}

func TestFeedStore_StripsPathFromFileName(t *testing.T) {
	dir := t.TempDir()
	s := pipeline.NewFeedStore(dir, logger.NewNoOp())

	require.NoError(t, s.Store(&article.FeedItem{
		URL:      "https://example.com/latest",
		FileName: "../escape.xml",
		Content:  "<feed/>",
	}))

	_, err := os.Stat(filepath.Join(dir, "escape.xml"))
	assert.NoError(t, err)
}
