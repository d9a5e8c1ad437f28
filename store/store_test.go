package store_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"feedlog/models"
	"feedlog/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) *store.Store {
	t.Helper()
	return store.New(filepath.Join(t.TempDir(), "feeds.jsonl"))
}

func TestAppendThenReadAll(t *testing.T) {
	s := newStore(t)

	first := models.Event{Action: models.ActionAddFeed, URL: "https://a.com/rss"}
	second := models.Event{Action: models.ActionRemoveFeed, URL: "https://a.com/rss"}
	require.NoError(t, s.Append(first))

	events, err := s.ReadAll()
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, first, events[len(events)-1])

	require.NoError(t, s.Append(second))

	events, err = s.ReadAll()
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, first, events[0])
	assert.Equal(t, second, events[len(events)-1])
}

func TestReadAllIsRestartable(t *testing.T) {
	s := newStore(t)
	require.NoError(t, s.Append(models.Event{Action: models.ActionAddFeed, URL: "https://a.com/rss"}))
	require.NoError(t, s.Append(models.Event{Action: models.ActionAddFeed, URL: "https://b.com/rss"}))

	firstPass, err := s.ReadAll()
	require.NoError(t, err)
	secondPass, err := s.ReadAll()
	require.NoError(t, err)

	assert.Equal(t, firstPass, secondPass)
}

func TestReadAllMissingFileIsEmptyLog(t *testing.T) {
	s := newStore(t)

	events, err := s.ReadAll()

	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestAppendValidation(t *testing.T) {
	tests := []struct {
		name  string
		event models.Event
	}{
		{
			name:  "add without url",
			event: models.Event{Action: models.ActionAddFeed},
		},
		{
			name:  "remove without url",
			event: models.Event{Action: models.ActionRemoveFeed},
		},
		{
			name:  "unknown action",
			event: models.Event{Action: "truncate_log", URL: "https://a.com/rss"},
		},
		{
			name:  "empty action",
			event: models.Event{URL: "https://a.com/rss"},
		},
		{
			name:  "tag without tag",
			event: models.Event{Action: models.ActionTagFeed, URL: "https://a.com/rss"},
		},
		{
			name:  "folder action without folder",
			event: models.Event{Action: models.ActionAddFolder},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newStore(t)

			err := s.Append(tt.event)

			assert.ErrorIs(t, err, store.ErrInvalidEvent)

			// Nothing may reach the log on a validation failure.
			events, err := s.ReadAll()
			require.NoError(t, err)
			assert.Empty(t, events)
		})
	}
}

func TestReadAllSkipsMalformedLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "feeds.jsonl")
	content := `{"action":"add_feed","url":"https://a.com/rss"}
not json at all
{"action":"add_feed","url":"https://b.com/rss"}

{"action":"add_feed","url":"https://c
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	events, err := store.New(path).ReadAll()

	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "https://a.com/rss", events[0].URL)
	assert.Equal(t, "https://b.com/rss", events[1].URL)
}

func TestReadAllHandlesLinesBeyondScannerLimit(t *testing.T) {
	s := newStore(t)

	// URLs are opaque and unbounded, so a single line can exceed the
	// 64KB default token size of bufio.Scanner.
	longURL := "https://a.com/rss?q=" + strings.Repeat("x", 70_000)
	event := models.Event{Action: models.ActionAddFeed, URL: longURL}
	require.NoError(t, s.Append(event))
	require.NoError(t, s.Append(models.Event{Action: models.ActionAddFeed, URL: "https://b.com/rss"}))

	events, err := s.ReadAll()

	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, event, events[0])
	assert.Equal(t, "https://b.com/rss", events[1].URL)
}

func TestReadAllAcceptsFileWithoutTrailingNewline(t *testing.T) {
	path := filepath.Join(t.TempDir(), "feeds.jsonl")
	content := `{"action":"add_feed","url":"https://a.com/rss"}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	events, err := store.New(path).ReadAll()

	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "https://a.com/rss", events[0].URL)
}

func TestAppendFailsWhenPathUnwritable(t *testing.T) {
	s := store.New(filepath.Join(t.TempDir(), "missing", "feeds.jsonl"))

	err := s.Append(models.Event{Action: models.ActionAddFeed, URL: "https://a.com/rss"})

	assert.Error(t, err)
}

func TestReadAllFailsWhenPathIsDirectory(t *testing.T) {
	s := store.New(t.TempDir())

	_, err := s.ReadAll()

	assert.Error(t, err)
}
