package feeds_test

import (
	"testing"

	"feedlog/feeds"
	"feedlog/models"

	"github.com/stretchr/testify/assert"
)

func addFeed(url string) models.Event {
	return models.Event{Action: models.ActionAddFeed, URL: url}
}

func removeFeed(url string) models.Event {
	return models.Event{Action: models.ActionRemoveFeed, URL: url}
}

func TestFeeds(t *testing.T) {
	tests := []struct {
		name     string
		events   []models.Event
		expected []string
	}{
		{
			name:     "empty log",
			events:   nil,
			expected: []string{},
		},
		{
			name:     "single add",
			events:   []models.Event{addFeed("https://a.com/rss")},
			expected: []string{"https://a.com/rss"},
		},
		{
			name: "duplicate add appears once",
			events: []models.Event{
				addFeed("https://a.com/rss"),
				addFeed("https://a.com/rss"),
			},
			expected: []string{"https://a.com/rss"},
		},
		{
			name: "add then remove",
			events: []models.Event{
				addFeed("https://a.com/rss"),
				removeFeed("https://a.com/rss"),
			},
			expected: []string{},
		},
		{
			name:     "remove of absent url is a no-op",
			events:   []models.Event{removeFeed("https://a.com/rss")},
			expected: []string{},
		},
		{
			name: "ordered by first appearance",
			events: []models.Event{
				addFeed("https://a.com/rss"),
				addFeed("https://b.com/rss"),
				addFeed("https://a.com/rss"),
			},
			expected: []string{"https://a.com/rss", "https://b.com/rss"},
		},
		{
			name: "re-add after remove moves to the end",
			events: []models.Event{
				addFeed("https://a.com/rss"),
				addFeed("https://b.com/rss"),
				removeFeed("https://a.com/rss"),
				addFeed("https://a.com/rss"),
			},
			expected: []string{"https://b.com/rss", "https://a.com/rss"},
		},
		{
			name: "remove only affects the named url",
			events: []models.Event{
				addFeed("https://a.com/rss"),
				addFeed("https://b.com/rss"),
				removeFeed("https://a.com/rss"),
			},
			expected: []string{"https://b.com/rss"},
		},
		{
			name: "blank urls are ignored",
			events: []models.Event{
				{Action: models.ActionAddFeed, URL: "   "},
				addFeed("https://a.com/rss"),
			},
			expected: []string{"https://a.com/rss"},
		},
		{
			name: "unrelated actions do not change the set",
			events: []models.Event{
				addFeed("https://a.com/rss"),
				{Action: models.ActionTagFeed, URL: "https://a.com/rss", Tag: "news"},
				{Action: models.ActionMoveFeed, URL: "https://a.com/rss", Folder: "Tech"},
			},
			expected: []string{"https://a.com/rss"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := feeds.Feeds(tt.events)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestFeedsReplayIsDeterministic(t *testing.T) {
	events := []models.Event{
		addFeed("https://a.com/rss"),
		addFeed("https://b.com/rss"),
		removeFeed("https://a.com/rss"),
		addFeed("https://c.com/rss"),
		addFeed("https://b.com/rss"),
	}

	assert.Equal(t, feeds.Feeds(events), feeds.Feeds(events))
}
