package feeds_test

import (
	"testing"

	"feedlog/feeds"
	"feedlog/models"

	"github.com/stretchr/testify/assert"
)

func tagFeed(url, tag string) models.Event {
	return models.Event{Action: models.ActionTagFeed, URL: url, Tag: tag}
}

func untagFeed(url, tag string) models.Event {
	return models.Event{Action: models.ActionUntagFeed, URL: url, Tag: tag}
}

func TestTags(t *testing.T) {
	url := "https://a.com/rss"

	t.Run("tagging adds a lowercased tag", func(t *testing.T) {
		tags := feeds.Tags([]models.Event{tagFeed(url, "News")})
		assert.True(t, tags[url]["news"])
	})

	t.Run("untagging the last tag forgets the feed", func(t *testing.T) {
		tags := feeds.Tags([]models.Event{
			tagFeed(url, "news"),
			untagFeed(url, "news"),
		})
		assert.NotContains(t, tags, url)
	})

	t.Run("untagging an absent tag is a no-op", func(t *testing.T) {
		tags := feeds.Tags([]models.Event{
			tagFeed(url, "news"),
			untagFeed(url, "tech"),
		})
		assert.True(t, tags[url]["news"])
	})

	t.Run("removing the feed clears its tags", func(t *testing.T) {
		tags := feeds.Tags([]models.Event{
			tagFeed(url, "news"),
			removeFeed(url),
		})
		assert.NotContains(t, tags, url)
	})

	t.Run("tags survive across other feeds", func(t *testing.T) {
		other := "https://b.com/rss"
		tags := feeds.Tags([]models.Event{
			tagFeed(url, "news"),
			tagFeed(other, "tech"),
			removeFeed(other),
		})
		assert.True(t, tags[url]["news"])
		assert.NotContains(t, tags, other)
	})
}

func TestFavorites(t *testing.T) {
	a := "https://a.com/rss"
	b := "https://b.com/rss"

	tags := feeds.Tags([]models.Event{
		tagFeed(b, feeds.FavoriteTag),
		tagFeed(a, "Favorite"),
		tagFeed(a, "news"),
	})

	assert.Equal(t, []string{a, b}, feeds.Favorites(tags))
}
