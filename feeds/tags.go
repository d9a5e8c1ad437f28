package feeds

import (
	"sort"
	"strings"

	"feedlog/models"
)

// FavoriteTag marks a feed as a favorite; favorites are just a view
// over the tag projection.
const FavoriteTag = "favorite"

// Tags replays tag_feed/untag_feed events into per-feed tag sets. Tags
// are lowercased. Removing a feed drops its tags; untagging the last
// tag drops the feed's entry entirely.
func Tags(events []models.Event) map[string]map[string]bool {
	tags := map[string]map[string]bool{}

	for _, event := range events {
		url := strings.TrimSpace(event.URL)
		tag := strings.ToLower(strings.TrimSpace(event.Tag))

		if event.Action == models.ActionRemoveFeed && url != "" {
			delete(tags, url)
		}
		if url == "" || tag == "" {
			continue
		}

		switch event.Action {
		case models.ActionTagFeed:
			if tags[url] == nil {
				tags[url] = map[string]bool{}
			}
			tags[url][tag] = true
		case models.ActionUntagFeed:
			if current := tags[url]; current != nil && current[tag] {
				delete(current, tag)
				if len(current) == 0 {
					delete(tags, url)
				}
			}
		}
	}

	return tags
}

// Favorites returns the sorted URLs carrying the favorite tag.
func Favorites(tags map[string]map[string]bool) []string {
	favorites := []string{}
	for url, set := range tags {
		if set[FavoriteTag] {
			favorites = append(favorites, url)
		}
	}
	sort.Strings(favorites)
	return favorites
}
