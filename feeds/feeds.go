// Package feeds derives the current feed state from the event log. All
// projections are pure functions over the event slice: replaying the
// same events always yields the same state.
package feeds

import (
	"strings"

	"feedlog/models"

	"github.com/samber/lo"
)

// Feeds replays the log and returns the active feed URLs, ordered by
// first appearance and duplicate free.
//
// add_feed inserts the URL if absent and remove_feed deletes it if
// present; both are no-ops on the set otherwise, even though the events
// themselves are always recorded. URLs are opaque tokens, not validated
// as URIs.
func Feeds(events []models.Event) []string {
	feeds := []string{}
	present := map[string]bool{}

	for _, event := range events {
		url := strings.TrimSpace(event.URL)
		if url == "" {
			continue
		}
		switch event.Action {
		case models.ActionAddFeed:
			if !present[url] {
				feeds = append(feeds, url)
				present[url] = true
			}
		case models.ActionRemoveFeed:
			if present[url] {
				delete(present, url)
				feeds = lo.Filter(feeds, func(f string, _ int) bool {
					return f != url
				})
			}
		}
	}

	return feeds
}
