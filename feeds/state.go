package feeds

import (
	"sort"

	"feedlog/models"

	"github.com/samber/lo"
)

// State is the full projection of the log: the active feed set plus the
// folder and tag views derived alongside it.
type State struct {
	Feeds       []string
	Folders     []string
	FeedFolders map[string][]string
	Tags        map[string][]string
	Favorites   []string
}

// Project computes the complete derived state from the event history.
// It has no side effects and no error conditions of its own.
func Project(events []models.Event) State {
	feedList := Feeds(events)
	folderState := Folders(events)
	feedFolders := FeedFolders(events, folderState.Moves, folderState.Removed)

	folderNames := map[string]bool{DefaultFolder: true}
	for name := range folderState.Folders {
		folderNames[name] = true
	}

	normalized := map[string][]string{}
	for _, url := range feedList {
		names := lo.Uniq(lo.Filter(feedFolders[url], func(name string, _ int) bool {
			return name != ""
		}))
		sort.Strings(names)
		if len(names) == 0 {
			names = []string{DefaultFolder}
		}
		normalized[url] = names
		for _, name := range names {
			folderNames[name] = true
		}
	}

	// A recorded move retires the old path even if something above
	// still mentioned it.
	for _, m := range folderState.Moves {
		if folderNames[m.Old] {
			delete(folderNames, m.Old)
			if m.New != "" {
				folderNames[m.New] = true
			}
		}
	}
	folders := lo.Keys(folderNames)
	sort.Strings(folders)

	tags := Tags(events)
	tagLists := map[string][]string{}
	for url, set := range tags {
		if len(set) == 0 {
			continue
		}
		list := lo.Keys(set)
		sort.Strings(list)
		tagLists[url] = list
	}

	return State{
		Feeds:       feedList,
		Folders:     folders,
		FeedFolders: normalized,
		Tags:        tagLists,
		Favorites:   Favorites(tags),
	}
}

// Response shapes the projection for the HTTP state endpoints.
func (s State) Response(message string) models.StateResponse {
	return models.StateResponse{
		Feeds:       s.Feeds,
		Folders:     s.Folders,
		FeedFolders: s.FeedFolders,
		Tags:        s.Tags,
		Favorites:   s.Favorites,
		Message:     message,
	}
}
