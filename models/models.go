package models

// Actions recorded on the feed log. The log itself accepts any of these;
// what they mean for the derived state lives in the feeds package.
const (
	ActionAddFeed      = "add_feed"
	ActionRemoveFeed   = "remove_feed"
	ActionMoveFeed     = "move_feed"
	ActionTagFeed      = "tag_feed"
	ActionUntagFeed    = "untag_feed"
	ActionAddFolder    = "add_folder"
	ActionMoveFolder   = "move_folder"
	ActionRemoveFolder = "remove_folder"
)

// Event is one recorded action on the feed log, serialized as a single
// JSON line. Events are immutable once appended; all state is derived by
// replaying them in order.
type Event struct {
	Action string `json:"action"`
	URL    string `json:"url,omitempty"`
	Folder string `json:"folder,omitempty"`
	Tag    string `json:"tag,omitempty"`
	Parent string `json:"parent,omitempty"`
}

// FeedsResponse is the body of the core /api/feeds endpoints.
type FeedsResponse struct {
	Feeds []string `json:"feeds"`
}

// StateResponse is the full derived state returned by /api/state and the
// folder/tag endpoints.
type StateResponse struct {
	Feeds       []string            `json:"feeds"`
	Folders     []string            `json:"folders"`
	FeedFolders map[string][]string `json:"feed_folders"`
	Tags        map[string][]string `json:"tags"`
	Favorites   []string            `json:"favorites"`
	Message     string              `json:"message,omitempty"`
}

// ImportResponse extends the state payload with the number of feeds an
// OPML import actually added.
type ImportResponse struct {
	StateResponse
	Imported int `json:"imported"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
