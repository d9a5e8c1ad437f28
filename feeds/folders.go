package feeds

import (
	"sort"
	"strings"

	"feedlog/models"
)

// DefaultFolder is where feeds live when no folder was ever assigned.
// It always exists and cannot be moved or removed.
const DefaultFolder = "Default"

// Move records that a folder path was renamed. Later references to the
// old path (or anything under it) resolve to the new one.
type Move struct {
	Old string
	New string
}

func folderName(folder string) string {
	return strings.TrimSpace(folder)
}

// FolderValue normalizes a folder reference, falling back to the
// default folder when empty.
func FolderValue(folder string) string {
	if name := folderName(folder); name != "" {
		return name
	}
	return DefaultFolder
}

// FolderLeaf returns the last path segment of a folder path.
func FolderLeaf(folder string) string {
	name := folderName(folder)
	if name == "" {
		return ""
	}
	if i := strings.LastIndex(name, "/"); i >= 0 {
		return name[i+1:]
	}
	return name
}

// FolderPath joins a folder name onto its parent path.
func FolderPath(name, parent string) string {
	cleanName := folderName(name)
	parentName := folderName(parent)
	if cleanName == "" {
		return ""
	}
	if parentName != "" {
		return parentName + "/" + cleanName
	}
	return cleanName
}

// ResolveFolder rewrites a folder reference through the recorded moves,
// in order. With defaultOnEmpty an empty reference resolves to the
// default folder; otherwise it stays empty.
func ResolveFolder(folder string, moves []Move, defaultOnEmpty bool) string {
	current := folderName(folder)
	if defaultOnEmpty {
		current = FolderValue(current)
	} else if current == "" {
		return ""
	}
	for _, m := range moves {
		if m.Old == "" {
			continue
		}
		if current == m.Old {
			current = m.New
		} else if strings.HasPrefix(current, m.Old+"/") {
			current = m.New + current[len(m.Old):]
		}
	}
	if defaultOnEmpty {
		return FolderValue(current)
	}
	return folderName(current)
}

// FolderState is the folder projection: declared folders, the ordered
// list of moves, and the paths removed from the tree.
type FolderState struct {
	Folders map[string]bool
	Moves   []Move
	Removed map[string]bool
}

// Folders replays folder lifecycle events. Folder paths are
// hierarchical ("Parent/Child"); removing or moving a folder affects
// its whole subtree. The default folder cannot be removed.
func Folders(events []models.Event) FolderState {
	state := FolderState{
		Folders: map[string]bool{},
		Removed: map[string]bool{},
	}

	for _, event := range events {
		switch event.Action {
		case models.ActionAddFolder:
			name := ResolveFolder(event.Folder, state.Moves, true)
			pruneRemoved(state.Removed, name)
			state.Folders[name] = true

		case models.ActionMoveFolder:
			old := ResolveFolder(event.Folder, state.Moves, false)
			if old == "" {
				continue
			}
			parent := folderName(event.Parent)
			if parent != "" {
				parent = ResolveFolder(parent, state.Moves, false)
			}
			newPath := FolderPath(FolderLeaf(old), parent)
			if newPath == "" {
				continue
			}
			delete(state.Folders, old)
			state.Folders[newPath] = true
			pruneRemoved(state.Removed, newPath)
			state.Moves = append(state.Moves, Move{Old: old, New: newPath})

		case models.ActionRemoveFolder:
			target := ResolveFolder(event.Folder, state.Moves, false)
			if target == "" || target == DefaultFolder {
				continue
			}
			state.Removed[target] = true
			for name := range state.Folders {
				if name == target || strings.HasPrefix(name, target+"/") {
					delete(state.Folders, name)
				}
			}
		}
	}

	return state
}

// pruneRemoved clears removal markers that a folder reappearing at name
// (or along its path) overrides.
func pruneRemoved(removed map[string]bool, name string) {
	for r := range removed {
		if r == name || strings.HasPrefix(r, name+"/") || strings.HasPrefix(name, r+"/") {
			delete(removed, r)
		}
	}
}

// FeedFolders replays feed/folder membership. add_feed adds the feed to
// the event's folder, move_feed replaces the whole membership set,
// remove_feed forgets the feed and remove_folder strips the folder from
// every feed. Membership that resolves to nothing falls back to the
// default folder.
func FeedFolders(events []models.Event, moves []Move, removed map[string]bool) map[string][]string {
	membership := map[string]map[string]bool{}

	for _, event := range events {
		if event.Action == models.ActionRemoveFolder {
			target := ResolveFolder(event.Folder, moves, false)
			if target == "" {
				continue
			}
			for _, names := range membership {
				for name := range names {
					if name == target || strings.HasPrefix(name, target+"/") {
						delete(names, name)
					}
				}
			}
			continue
		}

		url := strings.TrimSpace(event.URL)
		if url == "" {
			continue
		}
		switch event.Action {
		case models.ActionRemoveFeed:
			delete(membership, url)
		case models.ActionMoveFeed:
			membership[url] = map[string]bool{FolderValue(event.Folder): true}
		case models.ActionAddFeed:
			if membership[url] == nil {
				membership[url] = map[string]bool{}
			}
			membership[url][FolderValue(event.Folder)] = true
		}
	}

	isRemoved := func(name string) bool {
		for r := range removed {
			if name == r || strings.HasPrefix(name, r+"/") {
				return true
			}
		}
		return false
	}

	resolved := map[string][]string{}
	for url, names := range membership {
		cleaned := map[string]bool{}
		for name := range names {
			n := ResolveFolder(name, moves, false)
			if n != "" && !isRemoved(n) {
				cleaned[n] = true
			}
		}
		if len(cleaned) == 0 {
			cleaned[DefaultFolder] = true
		}
		list := make([]string, 0, len(cleaned))
		for name := range cleaned {
			list = append(list, name)
		}
		sort.Strings(list)
		resolved[url] = list
	}

	return resolved
}
