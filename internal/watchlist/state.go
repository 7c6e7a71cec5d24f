// Package watchlist implements the view-state layer that keeps every surface
// (header badge, movie grid, modal list) consistent with the remote watchlist.
//
// State transitions are a pure function ([Apply]) over a closed set of
// [Change] values, so the merge, de-duplication, and reset rules are testable
// without any UI or network. [Controller] owns the state, issues remote
// mutations confirm-then-apply, and broadcasts results over the event bus;
// surfaces react to broadcasts only and never call each other.
package watchlist

import (
	"reelist/internal/models"
)

// State is the local view of the remote watchlist.
//
// Seeded reports whether a wholesale replace has happened for the current
// session; an unseeded state renders as empty but is distinguishable for
// surfaces that want a loading hint.
type State struct {
	Items  []models.WatchlistItem
	Seeded bool
}

type changeKind int

const (
	replaceChange changeKind = iota
	upsertChange
	deleteChange
	resetChange
)

// Change describes a single state transition input for [Apply].
type Change struct {
	kind  changeKind
	items []models.WatchlistItem
	item  models.WatchlistItem
	id    models.MovieID
}

// Replace builds the wholesale-replace change used when seeding.
func Replace(items []models.WatchlistItem) Change {
	return Change{kind: replaceChange, items: items}
}

// Upsert builds the merge change for a confirmed add: any existing entry with
// the same movie id is dropped and the canonical item is prepended.
func Upsert(item models.WatchlistItem) Change {
	return Change{kind: upsertChange, item: item}
}

// Delete builds the removal change for a confirmed remove.
func Delete(id models.MovieID) Change {
	return Change{kind: deleteChange, id: id}
}

// Reset builds the teardown change: state returns to empty and unseeded.
func Reset() Change {
	return Change{kind: resetChange}
}

// Apply is the pure reducer: current state plus one change yields the next
// state. The input state is never mutated.
func Apply(s State, ch Change) State {
	switch ch.kind {
	case replaceChange:
		items := make([]models.WatchlistItem, len(ch.items))
		copy(items, ch.items)
		return State{Items: items, Seeded: true}

	case upsertChange:
		items := make([]models.WatchlistItem, 0, len(s.Items)+1)
		items = append(items, ch.item)
		for _, it := range s.Items {
			if it.MovieID != ch.item.MovieID {
				items = append(items, it)
			}
		}
		return State{Items: items, Seeded: s.Seeded}

	case deleteChange:
		items := make([]models.WatchlistItem, 0, len(s.Items))
		for _, it := range s.Items {
			if it.MovieID != ch.id {
				items = append(items, it)
			}
		}
		return State{Items: items, Seeded: s.Seeded}

	case resetChange:
		return State{}

	default:
		return s
	}
}

// Contains reports whether the state holds an item with the given movie id.
func (s State) Contains(id models.MovieID) bool {
	for _, it := range s.Items {
		if it.MovieID == id {
			return true
		}
	}
	return false
}

// Count returns the number of items in the state.
func (s State) Count() int {
	return len(s.Items)
}
