// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI provides a multi-view workflow for browsing movies and managing the watchlist:
//  1. [BrowseView] : Browse trending movies and toggle saves
//  2. [WatchlistView] : Review saved movies, select and remove entries
//  3. [ConfirmRemoveView] : Confirm bulk removal
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern.
// Session and watchlist broadcasts are bridged onto the message loop through a
// buffered channel, so the header badge and saved markers react to mutations
// made anywhere in the application without re-fetching.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, space, d, tab, q)
// with contextual help displayed via charmbracelet/bubbles/help.
package ui
