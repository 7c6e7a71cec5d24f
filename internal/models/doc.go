// Package models defines domain entities and persistence interfaces for the reelist watchlist client.
//
// The package contains two categories of types:
//
// 1. Data Transfer Objects (DTOs): Lightweight structs representing remote service data
//   - [User] : Account identity returned by the auth backend
//   - [Movie] : Browsable movie metadata from the third-party metadata API
//   - [WatchlistItem] : A saved movie reference, keyed by [MovieID]
//
// 2. Persistent Entities: Database-backed models with full lifecycle management
//   - [CachedItem] : Local snapshot of a remote watchlist entry
//
// Movie ids originate either as JSON numbers (metadata API) or strings
// (persisted state); [MovieID] normalizes both to a string so membership
// comparisons are uniform everywhere.
package models
