// Package services implements the HTTP clients the application talks through.
//
// Three remote surfaces are consumed:
//
//  1. The watchlist backend (/api/users, /api/watchlist) via [WatchlistAPI]
//  2. The auth collaborator (/api/auth/*) via [AuthAPI]
//  3. The third-party movie metadata API via [MetadataAPI]
//
// All backend traffic flows through a single shared [Client], which owns the
// base URL, the default bearer token header, and the 401 interceptor that
// forces session teardown. Accessors are thin request/response mappings: no
// retries, no caching, errors propagate unchanged to the call site.
package services
