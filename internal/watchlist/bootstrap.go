package watchlist

import (
	"context"

	"github.com/charmbracelet/log"

	"reelist/internal/models"
	"reelist/internal/session"
)

// Bootstrap restores a persisted session on startup.
//
// If a token survives from a previous run the HTTP client is armed with it
// before any request goes out. The watchlist is seeded only when both a user
// and a token are present; a user without a token still yields the cached
// identity but no fetch, since the fetch would only 401 and wipe it. A failed
// seed is tolerated: the cached user is returned and surfaces render an empty
// list until the next successful fetch.
func Bootstrap(ctx context.Context, mgr *session.Manager, client session.TokenSetter, ctrl *Controller, logger *log.Logger) *models.User {
	token, hasToken := mgr.Token()
	if hasToken && client != nil {
		client.SetAuthToken(token)
	}

	user, hasUser := mgr.Current()
	if !hasUser {
		return nil
	}

	if hasToken {
		if err := ctrl.Seed(ctx); err != nil && logger != nil {
			logger.Warnf("failed to restore watchlist: %v", err)
		}
	}

	return user
}
