package watchlist

import (
	"context"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"

	"reelist/internal/events"
	"reelist/internal/models"
	"reelist/internal/services"
	"reelist/internal/session"
	"reelist/internal/shared"
)

// Controller owns watchlist view state for one session at a time.
//
// Mutations are confirm-then-apply: the remote call is issued first, and only
// a successful response is merged into local state, so a failure never needs
// a rollback. Every applied mutation is broadcast so other surfaces can
// update their derived views without re-fetching.
//
// Each session carries an epoch marker; responses that arrive after teardown
// compare against the current epoch and are discarded (the late-completion
// guard). Requests are never cancelled.
type Controller struct {
	api     *services.WatchlistAPI
	session *session.Manager
	bus     *events.Bus
	logger  *log.Logger

	mu    sync.Mutex
	state State
	epoch string

	unsubscribe func()
}

// BulkRemoveResult reports a bulk removal's per-id outcomes. Removals are
// independent; a partial failure leaves some ids removed and others retained.
type BulkRemoveResult struct {
	Removed []models.MovieID         // Ids confirmed deleted by the server
	Failed  map[models.MovieID]error // Ids whose delete failed, with cause
}

// NewController wires a Controller and subscribes it to session broadcasts:
// login seeds state for the new session, logout and session expiry reset it.
func NewController(api *services.WatchlistAPI, mgr *session.Manager, bus *events.Bus, logger *log.Logger) *Controller {
	c := &Controller{
		api:     api,
		session: mgr,
		bus:     bus,
		logger:  logger,
		epoch:   shared.GenerateID(),
	}

	if bus != nil {
		c.unsubscribe = bus.Subscribe(func(ev events.Event) {
			switch ev.Kind {
			case events.Login:
				c.reset()
				if err := c.Seed(context.Background()); err != nil {
					c.warnf("seed after login failed: %v", err)
				}
			case events.Logout, events.SessionExpired:
				c.reset()
			}
		})
	}

	return c
}

// Close detaches the controller from the event bus.
func (c *Controller) Close() {
	if c.unsubscribe != nil {
		c.unsubscribe()
		c.unsubscribe = nil
	}
}

// Seed fetches the full remote list and replaces local state wholesale.
//
// On failure state remains whatever it was; the caller treats the error as
// non-fatal (the empty or previous list is tolerated).
func (c *Controller) Seed(ctx context.Context) error {
	epoch := c.currentEpoch()

	items, err := c.api.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch watchlist: %w", err)
	}

	c.applyIfCurrent(epoch, Replace(items))
	return nil
}

// Add saves a movie to the watchlist, confirm-then-apply.
//
// On success the server's canonical item replaces any stale entry with the
// same movie id and an added broadcast goes out. On failure state is left
// unchanged and the error propagates for the call site to surface.
func (c *Controller) Add(ctx context.Context, item models.WatchlistItem) (*models.WatchlistItem, error) {
	if _, ok := c.session.Current(); !ok {
		return nil, shared.ErrNotAuthenticated
	}

	epoch := c.currentEpoch()

	saved, err := c.api.Add(ctx, item)
	if err != nil {
		return nil, err
	}

	if c.applyIfCurrent(epoch, Upsert(*saved)) {
		c.bus.Publish(events.AddedEvent(*saved))
	}
	return saved, nil
}

// Remove deletes a single watchlist entry, confirm-then-apply.
func (c *Controller) Remove(ctx context.Context, id models.MovieID) error {
	epoch := c.currentEpoch()

	if _, err := c.api.Remove(ctx, id); err != nil {
		return err
	}

	if c.applyIfCurrent(epoch, Delete(id)) {
		c.bus.Publish(events.RemovedEvent(id))
	}
	return nil
}

// RemoveBulk deletes the given ids one by one. Each removal is an independent
// request: successes are applied and broadcast per id, failures leave their
// entries in place. There is no all-or-nothing transaction.
func (c *Controller) RemoveBulk(ctx context.Context, ids []models.MovieID) BulkRemoveResult {
	result := BulkRemoveResult{Failed: make(map[models.MovieID]error)}

	for _, id := range ids {
		if err := c.Remove(ctx, id); err != nil {
			result.Failed[id] = err
			continue
		}
		result.Removed = append(result.Removed, id)
	}

	return result
}

// Teardown unconditionally resets state to empty and rotates the session
// epoch, so any in-flight responses from the old session are discarded when
// they eventually arrive.
func (c *Controller) Teardown() {
	c.reset()
}

// Items returns a copy of the current item list.
func (c *Controller) Items() []models.WatchlistItem {
	c.mu.Lock()
	defer c.mu.Unlock()
	items := make([]models.WatchlistItem, len(c.state.Items))
	copy(items, c.state.Items)
	return items
}

// Count returns the current item count (the header badge value).
func (c *Controller) Count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Count()
}

// IsSaved reports whether a movie id is currently in the watchlist (the grid marker).
func (c *Controller) IsSaved(id models.MovieID) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Contains(id)
}

// Seeded reports whether the current session's list has been fetched.
func (c *Controller) Seeded() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Seeded
}

func (c *Controller) currentEpoch() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.epoch
}

// applyIfCurrent merges a change only when the session epoch captured before
// the request still matches, and reports whether it applied.
func (c *Controller) applyIfCurrent(epoch string, ch Change) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.epoch != epoch {
		return false
	}
	c.state = Apply(c.state, ch)
	return true
}

func (c *Controller) reset() {
	c.mu.Lock()
	c.state = Apply(c.state, Reset())
	c.epoch = shared.GenerateID()
	c.mu.Unlock()
}

func (c *Controller) warnf(format string, args ...any) {
	if c.logger != nil {
		c.logger.Warnf(format, args...)
	}
}
