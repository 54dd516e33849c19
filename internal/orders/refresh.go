// Package orders keeps the local entitlement cache reconciled with the
// remote order ledger while the user is logged in.
package orders

import (
	"context"
	"sync"
	"time"

	"github.com/studyshelf/studyshelf/internal/entitlement"
	"github.com/studyshelf/studyshelf/internal/logger"
	"github.com/studyshelf/studyshelf/internal/model"
	"github.com/studyshelf/studyshelf/internal/session"
)

// Lister fetches the user's order ledger.
type Lister interface {
	Orders(ctx context.Context, token string) ([]model.Order, error)
}

// Refresher polls the order ledger in the background and merges
// completed orders into the entitlement cache. Fetch failures are
// silent; the next poll retries.
type Refresher struct {
	client Lister
	sess   *session.Store
	ents   *entitlement.Cache

	debounceTime time.Duration
	pollInterval time.Duration

	mu      sync.Mutex
	pending bool
	stopCh  chan struct{}
	updates chan struct{}
}

// NewRefresher creates a refresher and starts its poll loop.
func NewRefresher(client Lister, sess *session.Store, ents *entitlement.Cache) *Refresher {
	r := &Refresher{
		client:       client,
		sess:         sess,
		ents:         ents,
		debounceTime: 3 * time.Second,
		pollInterval: 60 * time.Second,
		stopCh:       make(chan struct{}),
		updates:      make(chan struct{}, 1),
	}

	go r.pollLoop()

	return r
}

// Updates signals whenever new entitlements arrived from the ledger.
func (r *Refresher) Updates() <-chan struct{} {
	return r.updates
}

func (r *Refresher) pollLoop() {
	ticker := time.NewTicker(r.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if r.sess.IsAuthenticated() {
				r.refresh()
			}
		case <-r.stopCh:
			return
		}
	}
}

// Trigger schedules a debounced refresh, e.g. right after a purchase.
func (r *Refresher) Trigger() {
	if !r.sess.IsAuthenticated() {
		return
	}

	r.mu.Lock()
	if !r.pending {
		r.pending = true
		go r.debouncedRefresh()
	}
	r.mu.Unlock()
}

func (r *Refresher) debouncedRefresh() {
	timer := time.NewTimer(r.debounceTime)
	defer timer.Stop()

	select {
	case <-timer.C:
		r.mu.Lock()
		r.pending = false
		r.mu.Unlock()
		r.refresh()
	case <-r.stopCh:
	}
}

func (r *Refresher) refresh() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := r.RefreshNow(ctx); err != nil {
		logger.Debug("Order refresh failed", logger.F("error", err))
	}
}

// RefreshNow fetches the ledger once and merges it.
func (r *Refresher) RefreshNow(ctx context.Context) error {
	token := r.sess.Token()
	if token == "" {
		return nil
	}

	list, err := r.client.Orders(ctx, token)
	if err != nil {
		return err
	}

	added, err := r.ents.MergeOrders(list)
	if err != nil {
		return err
	}

	if added > 0 {
		select {
		case r.updates <- struct{}{}:
		default:
		}
	}
	return nil
}

// IsPending reports whether a debounced refresh is scheduled.
func (r *Refresher) IsPending() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pending
}

// Stop stops the poll loop.
func (r *Refresher) Stop() {
	close(r.stopCh)
}
