package orders

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studyshelf/studyshelf/internal/api"
	"github.com/studyshelf/studyshelf/internal/db"
	"github.com/studyshelf/studyshelf/internal/entitlement"
	"github.com/studyshelf/studyshelf/internal/model"
	"github.com/studyshelf/studyshelf/internal/session"
)

type fakeAuth struct{}

func (fakeAuth) Login(ctx context.Context, identifier, password string) (*api.AuthData, error) {
	return &api.AuthData{Token: "tok-1", User: model.UserProfile{ID: "u-1", Phone: "9876543210"}}, nil
}

func (fakeAuth) Me(ctx context.Context, token string) (*model.UserProfile, error) {
	return nil, errors.New("not scripted")
}

func (fakeAuth) UpdateProfile(ctx context.Context, token string, profile model.UserProfile) (*model.UserProfile, error) {
	return &profile, nil
}

type fakeLister struct {
	orders []model.Order
	err    error
	calls  int
}

func (f *fakeLister) Orders(ctx context.Context, token string) ([]model.Order, error) {
	f.calls++
	return f.orders, f.err
}

func newTestRefresher(t *testing.T, lister *fakeLister, loggedIn bool) (*Refresher, *entitlement.Cache) {
	t.Helper()

	database, err := db.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })

	ents, err := entitlement.NewCache(database)
	require.NoError(t, err)

	sess := session.NewStore(fakeAuth{}, filepath.Join(t.TempDir(), "session.json"))
	if loggedIn {
		res := sess.Login(context.Background(), "9876543210", "secret")
		require.True(t, res.Success)
	}

	r := NewRefresher(lister, sess, ents)
	t.Cleanup(r.Stop)
	return r, ents
}

func TestRefreshNowMergesLedger(t *testing.T) {
	lister := &fakeLister{orders: []model.Order{{
		ID: "o-1", OrderType: "digital",
		Items:         []model.OrderItem{{ID: "pdf-1", Name: "Notes", Price: 199}},
		ClassID:       "class10",
		PaymentStatus: "completed", OrderStatus: "completed",
	}}}
	r, ents := newTestRefresher(t, lister, true)

	require.NoError(t, r.RefreshNow(context.Background()))
	assert.True(t, ents.IsItemPurchased("pdf-1"))

	select {
	case <-r.Updates():
	default:
		t.Fatal("expected an update signal after new entitlements")
	}
}

func TestRefreshNowWithoutTokenIsNoop(t *testing.T) {
	lister := &fakeLister{}
	r, _ := newTestRefresher(t, lister, false)

	require.NoError(t, r.RefreshNow(context.Background()))
	assert.Equal(t, 0, lister.calls)
}

func TestRefreshNowNoSignalWithoutChanges(t *testing.T) {
	lister := &fakeLister{orders: []model.Order{{
		ID: "o-1", OrderType: "digital",
		Items:         []model.OrderItem{{ID: "pdf-1", Price: 199}},
		PaymentStatus: "completed", OrderStatus: "completed",
	}}}
	r, _ := newTestRefresher(t, lister, true)

	require.NoError(t, r.RefreshNow(context.Background()))
	<-r.Updates()

	// Second pass adds nothing and must not signal
	require.NoError(t, r.RefreshNow(context.Background()))
	select {
	case <-r.Updates():
		t.Fatal("unexpected update signal")
	default:
	}
}

func TestRefreshNowSurfacesFetchError(t *testing.T) {
	lister := &fakeLister{err: errors.New("dial tcp: connection refused")}
	r, _ := newTestRefresher(t, lister, true)

	assert.Error(t, r.RefreshNow(context.Background()))
}

func TestTriggerRequiresLogin(t *testing.T) {
	lister := &fakeLister{}
	r, _ := newTestRefresher(t, lister, false)

	r.Trigger()
	assert.False(t, r.IsPending())
}

func TestTriggerDebounces(t *testing.T) {
	lister := &fakeLister{}
	r, _ := newTestRefresher(t, lister, true)
	r.debounceTime = 50 * time.Millisecond

	r.Trigger()
	r.Trigger()
	assert.True(t, r.IsPending())
}
