package behaviorgroup

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/wolfeidau/notifyroute/internal/models"
	"github.com/wolfeidau/notifyroute/internal/store"
	"github.com/wolfeidau/notifyroute/internal/store/memory"
)

const defaultAccountID = "default-account-id"

// tickingClock returns a clock that advances one second per call.
func tickingClock() func() time.Time {
	var mu sync.Mutex
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		now = now.Add(time.Second)
		return now
	}
}

type fixture struct {
	t     *testing.T
	ctx   context.Context
	store *memory.Store
	repo  *Repository
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()
	st := memory.NewStore()
	opts = append([]Option{WithClock(tickingClock())}, opts...)
	return &fixture{
		t:     t,
		ctx:   context.Background(),
		store: st,
		repo:  New(st, opts...),
	}
}

func (f *fixture) createBundle(name string) *models.Bundle {
	f.t.Helper()
	b := &models.Bundle{
		ID:          uuid.Must(uuid.NewV7()),
		Name:        name,
		DisplayName: name,
		Created:     time.Now().UTC(),
	}
	require.NoError(f.t, f.store.Catalog().CreateBundle(f.ctx, b))
	return b
}

func (f *fixture) createApplication(bundleID uuid.UUID) *models.Application {
	f.t.Helper()
	app := &models.Application{
		ID:          uuid.Must(uuid.NewV7()),
		BundleID:    bundleID,
		Name:        "app",
		DisplayName: "Application",
		Created:     time.Now().UTC(),
	}
	require.NoError(f.t, f.store.Catalog().CreateApplication(f.ctx, app))
	return app
}

func (f *fixture) createEventType(appID uuid.UUID, name string) *models.EventType {
	f.t.Helper()
	et := &models.EventType{
		ID:            uuid.Must(uuid.NewV7()),
		ApplicationID: appID,
		Name:          name,
		DisplayName:   name,
	}
	require.NoError(f.t, f.store.Catalog().CreateEventType(f.ctx, et))
	return et
}

func (f *fixture) createEndpoint(accountID *string, typ models.EndpointType) *models.Endpoint {
	f.t.Helper()
	ep := &models.Endpoint{
		ID:        uuid.Must(uuid.NewV7()),
		AccountID: accountID,
		Type:      typ,
		Name:      string(typ),
		Enabled:   true,
		Created:   time.Now().UTC(),
	}
	require.NoError(f.t, f.store.Catalog().CreateEndpoint(f.ctx, ep))
	return ep
}

func (f *fixture) createGroup(accountID, displayName string, bundleID uuid.UUID) *models.BehaviorGroup {
	f.t.Helper()
	g, err := f.repo.Create(f.ctx, accountID, &models.BehaviorGroup{DisplayName: displayName, BundleID: bundleID})
	require.NoError(f.t, err)
	return g
}

func (f *fixture) createDefaultGroup(displayName string, bundleID uuid.UUID) *models.BehaviorGroup {
	f.t.Helper()
	g, err := f.repo.CreateDefault(f.ctx, &models.BehaviorGroup{DisplayName: displayName, BundleID: bundleID})
	require.NoError(f.t, err)
	return g
}

func (f *fixture) eventTypeBehaviors(eventTypeID uuid.UUID, scope models.Scope) []models.EventTypeBehavior {
	f.t.Helper()
	var rows []models.EventTypeBehavior
	err := f.store.View(f.ctx, func(tx store.Tx) error {
		var err error
		rows, err = tx.ListEventTypeBehaviors(f.ctx, eventTypeID, scope)
		return err
	})
	require.NoError(f.t, err)
	return rows
}

func (f *fixture) actions(behaviorGroupID uuid.UUID) []models.BehaviorGroupAction {
	f.t.Helper()
	var rows []models.BehaviorGroupAction
	err := f.store.View(f.ctx, func(tx store.Tx) error {
		var err error
		rows, err = tx.ListBehaviorGroupActions(f.ctx, behaviorGroupID)
		return err
	})
	require.NoError(f.t, err)
	return rows
}

// updateAndCheckEventTypeBehaviors links ids and checks the event type ends up
// with exactly those behaviors, in any order.
func (f *fixture) updateAndCheckEventTypeBehaviors(accountID string, eventTypeID uuid.UUID, ids ...uuid.UUID) {
	f.t.Helper()
	_, err := f.repo.UpdateEventTypeBehaviors(f.ctx, accountID, eventTypeID, ids)
	require.NoError(f.t, err)

	rows := f.eventTypeBehaviors(eventTypeID, models.TenantScope(accountID))
	got := make([]uuid.UUID, 0, len(rows))
	for _, r := range rows {
		got = append(got, r.BehaviorGroupID)
	}
	require.ElementsMatch(f.t, ids, got)
}

// updateAndCheckBehaviorGroupActions sets the actions of a group and checks
// FindByBundleID returns them in exactly that order.
func (f *fixture) updateAndCheckBehaviorGroupActions(accountID string, bundleID, behaviorGroupID uuid.UUID, endpointIDs ...uuid.UUID) {
	f.t.Helper()
	_, err := f.repo.UpdateBehaviorGroupActions(f.ctx, accountID, behaviorGroupID, endpointIDs)
	require.NoError(f.t, err)

	groups, err := f.repo.FindByBundleID(f.ctx, accountID, bundleID)
	require.NoError(f.t, err)

	var found *models.BehaviorGroup
	for _, g := range groups {
		if g.ID == behaviorGroupID {
			found = g
		}
	}
	require.NotNil(f.t, found)
	require.Len(f.t, found.Actions, len(endpointIDs))
	for i, id := range endpointIDs {
		require.Equal(f.t, id, found.Actions[i].EndpointID)
		require.Equal(f.t, i, found.Actions[i].Position)
	}
}

func (f *fixture) checkBehaviorGroupsByEndpoint(accountID string, endpointID uuid.UUID, expected ...uuid.UUID) {
	f.t.Helper()
	groups, err := f.repo.FindBehaviorGroupsByEndpointID(f.ctx, accountID, endpointID)
	require.NoError(f.t, err)
	got := make([]uuid.UUID, 0, len(groups))
	for _, g := range groups {
		got = append(got, g.ID)
	}
	require.ElementsMatch(f.t, expected, got)
}

func ptr(s string) *string { return &s }
