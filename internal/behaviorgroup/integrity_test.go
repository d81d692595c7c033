package behaviorgroup

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/wolfeidau/notifyroute/internal/models"
	"github.com/wolfeidau/notifyroute/internal/store"
)

func TestCheckBehaviorGroupsBelongToEventTypeBundle(t *testing.T) {
	bundle := uuid.New()
	other := uuid.New()
	eventType := &models.EventType{ID: uuid.New(), BundleID: bundle}

	ok := &models.BehaviorGroup{ID: uuid.New(), BundleID: bundle}
	bad1 := &models.BehaviorGroup{ID: uuid.New(), BundleID: other}
	bad2 := &models.BehaviorGroup{ID: uuid.New(), BundleID: other}

	t.Run("all in bundle", func(t *testing.T) {
		require.NoError(t, checkBehaviorGroupsBelongToEventTypeBundle(eventType, []*models.BehaviorGroup{ok}))
	})

	t.Run("empty set", func(t *testing.T) {
		require.NoError(t, checkBehaviorGroupsBelongToEventTypeBundle(eventType, nil))
	})

	t.Run("reports every offender", func(t *testing.T) {
		err := checkBehaviorGroupsBelongToEventTypeBundle(eventType, []*models.BehaviorGroup{bad2, ok, bad1})
		require.ErrorIs(t, err, store.ErrIntegrityViolation)

		var violation *store.IntegrityViolationError
		require.ErrorAs(t, err, &violation)
		require.Equal(t, eventType.ID, violation.EventTypeID)
		require.ElementsMatch(t, []uuid.UUID{bad1.ID, bad2.ID}, violation.BehaviorGroupIDs)
	})
}

func TestDedupe(t *testing.T) {
	a, b, c := uuid.New(), uuid.New(), uuid.New()
	require.Equal(t, []uuid.UUID{a, b, c}, dedupe([]uuid.UUID{a, b, a, c, b}))
	require.Empty(t, dedupe(nil))
}
