package behaviorgroup

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/wolfeidau/notifyroute/internal/models"
	"github.com/wolfeidau/notifyroute/internal/reconcile"
	"github.com/wolfeidau/notifyroute/internal/store"
)

var errUnorderedMove = errors.New("event type behaviors have no position")

var (
	_ reconcile.Links[uuid.UUID] = (*eventTypeLinks)(nil)
	_ reconcile.Links[uuid.UUID] = (*actionLinks)(nil)
)

// eventTypeLinks writes the behaviors of one event type.
type eventTypeLinks struct {
	tx          store.Tx
	eventTypeID uuid.UUID
	now         time.Time
}

func (l *eventTypeLinks) Delete(ctx context.Context, behaviorGroupID uuid.UUID) error {
	return l.tx.DeleteEventTypeBehavior(ctx, l.eventTypeID, behaviorGroupID)
}

func (l *eventTypeLinks) Insert(ctx context.Context, behaviorGroupID uuid.UUID, _ int) error {
	return l.tx.InsertEventTypeBehavior(ctx, models.EventTypeBehavior{
		EventTypeID:     l.eventTypeID,
		BehaviorGroupID: behaviorGroupID,
		Created:         l.now,
	})
}

func (l *eventTypeLinks) Move(context.Context, uuid.UUID, int) error {
	return errUnorderedMove
}

// actionLinks writes the ordered action list of one behavior group.
type actionLinks struct {
	tx              store.Tx
	behaviorGroupID uuid.UUID
	now             time.Time
}

func (l *actionLinks) Delete(ctx context.Context, endpointID uuid.UUID) error {
	return l.tx.DeleteBehaviorGroupAction(ctx, l.behaviorGroupID, endpointID)
}

func (l *actionLinks) Insert(ctx context.Context, endpointID uuid.UUID, position int) error {
	return l.tx.InsertBehaviorGroupAction(ctx, models.BehaviorGroupAction{
		BehaviorGroupID: l.behaviorGroupID,
		EndpointID:      endpointID,
		Position:        position,
		Created:         l.now,
	})
}

func (l *actionLinks) Move(ctx context.Context, endpointID uuid.UUID, position int) error {
	return l.tx.MoveBehaviorGroupAction(ctx, l.behaviorGroupID, endpointID, position)
}

func behaviorTargets(rows []models.EventTypeBehavior) []uuid.UUID {
	out := make([]uuid.UUID, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.BehaviorGroupID)
	}
	return out
}

func actionEntries(rows []models.BehaviorGroupAction) []reconcile.Entry[uuid.UUID] {
	out := make([]reconcile.Entry[uuid.UUID], 0, len(rows))
	for _, r := range rows {
		out = append(out, reconcile.Entry[uuid.UUID]{Target: r.EndpointID, Position: r.Position})
	}
	return out
}
