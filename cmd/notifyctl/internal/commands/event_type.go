package commands

import (
	"context"
	"fmt"

	"github.com/wolfeidau/notifyroute/internal/models"
)

type EventTypeCmd struct {
	Create    EventTypeCreateCmd    `cmd:"" help:"Create an event type in an application"`
	Behaviors EventTypeBehaviorsCmd `cmd:"" help:"Set the behavior groups linked to an event type"`
	Groups    EventTypeGroupsCmd    `cmd:"" help:"List the behavior groups linked to an event type"`
}

type EventTypeCreateCmd struct {
	Application string `help:"application id" required:""`
	Name        string `arg:"" help:"event type name"`
	DisplayName string `help:"display name (defaults to the name)"`
}

func (e *EventTypeCreateCmd) Run(ctx context.Context, globals *Globals) error {
	appID, err := parseID("application_id", e.Application)
	if err != nil {
		return err
	}

	ctx, rt, err := globals.open(ctx)
	if err != nil {
		return err
	}
	defer rt.close()

	et := &models.EventType{
		ID:            newID(),
		ApplicationID: appID,
		Name:          e.Name,
		DisplayName:   orDefault(e.DisplayName, e.Name),
	}
	if err := rt.store.Catalog().CreateEventType(ctx, et); err != nil {
		return fmt.Errorf("failed to create event type: %w", err)
	}

	fmt.Fprintln(rt.out, et.ID)
	return nil
}

type EventTypeBehaviorsCmd struct {
	Scope  ScopeFlags `embed:""`
	ID     string     `arg:"" help:"event type id"`
	Groups []string   `arg:"" optional:"" help:"behavior group ids; none clears the links of the scope"`
}

func (e *EventTypeBehaviorsCmd) Run(ctx context.Context, globals *Globals) error {
	if err := e.Scope.Validate(); err != nil {
		return err
	}
	id, err := parseID("event_type_id", e.ID)
	if err != nil {
		return err
	}
	groupIDs, err := parseIDs("behavior_group_ids", e.Groups)
	if err != nil {
		return err
	}

	ctx, rt, err := globals.open(ctx)
	if err != nil {
		return err
	}
	defer rt.close()

	var applied int
	if e.Scope.Default {
		applied, err = rt.repo.UpdateDefaultEventTypeBehaviors(ctx, id, groupIDs)
	} else {
		applied, err = rt.repo.UpdateEventTypeBehaviors(ctx, e.Scope.Account, id, groupIDs)
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(rt.out, "Updated event type %s (%d link change(s))\n", id, applied)
	return nil
}

type EventTypeGroupsCmd struct {
	Account AccountFlags `embed:""`
	ID      string       `arg:"" help:"event type id"`
}

func (e *EventTypeGroupsCmd) Run(ctx context.Context, globals *Globals) error {
	id, err := parseID("event_type_id", e.ID)
	if err != nil {
		return err
	}

	ctx, rt, err := globals.open(ctx)
	if err != nil {
		return err
	}
	defer rt.close()

	groups, err := rt.repo.FindBehaviorGroupsByEventTypeID(ctx, e.Account.Account, id)
	if err != nil {
		return err
	}

	printBehaviorGroups(rt.out, groups)
	return nil
}
