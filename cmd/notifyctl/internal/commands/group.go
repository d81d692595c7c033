package commands

import (
	"context"
	"fmt"

	"github.com/wolfeidau/notifyroute/internal/models"
)

type GroupCmd struct {
	Create     GroupCreateCmd     `cmd:"" help:"Create a behavior group"`
	Update     GroupUpdateCmd     `cmd:"" help:"Rename a behavior group"`
	Delete     GroupDeleteCmd     `cmd:"" help:"Delete a behavior group and its links"`
	List       GroupListCmd       `cmd:"" help:"List behavior groups of a bundle, newest first"`
	Actions    GroupActionsCmd    `cmd:"" help:"Set the ordered endpoints of a behavior group"`
	EventTypes GroupEventTypesCmd `cmd:"" help:"List the event types linked to a behavior group"`
}

type GroupCreateCmd struct {
	Scope       ScopeFlags `embed:""`
	Bundle      string     `help:"bundle id" required:""`
	DisplayName string     `arg:"" help:"display name"`
}

func (g *GroupCreateCmd) Run(ctx context.Context, globals *Globals) error {
	if err := g.Scope.Validate(); err != nil {
		return err
	}
	bundleID, err := parseID("bundle_id", g.Bundle)
	if err != nil {
		return err
	}

	ctx, rt, err := globals.open(ctx)
	if err != nil {
		return err
	}
	defer rt.close()

	req := &models.BehaviorGroup{DisplayName: g.DisplayName, BundleID: bundleID}

	var created *models.BehaviorGroup
	if g.Scope.Default {
		created, err = rt.repo.CreateDefault(ctx, req)
	} else {
		created, err = rt.repo.Create(ctx, g.Scope.Account, req)
	}
	if err != nil {
		return err
	}

	fmt.Fprintln(rt.out, created.ID)
	return nil
}

type GroupUpdateCmd struct {
	Scope       ScopeFlags `embed:""`
	ID          string     `arg:"" help:"behavior group id"`
	DisplayName string     `arg:"" help:"new display name"`
}

func (g *GroupUpdateCmd) Run(ctx context.Context, globals *Globals) error {
	if err := g.Scope.Validate(); err != nil {
		return err
	}
	id, err := parseID("behavior_group_id", g.ID)
	if err != nil {
		return err
	}

	ctx, rt, err := globals.open(ctx)
	if err != nil {
		return err
	}
	defer rt.close()

	req := &models.BehaviorGroup{ID: id, DisplayName: g.DisplayName}
	if g.Scope.Default {
		err = rt.repo.UpdateDefault(ctx, req)
	} else {
		err = rt.repo.Update(ctx, g.Scope.Account, req)
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(rt.out, "Updated behavior group %s\n", id)
	return nil
}

type GroupDeleteCmd struct {
	Scope ScopeFlags `embed:""`
	ID    string     `arg:"" help:"behavior group id"`
}

func (g *GroupDeleteCmd) Run(ctx context.Context, globals *Globals) error {
	if err := g.Scope.Validate(); err != nil {
		return err
	}
	id, err := parseID("behavior_group_id", g.ID)
	if err != nil {
		return err
	}

	ctx, rt, err := globals.open(ctx)
	if err != nil {
		return err
	}
	defer rt.close()

	var deleted bool
	if g.Scope.Default {
		deleted, err = rt.repo.DeleteDefault(ctx, id)
	} else {
		deleted, err = rt.repo.Delete(ctx, g.Scope.Account, id)
	}
	if err != nil {
		return err
	}

	if !deleted {
		fmt.Fprintf(rt.out, "Behavior group %s not found\n", id)
		return nil
	}
	fmt.Fprintf(rt.out, "Deleted behavior group %s\n", id)
	return nil
}

type GroupListCmd struct {
	Scope  ScopeFlags `embed:""`
	Bundle string     `help:"bundle id" required:""`
}

func (g *GroupListCmd) Run(ctx context.Context, globals *Globals) error {
	if err := g.Scope.Validate(); err != nil {
		return err
	}
	bundleID, err := parseID("bundle_id", g.Bundle)
	if err != nil {
		return err
	}

	ctx, rt, err := globals.open(ctx)
	if err != nil {
		return err
	}
	defer rt.close()

	var groups []*models.BehaviorGroup
	if g.Scope.Default {
		groups, err = rt.repo.FindDefaultsByBundleID(ctx, bundleID)
	} else {
		groups, err = rt.repo.FindByBundleID(ctx, g.Scope.Account, bundleID)
	}
	if err != nil {
		return err
	}

	printBehaviorGroups(rt.out, groups)
	return nil
}

type GroupActionsCmd struct {
	Scope     ScopeFlags `embed:""`
	ID        string     `arg:"" help:"behavior group id"`
	Endpoints []string   `arg:"" optional:"" help:"endpoint ids in delivery order; none clears the actions"`
}

func (g *GroupActionsCmd) Run(ctx context.Context, globals *Globals) error {
	if err := g.Scope.Validate(); err != nil {
		return err
	}
	id, err := parseID("behavior_group_id", g.ID)
	if err != nil {
		return err
	}
	endpointIDs, err := parseIDs("endpoint_ids", g.Endpoints)
	if err != nil {
		return err
	}

	ctx, rt, err := globals.open(ctx)
	if err != nil {
		return err
	}
	defer rt.close()

	var applied int
	if g.Scope.Default {
		applied, err = rt.repo.UpdateDefaultBehaviorGroupActions(ctx, id, endpointIDs)
	} else {
		applied, err = rt.repo.UpdateBehaviorGroupActions(ctx, g.Scope.Account, id, endpointIDs)
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(rt.out, "Updated behavior group %s (%d action change(s))\n", id, applied)
	return nil
}

type GroupEventTypesCmd struct {
	Account AccountFlags `embed:""`
	ID      string       `arg:"" help:"behavior group id"`
}

func (g *GroupEventTypesCmd) Run(ctx context.Context, globals *Globals) error {
	id, err := parseID("behavior_group_id", g.ID)
	if err != nil {
		return err
	}

	ctx, rt, err := globals.open(ctx)
	if err != nil {
		return err
	}
	defer rt.close()

	eventTypes, err := rt.repo.FindEventTypesByBehaviorGroupID(ctx, g.Account.Account, id)
	if err != nil {
		return err
	}

	printEventTypes(rt.out, eventTypes)
	return nil
}
