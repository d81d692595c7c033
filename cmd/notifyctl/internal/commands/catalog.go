package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/wolfeidau/notifyroute/internal/models"
)

type BundleCmd struct {
	Create BundleCreateCmd `cmd:"" help:"Create a bundle"`
}

type BundleCreateCmd struct {
	Name        string `arg:"" help:"unique bundle name"`
	DisplayName string `help:"display name (defaults to the name)"`
}

func (b *BundleCreateCmd) Run(ctx context.Context, globals *Globals) error {
	ctx, rt, err := globals.open(ctx)
	if err != nil {
		return err
	}
	defer rt.close()

	bundle := &models.Bundle{
		ID:          newID(),
		Name:        b.Name,
		DisplayName: orDefault(b.DisplayName, b.Name),
		Created:     time.Now().UTC(),
	}
	if err := rt.store.Catalog().CreateBundle(ctx, bundle); err != nil {
		return fmt.Errorf("failed to create bundle: %w", err)
	}

	fmt.Fprintln(rt.out, bundle.ID)
	return nil
}

type ApplicationCmd struct {
	Create ApplicationCreateCmd `cmd:"" help:"Create an application in a bundle"`
}

type ApplicationCreateCmd struct {
	Bundle      string `help:"bundle id" required:""`
	Name        string `arg:"" help:"application name"`
	DisplayName string `help:"display name (defaults to the name)"`
}

func (a *ApplicationCreateCmd) Run(ctx context.Context, globals *Globals) error {
	bundleID, err := parseID("bundle_id", a.Bundle)
	if err != nil {
		return err
	}

	ctx, rt, err := globals.open(ctx)
	if err != nil {
		return err
	}
	defer rt.close()

	app := &models.Application{
		ID:          newID(),
		BundleID:    bundleID,
		Name:        a.Name,
		DisplayName: orDefault(a.DisplayName, a.Name),
		Created:     time.Now().UTC(),
	}
	if err := rt.store.Catalog().CreateApplication(ctx, app); err != nil {
		return fmt.Errorf("failed to create application: %w", err)
	}

	fmt.Fprintln(rt.out, app.ID)
	return nil
}

type EndpointCmd struct {
	Create EndpointCreateCmd `cmd:"" help:"Create an endpoint"`
	Delete EndpointDeleteCmd `cmd:"" help:"Delete an endpoint and its behavior group actions"`
	Groups EndpointGroupsCmd `cmd:"" help:"List the behavior groups that deliver to an endpoint"`
}

type EndpointCreateCmd struct {
	Scope    ScopeFlags `embed:""`
	Type     string     `help:"endpoint type" default:"webhook" enum:"webhook,email_subscription,camel"`
	Name     string     `arg:"" help:"endpoint name"`
	Disabled bool       `help:"create the endpoint disabled"`
}

func (e *EndpointCreateCmd) Run(ctx context.Context, globals *Globals) error {
	if err := e.Scope.Validate(); err != nil {
		return err
	}

	ctx, rt, err := globals.open(ctx)
	if err != nil {
		return err
	}
	defer rt.close()

	ep := &models.Endpoint{
		ID:        newID(),
		AccountID: e.Scope.scope().AccountIDPtr(),
		Type:      models.EndpointType(e.Type),
		Name:      e.Name,
		Enabled:   !e.Disabled,
		Created:   time.Now().UTC(),
	}
	if err := rt.store.Catalog().CreateEndpoint(ctx, ep); err != nil {
		return fmt.Errorf("failed to create endpoint: %w", err)
	}

	fmt.Fprintln(rt.out, ep.ID)
	return nil
}

type EndpointDeleteCmd struct {
	ID string `arg:"" help:"endpoint id"`
}

func (e *EndpointDeleteCmd) Run(ctx context.Context, globals *Globals) error {
	id, err := parseID("endpoint_id", e.ID)
	if err != nil {
		return err
	}

	ctx, rt, err := globals.open(ctx)
	if err != nil {
		return err
	}
	defer rt.close()

	if err := rt.store.Catalog().DeleteEndpoint(ctx, id); err != nil {
		return fmt.Errorf("failed to delete endpoint: %w", err)
	}

	fmt.Fprintf(rt.out, "Deleted endpoint %s\n", id)
	return nil
}

type EndpointGroupsCmd struct {
	Account AccountFlags `embed:""`
	ID      string       `arg:"" help:"endpoint id"`
}

func (e *EndpointGroupsCmd) Run(ctx context.Context, globals *Globals) error {
	id, err := parseID("endpoint_id", e.ID)
	if err != nil {
		return err
	}

	ctx, rt, err := globals.open(ctx)
	if err != nil {
		return err
	}
	defer rt.close()

	groups, err := rt.repo.FindBehaviorGroupsByEndpointID(ctx, e.Account.Account, id)
	if err != nil {
		return err
	}

	printBehaviorGroups(rt.out, groups)
	return nil
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
