package main

import (
	"context"
	"os"

	"github.com/alecthomas/kong"
	"github.com/wolfeidau/notifyroute/cmd/notifyctl/internal/commands"
)

var (
	version = "dev"
	cli     struct {
		Debug     bool   `help:"Enable debug mode."`
		Config    string `help:"Path to the YAML config file." type:"path" env:"NOTIFYROUTE_CONFIG"`
		Telemetry bool   `help:"Export metrics and traces over OTLP." env:"NOTIFYROUTE_TELEMETRY"`
		Version   kong.VersionFlag

		StoreType     string                      `help:"store type (memory or postgres)" default:"postgres" env:"NOTIFYROUTE_STORE_TYPE" enum:"memory,postgres"`
		PostgresStore commands.PostgresStoreFlags `embed:"" prefix:"postgres-"`
		Features      commands.FeatureFlags       `embed:""`

		Migrate     commands.MigrateCmd     `cmd:"" help:"Apply pending database migrations"`
		Bundle      commands.BundleCmd      `cmd:"" help:"Manage bundles"`
		Application commands.ApplicationCmd `cmd:"" help:"Manage applications"`
		EventType   commands.EventTypeCmd   `cmd:"" help:"Manage event types and their behaviors"`
		Endpoint    commands.EndpointCmd    `cmd:"" help:"Manage endpoints"`
		Group       commands.GroupCmd       `cmd:"" help:"Manage behavior groups and their actions"`
	}
)

func main() {
	ctx := context.Background()
	cmd := kong.Parse(&cli,
		kong.Name("notifyctl"),
		kong.Description("Administer notification behavior groups."),
		kong.Vars{
			"version": version,
		},
		kong.BindTo(ctx, (*context.Context)(nil)))
	err := cmd.Run(&commands.Globals{
		Debug:         cli.Debug,
		Version:       version,
		ConfigPath:    cli.Config,
		Telemetry:     cli.Telemetry,
		StoreType:     cli.StoreType,
		PostgresStore: cli.PostgresStore,
		Features:      cli.Features,
		Out:           os.Stdout,
	})
	cmd.FatalIfErrorf(err)
}
