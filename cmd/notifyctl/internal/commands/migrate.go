package commands

import (
	"context"
	"errors"
	"fmt"

	postgresstore "github.com/wolfeidau/notifyroute/internal/store/postgres"
)

type MigrateCmd struct{}

func (m *MigrateCmd) Run(ctx context.Context, globals *Globals) error {
	// Migrations run explicitly below, not as part of opening the store.
	globals.PostgresStore.AutoMigrate = false

	ctx, rt, err := globals.open(ctx)
	if err != nil {
		return err
	}
	defer rt.close()

	pg, ok := rt.store.(*postgresstore.Store)
	if !ok {
		return errors.New("migrate requires the postgres store")
	}

	applied, err := pg.Migrate(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintf(rt.out, "Applied %d migration(s)\n", applied)
	return nil
}
