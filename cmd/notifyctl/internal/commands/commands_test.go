package commands

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/wolfeidau/notifyroute/internal/config"
	"github.com/wolfeidau/notifyroute/internal/store"
	memorystore "github.com/wolfeidau/notifyroute/internal/store/memory"
)

type harness struct {
	t       *testing.T
	ctx     context.Context
	globals *Globals
	out     *bytes.Buffer
}

func newHarness(t *testing.T) *harness {
	out := &bytes.Buffer{}
	return &harness{
		t:   t,
		ctx: context.Background(),
		out: out,
		globals: &Globals{
			Version: "test",
			Out:     out,
			store:   memorystore.NewStore(),
		},
	}
}

// run executes cmd and returns the trimmed output.
func (h *harness) run(cmd interface {
	Run(context.Context, *Globals) error
}) string {
	h.t.Helper()
	h.out.Reset()
	require.NoError(h.t, cmd.Run(h.ctx, h.globals))
	return strings.TrimSpace(h.out.String())
}

func (h *harness) runErr(cmd interface {
	Run(context.Context, *Globals) error
}) error {
	h.t.Helper()
	h.out.Reset()
	return cmd.Run(h.ctx, h.globals)
}

func (h *harness) id(cmd interface {
	Run(context.Context, *Globals) error
}) string {
	h.t.Helper()
	out := h.run(cmd)
	_, err := uuid.Parse(out)
	require.NoError(h.t, err, "expected an id, got %q", out)
	return out
}

func TestCommands_EndToEnd(t *testing.T) {
	h := newHarness(t)
	tenant := ScopeFlags{Account: "acme"}

	bundle := h.id(&BundleCreateCmd{Name: "rhel"})
	app := h.id(&ApplicationCreateCmd{Bundle: bundle, Name: "policies"})
	eventType := h.id(&EventTypeCreateCmd{Application: app, Name: "policy-triggered"})
	e1 := h.id(&EndpointCreateCmd{Scope: tenant, Type: "webhook", Name: "hook-1"})
	e2 := h.id(&EndpointCreateCmd{Scope: tenant, Type: "email_subscription", Name: "mail"})

	group := h.id(&GroupCreateCmd{Scope: tenant, Bundle: bundle, DisplayName: "Ops"})

	err := h.runErr(&GroupCreateCmd{Scope: tenant, Bundle: bundle, DisplayName: "Ops"})
	require.ErrorIs(t, err, store.ErrNameConflict)

	out := h.run(&GroupActionsCmd{Scope: tenant, ID: group, Endpoints: []string{e2, e1}})
	require.Contains(t, out, "2 action change(s)")

	out = h.run(&EventTypeBehaviorsCmd{Scope: tenant, ID: eventType, Groups: []string{group}})
	require.Contains(t, out, "1 link change(s)")

	out = h.run(&GroupListCmd{Scope: tenant, Bundle: bundle})
	require.Contains(t, out, group)
	require.Contains(t, out, "Ops")

	out = h.run(&GroupEventTypesCmd{Account: AccountFlags{Account: "acme"}, ID: group})
	require.Contains(t, out, eventType)
	require.Contains(t, out, "policy-triggered")

	out = h.run(&EventTypeGroupsCmd{Account: AccountFlags{Account: "acme"}, ID: eventType})
	require.Contains(t, out, group)

	out = h.run(&EndpointGroupsCmd{Account: AccountFlags{Account: "acme"}, ID: e1})
	require.Contains(t, out, group)

	h.run(&GroupUpdateCmd{Scope: tenant, ID: group, DisplayName: "Operations"})
	out = h.run(&GroupListCmd{Scope: tenant, Bundle: bundle})
	require.Contains(t, out, "Operations")

	h.run(&EndpointDeleteCmd{ID: e1})
	out = h.run(&EndpointGroupsCmd{Account: AccountFlags{Account: "acme"}, ID: e2})
	require.Contains(t, out, group)

	out = h.run(&GroupDeleteCmd{Scope: tenant, ID: group})
	require.Contains(t, out, "Deleted behavior group")

	out = h.run(&GroupDeleteCmd{Scope: tenant, ID: group})
	require.Contains(t, out, "not found")

	out = h.run(&GroupListCmd{Scope: tenant, Bundle: bundle})
	require.Equal(t, "No behavior groups found.", out)
}

func TestCommands_DefaultScope(t *testing.T) {
	h := newHarness(t)
	def := ScopeFlags{Default: true}

	bundle := h.id(&BundleCreateCmd{Name: "rhel"})
	group := h.id(&GroupCreateCmd{Scope: def, Bundle: bundle, DisplayName: "Shared"})
	endpoint := h.id(&EndpointCreateCmd{Scope: def, Type: "email_subscription", Name: "mail"})

	h.run(&GroupActionsCmd{Scope: def, ID: group, Endpoints: []string{endpoint}})

	out := h.run(&GroupListCmd{Scope: def, Bundle: bundle})
	require.Contains(t, out, "(default)")

	// Tenants see default groups too.
	out = h.run(&GroupListCmd{Scope: ScopeFlags{Account: "acme"}, Bundle: bundle})
	require.Contains(t, out, group)
}

func TestCommands_AllowDuplicateNames(t *testing.T) {
	h := newHarness(t)
	h.globals.Features.AllowDuplicateNames = true
	tenant := ScopeFlags{Account: "acme"}

	bundle := h.id(&BundleCreateCmd{Name: "rhel"})
	h.id(&GroupCreateCmd{Scope: tenant, Bundle: bundle, DisplayName: "Ops"})
	h.id(&GroupCreateCmd{Scope: tenant, Bundle: bundle, DisplayName: "Ops"})
}

func TestCommands_InputValidation(t *testing.T) {
	h := newHarness(t)

	err := h.runErr(&GroupCreateCmd{Bundle: uuid.NewString(), DisplayName: "x"})
	require.ErrorContains(t, err, "--account or --default")

	err = h.runErr(&GroupCreateCmd{Scope: ScopeFlags{Account: "a", Default: true}, Bundle: uuid.NewString(), DisplayName: "x"})
	require.ErrorContains(t, err, "mutually exclusive")

	err = h.runErr(&GroupCreateCmd{Scope: ScopeFlags{Account: "a"}, Bundle: "not-a-uuid", DisplayName: "x"})
	require.ErrorIs(t, err, store.ErrValidation)

	err = h.runErr(&GroupActionsCmd{Scope: ScopeFlags{Account: "a"}, ID: uuid.NewString(), Endpoints: []string{"nope"}})
	require.ErrorIs(t, err, store.ErrValidation)

	err = h.runErr(&MigrateCmd{})
	require.ErrorContains(t, err, "requires the postgres store")
}

func TestGlobals_StoreConfig(t *testing.T) {
	cfg, err := config.Parse([]byte(`
database:
  conn_string: postgres://file/db
  max_conns: 8
  query_timeout: 3s
  connect_timeout: 15s
`))
	require.NoError(t, err)

	g := &Globals{}
	sc := g.storeConfig(cfg)
	require.Equal(t, "postgres://file/db", sc.ConnString)
	require.Equal(t, int32(8), sc.MaxConns)
	require.Equal(t, int32(3), sc.QueryTimeoutSeconds)
	require.Equal(t, int32(15), sc.ConnectTimeout)
	require.False(t, sc.AutoMigrate)

	g.PostgresStore = PostgresStoreFlags{ConnString: "postgres://flag/db", MaxConns: 30, AutoMigrate: true}
	sc = g.storeConfig(cfg)
	require.Equal(t, "postgres://flag/db", sc.ConnString)
	require.Equal(t, int32(30), sc.MaxConns)
	require.True(t, sc.AutoMigrate)
}

func TestGlobals_OpenRequiresConnString(t *testing.T) {
	g := &Globals{StoreType: "postgres", Out: &bytes.Buffer{}}
	_, _, err := g.open(context.Background())
	require.ErrorContains(t, err, "connection string is required")
}

func TestTruncate(t *testing.T) {
	require.Equal(t, "short", truncate("short", 10))
	require.Equal(t, "abcdefg...", truncate("abcdefghijklmnop", 10))
}
