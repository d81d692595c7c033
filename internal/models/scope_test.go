package models

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestScope(t *testing.T) {
	acct := "acct-1"
	other := "acct-2"

	t.Run("default scope", func(t *testing.T) {
		s := DefaultScope()
		require.True(t, s.IsDefault())
		require.Nil(t, s.AccountIDPtr())
		require.True(t, s.Owns(nil))
		require.False(t, s.Owns(&acct))
		require.True(t, s.Sees(nil))
		require.False(t, s.Sees(&acct))
		require.Equal(t, "default", s.String())
	})

	t.Run("tenant scope", func(t *testing.T) {
		s := TenantScope(acct)
		require.False(t, s.IsDefault())
		id, ok := s.AccountID()
		require.True(t, ok)
		require.Equal(t, acct, id)
		require.Equal(t, acct, *s.AccountIDPtr())
		require.True(t, s.Owns(&acct))
		require.False(t, s.Owns(&other))
		require.False(t, s.Owns(nil))
		require.True(t, s.Sees(nil))
		require.False(t, s.Sees(&other))
	})

	t.Run("zero value is default", func(t *testing.T) {
		var s Scope
		require.True(t, s.IsDefault())
	})

	t.Run("group scope", func(t *testing.T) {
		g := &BehaviorGroup{AccountID: &acct}
		require.Equal(t, TenantScope(acct), g.Scope())
		g.AccountID = nil
		require.Equal(t, DefaultScope(), g.Scope())
	})
}
