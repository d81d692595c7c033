package models

import "fmt"

// Scope is either a tenant scope or the shared default scope. The zero value
// is the default scope.
type Scope struct {
	accountID string
	tenant    bool
}

// TenantScope returns the scope owned by accountID.
func TenantScope(accountID string) Scope {
	return Scope{accountID: accountID, tenant: true}
}

// DefaultScope returns the tenant-less scope of default behavior groups.
func DefaultScope() Scope {
	return Scope{}
}

// IsDefault reports whether s is the default scope.
func (s Scope) IsDefault() bool {
	return !s.tenant
}

// AccountID returns the tenant of s, and false for the default scope.
func (s Scope) AccountID() (string, bool) {
	return s.accountID, s.tenant
}

// AccountIDPtr returns the tenant as a nullable column value.
func (s Scope) AccountIDPtr() *string {
	if !s.tenant {
		return nil
	}
	id := s.accountID
	return &id
}

// Owns reports whether a row carrying accountID belongs to s.
func (s Scope) Owns(accountID *string) bool {
	if !s.tenant {
		return accountID == nil
	}
	return accountID != nil && *accountID == s.accountID
}

// Sees reports whether a row carrying accountID is visible from s. Tenants see
// their own rows plus default rows.
func (s Scope) Sees(accountID *string) bool {
	return accountID == nil || s.Owns(accountID)
}

func (s Scope) String() string {
	if !s.tenant {
		return "default"
	}
	return fmt.Sprintf("account:%s", s.accountID)
}
