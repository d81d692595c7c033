package config

import "sync/atomic"

// FeatureFlipper holds feature flags that may change while the process runs.
type FeatureFlipper struct {
	enforceBehaviorGroupNameUnicity atomic.Bool
}

// NewFeatureFlipper seeds the flags from cfg.
func NewFeatureFlipper(cfg FeaturesConfig) *FeatureFlipper {
	f := &FeatureFlipper{}
	f.enforceBehaviorGroupNameUnicity.Store(cfg.NameUnicityEnforced())
	return f
}

// EnforceBehaviorGroupNameUnicity reports whether behavior group display
// names must be unique in their naming scope. Its signature matches
// behaviorgroup.NamePolicy.
func (f *FeatureFlipper) EnforceBehaviorGroupNameUnicity() bool {
	return f.enforceBehaviorGroupNameUnicity.Load()
}

// SetEnforceBehaviorGroupNameUnicity flips the naming rule.
func (f *FeatureFlipper) SetEnforceBehaviorGroupNameUnicity(enabled bool) {
	f.enforceBehaviorGroupNameUnicity.Store(enabled)
}
