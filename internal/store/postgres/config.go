package postgres

import (
	"fmt"
)

// StoreConfig holds configuration for the PostgreSQL behavior group store.
type StoreConfig struct {
	PoolConfig

	// AutoMigrate runs pending migrations when the store is opened.
	AutoMigrate bool

	// QueryTimeoutSeconds bounds each transaction run by Update or View.
	// Default: 10 seconds
	// Set to -1 to use context timeouts only (no additional timeout)
	QueryTimeoutSeconds int32
}

// Validate checks that the configuration is valid.
func (c *StoreConfig) Validate() error {
	if err := c.PoolConfig.Validate(); err != nil {
		return err
	}
	if c.QueryTimeoutSeconds < -1 {
		return fmt.Errorf("query timeout must be -1 or greater")
	}
	return nil
}

// ApplyDefaults applies default values to unset configuration fields.
func (c *StoreConfig) ApplyDefaults() {
	c.PoolConfig.ApplyDefaults()
	if c.QueryTimeoutSeconds == 0 {
		c.QueryTimeoutSeconds = 10 // 10 seconds
	}
}
