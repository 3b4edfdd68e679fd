package isolation

import "time"

// Config carries the tunable policy of the isolation layer. The exact
// authorization rule set is a configuration point, not a hard-coded policy:
// membership is always required, and the configured admin role bypasses
// granular permission checks.
type Config struct {
	// CacheTTL is how long a validator decision may be served from cache.
	CacheTTL time.Duration `conf:"cache_ttl" yaml:"cache_ttl" json:"cache_ttl"`

	// MembershipTimeout bounds a single membership source lookup. Lookups that
	// exceed it fail the request as unavailable, never as allowed or denied.
	MembershipTimeout time.Duration `conf:"membership_timeout" yaml:"membership_timeout" json:"membership_timeout"`

	// MaxAttempts bounds membership source retries inside the validator.
	MaxAttempts int `conf:"max_attempts" yaml:"max_attempts" json:"max_attempts"`

	// AdminRole names the role that bypasses granular permission checks.
	AdminRole Role `conf:"admin_role" yaml:"admin_role" json:"admin_role"`
}

// WithDefaults fills unset fields with the defaults used across the services.
func (c Config) WithDefaults() Config {
	if c.CacheTTL == 0 {
		c.CacheTTL = 30 * time.Second
	}

	if c.MembershipTimeout == 0 {
		c.MembershipTimeout = 2 * time.Second
	}

	if c.MaxAttempts == 0 {
		c.MaxAttempts = 2
	}

	if c.AdminRole == "" {
		c.AdminRole = RoleAdmin
	}

	return c
}
