package invite

import "time"

// Config holds invite domain configuration.
type Config struct {
	// CanonicalizeUnregisteredEmailAliases applies the webmail dot-alias rule when
	// matching unregistered emails against open invites.
	CanonicalizeUnregisteredEmailAliases bool

	// CanonicalizeRegisteredEmailAliases applies the same rule to emails that belong
	// to registered accounts. Registered accounts carry their exact stored email, so
	// this stays off unless explicitly enabled.
	CanonicalizeRegisteredEmailAliases bool

	// LookupConcurrency bounds concurrent identity role lookups per request.
	LookupConcurrency int

	// PersistConcurrency bounds concurrent invite inserts per request.
	PersistConcurrency int

	// EmailLookupMaxResults caps the bulk email identity lookup.
	EmailLookupMaxResults int

	// EmailDispatchTimeout bounds the detached invitation email task.
	EmailDispatchTimeout time.Duration
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		CanonicalizeUnregisteredEmailAliases: true,
		CanonicalizeRegisteredEmailAliases:   false,
		LookupConcurrency:                    10,
		PersistConcurrency:                   10,
		EmailLookupMaxResults:                100,
		EmailDispatchTimeout:                 30 * time.Second,
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.LookupConcurrency <= 0 {
		c.LookupConcurrency = 10
	}
	if c.PersistConcurrency <= 0 {
		c.PersistConcurrency = 10
	}
	if c.EmailLookupMaxResults <= 0 {
		c.EmailLookupMaxResults = 100
	}
	if c.EmailDispatchTimeout <= 0 {
		c.EmailDispatchTimeout = 30 * time.Second
	}
	return nil
}
