package config

import "fmt"

// Validate enforces startup-time invariants. A failure here is a
// non-recoverable surface condition: the caller should abort
// process start rather than run with an inconsistent configuration.
func (c *Config) Validate() error {
	if c.Limits.CPUTimeLimit <= c.Limits.WallClockTimeout {
		return NewValidationError("MAX_CPU_TIME_SEC",
			fmt.Errorf("%w: CPU time ceiling (%s) must exceed the wall-clock timeout (%s), "+
				"otherwise the CPU limit could fire before the timeout ever gets a chance to",
				ErrInvalidValue, c.Limits.CPUTimeLimit, c.Limits.WallClockTimeout))
	}

	if c.Limits.MinNonClaudeTimeout > c.Limits.WallClockTimeout {
		return NewValidationError("WallClockTimeout",
			fmt.Errorf("%w: default wall-clock timeout (%s) is below the codex/gemini floor (%s)",
				ErrInvalidValue, c.Limits.WallClockTimeout, c.Limits.MinNonClaudeTimeout))
	}

	if c.Pagination.MinLimitTokens >= c.Pagination.MaxLimitTokens {
		return NewValidationError("Pagination",
			fmt.Errorf("%w: min tokens (%d) must be below max tokens (%d)",
				ErrInvalidValue, c.Pagination.MinLimitTokens, c.Pagination.MaxLimitTokens))
	}

	if c.CORS.AllowWildcard && c.CORS.Production {
		return NewValidationError("ALLOW_CORS_WILDCARD",
			fmt.Errorf("%w: wildcard CORS is never permitted in production", ErrInvalidValue))
	}

	if c.Transport == TransportHTTP && (c.HTTPPort <= 0 || c.HTTPPort > 65535) {
		return NewValidationError("HTTP_PORT",
			fmt.Errorf("%w: %d is not a valid TCP port", ErrInvalidValue, c.HTTPPort))
	}

	return nil
}
