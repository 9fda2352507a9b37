package resilience

import "time"

// CircuitBreakerConfig is read per upstream from <PREFIX>_CIRCUIT_* variables.
type CircuitBreakerConfig struct {
	Enabled bool
	// FailureThreshold consecutive upstream failures open the breaker.
	FailureThreshold int
	// OpenTimeout is how long calls are rejected before probing again.
	OpenTimeout time.Duration
	// HalfOpenMaxReq trial requests must all succeed to close the breaker.
	HalfOpenMaxReq int
}

func DefaultCircuitBreakerConfig() CircuitBreakerConfig {
	return CircuitBreakerConfig{
		Enabled:          true,
		FailureThreshold: 5,
		OpenTimeout:      15 * time.Second,
		HalfOpenMaxReq:   2,
	}
}

func (c CircuitBreakerConfig) withDefaults() CircuitBreakerConfig {
	d := DefaultCircuitBreakerConfig()
	if c.FailureThreshold < 1 {
		c.FailureThreshold = d.FailureThreshold
	}
	if c.OpenTimeout <= 0 {
		c.OpenTimeout = d.OpenTimeout
	}
	if c.HalfOpenMaxReq < 1 {
		c.HalfOpenMaxReq = d.HalfOpenMaxReq
	}
	return c
}
