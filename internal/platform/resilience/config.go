package resilience

import "time"

// CircuitBreakerConfig is the env-facing shape of a breaker.
type CircuitBreakerConfig struct {
	Enabled          bool
	FailureThreshold int
	OpenTimeout      time.Duration
	HalfOpenMaxReq   int
}

func DefaultCircuitBreakerConfig() CircuitBreakerConfig {
	return CircuitBreakerConfig{
		Enabled:          true,
		FailureThreshold: 5,
		OpenTimeout:      30 * time.Second,
		HalfOpenMaxReq:   1,
	}
}

// Normalize fills zero or negative fields from the defaults.
func (c CircuitBreakerConfig) Normalize() CircuitBreakerConfig {
	defaults := DefaultCircuitBreakerConfig()
	if c.FailureThreshold < 1 {
		c.FailureThreshold = defaults.FailureThreshold
	}
	if c.OpenTimeout <= 0 {
		c.OpenTimeout = defaults.OpenTimeout
	}
	if c.HalfOpenMaxReq < 1 {
		c.HalfOpenMaxReq = defaults.HalfOpenMaxReq
	}
	return c
}

// Build returns nil when the breaker is disabled.
func (c CircuitBreakerConfig) Build() *CircuitBreaker {
	if !c.Enabled {
		return nil
	}
	c = c.Normalize()
	return NewCircuitBreaker(c.FailureThreshold, c.OpenTimeout, c.HalfOpenMaxReq)
}

// RetryConfig bounds the attempts made against a flaky upstream.
type RetryConfig struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts: 3,
		BaseDelay:   200 * time.Millisecond,
		MaxDelay:    2 * time.Second,
	}
}

// Delay is the exponential backoff before the given retry (1-based).
func (c RetryConfig) Delay(retry int) time.Duration {
	if retry < 1 || c.BaseDelay <= 0 {
		return 0
	}
	d := c.BaseDelay << (retry - 1)
	if c.MaxDelay > 0 && (d > c.MaxDelay || d <= 0) {
		d = c.MaxDelay
	}
	return d
}
