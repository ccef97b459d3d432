package config

import "time"

// BreakerConfig tunes the circuit breaker in front of the feed publisher.
type BreakerConfig struct {
	Name             string
	MaxRequests      uint32        // requests let through while half-open
	Interval         time.Duration // closed-state counter reset period
	Timeout          time.Duration // open-state duration before probing
	FailureThreshold uint32        // consecutive failures that open the circuit
}

// LoadBreakerConfig reads FEED_BREAKER_* variables.
func LoadBreakerConfig() BreakerConfig {
	cfg := BreakerConfig{
		Name:             envStr("FEED_BREAKER_NAME", "feed-publisher"),
		MaxRequests:      uint32(envInt("FEED_BREAKER_MAX_REQUESTS", 1)),
		Interval:         envDur("FEED_BREAKER_INTERVAL", time.Minute),
		Timeout:          envDur("FEED_BREAKER_TIMEOUT", 30*time.Second),
		FailureThreshold: uint32(envInt("FEED_BREAKER_FAILURES", 5)),
	}
	if cfg.MaxRequests == 0 {
		cfg.MaxRequests = 1
	}
	if cfg.FailureThreshold == 0 {
		cfg.FailureThreshold = 1
	}
	return cfg
}
