package config

import "time"

// PublisherConfig tunes the background feed publisher.
type PublisherConfig struct {
	Buffer         int           // events queued before new ones are dropped
	DialTimeout    time.Duration // TCP connect plus AMQP handshake
	PublishTimeout time.Duration // per message, breaker included
}

// LoadPublisherConfig reads FEED_PUBLISH_BUFFER, FEED_DIAL_TIMEOUT and
// FEED_PUBLISH_TIMEOUT.
func LoadPublisherConfig() PublisherConfig {
	cfg := PublisherConfig{
		Buffer:         envInt("FEED_PUBLISH_BUFFER", 256),
		DialTimeout:    envDur("FEED_DIAL_TIMEOUT", 3*time.Second),
		PublishTimeout: envDur("FEED_PUBLISH_TIMEOUT", 5*time.Second),
	}
	if cfg.Buffer < 1 {
		cfg.Buffer = 1
	}
	if cfg.DialTimeout <= 0 {
		cfg.DialTimeout = 3 * time.Second
	}
	if cfg.PublishTimeout <= 0 {
		cfg.PublishTimeout = 5 * time.Second
	}
	return cfg
}
