package queue

import (
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/iliyamo/filmorate/internal/config"
	"github.com/iliyamo/filmorate/internal/logging"
)

// NewBreaker builds the circuit breaker that guards broker publishes. It
// opens after cfg.FailureThreshold consecutive failures.
func NewBreaker(cfg config.BreakerConfig) *gobreaker.CircuitBreaker[struct{}] {
	settings := gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.FailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).
				Msg("circuit breaker state changed")
		},
	}
	return gobreaker.NewCircuitBreaker[struct{}](settings)
}
