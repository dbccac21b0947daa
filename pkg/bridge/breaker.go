package bridge

import (
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/sony/gobreaker/v2"
)

// Default circuit breaker settings.
const (
	defaultBreakerMaxFailures uint32        = 5
	defaultBreakerTimeout     time.Duration = 30 * time.Second
	defaultBreakerInterval    time.Duration = 60 * time.Second
)

// newTransportBreaker builds the circuit breaker guarding the worker
// transport. Only transport failures count: a RemoteError means the worker
// answered, which is a healthy transport, so it never trips the breaker.
func newTransportBreaker(maxFailures uint32, timeout time.Duration, logger *slog.Logger) *gobreaker.CircuitBreaker[json.RawMessage] {
	if maxFailures == 0 {
		maxFailures = defaultBreakerMaxFailures
	}
	if timeout == 0 {
		timeout = defaultBreakerTimeout
	}

	return gobreaker.NewCircuitBreaker[json.RawMessage](gobreaker.Settings{
		Name:        "reelworker",
		MaxRequests: 1, // allow 1 probe in half-open state
		Interval:    defaultBreakerInterval,
		Timeout:     timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state change",
				"breaker", name,
				"from", from.String(),
				"to", to.String(),
			)
		},
		IsSuccessful: func(err error) bool {
			if err == nil {
				return true
			}
			var re *RemoteError
			return errors.As(err, &re)
		},
	})
}
