package backend

import (
	"context"
	"time"

	"github.com/sony/gobreaker"
)

// BreakerSettings configures the optional circuit breaker around a backend.
type BreakerSettings struct {
	Enabled bool
	// MaxFailures is the number of consecutive failures that opens the breaker.
	MaxFailures uint32
	// OpenTimeout is how long the breaker stays open before probing again.
	OpenTimeout time.Duration
}

// DefaultBreakerSettings returns the settings used when the breaker is
// enabled without further configuration.
func DefaultBreakerSettings() BreakerSettings {
	return BreakerSettings{
		MaxFailures: 5,
		OpenTimeout: 30 * time.Second,
	}
}

type breaker struct {
	next Backend
	cb   *gobreaker.CircuitBreaker
}

// WithBreaker wraps b so that after MaxFailures consecutive failures every
// call fails immediately until OpenTimeout has passed. Calls are never
// retried; a rejected call is an ordinary *Error.
func WithBreaker(b Backend, s BreakerSettings) Backend {
	def := DefaultBreakerSettings()
	if s.MaxFailures == 0 {
		s.MaxFailures = def.MaxFailures
	}
	if s.OpenTimeout <= 0 {
		s.OpenTimeout = def.OpenTimeout
	}

	maxFailures := s.MaxFailures
	st := gobreaker.Settings{
		Name:        "backend:" + b.Name(),
		MaxRequests: 1,
		Timeout:     s.OpenTimeout,
		ReadyToTrip: func(c gobreaker.Counts) bool {
			return c.ConsecutiveFailures >= maxFailures
		},
	}
	return &breaker{next: b, cb: gobreaker.NewCircuitBreaker(st)}
}

func (b *breaker) Name() string {
	return b.next.Name()
}

func (b *breaker) Translate(ctx context.Context, text, source, target string) (string, error) {
	out, err := b.cb.Execute(func() (interface{}, error) {
		return b.next.Translate(ctx, text, source, target)
	})
	if err != nil {
		return "", wrap(b.Name(), err)
	}
	return out.(string), nil
}
