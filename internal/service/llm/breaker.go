package llm

import (
	"context"
	"errors"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	apperrors "brain2-conceptmap/internal/errors"
	"brain2-conceptmap/internal/service/connections"
)

// BreakerConfig configures the circuit breaker.
type BreakerConfig struct {
	Name         string
	MaxRequests  uint32
	Interval     time.Duration
	Timeout      time.Duration
	FailureRatio float64
	MinRequests  uint32
}

// DefaultBreakerConfig returns the breaker settings used when none are given.
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		Name:         "llm-suggester",
		MaxRequests:  3,
		Interval:     time.Minute,
		Timeout:      30 * time.Second,
		FailureRatio: 0.6,
		MinRequests:  3,
	}
}

// BreakerSuggester stops calling the wrapped suggester after repeated
// failures and fails fast until the breaker half-opens again.
type BreakerSuggester struct {
	inner   connections.Suggester
	breaker *gobreaker.CircuitBreaker
}

var _ connections.Suggester = (*BreakerSuggester)(nil)

// NewBreakerSuggester wraps inner with a circuit breaker.
func NewBreakerSuggester(inner connections.Suggester, cfg BreakerConfig, logger *zap.Logger) *BreakerSuggester {
	logger = logger.Named("circuit_breaker")
	settings := gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= cfg.MinRequests && failureRatio >= cfg.FailureRatio
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("Circuit breaker state changed",
				zap.String("name", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
	}
	return &BreakerSuggester{inner: inner, breaker: gobreaker.NewCircuitBreaker(settings)}
}

// Suggest implements connections.Suggester.
func (b *BreakerSuggester) Suggest(ctx context.Context, labels []string) ([]connections.Suggestion, error) {
	out, err := b.breaker.Execute(func() (interface{}, error) {
		return b.inner.Suggest(ctx, labels)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, apperrors.NewUnavailable("relationship suggester circuit open", err)
		}
		return nil, err
	}
	suggestions, _ := out.([]connections.Suggestion)
	return suggestions, nil
}

// State returns the breaker state.
func (b *BreakerSuggester) State() gobreaker.State {
	return b.breaker.State()
}
