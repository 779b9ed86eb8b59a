package exchangerate

import (
	"errors"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker"
	apperrors "github.com/zatekoja/medtourclinic/pkg/errors"
)

// newBreaker trips after three consecutive failures and probes again after a minute
func newBreaker(name string) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Timeout:     time.Minute,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("circuit breaker state changed")
		},
	})
}

func newRestyClient(baseURL string, timeout time.Duration) *resty.Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetRetryCount(2).
		SetRetryWaitTime(500 * time.Millisecond).
		SetRetryMaxWaitTime(2 * time.Second)
}

// execute runs fn through the breaker and reports failures as external errors
func execute[T any](cb *gobreaker.CircuitBreaker, name string, fn func() (T, error)) (T, error) {
	var zero T
	out, err := cb.Execute(func() (interface{}, error) { return fn() })
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return zero, apperrors.NewExternalError(name+" temporarily unavailable", err)
		}
		return zero, apperrors.NewExternalError(name+" request failed", err)
	}
	return out.(T), nil
}
