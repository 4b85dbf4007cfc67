package services

import (
	"net/http"

	"github.com/sony/gobreaker"

	"github.com/alexander-edwards/asana-clone-app-fullstack/apperrors"
	"github.com/alexander-edwards/asana-clone-app-fullstack/config"
	"github.com/alexander-edwards/asana-clone-app-fullstack/logging"
)

// NewBreaker builds the circuit breaker guarding an auxiliary store.
func NewBreaker(name string, cfg config.BreakerConfig) *gobreaker.CircuitBreaker {
	maxFailures := cfg.MaxFailures
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > maxFailures
		},
		IsSuccessful: func(err error) bool {
			return err == nil || apperrors.StatusOf(err) < http.StatusInternalServerError
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Logger.Infof("Event ID: CIRCUIT_BREAKER_STATE_CHANGE, Description: Circuit Breaker '%s' changed from '%s' to '%s'", name, from.String(), to.String())
		},
	})
}
