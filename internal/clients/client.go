// Package clients holds the HTTP clients for the external directories the
// task service depends on: the projects service, the users service, and the
// identity service. Each client wraps its calls in a circuit breaker and a
// constant-backoff retrier so transient unavailability is absorbed before it
// reaches the caller.
package clients

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/eapache/go-resiliency/retrier"
	"github.com/google/uuid"
	"github.com/sony/gobreaker/v2"
)

// ErrUnavailable is returned when a directory call keeps failing after
// retries or the circuit breaker is open. It is the only error kind for which
// a later retry can change the outcome.
var ErrUnavailable = errors.New("directory service unavailable")

const (
	retryAttempts = 3
	retryBackoff  = 100 * time.Millisecond
)

// directory is the shared plumbing behind the concrete clients.
type directory struct {
	name    string
	baseURL string
	client  *http.Client
	cb      *gobreaker.CircuitBreaker[bool]
	timeout time.Duration
}

func newDirectory(name, baseURL string, timeout time.Duration) *directory {
	cb := gobreaker.NewCircuitBreaker[bool](gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Timeout:     2 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > 0
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			log.Printf("Circuit Breaker '%s' changed from '%s' to '%s'", name, from, to)
		},
	})

	return &directory{
		name:    name,
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
		cb:      cb,
		timeout: timeout,
	}
}

// exists performs a GET on path and maps 200 to true, 404 to false. Any other
// outcome is retried and finally surfaced as ErrUnavailable.
func (d *directory) exists(ctx context.Context, path string) (bool, error) {
	found, err := d.cb.Execute(func() (bool, error) {
		var result bool
		r := retrier.New(retrier.ConstantBackoff(retryAttempts, retryBackoff), nil)
		err := r.Run(func() error {
			callCtx, cancel := context.WithTimeout(ctx, d.timeout)
			defer cancel()

			req, err := http.NewRequestWithContext(callCtx, http.MethodGet, d.baseURL+path, nil)
			if err != nil {
				return fmt.Errorf("failed to create request: %w", err)
			}
			req.Header.Set("X-Request-Id", uuid.NewString())

			resp, err := d.client.Do(req)
			if err != nil {
				return fmt.Errorf("request failed: %w", err)
			}
			defer resp.Body.Close()

			switch resp.StatusCode {
			case http.StatusOK:
				result = true
				return nil
			case http.StatusNotFound:
				result = false
				return nil
			default:
				return fmt.Errorf("unexpected status code %d", resp.StatusCode)
			}
		})
		return result, err
	})
	if err != nil {
		return false, fmt.Errorf("%w: %s: %v", ErrUnavailable, d.name, err)
	}
	return found, nil
}
