package clients

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/eapache/go-resiliency/retrier"
	"github.com/google/uuid"
	"github.com/sony/gobreaker/v2"
)

// ErrTokenRejected is returned when the identity service does not accept the
// presented token. Unlike ErrUnavailable this is a final answer.
var ErrTokenRejected = errors.New("identity service rejected the token")

// Identity is the resolved acting identity: who is calling and which client
// roles they hold.
type Identity struct {
	Username string   `json:"username"`
	Roles    []string `json:"roles"`
}

// IdentityClient resolves bearer tokens against the identity service's
// userinfo endpoint.
type IdentityClient struct {
	baseURL string
	client  *http.Client
	cb      *gobreaker.CircuitBreaker[Identity]
	timeout time.Duration
}

// NewIdentityClient creates a client for the identity service.
func NewIdentityClient(baseURL string, timeout time.Duration) *IdentityClient {
	cb := gobreaker.NewCircuitBreaker[Identity](gobreaker.Settings{
		Name:        "IdentityCB",
		MaxRequests: 1,
		Timeout:     2 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > 0
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			log.Printf("Circuit Breaker '%s' changed from '%s' to '%s'", name, from, to)
		},
	})

	return &IdentityClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
		cb:      cb,
		timeout: timeout,
	}
}

// Resolve exchanges a bearer token for the caller's username and roles.
func (c *IdentityClient) Resolve(ctx context.Context, token string) (Identity, error) {
	// A rejected token is a final answer; it must neither be retried nor
	// counted as a breaker failure.
	rejected := false

	identity, err := c.cb.Execute(func() (Identity, error) {
		var resolved Identity
		r := retrier.New(retrier.ConstantBackoff(retryAttempts, retryBackoff), nil)
		err := r.Run(func() error {
			callCtx, cancel := context.WithTimeout(ctx, c.timeout)
			defer cancel()

			req, err := http.NewRequestWithContext(callCtx, http.MethodGet, c.baseURL+"/userinfo", nil)
			if err != nil {
				return fmt.Errorf("failed to create request: %w", err)
			}
			req.Header.Set("Authorization", "Bearer "+token)
			req.Header.Set("X-Request-Id", uuid.NewString())

			resp, err := c.client.Do(req)
			if err != nil {
				return fmt.Errorf("request failed: %w", err)
			}
			defer resp.Body.Close()

			switch resp.StatusCode {
			case http.StatusOK:
				if err := json.NewDecoder(resp.Body).Decode(&resolved); err != nil {
					return fmt.Errorf("failed to decode userinfo: %w", err)
				}
				return nil
			case http.StatusUnauthorized, http.StatusForbidden:
				rejected = true
				return nil
			default:
				return fmt.Errorf("unexpected status code %d", resp.StatusCode)
			}
		})
		return resolved, err
	})
	if err != nil {
		return Identity{}, fmt.Errorf("%w: identity: %v", ErrUnavailable, err)
	}
	if rejected {
		return Identity{}, ErrTokenRejected
	}
	return identity, nil
}
