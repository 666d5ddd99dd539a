package clients

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestProjectsClient_Exists(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/projects/P1":
			w.WriteHeader(http.StatusOK)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	client := NewProjectsClient(server.URL, time.Second)

	found, err := client.Exists(context.Background(), "P1")
	assert.NoError(t, err)
	assert.True(t, found)

	found, err = client.Exists(context.Background(), "nope")
	assert.NoError(t, err)
	assert.False(t, found)
}

func TestProjectsClient_ManagerHasAccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/v1/projects/P1/managers/m1" {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := NewProjectsClient(server.URL, time.Second)

	ok, err := client.ManagerHasAccess(context.Background(), "m1", "P1")
	assert.NoError(t, err)
	assert.True(t, ok)

	ok, err = client.ManagerHasAccess(context.Background(), "m2", "P1")
	assert.NoError(t, err)
	assert.False(t, ok)
}

func TestUsersClient_RetriesTransientFailures(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewUsersClient(server.URL, time.Second)

	found, err := client.Exists(context.Background(), "e1")
	assert.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, int32(3), calls.Load())
}

func TestUsersClient_UnavailableAfterRetries(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewUsersClient(server.URL, time.Second)

	_, err := client.Exists(context.Background(), "e1")
	assert.ErrorIs(t, err, ErrUnavailable)

	// The breaker is open now, so the next call fails fast without reaching
	// the server.
	_, err = client.Exists(context.Background(), "e1")
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestIdentityClient_Resolve(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/userinfo", r.URL.Path)
		assert.Equal(t, "Bearer good-token", r.Header.Get("Authorization"))
		assert.NotEmpty(t, r.Header.Get("X-Request-Id"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"username":"m1","roles":["Manager"]}`))
	}))
	defer server.Close()

	client := NewIdentityClient(server.URL, time.Second)

	identity, err := client.Resolve(context.Background(), "good-token")
	assert.NoError(t, err)
	assert.Equal(t, "m1", identity.Username)
	assert.Equal(t, []string{"Manager"}, identity.Roles)
}

func TestIdentityClient_TokenRejectedIsNotRetried(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	client := NewIdentityClient(server.URL, time.Second)

	_, err := client.Resolve(context.Background(), "bad-token")
	assert.ErrorIs(t, err, ErrTokenRejected)
	assert.Equal(t, int32(1), calls.Load())

	// A rejected token must not open the breaker for everyone else.
	_, err = client.Resolve(context.Background(), "bad-token")
	assert.ErrorIs(t, err, ErrTokenRejected)
}
