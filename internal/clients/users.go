package clients

import (
	"context"
	"fmt"
	"net/url"
	"time"
)

// UsersClient asks the users service about employee existence.
type UsersClient struct {
	dir *directory
}

// NewUsersClient creates a client for the users service.
func NewUsersClient(baseURL string, timeout time.Duration) *UsersClient {
	return &UsersClient{dir: newDirectory("UsersDirectoryCB", baseURL, timeout)}
}

// Exists reports whether an employee with the given username exists.
func (c *UsersClient) Exists(ctx context.Context, username string) (bool, error) {
	return c.dir.exists(ctx, fmt.Sprintf("/api/v1/users/%s", url.PathEscape(username)))
}
