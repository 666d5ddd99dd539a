package clients

import (
	"context"
	"fmt"
	"net/url"
	"time"
)

// ProjectsClient asks the projects service about project existence and
// manager access.
type ProjectsClient struct {
	dir *directory
}

// NewProjectsClient creates a client for the projects service.
func NewProjectsClient(baseURL string, timeout time.Duration) *ProjectsClient {
	return &ProjectsClient{dir: newDirectory("ProjectsDirectoryCB", baseURL, timeout)}
}

// Exists reports whether a project with the given code exists.
func (c *ProjectsClient) Exists(ctx context.Context, projectCode string) (bool, error) {
	return c.dir.exists(ctx, fmt.Sprintf("/api/v1/projects/%s", url.PathEscape(projectCode)))
}

// ManagerHasAccess reports whether the projects service acknowledges the
// manager for the project, meaning the manager may create tasks for it.
func (c *ProjectsClient) ManagerHasAccess(ctx context.Context, username, projectCode string) (bool, error) {
	return c.dir.exists(ctx, fmt.Sprintf("/api/v1/projects/%s/managers/%s",
		url.PathEscape(projectCode), url.PathEscape(username)))
}
