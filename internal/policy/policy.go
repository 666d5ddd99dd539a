// Package policy holds the access and transition decisions for tasks. Every
// function is a pure computation over the actor and the task record; the
// surrounding service is responsible for loading records and calling the
// external directories.
package policy

import (
	"errors"
	"fmt"
	"time"

	"github.com/ozpm/task-tracker-api/internal/models"
)

// Role names as issued by the identity service.
const (
	RoleManager  = "Manager"
	RoleEmployee = "Employee"
)

// ErrAccessDenied is the base error every denial wraps.
var ErrAccessDenied = errors.New("access is denied")

var (
	// ErrNotManager is returned when an operation reserved for managers is
	// attempted by an actor without the manager role.
	ErrNotManager = fmt.Errorf("%w: manager role required", ErrAccessDenied)
	// ErrNotProjectOwner is returned when a manager acts on a task belonging
	// to another manager's project.
	ErrNotProjectOwner = fmt.Errorf("%w: make sure that you are working on your own project", ErrAccessDenied)
	// ErrNotAssignee is returned when an employee acts on a task assigned to
	// someone else.
	ErrNotAssignee = fmt.Errorf("%w: make sure that you are working on your own task", ErrAccessDenied)
)

// Actor is the acting identity, resolved by the transport layer and passed
// explicitly through every decision.
type Actor struct {
	Username string
	Roles    []string
}

// HasRole reports whether the actor holds the named role.
func (a Actor) HasRole(name string) bool {
	for _, r := range a.Roles {
		if r == name {
			return true
		}
	}
	return false
}

// Engine computes access decisions. It is stateless and safe for concurrent
// use.
type Engine struct{}

// NewEngine creates a policy engine.
func NewEngine() *Engine {
	return &Engine{}
}

// CanCreate decides whether the actor may create tasks at all. Only the
// manager role qualifies; whether the manager may create tasks for a specific
// project is the projects directory's call, made by the lifecycle service.
func (e *Engine) CanCreate(actor Actor) error {
	if !actor.HasRole(RoleManager) {
		return ErrNotManager
	}
	return nil
}

// CheckReadAccess dispatches on the actor's role: managers must own the
// task's project, employees must be the assignee, anyone else is denied
// outright.
func (e *Engine) CheckReadAccess(actor Actor, task models.Task) error {
	if actor.HasRole(RoleManager) {
		return e.CheckManagerOwnership(actor, task)
	}
	if actor.HasRole(RoleEmployee) {
		return e.CheckEmployeeOwnership(actor, task)
	}
	return ErrAccessDenied
}

// CheckManagerOwnership allows the actor iff they are the task's assigned
// manager.
func (e *Engine) CheckManagerOwnership(actor Actor, task models.Task) error {
	if actor.Username != task.AssignedManager {
		return ErrNotProjectOwner
	}
	return nil
}

// CheckEmployeeOwnership allows the actor iff they are the task's assigned
// employee.
func (e *Engine) CheckEmployeeOwnership(actor Actor, task models.Task) error {
	if actor.Username != task.AssignedEmployee {
		return ErrNotAssignee
	}
	return nil
}

// CheckUpdateAccess guards full-field updates, which are reserved for the
// owning manager.
func (e *Engine) CheckUpdateAccess(actor Actor, task models.Task) error {
	return e.CheckManagerOwnership(actor, task)
}

// CheckStatusUpdateAccess guards the status-only update, which is reserved
// for the owning employee. Managers change status through the full update.
func (e *Engine) CheckStatusUpdateAccess(actor Actor, task models.Task) error {
	return e.CheckEmployeeOwnership(actor, task)
}

// ComputeAssignedDate returns today when the assignee changes and the stored
// date otherwise, so a no-op reassignment keeps its history.
func (e *Engine) ComputeAssignedDate(existing models.Task, newAssignee string, today time.Time) time.Time {
	if newAssignee != existing.AssignedEmployee {
		return today
	}
	return existing.AssignedDate
}

// DeletionCode derives the rewritten code for a soft-deleted task. The suffix
// frees the original code for reuse while keeping the record traceable.
func (e *Engine) DeletionCode(code string, id uint64) string {
	return fmt.Sprintf("%s-%d", code, id)
}
