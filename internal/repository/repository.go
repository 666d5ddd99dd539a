package repository

import (
	"github.com/ozpm/task-tracker-api/internal/models"
)

// TaskRepository defines the interface for task data access. All read methods
// see only non-deleted tasks; soft-deleted records stay in storage but are
// invisible here except through Save.
type TaskRepository interface {
	// Create inserts a new task. A code collision surfaces as
	// gorm.ErrDuplicatedKey through the dialector's error translation.
	Create(task *models.Task) error

	// FindByCode finds a non-deleted task by its code
	FindByCode(code string) (*models.Task, error)

	// FindAllByProjectCode lists non-deleted tasks of a project ordered by ID,
	// giving bulk operations a deterministic iteration snapshot
	FindAllByProjectCode(projectCode string) ([]models.Task, error)

	// FindAllByStatusAndAssignee lists non-deleted tasks with the given
	// status assigned to the given employee
	FindAllByStatusAndAssignee(status models.Status, assignee string) ([]models.Task, error)

	// FindAllByStatusIsNotAndAssignee is the negated-status variant
	FindAllByStatusIsNotAndAssignee(status models.Status, assignee string) ([]models.Task, error)

	// CountNonCompletedByAssignee counts the employee's non-deleted tasks
	// that are not COMPLETED
	CountNonCompletedByAssignee(assignee string) (int64, error)

	// Save inserts or updates a task by its primary key
	Save(task *models.Task) error
}
