package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/ozpm/task-tracker-api/internal/models"
	"github.com/ozpm/task-tracker-api/internal/policy"
	"github.com/ozpm/task-tracker-api/internal/repository"
)

var (
	ErrTaskAlreadyExists = errors.New("task already exists")
	ErrTaskNotFound      = errors.New("task does not exist")
	ErrProjectNotFound   = errors.New("project does not exist")
	ErrEmployeeNotFound  = errors.New("employee does not exist")
	ErrInvalidStatus     = errors.New("unknown task status")
)

// ProjectDirectory is the projects service as seen from task lifecycle
// operations.
type ProjectDirectory interface {
	Exists(ctx context.Context, projectCode string) (bool, error)
	ManagerHasAccess(ctx context.Context, username, projectCode string) (bool, error)
}

// EmployeeDirectory is the users service as seen from task lifecycle
// operations.
type EmployeeDirectory interface {
	Exists(ctx context.Context, username string) (bool, error)
}

// TaskService orchestrates repository access, directory checks, and policy
// decisions into the task lifecycle operations. The acting identity is an
// explicit parameter on every call.
type TaskService struct {
	tasks     repository.TaskRepository
	projects  ProjectDirectory
	employees EmployeeDirectory
	engine    *policy.Engine
	now       func() time.Time
}

// NewTaskService creates a new TaskService.
func NewTaskService(tasks repository.TaskRepository, projects ProjectDirectory, employees EmployeeDirectory, engine *policy.Engine) *TaskService {
	return &TaskService{
		tasks:     tasks,
		projects:  projects,
		employees: employees,
		engine:    engine,
		now:       time.Now,
	}
}

// SetClock overrides the service clock (used for testing).
func (s *TaskService) SetClock(now func() time.Time) {
	s.now = now
}

// today returns the current date with the time component dropped; assigned
// dates carry day granularity only.
func (s *TaskService) today() time.Time {
	t := s.now()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// CreateTaskInput represents input for creating a task
type CreateTaskInput struct {
	TaskCode         string
	Subject          string
	Detail           string
	ProjectCode      string
	AssignedEmployee string
}

// UpdateTaskInput represents input for a full task update. An empty Status
// keeps the stored one.
type UpdateTaskInput struct {
	Subject          string
	Detail           string
	Status           models.Status
	AssignedEmployee string
}

// TaskCounts is the completed/non-completed split for a project.
type TaskCounts struct {
	CompletedTaskCount    int64 `json:"completed_task_count"`
	NonCompletedTaskCount int64 `json:"non_completed_task_count"`
}

// Create registers a new task for a project. The acting manager becomes the
// assigned manager, status is forced to OPEN and the assigned date to today.
func (s *TaskService) Create(ctx context.Context, actor policy.Actor, input CreateTaskInput) (*models.Task, error) {
	if err := s.engine.CanCreate(actor); err != nil {
		return nil, err
	}

	if _, err := s.tasks.FindByCode(input.TaskCode); err == nil {
		return nil, ErrTaskAlreadyExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check task code: %w", err)
	}

	exists, err := s.projects.Exists(ctx, input.ProjectCode)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrProjectNotFound
	}

	hasAccess, err := s.projects.ManagerHasAccess(ctx, actor.Username, input.ProjectCode)
	if err != nil {
		return nil, err
	}
	if !hasAccess {
		return nil, policy.ErrNotProjectOwner
	}

	employeeExists, err := s.employees.Exists(ctx, input.AssignedEmployee)
	if err != nil {
		return nil, err
	}
	if !employeeExists {
		return nil, ErrEmployeeNotFound
	}

	task := &models.Task{
		TaskCode:         input.TaskCode,
		Subject:          input.Subject,
		Detail:           input.Detail,
		ProjectCode:      input.ProjectCode,
		Status:           models.StatusOpen,
		AssignedManager:  actor.Username,
		AssignedEmployee: input.AssignedEmployee,
		AssignedDate:     s.today(),
	}

	if err := s.tasks.Create(task); err != nil {
		// Two racing creates with the same code: the unique index decides,
		// the loser gets the same answer as the pre-check.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrTaskAlreadyExists
		}
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	return task, nil
}

// ReadByCode returns a single task if the actor may see it.
func (s *TaskService) ReadByCode(ctx context.Context, actor policy.Actor, taskCode string) (*models.Task, error) {
	task, err := s.findByCode(taskCode)
	if err != nil {
		return nil, err
	}

	if err := s.engine.CheckReadAccess(actor, *task); err != nil {
		return nil, err
	}

	return task, nil
}

// ReadAllByProject lists a project's tasks. The first task the actor may not
// see fails the whole call.
func (s *TaskService) ReadAllByProject(ctx context.Context, actor policy.Actor, projectCode string) ([]models.Task, error) {
	tasks, err := s.tasks.FindAllByProjectCode(projectCode)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}

	for _, task := range tasks {
		if err := s.engine.CheckReadAccess(actor, task); err != nil {
			return nil, err
		}
	}

	return tasks, nil
}

// ReadAllByStatus lists the actor's own tasks with the given status. The
// scoping to the actor as assignee is the access control here.
func (s *TaskService) ReadAllByStatus(ctx context.Context, actor policy.Actor, status models.Status) ([]models.Task, error) {
	if !status.Valid() {
		return nil, ErrInvalidStatus
	}

	tasks, err := s.tasks.FindAllByStatusAndAssignee(status, actor.Username)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	return tasks, nil
}

// ReadAllByStatusIsNot lists the actor's own tasks whose status differs from
// the given one.
func (s *TaskService) ReadAllByStatusIsNot(ctx context.Context, actor policy.Actor, status models.Status) ([]models.Task, error) {
	if !status.Valid() {
		return nil, ErrInvalidStatus
	}

	tasks, err := s.tasks.FindAllByStatusIsNotAndAssignee(status, actor.Username)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	return tasks, nil
}

// CountsByProject returns the completed/non-completed split for a project.
// Any inaccessible task fails the call.
func (s *TaskService) CountsByProject(ctx context.Context, actor policy.Actor, projectCode string) (TaskCounts, error) {
	tasks, err := s.tasks.FindAllByProjectCode(projectCode)
	if err != nil {
		return TaskCounts{}, fmt.Errorf("failed to list tasks: %w", err)
	}

	var counts TaskCounts
	for _, task := range tasks {
		if err := s.engine.CheckReadAccess(actor, task); err != nil {
			return TaskCounts{}, err
		}
		if task.Status == models.StatusCompleted {
			counts.CompletedTaskCount++
		} else {
			counts.NonCompletedTaskCount++
		}
	}

	return counts, nil
}

// CountNonCompletedByAssignee counts an employee's open workload. Consumed by
// the users service before it retires an employee account.
func (s *TaskService) CountNonCompletedByAssignee(ctx context.Context, assignee string) (int64, error) {
	count, err := s.tasks.CountNonCompletedByAssignee(assignee)
	if err != nil {
		return 0, fmt.Errorf("failed to count tasks: %w", err)
	}
	return count, nil
}

// Update replaces a task's mutable fields. Only the owning manager may call
// it. ID, code, project and manager are preserved from the stored record and
// the assigned date is recomputed when the assignee changes.
func (s *TaskService) Update(ctx context.Context, actor policy.Actor, taskCode string, input UpdateTaskInput) (*models.Task, error) {
	task, err := s.findByCode(taskCode)
	if err != nil {
		return nil, err
	}

	employeeExists, err := s.employees.Exists(ctx, input.AssignedEmployee)
	if err != nil {
		return nil, err
	}
	if !employeeExists {
		return nil, ErrEmployeeNotFound
	}

	if err := s.engine.CheckUpdateAccess(actor, *task); err != nil {
		return nil, err
	}

	// The project code is immutable; re-validate the stored one so a project
	// retired out from under the task still surfaces.
	projectExists, err := s.projects.Exists(ctx, task.ProjectCode)
	if err != nil {
		return nil, err
	}
	if !projectExists {
		return nil, ErrProjectNotFound
	}

	if input.Status != "" {
		if !input.Status.Valid() {
			return nil, ErrInvalidStatus
		}
		task.Status = input.Status
	}

	task.Subject = input.Subject
	task.Detail = input.Detail
	task.AssignedDate = s.engine.ComputeAssignedDate(*task, input.AssignedEmployee, s.today())
	task.AssignedEmployee = input.AssignedEmployee

	if err := s.tasks.Save(task); err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	return task, nil
}

// UpdateStatus replaces a task's status and nothing else. Only the assigned
// employee may call it.
func (s *TaskService) UpdateStatus(ctx context.Context, actor policy.Actor, taskCode string, status models.Status) (*models.Task, error) {
	if !status.Valid() {
		return nil, ErrInvalidStatus
	}

	task, err := s.findByCode(taskCode)
	if err != nil {
		return nil, err
	}

	if err := s.engine.CheckStatusUpdateAccess(actor, *task); err != nil {
		return nil, err
	}

	task.Status = status

	if err := s.tasks.Save(task); err != nil {
		return nil, fmt.Errorf("failed to update task status: %w", err)
	}

	return task, nil
}

// CompleteByProject marks every task of a project COMPLETED. The batch stops
// at the first task the actor may not see; tasks already visited stay
// completed.
func (s *TaskService) CompleteByProject(ctx context.Context, actor policy.Actor, projectCode string) error {
	tasks, err := s.tasks.FindAllByProjectCode(projectCode)
	if err != nil {
		return fmt.Errorf("failed to list tasks: %w", err)
	}

	for i := range tasks {
		task := &tasks[i]
		if err := s.engine.CheckReadAccess(actor, *task); err != nil {
			return err
		}

		task.Status = models.StatusCompleted
		if err := s.tasks.Save(task); err != nil {
			return fmt.Errorf("failed to complete task %s: %w", task.TaskCode, err)
		}
	}

	return nil
}

// Delete soft-deletes a single task. The record stays in storage with the
// code rewritten so the original code becomes reusable.
func (s *TaskService) Delete(ctx context.Context, actor policy.Actor, taskCode string) error {
	task, err := s.findByCode(taskCode)
	if err != nil {
		return err
	}

	if err := s.engine.CheckUpdateAccess(actor, *task); err != nil {
		return err
	}

	task.IsDeleted = true
	task.TaskCode = s.engine.DeletionCode(taskCode, task.ID)

	if err := s.tasks.Save(task); err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}

	return nil
}

// DeleteByProject soft-deletes every task of a project with the same batch
// semantics as CompleteByProject.
func (s *TaskService) DeleteByProject(ctx context.Context, actor policy.Actor, projectCode string) error {
	tasks, err := s.tasks.FindAllByProjectCode(projectCode)
	if err != nil {
		return fmt.Errorf("failed to list tasks: %w", err)
	}

	for i := range tasks {
		task := &tasks[i]
		if err := s.engine.CheckReadAccess(actor, *task); err != nil {
			return err
		}

		task.IsDeleted = true
		task.TaskCode = s.engine.DeletionCode(task.TaskCode, task.ID)
		if err := s.tasks.Save(task); err != nil {
			return fmt.Errorf("failed to delete task %d: %w", task.ID, err)
		}
	}

	return nil
}

func (s *TaskService) findByCode(taskCode string) (*models.Task, error) {
	task, err := s.tasks.FindByCode(taskCode)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}
	return task, nil
}
