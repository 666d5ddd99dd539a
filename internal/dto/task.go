package dto

import (
	"time"

	"github.com/ozpm/task-tracker-api/internal/models"
)

// TaskDTO represents a task in API responses
type TaskDTO struct {
	ID               uint64        `json:"id"`
	TaskCode         string        `json:"task_code"`
	Subject          string        `json:"subject"`
	Detail           string        `json:"detail"`
	ProjectCode      string        `json:"project_code"`
	Status           models.Status `json:"status"`
	AssignedManager  string        `json:"assigned_manager"`
	AssignedEmployee string        `json:"assigned_employee"`
	AssignedDate     string        `json:"assigned_date"`
	CreatedAt        time.Time     `json:"created_at"`
	UpdatedAt        time.Time     `json:"updated_at"`
}

// TaskToDTO converts a task model to its API representation
func TaskToDTO(task models.Task) TaskDTO {
	return TaskDTO{
		ID:               task.ID,
		TaskCode:         task.TaskCode,
		Subject:          task.Subject,
		Detail:           task.Detail,
		ProjectCode:      task.ProjectCode,
		Status:           task.Status,
		AssignedManager:  task.AssignedManager,
		AssignedEmployee: task.AssignedEmployee,
		AssignedDate:     task.AssignedDate.Format("2006-01-02"),
		CreatedAt:        task.CreatedAt,
		UpdatedAt:        task.UpdatedAt,
	}
}

// TasksToDTO converts a slice of task models
func TasksToDTO(tasks []models.Task) []TaskDTO {
	result := make([]TaskDTO, 0, len(tasks))
	for _, task := range tasks {
		result = append(result, TaskToDTO(task))
	}
	return result
}
