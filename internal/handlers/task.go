package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ozpm/task-tracker-api/internal/clients"
	"github.com/ozpm/task-tracker-api/internal/dto"
	apierrors "github.com/ozpm/task-tracker-api/internal/errors"
	"github.com/ozpm/task-tracker-api/internal/middleware"
	"github.com/ozpm/task-tracker-api/internal/models"
	"github.com/ozpm/task-tracker-api/internal/policy"
	"github.com/ozpm/task-tracker-api/internal/services"
	"github.com/ozpm/task-tracker-api/internal/utils"
)

type TaskHandler struct {
	service *services.TaskService
}

func NewTaskHandler(service *services.TaskService) *TaskHandler {
	return &TaskHandler{service: service}
}

// respondServiceError maps lifecycle service errors onto the API envelope.
func respondServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrTaskNotFound):
		apierrors.NotFound(c, "Task does not exist")
	case errors.Is(err, services.ErrTaskAlreadyExists):
		apierrors.Conflict(c, "Task already exists")
	case errors.Is(err, services.ErrProjectNotFound):
		apierrors.UnprocessableEntity(c, apierrors.ErrCodeProjectNotFound, "Project does not exist")
	case errors.Is(err, services.ErrEmployeeNotFound):
		apierrors.UnprocessableEntity(c, apierrors.ErrCodeEmployeeNotFound, "Assigned employee does not exist")
	case errors.Is(err, services.ErrInvalidStatus):
		apierrors.BadRequest(c, "Unknown task status")
	case errors.Is(err, clients.ErrUnavailable):
		apierrors.ServiceUnavailable(c, "")
	case errors.Is(err, policy.ErrAccessDenied):
		apierrors.Forbidden(c, err.Error())
	default:
		apierrors.InternalError(c, "")
	}
}

// CreateTask registers a new task for a project
func (h *TaskHandler) CreateTask(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}

	type CreateTaskRequest struct {
		TaskCode         string `json:"task_code" binding:"required"`
		Subject          string `json:"subject" binding:"required"`
		Detail           string `json:"detail"`
		ProjectCode      string `json:"project_code" binding:"required"`
		AssignedEmployee string `json:"assigned_employee" binding:"required"`
	}

	var req CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, err.Error())
		return
	}

	task, err := h.service.Create(c.Request.Context(), actor, services.CreateTaskInput{
		TaskCode:         req.TaskCode,
		Subject:          req.Subject,
		Detail:           req.Detail,
		ProjectCode:      req.ProjectCode,
		AssignedEmployee: req.AssignedEmployee,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.TaskToDTO(*task))
}

// GetTask returns a single task by code
func (h *TaskHandler) GetTask(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}

	task, err := h.service.ReadByCode(c.Request.Context(), actor, c.Param("code"))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.TaskToDTO(*task))
}

// ListTasksByProject lists a project's tasks
func (h *TaskHandler) ListTasksByProject(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}

	tasks, err := h.service.ReadAllByProject(c.Request.Context(), actor, c.Param("projectCode"))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	params := utils.GetPaginationParams(c)
	page, total := paginate(tasks, params)

	c.JSON(http.StatusOK, gin.H{
		"tasks": dto.TasksToDTO(page),
		"pagination": utils.PaginationResponse{
			Page:  params.Page,
			Limit: params.Limit,
			Total: total,
		},
	})
}

// ListTasksByStatus lists the caller's own tasks with the given status, or
// with any other status when negate=true
func (h *TaskHandler) ListTasksByStatus(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}

	status := models.Status(c.Param("status"))
	negate := c.Query("negate") == "true"

	var tasks []models.Task
	var err error
	if negate {
		tasks, err = h.service.ReadAllByStatusIsNot(c.Request.Context(), actor, status)
	} else {
		tasks, err = h.service.ReadAllByStatus(c.Request.Context(), actor, status)
	}
	if err != nil {
		respondServiceError(c, err)
		return
	}

	params := utils.GetPaginationParams(c)
	page, total := paginate(tasks, params)

	c.JSON(http.StatusOK, gin.H{
		"tasks": dto.TasksToDTO(page),
		"pagination": utils.PaginationResponse{
			Page:  params.Page,
			Limit: params.Limit,
			Total: total,
		},
	})
}

// GetProjectCounts returns the completed/non-completed split for a project
func (h *TaskHandler) GetProjectCounts(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}

	counts, err := h.service.CountsByProject(c.Request.Context(), actor, c.Param("projectCode"))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, counts)
}

// CountNonCompletedByEmployee returns an employee's open workload. Consumed
// by the users service.
func (h *TaskHandler) CountNonCompletedByEmployee(c *gin.Context) {
	_, ok := middleware.GetActor(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}

	count, err := h.service.CountNonCompletedByAssignee(c.Request.Context(), c.Param("username"))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"count": count})
}

// UpdateTask replaces a task's mutable fields
func (h *TaskHandler) UpdateTask(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}

	type UpdateTaskRequest struct {
		Subject          string        `json:"subject" binding:"required"`
		Detail           string        `json:"detail"`
		Status           models.Status `json:"status"`
		AssignedEmployee string        `json:"assigned_employee" binding:"required"`
	}

	var req UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, err.Error())
		return
	}

	task, err := h.service.Update(c.Request.Context(), actor, c.Param("code"), services.UpdateTaskInput{
		Subject:          req.Subject,
		Detail:           req.Detail,
		Status:           req.Status,
		AssignedEmployee: req.AssignedEmployee,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.TaskToDTO(*task))
}

// UpdateTaskStatus replaces a task's status only
func (h *TaskHandler) UpdateTaskStatus(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}

	type UpdateStatusRequest struct {
		Status models.Status `json:"status" binding:"required"`
	}

	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, err.Error())
		return
	}

	task, err := h.service.UpdateStatus(c.Request.Context(), actor, c.Param("code"), req.Status)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.TaskToDTO(*task))
}

// CompleteProjectTasks marks every task of a project COMPLETED
func (h *TaskHandler) CompleteProjectTasks(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}

	if err := h.service.CompleteByProject(c.Request.Context(), actor, c.Param("projectCode")); err != nil {
		respondServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// DeleteTask soft-deletes a single task
func (h *TaskHandler) DeleteTask(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}

	if err := h.service.Delete(c.Request.Context(), actor, c.Param("code")); err != nil {
		respondServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// DeleteProjectTasks soft-deletes every task of a project
func (h *TaskHandler) DeleteProjectTasks(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}

	if err := h.service.DeleteByProject(c.Request.Context(), actor, c.Param("projectCode")); err != nil {
		respondServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// paginate slices the in-memory task list; the repository contract returns
// full result sets.
func paginate(tasks []models.Task, params utils.PaginationParams) ([]models.Task, int) {
	total := len(tasks)
	if params.Offset >= total {
		return []models.Task{}, total
	}
	end := params.Offset + params.Limit
	if end > total {
		end = total
	}
	return tasks[params.Offset:end], total
}
