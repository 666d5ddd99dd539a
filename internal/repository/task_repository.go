package repository

import (
	"github.com/ozpm/task-tracker-api/internal/models"
	"gorm.io/gorm"
)

// GormTaskRepository is a GORM implementation of TaskRepository
type GormTaskRepository struct {
	db *gorm.DB
}

// NewTaskRepository creates a new TaskRepository
func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &GormTaskRepository{db: db}
}

// Create inserts a new task
func (r *GormTaskRepository) Create(task *models.Task) error {
	return r.db.Create(task).Error
}

// FindByCode finds a non-deleted task by its code
func (r *GormTaskRepository) FindByCode(code string) (*models.Task, error) {
	var task models.Task
	if err := r.db.Where("task_code = ? AND is_deleted = ?", code, false).
		First(&task).Error; err != nil {
		return nil, err
	}
	return &task, nil
}

// FindAllByProjectCode lists non-deleted tasks of a project ordered by ID
func (r *GormTaskRepository) FindAllByProjectCode(projectCode string) ([]models.Task, error) {
	var tasks []models.Task
	if err := r.db.Where("project_code = ? AND is_deleted = ?", projectCode, false).
		Order("id ASC").
		Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

// FindAllByStatusAndAssignee lists the employee's non-deleted tasks with the given status
func (r *GormTaskRepository) FindAllByStatusAndAssignee(status models.Status, assignee string) ([]models.Task, error) {
	var tasks []models.Task
	if err := r.db.Where("status = ? AND assigned_employee = ? AND is_deleted = ?", status, assignee, false).
		Order("id ASC").
		Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

// FindAllByStatusIsNotAndAssignee lists the employee's non-deleted tasks whose status differs
func (r *GormTaskRepository) FindAllByStatusIsNotAndAssignee(status models.Status, assignee string) ([]models.Task, error) {
	var tasks []models.Task
	if err := r.db.Where("status <> ? AND assigned_employee = ? AND is_deleted = ?", status, assignee, false).
		Order("id ASC").
		Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

// CountNonCompletedByAssignee counts the employee's non-deleted, non-completed tasks
func (r *GormTaskRepository) CountNonCompletedByAssignee(assignee string) (int64, error) {
	var count int64
	err := r.db.Model(&models.Task{}).
		Where("assigned_employee = ? AND status <> ? AND is_deleted = ?", assignee, models.StatusCompleted, false).
		Count(&count).Error
	return count, err
}

// Save inserts or updates a task by its primary key
func (r *GormTaskRepository) Save(task *models.Task) error {
	return r.db.Save(task).Error
}
