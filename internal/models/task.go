package models

import (
	"time"
)

type Status string

const (
	StatusOpen       Status = "OPEN"
	StatusInProgress Status = "IN_PROGRESS"
	StatusCompleted  Status = "COMPLETED"
)

// Valid reports whether s is one of the known status values.
func (s Status) Valid() bool {
	switch s {
	case StatusOpen, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

// Task is a unit of work scoped to a project. It is owned by the manager who
// created it and assigned to exactly one employee at a time. Deleted tasks are
// kept in storage with IsDeleted set and their code rewritten, so the original
// code can be reused.
type Task struct {
	ID               uint64    `gorm:"primarykey" json:"id"`
	TaskCode         string    `gorm:"type:varchar(64);uniqueIndex;not null" json:"task_code"`
	Subject          string    `gorm:"type:varchar(255);not null" json:"subject"`
	Detail           string    `gorm:"type:text" json:"detail"`
	ProjectCode      string    `gorm:"type:varchar(64);not null;index" json:"project_code"`
	Status           Status    `gorm:"type:varchar(20);not null;default:'OPEN'" json:"status"`
	AssignedManager  string    `gorm:"type:varchar(255);not null" json:"assigned_manager"`
	AssignedEmployee string    `gorm:"type:varchar(255);not null;index" json:"assigned_employee"`
	AssignedDate     time.Time `json:"assigned_date"`
	IsDeleted        bool      `gorm:"not null;default:false;index" json:"-"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}
