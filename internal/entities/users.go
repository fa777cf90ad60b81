package entities

import (
	"time"

	"gorm.io/gorm"
)

type UserRole string

const (
	UserRoleStudent   UserRole = "student"
	UserRoleLibrarian UserRole = "librarian"
)

type User struct {
	ID           uint     `gorm:"primaryKey" json:"id"`
	Email        string   `gorm:"uniqueIndex;size:255" json:"email"`
	Name         string   `gorm:"size:256" json:"name"`
	Role         UserRole `gorm:"size:20;default:'student'" json:"role"`
	StudentID    string   `gorm:"size:50" json:"student_id,omitempty"`
	PasswordHash string   `gorm:"size:255" json:"-"`

	FailedLoginCount int        `gorm:"default:0" json:"-"`
	LockedUntil      *time.Time `json:"-"`
	LastLoginAt      *time.Time `json:"-"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (User) TableName() string {
	return "users"
}
