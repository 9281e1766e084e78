package models

import (
	"time"

	"gorm.io/gorm"
)

type UserRole string

const (
	RoleStudent UserRole = "STUDENT"
	RoleTeacher UserRole = "TEACHER"
)

type User struct {
	ID           uint64         `gorm:"primarykey" json:"id"`
	Username     string         `gorm:"type:varchar(150);uniqueIndex;not null" json:"username"`
	Email        string         `gorm:"type:varchar(255)" json:"email"`
	PasswordHash string         `gorm:"type:varchar(255);not null" json:"-"`
	FirstName    string         `gorm:"type:varchar(150)" json:"first_name"`
	LastName     string         `gorm:"type:varchar(150)" json:"last_name"`
	Role         UserRole       `gorm:"type:varchar(20);not null;default:'STUDENT'" json:"role"`
	// No column default: a default on a bool makes GORM drop explicit
	// false values on insert. Registration always sets this.
	IsActive     bool           `gorm:"not null" json:"is_active"`
	IsStaff      bool           `gorm:"not null;default:false" json:"is_staff"`
	IsSuperuser  bool           `gorm:"not null;default:false" json:"is_superuser"`
	AvatarURL    *string        `gorm:"type:varchar(500)" json:"avatar_url"`
	BirthDate    *time.Time     `json:"birth_date"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Projects      []Project `gorm:"foreignKey:OwnerID" json:"-"`
	AssignedTasks []Task    `gorm:"foreignKey:AssigneeID" json:"-"`
}
