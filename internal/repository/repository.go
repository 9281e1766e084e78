package repository

import (
	"github.com/yukikurage/project-tracker-api/internal/models"
	"gorm.io/gorm"
)

// Scope is a composable query restriction, typically produced by the policy
// package. Repositories apply scopes before any filter so out-of-scope rows
// behave exactly like absent rows.
type Scope = func(db *gorm.DB) *gorm.DB

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create creates a new user
	Create(user *models.User) error

	// Update persists changes to an existing user
	Update(user *models.User) error

	// FindByID finds a user by ID
	FindByID(id uint64) (*models.User, error)

	// FindByUsername finds a user by username
	FindByUsername(username string) (*models.User, error)
}

// ProjectFilter holds filtering options for listing projects
type ProjectFilter struct {
	Status   *models.ProjectStatus
	Page     int
	PageSize int
}

// ProjectRepository defines the interface for project data access
type ProjectRepository interface {
	// Create creates a new project
	Create(project *models.Project) error

	// FindByID finds a project by ID within the given scopes
	FindByID(id uint64, scopes ...Scope) (*models.Project, error)

	// List retrieves projects within the given scopes, with filtering and pagination
	List(filter ProjectFilter, scopes ...Scope) ([]models.Project, int64, error)

	// Update updates a project
	Update(project *models.Project) error

	// Delete soft deletes a project and all of its tasks
	Delete(id uint64) error
}

// TaskFilter holds filtering options for listing tasks
type TaskFilter struct {
	ProjectID  *uint64
	Status     *models.TaskStatus
	AssigneeID *uint64
	Page       int
	PageSize   int
}

// TaskRepository defines the interface for task data access
type TaskRepository interface {
	// Create creates a new task
	Create(task *models.Task) error

	// FindByID finds a task by ID within the given scopes, preloading
	// its project and assignee
	FindByID(id uint64, scopes ...Scope) (*models.Task, error)

	// List retrieves tasks within the given scopes, with filtering and pagination
	List(filter TaskFilter, scopes ...Scope) ([]models.Task, int64, error)

	// Update updates a task
	Update(task *models.Task) error

	// Delete soft deletes a task
	Delete(id uint64) error
}
