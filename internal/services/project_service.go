package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/yukikurage/project-tracker-api/internal/constants"
	"github.com/yukikurage/project-tracker-api/internal/models"
	"github.com/yukikurage/project-tracker-api/internal/policy"
	"github.com/yukikurage/project-tracker-api/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrProjectNotFound    = errors.New("project not found")
	ErrProjectNameMissing = errors.New("project name cannot be empty")
)

// ProjectService provides business logic for project operations. Every
// operation runs through the caller's visibility scope, so projects outside
// it behave as if they do not exist.
type ProjectService struct {
	projectRepo repository.ProjectRepository
	userRepo    repository.UserRepository
}

// NewProjectService creates a new ProjectService.
func NewProjectService(projectRepo repository.ProjectRepository, userRepo repository.UserRepository) *ProjectService {
	return &ProjectService{
		projectRepo: projectRepo,
		userRepo:    userRepo,
	}
}

// ListProjectsInput represents filters for listing projects.
type ListProjectsInput struct {
	Status   *models.ProjectStatus
	Page     int
	PageSize int
}

// ListProjects returns the projects visible to the actor.
func (s *ProjectService) ListProjects(actorID uint64, input ListProjectsInput) ([]models.Project, int64, error) {
	actor, err := s.GetActor(actorID)
	if err != nil {
		return nil, 0, err
	}

	filter := repository.ProjectFilter{
		Status:   input.Status,
		Page:     input.Page,
		PageSize: input.PageSize,
	}

	projects, total, err := s.projectRepo.List(filter, policy.ProjectScope(actor))
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list projects: %w", err)
	}

	return projects, total, nil
}

// GetProject returns a project if it is within the actor's scope.
func (s *ProjectService) GetProject(actorID, projectID uint64) (*models.Project, error) {
	actor, err := s.GetActor(actorID)
	if err != nil {
		return nil, err
	}

	project, err := s.projectRepo.FindByID(projectID, policy.ProjectScope(actor))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to find project: %w", err)
	}

	return project, nil
}

// CreateProjectInput represents input for creating a project. There is no
// owner field: the owner is always the actor.
type CreateProjectInput struct {
	Name        string
	Description string
	Status      models.ProjectStatus
	DueDate     *time.Time
}

// CreateProject creates a project owned by the actor.
func (s *ProjectService) CreateProject(actorID uint64, input CreateProjectInput) (*models.Project, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, ErrProjectNameMissing
	}

	if _, err := s.GetActor(actorID); err != nil {
		return nil, err
	}

	description := input.Description
	if description == "" {
		description = constants.DefaultProjectDescription
	}

	status := input.Status
	if status == "" {
		status = models.ProjectStatusTodo
	}

	project := &models.Project{
		Name:        input.Name,
		Description: description,
		Status:      status,
		DueDate:     input.DueDate,
		OwnerID:     actorID,
	}

	if err := s.projectRepo.Create(project); err != nil {
		return nil, fmt.Errorf("failed to create project: %w", err)
	}

	return s.projectRepo.FindByID(project.ID)
}

// UpdateProjectInput represents a partial project update.
type UpdateProjectInput struct {
	Name         *string
	Description  *string
	Status       *models.ProjectStatus
	DueDate      *time.Time
	ClearDueDate bool
}

// UpdateProject updates a project within the actor's scope.
func (s *ProjectService) UpdateProject(actorID, projectID uint64, input UpdateProjectInput) (*models.Project, error) {
	actor, err := s.GetActor(actorID)
	if err != nil {
		return nil, err
	}

	project, err := s.projectRepo.FindByID(projectID, policy.ProjectScope(actor))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to find project: %w", err)
	}

	if input.Name != nil {
		if strings.TrimSpace(*input.Name) == "" {
			return nil, ErrProjectNameMissing
		}
		project.Name = *input.Name
	}
	if input.Description != nil {
		project.Description = *input.Description
	}
	if input.Status != nil {
		if !input.Status.IsValid() {
			return nil, NewValidationError("status", "must be one of: TODO IN_PROGRESS DONE")
		}
		project.Status = *input.Status
	}
	if input.ClearDueDate {
		project.DueDate = nil
	} else if input.DueDate != nil {
		project.DueDate = input.DueDate
	}

	if err := s.projectRepo.Update(project); err != nil {
		return nil, fmt.Errorf("failed to update project: %w", err)
	}

	return s.projectRepo.FindByID(project.ID)
}

// DeleteProject deletes a project within the actor's scope along with its
// tasks.
func (s *ProjectService) DeleteProject(actorID, projectID uint64) error {
	actor, err := s.GetActor(actorID)
	if err != nil {
		return err
	}

	if _, err := s.projectRepo.FindByID(projectID, policy.ProjectScope(actor)); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProjectNotFound
		}
		return fmt.Errorf("failed to find project: %w", err)
	}

	if err := s.projectRepo.Delete(projectID); err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}

	return nil
}

// GetActor loads the acting user.
func (s *ProjectService) GetActor(actorID uint64) (*models.User, error) {
	actor, err := s.userRepo.FindByID(actorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to load acting user: %w", err)
	}
	return actor, nil
}
