package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/yukikurage/project-tracker-api/internal/models"
	"github.com/yukikurage/project-tracker-api/internal/policy"
	"github.com/yukikurage/project-tracker-api/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrTaskNotFound         = errors.New("task not found")
	ErrTaskModifyPermission = errors.New("you do not have permission to modify this task")
	ErrTaskDeletePermission = errors.New("you do not have permission to delete this task")
)

// TaskService handles task business logic. Visibility is the union of tasks
// in projects the actor owns and tasks assigned to the actor; mutation is
// gated on owning the enclosing project (or being superuser).
type TaskService struct {
	taskRepo    repository.TaskRepository
	projectRepo repository.ProjectRepository
	userRepo    repository.UserRepository
}

// NewTaskService creates a new TaskService.
func NewTaskService(taskRepo repository.TaskRepository, projectRepo repository.ProjectRepository, userRepo repository.UserRepository) *TaskService {
	return &TaskService{
		taskRepo:    taskRepo,
		projectRepo: projectRepo,
		userRepo:    userRepo,
	}
}

// ListTasksInput represents filters for listing tasks.
type ListTasksInput struct {
	ProjectID    *uint64
	Status       *models.TaskStatus
	AssignedToMe bool
	Page         int
	PageSize     int
}

// ListTasks returns the tasks visible to the actor.
func (s *TaskService) ListTasks(actorID uint64, input ListTasksInput) ([]models.Task, int64, error) {
	actor, err := s.getActor(actorID)
	if err != nil {
		return nil, 0, err
	}

	filter := repository.TaskFilter{
		ProjectID: input.ProjectID,
		Status:    input.Status,
		Page:      input.Page,
		PageSize:  input.PageSize,
	}
	if input.AssignedToMe {
		filter.AssigneeID = &actorID
	}

	tasks, total, err := s.taskRepo.List(filter, policy.TaskScope(actor))
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list tasks: %w", err)
	}

	return tasks, total, nil
}

// GetTask returns a task if it is within the actor's scope.
func (s *TaskService) GetTask(actorID, taskID uint64) (*models.Task, error) {
	actor, err := s.getActor(actorID)
	if err != nil {
		return nil, err
	}

	task, err := s.taskRepo.FindByID(taskID, policy.TaskScope(actor))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}

	return task, nil
}

// CreateTaskInput represents input for creating a task.
type CreateTaskInput struct {
	Name        string
	Description string
	Status      models.TaskStatus
	DueDate     time.Time
	ProjectID   uint64
	AssigneeID  *uint64
}

// CreateTask creates a task after validating that the actor may use the
// target project and, when an assignee is given, may assign into it.
func (s *TaskService) CreateTask(actorID uint64, input CreateTaskInput) (*models.Task, error) {
	actor, err := s.getActor(actorID)
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(input.Name) == "" {
		return nil, NewValidationError("name", "name is required")
	}
	if input.DueDate.IsZero() {
		return nil, NewValidationError("due_date", "due date is required")
	}

	project, err := s.projectRepo.FindByID(input.ProjectID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewValidationError("project_id", "project does not exist")
		}
		return nil, fmt.Errorf("failed to find project: %w", err)
	}

	if !policy.CanAssignInto(actor, project) {
		return nil, NewValidationError("project_id", "project does not belong to the connected user")
	}

	if input.AssigneeID != nil {
		if err := s.validateAssignee(actor, project, *input.AssigneeID); err != nil {
			return nil, err
		}
	}

	status := input.Status
	if status == "" {
		status = models.TaskStatusTodo
	}

	task := &models.Task{
		Name:        input.Name,
		Description: input.Description,
		Status:      status,
		DueDate:     input.DueDate,
		ProjectID:   input.ProjectID,
		AssigneeID:  input.AssigneeID,
	}

	if err := s.taskRepo.Create(task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	return s.taskRepo.FindByID(task.ID)
}

// UpdateTaskInput represents a partial task update. ClearAssignee removes
// the current assignee; it wins over AssigneeID.
type UpdateTaskInput struct {
	Name          *string
	Description   *string
	Status        *models.TaskStatus
	DueDate       *time.Time
	ProjectID     *uint64
	AssigneeID    *uint64
	ClearAssignee bool
}

// UpdateTask updates a task. Only the owner of the enclosing project or a
// superuser may modify it; project and assignee changes re-run the creation
// validations.
func (s *TaskService) UpdateTask(actorID, taskID uint64, input UpdateTaskInput) (*models.Task, error) {
	actor, err := s.getActor(actorID)
	if err != nil {
		return nil, err
	}

	task, err := s.taskRepo.FindByID(taskID, policy.TaskScope(actor))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}

	if !policy.CanManageTask(actor, task) {
		return nil, ErrTaskModifyPermission
	}

	project := &task.Project
	if input.ProjectID != nil && *input.ProjectID != task.ProjectID {
		project, err = s.projectRepo.FindByID(*input.ProjectID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, NewValidationError("project_id", "project does not exist")
			}
			return nil, fmt.Errorf("failed to find project: %w", err)
		}
		if !policy.CanAssignInto(actor, project) {
			return nil, NewValidationError("project_id", "project does not belong to the connected user")
		}
		task.ProjectID = *input.ProjectID
		task.Project = *project
	}

	if input.ClearAssignee {
		task.AssigneeID = nil
		task.Assignee = nil
	} else if input.AssigneeID != nil {
		if err := s.validateAssignee(actor, project, *input.AssigneeID); err != nil {
			return nil, err
		}
		task.AssigneeID = input.AssigneeID
		task.Assignee = nil
	}

	if input.Name != nil {
		if strings.TrimSpace(*input.Name) == "" {
			return nil, NewValidationError("name", "name cannot be empty")
		}
		task.Name = *input.Name
	}
	if input.Description != nil {
		task.Description = *input.Description
	}
	if input.Status != nil {
		if !input.Status.IsValid() {
			return nil, NewValidationError("status", "must be one of: TODO IN_PROGRESS DONE")
		}
		task.Status = *input.Status
	}
	if input.DueDate != nil {
		task.DueDate = *input.DueDate
	}

	if err := s.taskRepo.Update(task); err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	return s.taskRepo.FindByID(task.ID)
}

// DeleteTask deletes a task if the actor owns the enclosing project or is
// superuser.
func (s *TaskService) DeleteTask(actorID, taskID uint64) error {
	actor, err := s.getActor(actorID)
	if err != nil {
		return err
	}

	task, err := s.taskRepo.FindByID(taskID, policy.TaskScope(actor))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTaskNotFound
		}
		return fmt.Errorf("failed to find task: %w", err)
	}

	if !policy.CanManageTask(actor, task) {
		return ErrTaskDeletePermission
	}

	if err := s.taskRepo.Delete(task.ID); err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}

	return nil
}

// validateAssignee checks that the actor may assign into the project and
// that the assignee exists and is active.
func (s *TaskService) validateAssignee(actor *models.User, project *models.Project, assigneeID uint64) error {
	if !policy.CanAssignInto(actor, project) {
		return NewValidationError("assignee_id", "you cannot assign a task for this project")
	}

	assignee, err := s.userRepo.FindByID(assigneeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return NewValidationError("assignee_id", "assigned user does not exist")
		}
		return fmt.Errorf("failed to find assignee: %w", err)
	}

	if !assignee.IsActive {
		return NewValidationError("assignee_id", "the assigned user must be active")
	}

	return nil
}

func (s *TaskService) getActor(actorID uint64) (*models.User, error) {
	actor, err := s.userRepo.FindByID(actorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to load acting user: %w", err)
	}
	return actor, nil
}
