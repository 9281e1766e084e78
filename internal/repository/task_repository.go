package repository

import (
	"github.com/yukikurage/project-tracker-api/internal/database"
	"github.com/yukikurage/project-tracker-api/internal/models"
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

// Create creates a new task
func (r *GormTaskRepository) Create(task *models.Task) error {
	return r.db.Create(task).Error
}

// FindByID finds a task by ID within the given scopes. A task outside the
// scopes yields gorm.ErrRecordNotFound, indistinguishable from absence.
func (r *GormTaskRepository) FindByID(id uint64, scopes ...Scope) (*models.Task, error) {
	var task models.Task
	query := r.db.Model(&models.Task{}).Scopes(scopes...)

	if err := query.
		Preload("Project").
		Preload("Project.Owner").
		Preload("Assignee").
		First(&task, "tasks.id = ?", id).Error; err != nil {
		return nil, err
	}

	return &task, nil
}

// List retrieves tasks within the given scopes, with filtering and pagination
func (r *GormTaskRepository) List(filter TaskFilter, scopes ...Scope) ([]models.Task, int64, error) {
	var tasks []models.Task

	query := r.db.Model(&models.Task{}).Scopes(scopes...)

	if filter.ProjectID != nil {
		query = query.Where("tasks.project_id = ?", *filter.ProjectID)
	}
	if filter.Status != nil {
		query = query.Where("tasks.status = ?", *filter.Status)
	}
	if filter.AssigneeID != nil {
		query = query.Where("tasks.assignee_id = ?", *filter.AssigneeID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	listQuery := query.Order("tasks.created_at DESC").
		Scopes(database.Paginate(filter.Page, filter.PageSize))

	if err := listQuery.
		Preload("Project").
		Preload("Project.Owner").
		Preload("Assignee").
		Find(&tasks).Error; err != nil {
		return nil, 0, err
	}

	return tasks, total, nil
}

// Update updates a task
func (r *GormTaskRepository) Update(task *models.Task) error {
	return r.db.Save(task).Error
}

// Delete soft deletes a task
func (r *GormTaskRepository) Delete(id uint64) error {
	return r.db.Delete(&models.Task{}, id).Error
}
