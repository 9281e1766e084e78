package repository

import (
	"github.com/yukikurage/project-tracker-api/internal/database"
	"github.com/yukikurage/project-tracker-api/internal/models"
	"gorm.io/gorm"
)

// GormProjectRepository is a GORM implementation of ProjectRepository
type GormProjectRepository struct {
	db *gorm.DB
}

// NewProjectRepository creates a new ProjectRepository
func NewProjectRepository(db *gorm.DB) ProjectRepository {
	return &GormProjectRepository{db: db}
}

// Create creates a new project
func (r *GormProjectRepository) Create(project *models.Project) error {
	return r.db.Create(project).Error
}

// FindByID finds a project by ID within the given scopes. A project outside
// the scopes yields gorm.ErrRecordNotFound, indistinguishable from absence.
func (r *GormProjectRepository) FindByID(id uint64, scopes ...Scope) (*models.Project, error) {
	var project models.Project
	query := r.db.Model(&models.Project{}).Scopes(scopes...)

	if err := query.Preload("Owner").First(&project, id).Error; err != nil {
		return nil, err
	}

	return &project, nil
}

// List retrieves projects within the given scopes, with filtering and pagination
func (r *GormProjectRepository) List(filter ProjectFilter, scopes ...Scope) ([]models.Project, int64, error) {
	var projects []models.Project

	query := r.db.Model(&models.Project{}).Scopes(scopes...)

	if filter.Status != nil {
		query = query.Where("projects.status = ?", *filter.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	listQuery := query.Order("projects.created_at DESC").
		Scopes(database.Paginate(filter.Page, filter.PageSize))

	if err := listQuery.Preload("Owner").Find(&projects).Error; err != nil {
		return nil, 0, err
	}

	return projects, total, nil
}

// Update updates a project
func (r *GormProjectRepository) Update(project *models.Project) error {
	return r.db.Save(project).Error
}

// Delete soft deletes a project and cascades to its tasks
func (r *GormProjectRepository) Delete(id uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("project_id = ?", id).Delete(&models.Task{}).Error; err != nil {
			return err
		}

		return tx.Delete(&models.Project{}, id).Error
	})
}
