// Package policy centralizes the visibility and permission rules applied to
// every project and task operation. Handlers and services never embed
// ownership checks directly; they compose these predicates and query scopes.
package policy

import (
	"gorm.io/gorm"

	"github.com/yukikurage/project-tracker-api/internal/models"
)

// CanViewProject reports whether a user may read a project.
func CanViewProject(user *models.User, project *models.Project) bool {
	return user.IsSuperuser || project.OwnerID == user.ID
}

// CanManageProject reports whether a user may update or delete a project.
// Projects carry no extra gate beyond visibility.
func CanManageProject(user *models.User, project *models.Project) bool {
	return CanViewProject(user, project)
}

// CanViewTask reports whether a user may read a task. A user sees tasks in
// projects they own and tasks assigned to them, even across foreign projects.
// Requires task.Project to be loaded.
func CanViewTask(user *models.User, task *models.Task) bool {
	if CanManageTask(user, task) {
		return true
	}
	return task.AssigneeID != nil && *task.AssigneeID == user.ID
}

// CanManageTask reports whether a user may update or delete a task. Only the
// owning project's owner or a superuser qualifies; being the assignee is not
// enough. Requires task.Project to be loaded.
func CanManageTask(user *models.User, task *models.Task) bool {
	return user.IsSuperuser || task.Project.OwnerID == user.ID
}

// CanAssignInto reports whether a user may set an assignee on tasks of the
// given project.
func CanAssignInto(user *models.User, project *models.Project) bool {
	return user.IsSuperuser || project.OwnerID == user.ID
}

// ProjectScope returns a query scope restricting projects to those the user
// may see. Superusers see everything.
func ProjectScope(user *models.User) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if user.IsSuperuser {
			return db
		}
		return db.Where("projects.owner_id = ?", user.ID)
	}
}

// TaskScope returns a query scope restricting tasks to the union of tasks in
// projects owned by the user and tasks assigned to the user. The union is a
// single OR predicate so assigned tasks surface even when the user does not
// own the enclosing project.
func TaskScope(user *models.User) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if user.IsSuperuser {
			return db
		}
		return db.
			Joins("JOIN projects ON projects.id = tasks.project_id AND projects.deleted_at IS NULL").
			Where("projects.owner_id = ? OR tasks.assignee_id = ?", user.ID, user.ID)
	}
}
