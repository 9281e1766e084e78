package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/project-tracker-api/internal/dto"
	apierrors "github.com/yukikurage/project-tracker-api/internal/errors"
	"github.com/yukikurage/project-tracker-api/internal/middleware"
	"github.com/yukikurage/project-tracker-api/internal/models"
	"github.com/yukikurage/project-tracker-api/internal/services"
	"github.com/yukikurage/project-tracker-api/internal/utils"
)

// ProjectHandler coordinates project HTTP handlers.
type ProjectHandler struct {
	projectService *services.ProjectService
}

// NewProjectHandler creates a new ProjectHandler.
func NewProjectHandler(projectService *services.ProjectService) *ProjectHandler {
	return &ProjectHandler{
		projectService: projectService,
	}
}

// ListProjects returns the projects visible to the current user.
func (h *ProjectHandler) ListProjects(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	params := utils.GetPaginationParams(c)

	input := services.ListProjectsInput{
		Page:     params.Page,
		PageSize: params.Limit,
	}
	if statusStr := c.Query("status"); statusStr != "" {
		status := models.ProjectStatus(statusStr)
		input.Status = &status
	}

	projects, total, err := h.projectService.ListProjects(userID, input)
	if err != nil {
		respondProjectError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToProjectListResponse(projects, params, total))
}

// GetProject returns a single project within the user's scope.
func (h *ProjectHandler) GetProject(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	projectID, ok := parseIDParam(c)
	if !ok {
		return
	}

	project, err := h.projectService.GetProject(userID, projectID)
	if err != nil {
		respondProjectError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToProjectDTO(*project))
}

// CreateProject creates a project owned by the current user. Any owner field
// in the payload is ignored.
func (h *ProjectHandler) CreateProject(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	type CreateProjectRequest struct {
		Name        string               `json:"name" binding:"required"`
		Description string               `json:"description"`
		Status      models.ProjectStatus `json:"status" binding:"omitempty,oneof=TODO IN_PROGRESS DONE"`
		DueDate     *time.Time           `json:"due_date"`
	}

	var req CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	project, err := h.projectService.CreateProject(userID, services.CreateProjectInput{
		Name:        req.Name,
		Description: req.Description,
		Status:      req.Status,
		DueDate:     req.DueDate,
	})
	if err != nil {
		respondProjectError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToProjectDTO(*project))
}

// UpdateProject applies a partial update to a project within the user's
// scope.
func (h *ProjectHandler) UpdateProject(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	projectID, ok := parseIDParam(c)
	if !ok {
		return
	}

	// Parse raw JSON to detect which fields were sent
	var rawReq map[string]any
	if err := c.ShouldBindJSON(&rawReq); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	input := services.UpdateProjectInput{}
	if name, ok := rawReq["name"].(string); ok {
		input.Name = &name
	}
	if description, ok := rawReq["description"].(string); ok {
		input.Description = &description
	}
	if statusStr, ok := rawReq["status"].(string); ok {
		status := models.ProjectStatus(statusStr)
		input.Status = &status
	}
	if rawDue, present := rawReq["due_date"]; present {
		if rawDue == nil {
			input.ClearDueDate = true
		} else if dueStr, ok := rawDue.(string); ok {
			parsed, err := time.Parse(time.RFC3339, dueStr)
			if err != nil {
				apierrors.BadRequest(c, "Invalid due_date format")
				return
			}
			input.DueDate = &parsed
		}
	}

	project, err := h.projectService.UpdateProject(userID, projectID, input)
	if err != nil {
		respondProjectError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToProjectDTO(*project))
}

// DeleteProject deletes a project within the user's scope, cascading to its
// tasks.
func (h *ProjectHandler) DeleteProject(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	projectID, ok := parseIDParam(c)
	if !ok {
		return
	}

	if err := h.projectService.DeleteProject(userID, projectID); err != nil {
		respondProjectError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Project deleted successfully",
	})
}

func parseIDParam(c *gin.Context) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid ID")
		return 0, false
	}
	return id, true
}

func respondBindingError(c *gin.Context, err error) {
	apierrors.ValidationFailed(c, "Invalid request body", utils.FormatBindingErrors(err))
}

func respondProjectError(c *gin.Context, err error) {
	var validationErr *services.ValidationError
	switch {
	case errors.As(err, &validationErr):
		apierrors.ValidationFailed(c, validationErr.Message, map[string]string{
			validationErr.Field: validationErr.Message,
		})
	case errors.Is(err, services.ErrProjectNotFound):
		apierrors.NotFound(c, err.Error())
	case errors.Is(err, services.ErrProjectNameMissing):
		apierrors.BadRequest(c, err.Error())
	case errors.Is(err, services.ErrUserNotFound):
		apierrors.Unauthorized(c, "Not authenticated")
	default:
		apierrors.InternalError(c, "Internal server error")
	}
}
