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

// TaskHandler coordinates task HTTP handlers.
type TaskHandler struct {
	taskService *services.TaskService
}

// NewTaskHandler creates a new TaskHandler.
func NewTaskHandler(taskService *services.TaskService) *TaskHandler {
	return &TaskHandler{
		taskService: taskService,
	}
}

// ListTasks returns the tasks visible to the current user: tasks in projects
// they own plus tasks assigned to them.
func (h *TaskHandler) ListTasks(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	params := utils.GetPaginationParams(c)

	input := services.ListTasksInput{
		Page:     params.Page,
		PageSize: params.Limit,
	}
	if projectIDStr := c.Query("project_id"); projectIDStr != "" {
		projectID, err := strconv.ParseUint(projectIDStr, 10, 64)
		if err != nil {
			apierrors.BadRequest(c, "Invalid project_id")
			return
		}
		input.ProjectID = &projectID
	}
	if statusStr := c.Query("status"); statusStr != "" {
		status := models.TaskStatus(statusStr)
		input.Status = &status
	}
	if c.Query("assigned_to_me") == "true" {
		input.AssignedToMe = true
	}

	tasks, total, err := h.taskService.ListTasks(userID, input)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskListResponse(tasks, params, total))
}

// GetTask returns a single task within the user's scope.
func (h *TaskHandler) GetTask(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	taskID, ok := parseIDParam(c)
	if !ok {
		return
	}

	task, err := h.taskService.GetTask(userID, taskID)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*task))
}

// CreateTask creates a task in a project the current user may use.
func (h *TaskHandler) CreateTask(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	type CreateTaskRequest struct {
		Name        string            `json:"name" binding:"required"`
		Description string            `json:"description"`
		Status      models.TaskStatus `json:"status" binding:"omitempty,oneof=TODO IN_PROGRESS DONE"`
		DueDate     time.Time         `json:"due_date" binding:"required"`
		ProjectID   uint64            `json:"project_id" binding:"required"`
		AssigneeID  *uint64           `json:"assignee_id"`
	}

	var req CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	task, err := h.taskService.CreateTask(userID, services.CreateTaskInput{
		Name:        req.Name,
		Description: req.Description,
		Status:      req.Status,
		DueDate:     req.DueDate,
		ProjectID:   req.ProjectID,
		AssigneeID:  req.AssigneeID,
	})
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToTaskDTO(*task))
}

// UpdateTask applies a partial update to a task. Only the owner of the
// enclosing project or a superuser may modify it.
func (h *TaskHandler) UpdateTask(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	taskID, ok := parseIDParam(c)
	if !ok {
		return
	}

	// Parse raw JSON to detect which fields were sent
	var rawReq map[string]any
	if err := c.ShouldBindJSON(&rawReq); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	input := services.UpdateTaskInput{}
	if name, ok := rawReq["name"].(string); ok {
		input.Name = &name
	}
	if description, ok := rawReq["description"].(string); ok {
		input.Description = &description
	}
	if statusStr, ok := rawReq["status"].(string); ok {
		status := models.TaskStatus(statusStr)
		input.Status = &status
	}
	if dueStr, ok := rawReq["due_date"].(string); ok {
		parsed, err := time.Parse(time.RFC3339, dueStr)
		if err != nil {
			apierrors.BadRequest(c, "Invalid due_date format")
			return
		}
		input.DueDate = &parsed
	}
	if rawProject, ok := rawReq["project_id"].(float64); ok {
		projectID := uint64(rawProject)
		input.ProjectID = &projectID
	}
	if rawAssignee, present := rawReq["assignee_id"]; present {
		if rawAssignee == nil {
			input.ClearAssignee = true
		} else if assigneeFloat, ok := rawAssignee.(float64); ok {
			assigneeID := uint64(assigneeFloat)
			input.AssigneeID = &assigneeID
		}
	}

	task, err := h.taskService.UpdateTask(userID, taskID, input)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*task))
}

// DeleteTask deletes a task. Only the owner of the enclosing project or a
// superuser may delete it.
func (h *TaskHandler) DeleteTask(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	taskID, ok := parseIDParam(c)
	if !ok {
		return
	}

	if err := h.taskService.DeleteTask(userID, taskID); err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Task deleted successfully",
	})
}

func respondTaskError(c *gin.Context, err error) {
	var validationErr *services.ValidationError
	switch {
	case errors.As(err, &validationErr):
		apierrors.ValidationFailed(c, validationErr.Message, map[string]string{
			validationErr.Field: validationErr.Message,
		})
	case errors.Is(err, services.ErrTaskNotFound):
		apierrors.NotFound(c, err.Error())
	case errors.Is(err, services.ErrTaskModifyPermission),
		errors.Is(err, services.ErrTaskDeletePermission):
		apierrors.Forbidden(c, err.Error())
	case errors.Is(err, services.ErrUserNotFound):
		apierrors.Unauthorized(c, "Not authenticated")
	default:
		apierrors.InternalError(c, "Internal server error")
	}
}
