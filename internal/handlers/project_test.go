package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"github.com/yukikurage/project-tracker-api/internal/database"
	"github.com/yukikurage/project-tracker-api/internal/models"
	"github.com/yukikurage/project-tracker-api/internal/repository"
	"github.com/yukikurage/project-tracker-api/internal/services"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// ProjectHandlerTestSuite defines the test suite for ProjectHandler
type ProjectHandlerTestSuite struct {
	suite.Suite
	db      *gorm.DB
	handler *ProjectHandler
}

// SetupTest runs before each test
func (suite *ProjectHandlerTestSuite) SetupTest() {
	var err error

	// Create in-memory SQLite database
	suite.db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	suite.Require().NoError(err)

	// Run migrations
	err = suite.db.AutoMigrate(
		&models.User{},
		&models.Project{},
		&models.Task{},
	)
	suite.Require().NoError(err)

	// Set the test DB as the default database
	database.SetDB(suite.db)

	projectRepo := repository.NewProjectRepository(suite.db)
	userRepo := repository.NewUserRepository(suite.db)
	projectService := services.NewProjectService(projectRepo, userRepo)
	suite.handler = NewProjectHandler(projectService)

	// Set Gin to test mode
	gin.SetMode(gin.TestMode)
}

// TearDownTest runs after each test
func (suite *ProjectHandlerTestSuite) TearDownTest() {
	sqlDB, err := suite.db.DB()
	suite.Require().NoError(err)
	sqlDB.Close()
}

// Helper function to create test data
func (suite *ProjectHandlerTestSuite) createTestUser(username string) *models.User {
	user := &models.User{
		Username:     username,
		PasswordHash: "hashedpassword",
		IsActive:     true,
	}
	suite.db.Create(user)
	return user
}

func (suite *ProjectHandlerTestSuite) createTestSuperuser(username string) *models.User {
	user := &models.User{
		Username:     username,
		PasswordHash: "hashedpassword",
		IsActive:     true,
		IsSuperuser:  true,
	}
	suite.db.Create(user)
	return user
}

func (suite *ProjectHandlerTestSuite) createTestProject(name string, ownerID uint64) *models.Project {
	project := &models.Project{
		Name:        name,
		Description: "Test Description",
		OwnerID:     ownerID,
	}
	suite.db.Create(project)
	return project
}

// Helper function to create authenticated context
func (suite *ProjectHandlerTestSuite) createAuthContext(method, url string, body []byte, userID uint64) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, url, bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, url, nil)
	}

	c, _ := gin.CreateTestContext(w)
	c.Request = req
	c.Set("user_id", userID)

	return c, w
}

// TestListProjects_OwnerOnly tests that users only see their own projects
func (suite *ProjectHandlerTestSuite) TestListProjects_OwnerOnly() {
	userA := suite.createTestUser("alice")
	userB := suite.createTestUser("bob")
	suite.createTestProject("Alice's Project", userA.ID)
	suite.createTestProject("Bob's Project", userB.ID)

	c, w := suite.createAuthContext("GET", "/api/projects", nil, userA.ID)

	suite.handler.ListProjects(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(suite.T(), err)
	assert.Contains(suite.T(), response, "projects")
	assert.Contains(suite.T(), response, "pagination")

	projects := response["projects"].([]interface{})
	assert.Len(suite.T(), projects, 1)
	assert.Equal(suite.T(), "Alice's Project", projects[0].(map[string]interface{})["name"])
}

// TestListProjects_Superuser tests that a superuser sees all projects
func (suite *ProjectHandlerTestSuite) TestListProjects_Superuser() {
	admin := suite.createTestSuperuser("admin")
	userA := suite.createTestUser("alice")
	userB := suite.createTestUser("bob")
	suite.createTestProject("Alice's Project", userA.ID)
	suite.createTestProject("Bob's Project", userB.ID)

	c, w := suite.createAuthContext("GET", "/api/projects", nil, admin.ID)

	suite.handler.ListProjects(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(suite.T(), err)
	projects := response["projects"].([]interface{})
	assert.Len(suite.T(), projects, 2)
}

// TestListProjects_Unauthorized tests listing without authentication
func (suite *ProjectHandlerTestSuite) TestListProjects_Unauthorized() {
	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/api/projects", nil)
	c, _ := gin.CreateTestContext(w)
	c.Request = req

	suite.handler.ListProjects(c)

	assert.Equal(suite.T(), http.StatusUnauthorized, w.Code)
}

// TestGetProject_Success tests successful project retrieval by its owner
func (suite *ProjectHandlerTestSuite) TestGetProject_Success() {
	user := suite.createTestUser("alice")
	project := suite.createTestProject("Test Project", user.ID)

	c, w := suite.createAuthContext("GET", "/api/projects/1", nil, user.ID)
	c.Params = gin.Params{{Key: "id", Value: "1"}}

	suite.handler.GetProject(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), float64(project.ID), response["id"])
	assert.Equal(suite.T(), "Test Project", response["name"])
	assert.Equal(suite.T(), float64(user.ID), response["owner_id"])
}

// TestGetProject_OtherOwner tests that someone else's project reads as 404
func (suite *ProjectHandlerTestSuite) TestGetProject_OtherOwner() {
	userA := suite.createTestUser("alice")
	userB := suite.createTestUser("bob")
	suite.createTestProject("Alice's Project", userA.ID)

	c, w := suite.createAuthContext("GET", "/api/projects/1", nil, userB.ID)
	c.Params = gin.Params{{Key: "id", Value: "1"}}

	suite.handler.GetProject(c)

	assert.Equal(suite.T(), http.StatusNotFound, w.Code)
}

// TestGetProject_Superuser tests that a superuser can read any project
func (suite *ProjectHandlerTestSuite) TestGetProject_Superuser() {
	admin := suite.createTestSuperuser("admin")
	user := suite.createTestUser("alice")
	suite.createTestProject("Alice's Project", user.ID)

	c, w := suite.createAuthContext("GET", "/api/projects/1", nil, admin.ID)
	c.Params = gin.Params{{Key: "id", Value: "1"}}

	suite.handler.GetProject(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)
}

// TestCreateProject_Success tests successful project creation
func (suite *ProjectHandlerTestSuite) TestCreateProject_Success() {
	user := suite.createTestUser("alice")

	requestBody := map[string]interface{}{
		"name":        "New Project",
		"description": "Project Description",
	}
	body, _ := json.Marshal(requestBody)

	c, w := suite.createAuthContext("POST", "/api/projects", body, user.ID)

	suite.handler.CreateProject(c)

	assert.Equal(suite.T(), http.StatusCreated, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), "New Project", response["name"])
	assert.Equal(suite.T(), "TODO", response["status"])
	assert.Equal(suite.T(), float64(user.ID), response["owner_id"])
}

// TestCreateProject_OwnerForced tests that the owner always comes from the
// token, whatever the payload says
func (suite *ProjectHandlerTestSuite) TestCreateProject_OwnerForced() {
	user := suite.createTestUser("alice")
	other := suite.createTestUser("bob")

	requestBody := map[string]interface{}{
		"name":     "New Project",
		"owner_id": other.ID,
	}
	body, _ := json.Marshal(requestBody)

	c, w := suite.createAuthContext("POST", "/api/projects", body, user.ID)

	suite.handler.CreateProject(c)

	assert.Equal(suite.T(), http.StatusCreated, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), float64(user.ID), response["owner_id"])
}

// TestCreateProject_DefaultDescription tests the description fallback
func (suite *ProjectHandlerTestSuite) TestCreateProject_DefaultDescription() {
	user := suite.createTestUser("alice")

	requestBody := map[string]interface{}{
		"name": "New Project",
	}
	body, _ := json.Marshal(requestBody)

	c, w := suite.createAuthContext("POST", "/api/projects", body, user.ID)

	suite.handler.CreateProject(c)

	assert.Equal(suite.T(), http.StatusCreated, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), "no description", response["description"])
}

// TestCreateProject_MissingName tests project creation without a name
func (suite *ProjectHandlerTestSuite) TestCreateProject_MissingName() {
	user := suite.createTestUser("alice")

	requestBody := map[string]interface{}{
		"description": "Project Description",
	}
	body, _ := json.Marshal(requestBody)

	c, w := suite.createAuthContext("POST", "/api/projects", body, user.ID)

	suite.handler.CreateProject(c)

	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
}

// TestUpdateProject_Success tests a partial update by the owner
func (suite *ProjectHandlerTestSuite) TestUpdateProject_Success() {
	user := suite.createTestUser("alice")
	suite.createTestProject("Old Name", user.ID)

	requestBody := map[string]interface{}{
		"name":   "Updated Name",
		"status": "IN_PROGRESS",
	}
	body, _ := json.Marshal(requestBody)

	c, w := suite.createAuthContext("PUT", "/api/projects/1", body, user.ID)
	c.Params = gin.Params{{Key: "id", Value: "1"}}

	suite.handler.UpdateProject(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), "Updated Name", response["name"])
	assert.Equal(suite.T(), "IN_PROGRESS", response["status"])
	// Untouched fields survive
	assert.Equal(suite.T(), "Test Description", response["description"])
}

// TestUpdateProject_NullDueDate tests updating due_date to null
func (suite *ProjectHandlerTestSuite) TestUpdateProject_NullDueDate() {
	user := suite.createTestUser("alice")
	project := suite.createTestProject("Project", user.ID)
	dueDate := time.Now().Add(24 * time.Hour)
	project.DueDate = &dueDate
	suite.db.Save(project)

	requestBody := map[string]interface{}{
		"due_date": nil,
	}
	body, _ := json.Marshal(requestBody)

	c, w := suite.createAuthContext("PUT", "/api/projects/1", body, user.ID)
	c.Params = gin.Params{{Key: "id", Value: "1"}}

	suite.handler.UpdateProject(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(suite.T(), err)
	assert.Nil(suite.T(), response["due_date"])
}

// TestUpdateProject_OtherOwner tests that updating someone else's project
// reads as 404 and leaves the record unchanged
func (suite *ProjectHandlerTestSuite) TestUpdateProject_OtherOwner() {
	userA := suite.createTestUser("alice")
	userB := suite.createTestUser("bob")
	suite.createTestProject("Alice's Project", userA.ID)

	requestBody := map[string]interface{}{
		"name": "Hijacked",
	}
	body, _ := json.Marshal(requestBody)

	c, w := suite.createAuthContext("PUT", "/api/projects/1", body, userB.ID)
	c.Params = gin.Params{{Key: "id", Value: "1"}}

	suite.handler.UpdateProject(c)

	assert.Equal(suite.T(), http.StatusNotFound, w.Code)

	var project models.Project
	suite.db.First(&project, 1)
	assert.Equal(suite.T(), "Alice's Project", project.Name)
}

// TestUpdateProject_InvalidStatus tests that an unknown status value is
// rejected and nothing is persisted
func (suite *ProjectHandlerTestSuite) TestUpdateProject_InvalidStatus() {
	user := suite.createTestUser("alice")
	suite.createTestProject("Project", user.ID)

	requestBody := map[string]interface{}{
		"status": "BANANA",
	}
	body, _ := json.Marshal(requestBody)

	c, w := suite.createAuthContext("PUT", "/api/projects/1", body, user.ID)
	c.Params = gin.Params{{Key: "id", Value: "1"}}

	suite.handler.UpdateProject(c)

	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(suite.T(), err)
	details := response["details"].(map[string]interface{})
	assert.Equal(suite.T(), "must be one of: TODO IN_PROGRESS DONE", details["status"])

	var project models.Project
	suite.db.First(&project, 1)
	assert.Equal(suite.T(), models.ProjectStatusTodo, project.Status)
}

// TestUpdateProject_InvalidRequest tests project update with invalid request
func (suite *ProjectHandlerTestSuite) TestUpdateProject_InvalidRequest() {
	user := suite.createTestUser("alice")
	suite.createTestProject("Project", user.ID)

	c, w := suite.createAuthContext("PUT", "/api/projects/1", []byte("invalid json"), user.ID)
	c.Params = gin.Params{{Key: "id", Value: "1"}}

	suite.handler.UpdateProject(c)

	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
}

// TestDeleteProject_Success tests deletion cascading to the project's tasks
func (suite *ProjectHandlerTestSuite) TestDeleteProject_Success() {
	user := suite.createTestUser("alice")
	project := suite.createTestProject("Project to Delete", user.ID)

	task := &models.Task{
		Name:      "Task in Project",
		DueDate:   time.Now().Add(24 * time.Hour),
		ProjectID: project.ID,
	}
	suite.db.Create(task)

	c, w := suite.createAuthContext("DELETE", "/api/projects/1", nil, user.ID)
	c.Params = gin.Params{{Key: "id", Value: "1"}}

	suite.handler.DeleteProject(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), "Project deleted successfully", response["message"])

	// Verify project and its tasks are deleted
	var deletedProject models.Project
	err = suite.db.First(&deletedProject, project.ID).Error
	assert.Error(suite.T(), err)

	var deletedTask models.Task
	err = suite.db.First(&deletedTask, task.ID).Error
	assert.Error(suite.T(), err)
}

// TestDeleteProject_OtherOwner tests that deleting someone else's project
// reads as 404 and the project survives
func (suite *ProjectHandlerTestSuite) TestDeleteProject_OtherOwner() {
	userA := suite.createTestUser("alice")
	userB := suite.createTestUser("bob")
	project := suite.createTestProject("Alice's Project", userA.ID)

	c, w := suite.createAuthContext("DELETE", "/api/projects/1", nil, userB.ID)
	c.Params = gin.Params{{Key: "id", Value: "1"}}

	suite.handler.DeleteProject(c)

	assert.Equal(suite.T(), http.StatusNotFound, w.Code)

	var stillThere models.Project
	err := suite.db.First(&stillThere, project.ID).Error
	assert.NoError(suite.T(), err)
}

// TestDeleteProject_Superuser tests that a superuser can delete any project
func (suite *ProjectHandlerTestSuite) TestDeleteProject_Superuser() {
	admin := suite.createTestSuperuser("admin")
	user := suite.createTestUser("alice")
	project := suite.createTestProject("Alice's Project", user.ID)

	c, w := suite.createAuthContext("DELETE", "/api/projects/1", nil, admin.ID)
	c.Params = gin.Params{{Key: "id", Value: "1"}}

	suite.handler.DeleteProject(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var deletedProject models.Project
	err := suite.db.First(&deletedProject, project.ID).Error
	assert.Error(suite.T(), err)
}

// TestSuite runs the test suite
func TestProjectHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(ProjectHandlerTestSuite))
}
