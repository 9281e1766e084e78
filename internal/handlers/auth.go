package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/project-tracker-api/internal/constants"
	"github.com/yukikurage/project-tracker-api/internal/dto"
	apierrors "github.com/yukikurage/project-tracker-api/internal/errors"
	"github.com/yukikurage/project-tracker-api/internal/middleware"
	"github.com/yukikurage/project-tracker-api/internal/models"
	"github.com/yukikurage/project-tracker-api/internal/services"
)

// AuthHandler coordinates registration, token and profile HTTP handlers.
type AuthHandler struct {
	authService  *services.AuthService
	tokenService *services.TokenService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *services.AuthService, tokenService *services.TokenService) *AuthHandler {
	return &AuthHandler{
		authService:  authService,
		tokenService: tokenService,
	}
}

// Register creates a new user account. The account is always created active;
// an is_active field in the payload is ignored.
func (h *AuthHandler) Register(c *gin.Context) {
	type RegisterRequest struct {
		Username  string          `json:"username" binding:"required,min=3,max=150"`
		Password  string          `json:"password" binding:"required"`
		Email     string          `json:"email" binding:"omitempty,email"`
		FirstName string          `json:"first_name"`
		LastName  string          `json:"last_name"`
		Role      models.UserRole `json:"role" binding:"omitempty,oneof=STUDENT TEACHER"`
		BirthDate *time.Time      `json:"birth_date"`
		AvatarURL *string         `json:"avatar_url"`
		IsActive  *bool           `json:"is_active"`
	}

	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	user, err := h.authService.Register(services.RegisterInput{
		Username:  req.Username,
		Password:  req.Password,
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Role:      req.Role,
		BirthDate: req.BirthDate,
		AvatarURL: req.AvatarURL,
	})
	if err != nil {
		respondAuthError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToUserDTO(*user))
}

// ObtainToken authenticates a user and issues an access/refresh token pair.
func (h *AuthHandler) ObtainToken(c *gin.Context) {
	type TokenRequest struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}

	var req TokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	user, err := h.authService.Login(services.LoginInput{
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		respondAuthError(c, err)
		return
	}

	pair, err := h.tokenService.IssuePair(user)
	if err != nil {
		apierrors.InternalError(c, "Failed to issue tokens")
		return
	}

	c.JSON(http.StatusOK, dto.ToTokenResponse(*user, pair.Access, pair.Refresh))
}

// RefreshToken exchanges a refresh token for a new access token.
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	type RefreshRequest struct {
		Refresh string `json:"refresh" binding:"required"`
	}

	var req RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	access, err := h.tokenService.Refresh(req.Refresh)
	if err != nil {
		apierrors.Unauthorized(c, err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{"access": access})
}

// GetCurrentUser returns the authenticated user's profile.
func (h *AuthHandler) GetCurrentUser(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	user, err := h.authService.GetUser(userID)
	if err != nil {
		respondAuthError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToUserDTO(*user))
}

// UpdateProfile applies a partial update to the authenticated user's own
// profile. The target user always comes from the token, never the payload.
func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	type UpdateProfileRequest struct {
		Username  *string    `json:"username" binding:"omitempty,min=3,max=150"`
		Email     *string    `json:"email" binding:"omitempty,email"`
		FirstName *string    `json:"first_name"`
		LastName  *string    `json:"last_name"`
		BirthDate *time.Time `json:"birth_date"`
		AvatarURL *string    `json:"avatar_url"`

		CurrentPassword string `json:"current_password"`
		NewPassword     string `json:"new_password"`
		ConfirmPassword string `json:"confirm_password"`
	}

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	user, err := h.authService.UpdateProfile(userID, services.UpdateProfileInput{
		Username:        req.Username,
		Email:           req.Email,
		FirstName:       req.FirstName,
		LastName:        req.LastName,
		BirthDate:       req.BirthDate,
		AvatarURL:       req.AvatarURL,
		CurrentPassword: req.CurrentPassword,
		NewPassword:     req.NewPassword,
		ConfirmPassword: req.ConfirmPassword,
	})
	if err != nil {
		respondAuthError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToUserDTO(*user))
}

func respondAuthError(c *gin.Context, err error) {
	var validationErr *services.ValidationError
	switch {
	case errors.As(err, &validationErr):
		apierrors.ValidationFailed(c, validationErr.Message, map[string]string{
			validationErr.Field: validationErr.Message,
		})
	case errors.Is(err, services.ErrPasswordTooShort):
		apierrors.BadRequest(c, fmt.Sprintf("Password must be at least %d characters", constants.MinPasswordLength))
	case errors.Is(err, services.ErrUsernameTaken):
		apierrors.Conflict(c, err.Error())
	case errors.Is(err, services.ErrInvalidCredentials):
		apierrors.Unauthorized(c, err.Error())
	case errors.Is(err, services.ErrUserNotFound):
		apierrors.NotFound(c, err.Error())
	case errors.Is(err, services.ErrFailedToHashPassword):
		apierrors.InternalError(c, err.Error())
	default:
		apierrors.InternalError(c, "Internal server error")
	}
}
