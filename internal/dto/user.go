package dto

import (
	"time"

	"github.com/yukikurage/project-tracker-api/internal/models"
)

// UserDTO represents a user in API responses
type UserDTO struct {
	ID        uint64          `json:"id"`
	Username  string          `json:"username"`
	Email     string          `json:"email"`
	FirstName string          `json:"first_name"`
	LastName  string          `json:"last_name"`
	Role      models.UserRole `json:"role"`
	IsActive  bool            `json:"is_active"`
	AvatarURL *string         `json:"avatar_url"`
	BirthDate *time.Time      `json:"birth_date"`
}

// TokenResponse is returned when obtaining a token pair. The claim fields
// are repeated at the top level alongside the tokens.
type TokenResponse struct {
	Access    string          `json:"access"`
	Refresh   string          `json:"refresh"`
	Role      models.UserRole `json:"role"`
	Username  string          `json:"username"`
	Email     string          `json:"email"`
	LastName  string          `json:"last_name"`
	FirstName string          `json:"first_name"`
}

// ToUserDTO converts a User model to UserDTO
func ToUserDTO(user models.User) UserDTO {
	return UserDTO{
		ID:        user.ID,
		Username:  user.Username,
		Email:     user.Email,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Role:      user.Role,
		IsActive:  user.IsActive,
		AvatarURL: user.AvatarURL,
		BirthDate: user.BirthDate,
	}
}

// ToTokenResponse builds the obtain-token response for a user.
func ToTokenResponse(user models.User, access, refresh string) TokenResponse {
	return TokenResponse{
		Access:    access,
		Refresh:   refresh,
		Role:      user.Role,
		Username:  user.Username,
		Email:     user.Email,
		LastName:  user.LastName,
		FirstName: user.FirstName,
	}
}
