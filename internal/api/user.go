package api

import (
	"time"

	"foodmap/internal/model"
)

// swagger:model api.UserResponse
type UserResponse struct {
	ID        int        `json:"id" example:"1"`
	Name      string     `json:"name" example:"Alice"`
	Email     string     `json:"email" example:"alice@example.com"`
	Role      model.Role `json:"role" example:"user"`
	AvatarURL *string    `json:"avatar_url,omitempty" example:"/uploads/avatar/1700000000000-0b1c.jpg"`
	CreatedAt time.Time  `json:"created_at"`
}

func NewUserResponse(u *model.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      u.Role,
		AvatarURL: u.AvatarURL,
		CreatedAt: u.CreatedAt,
	}
}

// swagger:model api.UpdateMeRequest
type UpdateMeRequest struct {
	Name  string `json:"name" form:"name" validate:"required,max=100" example:"Alice"`
	Email string `json:"email" form:"email" validate:"required,email" example:"alice@example.com"`
}

// swagger:model api.UpdatePasswordRequest
type UpdatePasswordRequest struct {
	OldPassword string `json:"old_password" form:"old_password" validate:"required" example:"OldPass123!"`
	NewPassword string `json:"new_password" form:"new_password" validate:"required,min=8,max=72" example:"NewPass456!"`
}

// swagger:model api.RoleRequest
type RoleRequest struct {
	Role model.Role `json:"role" form:"role" validate:"required,oneof=admin user" example:"admin"`
}
