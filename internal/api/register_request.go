package api

// swagger:model api.RegisterRequest
type RegisterRequest struct {
	Name     string `json:"name" form:"name" validate:"required,max=100" example:"Alice"`
	Email    string `json:"email" form:"email" validate:"required,email" example:"alice@example.com"`
	Password string `json:"password" form:"password" validate:"required,min=8,max=72" example:"Secret123!"`
}
