package api

// swagger:model api.ContactRequest
type ContactRequest struct {
	Name    string `json:"name" form:"name" validate:"required,max=100" example:"Jo"`
	Email   string `json:"email" form:"email" validate:"required,email" example:"jo@example.com"`
	Subject string `json:"subject" form:"subject" validate:"required,max=200" example:"Hi"`
	Message string `json:"message" form:"message" validate:"required,max=5000" example:"Test"`
}
