package api

// swagger:model api.ImageURLRequest
type ImageURLRequest struct {
	URL    string `json:"url" form:"url" validate:"required,url" example:"https://example.com/ramen.jpg"`
	IsMain bool   `json:"is_main" form:"is_main" example:"true"`
}

// swagger:model api.UploadURLRequest
type UploadURLRequest struct {
	URL  string `json:"url" form:"url" validate:"required,url" example:"https://example.com/ramen.jpg"`
	Type string `json:"type" form:"type" validate:"required,oneof=restaurant dish avatar" example:"restaurant"`
}

// swagger:model api.UploadResponse
type UploadResponse struct {
	URL string `json:"url" example:"/uploads/restaurant/1700000000000-3f1e0c.jpg"`
}
