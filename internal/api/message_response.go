package api

// swagger:model api.MessageResponse
type MessageResponse struct {
	Message string `json:"message" example:"deleted"`
}

// swagger:model api.DeleteCountResponse
type DeleteCountResponse struct {
	Deleted int64 `json:"deleted" example:"3"`
}
