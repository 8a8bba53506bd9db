package api

// swagger:model api.ErrorResponse
type ErrorResponse struct {
	Error   string `json:"error" example:"restaurant not found"`
	Details string `json:"details,omitempty" example:"GetRestaurantByID: no rows in result set"`
}
