package api

// PageResponse 分頁列表回應
type PageResponse[T any] struct {
	Items []T `json:"items"`
	Page  int `json:"page" example:"1"`
	Limit int `json:"limit" example:"10"`
	Total int `json:"total" example:"42"`
}
