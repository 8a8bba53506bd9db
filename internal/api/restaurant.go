package api

import "foodmap/internal/model"

// RestaurantRequest 新增/修改餐廳；multipart 表單時以 form 標籤綁定
//
// swagger:model api.RestaurantRequest
type RestaurantRequest struct {
	Name              string   `json:"name" form:"name" validate:"required,max=200" example:"Sakura Ramen"`
	Address           string   `json:"address" form:"address" validate:"required" example:"1-2-3 Shibuya, Tokyo"`
	Latitude          *float64 `json:"latitude" form:"latitude" validate:"required,latitude" example:"35.6595"`
	Longitude         *float64 `json:"longitude" form:"longitude" validate:"required,longitude" example:"139.7005"`
	Cuisine           string   `json:"cuisine" form:"cuisine" validate:"required,max=100" example:"Japanese"`
	Rating            float64  `json:"rating" form:"rating" validate:"gte=0,lte=5" example:"4.5"`
	EstablishmentType string   `json:"establishment_type" form:"establishment_type" validate:"max=100" example:"Restaurant"`
	ImageURL          *string  `json:"image_url" form:"image_url" validate:"omitempty,max=2048" example:"https://example.com/ramen.jpg"`
	Website           *string  `json:"website" form:"website" validate:"omitempty,url" example:"https://sakura.example.com"`
	Instagram         *string  `json:"instagram" form:"instagram" validate:"omitempty,max=100" example:"@sakura_ramen"`
	PhotoCredit       *string  `json:"photo_credit" form:"photo_credit" validate:"omitempty,max=200" example:"@foodshots"`
	Featured          bool     `json:"featured" form:"featured" example:"false"`
	CertifiedBy       *string  `json:"certified_by" form:"certified_by" validate:"omitempty,max=100" example:"curator-jo"`
}

// swagger:model api.RestaurantDetailResponse
type RestaurantDetailResponse struct {
	model.Restaurant
	Dishes []model.Dish            `json:"dishes"`
	Images []model.RestaurantImage `json:"images"`
}

// swagger:model api.DeleteRestaurantResponse
type DeleteRestaurantResponse struct {
	ID     int `json:"id" example:"7"`
	Dishes int `json:"dishes" example:"3"`
	Images int `json:"images" example:"2"`
}

// swagger:model api.ClearRestaurantsResponse
type ClearRestaurantsResponse struct {
	Restaurants int64 `json:"restaurants" example:"12"`
	Dishes      int64 `json:"dishes" example:"40"`
	Images      int64 `json:"images" example:"18"`
}
