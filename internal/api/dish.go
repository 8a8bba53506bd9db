package api

// DishRequest 新增/修改菜色；價格範圍對應 NUMERIC(10,2) 且必須大於 0
//
// swagger:model api.DishRequest
type DishRequest struct {
	Name        string  `json:"name" form:"name" validate:"required,max=200" example:"Tonkotsu Ramen"`
	Description *string `json:"description" form:"description" validate:"omitempty,max=2000" example:"Rich pork broth"`
	Price       float64 `json:"price" form:"price" validate:"required,gte=0.01,lte=99999999.99" example:"12.5"`
	ImageURL    *string `json:"image_url" form:"image_url" validate:"omitempty,max=2048" example:"https://example.com/tonkotsu.jpg"`
	PhotoCredit *string `json:"photo_credit" form:"photo_credit" validate:"omitempty,max=200" example:"@foodshots"`
}
