// File: internal/model/restaurant.go
package model

import "time"

// Restaurant 餐廳；CertifiedBy 非空即為經策展認證的餐廳
type Restaurant struct {
	ID                int        `db:"id" json:"id"`
	Name              string     `db:"name" json:"name"`
	Address           string     `db:"address" json:"address"`
	Latitude          float64    `db:"latitude" json:"latitude"`
	Longitude         float64    `db:"longitude" json:"longitude"`
	Cuisine           string     `db:"cuisine" json:"cuisine"`
	Rating            float64    `db:"rating" json:"rating"`
	EstablishmentType string     `db:"establishment_type" json:"establishment_type"`
	ImageURL          *string    `db:"image_url" json:"image_url,omitempty"`
	Website           *string    `db:"website" json:"website,omitempty"`
	Instagram         *string    `db:"instagram" json:"instagram,omitempty"`
	PhotoCredit       *string    `db:"photo_credit" json:"photo_credit,omitempty"`
	Featured          bool       `db:"featured" json:"featured"`
	CertifiedBy       *string    `db:"certified_by" json:"certified_by,omitempty"`
	CertificationDate *time.Time `db:"certification_date" json:"certification_date,omitempty"`
	CreatedAt         time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time  `db:"updated_at" json:"updated_at"`
}

func (r Restaurant) Certified() bool { return r.CertifiedBy != nil }

// Dish belongs to exactly one restaurant and is removed with it.
type Dish struct {
	ID           int       `db:"id" json:"id"`
	RestaurantID int       `db:"restaurant_id" json:"restaurant_id"`
	Name         string    `db:"name" json:"name"`
	Description  *string   `db:"description" json:"description,omitempty"`
	Price        float64   `db:"price" json:"price"`
	ImageURL     *string   `db:"image_url" json:"image_url,omitempty"`
	PhotoCredit  *string   `db:"photo_credit" json:"photo_credit,omitempty"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// RestaurantImage 餐廳相簿；每間餐廳至多一張 IsMain
type RestaurantImage struct {
	ID           int       `db:"id" json:"id"`
	RestaurantID int       `db:"restaurant_id" json:"restaurant_id"`
	URL          string    `db:"url" json:"url"`
	IsMain       bool      `db:"is_main" json:"is_main"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// NearbyPlace is an uncertified restaurant returned by the places provider.
type NearbyPlace struct {
	PlaceID        string  `json:"place_id"`
	Name           string  `json:"name"`
	Address        string  `json:"address"`
	Latitude       float64 `json:"latitude"`
	Longitude      float64 `json:"longitude"`
	Rating         float64 `json:"rating"`
	PhotoReference string  `json:"photo_reference,omitempty"`
	PhotoCredit    string  `json:"photo_credit,omitempty"`
}
