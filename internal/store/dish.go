package store

import (
	"context"

	"foodmap/internal/database"
	"foodmap/internal/model"

	"github.com/jackc/pgx/v5"
)

const dishColumns = `id, restaurant_id, name, description, price::float8, image_url, photo_credit, created_at`

func scanDish(row pgx.Row, d *model.Dish) error {
	return row.Scan(
		&d.ID,
		&d.RestaurantID,
		&d.Name,
		&d.Description,
		&d.Price,
		&d.ImageURL,
		&d.PhotoCredit,
		&d.CreatedAt,
	)
}

// ListDishes 列出餐廳的菜色；餐廳不存在時回傳空列表而非錯誤
func ListDishes(ctx context.Context, db database.Querier, restaurantID int) ([]model.Dish, error) {
	rows, err := db.Query(ctx,
		`SELECT `+dishColumns+`
		 FROM dishes WHERE restaurant_id = $1
		 ORDER BY created_at, id`,
		restaurantID,
	)
	if err != nil {
		return nil, classify("ListDishes", "dish", err)
	}
	defer rows.Close()

	list := []model.Dish{}
	for rows.Next() {
		var d model.Dish
		if err := scanDish(rows, &d); err != nil {
			return nil, classify("ListDishes", "dish", err)
		}
		list = append(list, d)
	}
	if err := rows.Err(); err != nil {
		return nil, classify("ListDishes", "dish", err)
	}
	return list, nil
}

func GetDishByID(ctx context.Context, db database.Querier, id int) (*model.Dish, error) {
	d := &model.Dish{}
	if err := scanDish(db.QueryRow(ctx, `SELECT `+dishColumns+` FROM dishes WHERE id = $1`, id), d); err != nil {
		return nil, classify("GetDishByID", "dish", err)
	}
	return d, nil
}

// CreateDish 新增菜色；餐廳不存在時外鍵錯誤會轉為 NotFound
func CreateDish(ctx context.Context, db database.Querier, d *model.Dish) (*model.Dish, error) {
	row := db.QueryRow(ctx,
		`INSERT INTO dishes (restaurant_id, name, description, price, image_url, photo_credit)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING `+dishColumns,
		d.RestaurantID,
		d.Name,
		d.Description,
		d.Price,
		d.ImageURL,
		d.PhotoCredit,
	)
	out := &model.Dish{}
	if err := scanDish(row, out); err != nil {
		return nil, classify("CreateDish", "dish", err)
	}
	return out, nil
}

func UpdateDish(ctx context.Context, db database.Querier, d *model.Dish) (*model.Dish, error) {
	row := db.QueryRow(ctx,
		`UPDATE dishes SET name = $1, description = $2, price = $3, image_url = $4, photo_credit = $5
		 WHERE id = $6
		 RETURNING `+dishColumns,
		d.Name,
		d.Description,
		d.Price,
		d.ImageURL,
		d.PhotoCredit,
		d.ID,
	)
	out := &model.Dish{}
	if err := scanDish(row, out); err != nil {
		return nil, classify("UpdateDish", "dish", err)
	}
	return out, nil
}

// UpdateDishImage 替換菜色圖片，回傳舊 URL
func UpdateDishImage(ctx context.Context, db database.Querier, id int, url string) (*string, error) {
	var prev *string
	err := db.QueryRow(ctx,
		`UPDATE dishes d SET image_url = $1
		 FROM (SELECT id, image_url FROM dishes WHERE id = $2 FOR UPDATE) old
		 WHERE d.id = old.id
		 RETURNING old.image_url`,
		url, id,
	).Scan(&prev)
	if err != nil {
		return nil, classify("UpdateDishImage", "dish", err)
	}
	return prev, nil
}

// DeleteDish 刪除菜色並回傳其圖片 URL
func DeleteDish(ctx context.Context, db database.Querier, id int) (*string, error) {
	var img *string
	if err := db.QueryRow(ctx, `DELETE FROM dishes WHERE id = $1 RETURNING image_url`, id).Scan(&img); err != nil {
		return nil, classify("DeleteDish", "dish", err)
	}
	return img, nil
}
