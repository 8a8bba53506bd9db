package store

import (
	"context"
	"fmt"

	"foodmap/internal/database"
	"foodmap/internal/model"

	"github.com/jackc/pgx/v5"
)

const restaurantColumns = `id, name, address, latitude, longitude, cuisine, rating,
	establishment_type, image_url, website, instagram, photo_credit, featured,
	certified_by, certification_date, created_at, updated_at`

func scanRestaurant(row pgx.Row, r *model.Restaurant) error {
	return row.Scan(
		&r.ID,
		&r.Name,
		&r.Address,
		&r.Latitude,
		&r.Longitude,
		&r.Cuisine,
		&r.Rating,
		&r.EstablishmentType,
		&r.ImageURL,
		&r.Website,
		&r.Instagram,
		&r.PhotoCredit,
		&r.Featured,
		&r.CertifiedBy,
		&r.CertificationDate,
		&r.CreatedAt,
		&r.UpdatedAt,
	)
}

func collectRestaurants(op string, rows pgx.Rows) ([]model.Restaurant, error) {
	defer rows.Close()
	list := []model.Restaurant{}
	for rows.Next() {
		var r model.Restaurant
		if err := scanRestaurant(rows, &r); err != nil {
			return nil, classify(op, "restaurant", err)
		}
		list = append(list, r)
	}
	if err := rows.Err(); err != nil {
		return nil, classify(op, "restaurant", err)
	}
	return list, nil
}

// ListRestaurants 依建立時間新到舊分頁；id 作為同時間的次序，確保分頁穩定
func ListRestaurants(ctx context.Context, db database.Querier, p Page) ([]model.Restaurant, error) {
	rows, err := db.Query(ctx,
		`SELECT `+restaurantColumns+`
		 FROM restaurants
		 ORDER BY created_at DESC, id DESC
		 LIMIT $1 OFFSET $2`,
		p.Limit, p.Offset(),
	)
	if err != nil {
		return nil, classify("ListRestaurants", "restaurant", err)
	}
	return collectRestaurants("ListRestaurants", rows)
}

func CountRestaurants(ctx context.Context, db database.Querier) (int, error) {
	var n int
	if err := db.QueryRow(ctx, `SELECT COUNT(*) FROM restaurants`).Scan(&n); err != nil {
		return 0, classify("CountRestaurants", "restaurant", err)
	}
	return n, nil
}

func ListFeaturedRestaurants(ctx context.Context, db database.Querier, limit int) ([]model.Restaurant, error) {
	rows, err := db.Query(ctx,
		`SELECT `+restaurantColumns+`
		 FROM restaurants
		 WHERE featured
		 ORDER BY rating DESC, id DESC
		 LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, classify("ListFeaturedRestaurants", "restaurant", err)
	}
	return collectRestaurants("ListFeaturedRestaurants", rows)
}

func GetRestaurantByID(ctx context.Context, db database.Querier, id int) (*model.Restaurant, error) {
	r := &model.Restaurant{}
	row := db.QueryRow(ctx, `SELECT `+restaurantColumns+` FROM restaurants WHERE id = $1`, id)
	if err := scanRestaurant(row, r); err != nil {
		return nil, classify("GetRestaurantByID", "restaurant", err)
	}
	return r, nil
}

// CreateRestaurant 新增餐廳；有 CertifiedBy 時同時寫入認證時間
func CreateRestaurant(ctx context.Context, db database.Querier, r *model.Restaurant) (*model.Restaurant, error) {
	row := db.QueryRow(ctx,
		`INSERT INTO restaurants (name, address, latitude, longitude, cuisine, rating,
		   establishment_type, image_url, website, instagram, photo_credit, featured,
		   certified_by, certification_date)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13,
		   CASE WHEN $13::text IS NULL THEN NULL ELSE now() END)
		 RETURNING `+restaurantColumns,
		r.Name,
		r.Address,
		r.Latitude,
		r.Longitude,
		r.Cuisine,
		r.Rating,
		r.EstablishmentType,
		r.ImageURL,
		r.Website,
		r.Instagram,
		r.PhotoCredit,
		r.Featured,
		r.CertifiedBy,
	)
	out := &model.Restaurant{}
	if err := scanRestaurant(row, out); err != nil {
		return nil, classify("CreateRestaurant", "restaurant", err)
	}
	return out, nil
}

// UpdateRestaurant 更新可編輯欄位；curator 改變時重設認證時間
func UpdateRestaurant(ctx context.Context, db database.Querier, r *model.Restaurant) (*model.Restaurant, error) {
	row := db.QueryRow(ctx,
		`UPDATE restaurants SET
		   name = $1, address = $2, latitude = $3, longitude = $4, cuisine = $5,
		   rating = $6, establishment_type = $7, image_url = $8, website = $9,
		   instagram = $10, photo_credit = $11, featured = $12,
		   certification_date = CASE
		     WHEN $13::text IS NULL THEN NULL
		     WHEN certified_by IS DISTINCT FROM $13::text THEN now()
		     ELSE certification_date END,
		   certified_by = $13,
		   updated_at = now()
		 WHERE id = $14
		 RETURNING `+restaurantColumns,
		r.Name,
		r.Address,
		r.Latitude,
		r.Longitude,
		r.Cuisine,
		r.Rating,
		r.EstablishmentType,
		r.ImageURL,
		r.Website,
		r.Instagram,
		r.PhotoCredit,
		r.Featured,
		r.CertifiedBy,
		r.ID,
	)
	out := &model.Restaurant{}
	if err := scanRestaurant(row, out); err != nil {
		return nil, classify("UpdateRestaurant", "restaurant", err)
	}
	return out, nil
}

// UpdateRestaurantImage 替換主圖並回傳舊的 URL 供後續清理
func UpdateRestaurantImage(ctx context.Context, db database.Querier, id int, url string) (*string, error) {
	var prev *string
	err := db.QueryRow(ctx,
		`UPDATE restaurants r SET image_url = $1, updated_at = now()
		 FROM (SELECT id, image_url FROM restaurants WHERE id = $2 FOR UPDATE) old
		 WHERE r.id = old.id
		 RETURNING old.image_url`,
		url, id,
	).Scan(&prev)
	if err != nil {
		return nil, classify("UpdateRestaurantImage", "restaurant", err)
	}
	return prev, nil
}

// DeleteResult 刪除餐廳時一併移除的資料數量與待清理的檔案
type DeleteResult struct {
	Dishes int
	Images int
	Assets []string
}

// DeleteRestaurant 在單一交易內刪除餐廳、菜色與圖片，避免中途失敗留下殘缺資料
func DeleteRestaurant(ctx context.Context, db database.DB, id int) (*DeleteResult, error) {
	res := &DeleteResult{}
	err := pgx.BeginFunc(ctx, db, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx,
			`SELECT image_url FROM restaurants WHERE id = $1 AND image_url IS NOT NULL
			 UNION ALL
			 SELECT image_url FROM dishes WHERE restaurant_id = $1 AND image_url IS NOT NULL
			 UNION ALL
			 SELECT url FROM restaurant_images WHERE restaurant_id = $1`,
			id,
		)
		if err != nil {
			return err
		}
		assets, err := pgx.CollectRows(rows, pgx.RowTo[string])
		if err != nil {
			return err
		}
		res.Assets = assets

		tag, err := tx.Exec(ctx, `DELETE FROM dishes WHERE restaurant_id = $1`, id)
		if err != nil {
			return err
		}
		res.Dishes = int(tag.RowsAffected())

		tag, err = tx.Exec(ctx, `DELETE FROM restaurant_images WHERE restaurant_id = $1`, id)
		if err != nil {
			return err
		}
		res.Images = int(tag.RowsAffected())

		tag, err = tx.Exec(ctx, `DELETE FROM restaurants WHERE id = $1`, id)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return pgx.ErrNoRows
		}
		return nil
	})
	if err != nil {
		return nil, classify("DeleteRestaurant", "restaurant", err)
	}
	return res, nil
}

// ClearResult 清空餐廳時各表刪除的筆數與待清理的檔案
type ClearResult struct {
	Restaurants int64
	Dishes      int64
	Images      int64
	Assets      []string
}

// ClearAllRestaurants 刪除所有餐廳及其附屬資料，呼叫端必須先完成確認檢查
func ClearAllRestaurants(ctx context.Context, db database.DB) (*ClearResult, error) {
	res := &ClearResult{}
	err := pgx.BeginFunc(ctx, db, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx,
			`SELECT image_url FROM restaurants WHERE image_url IS NOT NULL
			 UNION ALL
			 SELECT image_url FROM dishes WHERE image_url IS NOT NULL
			 UNION ALL
			 SELECT url FROM restaurant_images`,
		)
		if err != nil {
			return err
		}
		assets, err := pgx.CollectRows(rows, pgx.RowTo[string])
		if err != nil {
			return err
		}
		res.Assets = assets

		steps := []struct {
			sql string
			n   *int64
		}{
			{`DELETE FROM dishes`, &res.Dishes},
			{`DELETE FROM restaurant_images`, &res.Images},
			{`DELETE FROM restaurants`, &res.Restaurants},
		}
		for _, s := range steps {
			tag, err := tx.Exec(ctx, s.sql)
			if err != nil {
				return fmt.Errorf("%s: %w", s.sql, err)
			}
			*s.n = tag.RowsAffected()
		}
		return nil
	})
	if err != nil {
		return nil, classify("ClearAllRestaurants", "restaurant", err)
	}
	return res, nil
}
