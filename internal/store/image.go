package store

import (
	"context"

	"foodmap/internal/database"
	"foodmap/internal/model"

	"github.com/jackc/pgx/v5"
)

const imageColumns = `id, restaurant_id, url, is_main, created_at`

func scanImage(row pgx.Row, img *model.RestaurantImage) error {
	return row.Scan(&img.ID, &img.RestaurantID, &img.URL, &img.IsMain, &img.CreatedAt)
}

// ListRestaurantImages 主圖排在最前
func ListRestaurantImages(ctx context.Context, db database.Querier, restaurantID int) ([]model.RestaurantImage, error) {
	rows, err := db.Query(ctx,
		`SELECT `+imageColumns+`
		 FROM restaurant_images WHERE restaurant_id = $1
		 ORDER BY is_main DESC, created_at, id`,
		restaurantID,
	)
	if err != nil {
		return nil, classify("ListRestaurantImages", "image", err)
	}
	defer rows.Close()

	list := []model.RestaurantImage{}
	for rows.Next() {
		var img model.RestaurantImage
		if err := scanImage(rows, &img); err != nil {
			return nil, classify("ListRestaurantImages", "image", err)
		}
		list = append(list, img)
	}
	if err := rows.Err(); err != nil {
		return nil, classify("ListRestaurantImages", "image", err)
	}
	return list, nil
}

// AddRestaurantImage 新增圖片。IsMain 時先清除既有主圖旗標，並把 URL 同步到
// restaurants.image_url；「每間餐廳至多一張主圖」由這個交易維持，而非資料庫約束
func AddRestaurantImage(ctx context.Context, db database.DB, img *model.RestaurantImage) (*model.RestaurantImage, error) {
	out := &model.RestaurantImage{}
	err := pgx.BeginFunc(ctx, db, func(tx pgx.Tx) error {
		if img.IsMain {
			if _, err := tx.Exec(ctx,
				`UPDATE restaurant_images SET is_main = false WHERE restaurant_id = $1 AND is_main`,
				img.RestaurantID,
			); err != nil {
				return err
			}
		}

		row := tx.QueryRow(ctx,
			`INSERT INTO restaurant_images (restaurant_id, url, is_main)
			 VALUES ($1, $2, $3)
			 RETURNING `+imageColumns,
			img.RestaurantID, img.URL, img.IsMain,
		)
		if err := scanImage(row, out); err != nil {
			return err
		}

		if img.IsMain {
			if _, err := tx.Exec(ctx,
				`UPDATE restaurants SET image_url = $1, updated_at = now() WHERE id = $2`,
				img.URL, img.RestaurantID,
			); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, classify("AddRestaurantImage", "image", err)
	}
	return out, nil
}

// DeleteRestaurantImage 刪除圖片並回傳被刪除的紀錄
func DeleteRestaurantImage(ctx context.Context, db database.Querier, id int) (*model.RestaurantImage, error) {
	out := &model.RestaurantImage{}
	row := db.QueryRow(ctx, `DELETE FROM restaurant_images WHERE id = $1 RETURNING `+imageColumns, id)
	if err := scanImage(row, out); err != nil {
		return nil, classify("DeleteRestaurantImage", "image", err)
	}
	return out, nil
}

// ImageInGallery 判斷相簿是否仍引用該檔案；比對時忽略 ?v= 之類的查詢參數
func ImageInGallery(ctx context.Context, db database.Querier, url string) (bool, error) {
	var found bool
	err := db.QueryRow(ctx,
		`SELECT EXISTS (
		   SELECT 1 FROM restaurant_images
		   WHERE split_part(url, '?', 1) = split_part($1, '?', 1))`,
		url,
	).Scan(&found)
	if err != nil {
		return false, classify("ImageInGallery", "image", err)
	}
	return found, nil
}
