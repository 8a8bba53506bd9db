package dishes

import (
	"net/http"

	"foodmap/internal/api"
	"foodmap/internal/apperr"
	"foodmap/internal/database"
	"foodmap/internal/handler"
	"foodmap/internal/imaging"
	"foodmap/internal/model"
	"foodmap/internal/store"
	"foodmap/internal/worker"

	"github.com/labstack/echo/v4"
)

var (
	getRestaurantByID = store.GetRestaurantByID
	listDishes        = store.ListDishes
	getDishByID       = store.GetDishByID
	createDish        = store.CreateDish
	updateDish        = store.UpdateDish
	updateDishImage   = store.UpdateDishImage
	deleteDish        = store.DeleteDish
)

// bind trims the name before validating so a blank name is rejected.
func bind(c echo.Context) (*api.DishRequest, error) {
	var req api.DishRequest
	if err := c.Bind(&req); err != nil {
		return nil, apperr.Wrap(apperr.KindValidation, "invalid request body", err)
	}
	handler.TrimStrings(&req.Name)
	if err := handler.Validate(c, &req); err != nil {
		return nil, err
	}
	return &req, nil
}

// ListHandler 列出餐廳的菜色；餐廳不存在時回傳空列表
// @Summary     List dishes
// @Tags        dishes
// @Produce     json
// @Param       id  path    int true "餐廳 ID"
// @Success     200 {array} model.Dish
// @Router      /restaurants/{id}/dishes [get]
func ListHandler(db database.DB) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := handler.IDParam(c, "id")
		if err != nil {
			return err
		}
		list, err := listDishes(c.Request().Context(), db, id)
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, list)
	}
}

// CreateHandler 在餐廳底下新增菜色
// @Summary     Create dish
// @Tags        admin
// @Accept      json
// @Produce     json
// @Param       id   path     int             true "餐廳 ID"
// @Param       body body     api.DishRequest true "菜色資料"
// @Success     201  {object} model.Dish
// @Failure     400  {object} api.ErrorResponse
// @Failure     404  {object} api.ErrorResponse
// @Security    BearerAuth
// @Router      /admin/restaurants/{id}/dishes [post]
func CreateHandler(db database.DB, images handler.ImageStore) echo.HandlerFunc {
	return func(c echo.Context) error {
		restaurantID, err := handler.IDParam(c, "id")
		if err != nil {
			return err
		}
		req, err := bind(c)
		if err != nil {
			return err
		}
		ctx := c.Request().Context()
		if _, err := getRestaurantByID(ctx, db, restaurantID); err != nil {
			return err
		}

		d, err := createDish(ctx, db, &model.Dish{
			RestaurantID: restaurantID,
			Name:         req.Name,
			Description:  req.Description,
			Price:        req.Price,
			ImageURL:     handler.ResolveImageURL(ctx, images, imaging.KindDish, req.ImageURL),
			PhotoCredit:  req.PhotoCredit,
		})
		if err != nil {
			return err
		}
		return c.JSON(http.StatusCreated, d)
	}
}

// UpdateHandler 修改菜色
// @Summary     Update dish
// @Tags        admin
// @Accept      json
// @Produce     json
// @Param       id   path     int             true "菜色 ID"
// @Param       body body     api.DishRequest true "菜色資料"
// @Success     200  {object} model.Dish
// @Failure     400  {object} api.ErrorResponse
// @Failure     404  {object} api.ErrorResponse
// @Security    BearerAuth
// @Router      /admin/dishes/{id} [put]
func UpdateHandler(db database.DB, images handler.ImageStore, pool worker.Pool) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := handler.IDParam(c, "id")
		if err != nil {
			return err
		}
		req, err := bind(c)
		if err != nil {
			return err
		}
		ctx := c.Request().Context()
		current, err := getDishByID(ctx, db, id)
		if err != nil {
			return err
		}

		d, err := updateDish(ctx, db, &model.Dish{
			ID:           id,
			RestaurantID: current.RestaurantID,
			Name:         req.Name,
			Description:  req.Description,
			Price:        req.Price,
			ImageURL:     handler.ResolveImageURL(ctx, images, imaging.KindDish, req.ImageURL),
			PhotoCredit:  req.PhotoCredit,
		})
		if err != nil {
			return err
		}
		if current.ImageURL != nil && (d.ImageURL == nil || *d.ImageURL != *current.ImageURL) {
			images.RemoveLater(pool, *current.ImageURL)
		}
		return c.JSON(http.StatusOK, d)
	}
}

// ReplaceImageHandler 替換菜色圖片
// @Summary     Replace dish image
// @Tags        admin
// @Accept      multipart/form-data
// @Produce     json
// @Param       id   path     int  true "菜色 ID"
// @Param       file formData file true "JPEG/PNG/WebP"
// @Success     200  {object} api.UploadResponse
// @Failure     400  {object} api.ErrorResponse
// @Failure     404  {object} api.ErrorResponse
// @Security    BearerAuth
// @Router      /admin/dishes/{id}/image [put]
func ReplaceImageHandler(db database.DB, images handler.ImageStore, pool worker.Pool) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := handler.IDParam(c, "id")
		if err != nil {
			return err
		}
		saved, err := handler.SaveUpload(c, images, imaging.KindDish, "file")
		if err != nil {
			return err
		}
		url := images.Fresh(saved)
		prev, err := updateDishImage(c.Request().Context(), db, id, url)
		if err != nil {
			images.RemoveLater(pool, saved)
			return err
		}
		if prev != nil {
			images.RemoveLater(pool, *prev)
		}
		return c.JSON(http.StatusOK, api.UploadResponse{URL: url})
	}
}

// DeleteHandler 刪除菜色
// @Summary     Delete dish
// @Tags        admin
// @Param       id  path int true "菜色 ID"
// @Success     204 "No Content"
// @Failure     404 {object} api.ErrorResponse
// @Security    BearerAuth
// @Router      /admin/dishes/{id} [delete]
func DeleteHandler(db database.DB, images handler.ImageStore, pool worker.Pool) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := handler.IDParam(c, "id")
		if err != nil {
			return err
		}
		img, err := deleteDish(c.Request().Context(), db, id)
		if err != nil {
			return err
		}
		if img != nil {
			images.RemoveLater(pool, *img)
		}
		return c.NoContent(http.StatusNoContent)
	}
}
