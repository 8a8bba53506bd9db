package images

import (
	"net/http"
	"strconv"

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
	getRestaurantByID     = store.GetRestaurantByID
	listRestaurantImages  = store.ListRestaurantImages
	addRestaurantImage    = store.AddRestaurantImage
	deleteRestaurantImage = store.DeleteRestaurantImage
)

// ListHandler 列出餐廳相簿，主圖在前
// @Summary     List restaurant images
// @Tags        images
// @Produce     json
// @Param       id  path    int true "餐廳 ID"
// @Success     200 {array} model.RestaurantImage
// @Router      /restaurants/{id}/images [get]
func ListHandler(db database.DB) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := handler.IDParam(c, "id")
		if err != nil {
			return err
		}
		list, err := listRestaurantImages(c.Request().Context(), db, id)
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, list)
	}
}

// source 依 Content-Type 取得圖片：multipart 的 file 欄位，或 JSON 的外部網址
func source(c echo.Context, images handler.ImageStore) (url string, isMain bool, err error) {
	if handler.IsMultipart(c) {
		if raw := c.FormValue("is_main"); raw != "" {
			if isMain, err = strconv.ParseBool(raw); err != nil {
				return "", false, apperr.Validation("invalid is_main")
			}
		}
		url, err = handler.SaveUpload(c, images, imaging.KindRestaurant, "file")
		return url, isMain, err
	}

	var req api.ImageURLRequest
	if err := handler.Bind(c, &req); err != nil {
		return "", false, err
	}
	return images.Fetch(c.Request().Context(), imaging.KindRestaurant, req.URL), req.IsMain, nil
}

// AddHandler 新增相簿圖片；is_main 為 true 時同時成為餐廳主圖
// @Summary     Add restaurant image
// @Tags        admin
// @Accept      json,mpfd
// @Produce     json
// @Param       id      path     int                 true  "餐廳 ID"
// @Param       body    body     api.ImageURLRequest false "外部圖片網址 (JSON)"
// @Param       file    formData file                false "圖片檔 (multipart)"
// @Param       is_main formData bool                false "設為主圖"
// @Success     201     {object} model.RestaurantImage
// @Failure     400     {object} api.ErrorResponse
// @Failure     404     {object} api.ErrorResponse
// @Security    BearerAuth
// @Router      /admin/restaurants/{id}/images [post]
func AddHandler(db database.DB, images handler.ImageStore, pool worker.Pool) echo.HandlerFunc {
	return func(c echo.Context) error {
		restaurantID, err := handler.IDParam(c, "id")
		if err != nil {
			return err
		}
		ctx := c.Request().Context()
		if _, err := getRestaurantByID(ctx, db, restaurantID); err != nil {
			return err
		}

		url, isMain, err := source(c, images)
		if err != nil {
			return err
		}
		img, err := addRestaurantImage(ctx, db, &model.RestaurantImage{
			RestaurantID: restaurantID,
			URL:          url,
			IsMain:       isMain,
		})
		if err != nil {
			images.RemoveLater(pool, url)
			return err
		}
		return c.JSON(http.StatusCreated, img)
	}
}

// DeleteHandler 刪除相簿圖片。主圖的檔案仍被餐廳引用，只刪除紀錄
// @Summary     Delete restaurant image
// @Tags        admin
// @Param       id  path int true "圖片 ID"
// @Success     204 "No Content"
// @Failure     404 {object} api.ErrorResponse
// @Security    BearerAuth
// @Router      /admin/images/{id} [delete]
func DeleteHandler(db database.DB, images handler.ImageStore, pool worker.Pool) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := handler.IDParam(c, "id")
		if err != nil {
			return err
		}
		img, err := deleteRestaurantImage(c.Request().Context(), db, id)
		if err != nil {
			return err
		}
		if !img.IsMain {
			images.RemoveLater(pool, img.URL)
		}
		return c.NoContent(http.StatusNoContent)
	}
}
