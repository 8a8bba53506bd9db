package restaurants

import (
	"context"
	"log"
	"net/http"
	"strconv"

	"foodmap/internal/api"
	"foodmap/internal/apperr"
	"foodmap/internal/database"
	"foodmap/internal/handler"
	"foodmap/internal/imaging"
	"foodmap/internal/model"
	"foodmap/internal/places"
	"foodmap/internal/store"
	"foodmap/internal/worker"

	"github.com/labstack/echo/v4"
)

const featuredLimit = 12

var (
	listRestaurants         = store.ListRestaurants
	countRestaurants        = store.CountRestaurants
	listFeaturedRestaurants = store.ListFeaturedRestaurants
	getRestaurantByID       = store.GetRestaurantByID
	createRestaurant        = store.CreateRestaurant
	updateRestaurant        = store.UpdateRestaurant
	updateRestaurantImage   = store.UpdateRestaurantImage
	deleteRestaurant        = store.DeleteRestaurant
	clearAllRestaurants     = store.ClearAllRestaurants
	listDishes              = store.ListDishes
	listRestaurantImages    = store.ListRestaurantImages
	imageInGallery          = store.ImageInGallery
)

// NearbyFinder 查詢外部地圖服務；*places.Client 實作此介面
type NearbyFinder interface {
	Nearby(ctx context.Context, lat, lng float64, radius int) ([]model.NearbyPlace, error)
}

func toModel(req *api.RestaurantRequest) *model.Restaurant {
	return &model.Restaurant{
		Name:              req.Name,
		Address:           req.Address,
		Latitude:          *req.Latitude,
		Longitude:         *req.Longitude,
		Cuisine:           req.Cuisine,
		Rating:            req.Rating,
		EstablishmentType: req.EstablishmentType,
		ImageURL:          req.ImageURL,
		Website:           req.Website,
		Instagram:         req.Instagram,
		PhotoCredit:       req.PhotoCredit,
		Featured:          req.Featured,
		CertifiedBy:       req.CertifiedBy,
	}
}

func trim(req *api.RestaurantRequest) {
	handler.TrimStrings(&req.Name, &req.Address, &req.Cuisine, &req.EstablishmentType)
}

// ListHandler 分頁列出餐廳，新到舊
// @Summary     List restaurants
// @Tags        restaurants
// @Produce     json
// @Param       page  query    int false "頁碼 (預設 1)"
// @Param       limit query    int false "每頁筆數 1-50 (預設 10)"
// @Success     200   {object} api.PageResponse[model.Restaurant]
// @Failure     400   {object} api.ErrorResponse
// @Router      /restaurants [get]
func ListHandler(db database.DB) echo.HandlerFunc {
	return func(c echo.Context) error {
		p, err := handler.PageParams(c)
		if err != nil {
			return err
		}
		ctx := c.Request().Context()
		list, err := listRestaurants(ctx, db, p)
		if err != nil {
			return err
		}
		total, err := countRestaurants(ctx, db)
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, api.PageResponse[model.Restaurant]{Items: list, Page: p.Number, Limit: p.Limit, Total: total})
	}
}

// FeaturedHandler 列出精選餐廳
// @Summary     Featured restaurants
// @Tags        restaurants
// @Produce     json
// @Success     200 {array} model.Restaurant
// @Router      /restaurants/featured [get]
func FeaturedHandler(db database.DB) echo.HandlerFunc {
	return func(c echo.Context) error {
		list, err := listFeaturedRestaurants(c.Request().Context(), db, featuredLimit)
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, list)
	}
}

// NearbyHandler 由外部地圖服務取得附近未認證的餐廳；服務失敗時回傳空列表
// @Summary     Nearby uncertified restaurants
// @Tags        restaurants
// @Produce     json
// @Param       lat    query    number true  "緯度"
// @Param       lng    query    number true  "經度"
// @Param       radius query    int    false "半徑 (公尺，預設 1500)"
// @Success     200    {array}  model.NearbyPlace
// @Failure     400    {object} api.ErrorResponse
// @Router      /restaurants/nearby [get]
func NearbyHandler(finder NearbyFinder) echo.HandlerFunc {
	return func(c echo.Context) error {
		lat, err := strconv.ParseFloat(c.QueryParam("lat"), 64)
		if err != nil || lat < -90 || lat > 90 {
			return apperr.Validation("invalid lat")
		}
		lng, err := strconv.ParseFloat(c.QueryParam("lng"), 64)
		if err != nil || lng < -180 || lng > 180 {
			return apperr.Validation("invalid lng")
		}
		radius := places.DefaultRadius
		if raw := c.QueryParam("radius"); raw != "" {
			radius, err = strconv.Atoi(raw)
			if err != nil || radius < 1 || radius > places.MaxRadius {
				return apperr.Validation("invalid radius")
			}
		}

		list, err := finder.Nearby(c.Request().Context(), lat, lng, radius)
		if err != nil {
			log.Printf("nearby lookup failed: %v", err)
			list = []model.NearbyPlace{}
		}
		return c.JSON(http.StatusOK, list)
	}
}

// GetHandler 取得餐廳與其菜色、相簿
// @Summary     Get restaurant
// @Tags        restaurants
// @Produce     json
// @Param       id  path     int true "餐廳 ID"
// @Success     200 {object} api.RestaurantDetailResponse
// @Failure     400 {object} api.ErrorResponse
// @Failure     404 {object} api.ErrorResponse
// @Router      /restaurants/{id} [get]
func GetHandler(db database.DB) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := handler.IDParam(c, "id")
		if err != nil {
			return err
		}
		ctx := c.Request().Context()
		r, err := getRestaurantByID(ctx, db, id)
		if err != nil {
			return err
		}
		dishes, err := listDishes(ctx, db, id)
		if err != nil {
			return err
		}
		images, err := listRestaurantImages(ctx, db, id)
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, api.RestaurantDetailResponse{Restaurant: *r, Dishes: dishes, Images: images})
	}
}

// CreateHandler 新增餐廳；外部圖片網址下載失敗時改用預設圖，不會讓新增失敗
// @Summary     Create restaurant
// @Tags        admin
// @Accept      json
// @Produce     json
// @Param       body body     api.RestaurantRequest true "餐廳資料"
// @Success     201  {object} model.Restaurant
// @Failure     400  {object} api.ErrorResponse
// @Failure     401  {object} api.ErrorResponse
// @Failure     403  {object} api.ErrorResponse
// @Security    BearerAuth
// @Router      /admin/restaurants [post]
func CreateHandler(db database.DB, images handler.ImageStore) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req api.RestaurantRequest
		if err := c.Bind(&req); err != nil {
			return apperr.Wrap(apperr.KindValidation, "invalid request body", err)
		}
		trim(&req)
		if err := handler.Validate(c, &req); err != nil {
			return err
		}

		ctx := c.Request().Context()
		r := toModel(&req)
		r.ImageURL = handler.ResolveImageURL(ctx, images, imaging.KindRestaurant, req.ImageURL)

		out, err := createRestaurant(ctx, db, r)
		if err != nil {
			return err
		}
		return c.JSON(http.StatusCreated, out)
	}
}

// UpdateHandler 修改餐廳。multipart 時 data 欄位為 JSON、image 欄位為新圖片；
// 圖片處理失敗會中止整個更新
// @Summary     Update restaurant
// @Tags        admin
// @Accept      json,mpfd
// @Produce     json
// @Param       id    path     int                   true  "餐廳 ID"
// @Param       body  body     api.RestaurantRequest false "餐廳資料 (JSON)"
// @Param       data  formData string                false "餐廳資料 (multipart 時的 JSON)"
// @Param       image formData file                  false "新主圖"
// @Success     200   {object} model.Restaurant
// @Failure     400   {object} api.ErrorResponse
// @Failure     404   {object} api.ErrorResponse
// @Security    BearerAuth
// @Router      /admin/restaurants/{id} [put]
func UpdateHandler(db database.DB, images handler.ImageStore, pool worker.Pool) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := handler.IDParam(c, "id")
		if err != nil {
			return err
		}

		var req api.RestaurantRequest
		multipart := handler.IsMultipart(c)
		if multipart {
			err = handler.DecodeJSONField(c, "data", &req)
		} else if err = c.Bind(&req); err != nil {
			err = apperr.Wrap(apperr.KindValidation, "invalid request body", err)
		}
		if err != nil {
			return err
		}
		trim(&req)
		if err := handler.Validate(c, &req); err != nil {
			return err
		}

		ctx := c.Request().Context()
		current, err := getRestaurantByID(ctx, db, id)
		if err != nil {
			return err
		}

		r := toModel(&req)
		r.ID = id
		var saved string
		if multipart && handler.HasUpload(c, "image") {
			saved, err = handler.SaveUpload(c, images, imaging.KindRestaurant, "image")
			if err != nil {
				return err
			}
			fresh := images.Fresh(saved)
			r.ImageURL = &fresh
		} else if req.ImageURL == nil {
			// 沒帶 image_url 代表不動主圖；要清除需明確送空字串
			r.ImageURL = current.ImageURL
		} else {
			r.ImageURL = handler.ResolveImageURL(ctx, images, imaging.KindRestaurant, req.ImageURL)
		}

		out, err := updateRestaurant(ctx, db, r)
		if err != nil {
			if saved != "" {
				images.RemoveLater(pool, saved)
			}
			return err
		}
		if replaced(current.ImageURL, out.ImageURL) {
			release(ctx, db, images, pool, *current.ImageURL)
		}
		return c.JSON(http.StatusOK, out)
	}
}

func replaced(prev, next *string) bool {
	return prev != nil && (next == nil || *prev != *next)
}

// release 清理被換掉的主圖；主圖若來自相簿，檔案仍由相簿紀錄使用，不能刪
func release(ctx context.Context, db database.DB, images handler.ImageStore, pool worker.Pool, url string) {
	inGallery, err := imageInGallery(ctx, db, url)
	if err != nil {
		log.Printf("image cleanup skipped for %q: %v", url, err)
		return
	}
	if !inGallery {
		images.RemoveLater(pool, url)
	}
}

// ReplaceImageHandler 替換主圖，回傳帶有快取破壞參數的網址
// @Summary     Replace restaurant image
// @Tags        admin
// @Accept      multipart/form-data
// @Produce     json
// @Param       id   path     int  true "餐廳 ID"
// @Param       file formData file true "JPEG/PNG/WebP"
// @Success     200  {object} api.UploadResponse
// @Failure     400  {object} api.ErrorResponse
// @Failure     404  {object} api.ErrorResponse
// @Security    BearerAuth
// @Router      /admin/restaurants/{id}/image [put]
func ReplaceImageHandler(db database.DB, images handler.ImageStore, pool worker.Pool) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := handler.IDParam(c, "id")
		if err != nil {
			return err
		}
		saved, err := handler.SaveUpload(c, images, imaging.KindRestaurant, "file")
		if err != nil {
			return err
		}
		ctx := c.Request().Context()
		url := images.Fresh(saved)
		prev, err := updateRestaurantImage(ctx, db, id, url)
		if err != nil {
			images.RemoveLater(pool, saved)
			return err
		}
		if prev != nil {
			release(ctx, db, images, pool, *prev)
		}
		return c.JSON(http.StatusOK, api.UploadResponse{URL: url})
	}
}

// DeleteHandler 刪除餐廳及其菜色、圖片
// @Summary     Delete restaurant
// @Tags        admin
// @Produce     json
// @Param       id  path     int true "餐廳 ID"
// @Success     200 {object} api.DeleteRestaurantResponse
// @Failure     404 {object} api.ErrorResponse
// @Security    BearerAuth
// @Router      /admin/restaurants/{id} [delete]
func DeleteHandler(db database.DB, images handler.ImageStore, pool worker.Pool) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := handler.IDParam(c, "id")
		if err != nil {
			return err
		}
		res, err := deleteRestaurant(c.Request().Context(), db, id)
		if err != nil {
			return err
		}
		images.RemoveLater(pool, res.Assets...)
		return c.JSON(http.StatusOK, api.DeleteRestaurantResponse{ID: id, Dishes: res.Dishes, Images: res.Images})
	}
}

// ClearHandler 清空所有餐廳。需同時開啟 bulk delete 並帶 X-Confirm-Delete: true
// @Summary     Delete all restaurants
// @Tags        admin
// @Produce     json
// @Param       X-Confirm-Delete header   string true "必須為 true"
// @Success     200              {object} api.ClearRestaurantsResponse
// @Failure     400              {object} api.ErrorResponse
// @Failure     403              {object} api.ErrorResponse
// @Security    BearerAuth
// @Router      /admin/restaurants [delete]
func ClearHandler(db database.DB, images handler.ImageStore, pool worker.Pool, enabled bool) echo.HandlerFunc {
	return func(c echo.Context) error {
		if !enabled {
			return apperr.Forbidden("bulk delete is disabled")
		}
		if !handler.Confirmed(c) {
			return apperr.Validation("confirmation required: set " + handler.HeaderConfirmDelete + ": true")
		}
		res, err := clearAllRestaurants(c.Request().Context(), db)
		if err != nil {
			return err
		}
		images.RemoveLater(pool, res.Assets...)
		log.Printf("bulk delete: removed %d restaurants, %d dishes, %d images", res.Restaurants, res.Dishes, res.Images)
		return c.JSON(http.StatusOK, api.ClearRestaurantsResponse{Restaurants: res.Restaurants, Dishes: res.Dishes, Images: res.Images})
	}
}
