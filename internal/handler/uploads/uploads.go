package uploads

import (
	"net/http"

	"foodmap/internal/api"
	"foodmap/internal/handler"
	"foodmap/internal/imaging"

	"github.com/labstack/echo/v4"
)

// UploadHandler 上傳圖片檔，依 type 存到對應目錄；格式錯誤或處理失敗回傳 400/500
// @Summary     Upload image
// @Tags        admin
// @Accept      multipart/form-data
// @Produce     json
// @Param       file formData file   true "JPEG/PNG/WebP"
// @Param       type formData string true "restaurant | dish | avatar"
// @Success     201  {object} api.UploadResponse
// @Failure     400  {object} api.ErrorResponse
// @Failure     500  {object} api.ErrorResponse
// @Security    BearerAuth
// @Router      /admin/uploads [post]
func UploadHandler(images handler.ImageStore) echo.HandlerFunc {
	return func(c echo.Context) error {
		kind, err := imaging.ParseKind(c.FormValue("type"))
		if err != nil {
			return err
		}
		url, err := handler.SaveUpload(c, images, kind, "file")
		if err != nil {
			return err
		}
		return c.JSON(http.StatusCreated, api.UploadResponse{URL: url})
	}
}

// UploadURLHandler 下載外部圖片；下載或處理失敗時回傳該類型的預設圖
// @Summary     Import image from URL
// @Tags        admin
// @Accept      json
// @Produce     json
// @Param       body body     api.UploadURLRequest true "圖片網址與類型"
// @Success     201  {object} api.UploadResponse
// @Failure     400  {object} api.ErrorResponse
// @Security    BearerAuth
// @Router      /admin/uploads/url [post]
func UploadURLHandler(images handler.ImageStore) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req api.UploadURLRequest
		if err := handler.Bind(c, &req); err != nil {
			return err
		}
		kind, err := imaging.ParseKind(req.Type)
		if err != nil {
			return err
		}
		url := images.Fetch(c.Request().Context(), kind, req.URL)
		return c.JSON(http.StatusCreated, api.UploadResponse{URL: url})
	}
}
