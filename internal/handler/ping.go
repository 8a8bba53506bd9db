package handler

import (
	"net/http"

	"foodmap/internal/apperr"
	"foodmap/internal/database"
	"foodmap/internal/kv"

	"github.com/labstack/echo/v4"
)

// PingResponse 健康檢查回應模型
// swagger:model PingResponse
type PingResponse struct {
	// 回應訊息
	Message string `json:"message" example:"pong"`
}

// PingHandler 健康檢查
// @Summary     Health Check
// @Description 回傳 pong，並檢查資料庫與 Redis 連線是否正常
// @Tags        health
// @Produce     json
// @Success     200 {object} PingResponse
// @Failure     500 {object} api.ErrorResponse
// @Router      /ping [get]
func PingHandler(db database.DB, store kv.Store) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		if err := db.Ping(ctx); err != nil {
			return apperr.Dependency("database unhealthy", err)
		}
		if err := store.Ping(ctx).Err(); err != nil {
			return apperr.Dependency("redis unhealthy", err)
		}
		return c.JSON(http.StatusOK, PingResponse{Message: "pong"})
	}
}
