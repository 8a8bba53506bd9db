// File: internal/router/router.go
package router

import (
	"foodmap/internal/database"
	"foodmap/internal/handler"
	"foodmap/internal/handler/auth"
	"foodmap/internal/handler/dishes"
	"foodmap/internal/handler/images"
	"foodmap/internal/handler/messages"
	"foodmap/internal/handler/restaurants"
	"foodmap/internal/handler/uploads"
	"foodmap/internal/handler/users"
	"foodmap/internal/kv"
	"foodmap/internal/middleware"
	"foodmap/internal/service"
	"foodmap/internal/worker"

	"github.com/labstack/echo/v4"
	echoSwagger "github.com/swaggo/echo-swagger"
)

// Deps 路由需要的外部資源，由 cmd/service 在啟動時建立
type Deps struct {
	DB         database.DB
	KV         kv.Store
	Tokens     *service.Tokens
	Images     handler.ImageStore
	Places     restaurants.NearbyFinder
	Pool       worker.Pool
	BulkDelete bool
}

// Setup 註冊所有路由與中介層
func Setup(e *echo.Echo, d Deps) {
	guard := middleware.NewGuard(d.Tokens)
	db := d.DB

	api := e.Group("/api")
	api.GET("/ping", handler.PingHandler(db, d.KV))

	// 登入與令牌
	apiAuth := api.Group("/auth")
	apiAuth.POST("/register", auth.RegisterHandler(db, d.KV, d.Tokens))
	apiAuth.POST("/login", auth.LoginHandler(db, d.KV, d.Tokens))
	apiAuth.POST("/refresh", auth.RefreshHandler(db, d.KV, d.Tokens))
	apiAuth.POST("/logout", auth.LogoutHandler(d.KV, d.Tokens))

	// 公開瀏覽
	apiRestaurants := api.Group("/restaurants")
	apiRestaurants.GET("", restaurants.ListHandler(db))
	apiRestaurants.GET("/featured", restaurants.FeaturedHandler(db))
	apiRestaurants.GET("/nearby", restaurants.NearbyHandler(d.Places))
	apiRestaurants.GET("/:id", restaurants.GetHandler(db))
	apiRestaurants.GET("/:id/dishes", dishes.ListHandler(db))
	apiRestaurants.GET("/:id/images", images.ListHandler(db))

	api.POST("/contact", messages.ContactHandler(db))

	// 當前使用者
	apiUsersMe := api.Group("/users/me", guard.RequireAuth)
	apiUsersMe.GET("", users.GetMeHandler(db))
	apiUsersMe.PUT("", users.UpdateMeHandler(db))
	apiUsersMe.PATCH("/password", users.UpdatePasswordHandler(db))
	apiUsersMe.PUT("/avatar", users.UpdateAvatarHandler(db, d.Images, d.Pool))

	// 管理員專屬
	admin := api.Group("/admin", guard.RequireAdmin)
	admin.POST("/restaurants", restaurants.CreateHandler(db, d.Images))
	admin.DELETE("/restaurants", restaurants.ClearHandler(db, d.Images, d.Pool, d.BulkDelete))
	admin.PUT("/restaurants/:id", restaurants.UpdateHandler(db, d.Images, d.Pool))
	admin.DELETE("/restaurants/:id", restaurants.DeleteHandler(db, d.Images, d.Pool))
	admin.PUT("/restaurants/:id/image", restaurants.ReplaceImageHandler(db, d.Images, d.Pool))

	admin.POST("/restaurants/:id/dishes", dishes.CreateHandler(db, d.Images))
	admin.PUT("/dishes/:id", dishes.UpdateHandler(db, d.Images, d.Pool))
	admin.DELETE("/dishes/:id", dishes.DeleteHandler(db, d.Images, d.Pool))
	admin.PUT("/dishes/:id/image", dishes.ReplaceImageHandler(db, d.Images, d.Pool))

	admin.POST("/restaurants/:id/images", images.AddHandler(db, d.Images, d.Pool))
	admin.DELETE("/images/:id", images.DeleteHandler(db, d.Images, d.Pool))

	admin.POST("/uploads", uploads.UploadHandler(d.Images))
	admin.POST("/uploads/url", uploads.UploadURLHandler(d.Images))

	admin.GET("/messages", messages.ListHandler(db))
	admin.DELETE("/messages", messages.ClearHandler(db))
	admin.PUT("/messages/:id/read", messages.MarkReadHandler(db))
	admin.DELETE("/messages/:id", messages.DeleteHandler(db))

	admin.GET("/users", users.ListUsersHandler(db))
	admin.PUT("/users/:id/role", users.UpdateRoleHandler(db))

	// Swagger UI
	e.GET("/swagger/*", echoSwagger.WrapHandler)
}
