// @title        Foodmap API
// @version      1.0
// @description  餐廳地圖後端 API 文件
// @host         localhost:8080
// @BasePath     /api
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"foodmap/internal/apperr"
	"foodmap/internal/config"
	"foodmap/internal/database"
	"foodmap/internal/handler"
	"foodmap/internal/imaging"
	"foodmap/internal/kv"
	"foodmap/internal/places"
	"foodmap/internal/router"
	"foodmap/internal/service"
	"foodmap/internal/worker"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/cors"

	_ "foodmap/docs" // 引入 swag 產出的 docs
)

// cleanupQueue 背景刪檔的佇列長度，滿了就放棄刪除
const cleanupQueue = 256

// bodyLimit 單張圖片上限 10 MB，再留給 multipart 的 data 欄位與邊界
const bodyLimit = "12M"

const shutdownTimeout = 10 * time.Second

var (
	loadConfig      = config.Load
	newPgxPool      = database.NewPgxPool
	newKVStore      = kv.NewRedisClient
	runMigrationsFn = database.RunMigrations
	startServer     = func(e *echo.Echo, addr string) error { return e.Start(addr) }
	newWorkerPool   = worker.NewPool
	exitFunc        = os.Exit
)

func corsMiddleware(origins []string) echo.MiddlewareFunc {
	c := cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Content-Type", "Authorization", handler.HeaderConfirmDelete},
		AllowCredentials: true,
	})
	return echo.WrapMiddleware(c.Handler)
}

func run(ctx context.Context) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	db, err := newPgxPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("DB 連線失敗: %v", err)
	}
	defer db.Close()

	store, err := newKVStore(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		return fmt.Errorf("Redis 連線失敗: %v", err)
	}
	defer store.Close()

	if err := runMigrationsFn(cfg.DatabaseURL); err != nil {
		return fmt.Errorf("Migration 執行失敗: %v", err)
	}

	images := imaging.NewProcessor(cfg.UploadDir)
	if err := images.EnsurePlaceholders(); err != nil {
		return fmt.Errorf("建立預設圖失敗: %v", err)
	}

	wp := newWorkerPool(cfg.WorkerCount, cleanupQueue)
	defer wp.Stop()

	e := echo.New()
	e.HideBanner = true
	e.Debug = cfg.Debug()
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = apperr.Handler(cfg.Debug())
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(corsMiddleware(cfg.CORSOrigins))
	e.Use(middleware.BodyLimit(bodyLimit))
	e.Static("/uploads", cfg.UploadDir)

	router.Setup(e, router.Deps{
		DB:         db,
		KV:         store,
		Tokens:     service.NewTokens(cfg.JWTSecret),
		Images:     images,
		Places:     places.NewClient(cfg.MapsAPIKey),
		Pool:       wp,
		BulkDelete: cfg.BulkDeleteEnabled(),
	})

	errCh := make(chan error, 1)
	go func() { errCh <- startServer(e, cfg.HTTPAddr) }()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP 服務失敗: %v", err)
		}
		return nil
	case <-ctx.Done():
		log.Print("收到關閉訊號，等待進行中的請求結束")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return e.Shutdown(shutdownCtx)
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		log.Print(err)
		exitFunc(1)
	}
}
