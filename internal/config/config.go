// File: internal/config/config.go
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	EnvProduction  = "production"
	EnvDevelopment = "development"
	EnvTest        = "test"
)

// Config 服務啟動所需的所有設定
type Config struct {
	Env             string
	HTTPAddr        string
	DatabaseURL     string
	RedisAddr       string
	RedisPassword   string
	RedisDB         int
	JWTSecret       string
	UploadDir       string
	CORSOrigins     []string
	MapsAPIKey      string
	WorkerCount     int
	AllowBulkDelete bool
}

// loadDotenv 讀取 .env，測試可覆寫
var loadDotenv = func() error { return godotenv.Load() }

// Load 從 .env 與環境變數組出 Config；必填欄位缺少時回傳錯誤
func Load() (*Config, error) {
	// .env 不存在時直接使用環境變數
	_ = loadDotenv()

	cfg := &Config{
		Env:           strings.ToLower(getEnv("APP_ENV", EnvProduction)),
		HTTPAddr:      getEnv("HTTP_ADDR", ":8080"),
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		JWTSecret:     os.Getenv("JWT_SECRET"),
		UploadDir:     getEnv("UPLOAD_DIR", "./public/uploads"),
		MapsAPIKey:    os.Getenv("GOOGLE_MAPS_API_KEY"),
		WorkerCount:   1,
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("環境變數 DATABASE_URL 未設定")
	}
	if cfg.RedisAddr == "" {
		return nil, fmt.Errorf("環境變數 REDIS_ADDR 未設定")
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("環境變數 JWT_SECRET 未設定")
	}
	if len(cfg.JWTSecret) < 32 {
		return nil, fmt.Errorf("JWT_SECRET 至少需要 32 個字元")
	}

	if v := os.Getenv("REDIS_DB"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("無效的 REDIS_DB: %v", err)
		}
		cfg.RedisDB = n
	}

	if v := os.Getenv("WORKER_COUNT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("無效的 WORKER_COUNT: %q", v)
		}
		cfg.WorkerCount = n
	}

	if v := os.Getenv("ALLOW_BULK_DELETE"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("無效的 ALLOW_BULK_DELETE: %v", err)
		}
		cfg.AllowBulkDelete = b
	}

	for _, o := range strings.Split(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000"), ",") {
		if o = strings.TrimSpace(o); o != "" {
			cfg.CORSOrigins = append(cfg.CORSOrigins, o)
		}
	}

	return cfg, nil
}

// Debug reports whether error details may be exposed to clients.
func (c *Config) Debug() bool {
	return c.Env == EnvDevelopment || c.Env == EnvTest
}

// BulkDeleteEnabled 只有在明確開啟且為開發/測試環境時才允許清空資料；
// 其他（含無法辨識的）環境一律拒絕
func (c *Config) BulkDeleteEnabled() bool {
	return c.AllowBulkDelete && c.Debug()
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
