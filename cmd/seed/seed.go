// Command seed 匯入 xlsx 餐廳資料並建立管理員帳號，僅供開發環境使用。
// 匯入是累加的，重複執行會新增重複的餐廳
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"

	"foodmap/internal/apperr"
	"foodmap/internal/config"
	"foodmap/internal/database"
	"foodmap/internal/model"
	"foodmap/internal/service"
	"foodmap/internal/store"

	"github.com/xuri/excelize/v2"
)

var (
	loadConfig       = config.Load
	newPgxPool       = database.NewPgxPool
	runMigrationsFn  = database.RunMigrations
	rollbackAllFn    = database.RollbackAll
	createRestaurant = store.CreateRestaurant
	getUserByEmail   = store.GetUserByEmail
	createUser       = store.CreateUser
	hashPassword     = service.HashPassword
	openFile         = func(name string) (io.ReadCloser, error) { return os.Open(name) }
	exitFunc         = os.Exit
)

// 欄位順序：name, address, lat, lng, cuisine, rating, type, image_url,
// website, instagram, photo_credit, featured, certified_by
const (
	colName = iota
	colAddress
	colLat
	colLng
	colCuisine
	colRating
	colType
	colImageURL
	colWebsite
	colInstagram
	colPhotoCredit
	colFeatured
	colCertifiedBy
)

type options struct {
	file          string
	sheet         string
	adminName     string
	adminEmail    string
	adminPassword string
	reset         bool
}

func parseFlags(args []string) (*options, error) {
	fs := flag.NewFlagSet("seed", flag.ContinueOnError)
	o := &options{}
	fs.StringVar(&o.file, "file", "", "xlsx file with one restaurant per row")
	fs.StringVar(&o.sheet, "sheet", "", "sheet name (default: first sheet)")
	fs.StringVar(&o.adminName, "admin-name", "Admin", "bootstrap admin name")
	fs.StringVar(&o.adminEmail, "admin-email", "", "bootstrap admin email")
	fs.StringVar(&o.adminPassword, "admin-password", "", "bootstrap admin password")
	fs.BoolVar(&o.reset, "reset", false, "drop every table (migrate down) before seeding")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if o.file == "" && o.adminEmail == "" {
		return nil, errors.New("nothing to do: set -file and/or -admin-email")
	}
	if o.adminEmail != "" && len(o.adminPassword) < 8 {
		return nil, errors.New("-admin-password must be at least 8 characters")
	}
	return o, nil
}

func cell(row []string, i int) string {
	if i < len(row) {
		return strings.TrimSpace(row[i])
	}
	return ""
}

func optional(row []string, i int) *string {
	if v := cell(row, i); v != "" {
		return &v
	}
	return nil
}

func isHeader(row []string) bool {
	return strings.EqualFold(cell(row, colName), "name")
}

func parseRow(row []string) (*model.Restaurant, error) {
	r := &model.Restaurant{
		Name:              cell(row, colName),
		Address:           cell(row, colAddress),
		Cuisine:           cell(row, colCuisine),
		EstablishmentType: cell(row, colType),
		ImageURL:          optional(row, colImageURL),
		Website:           optional(row, colWebsite),
		Instagram:         optional(row, colInstagram),
		PhotoCredit:       optional(row, colPhotoCredit),
		CertifiedBy:       optional(row, colCertifiedBy),
	}
	if r.Name == "" || r.Address == "" || r.Cuisine == "" {
		return nil, errors.New("name, address and cuisine are required")
	}

	var err error
	if r.Latitude, err = strconv.ParseFloat(cell(row, colLat), 64); err != nil || r.Latitude < -90 || r.Latitude > 90 {
		return nil, fmt.Errorf("invalid latitude %q", cell(row, colLat))
	}
	if r.Longitude, err = strconv.ParseFloat(cell(row, colLng), 64); err != nil || r.Longitude < -180 || r.Longitude > 180 {
		return nil, fmt.Errorf("invalid longitude %q", cell(row, colLng))
	}
	if v := cell(row, colRating); v != "" {
		if r.Rating, err = strconv.ParseFloat(v, 64); err != nil || r.Rating < 0 || r.Rating > 5 {
			return nil, fmt.Errorf("invalid rating %q", v)
		}
	}
	if v := cell(row, colFeatured); v != "" {
		if r.Featured, err = strconv.ParseBool(v); err != nil {
			return nil, fmt.Errorf("invalid featured %q", v)
		}
	}
	return r, nil
}

// readRestaurants 讀取工作表；第一列若為標題列則略過，任一列錯誤即停止
func readRestaurants(r io.Reader, sheet string) ([]*model.Restaurant, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	defer f.Close()

	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, errors.New("xlsx has no sheets")
		}
		sheet = sheets[0]
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}

	var out []*model.Restaurant
	for i, row := range rows {
		if i == 0 && isHeader(row) {
			continue
		}
		if strings.TrimSpace(strings.Join(row, "")) == "" {
			continue
		}
		rest, err := parseRow(row)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		out = append(out, rest)
	}
	return out, nil
}

// ensureAdmin 建立管理員；Email 已存在時不做任何變更
func ensureAdmin(ctx context.Context, db database.Querier, name, email, password string) (bool, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	_, err := getUserByEmail(ctx, db, email)
	if err == nil {
		return false, nil
	}
	if !apperr.Is(err, apperr.KindNotFound) {
		return false, err
	}

	hash, err := hashPassword(password)
	if err != nil {
		return false, err
	}
	if _, err := createUser(ctx, db, &model.User{Name: name, Email: email, PasswordHash: hash, Role: model.RoleAdmin}); err != nil {
		return false, err
	}
	return true, nil
}

func run(ctx context.Context, args []string) error {
	opts, err := parseFlags(args)
	if err != nil {
		return err
	}

	var rows []*model.Restaurant
	if opts.file != "" {
		f, err := openFile(opts.file)
		if err != nil {
			return err
		}
		rows, err = readRestaurants(f, opts.sheet)
		f.Close()
		if err != nil {
			return err
		}
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.Env == config.EnvProduction {
		return errors.New("refusing to seed a production database")
	}
	if opts.reset {
		if err := rollbackAllFn(cfg.DatabaseURL); err != nil {
			return fmt.Errorf("Migration 回滾失敗: %v", err)
		}
		log.Printf("seed: schema reset")
	}
	if err := runMigrationsFn(cfg.DatabaseURL); err != nil {
		return fmt.Errorf("Migration 執行失敗: %v", err)
	}
	db, err := newPgxPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("DB 連線失敗: %v", err)
	}
	defer db.Close()

	for _, r := range rows {
		if _, err := createRestaurant(ctx, db, r); err != nil {
			return fmt.Errorf("insert %q: %w", r.Name, err)
		}
	}
	log.Printf("seed: inserted %d restaurants", len(rows))

	if opts.adminEmail != "" {
		created, err := ensureAdmin(ctx, db, opts.adminName, opts.adminEmail, opts.adminPassword)
		if err != nil {
			return fmt.Errorf("admin bootstrap: %w", err)
		}
		if created {
			log.Printf("seed: created admin %s", opts.adminEmail)
		} else {
			log.Printf("seed: admin %s already exists", opts.adminEmail)
		}
	}
	return nil
}

func main() {
	if err := run(context.Background(), os.Args[1:]); err != nil {
		log.Print(err)
		exitFunc(1)
	}
}
