package database

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	dbdriver "github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	src "github.com/golang-migrate/migrate/v4/source"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
)

// migrateInstance 只取用 migrate.Migrate 需要的方法，方便測試替換
type migrateInstance interface {
	Up() error
	Down() error
}

var (
	pgxpoolNew             = pgxpool.New
	sqlOpenDB              = sql.Open
	postgresWithInstanceFn = postgres.WithInstance
	iofsNewFn              = iofs.New
	migrateNewWithInstance = func(sourceName string, sourceDriver src.Driver, databaseName string, databaseDriver dbdriver.Driver) (migrateInstance, error) {
		m, err := migrate.NewWithInstance(sourceName, sourceDriver, databaseName, databaseDriver)
		if err != nil {
			return nil, err
		}
		return m, nil
	}
)

// NewPgxPool 建立整個程序共用的連線池，由呼叫端負責 Close
func NewPgxPool(ctx context.Context, url string) (DB, error) {
	pool, err := pgxpoolNew(ctx, url)
	if err != nil {
		return nil, err
	}
	return pool, nil
}

//go:embed migrations/*.sql
var migrationsFS embed.FS

// newMigrator 以 pgx stdlib driver 開一條獨立連線給 golang-migrate 使用
func newMigrator(dbURL string) (migrateInstance, func(), error) {
	sqlDB, err := sqlOpenDB("pgx", dbURL)
	if err != nil {
		return nil, nil, fmt.Errorf("open migration db: %w", err)
	}
	release := func() { _ = sqlDB.Close() }

	fail := func(stage string, err error) (migrateInstance, func(), error) {
		release()
		return nil, nil, fmt.Errorf("%s: %w", stage, err)
	}

	driver, err := postgresWithInstanceFn(sqlDB, &postgres.Config{})
	if err != nil {
		return fail("postgres driver", err)
	}
	sourceDriver, err := iofsNewFn(migrationsFS, "migrations")
	if err != nil {
		return fail("migration source", err)
	}
	m, err := migrateNewWithInstance("iofs", sourceDriver, "postgres", driver)
	if err != nil {
		return fail("migrator", err)
	}
	return m, release, nil
}

// step 執行單一方向的 migration；已是最新版本不算錯誤
func step(dbURL string, apply func(migrateInstance) error) error {
	m, release, err := newMigrator(dbURL)
	if err != nil {
		return err
	}
	defer release()

	if err := apply(m); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}

// RunMigrations 套用全部嵌入的 migration (users, restaurants, dishes, images, messages)
func RunMigrations(dbURL string) error {
	return step(dbURL, migrateInstance.Up)
}

// RollbackAll 退回所有 migration (down to version 0)，只給 seed/測試環境使用
func RollbackAll(dbURL string) error {
	return step(dbURL, migrateInstance.Down)
}
