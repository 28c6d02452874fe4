package db

import (
	"fmt"
	"strings"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/gorm/schema"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config 描述資料庫連線設定
type Config struct {
	Driver   string
	User     string
	Password string
	Host     string
	Port     int
	Database string
	Schema   string
	// Path 只在 sqlite 時使用
	Path string
}

// Open 依照設定建立資料庫連線
func Open(config Config) (*gorm.DB, error) {
	const op = "Open"
	gormConfig := &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Warn),
	}

	var dialector gorm.Dialector
	switch strings.ToLower(config.Driver) {
	case "", DriverPostgres:
		searchPath := ""
		if config.Schema != "" {
			searchPath = "&search_path=" + config.Schema
			gormConfig.NamingStrategy = schema.NamingStrategy{
				TablePrefix: config.Schema + ".",
			}
		}
		dsn := fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable%s", config.User, config.Password, config.Host, config.Port, config.Database, searchPath)
		dialector = postgres.Open(dsn)
	case DriverSQLite:
		dialector = sqlite.Open(config.Path)
	default:
		return nil, fmt.Errorf("[%s] Unsupported database driver, driver=%s", op, config.Driver)
	}

	db, err := gorm.Open(dialector, gormConfig)
	if err != nil {
		return nil, fmt.Errorf("[%s] Fail to connect to database, err=%w", op, err)
	}
	if strings.ToLower(config.Driver) == DriverSQLite {
		// sqlite 同時只允許一個寫入者，記憶體資料庫在不同連線間也不共用
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("[%s] Fail to get sql.DB, err=%w", op, err)
		}
		sqlDB.SetMaxOpenConns(1)
	}
	return db, nil
}
