package api

import (
	"errors"
	"fmt"
	"time"

	"imagestore/adapters/db"
	"imagestore/adapters/minio"
	"imagestore/adapters/redis"
)

const (
	ObjectStoreS3    = "s3"
	ObjectStoreMinio = "minio"
)

type ServerConfig struct {
	// ObjectStore 選擇物件儲存的實作，s3 或 minio
	ObjectStore string
	S3          S3Config
	Minio       minio.Config
	DB          DBConfig
	Redis       RedisConfig
	Upload      UploadConfig
}

type S3Config struct {
	AccessKeyID     string
	SecretAccessKey string
	Endpoint        string
	Region          string
	Bucket          string
	PublicBaseURL   string
	UsePathStyle    bool
}

type DBConfig struct {
	db.Config
	// AutoMigrate 為 true 時啟動服務前先建立 images 資料表
	AutoMigrate bool
}

type RedisConfig struct {
	redis.Config

	StreamKey    string
	StreamMaxLen int64
	// Heartbeat 是 SSE 連線在沒有事件時送出空行的間隔
	Heartbeat time.Duration
}

type UploadConfig struct {
	// Field 是 multipart 表單中存放檔案的欄位名稱
	Field string
	// MaxSize 是單一檔案的大小上限（bytes），0 代表不限制
	MaxSize int64
	// Parallelism 是單一請求中同時處理的檔案數量
	Parallelism int
	// CompensateOrphans 為 true 時會刪除寫入資料庫失敗的檔案
	CompensateOrphans bool
	KeyPrefix         string
	// ImagesOnly 為 true 時只接受 secureImageTypes 中的圖片
	ImagesOnly bool
}

// Validate 檢查設定是否足以啟動服務，回傳所有不合法的欄位
func (config ServerConfig) Validate() error {
	var errs []error
	switch config.ObjectStore {
	case ObjectStoreS3:
		if config.S3.Bucket == "" {
			errs = append(errs, errors.New("s3 bucket is required"))
		}
		if config.S3.Region == "" && config.S3.PublicBaseURL == "" {
			errs = append(errs, errors.New("s3 region or public base url is required"))
		}
	case ObjectStoreMinio:
		if config.Minio.Endpoint == "" {
			errs = append(errs, errors.New("minio endpoint is required"))
		}
		if config.Minio.Bucket == "" {
			errs = append(errs, errors.New("minio bucket is required"))
		}
	default:
		errs = append(errs, fmt.Errorf("unsupported object store %q", config.ObjectStore))
	}

	switch config.DB.Driver {
	case db.DriverPostgres:
		if config.DB.Host == "" || config.DB.Database == "" {
			errs = append(errs, errors.New("db host and database are required"))
		}
	case db.DriverSQLite:
		if config.DB.Path == "" {
			errs = append(errs, errors.New("db path is required for sqlite"))
		}
	default:
		errs = append(errs, fmt.Errorf("unsupported db driver %q", config.DB.Driver))
	}

	if config.Redis.Enabled() && config.Redis.StreamKey == "" {
		errs = append(errs, errors.New("redis stream key is required"))
	}

	if config.Upload.Field == "" {
		errs = append(errs, errors.New("upload field is required"))
	}
	if config.Upload.MaxSize < 0 {
		errs = append(errs, errors.New("upload max size cannot be negative"))
	}
	if config.Upload.Parallelism <= 0 {
		errs = append(errs, errors.New("upload parallelism must be positive"))
	}
	return errors.Join(errs...)
}
