package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"imagestore/adapters/db"
	"imagestore/adapters/minio"
	"imagestore/adapters/redis"
	"imagestore/api"
	"imagestore/images"
)

const envPrefix = "IMAGESTORE"

func addCommonFlags(flags *pflag.FlagSet) {
	flags.String("config", "", "path of an optional config file (yaml, json, toml or env)")
	flags.String("log-level", "info", "debug, info, warn or error")
}

func addDBFlags(flags *pflag.FlagSet) {
	flags.String("db-driver", db.DriverPostgres, "postgres or sqlite")
	flags.String("db-user", "", "")
	flags.String("db-password", "", "")
	flags.String("db-host", "", "")
	flags.Int("db-port", 5432, "")
	flags.String("db-database", "", "")
	flags.String("db-schema", "", "")
	flags.String("db-path", "", "sqlite database file")
}

func addServeFlags(flags *pflag.FlagSet) {
	// server config
	flags.String("server-url", "0.0.0.0:8080", "")
	flags.Bool("db-auto-migrate", false, "create the images table before serving")

	// object store config
	flags.String("object-store", api.ObjectStoreS3, "s3 or minio")

	// s3 config
	flags.String("s3-endpoint", "", "custom endpoint for S3 compatible storage")
	flags.String("s3-region", "", "")
	flags.String("s3-bucket", "", "")
	flags.String("s3-public-base-url", "", "")
	flags.String("s3-access-key-id", "", "")
	flags.String("s3-secret-access-key", "", "")
	flags.Bool("s3-use-path-style", false, "")

	// minio config
	flags.String("minio-endpoint", "", "host:port of the MinIO server")
	flags.String("minio-region", "", "")
	flags.String("minio-bucket", "", "")
	flags.String("minio-public-base-url", "", "")
	flags.String("minio-access-key-id", "", "")
	flags.String("minio-secret-access-key", "", "")
	flags.Bool("minio-use-ssl", false, "")

	// redis config
	flags.String("redis-addr", "", "leave empty to disable image events")
	flags.String("redis-password", "", "")
	flags.Int("redis-db", 0, "")
	flags.String("redis-stream-key", "imagestore-image-events", "")
	flags.Int64("redis-stream-max-len", 10000, "approximate number of events kept in the stream, 0 means unlimited")
	flags.Duration("sse-heartbeat", 0, "interval of keep-alive comments on event streams, 0 means 30s")

	// upload config
	flags.String("upload-field", "image", "multipart field that carries the files")
	flags.Int64("upload-max-size", 0, "max size of a single file in bytes, 0 means unlimited")
	flags.Int("upload-parallelism", images.DefaultParallelism, "files processed concurrently per request")
	flags.Bool("compensate-orphans", false, "delete stored files whose record could not be written")
	flags.String("upload-key-prefix", images.DefaultKeyPrefix, "")
	flags.Bool("upload-images-only", false, "reject files whose content is not a jpeg, png, gif, bmp, tiff or webp image")
}

// newViper 依序讀取 flag、環境變數（IMAGESTORE_ 開頭）與設定檔
func newViper(flags *pflag.FlagSet) (*viper.Viper, error) {
	const op = "newViper"
	v := viper.New()
	if err := v.BindPFlags(flags); err != nil {
		return nil, fmt.Errorf("[%s] Fail to bind flags, err=%w", op, err)
	}
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if path := v.GetString("config"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("[%s] Fail to read config file, path=%s, err=%w", op, path, err)
		}
	}
	return v, nil
}

func dbConfig(v *viper.Viper) db.Config {
	return db.Config{
		Driver:   v.GetString("db-driver"),
		User:     v.GetString("db-user"),
		Password: v.GetString("db-password"),
		Host:     v.GetString("db-host"),
		Port:     v.GetInt("db-port"),
		Database: v.GetString("db-database"),
		Schema:   v.GetString("db-schema"),
		Path:     v.GetString("db-path"),
	}
}

func ParseArgs(flags *pflag.FlagSet) (Args, error) {
	v, err := newViper(flags)
	if err != nil {
		return Args{}, err
	}

	// initial arguments
	return Args{
		ServerURL: v.GetString("server-url"),
		LogLevel:  v.GetString("log-level"),
		ServerConfig: api.ServerConfig{
			ObjectStore: v.GetString("object-store"),
			S3: api.S3Config{
				Endpoint:        v.GetString("s3-endpoint"),
				Region:          v.GetString("s3-region"),
				Bucket:          v.GetString("s3-bucket"),
				PublicBaseURL:   v.GetString("s3-public-base-url"),
				AccessKeyID:     v.GetString("s3-access-key-id"),
				SecretAccessKey: v.GetString("s3-secret-access-key"),
				UsePathStyle:    v.GetBool("s3-use-path-style"),
			},
			Minio: minio.Config{
				Endpoint:        v.GetString("minio-endpoint"),
				Region:          v.GetString("minio-region"),
				Bucket:          v.GetString("minio-bucket"),
				PublicBaseURL:   v.GetString("minio-public-base-url"),
				AccessKeyID:     v.GetString("minio-access-key-id"),
				SecretAccessKey: v.GetString("minio-secret-access-key"),
				UseSSL:          v.GetBool("minio-use-ssl"),
			},
			DB: api.DBConfig{
				Config:      dbConfig(v),
				AutoMigrate: v.GetBool("db-auto-migrate"),
			},
			Redis: api.RedisConfig{
				Config: redis.Config{
					Addr:     v.GetString("redis-addr"),
					Password: v.GetString("redis-password"),
					DB:       v.GetInt("redis-db"),
				},
				StreamKey:    v.GetString("redis-stream-key"),
				StreamMaxLen: v.GetInt64("redis-stream-max-len"),
				Heartbeat:    v.GetDuration("sse-heartbeat"),
			},
			Upload: api.UploadConfig{
				Field:             v.GetString("upload-field"),
				MaxSize:           v.GetInt64("upload-max-size"),
				Parallelism:       v.GetInt("upload-parallelism"),
				CompensateOrphans: v.GetBool("compensate-orphans"),
				KeyPrefix:         v.GetString("upload-key-prefix"),
				ImagesOnly:        v.GetBool("upload-images-only"),
			},
		},
	}, nil
}

// ParseMigrateArgs 只讀取資料庫相關的設定
func ParseMigrateArgs(flags *pflag.FlagSet) (MigrateArgs, error) {
	v, err := newViper(flags)
	if err != nil {
		return MigrateArgs{}, err
	}
	return MigrateArgs{
		LogLevel: v.GetString("log-level"),
		DB:       dbConfig(v),
	}, nil
}

type Args struct {
	ServerURL    string
	LogLevel     string
	ServerConfig api.ServerConfig
}

func (args Args) Validate() error {
	if args.ServerURL == "" {
		return errors.Join(errors.New("server url is required"), args.ServerConfig.Validate())
	}
	return args.ServerConfig.Validate()
}

type MigrateArgs struct {
	LogLevel string
	DB       db.Config
}
