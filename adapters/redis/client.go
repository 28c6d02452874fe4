package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Config 描述 Redis 連線設定，Addr 為空代表不使用 Redis
type Config struct {
	Addr     string
	Password string
	DB       int
}

func (c Config) Enabled() bool {
	return c.Addr != ""
}

// NewClient 建立 Redis 客戶端並確認可以連線
func NewClient(ctx context.Context, config Config) (*redis.Client, error) {
	const op = "redis.NewClient"
	client := redis.NewClient(&redis.Options{
		Addr:     config.Addr,
		Password: config.Password,
		DB:       config.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("[%s] Fail to connect to redis, addr=%s, err=%w", op, config.Addr, err)
	}
	return client, nil
}
