package redis

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
)

func init() {
	// 測試時不輸出日誌
	slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func setupTest(t *testing.T) (*redis.Client, redismock.ClientMock, func()) {
	db, mock := redismock.NewClientMock()
	return db, mock, func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		db.Close()
	}
}

func testEvent() ImageEvent {
	return ImageEvent{
		ID:         1,
		Name:       "cat.png",
		Url:        "https://cdn.example.com/uploads/2024-01-02T03-04-05-678Z-cat.png",
		UploadedAt: time.Date(2024, 1, 2, 3, 4, 5, 678_000_000, time.UTC),
	}
}
