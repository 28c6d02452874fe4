package images_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"imagestore/images"
)

func TestGenerateKey(t *testing.T) {
	now := time.Date(2024, 1, 2, 3, 4, 5, 678_000_000, time.UTC)

	tests := []struct {
		name         string
		originalName string
		now          time.Time
		want         string
	}{
		{
			name:         "normal file name",
			originalName: "cat.png",
			now:          now,
			want:         "uploads/2024-01-02T03-04-05-678Z-cat.png",
		},
		{
			name:         "empty file name",
			originalName: "",
			now:          now,
			want:         "uploads/2024-01-02T03-04-05-678Z-",
		},
		{
			name:         "non utc time is normalized",
			originalName: "cat.png",
			now:          now.In(time.FixedZone("UTC+8", 8*60*60)),
			want:         "uploads/2024-01-02T03-04-05-678Z-cat.png",
		},
		{
			name:         "whole second keeps milliseconds",
			originalName: "dog.jpg",
			now:          time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
			want:         "uploads/2024-01-02T03-04-05-000Z-dog.jpg",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, images.GenerateKey(tt.originalName, tt.now))
		})
	}
}

func TestGenerateKey_Deterministic(t *testing.T) {
	now := time.Now()
	assert.Equal(t, images.GenerateKey("cat.png", now), images.GenerateKey("cat.png", now))
}

func TestGenerateKey_PathSafeTimestamp(t *testing.T) {
	key := images.GenerateKey("cat.png", time.Now())
	timestamp := strings.TrimSuffix(strings.TrimPrefix(key, "uploads/"), "-cat.png")

	assert.NotContains(t, timestamp, ":")
	assert.NotContains(t, timestamp, ".")
}

func TestGenerateKey_DifferentNamesSameInstant(t *testing.T) {
	now := time.Now()
	assert.NotEqual(t, images.GenerateKey("a.png", now), images.GenerateKey("b.png", now))
}

func TestKeyGenerator_Next(t *testing.T) {
	now := time.Date(2024, 1, 2, 3, 4, 5, 678_000_000, time.UTC)
	ids := []string{"id-1", "id-2"}
	generator := images.NewKeyGenerator(
		images.WithKeyPrefix("/images/"),
		images.WithKeyClock(func() time.Time { return now }),
		images.WithKeyIDSource(func() string {
			id := ids[0]
			ids = ids[1:]
			return id
		}),
	)

	assert.Equal(t, "images/2024-01-02T03-04-05-678Z-id-1-cat.png", generator.Next("cat.png"))
	// 相同時間、相同檔名仍然得到不同的路徑
	assert.Equal(t, "images/2024-01-02T03-04-05-678Z-id-2-cat.png", generator.Next("cat.png"))
}

func TestKeyGenerator_DefaultsAreUnique(t *testing.T) {
	now := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	generator := images.NewKeyGenerator(images.WithKeyClock(func() time.Time { return now }))

	seen := make(map[string]struct{})
	for range 100 {
		key := generator.Next("cat.png")
		assert.True(t, strings.HasPrefix(key, "uploads/2024-01-02T03-04-05-000Z-"))
		assert.True(t, strings.HasSuffix(key, "-cat.png"))
		seen[key] = struct{}{}
	}
	assert.Len(t, seen, 100)
}
