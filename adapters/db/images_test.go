package db_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"imagestore/adapters/db"
	"imagestore/images"
	"imagestore/models"
)

func setupStore(t *testing.T) (*db.ImageStore, *gorm.DB) {
	t.Helper()
	conn, err := db.Open(db.Config{Driver: db.DriverSQLite, Path: "file::memory:"})
	require.NoError(t, err)
	require.NoError(t, db.Migrate(conn))
	t.Cleanup(func() {
		sqlDB, err := conn.DB()
		if err == nil {
			sqlDB.Close()
		}
	})
	store, err := db.NewImageStore(conn)
	require.NoError(t, err)
	return store, conn
}

func TestNewImageStore(t *testing.T) {
	store, err := db.NewImageStore(nil)
	assert.Error(t, err)
	assert.Nil(t, store)
}

func TestOpen_UnsupportedDriver(t *testing.T) {
	conn, err := db.Open(db.Config{Driver: "oracle"})
	assert.Error(t, err)
	assert.Nil(t, conn)
}

func TestImageStore_Insert(t *testing.T) {
	store, _ := setupStore(t)
	ctx := context.Background()

	first, err := store.Insert(ctx, "cat.png", "https://cdn.example.com/uploads/cat.png")
	require.NoError(t, err)
	second, err := store.Insert(ctx, "cat.png", "https://cdn.example.com/uploads/cat-2.png")
	require.NoError(t, err)

	// ID 由資料庫指派且遞增，名稱可以重複
	assert.NotZero(t, first.ID)
	assert.Greater(t, second.ID, first.ID)
	assert.Equal(t, "cat.png", first.Name)
	assert.Equal(t, "https://cdn.example.com/uploads/cat.png", first.Url)
	assert.Equal(t, "cat.png", second.Name)
}

func TestImageStore_ListAll(t *testing.T) {
	t.Run("empty table", func(t *testing.T) {
		store, _ := setupStore(t)

		got, err := store.ListAll(context.Background())

		require.NoError(t, err)
		assert.NotNil(t, got)
		assert.Empty(t, got)
	})

	t.Run("newest first", func(t *testing.T) {
		store, _ := setupStore(t)
		ctx := context.Background()
		for _, name := range []string{"1.png", "2.png", "3.png"} {
			_, err := store.Insert(ctx, name, "https://cdn.example.com/"+name)
			require.NoError(t, err)
		}

		got, err := store.ListAll(ctx)

		require.NoError(t, err)
		assert.Equal(t, []int64{3, 2, 1}, lo.Map(got, func(image models.Image, _ int) int64 { return image.ID }))
		assert.Equal(t, []string{"3.png", "2.png", "1.png"}, lo.Map(got, func(image models.Image, _ int) string { return image.Name }))
	})

	t.Run("idempotent", func(t *testing.T) {
		store, _ := setupStore(t)
		ctx := context.Background()
		_, err := store.Insert(ctx, "a.png", "https://cdn.example.com/a.png")
		require.NoError(t, err)

		first, err := store.ListAll(ctx)
		require.NoError(t, err)
		second, err := store.ListAll(ctx)
		require.NoError(t, err)

		assert.Equal(t, first, second)
	})
}

func TestImageStore_ConcurrentInsert(t *testing.T) {
	store, _ := setupStore(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := store.Insert(ctx, fmt.Sprintf("%d.png", i), fmt.Sprintf("https://cdn.example.com/%d.png", i))
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	got, err := store.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, got, 10)
	assert.Len(t, lo.UniqBy(got, func(image models.Image) int64 { return image.ID }), 10)
}

func TestImageStore_Failure(t *testing.T) {
	store, conn := setupStore(t)
	sqlDB, err := conn.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	_, err = store.Insert(context.Background(), "a.png", "https://cdn.example.com/a.png")
	assert.ErrorIs(t, err, images.ErrMetadataStore)

	got, err := store.ListAll(context.Background())
	assert.ErrorIs(t, err, images.ErrMetadataStore)
	assert.Nil(t, got)
}
