package images

import (
	"context"

	"imagestore/models"
)

// ObjectStore 定義了物件儲存的操作介面
type ObjectStore interface {
	// Put 將檔案寫入 key 指定的位置，並回傳可公開存取的 URL。
	// URL 由設定與 key 推導而來，相同的 key 一定得到相同的 URL。
	Put(ctx context.Context, key string, content []byte, contentType string) (string, error)
}

// MetadataStore 定義了圖片紀錄的儲存介面
type MetadataStore interface {
	// Insert 新增一筆紀錄並回傳包含 ID 的完整紀錄
	Insert(ctx context.Context, name, url string) (models.Image, error)
	// ListAll 依 ID 由大到小列出所有紀錄
	ListAll(ctx context.Context) ([]models.Image, error)
}

// Compensator 在資料庫紀錄寫入失敗後刪除已寫入物件儲存的檔案
type Compensator interface {
	Delete(ctx context.Context, key string) error
}
