package images

import (
	"context"
	"errors"

	"imagestore/models"
)

// Lister 提供圖片列表，直接轉交給 MetadataStore，不做快取
type Lister struct {
	metadata MetadataStore
}

func NewLister(metadata MetadataStore) (*Lister, error) {
	if metadata == nil {
		return nil, errors.New("metadata store cannot be nil")
	}
	return &Lister{metadata: metadata}, nil
}

// ListImages 列出所有圖片，最新上傳的在最前面
func (l *Lister) ListImages(ctx context.Context) ([]models.Image, error) {
	return l.metadata.ListAll(ctx)
}
