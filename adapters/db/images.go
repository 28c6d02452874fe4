package db

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"imagestore/images"
	"imagestore/models"
)

// ImageStore 以 gorm 實作 images.MetadataStore
type ImageStore struct {
	db *gorm.DB
}

func NewImageStore(db *gorm.DB) (*ImageStore, error) {
	if db == nil {
		return nil, errors.New("db cannot be nil")
	}
	return &ImageStore{db: db}, nil
}

// Insert 新增一筆圖片紀錄
// INSERT INTO images (name, url) VALUES (?, ?) RETURNING *
func (s *ImageStore) Insert(ctx context.Context, name, url string) (models.Image, error) {
	const op = "ImageStore.Insert"
	image := models.Image{Name: name, Url: url}
	if result := s.db.WithContext(ctx).Clauses(clause.Returning{}).Create(&image); result.Error != nil {
		return models.Image{}, fmt.Errorf("[%s] Fail to create image, err=%w", op, errors.Join(images.ErrMetadataStore, result.Error))
	}
	return image, nil
}

// ListAll 列出所有圖片紀錄
// SELECT * FROM images ORDER BY id DESC
func (s *ImageStore) ListAll(ctx context.Context) ([]models.Image, error) {
	const op = "ImageStore.ListAll"
	output := make([]models.Image, 0)
	query := s.db.WithContext(ctx).Order(clause.OrderByColumn{Column: clause.Column{Name: "id"}, Desc: true})
	if result := query.Find(&output); result.Error != nil {
		return nil, fmt.Errorf("[%s] Fail to list images, err=%w", op, errors.Join(images.ErrMetadataStore, result.Error))
	}
	return output, nil
}
