package redis

import (
	"time"

	"imagestore/models"
)

// ImageEvent 是圖片上傳成功後推送到 Stream 的事件
type ImageEvent struct {
	ID         int64     `msgpack:"id" json:"id"`
	Name       string    `msgpack:"name" json:"name"`
	Url        string    `msgpack:"url" json:"url"`
	UploadedAt time.Time `msgpack:"uploadedAt" json:"uploadedAt"`
}

func NewImageEvent(image models.Image, uploadedAt time.Time) ImageEvent {
	return ImageEvent{
		ID:         image.ID,
		Name:       image.Name,
		Url:        image.Url,
		UploadedAt: uploadedAt.UTC(),
	}
}
