package db

import (
	"fmt"

	"gorm.io/gorm"

	"imagestore/models"
)

// Migrate 建立或更新 images 資料表
func Migrate(db *gorm.DB) error {
	const op = "Migrate"
	if err := db.AutoMigrate(&models.Image{}); err != nil {
		return fmt.Errorf("[%s] Fail to migrate images table, err=%w", op, err)
	}
	return nil
}
