package catalog

import (
	"fmt"

	"gorm.io/gorm"
)

// MigrateDB 迁移目录模块的表结构。
func MigrateDB(db *gorm.DB) error {
	if err := db.AutoMigrate(&Media{}); err != nil {
		return fmt.Errorf("无法迁移media表: %w", err)
	}
	return nil
}
