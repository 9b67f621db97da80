package member

import (
	"fmt"

	"gorm.io/gorm"
)

// MigrateDB 迁移成员模块的表结构。
func MigrateDB(db *gorm.DB) error {
	if err := db.AutoMigrate(&Member{}); err != nil {
		return fmt.Errorf("无法迁移member表: %w", err)
	}
	return nil
}
