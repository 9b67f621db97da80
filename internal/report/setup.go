package report

import (
	"fmt"

	"gorm.io/gorm"
)

// ConfigureModule 注入举报模块的依赖，必须在注册路由前调用。
func ConfigureModule(db *gorm.DB) {
	svc = NewService(db)
}

// MigrateDB 迁移举报模块的表结构。
func MigrateDB(db *gorm.DB) error {
	if err := db.AutoMigrate(&Report{}); err != nil {
		return fmt.Errorf("无法迁移report表: %w", err)
	}
	return nil
}
