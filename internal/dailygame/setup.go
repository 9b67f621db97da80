package dailygame

import (
	"fmt"

	"github.com/AniTopia/anitopia-backend/internal/catalog"
	"gorm.io/gorm"
)

// ConfigureModule 注入每日竞猜模块的依赖，必须在注册路由前调用。
func ConfigureModule(db *gorm.DB, catalogRepo *catalog.Repository, mediaType catalog.MediaType) {
	svc = NewService(db, catalogRepo, mediaType)
}

// MigrateDB 迁移每日竞猜模块的表结构。
func MigrateDB(db *gorm.DB) error {
	if err := db.AutoMigrate(&GameScore{}); err != nil {
		return fmt.Errorf("无法迁移game_score表: %w", err)
	}
	return nil
}
