package toplist

import (
	"fmt"

	"github.com/AniTopia/anitopia-backend/internal/catalog"
	"github.com/AniTopia/anitopia-backend/internal/member"
	"github.com/AniTopia/anitopia-backend/internal/platform/cache"
	"gorm.io/gorm"
)

// ConfigureModule 注入榜单模块的依赖，必须在注册路由前调用。
func ConfigureModule(db *gorm.DB, c cache.Cache, catalogRepo *catalog.Repository, members *member.Service) {
	svc = NewService(db, c, catalogRepo, members)
}

// MigrateDB 迁移榜单模块的表结构。
func MigrateDB(db *gorm.DB) error {
	if err := db.AutoMigrate(&List{}, &Favorite{}); err != nil {
		return fmt.Errorf("无法迁移toplist表: %w", err)
	}
	return nil
}
