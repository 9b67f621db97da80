package startup

import (
	"context"
	"fmt"

	"github.com/AniTopia/anitopia-backend/internal/catalog"
	"github.com/AniTopia/anitopia-backend/internal/dailygame"
	"github.com/AniTopia/anitopia-backend/internal/member"
	"github.com/AniTopia/anitopia-backend/internal/platform/cache"
	"github.com/AniTopia/anitopia-backend/internal/report"
	"github.com/AniTopia/anitopia-backend/internal/toplist"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// listingCache 由InitializeApplication保存，供缓存重建使用。
var listingCache cache.Cache

// InitializeApplication 是应用首次启动时执行的总入口：
// 迁移全部表结构，并记录缓存实例以备运行时重建。
func InitializeApplication(db *gorm.DB, c cache.Cache) error {
	log.Info("开始应用初始化...")

	if err := member.MigrateDB(db); err != nil {
		return err
	}
	if err := catalog.MigrateDB(db); err != nil {
		return err
	}
	if err := toplist.MigrateDB(db); err != nil {
		return err
	}
	if err := dailygame.MigrateDB(db); err != nil {
		return err
	}
	if err := report.MigrateDB(db); err != nil {
		return err
	}

	listingCache = c
	log.Info("应用初始化完成")
	return nil
}

// RebuildCache 在Redis重启恢复后重建缓存命名空间。
// 榜单缓存是旁路式的、按需填充，重建只需让所有命名空间失效，
// 避免留下重启前部分写入的半新半旧条目。
func RebuildCache() error {
	if listingCache == nil {
		return fmt.Errorf("缓存尚未初始化，无法重建")
	}

	ctx := context.Background()
	for _, mt := range []catalog.MediaType{catalog.MediaTypeAnime, catalog.MediaTypeManga, catalog.MediaTypeGame} {
		if err := listingCache.InvalidateMediaType(ctx, string(mt)); err != nil {
			return fmt.Errorf("重建 %s 缓存命名空间失败: %w", mt, err)
		}
	}

	log.Info("缓存命名空间重建完成")
	return nil
}
