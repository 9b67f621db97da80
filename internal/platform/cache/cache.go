// Package cache 提供公共榜单读路径使用的旁路缓存抽象。
// 主存储永远是SQL；缓存未命中或Redis不可用时，调用方直接回源查询。
package cache

import (
	"context"
	"fmt"
	"time"
)

// Cache 是榜单缓存的统一契约。
// 失效是按媒体类型命名空间进行的：任何改变公开可见性的写操作
// 都会使该媒体类型下的全部缓存条目立刻失效，而不是等TTL到期。
type Cache interface {
	// Get 返回缓存值。第二个返回值表示是否命中。
	Get(ctx context.Context, key string) (string, bool, error)
	// Set 写入缓存值并设置TTL。
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
	// InvalidateMediaType 使指定媒体类型命名空间下的所有条目失效。
	InvalidateMediaType(ctx context.Context, mediaType string) error
	// Version 返回媒体类型命名空间的当前版本号。
	Version(ctx context.Context, mediaType string) (int64, error)
}

const (
	// PagedListingTTL 是分页榜单缓存的TTL。
	PagedListingTTL = 30 * time.Minute
	// ListingTTL 是非分页榜单（固定小limit）缓存的TTL。
	ListingTTL = 6 * time.Hour
)

// ListingKey 构造榜单缓存键。
// 版本号编码在键里，失效只需递增版本号，旧键等TTL自然淘汰，
// 不需要SCAN删除前缀。
func ListingKey(version int64, mediaType, sort, kind string, page, limit int) string {
	return fmt.Sprintf("toplist:v%d:%s:%s:%s:%d:%d", version, mediaType, sort, kind, page, limit)
}
