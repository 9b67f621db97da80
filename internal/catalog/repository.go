package catalog

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// ErrNotFound 表示目录中不存在请求的条目。
var ErrNotFound = errors.New("目录条目不存在")

// Repository 是目录模块的数据访问层。
type Repository struct {
	db *gorm.DB
}

// NewRepository 创建目录仓库。
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// GetByID 按主键查找一个目录条目。
func (r *Repository) GetByID(id uint) (*Media, error) {
	var media Media
	err := r.db.First(&media, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("查询目录条目 %d 失败: %w", id, err)
	}
	return &media, nil
}

// ImagesByIDs 批量查询一组条目的封面图，返回 id -> imageUrl 的映射。
// 查不到的id直接缺席于结果中，由调用方降级处理。
func (r *Repository) ImagesByIDs(mediaType MediaType, ids []uint) (map[uint]string, error) {
	images := make(map[uint]string, len(ids))
	if len(ids) == 0 {
		return images, nil
	}

	var rows []Media
	err := r.db.
		Select("id", "image_url").
		Where("media_type = ? AND id IN ?", mediaType, ids).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("批量查询封面图失败: %w", err)
	}

	for _, row := range rows {
		images[row.ID] = row.ImageURL
	}
	return images, nil
}

// CandidatePool 返回每日竞猜的候选池：
// 已发布、且人气排名落在 (0, maxRank] 窗口内的条目，按id升序排列。
// 升序id保证了候选池的索引在进程重启后依然稳定。
func (r *Repository) CandidatePool(mediaType MediaType, maxRank int) ([]Media, error) {
	var pool []Media
	err := r.db.
		Where("media_type = ? AND published = ? AND popularity_rank > 0 AND popularity_rank <= ?",
			mediaType, true, maxRank).
		Order("id asc").
		Find(&pool).Error
	if err != nil {
		return nil, fmt.Errorf("查询竞猜候选池失败: %w", err)
	}
	return pool, nil
}
