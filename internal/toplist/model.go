package toplist

import (
	"strconv"
	"strings"

	"github.com/AniTopia/anitopia-backend/internal/catalog"
	"github.com/AniTopia/anitopia-backend/pkg/idset"
	"gorm.io/gorm"
)

// ListKind 区分普通收藏单和排名榜。
type ListKind string

const (
	KindPlain  ListKind = "plain"
	KindRanked ListKind = "ranked"
)

// ListStatus 是榜单的可见性状态。
type ListStatus string

const (
	StatusDraft  ListStatus = "draft"
	StatusPublic ListStatus = "public"
)

// List 定义了成员自建榜单在数据库中的数据结构。
// 点赞/点踩名单和条目序列都以序列化形式存储，
// 内存中的操作一律先经过反序列化（见pkg/idset）。
type List struct {
	gorm.Model

	// OwnerID 是创建者的成员ID，只有创建者可以修改榜单本体。
	OwnerID uint `gorm:"index;not null" json:"ownerId"`

	// Title 是榜单标题。
	Title string `gorm:"not null" json:"title"`

	// Presentation 是榜单的自由文本介绍。
	Presentation string `json:"presentation"`

	// Kind 标记这是普通清单还是排名榜。
	Kind ListKind `gorm:"not null;default:plain" json:"kind"`

	// MediaType 是榜单收录条目的媒体类型。
	MediaType catalog.MediaType `gorm:"index;not null" json:"mediaType"`

	// Items 是逗号分隔的目录条目id序列，顺序即榜单顺序。
	// 不与目录表做外键约束，条目下架后id允许悬空。
	Items string `json:"items"`

	// Comments 是与Items按下标对齐的JSON字符串数组，可以为空。
	Comments string `json:"comments"`

	// Likes / Dislikes 是逗号分隔的投票成员id名单。
	// 不变式：任何成员id最多出现在其中一个名单里。
	Likes    string `json:"likes"`
	Dislikes string `json:"dislikes"`

	// ViewCount 是只增不减的浏览计数。
	ViewCount int64 `json:"viewCount"`

	// Popularity 是派生的人气分（见algorithms.go），投票或浏览变化后同步重算。
	Popularity float64 `json:"popularity"`

	// Trend 在创建时固定为 "NEW"，本服务不负责重算它。
	Trend string `json:"trend"`

	// Status 是榜单的可见性状态。
	Status ListStatus `gorm:"index" json:"status"`
}

// Favorite 记录成员收藏的榜单，(MemberID, ListID)唯一。
type Favorite struct {
	gorm.Model

	MemberID uint `gorm:"uniqueIndex:idx_member_list;not null"`
	ListID   uint `gorm:"uniqueIndex:idx_member_list;index;not null"`
}

// LikeSet / DislikeSet 把投票名单反序列化为集合。
func (l *List) LikeSet() *idset.Set    { return idset.Parse(l.Likes) }
func (l *List) DislikeSet() *idset.Set { return idset.Parse(l.Dislikes) }

// ItemIDs 解析条目id序列，非法片段被丢弃。
func (l *List) ItemIDs() []uint {
	if l.Items == "" {
		return nil
	}
	var ids []uint
	for _, part := range strings.Split(l.Items, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseUint(part, 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, uint(id))
	}
	return ids
}

// FirstItemID 取出榜单的第一个条目id，用于封面图查询。
// 序列为空或首片段非法时返回false，调用方降级为无封面。
func (l *List) FirstItemID() (uint, bool) {
	ids := l.ItemIDs()
	if len(ids) == 0 {
		return 0, false
	}
	return ids[0], true
}

// JoinItemIDs 将条目id序列序列化为存储格式。
func JoinItemIDs(ids []uint) string {
	if len(ids) == 0 {
		return ""
	}
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatUint(uint64(id), 10)
	}
	return strings.Join(parts, ",")
}
