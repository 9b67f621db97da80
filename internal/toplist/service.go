package toplist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/AniTopia/anitopia-backend/internal/catalog"
	"github.com/AniTopia/anitopia-backend/internal/member"
	"github.com/AniTopia/anitopia-backend/internal/platform/cache"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// --- 错误 ---

var (
	// ErrNotFound 表示榜单不存在。
	ErrNotFound = errors.New("榜单不存在")
	// ErrNotOwner 表示操作者不是榜单的创建者。
	ErrNotOwner = errors.New("只有创建者可以修改榜单")
	// ErrSelfVote 表示创建者试图给自己的榜单投票。
	ErrSelfVote = errors.New("不能给自己的榜单投票")
	// ErrInvalidSort 表示未知的排序方式。
	ErrInvalidSort = errors.New("无效的排序方式")
	// ErrInvalidKind 表示未知的榜单类型过滤条件。
	ErrInvalidKind = errors.New("无效的榜单类型")
	// ErrInvalidPage 表示非法的分页参数。
	ErrInvalidPage = errors.New("无效的分页参数")
	// ErrInvalidVoteAction 表示未知的投票动作。
	ErrInvalidVoteAction = errors.New("无效的投票动作")
	// ErrCommentMismatch 表示评论序列与条目序列长度不一致。
	ErrCommentMismatch = errors.New("评论序列必须与条目序列等长")
)

// SortMode 是公共榜单列表的排序方式。
type SortMode string

const (
	SortRecent  SortMode = "recent"
	SortPopular SortMode = "popular"
)

// ParseSortMode 校验排序参数，空串默认按最新排序。
func ParseSortMode(s string) (SortMode, error) {
	switch SortMode(s) {
	case SortRecent, "":
		return SortRecent, nil
	case SortPopular:
		return SortPopular, nil
	default:
		return "", ErrInvalidSort
	}
}

const (
	// unpagedLimit 是非分页公共列表的固定条数
	unpagedLimit = 20
	// defaultPageLimit / maxPageLimit 是分页接口的默认与上限
	defaultPageLimit = 20
	maxPageLimit     = 50
)

// Service 是榜单模块的业务层。
type Service struct {
	db      *gorm.DB
	cache   cache.Cache
	catalog *catalog.Repository
	members *member.Service
}

// NewService 创建榜单服务。
func NewService(db *gorm.DB, c cache.Cache, catalogRepo *catalog.Repository, members *member.Service) *Service {
	return &Service{db: db, cache: c, catalog: catalogRepo, members: members}
}

// --- 创建 / 修改 / 删除 ---

// CreateListInput 是创建榜单的入参。
type CreateListInput struct {
	Title        string
	Presentation string
	Kind         ListKind
	MediaType    catalog.MediaType
	ItemIDs      []uint
	Comments     []string
	Public       bool
}

// Create 创建一个新榜单。公开的新榜单会使该媒体类型的列表缓存失效。
func (s *Service) Create(ctx context.Context, ownerID uint, input CreateListInput) (*List, error) {
	if len(input.Comments) > 0 && len(input.Comments) != len(input.ItemIDs) {
		return nil, ErrCommentMismatch
	}

	kind := input.Kind
	if kind == "" {
		kind = KindPlain
	}

	commentsJSON := ""
	if len(input.Comments) > 0 {
		raw, err := json.Marshal(input.Comments)
		if err != nil {
			return nil, fmt.Errorf("无法序列化评论序列: %w", err)
		}
		commentsJSON = string(raw)
	}

	status := StatusDraft
	if input.Public {
		status = StatusPublic
	}

	list := &List{
		OwnerID:      ownerID,
		Title:        input.Title,
		Presentation: input.Presentation,
		Kind:         kind,
		MediaType:    input.MediaType,
		Items:        JoinItemIDs(input.ItemIDs),
		Comments:     commentsJSON,
		Trend:        "NEW",
		Status:       status,
		Popularity:   CalculatePopularity(0, 0, 0),
	}
	if err := s.db.Create(list).Error; err != nil {
		return nil, fmt.Errorf("创建榜单失败: %w", err)
	}

	if list.Status == StatusPublic {
		s.invalidateListings(ctx, list.MediaType)
	}
	return list, nil
}

// UpdateListInput 是更新榜单的入参，nil字段表示保持不变。
type UpdateListInput struct {
	Title        *string
	Presentation *string
	Kind         *ListKind
	ItemIDs      *[]uint
	Comments     *[]string
	Public       *bool
}

// Update 修改榜单本体，只允许创建者操作。
// 只要榜单在修改前后处于公开状态，就使列表缓存失效。
func (s *Service) Update(ctx context.Context, listID, memberID uint, input UpdateListInput) (*List, error) {
	list, err := s.getOwned(listID, memberID)
	if err != nil {
		return nil, err
	}
	wasPublic := list.Status == StatusPublic

	if input.Title != nil {
		list.Title = *input.Title
	}
	if input.Presentation != nil {
		list.Presentation = *input.Presentation
	}
	if input.Kind != nil {
		list.Kind = *input.Kind
	}
	if input.ItemIDs != nil {
		list.Items = JoinItemIDs(*input.ItemIDs)
	}
	if input.Comments != nil {
		if len(*input.Comments) > 0 && len(*input.Comments) != len(list.ItemIDs()) {
			return nil, ErrCommentMismatch
		}
		if len(*input.Comments) == 0 {
			list.Comments = ""
		} else {
			raw, err := json.Marshal(*input.Comments)
			if err != nil {
				return nil, fmt.Errorf("无法序列化评论序列: %w", err)
			}
			list.Comments = string(raw)
		}
	}
	if input.Public != nil {
		if *input.Public {
			list.Status = StatusPublic
		} else {
			list.Status = StatusDraft
		}
	}

	if err := s.db.Save(list).Error; err != nil {
		return nil, fmt.Errorf("更新榜单失败: %w", err)
	}

	if wasPublic || list.Status == StatusPublic {
		s.invalidateListings(ctx, list.MediaType)
	}
	return list, nil
}

// Delete 硬删除榜单及其收藏记录，只允许创建者操作。
// 投票名单随行一起消失，没有软删除。
func (s *Service) Delete(ctx context.Context, listID, memberID uint) error {
	list, err := s.getOwned(listID, memberID)
	if err != nil {
		return err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Unscoped().Delete(&List{}, list.ID).Error; err != nil {
			return err
		}
		return tx.Unscoped().Where("list_id = ?", list.ID).Delete(&Favorite{}).Error
	})
	if err != nil {
		return fmt.Errorf("删除榜单失败: %w", err)
	}

	if list.Status == StatusPublic {
		s.invalidateListings(ctx, list.MediaType)
	}
	return nil
}

// --- 投票 ---

// VoteAction 是投票接口支持的动作。
type VoteAction string

const (
	ActionLike          VoteAction = "like"
	ActionDislike       VoteAction = "dislike"
	ActionRemoveLike    VoteAction = "remove_like"
	ActionRemoveDislike VoteAction = "remove_dislike"
)

// Vote 处理一次投票动作并同步重算人气分。
// like/dislike是幂等的开关：已投同向则撤销，已投反向则先移出反向名单。
// 不变式：操作结束后成员id最多出现在一个名单里。
func (s *Service) Vote(listID, memberID uint, action VoteAction) (*List, error) {
	list, err := s.getByID(listID)
	if err != nil {
		return nil, err
	}

	likes := list.LikeSet()
	dislikes := list.DislikeSet()

	switch action {
	case ActionLike:
		if list.OwnerID == memberID {
			return nil, ErrSelfVote
		}
		dislikes.Remove(memberID)
		likes.Toggle(memberID)
	case ActionDislike:
		if list.OwnerID == memberID {
			return nil, ErrSelfVote
		}
		likes.Remove(memberID)
		dislikes.Toggle(memberID)
	case ActionRemoveLike:
		likes.Remove(memberID)
	case ActionRemoveDislike:
		dislikes.Remove(memberID)
	default:
		return nil, ErrInvalidVoteAction
	}

	list.Likes = likes.String()
	list.Dislikes = dislikes.String()
	list.Popularity = CalculatePopularity(likes.Len(), dislikes.Len(), list.ViewCount)

	err = s.db.Model(&List{}).Where("id = ?", list.ID).Updates(map[string]interface{}{
		"likes":      list.Likes,
		"dislikes":   list.Dislikes,
		"popularity": list.Popularity,
	}).Error
	if err != nil {
		return nil, fmt.Errorf("持久化投票状态失败: %w", err)
	}
	return list, nil
}

// IncrementView 原子地把浏览计数加1，然后基于新计数重算人气分。
func (s *Service) IncrementView(listID uint) (*List, error) {
	res := s.db.Model(&List{}).Where("id = ?", listID).
		UpdateColumn("view_count", gorm.Expr("view_count + ?", 1))
	if res.Error != nil {
		return nil, fmt.Errorf("递增浏览计数失败: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}

	list, err := s.getByID(listID)
	if err != nil {
		return nil, err
	}

	list.Popularity = CalculatePopularity(list.LikeSet().Len(), list.DislikeSet().Len(), list.ViewCount)
	err = s.db.Model(&List{}).Where("id = ?", list.ID).
		UpdateColumn("popularity", list.Popularity).Error
	if err != nil {
		return nil, fmt.Errorf("持久化人气分失败: %w", err)
	}
	return list, nil
}

// --- 收藏 ---

// ToggleFavorite 翻转成员对榜单的收藏状态，返回翻转后的状态。
func (s *Service) ToggleFavorite(listID, memberID uint) (bool, error) {
	if _, err := s.getByID(listID); err != nil {
		return false, err
	}

	var fav Favorite
	err := s.db.Where("member_id = ? AND list_id = ?", memberID, listID).First(&fav).Error
	if err == nil {
		if err := s.db.Unscoped().Delete(&fav).Error; err != nil {
			return false, fmt.Errorf("取消收藏失败: %w", err)
		}
		return false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, fmt.Errorf("查询收藏状态失败: %w", err)
	}

	if err := s.db.Create(&Favorite{MemberID: memberID, ListID: listID}).Error; err != nil {
		return false, fmt.Errorf("收藏榜单失败: %w", err)
	}
	return true, nil
}

// --- 公共列表 ---

// ListDTO 是榜单对外的完整形态。
type ListDTO struct {
	ID            uint              `json:"id"`
	OwnerID       uint              `json:"ownerId"`
	OwnerName     string            `json:"ownerName,omitempty"`
	Title         string            `json:"title"`
	Presentation  string            `json:"presentation"`
	Kind          ListKind          `json:"kind"`
	MediaType     catalog.MediaType `json:"mediaType"`
	Items         string            `json:"items"`
	Comments      string            `json:"comments,omitempty"`
	Likes         string            `json:"likes"`
	Dislikes      string            `json:"dislikes"`
	LikeCount     int               `json:"likeCount"`
	DislikeCount  int               `json:"dislikeCount"`
	ViewCount     int64             `json:"viewCount"`
	Popularity    float64           `json:"popularity"`
	Trend         string            `json:"trend"`
	Status        ListStatus        `json:"status"`
	FavoriteCount int64             `json:"favoriteCount"`
	CoverImageURL string            `json:"coverImageUrl,omitempty"`
	CreatedAt     time.Time         `json:"createdAt"`
	UpdatedAt     time.Time         `json:"updatedAt"`
}

// PagedListing 是分页公共列表的响应体，整体作为缓存值存储。
type PagedListing struct {
	Lists []ListDTO `json:"lists"`
	Total int64     `json:"total"`
	Page  int       `json:"page"`
	Limit int       `json:"limit"`
}

func toDTO(l *List) ListDTO {
	return ListDTO{
		ID:           l.ID,
		OwnerID:      l.OwnerID,
		Title:        l.Title,
		Presentation: l.Presentation,
		Kind:         l.Kind,
		MediaType:    l.MediaType,
		Items:        l.Items,
		Comments:     l.Comments,
		Likes:        l.Likes,
		Dislikes:     l.Dislikes,
		LikeCount:    l.LikeSet().Len(),
		DislikeCount: l.DislikeSet().Len(),
		ViewCount:    l.ViewCount,
		Popularity:   l.Popularity,
		Trend:        l.Trend,
		Status:       l.Status,
		CreatedAt:    l.CreatedAt,
		UpdatedAt:    l.UpdatedAt,
	}
}

// GetList 返回单个榜单的完整形态（带展示性补充数据）。
func (s *Service) GetList(listID uint) (*ListDTO, error) {
	list, err := s.getByID(listID)
	if err != nil {
		return nil, err
	}
	dtos := s.enrich([]List{*list})
	return &dtos[0], nil
}

// GetPublicLists 返回某媒体类型下的公共榜单（固定条数），长TTL缓存。
func (s *Service) GetPublicLists(ctx context.Context, mediaType catalog.MediaType, sort SortMode) ([]ListDTO, error) {
	key, err := s.listingKey(ctx, mediaType, sort, "", 0, unpagedLimit)
	if err == nil {
		if cached, hit, cerr := s.cache.Get(ctx, key); cerr == nil && hit {
			var dtos []ListDTO
			if json.Unmarshal([]byte(cached), &dtos) == nil {
				return dtos, nil
			}
		}
	}

	lists, err := s.queryPublic(mediaType, sort, "", 0, unpagedLimit)
	if err != nil {
		return nil, err
	}
	dtos := s.enrich(lists)

	s.storeInCache(ctx, key, dtos, cache.ListingTTL)
	return dtos, nil
}

// GetPublicListsPaged 返回分页的公共榜单，中TTL缓存。
// page从1开始；limit缺省20、上限50。
func (s *Service) GetPublicListsPaged(ctx context.Context, mediaType catalog.MediaType, sort SortMode, kind string, page, limit int) (*PagedListing, error) {
	if page < 1 {
		return nil, ErrInvalidPage
	}
	if limit <= 0 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	switch ListKind(kind) {
	case "", KindPlain, KindRanked:
	default:
		return nil, ErrInvalidKind
	}

	key, err := s.listingKey(ctx, mediaType, sort, kind, page, limit)
	if err == nil {
		if cached, hit, cerr := s.cache.Get(ctx, key); cerr == nil && hit {
			var paged PagedListing
			if json.Unmarshal([]byte(cached), &paged) == nil {
				return &paged, nil
			}
		}
	}

	offset := (page - 1) * limit
	lists, err := s.queryPublic(mediaType, sort, ListKind(kind), offset, limit)
	if err != nil {
		return nil, err
	}

	var total int64
	if err := s.publicScope(mediaType, ListKind(kind)).Count(&total).Error; err != nil {
		return nil, fmt.Errorf("统计公共榜单总数失败: %w", err)
	}

	paged := &PagedListing{
		Lists: s.enrich(lists),
		Total: total,
		Page:  page,
		Limit: limit,
	}

	s.storeInCache(ctx, key, paged, cache.PagedListingTTL)
	return paged, nil
}

// RecomputeAllPublic 重算所有公开榜单的人气分并落库。
// 管理端在调整算法权重后用它做回填；后台worker也会定期调用。
func (s *Service) RecomputeAllPublic(ctx context.Context) (int, error) {
	var lists []List
	if err := s.db.Where("status = ?", StatusPublic).Find(&lists).Error; err != nil {
		return 0, fmt.Errorf("加载公开榜单失败: %w", err)
	}

	updated := 0
	for i := range lists {
		l := &lists[i]
		fresh := CalculatePopularity(l.LikeSet().Len(), l.DislikeSet().Len(), l.ViewCount)
		if fresh == l.Popularity {
			continue
		}
		err := s.db.Model(&List{}).Where("id = ?", l.ID).
			UpdateColumn("popularity", fresh).Error
		if err != nil {
			return updated, fmt.Errorf("回填榜单 %d 的人气分失败: %w", l.ID, err)
		}
		updated++
	}

	if updated > 0 {
		// 人气分变化影响popular排序，让各媒体类型的缓存整体失效
		for _, mt := range []catalog.MediaType{catalog.MediaTypeAnime, catalog.MediaTypeManga, catalog.MediaTypeGame} {
			s.invalidateListings(ctx, mt)
		}
	}
	return updated, nil
}

// --- 内部辅助 ---

func (s *Service) getByID(id uint) (*List, error) {
	var list List
	err := s.db.First(&list, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("查询榜单 %d 失败: %w", id, err)
	}
	return &list, nil
}

func (s *Service) getOwned(id, memberID uint) (*List, error) {
	list, err := s.getByID(id)
	if err != nil {
		return nil, err
	}
	if list.OwnerID != memberID {
		return nil, ErrNotOwner
	}
	return list, nil
}

// publicScope 构造公共榜单的基础查询：
// 公开、媒体类型匹配、创建者id为正（排除系统占位账号）。
func (s *Service) publicScope(mediaType catalog.MediaType, kind ListKind) *gorm.DB {
	q := s.db.Model(&List{}).
		Where("status = ? AND media_type = ? AND owner_id > 0", StatusPublic, mediaType)
	if kind != "" {
		q = q.Where("kind = ?", kind)
	}
	return q
}

func (s *Service) queryPublic(mediaType catalog.MediaType, sort SortMode, kind ListKind, offset, limit int) ([]List, error) {
	q := s.publicScope(mediaType, kind)

	switch sort {
	case SortPopular:
		// 人气分并列时按创建时间新者优先，保证排序稳定
		q = q.Order("popularity DESC").Order("created_at DESC")
	default:
		q = q.Order("created_at DESC")
	}

	var lists []List
	if err := q.Offset(offset).Limit(limit).Find(&lists).Error; err != nil {
		return nil, fmt.Errorf("查询公共榜单失败: %w", err)
	}
	return lists, nil
}

// enrich 为榜单补充展示性数据：封面图、创建者昵称、收藏数。
// 补充查询失败只降级（字段缺席），绝不让整个响应失败。
func (s *Service) enrich(lists []List) []ListDTO {
	dtos := make([]ListDTO, len(lists))

	firstIDs := make([]uint, 0, len(lists))
	ownerIDs := make([]uint, 0, len(lists))
	listIDs := make([]uint, 0, len(lists))
	var mediaType catalog.MediaType

	for i := range lists {
		dtos[i] = toDTO(&lists[i])
		listIDs = append(listIDs, lists[i].ID)
		ownerIDs = append(ownerIDs, lists[i].OwnerID)
		mediaType = lists[i].MediaType
		if firstID, ok := lists[i].FirstItemID(); ok {
			firstIDs = append(firstIDs, firstID)
		}
	}
	if len(lists) == 0 {
		return dtos
	}

	images, err := s.catalog.ImagesByIDs(mediaType, firstIDs)
	if err != nil {
		log.WithError(err).Warn("封面图批量查询失败，本次响应不带封面")
		images = nil
	}
	names, err := s.members.Summaries(ownerIDs)
	if err != nil {
		log.WithError(err).Warn("创建者信息批量查询失败，本次响应不带昵称")
		names = nil
	}
	favCounts, err := s.favoriteCounts(listIDs)
	if err != nil {
		log.WithError(err).Warn("收藏数批量查询失败，本次响应不带收藏数")
		favCounts = nil
	}

	for i := range lists {
		if firstID, ok := lists[i].FirstItemID(); ok {
			dtos[i].CoverImageURL = images[firstID]
		}
		dtos[i].OwnerName = names[lists[i].OwnerID]
		dtos[i].FavoriteCount = favCounts[lists[i].ID]
	}
	return dtos
}

func (s *Service) favoriteCounts(listIDs []uint) (map[uint]int64, error) {
	counts := make(map[uint]int64, len(listIDs))
	if len(listIDs) == 0 {
		return counts, nil
	}

	var rows []struct {
		ListID uint
		Cnt    int64
	}
	err := s.db.Model(&Favorite{}).
		Select("list_id, COUNT(*) as cnt").
		Where("list_id IN ?", listIDs).
		Group("list_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		counts[row.ListID] = row.Cnt
	}
	return counts, nil
}

func (s *Service) listingKey(ctx context.Context, mediaType catalog.MediaType, sort SortMode, kind string, page, limit int) (string, error) {
	ver, err := s.cache.Version(ctx, string(mediaType))
	if err != nil {
		return "", err
	}
	return cache.ListingKey(ver, string(mediaType), string(sort), kind, page, limit), nil
}

func (s *Service) storeInCache(ctx context.Context, key string, payload interface{}, ttl time.Duration) {
	if key == "" {
		return
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		log.WithError(err).Error("序列化榜单缓存失败")
		return
	}
	if err := s.cache.Set(ctx, key, string(raw), ttl); err != nil {
		log.WithError(err).Warn("写入榜单缓存失败")
	}
}

func (s *Service) invalidateListings(ctx context.Context, mediaType catalog.MediaType) {
	if err := s.cache.InvalidateMediaType(ctx, string(mediaType)); err != nil {
		log.WithError(err).Warn("榜单缓存失效操作失败")
	}
}
