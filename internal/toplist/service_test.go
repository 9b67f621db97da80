package toplist

import (
	"context"
	"testing"

	"github.com/AniTopia/anitopia-backend/internal/catalog"
	"github.com/AniTopia/anitopia-backend/internal/member"
	"github.com/AniTopia/anitopia-backend/internal/platform/cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestService 搭建一套基于内存SQLite和进程内缓存的完整服务。
func newTestService(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, member.MigrateDB(db))
	require.NoError(t, catalog.MigrateDB(db))
	require.NoError(t, MigrateDB(db))

	svc := NewService(db, cache.NewMemoryCache(), catalog.NewRepository(db), member.NewService(db))
	return svc, db
}

func newTestMember(t *testing.T, db *gorm.DB, uuid, name string) uint {
	t.Helper()
	m := member.Member{UUID: uuid, DisplayName: name}
	require.NoError(t, db.Create(&m).Error)
	return m.ID
}

func publicList(t *testing.T, svc *Service, ownerID uint, title string) *List {
	t.Helper()
	list, err := svc.Create(context.Background(), ownerID, CreateListInput{
		Title:     title,
		Kind:      KindRanked,
		MediaType: catalog.MediaTypeAnime,
		ItemIDs:   []uint{1, 2, 3},
		Public:    true,
	})
	require.NoError(t, err)
	return list
}

func TestCreateList(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	t.Run("评论序列必须与条目序列等长", func(t *testing.T) {
		_, err := svc.Create(ctx, 1, CreateListInput{
			Title:    "年度十佳",
			ItemIDs:  []uint{1, 2, 3},
			Comments: []string{"只有一条"},
		})
		assert.ErrorIs(t, err, ErrCommentMismatch)
	})

	t.Run("新榜单的趋势固定为NEW", func(t *testing.T) {
		list, err := svc.Create(ctx, 1, CreateListInput{
			Title:     "年度十佳",
			MediaType: catalog.MediaTypeAnime,
			ItemIDs:   []uint{5, 4},
			Comments:  []string{"第一", "第二"},
		})
		require.NoError(t, err)
		assert.Equal(t, "NEW", list.Trend)
		assert.Equal(t, StatusDraft, list.Status)
		assert.Equal(t, KindPlain, list.Kind)
		assert.Equal(t, "5,4", list.Items)
	})
}

func TestVoteExclusivity(t *testing.T) {
	svc, db := newTestService(t)
	owner := newTestMember(t, db, "00000000-0000-0000-0000-000000000001", "owner")
	voter := newTestMember(t, db, "00000000-0000-0000-0000-000000000002", "voter")
	list := publicList(t, svc, owner, "入坑必看")

	// 点赞后成员出现在点赞名单
	updated, err := svc.Vote(list.ID, voter, ActionLike)
	require.NoError(t, err)
	assert.True(t, updated.LikeSet().Contains(voter))
	assert.False(t, updated.DislikeSet().Contains(voter))

	// 改投点踩时自动退出点赞名单
	updated, err = svc.Vote(list.ID, voter, ActionDislike)
	require.NoError(t, err)
	assert.False(t, updated.LikeSet().Contains(voter))
	assert.True(t, updated.DislikeSet().Contains(voter))

	// 再次点踩等于撤销
	updated, err = svc.Vote(list.ID, voter, ActionDislike)
	require.NoError(t, err)
	assert.False(t, updated.DislikeSet().Contains(voter))
	assert.Equal(t, 0, updated.LikeSet().Len()+updated.DislikeSet().Len())

	// 投票状态在数据库中可见且人气分同步更新
	var stored List
	require.NoError(t, db.First(&stored, list.ID).Error)
	assert.Equal(t, "", stored.Likes)
	assert.Equal(t, "", stored.Dislikes)
	assert.Equal(t, CalculatePopularity(0, 0, 0), stored.Popularity)
}

func TestVoteGuards(t *testing.T) {
	svc, db := newTestService(t)
	owner := newTestMember(t, db, "00000000-0000-0000-0000-000000000001", "owner")
	list := publicList(t, svc, owner, "入坑必看")

	t.Run("创建者不能给自己投票", func(t *testing.T) {
		_, err := svc.Vote(list.ID, owner, ActionLike)
		assert.ErrorIs(t, err, ErrSelfVote)
		_, err = svc.Vote(list.ID, owner, ActionDislike)
		assert.ErrorIs(t, err, ErrSelfVote)
	})

	t.Run("创建者可以撤销残留的投票记录", func(t *testing.T) {
		_, err := svc.Vote(list.ID, owner, ActionRemoveLike)
		assert.NoError(t, err)
	})

	t.Run("未知动作被拒绝", func(t *testing.T) {
		_, err := svc.Vote(list.ID, 99, VoteAction("super_like"))
		assert.ErrorIs(t, err, ErrInvalidVoteAction)
	})

	t.Run("榜单不存在", func(t *testing.T) {
		_, err := svc.Vote(9999, 99, ActionLike)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestOwnerGuards(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()
	owner := newTestMember(t, db, "00000000-0000-0000-0000-000000000001", "owner")
	other := newTestMember(t, db, "00000000-0000-0000-0000-000000000002", "other")
	list := publicList(t, svc, owner, "入坑必看")

	newTitle := "改名"
	_, err := svc.Update(ctx, list.ID, other, UpdateListInput{Title: &newTitle})
	assert.ErrorIs(t, err, ErrNotOwner)

	err = svc.Delete(ctx, list.ID, other)
	assert.ErrorIs(t, err, ErrNotOwner)

	// 不存在的榜单优先报不存在而非无权限
	_, err = svc.Update(ctx, 9999, other, UpdateListInput{Title: &newTitle})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateList(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()
	owner := newTestMember(t, db, "00000000-0000-0000-0000-000000000001", "owner")
	list := publicList(t, svc, owner, "入坑必看")

	title := "新标题"
	items := []uint{9, 8}
	comments := []string{"神作", "佳作"}
	updated, err := svc.Update(ctx, list.ID, owner, UpdateListInput{
		Title:    &title,
		ItemIDs:  &items,
		Comments: &comments,
	})
	require.NoError(t, err)
	assert.Equal(t, "新标题", updated.Title)
	assert.Equal(t, "9,8", updated.Items)
	assert.JSONEq(t, `["神作","佳作"]`, updated.Comments)

	// 评论长度与现有条目数不符
	bad := []string{"只有一条"}
	_, err = svc.Update(ctx, list.ID, owner, UpdateListInput{Comments: &bad})
	assert.ErrorIs(t, err, ErrCommentMismatch)

	// 未提供的字段保持原值
	public := false
	updated, err = svc.Update(ctx, list.ID, owner, UpdateListInput{Public: &public})
	require.NoError(t, err)
	assert.Equal(t, "新标题", updated.Title)
	assert.Equal(t, StatusDraft, updated.Status)
}

func TestDeleteListRemovesFavorites(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()
	owner := newTestMember(t, db, "00000000-0000-0000-0000-000000000001", "owner")
	fan := newTestMember(t, db, "00000000-0000-0000-0000-000000000002", "fan")
	list := publicList(t, svc, owner, "入坑必看")

	on, err := svc.ToggleFavorite(list.ID, fan)
	require.NoError(t, err)
	assert.True(t, on)

	require.NoError(t, svc.Delete(ctx, list.ID, owner))

	var listCount, favCount int64
	require.NoError(t, db.Model(&List{}).Where("id = ?", list.ID).Count(&listCount).Error)
	require.NoError(t, db.Model(&Favorite{}).Where("list_id = ?", list.ID).Count(&favCount).Error)
	assert.Zero(t, listCount)
	assert.Zero(t, favCount)
}

func TestIncrementView(t *testing.T) {
	svc, db := newTestService(t)
	owner := newTestMember(t, db, "00000000-0000-0000-0000-000000000001", "owner")
	list := publicList(t, svc, owner, "入坑必看")

	updated, err := svc.IncrementView(list.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), updated.ViewCount)
	assert.Equal(t, CalculatePopularity(0, 0, 1), updated.Popularity)

	updated, err = svc.IncrementView(list.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), updated.ViewCount)

	_, err = svc.IncrementView(9999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestToggleFavorite(t *testing.T) {
	svc, db := newTestService(t)
	owner := newTestMember(t, db, "00000000-0000-0000-0000-000000000001", "owner")
	fan := newTestMember(t, db, "00000000-0000-0000-0000-000000000002", "fan")
	list := publicList(t, svc, owner, "入坑必看")

	on, err := svc.ToggleFavorite(list.ID, fan)
	require.NoError(t, err)
	assert.True(t, on)

	on, err = svc.ToggleFavorite(list.ID, fan)
	require.NoError(t, err)
	assert.False(t, on)

	_, err = svc.ToggleFavorite(9999, fan)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGetPublicListsPagedValidation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.GetPublicListsPaged(ctx, catalog.MediaTypeAnime, SortRecent, "", 0, 10)
	assert.ErrorIs(t, err, ErrInvalidPage)

	_, err = svc.GetPublicListsPaged(ctx, catalog.MediaTypeAnime, SortRecent, "tierlist", 1, 10)
	assert.ErrorIs(t, err, ErrInvalidKind)
}

func TestGetPublicListsPaged(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()
	owner := newTestMember(t, db, "00000000-0000-0000-0000-000000000001", "up主")

	for i := 0; i < 3; i++ {
		publicList(t, svc, owner, "榜单")
	}
	// 草稿和他人不可见
	_, err := svc.Create(ctx, owner, CreateListInput{Title: "草稿", MediaType: catalog.MediaTypeAnime})
	require.NoError(t, err)

	paged, err := svc.GetPublicListsPaged(ctx, catalog.MediaTypeAnime, SortRecent, "", 1, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(3), paged.Total)
	assert.Len(t, paged.Lists, 2)
	assert.Equal(t, 1, paged.Page)
	assert.Equal(t, 2, paged.Limit)
	assert.Equal(t, "up主", paged.Lists[0].OwnerName)

	paged, err = svc.GetPublicListsPaged(ctx, catalog.MediaTypeAnime, SortRecent, "", 2, 2)
	require.NoError(t, err)
	assert.Len(t, paged.Lists, 1)
}

func TestPopularSortOrdering(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()
	owner := newTestMember(t, db, "00000000-0000-0000-0000-000000000001", "owner")
	voter := newTestMember(t, db, "00000000-0000-0000-0000-000000000002", "voter")

	cold := publicList(t, svc, owner, "冷门榜")
	hot := publicList(t, svc, owner, "热门榜")
	_, err := svc.Vote(hot.ID, voter, ActionLike)
	require.NoError(t, err)

	dtos, err := svc.GetPublicLists(ctx, catalog.MediaTypeAnime, SortPopular)
	require.NoError(t, err)
	require.Len(t, dtos, 2)
	assert.Equal(t, hot.ID, dtos[0].ID)
	assert.Equal(t, cold.ID, dtos[1].ID)
	assert.Equal(t, 1, dtos[0].LikeCount)
}

func TestListingCacheLifecycle(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()
	owner := newTestMember(t, db, "00000000-0000-0000-0000-000000000001", "owner")
	publicList(t, svc, owner, "第一份榜单")

	// 第一次查询填充缓存
	paged, err := svc.GetPublicListsPaged(ctx, catalog.MediaTypeAnime, SortRecent, "", 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), paged.Total)

	// 绕过服务直接写库，缓存命中时看不到新行
	require.NoError(t, db.Create(&List{
		OwnerID: owner, Title: "旁路插入", MediaType: catalog.MediaTypeAnime, Status: StatusPublic,
	}).Error)

	paged, err = svc.GetPublicListsPaged(ctx, catalog.MediaTypeAnime, SortRecent, "", 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), paged.Total)

	// 通过服务发布新榜单会让命名空间失效，下一次查询回源
	publicList(t, svc, owner, "第二份榜单")
	paged, err = svc.GetPublicListsPaged(ctx, catalog.MediaTypeAnime, SortRecent, "", 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(3), paged.Total)
}

func TestRecomputeAllPublic(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()
	owner := newTestMember(t, db, "00000000-0000-0000-0000-000000000001", "owner")
	list := publicList(t, svc, owner, "入坑必看")

	// 人为制造落库的人气分与真实值不一致
	require.NoError(t, db.Model(&List{}).Where("id = ?", list.ID).
		Updates(map[string]interface{}{"likes": "2,3,4", "popularity": 0.0}).Error)

	updated, err := svc.RecomputeAllPublic(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, updated)

	var stored List
	require.NoError(t, db.First(&stored, list.ID).Error)
	assert.Equal(t, CalculatePopularity(3, 0, 0), stored.Popularity)

	// 再跑一遍应当没有任何行需要更新
	updated, err = svc.RecomputeAllPublic(ctx)
	require.NoError(t, err)
	assert.Zero(t, updated)
}
