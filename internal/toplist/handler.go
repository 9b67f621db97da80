package toplist

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/AniTopia/anitopia-backend/internal/catalog"
	"github.com/AniTopia/anitopia-backend/internal/member"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// svc 是模块级的服务实例，由ConfigureModule注入。
var svc *Service

// --- API请求/响应模型 ---

type CreateListRequest struct {
	Title        string   `json:"title" binding:"required"`
	Presentation string   `json:"presentation"`
	Kind         string   `json:"kind"`
	MediaType    string   `json:"mediaType" binding:"required"`
	ItemIDs      []uint   `json:"itemIds"`
	Comments     []string `json:"comments"`
	Public       bool     `json:"public"`
}

type UpdateListRequest struct {
	Title        *string   `json:"title"`
	Presentation *string   `json:"presentation"`
	Kind         *string   `json:"kind"`
	ItemIDs      *[]uint   `json:"itemIds"`
	Comments     *[]string `json:"comments"`
	Public       *bool     `json:"public"`
}

type VoteRequest struct {
	Action string `json:"action" binding:"required"`
}

// respondServiceError 将服务层错误映射到HTTP状态码。
// 存储层连接类故障原样向上冒泡为500，不在本层重试。
func respondServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, ErrNotOwner), errors.Is(err, ErrSelfVote):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, ErrInvalidSort), errors.Is(err, ErrInvalidKind),
		errors.Is(err, ErrInvalidPage), errors.Is(err, ErrInvalidVoteAction),
		errors.Is(err, ErrCommentMismatch), errors.Is(err, catalog.ErrInvalidMediaType):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		log.WithError(err).Error("榜单接口发生内部错误")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "内部错误"})
	}
}

func listIDParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的榜单ID"})
		return 0, false
	}
	return uint(id), true
}

// --- 控制器函数 ---

// GetPublicLists 返回某媒体类型下的公共榜单（固定条数）。
func GetPublicLists(c *gin.Context) {
	mediaType, err := catalog.ParseMediaType(c.Query("mediaType"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	sort, err := ParseSortMode(c.Query("sort"))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	dtos, err := svc.GetPublicLists(c.Request.Context(), mediaType, sort)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, dtos)
}

// GetPublicListsPaged 返回分页的公共榜单。
func GetPublicListsPaged(c *gin.Context) {
	mediaType, err := catalog.ParseMediaType(c.Query("mediaType"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	sort, err := ParseSortMode(c.Query("sort"))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))

	paged, err := svc.GetPublicListsPaged(c.Request.Context(), mediaType, sort, c.Query("kind"), page, limit)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, paged)
}

// GetList 返回单个榜单。
func GetList(c *gin.Context) {
	id, ok := listIDParam(c)
	if !ok {
		return
	}
	dto, err := svc.GetList(id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto)
}

// CreateList 创建新榜单。
func CreateList(c *gin.Context) {
	var body CreateListRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "请求格式错误: " + err.Error()})
		return
	}
	mediaType, err := catalog.ParseMediaType(body.MediaType)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	list, err := svc.Create(c.Request.Context(), member.MemberIDFromContext(c), CreateListInput{
		Title:        body.Title,
		Presentation: body.Presentation,
		Kind:         ListKind(body.Kind),
		MediaType:    mediaType,
		ItemIDs:      body.ItemIDs,
		Comments:     body.Comments,
		Public:       body.Public,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toDTO(list))
}

// UpdateList 修改榜单，只允许创建者操作。
func UpdateList(c *gin.Context) {
	id, ok := listIDParam(c)
	if !ok {
		return
	}
	var body UpdateListRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "请求格式错误: " + err.Error()})
		return
	}

	input := UpdateListInput{
		Title:        body.Title,
		Presentation: body.Presentation,
		ItemIDs:      body.ItemIDs,
		Comments:     body.Comments,
		Public:       body.Public,
	}
	if body.Kind != nil {
		kind := ListKind(*body.Kind)
		input.Kind = &kind
	}

	list, err := svc.Update(c.Request.Context(), id, member.MemberIDFromContext(c), input)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, toDTO(list))
}

// DeleteList 删除榜单，只允许创建者操作。
func DeleteList(c *gin.Context) {
	id, ok := listIDParam(c)
	if !ok {
		return
	}
	if err := svc.Delete(c.Request.Context(), id, member.MemberIDFromContext(c)); err != nil {
		respondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// SubmitVote 处理对榜单的投票动作。
func SubmitVote(c *gin.Context) {
	id, ok := listIDParam(c)
	if !ok {
		return
	}
	var body VoteRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "请求格式错误: " + err.Error()})
		return
	}

	list, err := svc.Vote(id, member.MemberIDFromContext(c), VoteAction(body.Action))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"likeCount":    list.LikeSet().Len(),
		"dislikeCount": list.DislikeSet().Len(),
		"popularity":   list.Popularity,
	})
}

// RecordView 递增榜单的浏览计数。
func RecordView(c *gin.Context) {
	id, ok := listIDParam(c)
	if !ok {
		return
	}
	list, err := svc.IncrementView(id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"viewCount":  list.ViewCount,
		"popularity": list.Popularity,
	})
}

// ToggleFavorite 翻转收藏状态。
func ToggleFavorite(c *gin.Context) {
	id, ok := listIDParam(c)
	if !ok {
		return
	}
	favorited, err := svc.ToggleFavorite(id, member.MemberIDFromContext(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"favorited": favorited})
}

// RecomputeAll 是管理端的人气分回填接口。
func RecomputeAll(c *gin.Context) {
	updated, err := svc.RecomputeAllPublic(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"updated": updated})
}
