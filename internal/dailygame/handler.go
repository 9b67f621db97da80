package dailygame

import (
	"errors"
	"net/http"

	"github.com/AniTopia/anitopia-backend/internal/catalog"
	"github.com/AniTopia/anitopia-backend/internal/member"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// svc 是模块级的服务实例，由ConfigureModule注入。
var svc *Service

// GuessRequest 是提交猜测的请求体。
type GuessRequest struct {
	MediaID uint `json:"mediaId" binding:"required"`
}

// SubmitGuess 处理一次猜测提交。
// 匿名访客也可以玩，只是成绩不落库。
func SubmitGuess(c *gin.Context) {
	var body GuessRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "请求格式错误: " + err.Error()})
		return
	}

	result, err := svc.SubmitGuess(member.MemberIDFromContext(c), body.MediaID)
	if err != nil {
		respondGameError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// GetGameState 返回今天的游戏状态：成绩、连胜和已解锁的提示。
func GetGameState(c *gin.Context) {
	state, err := svc.GameState(member.MemberIDFromContext(c))
	if err != nil {
		respondGameError(c, err)
		return
	}
	c.JSON(http.StatusOK, state)
}

func respondGameError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, catalog.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "找不到该条目"})
	case errors.Is(err, ErrNoCandidates):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "今日竞猜暂不可用"})
	default:
		log.WithError(err).Error("竞猜接口发生内部错误")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "内部错误"})
	}
}
