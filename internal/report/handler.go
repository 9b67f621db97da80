package report

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/AniTopia/anitopia-backend/internal/member"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// svc 是模块级的服务实例，由ConfigureModule注入。
var svc *Service

// FileReportRequest 是提交举报的请求体。
type FileReportRequest struct {
	ListID uint   `json:"listId" binding:"required"`
	Reason string `json:"reason" binding:"required"`
}

// FileReport 受理对公开榜单的举报。
func FileReport(c *gin.Context) {
	var body FileReportRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "请求格式错误: " + err.Error()})
		return
	}

	r, err := svc.File(body.ListID, member.MemberIDFromContext(c), body.Reason)
	if err != nil {
		respondReportError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": r.ID})
}

// ListOpenReports 是管理端的待处理举报列表接口。
func ListOpenReports(c *gin.Context) {
	reports, err := svc.Open()
	if err != nil {
		respondReportError(c, err)
		return
	}
	c.JSON(http.StatusOK, reports)
}

// ResolveReport 是管理端的举报处理接口。
func ResolveReport(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的举报ID"})
		return
	}
	if err := svc.Resolve(uint(id)); err != nil {
		respondReportError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func respondReportError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrListNotFound), errors.Is(err, ErrReportNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		log.WithError(err).Error("举报接口发生内部错误")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "内部错误"})
	}
}
