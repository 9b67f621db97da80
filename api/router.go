package api

import (
	"net/http"
	"strings"

	"github.com/AniTopia/anitopia-backend/internal/dailygame"
	"github.com/AniTopia/anitopia-backend/internal/member"
	"github.com/AniTopia/anitopia-backend/internal/report"
	"github.com/AniTopia/anitopia-backend/internal/toplist"
	"github.com/AniTopia/anitopia-backend/pkg/token"
	"github.com/gin-gonic/gin"
)

// adminAuthMiddleware 校验管理端令牌。
// 令牌在进程启动时生成并打印到日志，见cmd/server。
func adminAuthMiddleware(scope string) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
		if raw == "" || !token.ValidateAdminToken(scope, raw) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "无效的管理端令牌"})
			return
		}
		c.Next()
	}
}

// SetupRoutes 注册项目的所有API路由。
func SetupRoutes(router *gin.Engine, members *member.Service) {
	api := router.Group("/api")
	api.Use(member.EnsureMemberCookieMiddleware())
	{
		// 榜单相关的路由组
		lists := api.Group("/lists")
		{
			lists.GET("", member.LoadMemberMiddleware(members), toplist.GetPublicLists)
			lists.GET("/paged", member.LoadMemberMiddleware(members), toplist.GetPublicListsPaged)
			lists.GET("/:id", member.LoadMemberMiddleware(members), toplist.GetList)
			lists.POST("/:id/view", toplist.RecordView)

			// 写操作要求成员已登记
			lists.POST("", member.RequireMemberMiddleware(members), toplist.CreateList)
			lists.PUT("/:id", member.RequireMemberMiddleware(members), toplist.UpdateList)
			lists.DELETE("/:id", member.RequireMemberMiddleware(members), toplist.DeleteList)
			lists.POST("/:id/vote", member.RequireMemberMiddleware(members), toplist.SubmitVote)
			lists.POST("/:id/favorite", member.RequireMemberMiddleware(members), toplist.ToggleFavorite)
		}

		// 每日竞猜的路由组
		game := api.Group("/game")
		{
			game.GET("/state", member.LoadMemberMiddleware(members), dailygame.GetGameState)
			game.POST("/guess", member.LoadMemberMiddleware(members), dailygame.SubmitGuess)
		}

		// 举报
		api.POST("/reports", member.RequireMemberMiddleware(members), report.FileReport)

		// 管理端
		admin := api.Group("/admin")
		{
			admin.POST("/lists/recompute", adminAuthMiddleware("recompute"), toplist.RecomputeAll)
			admin.GET("/reports", adminAuthMiddleware("reports"), report.ListOpenReports)
			admin.POST("/reports/:id/resolve", adminAuthMiddleware("reports"), report.ResolveReport)
		}
	}
}
