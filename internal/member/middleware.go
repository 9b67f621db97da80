package member

import (
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

const (
	CookieName   = "member-id"
	CookieMaxAge = 365 * 24 * 60 * 60

	// MemberIDKey 是gin上下文中存放数字成员ID的键，未登记成员为0。
	MemberIDKey = "memberID"
)

// EnsureMemberCookieMiddleware 确保浏览器持有一个格式正确的member-id cookie。
// 缺失或格式错误时分发一个新的临时UUID。
func EnsureMemberCookieMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		memberUUID, err := c.Cookie(CookieName)

		if err != nil || !IsValidUUID(memberUUID) {
			if err != http.ErrNoCookie {
				log.WithField("cookie", memberUUID).Warn("检测到无效的成员Cookie")
			}
			provisionalID, err := CreateProvisionalID()
			if err != nil {
				log.WithError(err).Error("创建临时成员ID失败")
			} else {
				c.SetCookie(CookieName, provisionalID, CookieMaxAge, "/", "", false, true)
			}
		}

		c.Next()
	}
}

// LoadMemberMiddleware 读取cookie并把成员的数字ID放入gin上下文。
// 未激活的成员ID为0，读接口据此返回匿名视图。
func LoadMemberMiddleware(svc *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		memberUUID, _ := c.Cookie(CookieName)
		id, err := svc.ResolveID(memberUUID)
		if err != nil {
			log.WithError(err).Error("解析成员ID失败")
			id = 0
		}
		c.Set(MemberIDKey, id)
		c.Next()
	}
}

// RequireMemberMiddleware 在写接口前确保成员已落库。
// cookie缺失或非法时直接拒绝请求。
func RequireMemberMiddleware(svc *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		memberUUID, err := c.Cookie(CookieName)
		if err != nil || !IsValidUUID(memberUUID) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "缺少有效的成员身份"})
			return
		}

		id, err := svc.Activate(memberUUID)
		if err != nil {
			log.WithError(err).Error("激活成员失败")
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "无法登记成员身份"})
			return
		}
		c.Set(MemberIDKey, id)
		c.Next()
	}
}

// MemberIDFromContext 从gin上下文中取出数字成员ID，缺省为0。
func MemberIDFromContext(c *gin.Context) uint {
	if v, ok := c.Get(MemberIDKey); ok {
		if id, ok := v.(uint); ok {
			return id
		}
	}
	return 0
}
