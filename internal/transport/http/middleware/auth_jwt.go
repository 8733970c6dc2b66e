package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"go-identity-platform/internal/core/auth"
	"go-identity-platform/internal/domain"
	resp "go-identity-platform/internal/transport/http/response"
)

const bearerPrefix = "Bearer "

// Authenticate 每请求一次的认证过滤：
//   - 无凭证（或前缀不对）→ 放行，后续由 RequireAuth 决定是否拒绝
//   - 凭证校验失败 → 立即中断，不进 handler
//   - 校验通过 → 把 Principal 挂到本请求上下文
func Authenticate(j *auth.JWTer) gin.HandlerFunc {
	return func(c *gin.Context) {
		ah := strings.TrimSpace(c.GetHeader("Authorization"))
		if !strings.HasPrefix(ah, bearerPrefix) {
			c.Next()
			return
		}
		claims, err := j.Parse(strings.TrimPrefix(ah, bearerPrefix))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusOK, resp.Error(resp.CodeUnauthorized, "invalid token"))
			return
		}
		auth.SetPrincipal(c, auth.Principal{AccountID: claims.AccountID(), Email: claims.Email})
		c.Next()
	}
}

// RequireAuth 保护分组：无 Principal 即 401
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := auth.PrincipalFrom(c); !ok {
			c.AbortWithStatusJSON(http.StatusOK, resp.Error(resp.CodeUnauthorized, "missing token"))
			return
		}
		c.Next()
	}
}

// RequireAdmin 管理端授权：角色以库里为准，不信 token 里的任何附加 claim
func RequireAdmin(accounts domain.AccountRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := auth.PrincipalFrom(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusOK, resp.Error(resp.CodeUnauthorized, "missing token"))
			return
		}
		a, err := accounts.FindByID(contextOf(c), p.AccountID)
		if err != nil || a == nil || !a.CanLogin() || a.Role != "admin" {
			c.AbortWithStatusJSON(http.StatusOK, resp.Error(resp.CodeForbidden, "forbidden"))
			return
		}
		c.Next()
	}
}

func contextOf(c *gin.Context) context.Context { return c.Request.Context() }
