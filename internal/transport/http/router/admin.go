package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"go-identity-platform/internal/core/auth"
	"go-identity-platform/internal/core/server"
	"go-identity-platform/internal/repo"
	mdw "go-identity-platform/internal/transport/http/middleware"
)

// NewAdminEngine 管理端引擎：角色以库中 role 为准（不信 token 附加 claim）。
// 底座用 server.NewRouter（ginzap 日志 + recovery + cors），访问量小，不需要
// 用户端那套脱敏访问日志。
func NewAdminEngine(l *zap.Logger, db *gorm.DB, jwter *auth.JWTer) *gin.Engine {
	r := server.NewRouter(l)

	r.Use(
		mdw.RequestID(),
		mdw.RateLimit(200, 400),
		mdw.ConcurrencyLimit(300),
		mdw.MaxBodyBytes(1<<20),
		mdw.Timeout(10*time.Second),
		mdw.Metrics(),
		mdw.Authenticate(jwter),
	)

	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": 1}) })

	accountRepo := repo.NewAccountRepo(db)

	admin := r.Group("/admin/v1")
	admin.Use(mdw.RequireAdmin(accountRepo))

	// 自动发现（如有）
	MountAllAdmin(admin)

	// 账号管理接口
	MountAdminActions(admin, db, l)

	return r
}
