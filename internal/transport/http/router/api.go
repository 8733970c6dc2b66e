package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"go-identity-platform/internal/core/auth"
	"go-identity-platform/internal/core/cache"
	"go-identity-platform/internal/repo"
	"go-identity-platform/internal/service"
	"go-identity-platform/internal/transport/http/handler"
	mdw "go-identity-platform/internal/transport/http/middleware"
)

// NewAPIEngine 用户端引擎：认证过滤全局挂，/auth/* 三个入口公开，其余走 RequireAuth
func NewAPIEngine(l *zap.Logger, db *gorm.DB, jwter *auth.JWTer, c *cache.Cache) *gin.Engine {
	r := gin.New()

	// 中间件
	r.Use(
		cors.Default(),
		mdw.RequestID(),
		mdw.RateLimit(200, 400),
		mdw.ConcurrencyLimit(300),
		mdw.MaxBodyBytes(1<<20),
		mdw.Timeout(10*time.Second),
		mdw.SimpleRecovery(),
		mdw.Metrics(),
		mdw.AccessLog(l),
		mdw.Authenticate(jwter),
	)

	// 健康检查 / 指标
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": 1}) })
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// 依赖
	accountRepo := repo.NewAccountRepo(db)
	profileRepo := repo.NewProfileRepo(db)
	profileSvc := service.NewProfileService(profileRepo, c, l)
	authSvc := service.NewAuthService(accountRepo, profileSvc, jwter, l)
	authH := handler.NewAuthHandler(authSvc)
	profH := handler.NewProfileHandler(profileSvc)

	api := r.Group("/api/v1")

	// 公开入口（无凭证即可）
	api.POST("/auth/register", authH.Register)
	api.POST("/auth/login", authH.Login)
	api.POST("/auth/refresh", authH.Refresh)

	// 鉴权分组
	authed := api.Group("", mdw.RequireAuth())
	authed.DELETE("/auth/user", authH.DeleteSelf)
	authed.GET("/users/me", profH.Me)
	authed.PUT("/users/me", profH.UpdateMe)
	authed.GET("/users/:id", profH.GetByID)

	// 注册制的 feature 模块（projects 等）
	MountAllAPI(authed)

	return r
}
