package router

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"go-identity-platform/internal/domain"
	httpez "go-identity-platform/internal/transport/http/ez"
)

// MountAdminActions 账号运营接口：列表 + 状态流转（lock/ban/deactivate/activate）。
// deleted 只能走用户自删，管理端不开放。
func MountAdminActions(admin *gin.RouterGroup, db *gorm.DB, l *zap.Logger) {
	ez := httpez.New(admin)

	// --- GET /admin/v1/accounts 账号列表 ---
	type listQ struct {
		Offset int    `form:"offset,default=0"`
		Limit  int    `form:"limit,default=20"`
		Q      string `form:"q"`      // 按 email 模糊搜
		Status string `form:"status"` // 按状态过滤
	}
	type row struct {
		ID        string        `json:"id"`
		Email     string        `json:"email"`
		Status    domain.Status `json:"status"`
		Role      string        `json:"role"`
		CreatedAt time.Time     `json:"createdAt"`
	}
	type listOut struct {
		Total int64 `json:"total"`
		Items []row `json:"items"`
	}

	httpez.RegisterAction[listQ, listOut](ez, db, httpez.Action[listQ, listOut]{
		Method: http.MethodGet,
		Path:   "/accounts",
		Binder: httpez.BindQuery,
		Handler: func(c *gin.Context, tx *gorm.DB, in *listQ) (listOut, error) {
			if in.Limit <= 0 || in.Limit > 100 {
				in.Limit = 20
			}
			q := tx.Model(&domain.Account{})
			if s := strings.TrimSpace(in.Q); s != "" {
				q = q.Where("email LIKE ?", "%"+s+"%")
			}
			if in.Status != "" {
				if !domain.Status(in.Status).Valid() {
					return listOut{}, httpez.BadRequest("unknown status")
				}
				q = q.Where("status = ?", in.Status)
			}

			var total int64
			if err := q.Count(&total).Error; err != nil {
				return listOut{}, httpez.Internal("count accounts failed", err)
			}

			var as []domain.Account
			if err := q.Order("created_at DESC").Limit(in.Limit).Offset(in.Offset).Find(&as).Error; err != nil {
				return listOut{}, httpez.Internal("list accounts failed", err)
			}

			out := listOut{Total: total, Items: make([]row, 0, len(as))}
			for _, a := range as {
				out.Items = append(out.Items, row{
					ID: a.ID, Email: a.Email, Status: a.Status, Role: a.Role, CreatedAt: a.CreatedAt,
				})
			}
			return out, nil
		},
	})

	// --- POST /admin/v1/accounts/:id/status 状态流转 ---
	type statusIn struct {
		Status string `json:"status" binding:"required"`
	}
	httpez.RegisterAction[statusIn, gin.H](ez, db, httpez.Action[statusIn, gin.H]{
		Method: http.MethodPost,
		Path:   "/accounts/:id/status",
		Binder: httpez.BindJSON,
		Handler: func(c *gin.Context, tx *gorm.DB, in *statusIn) (gin.H, error) {
			id := c.Param("id")
			next := domain.Status(in.Status)
			if !next.Valid() || next == domain.StatusDeleted {
				return nil, httpez.BadRequest("status must be one of active/inactive/locked/banned")
			}

			var a domain.Account
			if err := tx.First(&a, "id = ?", id).Error; err != nil {
				return nil, httpez.NotFound("account not found")
			}
			if a.IsDeleted() {
				// 已删账号只能通过同邮箱重注册复活
				return nil, httpez.Conflict("account is deleted")
			}
			prev := a.Status
			a.Status = next
			if err := tx.Save(&a).Error; err != nil {
				return nil, httpez.Internal("update status failed", err)
			}
			l.Info("account status changed",
				zap.String("id", a.ID),
				zap.String("from", string(prev)),
				zap.String("to", string(next)),
			)
			return gin.H{"id": a.ID, "status": a.Status}, nil
		},
	})
}
