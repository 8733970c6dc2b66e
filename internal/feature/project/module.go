package project

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	httpez "go-identity-platform/internal/transport/http/ez"
)

// Module 以 ez.Crud 挂到已认证分组：/projects 按属主隔离
type Module struct{ DB *gorm.DB }

func (m Module) MountAPI(g *gin.RouterGroup) {
	httpez.Crud(httpez.CrudConfig[ProjectModel]{
		DB:         m.DB,
		Group:      g,
		Path:       "/projects",
		New:        func() *ProjectModel { return &ProjectModel{} },
		OwnerField: "UserID",
		OrderBy:    "created_at DESC",
	})
}
