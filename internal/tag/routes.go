package tag

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// SetupTagRoutes 设置百科标签路由
func SetupTagRoutes(r *gin.RouterGroup, db *gorm.DB) {
	handler := NewTagHandler(db)

	tags := r.Group("/wiki/tags")
	{
		tags.GET("", handler.ListTags)     // 标签列表
		tags.GET("/:slug", handler.GetTag) // 标签详情
	}
}
