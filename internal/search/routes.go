package search

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// SetupSearchRoutes 注册搜索相关路由（全部公开）
func SetupSearchRoutes(r *gin.RouterGroup, db *gorm.DB) {
	handler := NewSearchHandler(db)

	group := r.Group("/search")
	{
		group.GET("/search", handler.Search)
		group.GET("/search/autocomplete", handler.Autocomplete)
		group.GET("/search/stats", handler.Stats)
		group.GET("/filters", handler.Filters)
	}
}
