package category

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/tsuki530/2023-tieba-bk/internal/middleware"
)

// SetupCategoryRoutes 设置百科分类路由
func SetupCategoryRoutes(r *gin.RouterGroup, db *gorm.DB) {
	handler := NewCategoryHandler(db)

	categories := r.Group("/wiki/categories")
	{
		categories.GET("", handler.ListCategories)    // 分类树
		categories.GET("/:slug", handler.GetCategory) // 分类详情
	}

	// 管理操作 - 需要管理员权限
	admin := r.Group("/wiki/categories")
	admin.Use(middleware.JWTAuth(), middleware.StaffOnly())
	{
		admin.POST("", handler.CreateCategory)       // 创建分类
		admin.PUT("/:id", handler.UpdateCategory)    // 更新分类
		admin.DELETE("/:id", handler.DeleteCategory) // 删除分类
	}
}
