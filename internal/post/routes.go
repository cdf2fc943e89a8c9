package post

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/tsuki530/2023-tieba-bk/internal/database"
	"github.com/tsuki530/2023-tieba-bk/internal/middleware"
)

// SetupPostRoutes 注册社区帖子相关路由
func SetupPostRoutes(r *gin.RouterGroup, db *gorm.DB, redis *database.RedisClient) {
	handler := NewPostHandler(db, redis)

	posts := r.Group("/posts")
	{
		// 分类
		posts.GET("/categories", handler.ListCategories)

		categoryAdmin := posts.Group("/categories")
		categoryAdmin.Use(middleware.JWTAuth(), middleware.StaffOnly())
		{
			categoryAdmin.POST("", handler.CreateCategory)
			categoryAdmin.PUT("/:id", handler.UpdateCategory)
			categoryAdmin.DELETE("/:id", handler.DeleteCategory)
		}

		// 帖子（公开读，可选登录用于草稿可见性与点赞状态）
		public := posts.Group("/posts")
		public.Use(middleware.OptionalJWTAuth())
		{
			public.GET("", handler.ListPosts)
			public.GET("/featured", handler.ListFeatured)
			public.GET("/pinned", handler.ListPinned)
			public.GET("/:id", handler.GetPost)
			public.GET("/:id/comments", handler.ListComments)
			public.GET("/:id/shares", handler.ListShares)
			public.POST("/:id/view", handler.RecordView)
		}

		authed := posts.Group("/posts")
		authed.Use(middleware.JWTAuth())
		{
			authed.POST("", handler.CreatePost)
			authed.PUT("/:id", handler.UpdatePost)
			authed.DELETE("/:id", handler.DeletePost)
			authed.POST("/:id/like", handler.ToggleLike)
			authed.POST("/:id/comments", handler.CreateComment)
			authed.POST("/:id/share", handler.SharePost)
		}

		// 评论
		comments := posts.Group("/comments")
		comments.Use(middleware.JWTAuth())
		{
			comments.PUT("/:id", handler.UpdateComment)
			comments.DELETE("/:id", handler.DeleteComment)
			comments.POST("/:id/like", handler.ToggleCommentLike)
		}

		// 举报
		reports := posts.Group("/reports")
		reports.Use(middleware.JWTAuth())
		{
			reports.POST("", handler.CreateReport)
			reports.GET("", handler.ListReports)
		}

		reportAdmin := posts.Group("/reports")
		reportAdmin.Use(middleware.JWTAuth(), middleware.StaffOnly())
		{
			reportAdmin.PUT("/:id", handler.ReviewReport)
		}

		// 统计
		posts.GET("/stats", handler.GetStats)
	}
}
