package article

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/tsuki530/2023-tieba-bk/internal/database"
	"github.com/tsuki530/2023-tieba-bk/internal/middleware"
)

// SetupArticleRoutes 设置百科文章相关路由
func SetupArticleRoutes(r *gin.RouterGroup, db *gorm.DB, redis *database.RedisClient) {
	handler := NewArticleHandler(db, redis)

	// 文章读取 - 可选认证（用于草稿可见性和 is_liked 标记）
	articles := r.Group("/wiki/articles")
	articles.Use(middleware.OptionalJWTAuth())
	{
		articles.GET("", handler.ListArticles)                        // 文章列表
		articles.GET("/featured", handler.ListFeatured)               // 推荐文章
		articles.GET("/popular", handler.ListPopular)                 // 热门文章
		articles.GET("/:slug", handler.GetArticle)                    // 文章详情
		articles.GET("/:slug/versions", handler.ListVersions)         // 版本列表
		articles.GET("/:slug/versions/:number", handler.GetVersion)   // 指定版本
		articles.GET("/:slug/comments", handler.ListComments)         // 评论列表
	}

	// 文章写入 - 需要认证
	articlesAuth := r.Group("/wiki/articles")
	articlesAuth.Use(middleware.JWTAuth())
	{
		articlesAuth.POST("", handler.CreateArticle)                 // 创建文章
		articlesAuth.PUT("/:slug", handler.UpdateArticle)            // 更新文章（写入版本快照）
		articlesAuth.DELETE("/:slug", handler.DeleteArticle)         // 删除文章
		articlesAuth.POST("/:slug/like", handler.ToggleLike)         // 点赞/取消点赞
		articlesAuth.POST("/:slug/comments", handler.CreateComment)  // 创建评论
	}

	// 评论操作 - 需要认证
	comments := r.Group("/wiki/comments")
	comments.Use(middleware.JWTAuth())
	{
		comments.PUT("/:id", handler.UpdateComment)           // 更新评论
		comments.DELETE("/:id", handler.DeleteComment)        // 删除评论
		comments.POST("/:id/like", handler.ToggleCommentLike) // 点赞/取消点赞评论
	}

	// 点赞记录 - 可选认证
	likes := r.Group("/wiki/likes")
	likes.Use(middleware.OptionalJWTAuth())
	{
		likes.GET("", handler.ListLikes) // 点赞记录
	}
}
