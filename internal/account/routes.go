package account

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/tsuki530/2023-tieba-bk/internal/middleware"
)

// SetupAccountRoutes 设置认证和用户相关路由
func SetupAccountRoutes(r *gin.RouterGroup, db *gorm.DB) {
	handler := NewAccountHandler(db)

	auth := r.Group("/auth")
	{
		auth.POST("/register", handler.Register) // 注册
		auth.POST("/login", handler.Login)       // 登录
		auth.POST("/logout", handler.Logout)     // 退出登录
	}

	// 个人资料 - 需要认证
	authRequired := r.Group("/auth")
	authRequired.Use(middleware.JWTAuth())
	{
		authRequired.GET("/profile", handler.GetProfile)              // 获取当前用户资料
		authRequired.PUT("/profile", handler.UpdateProfile)           // 更新当前用户资料
		authRequired.POST("/change-password", handler.ChangePassword) // 修改密码
	}

	// 用户公开信息 - 可选认证（用于 is_following 标记）
	users := r.Group("/auth/users")
	users.Use(middleware.OptionalJWTAuth())
	{
		users.GET("", handler.ListUsers)                   // 用户列表
		users.GET("/:id", handler.GetUser)                 // 用户公开资料
		users.GET("/:id/followers", handler.ListFollowers) // 粉丝列表
		users.GET("/:id/following", handler.ListFollowing) // 关注列表
	}

	// 关注操作 - 需要认证
	usersAuth := r.Group("/auth/users")
	usersAuth.Use(middleware.JWTAuth())
	{
		usersAuth.POST("/:id/follow", handler.Follow)     // 关注
		usersAuth.DELETE("/:id/follow", handler.Unfollow) // 取消关注
	}
}
