package route

import (
	"os"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/tsuki530/2023-tieba-bk/config"
	"github.com/tsuki530/2023-tieba-bk/internal/account"
	"github.com/tsuki530/2023-tieba-bk/internal/article"
	"github.com/tsuki530/2023-tieba-bk/internal/category"
	"github.com/tsuki530/2023-tieba-bk/internal/database"
	"github.com/tsuki530/2023-tieba-bk/internal/post"
	"github.com/tsuki530/2023-tieba-bk/internal/search"
	"github.com/tsuki530/2023-tieba-bk/internal/tag"
)

func initRoute(r *gin.Engine) {
	db := database.GetDB()
	redis := database.GetRedis()

	api := r.Group("/api")

	account.SetupAccountRoutes(api, db)
	category.SetupCategoryRoutes(api, db)
	tag.SetupTagRoutes(api, db)
	article.SetupArticleRoutes(api, db, redis)
	post.SetupPostRoutes(api, db, redis)
	search.SetupSearchRoutes(api, db)
}

func SetupRouter() *gin.Engine {
	if config.Conf != nil && config.Conf.Server.Mode != "" {
		gin.SetMode(config.Conf.Server.Mode)
	}

	r := gin.Default()

	origin := os.Getenv("FRONTEND_URL")
	if origin == "" {
		origin = "http://localhost:5173" // 默认值
	}

	// 设置跨域请求
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{origin},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		AllowCredentials: true,
	}))

	initRoute(r)

	return r
}
