package model

import (
	"gorm.io/gorm"

	"github.com/tsuki530/2023-tieba-bk/internal/model/post"
	"github.com/tsuki530/2023-tieba-bk/internal/model/user"
	"github.com/tsuki530/2023-tieba-bk/internal/model/wiki"
)

func InitTable(db *gorm.DB) error {
	// 自动迁移数据库表结构
	err := db.AutoMigrate(
		// 用户模型
		&user.User{},
		&user.Follow{},
		// 百科相关模型
		&wiki.Category{},
		&wiki.Tag{},
		&wiki.Article{},
		&wiki.ArticleTag{},
		&wiki.ArticleVersion{},
		&wiki.ArticleLike{},
		&wiki.ArticleComment{},
		&wiki.CommentLike{},
		// 帖子相关模型
		&post.Category{},
		&post.Post{},
		&post.PostLike{},
		&post.PostComment{},
		&post.CommentLike{},
		&post.PostShare{},
		&post.PostReport{},
	)
	if err != nil {
		return err
	}
	return nil
}
