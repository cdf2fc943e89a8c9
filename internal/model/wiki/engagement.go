package wiki

import "time"

// ArticleLike 文章点赞表
// (article, user) 唯一：同一用户对同一文章最多一条点赞记录
type ArticleLike struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ArticleID uint      `gorm:"not null;uniqueIndex:idx_article_like_unique;index" json:"article_id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_article_like_unique" json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

// ArticleComment 文章评论表
// parent_id 非空表示回复；应用层按一层嵌套展示
type ArticleComment struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	ArticleID uint   `gorm:"not null;index" json:"article_id"`
	AuthorID  uint   `gorm:"not null;index" json:"author_id"`
	ParentID  *uint  `gorm:"index" json:"parent_id"`
	Content   string `gorm:"type:varchar(1000);not null" json:"content"`

	// 审核标记，只有已通过的评论计入父实体 comments_count
	IsApproved    bool `gorm:"default:true" json:"is_approved"`
	ReportedCount uint `gorm:"default:0" json:"reported_count"`
	LikesCount    uint `gorm:"default:0" json:"likes_count"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsReply 是否为回复
func (c *ArticleComment) IsReply() bool {
	return c.ParentID != nil
}

// CommentLike 文章评论点赞表
type CommentLike struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CommentID uint      `gorm:"not null;uniqueIndex:idx_wiki_comment_like_unique;index" json:"comment_id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_wiki_comment_like_unique" json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}
