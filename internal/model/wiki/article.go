package wiki

import "time"

// 文章状态
const (
	StatusDraft     = "draft"
	StatusPublished = "published"
	StatusArchived  = "archived"
)

// Article 百科文章表
type Article struct {
	ID uint `gorm:"primaryKey" json:"id"`
	// slug 创建时由标题生成，一经写入不再变化
	Title   string `gorm:"type:varchar(200);not null" json:"title"`
	Slug    string `gorm:"type:varchar(200);uniqueIndex;not null" json:"slug"`
	Content string `gorm:"type:text;not null" json:"content"`
	Summary string `gorm:"type:varchar(500)" json:"summary"`

	AuthorID   uint  `gorm:"not null;index" json:"author_id"`
	CategoryID *uint `gorm:"index" json:"category_id"`

	// 状态: draft, published, archived
	Status   string `gorm:"type:varchar(20);default:'draft';index" json:"status"`
	Featured bool   `gorm:"default:false" json:"featured"`

	// 冗余统计，由点赞/评论处理器同步维护
	ViewsCount    uint `gorm:"default:0" json:"views_count"`
	LikesCount    uint `gorm:"default:0" json:"likes_count"`
	CommentsCount uint `gorm:"default:0" json:"comments_count"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	// 首次进入 published 状态时写入一次，之后不再变化
	PublishedAt *time.Time `json:"published_at"`
}

// ArticleVersion 文章版本历史表 (全量快照，更新前写入)
type ArticleVersion struct {
	ID        uint `gorm:"primaryKey" json:"id"`
	ArticleID uint `gorm:"not null;uniqueIndex:idx_article_version_unique" json:"article_id"`
	// 版本号，在article_id下递增 (1, 2, 3...)
	VersionNumber int `gorm:"not null;uniqueIndex:idx_article_version_unique" json:"version_number"`
	// 更新前的全量快照
	Title   string `gorm:"type:varchar(200);not null" json:"title"`
	Content string `gorm:"type:text;not null" json:"content"`
	Summary string `gorm:"type:varchar(500)" json:"summary"`
	// 触发本次快照的编辑者
	EditorID uint `gorm:"not null;index" json:"editor_id"`
	// 修改说明
	ChangeDescription string    `gorm:"type:varchar(500)" json:"change_description"`
	CreatedAt         time.Time `json:"created_at"`
}
