// Package post 社区帖子相关模型
package post

import "time"

// 帖子状态
const (
	StatusDraft     = "draft"
	StatusPublished = "published"
	StatusClosed    = "closed"
	StatusArchived  = "archived"
)

// 帖子类型
const (
	TypeDiscussion   = "discussion"
	TypeQuestion     = "question"
	TypeAnnouncement = "announcement"
	TypeNews         = "news"
)

// Category 帖子分类表（扁平，不分层级）
type Category struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Name        string `gorm:"type:varchar(100);uniqueIndex;not null" json:"name"`
	Slug        string `gorm:"type:varchar(100);uniqueIndex;not null" json:"slug"`
	Description string `gorm:"type:text" json:"description"`
	// 前端展示用的标签颜色
	Color     string    `gorm:"type:varchar(7);default:'#3498db'" json:"color"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Category) TableName() string {
	return "post_categories"
}

// Post 社区帖子表
type Post struct {
	ID      uint   `gorm:"primaryKey" json:"id"`
	Title   string `gorm:"type:varchar(200);not null" json:"title"`
	Content string `gorm:"type:text;not null" json:"content"`

	AuthorID   uint  `gorm:"not null;index" json:"author_id"`
	CategoryID *uint `gorm:"index" json:"category_id"`

	// 状态: draft, published, closed, archived
	Status string `gorm:"type:varchar(20);default:'draft';index" json:"status"`
	// 类型: discussion, question, announcement, news
	PostType string `gorm:"type:varchar(20);default:'discussion'" json:"post_type"`

	IsPinned   bool `gorm:"default:false;index" json:"is_pinned"`
	IsFeatured bool `gorm:"default:false" json:"is_featured"`
	IsApproved bool `gorm:"default:true" json:"is_approved"`

	// 冗余统计，由点赞/评论/分享处理器同步维护
	ViewsCount    uint `gorm:"default:0" json:"views_count"`
	LikesCount    uint `gorm:"default:0" json:"likes_count"`
	CommentsCount uint `gorm:"default:0" json:"comments_count"`
	SharesCount   uint `gorm:"default:0" json:"shares_count"`
	ReportedCount uint `gorm:"default:0" json:"reported_count"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	// 首次进入对应状态时各写入一次
	PublishedAt *time.Time `json:"published_at"`
	ClosedAt    *time.Time `json:"closed_at"`
}
