package post

import "time"

// 分享去向
const (
	SharedToTimeline = "timeline"
	SharedToMessage  = "message"
	SharedToExternal = "external"
)

// 举报处理状态
const (
	ReportPending   = "pending"
	ReportReviewed  = "reviewed"
	ReportResolved  = "resolved"
	ReportDismissed = "dismissed"
)

// PostLike 帖子点赞表
type PostLike struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	PostID    uint      `gorm:"not null;uniqueIndex:idx_post_like_unique;index" json:"post_id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_post_like_unique" json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

// PostComment 帖子评论表
type PostComment struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	PostID   uint   `gorm:"not null;index" json:"post_id"`
	AuthorID uint   `gorm:"not null;index" json:"author_id"`
	ParentID *uint  `gorm:"index" json:"parent_id"`
	Content  string `gorm:"type:varchar(2000);not null" json:"content"`

	IsApproved    bool `gorm:"default:true" json:"is_approved"`
	ReportedCount uint `gorm:"default:0" json:"reported_count"`
	LikesCount    uint `gorm:"default:0" json:"likes_count"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsReply 是否为回复
func (c *PostComment) IsReply() bool {
	return c.ParentID != nil
}

// CommentLike 帖子评论点赞表
type CommentLike struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CommentID uint      `gorm:"not null;uniqueIndex:idx_post_comment_like_unique;index" json:"comment_id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_post_comment_like_unique" json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

func (CommentLike) TableName() string {
	return "post_comment_likes"
}

// PostShare 帖子分享表
type PostShare struct {
	ID     uint `gorm:"primaryKey" json:"id"`
	PostID uint `gorm:"not null;index" json:"post_id"`
	UserID uint `gorm:"not null;index" json:"user_id"`
	// 去向: timeline, message, external
	SharedTo  string    `gorm:"type:varchar(50);not null" json:"shared_to"`
	Message   string    `gorm:"type:varchar(500)" json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

// PostReport 举报表
// post_id 与 comment_id 必须恰好设置其一，服务层在写入前校验
type PostReport struct {
	ID         uint  `gorm:"primaryKey" json:"id"`
	ReporterID uint  `gorm:"not null;index" json:"reporter_id"`
	PostID     *uint `gorm:"index" json:"post_id"`
	CommentID  *uint `gorm:"index" json:"comment_id"`

	// 类型: spam, harassment, hate_speech, misinformation, inappropriate, other
	ReportType  string `gorm:"type:varchar(20);not null" json:"report_type"`
	Description string `gorm:"type:varchar(1000)" json:"description"`

	// 处理状态: pending, reviewed, resolved, dismissed
	Status         string `gorm:"type:varchar(20);default:'pending';index" json:"status"`
	ModeratorNotes string `gorm:"type:varchar(1000)" json:"moderator_notes"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
