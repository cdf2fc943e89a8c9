package post

import (
	"time"

	postModel "github.com/tsuki530/2023-tieba-bk/internal/model/post"
)

// CreatePostRequest 创建帖子请求
type CreatePostRequest struct {
	Title      string `json:"title" binding:"required,max=200"`
	Content    string `json:"content" binding:"required"`
	CategoryID *uint  `json:"category_id"`
	PostType   string `json:"post_type" binding:"omitempty,oneof=discussion question announcement news"`
	Status     string `json:"status" binding:"omitempty,oneof=draft published"`
}

// UpdatePostRequest 更新帖子请求
type UpdatePostRequest struct {
	Title      *string `json:"title" binding:"omitempty,max=200"`
	Content    *string `json:"content"`
	CategoryID *uint   `json:"category_id"`
	PostType   *string `json:"post_type" binding:"omitempty,oneof=discussion question announcement news"`
	Status     *string `json:"status" binding:"omitempty,oneof=draft published closed archived"`
	// 置顶/推荐仅管理员可改
	IsPinned   *bool `json:"is_pinned"`
	IsFeatured *bool `json:"is_featured"`
}

// CreateCategoryRequest 创建帖子分类请求
type CreateCategoryRequest struct {
	Name        string `json:"name" binding:"required,max=100"`
	Description string `json:"description" binding:"omitempty,max=2000"`
	Color       string `json:"color" binding:"omitempty,len=7"`
}

// UpdateCategoryRequest 更新帖子分类请求
type UpdateCategoryRequest struct {
	Name        *string `json:"name" binding:"omitempty,max=100"`
	Description *string `json:"description" binding:"omitempty,max=2000"`
	Color       *string `json:"color" binding:"omitempty,len=7"`
}

// CreateCommentRequest 创建评论请求
type CreateCommentRequest struct {
	Content  string `json:"content" binding:"required,max=2000"`
	ParentID *uint  `json:"parent_id"`
}

// UpdateCommentRequest 更新评论请求
type UpdateCommentRequest struct {
	Content string `json:"content" binding:"required,max=2000"`
}

// ShareRequest 分享请求
type ShareRequest struct {
	SharedTo string `json:"shared_to" binding:"required,oneof=timeline message external"`
	Message  string `json:"message" binding:"omitempty,max=500"`
}

// CreateReportRequest 举报请求，post_id 与 comment_id 必须恰好传其一
type CreateReportRequest struct {
	PostID      *uint  `json:"post_id"`
	CommentID   *uint  `json:"comment_id"`
	ReportType  string `json:"report_type" binding:"required,oneof=spam harassment hate_speech misinformation inappropriate other"`
	Description string `json:"description" binding:"omitempty,max=1000"`
}

// ReviewReportRequest 举报处理请求（管理员）
type ReviewReportRequest struct {
	Status         string `json:"status" binding:"required,oneof=pending reviewed resolved dismissed"`
	ModeratorNotes string `json:"moderator_notes" binding:"omitempty,max=1000"`
}

// PostResponse 帖子详情响应
type PostResponse struct {
	ID            uint       `json:"id"`
	Title         string     `json:"title"`
	Content       string     `json:"content"`
	AuthorID      uint       `json:"author_id"`
	CategoryID    *uint      `json:"category_id"`
	Status        string     `json:"status"`
	PostType      string     `json:"post_type"`
	IsPinned      bool       `json:"is_pinned"`
	IsFeatured    bool       `json:"is_featured"`
	ViewsCount    uint       `json:"views_count"`
	LikesCount    uint       `json:"likes_count"`
	CommentsCount uint       `json:"comments_count"`
	SharesCount   uint       `json:"shares_count"`
	IsLiked       bool       `json:"is_liked"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
	PublishedAt   *time.Time `json:"published_at"`
	ClosedAt      *time.Time `json:"closed_at"`
}

// PostListResponse 帖子列表响应
type PostListResponse struct {
	Posts    []PostResponse `json:"posts"`
	Total    int64          `json:"total"`
	Page     int            `json:"page"`
	PageSize int            `json:"page_size"`
}

// CommentResponse 评论响应
type CommentResponse struct {
	ID         uint              `json:"id"`
	PostID     uint              `json:"post_id"`
	AuthorID   uint              `json:"author_id"`
	ParentID   *uint             `json:"parent_id"`
	Content    string            `json:"content"`
	LikesCount uint              `json:"likes_count"`
	IsLiked    bool              `json:"is_liked"`
	Replies    []CommentResponse `json:"replies,omitempty"`
	CreatedAt  time.Time         `json:"created_at"`
	UpdatedAt  time.Time         `json:"updated_at"`
}

// LikeResponse 点赞操作响应
type LikeResponse struct {
	Liked      bool `json:"liked"`
	LikesCount uint `json:"likes_count"`
}

// ViewResponse 浏览量上报响应
type ViewResponse struct {
	Counted    bool `json:"counted"`
	ViewsCount uint `json:"views_count"`
}

// StatsResponse 帖子统计响应
type StatsResponse struct {
	TotalPosts    int64            `json:"total_posts"`
	TotalComments int64            `json:"total_comments"`
	TotalLikes    int64            `json:"total_likes"`
	TotalShares   int64            `json:"total_shares"`
	PostsByType   map[string]int64 `json:"posts_by_type"`
}

func toPostResponse(p *postModel.Post, isLiked bool) PostResponse {
	return PostResponse{
		ID:            p.ID,
		Title:         p.Title,
		Content:       p.Content,
		AuthorID:      p.AuthorID,
		CategoryID:    p.CategoryID,
		Status:        p.Status,
		PostType:      p.PostType,
		IsPinned:      p.IsPinned,
		IsFeatured:    p.IsFeatured,
		ViewsCount:    p.ViewsCount,
		LikesCount:    p.LikesCount,
		CommentsCount: p.CommentsCount,
		SharesCount:   p.SharesCount,
		IsLiked:       isLiked,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
		PublishedAt:   p.PublishedAt,
		ClosedAt:      p.ClosedAt,
	}
}

func toCommentResponse(c *postModel.PostComment, isLiked bool) CommentResponse {
	return CommentResponse{
		ID:         c.ID,
		PostID:     c.PostID,
		AuthorID:   c.AuthorID,
		ParentID:   c.ParentID,
		Content:    c.Content,
		LikesCount: c.LikesCount,
		IsLiked:    isLiked,
		CreatedAt:  c.CreatedAt,
		UpdatedAt:  c.UpdatedAt,
	}
}
