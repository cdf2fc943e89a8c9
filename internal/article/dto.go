package article

import (
	"time"

	wikiModel "github.com/tsuki530/2023-tieba-bk/internal/model/wiki"
)

// CreateArticleRequest 创建文章请求
type CreateArticleRequest struct {
	Title      string   `json:"title" binding:"required,max=200"`
	Content    string   `json:"content" binding:"required"`
	Summary    string   `json:"summary" binding:"omitempty,max=500"`
	CategoryID *uint    `json:"category_id"`
	Tags       []string `json:"tags"`
	Status     string   `json:"status" binding:"omitempty,oneof=draft published"`
}

// UpdateArticleRequest 更新文章请求，指针字段区分"未传"和"清空"
type UpdateArticleRequest struct {
	Title      *string  `json:"title" binding:"omitempty,max=200"`
	Content    *string  `json:"content"`
	Summary    *string  `json:"summary" binding:"omitempty,max=500"`
	CategoryID *uint    `json:"category_id"`
	Tags       []string `json:"tags"`
	Status     *string  `json:"status" binding:"omitempty,oneof=draft published archived"`
	// 修改说明，写入版本快照
	ChangeDescription string `json:"change_description" binding:"omitempty,max=500"`
}

// CreateCommentRequest 创建评论请求
type CreateCommentRequest struct {
	Content  string `json:"content" binding:"required,max=1000"`
	ParentID *uint  `json:"parent_id"`
}

// UpdateCommentRequest 更新评论请求
type UpdateCommentRequest struct {
	Content string `json:"content" binding:"required,max=1000"`
}

// ArticleResponse 文章详情响应
type ArticleResponse struct {
	ID            uint            `json:"id"`
	Title         string          `json:"title"`
	Slug          string          `json:"slug"`
	Content       string          `json:"content"`
	Summary       string          `json:"summary"`
	AuthorID      uint            `json:"author_id"`
	CategoryID    *uint           `json:"category_id"`
	Status        string          `json:"status"`
	Featured      bool            `json:"featured"`
	ViewsCount    uint            `json:"views_count"`
	LikesCount    uint            `json:"likes_count"`
	CommentsCount uint            `json:"comments_count"`
	Tags          []wikiModel.Tag `json:"tags"`
	IsLiked       bool            `json:"is_liked"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
	PublishedAt   *time.Time      `json:"published_at"`
}

// ArticleListItem 文章列表项（不含正文）
type ArticleListItem struct {
	ID            uint       `json:"id"`
	Title         string     `json:"title"`
	Slug          string     `json:"slug"`
	Summary       string     `json:"summary"`
	AuthorID      uint       `json:"author_id"`
	CategoryID    *uint      `json:"category_id"`
	Status        string     `json:"status"`
	Featured      bool       `json:"featured"`
	ViewsCount    uint       `json:"views_count"`
	LikesCount    uint       `json:"likes_count"`
	CommentsCount uint       `json:"comments_count"`
	CreatedAt     time.Time  `json:"created_at"`
	PublishedAt   *time.Time `json:"published_at"`
}

// ArticleListResponse 文章列表响应
type ArticleListResponse struct {
	Articles []ArticleListItem `json:"articles"`
	Total    int64             `json:"total"`
	Page     int               `json:"page"`
	PageSize int               `json:"page_size"`
}

// VersionResponse 版本响应
type VersionResponse struct {
	ID                uint      `json:"id"`
	VersionNumber     int       `json:"version_number"`
	Title             string    `json:"title"`
	Content           string    `json:"content,omitempty"`
	Summary           string    `json:"summary"`
	EditorID          uint      `json:"editor_id"`
	ChangeDescription string    `json:"change_description"`
	CreatedAt         time.Time `json:"created_at"`
}

// CommentResponse 评论响应，回复以一层嵌套展示
type CommentResponse struct {
	ID         uint              `json:"id"`
	ArticleID  uint              `json:"article_id"`
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

func toArticleResponse(a *wikiModel.Article, tags []wikiModel.Tag, isLiked bool) ArticleResponse {
	if tags == nil {
		tags = []wikiModel.Tag{}
	}
	return ArticleResponse{
		ID:            a.ID,
		Title:         a.Title,
		Slug:          a.Slug,
		Content:       a.Content,
		Summary:       a.Summary,
		AuthorID:      a.AuthorID,
		CategoryID:    a.CategoryID,
		Status:        a.Status,
		Featured:      a.Featured,
		ViewsCount:    a.ViewsCount,
		LikesCount:    a.LikesCount,
		CommentsCount: a.CommentsCount,
		Tags:          tags,
		IsLiked:       isLiked,
		CreatedAt:     a.CreatedAt,
		UpdatedAt:     a.UpdatedAt,
		PublishedAt:   a.PublishedAt,
	}
}

func toArticleListItem(a *wikiModel.Article) ArticleListItem {
	return ArticleListItem{
		ID:            a.ID,
		Title:         a.Title,
		Slug:          a.Slug,
		Summary:       a.Summary,
		AuthorID:      a.AuthorID,
		CategoryID:    a.CategoryID,
		Status:        a.Status,
		Featured:      a.Featured,
		ViewsCount:    a.ViewsCount,
		LikesCount:    a.LikesCount,
		CommentsCount: a.CommentsCount,
		CreatedAt:     a.CreatedAt,
		PublishedAt:   a.PublishedAt,
	}
}

func toVersionResponse(v *wikiModel.ArticleVersion, withContent bool) VersionResponse {
	resp := VersionResponse{
		ID:                v.ID,
		VersionNumber:     v.VersionNumber,
		Title:             v.Title,
		Summary:           v.Summary,
		EditorID:          v.EditorID,
		ChangeDescription: v.ChangeDescription,
		CreatedAt:         v.CreatedAt,
	}
	if withContent {
		resp.Content = v.Content
	}
	return resp
}
