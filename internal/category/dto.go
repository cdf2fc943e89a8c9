package category

import (
	"time"

	wikiModel "github.com/tsuki530/2023-tieba-bk/internal/model/wiki"
)

// CreateCategoryRequest 创建分类请求
type CreateCategoryRequest struct {
	Name        string `json:"name" binding:"required,max=100"`
	Description string `json:"description" binding:"omitempty,max=2000"`
	ParentID    *uint  `json:"parent_id"`
}

// UpdateCategoryRequest 更新分类请求
type UpdateCategoryRequest struct {
	Name        *string `json:"name" binding:"omitempty,max=100"`
	Description *string `json:"description" binding:"omitempty,max=2000"`
	ParentID    *uint   `json:"parent_id"`
}

// CategoryResponse 分类响应
type CategoryResponse struct {
	ID            uint               `json:"id"`
	Name          string             `json:"name"`
	Slug          string             `json:"slug"`
	Description   string             `json:"description"`
	ParentID      *uint              `json:"parent_id"`
	ArticlesCount int64              `json:"articles_count"`
	Children      []CategoryResponse `json:"children,omitempty"`
	CreatedAt     time.Time          `json:"created_at"`
}

func toCategoryResponse(c *wikiModel.Category, articlesCount int64) CategoryResponse {
	return CategoryResponse{
		ID:            c.ID,
		Name:          c.Name,
		Slug:          c.Slug,
		Description:   c.Description,
		ParentID:      c.ParentID,
		ArticlesCount: articlesCount,
		CreatedAt:     c.CreatedAt,
	}
}
