package post

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/tsuki530/2023-tieba-bk/internal/database"
	postModel "github.com/tsuki530/2023-tieba-bk/internal/model/post"
	"github.com/tsuki530/2023-tieba-bk/internal/pkg"
	"github.com/tsuki530/2023-tieba-bk/pkg/response"
)

var (
	ErrPostNotFound     = errors.New("帖子不存在")
	ErrCategoryNotFound = errors.New("分类不存在")
	ErrCommentNotFound  = errors.New("评论不存在")
	ErrForbidden        = errors.New("没有操作权限")
	ErrInvalidParentID  = errors.New("父评论无效")
	ErrPostClosed       = errors.New("帖子已关闭")
	ErrReportNotFound   = errors.New("举报记录不存在")
	ErrInvalidReport    = errors.New("举报必须且只能指定帖子或评论之一")
)

// PostService 帖子服务
type PostService struct {
	repo  PostRepository
	redis *database.RedisClient
}

// NewPostService 创建服务实例
func NewPostService(repo PostRepository, redis *database.RedisClient) *PostService {
	return &PostService{repo: repo, redis: redis}
}

// CreatePost 创建帖子
func (s *PostService) CreatePost(req CreatePostRequest, userID uint) (*PostResponse, error) {
	status := req.Status
	if status == "" {
		status = postModel.StatusDraft
	}
	postType := req.PostType
	if postType == "" {
		postType = postModel.TypeDiscussion
	}

	if req.CategoryID != nil {
		if _, err := s.repo.FindCategoryByID(*req.CategoryID); err != nil {
			return nil, ErrCategoryNotFound
		}
	}

	p := &postModel.Post{
		Title:      req.Title,
		Content:    req.Content,
		AuthorID:   userID,
		CategoryID: req.CategoryID,
		Status:     status,
		PostType:   postType,
		IsApproved: true,
	}
	if status == postModel.StatusPublished {
		now := time.Now()
		p.PublishedAt = &now
	}

	if err := s.repo.Create(p); err != nil {
		return nil, err
	}

	resp := toPostResponse(p, false)
	return &resp, nil
}

// GetPost 获取帖子详情，非 published 仅作者和管理员可见
func (s *PostService) GetPost(postID, viewerID uint, isStaff bool) (*PostResponse, error) {
	p, err := s.repo.FindByID(postID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}

	if p.Status != postModel.StatusPublished && p.Status != postModel.StatusClosed &&
		p.AuthorID != viewerID && !isStaff {
		return nil, ErrPostNotFound
	}

	resp := toPostResponse(p, false)
	return &resp, nil
}

// ListPosts 分页获取帖子列表
func (s *PostService) ListPosts(filter PostListFilter, viewerID uint, isStaff bool) (*PostListResponse, error) {
	if filter.Status == "" {
		filter.Status = postModel.StatusPublished
	} else if filter.Status != postModel.StatusPublished &&
		filter.Status != postModel.StatusClosed && !isStaff {
		filter.AuthorID = viewerID
	}

	posts, total, err := s.repo.List(filter)
	if err != nil {
		return nil, err
	}

	items := make([]PostResponse, 0, len(posts))
	for i := range posts {
		items = append(items, toPostResponse(&posts[i], false))
	}

	return &PostListResponse{
		Posts:    items,
		Total:    total,
		Page:     filter.Page,
		PageSize: filter.PageSize,
	}, nil
}

// UpdatePost 更新帖子
// published_at / closed_at 只在首次进入对应状态时写入
func (s *PostService) UpdatePost(postID, userID uint, isStaff bool, req UpdatePostRequest) (*PostResponse, error) {
	p, err := s.repo.FindByID(postID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}

	if p.AuthorID != userID && !isStaff {
		return nil, ErrForbidden
	}

	// 置顶/推荐仅管理员可改
	if (req.IsPinned != nil || req.IsFeatured != nil) && !isStaff {
		return nil, ErrForbidden
	}

	if req.Title != nil {
		p.Title = *req.Title
	}
	if req.Content != nil {
		p.Content = *req.Content
	}
	if req.CategoryID != nil {
		if _, err := s.repo.FindCategoryByID(*req.CategoryID); err != nil {
			return nil, ErrCategoryNotFound
		}
		p.CategoryID = req.CategoryID
	}
	if req.PostType != nil {
		p.PostType = *req.PostType
	}
	if req.IsPinned != nil {
		p.IsPinned = *req.IsPinned
	}
	if req.IsFeatured != nil {
		p.IsFeatured = *req.IsFeatured
	}
	if req.Status != nil && *req.Status != p.Status {
		p.Status = *req.Status
		now := time.Now()
		if *req.Status == postModel.StatusPublished && p.PublishedAt == nil {
			p.PublishedAt = &now
		}
		if *req.Status == postModel.StatusClosed && p.ClosedAt == nil {
			p.ClosedAt = &now
		}
	}

	if err := s.repo.Update(p); err != nil {
		return nil, err
	}

	resp := toPostResponse(p, false)
	return &resp, nil
}

// DeletePost 删除帖子（作者或管理员）
func (s *PostService) DeletePost(postID, userID uint, isStaff bool) error {
	p, err := s.repo.FindByID(postID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrPostNotFound
		}
		return err
	}

	if p.AuthorID != userID && !isStaff {
		return ErrForbidden
	}

	return s.repo.Delete(postID)
}

// RecordView 上报浏览，按浏览者去重后计数
func (s *PostService) RecordView(postID uint, viewerKey string) (*ViewResponse, error) {
	p, err := s.repo.FindByID(postID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}

	counted := false
	if p.Status == postModel.StatusPublished && s.shouldCountView(postID, viewerKey) {
		if err := s.repo.IncrementViews(postID); err == nil {
			p.ViewsCount++
			counted = true
		}
	}

	return &ViewResponse{Counted: counted, ViewsCount: p.ViewsCount}, nil
}

// Stats 全站帖子统计
func (s *PostService) Stats() (*StatsResponse, error) {
	return s.repo.Stats()
}

// ========== 分类 ==========

// ListCategories 获取帖子分类列表
func (s *PostService) ListCategories() ([]postModel.Category, error) {
	return s.repo.ListCategories()
}

// CreateCategory 创建帖子分类（管理员）
func (s *PostService) CreateCategory(req CreateCategoryRequest) (*postModel.Category, *response.BusinessError) {
	if _, err := s.repo.FindCategoryByName(req.Name); err == nil {
		return nil, response.NewBusinessError(
			response.WithErrorCode(response.Conflict),
			response.WithErrorMessage("分类名称已存在"),
		)
	}

	category := &postModel.Category{
		Name:        req.Name,
		Slug:        pkg.MakeSlug(req.Name),
		Description: req.Description,
	}
	if req.Color != "" {
		category.Color = req.Color
	}

	if err := s.repo.CreateCategory(category); err != nil {
		return nil, response.NewBusinessError(
			response.WithErrorCode(response.Fail),
			response.WithErrorMessage("创建分类失败"),
		)
	}
	return category, nil
}

// UpdateCategory 更新帖子分类（管理员）
func (s *PostService) UpdateCategory(categoryID uint, req UpdateCategoryRequest) (*postModel.Category, *response.BusinessError) {
	category, err := s.repo.FindCategoryByID(categoryID)
	if err != nil {
		return nil, response.NewBusinessError(
			response.WithErrorCode(response.NotFound),
			response.WithErrorMessage("分类不存在"),
		)
	}

	if req.Name != nil && *req.Name != category.Name {
		if _, err := s.repo.FindCategoryByName(*req.Name); err == nil {
			return nil, response.NewBusinessError(
				response.WithErrorCode(response.Conflict),
				response.WithErrorMessage("分类名称已存在"),
			)
		}
		category.Name = *req.Name
		category.Slug = pkg.MakeSlug(*req.Name)
	}
	if req.Description != nil {
		category.Description = *req.Description
	}
	if req.Color != nil {
		category.Color = *req.Color
	}

	if err := s.repo.UpdateCategory(category); err != nil {
		return nil, response.NewBusinessError(
			response.WithErrorCode(response.Fail),
			response.WithErrorMessage("更新分类失败"),
		)
	}
	return category, nil
}

// DeleteCategory 删除帖子分类（管理员）
func (s *PostService) DeleteCategory(categoryID uint) *response.BusinessError {
	if _, err := s.repo.FindCategoryByID(categoryID); err != nil {
		return response.NewBusinessError(
			response.WithErrorCode(response.NotFound),
			response.WithErrorMessage("分类不存在"),
		)
	}

	if err := s.repo.DeleteCategory(categoryID); err != nil {
		return response.NewBusinessError(
			response.WithErrorCode(response.Fail),
			response.WithErrorMessage("删除分类失败"),
		)
	}
	return nil
}

// shouldCountView 浏览计数去重，Redis 不可用时直接计数
func (s *PostService) shouldCountView(postID uint, viewerKey string) bool {
	if s.redis == nil || viewerKey == "" {
		return true
	}

	key := fmt.Sprintf("view:post:%d:%s", postID, viewerKey)
	ok, err := s.redis.SetNX(context.Background(), key, 1, 24*time.Hour).Result()
	if err != nil {
		return true
	}
	return ok
}
