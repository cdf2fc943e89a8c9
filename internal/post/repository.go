package post

import (
	"gorm.io/gorm"

	postModel "github.com/tsuki530/2023-tieba-bk/internal/model/post"
)

// PostListFilter 帖子列表过滤条件
type PostListFilter struct {
	Status       string
	CategoryID   uint
	AuthorID     uint
	PostType     string
	Keyword      string
	FeaturedOnly bool
	PinnedOnly   bool
	Sort         string // latest, views, likes, comments
	Page         int
	PageSize     int
}

// PostRepository 帖子数据访问接口
type PostRepository interface {
	FindByID(postID uint) (*postModel.Post, error)
	Create(post *postModel.Post) error
	Update(post *postModel.Post) error
	Delete(postID uint) error
	List(filter PostListFilter) ([]postModel.Post, int64, error)
	IncrementViews(postID uint) error
	Stats() (*StatsResponse, error)
	Transaction(fn func(tx *gorm.DB) error) error

	// 分类
	FindCategoryByID(categoryID uint) (*postModel.Category, error)
	FindCategoryBySlug(slug string) (*postModel.Category, error)
	FindCategoryByName(name string) (*postModel.Category, error)
	ListCategories() ([]postModel.Category, error)
	CreateCategory(category *postModel.Category) error
	UpdateCategory(category *postModel.Category) error
	DeleteCategory(categoryID uint) error
}

type postRepository struct {
	db *gorm.DB
}

// NewPostRepository 创建 Repository 实例
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) FindByID(postID uint) (*postModel.Post, error) {
	var post postModel.Post
	if err := r.db.First(&post, postID).Error; err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *postRepository) Create(post *postModel.Post) error {
	return r.db.Create(post).Error
}

func (r *postRepository) Update(post *postModel.Post) error {
	return r.db.Save(post).Error
}

// Delete 删除帖子及其全部关联数据
// 评论（含评论点赞）、点赞、分享、举报在同一事务内一并删除
func (r *postRepository) Delete(postID uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		// 1. 评论点赞与指向评论的举报（经评论间接关联）
		if err := tx.Exec(
			"DELETE FROM post_comment_likes WHERE comment_id IN (SELECT id FROM post_comments WHERE post_id = ?)",
			postID).Error; err != nil {
			return err
		}
		if err := tx.Exec(
			"DELETE FROM post_reports WHERE post_id = ? OR comment_id IN (SELECT id FROM post_comments WHERE post_id = ?)",
			postID, postID).Error; err != nil {
			return err
		}

		// 2. 直接关联记录
		if err := tx.Where("post_id = ?", postID).
			Delete(&postModel.PostComment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", postID).
			Delete(&postModel.PostLike{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", postID).
			Delete(&postModel.PostShare{}).Error; err != nil {
			return err
		}

		// 3. 帖子本体
		return tx.Delete(&postModel.Post{}, postID).Error
	})
}

// List 按过滤条件分页查询帖子，置顶帖排在最前
func (r *postRepository) List(filter PostListFilter) ([]postModel.Post, int64, error) {
	var posts []postModel.Post
	var total int64

	query := r.db.Model(&postModel.Post{})

	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.CategoryID != 0 {
		query = query.Where("category_id = ?", filter.CategoryID)
	}
	if filter.AuthorID != 0 {
		query = query.Where("author_id = ?", filter.AuthorID)
	}
	if filter.PostType != "" {
		query = query.Where("post_type = ?", filter.PostType)
	}
	if filter.FeaturedOnly {
		query = query.Where("is_featured = ?", true)
	}
	if filter.PinnedOnly {
		query = query.Where("is_pinned = ?", true)
	}
	if filter.Keyword != "" {
		pattern := "%" + filter.Keyword + "%"
		query = query.Where("title ILIKE ? OR content ILIKE ?", pattern, pattern)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	switch filter.Sort {
	case "views":
		query = query.Order("views_count DESC")
	case "likes":
		query = query.Order("likes_count DESC")
	case "comments":
		query = query.Order("comments_count DESC")
	default:
		query = query.Order("is_pinned DESC, created_at DESC")
	}

	err := query.
		Offset((filter.Page - 1) * filter.PageSize).
		Limit(filter.PageSize).
		Find(&posts).Error
	if err != nil {
		return nil, 0, err
	}
	return posts, total, nil
}

// IncrementViews 浏览量原子自增
func (r *postRepository) IncrementViews(postID uint) error {
	return r.db.Model(&postModel.Post{}).
		Where("id = ?", postID).
		UpdateColumn("views_count", gorm.Expr("views_count + 1")).Error
}

// Stats 全站帖子统计（仅已发布帖子）
func (r *postRepository) Stats() (*StatsResponse, error) {
	stats := &StatsResponse{PostsByType: map[string]int64{}}

	published := r.db.Model(&postModel.Post{}).Where("status = ?", postModel.StatusPublished)
	if err := published.Count(&stats.TotalPosts).Error; err != nil {
		return nil, err
	}

	type row struct {
		PostType string
		Count    int64
	}
	var rows []row
	err := r.db.Model(&postModel.Post{}).
		Select("post_type, COUNT(*) AS count").
		Where("status = ?", postModel.StatusPublished).
		Group("post_type").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, rw := range rows {
		stats.PostsByType[rw.PostType] = rw.Count
	}

	if err := r.db.Model(&postModel.PostComment{}).Count(&stats.TotalComments).Error; err != nil {
		return nil, err
	}
	if err := r.db.Model(&postModel.PostLike{}).Count(&stats.TotalLikes).Error; err != nil {
		return nil, err
	}
	if err := r.db.Model(&postModel.PostShare{}).Count(&stats.TotalShares).Error; err != nil {
		return nil, err
	}
	return stats, nil
}

func (r *postRepository) Transaction(fn func(tx *gorm.DB) error) error {
	return r.db.Transaction(fn)
}

// ========== 分类相关操作 ==========

func (r *postRepository) FindCategoryByID(categoryID uint) (*postModel.Category, error) {
	var category postModel.Category
	if err := r.db.First(&category, categoryID).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *postRepository) FindCategoryBySlug(slug string) (*postModel.Category, error) {
	var category postModel.Category
	if err := r.db.Where("slug = ?", slug).First(&category).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *postRepository) FindCategoryByName(name string) (*postModel.Category, error) {
	var category postModel.Category
	if err := r.db.Where("name = ?", name).First(&category).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *postRepository) ListCategories() ([]postModel.Category, error) {
	var categories []postModel.Category
	if err := r.db.Order("name ASC").Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

func (r *postRepository) CreateCategory(category *postModel.Category) error {
	return r.db.Create(category).Error
}

func (r *postRepository) UpdateCategory(category *postModel.Category) error {
	return r.db.Save(category).Error
}

func (r *postRepository) DeleteCategory(categoryID uint) error {
	return r.db.Delete(&postModel.Category{}, categoryID).Error
}
