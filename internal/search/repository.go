package search

import (
	"context"

	"gorm.io/gorm"

	postModel "github.com/tsuki530/2023-tieba-bk/internal/model/post"
	userModel "github.com/tsuki530/2023-tieba-bk/internal/model/user"
	wikiModel "github.com/tsuki530/2023-tieba-bk/internal/model/wiki"
)

// ArticleFilter 文章检索的附加过滤
type ArticleFilter struct {
	CategoryID uint
	TagID      uint
	AuthorID   uint
}

// SearchRepository 搜索数据访问接口
type SearchRepository interface {
	// 各类型的子查询（并发安全，互不共享状态）
	SearchArticles(ctx context.Context, keyword string, filter ArticleFilter) ([]wikiModel.Article, error)
	SearchPosts(ctx context.Context, keyword string, categoryID, authorID uint) ([]postModel.Post, error)
	SearchUsers(ctx context.Context, keyword string) ([]userModel.User, error)
	SearchCategories(ctx context.Context, keyword string) ([]wikiModel.Category, error)
	SearchTags(ctx context.Context, keyword string) ([]wikiModel.Tag, error)

	// 过滤参数解析
	FindCategoryIDBySlug(slug string) (uint, error)
	FindTagIDBySlug(slug string) (uint, error)
	FindPostCategoryIDBySlug(slug string) (uint, error)
	FindUserIDByUsername(username string) (uint, error)

	// 自动补全（每类限量）
	AutocompleteArticles(keyword string, limit int) ([]wikiModel.Article, error)
	AutocompletePosts(keyword string, limit int) ([]postModel.Post, error)
	AutocompleteUsers(keyword string, limit int) ([]userModel.User, error)
	AutocompleteCategories(keyword string, limit int) ([]wikiModel.Category, error)
	AutocompleteTags(keyword string, limit int) ([]wikiModel.Tag, error)

	// 统计与过滤项
	Counts() (*StatsResponse, error)
	ListCategories() ([]wikiModel.Category, error)
	ListTags() ([]wikiModel.Tag, error)
	ListPostCategories() ([]postModel.Category, error)
}

type searchRepository struct {
	db *gorm.DB
}

// NewSearchRepository 创建搜索仓储
func NewSearchRepository(db *gorm.DB) SearchRepository {
	return &searchRepository{db: db}
}

// ========== 子查询 ==========

func (r *searchRepository) SearchArticles(ctx context.Context, keyword string, filter ArticleFilter) ([]wikiModel.Article, error) {
	like := "%" + keyword + "%"
	query := r.db.WithContext(ctx).Model(&wikiModel.Article{}).
		Where("status = ?", wikiModel.StatusPublished).
		Where("title ILIKE ? OR content ILIKE ?", like, like)

	if filter.CategoryID != 0 {
		query = query.Where("category_id = ?", filter.CategoryID)
	}
	if filter.TagID != 0 {
		query = query.Joins("JOIN article_tags ON article_tags.article_id = articles.id").
			Where("article_tags.tag_id = ?", filter.TagID)
	}
	if filter.AuthorID != 0 {
		query = query.Where("author_id = ?", filter.AuthorID)
	}

	var articles []wikiModel.Article
	err := query.Order("articles.id ASC").Find(&articles).Error
	return articles, err
}

func (r *searchRepository) SearchPosts(ctx context.Context, keyword string, categoryID, authorID uint) ([]postModel.Post, error) {
	like := "%" + keyword + "%"
	query := r.db.WithContext(ctx).Model(&postModel.Post{}).
		Where("status = ?", postModel.StatusPublished).
		Where("title ILIKE ? OR content ILIKE ?", like, like)

	if categoryID != 0 {
		query = query.Where("category_id = ?", categoryID)
	}
	if authorID != 0 {
		query = query.Where("author_id = ?", authorID)
	}

	var posts []postModel.Post
	err := query.Order("id ASC").Find(&posts).Error
	return posts, err
}

func (r *searchRepository) SearchUsers(ctx context.Context, keyword string) ([]userModel.User, error) {
	like := "%" + keyword + "%"
	var users []userModel.User
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Where("username ILIKE ? OR first_name ILIKE ? OR last_name ILIKE ?", like, like, like).
		Order("id ASC").
		Find(&users).Error
	return users, err
}

func (r *searchRepository) SearchCategories(ctx context.Context, keyword string) ([]wikiModel.Category, error) {
	like := "%" + keyword + "%"
	var categories []wikiModel.Category
	err := r.db.WithContext(ctx).
		Where("name ILIKE ? OR description ILIKE ?", like, like).
		Order("id ASC").
		Find(&categories).Error
	return categories, err
}

func (r *searchRepository) SearchTags(ctx context.Context, keyword string) ([]wikiModel.Tag, error) {
	like := "%" + keyword + "%"
	var tags []wikiModel.Tag
	err := r.db.WithContext(ctx).
		Where("name ILIKE ?", like).
		Order("id ASC").
		Find(&tags).Error
	return tags, err
}

// ========== 过滤参数解析 ==========

func (r *searchRepository) FindCategoryIDBySlug(slug string) (uint, error) {
	var category wikiModel.Category
	if err := r.db.Select("id").Where("slug = ?", slug).First(&category).Error; err != nil {
		return 0, err
	}
	return category.ID, nil
}

func (r *searchRepository) FindTagIDBySlug(slug string) (uint, error) {
	var tag wikiModel.Tag
	if err := r.db.Select("id").Where("slug = ?", slug).First(&tag).Error; err != nil {
		return 0, err
	}
	return tag.ID, nil
}

func (r *searchRepository) FindPostCategoryIDBySlug(slug string) (uint, error) {
	var category postModel.Category
	if err := r.db.Select("id").Where("slug = ?", slug).First(&category).Error; err != nil {
		return 0, err
	}
	return category.ID, nil
}

func (r *searchRepository) FindUserIDByUsername(username string) (uint, error) {
	var u userModel.User
	if err := r.db.Select("id").Where("username = ?", username).First(&u).Error; err != nil {
		return 0, err
	}
	return u.ID, nil
}

// ========== 自动补全 ==========

func (r *searchRepository) AutocompleteArticles(keyword string, limit int) ([]wikiModel.Article, error) {
	var articles []wikiModel.Article
	err := r.db.Select("id", "title", "slug").
		Where("status = ?", wikiModel.StatusPublished).
		Where("title ILIKE ?", "%"+keyword+"%").
		Limit(limit).
		Find(&articles).Error
	return articles, err
}

func (r *searchRepository) AutocompletePosts(keyword string, limit int) ([]postModel.Post, error) {
	var posts []postModel.Post
	err := r.db.Select("id", "title").
		Where("status = ?", postModel.StatusPublished).
		Where("title ILIKE ?", "%"+keyword+"%").
		Limit(limit).
		Find(&posts).Error
	return posts, err
}

func (r *searchRepository) AutocompleteUsers(keyword string, limit int) ([]userModel.User, error) {
	like := "%" + keyword + "%"
	var users []userModel.User
	err := r.db.Select("id", "username", "first_name", "last_name").
		Where("is_active = ?", true).
		Where("username ILIKE ? OR first_name ILIKE ? OR last_name ILIKE ?", like, like, like).
		Limit(limit).
		Find(&users).Error
	return users, err
}

func (r *searchRepository) AutocompleteCategories(keyword string, limit int) ([]wikiModel.Category, error) {
	var categories []wikiModel.Category
	err := r.db.Select("id", "name", "slug").
		Where("name ILIKE ?", "%"+keyword+"%").
		Limit(limit).
		Find(&categories).Error
	return categories, err
}

func (r *searchRepository) AutocompleteTags(keyword string, limit int) ([]wikiModel.Tag, error) {
	var tags []wikiModel.Tag
	err := r.db.Select("id", "name", "slug").
		Where("name ILIKE ?", "%"+keyword+"%").
		Limit(limit).
		Find(&tags).Error
	return tags, err
}

// ========== 统计与过滤项 ==========

func (r *searchRepository) Counts() (*StatsResponse, error) {
	stats := &StatsResponse{}

	if err := r.db.Model(&wikiModel.Article{}).
		Where("status = ?", wikiModel.StatusPublished).
		Count(&stats.TotalArticles).Error; err != nil {
		return nil, err
	}
	if err := r.db.Model(&postModel.Post{}).
		Where("status = ?", postModel.StatusPublished).
		Count(&stats.TotalPosts).Error; err != nil {
		return nil, err
	}
	if err := r.db.Model(&userModel.User{}).
		Where("is_active = ?", true).
		Count(&stats.TotalUsers).Error; err != nil {
		return nil, err
	}
	if err := r.db.Model(&wikiModel.Category{}).Count(&stats.TotalCategories).Error; err != nil {
		return nil, err
	}
	if err := r.db.Model(&wikiModel.Tag{}).Count(&stats.TotalTags).Error; err != nil {
		return nil, err
	}
	return stats, nil
}

func (r *searchRepository) ListCategories() ([]wikiModel.Category, error) {
	var categories []wikiModel.Category
	err := r.db.Select("id", "name", "slug").Order("name ASC").Find(&categories).Error
	return categories, err
}

func (r *searchRepository) ListTags() ([]wikiModel.Tag, error) {
	var tags []wikiModel.Tag
	err := r.db.Select("id", "name", "slug").Order("name ASC").Find(&tags).Error
	return tags, err
}

func (r *searchRepository) ListPostCategories() ([]postModel.Category, error) {
	var categories []postModel.Category
	err := r.db.Select("id", "name", "slug").Order("name ASC").Find(&categories).Error
	return categories, err
}
