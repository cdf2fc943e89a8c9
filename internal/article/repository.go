package article

import (
	"gorm.io/gorm"

	wikiModel "github.com/tsuki530/2023-tieba-bk/internal/model/wiki"
)

// ArticleListFilter 文章列表过滤条件
type ArticleListFilter struct {
	Status       string // 为空表示不过滤
	CategoryID   uint
	TagID        uint
	AuthorID     uint
	FeaturedOnly bool
	Keyword      string
	Sort         string // latest, views, likes
	Page         int
	PageSize     int
}

// ArticleRepository 百科文章数据访问接口
type ArticleRepository interface {
	FindByID(articleID uint) (*wikiModel.Article, error)
	FindBySlug(slug string) (*wikiModel.Article, error)
	SlugExists(slug string) (bool, error)
	Create(article *wikiModel.Article) error
	Update(article *wikiModel.Article) error
	Delete(articleID uint) error
	List(filter ArticleListFilter) ([]wikiModel.Article, int64, error)
	IncrementViews(articleID uint) error
	Transaction(fn func(tx *gorm.DB) error) error
}

type articleRepository struct {
	db *gorm.DB
}

// NewArticleRepository 创建 Repository 实例
func NewArticleRepository(db *gorm.DB) ArticleRepository {
	return &articleRepository{db: db}
}

func (r *articleRepository) FindByID(articleID uint) (*wikiModel.Article, error) {
	var article wikiModel.Article
	if err := r.db.First(&article, articleID).Error; err != nil {
		return nil, err
	}
	return &article, nil
}

func (r *articleRepository) FindBySlug(slug string) (*wikiModel.Article, error) {
	var article wikiModel.Article
	if err := r.db.Where("slug = ?", slug).First(&article).Error; err != nil {
		return nil, err
	}
	return &article, nil
}

func (r *articleRepository) SlugExists(slug string) (bool, error) {
	var count int64
	err := r.db.Model(&wikiModel.Article{}).Where("slug = ?", slug).Count(&count).Error
	return count > 0, err
}

func (r *articleRepository) Create(article *wikiModel.Article) error {
	return r.db.Create(article).Error
}

func (r *articleRepository) Update(article *wikiModel.Article) error {
	return r.db.Save(article).Error
}

// Delete 删除文章及其全部关联数据
// 版本、点赞、评论（含评论点赞）、标签关联在同一事务内一并删除
func (r *articleRepository) Delete(articleID uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		// 1. 评论点赞（经评论间接关联）
		if err := tx.Exec(
			"DELETE FROM comment_likes WHERE comment_id IN (SELECT id FROM article_comments WHERE article_id = ?)",
			articleID).Error; err != nil {
			return err
		}

		// 2. 直接关联记录
		if err := tx.Where("article_id = ?", articleID).
			Delete(&wikiModel.ArticleComment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("article_id = ?", articleID).
			Delete(&wikiModel.ArticleLike{}).Error; err != nil {
			return err
		}
		if err := tx.Where("article_id = ?", articleID).
			Delete(&wikiModel.ArticleVersion{}).Error; err != nil {
			return err
		}
		if err := tx.Where("article_id = ?", articleID).
			Delete(&wikiModel.ArticleTag{}).Error; err != nil {
			return err
		}

		// 3. 文章本体
		return tx.Delete(&wikiModel.Article{}, articleID).Error
	})
}

// List 按过滤条件分页查询文章
func (r *articleRepository) List(filter ArticleListFilter) ([]wikiModel.Article, int64, error) {
	var articles []wikiModel.Article
	var total int64

	query := r.db.Model(&wikiModel.Article{})

	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.CategoryID != 0 {
		query = query.Where("category_id = ?", filter.CategoryID)
	}
	if filter.TagID != 0 {
		query = query.
			Joins("JOIN article_tags ON article_tags.article_id = articles.id").
			Where("article_tags.tag_id = ?", filter.TagID)
	}
	if filter.AuthorID != 0 {
		query = query.Where("author_id = ?", filter.AuthorID)
	}
	if filter.FeaturedOnly {
		query = query.Where("featured = ?", true)
	}
	if filter.Keyword != "" {
		pattern := "%" + filter.Keyword + "%"
		query = query.Where("title ILIKE ? OR content ILIKE ? OR summary ILIKE ?",
			pattern, pattern, pattern)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	switch filter.Sort {
	case "views":
		query = query.Order("views_count DESC")
	case "likes":
		query = query.Order("likes_count DESC")
	default:
		query = query.Order("created_at DESC")
	}

	err := query.
		Offset((filter.Page - 1) * filter.PageSize).
		Limit(filter.PageSize).
		Find(&articles).Error
	if err != nil {
		return nil, 0, err
	}
	return articles, total, nil
}

// IncrementViews 浏览量原子自增
func (r *articleRepository) IncrementViews(articleID uint) error {
	return r.db.Model(&wikiModel.Article{}).
		Where("id = ?", articleID).
		UpdateColumn("views_count", gorm.Expr("views_count + 1")).Error
}

func (r *articleRepository) Transaction(fn func(tx *gorm.DB) error) error {
	return r.db.Transaction(fn)
}
