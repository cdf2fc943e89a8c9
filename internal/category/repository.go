package category

import (
	"gorm.io/gorm"

	wikiModel "github.com/tsuki530/2023-tieba-bk/internal/model/wiki"
)

// CategoryRepository 百科分类数据访问接口
type CategoryRepository interface {
	FindByID(categoryID uint) (*wikiModel.Category, error)
	FindBySlug(slug string) (*wikiModel.Category, error)
	FindByName(name string) (*wikiModel.Category, error)
	ListAll() ([]wikiModel.Category, error)
	Create(category *wikiModel.Category) error
	Update(category *wikiModel.Category) error
	Delete(categoryID uint) error
	CountArticles(categoryID uint) (int64, error)
}

type categoryRepository struct {
	db *gorm.DB
}

// NewCategoryRepository 创建 Repository 实例
func NewCategoryRepository(db *gorm.DB) CategoryRepository {
	return &categoryRepository{db: db}
}

func (r *categoryRepository) FindByID(categoryID uint) (*wikiModel.Category, error) {
	var category wikiModel.Category
	if err := r.db.First(&category, categoryID).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *categoryRepository) FindBySlug(slug string) (*wikiModel.Category, error) {
	var category wikiModel.Category
	if err := r.db.Where("slug = ?", slug).First(&category).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *categoryRepository) FindByName(name string) (*wikiModel.Category, error) {
	var category wikiModel.Category
	if err := r.db.Where("name = ?", name).First(&category).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

// ListAll 获取全部分类，按名称排序
func (r *categoryRepository) ListAll() ([]wikiModel.Category, error) {
	var categories []wikiModel.Category
	if err := r.db.Order("name ASC").Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

func (r *categoryRepository) Create(category *wikiModel.Category) error {
	return r.db.Create(category).Error
}

func (r *categoryRepository) Update(category *wikiModel.Category) error {
	return r.db.Save(category).Error
}

func (r *categoryRepository) Delete(categoryID uint) error {
	return r.db.Delete(&wikiModel.Category{}, categoryID).Error
}

// CountArticles 统计分类下已发布文章数
func (r *categoryRepository) CountArticles(categoryID uint) (int64, error) {
	var count int64
	err := r.db.Model(&wikiModel.Article{}).
		Where("category_id = ? AND status = ?", categoryID, wikiModel.StatusPublished).
		Count(&count).Error
	return count, err
}
