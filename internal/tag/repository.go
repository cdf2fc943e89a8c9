package tag

import (
	"gorm.io/gorm"

	wikiModel "github.com/tsuki530/2023-tieba-bk/internal/model/wiki"
)

// TagRepository 百科标签数据访问接口
type TagRepository interface {
	FindBySlug(slug string) (*wikiModel.Tag, error)
	FindByName(name string) (*wikiModel.Tag, error)
	List(limit int) ([]wikiModel.Tag, error)
	SearchByKeyword(keyword string, limit int) ([]wikiModel.Tag, error)
	Create(tag *wikiModel.Tag) error
	FindTagsByArticleID(articleID uint) ([]wikiModel.Tag, error)
	ReplaceArticleTags(articleID uint, tagIDs []uint) error
	CountArticles(tagID uint) (int64, error)
}

type tagRepository struct {
	db *gorm.DB
}

// NewTagRepository 创建 Repository 实例
func NewTagRepository(db *gorm.DB) TagRepository {
	return &tagRepository{db: db}
}

func (r *tagRepository) FindBySlug(slug string) (*wikiModel.Tag, error) {
	var tag wikiModel.Tag
	if err := r.db.Where("slug = ?", slug).First(&tag).Error; err != nil {
		return nil, err
	}
	return &tag, nil
}

func (r *tagRepository) FindByName(name string) (*wikiModel.Tag, error) {
	var tag wikiModel.Tag
	if err := r.db.Where("name = ?", name).First(&tag).Error; err != nil {
		return nil, err
	}
	return &tag, nil
}

func (r *tagRepository) List(limit int) ([]wikiModel.Tag, error) {
	var tags []wikiModel.Tag
	if err := r.db.Order("name ASC").Limit(limit).Find(&tags).Error; err != nil {
		return nil, err
	}
	return tags, nil
}

func (r *tagRepository) SearchByKeyword(keyword string, limit int) ([]wikiModel.Tag, error) {
	var tags []wikiModel.Tag
	err := r.db.Where("name ILIKE ?", "%"+keyword+"%").
		Order("name ASC").
		Limit(limit).
		Find(&tags).Error
	if err != nil {
		return nil, err
	}
	return tags, nil
}

func (r *tagRepository) Create(tag *wikiModel.Tag) error {
	return r.db.Create(tag).Error
}

// FindTagsByArticleID 获取文章的标签列表
func (r *tagRepository) FindTagsByArticleID(articleID uint) ([]wikiModel.Tag, error) {
	var tags []wikiModel.Tag
	err := r.db.
		Joins("JOIN article_tags ON article_tags.tag_id = tags.id").
		Where("article_tags.article_id = ?", articleID).
		Order("tags.name ASC").
		Find(&tags).Error
	if err != nil {
		return nil, err
	}
	return tags, nil
}

// ReplaceArticleTags 全量替换文章的标签关联
func (r *tagRepository) ReplaceArticleTags(articleID uint, tagIDs []uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("article_id = ?", articleID).
			Delete(&wikiModel.ArticleTag{}).Error; err != nil {
			return err
		}
		for _, tagID := range tagIDs {
			if err := tx.Create(&wikiModel.ArticleTag{
				ArticleID: articleID,
				TagID:     tagID,
			}).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// CountArticles 统计标签关联的文章数
func (r *tagRepository) CountArticles(tagID uint) (int64, error) {
	var count int64
	err := r.db.Model(&wikiModel.ArticleTag{}).
		Where("tag_id = ?", tagID).
		Count(&count).Error
	return count, err
}
