package article

import (
	"gorm.io/gorm"

	wikiModel "github.com/tsuki530/2023-tieba-bk/internal/model/wiki"
)

// VersionRepository 文章版本数据访问接口
type VersionRepository interface {
	Create(version *wikiModel.ArticleVersion) error
	CreateTx(tx *gorm.DB, version *wikiModel.ArticleVersion) error
	GetNextVersionNumber(tx *gorm.DB, articleID uint) int
	ListByArticleID(articleID uint) ([]wikiModel.ArticleVersion, error)
	FindByNumber(articleID uint, versionNumber int) (*wikiModel.ArticleVersion, error)
}

type versionRepository struct {
	db *gorm.DB
}

// NewVersionRepository 创建 Repository 实例
func NewVersionRepository(db *gorm.DB) VersionRepository {
	return &versionRepository{db: db}
}

func (r *versionRepository) Create(version *wikiModel.ArticleVersion) error {
	return r.db.Create(version).Error
}

// CreateTx 在指定事务中创建版本记录
func (r *versionRepository) CreateTx(tx *gorm.DB, version *wikiModel.ArticleVersion) error {
	return tx.Create(version).Error
}

// GetNextVersionNumber 计算文章的下一个版本号
// 并发写入依赖 (article_id, version_number) 唯一索引兜底
func (r *versionRepository) GetNextVersionNumber(tx *gorm.DB, articleID uint) int {
	var maxVersion int
	tx.Model(&wikiModel.ArticleVersion{}).
		Where("article_id = ?", articleID).
		Select("COALESCE(MAX(version_number), 0)").
		Scan(&maxVersion)
	return maxVersion + 1
}

// ListByArticleID 获取文章的版本列表，版本号降序
func (r *versionRepository) ListByArticleID(articleID uint) ([]wikiModel.ArticleVersion, error) {
	var versions []wikiModel.ArticleVersion
	err := r.db.Where("article_id = ?", articleID).
		Order("version_number DESC").
		Find(&versions).Error
	if err != nil {
		return nil, err
	}
	return versions, nil
}

// FindByNumber 获取文章的指定版本
func (r *versionRepository) FindByNumber(articleID uint, versionNumber int) (*wikiModel.ArticleVersion, error) {
	var version wikiModel.ArticleVersion
	err := r.db.Where("article_id = ? AND version_number = ?", articleID, versionNumber).
		First(&version).Error
	if err != nil {
		return nil, err
	}
	return &version, nil
}
