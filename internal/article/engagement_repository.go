package article

import (
	"gorm.io/gorm"

	wikiModel "github.com/tsuki530/2023-tieba-bk/internal/model/wiki"
)

// EngagementRepository 文章点赞/评论数据访问接口
type EngagementRepository interface {
	// 点赞
	FindLike(articleID, userID uint) (*wikiModel.ArticleLike, error)
	FindCommentLike(commentID, userID uint) (*wikiModel.CommentLike, error)

	ListLikesByArticleID(articleID uint) ([]wikiModel.ArticleLike, error)
	ListLikesByUserID(userID uint) ([]wikiModel.ArticleLike, error)

	// 评论
	FindCommentByID(commentID uint) (*wikiModel.ArticleComment, error)
	ListCommentsByArticleID(articleID uint) ([]wikiModel.ArticleComment, error)
	ListRepliesByParentID(parentID uint) ([]wikiModel.ArticleComment, error)

	Transaction(fn func(tx *gorm.DB) error) error
}

type engagementRepository struct {
	db *gorm.DB
}

// NewEngagementRepository 创建 Repository 实例
func NewEngagementRepository(db *gorm.DB) EngagementRepository {
	return &engagementRepository{db: db}
}

func (r *engagementRepository) FindLike(articleID, userID uint) (*wikiModel.ArticleLike, error) {
	var like wikiModel.ArticleLike
	err := r.db.Where("article_id = ? AND user_id = ?", articleID, userID).
		First(&like).Error
	if err != nil {
		return nil, err
	}
	return &like, nil
}

func (r *engagementRepository) FindCommentLike(commentID, userID uint) (*wikiModel.CommentLike, error) {
	var like wikiModel.CommentLike
	err := r.db.Where("comment_id = ? AND user_id = ?", commentID, userID).
		First(&like).Error
	if err != nil {
		return nil, err
	}
	return &like, nil
}

func (r *engagementRepository) ListLikesByArticleID(articleID uint) ([]wikiModel.ArticleLike, error) {
	var likes []wikiModel.ArticleLike
	err := r.db.Where("article_id = ?", articleID).
		Order("created_at DESC").
		Find(&likes).Error
	if err != nil {
		return nil, err
	}
	return likes, nil
}

func (r *engagementRepository) ListLikesByUserID(userID uint) ([]wikiModel.ArticleLike, error) {
	var likes []wikiModel.ArticleLike
	err := r.db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&likes).Error
	if err != nil {
		return nil, err
	}
	return likes, nil
}

func (r *engagementRepository) FindCommentByID(commentID uint) (*wikiModel.ArticleComment, error) {
	var comment wikiModel.ArticleComment
	if err := r.db.First(&comment, commentID).Error; err != nil {
		return nil, err
	}
	return &comment, nil
}

// ListCommentsByArticleID 获取文章的已通过评论（顶级在前，按时间升序）
func (r *engagementRepository) ListCommentsByArticleID(articleID uint) ([]wikiModel.ArticleComment, error) {
	var comments []wikiModel.ArticleComment
	err := r.db.Where("article_id = ? AND is_approved = ?", articleID, true).
		Order("created_at ASC").
		Find(&comments).Error
	if err != nil {
		return nil, err
	}
	return comments, nil
}

// ListRepliesByParentID 获取指定评论的直接回复
func (r *engagementRepository) ListRepliesByParentID(parentID uint) ([]wikiModel.ArticleComment, error) {
	var comments []wikiModel.ArticleComment
	err := r.db.Where("parent_id = ? AND is_approved = ?", parentID, true).
		Order("created_at ASC").
		Find(&comments).Error
	if err != nil {
		return nil, err
	}
	return comments, nil
}

func (r *engagementRepository) Transaction(fn func(tx *gorm.DB) error) error {
	return r.db.Transaction(fn)
}
