package post

import (
	"gorm.io/gorm"

	postModel "github.com/tsuki530/2023-tieba-bk/internal/model/post"
)

// EngagementRepository 帖子点赞/评论/分享/举报数据访问接口
type EngagementRepository interface {
	// 点赞
	FindLike(postID, userID uint) (*postModel.PostLike, error)
	FindCommentLike(commentID, userID uint) (*postModel.CommentLike, error)

	// 评论
	FindCommentByID(commentID uint) (*postModel.PostComment, error)
	ListCommentsByPostID(postID uint) ([]postModel.PostComment, error)
	ListRepliesByParentID(parentID uint) ([]postModel.PostComment, error)

	// 分享
	ListSharesByPostID(postID uint) ([]postModel.PostShare, error)

	// 举报
	FindReportByID(reportID uint) (*postModel.PostReport, error)
	ListReports(reporterID uint, status string, page, pageSize int) ([]postModel.PostReport, int64, error)
	UpdateReport(report *postModel.PostReport) error

	Transaction(fn func(tx *gorm.DB) error) error
}

type engagementRepository struct {
	db *gorm.DB
}

// NewEngagementRepository 创建 Repository 实例
func NewEngagementRepository(db *gorm.DB) EngagementRepository {
	return &engagementRepository{db: db}
}

func (r *engagementRepository) FindLike(postID, userID uint) (*postModel.PostLike, error) {
	var like postModel.PostLike
	err := r.db.Where("post_id = ? AND user_id = ?", postID, userID).
		First(&like).Error
	if err != nil {
		return nil, err
	}
	return &like, nil
}

func (r *engagementRepository) FindCommentLike(commentID, userID uint) (*postModel.CommentLike, error) {
	var like postModel.CommentLike
	err := r.db.Where("comment_id = ? AND user_id = ?", commentID, userID).
		First(&like).Error
	if err != nil {
		return nil, err
	}
	return &like, nil
}

func (r *engagementRepository) FindCommentByID(commentID uint) (*postModel.PostComment, error) {
	var comment postModel.PostComment
	if err := r.db.First(&comment, commentID).Error; err != nil {
		return nil, err
	}
	return &comment, nil
}

// ListCommentsByPostID 获取帖子的已通过评论，按时间升序
func (r *engagementRepository) ListCommentsByPostID(postID uint) ([]postModel.PostComment, error) {
	var comments []postModel.PostComment
	err := r.db.Where("post_id = ? AND is_approved = ?", postID, true).
		Order("created_at ASC").
		Find(&comments).Error
	if err != nil {
		return nil, err
	}
	return comments, nil
}

func (r *engagementRepository) ListRepliesByParentID(parentID uint) ([]postModel.PostComment, error) {
	var comments []postModel.PostComment
	err := r.db.Where("parent_id = ? AND is_approved = ?", parentID, true).
		Order("created_at ASC").
		Find(&comments).Error
	if err != nil {
		return nil, err
	}
	return comments, nil
}

func (r *engagementRepository) ListSharesByPostID(postID uint) ([]postModel.PostShare, error) {
	var shares []postModel.PostShare
	err := r.db.Where("post_id = ?", postID).
		Order("created_at DESC").
		Find(&shares).Error
	if err != nil {
		return nil, err
	}
	return shares, nil
}

func (r *engagementRepository) FindReportByID(reportID uint) (*postModel.PostReport, error) {
	var report postModel.PostReport
	if err := r.db.First(&report, reportID).Error; err != nil {
		return nil, err
	}
	return &report, nil
}

// ListReports 获取举报列表；reporterID 非 0 时仅返回该用户提交的举报
func (r *engagementRepository) ListReports(reporterID uint, status string, page, pageSize int) ([]postModel.PostReport, int64, error) {
	var reports []postModel.PostReport
	var total int64

	query := r.db.Model(&postModel.PostReport{})
	if reporterID != 0 {
		query = query.Where("reporter_id = ?", reporterID)
	}
	if status != "" {
		query = query.Where("status = ?", status)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&reports).Error
	if err != nil {
		return nil, 0, err
	}
	return reports, total, nil
}

func (r *engagementRepository) UpdateReport(report *postModel.PostReport) error {
	return r.db.Save(report).Error
}

func (r *engagementRepository) Transaction(fn func(tx *gorm.DB) error) error {
	return r.db.Transaction(fn)
}
