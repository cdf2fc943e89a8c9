package post

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	postModel "github.com/tsuki530/2023-tieba-bk/internal/model/post"
)

// EngagementService 帖子点赞/评论/分享/举报服务
type EngagementService struct {
	postRepo       PostRepository
	engagementRepo EngagementRepository
}

// NewEngagementService 创建服务实例
func NewEngagementService(postRepo PostRepository, engagementRepo EngagementRepository) *EngagementService {
	return &EngagementService{
		postRepo:       postRepo,
		engagementRepo: engagementRepo,
	}
}

// ToggleLike 点赞/取消点赞帖子
// 记录和计数在同一事务内变更，计数下限为 0
func (s *EngagementService) ToggleLike(postID, userID uint) (*LikeResponse, error) {
	p, err := s.postRepo.FindByID(postID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}

	_, findErr := s.engagementRepo.FindLike(p.ID, userID)
	liked := findErr == nil

	err = s.engagementRepo.Transaction(func(tx *gorm.DB) error {
		if liked {
			_, err := removeLike(tx, p.ID, userID)
			return err
		}

		if err := tx.Create(&postModel.PostLike{
			PostID: p.ID,
			UserID: userID,
		}).Error; err != nil {
			return err
		}
		return tx.Model(&postModel.Post{}).
			Where("id = ?", p.ID).
			UpdateColumn("likes_count", gorm.Expr("likes_count + 1")).Error
	})
	if err != nil {
		if liked || !isDuplicateKeyError(err) {
			return nil, err
		}
		// 并发下的重复点赞按已点赞处理
	}

	refreshed, err := s.postRepo.FindByID(p.ID)
	if err != nil {
		return nil, err
	}
	return &LikeResponse{Liked: !liked, LikesCount: refreshed.LikesCount}, nil
}

// IsLiked 当前用户是否点赞过该帖子
func (s *EngagementService) IsLiked(postID, userID uint) bool {
	if userID == 0 {
		return false
	}
	_, err := s.engagementRepo.FindLike(postID, userID)
	return err == nil
}

// ListComments 获取帖子评论，回复按一层嵌套挂到顶级评论下
func (s *EngagementService) ListComments(postID, viewerID uint) ([]CommentResponse, error) {
	if _, err := s.postRepo.FindByID(postID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}

	comments, err := s.engagementRepo.ListCommentsByPostID(postID)
	if err != nil {
		return nil, err
	}

	nodes := make(map[uint]*CommentResponse, len(comments))
	for i := range comments {
		c := &comments[i]
		resp := toCommentResponse(c, s.isCommentLiked(c.ID, viewerID))
		nodes[c.ID] = &resp
	}

	roots := make([]CommentResponse, 0)
	for i := range comments {
		c := &comments[i]
		if c.ParentID == nil {
			continue
		}
		rootID := findRootID(nodes, c.ID)
		if root, ok := nodes[rootID]; ok && rootID != c.ID {
			root.Replies = append(root.Replies, *nodes[c.ID])
		}
	}
	for i := range comments {
		if comments[i].ParentID == nil {
			roots = append(roots, *nodes[comments[i].ID])
		}
	}
	return roots, nil
}

// ListReplies 获取指定评论的直接回复
func (s *EngagementService) ListReplies(parentID, viewerID uint) ([]CommentResponse, error) {
	if _, err := s.engagementRepo.FindCommentByID(parentID); err != nil {
		return nil, ErrCommentNotFound
	}

	replies, err := s.engagementRepo.ListRepliesByParentID(parentID)
	if err != nil {
		return nil, err
	}

	result := make([]CommentResponse, 0, len(replies))
	for i := range replies {
		result = append(result, toCommentResponse(&replies[i], s.isCommentLiked(replies[i].ID, viewerID)))
	}
	return result, nil
}

// CreateComment 创建评论，评论数在同一事务内自增
// 已关闭的帖子不接受新评论
func (s *EngagementService) CreateComment(postID, userID uint, req CreateCommentRequest) (*CommentResponse, error) {
	p, err := s.postRepo.FindByID(postID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}

	if p.Status == postModel.StatusClosed {
		return nil, ErrPostClosed
	}

	if req.ParentID != nil {
		parent, err := s.engagementRepo.FindCommentByID(*req.ParentID)
		if err != nil || parent.PostID != p.ID {
			return nil, ErrInvalidParentID
		}
	}

	comment := &postModel.PostComment{
		PostID:     p.ID,
		AuthorID:   userID,
		ParentID:   req.ParentID,
		Content:    req.Content,
		IsApproved: true,
	}

	err = s.engagementRepo.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(comment).Error; err != nil {
			return err
		}
		return tx.Model(&postModel.Post{}).
			Where("id = ?", p.ID).
			UpdateColumn("comments_count", gorm.Expr("comments_count + 1")).Error
	})
	if err != nil {
		return nil, err
	}

	resp := toCommentResponse(comment, false)
	return &resp, nil
}

// UpdateComment 更新评论内容（仅作者）
func (s *EngagementService) UpdateComment(commentID, userID uint, req UpdateCommentRequest) (*CommentResponse, error) {
	comment, err := s.engagementRepo.FindCommentByID(commentID)
	if err != nil {
		return nil, ErrCommentNotFound
	}
	if comment.AuthorID != userID {
		return nil, ErrForbidden
	}

	err = s.engagementRepo.Transaction(func(tx *gorm.DB) error {
		return tx.Model(comment).Update("content", req.Content).Error
	})
	if err != nil {
		return nil, err
	}

	comment.Content = req.Content
	resp := toCommentResponse(comment, false)
	return &resp, nil
}

// DeleteComment 删除评论（作者或管理员）
// 整棵回复子树连同其点赞、指向子树内评论的举报一并删除，评论数按实际删除数扣减
func (s *EngagementService) DeleteComment(commentID, userID uint, isStaff bool) error {
	comment, err := s.engagementRepo.FindCommentByID(commentID)
	if err != nil {
		return ErrCommentNotFound
	}
	if comment.AuthorID != userID && !isStaff {
		return ErrForbidden
	}

	return s.engagementRepo.Transaction(func(tx *gorm.DB) error {
		// 1. 收集本体及所有层级的回复
		ids, err := collectCommentSubtree(tx, comment.ID)
		if err != nil {
			return err
		}

		// 2. 删除子树内评论的点赞、举报和评论本体
		if err := tx.Where("comment_id IN ?", ids).
			Delete(&postModel.CommentLike{}).Error; err != nil {
			return err
		}
		if err := tx.Where("comment_id IN ?", ids).
			Delete(&postModel.PostReport{}).Error; err != nil {
			return err
		}
		if err := tx.Where("id IN ?", ids).
			Delete(&postModel.PostComment{}).Error; err != nil {
			return err
		}

		// 3. 扣减计数
		return tx.Model(&postModel.Post{}).
			Where("id = ?", comment.PostID).
			UpdateColumn("comments_count", gorm.Expr("GREATEST(comments_count - ?, 0)", len(ids))).Error
	})
}

// ToggleCommentLike 点赞/取消点赞评论
func (s *EngagementService) ToggleCommentLike(commentID, userID uint) (*LikeResponse, error) {
	comment, err := s.engagementRepo.FindCommentByID(commentID)
	if err != nil {
		return nil, ErrCommentNotFound
	}

	_, findErr := s.engagementRepo.FindCommentLike(comment.ID, userID)
	liked := findErr == nil

	err = s.engagementRepo.Transaction(func(tx *gorm.DB) error {
		if liked {
			_, err := removeCommentLike(tx, comment.ID, userID)
			return err
		}

		if err := tx.Create(&postModel.CommentLike{
			CommentID: comment.ID,
			UserID:    userID,
		}).Error; err != nil {
			return err
		}
		return tx.Model(&postModel.PostComment{}).
			Where("id = ?", comment.ID).
			UpdateColumn("likes_count", gorm.Expr("likes_count + 1")).Error
	})
	if err != nil {
		return nil, err
	}

	refreshed, err := s.engagementRepo.FindCommentByID(comment.ID)
	if err != nil {
		return nil, err
	}
	return &LikeResponse{Liked: !liked, LikesCount: refreshed.LikesCount}, nil
}

// SharePost 分享帖子，分享数在同一事务内自增
func (s *EngagementService) SharePost(postID, userID uint, req ShareRequest) (*postModel.PostShare, error) {
	p, err := s.postRepo.FindByID(postID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}

	share := &postModel.PostShare{
		PostID:   p.ID,
		UserID:   userID,
		SharedTo: req.SharedTo,
		Message:  req.Message,
	}

	err = s.engagementRepo.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(share).Error; err != nil {
			return err
		}
		return tx.Model(&postModel.Post{}).
			Where("id = ?", p.ID).
			UpdateColumn("shares_count", gorm.Expr("shares_count + 1")).Error
	})
	if err != nil {
		return nil, err
	}
	return share, nil
}

// ListShares 获取帖子的分享记录
func (s *EngagementService) ListShares(postID uint) ([]postModel.PostShare, error) {
	if _, err := s.postRepo.FindByID(postID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}
	return s.engagementRepo.ListSharesByPostID(postID)
}

// CreateReport 创建举报
// post_id 与 comment_id 必须恰好传其一；目标的 reported_count 同事务自增
func (s *EngagementService) CreateReport(reporterID uint, req CreateReportRequest) (*postModel.PostReport, error) {
	// 1. 恰好指定一个目标
	if (req.PostID == nil) == (req.CommentID == nil) {
		return nil, ErrInvalidReport
	}

	// 2. 目标必须存在
	if req.PostID != nil {
		if _, err := s.postRepo.FindByID(*req.PostID); err != nil {
			return nil, ErrPostNotFound
		}
	} else {
		if _, err := s.engagementRepo.FindCommentByID(*req.CommentID); err != nil {
			return nil, ErrCommentNotFound
		}
	}

	report := &postModel.PostReport{
		ReporterID:  reporterID,
		PostID:      req.PostID,
		CommentID:   req.CommentID,
		ReportType:  req.ReportType,
		Description: req.Description,
		Status:      postModel.ReportPending,
	}

	err := s.engagementRepo.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(report).Error; err != nil {
			return err
		}
		if req.PostID != nil {
			return tx.Model(&postModel.Post{}).
				Where("id = ?", *req.PostID).
				UpdateColumn("reported_count", gorm.Expr("reported_count + 1")).Error
		}
		return tx.Model(&postModel.PostComment{}).
			Where("id = ?", *req.CommentID).
			UpdateColumn("reported_count", gorm.Expr("reported_count + 1")).Error
	})
	if err != nil {
		return nil, err
	}
	return report, nil
}

// ListReports 获取举报列表：普通用户只能看自己的，管理员可看全部
func (s *EngagementService) ListReports(userID uint, isStaff bool, status string, page, pageSize int) ([]postModel.PostReport, int64, error) {
	reporterID := userID
	if isStaff {
		reporterID = 0
	}
	return s.engagementRepo.ListReports(reporterID, status, page, pageSize)
}

// ReviewReport 处理举报（管理员）
func (s *EngagementService) ReviewReport(reportID uint, req ReviewReportRequest) (*postModel.PostReport, error) {
	report, err := s.engagementRepo.FindReportByID(reportID)
	if err != nil {
		return nil, ErrReportNotFound
	}

	report.Status = req.Status
	if req.ModeratorNotes != "" {
		report.ModeratorNotes = req.ModeratorNotes
	}

	if err := s.engagementRepo.UpdateReport(report); err != nil {
		return nil, err
	}
	return report, nil
}

// isCommentLiked 当前用户是否点赞过该评论
func (s *EngagementService) isCommentLiked(commentID, viewerID uint) bool {
	if viewerID == 0 {
		return false
	}
	_, err := s.engagementRepo.FindCommentLike(commentID, viewerID)
	return err == nil
}

// removeLike 删除帖子点赞记录，只有确实删掉行时才扣减计数
// 并发取消点赞时后到的请求删不到行，不能再扣
func removeLike(tx *gorm.DB, postID, userID uint) (bool, error) {
	res := tx.Where("post_id = ? AND user_id = ?", postID, userID).
		Delete(&postModel.PostLike{})
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected == 0 {
		return false, nil
	}
	err := tx.Model(&postModel.Post{}).
		Where("id = ?", postID).
		UpdateColumn("likes_count", gorm.Expr("GREATEST(likes_count - 1, 0)")).Error
	return true, err
}

// removeCommentLike 同 removeLike，作用于评论点赞
func removeCommentLike(tx *gorm.DB, commentID, userID uint) (bool, error) {
	res := tx.Where("comment_id = ? AND user_id = ?", commentID, userID).
		Delete(&postModel.CommentLike{})
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected == 0 {
		return false, nil
	}
	err := tx.Model(&postModel.PostComment{}).
		Where("id = ?", commentID).
		UpdateColumn("likes_count", gorm.Expr("GREATEST(likes_count - 1, 0)")).Error
	return true, err
}

// collectCommentSubtree 逐层收集评论及其所有后代的ID
func collectCommentSubtree(tx *gorm.DB, rootID uint) ([]uint, error) {
	ids := []uint{rootID}
	frontier := []uint{rootID}
	for len(frontier) > 0 {
		var next []uint
		if err := tx.Model(&postModel.PostComment{}).
			Where("parent_id IN ?", frontier).
			Pluck("id", &next).Error; err != nil {
			return nil, err
		}
		ids = append(ids, next...)
		frontier = next
	}
	return ids, nil
}

// findRootID 沿 parent 链找到顶级评论ID
func findRootID(nodes map[uint]*CommentResponse, commentID uint) uint {
	current := commentID
	for i := 0; i < len(nodes); i++ {
		node, ok := nodes[current]
		if !ok || node.ParentID == nil {
			return current
		}
		current = *node.ParentID
	}
	return current
}

// isDuplicateKeyError 检测唯一索引冲突错误
func isDuplicateKeyError(err error) bool {
	if err == nil {
		return false
	}
	errMsg := err.Error()
	for _, sub := range []string{"duplicate key value", "Duplicate entry", "UNIQUE constraint failed"} {
		if strings.Contains(errMsg, sub) {
			return true
		}
	}
	return false
}
