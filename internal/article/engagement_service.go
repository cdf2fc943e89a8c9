package article

import (
	"errors"

	"gorm.io/gorm"

	wikiModel "github.com/tsuki530/2023-tieba-bk/internal/model/wiki"
)

var (
	ErrCommentNotFound = errors.New("评论不存在")
	ErrInvalidParentID = errors.New("父评论无效")
)

// EngagementService 文章点赞/评论服务
type EngagementService struct {
	articleRepo    ArticleRepository
	engagementRepo EngagementRepository
}

// NewEngagementService 创建服务实例
func NewEngagementService(articleRepo ArticleRepository, engagementRepo EngagementRepository) *EngagementService {
	return &EngagementService{
		articleRepo:    articleRepo,
		engagementRepo: engagementRepo,
	}
}

// ToggleLike 点赞/取消点赞文章
// 点赞记录和计数在同一事务内变更，计数下限为 0
func (s *EngagementService) ToggleLike(slug string, userID uint) (*LikeResponse, error) {
	article, err := s.articleRepo.FindBySlug(slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrArticleNotFound
		}
		return nil, err
	}

	_, findErr := s.engagementRepo.FindLike(article.ID, userID)
	liked := findErr == nil

	err = s.engagementRepo.Transaction(func(tx *gorm.DB) error {
		if liked {
			// 取消点赞
			_, err := removeLike(tx, article.ID, userID)
			return err
		}

		// 点赞
		if err := tx.Create(&wikiModel.ArticleLike{
			ArticleID: article.ID,
			UserID:    userID,
		}).Error; err != nil {
			return err
		}
		return tx.Model(&wikiModel.Article{}).
			Where("id = ?", article.ID).
			UpdateColumn("likes_count", gorm.Expr("likes_count + 1")).Error
	})
	if err != nil {
		if liked || !isDuplicateKeyError(err) {
			return nil, err
		}
		// 并发下的重复点赞按已点赞处理
	}

	refreshed, err := s.articleRepo.FindByID(article.ID)
	if err != nil {
		return nil, err
	}
	return &LikeResponse{Liked: !liked, LikesCount: refreshed.LikesCount}, nil
}

// IsLiked 当前用户是否点赞过该文章
func (s *EngagementService) IsLiked(articleID, userID uint) bool {
	if userID == 0 {
		return false
	}
	_, err := s.engagementRepo.FindLike(articleID, userID)
	return err == nil
}

// ListComments 获取文章评论，回复按一层嵌套挂到顶级评论下
func (s *EngagementService) ListComments(slug string, viewerID uint) ([]CommentResponse, error) {
	article, err := s.articleRepo.FindBySlug(slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrArticleNotFound
		}
		return nil, err
	}

	comments, err := s.engagementRepo.ListCommentsByArticleID(article.ID)
	if err != nil {
		return nil, err
	}

	// 1. 构建所有节点
	nodes := make(map[uint]*CommentResponse, len(comments))
	for i := range comments {
		c := &comments[i]
		nodes[c.ID] = &CommentResponse{
			ID:         c.ID,
			ArticleID:  c.ArticleID,
			AuthorID:   c.AuthorID,
			ParentID:   c.ParentID,
			Content:    c.Content,
			LikesCount: c.LikesCount,
			IsLiked:    s.isCommentLiked(c.ID, viewerID),
			CreatedAt:  c.CreatedAt,
			UpdatedAt:  c.UpdatedAt,
		}
	}

	// 2. 回复挂到顶级祖先下（展示只保留一层嵌套）
	roots := make([]CommentResponse, 0)
	for i := range comments {
		c := &comments[i]
		if c.ParentID == nil {
			continue
		}
		rootID := s.findRootID(nodes, c.ID)
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

// ListReplies 获取指定评论的直接回复列表
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
		c := &replies[i]
		result = append(result, CommentResponse{
			ID:         c.ID,
			ArticleID:  c.ArticleID,
			AuthorID:   c.AuthorID,
			ParentID:   c.ParentID,
			Content:    c.Content,
			LikesCount: c.LikesCount,
			IsLiked:    s.isCommentLiked(c.ID, viewerID),
			CreatedAt:  c.CreatedAt,
			UpdatedAt:  c.UpdatedAt,
		})
	}
	return result, nil
}

// ListLikes 获取点赞记录，按文章或用户过滤
func (s *EngagementService) ListLikes(articleSlug string, userID uint) ([]wikiModel.ArticleLike, error) {
	if articleSlug != "" {
		article, err := s.articleRepo.FindBySlug(articleSlug)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrArticleNotFound
			}
			return nil, err
		}
		return s.engagementRepo.ListLikesByArticleID(article.ID)
	}
	return s.engagementRepo.ListLikesByUserID(userID)
}

// CreateComment 创建评论，评论数在同一事务内自增
func (s *EngagementService) CreateComment(slug string, userID uint, req CreateCommentRequest) (*CommentResponse, error) {
	article, err := s.articleRepo.FindBySlug(slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrArticleNotFound
		}
		return nil, err
	}

	// 父评论必须存在且属于同一篇文章
	if req.ParentID != nil {
		parent, err := s.engagementRepo.FindCommentByID(*req.ParentID)
		if err != nil || parent.ArticleID != article.ID {
			return nil, ErrInvalidParentID
		}
	}

	comment := &wikiModel.ArticleComment{
		ArticleID:  article.ID,
		AuthorID:   userID,
		ParentID:   req.ParentID,
		Content:    req.Content,
		IsApproved: true,
	}

	err = s.engagementRepo.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(comment).Error; err != nil {
			return err
		}
		return tx.Model(&wikiModel.Article{}).
			Where("id = ?", article.ID).
			UpdateColumn("comments_count", gorm.Expr("comments_count + 1")).Error
	})
	if err != nil {
		return nil, err
	}

	return &CommentResponse{
		ID:        comment.ID,
		ArticleID: comment.ArticleID,
		AuthorID:  comment.AuthorID,
		ParentID:  comment.ParentID,
		Content:   comment.Content,
		CreatedAt: comment.CreatedAt,
		UpdatedAt: comment.UpdatedAt,
	}, nil
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
	return &CommentResponse{
		ID:         comment.ID,
		ArticleID:  comment.ArticleID,
		AuthorID:   comment.AuthorID,
		ParentID:   comment.ParentID,
		Content:    comment.Content,
		LikesCount: comment.LikesCount,
		CreatedAt:  comment.CreatedAt,
		UpdatedAt:  comment.UpdatedAt,
	}, nil
}

// DeleteComment 删除评论（作者或管理员）
// 整棵回复子树连同其点赞一并删除，评论数按实际删除数扣减且不低于 0
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

		// 2. 删除子树内评论的点赞和评论本体
		if err := tx.Where("comment_id IN ?", ids).
			Delete(&wikiModel.CommentLike{}).Error; err != nil {
			return err
		}
		if err := tx.Where("id IN ?", ids).
			Delete(&wikiModel.ArticleComment{}).Error; err != nil {
			return err
		}

		// 3. 扣减计数
		return tx.Model(&wikiModel.Article{}).
			Where("id = ?", comment.ArticleID).
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

		if err := tx.Create(&wikiModel.CommentLike{
			CommentID: comment.ID,
			UserID:    userID,
		}).Error; err != nil {
			return err
		}
		return tx.Model(&wikiModel.ArticleComment{}).
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

// isCommentLiked 当前用户是否点赞过该评论
func (s *EngagementService) isCommentLiked(commentID, viewerID uint) bool {
	if viewerID == 0 {
		return false
	}
	_, err := s.engagementRepo.FindCommentLike(commentID, viewerID)
	return err == nil
}

// removeLike 删除文章点赞记录，只有确实删掉行时才扣减计数
// 并发取消点赞时后到的请求删不到行，不能再扣
func removeLike(tx *gorm.DB, articleID, userID uint) (bool, error) {
	res := tx.Where("article_id = ? AND user_id = ?", articleID, userID).
		Delete(&wikiModel.ArticleLike{})
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected == 0 {
		return false, nil
	}
	err := tx.Model(&wikiModel.Article{}).
		Where("id = ?", articleID).
		UpdateColumn("likes_count", gorm.Expr("GREATEST(likes_count - 1, 0)")).Error
	return true, err
}

// removeCommentLike 同 removeLike，作用于评论点赞
func removeCommentLike(tx *gorm.DB, commentID, userID uint) (bool, error) {
	res := tx.Where("comment_id = ? AND user_id = ?", commentID, userID).
		Delete(&wikiModel.CommentLike{})
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected == 0 {
		return false, nil
	}
	err := tx.Model(&wikiModel.ArticleComment{}).
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
		if err := tx.Model(&wikiModel.ArticleComment{}).
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
func (s *EngagementService) findRootID(nodes map[uint]*CommentResponse, commentID uint) uint {
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
