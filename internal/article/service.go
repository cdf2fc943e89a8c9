package article

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/tsuki530/2023-tieba-bk/internal/database"
	wikiModel "github.com/tsuki530/2023-tieba-bk/internal/model/wiki"
	"github.com/tsuki530/2023-tieba-bk/internal/pkg"
	"github.com/tsuki530/2023-tieba-bk/internal/tag"
)

var (
	ErrArticleNotFound = errors.New("文章不存在")
	ErrForbidden       = errors.New("没有操作权限")
	ErrVersionConflict = errors.New("版本号冲突，请刷新后重试")
)

// 版本号冲突时的最大重试次数
const maxVersionRetries = 3

// ArticleService 百科文章服务
type ArticleService struct {
	articleRepo ArticleRepository
	versionRepo VersionRepository
	tagService  *tag.TagService
	tagRepo     tag.TagRepository
	redis       *database.RedisClient
}

// NewArticleService 创建服务实例
func NewArticleService(articleRepo ArticleRepository, versionRepo VersionRepository,
	tagRepo tag.TagRepository, redis *database.RedisClient) *ArticleService {
	return &ArticleService{
		articleRepo: articleRepo,
		versionRepo: versionRepo,
		tagService:  tag.NewTagService(tagRepo),
		tagRepo:     tagRepo,
		redis:       redis,
	}
}

// CreateArticle 创建文章
// slug 由标题生成，冲突时追加数字后缀；一经写入不再变化
func (s *ArticleService) CreateArticle(req CreateArticleRequest, userID uint) (*ArticleResponse, error) {
	// 1. 生成唯一 slug
	slug, err := s.generateUniqueSlug(req.Title)
	if err != nil {
		return nil, err
	}

	// 2. 状态默认 draft，发布状态记录发布时间
	status := req.Status
	if status == "" {
		status = wikiModel.StatusDraft
	}

	article := &wikiModel.Article{
		Title:      req.Title,
		Slug:       slug,
		Content:    req.Content,
		Summary:    req.Summary,
		AuthorID:   userID,
		CategoryID: req.CategoryID,
		Status:     status,
	}
	if status == wikiModel.StatusPublished {
		now := time.Now()
		article.PublishedAt = &now
	}

	if err := s.articleRepo.Create(article); err != nil {
		return nil, err
	}

	// 3. 解析并关联标签（不存在的按需创建）
	tags, err := s.applyTags(article.ID, req.Tags)
	if err != nil {
		return nil, err
	}

	resp := toArticleResponse(article, tags, false)
	return &resp, nil
}

// GetArticle 按 slug 获取文章详情
// 非 published 状态只有作者和管理员可见；viewerKey 用于浏览量去重
func (s *ArticleService) GetArticle(slug string, viewerID uint, isStaff bool, viewerKey string) (*ArticleResponse, error) {
	article, err := s.articleRepo.FindBySlug(slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrArticleNotFound
		}
		return nil, err
	}

	if article.Status != wikiModel.StatusPublished && article.AuthorID != viewerID && !isStaff {
		return nil, ErrArticleNotFound
	}

	// 浏览量：仅已发布文章计数，按浏览者去重
	if article.Status == wikiModel.StatusPublished && s.shouldCountView(article.ID, viewerKey) {
		if err := s.articleRepo.IncrementViews(article.ID); err == nil {
			article.ViewsCount++
		}
	}

	tags, err := s.tagRepo.FindTagsByArticleID(article.ID)
	if err != nil {
		return nil, err
	}

	resp := toArticleResponse(article, tags, false)
	return &resp, nil
}

// ListArticles 分页获取文章列表
// 未指定状态时仅返回已发布文章；draft/archived 过滤仅限作者本人和管理员
func (s *ArticleService) ListArticles(filter ArticleListFilter, viewerID uint, isStaff bool) (*ArticleListResponse, error) {
	if filter.Status == "" {
		filter.Status = wikiModel.StatusPublished
	} else if filter.Status != wikiModel.StatusPublished && !isStaff {
		// 非公开状态只能查看自己的
		filter.AuthorID = viewerID
	}

	articles, total, err := s.articleRepo.List(filter)
	if err != nil {
		return nil, err
	}

	items := make([]ArticleListItem, 0, len(articles))
	for i := range articles {
		items = append(items, toArticleListItem(&articles[i]))
	}

	return &ArticleListResponse{
		Articles: items,
		Total:    total,
		Page:     filter.Page,
		PageSize: filter.PageSize,
	}, nil
}

// UpdateArticle 更新文章
// 内容变更前在同一事务内将当前状态落入版本快照，版本号在文章内递增；
// 并发更新触发版本号唯一索引冲突时整体重试
func (s *ArticleService) UpdateArticle(slug string, userID uint, isStaff bool, req UpdateArticleRequest) (*ArticleResponse, error) {
	article, err := s.articleRepo.FindBySlug(slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrArticleNotFound
		}
		return nil, err
	}

	// 1. 权限：作者或管理员
	if article.AuthorID != userID && !isStaff {
		return nil, ErrForbidden
	}

	contentChanged := (req.Title != nil && *req.Title != article.Title) ||
		(req.Content != nil && *req.Content != article.Content) ||
		(req.Summary != nil && *req.Summary != article.Summary)

	// 2. 带重试地执行快照 + 更新
	var updated *wikiModel.Article
	for attempt := 1; attempt <= maxVersionRetries; attempt++ {
		updated, err = s.updateWithSnapshot(article.ID, userID, req, contentChanged)
		if err == nil {
			break
		}
		if !isVersionConflictError(err) {
			return nil, err
		}
		log.Printf("[Article] 版本号冲突, articleID=%d, attempt=%d", article.ID, attempt)
		if attempt == maxVersionRetries {
			return nil, ErrVersionConflict
		}
	}

	// 3. 标签全量替换（仅在请求携带 tags 字段时）
	var tags []wikiModel.Tag
	if req.Tags != nil {
		tags, err = s.applyTags(updated.ID, req.Tags)
		if err != nil {
			return nil, err
		}
	} else {
		tags, err = s.tagRepo.FindTagsByArticleID(updated.ID)
		if err != nil {
			return nil, err
		}
	}

	resp := toArticleResponse(updated, tags, false)
	return &resp, nil
}

// updateWithSnapshot 在单个事务内完成快照写入和文章更新
func (s *ArticleService) updateWithSnapshot(articleID, editorID uint, req UpdateArticleRequest, contentChanged bool) (*wikiModel.Article, error) {
	var result *wikiModel.Article

	err := s.articleRepo.Transaction(func(tx *gorm.DB) error {
		// 1. 事务内重读当前状态
		var current wikiModel.Article
		if err := tx.First(&current, articleID).Error; err != nil {
			return err
		}

		// 2. 内容变更时先快照更新前的状态
		if contentChanged {
			version := &wikiModel.ArticleVersion{
				ArticleID:         articleID,
				VersionNumber:     s.versionRepo.GetNextVersionNumber(tx, articleID),
				Title:             current.Title,
				Content:           current.Content,
				Summary:           current.Summary,
				EditorID:          editorID,
				ChangeDescription: req.ChangeDescription,
			}
			if err := s.versionRepo.CreateTx(tx, version); err != nil {
				return err
			}
		}

		// 3. 应用变更
		if req.Title != nil {
			current.Title = *req.Title
		}
		if req.Content != nil {
			current.Content = *req.Content
		}
		if req.Summary != nil {
			current.Summary = *req.Summary
		}
		if req.CategoryID != nil {
			current.CategoryID = req.CategoryID
		}
		if req.Status != nil && *req.Status != current.Status {
			current.Status = *req.Status
			// 发布时间只在首次发布时写入
			if *req.Status == wikiModel.StatusPublished && current.PublishedAt == nil {
				now := time.Now()
				current.PublishedAt = &now
			}
		}

		if err := tx.Save(&current).Error; err != nil {
			return err
		}
		result = &current
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// DeleteArticle 删除文章（作者或管理员）
func (s *ArticleService) DeleteArticle(slug string, userID uint, isStaff bool) error {
	article, err := s.articleRepo.FindBySlug(slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrArticleNotFound
		}
		return err
	}

	if article.AuthorID != userID && !isStaff {
		return ErrForbidden
	}

	return s.articleRepo.Delete(article.ID)
}

// ListVersions 获取文章的版本列表（不含正文，版本号降序）
func (s *ArticleService) ListVersions(slug string) ([]VersionResponse, error) {
	article, err := s.articleRepo.FindBySlug(slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrArticleNotFound
		}
		return nil, err
	}

	versions, err := s.versionRepo.ListByArticleID(article.ID)
	if err != nil {
		return nil, err
	}

	result := make([]VersionResponse, 0, len(versions))
	for i := range versions {
		result = append(result, toVersionResponse(&versions[i], false))
	}
	return result, nil
}

// GetVersion 获取文章的指定版本（含正文）
func (s *ArticleService) GetVersion(slug string, versionNumber int) (*VersionResponse, error) {
	article, err := s.articleRepo.FindBySlug(slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrArticleNotFound
		}
		return nil, err
	}

	version, err := s.versionRepo.FindByNumber(article.ID, versionNumber)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrArticleNotFound
		}
		return nil, err
	}

	resp := toVersionResponse(version, true)
	return &resp, nil
}

// generateUniqueSlug 生成唯一 slug，冲突时追加数字后缀
func (s *ArticleService) generateUniqueSlug(title string) (string, error) {
	for suffix := 0; suffix < 100; suffix++ {
		candidate := pkg.MakeUniqueSlug(title, suffix)
		exists, err := s.articleRepo.SlugExists(candidate)
		if err != nil {
			return "", err
		}
		if !exists {
			return candidate, nil
		}
	}
	// 极端情况下退化为时间戳后缀
	return fmt.Sprintf("%s-%d", pkg.MakeSlug(title), time.Now().UnixNano()), nil
}

// applyTags 解析标签名并全量替换文章的标签关联
func (s *ArticleService) applyTags(articleID uint, names []string) ([]wikiModel.Tag, error) {
	tags, err := s.tagService.ResolveTags(names)
	if err != nil {
		return nil, err
	}

	tagIDs := make([]uint, 0, len(tags))
	for _, t := range tags {
		tagIDs = append(tagIDs, t.ID)
	}
	if err := s.tagRepo.ReplaceArticleTags(articleID, tagIDs); err != nil {
		return nil, err
	}
	return tags, nil
}

// shouldCountView 浏览计数去重
// Redis 不可用时不去重，直接计数
func (s *ArticleService) shouldCountView(articleID uint, viewerKey string) bool {
	if s.redis == nil || viewerKey == "" {
		return true
	}

	key := fmt.Sprintf("view:article:%d:%s", articleID, viewerKey)
	ok, err := s.redis.SetNX(context.Background(), key, 1, 24*time.Hour).Result()
	if err != nil {
		return true
	}
	return ok
}

// isDuplicateKeyError 检测唯一索引冲突错误
func isDuplicateKeyError(err error) bool {
	if err == nil {
		return false
	}
	errMsg := err.Error()
	for _, sub := range []string{
		"duplicate key value",
		"Duplicate entry",
		"UNIQUE constraint failed",
	} {
		if strings.Contains(errMsg, sub) {
			return true
		}
	}
	return false
}

// isVersionConflictError 检测是否是版本号唯一索引冲突
func isVersionConflictError(err error) bool {
	return isDuplicateKeyError(err)
}
