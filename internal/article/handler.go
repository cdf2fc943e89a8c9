package article

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/tsuki530/2023-tieba-bk/internal/category"
	"github.com/tsuki530/2023-tieba-bk/internal/database"
	"github.com/tsuki530/2023-tieba-bk/internal/dto"
	"github.com/tsuki530/2023-tieba-bk/internal/tag"
	"github.com/tsuki530/2023-tieba-bk/pkg/response"
)

type ArticleHandler struct {
	articleService    *ArticleService
	engagementService *EngagementService
	categoryRepo      category.CategoryRepository
	tagRepo           tag.TagRepository
}

func NewArticleHandler(db *gorm.DB, redis *database.RedisClient) *ArticleHandler {
	articleRepo := NewArticleRepository(db)
	versionRepo := NewVersionRepository(db)
	engagementRepo := NewEngagementRepository(db)
	tagRepo := tag.NewTagRepository(db)

	return &ArticleHandler{
		articleService:    NewArticleService(articleRepo, versionRepo, tagRepo, redis),
		engagementService: NewEngagementService(articleRepo, engagementRepo),
		categoryRepo:      category.NewCategoryRepository(db),
		tagRepo:           tagRepo,
	}
}

// ListArticles 获取文章列表
// @Summary 获取文章列表（分页，支持分类/标签/作者/关键词过滤）
// @Tags Article
// @Produce json
// @Param category query string false "分类slug"
// @Param tag query string false "标签slug"
// @Param author query int false "作者ID"
// @Param search query string false "关键词"
// @Param sort query string false "排序: latest, views, likes"
// @Param page query int false "页码" default(1)
// @Param page_size query int false "每页数量" default(20)
// @Success 200 {object} response.Response{data=ArticleListResponse}
// @Router /wiki/articles [get]
func (h *ArticleHandler) ListArticles(c *gin.Context) {
	filter, bizErr := h.buildListFilter(c)
	if bizErr != nil {
		dto.ErrorResponse(c, bizErr)
		return
	}

	viewerID := c.GetUint("user_id")
	isStaff := c.GetBool("is_staff")

	result, err := h.articleService.ListArticles(*filter, viewerID, isStaff)
	if err != nil {
		h.handleError(c, err, "获取文章列表失败")
		return
	}
	dto.SuccessResponse(c, result)
}

// ListFeatured 获取推荐文章
// @Summary 获取推荐文章列表
// @Tags Article
// @Produce json
// @Success 200 {object} response.Response{data=ArticleListResponse}
// @Router /wiki/articles/featured [get]
func (h *ArticleHandler) ListFeatured(c *gin.Context) {
	page, pageSize := parsePagination(c)
	filter := ArticleListFilter{
		FeaturedOnly: true,
		Page:         page,
		PageSize:     pageSize,
	}

	result, err := h.articleService.ListArticles(filter, 0, false)
	if err != nil {
		h.handleError(c, err, "获取推荐文章失败")
		return
	}
	dto.SuccessResponse(c, result)
}

// ListPopular 获取热门文章
// @Summary 获取热门文章列表（按浏览量降序）
// @Tags Article
// @Produce json
// @Success 200 {object} response.Response{data=ArticleListResponse}
// @Router /wiki/articles/popular [get]
func (h *ArticleHandler) ListPopular(c *gin.Context) {
	page, pageSize := parsePagination(c)
	filter := ArticleListFilter{
		Sort:     "views",
		Page:     page,
		PageSize: pageSize,
	}

	result, err := h.articleService.ListArticles(filter, 0, false)
	if err != nil {
		h.handleError(c, err, "获取热门文章失败")
		return
	}
	dto.SuccessResponse(c, result)
}

// CreateArticle 创建文章
// @Summary 创建文章
// @Tags Article
// @Accept json
// @Produce json
// @Param request body CreateArticleRequest true "创建文章请求"
// @Success 200 {object} response.Response{data=ArticleResponse}
// @Router /wiki/articles [post]
func (h *ArticleHandler) CreateArticle(c *gin.Context) {
	var req CreateArticleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.ValidationErrorResponse(c, err)
		return
	}

	userID := c.GetUint("user_id")
	result, err := h.articleService.CreateArticle(req, userID)
	if err != nil {
		h.handleError(c, err, "创建文章失败")
		return
	}
	dto.CreatedResponse(c, result)
}

// GetArticle 获取文章详情
// @Summary 按 slug 获取文章详情（计入浏览量，按浏览者去重）
// @Tags Article
// @Produce json
// @Param slug path string true "文章slug"
// @Success 200 {object} response.Response{data=ArticleResponse}
// @Router /wiki/articles/{slug} [get]
func (h *ArticleHandler) GetArticle(c *gin.Context) {
	slug := c.Param("slug")
	viewerID := c.GetUint("user_id")
	isStaff := c.GetBool("is_staff")

	result, err := h.articleService.GetArticle(slug, viewerID, isStaff, h.viewerKey(c))
	if err != nil {
		h.handleError(c, err, "获取文章失败")
		return
	}

	result.IsLiked = h.engagementService.IsLiked(result.ID, viewerID)
	dto.SuccessResponse(c, result)
}

// UpdateArticle 更新文章
// @Summary 更新文章（更新前写入版本快照）
// @Tags Article
// @Accept json
// @Produce json
// @Param slug path string true "文章slug"
// @Param request body UpdateArticleRequest true "更新文章请求"
// @Success 200 {object} response.Response{data=ArticleResponse}
// @Router /wiki/articles/{slug} [put]
func (h *ArticleHandler) UpdateArticle(c *gin.Context) {
	slug := c.Param("slug")

	var req UpdateArticleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.ValidationErrorResponse(c, err)
		return
	}

	userID := c.GetUint("user_id")
	isStaff := c.GetBool("is_staff")

	result, err := h.articleService.UpdateArticle(slug, userID, isStaff, req)
	if err != nil {
		h.handleError(c, err, "更新文章失败")
		return
	}
	dto.SuccessResponse(c, result)
}

// DeleteArticle 删除文章
// @Summary 删除文章（作者或管理员）
// @Tags Article
// @Produce json
// @Param slug path string true "文章slug"
// @Success 200 {object} response.Response
// @Router /wiki/articles/{slug} [delete]
func (h *ArticleHandler) DeleteArticle(c *gin.Context) {
	slug := c.Param("slug")
	userID := c.GetUint("user_id")
	isStaff := c.GetBool("is_staff")

	if err := h.articleService.DeleteArticle(slug, userID, isStaff); err != nil {
		h.handleError(c, err, "删除文章失败")
		return
	}
	dto.SuccessResponse(c, gin.H{"message": "文章已删除"})
}

// ToggleLike 点赞/取消点赞文章
// @Summary 点赞或取消点赞文章
// @Tags Article
// @Produce json
// @Param slug path string true "文章slug"
// @Success 200 {object} response.Response{data=LikeResponse}
// @Router /wiki/articles/{slug}/like [post]
func (h *ArticleHandler) ToggleLike(c *gin.Context) {
	slug := c.Param("slug")
	userID := c.GetUint("user_id")

	result, err := h.engagementService.ToggleLike(slug, userID)
	if err != nil {
		h.handleError(c, err, "点赞操作失败")
		return
	}
	dto.SuccessResponse(c, result)
}

// ListVersions 获取文章版本列表
// @Summary 获取文章版本列表（版本号降序，不含正文）
// @Tags Article
// @Produce json
// @Param slug path string true "文章slug"
// @Success 200 {object} response.Response{data=[]VersionResponse}
// @Router /wiki/articles/{slug}/versions [get]
func (h *ArticleHandler) ListVersions(c *gin.Context) {
	slug := c.Param("slug")

	result, err := h.articleService.ListVersions(slug)
	if err != nil {
		h.handleError(c, err, "获取版本列表失败")
		return
	}
	dto.SuccessResponse(c, result)
}

// GetVersion 获取文章指定版本
// @Summary 获取文章指定版本（含正文）
// @Tags Article
// @Produce json
// @Param slug path string true "文章slug"
// @Param number path int true "版本号"
// @Success 200 {object} response.Response{data=VersionResponse}
// @Router /wiki/articles/{slug}/versions/{number} [get]
func (h *ArticleHandler) GetVersion(c *gin.Context) {
	slug := c.Param("slug")
	number, err := strconv.Atoi(c.Param("number"))
	if err != nil || number < 1 {
		dto.ErrorResponse(c, response.NewBusinessError(
			response.WithErrorCode(response.ParseError),
			response.WithErrorMessage("无效的版本号"),
		))
		return
	}

	result, svcErr := h.articleService.GetVersion(slug, number)
	if svcErr != nil {
		h.handleError(c, svcErr, "获取版本失败")
		return
	}
	dto.SuccessResponse(c, result)
}

// ListComments 获取文章评论
// @Summary 获取文章评论（默认顶级评论带一层回复；parent 参数查询指定评论的回复）
// @Tags Article
// @Produce json
// @Param slug path string true "文章slug"
// @Param parent query int false "父评论ID"
// @Success 200 {object} response.Response{data=[]CommentResponse}
// @Router /wiki/articles/{slug}/comments [get]
func (h *ArticleHandler) ListComments(c *gin.Context) {
	slug := c.Param("slug")
	viewerID := c.GetUint("user_id")

	if parentStr := c.Query("parent"); parentStr != "" {
		parentID, err := strconv.Atoi(parentStr)
		if err != nil {
			dto.ErrorResponse(c, response.NewBusinessError(
				response.WithErrorCode(response.ParseError),
				response.WithErrorMessage("无效的父评论ID"),
			))
			return
		}
		result, svcErr := h.engagementService.ListReplies(uint(parentID), viewerID)
		if svcErr != nil {
			h.handleError(c, svcErr, "获取回复失败")
			return
		}
		dto.SuccessResponse(c, result)
		return
	}

	result, err := h.engagementService.ListComments(slug, viewerID)
	if err != nil {
		h.handleError(c, err, "获取评论失败")
		return
	}
	dto.SuccessResponse(c, result)
}

// CreateComment 创建评论
// @Summary 创建文章评论或回复
// @Tags Article
// @Accept json
// @Produce json
// @Param slug path string true "文章slug"
// @Param request body CreateCommentRequest true "创建评论请求"
// @Success 200 {object} response.Response{data=CommentResponse}
// @Router /wiki/articles/{slug}/comments [post]
func (h *ArticleHandler) CreateComment(c *gin.Context) {
	slug := c.Param("slug")

	var req CreateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.ValidationErrorResponse(c, err)
		return
	}

	userID := c.GetUint("user_id")
	result, err := h.engagementService.CreateComment(slug, userID, req)
	if err != nil {
		h.handleError(c, err, "创建评论失败")
		return
	}
	dto.CreatedResponse(c, result)
}

// UpdateComment 更新评论
// @Summary 更新评论内容（仅作者）
// @Tags Article
// @Accept json
// @Produce json
// @Param id path int true "评论ID"
// @Param request body UpdateCommentRequest true "更新评论请求"
// @Success 200 {object} response.Response{data=CommentResponse}
// @Router /wiki/comments/{id} [put]
func (h *ArticleHandler) UpdateComment(c *gin.Context) {
	commentID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		dto.ErrorResponse(c, response.NewBusinessError(
			response.WithErrorCode(response.ParseError),
			response.WithErrorMessage("无效的评论ID"),
		))
		return
	}

	var req UpdateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.ValidationErrorResponse(c, err)
		return
	}

	userID := c.GetUint("user_id")
	result, svcErr := h.engagementService.UpdateComment(uint(commentID), userID, req)
	if svcErr != nil {
		h.handleError(c, svcErr, "更新评论失败")
		return
	}
	dto.SuccessResponse(c, result)
}

// DeleteComment 删除评论
// @Summary 删除评论（作者或管理员）
// @Tags Article
// @Produce json
// @Param id path int true "评论ID"
// @Success 200 {object} response.Response
// @Router /wiki/comments/{id} [delete]
func (h *ArticleHandler) DeleteComment(c *gin.Context) {
	commentID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		dto.ErrorResponse(c, response.NewBusinessError(
			response.WithErrorCode(response.ParseError),
			response.WithErrorMessage("无效的评论ID"),
		))
		return
	}

	userID := c.GetUint("user_id")
	isStaff := c.GetBool("is_staff")

	if svcErr := h.engagementService.DeleteComment(uint(commentID), userID, isStaff); svcErr != nil {
		h.handleError(c, svcErr, "删除评论失败")
		return
	}
	dto.SuccessResponse(c, gin.H{"message": "评论已删除"})
}

// ToggleCommentLike 点赞/取消点赞评论
// @Summary 点赞或取消点赞评论
// @Tags Article
// @Produce json
// @Param id path int true "评论ID"
// @Success 200 {object} response.Response{data=LikeResponse}
// @Router /wiki/comments/{id}/like [post]
func (h *ArticleHandler) ToggleCommentLike(c *gin.Context) {
	commentID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		dto.ErrorResponse(c, response.NewBusinessError(
			response.WithErrorCode(response.ParseError),
			response.WithErrorMessage("无效的评论ID"),
		))
		return
	}

	userID := c.GetUint("user_id")
	result, svcErr := h.engagementService.ToggleCommentLike(uint(commentID), userID)
	if svcErr != nil {
		h.handleError(c, svcErr, "点赞操作失败")
		return
	}
	dto.SuccessResponse(c, result)
}

// ListLikes 获取点赞记录
// @Summary 获取点赞记录（按文章或当前用户过滤）
// @Tags Article
// @Produce json
// @Param article query string false "文章slug"
// @Success 200 {object} response.Response
// @Router /wiki/likes [get]
func (h *ArticleHandler) ListLikes(c *gin.Context) {
	articleSlug := c.Query("article")
	userID := c.GetUint("user_id")

	if articleSlug == "" && userID == 0 {
		dto.ErrorResponse(c, response.NewBusinessError(
			response.WithErrorCode(response.ParseError),
			response.WithErrorMessage("需要指定 article 参数或登录"),
		))
		return
	}

	result, err := h.engagementService.ListLikes(articleSlug, userID)
	if err != nil {
		h.handleError(c, err, "获取点赞记录失败")
		return
	}
	dto.SuccessResponse(c, result)
}

// buildListFilter 解析列表过滤参数，分类/标签按 slug 解析
func (h *ArticleHandler) buildListFilter(c *gin.Context) (*ArticleListFilter, *response.BusinessError) {
	page, pageSize := parsePagination(c)
	filter := &ArticleListFilter{
		Status:   c.Query("status"),
		Keyword:  c.Query("search"),
		Sort:     c.Query("sort"),
		Page:     page,
		PageSize: pageSize,
	}

	if slug := c.Query("category"); slug != "" {
		cat, err := h.categoryRepo.FindBySlug(slug)
		if err != nil {
			return nil, response.NewBusinessError(
				response.WithErrorCode(response.NotFound),
				response.WithErrorMessage("分类不存在"),
			)
		}
		filter.CategoryID = cat.ID
	}
	if slug := c.Query("tag"); slug != "" {
		t, err := h.tagRepo.FindBySlug(slug)
		if err != nil {
			return nil, response.NewBusinessError(
				response.WithErrorCode(response.NotFound),
				response.WithErrorMessage("标签不存在"),
			)
		}
		filter.TagID = t.ID
	}
	if authorStr := c.Query("author"); authorStr != "" {
		authorID, err := strconv.Atoi(authorStr)
		if err != nil {
			return nil, response.NewBusinessError(
				response.WithErrorCode(response.ParseError),
				response.WithErrorMessage("无效的作者ID"),
			)
		}
		filter.AuthorID = uint(authorID)
	}
	if c.Query("featured") == "true" {
		filter.FeaturedOnly = true
	}
	return filter, nil
}

// viewerKey 浏览量去重键：登录用户用ID，匿名用户用客户端IP
func (h *ArticleHandler) viewerKey(c *gin.Context) string {
	if userID := c.GetUint("user_id"); userID != 0 {
		return fmt.Sprintf("u%d", userID)
	}
	return c.ClientIP()
}

// handleError 服务层错误到业务错误的统一映射
func (h *ArticleHandler) handleError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, ErrArticleNotFound), errors.Is(err, ErrCommentNotFound):
		dto.ErrorResponse(c, response.NewBusinessError(
			response.WithErrorCode(response.NotFound),
			response.WithErrorMessage(err.Error()),
		))
	case errors.Is(err, ErrForbidden):
		dto.ErrorResponse(c, response.NewBusinessError(
			response.WithErrorCode(response.Forbidden),
			response.WithErrorMessage(err.Error()),
		))
	case errors.Is(err, ErrVersionConflict):
		dto.ErrorResponse(c, response.NewBusinessError(
			response.WithErrorCode(response.Conflict),
			response.WithErrorMessage(err.Error()),
		))
	case errors.Is(err, ErrInvalidParentID):
		dto.ErrorResponse(c, response.NewBusinessError(
			response.WithErrorCode(response.InvalidParameter),
			response.WithErrorMessage(err.Error()),
		))
	default:
		dto.ErrorResponse(c, response.NewBusinessError(
			response.WithErrorCode(response.Fail),
			response.WithErrorMessage(fallback),
		))
	}
}

// parsePagination 解析分页参数
func parsePagination(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	return page, pageSize
}
