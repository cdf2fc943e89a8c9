package post

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/tsuki530/2023-tieba-bk/internal/database"
	"github.com/tsuki530/2023-tieba-bk/internal/dto"
	"github.com/tsuki530/2023-tieba-bk/pkg/response"
)

type PostHandler struct {
	postService       *PostService
	engagementService *EngagementService
}

func NewPostHandler(db *gorm.DB, redis *database.RedisClient) *PostHandler {
	postRepo := NewPostRepository(db)
	engagementRepo := NewEngagementRepository(db)

	return &PostHandler{
		postService:       NewPostService(postRepo, redis),
		engagementService: NewEngagementService(postRepo, engagementRepo),
	}
}

// ========== 帖子 ==========

// ListPosts 获取帖子列表
// @Summary 获取帖子列表（分页，支持分类/作者/类型/关键词过滤）
// @Tags Post
// @Produce json
// @Param category query string false "分类slug"
// @Param author query int false "作者ID"
// @Param type query string false "帖子类型"
// @Param search query string false "关键词"
// @Param sort query string false "排序: latest, views, likes, comments"
// @Param page query int false "页码" default(1)
// @Param page_size query int false "每页数量" default(20)
// @Success 200 {object} response.Response{data=PostListResponse}
// @Router /posts/posts [get]
func (h *PostHandler) ListPosts(c *gin.Context) {
	filter, bizErr := h.buildListFilter(c)
	if bizErr != nil {
		dto.ErrorResponse(c, bizErr)
		return
	}

	viewerID := c.GetUint("user_id")
	isStaff := c.GetBool("is_staff")

	result, err := h.postService.ListPosts(*filter, viewerID, isStaff)
	if err != nil {
		h.handleError(c, err, "获取帖子列表失败")
		return
	}
	dto.SuccessResponse(c, result)
}

// ListFeatured 获取推荐帖子
// @Summary 获取推荐帖子列表
// @Tags Post
// @Produce json
// @Success 200 {object} response.Response{data=PostListResponse}
// @Router /posts/posts/featured [get]
func (h *PostHandler) ListFeatured(c *gin.Context) {
	page, pageSize := parsePagination(c)
	filter := PostListFilter{FeaturedOnly: true, Page: page, PageSize: pageSize}

	result, err := h.postService.ListPosts(filter, 0, false)
	if err != nil {
		h.handleError(c, err, "获取推荐帖子失败")
		return
	}
	dto.SuccessResponse(c, result)
}

// ListPinned 获取置顶帖子
// @Summary 获取置顶帖子列表
// @Tags Post
// @Produce json
// @Success 200 {object} response.Response{data=PostListResponse}
// @Router /posts/posts/pinned [get]
func (h *PostHandler) ListPinned(c *gin.Context) {
	page, pageSize := parsePagination(c)
	filter := PostListFilter{PinnedOnly: true, Page: page, PageSize: pageSize}

	result, err := h.postService.ListPosts(filter, 0, false)
	if err != nil {
		h.handleError(c, err, "获取置顶帖子失败")
		return
	}
	dto.SuccessResponse(c, result)
}

// CreatePost 创建帖子
// @Summary 创建帖子
// @Tags Post
// @Accept json
// @Produce json
// @Param request body CreatePostRequest true "创建帖子请求"
// @Success 200 {object} response.Response{data=PostResponse}
// @Router /posts/posts [post]
func (h *PostHandler) CreatePost(c *gin.Context) {
	var req CreatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.ValidationErrorResponse(c, err)
		return
	}

	userID := c.GetUint("user_id")
	result, err := h.postService.CreatePost(req, userID)
	if err != nil {
		h.handleError(c, err, "创建帖子失败")
		return
	}
	dto.CreatedResponse(c, result)
}

// GetPost 获取帖子详情
// @Summary 获取帖子详情
// @Tags Post
// @Produce json
// @Param id path int true "帖子ID"
// @Success 200 {object} response.Response{data=PostResponse}
// @Router /posts/posts/{id} [get]
func (h *PostHandler) GetPost(c *gin.Context) {
	postID, ok := h.parseID(c, "id", "无效的帖子ID")
	if !ok {
		return
	}

	viewerID := c.GetUint("user_id")
	isStaff := c.GetBool("is_staff")

	result, err := h.postService.GetPost(postID, viewerID, isStaff)
	if err != nil {
		h.handleError(c, err, "获取帖子失败")
		return
	}

	result.IsLiked = h.engagementService.IsLiked(result.ID, viewerID)
	dto.SuccessResponse(c, result)
}

// UpdatePost 更新帖子
// @Summary 更新帖子（作者或管理员；置顶/推荐仅管理员）
// @Tags Post
// @Accept json
// @Produce json
// @Param id path int true "帖子ID"
// @Param request body UpdatePostRequest true "更新帖子请求"
// @Success 200 {object} response.Response{data=PostResponse}
// @Router /posts/posts/{id} [put]
func (h *PostHandler) UpdatePost(c *gin.Context) {
	postID, ok := h.parseID(c, "id", "无效的帖子ID")
	if !ok {
		return
	}

	var req UpdatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.ValidationErrorResponse(c, err)
		return
	}

	userID := c.GetUint("user_id")
	isStaff := c.GetBool("is_staff")

	result, err := h.postService.UpdatePost(postID, userID, isStaff, req)
	if err != nil {
		h.handleError(c, err, "更新帖子失败")
		return
	}
	dto.SuccessResponse(c, result)
}

// DeletePost 删除帖子
// @Summary 删除帖子（作者或管理员）
// @Tags Post
// @Produce json
// @Param id path int true "帖子ID"
// @Success 200 {object} response.Response
// @Router /posts/posts/{id} [delete]
func (h *PostHandler) DeletePost(c *gin.Context) {
	postID, ok := h.parseID(c, "id", "无效的帖子ID")
	if !ok {
		return
	}

	userID := c.GetUint("user_id")
	isStaff := c.GetBool("is_staff")

	if err := h.postService.DeletePost(postID, userID, isStaff); err != nil {
		h.handleError(c, err, "删除帖子失败")
		return
	}
	dto.SuccessResponse(c, gin.H{"message": "帖子已删除"})
}

// ToggleLike 点赞/取消点赞帖子
// @Summary 点赞或取消点赞帖子
// @Tags Post
// @Produce json
// @Param id path int true "帖子ID"
// @Success 200 {object} response.Response{data=LikeResponse}
// @Router /posts/posts/{id}/like [post]
func (h *PostHandler) ToggleLike(c *gin.Context) {
	postID, ok := h.parseID(c, "id", "无效的帖子ID")
	if !ok {
		return
	}

	userID := c.GetUint("user_id")
	result, err := h.engagementService.ToggleLike(postID, userID)
	if err != nil {
		h.handleError(c, err, "点赞操作失败")
		return
	}
	dto.SuccessResponse(c, result)
}

// RecordView 上报浏览
// @Summary 上报帖子浏览（按浏览者去重）
// @Tags Post
// @Produce json
// @Param id path int true "帖子ID"
// @Success 200 {object} response.Response{data=ViewResponse}
// @Router /posts/posts/{id}/view [post]
func (h *PostHandler) RecordView(c *gin.Context) {
	postID, ok := h.parseID(c, "id", "无效的帖子ID")
	if !ok {
		return
	}

	result, err := h.postService.RecordView(postID, h.viewerKey(c))
	if err != nil {
		h.handleError(c, err, "浏览上报失败")
		return
	}
	dto.SuccessResponse(c, result)
}

// GetStats 帖子统计
// @Summary 获取全站帖子统计
// @Tags Post
// @Produce json
// @Success 200 {object} response.Response{data=StatsResponse}
// @Router /posts/stats [get]
func (h *PostHandler) GetStats(c *gin.Context) {
	result, err := h.postService.Stats()
	if err != nil {
		h.handleError(c, err, "获取统计失败")
		return
	}
	dto.SuccessResponse(c, result)
}

// ========== 分类 ==========

// ListCategories 获取帖子分类列表
// @Summary 获取帖子分类列表
// @Tags PostCategory
// @Produce json
// @Success 200 {object} response.Response
// @Router /posts/categories [get]
func (h *PostHandler) ListCategories(c *gin.Context) {
	result, err := h.postService.ListCategories()
	if err != nil {
		h.handleError(c, err, "获取分类列表失败")
		return
	}
	dto.SuccessResponse(c, result)
}

// CreateCategory 创建帖子分类
// @Summary 创建帖子分类（管理员）
// @Tags PostCategory
// @Accept json
// @Produce json
// @Param request body CreateCategoryRequest true "创建分类请求"
// @Success 200 {object} response.Response
// @Router /posts/categories [post]
func (h *PostHandler) CreateCategory(c *gin.Context) {
	var req CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.ValidationErrorResponse(c, err)
		return
	}

	result, bizErr := h.postService.CreateCategory(req)
	if bizErr != nil {
		dto.ErrorResponse(c, bizErr)
		return
	}
	dto.CreatedResponse(c, result)
}

// UpdateCategory 更新帖子分类
// @Summary 更新帖子分类（管理员）
// @Tags PostCategory
// @Accept json
// @Produce json
// @Param id path int true "分类ID"
// @Param request body UpdateCategoryRequest true "更新分类请求"
// @Success 200 {object} response.Response
// @Router /posts/categories/{id} [put]
func (h *PostHandler) UpdateCategory(c *gin.Context) {
	categoryID, ok := h.parseID(c, "id", "无效的分类ID")
	if !ok {
		return
	}

	var req UpdateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.ValidationErrorResponse(c, err)
		return
	}

	result, bizErr := h.postService.UpdateCategory(categoryID, req)
	if bizErr != nil {
		dto.ErrorResponse(c, bizErr)
		return
	}
	dto.SuccessResponse(c, result)
}

// DeleteCategory 删除帖子分类
// @Summary 删除帖子分类（管理员）
// @Tags PostCategory
// @Produce json
// @Param id path int true "分类ID"
// @Success 200 {object} response.Response
// @Router /posts/categories/{id} [delete]
func (h *PostHandler) DeleteCategory(c *gin.Context) {
	categoryID, ok := h.parseID(c, "id", "无效的分类ID")
	if !ok {
		return
	}

	if bizErr := h.postService.DeleteCategory(categoryID); bizErr != nil {
		dto.ErrorResponse(c, bizErr)
		return
	}
	dto.SuccessResponse(c, gin.H{"message": "分类已删除"})
}

// ========== 评论 ==========

// ListComments 获取帖子评论
// @Summary 获取帖子评论（默认顶级评论带一层回复；parent 参数查询回复）
// @Tags PostComment
// @Produce json
// @Param id path int true "帖子ID"
// @Param parent query int false "父评论ID"
// @Success 200 {object} response.Response{data=[]CommentResponse}
// @Router /posts/posts/{id}/comments [get]
func (h *PostHandler) ListComments(c *gin.Context) {
	postID, ok := h.parseID(c, "id", "无效的帖子ID")
	if !ok {
		return
	}

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

	result, err := h.engagementService.ListComments(postID, viewerID)
	if err != nil {
		h.handleError(c, err, "获取评论失败")
		return
	}
	dto.SuccessResponse(c, result)
}

// CreateComment 创建评论
// @Summary 创建帖子评论或回复（已关闭帖子不可评论）
// @Tags PostComment
// @Accept json
// @Produce json
// @Param id path int true "帖子ID"
// @Param request body CreateCommentRequest true "创建评论请求"
// @Success 200 {object} response.Response{data=CommentResponse}
// @Router /posts/posts/{id}/comments [post]
func (h *PostHandler) CreateComment(c *gin.Context) {
	postID, ok := h.parseID(c, "id", "无效的帖子ID")
	if !ok {
		return
	}

	var req CreateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.ValidationErrorResponse(c, err)
		return
	}

	userID := c.GetUint("user_id")
	result, err := h.engagementService.CreateComment(postID, userID, req)
	if err != nil {
		h.handleError(c, err, "创建评论失败")
		return
	}
	dto.CreatedResponse(c, result)
}

// UpdateComment 更新评论
// @Summary 更新评论内容（仅作者）
// @Tags PostComment
// @Accept json
// @Produce json
// @Param id path int true "评论ID"
// @Param request body UpdateCommentRequest true "更新评论请求"
// @Success 200 {object} response.Response{data=CommentResponse}
// @Router /posts/comments/{id} [put]
func (h *PostHandler) UpdateComment(c *gin.Context) {
	commentID, ok := h.parseID(c, "id", "无效的评论ID")
	if !ok {
		return
	}

	var req UpdateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.ValidationErrorResponse(c, err)
		return
	}

	userID := c.GetUint("user_id")
	result, err := h.engagementService.UpdateComment(commentID, userID, req)
	if err != nil {
		h.handleError(c, err, "更新评论失败")
		return
	}
	dto.SuccessResponse(c, result)
}

// DeleteComment 删除评论
// @Summary 删除评论（作者或管理员）
// @Tags PostComment
// @Produce json
// @Param id path int true "评论ID"
// @Success 200 {object} response.Response
// @Router /posts/comments/{id} [delete]
func (h *PostHandler) DeleteComment(c *gin.Context) {
	commentID, ok := h.parseID(c, "id", "无效的评论ID")
	if !ok {
		return
	}

	userID := c.GetUint("user_id")
	isStaff := c.GetBool("is_staff")

	if err := h.engagementService.DeleteComment(commentID, userID, isStaff); err != nil {
		h.handleError(c, err, "删除评论失败")
		return
	}
	dto.SuccessResponse(c, gin.H{"message": "评论已删除"})
}

// ToggleCommentLike 点赞/取消点赞评论
// @Summary 点赞或取消点赞评论
// @Tags PostComment
// @Produce json
// @Param id path int true "评论ID"
// @Success 200 {object} response.Response{data=LikeResponse}
// @Router /posts/comments/{id}/like [post]
func (h *PostHandler) ToggleCommentLike(c *gin.Context) {
	commentID, ok := h.parseID(c, "id", "无效的评论ID")
	if !ok {
		return
	}

	userID := c.GetUint("user_id")
	result, err := h.engagementService.ToggleCommentLike(commentID, userID)
	if err != nil {
		h.handleError(c, err, "点赞操作失败")
		return
	}
	dto.SuccessResponse(c, result)
}

// ========== 分享 ==========

// SharePost 分享帖子
// @Summary 分享帖子
// @Tags PostShare
// @Accept json
// @Produce json
// @Param id path int true "帖子ID"
// @Param request body ShareRequest true "分享请求"
// @Success 200 {object} response.Response
// @Router /posts/posts/{id}/share [post]
func (h *PostHandler) SharePost(c *gin.Context) {
	postID, ok := h.parseID(c, "id", "无效的帖子ID")
	if !ok {
		return
	}

	var req ShareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.ValidationErrorResponse(c, err)
		return
	}

	userID := c.GetUint("user_id")
	result, err := h.engagementService.SharePost(postID, userID, req)
	if err != nil {
		h.handleError(c, err, "分享失败")
		return
	}
	dto.CreatedResponse(c, result)
}

// ListShares 获取帖子分享记录
// @Summary 获取帖子的分享记录
// @Tags PostShare
// @Produce json
// @Param id path int true "帖子ID"
// @Success 200 {object} response.Response
// @Router /posts/posts/{id}/shares [get]
func (h *PostHandler) ListShares(c *gin.Context) {
	postID, ok := h.parseID(c, "id", "无效的帖子ID")
	if !ok {
		return
	}

	result, err := h.engagementService.ListShares(postID)
	if err != nil {
		h.handleError(c, err, "获取分享记录失败")
		return
	}
	dto.SuccessResponse(c, result)
}

// ========== 举报 ==========

// CreateReport 创建举报
// @Summary 举报帖子或评论（二者必须恰好传其一）
// @Tags PostReport
// @Accept json
// @Produce json
// @Param request body CreateReportRequest true "举报请求"
// @Success 200 {object} response.Response
// @Router /posts/reports [post]
func (h *PostHandler) CreateReport(c *gin.Context) {
	var req CreateReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.ValidationErrorResponse(c, err)
		return
	}

	userID := c.GetUint("user_id")
	result, err := h.engagementService.CreateReport(userID, req)
	if err != nil {
		h.handleError(c, err, "举报失败")
		return
	}
	dto.CreatedResponse(c, result)
}

// ListReports 获取举报列表
// @Summary 获取举报列表（普通用户仅自己的，管理员全部）
// @Tags PostReport
// @Produce json
// @Param status query string false "处理状态"
// @Success 200 {object} response.Response
// @Router /posts/reports [get]
func (h *PostHandler) ListReports(c *gin.Context) {
	page, pageSize := parsePagination(c)
	userID := c.GetUint("user_id")
	isStaff := c.GetBool("is_staff")

	reports, total, err := h.engagementService.ListReports(userID, isStaff, c.Query("status"), page, pageSize)
	if err != nil {
		h.handleError(c, err, "获取举报列表失败")
		return
	}
	dto.SuccessResponse(c, gin.H{
		"reports":   reports,
		"total":     total,
		"page":      page,
		"page_size": pageSize,
	})
}

// ReviewReport 处理举报
// @Summary 处理举报（管理员）
// @Tags PostReport
// @Accept json
// @Produce json
// @Param id path int true "举报ID"
// @Param request body ReviewReportRequest true "处理请求"
// @Success 200 {object} response.Response
// @Router /posts/reports/{id} [put]
func (h *PostHandler) ReviewReport(c *gin.Context) {
	reportID, ok := h.parseID(c, "id", "无效的举报ID")
	if !ok {
		return
	}

	var req ReviewReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.ValidationErrorResponse(c, err)
		return
	}

	result, err := h.engagementService.ReviewReport(reportID, req)
	if err != nil {
		h.handleError(c, err, "处理举报失败")
		return
	}
	dto.SuccessResponse(c, result)
}

// ========== 辅助 ==========

// buildListFilter 解析列表过滤参数
func (h *PostHandler) buildListFilter(c *gin.Context) (*PostListFilter, *response.BusinessError) {
	page, pageSize := parsePagination(c)
	filter := &PostListFilter{
		Status:   c.Query("status"),
		PostType: c.Query("type"),
		Keyword:  c.Query("search"),
		Sort:     c.Query("sort"),
		Page:     page,
		PageSize: pageSize,
	}

	if slug := c.Query("category"); slug != "" {
		cat, err := h.postService.repo.FindCategoryBySlug(slug)
		if err != nil {
			return nil, response.NewBusinessError(
				response.WithErrorCode(response.NotFound),
				response.WithErrorMessage("分类不存在"),
			)
		}
		filter.CategoryID = cat.ID
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
	return filter, nil
}

// parseID 解析路径中的数字ID
func (h *PostHandler) parseID(c *gin.Context, name, message string) (uint, bool) {
	id, err := strconv.Atoi(c.Param(name))
	if err != nil || id < 1 {
		dto.ErrorResponse(c, response.NewBusinessError(
			response.WithErrorCode(response.ParseError),
			response.WithErrorMessage(message),
		))
		return 0, false
	}
	return uint(id), true
}

// viewerKey 浏览量去重键：登录用户用ID，匿名用户用客户端IP
func (h *PostHandler) viewerKey(c *gin.Context) string {
	if userID := c.GetUint("user_id"); userID != 0 {
		return fmt.Sprintf("u%d", userID)
	}
	return c.ClientIP()
}

// handleError 服务层错误到业务错误的统一映射
func (h *PostHandler) handleError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, ErrPostNotFound), errors.Is(err, ErrCommentNotFound),
		errors.Is(err, ErrCategoryNotFound), errors.Is(err, ErrReportNotFound):
		dto.ErrorResponse(c, response.NewBusinessError(
			response.WithErrorCode(response.NotFound),
			response.WithErrorMessage(err.Error()),
		))
	case errors.Is(err, ErrForbidden):
		dto.ErrorResponse(c, response.NewBusinessError(
			response.WithErrorCode(response.Forbidden),
			response.WithErrorMessage(err.Error()),
		))
	case errors.Is(err, ErrInvalidParentID), errors.Is(err, ErrInvalidReport),
		errors.Is(err, ErrPostClosed):
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
