package category

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/tsuki530/2023-tieba-bk/internal/dto"
	"github.com/tsuki530/2023-tieba-bk/pkg/response"
)

type CategoryHandler struct {
	service *CategoryService
}

func NewCategoryHandler(db *gorm.DB) *CategoryHandler {
	return &CategoryHandler{
		service: NewCategoryService(NewCategoryRepository(db)),
	}
}

// ListCategories 获取分类树
// @Summary 获取百科分类树
// @Tags Category
// @Produce json
// @Success 200 {object} response.Response{data=[]CategoryResponse}
// @Router /wiki/categories [get]
func (h *CategoryHandler) ListCategories(c *gin.Context) {
	result, bizErr := h.service.ListTree()
	if bizErr != nil {
		dto.ErrorResponse(c, bizErr)
		return
	}
	dto.SuccessResponse(c, result)
}

// GetCategory 获取分类详情
// @Summary 按 slug 获取分类详情
// @Tags Category
// @Produce json
// @Param slug path string true "分类slug"
// @Success 200 {object} response.Response{data=CategoryResponse}
// @Router /wiki/categories/{slug} [get]
func (h *CategoryHandler) GetCategory(c *gin.Context) {
	slug := c.Param("slug")

	result, bizErr := h.service.Get(slug)
	if bizErr != nil {
		dto.ErrorResponse(c, bizErr)
		return
	}
	dto.SuccessResponse(c, result)
}

// CreateCategory 创建分类
// @Summary 创建百科分类（管理员）
// @Tags Category
// @Accept json
// @Produce json
// @Param request body CreateCategoryRequest true "创建分类请求"
// @Success 200 {object} response.Response{data=CategoryResponse}
// @Router /wiki/categories [post]
func (h *CategoryHandler) CreateCategory(c *gin.Context) {
	var req CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.ValidationErrorResponse(c, err)
		return
	}

	result, bizErr := h.service.Create(req)
	if bizErr != nil {
		dto.ErrorResponse(c, bizErr)
		return
	}
	dto.CreatedResponse(c, result)
}

// UpdateCategory 更新分类
// @Summary 更新百科分类（管理员）
// @Tags Category
// @Accept json
// @Produce json
// @Param id path int true "分类ID"
// @Param request body UpdateCategoryRequest true "更新分类请求"
// @Success 200 {object} response.Response{data=CategoryResponse}
// @Router /wiki/categories/{id} [put]
func (h *CategoryHandler) UpdateCategory(c *gin.Context) {
	categoryID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		dto.ErrorResponse(c, response.NewBusinessError(
			response.WithErrorCode(response.ParseError),
			response.WithErrorMessage("无效的分类ID"),
		))
		return
	}

	var req UpdateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.ValidationErrorResponse(c, err)
		return
	}

	result, bizErr := h.service.Update(uint(categoryID), req)
	if bizErr != nil {
		dto.ErrorResponse(c, bizErr)
		return
	}
	dto.SuccessResponse(c, result)
}

// DeleteCategory 删除分类
// @Summary 删除百科分类（管理员）
// @Tags Category
// @Produce json
// @Param id path int true "分类ID"
// @Success 200 {object} response.Response
// @Router /wiki/categories/{id} [delete]
func (h *CategoryHandler) DeleteCategory(c *gin.Context) {
	categoryID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		dto.ErrorResponse(c, response.NewBusinessError(
			response.WithErrorCode(response.ParseError),
			response.WithErrorMessage("无效的分类ID"),
		))
		return
	}

	if bizErr := h.service.Delete(uint(categoryID)); bizErr != nil {
		dto.ErrorResponse(c, bizErr)
		return
	}
	dto.SuccessResponse(c, gin.H{"message": "分类已删除"})
}
