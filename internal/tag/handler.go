package tag

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/tsuki530/2023-tieba-bk/internal/dto"
)

type TagHandler struct {
	service *TagService
}

func NewTagHandler(db *gorm.DB) *TagHandler {
	return &TagHandler{
		service: NewTagService(NewTagRepository(db)),
	}
}

// ListTags 获取标签列表
// @Summary 获取百科标签列表
// @Tags Tag
// @Produce json
// @Param limit query int false "数量上限" default(100)
// @Param search query string false "名称关键词"
// @Success 200 {object} response.Response
// @Router /wiki/tags [get]
func (h *TagHandler) ListTags(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))

	result, bizErr := h.service.List(c.Query("search"), limit)
	if bizErr != nil {
		dto.ErrorResponse(c, bizErr)
		return
	}
	dto.SuccessResponse(c, result)
}

// GetTag 获取标签详情
// @Summary 按 slug 获取标签详情
// @Tags Tag
// @Produce json
// @Param slug path string true "标签slug"
// @Success 200 {object} response.Response
// @Router /wiki/tags/{slug} [get]
func (h *TagHandler) GetTag(c *gin.Context) {
	slug := c.Param("slug")

	result, bizErr := h.service.Get(slug)
	if bizErr != nil {
		dto.ErrorResponse(c, bizErr)
		return
	}
	dto.SuccessResponse(c, result)
}
