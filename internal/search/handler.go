package search

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/tsuki530/2023-tieba-bk/internal/dto"
	"github.com/tsuki530/2023-tieba-bk/pkg/response"
)

type SearchHandler struct {
	service *SearchService
}

func NewSearchHandler(db *gorm.DB) *SearchHandler {
	return &SearchHandler{service: NewSearchService(NewSearchRepository(db))}
}

// Search 联合搜索
// @Summary 跨文章/帖子/用户/分类/标签的联合搜索
// @Tags Search
// @Produce json
// @Param q query string true "关键词（1-200字符）"
// @Param type query string false "类型: all, articles, posts, users, categories, tags" default(all)
// @Param category query string false "分类slug"
// @Param tag query string false "标签slug"
// @Param author query string false "作者用户名"
// @Param sort_by query string false "排序: relevance, date, views, likes" default(relevance)
// @Param page query int false "页码" default(1)
// @Param page_size query int false "每页数量" default(20)
// @Success 200 {object} response.Response{data=SearchResponse}
// @Router /search/search [get]
func (h *SearchHandler) Search(c *gin.Context) {
	var query SearchQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		dto.ValidationErrorResponse(c, err)
		return
	}

	result, err := h.service.Search(c.Request.Context(), query)
	if err != nil {
		dto.ErrorResponse(c, response.NewBusinessError(
			response.WithErrorCode(response.Fail),
			response.WithErrorMessage("搜索失败"),
		))
		return
	}
	dto.SuccessResponse(c, result)
}

// Autocomplete 自动补全
// @Summary 搜索自动补全（每类型最多5条标题匹配）
// @Tags Search
// @Produce json
// @Param q query string true "关键词（至少2字符）"
// @Success 200 {object} response.Response{data=[]AutocompleteItem}
// @Router /search/search/autocomplete [get]
func (h *SearchHandler) Autocomplete(c *gin.Context) {
	result, err := h.service.Autocomplete(c.Query("q"))
	if err != nil {
		dto.ErrorResponse(c, response.NewBusinessError(
			response.WithErrorCode(response.Fail),
			response.WithErrorMessage("自动补全失败"),
		))
		return
	}
	dto.SuccessResponse(c, result)
}

// Stats 内容统计
// @Summary 全站可检索内容统计
// @Tags Search
// @Produce json
// @Success 200 {object} response.Response{data=StatsResponse}
// @Router /search/search/stats [get]
func (h *SearchHandler) Stats(c *gin.Context) {
	result, err := h.service.Stats()
	if err != nil {
		dto.ErrorResponse(c, response.NewBusinessError(
			response.WithErrorCode(response.Fail),
			response.WithErrorMessage("获取统计失败"),
		))
		return
	}
	dto.SuccessResponse(c, result)
}

// Filters 可用过滤条件
// @Summary 获取搜索可用的过滤条件与排序选项
// @Tags Search
// @Produce json
// @Success 200 {object} response.Response{data=FiltersResponse}
// @Router /search/filters [get]
func (h *SearchHandler) Filters(c *gin.Context) {
	result, err := h.service.Filters()
	if err != nil {
		dto.ErrorResponse(c, response.NewBusinessError(
			response.WithErrorCode(response.Fail),
			response.WithErrorMessage("获取过滤条件失败"),
		))
		return
	}
	dto.SuccessResponse(c, result)
}
