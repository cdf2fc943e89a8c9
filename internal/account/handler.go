package account

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/tsuki530/2023-tieba-bk/config"
	"github.com/tsuki530/2023-tieba-bk/internal/dto"
	"github.com/tsuki530/2023-tieba-bk/pkg/response"
)

type AccountHandler struct {
	service *AccountService
}

func NewAccountHandler(db *gorm.DB) *AccountHandler {
	return &AccountHandler{
		service: NewAccountService(NewAccountRepository(db)),
	}
}

// Register 用户注册
// @Summary 用户注册
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body RegisterRequest true "注册请求"
// @Success 200 {object} response.Response{data=LoginResponse}
// @Router /auth/register [post]
func (h *AccountHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.ValidationErrorResponse(c, err)
		return
	}

	result, bizErr := h.service.Register(req)
	if bizErr != nil {
		dto.ErrorResponse(c, bizErr)
		return
	}

	h.setTokenCookie(c, result.AccessToken)
	dto.CreatedResponse(c, result)
}

// Login 用户登录
// @Summary 用户登录（用户名或邮箱）
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "登录请求"
// @Success 200 {object} response.Response{data=LoginResponse}
// @Router /auth/login [post]
func (h *AccountHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.ValidationErrorResponse(c, err)
		return
	}

	result, bizErr := h.service.Login(req)
	if bizErr != nil {
		dto.ErrorResponse(c, bizErr)
		return
	}

	h.setTokenCookie(c, result.AccessToken)
	dto.SuccessResponse(c, result)
}

// Logout 退出登录，清除 cookie
// @Summary 退出登录
// @Tags Auth
// @Produce json
// @Success 200 {object} response.Response
// @Router /auth/logout [post]
func (h *AccountHandler) Logout(c *gin.Context) {
	c.SetCookie("access_token", "", -1, "/", "", false, true)
	dto.SuccessResponse(c, gin.H{"message": "已退出登录"})
}

// ChangePassword 修改密码
// @Summary 修改密码
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body ChangePasswordRequest true "修改密码请求"
// @Success 200 {object} response.Response
// @Router /auth/change-password [post]
func (h *AccountHandler) ChangePassword(c *gin.Context) {
	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.ValidationErrorResponse(c, err)
		return
	}

	userID := c.GetUint("user_id")
	if bizErr := h.service.ChangePassword(userID, req); bizErr != nil {
		dto.ErrorResponse(c, bizErr)
		return
	}

	dto.SuccessResponse(c, gin.H{"message": "密码修改成功"})
}

// GetProfile 获取当前用户资料
// @Summary 获取当前用户资料
// @Tags Auth
// @Produce json
// @Success 200 {object} response.Response{data=UserResponse}
// @Router /auth/profile [get]
func (h *AccountHandler) GetProfile(c *gin.Context) {
	userID := c.GetUint("user_id")

	result, bizErr := h.service.GetProfile(userID)
	if bizErr != nil {
		dto.ErrorResponse(c, bizErr)
		return
	}

	dto.SuccessResponse(c, result)
}

// UpdateProfile 更新当前用户资料
// @Summary 更新当前用户资料
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body UpdateProfileRequest true "更新资料请求"
// @Success 200 {object} response.Response{data=UserResponse}
// @Router /auth/profile [put]
func (h *AccountHandler) UpdateProfile(c *gin.Context) {
	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.ValidationErrorResponse(c, err)
		return
	}

	userID := c.GetUint("user_id")
	result, bizErr := h.service.UpdateProfile(userID, req)
	if bizErr != nil {
		dto.ErrorResponse(c, bizErr)
		return
	}

	dto.SuccessResponse(c, result)
}

// GetUser 获取指定用户的公开资料
// @Summary 获取用户公开资料
// @Tags User
// @Produce json
// @Param id path int true "用户ID"
// @Success 200 {object} response.Response{data=UserResponse}
// @Router /auth/users/{id} [get]
func (h *AccountHandler) GetUser(c *gin.Context) {
	targetID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		dto.ErrorResponse(c, response.NewBusinessError(
			response.WithErrorCode(response.ParseError),
			response.WithErrorMessage("无效的用户ID"),
		))
		return
	}

	viewerID := c.GetUint("user_id")
	result, bizErr := h.service.GetUser(uint(targetID), viewerID)
	if bizErr != nil {
		dto.ErrorResponse(c, bizErr)
		return
	}

	dto.SuccessResponse(c, result)
}

// ListUsers 获取用户列表
// @Summary 获取用户列表（分页）
// @Tags User
// @Produce json
// @Param page query int false "页码" default(1)
// @Param page_size query int false "每页数量" default(20)
// @Success 200 {object} response.Response{data=UserListResponse}
// @Router /auth/users [get]
func (h *AccountHandler) ListUsers(c *gin.Context) {
	page, pageSize := parsePagination(c)

	result, bizErr := h.service.ListUsers(page, pageSize)
	if bizErr != nil {
		dto.ErrorResponse(c, bizErr)
		return
	}

	dto.SuccessResponse(c, result)
}

// Follow 关注用户
// @Summary 关注用户
// @Tags User
// @Produce json
// @Param id path int true "用户ID"
// @Success 200 {object} response.Response{data=FollowResponse}
// @Router /auth/users/{id}/follow [post]
func (h *AccountHandler) Follow(c *gin.Context) {
	targetID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		dto.ErrorResponse(c, response.NewBusinessError(
			response.WithErrorCode(response.ParseError),
			response.WithErrorMessage("无效的用户ID"),
		))
		return
	}

	userID := c.GetUint("user_id")
	result, bizErr := h.service.Follow(userID, uint(targetID))
	if bizErr != nil {
		dto.ErrorResponse(c, bizErr)
		return
	}

	dto.SuccessResponse(c, result)
}

// Unfollow 取消关注
// @Summary 取消关注
// @Tags User
// @Produce json
// @Param id path int true "用户ID"
// @Success 200 {object} response.Response{data=FollowResponse}
// @Router /auth/users/{id}/follow [delete]
func (h *AccountHandler) Unfollow(c *gin.Context) {
	targetID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		dto.ErrorResponse(c, response.NewBusinessError(
			response.WithErrorCode(response.ParseError),
			response.WithErrorMessage("无效的用户ID"),
		))
		return
	}

	userID := c.GetUint("user_id")
	result, bizErr := h.service.Unfollow(userID, uint(targetID))
	if bizErr != nil {
		dto.ErrorResponse(c, bizErr)
		return
	}

	dto.SuccessResponse(c, result)
}

// ListFollowers 获取粉丝列表
// @Summary 获取粉丝列表
// @Tags User
// @Produce json
// @Param id path int true "用户ID"
// @Success 200 {object} response.Response{data=UserListResponse}
// @Router /auth/users/{id}/followers [get]
func (h *AccountHandler) ListFollowers(c *gin.Context) {
	targetID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		dto.ErrorResponse(c, response.NewBusinessError(
			response.WithErrorCode(response.ParseError),
			response.WithErrorMessage("无效的用户ID"),
		))
		return
	}

	page, pageSize := parsePagination(c)
	result, bizErr := h.service.ListFollowers(uint(targetID), page, pageSize)
	if bizErr != nil {
		dto.ErrorResponse(c, bizErr)
		return
	}

	dto.SuccessResponse(c, result)
}

// ListFollowing 获取关注列表
// @Summary 获取关注列表
// @Tags User
// @Produce json
// @Param id path int true "用户ID"
// @Success 200 {object} response.Response{data=UserListResponse}
// @Router /auth/users/{id}/following [get]
func (h *AccountHandler) ListFollowing(c *gin.Context) {
	targetID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		dto.ErrorResponse(c, response.NewBusinessError(
			response.WithErrorCode(response.ParseError),
			response.WithErrorMessage("无效的用户ID"),
		))
		return
	}

	page, pageSize := parsePagination(c)
	result, bizErr := h.service.ListFollowing(uint(targetID), page, pageSize)
	if bizErr != nil {
		dto.ErrorResponse(c, bizErr)
		return
	}

	dto.SuccessResponse(c, result)
}

// setTokenCookie 将访问令牌写入 httpOnly cookie
func (h *AccountHandler) setTokenCookie(c *gin.Context, token string) {
	maxAge := config.Conf.JWT.ExpireTime * 3600
	c.SetCookie("access_token", token, maxAge, "/", "", false, true)
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
