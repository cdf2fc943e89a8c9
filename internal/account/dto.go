package account

import (
	"time"

	userModel "github.com/tsuki530/2023-tieba-bk/internal/model/user"
)

// RegisterRequest 注册请求
type RegisterRequest struct {
	Username  string `json:"username" binding:"required,min=3,max=150"`
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,min=8,max=128"`
	FirstName string `json:"first_name" binding:"omitempty,max=150"`
	LastName  string `json:"last_name" binding:"omitempty,max=150"`
}

// LoginRequest 登录请求，account 可以是用户名或邮箱
type LoginRequest struct {
	Account  string `json:"account" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// ChangePasswordRequest 修改密码请求
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=8,max=128"`
}

// UpdateProfileRequest 更新个人资料请求，指针字段区分"未传"和"清空"
type UpdateProfileRequest struct {
	FirstName *string `json:"first_name" binding:"omitempty,max=150"`
	LastName  *string `json:"last_name" binding:"omitempty,max=150"`
	Bio       *string `json:"bio" binding:"omitempty,max=500"`
	Avatar    *string `json:"avatar" binding:"omitempty,max=255"`
	Location  *string `json:"location" binding:"omitempty,max=100"`
	Website   *string `json:"website" binding:"omitempty,max=200"`
}

// UserResponse 用户信息响应
type UserResponse struct {
	ID             uint       `json:"id"`
	Username       string     `json:"username"`
	Email          string     `json:"email,omitempty"`
	FirstName      string     `json:"first_name"`
	LastName       string     `json:"last_name"`
	DisplayName    string     `json:"display_name"`
	Bio            string     `json:"bio"`
	Avatar         string     `json:"avatar"`
	Location       string     `json:"location"`
	Website        string     `json:"website"`
	FollowersCount uint      `json:"followers_count"`
	FollowingCount uint      `json:"following_count"`
	IsStaff        bool      `json:"is_staff"`
	IsFollowing    bool      `json:"is_following"`
	LastActive     time.Time `json:"last_active"`
	CreatedAt      time.Time `json:"created_at"`
}

// LoginResponse 登录响应
type LoginResponse struct {
	AccessToken string       `json:"access_token"`
	User        UserResponse `json:"user"`
}

// FollowResponse 关注操作响应
type FollowResponse struct {
	Following      bool `json:"following"`
	FollowersCount uint `json:"followers_count"`
}

// UserListResponse 用户列表响应
type UserListResponse struct {
	Users    []UserResponse `json:"users"`
	Total    int64          `json:"total"`
	Page     int            `json:"page"`
	PageSize int            `json:"page_size"`
}

// toUserResponse 模型转响应，withEmail 控制是否暴露邮箱（仅本人可见）
func toUserResponse(u *userModel.User, withEmail bool, isFollowing bool) UserResponse {
	resp := UserResponse{
		ID:             u.ID,
		Username:       u.Username,
		FirstName:      u.FirstName,
		LastName:       u.LastName,
		DisplayName:    u.DisplayName(),
		Bio:            u.Bio,
		Avatar:         u.Avatar,
		Location:       u.Location,
		Website:        u.Website,
		FollowersCount: u.FollowersCount,
		FollowingCount: u.FollowingCount,
		IsStaff:        u.IsStaff,
		IsFollowing:    isFollowing,
		LastActive:     u.LastActive,
		CreatedAt:      u.CreatedAt,
	}
	if withEmail {
		resp.Email = u.Email
	}
	return resp
}
