package account

import (
	"errors"
	"regexp"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	userModel "github.com/tsuki530/2023-tieba-bk/internal/model/user"
	"github.com/tsuki530/2023-tieba-bk/internal/pkg"
	"github.com/tsuki530/2023-tieba-bk/pkg/response"
)

var (
	usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)
)

// AccountService 用户账号服务
type AccountService struct {
	repo AccountRepository
}

// NewAccountService 创建服务实例
func NewAccountService(repo AccountRepository) *AccountService {
	return &AccountService{repo: repo}
}

// Register 账号密码注册
func (s *AccountService) Register(req RegisterRequest) (*LoginResponse, *response.BusinessError) {
	// 1. 校验用户名格式
	if !usernameRegex.MatchString(req.Username) {
		return nil, response.NewBusinessError(
			response.WithErrorCode(response.ParseError),
			response.WithErrorMessage("用户名只能包含字母、数字和下划线"),
		)
	}

	// 2. 检查用户名和邮箱是否已存在
	if _, err := s.repo.FindByUsername(req.Username); err == nil {
		return nil, response.NewBusinessError(
			response.WithErrorCode(response.Conflict),
			response.WithErrorMessage("用户名已存在"),
		)
	}
	if _, err := s.repo.FindByEmail(req.Email); err == nil {
		return nil, response.NewBusinessError(
			response.WithErrorCode(response.Conflict),
			response.WithErrorMessage("邮箱已被注册"),
		)
	}

	// 3. 密码加密
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, response.NewBusinessError(
			response.WithErrorCode(response.Fail),
			response.WithErrorMessage("密码加密失败"),
		)
	}

	// 4. 创建用户
	newUser := &userModel.User{
		Username:   req.Username,
		Email:      req.Email,
		Password:   string(hashedPassword),
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		IsActive:   true,
		LastActive: time.Now(),
	}
	if err := s.repo.Create(newUser); err != nil {
		return nil, response.NewBusinessError(
			response.WithErrorCode(response.Fail),
			response.WithErrorMessage("用户创建失败"),
		)
	}

	// 5. 生成访问令牌
	token, err := pkg.GenerateAccessToken(newUser.ID, newUser.Username, newUser.Email, newUser.IsStaff)
	if err != nil {
		return nil, response.NewBusinessError(
			response.WithErrorCode(response.Fail),
			response.WithErrorMessage("生成访问令牌失败"),
		)
	}

	return &LoginResponse{
		AccessToken: token,
		User:        toUserResponse(newUser, true, false),
	}, nil
}

// Login 账号密码登录，account 可以是用户名或邮箱
func (s *AccountService) Login(req LoginRequest) (*LoginResponse, *response.BusinessError) {
	// 1. 查找用户（先按邮箱，再按用户名）
	u, err := s.repo.FindByEmail(req.Account)
	if err != nil {
		u, err = s.repo.FindByUsername(req.Account)
	}
	if err != nil {
		return nil, response.NewBusinessError(
			response.WithErrorCode(response.Unauthorized),
			response.WithErrorMessage("账号或密码错误"),
		)
	}

	// 2. 校验密码
	if err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(req.Password)); err != nil {
		return nil, response.NewBusinessError(
			response.WithErrorCode(response.Unauthorized),
			response.WithErrorMessage("账号或密码错误"),
		)
	}

	// 3. 检查账号状态
	if !u.IsActive {
		return nil, response.NewBusinessError(
			response.WithErrorCode(response.Forbidden),
			response.WithErrorMessage("账号已被禁用"),
		)
	}

	// 4. 更新最后活跃时间
	_ = s.repo.UpdateFields(u.ID, map[string]interface{}{"last_active": time.Now()})

	// 5. 生成访问令牌
	token, err := pkg.GenerateAccessToken(u.ID, u.Username, u.Email, u.IsStaff)
	if err != nil {
		return nil, response.NewBusinessError(
			response.WithErrorCode(response.Fail),
			response.WithErrorMessage("生成访问令牌失败"),
		)
	}

	return &LoginResponse{
		AccessToken: token,
		User:        toUserResponse(u, true, false),
	}, nil
}

// ChangePassword 修改密码，需验证旧密码
func (s *AccountService) ChangePassword(userID uint, req ChangePasswordRequest) *response.BusinessError {
	u, err := s.repo.FindByID(userID)
	if err != nil {
		return response.NewBusinessError(
			response.WithErrorCode(response.NotFound),
			response.WithErrorMessage("用户不存在"),
		)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(req.OldPassword)); err != nil {
		return response.NewBusinessError(
			response.WithErrorCode(response.InvalidParameter),
			response.WithErrorMessage("原密码错误"),
		)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return response.NewBusinessError(
			response.WithErrorCode(response.Fail),
			response.WithErrorMessage("密码加密失败"),
		)
	}

	if err := s.repo.UpdateFields(userID, map[string]interface{}{"password": string(hashedPassword)}); err != nil {
		return response.NewBusinessError(
			response.WithErrorCode(response.Fail),
			response.WithErrorMessage("密码修改失败"),
		)
	}
	return nil
}

// GetProfile 获取个人资料（含邮箱）
func (s *AccountService) GetProfile(userID uint) (*UserResponse, *response.BusinessError) {
	u, err := s.repo.FindByID(userID)
	if err != nil {
		return nil, response.NewBusinessError(
			response.WithErrorCode(response.NotFound),
			response.WithErrorMessage("用户不存在"),
		)
	}
	resp := toUserResponse(u, true, false)
	return &resp, nil
}

// UpdateProfile 更新个人资料，只更新请求中出现的字段
func (s *AccountService) UpdateProfile(userID uint, req UpdateProfileRequest) (*UserResponse, *response.BusinessError) {
	fields := map[string]interface{}{}
	if req.FirstName != nil {
		fields["first_name"] = *req.FirstName
	}
	if req.LastName != nil {
		fields["last_name"] = *req.LastName
	}
	if req.Bio != nil {
		fields["bio"] = *req.Bio
	}
	if req.Avatar != nil {
		fields["avatar"] = *req.Avatar
	}
	if req.Location != nil {
		fields["location"] = *req.Location
	}
	if req.Website != nil {
		fields["website"] = *req.Website
	}

	if len(fields) > 0 {
		if err := s.repo.UpdateFields(userID, fields); err != nil {
			return nil, response.NewBusinessError(
				response.WithErrorCode(response.Fail),
				response.WithErrorMessage("更新资料失败"),
			)
		}
	}

	return s.GetProfile(userID)
}

// GetUser 获取指定用户的公开资料，viewerID 为 0 表示未登录
func (s *AccountService) GetUser(targetID, viewerID uint) (*UserResponse, *response.BusinessError) {
	u, err := s.repo.FindByID(targetID)
	if err != nil {
		return nil, response.NewBusinessError(
			response.WithErrorCode(response.NotFound),
			response.WithErrorMessage("用户不存在"),
		)
	}

	isFollowing := false
	if viewerID != 0 && viewerID != targetID {
		if _, err := s.repo.FindFollow(viewerID, targetID); err == nil {
			isFollowing = true
		}
	}

	resp := toUserResponse(u, viewerID == targetID, isFollowing)
	return &resp, nil
}

// ListUsers 分页获取用户列表
func (s *AccountService) ListUsers(page, pageSize int) (*UserListResponse, *response.BusinessError) {
	users, total, err := s.repo.List(page, pageSize)
	if err != nil {
		return nil, response.NewBusinessError(
			response.WithErrorCode(response.Fail),
			response.WithErrorMessage("获取用户列表失败"),
		)
	}
	return &UserListResponse{
		Users:    toUserResponses(users),
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	}, nil
}

// Follow 关注用户
// 关注成功后在同一事务内按 follows 表重新统计双方计数
func (s *AccountService) Follow(followerID, followedID uint) (*FollowResponse, *response.BusinessError) {
	// 1. 不能关注自己
	if followerID == followedID {
		return nil, response.NewBusinessError(
			response.WithErrorCode(response.InvalidParameter),
			response.WithErrorMessage("不能关注自己"),
		)
	}

	// 2. 目标用户必须存在
	if _, err := s.repo.FindByID(followedID); err != nil {
		return nil, response.NewBusinessError(
			response.WithErrorCode(response.NotFound),
			response.WithErrorMessage("用户不存在"),
		)
	}

	// 3. 重复关注直接报冲突
	if _, err := s.repo.FindFollow(followerID, followedID); err == nil {
		return nil, response.NewBusinessError(
			response.WithErrorCode(response.Conflict),
			response.WithErrorMessage("已经关注该用户"),
		)
	}

	var followersCount int64
	txErr := s.repo.Transaction(func(txRepo AccountRepository) error {
		if err := txRepo.CreateFollow(&userModel.Follow{
			FollowerID: followerID,
			FollowedID: followedID,
		}); err != nil {
			return err
		}
		return s.recountFollowCounts(txRepo, followerID, followedID, &followersCount)
	})
	if txErr != nil {
		// 唯一索引兜底：并发下的重复关注
		if isDuplicateKeyError(txErr) {
			return nil, response.NewBusinessError(
				response.WithErrorCode(response.Conflict),
				response.WithErrorMessage("已经关注该用户"),
			)
		}
		return nil, response.NewBusinessError(
			response.WithErrorCode(response.Fail),
			response.WithErrorMessage("关注失败"),
		)
	}

	return &FollowResponse{Following: true, FollowersCount: uint(followersCount)}, nil
}

// Unfollow 取消关注
func (s *AccountService) Unfollow(followerID, followedID uint) (*FollowResponse, *response.BusinessError) {
	if _, err := s.repo.FindFollow(followerID, followedID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewBusinessError(
				response.WithErrorCode(response.InvalidParameter),
				response.WithErrorMessage("未关注该用户"),
			)
		}
		return nil, response.NewBusinessError(
			response.WithErrorCode(response.Fail),
			response.WithErrorMessage("取消关注失败"),
		)
	}

	var followersCount int64
	txErr := s.repo.Transaction(func(txRepo AccountRepository) error {
		if err := txRepo.DeleteFollow(followerID, followedID); err != nil {
			return err
		}
		return s.recountFollowCounts(txRepo, followerID, followedID, &followersCount)
	})
	if txErr != nil {
		return nil, response.NewBusinessError(
			response.WithErrorCode(response.Fail),
			response.WithErrorMessage("取消关注失败"),
		)
	}

	return &FollowResponse{Following: false, FollowersCount: uint(followersCount)}, nil
}

// ListFollowers 获取粉丝列表
func (s *AccountService) ListFollowers(userID uint, page, pageSize int) (*UserListResponse, *response.BusinessError) {
	if _, err := s.repo.FindByID(userID); err != nil {
		return nil, response.NewBusinessError(
			response.WithErrorCode(response.NotFound),
			response.WithErrorMessage("用户不存在"),
		)
	}

	users, total, err := s.repo.ListFollowers(userID, page, pageSize)
	if err != nil {
		return nil, response.NewBusinessError(
			response.WithErrorCode(response.Fail),
			response.WithErrorMessage("获取粉丝列表失败"),
		)
	}
	return &UserListResponse{
		Users:    toUserResponses(users),
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	}, nil
}

// ListFollowing 获取关注列表
func (s *AccountService) ListFollowing(userID uint, page, pageSize int) (*UserListResponse, *response.BusinessError) {
	if _, err := s.repo.FindByID(userID); err != nil {
		return nil, response.NewBusinessError(
			response.WithErrorCode(response.NotFound),
			response.WithErrorMessage("用户不存在"),
		)
	}

	users, total, err := s.repo.ListFollowing(userID, page, pageSize)
	if err != nil {
		return nil, response.NewBusinessError(
			response.WithErrorCode(response.Fail),
			response.WithErrorMessage("获取关注列表失败"),
		)
	}
	return &UserListResponse{
		Users:    toUserResponses(users),
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	}, nil
}

// recountFollowCounts 按 follows 表重新统计双方计数并落库
func (s *AccountService) recountFollowCounts(txRepo AccountRepository, followerID, followedID uint, followersOut *int64) error {
	followers, err := txRepo.CountFollowers(followedID)
	if err != nil {
		return err
	}
	following, err := txRepo.CountFollowing(followerID)
	if err != nil {
		return err
	}

	if err := txRepo.UpdateFields(followedID, map[string]interface{}{"followers_count": followers}); err != nil {
		return err
	}
	if err := txRepo.UpdateFields(followerID, map[string]interface{}{"following_count": following}); err != nil {
		return err
	}

	if followersOut != nil {
		*followersOut = followers
	}
	return nil
}

func toUserResponses(users []userModel.User) []UserResponse {
	result := make([]UserResponse, 0, len(users))
	for i := range users {
		result = append(result, toUserResponse(&users[i], false, false))
	}
	return result
}

// isDuplicateKeyError 检测唯一索引冲突错误
func isDuplicateKeyError(err error) bool {
	if err == nil {
		return false
	}
	errMsg := err.Error()
	for _, s := range []string{"duplicate key value", "Duplicate entry", "UNIQUE constraint failed"} {
		if strings.Contains(errMsg, s) {
			return true
		}
	}
	return false
}
