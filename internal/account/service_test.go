package account

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"

	"github.com/tsuki530/2023-tieba-bk/config"
	userModel "github.com/tsuki530/2023-tieba-bk/internal/model/user"
	"github.com/tsuki530/2023-tieba-bk/internal/testutils"
	"github.com/tsuki530/2023-tieba-bk/pkg/response"
)

func setupAccountService(t *testing.T) (*AccountService, *gorm.DB) {
	config.Conf = &config.AppConfig{
		JWT: config.JWTConfig{
			Secret:     "test-secret-key",
			ExpireTime: 24,
		},
	}
	db := testutils.SetupTestDB(t)
	return NewAccountService(NewAccountRepository(db)), db
}

// TestRegister 注册与冲突检测
func TestRegister(t *testing.T) {
	service, _ := setupAccountService(t)

	result, err := service.Register(RegisterRequest{
		Username: "register_test",
		Email:    "register_test@example.com",
		Password: "password123",
	})
	assert.Nil(t, err)
	assert.NotEmpty(t, result.AccessToken)
	assert.Equal(t, "register_test", result.User.Username)

	tests := []struct {
		name     string
		req      RegisterRequest
		wantCode response.ResponseCode
	}{
		{
			name: "用户名已存在",
			req: RegisterRequest{
				Username: "register_test",
				Email:    "other@example.com",
				Password: "password123",
			},
			wantCode: response.Conflict,
		},
		{
			name: "邮箱已存在",
			req: RegisterRequest{
				Username: "register_other",
				Email:    "register_test@example.com",
				Password: "password123",
			},
			wantCode: response.Conflict,
		},
		{
			name: "用户名含非法字符",
			req: RegisterRequest{
				Username: "bad name!",
				Email:    "badname@example.com",
				Password: "password123",
			},
			wantCode: response.ParseError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := service.Register(tt.req)
			assert.NotNil(t, err)
			assert.Equal(t, tt.wantCode, err.Code)
		})
	}
}

// TestLogin 邮箱或用户名登录，禁用账号拒绝
func TestLogin(t *testing.T) {
	service, _ := setupAccountService(t)

	_, err := service.Register(RegisterRequest{
		Username: "login_test",
		Email:    "login_test@example.com",
		Password: "password123",
	})
	assert.Nil(t, err)

	// 邮箱登录
	result, err := service.Login(LoginRequest{Account: "login_test@example.com", Password: "password123"})
	assert.Nil(t, err)
	assert.NotEmpty(t, result.AccessToken)

	// 用户名登录
	result, err = service.Login(LoginRequest{Account: "login_test", Password: "password123"})
	assert.Nil(t, err)
	assert.NotEmpty(t, result.AccessToken)

	// 密码错误
	_, err = service.Login(LoginRequest{Account: "login_test", Password: "wrong-password"})
	assert.NotNil(t, err)
	assert.Equal(t, response.Unauthorized, err.Code)
}

// TestFollow_Idempotency 重复关注返回冲突，取关未关注的用户是显式错误
func TestFollow_Idempotency(t *testing.T) {
	service, db := setupAccountService(t)
	follower := testutils.CreateTestUser(db)
	followed := testutils.CreateTestUser(db)

	result, err := service.Follow(follower.ID, followed.ID)
	assert.Nil(t, err)
	assert.True(t, result.Following)
	assert.Equal(t, uint(1), result.FollowersCount)

	// 重复关注：冲突，不产生重复行，计数不变
	_, err = service.Follow(follower.ID, followed.ID)
	assert.NotNil(t, err)
	assert.Equal(t, response.Conflict, err.Code)

	var followRows int64
	db.Model(&userModel.Follow{}).
		Where("follower_id = ? AND followed_id = ?", follower.ID, followed.ID).
		Count(&followRows)
	assert.Equal(t, int64(1), followRows)

	var refreshed userModel.User
	assert.Nil(t, db.First(&refreshed, followed.ID).Error)
	assert.Equal(t, uint(1), refreshed.FollowersCount)

	// 取关
	unfollowed, err := service.Unfollow(follower.ID, followed.ID)
	assert.Nil(t, err)
	assert.False(t, unfollowed.Following)
	assert.Equal(t, uint(0), unfollowed.FollowersCount)

	// 取关未关注的用户：显式错误而非静默成功
	_, err = service.Unfollow(follower.ID, followed.ID)
	assert.NotNil(t, err)
	assert.Equal(t, response.InvalidParameter, err.Code)
}

// TestFollow_Self 不能关注自己
func TestFollow_Self(t *testing.T) {
	service, db := setupAccountService(t)
	u := testutils.CreateTestUser(db)

	_, err := service.Follow(u.ID, u.ID)
	assert.NotNil(t, err)
	assert.Equal(t, response.InvalidParameter, err.Code)
}

// TestFollow_CountsMatchRows 关注计数与关系行数一致
func TestFollow_CountsMatchRows(t *testing.T) {
	service, db := setupAccountService(t)
	followed := testutils.CreateTestUser(db)

	const followers = 3
	for i := 0; i < followers; i++ {
		follower := testutils.CreateTestUser(db)
		_, err := service.Follow(follower.ID, followed.ID)
		assert.Nil(t, err)
	}

	var rows int64
	db.Model(&userModel.Follow{}).Where("followed_id = ?", followed.ID).Count(&rows)

	var refreshed userModel.User
	assert.Nil(t, db.First(&refreshed, followed.ID).Error)
	assert.Equal(t, rows, int64(refreshed.FollowersCount))
	assert.Equal(t, int64(followers), rows)
}

// TestGetUser_EmailVisibility 邮箱只对本人可见
func TestGetUser_EmailVisibility(t *testing.T) {
	service, db := setupAccountService(t)
	target := testutils.CreateTestUser(db)
	viewer := testutils.CreateTestUser(db)

	self, err := service.GetUser(target.ID, target.ID)
	assert.Nil(t, err)
	assert.NotEmpty(t, self.Email)

	other, err := service.GetUser(target.ID, viewer.ID)
	assert.Nil(t, err)
	assert.Empty(t, other.Email)
}

// TestChangePassword 旧密码校验
func TestChangePassword(t *testing.T) {
	service, _ := setupAccountService(t)

	registered, err := service.Register(RegisterRequest{
		Username: "pwd_test",
		Email:    "pwd_test@example.com",
		Password: "password123",
	})
	assert.Nil(t, err)

	err = service.ChangePassword(registered.User.ID, ChangePasswordRequest{
		OldPassword: "wrong-password",
		NewPassword: "newpassword456",
	})
	assert.NotNil(t, err)
	assert.Equal(t, response.InvalidParameter, err.Code)

	err = service.ChangePassword(registered.User.ID, ChangePasswordRequest{
		OldPassword: "password123",
		NewPassword: "newpassword456",
	})
	assert.Nil(t, err)

	_, loginErr := service.Login(LoginRequest{Account: "pwd_test", Password: "newpassword456"})
	assert.Nil(t, loginErr)
}
