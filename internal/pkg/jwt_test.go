package pkg

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"

	"github.com/tsuki530/2023-tieba-bk/config"
)

func setupJWTConfig() {
	config.Conf = &config.AppConfig{
		JWT: config.JWTConfig{
			Secret:     "test-secret-key",
			ExpireTime: 24,
		},
	}
}

// TestAccessTokenRoundTrip 生成的令牌能解析回完整的用户信息
func TestAccessTokenRoundTrip(t *testing.T) {
	setupJWTConfig()

	tests := []struct {
		name     string
		userID   uint
		username string
		email    string
		isStaff  bool
	}{
		{
			name:     "普通用户",
			userID:   1,
			username: "testuser",
			email:    "test@example.com",
			isStaff:  false,
		},
		{
			name:     "管理员",
			userID:   42,
			username: "admin",
			email:    "admin@example.com",
			isStaff:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, err := GenerateAccessToken(tt.userID, tt.username, tt.email, tt.isStaff)
			assert.NoError(t, err)
			assert.NotEmpty(t, token)

			claims, err := ParseAccessToken(token)
			assert.NoError(t, err)
			assert.Equal(t, tt.userID, claims.UserID)
			assert.Equal(t, tt.username, claims.Username)
			assert.Equal(t, tt.email, claims.Email)
			assert.Equal(t, tt.isStaff, claims.IsStaff)
		})
	}
}

// TestParseAccessToken_Invalid 非法与过期令牌被拒绝
func TestParseAccessToken_Invalid(t *testing.T) {
	setupJWTConfig()

	_, err := ParseAccessToken("not-a-token")
	assert.Error(t, err)

	// 用错误密钥签发的令牌
	wrongKeyToken := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		UserID:   1,
		Username: "testuser",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	signed, signErr := wrongKeyToken.SignedString([]byte("another-secret"))
	assert.NoError(t, signErr)

	_, err = ParseAccessToken(signed)
	assert.Error(t, err)

	// 已过期的令牌
	expiredToken := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		UserID:   1,
		Username: "testuser",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
	})
	signed, signErr = expiredToken.SignedString([]byte(config.Conf.JWT.Secret))
	assert.NoError(t, signErr)

	_, err = ParseAccessToken(signed)
	assert.ErrorIs(t, err, ErrExpiredToken)
}
