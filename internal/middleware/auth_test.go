package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/tsuki530/2023-tieba-bk/config"
	"github.com/tsuki530/2023-tieba-bk/internal/pkg"
)

func setupAuthRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	config.Conf = &config.AppConfig{
		JWT: config.JWTConfig{
			Secret:     "test-secret-key",
			ExpireTime: 24,
		},
	}

	r := gin.New()
	r.GET("/protected", JWTAuth(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"user_id":  c.GetUint("user_id"),
			"username": c.GetString("username"),
			"is_staff": c.GetBool("is_staff"),
		})
	})
	r.GET("/optional", OptionalJWTAuth(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": c.GetUint("user_id")})
	})
	r.GET("/staff", JWTAuth(), StaffOnly(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	return r
}

// TestJWTAuth_ContextPopulation 合法令牌注入用户上下文
func TestJWTAuth_ContextPopulation(t *testing.T) {
	r := setupAuthRouter()

	token, err := pkg.GenerateAccessToken(7, "ctxuser", "ctx@example.com", false)
	assert.NoError(t, err)

	// Cookie 携带
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.AddCookie(&http.Cookie{Name: "access_token", Value: token})
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"user_id":7`)
	assert.Contains(t, w.Body.String(), `"username":"ctxuser"`)

	// Bearer 头携带
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"user_id":7`)
}

// TestJWTAuth_Rejections 缺失或非法令牌返回401
func TestJWTAuth_Rejections(t *testing.T) {
	r := setupAuthRouter()

	// 无令牌
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// 非法令牌
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

// TestOptionalJWTAuth 无令牌放行，user_id 为零值
func TestOptionalJWTAuth(t *testing.T) {
	r := setupAuthRouter()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/optional", nil)
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"user_id":0`)

	token, err := pkg.GenerateAccessToken(9, "optuser", "opt@example.com", false)
	assert.NoError(t, err)

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/optional", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"user_id":9`)
}

// TestStaffOnly 普通用户403，管理员放行
func TestStaffOnly(t *testing.T) {
	r := setupAuthRouter()

	userToken, err := pkg.GenerateAccessToken(1, "normal", "normal@example.com", false)
	assert.NoError(t, err)
	staffToken, err := pkg.GenerateAccessToken(2, "staff", "staff@example.com", true)
	assert.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/staff", nil)
	req.Header.Set("Authorization", "Bearer "+userToken)
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/staff", nil)
	req.Header.Set("Authorization", "Bearer "+staffToken)
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}
