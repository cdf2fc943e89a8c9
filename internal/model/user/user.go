// Package user 用户相关模型
package user

import "time"

// User 用户表
type User struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	Email    string `gorm:"type:varchar(254);uniqueIndex;not null" json:"email"`
	Username string `gorm:"type:varchar(150);uniqueIndex;not null" json:"username"`
	// bcrypt 哈希，永不下发
	Password  string `gorm:"type:varchar(128);not null" json:"-"`
	FirstName string `gorm:"type:varchar(150)" json:"first_name"`
	LastName  string `gorm:"type:varchar(150)" json:"last_name"`

	// 个人资料
	Avatar   string `gorm:"type:varchar(255)" json:"avatar"`
	Bio      string `gorm:"type:varchar(500)" json:"bio"`
	Location string `gorm:"type:varchar(100)" json:"location"`
	Website  string `gorm:"type:varchar(200)" json:"website"`

	// 关注关系的冗余计数，与 follows 表同步维护
	FollowersCount uint `gorm:"default:0" json:"followers_count"`
	FollowingCount uint `gorm:"default:0" json:"following_count"`

	IsActive bool `gorm:"default:true" json:"is_active"`
	// 管理员标记（分类管理、举报处理等需要）
	IsStaff bool `gorm:"default:false" json:"is_staff"`

	LastActive time.Time `json:"last_active"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// DisplayName 展示名（优先用户名，否则邮箱前缀）
func (u *User) DisplayName() string {
	if u.Username != "" {
		return u.Username
	}
	for i := 0; i < len(u.Email); i++ {
		if u.Email[i] == '@' {
			return u.Email[:i]
		}
	}
	return u.Email
}

// Follow 关注关系表
// (follower, followed) 唯一；follower != followed 在服务层校验
type Follow struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	FollowerID uint      `gorm:"not null;uniqueIndex:idx_follow_unique;index" json:"follower_id"`
	FollowedID uint      `gorm:"not null;uniqueIndex:idx_follow_unique;index" json:"followed_id"`
	CreatedAt  time.Time `json:"created_at"`
}
