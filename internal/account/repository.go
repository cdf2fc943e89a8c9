package account

import (
	"gorm.io/gorm"

	userModel "github.com/tsuki530/2023-tieba-bk/internal/model/user"
)

// AccountRepository 用户数据访问接口
type AccountRepository interface {
	// User 相关
	FindByID(userID uint) (*userModel.User, error)
	FindByEmail(email string) (*userModel.User, error)
	FindByUsername(username string) (*userModel.User, error)
	Create(user *userModel.User) error
	Update(user *userModel.User) error
	UpdateFields(userID uint, fields map[string]interface{}) error
	List(page, pageSize int) ([]userModel.User, int64, error)
	SearchByKeyword(keyword string, limit int) ([]userModel.User, error)

	// Follow 相关
	FindFollow(followerID, followedID uint) (*userModel.Follow, error)
	CreateFollow(follow *userModel.Follow) error
	DeleteFollow(followerID, followedID uint) error
	CountFollowers(userID uint) (int64, error)
	CountFollowing(userID uint) (int64, error)
	ListFollowers(userID uint, page, pageSize int) ([]userModel.User, int64, error)
	ListFollowing(userID uint, page, pageSize int) ([]userModel.User, int64, error)

	// 事务
	Transaction(fn func(txRepo AccountRepository) error) error
}

type accountRepository struct {
	db *gorm.DB
}

// NewAccountRepository 创建 Repository 实例
func NewAccountRepository(db *gorm.DB) AccountRepository {
	return &accountRepository{db: db}
}

// ========== User 相关操作 ==========

func (r *accountRepository) FindByID(userID uint) (*userModel.User, error) {
	var user userModel.User
	if err := r.db.First(&user, userID).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *accountRepository) FindByEmail(email string) (*userModel.User, error) {
	var user userModel.User
	if err := r.db.Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *accountRepository) FindByUsername(username string) (*userModel.User, error) {
	var user userModel.User
	if err := r.db.Where("username = ?", username).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *accountRepository) Create(user *userModel.User) error {
	return r.db.Create(user).Error
}

func (r *accountRepository) Update(user *userModel.User) error {
	return r.db.Save(user).Error
}

func (r *accountRepository) UpdateFields(userID uint, fields map[string]interface{}) error {
	return r.db.Model(&userModel.User{}).Where("id = ?", userID).Updates(fields).Error
}

// List 分页获取用户列表（仅活跃用户）
func (r *accountRepository) List(page, pageSize int) ([]userModel.User, int64, error) {
	var users []userModel.User
	var total int64

	query := r.db.Model(&userModel.User{}).Where("is_active = ?", true)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&users).Error
	if err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

// SearchByKeyword 按用户名/昵称/简介模糊搜索
func (r *accountRepository) SearchByKeyword(keyword string, limit int) ([]userModel.User, error) {
	var users []userModel.User
	pattern := "%" + keyword + "%"
	err := r.db.Where("is_active = ?", true).
		Where("username ILIKE ? OR first_name ILIKE ? OR last_name ILIKE ? OR bio ILIKE ?",
			pattern, pattern, pattern, pattern).
		Order("followers_count DESC").
		Limit(limit).
		Find(&users).Error
	if err != nil {
		return nil, err
	}
	return users, nil
}

// ========== Follow 相关操作 ==========

func (r *accountRepository) FindFollow(followerID, followedID uint) (*userModel.Follow, error) {
	var follow userModel.Follow
	err := r.db.Where("follower_id = ? AND followed_id = ?", followerID, followedID).
		First(&follow).Error
	if err != nil {
		return nil, err
	}
	return &follow, nil
}

func (r *accountRepository) CreateFollow(follow *userModel.Follow) error {
	return r.db.Create(follow).Error
}

func (r *accountRepository) DeleteFollow(followerID, followedID uint) error {
	return r.db.Where("follower_id = ? AND followed_id = ?", followerID, followedID).
		Delete(&userModel.Follow{}).Error
}

func (r *accountRepository) CountFollowers(userID uint) (int64, error) {
	var count int64
	err := r.db.Model(&userModel.Follow{}).Where("followed_id = ?", userID).Count(&count).Error
	return count, err
}

func (r *accountRepository) CountFollowing(userID uint) (int64, error) {
	var count int64
	err := r.db.Model(&userModel.Follow{}).Where("follower_id = ?", userID).Count(&count).Error
	return count, err
}

// ListFollowers 获取关注该用户的用户列表
func (r *accountRepository) ListFollowers(userID uint, page, pageSize int) ([]userModel.User, int64, error) {
	var users []userModel.User
	var total int64

	base := r.db.Model(&userModel.User{}).
		Joins("JOIN follows ON follows.follower_id = users.id").
		Where("follows.followed_id = ?", userID)

	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := base.Order("follows.created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&users).Error
	if err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

// ListFollowing 获取该用户关注的用户列表
func (r *accountRepository) ListFollowing(userID uint, page, pageSize int) ([]userModel.User, int64, error) {
	var users []userModel.User
	var total int64

	base := r.db.Model(&userModel.User{}).
		Joins("JOIN follows ON follows.followed_id = users.id").
		Where("follows.follower_id = ?", userID)

	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := base.Order("follows.created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&users).Error
	if err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

// Transaction 在事务中执行，fn 收到绑定事务连接的 Repository
func (r *accountRepository) Transaction(fn func(txRepo AccountRepository) error) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		return fn(&accountRepository{db: tx})
	})
}
