// Package wiki 百科相关模型
package wiki

import "time"

// Category 百科分类表（支持父子树）
type Category struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Name        string `gorm:"type:varchar(100);uniqueIndex;not null" json:"name"`
	Slug        string `gorm:"type:varchar(100);uniqueIndex;not null" json:"slug"`
	Description string `gorm:"type:text" json:"description"`
	// NULL 表示顶级分类
	ParentID  *uint     `gorm:"index;default:null" json:"parent_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// 关联（仅用于查询）
	// 删除父分类时级联删除所有子分类
	Children []Category `gorm:"foreignKey:ParentID;constraint:OnDelete:CASCADE" json:"children,omitempty"`
}

// Tag 百科标签表
// 标签在文章保存时 get-or-create，可能被任意用户创建
type Tag struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"type:varchar(50);uniqueIndex;not null" json:"name"`
	Slug      string    `gorm:"type:varchar(50);uniqueIndex;not null" json:"slug"`
	CreatedAt time.Time `json:"created_at"`
}

// ArticleTag 文章-标签关联表
type ArticleTag struct {
	ArticleID uint      `gorm:"primaryKey;index" json:"article_id"`
	TagID     uint      `gorm:"primaryKey;index" json:"tag_id"`
	CreatedAt time.Time `json:"created_at"`
}
