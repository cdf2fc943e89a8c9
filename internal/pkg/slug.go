package pkg

import (
	"fmt"

	"github.com/gosimple/slug"
)

// MakeSlug 根据标题生成 URL slug
func MakeSlug(title string) string {
	return slug.Make(title)
}

// MakeUniqueSlug 生成带后缀的 slug，用于解决重复冲突
func MakeUniqueSlug(title string, suffix int) string {
	base := slug.Make(title)
	if suffix <= 0 {
		return base
	}
	return fmt.Sprintf("%s-%d", base, suffix)
}
