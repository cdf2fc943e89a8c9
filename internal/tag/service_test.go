package tag

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"

	wikiModel "github.com/tsuki530/2023-tieba-bk/internal/model/wiki"
	"github.com/tsuki530/2023-tieba-bk/internal/testutils"
)

func setupTagService(t *testing.T) (*TagService, *gorm.DB) {
	db := testutils.SetupTestDB(t)
	return NewTagService(NewTagRepository(db)), db
}

// TestResolveTags_GetOrCreate 不存在的标签按需创建，已存在的复用
func TestResolveTags_GetOrCreate(t *testing.T) {
	service, db := setupTagService(t)
	existing := testutils.CreateTestTag(db)

	tags, err := service.ResolveTags([]string{existing.Name, "fresh-tag"})
	assert.NoError(t, err)
	assert.Len(t, tags, 2)
	assert.Equal(t, existing.ID, tags[0].ID)
	assert.Equal(t, "fresh-tag", tags[1].Name)
	assert.Equal(t, "fresh-tag", tags[1].Slug)

	var total int64
	db.Model(&wikiModel.Tag{}).Count(&total)
	assert.Equal(t, int64(2), total)
}

// TestResolveTags_TrimAndDedupe 空白名丢弃，大小写不敏感去重
func TestResolveTags_TrimAndDedupe(t *testing.T) {
	service, _ := setupTagService(t)

	tags, err := service.ResolveTags([]string{"  Golang  ", "golang", "GOLANG", "", "   "})
	assert.NoError(t, err)
	assert.Len(t, tags, 1)
	assert.Equal(t, "Golang", tags[0].Name)
}

// TestResolveTags_Cap 超出上限的标签被丢弃
func TestResolveTags_Cap(t *testing.T) {
	service, _ := setupTagService(t)

	names := make([]string, 0, maxTagsPerArticle+5)
	for i := 0; i < maxTagsPerArticle+5; i++ {
		names = append(names, fmt.Sprintf("tag-%d", i))
	}

	tags, err := service.ResolveTags(names)
	assert.NoError(t, err)
	assert.Len(t, tags, maxTagsPerArticle)
}

// TestList_Search 关键词过滤
func TestList_Search(t *testing.T) {
	service, db := setupTagService(t)

	assert.Nil(t, db.Create(&wikiModel.Tag{Name: "kubernetes", Slug: "kubernetes"}).Error)
	assert.Nil(t, db.Create(&wikiModel.Tag{Name: "docker", Slug: "docker"}).Error)

	tags, err := service.List("kuber", 20)
	assert.Nil(t, err)
	assert.Len(t, tags, 1)
	assert.Equal(t, "kubernetes", tags[0].Name)
}
