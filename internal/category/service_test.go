package category

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"

	"github.com/tsuki530/2023-tieba-bk/internal/testutils"
	"github.com/tsuki530/2023-tieba-bk/pkg/response"
)

func setupCategoryService(t *testing.T) (*CategoryService, *gorm.DB) {
	db := testutils.SetupTestDB(t)
	return NewCategoryService(NewCategoryRepository(db)), db
}

// TestCreate_TwoLevelLimit 分类最多两级，子分类不能再挂子分类
func TestCreate_TwoLevelLimit(t *testing.T) {
	service, _ := setupCategoryService(t)

	root, err := service.Create(CreateCategoryRequest{Name: "编程语言"})
	assert.Nil(t, err)
	assert.Equal(t, "bian-cheng-yu-yan", root.Slug)

	child, err := service.Create(CreateCategoryRequest{Name: "Go", ParentID: &root.ID})
	assert.Nil(t, err)
	assert.Equal(t, root.ID, *child.ParentID)

	// 第三级被拒绝
	_, err = service.Create(CreateCategoryRequest{Name: "Goroutine", ParentID: &child.ID})
	assert.NotNil(t, err)
	assert.Equal(t, response.InvalidParameter, err.Code)
}

// TestCreate_NameConflict 名称唯一
func TestCreate_NameConflict(t *testing.T) {
	service, _ := setupCategoryService(t)

	_, err := service.Create(CreateCategoryRequest{Name: "数据库"})
	assert.Nil(t, err)

	_, err = service.Create(CreateCategoryRequest{Name: "数据库"})
	assert.NotNil(t, err)
	assert.Equal(t, response.Conflict, err.Code)
}

// TestCreate_MissingParent 父分类不存在
func TestCreate_MissingParent(t *testing.T) {
	service, _ := setupCategoryService(t)

	missing := uint(99999)
	_, err := service.Create(CreateCategoryRequest{Name: "孤儿分类", ParentID: &missing})
	assert.NotNil(t, err)
	assert.Equal(t, response.NotFound, err.Code)
}

// TestListTree 子分类挂在父分类的 Children 下
func TestListTree(t *testing.T) {
	service, _ := setupCategoryService(t)

	root, err := service.Create(CreateCategoryRequest{Name: "tree-root"})
	assert.Nil(t, err)
	_, err = service.Create(CreateCategoryRequest{Name: "tree-child", ParentID: &root.ID})
	assert.Nil(t, err)

	tree, err := service.ListTree()
	assert.Nil(t, err)

	var found *CategoryResponse
	for i := range tree {
		if tree[i].ID == root.ID {
			found = &tree[i]
		}
	}
	assert.NotNil(t, found)
	assert.Len(t, found.Children, 1)
	assert.Equal(t, "tree-child", found.Children[0].Name)
}

// TestUpdate_SlugFollowsRename 改名后 slug 重新生成
func TestUpdate_SlugFollowsRename(t *testing.T) {
	service, _ := setupCategoryService(t)

	created, err := service.Create(CreateCategoryRequest{Name: "old-name"})
	assert.Nil(t, err)

	newName := "brand-new-name"
	updated, err := service.Update(created.ID, UpdateCategoryRequest{Name: &newName})
	assert.Nil(t, err)
	assert.Equal(t, "brand-new-name", updated.Slug)
}
