package category

import (
	wikiModel "github.com/tsuki530/2023-tieba-bk/internal/model/wiki"
	"github.com/tsuki530/2023-tieba-bk/internal/pkg"
	"github.com/tsuki530/2023-tieba-bk/pkg/response"
)

// CategoryService 百科分类服务
type CategoryService struct {
	repo CategoryRepository
}

// NewCategoryService 创建服务实例
func NewCategoryService(repo CategoryRepository) *CategoryService {
	return &CategoryService{repo: repo}
}

// ListTree 获取分类树（顶级分类 + 一层子分类）
func (s *CategoryService) ListTree() ([]CategoryResponse, *response.BusinessError) {
	categories, err := s.repo.ListAll()
	if err != nil {
		return nil, response.NewBusinessError(
			response.WithErrorCode(response.Fail),
			response.WithErrorMessage("获取分类列表失败"),
		)
	}

	// 1. 先构建所有节点
	nodes := make(map[uint]*CategoryResponse, len(categories))
	for i := range categories {
		count, _ := s.repo.CountArticles(categories[i].ID)
		resp := toCategoryResponse(&categories[i], count)
		nodes[categories[i].ID] = &resp
	}

	// 2. 挂接子分类
	roots := make([]CategoryResponse, 0)
	for i := range categories {
		c := &categories[i]
		if c.ParentID == nil {
			continue
		}
		if parent, ok := nodes[*c.ParentID]; ok {
			parent.Children = append(parent.Children, *nodes[c.ID])
		}
	}

	// 3. 收集顶级分类
	for i := range categories {
		if categories[i].ParentID == nil {
			roots = append(roots, *nodes[categories[i].ID])
		}
	}
	return roots, nil
}

// Get 按 slug 获取分类详情
func (s *CategoryService) Get(slug string) (*CategoryResponse, *response.BusinessError) {
	category, err := s.repo.FindBySlug(slug)
	if err != nil {
		return nil, response.NewBusinessError(
			response.WithErrorCode(response.NotFound),
			response.WithErrorMessage("分类不存在"),
		)
	}

	count, _ := s.repo.CountArticles(category.ID)
	resp := toCategoryResponse(category, count)
	return &resp, nil
}

// Create 创建分类（管理员）
func (s *CategoryService) Create(req CreateCategoryRequest) (*CategoryResponse, *response.BusinessError) {
	// 1. 名称唯一
	if _, err := s.repo.FindByName(req.Name); err == nil {
		return nil, response.NewBusinessError(
			response.WithErrorCode(response.Conflict),
			response.WithErrorMessage("分类名称已存在"),
		)
	}

	// 2. 父分类必须存在且只允许一层嵌套
	if req.ParentID != nil {
		parent, err := s.repo.FindByID(*req.ParentID)
		if err != nil {
			return nil, response.NewBusinessError(
				response.WithErrorCode(response.NotFound),
				response.WithErrorMessage("父分类不存在"),
			)
		}
		if parent.ParentID != nil {
			return nil, response.NewBusinessError(
				response.WithErrorCode(response.InvalidParameter),
				response.WithErrorMessage("分类最多支持两级"),
			)
		}
	}

	category := &wikiModel.Category{
		Name:        req.Name,
		Slug:        pkg.MakeSlug(req.Name),
		Description: req.Description,
		ParentID:    req.ParentID,
	}
	if err := s.repo.Create(category); err != nil {
		return nil, response.NewBusinessError(
			response.WithErrorCode(response.Fail),
			response.WithErrorMessage("创建分类失败"),
		)
	}

	resp := toCategoryResponse(category, 0)
	return &resp, nil
}

// Update 更新分类（管理员），slug 随名称变化重新生成
func (s *CategoryService) Update(categoryID uint, req UpdateCategoryRequest) (*CategoryResponse, *response.BusinessError) {
	category, err := s.repo.FindByID(categoryID)
	if err != nil {
		return nil, response.NewBusinessError(
			response.WithErrorCode(response.NotFound),
			response.WithErrorMessage("分类不存在"),
		)
	}

	if req.Name != nil && *req.Name != category.Name {
		if _, err := s.repo.FindByName(*req.Name); err == nil {
			return nil, response.NewBusinessError(
				response.WithErrorCode(response.Conflict),
				response.WithErrorMessage("分类名称已存在"),
			)
		}
		category.Name = *req.Name
		category.Slug = pkg.MakeSlug(*req.Name)
	}
	if req.Description != nil {
		category.Description = *req.Description
	}
	if req.ParentID != nil {
		if *req.ParentID == category.ID {
			return nil, response.NewBusinessError(
				response.WithErrorCode(response.InvalidParameter),
				response.WithErrorMessage("分类不能作为自己的父分类"),
			)
		}
		parent, err := s.repo.FindByID(*req.ParentID)
		if err != nil {
			return nil, response.NewBusinessError(
				response.WithErrorCode(response.NotFound),
				response.WithErrorMessage("父分类不存在"),
			)
		}
		if parent.ParentID != nil {
			return nil, response.NewBusinessError(
				response.WithErrorCode(response.InvalidParameter),
				response.WithErrorMessage("分类最多支持两级"),
			)
		}
		category.ParentID = req.ParentID
	}

	if err := s.repo.Update(category); err != nil {
		return nil, response.NewBusinessError(
			response.WithErrorCode(response.Fail),
			response.WithErrorMessage("更新分类失败"),
		)
	}

	count, _ := s.repo.CountArticles(category.ID)
	resp := toCategoryResponse(category, count)
	return &resp, nil
}

// Delete 删除分类（管理员），子分类级联删除，文章保留但脱离分类
func (s *CategoryService) Delete(categoryID uint) *response.BusinessError {
	if _, err := s.repo.FindByID(categoryID); err != nil {
		return response.NewBusinessError(
			response.WithErrorCode(response.NotFound),
			response.WithErrorMessage("分类不存在"),
		)
	}

	if err := s.repo.Delete(categoryID); err != nil {
		return response.NewBusinessError(
			response.WithErrorCode(response.Fail),
			response.WithErrorMessage("删除分类失败"),
		)
	}
	return nil
}
