package tag

import (
	"strings"

	wikiModel "github.com/tsuki530/2023-tieba-bk/internal/model/wiki"
	"github.com/tsuki530/2023-tieba-bk/internal/pkg"
	"github.com/tsuki530/2023-tieba-bk/pkg/response"
)

// 单篇文章最多携带的标签数
const maxTagsPerArticle = 10

// TagService 百科标签服务
type TagService struct {
	repo TagRepository
}

// NewTagService 创建服务实例
func NewTagService(repo TagRepository) *TagService {
	return &TagService{repo: repo}
}

// List 获取标签列表，keyword 非空时按名称模糊过滤
func (s *TagService) List(keyword string, limit int) ([]wikiModel.Tag, *response.BusinessError) {
	if limit < 1 || limit > 200 {
		limit = 100
	}

	var tags []wikiModel.Tag
	var err error
	if keyword != "" {
		tags, err = s.repo.SearchByKeyword(keyword, limit)
	} else {
		tags, err = s.repo.List(limit)
	}
	if err != nil {
		return nil, response.NewBusinessError(
			response.WithErrorCode(response.Fail),
			response.WithErrorMessage("获取标签列表失败"),
		)
	}
	return tags, nil
}

// Get 按 slug 获取标签
func (s *TagService) Get(slug string) (*wikiModel.Tag, *response.BusinessError) {
	tag, err := s.repo.FindBySlug(slug)
	if err != nil {
		return nil, response.NewBusinessError(
			response.WithErrorCode(response.NotFound),
			response.WithErrorMessage("标签不存在"),
		)
	}
	return tag, nil
}

// ResolveTags 将标签名列表解析为标签记录，不存在的标签按需创建
// 名称做 trim 和去重，超出上限的部分丢弃
func (s *TagService) ResolveTags(names []string) ([]wikiModel.Tag, error) {
	seen := make(map[string]bool, len(names))
	result := make([]wikiModel.Tag, 0, len(names))

	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		key := strings.ToLower(name)
		if seen[key] {
			continue
		}
		seen[key] = true

		if len(result) >= maxTagsPerArticle {
			break
		}

		tag, err := s.repo.FindByName(name)
		if err != nil {
			tag = &wikiModel.Tag{
				Name: name,
				Slug: pkg.MakeSlug(name),
			}
			if err := s.repo.Create(tag); err != nil {
				// 并发下可能被其他请求抢先创建，重查一次
				tag, err = s.repo.FindByName(name)
				if err != nil {
					return nil, err
				}
			}
		}
		result = append(result, *tag)
	}
	return result, nil
}
