package search

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	postModel "github.com/tsuki530/2023-tieba-bk/internal/model/post"
	userModel "github.com/tsuki530/2023-tieba-bk/internal/model/user"
	wikiModel "github.com/tsuki530/2023-tieba-bk/internal/model/wiki"
)

const (
	// 结果条目里正文的最大长度（按 rune 截断）
	excerptLength = 200
	// 每类自动补全上限
	autocompleteLimit = 5
	// 自动补全最短查询长度
	autocompleteMinQuery = 2
)

// SearchService 联合搜索服务：按类型并发查询后归并排序
type SearchService struct {
	repo SearchRepository
}

// NewSearchService 创建服务实例
func NewSearchService(repo SearchRepository) *SearchService {
	return &SearchService{repo: repo}
}

// Search 执行联合搜索
// 每个类型一个 goroutine 独立查询，互不共享可变状态；
// 归并固定按 articles/posts/users/categories/tags 的顺序拼接后统一排序分页
func (s *SearchService) Search(ctx context.Context, query SearchQuery) (*SearchResponse, error) {
	start := time.Now()

	searchType := query.Type
	if searchType == "" {
		searchType = "all"
	}
	page := query.Page
	if page < 1 {
		page = 1
	}
	pageSize := query.PageSize
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	filters := s.resolveFilters(query)

	var (
		articles   []wikiModel.Article
		posts      []postModel.Post
		users      []userModel.User
		categories []wikiModel.Category
		tags       []wikiModel.Tag
	)

	g, gctx := errgroup.WithContext(ctx)

	if wantType(searchType, "articles") && filters.articlesOK {
		g.Go(func() error {
			var err error
			articles, err = s.repo.SearchArticles(gctx, query.Q, filters.article)
			return err
		})
	}
	if wantType(searchType, "posts") && filters.postsOK {
		g.Go(func() error {
			var err error
			posts, err = s.repo.SearchPosts(gctx, query.Q, filters.postCategoryID, filters.authorID)
			return err
		})
	}
	if wantType(searchType, "users") {
		g.Go(func() error {
			var err error
			users, err = s.repo.SearchUsers(gctx, query.Q)
			return err
		})
	}
	if wantType(searchType, "categories") {
		g.Go(func() error {
			var err error
			categories, err = s.repo.SearchCategories(gctx, query.Q)
			return err
		})
	}
	if wantType(searchType, "tags") {
		g.Go(func() error {
			var err error
			tags, err = s.repo.SearchTags(gctx, query.Q)
			return err
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	// 归并：类型组顺序固定，组内保持查询返回顺序
	results := make([]SearchResult, 0, len(articles)+len(posts)+len(users)+len(categories)+len(tags))
	for i := range articles {
		results = append(results, articleResult(&articles[i]))
	}
	for i := range posts {
		results = append(results, postResult(&posts[i]))
	}
	for i := range users {
		results = append(results, userResult(&users[i]))
	}
	for i := range categories {
		results = append(results, categoryResult(&categories[i]))
	}
	for i := range tags {
		results = append(results, tagResult(&tags[i]))
	}

	sortResults(results, query.SortBy)

	total := len(results)
	offset := (page - 1) * pageSize
	if offset > total {
		offset = total
	}
	end := offset + pageSize
	if end > total {
		end = total
	}

	return &SearchResponse{
		Results:      results[offset:end],
		TotalResults: total,
		SearchTime:   time.Since(start).Seconds(),
		Query:        query.Q,
		Stats: TypeStats{
			ArticlesCount:   len(articles),
			PostsCount:      len(posts),
			UsersCount:      len(users),
			CategoriesCount: len(categories),
			TagsCount:       len(tags),
		},
		Page:     page,
		PageSize: pageSize,
	}, nil
}

// resolvedFilters 解析后的过滤条件
// 某个过滤目标在对应域中不存在时，该域的组直接视为空结果（OK = false），
// 另一个域不受影响
type resolvedFilters struct {
	article        ArticleFilter
	postCategoryID uint
	authorID       uint
	articlesOK     bool
	postsOK        bool
}

// resolveFilters 把 slug/username 过滤参数解析成ID，按域独立解析
// 分类 slug 在百科分类和帖子分类中各自查找；标签只作用于文章；作者同时作用于两者
func (s *SearchService) resolveFilters(query SearchQuery) resolvedFilters {
	filters := resolvedFilters{articlesOK: true, postsOK: true}

	if query.Category != "" {
		if id, err := s.repo.FindCategoryIDBySlug(query.Category); err == nil {
			filters.article.CategoryID = id
		} else {
			filters.articlesOK = false
		}
		if id, err := s.repo.FindPostCategoryIDBySlug(query.Category); err == nil {
			filters.postCategoryID = id
		} else {
			filters.postsOK = false
		}
	}
	if query.Tag != "" {
		if id, err := s.repo.FindTagIDBySlug(query.Tag); err == nil {
			filters.article.TagID = id
		} else {
			filters.articlesOK = false
		}
	}
	if query.Author != "" {
		if id, err := s.repo.FindUserIDByUsername(query.Author); err == nil {
			filters.article.AuthorID = id
			filters.authorID = id
		} else {
			filters.articlesOK = false
			filters.postsOK = false
		}
	}
	return filters
}

// Autocomplete 自动补全：每个类型取前N条标题匹配，按类型组顺序拼接
func (s *SearchService) Autocomplete(keyword string) ([]AutocompleteItem, error) {
	items := make([]AutocompleteItem, 0)
	if len([]rune(keyword)) < autocompleteMinQuery {
		return items, nil
	}

	articles, err := s.repo.AutocompleteArticles(keyword, autocompleteLimit)
	if err != nil {
		return nil, err
	}
	for i := range articles {
		items = append(items, AutocompleteItem{
			ID:   fmt.Sprintf("article_%d", articles[i].ID),
			Text: articles[i].Title,
			Type: "article",
			URL:  fmt.Sprintf("/articles/%s/", articles[i].Slug),
		})
	}

	posts, err := s.repo.AutocompletePosts(keyword, autocompleteLimit)
	if err != nil {
		return nil, err
	}
	for i := range posts {
		items = append(items, AutocompleteItem{
			ID:   fmt.Sprintf("post_%d", posts[i].ID),
			Text: posts[i].Title,
			Type: "post",
			URL:  fmt.Sprintf("/posts/%d/", posts[i].ID),
		})
	}

	users, err := s.repo.AutocompleteUsers(keyword, autocompleteLimit)
	if err != nil {
		return nil, err
	}
	for i := range users {
		u := &users[i]
		text := u.Username
		if u.FirstName != "" && u.LastName != "" {
			text = fmt.Sprintf("%s %s (%s)", u.FirstName, u.LastName, u.Username)
		}
		items = append(items, AutocompleteItem{
			ID:   fmt.Sprintf("user_%d", u.ID),
			Text: text,
			Type: "user",
			URL:  fmt.Sprintf("/users/%s/", u.Username),
		})
	}

	categories, err := s.repo.AutocompleteCategories(keyword, autocompleteLimit)
	if err != nil {
		return nil, err
	}
	for i := range categories {
		items = append(items, AutocompleteItem{
			ID:   fmt.Sprintf("category_%d", categories[i].ID),
			Text: categories[i].Name,
			Type: "category",
			URL:  fmt.Sprintf("/categories/%s/", categories[i].Slug),
		})
	}

	tags, err := s.repo.AutocompleteTags(keyword, autocompleteLimit)
	if err != nil {
		return nil, err
	}
	for i := range tags {
		items = append(items, AutocompleteItem{
			ID:   fmt.Sprintf("tag_%d", tags[i].ID),
			Text: tags[i].Name,
			Type: "tag",
			URL:  fmt.Sprintf("/tags/%s/", tags[i].Slug),
		})
	}

	return items, nil
}

// Stats 全站可检索内容统计
func (s *SearchService) Stats() (*StatsResponse, error) {
	return s.repo.Counts()
}

// Filters 可用过滤条件列表
func (s *SearchService) Filters() (*FiltersResponse, error) {
	categories, err := s.repo.ListCategories()
	if err != nil {
		return nil, err
	}
	tags, err := s.repo.ListTags()
	if err != nil {
		return nil, err
	}
	postCategories, err := s.repo.ListPostCategories()
	if err != nil {
		return nil, err
	}

	resp := &FiltersResponse{
		Categories:     make([]FilterOption, 0, len(categories)),
		Tags:           make([]FilterOption, 0, len(tags)),
		PostCategories: make([]FilterOption, 0, len(postCategories)),
		SortOptions: []SortOption{
			{Value: "relevance", Label: "相关度"},
			{Value: "date", Label: "时间"},
			{Value: "views", Label: "浏览量"},
			{Value: "likes", Label: "点赞数"},
		},
		TypeOptions: []SortOption{
			{Value: "all", Label: "全部"},
			{Value: "articles", Label: "文章"},
			{Value: "posts", Label: "帖子"},
			{Value: "users", Label: "用户"},
			{Value: "categories", Label: "分类"},
			{Value: "tags", Label: "标签"},
		},
	}
	for i := range categories {
		resp.Categories = append(resp.Categories, FilterOption{
			ID: categories[i].ID, Name: categories[i].Name, Slug: categories[i].Slug,
		})
	}
	for i := range tags {
		resp.Tags = append(resp.Tags, FilterOption{
			ID: tags[i].ID, Name: tags[i].Name, Slug: tags[i].Slug,
		})
	}
	for i := range postCategories {
		resp.PostCategories = append(resp.PostCategories, FilterOption{
			ID: postCategories[i].ID, Name: postCategories[i].Name, Slug: postCategories[i].Slug,
		})
	}
	return resp, nil
}

// ========== 结果转换 ==========

func articleResult(a *wikiModel.Article) SearchResult {
	return SearchResult{
		ID:         fmt.Sprintf("article_%d", a.ID),
		Title:      a.Title,
		Content:    excerpt(a.Content),
		Type:       "article",
		URL:        fmt.Sprintf("/articles/%s/", a.Slug),
		CreatedAt:  a.CreatedAt,
		ViewsCount: a.ViewsCount,
		LikesCount: a.LikesCount,
	}
}

func postResult(p *postModel.Post) SearchResult {
	return SearchResult{
		ID:         fmt.Sprintf("post_%d", p.ID),
		Title:      p.Title,
		Content:    excerpt(p.Content),
		Type:       "post",
		URL:        fmt.Sprintf("/posts/%d/", p.ID),
		CreatedAt:  p.CreatedAt,
		ViewsCount: p.ViewsCount,
		LikesCount: p.LikesCount,
	}
}

func userResult(u *userModel.User) SearchResult {
	title := u.Username
	if u.FirstName != "" && u.LastName != "" {
		title = fmt.Sprintf("%s %s (%s)", u.FirstName, u.LastName, u.Username)
	}
	return SearchResult{
		ID:        fmt.Sprintf("user_%d", u.ID),
		Title:     title,
		Content:   excerpt(u.Bio),
		Type:      "user",
		URL:       fmt.Sprintf("/users/%s/", u.Username),
		CreatedAt: u.CreatedAt,
	}
}

func categoryResult(c *wikiModel.Category) SearchResult {
	return SearchResult{
		ID:        fmt.Sprintf("category_%d", c.ID),
		Title:     c.Name,
		Content:   excerpt(c.Description),
		Type:      "category",
		URL:       fmt.Sprintf("/categories/%s/", c.Slug),
		CreatedAt: c.CreatedAt,
	}
}

func tagResult(t *wikiModel.Tag) SearchResult {
	return SearchResult{
		ID:        fmt.Sprintf("tag_%d", t.ID),
		Title:     t.Name,
		Type:      "tag",
		URL:       fmt.Sprintf("/tags/%s/", t.Slug),
		CreatedAt: t.CreatedAt,
	}
}

// sortResults 全局排序
// relevance 保持拼接顺序不动，其余键用稳定排序保证同值条目维持类型组顺序
func sortResults(results []SearchResult, sortBy string) {
	switch sortBy {
	case "date":
		sort.SliceStable(results, func(i, j int) bool {
			return results[i].CreatedAt.After(results[j].CreatedAt)
		})
	case "views":
		sort.SliceStable(results, func(i, j int) bool {
			return results[i].ViewsCount > results[j].ViewsCount
		})
	case "likes":
		sort.SliceStable(results, func(i, j int) bool {
			return results[i].LikesCount > results[j].LikesCount
		})
	}
}

func wantType(searchType, target string) bool {
	return searchType == "all" || searchType == target
}

// excerpt 截断正文，避免结果条目携带全文
func excerpt(content string) string {
	content = strings.TrimSpace(content)
	runes := []rune(content)
	if len(runes) <= excerptLength {
		return content
	}
	return string(runes[:excerptLength]) + "..."
}
