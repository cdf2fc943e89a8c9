package search

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"

	wikiModel "github.com/tsuki530/2023-tieba-bk/internal/model/wiki"
	"github.com/tsuki530/2023-tieba-bk/internal/testutils"
)

func setupSearchService(t *testing.T) (*SearchService, *gorm.DB) {
	db := testutils.SetupTestDB(t)
	return NewSearchService(NewSearchRepository(db)), db
}

// seedSearchData 造出五种类型各至少一条命中关键词的数据
func seedSearchData(t *testing.T, db *gorm.DB, keyword string) {
	t.Helper()

	author := testutils.CreateTestUser(db, testutils.WithUsername("author_"+keyword))
	testutils.CreateTestArticle(db, author.ID, testutils.WithArticleTitle("Article about "+keyword))
	testutils.CreateTestPost(db, author.ID, testutils.WithPostTitle("Post about "+keyword))

	category := &wikiModel.Category{
		Name: "category-" + keyword,
		Slug: "category-" + keyword,
	}
	assert.Nil(t, db.Create(category).Error)

	tag := &wikiModel.Tag{
		Name: "tag-" + keyword,
		Slug: "tag-" + keyword,
	}
	assert.Nil(t, db.Create(tag).Error)
}

// TestSearch_CountSumProperty 各类型命中数之和等于 total_results，且每条结果的类型与所计入的组一致
func TestSearch_CountSumProperty(t *testing.T) {
	service, db := setupSearchService(t)
	seedSearchData(t, db, "kappa")

	result, err := service.Search(context.Background(), SearchQuery{Q: "kappa"})
	assert.NoError(t, err)

	sum := result.Stats.ArticlesCount + result.Stats.PostsCount + result.Stats.UsersCount +
		result.Stats.CategoriesCount + result.Stats.TagsCount
	assert.Equal(t, result.TotalResults, sum)
	assert.GreaterOrEqual(t, result.Stats.ArticlesCount, 1)
	assert.GreaterOrEqual(t, result.Stats.PostsCount, 1)
	assert.GreaterOrEqual(t, result.Stats.UsersCount, 1)
	assert.GreaterOrEqual(t, result.Stats.CategoriesCount, 1)
	assert.GreaterOrEqual(t, result.Stats.TagsCount, 1)

	counted := map[string]int{}
	for _, item := range result.Results {
		counted[item.Type]++
	}
	assert.Equal(t, result.Stats.ArticlesCount, counted["article"])
	assert.Equal(t, result.Stats.PostsCount, counted["post"])
	assert.Equal(t, result.Stats.UsersCount, counted["user"])
	assert.Equal(t, result.Stats.CategoriesCount, counted["category"])
	assert.Equal(t, result.Stats.TagsCount, counted["tag"])
}

// TestSearch_TypeFilter 指定类型只返回该类型
func TestSearch_TypeFilter(t *testing.T) {
	service, db := setupSearchService(t)
	seedSearchData(t, db, "lambda")

	result, err := service.Search(context.Background(), SearchQuery{Q: "lambda", Type: "articles"})
	assert.NoError(t, err)
	assert.Equal(t, result.Stats.ArticlesCount, result.TotalResults)
	for _, item := range result.Results {
		assert.Equal(t, "article", item.Type)
	}
}

// TestSearch_UnpublishedExcluded 草稿文章和帖子不进入搜索结果
func TestSearch_UnpublishedExcluded(t *testing.T) {
	service, db := setupSearchService(t)
	author := testutils.CreateTestUser(db)
	testutils.CreateTestArticle(db, author.ID,
		testutils.WithArticleTitle("Draft about sigma"),
		testutils.WithArticleStatus(wikiModel.StatusDraft))

	result, err := service.Search(context.Background(), SearchQuery{Q: "sigma", Type: "articles"})
	assert.NoError(t, err)
	assert.Equal(t, 0, result.TotalResults)
}

// TestSearch_SortByViews views 排序降序，稳定排序保持组内顺序
func TestSearch_SortByViews(t *testing.T) {
	service, db := setupSearchService(t)
	author := testutils.CreateTestUser(db)

	low := testutils.CreateTestArticle(db, author.ID, testutils.WithArticleTitle("omega low"))
	high := testutils.CreateTestArticle(db, author.ID, testutils.WithArticleTitle("omega high"))
	assert.Nil(t, db.Model(&wikiModel.Article{}).Where("id = ?", low.ID).
		UpdateColumn("views_count", 3).Error)
	assert.Nil(t, db.Model(&wikiModel.Article{}).Where("id = ?", high.ID).
		UpdateColumn("views_count", 30).Error)

	result, err := service.Search(context.Background(), SearchQuery{
		Q: "omega", Type: "articles", SortBy: "views",
	})
	assert.NoError(t, err)
	assert.Len(t, result.Results, 2)
	assert.Equal(t, "omega high", result.Results[0].Title)
	assert.Equal(t, "omega low", result.Results[1].Title)
}

// TestSearch_Pagination 分页切片与总数
func TestSearch_Pagination(t *testing.T) {
	service, db := setupSearchService(t)
	author := testutils.CreateTestUser(db)

	const total = 5
	for i := 0; i < total; i++ {
		testutils.CreateTestArticle(db, author.ID, testutils.WithArticleTitle("delta paging"))
	}

	first, err := service.Search(context.Background(), SearchQuery{
		Q: "delta", Type: "articles", Page: 1, PageSize: 2,
	})
	assert.NoError(t, err)
	assert.Equal(t, total, first.TotalResults)
	assert.Len(t, first.Results, 2)

	last, err := service.Search(context.Background(), SearchQuery{
		Q: "delta", Type: "articles", Page: 3, PageSize: 2,
	})
	assert.NoError(t, err)
	assert.Len(t, last.Results, 1)

	// 越界页返回空切片而非错误
	beyond, err := service.Search(context.Background(), SearchQuery{
		Q: "delta", Type: "articles", Page: 9, PageSize: 2,
	})
	assert.NoError(t, err)
	assert.Len(t, beyond.Results, 0)
}

// TestAutocomplete 关键词过短返回空，命中时每类限量
func TestAutocomplete(t *testing.T) {
	service, db := setupSearchService(t)
	seedSearchData(t, db, "epsilon")

	items, err := service.Autocomplete("e")
	assert.NoError(t, err)
	assert.Len(t, items, 0)

	items, err = service.Autocomplete("epsilon")
	assert.NoError(t, err)
	assert.NotEmpty(t, items)
	for _, item := range items {
		assert.NotEmpty(t, item.ID)
		assert.NotEmpty(t, item.Text)
		assert.NotEmpty(t, item.URL)
	}
}

// TestSearch_MissingFilterEntity 指定了不存在的过滤目标时文章/帖子组为空
func TestSearch_MissingFilterEntity(t *testing.T) {
	service, db := setupSearchService(t)
	seedSearchData(t, db, "zeta")

	result, err := service.Search(context.Background(), SearchQuery{
		Q: "zeta", Type: "articles", Tag: "no-such-tag",
	})
	assert.NoError(t, err)
	assert.Equal(t, 0, result.Stats.ArticlesCount)
}

// TestSearch_CategoryScopedPerDomain 分类 slug 只在其所属域内过滤，未命中的域返回空组而不是不过滤
func TestSearch_CategoryScopedPerDomain(t *testing.T) {
	service, db := setupSearchService(t)
	author := testutils.CreateTestUser(db)

	wikiCat := &wikiModel.Category{Name: "wiki-only-cat", Slug: "wiki-only-cat"}
	assert.Nil(t, db.Create(wikiCat).Error)
	testutils.CreateTestArticle(db, author.ID,
		testutils.WithArticleTitle("rho article"),
		testutils.WithArticleCategory(wikiCat.ID))
	testutils.CreateTestPost(db, author.ID, testutils.WithPostTitle("rho post"))

	// slug 只存在于百科分类：帖子组为空
	result, err := service.Search(context.Background(), SearchQuery{Q: "rho", Category: "wiki-only-cat"})
	assert.NoError(t, err)
	assert.Equal(t, 1, result.Stats.ArticlesCount)
	assert.Equal(t, 0, result.Stats.PostsCount)

	// slug 只存在于帖子分类：文章组为空
	postCat := testutils.CreateTestPostCategory(db)
	testutils.CreateTestPost(db, author.ID,
		testutils.WithPostTitle("rho categorized"),
		testutils.WithPostCategory(postCat.ID))

	result, err = service.Search(context.Background(), SearchQuery{Q: "rho", Category: postCat.Slug})
	assert.NoError(t, err)
	assert.Equal(t, 0, result.Stats.ArticlesCount)
	assert.Equal(t, 1, result.Stats.PostsCount)
}
