package article

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"

	wikiModel "github.com/tsuki530/2023-tieba-bk/internal/model/wiki"
	"github.com/tsuki530/2023-tieba-bk/internal/tag"
	"github.com/tsuki530/2023-tieba-bk/internal/testutils"
)

func setupArticleService(t *testing.T) (*ArticleService, *gorm.DB) {
	db := testutils.SetupTestDB(t)
	service := NewArticleService(
		NewArticleRepository(db),
		NewVersionRepository(db),
		tag.NewTagRepository(db),
		nil, // redis 不可用时浏览量不去重，与生产降级路径一致
	)
	return service, db
}

func strPtr(s string) *string { return &s }

// TestUpdateArticle_VersionHistory 版本号必须连续且倒序返回，快照保存更新前内容
func TestUpdateArticle_VersionHistory(t *testing.T) {
	service, db := setupArticleService(t)
	author := testutils.CreateTestUser(db)

	created, err := service.CreateArticle(CreateArticleRequest{
		Title:   "版本测试文章",
		Content: "内容 v1",
		Status:  wikiModel.StatusPublished,
	}, author.ID)
	assert.Nil(t, err)

	contents := []string{"内容 v2", "内容 v3", "内容 v4"}
	for _, content := range contents {
		_, err = service.UpdateArticle(created.Slug, author.ID, false, UpdateArticleRequest{
			Content: strPtr(content),
		})
		assert.Nil(t, err)
	}

	versions, err := service.ListVersions(created.Slug)
	assert.Nil(t, err)
	assert.Len(t, versions, 3)

	// 倒序且连续: 3, 2, 1
	for i, v := range versions {
		assert.Equal(t, len(versions)-i, v.VersionNumber)
	}

	// 每个快照保存的是更新前的内容
	v1, err := service.GetVersion(created.Slug, 1)
	assert.Nil(t, err)
	assert.Equal(t, "内容 v1", v1.Content)

	v3, err := service.GetVersion(created.Slug, 3)
	assert.Nil(t, err)
	assert.Equal(t, "内容 v3", v3.Content)
}

// TestUpdateArticle_NoSnapshotWithoutContentChange 仅状态类字段变化不产生新版本
func TestUpdateArticle_NoSnapshotWithoutContentChange(t *testing.T) {
	service, db := setupArticleService(t)
	author := testutils.CreateTestUser(db)

	created, err := service.CreateArticle(CreateArticleRequest{
		Title:   "无快照测试",
		Content: "内容不变",
		Status:  wikiModel.StatusDraft,
	}, author.ID)
	assert.Nil(t, err)

	_, err = service.UpdateArticle(created.Slug, author.ID, false, UpdateArticleRequest{
		Status: strPtr(wikiModel.StatusPublished),
	})
	assert.Nil(t, err)

	versions, err := service.ListVersions(created.Slug)
	assert.Nil(t, err)
	assert.Len(t, versions, 0)
}

// TestCreateArticle_SlugDerivation slug 由标题生成、唯一、且创建后不再变化
func TestCreateArticle_SlugDerivation(t *testing.T) {
	service, db := setupArticleService(t)
	author := testutils.CreateTestUser(db)

	first, err := service.CreateArticle(CreateArticleRequest{
		Title:   "Slug Derivation Test",
		Content: "内容",
		Status:  wikiModel.StatusPublished,
	}, author.ID)
	assert.Nil(t, err)
	assert.Equal(t, "slug-derivation-test", first.Slug)

	// 同名文章获得带后缀的唯一 slug
	second, err := service.CreateArticle(CreateArticleRequest{
		Title:   "Slug Derivation Test",
		Content: "内容",
		Status:  wikiModel.StatusPublished,
	}, author.ID)
	assert.Nil(t, err)
	assert.NotEqual(t, first.Slug, second.Slug)

	// 改标题不改 slug
	updated, err := service.UpdateArticle(first.Slug, author.ID, false, UpdateArticleRequest{
		Title: strPtr("完全不同的新标题"),
	})
	assert.Nil(t, err)
	assert.Equal(t, first.Slug, updated.Slug)
}

// TestUpdateArticle_PublishedAtSetOnce published_at 首次发布写入后不再变化
func TestUpdateArticle_PublishedAtSetOnce(t *testing.T) {
	service, db := setupArticleService(t)
	author := testutils.CreateTestUser(db)

	created, err := service.CreateArticle(CreateArticleRequest{
		Title:   "发布时间测试",
		Content: "内容",
		Status:  wikiModel.StatusDraft,
	}, author.ID)
	assert.Nil(t, err)
	assert.Nil(t, created.PublishedAt)

	published, err := service.UpdateArticle(created.Slug, author.ID, false, UpdateArticleRequest{
		Status: strPtr(wikiModel.StatusPublished),
	})
	assert.Nil(t, err)
	assert.NotNil(t, published.PublishedAt)

	firstPublishedAt := *published.PublishedAt

	// 已发布状态下再做一次内容更新，published_at 不变
	again, err := service.UpdateArticle(created.Slug, author.ID, false, UpdateArticleRequest{
		Content: strPtr("更新后的内容"),
		Status:  strPtr(wikiModel.StatusPublished),
	})
	assert.Nil(t, err)
	assert.NotNil(t, again.PublishedAt)
	assert.True(t, firstPublishedAt.Equal(*again.PublishedAt))
}

// TestGetArticle_DraftVisibility 草稿仅作者和管理员可见
func TestGetArticle_DraftVisibility(t *testing.T) {
	service, db := setupArticleService(t)
	author := testutils.CreateTestUser(db)
	stranger := testutils.CreateTestUser(db)

	created, err := service.CreateArticle(CreateArticleRequest{
		Title:   "草稿可见性",
		Content: "内容",
		Status:  wikiModel.StatusDraft,
	}, author.ID)
	assert.Nil(t, err)

	_, err = service.GetArticle(created.Slug, stranger.ID, false, "")
	assert.ErrorIs(t, err, ErrArticleNotFound)

	_, err = service.GetArticle(created.Slug, author.ID, false, "")
	assert.Nil(t, err)

	_, err = service.GetArticle(created.Slug, stranger.ID, true, "")
	assert.Nil(t, err)
}

// TestUpdateArticle_Forbidden 非作者非管理员不能更新
func TestUpdateArticle_Forbidden(t *testing.T) {
	service, db := setupArticleService(t)
	author := testutils.CreateTestUser(db)
	stranger := testutils.CreateTestUser(db)

	created, err := service.CreateArticle(CreateArticleRequest{
		Title:   "权限测试",
		Content: "内容",
		Status:  wikiModel.StatusPublished,
	}, author.ID)
	assert.Nil(t, err)

	_, err = service.UpdateArticle(created.Slug, stranger.ID, false, UpdateArticleRequest{
		Content: strPtr("越权修改"),
	})
	assert.ErrorIs(t, err, ErrForbidden)
}

// TestDeleteArticle_Cascades 删除文章时版本、点赞、评论及标签关联一并删除
func TestDeleteArticle_Cascades(t *testing.T) {
	service, db := setupArticleService(t)
	engagement := NewEngagementService(NewArticleRepository(db), NewEngagementRepository(db))
	author := testutils.CreateTestUser(db)
	liker := testutils.CreateTestUser(db)

	created, err := service.CreateArticle(CreateArticleRequest{
		Title:   "级联删除文章",
		Content: "初始内容",
		Status:  wikiModel.StatusPublished,
	}, author.ID)
	assert.Nil(t, err)

	// 制造版本、点赞、两级评论、评论点赞和标签关联
	_, err = service.UpdateArticle(created.Slug, author.ID, false, UpdateArticleRequest{
		Content: strPtr("更新后内容"),
	})
	assert.Nil(t, err)
	_, err = engagement.ToggleLike(created.Slug, liker.ID)
	assert.Nil(t, err)
	root, err := engagement.CreateComment(created.Slug, liker.ID, CreateCommentRequest{Content: "顶级评论"})
	assert.Nil(t, err)
	reply, err := engagement.CreateComment(created.Slug, author.ID, CreateCommentRequest{
		Content:  "回复",
		ParentID: &root.ID,
	})
	assert.Nil(t, err)
	_, err = engagement.ToggleCommentLike(reply.ID, liker.ID)
	assert.Nil(t, err)
	tg := testutils.CreateTestTag(db)
	assert.Nil(t, db.Create(&wikiModel.ArticleTag{ArticleID: created.ID, TagID: tg.ID}).Error)

	assert.Nil(t, service.DeleteArticle(created.Slug, author.ID, false))

	var count int64
	db.Model(&wikiModel.ArticleVersion{}).Where("article_id = ?", created.ID).Count(&count)
	assert.Equal(t, int64(0), count)
	db.Model(&wikiModel.ArticleLike{}).Where("article_id = ?", created.ID).Count(&count)
	assert.Equal(t, int64(0), count)
	db.Model(&wikiModel.ArticleComment{}).Where("article_id = ?", created.ID).Count(&count)
	assert.Equal(t, int64(0), count)
	db.Model(&wikiModel.CommentLike{}).Where("comment_id IN ?", []uint{root.ID, reply.ID}).Count(&count)
	assert.Equal(t, int64(0), count)
	db.Model(&wikiModel.ArticleTag{}).Where("article_id = ?", created.ID).Count(&count)
	assert.Equal(t, int64(0), count)
}
