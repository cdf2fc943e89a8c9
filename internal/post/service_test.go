package post

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"

	postModel "github.com/tsuki530/2023-tieba-bk/internal/model/post"
	"github.com/tsuki530/2023-tieba-bk/internal/testutils"
)

func setupPostService(t *testing.T) (*PostService, *gorm.DB) {
	db := testutils.SetupTestDB(t)
	return NewPostService(NewPostRepository(db), nil), db
}

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool    { return &b }

// TestUpdatePost_PublishedAtSetOnce published_at 首次发布写入一次后不再变化
func TestUpdatePost_PublishedAtSetOnce(t *testing.T) {
	service, db := setupPostService(t)
	author := testutils.CreateTestUser(db)

	created, err := service.CreatePost(CreatePostRequest{
		Title:   "发布时间测试",
		Content: "内容",
	}, author.ID)
	assert.Nil(t, err)
	assert.Equal(t, postModel.StatusDraft, created.Status)
	assert.Nil(t, created.PublishedAt)

	published, err := service.UpdatePost(created.ID, author.ID, false, UpdatePostRequest{
		Status: strPtr(postModel.StatusPublished),
	})
	assert.Nil(t, err)
	assert.NotNil(t, published.PublishedAt)

	firstPublishedAt := *published.PublishedAt

	again, err := service.UpdatePost(created.ID, author.ID, false, UpdatePostRequest{
		Content: strPtr("更新内容"),
		Status:  strPtr(postModel.StatusPublished),
	})
	assert.Nil(t, err)
	assert.True(t, firstPublishedAt.Equal(*again.PublishedAt))
}

// TestUpdatePost_ClosedAtSetOnce closed_at 首次关闭写入一次后不再变化
func TestUpdatePost_ClosedAtSetOnce(t *testing.T) {
	service, db := setupPostService(t)
	author := testutils.CreateTestUser(db)
	post := testutils.CreateTestPost(db, author.ID)

	closed, err := service.UpdatePost(post.ID, author.ID, false, UpdatePostRequest{
		Status: strPtr(postModel.StatusClosed),
	})
	assert.Nil(t, err)
	assert.NotNil(t, closed.ClosedAt)

	firstClosedAt := *closed.ClosedAt

	again, err := service.UpdatePost(post.ID, author.ID, false, UpdatePostRequest{
		Content: strPtr("关闭后修改内容"),
		Status:  strPtr(postModel.StatusClosed),
	})
	assert.Nil(t, err)
	assert.True(t, firstClosedAt.Equal(*again.ClosedAt))
}

// TestUpdatePost_PinnedStaffOnly 置顶/推荐仅管理员可改
func TestUpdatePost_PinnedStaffOnly(t *testing.T) {
	service, db := setupPostService(t)
	author := testutils.CreateTestUser(db)
	post := testutils.CreateTestPost(db, author.ID)

	_, err := service.UpdatePost(post.ID, author.ID, false, UpdatePostRequest{
		IsPinned: boolPtr(true),
	})
	assert.ErrorIs(t, err, ErrForbidden)

	updated, err := service.UpdatePost(post.ID, author.ID, true, UpdatePostRequest{
		IsPinned:   boolPtr(true),
		IsFeatured: boolPtr(true),
	})
	assert.Nil(t, err)
	assert.True(t, updated.IsPinned)
	assert.True(t, updated.IsFeatured)
}

// TestGetPost_DraftVisibility 草稿仅作者和管理员可见，已关闭帖子公开可读
func TestGetPost_DraftVisibility(t *testing.T) {
	service, db := setupPostService(t)
	author := testutils.CreateTestUser(db)
	stranger := testutils.CreateTestUser(db)

	draft := testutils.CreateTestPost(db, author.ID, testutils.WithPostStatus(postModel.StatusDraft))
	closed := testutils.CreateTestPost(db, author.ID, testutils.WithPostStatus(postModel.StatusClosed))

	_, err := service.GetPost(draft.ID, stranger.ID, false)
	assert.ErrorIs(t, err, ErrPostNotFound)

	_, err = service.GetPost(draft.ID, author.ID, false)
	assert.Nil(t, err)

	_, err = service.GetPost(closed.ID, 0, false)
	assert.Nil(t, err)
}

// TestRecordView_UnpublishedRejected 浏览上报只对已发布帖子生效
func TestRecordView_UnpublishedRejected(t *testing.T) {
	service, db := setupPostService(t)
	author := testutils.CreateTestUser(db)
	draft := testutils.CreateTestPost(db, author.ID, testutils.WithPostStatus(postModel.StatusDraft))
	published := testutils.CreateTestPost(db, author.ID)

	_, err := service.RecordView(draft.ID, "u1")
	assert.ErrorIs(t, err, ErrPostNotFound)

	// redis 不可用时不去重，每次上报都计数
	result, err := service.RecordView(published.ID, "u1")
	assert.Nil(t, err)
	assert.True(t, result.Counted)
	assert.Equal(t, uint(1), result.ViewsCount)
}

// TestStats 统计只覆盖已发布帖子并按类型分组
func TestStats(t *testing.T) {
	service, db := setupPostService(t)
	author := testutils.CreateTestUser(db)

	testutils.CreateTestPost(db, author.ID, testutils.WithPostType(postModel.TypeDiscussion))
	testutils.CreateTestPost(db, author.ID, testutils.WithPostType(postModel.TypeQuestion))
	testutils.CreateTestPost(db, author.ID, testutils.WithPostType(postModel.TypeQuestion))
	testutils.CreateTestPost(db, author.ID, testutils.WithPostStatus(postModel.StatusDraft))

	stats, err := service.Stats()
	assert.Nil(t, err)
	assert.Equal(t, int64(3), stats.TotalPosts)
	assert.Equal(t, int64(1), stats.PostsByType[postModel.TypeDiscussion])
	assert.Equal(t, int64(2), stats.PostsByType[postModel.TypeQuestion])
}

// TestDeletePost_Cascades 删除帖子时评论、点赞、分享、举报一并删除
func TestDeletePost_Cascades(t *testing.T) {
	service, db := setupPostService(t)
	engagement := NewEngagementService(NewPostRepository(db), NewEngagementRepository(db))
	author := testutils.CreateTestUser(db)
	other := testutils.CreateTestUser(db)
	post := testutils.CreateTestPost(db, author.ID)

	root, err := engagement.CreateComment(post.ID, other.ID, CreateCommentRequest{Content: "顶级评论"})
	assert.Nil(t, err)
	reply, err := engagement.CreateComment(post.ID, author.ID, CreateCommentRequest{
		Content:  "回复",
		ParentID: &root.ID,
	})
	assert.Nil(t, err)
	_, err = engagement.ToggleCommentLike(reply.ID, other.ID)
	assert.Nil(t, err)
	_, err = engagement.ToggleLike(post.ID, other.ID)
	assert.Nil(t, err)
	_, err = engagement.SharePost(post.ID, other.ID, ShareRequest{SharedTo: postModel.SharedToTimeline})
	assert.Nil(t, err)
	_, err = engagement.CreateReport(other.ID, CreateReportRequest{PostID: &post.ID, ReportType: "spam"})
	assert.Nil(t, err)
	_, err = engagement.CreateReport(author.ID, CreateReportRequest{CommentID: &reply.ID, ReportType: "spam"})
	assert.Nil(t, err)

	assert.Nil(t, service.DeletePost(post.ID, author.ID, false))

	var count int64
	db.Model(&postModel.PostComment{}).Where("post_id = ?", post.ID).Count(&count)
	assert.Equal(t, int64(0), count)
	db.Model(&postModel.PostLike{}).Where("post_id = ?", post.ID).Count(&count)
	assert.Equal(t, int64(0), count)
	db.Model(&postModel.PostShare{}).Where("post_id = ?", post.ID).Count(&count)
	assert.Equal(t, int64(0), count)
	db.Model(&postModel.PostReport{}).
		Where("post_id = ? OR comment_id IN ?", post.ID, []uint{root.ID, reply.ID}).Count(&count)
	assert.Equal(t, int64(0), count)
	db.Model(&postModel.CommentLike{}).Where("comment_id IN ?", []uint{root.ID, reply.ID}).Count(&count)
	assert.Equal(t, int64(0), count)
}
