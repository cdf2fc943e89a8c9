package post

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"

	postModel "github.com/tsuki530/2023-tieba-bk/internal/model/post"
	"github.com/tsuki530/2023-tieba-bk/internal/testutils"
)

func setupPostEngagement(t *testing.T) (*EngagementService, *gorm.DB) {
	db := testutils.SetupTestDB(t)
	return NewEngagementService(NewPostRepository(db), NewEngagementRepository(db)), db
}

// TestCreateComment_ClosedPost 已关闭的帖子不接受新评论
func TestCreateComment_ClosedPost(t *testing.T) {
	service, db := setupPostEngagement(t)
	author := testutils.CreateTestUser(db)
	commenter := testutils.CreateTestUser(db)
	closed := testutils.CreateTestPost(db, author.ID, testutils.WithPostStatus(postModel.StatusClosed))

	_, err := service.CreateComment(closed.ID, commenter.ID, CreateCommentRequest{
		Content: "关闭后评论",
	})
	assert.ErrorIs(t, err, ErrPostClosed)
}

// TestSharePost 分享在同一事务内自增 shares_count
func TestSharePost(t *testing.T) {
	service, db := setupPostEngagement(t)
	author := testutils.CreateTestUser(db)
	sharer := testutils.CreateTestUser(db)
	post := testutils.CreateTestPost(db, author.ID)

	share, err := service.SharePost(post.ID, sharer.ID, ShareRequest{
		SharedTo: postModel.SharedToTimeline,
		Message:  "分享一下",
	})
	assert.Nil(t, err)
	assert.Equal(t, post.ID, share.PostID)

	var refreshed postModel.Post
	assert.Nil(t, db.First(&refreshed, post.ID).Error)
	assert.Equal(t, uint(1), refreshed.SharesCount)

	shares, err := service.ListShares(post.ID)
	assert.Nil(t, err)
	assert.Len(t, shares, 1)
}

// TestCreateReport_ExactlyOneTarget 举报必须且只能指定帖子或评论之一
func TestCreateReport_ExactlyOneTarget(t *testing.T) {
	service, db := setupPostEngagement(t)
	author := testutils.CreateTestUser(db)
	reporter := testutils.CreateTestUser(db)
	post := testutils.CreateTestPost(db, author.ID)

	comment, err := service.CreateComment(post.ID, author.ID, CreateCommentRequest{
		Content: "被举报的评论",
	})
	assert.Nil(t, err)

	// 两个目标都传
	_, err = service.CreateReport(reporter.ID, CreateReportRequest{
		PostID:     &post.ID,
		CommentID:  &comment.ID,
		ReportType: "spam",
	})
	assert.ErrorIs(t, err, ErrInvalidReport)

	// 两个目标都不传
	_, err = service.CreateReport(reporter.ID, CreateReportRequest{
		ReportType: "spam",
	})
	assert.ErrorIs(t, err, ErrInvalidReport)

	// 恰好一个目标：帖子
	report, err := service.CreateReport(reporter.ID, CreateReportRequest{
		PostID:     &post.ID,
		ReportType: "spam",
	})
	assert.Nil(t, err)
	assert.NotNil(t, report.PostID)

	var refreshedPost postModel.Post
	assert.Nil(t, db.First(&refreshedPost, post.ID).Error)
	assert.Equal(t, uint(1), refreshedPost.ReportedCount)

	// 恰好一个目标：评论
	_, err = service.CreateReport(reporter.ID, CreateReportRequest{
		CommentID:  &comment.ID,
		ReportType: "harassment",
	})
	assert.Nil(t, err)

	var refreshedComment postModel.PostComment
	assert.Nil(t, db.First(&refreshedComment, comment.ID).Error)
	assert.Equal(t, uint(1), refreshedComment.ReportedCount)
}

// TestListReports_Visibility 普通用户只能看到自己的举报，管理员看到全部
func TestListReports_Visibility(t *testing.T) {
	service, db := setupPostEngagement(t)
	author := testutils.CreateTestUser(db)
	first := testutils.CreateTestUser(db)
	second := testutils.CreateTestUser(db)
	post := testutils.CreateTestPost(db, author.ID)

	_, err := service.CreateReport(first.ID, CreateReportRequest{
		PostID:     &post.ID,
		ReportType: "spam",
	})
	assert.Nil(t, err)
	_, err = service.CreateReport(second.ID, CreateReportRequest{
		PostID:     &post.ID,
		ReportType: "other",
	})
	assert.Nil(t, err)

	own, total, err := service.ListReports(first.ID, false, "", 1, 20)
	assert.Nil(t, err)
	assert.Equal(t, int64(1), total)
	assert.Len(t, own, 1)
	assert.Equal(t, first.ID, own[0].ReporterID)

	all, total, err := service.ListReports(first.ID, true, "", 1, 20)
	assert.Nil(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, all, 2)
}

// TestReviewReport 管理员更新举报状态与处理备注
func TestReviewReport(t *testing.T) {
	service, db := setupPostEngagement(t)
	author := testutils.CreateTestUser(db)
	reporter := testutils.CreateTestUser(db)
	post := testutils.CreateTestPost(db, author.ID)

	report, err := service.CreateReport(reporter.ID, CreateReportRequest{
		PostID:     &post.ID,
		ReportType: "spam",
	})
	assert.Nil(t, err)
	assert.Equal(t, postModel.ReportPending, report.Status)

	reviewed, err := service.ReviewReport(report.ID, ReviewReportRequest{
		Status:         postModel.ReportResolved,
		ModeratorNotes: "已处理",
	})
	assert.Nil(t, err)
	assert.Equal(t, postModel.ReportResolved, reviewed.Status)
	assert.Equal(t, "已处理", reviewed.ModeratorNotes)

	_, err = service.ReviewReport(99999, ReviewReportRequest{Status: postModel.ReportDismissed})
	assert.ErrorIs(t, err, ErrReportNotFound)
}

// TestDeleteComment_RemovesNestedReplies 删除顶级评论时多层回复及其点赞、举报一并删除
func TestDeleteComment_RemovesNestedReplies(t *testing.T) {
	service, db := setupPostEngagement(t)
	author := testutils.CreateTestUser(db)
	post := testutils.CreateTestPost(db, author.ID)

	root, err := service.CreateComment(post.ID, author.ID, CreateCommentRequest{Content: "顶级"})
	assert.Nil(t, err)
	reply, err := service.CreateComment(post.ID, author.ID, CreateCommentRequest{
		Content:  "一层回复",
		ParentID: &root.ID,
	})
	assert.Nil(t, err)
	nested, err := service.CreateComment(post.ID, author.ID, CreateCommentRequest{
		Content:  "二层回复",
		ParentID: &reply.ID,
	})
	assert.Nil(t, err)
	_, err = service.ToggleCommentLike(nested.ID, author.ID)
	assert.Nil(t, err)
	_, err = service.CreateReport(author.ID, CreateReportRequest{CommentID: &nested.ID, ReportType: "spam"})
	assert.Nil(t, err)

	assert.Nil(t, service.DeleteComment(root.ID, author.ID, false))

	var commentRows int64
	db.Model(&postModel.PostComment{}).Where("post_id = ?", post.ID).Count(&commentRows)
	assert.Equal(t, int64(0), commentRows)

	var likeRows int64
	db.Model(&postModel.CommentLike{}).Where("comment_id = ?", nested.ID).Count(&likeRows)
	assert.Equal(t, int64(0), likeRows)

	var reportRows int64
	db.Model(&postModel.PostReport{}).Where("comment_id = ?", nested.ID).Count(&reportRows)
	assert.Equal(t, int64(0), reportRows)

	var refreshed postModel.Post
	assert.Nil(t, db.First(&refreshed, post.ID).Error)
	assert.Equal(t, uint(0), refreshed.CommentsCount)
}

// TestRemoveLike_NoRowNoDecrement 删不到点赞行时不扣减计数
func TestRemoveLike_NoRowNoDecrement(t *testing.T) {
	_, db := setupPostEngagement(t)
	author := testutils.CreateTestUser(db)
	stranger := testutils.CreateTestUser(db)
	post := testutils.CreateTestPost(db, author.ID)

	assert.Nil(t, db.Model(&postModel.Post{}).Where("id = ?", post.ID).
		UpdateColumn("likes_count", 2).Error)

	removed, err := removeLike(db, post.ID, stranger.ID)
	assert.Nil(t, err)
	assert.False(t, removed)

	var refreshed postModel.Post
	assert.Nil(t, db.First(&refreshed, post.ID).Error)
	assert.Equal(t, uint(2), refreshed.LikesCount)
}
