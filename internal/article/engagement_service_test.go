package article

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"

	wikiModel "github.com/tsuki530/2023-tieba-bk/internal/model/wiki"
	"github.com/tsuki530/2023-tieba-bk/internal/testutils"
)

func setupEngagementService(t *testing.T) (*EngagementService, *gorm.DB) {
	db := testutils.SetupTestDB(t)
	service := NewEngagementService(NewArticleRepository(db), NewEngagementRepository(db))
	return service, db
}

// TestToggleLike 点赞/取消点赞往返后计数与点赞行归零
func TestToggleLike(t *testing.T) {
	service, db := setupEngagementService(t)
	author := testutils.CreateTestUser(db)
	liker := testutils.CreateTestUser(db)
	article := testutils.CreateTestArticle(db, author.ID)

	// 点赞
	result, err := service.ToggleLike(article.Slug, liker.ID)
	assert.Nil(t, err)
	assert.True(t, result.Liked)
	assert.Equal(t, uint(1), result.LikesCount)

	// 取消点赞
	result, err = service.ToggleLike(article.Slug, liker.ID)
	assert.Nil(t, err)
	assert.False(t, result.Liked)
	assert.Equal(t, uint(0), result.LikesCount)

	var likeRows int64
	db.Model(&wikiModel.ArticleLike{}).Where("article_id = ?", article.ID).Count(&likeRows)
	assert.Equal(t, int64(0), likeRows)
}

// TestToggleLike_DistinctUsers N个不同用户点赞计数恰好加N
func TestToggleLike_DistinctUsers(t *testing.T) {
	service, db := setupEngagementService(t)
	author := testutils.CreateTestUser(db)
	article := testutils.CreateTestArticle(db, author.ID)

	const likers = 5
	for i := 0; i < likers; i++ {
		liker := testutils.CreateTestUser(db)
		result, err := service.ToggleLike(article.Slug, liker.ID)
		assert.Nil(t, err)
		assert.True(t, result.Liked)
	}

	var refreshed wikiModel.Article
	assert.Nil(t, db.First(&refreshed, article.ID).Error)
	assert.Equal(t, uint(likers), refreshed.LikesCount)
}

// TestDeleteComment_CounterDecrement 删除评论级联直接回复并按实际删除数递减
func TestDeleteComment_CounterDecrement(t *testing.T) {
	service, db := setupEngagementService(t)
	author := testutils.CreateTestUser(db)
	commenter := testutils.CreateTestUser(db)
	article := testutils.CreateTestArticle(db, author.ID)

	parent, err := service.CreateComment(article.Slug, commenter.ID, CreateCommentRequest{
		Content: "顶级评论",
	})
	assert.Nil(t, err)

	_, err = service.CreateComment(article.Slug, commenter.ID, CreateCommentRequest{
		Content:  "回复",
		ParentID: &parent.ID,
	})
	assert.Nil(t, err)

	var refreshed wikiModel.Article
	assert.Nil(t, db.First(&refreshed, article.ID).Error)
	assert.Equal(t, uint(2), refreshed.CommentsCount)

	// 删除顶级评论，回复一并删除，计数减2
	err = service.DeleteComment(parent.ID, commenter.ID, false)
	assert.Nil(t, err)

	assert.Nil(t, db.First(&refreshed, article.ID).Error)
	assert.Equal(t, uint(0), refreshed.CommentsCount)

	var commentRows int64
	db.Model(&wikiModel.ArticleComment{}).Where("article_id = ?", article.ID).Count(&commentRows)
	assert.Equal(t, int64(0), commentRows)
}

// TestDeleteComment_CounterClamp 计数被外部清零后删除不会下溢
func TestDeleteComment_CounterClamp(t *testing.T) {
	service, db := setupEngagementService(t)
	author := testutils.CreateTestUser(db)
	commenter := testutils.CreateTestUser(db)
	article := testutils.CreateTestArticle(db, author.ID)

	comment, err := service.CreateComment(article.Slug, commenter.ID, CreateCommentRequest{
		Content: "将被删除",
	})
	assert.Nil(t, err)

	// 人为清零计数模拟计数漂移
	assert.Nil(t, db.Model(&wikiModel.Article{}).Where("id = ?", article.ID).
		UpdateColumn("comments_count", 0).Error)

	err = service.DeleteComment(comment.ID, commenter.ID, false)
	assert.Nil(t, err)

	var refreshed wikiModel.Article
	assert.Nil(t, db.First(&refreshed, article.ID).Error)
	assert.Equal(t, uint(0), refreshed.CommentsCount)
}

// TestListComments_OneLevelNesting 对回复的回复在读取时挂到顶级评论下
func TestListComments_OneLevelNesting(t *testing.T) {
	service, db := setupEngagementService(t)
	author := testutils.CreateTestUser(db)
	commenter := testutils.CreateTestUser(db)
	article := testutils.CreateTestArticle(db, author.ID)

	top, err := service.CreateComment(article.Slug, commenter.ID, CreateCommentRequest{
		Content: "顶级",
	})
	assert.Nil(t, err)

	reply, err := service.CreateComment(article.Slug, commenter.ID, CreateCommentRequest{
		Content:  "一级回复",
		ParentID: &top.ID,
	})
	assert.Nil(t, err)

	_, err = service.CreateComment(article.Slug, commenter.ID, CreateCommentRequest{
		Content:  "对回复的回复",
		ParentID: &reply.ID,
	})
	assert.Nil(t, err)

	comments, err := service.ListComments(article.Slug, 0)
	assert.Nil(t, err)
	assert.Len(t, comments, 1)
	assert.Equal(t, top.ID, comments[0].ID)
	// 两条回复都挂在顶级评论下
	assert.Len(t, comments[0].Replies, 2)
}

// TestCreateComment_CrossArticleParent 父评论必须属于同一篇文章
func TestCreateComment_CrossArticleParent(t *testing.T) {
	service, db := setupEngagementService(t)
	author := testutils.CreateTestUser(db)
	commenter := testutils.CreateTestUser(db)
	first := testutils.CreateTestArticle(db, author.ID)
	second := testutils.CreateTestArticle(db, author.ID)

	parent, err := service.CreateComment(first.Slug, commenter.ID, CreateCommentRequest{
		Content: "第一篇的评论",
	})
	assert.Nil(t, err)

	_, err = service.CreateComment(second.Slug, commenter.ID, CreateCommentRequest{
		Content:  "跨文章回复",
		ParentID: &parent.ID,
	})
	assert.ErrorIs(t, err, ErrInvalidParentID)
}

// TestDeleteComment_RemovesNestedReplies 删除顶级评论时多层回复及其点赞一并删除
func TestDeleteComment_RemovesNestedReplies(t *testing.T) {
	service, db := setupEngagementService(t)
	author := testutils.CreateTestUser(db)
	article := testutils.CreateTestArticle(db, author.ID)

	root, err := service.CreateComment(article.Slug, author.ID, CreateCommentRequest{Content: "顶级"})
	assert.Nil(t, err)
	reply, err := service.CreateComment(article.Slug, author.ID, CreateCommentRequest{
		Content:  "一层回复",
		ParentID: &root.ID,
	})
	assert.Nil(t, err)
	nested, err := service.CreateComment(article.Slug, author.ID, CreateCommentRequest{
		Content:  "二层回复",
		ParentID: &reply.ID,
	})
	assert.Nil(t, err)
	_, err = service.ToggleCommentLike(nested.ID, author.ID)
	assert.Nil(t, err)

	assert.Nil(t, service.DeleteComment(root.ID, author.ID, false))

	var commentRows int64
	db.Model(&wikiModel.ArticleComment{}).Where("article_id = ?", article.ID).Count(&commentRows)
	assert.Equal(t, int64(0), commentRows)

	var likeRows int64
	db.Model(&wikiModel.CommentLike{}).Where("comment_id = ?", nested.ID).Count(&likeRows)
	assert.Equal(t, int64(0), likeRows)

	var refreshed wikiModel.Article
	assert.Nil(t, db.First(&refreshed, article.ID).Error)
	assert.Equal(t, uint(0), refreshed.CommentsCount)
}

// TestRemoveLike_NoRowNoDecrement 删不到点赞行时不扣减计数
func TestRemoveLike_NoRowNoDecrement(t *testing.T) {
	_, db := setupEngagementService(t)
	author := testutils.CreateTestUser(db)
	stranger := testutils.CreateTestUser(db)
	article := testutils.CreateTestArticle(db, author.ID)

	assert.Nil(t, db.Model(&wikiModel.Article{}).Where("id = ?", article.ID).
		UpdateColumn("likes_count", 2).Error)

	removed, err := removeLike(db, article.ID, stranger.ID)
	assert.Nil(t, err)
	assert.False(t, removed)

	var refreshed wikiModel.Article
	assert.Nil(t, db.First(&refreshed, article.ID).Error)
	assert.Equal(t, uint(2), refreshed.LikesCount)
}

// TestRemoveCommentLike_NoRowNoDecrement 同上，作用于评论点赞
func TestRemoveCommentLike_NoRowNoDecrement(t *testing.T) {
	service, db := setupEngagementService(t)
	author := testutils.CreateTestUser(db)
	article := testutils.CreateTestArticle(db, author.ID)

	comment, err := service.CreateComment(article.Slug, author.ID, CreateCommentRequest{Content: "评论"})
	assert.Nil(t, err)
	assert.Nil(t, db.Model(&wikiModel.ArticleComment{}).Where("id = ?", comment.ID).
		UpdateColumn("likes_count", 3).Error)

	removed, err := removeCommentLike(db, comment.ID, author.ID)
	assert.Nil(t, err)
	assert.False(t, removed)

	var refreshed wikiModel.ArticleComment
	assert.Nil(t, db.First(&refreshed, comment.ID).Error)
	assert.Equal(t, uint(3), refreshed.LikesCount)
}
