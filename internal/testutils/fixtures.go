package testutils

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	postModel "github.com/tsuki530/2023-tieba-bk/internal/model/post"
	userModel "github.com/tsuki530/2023-tieba-bk/internal/model/user"
	wikiModel "github.com/tsuki530/2023-tieba-bk/internal/model/wiki"
)

// CreateTestUser creates a test user with unique username/email
func CreateTestUser(db *gorm.DB, opts ...UserOption) *userModel.User {
	uniqueID := uuid.New().String()[:8]
	hash, _ := bcrypt.GenerateFromPassword([]byte("test-password"), bcrypt.MinCost)

	testUser := &userModel.User{
		Username:   fmt.Sprintf("test_user_%s", uniqueID),
		Email:      fmt.Sprintf("test_%s@example.com", uniqueID),
		Password:   string(hash),
		IsActive:   true,
		LastActive: time.Now(),
	}

	for _, opt := range opts {
		opt(testUser)
	}

	if err := db.Create(testUser).Error; err != nil {
		panic(fmt.Sprintf("Failed to create test user: %v", err))
	}

	return testUser
}

// UserOption configures test user
type UserOption func(*userModel.User)

// WithUsername sets the username
func WithUsername(username string) UserOption {
	return func(u *userModel.User) {
		u.Username = username
	}
}

// WithEmail sets the email
func WithEmail(email string) UserOption {
	return func(u *userModel.User) {
		u.Email = email
	}
}

// WithStaff marks the user as staff
func WithStaff() UserOption {
	return func(u *userModel.User) {
		u.IsStaff = true
	}
}

// WithInactive marks the user as deactivated
func WithInactive() UserOption {
	return func(u *userModel.User) {
		u.IsActive = false
	}
}

// CreateTestCategory creates a wiki category with a unique name/slug
func CreateTestCategory(db *gorm.DB, opts ...CategoryOption) *wikiModel.Category {
	uniqueID := uuid.New().String()[:8]

	testCategory := &wikiModel.Category{
		Name: fmt.Sprintf("test-category-%s", uniqueID),
		Slug: fmt.Sprintf("test-category-%s", uniqueID),
	}

	for _, opt := range opts {
		opt(testCategory)
	}

	if err := db.Create(testCategory).Error; err != nil {
		panic(fmt.Sprintf("Failed to create test category: %v", err))
	}

	return testCategory
}

// CategoryOption configures test category
type CategoryOption func(*wikiModel.Category)

// WithCategoryParent sets the parent category
func WithCategoryParent(parentID uint) CategoryOption {
	return func(c *wikiModel.Category) {
		c.ParentID = &parentID
	}
}

// CreateTestTag creates a wiki tag with a unique name/slug
func CreateTestTag(db *gorm.DB) *wikiModel.Tag {
	uniqueID := uuid.New().String()[:8]

	testTag := &wikiModel.Tag{
		Name: fmt.Sprintf("test-tag-%s", uniqueID),
		Slug: fmt.Sprintf("test-tag-%s", uniqueID),
	}

	if err := db.Create(testTag).Error; err != nil {
		panic(fmt.Sprintf("Failed to create test tag: %v", err))
	}

	return testTag
}

// CreateTestArticle creates a wiki article authored by the given user
func CreateTestArticle(db *gorm.DB, authorID uint, opts ...ArticleOption) *wikiModel.Article {
	uniqueID := uuid.New().String()[:8]
	now := time.Now()

	testArticle := &wikiModel.Article{
		Title:       fmt.Sprintf("Test Article %s", uniqueID),
		Slug:        fmt.Sprintf("test-article-%s", uniqueID),
		Content:     "Test article content",
		AuthorID:    authorID,
		Status:      wikiModel.StatusPublished,
		PublishedAt: &now,
	}

	for _, opt := range opts {
		opt(testArticle)
	}

	if err := db.Create(testArticle).Error; err != nil {
		panic(fmt.Sprintf("Failed to create test article: %v", err))
	}

	return testArticle
}

// ArticleOption configures test article
type ArticleOption func(*wikiModel.Article)

// WithArticleTitle sets the article title
func WithArticleTitle(title string) ArticleOption {
	return func(a *wikiModel.Article) {
		a.Title = title
	}
}

// WithArticleContent sets the article content
func WithArticleContent(content string) ArticleOption {
	return func(a *wikiModel.Article) {
		a.Content = content
	}
}

// WithArticleStatus sets the article status (clears published_at for drafts)
func WithArticleStatus(status string) ArticleOption {
	return func(a *wikiModel.Article) {
		a.Status = status
		if status != wikiModel.StatusPublished {
			a.PublishedAt = nil
		}
	}
}

// WithArticleCategory sets the article category
func WithArticleCategory(categoryID uint) ArticleOption {
	return func(a *wikiModel.Article) {
		a.CategoryID = &categoryID
	}
}

// CreateTestPostCategory creates a post category with a unique name/slug
func CreateTestPostCategory(db *gorm.DB) *postModel.Category {
	uniqueID := uuid.New().String()[:8]

	testCategory := &postModel.Category{
		Name: fmt.Sprintf("test-post-category-%s", uniqueID),
		Slug: fmt.Sprintf("test-post-category-%s", uniqueID),
	}

	if err := db.Create(testCategory).Error; err != nil {
		panic(fmt.Sprintf("Failed to create test post category: %v", err))
	}

	return testCategory
}

// CreateTestPost creates a community post authored by the given user
func CreateTestPost(db *gorm.DB, authorID uint, opts ...PostOption) *postModel.Post {
	uniqueID := uuid.New().String()[:8]
	now := time.Now()

	testPost := &postModel.Post{
		Title:       fmt.Sprintf("Test Post %s", uniqueID),
		Content:     "Test post content",
		AuthorID:    authorID,
		Status:      postModel.StatusPublished,
		PostType:    postModel.TypeDiscussion,
		IsApproved:  true,
		PublishedAt: &now,
	}

	for _, opt := range opts {
		opt(testPost)
	}

	if err := db.Create(testPost).Error; err != nil {
		panic(fmt.Sprintf("Failed to create test post: %v", err))
	}

	return testPost
}

// PostOption configures test post
type PostOption func(*postModel.Post)

// WithPostTitle sets the post title
func WithPostTitle(title string) PostOption {
	return func(p *postModel.Post) {
		p.Title = title
	}
}

// WithPostContent sets the post content
func WithPostContent(content string) PostOption {
	return func(p *postModel.Post) {
		p.Content = content
	}
}

// WithPostStatus sets the post status (clears published_at for drafts)
func WithPostStatus(status string) PostOption {
	return func(p *postModel.Post) {
		p.Status = status
		if status != postModel.StatusPublished {
			p.PublishedAt = nil
		}
	}
}

// WithPostType sets the post type
func WithPostType(postType string) PostOption {
	return func(p *postModel.Post) {
		p.PostType = postType
	}
}

// WithPostCategory sets the post category
func WithPostCategory(categoryID uint) PostOption {
	return func(p *postModel.Post) {
		p.CategoryID = &categoryID
	}
}
