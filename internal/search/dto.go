package search

import "time"

// SearchQuery 搜索请求参数
type SearchQuery struct {
	Q        string `form:"q" binding:"required,min=1,max=200"`
	Type     string `form:"type" binding:"omitempty,oneof=all articles posts users categories tags"`
	Category string `form:"category" binding:"omitempty,max=50"`
	Tag      string `form:"tag" binding:"omitempty,max=50"`
	Author   string `form:"author" binding:"omitempty,max=50"`
	SortBy   string `form:"sort_by" binding:"omitempty,oneof=relevance date views likes"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// SearchResult 跨类型统一的搜索结果条目
type SearchResult struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Content    string    `json:"content"`
	Type       string    `json:"type"`
	URL        string    `json:"url"`
	CreatedAt  time.Time `json:"created_at"`
	ViewsCount uint      `json:"views_count"`
	LikesCount uint      `json:"likes_count"`
}

// TypeStats 各类型命中数
type TypeStats struct {
	ArticlesCount   int `json:"articles_count"`
	PostsCount      int `json:"posts_count"`
	UsersCount      int `json:"users_count"`
	CategoriesCount int `json:"categories_count"`
	TagsCount       int `json:"tags_count"`
}

// SearchResponse 搜索响应
type SearchResponse struct {
	Results      []SearchResult `json:"results"`
	TotalResults int            `json:"total_results"`
	SearchTime   float64        `json:"search_time"`
	Query        string         `json:"query"`
	Stats        TypeStats      `json:"stats"`
	Page         int            `json:"page"`
	PageSize     int            `json:"page_size"`
}

// AutocompleteItem 自动补全条目
type AutocompleteItem struct {
	ID   string `json:"id"`
	Text string `json:"text"`
	Type string `json:"type"`
	URL  string `json:"url"`
}

// StatsResponse 全站内容统计
type StatsResponse struct {
	TotalArticles   int64 `json:"total_articles"`
	TotalPosts      int64 `json:"total_posts"`
	TotalUsers      int64 `json:"total_users"`
	TotalCategories int64 `json:"total_categories"`
	TotalTags       int64 `json:"total_tags"`
}

// FilterOption 过滤项
type FilterOption struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// SortOption 排序选项
type SortOption struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// FiltersResponse 可用过滤条件
type FiltersResponse struct {
	Categories     []FilterOption `json:"categories"`
	Tags           []FilterOption `json:"tags"`
	PostCategories []FilterOption `json:"post_categories"`
	SortOptions    []SortOption   `json:"sort_options"`
	TypeOptions    []SortOption   `json:"type_options"`
}
