/*
 * @Description:
 * @Author: 林远
 * @Date: 2025-09-14 11:19:06
 * @LastEditTime: 2026-05-08 17:03:26
 * @LastEditors: 林远
 */
package model

import "time"

// 文章状态常量
const (
	ArticleStatusDraft     = "DRAFT"
	ArticleStatusPublished = "PUBLISHED"
	ArticleStatusScheduled = "SCHEDULED"
)

// --- 核心领域对象 (Domain Object) ---

// Article 是文章的核心领域模型，业务逻辑（Service层）围绕它进行。
type Article struct {
	ID           uint
	CreatedAt    time.Time
	UpdatedAt    time.Time
	Title        string
	Summary      string
	ContentMd    string
	ContentHTML  string
	CoverURL     string
	Categories   []string // 分类标签，驱动订阅推送的匹配过滤
	Status       string
	ViewCount    int
	CommentCount int

	// PublishedAt 在首次发布时设置，此后保持不变；
	// 是否首次发布由它是否为 nil 判定。
	PublishedAt *time.Time

	// ScheduledAt 定时发布时间，当状态为 SCHEDULED 时有效
	ScheduledAt *time.Time
}

// IsPublished 检查文章是否已发布。只有已发布的文章对公众可见、可评论、可推送。
func (a *Article) IsPublished() bool {
	return a.Status == ArticleStatusPublished
}

// --- API 数据传输对象 (Data Transfer Objects) ---

// CreateArticleRequest 定义了创建文章的请求体
type CreateArticleRequest struct {
	Title       string   `json:"title" binding:"required,max=255"`
	Summary     string   `json:"summary"`
	ContentMd   string   `json:"content_md"`
	CoverURL    string   `json:"cover_url"`
	Categories  []string `json:"categories"`
	Status      string   `json:"status" binding:"omitempty,oneof=DRAFT PUBLISHED SCHEDULED"`
	ScheduledAt *string  `json:"scheduled_at,omitempty"` // 定时发布时间 (RFC3339格式)
}

// UpdateArticleRequest 定义了更新文章的请求体
type UpdateArticleRequest struct {
	Title       *string  `json:"title" binding:"omitempty,max=255"`
	Summary     *string  `json:"summary"`
	ContentMd   *string  `json:"content_md"`
	CoverURL    *string  `json:"cover_url"`
	Categories  []string `json:"categories"`
	Status      *string  `json:"status" binding:"omitempty,oneof=DRAFT PUBLISHED SCHEDULED"`
	ScheduledAt *string  `json:"scheduled_at,omitempty"` // 设为空字符串则取消定时发布
}

// ArticleResponse 定义了文章信息的标准 API 响应结构
type ArticleResponse struct {
	ID           string     `json:"id"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	Title        string     `json:"title"`
	Summary      string     `json:"summary"`
	ContentMd    string     `json:"content_md,omitempty"`
	ContentHTML  string     `json:"content_html,omitempty"`
	CoverURL     string     `json:"cover_url"`
	Categories   []string   `json:"categories"`
	Status       string     `json:"status"`
	ViewCount    int        `json:"view_count"`
	CommentCount int        `json:"comment_count"`
	PublishedAt  *time.Time `json:"published_at,omitempty"`
	ScheduledAt  *time.Time `json:"scheduled_at,omitempty"`
}

// ArticleListResponse 定义了文章列表的 API 响应结构
type ArticleListResponse struct {
	List     []*ArticleResponse `json:"list"`
	Total    int64              `json:"total"`
	Page     int                `json:"page"`
	PageSize int                `json:"pageSize"`
}

// ListArticlesOptions 是仓储层文章列表查询的条件集合。
type ListArticlesOptions struct {
	Page        int
	PageSize    int
	Query       string // 用于模糊搜索标题
	Status      string // 按状态过滤，空值表示全部
	Category    string // 按分类过滤
	WithContent bool   // 是否在列表中包含正文
}
