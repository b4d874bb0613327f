/*
 * @Description:
 * @Author: 林远
 * @Date: 2025-09-14 16:22:31
 * @LastEditTime: 2026-04-19 21:35:48
 * @LastEditors: 林远
 */
// pkg/domain/model/comment.go
package model

import "time"

// CommentStatus 定义了评论的审核状态，使用字符串枚举对外保持可读。
type CommentStatus string

const (
	CommentStatusPending  CommentStatus = "pending"  // 待审核
	CommentStatusApproved CommentStatus = "approved" // 已通过，对公众可见
	CommentStatusRejected CommentStatus = "rejected" // 已拒绝，对公众隐藏
)

// IsValid 检查状态是否为三个合法值之一。
func (s CommentStatus) IsValid() bool {
	switch s {
	case CommentStatusPending, CommentStatusApproved, CommentStatusRejected:
		return true
	}
	return false
}

// Comment 是评论的核心领域模型。
// 评论归属于一篇文章，通过 ParentID 构成回复树。
type Comment struct {
	ID uint // 在领域内，我们使用数据库的 uint ID 作为其唯一标识。

	// --- 核心关联字段 ---
	ArticleID uint // 评论所属文章的数据库ID

	// --- 关系 ---
	ParentID *uint // 父评论ID，顶级评论为 nil

	// --- 评论者信息 ---
	Author CommentAuthor

	// --- 内容 ---
	Content     string // Markdown 原文
	ContentHTML string // 渲染后的安全 HTML

	// --- 审核元数据 ---
	Status        CommentStatus
	ModeratedBy   *uint      // 执行审核的管理员用户ID
	ModeratedAt   *time.Time // 审核时间
	ModeratorNote *string    // 审核备注

	CreatedAt time.Time
	UpdatedAt time.Time
}

// CommentAuthor 代表了评论的作者信息
type CommentAuthor struct {
	Name      string
	Email     string
	EmailMD5  string
	Website   *string
	IP        string
	UserAgent string
}

// --- 领域逻辑方法 ---

// IsApproved 检查评论是否已通过审核。只有通过审核的评论对公众可见。
func (c *Comment) IsApproved() bool {
	return c.Status == CommentStatusApproved
}

// IsTopLevel 检查是否为根评论。
func (c *Comment) IsTopLevel() bool {
	return c.ParentID == nil
}

// CommentStats 汇总了评论的审核状态分布和近期活跃度，仅用于后台观测。
type CommentStats struct {
	Total          int64               `json:"total"`
	Pending        int64               `json:"pending"`
	Approved       int64               `json:"approved"`
	Rejected       int64               `json:"rejected"`
	RecentActivity []CommentDailyCount `json:"recentActivity"`
}

// CommentDailyCount 是单日新增评论数。
type CommentDailyCount struct {
	Date  string `json:"date"` // YYYY-MM-DD
	Count int64  `json:"count"`
}
