/*
 * @Description:
 * @Author: 林远
 * @Date: 2025-09-15 09:31:20
 * @LastEditTime: 2026-04-19 22:01:13
 * @LastEditors: 林远
 */
// pkg/domain/repository/comment_repo.go
package repository

import (
	"context"
	"time"

	"github.com/linkfable/folio-app/pkg/domain/model"
)

// CreateCommentParams 是创建评论所需的全部字段。
type CreateCommentParams struct {
	ArticleID   uint
	ParentID    *uint
	Name        string
	Email       string
	EmailMD5    string
	Website     *string
	Content     string
	ContentHTML string
	IPAddress   string
	UserAgent   string
	Status      model.CommentStatus
}

// ModerateParams 是单条评论审核动作的参数。
type ModerateParams struct {
	Status      model.CommentStatus
	ModeratorID uint
	Note        *string
	ModeratedAt time.Time
}

// AdminCommentListParams 定义了管理员在后台查询评论列表时使用的参数。
type AdminCommentListParams struct {
	Page      int
	PageSize  int
	SortOrder string // asc / desc，按创建时间
	Status    *model.CommentStatus
	// Search 对评论内容、作者昵称、作者邮箱和所属文章标题做模糊匹配。
	Search *string
}

// CommentRepository 定义了评论数据的持久化操作接口。
type CommentRepository interface {
	// 创建一条新评论
	Create(ctx context.Context, params *CreateCommentParams) (*model.Comment, error)

	// 根据数据库ID查找单条评论，未找到时返回 (nil, nil)
	FindByID(ctx context.Context, id uint) (*model.Comment, error)

	// 在指定文章范围内查找单条评论，未找到时返回 (nil, nil)
	FindByArticleAndID(ctx context.Context, articleID, id uint) (*model.Comment, error)

	// 返回指定文章的全部评论（不分状态），按创建时间升序。
	// 状态过滤、排序方向与分页都在树构建器中完成。
	FindAllByArticle(ctx context.Context, articleID uint) ([]*model.Comment, error)

	// 审核单条评论：以一次原子 UPDATE 写入状态与审核人信息
	Moderate(ctx context.Context, id uint, params *ModerateParams) (*model.Comment, error)

	// HasChildren 检查是否存在以该评论为父评论的其他评论
	HasChildren(ctx context.Context, id uint) (bool, error)

	// 删除单条评论；当仍存在子回复时删除不生效并返回 false
	Delete(ctx context.Context, id uint) (bool, error)

	// --- 管理员方法 ---

	// 根据多种条件分页查询评论列表，返回整个过滤集的总数
	FindWithConditions(ctx context.Context, params *AdminCommentListParams) ([]*model.Comment, int64, error)

	// 各审核状态的评论数量
	StatusCounts(ctx context.Context) (map[model.CommentStatus]int64, error)

	// 自 since 起每天的新增评论数，按日期升序（没有评论的日期不返回）
	DailyCounts(ctx context.Context, since time.Time) ([]model.CommentDailyCount, error)

	// 批量统计多篇文章的已通过评论数量
	CountApprovedByArticleIDs(ctx context.Context, articleIDs []uint) (map[uint]int64, error)
}
