/*
 * @Description: 评论仓储的 PostgreSQL 实现
 * @Author: 林远
 * @Date: 2025-09-14 15:08:56
 * @LastEditTime: 2026-06-20 10:31:27
 * @LastEditors: 林远
 */
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/linkfable/folio-app/internal/pkg/types"
	"github.com/linkfable/folio-app/pkg/domain/model"
	"github.com/linkfable/folio-app/pkg/domain/repository"
)

// commentRepository 是 CommentRepository 接口的 PostgreSQL 实现
type commentRepository struct {
	db *sql.DB
}

// NewCommentRepository 是 commentRepository 的构造函数
func NewCommentRepository(db *sql.DB) repository.CommentRepository {
	return &commentRepository{
		db: db,
	}
}

const commentColumns = `
	c.id, c.created_at, c.updated_at, c.article_id, c.parent_id,
	c.author_name, c.author_email, c.author_email_md5, c.author_website,
	c.author_ip, c.author_user_agent, c.content, c.content_html, c.status,
	c.moderated_by, c.moderated_at, c.moderator_note
`

// RETURNING 子句中不能带表别名，这里用一份无前缀的列清单
const commentColumnsBare = `
	id, created_at, updated_at, article_id, parent_id,
	author_name, author_email, author_email_md5, author_website,
	author_ip, author_user_agent, content, content_html, status,
	moderated_by, moderated_at, moderator_note
`

// scanComment 从一行中扫描出评论领域模型
func scanComment(row interface{ Scan(...interface{}) error }) (*model.Comment, error) {
	c := &model.Comment{}
	var parentID, moderatedBy types.NullUint64
	var website, note sql.NullString
	var moderatedAt sql.NullTime
	err := row.Scan(
		&c.ID, &c.CreatedAt, &c.UpdatedAt, &c.ArticleID, &parentID,
		&c.Author.Name, &c.Author.Email, &c.Author.EmailMD5, &website,
		&c.Author.IP, &c.Author.UserAgent, &c.Content, &c.ContentHTML, &c.Status,
		&moderatedBy, &moderatedAt, &note,
	)
	if err != nil {
		return nil, err
	}
	c.ParentID = types.PtrFromNullUint64(parentID)
	c.ModeratedBy = types.PtrFromNullUint64(moderatedBy)
	if website.Valid {
		c.Author.Website = &website.String
	}
	if moderatedAt.Valid {
		c.ModeratedAt = &moderatedAt.Time
	}
	if note.Valid {
		c.ModeratorNote = &note.String
	}
	return c, nil
}

// Create 创建一条新评论并返回完整的领域模型
func (r *commentRepository) Create(ctx context.Context, params *repository.CreateCommentParams) (*model.Comment, error) {
	var website interface{}
	if params.Website != nil {
		website = *params.Website
	}
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO comments
			(article_id, parent_id, author_name, author_email, author_email_md5,
			 author_website, author_ip, author_user_agent, content, content_html, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING `+commentColumnsBare+`
	`, params.ArticleID, types.PtrToNullUint64(params.ParentID), params.Name, params.Email, params.EmailMD5,
		website, params.IPAddress, params.UserAgent, params.Content, params.ContentHTML, params.Status)

	c, err := scanComment(row)
	if err != nil {
		return nil, fmt.Errorf("创建评论失败: %w", err)
	}
	return c, nil
}

// FindByID 根据主键查找评论，未命中时返回 (nil, nil)
func (r *commentRepository) FindByID(ctx context.Context, id uint) (*model.Comment, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+commentColumns+`
		FROM comments c
		WHERE c.id = $1
	`, id)
	c, err := scanComment(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("按ID查询评论失败: %w", err)
	}
	return c, nil
}

// FindByArticleAndID 在指定文章范围内查找评论，未命中时返回 (nil, nil)
func (r *commentRepository) FindByArticleAndID(ctx context.Context, articleID, id uint) (*model.Comment, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+commentColumns+`
		FROM comments c
		WHERE c.id = $1 AND c.article_id = $2
	`, id, articleID)
	c, err := scanComment(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("按文章和ID查询评论失败: %w", err)
	}
	return c, nil
}

// FindAllByArticle 返回指定文章的全部评论（不分状态），按创建时间升序
func (r *commentRepository) FindAllByArticle(ctx context.Context, articleID uint) ([]*model.Comment, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+commentColumns+`
		FROM comments c
		WHERE c.article_id = $1
		ORDER BY c.created_at ASC, c.id ASC
	`, articleID)
	if err != nil {
		return nil, fmt.Errorf("查询文章评论失败: %w", err)
	}
	defer rows.Close()

	var comments []*model.Comment
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, fmt.Errorf("扫描评论行失败: %w", err)
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}

// Moderate 以一次原子 UPDATE 写入审核状态与审核人信息。
// 目标评论不存在时返回 (nil, nil)。
func (r *commentRepository) Moderate(ctx context.Context, id uint, params *repository.ModerateParams) (*model.Comment, error) {
	var note interface{}
	if params.Note != nil {
		note = *params.Note
	}
	row := r.db.QueryRowContext(ctx, `
		UPDATE comments SET
			status = $1, moderated_by = $2, moderated_at = $3,
			moderator_note = $4, updated_at = now()
		WHERE id = $5
		RETURNING `+commentColumnsBare+`
	`, params.Status, params.ModeratorID, params.ModeratedAt, note, id)

	c, err := scanComment(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("审核评论失败: %w", err)
	}
	return c, nil
}

// HasChildren 检查是否存在以该评论为父评论的其他评论
func (r *commentRepository) HasChildren(ctx context.Context, id uint) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `
		SELECT EXISTS (SELECT 1 FROM comments WHERE parent_id = $1)
	`, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("检查子评论失败: %w", err)
	}
	return exists, nil
}

// Delete 删除单条评论。
// 删除条件里内嵌了子回复检查，存在子回复时删除不生效并返回 false，
// 避免“检查-删除”两步之间并发插入子回复造成孤儿。
func (r *commentRepository) Delete(ctx context.Context, id uint) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		DELETE FROM comments
		WHERE id = $1
		  AND NOT EXISTS (SELECT 1 FROM comments c2 WHERE c2.parent_id = $1)
	`, id)
	if err != nil {
		return false, fmt.Errorf("删除评论失败: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("读取删除结果失败: %w", err)
	}
	return affected > 0, nil
}

// FindWithConditions 根据多种条件分页查询评论列表，返回整个过滤集的总数。
// 搜索会联查文章表，以支持按文章标题检索。
func (r *commentRepository) FindWithConditions(ctx context.Context, params *repository.AdminCommentListParams) ([]*model.Comment, int64, error) {
	where := " WHERE 1=1"
	args := []interface{}{}
	idx := 1

	if params.Status != nil {
		where += fmt.Sprintf(" AND c.status = $%d", idx)
		args = append(args, *params.Status)
		idx++
	}
	if params.Search != nil && *params.Search != "" {
		where += fmt.Sprintf(" AND (c.content ILIKE $%d OR c.author_name ILIKE $%d OR c.author_email ILIKE $%d OR a.title ILIKE $%d)", idx, idx, idx, idx)
		args = append(args, "%"+*params.Search+"%")
		idx++
	}

	from := ` FROM comments c JOIN articles a ON a.id = c.article_id`

	var total int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*)`+from+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("统计评论总数失败: %w", err)
	}

	// 排序方向只接受白名单值，防止拼接注入
	order := "DESC"
	if params.SortOrder == "asc" {
		order = "ASC"
	}

	query := `SELECT ` + commentColumns + from + where +
		fmt.Sprintf(" ORDER BY c.created_at %s, c.id %s LIMIT $%d OFFSET $%d", order, order, idx, idx+1)
	args = append(args, params.PageSize, (params.Page-1)*params.PageSize)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("查询评论列表失败: %w", err)
	}
	defer rows.Close()

	var comments []*model.Comment
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("扫描评论行失败: %w", err)
		}
		comments = append(comments, c)
	}
	return comments, total, rows.Err()
}

// StatusCounts 返回各审核状态的评论数量
func (r *commentRepository) StatusCounts(ctx context.Context) (map[model.CommentStatus]int64, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT status, COUNT(*) FROM comments GROUP BY status
	`)
	if err != nil {
		return nil, fmt.Errorf("统计评论状态失败: %w", err)
	}
	defer rows.Close()

	counts := make(map[model.CommentStatus]int64)
	for rows.Next() {
		var status model.CommentStatus
		var count int64
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("扫描状态统计行失败: %w", err)
		}
		counts[status] = count
	}
	return counts, rows.Err()
}

// DailyCounts 返回自 since 起每天的新增评论数，按日期升序。
// 日期按东八区归并，与前台展示的时区保持一致。
func (r *commentRepository) DailyCounts(ctx context.Context, since time.Time) ([]model.CommentDailyCount, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT to_char(created_at AT TIME ZONE 'Asia/Shanghai', 'YYYY-MM-DD') AS day, COUNT(*)
		FROM comments
		WHERE created_at >= $1
		GROUP BY day
		ORDER BY day
	`, since)
	if err != nil {
		return nil, fmt.Errorf("统计每日评论数失败: %w", err)
	}
	defer rows.Close()

	var counts []model.CommentDailyCount
	for rows.Next() {
		var dc model.CommentDailyCount
		if err := rows.Scan(&dc.Date, &dc.Count); err != nil {
			return nil, fmt.Errorf("扫描每日统计行失败: %w", err)
		}
		counts = append(counts, dc)
	}
	return counts, rows.Err()
}

// CountApprovedByArticleIDs 批量统计多篇文章的已通过评论数量
func (r *commentRepository) CountApprovedByArticleIDs(ctx context.Context, articleIDs []uint) (map[uint]int64, error) {
	counts := make(map[uint]int64, len(articleIDs))
	if len(articleIDs) == 0 {
		return counts, nil
	}

	ids := make([]int64, len(articleIDs))
	for i, id := range articleIDs {
		ids[i] = int64(id)
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT article_id, COUNT(*)
		FROM comments
		WHERE article_id = ANY($1) AND status = $2
		GROUP BY article_id
	`, pq.Array(ids), model.CommentStatusApproved)
	if err != nil {
		return nil, fmt.Errorf("批量统计评论数失败: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var articleID uint
		var count int64
		if err := rows.Scan(&articleID, &count); err != nil {
			return nil, fmt.Errorf("扫描评论数统计行失败: %w", err)
		}
		counts[articleID] = count
	}
	return counts, rows.Err()
}
