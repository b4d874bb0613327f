/*
 * @Description: 文章仓储的 PostgreSQL 实现
 * @Author: 林远
 * @Date: 2025-09-12 20:44:19
 * @LastEditTime: 2026-07-02 14:17:50
 * @LastEditors: 林远
 */
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/linkfable/folio-app/pkg/domain/model"
	"github.com/linkfable/folio-app/pkg/domain/repository"
)

// articleRepository 是 ArticleRepository 接口的 PostgreSQL 实现
type articleRepository struct {
	db *sql.DB
}

// NewArticleRepository 是 articleRepository 的构造函数
func NewArticleRepository(db *sql.DB) repository.ArticleRepository {
	return &articleRepository{
		db: db,
	}
}

const articleColumns = `
	id, created_at, updated_at, title, summary, content_md, content_html,
	cover_url, categories, status, view_count, published_at, scheduled_at
`

// 列表查询默认不携带正文，避免无谓的大字段传输
const articleColumnsNoContent = `
	id, created_at, updated_at, title, summary, '' AS content_md, '' AS content_html,
	cover_url, categories, status, view_count, published_at, scheduled_at
`

// scanArticle 从一行中扫描出文章领域模型
func scanArticle(row interface{ Scan(...interface{}) error }) (*model.Article, error) {
	a := &model.Article{}
	var publishedAt, scheduledAt sql.NullTime
	err := row.Scan(
		&a.ID, &a.CreatedAt, &a.UpdatedAt, &a.Title, &a.Summary, &a.ContentMd, &a.ContentHTML,
		&a.CoverURL, pq.Array(&a.Categories), &a.Status, &a.ViewCount, &publishedAt, &scheduledAt,
	)
	if err != nil {
		return nil, err
	}
	if publishedAt.Valid {
		a.PublishedAt = &publishedAt.Time
	}
	if scheduledAt.Valid {
		a.ScheduledAt = &scheduledAt.Time
	}
	if a.Categories == nil {
		a.Categories = []string{}
	}
	return a, nil
}

// FindByID 根据主键查找文章，未命中时返回 (nil, nil)
func (r *articleRepository) FindByID(ctx context.Context, id uint) (*model.Article, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+articleColumns+`
		FROM articles
		WHERE id = $1
	`, id)
	a, err := scanArticle(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("按ID查询文章失败: %w", err)
	}
	return a, nil
}

// Create 创建一篇文章并回填数据库生成的字段
func (r *articleRepository) Create(ctx context.Context, a *model.Article) error {
	var scheduledAt interface{}
	if a.ScheduledAt != nil {
		scheduledAt = *a.ScheduledAt
	}
	var publishedAt interface{}
	if a.PublishedAt != nil {
		publishedAt = *a.PublishedAt
	}
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO articles
			(title, summary, content_md, content_html, cover_url, categories, status, published_at, scheduled_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at
	`, a.Title, a.Summary, a.ContentMd, a.ContentHTML, a.CoverURL,
		pq.Array(a.Categories), a.Status, publishedAt, scheduledAt).
		Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return fmt.Errorf("创建文章失败: %w", err)
	}
	return nil
}

// Update 整行更新一篇文章
func (r *articleRepository) Update(ctx context.Context, a *model.Article) error {
	var scheduledAt interface{}
	if a.ScheduledAt != nil {
		scheduledAt = *a.ScheduledAt
	}
	var publishedAt interface{}
	if a.PublishedAt != nil {
		publishedAt = *a.PublishedAt
	}
	err := r.db.QueryRowContext(ctx, `
		UPDATE articles SET
			title = $1, summary = $2, content_md = $3, content_html = $4,
			cover_url = $5, categories = $6, status = $7,
			published_at = $8, scheduled_at = $9, updated_at = now()
		WHERE id = $10
		RETURNING updated_at
	`, a.Title, a.Summary, a.ContentMd, a.ContentHTML,
		a.CoverURL, pq.Array(a.Categories), a.Status,
		publishedAt, scheduledAt, a.ID).Scan(&a.UpdatedAt)
	if err != nil {
		return fmt.Errorf("更新文章失败: %w", err)
	}
	return nil
}

// Delete 根据主键删除一篇文章，其下评论由外键级联删除
func (r *articleRepository) Delete(ctx context.Context, id uint) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM articles WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("删除文章失败: %w", err)
	}
	return nil
}

// List 根据选项分页查询文章列表，返回整个过滤集的总数
func (r *articleRepository) List(ctx context.Context, options *model.ListArticlesOptions) ([]*model.Article, int64, error) {
	where := " WHERE 1=1"
	args := []interface{}{}
	idx := 1

	if options.Status != "" {
		where += fmt.Sprintf(" AND status = $%d", idx)
		args = append(args, options.Status)
		idx++
	}
	if options.Category != "" {
		where += fmt.Sprintf(" AND $%d = ANY(categories)", idx)
		args = append(args, options.Category)
		idx++
	}
	if options.Query != "" {
		where += fmt.Sprintf(" AND (title ILIKE $%d OR summary ILIKE $%d)", idx, idx)
		args = append(args, "%"+options.Query+"%")
		idx++
	}

	var total int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM articles`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("统计文章总数失败: %w", err)
	}

	cols := articleColumnsNoContent
	if options.WithContent {
		cols = articleColumns
	}

	query := `SELECT ` + cols + ` FROM articles` + where +
		fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", idx, idx+1)
	args = append(args, options.PageSize, (options.Page-1)*options.PageSize)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("查询文章列表失败: %w", err)
	}
	defer rows.Close()

	var articles []*model.Article
	for rows.Next() {
		a, err := scanArticle(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("扫描文章行失败: %w", err)
		}
		articles = append(articles, a)
	}
	return articles, total, rows.Err()
}

// UpdateViewCounts 批量写回浏览量增量，整批在一个事务里完成
func (r *articleRepository) UpdateViewCounts(ctx context.Context, updates map[uint]int) error {
	if len(updates) == 0 {
		return nil
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("开启浏览量更新事务失败: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `UPDATE articles SET view_count = view_count + $1 WHERE id = $2`)
	if err != nil {
		return fmt.Errorf("准备浏览量更新语句失败: %w", err)
	}
	defer stmt.Close()

	for id, delta := range updates {
		if delta <= 0 {
			continue
		}
		if _, err := stmt.ExecContext(ctx, delta, id); err != nil {
			return fmt.Errorf("更新文章 %d 的浏览量失败: %w", id, err)
		}
	}
	return tx.Commit()
}

// Publish 将文章置为已发布。
// published_at 只在首次发布时写入；返回的布尔值标记这是否是首次发布，
// 依靠 CTE 读取更新前的 published_at，整个判断在单条语句内原子完成。
func (r *articleRepository) Publish(ctx context.Context, id uint, publishedAt time.Time) (*model.Article, bool, error) {
	a := &model.Article{}
	var oldPublishedIsNull bool
	var pubAt, schedAt sql.NullTime
	err := r.db.QueryRowContext(ctx, `
		WITH old AS (
			SELECT published_at FROM articles WHERE id = $1
		)
		UPDATE articles a SET
			status = $2,
			published_at = COALESCE(a.published_at, $3),
			scheduled_at = NULL,
			updated_at = now()
		FROM old
		WHERE a.id = $1
		RETURNING a.id, a.created_at, a.updated_at, a.title, a.summary, a.content_md, a.content_html,
		          a.cover_url, a.categories, a.status, a.view_count, a.published_at, a.scheduled_at,
		          (old.published_at IS NULL)
	`, id, model.ArticleStatusPublished, publishedAt).Scan(
		&a.ID, &a.CreatedAt, &a.UpdatedAt, &a.Title, &a.Summary, &a.ContentMd, &a.ContentHTML,
		&a.CoverURL, pq.Array(&a.Categories), &a.Status, &a.ViewCount, &pubAt, &schedAt,
		&oldPublishedIsNull,
	)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("发布文章失败: %w", err)
	}
	if pubAt.Valid {
		a.PublishedAt = &pubAt.Time
	}
	if schedAt.Valid {
		a.ScheduledAt = &schedAt.Time
	}
	if a.Categories == nil {
		a.Categories = []string{}
	}
	return a, oldPublishedIsNull, nil
}

// FindDueScheduled 查找所有定时发布时间已到的文章
func (r *articleRepository) FindDueScheduled(ctx context.Context, now time.Time) ([]*model.Article, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+articleColumns+`
		FROM articles
		WHERE status = $1 AND scheduled_at IS NOT NULL AND scheduled_at <= $2
		ORDER BY scheduled_at
	`, model.ArticleStatusScheduled, now)
	if err != nil {
		return nil, fmt.Errorf("查询到期定时文章失败: %w", err)
	}
	defer rows.Close()

	var articles []*model.Article
	for rows.Next() {
		a, err := scanArticle(rows)
		if err != nil {
			return nil, fmt.Errorf("扫描文章行失败: %w", err)
		}
		articles = append(articles, a)
	}
	return articles, rows.Err()
}
