/*
 * @Description: 订阅者仓储的 PostgreSQL 实现
 * @Author: 林远
 * @Date: 2025-09-17 11:26:40
 * @LastEditTime: 2026-06-12 19:48:05
 * @LastEditors: 林远
 */
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/linkfable/folio-app/pkg/domain/model"
	"github.com/linkfable/folio-app/pkg/domain/repository"
)

// subscriberRepository 是 SubscriberRepository 接口的 PostgreSQL 实现
type subscriberRepository struct {
	db *sql.DB
}

// NewSubscriberRepository 是 subscriberRepository 的构造函数
func NewSubscriberRepository(db *sql.DB) repository.SubscriberRepository {
	return &subscriberRepository{
		db: db,
	}
}

const subscriberColumns = `
	id, created_at, updated_at, email, first_name, source, status,
	confirmation_token_hash, confirmation_expires_at, unsubscribe_token,
	preferences, emails_sent, emails_opened, emails_clicked,
	confirmed_at, unsubscribed_at, last_email_at
`

// nullableString 把 *string 转成可直接作为 SQL 参数的值
func nullableString(s *string) interface{} {
	if s == nil {
		return nil
	}
	return *s
}

// nullableTime 把 *time.Time 转成可直接作为 SQL 参数的值
func nullableTime(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return *t
}

// scanSubscriber 从一行中扫描出订阅者领域模型
func scanSubscriber(row interface{ Scan(...interface{}) error }) (*model.Subscriber, error) {
	s := &model.Subscriber{}
	var tokenHash, unsubToken sql.NullString
	var expiresAt, confirmedAt, unsubscribedAt, lastEmailAt sql.NullTime
	err := row.Scan(
		&s.ID, &s.CreatedAt, &s.UpdatedAt, &s.Email, &s.FirstName, &s.Source, &s.Status,
		&tokenHash, &expiresAt, &unsubToken,
		&s.Preferences, &s.EmailsSent, &s.EmailsOpened, &s.EmailsClicked,
		&confirmedAt, &unsubscribedAt, &lastEmailAt,
	)
	if err != nil {
		return nil, err
	}
	if tokenHash.Valid {
		s.ConfirmationTokenHash = &tokenHash.String
	}
	if expiresAt.Valid {
		s.ConfirmationExpiresAt = &expiresAt.Time
	}
	if unsubToken.Valid {
		s.UnsubscribeToken = &unsubToken.String
	}
	if confirmedAt.Valid {
		s.ConfirmedAt = &confirmedAt.Time
	}
	if unsubscribedAt.Valid {
		s.UnsubscribedAt = &unsubscribedAt.Time
	}
	if lastEmailAt.Valid {
		s.LastEmailAt = &lastEmailAt.Time
	}
	return s, nil
}

// Create 插入一名新订阅者，并把数据库生成的ID和时间戳回填到模型上
func (r *subscriberRepository) Create(ctx context.Context, sub *model.Subscriber) error {
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO subscribers
			(email, first_name, source, status,
			 confirmation_token_hash, confirmation_expires_at, preferences)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`, sub.Email, sub.FirstName, sub.Source, sub.Status,
		nullableString(sub.ConfirmationTokenHash), nullableTime(sub.ConfirmationExpiresAt), sub.Preferences,
	).Scan(&sub.ID, &sub.CreatedAt, &sub.UpdatedAt)
	if err != nil {
		return fmt.Errorf("创建订阅者失败: %w", err)
	}
	return nil
}

// Update 整行更新订阅者
func (r *subscriberRepository) Update(ctx context.Context, sub *model.Subscriber) error {
	err := r.db.QueryRowContext(ctx, `
		UPDATE subscribers SET
			email = $1, first_name = $2, source = $3, status = $4,
			confirmation_token_hash = $5, confirmation_expires_at = $6, unsubscribe_token = $7,
			preferences = $8, emails_sent = $9, emails_opened = $10, emails_clicked = $11,
			confirmed_at = $12, unsubscribed_at = $13, last_email_at = $14,
			updated_at = now()
		WHERE id = $15
		RETURNING updated_at
	`, sub.Email, sub.FirstName, sub.Source, sub.Status,
		nullableString(sub.ConfirmationTokenHash), nullableTime(sub.ConfirmationExpiresAt), nullableString(sub.UnsubscribeToken),
		sub.Preferences, sub.EmailsSent, sub.EmailsOpened, sub.EmailsClicked,
		nullableTime(sub.ConfirmedAt), nullableTime(sub.UnsubscribedAt), nullableTime(sub.LastEmailAt),
		sub.ID,
	).Scan(&sub.UpdatedAt)
	if err != nil {
		return fmt.Errorf("更新订阅者失败: %w", err)
	}
	return nil
}

// FindByEmail 按邮箱查找订阅者，未命中时返回 (nil, nil)。
// 邮箱在服务层统一转为小写后再入库和查询。
func (r *subscriberRepository) FindByEmail(ctx context.Context, email string) (*model.Subscriber, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+subscriberColumns+`
		FROM subscribers
		WHERE email = $1
	`, email)
	s, err := scanSubscriber(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("按邮箱查询订阅者失败: %w", err)
	}
	return s, nil
}

// FindByConfirmationTokenHash 按确认令牌哈希查找，只命中尚未过期的记录
func (r *subscriberRepository) FindByConfirmationTokenHash(ctx context.Context, hash string, now time.Time) (*model.Subscriber, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+subscriberColumns+`
		FROM subscribers
		WHERE confirmation_token_hash = $1 AND confirmation_expires_at > $2
	`, hash, now)
	s, err := scanSubscriber(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("按确认令牌查询订阅者失败: %w", err)
	}
	return s, nil
}

// FindByUnsubscribeToken 按退订令牌精确查找，不限状态
func (r *subscriberRepository) FindByUnsubscribeToken(ctx context.Context, token string) (*model.Subscriber, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+subscriberColumns+`
		FROM subscribers
		WHERE unsubscribe_token = $1
	`, token)
	s, err := scanSubscriber(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("按退订令牌查询订阅者失败: %w", err)
	}
	return s, nil
}

// FindActive 返回所有生效状态的订阅者，按创建时间升序
func (r *subscriberRepository) FindActive(ctx context.Context) ([]*model.Subscriber, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+subscriberColumns+`
		FROM subscribers
		WHERE status = $1
		ORDER BY created_at ASC, id ASC
	`, model.SubscriberStatusActive)
	if err != nil {
		return nil, fmt.Errorf("查询生效订阅者失败: %w", err)
	}
	defer rows.Close()

	var subs []*model.Subscriber
	for rows.Next() {
		s, err := scanSubscriber(rows)
		if err != nil {
			return nil, fmt.Errorf("扫描订阅者行失败: %w", err)
		}
		subs = append(subs, s)
	}
	return subs, rows.Err()
}

// IncrementEmailsSent 原子地累加发送计数并记录最近发送时间
func (r *subscriberRepository) IncrementEmailsSent(ctx context.Context, id uint, at time.Time) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE subscribers SET
			emails_sent = emails_sent + 1, last_email_at = $2, updated_at = now()
		WHERE id = $1
	`, id, at)
	if err != nil {
		return fmt.Errorf("累加发送计数失败: %w", err)
	}
	return nil
}

// List 分页查询订阅者列表，返回整个过滤集的总数
func (r *subscriberRepository) List(ctx context.Context, params *repository.SubscriberListParams) ([]*model.Subscriber, int64, error) {
	where := " WHERE 1=1"
	args := []interface{}{}
	idx := 1

	if params.Status != nil {
		where += fmt.Sprintf(" AND status = $%d", idx)
		args = append(args, *params.Status)
		idx++
	}
	if params.Search != nil && *params.Search != "" {
		where += fmt.Sprintf(" AND (email ILIKE $%d OR first_name ILIKE $%d)", idx, idx)
		args = append(args, "%"+*params.Search+"%")
		idx++
	}

	var total int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM subscribers`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("统计订阅者总数失败: %w", err)
	}

	query := `SELECT ` + subscriberColumns + ` FROM subscribers` + where +
		fmt.Sprintf(" ORDER BY created_at DESC, id DESC LIMIT $%d OFFSET $%d", idx, idx+1)
	args = append(args, params.PageSize, (params.Page-1)*params.PageSize)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("查询订阅者列表失败: %w", err)
	}
	defer rows.Close()

	var subs []*model.Subscriber
	for rows.Next() {
		s, err := scanSubscriber(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("扫描订阅者行失败: %w", err)
		}
		subs = append(subs, s)
	}
	return subs, total, rows.Err()
}

// StatusCounts 返回各状态的订阅者数量
func (r *subscriberRepository) StatusCounts(ctx context.Context) (map[model.SubscriberStatus]int64, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT status, COUNT(*) FROM subscribers GROUP BY status
	`)
	if err != nil {
		return nil, fmt.Errorf("统计订阅者状态失败: %w", err)
	}
	defer rows.Close()

	counts := make(map[model.SubscriberStatus]int64)
	for rows.Next() {
		var status model.SubscriberStatus
		var count int64
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("扫描状态统计行失败: %w", err)
		}
		counts[status] = count
	}
	return counts, rows.Err()
}

// DailySignups 返回自 since 起每天的新增订阅数，按日期升序，日期按东八区归并
func (r *subscriberRepository) DailySignups(ctx context.Context, since time.Time) ([]model.SubscriberDailyCount, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT to_char(created_at AT TIME ZONE 'Asia/Shanghai', 'YYYY-MM-DD') AS day, COUNT(*)
		FROM subscribers
		WHERE created_at >= $1
		GROUP BY day
		ORDER BY day
	`, since)
	if err != nil {
		return nil, fmt.Errorf("统计每日订阅数失败: %w", err)
	}
	defer rows.Close()

	var counts []model.SubscriberDailyCount
	for rows.Next() {
		var dc model.SubscriberDailyCount
		if err := rows.Scan(&dc.Date, &dc.Count); err != nil {
			return nil, fmt.Errorf("扫描每日统计行失败: %w", err)
		}
		counts = append(counts, dc)
	}
	return counts, rows.Err()
}

// SumEmailsSent 返回所有订阅者的累计发送总数
func (r *subscriberRepository) SumEmailsSent(ctx context.Context) (int64, error) {
	var total int64
	err := r.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(emails_sent), 0) FROM subscribers
	`).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("统计累计发送总数失败: %w", err)
	}
	return total, nil
}

// PurgeExpiredPending 清理确认令牌在给定时间点之前就已过期的 pending 订阅者
func (r *subscriberRepository) PurgeExpiredPending(ctx context.Context, expiredBefore time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		DELETE FROM subscribers
		WHERE status = $1 AND confirmation_expires_at < $2
	`, model.SubscriberStatusPending, expiredBefore)
	if err != nil {
		return 0, fmt.Errorf("清理过期订阅者失败: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("读取清理结果失败: %w", err)
	}
	return affected, nil
}
