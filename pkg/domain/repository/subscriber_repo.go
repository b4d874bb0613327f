/*
 * @Description: 订阅者数据操作的契约
 * @Author: 林远
 * @Date: 2025-09-16 10:40:11
 * @LastEditTime: 2026-06-11 16:02:33
 * @LastEditors: 林远
 */
package repository

import (
	"context"
	"time"

	"github.com/linkfable/folio-app/pkg/domain/model"
)

// SubscriberListParams 定义了后台订阅者列表的查询参数。
type SubscriberListParams struct {
	Page     int
	PageSize int
	Status   *model.SubscriberStatus
	// Search 对邮箱和名字做模糊匹配。
	Search *string
}

// SubscriberRepository 定义了订阅者数据的持久化操作接口。
// 所有 Find* 方法在未命中时返回 (nil, nil)。
type SubscriberRepository interface {
	// 创建订阅者并回填数据库ID
	Create(ctx context.Context, sub *model.Subscriber) error

	// 整行更新订阅者
	Update(ctx context.Context, sub *model.Subscriber) error

	// 按邮箱（小写）查找
	FindByEmail(ctx context.Context, email string) (*model.Subscriber, error)

	// 按确认令牌哈希查找，只命中尚未过期的记录
	FindByConfirmationTokenHash(ctx context.Context, hash string, now time.Time) (*model.Subscriber, error)

	// 按退订令牌精确查找，不限状态
	FindByUnsubscribeToken(ctx context.Context, token string) (*model.Subscriber, error)

	// 所有 active 状态的订阅者，按创建时间升序
	FindActive(ctx context.Context) ([]*model.Subscriber, error)

	// 发送成功后原子地累加发送计数并记录最近发送时间
	IncrementEmailsSent(ctx context.Context, id uint, at time.Time) error

	// --- 管理员方法 ---

	// 分页查询订阅者列表，返回整个过滤集的总数
	List(ctx context.Context, params *SubscriberListParams) ([]*model.Subscriber, int64, error)

	// 各状态的订阅者数量
	StatusCounts(ctx context.Context) (map[model.SubscriberStatus]int64, error)

	// 自 since 起每天的新增订阅数，按日期升序
	DailySignups(ctx context.Context, since time.Time) ([]model.SubscriberDailyCount, error)

	// 所有订阅者的累计发送总数
	SumEmailsSent(ctx context.Context) (int64, error)

	// 清理确认令牌过期超过给定时间点的 pending 订阅者，返回清理数量
	PurgeExpiredPending(ctx context.Context, expiredBefore time.Time) (int64, error)
}
