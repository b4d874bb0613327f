/*
 * @Description:
 * @Author: 林远
 * @Date: 2025-09-15 10:48:41
 * @LastEditTime: 2026-05-28 13:34:08
 * @LastEditors: 林远
 */
package repository

import (
	"context"
	"time"

	"github.com/linkfable/folio-app/pkg/domain/model"
)

// ArticleRepository 定义了文章数据仓库的接口。
// 它是数据持久化层的抽象，所有方法都使用领域模型，与具体的数据库驱动解耦。
type ArticleRepository interface {
	// FindByID 根据数据库的 uint ID 获取单个文章，未命中时返回 (nil, nil)。
	FindByID(ctx context.Context, id uint) (*model.Article, error)

	// Create 创建一篇文章并回填数据库ID。
	Create(ctx context.Context, article *model.Article) error

	// Update 整行更新一篇文章。
	Update(ctx context.Context, article *model.Article) error

	// Delete 根据数据库ID删除一篇文章。
	Delete(ctx context.Context, id uint) error

	// List 根据提供的选项，分页查询文章列表，返回整个过滤集的总数。
	List(ctx context.Context, options *model.ListArticlesOptions) ([]*model.Article, int64, error)

	// UpdateViewCounts 把缓存中累积的浏览量增量批量写回数据库。
	UpdateViewCounts(ctx context.Context, updates map[uint]int) error

	// Publish 将文章置为已发布。published_at 仅在首次发布时写入，
	// 返回的布尔值表示这是否是该文章的首次发布。
	Publish(ctx context.Context, id uint, publishedAt time.Time) (*model.Article, bool, error)

	// FindDueScheduled 查找所有定时发布时间已到的文章，
	// 即状态为 SCHEDULED 且 scheduled_at <= now 的文章列表。
	FindDueScheduled(ctx context.Context, now time.Time) ([]*model.Article, error)
}
