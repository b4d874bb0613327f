/*
 * @Description: 监听文章发布事件，协调订阅推送与缓存失效。
 * @Author: 林远
 * @Date: 2025-11-16 14:22:40
 * @LastEditTime: 2026-02-14 10:05:33
 * @LastEditors: 林远
 */
package listener

import (
	"context"
	"log"

	"github.com/linkfable/folio-app/internal/app/task"
	"github.com/linkfable/folio-app/internal/pkg/event"
	article_service "github.com/linkfable/folio-app/pkg/service/article"
	rss_service "github.com/linkfable/folio-app/pkg/service/rss"
)

// ArticlePublishListener 监听 ArticlePublished 事件。
// 任何发布动作都会让 RSS 缓存失效；只有首次发布才派发订阅推送，
// 重复发布同一篇文章不会再次打扰订阅者。
type ArticlePublishListener struct {
	broker *task.Broker
	rssSvc rss_service.Service
}

// NewArticlePublishListener 是 ArticlePublishListener 的构造函数。
// 它订阅 ArticlePublished 事件，并成为发布后续动作的唯一入口。
func NewArticlePublishListener(
	eventBus *event.EventBus,
	broker *task.Broker,
	rssSvc rss_service.Service,
) *ArticlePublishListener {
	listener := &ArticlePublishListener{
		broker: broker,
		rssSvc: rssSvc,
	}
	eventBus.Subscribe(event.ArticlePublished, listener.handleArticlePublished)
	return listener
}

// handleArticlePublished 是事件处理器，负责协调和分发任务。
func (l *ArticlePublishListener) handleArticlePublished(payload interface{}) {
	evt, ok := payload.(*article_service.ArticlePublishedEvent)
	if !ok {
		log.Printf("[ArticlePublishListener] 错误：收到的 ArticlePublished 事件负载类型不正确")
		return
	}

	log.Printf("[ArticlePublishListener] 收到文章发布事件: %q (首次发布 %t)", evt.Article.Title, evt.FirstPublish)

	if err := l.rssSvc.InvalidateCache(context.Background()); err != nil {
		log.Printf("[ArticlePublishListener] 警告: 清除 RSS 缓存失败: %v", err)
	}

	if evt.FirstPublish {
		l.broker.DispatchNewsletter(evt.Article)
	}
}
