/*
 * @Description: 监听评论创建事件，派发站长邮件提醒任务。
 * @Author: 林远
 * @Date: 2025-11-16 15:02:18
 * @LastEditTime: 2026-01-22 09:40:51
 * @LastEditors: 林远
 */
package listener

import (
	"log"

	"github.com/linkfable/folio-app/internal/app/task"
	"github.com/linkfable/folio-app/internal/pkg/event"
	comment_service "github.com/linkfable/folio-app/pkg/service/comment"
)

// CommentNotifyListener 监听 CommentCreated 事件。
// 是否真正发信由邮件服务根据站点配置决定，监听器只负责转发。
type CommentNotifyListener struct {
	broker *task.Broker
}

// NewCommentNotifyListener 是 CommentNotifyListener 的构造函数。
func NewCommentNotifyListener(eventBus *event.EventBus, broker *task.Broker) *CommentNotifyListener {
	listener := &CommentNotifyListener{
		broker: broker,
	}
	eventBus.Subscribe(event.CommentCreated, listener.handleCommentCreated)
	return listener
}

// handleCommentCreated 是事件处理器。
func (l *CommentNotifyListener) handleCommentCreated(payload interface{}) {
	evt, ok := payload.(*comment_service.CommentCreatedEvent)
	if !ok {
		log.Printf("[CommentNotifyListener] 错误：收到的 CommentCreated 事件负载类型不正确")
		return
	}

	log.Printf("[CommentNotifyListener] 收到评论创建事件 (评论ID: %d)，准备派发邮件提醒任务。", evt.Comment.ID)
	l.broker.DispatchCommentNotification(evt.Comment, evt.Article)
}
