/*
 * @Description: 文章发布订阅推送任务
 * @Author: 林远
 * @Date: 2025-11-16 11:20:33
 * @LastEditTime: 2026-02-14 09:48:15
 * @LastEditors: 林远
 */
package task

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/linkfable/folio-app/pkg/domain/model"
	subscriber_service "github.com/linkfable/folio-app/pkg/service/subscriber"
)

// NewsletterJob 在文章首次发布后向订阅者推送更新邮件。
// 分批发送和单封失败隔离都在订阅服务内部处理，任务只负责汇报结果。
type NewsletterJob struct {
	subscriberSvc *subscriber_service.Service
	article       *model.Article
	logger        *slog.Logger
}

// NewNewsletterJob 是任务的构造函数。
func NewNewsletterJob(
	subscriberSvc *subscriber_service.Service,
	article *model.Article,
	logger *slog.Logger,
) *NewsletterJob {
	return &NewsletterJob{
		subscriberSvc: subscriberSvc,
		article:       article,
		logger:        logger,
	}
}

// Name 返回任务名称
func (j *NewsletterJob) Name() string {
	return fmt.Sprintf("NewsletterJob(ArticleID: %d)", j.article.ID)
}

// Run 执行推送任务。
func (j *NewsletterJob) Run() {
	ctx := context.Background()

	result, err := j.subscriberSvc.DispatchForArticle(ctx, j.article)
	if err != nil {
		j.logger.Error("文章推送执行失败",
			slog.String("title", j.article.Title),
			slog.Any("error", err),
		)
		return
	}

	j.logger.Info("文章推送执行完成",
		slog.String("title", j.article.Title),
		slog.Int("recipients", result.TotalRecipients),
		slog.Int("sent", result.SentCount),
		slog.Int("failed", result.ErrorCount),
	)
}
