/*
 * @Description: 定时发布文章任务
 * @Author: 林远
 * @Date: 2026-01-22
 */
package task

import (
	"context"
	"log/slog"
	"time"

	article_service "github.com/linkfable/folio-app/pkg/service/article"
)

// ScheduledPublishJob 是定时发布文章的任务
// 每分钟执行一次，检查是否有到点需要发布的定时文章
type ScheduledPublishJob struct {
	articleSvc article_service.Service
	logger     *slog.Logger
}

// NewScheduledPublishJob 创建定时发布任务实例
func NewScheduledPublishJob(articleSvc article_service.Service, logger *slog.Logger) *ScheduledPublishJob {
	return &ScheduledPublishJob{
		articleSvc: articleSvc,
		logger:     logger,
	}
}

// Name 返回任务名称
func (j *ScheduledPublishJob) Name() string {
	return "ScheduledPublishJob"
}

// Run 执行定时发布任务。
// 实际的逐篇发布和发布事件都在文章服务里处理，
// 首次发布触发的订阅推送与 RSS 缓存失效由事件监听器完成。
func (j *ScheduledPublishJob) Run() {
	ctx := context.Background()
	now := time.Now()

	published, err := j.articleSvc.PublishDueScheduled(ctx, now)
	if err != nil {
		j.logger.Error("查询定时发布文章失败", slog.Any("error", err))
		return
	}

	if published == 0 {
		j.logger.Debug("没有待发布的定时文章")
		return
	}

	j.logger.Info("定时发布任务执行完成", slog.Int("published", published))
}
