// folio-app/internal/app/task/broker.go
package task

import (
	"log/slog"
	"os"
	"runtime"

	"github.com/linkfable/folio-app/pkg/domain/model"
	article_service "github.com/linkfable/folio-app/pkg/service/article"
	subscriber_service "github.com/linkfable/folio-app/pkg/service/subscriber"
	"github.com/linkfable/folio-app/pkg/service/utility"

	"github.com/robfig/cron/v3"
)

// Broker 是整个后台任务模块的核心协调者。
// 周期任务走 cron 调度，事件触发的任务走内部队列由 worker 池消费。
type Broker struct {
	cron          *cron.Cron
	logger        *slog.Logger
	jobQueue      chan Job
	articleSvc    article_service.Service
	subscriberSvc *subscriber_service.Service
	emailSvc      utility.EmailService
}

// NewBroker 是 Broker 的构造函数。
func NewBroker(
	articleSvc article_service.Service,
	subscriberSvc *subscriber_service.Service,
	emailSvc utility.EmailService,
) *Broker {
	slogHandler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})
	logger := slog.New(slogHandler).With("system", "task_broker")

	c := cron.New(
		cron.WithSeconds(),
		cron.WithChain(
			NewPanicRecoveryWrapper(logger),
			NewLoggingWrapper(logger),
			cron.DelayIfStillRunning(cron.DefaultLogger),
		),
	)

	jobQueue := make(chan Job, 1000)

	broker := &Broker{
		cron:          c,
		logger:        logger,
		jobQueue:      jobQueue,
		articleSvc:    articleSvc,
		subscriberSvc: subscriberSvc,
		emailSvc:      emailSvc,
	}

	broker.startWorkerPool()

	return broker
}

// startWorkerPool 启动固定数量的 worker goroutine 来处理任务。
func (b *Broker) startWorkerPool() {
	workerCount := runtime.NumCPU()
	if workerCount <= 0 {
		workerCount = 4
	}
	b.logger.Info("Starting task worker pool", "concurrency", workerCount)

	for i := 0; i < workerCount; i++ {
		workerID := i + 1
		go func() {
			b.logger.Info("Worker started", "worker_id", workerID)
			for job := range b.jobQueue {
				jobWithWrappers := cron.NewChain(
					NewPanicRecoveryWrapper(b.logger),
					NewLoggingWrapper(b.logger),
				).Then(job)

				b.logger.Info("Worker picked up a job", "worker_id", workerID, "job_name", job.Name())
				jobWithWrappers.Run()
				b.logger.Info("Worker finished a job", "worker_id", workerID, "job_name", job.Name())
			}
			b.logger.Info("Worker stopped", "worker_id", workerID)
		}()
	}
}

// Dispatch 将任务发送到队列中。
func (b *Broker) Dispatch(job Job) {
	b.jobQueue <- job
}

// DispatchCommentNotification 派发评论通知任务。
func (b *Broker) DispatchCommentNotification(comment *model.Comment, article *model.Article) {
	job := NewCommentNotificationJob(b.emailSvc, comment, article)
	b.Dispatch(job)
	b.logger.Info("Successfully queued comment notification job", "comment_id", comment.ID)
}

// DispatchNewsletter 派发文章订阅推送任务。
func (b *Broker) DispatchNewsletter(article *model.Article) {
	job := NewNewsletterJob(b.subscriberSvc, article, b.logger)
	b.Dispatch(job)
	b.logger.Info("Successfully queued newsletter job", "article_id", article.ID)
}

// RegisterCronJobs 注册所有周期性任务。
func (b *Broker) RegisterCronJobs() {
	b.logger.Info("Registering all periodic jobs...")

	// 定时发布文章任务 - 每分钟的第0秒检查一次
	scheduledPublishJob := NewScheduledPublishJob(b.articleSvc, b.logger)
	_, err := b.cron.AddJob("0 * * * * *", scheduledPublishJob)
	if err != nil {
		b.logger.Error("Failed to add 'ScheduledPublishJob'", slog.Any("error", err))
		os.Exit(1)
	}
	b.logger.Info("-> Successfully registered 'ScheduledPublishJob'", "schedule", "every minute")

	// 浏览量回写任务 - 每天凌晨 2 点执行一次
	syncViewsJob := NewSyncViewCountsJob(b.articleSvc)
	_, err = b.cron.AddJob("0 0 2 * * *", syncViewsJob)
	if err != nil {
		b.logger.Error("Failed to add 'SyncViewCountsJob'", slog.Any("error", err))
		os.Exit(1)
	}
	b.logger.Info("-> Successfully registered 'SyncViewCountsJob'", "schedule", "every day at 2:00:00 AM")

	// 过期待确认订阅清理任务 - 每天凌晨 3 点执行一次
	subscriberPurgeJob := NewSubscriberPurgeJob(b.subscriberSvc)
	_, err = b.cron.AddJob("0 0 3 * * *", subscriberPurgeJob)
	if err != nil {
		b.logger.Error("Failed to add 'SubscriberPurgeJob'", slog.Any("error", err))
		os.Exit(1)
	}
	b.logger.Info("-> Successfully registered 'SubscriberPurgeJob'", "schedule", "every day at 3:00:00 AM")

	b.logger.Info("All periodic jobs registered.")
}

// Start 启动 cron 调度器。
func (b *Broker) Start() {
	b.logger.Info("Task broker started.")
	b.cron.Start()
}

// Stop 优雅地停止 cron 调度器和所有 worker。
func (b *Broker) Stop() {
	b.logger.Info("Stopping task broker...")
	ctx := b.cron.Stop()
	<-ctx.Done()
	close(b.jobQueue)
	b.logger.Info("Task broker gracefully stopped.")
}
