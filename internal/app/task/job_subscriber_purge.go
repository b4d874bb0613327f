/*
 * @Description:
 * @Author: 林远
 * @Date: 2025-12-03 20:11:42
 * @LastEditTime: 2025-12-03 20:37:19
 * @LastEditors: 林远
 */
package task

import (
	"context"
	"log"
	"time"

	subscriber_service "github.com/linkfable/folio-app/pkg/service/subscriber"
)

// 确认令牌过期后再保留的宽限期，期间重新订阅仍可复用原记录
const purgeGracePeriod = 48 * time.Hour

// SubscriberPurgeJob 负责清理长期未确认的订阅记录。
type SubscriberPurgeJob struct {
	subscriberSvc *subscriber_service.Service
}

// NewSubscriberPurgeJob 是任务的构造函数
func NewSubscriberPurgeJob(subscriberSvc *subscriber_service.Service) *SubscriberPurgeJob {
	return &SubscriberPurgeJob{
		subscriberSvc: subscriberSvc,
	}
}

// Run 是 Job 接口要求实现的方法
func (j *SubscriberPurgeJob) Run() {
	purged, err := j.subscriberSvc.PurgeExpiredPending(context.Background(), purgeGracePeriod)
	if err != nil {
		log.Printf("任务 '%s' 在执行业务逻辑时捕获到错误: %v", j.Name(), err)
		return
	}
	if purged > 0 {
		log.Printf("任务 '%s' 业务逻辑执行完毕，共清理了 %d 条过期的待确认订阅。", j.Name(), purged)
	}
}

// Name 方法让日志包装器可以打印出更有意义的任务名
func (j *SubscriberPurgeJob) Name() string {
	return "SubscriberPurgeJob"
}
