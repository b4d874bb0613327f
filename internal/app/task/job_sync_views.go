/*
 * @Description:
 * @Author: 林远
 * @Date: 2025-11-09 14:32:07
 * @LastEditTime: 2025-11-09 15:01:26
 * @LastEditors: 林远
 */
package task

import (
	"context"
	"log"

	article_service "github.com/linkfable/folio-app/pkg/service/article"
)

// SyncViewCountsJob 负责将缓存中累积的浏览量同步到数据库。
type SyncViewCountsJob struct {
	articleSvc article_service.Service
}

// NewSyncViewCountsJob 是任务的构造函数。
func NewSyncViewCountsJob(articleSvc article_service.Service) *SyncViewCountsJob {
	return &SyncViewCountsJob{
		articleSvc: articleSvc,
	}
}

// Name 方法返回任务的可读名称。
func (j *SyncViewCountsJob) Name() string {
	return "SyncArticleViewCountsToDBJob"
}

// Run 是 Job 接口要求实现的方法，包含了核心的同步逻辑。
func (j *SyncViewCountsJob) Run() {
	ctx := context.Background()

	synced, err := j.articleSvc.FlushViewCounts(ctx)
	if err != nil {
		log.Printf("错误: 任务 '%s' 同步浏览量失败: %v", j.Name(), err)
		return
	}
	if synced == 0 {
		log.Printf("信息: 任务 '%s' 没有发现需要同步的浏览量。", j.Name())
		return
	}

	log.Printf("成功: 任务 '%s' 已成功同步 %d 篇文章的浏览量。", j.Name(), synced)
}
