/*
 * @Description:
 * @Author: 林远
 * @Date: 2025-10-18 16:42:11
 * @LastEditTime: 2025-11-02 10:15:36
 * @LastEditors: 林远
 */
// folio-app/internal/app/task/jobs.go
package task

// Job 是所有后台任务的统一接口。
// 它与 cron.Job 接口兼容。
type Job interface {
	Run()
	Name() string
}
