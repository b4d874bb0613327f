/*
 * @Description:
 * @Author: 林远
 * @Date: 2025-11-16 10:45:12
 * @LastEditTime: 2026-01-22 13:20:48
 * @LastEditors: 林远
 */
// folio-app/internal/app/task/job_comment_notification.go
package task

import (
	"fmt"

	"github.com/linkfable/folio-app/pkg/domain/model"
	"github.com/linkfable/folio-app/pkg/service/utility"
)

// CommentNotificationJob 负责向站长发送新评论待审核的通知邮件。
type CommentNotificationJob struct {
	emailSvc utility.EmailService
	comment  *model.Comment
	article  *model.Article
}

// NewCommentNotificationJob 是任务的构造函数。
// 评论入库事件携带完整的评论和文章数据，任务无需再回查数据库。
func NewCommentNotificationJob(
	emailSvc utility.EmailService,
	comment *model.Comment,
	article *model.Article,
) *CommentNotificationJob {
	return &CommentNotificationJob{
		emailSvc: emailSvc,
		comment:  comment,
		article:  article,
	}
}

// Run 方法执行发送邮件的逻辑。
func (j *CommentNotificationJob) Run() {
	j.emailSvc.SendCommentNotification(j.comment, j.article)
}

// Name 方法返回任务的可读名称。
func (j *CommentNotificationJob) Name() string {
	return fmt.Sprintf("CommentNotificationJob(CommentID: %d)", j.comment.ID)
}
