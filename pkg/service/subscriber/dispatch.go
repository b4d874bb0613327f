/*
 * @Description: 文章推送调度，分批并发发送
 * @Author: 林远
 * @Date: 2025-09-18 09:41:12
 * @LastEditTime: 2026-07-03 22:30:46
 * @LastEditors: 林远
 */
package subscriber

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/linkfable/folio-app/pkg/constant"
	"github.com/linkfable/folio-app/pkg/domain/model"
	"github.com/linkfable/folio-app/pkg/handler/subscriber/dto"
	"github.com/linkfable/folio-app/pkg/idgen"
)

const (
	// 每批发送的收件人数量
	dispatchBatchSize = 10
	// 批与批之间的间隔，避免触发SMTP服务商的瞬时频率限制
	dispatchBatchDelay = 1 * time.Second
)

// dispatchRecipient 是一次推送中的单个收件人。
// subscriberID 为 0 表示测试收件人，发送成功后不更新任何计数。
type dispatchRecipient struct {
	subscriberID     uint
	email            string
	unsubscribeToken string
}

// DispatchNewsletter 处理管理员手动触发的文章推送。
// 提供 testEmail 时只向该地址发送一封，不读订阅者名单、不更新计数。
func (s *Service) DispatchNewsletter(ctx context.Context, req *dto.SendNewsletterRequest) (*dto.DispatchResult, error) {
	articleID, entityType, err := idgen.DecodePublicID(req.BlogID)
	if err != nil || entityType != idgen.EntityTypeArticle {
		return nil, constant.ErrNotFound
	}
	article, err := s.articleRepo.FindByID(ctx, articleID)
	if err != nil {
		return nil, fmt.Errorf("查询文章失败: %w", err)
	}
	if article == nil || !article.IsPublished() {
		return nil, constant.ErrArticleNotPublished
	}

	if req.TestEmail != nil && strings.TrimSpace(*req.TestEmail) != "" {
		recipient := dispatchRecipient{
			email:            strings.ToLower(strings.TrimSpace(*req.TestEmail)),
			unsubscribeToken: "test",
		}
		return s.dispatch(ctx, article, []dispatchRecipient{recipient}), nil
	}

	recipients, err := s.matchingRecipients(ctx, article)
	if err != nil {
		return nil, err
	}
	return s.dispatch(ctx, article, recipients), nil
}

// DispatchForArticle 向所有命中偏好的订阅者推送一篇文章，由发布事件触发。
func (s *Service) DispatchForArticle(ctx context.Context, article *model.Article) (*dto.DispatchResult, error) {
	recipients, err := s.matchingRecipients(ctx, article)
	if err != nil {
		return nil, err
	}
	return s.dispatch(ctx, article, recipients), nil
}

// matchingRecipients 返回所有应收到这篇文章的生效订阅者。
// 没有分类偏好的订阅者收到一切，有偏好的只在分类相交时收到。
func (s *Service) matchingRecipients(ctx context.Context, article *model.Article) ([]dispatchRecipient, error) {
	subs, err := s.repo.FindActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("获取生效订阅者失败: %w", err)
	}

	recipients := make([]dispatchRecipient, 0, len(subs))
	for _, sub := range subs {
		if !sub.Preferences.MatchesCategories(article.Categories) {
			continue
		}
		token := ""
		if sub.UnsubscribeToken != nil {
			token = *sub.UnsubscribeToken
		}
		recipients = append(recipients, dispatchRecipient{
			subscriberID:     sub.ID,
			email:            sub.Email,
			unsubscribeToken: token,
		})
	}
	return recipients, nil
}

// dispatch 分批并发发送。批内并发、批间隔固定延时，
// 单个收件人发送失败只计数，不影响同批其余收件人和后续批次。
func (s *Service) dispatch(ctx context.Context, article *model.Article, recipients []dispatchRecipient) *dto.DispatchResult {
	total := len(recipients)
	if total == 0 {
		log.Printf("[Subscriber.Dispatch] 没有匹配的收件人，跳过推送: %s", article.Title)
		return &dto.DispatchResult{}
	}
	log.Printf("[Subscriber.Dispatch] 开始推送文章《%s》，收件人 %d 位", article.Title, total)

	var sent, failed int64
	for start := 0; start < total; start += dispatchBatchSize {
		if start > 0 {
			select {
			case <-ctx.Done():
				log.Printf("[Subscriber.Dispatch] 推送被取消，已发送 %d/%d", atomic.LoadInt64(&sent), total)
				return &dto.DispatchResult{
					TotalRecipients: total,
					SentCount:       int(atomic.LoadInt64(&sent)),
					ErrorCount:      int(atomic.LoadInt64(&failed)),
				}
			case <-time.After(dispatchBatchDelay):
			}
		}

		end := start + dispatchBatchSize
		if end > total {
			end = total
		}

		var wg sync.WaitGroup
		for _, r := range recipients[start:end] {
			wg.Add(1)
			go func(r dispatchRecipient) {
				defer wg.Done()
				if err := s.emailSvc.SendNewsletterEmail(ctx, r.email, r.unsubscribeToken, article); err != nil {
					atomic.AddInt64(&failed, 1)
					log.Printf("[Subscriber.Dispatch] 发送给 %s 失败: %v", r.email, err)
					return
				}
				atomic.AddInt64(&sent, 1)
				if r.subscriberID > 0 {
					if err := s.repo.IncrementEmailsSent(ctx, r.subscriberID, time.Now()); err != nil {
						log.Printf("[Subscriber.Dispatch] 更新订阅者 %d 的发送计数失败: %v", r.subscriberID, err)
					}
				}
			}(r)
		}
		wg.Wait()
	}

	result := &dto.DispatchResult{
		TotalRecipients: total,
		SentCount:       int(sent),
		ErrorCount:      int(failed),
	}
	log.Printf("[Subscriber.Dispatch] 推送完成: 成功 %d, 失败 %d, 共 %d", result.SentCount, result.ErrorCount, result.TotalRecipients)
	return result
}
