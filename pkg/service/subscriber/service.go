/*
 * @Description: 订阅者生命周期管理
 * @Author: 林远
 * @Date: 2025-09-16 11:20:35
 * @LastEditTime: 2026-06-24 21:17:02
 * @LastEditors: 林远
 */
package subscriber

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/linkfable/folio-app/internal/pkg/utils"
	"github.com/linkfable/folio-app/pkg/constant"
	"github.com/linkfable/folio-app/pkg/domain/model"
	"github.com/linkfable/folio-app/pkg/domain/repository"
	"github.com/linkfable/folio-app/pkg/handler/subscriber/dto"
	"github.com/linkfable/folio-app/pkg/idgen"
	"github.com/linkfable/folio-app/pkg/service/setting"
	"github.com/linkfable/folio-app/pkg/service/utility"
)

// 确认令牌的有效期
const confirmationTokenTTL = 24 * time.Hour

// 订阅令牌的随机字节数，十六进制编码后为 64 字符
const tokenBytes = 32

// Service 管理订阅者的完整生命周期：
// pending → active → unsubscribed，退订后再次订阅会回到 pending 重新确认。
type Service struct {
	repo        repository.SubscriberRepository
	articleRepo repository.ArticleRepository
	settingSvc  setting.SettingService
	emailSvc    utility.EmailService
}

// NewService 创建一个新的订阅者服务实例。
func NewService(
	repo repository.SubscriberRepository,
	articleRepo repository.ArticleRepository,
	settingSvc setting.SettingService,
	emailSvc utility.EmailService,
) *Service {
	return &Service{
		repo:        repo,
		articleRepo: articleRepo,
		settingSvc:  settingSvc,
		emailSvc:    emailSvc,
	}
}

// Subscribe 处理新的订阅请求。
// 已生效的订阅直接短路返回，不会重复签发确认令牌；
// 待确认的订阅重新签发令牌并重发确认邮件；
// 已退订的邮箱回到待确认状态，重新走确认流程。
func (s *Service) Subscribe(ctx context.Context, req *dto.SubscribeRequest) (*dto.LifecycleResponse, error) {
	if !s.settingSvc.GetBool(constant.KeySubscribeEnable.String()) {
		return nil, constant.ErrForbidden
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	source := strings.TrimSpace(req.Source)
	if source == "" {
		source = "api"
	}

	existing, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("查询订阅者失败: %w", err)
	}

	if existing != nil && existing.Status == model.SubscriberStatusActive {
		// 已订阅，不重复签发令牌，也不发邮件
		return nil, constant.ErrAlreadySubscribed
	}

	plainToken, tokenHash, err := s.newConfirmationToken()
	if err != nil {
		return nil, err
	}
	expiresAt := time.Now().Add(confirmationTokenTTL)

	if existing != nil {
		// pending 重发令牌，unsubscribed/bounced 回到待确认重新走流程
		prevStatus := existing.Status
		existing.Status = model.SubscriberStatusPending
		existing.ConfirmationTokenHash = &tokenHash
		existing.ConfirmationExpiresAt = &expiresAt
		existing.Source = source
		if name := strings.TrimSpace(req.FirstName); name != "" {
			existing.FirstName = name
		}
		applyPreferences(&existing.Preferences, req.Preferences)
		if err := s.repo.Update(ctx, existing); err != nil {
			return nil, fmt.Errorf("更新订阅者失败: %w", err)
		}
		log.Printf("[Subscriber.Subscribe] 重新签发确认令牌: %s (原状态 %s)", email, prevStatus)
	} else {
		prefs := model.SubscriberPreferences{Frequency: model.FrequencyEveryPost}
		applyPreferences(&prefs, req.Preferences)
		sub := &model.Subscriber{
			Email:                 email,
			FirstName:             strings.TrimSpace(req.FirstName),
			Source:                source,
			Status:                model.SubscriberStatusPending,
			ConfirmationTokenHash: &tokenHash,
			ConfirmationExpiresAt: &expiresAt,
			Preferences:           prefs,
		}
		if err := s.repo.Create(ctx, sub); err != nil {
			return nil, fmt.Errorf("创建订阅者失败: %w", err)
		}
		log.Printf("[Subscriber.Subscribe] 新订阅待确认: %s", email)
	}

	// 确认邮件是尽力而为的，发送失败不影响订阅记录已经落库
	if err := s.emailSvc.SendConfirmationEmail(ctx, email, plainToken); err != nil {
		log.Printf("[Subscriber.Subscribe] 发送确认邮件给 %s 失败: %v", email, err)
	}

	return &dto.LifecycleResponse{Email: email, Status: string(model.SubscriberStatusPending)}, nil
}

// Confirm 用确认令牌激活订阅。
// 未命中和已过期的令牌一律按未找到处理，不向外区分两种情况。
func (s *Service) Confirm(ctx context.Context, token string) (*dto.LifecycleResponse, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, constant.ErrNotFound
	}

	tokenHash := utils.HashToken(token, s.tokenSalt())
	sub, err := s.repo.FindByConfirmationTokenHash(ctx, tokenHash, time.Now())
	if err != nil {
		return nil, fmt.Errorf("查询确认令牌失败: %w", err)
	}
	if sub == nil {
		return nil, constant.ErrNotFound
	}

	now := time.Now()
	sub.Status = model.SubscriberStatusActive
	sub.ConfirmationTokenHash = nil
	sub.ConfirmationExpiresAt = nil
	sub.ConfirmedAt = &now
	sub.UnsubscribedAt = nil

	// 退订令牌只在首次确认时生成，之后保持稳定，
	// 退订后重新订阅的邮箱沿用原来的令牌
	if sub.UnsubscribeToken == nil || *sub.UnsubscribeToken == "" {
		unsubToken, err := utils.GenerateSecureToken(tokenBytes)
		if err != nil {
			return nil, fmt.Errorf("生成退订令牌失败: %w", err)
		}
		sub.UnsubscribeToken = &unsubToken
	}

	if err := s.repo.Update(ctx, sub); err != nil {
		return nil, fmt.Errorf("更新订阅者失败: %w", err)
	}
	log.Printf("[Subscriber.Confirm] 订阅确认成功: %s", sub.Email)

	if err := s.emailSvc.SendWelcomeEmail(ctx, sub.Email, *sub.UnsubscribeToken); err != nil {
		log.Printf("[Subscriber.Confirm] 发送欢迎邮件给 %s 失败: %v", sub.Email, err)
	}

	return &dto.LifecycleResponse{Email: sub.Email, Status: string(sub.Status)}, nil
}

// Unsubscribe 用退订令牌退订。
// 重复退订按幂等处理：记录仍能被令牌找到，再次写入退订状态并刷新时间戳。
func (s *Service) Unsubscribe(ctx context.Context, token string) (*dto.LifecycleResponse, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, constant.ErrNotFound
	}

	sub, err := s.repo.FindByUnsubscribeToken(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("查询退订令牌失败: %w", err)
	}
	if sub == nil {
		return nil, constant.ErrNotFound
	}

	now := time.Now()
	sub.Status = model.SubscriberStatusUnsubscribed
	sub.UnsubscribedAt = &now
	if err := s.repo.Update(ctx, sub); err != nil {
		return nil, fmt.Errorf("更新订阅者失败: %w", err)
	}
	log.Printf("[Subscriber.Unsubscribe] 退订成功: %s", sub.Email)

	return &dto.LifecycleResponse{Email: sub.Email, Status: string(sub.Status)}, nil
}

// UpdatePreferences 更新订阅偏好，只有生效中的订阅允许修改。
// 浅合并：请求里提供的字段覆盖原值，未提供的字段保持不变。
func (s *Service) UpdatePreferences(ctx context.Context, token string, req *dto.PreferencesPayload) (*dto.PreferencesResponse, error) {
	sub, err := s.repo.FindByUnsubscribeToken(ctx, strings.TrimSpace(token))
	if err != nil {
		return nil, fmt.Errorf("查询退订令牌失败: %w", err)
	}
	if sub == nil {
		return nil, constant.ErrNotFound
	}
	if !sub.IsActive() {
		return nil, constant.ErrSubscriberNotActive
	}

	applyPreferences(&sub.Preferences, req)
	if err := s.repo.Update(ctx, sub); err != nil {
		return nil, fmt.Errorf("更新订阅者失败: %w", err)
	}

	return &dto.PreferencesResponse{
		Email:       sub.Email,
		Status:      string(sub.Status),
		Preferences: toPreferencesDTO(sub.Preferences),
	}, nil
}

// AdminList 管理员分页查询订阅者列表。
func (s *Service) AdminList(ctx context.Context, req *dto.AdminListRequest) (*dto.AdminListResponse, error) {
	if req.Page < 1 {
		req.Page = 1
	}
	if req.PageSize < 1 || req.PageSize > 100 {
		req.PageSize = 10
	}

	var status *model.SubscriberStatus
	if req.Status != nil && *req.Status != "" {
		st := model.SubscriberStatus(*req.Status)
		if !st.IsValid() {
			return nil, fmt.Errorf("%w: 无效的订阅状态 %q", constant.ErrBadRequest, *req.Status)
		}
		status = &st
	}

	subs, total, err := s.repo.List(ctx, &repository.SubscriberListParams{
		Page:     req.Page,
		PageSize: req.PageSize,
		Status:   status,
		Search:   req.Search,
	})
	if err != nil {
		return nil, fmt.Errorf("获取订阅者列表失败: %w", err)
	}

	responses := make([]*dto.AdminResponse, len(subs))
	for i, sub := range subs {
		responses[i] = toAdminResponseDTO(sub)
	}
	return &dto.AdminListResponse{
		List:     responses,
		Total:    total,
		Page:     req.Page,
		PageSize: req.PageSize,
	}, nil
}

// Stats 汇总订阅者的状态分布、最近30天的每日新增和累计发送量。
func (s *Service) Stats(ctx context.Context) (*model.SubscriberStats, error) {
	counts, err := s.repo.StatusCounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("统计订阅状态失败: %w", err)
	}

	since := utils.StartOfDayInChina(time.Now().AddDate(0, 0, -29))
	daily, err := s.repo.DailySignups(ctx, since)
	if err != nil {
		return nil, fmt.Errorf("统计每日订阅数失败: %w", err)
	}
	if daily == nil {
		daily = []model.SubscriberDailyCount{}
	}

	totalSent, err := s.repo.SumEmailsSent(ctx)
	if err != nil {
		return nil, fmt.Errorf("统计累计发送量失败: %w", err)
	}

	stats := &model.SubscriberStats{
		Pending:        counts[model.SubscriberStatusPending],
		Active:         counts[model.SubscriberStatusActive],
		Unsubscribed:   counts[model.SubscriberStatusUnsubscribed],
		Bounced:        counts[model.SubscriberStatusBounced],
		RecentSignups:  daily,
		TotalEmailSent: totalSent,
	}
	stats.Total = stats.Pending + stats.Active + stats.Unsubscribed + stats.Bounced
	if stats.Total > 0 {
		stats.ActiveRatio = float64(stats.Active) / float64(stats.Total)
	}
	return stats, nil
}

// PurgeExpiredPending 清理确认令牌过期超过宽限期的待确认订阅，由定时任务调用。
func (s *Service) PurgeExpiredPending(ctx context.Context, grace time.Duration) (int64, error) {
	return s.repo.PurgeExpiredPending(ctx, time.Now().Add(-grace))
}

// newConfirmationToken 生成确认令牌，返回明文和入库用的加盐哈希。
func (s *Service) newConfirmationToken() (plain, hash string, err error) {
	plain, err = utils.GenerateSecureToken(tokenBytes)
	if err != nil {
		return "", "", fmt.Errorf("生成确认令牌失败: %w", err)
	}
	return plain, utils.HashToken(plain, s.tokenSalt()), nil
}

// tokenSalt 返回令牌哈希用的盐。取 JWT 密钥，随实例配置而变。
func (s *Service) tokenSalt() string {
	return s.settingSvc.Get(constant.KeyJWTSecret.String())
}

// applyPreferences 把请求里提供的偏好字段合并进现有偏好。
func applyPreferences(prefs *model.SubscriberPreferences, payload *dto.PreferencesPayload) {
	if payload != nil {
		if payload.Frequency != nil {
			prefs.Frequency = *payload.Frequency
		}
		if payload.Categories != nil {
			prefs.Categories = *payload.Categories
		}
	}
	if prefs.Frequency == "" {
		prefs.Frequency = model.FrequencyEveryPost
	}
}

func toPreferencesDTO(prefs model.SubscriberPreferences) dto.Preferences {
	categories := prefs.Categories
	if categories == nil {
		categories = []string{}
	}
	return dto.Preferences{
		Frequency:  prefs.Frequency,
		Categories: categories,
	}
}

// toAdminResponseDTO 将订阅者转换为后台接口的响应结构。
// 两种令牌都不出现在任何接口响应里。
func toAdminResponseDTO(sub *model.Subscriber) *dto.AdminResponse {
	if sub == nil {
		return nil
	}
	publicID, _ := idgen.GeneratePublicID(sub.ID, idgen.EntityTypeSubscriber)
	return &dto.AdminResponse{
		ID:             publicID,
		Email:          sub.Email,
		FirstName:      sub.FirstName,
		Source:         sub.Source,
		Status:         string(sub.Status),
		Preferences:    toPreferencesDTO(sub.Preferences),
		EmailsSent:     sub.EmailsSent,
		ConfirmedAt:    sub.ConfirmedAt,
		UnsubscribedAt: sub.UnsubscribedAt,
		LastEmailAt:    sub.LastEmailAt,
		CreatedAt:      sub.CreatedAt,
	}
}
