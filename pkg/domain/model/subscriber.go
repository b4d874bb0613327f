/*
 * @Description:
 * @Author: 林远
 * @Date: 2025-09-16 10:08:27
 * @LastEditTime: 2026-06-11 15:42:19
 * @LastEditors: 林远
 */
package model

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

// SubscriberStatus 定义了订阅者的生命周期状态。
type SubscriberStatus string

const (
	SubscriberStatusPending      SubscriberStatus = "pending"      // 等待邮箱确认
	SubscriberStatusActive       SubscriberStatus = "active"       // 已确认，接收推送
	SubscriberStatusUnsubscribed SubscriberStatus = "unsubscribed" // 已退订
	SubscriberStatusBounced      SubscriberStatus = "bounced"      // 邮件退信
)

// IsValid 检查是否为已知的订阅者状态。
func (s SubscriberStatus) IsValid() bool {
	switch s {
	case SubscriberStatusPending, SubscriberStatusActive, SubscriberStatusUnsubscribed, SubscriberStatusBounced:
		return true
	}
	return false
}

// 订阅频率的合法取值
const (
	FrequencyWeekly    = "weekly"
	FrequencyMonthly   = "monthly"
	FrequencyEveryPost = "every_post"
)

// SubscriberPreferences 保存订阅者的推送偏好，在数据库中以 JSON 存储。
type SubscriberPreferences struct {
	Frequency  string   `json:"frequency"`
	Categories []string `json:"categories"`
}

// Value 实现了 driver.Valuer 接口，用于将偏好写入数据库。
func (p SubscriberPreferences) Value() (driver.Value, error) {
	return json.Marshal(p)
}

// Scan 实现了 sql.Scanner 接口，用于从数据库读取偏好。
func (p *SubscriberPreferences) Scan(value interface{}) error {
	if value == nil {
		*p = SubscriberPreferences{Frequency: FrequencyEveryPost}
		return nil
	}
	b, ok := value.([]byte)
	if !ok {
		s, ok := value.(string)
		if !ok {
			return errors.New("type assertion to []byte failed")
		}
		b = []byte(s)
	}
	return json.Unmarshal(b, p)
}

// MatchesCategories 判断给定文章分类是否命中订阅偏好。
// 没有任何分类偏好等于"对一切感兴趣"，始终命中；
// 否则只要有任意一个偏好分类与文章分类相交即命中。
func (p SubscriberPreferences) MatchesCategories(articleCategories []string) bool {
	if len(p.Categories) == 0 {
		return true
	}
	want := make(map[string]struct{}, len(p.Categories))
	for _, c := range p.Categories {
		want[c] = struct{}{}
	}
	for _, c := range articleCategories {
		if _, ok := want[c]; ok {
			return true
		}
	}
	return false
}

// Subscriber 是订阅者的核心领域模型。
type Subscriber struct {
	ID        uint
	Email     string // 小写存储，唯一
	FirstName string
	Source    string // 订阅来源，例如 "api"、"blog_footer"
	Status    SubscriberStatus

	// --- 确认令牌（仅 pending 期间存在） ---
	// 数据库只保存令牌的加盐哈希，明文只出现在确认邮件的链接里。
	ConfirmationTokenHash *string
	ConfirmationExpiresAt *time.Time

	// --- 退订令牌（确认时一次性生成，终身稳定） ---
	UnsubscribeToken *string

	Preferences SubscriberPreferences

	// --- 观测计数，不影响行为 ---
	EmailsSent    int
	EmailsOpened  int
	EmailsClicked int

	ConfirmedAt    *time.Time
	UnsubscribedAt *time.Time
	LastEmailAt    *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsActive 检查订阅是否处于生效状态。
func (s *Subscriber) IsActive() bool {
	return s.Status == SubscriberStatusActive
}

// SubscriberStats 汇总了订阅者的状态分布和近期增长，仅用于后台观测。
type SubscriberStats struct {
	Total          int64                  `json:"total"`
	Pending        int64                  `json:"pending"`
	Active         int64                  `json:"active"`
	Unsubscribed   int64                  `json:"unsubscribed"`
	Bounced        int64                  `json:"bounced"`
	ActiveRatio    float64                `json:"activeRatio"`
	RecentSignups  []SubscriberDailyCount `json:"recentSignups"`
	TotalEmailSent int64                  `json:"totalEmailsSent"`
}

// SubscriberDailyCount 是单日新增订阅数。
type SubscriberDailyCount struct {
	Date  string `json:"date"` // YYYY-MM-DD
	Count int64  `json:"count"`
}
