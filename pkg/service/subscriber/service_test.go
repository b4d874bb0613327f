package subscriber

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/linkfable/folio-app/internal/pkg/utils"
	"github.com/linkfable/folio-app/pkg/constant"
	"github.com/linkfable/folio-app/pkg/domain/model"
	"github.com/linkfable/folio-app/pkg/domain/repository"
	"github.com/linkfable/folio-app/pkg/handler/subscriber/dto"
	"github.com/linkfable/folio-app/pkg/idgen"
)

const testTokenSalt = "subscriber-test-secret"

func TestMain(m *testing.M) {
	if err := idgen.InitSqidsEncoderWithSeed("subscriber-service-test-seed"); err != nil {
		fmt.Println("初始化ID编码器失败:", err)
		os.Exit(1)
	}
	os.Exit(m.Run())
}

// --- 测试替身 ---

type fakeSubscriberRepo struct {
	mu     sync.Mutex
	nextID uint
	subs   map[uint]*model.Subscriber
}

func newFakeSubscriberRepo() *fakeSubscriberRepo {
	return &fakeSubscriberRepo{nextID: 1, subs: make(map[uint]*model.Subscriber)}
}

func (f *fakeSubscriberRepo) seed(sub *model.Subscriber) *model.Subscriber {
	f.mu.Lock()
	defer f.mu.Unlock()
	if sub.ID == 0 {
		sub.ID = f.nextID
	}
	if sub.ID >= f.nextID {
		f.nextID = sub.ID + 1
	}
	if sub.CreatedAt.IsZero() {
		sub.CreatedAt = time.Now()
	}
	f.subs[sub.ID] = sub
	return sub
}

func (f *fakeSubscriberRepo) Create(_ context.Context, sub *model.Subscriber) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	sub.ID = f.nextID
	f.nextID++
	now := time.Now()
	sub.CreatedAt = now
	sub.UpdatedAt = now
	f.subs[sub.ID] = sub
	return nil
}

func (f *fakeSubscriberRepo) Update(_ context.Context, sub *model.Subscriber) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.subs[sub.ID]; !ok {
		return errors.New("订阅者不存在")
	}
	sub.UpdatedAt = time.Now()
	f.subs[sub.ID] = sub
	return nil
}

func (f *fakeSubscriberRepo) FindByEmail(_ context.Context, email string) (*model.Subscriber, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, sub := range f.subs {
		if sub.Email == email {
			return sub, nil
		}
	}
	return nil, nil
}

func (f *fakeSubscriberRepo) FindByConfirmationTokenHash(_ context.Context, hash string, now time.Time) (*model.Subscriber, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, sub := range f.subs {
		if sub.ConfirmationTokenHash != nil && *sub.ConfirmationTokenHash == hash &&
			sub.ConfirmationExpiresAt != nil && sub.ConfirmationExpiresAt.After(now) {
			return sub, nil
		}
	}
	return nil, nil
}

func (f *fakeSubscriberRepo) FindByUnsubscribeToken(_ context.Context, token string) (*model.Subscriber, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, sub := range f.subs {
		if sub.UnsubscribeToken != nil && *sub.UnsubscribeToken == token {
			return sub, nil
		}
	}
	return nil, nil
}

func (f *fakeSubscriberRepo) FindActive(_ context.Context) ([]*model.Subscriber, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*model.Subscriber
	for _, sub := range f.subs {
		if sub.Status == model.SubscriberStatusActive {
			out = append(out, sub)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeSubscriberRepo) IncrementEmailsSent(_ context.Context, id uint, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	sub, ok := f.subs[id]
	if !ok {
		return errors.New("订阅者不存在")
	}
	sub.EmailsSent++
	sub.LastEmailAt = &at
	return nil
}

func (f *fakeSubscriberRepo) List(_ context.Context, params *repository.SubscriberListParams) ([]*model.Subscriber, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var filtered []*model.Subscriber
	for _, sub := range f.subs {
		if params.Status != nil && sub.Status != *params.Status {
			continue
		}
		if params.Search != nil && *params.Search != "" &&
			!strings.Contains(sub.Email, *params.Search) && !strings.Contains(sub.FirstName, *params.Search) {
			continue
		}
		filtered = append(filtered, sub)
	}
	sort.Slice(filtered, func(i, j int) bool { return filtered[i].ID < filtered[j].ID })
	total := int64(len(filtered))
	start := (params.Page - 1) * params.PageSize
	if start >= len(filtered) {
		return nil, total, nil
	}
	end := start + params.PageSize
	if end > len(filtered) {
		end = len(filtered)
	}
	return filtered[start:end], total, nil
}

func (f *fakeSubscriberRepo) StatusCounts(context.Context) (map[model.SubscriberStatus]int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	counts := make(map[model.SubscriberStatus]int64)
	for _, sub := range f.subs {
		counts[sub.Status]++
	}
	return counts, nil
}

func (f *fakeSubscriberRepo) DailySignups(context.Context, time.Time) ([]model.SubscriberDailyCount, error) {
	return nil, nil
}

func (f *fakeSubscriberRepo) SumEmailsSent(context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var sum int64
	for _, sub := range f.subs {
		sum += int64(sub.EmailsSent)
	}
	return sum, nil
}

func (f *fakeSubscriberRepo) PurgeExpiredPending(_ context.Context, expiredBefore time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var purged int64
	for id, sub := range f.subs {
		if sub.Status == model.SubscriberStatusPending &&
			sub.ConfirmationExpiresAt != nil && sub.ConfirmationExpiresAt.Before(expiredBefore) {
			delete(f.subs, id)
			purged++
		}
	}
	return purged, nil
}

type sentMail struct {
	to    string
	token string
}

// fakeEmailService 记录所有发送调用，可按收件人注入发送失败。
type fakeEmailService struct {
	mu            sync.Mutex
	confirmations []sentMail
	welcomes      []sentMail
	newsletters   []sentMail
	failFor       map[string]bool
}

func newFakeEmailService() *fakeEmailService {
	return &fakeEmailService{failFor: make(map[string]bool)}
}

func (f *fakeEmailService) SendTestEmail(context.Context, string) error { return nil }

func (f *fakeEmailService) SendConfirmationEmail(_ context.Context, to, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failFor[to] {
		return errors.New("smtp 连接失败")
	}
	f.confirmations = append(f.confirmations, sentMail{to: to, token: token})
	return nil
}

func (f *fakeEmailService) SendWelcomeEmail(_ context.Context, to, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.welcomes = append(f.welcomes, sentMail{to: to, token: token})
	return nil
}

func (f *fakeEmailService) SendNewsletterEmail(_ context.Context, to, token string, _ *model.Article) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failFor[to] {
		return errors.New("smtp 连接失败")
	}
	f.newsletters = append(f.newsletters, sentMail{to: to, token: token})
	return nil
}

func (f *fakeEmailService) SendCommentNotification(*model.Comment, *model.Article) {}

func (f *fakeEmailService) lastConfirmation() *sentMail {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.confirmations) == 0 {
		return nil
	}
	return &f.confirmations[len(f.confirmations)-1]
}

func (f *fakeEmailService) newsletterRecipients() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.newsletters))
	for _, m := range f.newsletters {
		out = append(out, m.to)
	}
	sort.Strings(out)
	return out
}

type fakeSettings struct {
	values map[string]string
}

func (f *fakeSettings) LoadAllSettings(context.Context) error { return nil }
func (f *fakeSettings) Get(key string) string { return f.values[key] }
func (f *fakeSettings) GetBool(key string) bool {
	b, _ := strconv.ParseBool(f.values[key])
	return b
}
func (f *fakeSettings) GetInt(key string) int {
	n, _ := strconv.Atoi(f.values[key])
	return n
}
func (f *fakeSettings) GetByKeys([]string) map[string]interface{} { return nil }
func (f *fakeSettings) GetSiteConfig() map[string]interface{} { return nil }
func (f *fakeSettings) UpdateSettings(_ context.Context, m map[string]string) error {
	for k, v := range m {
		f.values[k] = v
	}
	return nil
}
func (f *fakeSettings) IsPublicSetting(string) bool { return false }
func (f *fakeSettings) GetAll() map[string]string { return f.values }

func defaultSubscriberSettings() *fakeSettings {
	return &fakeSettings{values: map[string]string{
		constant.KeySubscribeEnable.String(): "true",
		constant.KeyJWTSecret.String():       testTokenSalt,
	}}
}

type fakeArticleRepo struct {
	articles map[uint]*model.Article
}

func newFakeArticleRepo(articles ...*model.Article) *fakeArticleRepo {
	f := &fakeArticleRepo{articles: make(map[uint]*model.Article)}
	for _, a := range articles {
		f.articles[a.ID] = a
	}
	return f
}

func (f *fakeArticleRepo) FindByID(_ context.Context, id uint) (*model.Article, error) {
	return f.articles[id], nil
}

// 其余方法订阅服务不会触达
func (f *fakeArticleRepo) Create(context.Context, *model.Article) error { return nil }
func (f *fakeArticleRepo) Update(context.Context, *model.Article) error { return nil }
func (f *fakeArticleRepo) Delete(context.Context, uint) error { return nil }
func (f *fakeArticleRepo) List(context.Context, *model.ListArticlesOptions) ([]*model.Article, int64, error) {
	return nil, 0, nil
}
func (f *fakeArticleRepo) UpdateViewCounts(context.Context, map[uint]int) error { return nil }
func (f *fakeArticleRepo) Publish(context.Context, uint, time.Time) (*model.Article, bool, error) {
	return nil, false, nil
}
func (f *fakeArticleRepo) FindDueScheduled(context.Context, time.Time) ([]*model.Article, error) {
	return nil, nil
}

type testEnv struct {
	repo     *fakeSubscriberRepo
	articles *fakeArticleRepo
	email    *fakeEmailService
	svc      *Service
}

func newTestEnv(articles ...*model.Article) *testEnv {
	env := &testEnv{
		repo:     newFakeSubscriberRepo(),
		articles: newFakeArticleRepo(articles...),
		email:    newFakeEmailService(),
	}
	env.svc = NewService(env.repo, env.articles, defaultSubscriberSettings(), env.email)
	return env
}

func strPtr(s string) *string { return &s }

// --- 测试 ---

func TestSubscribe(t *testing.T) {
	ctx := context.Background()

	t.Run("新邮箱创建待确认订阅", func(t *testing.T) {
		env := newTestEnv()

		resp, err := env.svc.Subscribe(ctx, &dto.SubscribeRequest{
			Email:     "  Reader@Example.COM ",
			FirstName: "小明",
		})
		if err != nil {
			t.Fatalf("Subscribe() error = %v", err)
		}
		if resp.Email != "reader@example.com" || resp.Status != "pending" {
			t.Errorf("响应 = %+v, want 小写邮箱和 pending 状态", resp)
		}

		sub, _ := env.repo.FindByEmail(ctx, "reader@example.com")
		if sub == nil {
			t.Fatal("订阅者没有入库")
		}
		if sub.Status != model.SubscriberStatusPending {
			t.Errorf("状态 = %s, want pending", sub.Status)
		}
		if sub.ConfirmationTokenHash == nil || *sub.ConfirmationTokenHash == "" {
			t.Error("确认令牌哈希应已写入")
		}
		if sub.ConfirmationExpiresAt == nil || sub.ConfirmationExpiresAt.Before(time.Now().Add(23*time.Hour)) {
			t.Error("确认令牌有效期应约为24小时")
		}
		if sub.Source != "api" {
			t.Errorf("默认来源 = %s, want api", sub.Source)
		}

		mail := env.email.lastConfirmation()
		if mail == nil || mail.to != "reader@example.com" {
			t.Fatal("应向订阅邮箱发送确认邮件")
		}
		// 邮件里是明文令牌，库里是加盐哈希，二者通过哈希对应
		if utils.HashToken(mail.token, testTokenSalt) != *sub.ConfirmationTokenHash {
			t.Error("邮件中的令牌与入库哈希不对应")
		}
	})

	t.Run("已生效订阅重复订阅被短路", func(t *testing.T) {
		env := newTestEnv()
		env.repo.seed(&model.Subscriber{
			Email:  "active@example.com",
			Status: model.SubscriberStatusActive,
		})

		_, err := env.svc.Subscribe(ctx, &dto.SubscribeRequest{Email: "active@example.com"})
		if !errors.Is(err, constant.ErrAlreadySubscribed) {
			t.Errorf("err = %v, want ErrAlreadySubscribed", err)
		}
		if len(env.email.confirmations) != 0 {
			t.Error("已生效订阅不应再发确认邮件")
		}
		sub, _ := env.repo.FindByEmail(ctx, "active@example.com")
		if sub.ConfirmationTokenHash != nil {
			t.Error("不应为已生效订阅签发新令牌")
		}
	})

	t.Run("待确认订阅重发并更换令牌", func(t *testing.T) {
		env := newTestEnv()
		oldHash := "old-hash"
		oldExpiry := time.Now().Add(1 * time.Hour)
		env.repo.seed(&model.Subscriber{
			Email:                 "pending@example.com",
			Status:                model.SubscriberStatusPending,
			ConfirmationTokenHash: &oldHash,
			ConfirmationExpiresAt: &oldExpiry,
		})

		resp, err := env.svc.Subscribe(ctx, &dto.SubscribeRequest{Email: "pending@example.com"})
		if err != nil {
			t.Fatalf("Subscribe() error = %v", err)
		}
		if resp.Status != "pending" {
			t.Errorf("状态 = %s, want pending", resp.Status)
		}

		sub, _ := env.repo.FindByEmail(ctx, "pending@example.com")
		if sub.ConfirmationTokenHash == nil || *sub.ConfirmationTokenHash == oldHash {
			t.Error("应签发新的确认令牌")
		}
		if len(env.email.confirmations) != 1 {
			t.Errorf("确认邮件发送次数 = %d, want 1", len(env.email.confirmations))
		}
	})

	t.Run("退订后重新订阅回到待确认", func(t *testing.T) {
		env := newTestEnv()
		unsubToken := "stable-unsubscribe-token"
		unsubAt := time.Now().Add(-24 * time.Hour)
		env.repo.seed(&model.Subscriber{
			Email:            "back@example.com",
			Status:           model.SubscriberStatusUnsubscribed,
			UnsubscribeToken: &unsubToken,
			UnsubscribedAt:   &unsubAt,
		})

		resp, err := env.svc.Subscribe(ctx, &dto.SubscribeRequest{Email: "back@example.com"})
		if err != nil {
			t.Fatalf("Subscribe() error = %v", err)
		}
		if resp.Status != "pending" {
			t.Errorf("状态 = %s, want pending", resp.Status)
		}
		sub, _ := env.repo.FindByEmail(ctx, "back@example.com")
		if sub.Status != model.SubscriberStatusPending {
			t.Errorf("状态 = %s, want pending", sub.Status)
		}
		if sub.UnsubscribeToken == nil || *sub.UnsubscribeToken != unsubToken {
			t.Error("重新订阅不应丢弃原有的退订令牌")
		}
	})

	t.Run("确认邮件发送失败不影响订阅落库", func(t *testing.T) {
		env := newTestEnv()
		env.email.failFor["reader@example.com"] = true

		resp, err := env.svc.Subscribe(ctx, &dto.SubscribeRequest{Email: "reader@example.com"})
		if err != nil {
			t.Fatalf("Subscribe() error = %v, 邮件失败不应上抛", err)
		}
		if resp.Status != "pending" {
			t.Errorf("状态 = %s, want pending", resp.Status)
		}
		if sub, _ := env.repo.FindByEmail(ctx, "reader@example.com"); sub == nil {
			t.Error("订阅记录应已落库")
		}
	})

	t.Run("订阅功能关闭时拒绝", func(t *testing.T) {
		env := newTestEnv()
		settings := defaultSubscriberSettings()
		settings.values[constant.KeySubscribeEnable.String()] = "false"
		env.svc = NewService(env.repo, env.articles, settings, env.email)

		_, err := env.svc.Subscribe(ctx, &dto.SubscribeRequest{Email: "x@example.com"})
		if !errors.Is(err, constant.ErrForbidden) {
			t.Errorf("err = %v, want ErrForbidden", err)
		}
	})
}

func TestConfirm(t *testing.T) {
	ctx := context.Background()

	t.Run("有效令牌激活订阅", func(t *testing.T) {
		env := newTestEnv()
		if _, err := env.svc.Subscribe(ctx, &dto.SubscribeRequest{Email: "reader@example.com"}); err != nil {
			t.Fatalf("Subscribe() error = %v", err)
		}
		mail := env.email.lastConfirmation()

		resp, err := env.svc.Confirm(ctx, mail.token)
		if err != nil {
			t.Fatalf("Confirm() error = %v", err)
		}
		if resp.Status != "active" {
			t.Errorf("状态 = %s, want active", resp.Status)
		}

		sub, _ := env.repo.FindByEmail(ctx, "reader@example.com")
		if sub.Status != model.SubscriberStatusActive {
			t.Errorf("状态 = %s, want active", sub.Status)
		}
		if sub.ConfirmationTokenHash != nil || sub.ConfirmationExpiresAt != nil {
			t.Error("确认字段应在激活后清空")
		}
		if sub.UnsubscribeToken == nil || *sub.UnsubscribeToken == "" {
			t.Fatal("激活时应生成退订令牌")
		}
		if sub.ConfirmedAt == nil {
			t.Error("ConfirmedAt 应已写入")
		}
		if len(env.email.welcomes) != 1 || env.email.welcomes[0].token != *sub.UnsubscribeToken {
			t.Error("欢迎邮件应携带退订令牌")
		}
	})

	t.Run("未知令牌按未找到处理", func(t *testing.T) {
		env := newTestEnv()
		_, err := env.svc.Confirm(ctx, "deadbeef")
		if !errors.Is(err, constant.ErrNotFound) {
			t.Errorf("err = %v, want ErrNotFound", err)
		}
	})

	t.Run("过期令牌按未找到处理", func(t *testing.T) {
		env := newTestEnv()
		token := "expired-plain-token"
		hash := utils.HashToken(token, testTokenSalt)
		expiredAt := time.Now().Add(-1 * time.Minute)
		env.repo.seed(&model.Subscriber{
			Email:                 "late@example.com",
			Status:                model.SubscriberStatusPending,
			ConfirmationTokenHash: &hash,
			ConfirmationExpiresAt: &expiredAt,
		})

		_, err := env.svc.Confirm(ctx, token)
		if !errors.Is(err, constant.ErrNotFound) {
			t.Errorf("err = %v, want ErrNotFound", err)
		}
	})

	t.Run("再次确认沿用原退订令牌", func(t *testing.T) {
		env := newTestEnv()
		stable := "stable-unsubscribe-token"
		token := "resubscribe-plain-token"
		hash := utils.HashToken(token, testTokenSalt)
		expiry := time.Now().Add(1 * time.Hour)
		env.repo.seed(&model.Subscriber{
			Email:                 "back@example.com",
			Status:                model.SubscriberStatusPending,
			ConfirmationTokenHash: &hash,
			ConfirmationExpiresAt: &expiry,
			UnsubscribeToken:      &stable,
		})

		if _, err := env.svc.Confirm(ctx, token); err != nil {
			t.Fatalf("Confirm() error = %v", err)
		}
		sub, _ := env.repo.FindByEmail(ctx, "back@example.com")
		if sub.UnsubscribeToken == nil || *sub.UnsubscribeToken != stable {
			t.Error("已有退订令牌不应被更换")
		}
	})
}

func TestUnsubscribe(t *testing.T) {
	ctx := context.Background()

	t.Run("有效令牌退订", func(t *testing.T) {
		env := newTestEnv()
		token := "my-unsubscribe-token"
		env.repo.seed(&model.Subscriber{
			Email:            "reader@example.com",
			Status:           model.SubscriberStatusActive,
			UnsubscribeToken: &token,
		})

		resp, err := env.svc.Unsubscribe(ctx, token)
		if err != nil {
			t.Fatalf("Unsubscribe() error = %v", err)
		}
		if resp.Status != "unsubscribed" {
			t.Errorf("状态 = %s, want unsubscribed", resp.Status)
		}
		sub, _ := env.repo.FindByEmail(ctx, "reader@example.com")
		if sub.Status != model.SubscriberStatusUnsubscribed || sub.UnsubscribedAt == nil {
			t.Error("退订状态和时间戳应已写入")
		}
	})

	t.Run("未知令牌按未找到处理", func(t *testing.T) {
		env := newTestEnv()
		_, err := env.svc.Unsubscribe(ctx, "no-such-token")
		if !errors.Is(err, constant.ErrNotFound) {
			t.Errorf("err = %v, want ErrNotFound", err)
		}
	})

	t.Run("重复退订幂等成功", func(t *testing.T) {
		env := newTestEnv()
		token := "my-unsubscribe-token"
		env.repo.seed(&model.Subscriber{
			Email:            "reader@example.com",
			Status:           model.SubscriberStatusActive,
			UnsubscribeToken: &token,
		})

		if _, err := env.svc.Unsubscribe(ctx, token); err != nil {
			t.Fatalf("第一次退订失败: %v", err)
		}
		if _, err := env.svc.Unsubscribe(ctx, token); err != nil {
			t.Errorf("第二次退订应幂等成功, got %v", err)
		}
	})
}

func TestUpdatePreferences(t *testing.T) {
	ctx := context.Background()

	t.Run("浅合并只覆盖提供的字段", func(t *testing.T) {
		env := newTestEnv()
		token := "my-unsubscribe-token"
		env.repo.seed(&model.Subscriber{
			Email:            "reader@example.com",
			Status:           model.SubscriberStatusActive,
			UnsubscribeToken: &token,
			Preferences: model.SubscriberPreferences{
				Frequency:  model.FrequencyWeekly,
				Categories: []string{"go"},
			},
		})

		resp, err := env.svc.UpdatePreferences(ctx, token, &dto.PreferencesPayload{
			Categories: &[]string{"javascript", "rust"},
		})
		if err != nil {
			t.Fatalf("UpdatePreferences() error = %v", err)
		}
		if resp.Preferences.Frequency != model.FrequencyWeekly {
			t.Errorf("未提供的 Frequency 被改写为 %s", resp.Preferences.Frequency)
		}
		if len(resp.Preferences.Categories) != 2 || resp.Preferences.Categories[0] != "javascript" {
			t.Errorf("Categories = %v, want [javascript rust]", resp.Preferences.Categories)
		}
	})

	t.Run("非生效订阅不允许修改", func(t *testing.T) {
		env := newTestEnv()
		token := "pending-token"
		env.repo.seed(&model.Subscriber{
			Email:            "pending@example.com",
			Status:           model.SubscriberStatusPending,
			UnsubscribeToken: &token,
		})

		_, err := env.svc.UpdatePreferences(ctx, token, &dto.PreferencesPayload{Frequency: strPtr(model.FrequencyMonthly)})
		if !errors.Is(err, constant.ErrSubscriberNotActive) {
			t.Errorf("err = %v, want ErrSubscriberNotActive", err)
		}
	})

	t.Run("未知令牌按未找到处理", func(t *testing.T) {
		env := newTestEnv()
		_, err := env.svc.UpdatePreferences(ctx, "no-such-token", &dto.PreferencesPayload{})
		if !errors.Is(err, constant.ErrNotFound) {
			t.Errorf("err = %v, want ErrNotFound", err)
		}
	})
}

func TestStats(t *testing.T) {
	env := newTestEnv()
	env.repo.seed(&model.Subscriber{Email: "a@example.com", Status: model.SubscriberStatusActive, EmailsSent: 3})
	env.repo.seed(&model.Subscriber{Email: "b@example.com", Status: model.SubscriberStatusActive, EmailsSent: 2})
	env.repo.seed(&model.Subscriber{Email: "c@example.com", Status: model.SubscriberStatusPending})
	env.repo.seed(&model.Subscriber{Email: "d@example.com", Status: model.SubscriberStatusUnsubscribed})

	stats, err := env.svc.Stats(context.Background())
	if err != nil {
		t.Fatalf("Stats() error = %v", err)
	}
	if stats.Total != 4 || stats.Active != 2 || stats.Pending != 1 || stats.Unsubscribed != 1 {
		t.Errorf("统计结果 = %+v", stats)
	}
	if stats.ActiveRatio != 0.5 {
		t.Errorf("ActiveRatio = %v, want 0.5", stats.ActiveRatio)
	}
	if stats.TotalEmailSent != 5 {
		t.Errorf("TotalEmailSent = %d, want 5", stats.TotalEmailSent)
	}
	if stats.RecentSignups == nil {
		t.Error("RecentSignups 应为空切片而非 nil")
	}
}

func TestPurgeExpiredPending(t *testing.T) {
	env := newTestEnv()
	longGone := time.Now().Add(-72 * time.Hour)
	recent := time.Now().Add(-1 * time.Hour)
	env.repo.seed(&model.Subscriber{Email: "stale@example.com", Status: model.SubscriberStatusPending, ConfirmationExpiresAt: &longGone})
	env.repo.seed(&model.Subscriber{Email: "fresh@example.com", Status: model.SubscriberStatusPending, ConfirmationExpiresAt: &recent})

	purged, err := env.svc.PurgeExpiredPending(context.Background(), 48*time.Hour)
	if err != nil {
		t.Fatalf("PurgeExpiredPending() error = %v", err)
	}
	if purged != 1 {
		t.Errorf("清理数量 = %d, want 1", purged)
	}
	if sub, _ := env.repo.FindByEmail(context.Background(), "fresh@example.com"); sub == nil {
		t.Error("宽限期内的待确认订阅不应被清理")
	}
}
