package article

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

	"github.com/linkfable/folio-app/internal/pkg/event"
	"github.com/linkfable/folio-app/pkg/constant"
	"github.com/linkfable/folio-app/pkg/domain/model"
	"github.com/linkfable/folio-app/pkg/domain/repository"
	"github.com/linkfable/folio-app/pkg/idgen"
	"github.com/linkfable/folio-app/pkg/service/utility"
)

func TestMain(m *testing.M) {
	if err := idgen.InitSqidsEncoderWithSeed("article-service-test-seed"); err != nil {
		fmt.Println("初始化ID编码器失败:", err)
		os.Exit(1)
	}
	os.Exit(m.Run())
}

// --- 测试替身 ---

type fakeArticleRepo struct {
	mu          sync.Mutex
	nextID      uint
	articles    map[uint]*model.Article
	publishErr  map[uint]error
	viewUpdates map[uint]int
}

func newFakeArticleRepo() *fakeArticleRepo {
	return &fakeArticleRepo{
		nextID:      1,
		articles:    make(map[uint]*model.Article),
		publishErr:  make(map[uint]error),
		viewUpdates: make(map[uint]int),
	}
}

func (f *fakeArticleRepo) seed(a *model.Article) *model.Article {
	f.mu.Lock()
	defer f.mu.Unlock()
	if a.ID == 0 {
		a.ID = f.nextID
	}
	if a.ID >= f.nextID {
		f.nextID = a.ID + 1
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now()
	}
	f.articles[a.ID] = a
	return a
}

func (f *fakeArticleRepo) FindByID(_ context.Context, id uint) (*model.Article, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.articles[id], nil
}

func (f *fakeArticleRepo) Create(_ context.Context, a *model.Article) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	a.ID = f.nextID
	f.nextID++
	now := time.Now()
	a.CreatedAt = now
	a.UpdatedAt = now
	f.articles[a.ID] = a
	return nil
}

func (f *fakeArticleRepo) Update(_ context.Context, a *model.Article) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.articles[a.ID]; !ok {
		return errors.New("文章不存在")
	}
	a.UpdatedAt = time.Now()
	f.articles[a.ID] = a
	return nil
}

func (f *fakeArticleRepo) Delete(_ context.Context, id uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.articles, id)
	return nil
}

func (f *fakeArticleRepo) List(_ context.Context, options *model.ListArticlesOptions) ([]*model.Article, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var filtered []*model.Article
	for _, a := range f.articles {
		if options.Status != "" && a.Status != options.Status {
			continue
		}
		if options.Category != "" {
			found := false
			for _, c := range a.Categories {
				if c == options.Category {
					found = true
					break
				}
			}
			if !found {
				continue
			}
		}
		if options.Query != "" && !strings.Contains(a.Title, options.Query) {
			continue
		}
		filtered = append(filtered, a)
	}
	sort.Slice(filtered, func(i, j int) bool { return filtered[i].ID < filtered[j].ID })
	total := int64(len(filtered))
	start := (options.Page - 1) * options.PageSize
	if start >= len(filtered) {
		return nil, total, nil
	}
	end := start + options.PageSize
	if end > len(filtered) {
		end = len(filtered)
	}
	return filtered[start:end], total, nil
}

func (f *fakeArticleRepo) UpdateViewCounts(_ context.Context, updates map[uint]int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for id, delta := range updates {
		f.viewUpdates[id] += delta
		if a, ok := f.articles[id]; ok {
			a.ViewCount += delta
		}
	}
	return nil
}

func (f *fakeArticleRepo) Publish(_ context.Context, id uint, publishedAt time.Time) (*model.Article, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.publishErr[id]; err != nil {
		return nil, false, err
	}
	a, ok := f.articles[id]
	if !ok {
		return nil, false, nil
	}
	first := a.PublishedAt == nil
	if first {
		at := publishedAt
		a.PublishedAt = &at
	}
	a.Status = model.ArticleStatusPublished
	a.ScheduledAt = nil
	return a, first, nil
}

func (f *fakeArticleRepo) FindDueScheduled(_ context.Context, now time.Time) ([]*model.Article, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var due []*model.Article
	for _, a := range f.articles {
		if a.Status == model.ArticleStatusScheduled && a.ScheduledAt != nil && !a.ScheduledAt.After(now) {
			due = append(due, a)
		}
	}
	sort.Slice(due, func(i, j int) bool { return due[i].ID < due[j].ID })
	return due, nil
}

// fakeCommentRepo 只为批量评论数统计服务，其余方法文章服务不会触达。
type fakeCommentRepo struct {
	approvedCounts map[uint]int64
}

func (f *fakeCommentRepo) CountApprovedByArticleIDs(_ context.Context, ids []uint) (map[uint]int64, error) {
	out := make(map[uint]int64)
	for _, id := range ids {
		out[id] = f.approvedCounts[id]
	}
	return out, nil
}

func (f *fakeCommentRepo) Create(context.Context, *repository.CreateCommentParams) (*model.Comment, error) {
	return nil, nil
}
func (f *fakeCommentRepo) FindByID(context.Context, uint) (*model.Comment, error) { return nil, nil }
func (f *fakeCommentRepo) FindByArticleAndID(context.Context, uint, uint) (*model.Comment, error) {
	return nil, nil
}
func (f *fakeCommentRepo) FindAllByArticle(context.Context, uint) ([]*model.Comment, error) {
	return nil, nil
}
func (f *fakeCommentRepo) Moderate(context.Context, uint, *repository.ModerateParams) (*model.Comment, error) {
	return nil, nil
}
func (f *fakeCommentRepo) HasChildren(context.Context, uint) (bool, error) { return false, nil }
func (f *fakeCommentRepo) Delete(context.Context, uint) (bool, error) { return true, nil }
func (f *fakeCommentRepo) FindWithConditions(context.Context, *repository.AdminCommentListParams) ([]*model.Comment, int64, error) {
	return nil, 0, nil
}
func (f *fakeCommentRepo) StatusCounts(context.Context) (map[model.CommentStatus]int64, error) {
	return nil, nil
}
func (f *fakeCommentRepo) DailyCounts(context.Context, time.Time) ([]model.CommentDailyCount, error) {
	return nil, nil
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
func (f *fakeSettings) UpdateSettings(context.Context, map[string]string) error { return nil }
func (f *fakeSettings) IsPublicSetting(string) bool { return false }
func (f *fakeSettings) GetAll() map[string]string { return f.values }

type testEnv struct {
	repo     *fakeArticleRepo
	comments *fakeCommentRepo
	cache    utility.CacheService
	events   chan *ArticlePublishedEvent
	svc      Service
}

func newTestEnv() *testEnv {
	bus := event.NewEventBus()
	events := make(chan *ArticlePublishedEvent, 16)
	bus.Subscribe(event.ArticlePublished, func(payload interface{}) {
		if e, ok := payload.(*ArticlePublishedEvent); ok {
			events <- e
		}
	})

	env := &testEnv{
		repo:     newFakeArticleRepo(),
		comments: &fakeCommentRepo{approvedCounts: make(map[uint]int64)},
		cache:    utility.NewMemoryCacheService(),
		events:   events,
	}
	settings := &fakeSettings{values: map[string]string{
		constant.KeyPostDefaultCover.String(): "/static/img/default-cover.webp",
		constant.KeyPostPageSize.String():     "10",
	}}
	env.svc = NewService(env.repo, env.comments, settings, env.cache, bus)
	return env
}

// waitEvent 等待事件总线把发布事件送达，总线是异步的。
func waitEvent(t *testing.T, events chan *ArticlePublishedEvent) *ArticlePublishedEvent {
	t.Helper()
	select {
	case e := <-events:
		return e
	case <-time.After(2 * time.Second):
		t.Fatal("等待文章发布事件超时")
		return nil
	}
}

func assertNoEvent(t *testing.T, events chan *ArticlePublishedEvent) {
	t.Helper()
	select {
	case e := <-events:
		t.Fatalf("不应收到发布事件, got %+v", e)
	case <-time.After(100 * time.Millisecond):
	}
}

func articlePublicID(t *testing.T, id uint) string {
	t.Helper()
	pid, err := idgen.GeneratePublicID(id, idgen.EntityTypeArticle)
	if err != nil {
		t.Fatalf("生成文章公共ID失败: %v", err)
	}
	return pid
}

func strPtr(s string) *string { return &s }

// --- 测试 ---

func TestServiceCreate(t *testing.T) {
	ctx := context.Background()

	t.Run("默认创建为草稿", func(t *testing.T) {
		env := newTestEnv()

		resp, err := env.svc.Create(ctx, &model.CreateArticleRequest{
			Title:     "第一篇",
			ContentMd: "# 你好\n\n这是正文。",
		})
		if err != nil {
			t.Fatalf("Create() error = %v", err)
		}
		if resp.Status != model.ArticleStatusDraft {
			t.Errorf("状态 = %s, want DRAFT", resp.Status)
		}
		if resp.PublishedAt != nil {
			t.Error("草稿不应有发布时间")
		}
		if !strings.Contains(resp.ContentHTML, "<h1") {
			t.Errorf("正文未渲染为HTML: %q", resp.ContentHTML)
		}
		if resp.Summary == "" || strings.Contains(resp.Summary, "<") {
			t.Errorf("摘要应从正文提取且不含HTML标签: %q", resp.Summary)
		}
		if resp.CoverURL != "/static/img/default-cover.webp" {
			t.Errorf("封面应使用站点默认值, got %q", resp.CoverURL)
		}
		assertNoEvent(t, env.events)
	})

	t.Run("直接发布触发首发事件", func(t *testing.T) {
		env := newTestEnv()

		resp, err := env.svc.Create(ctx, &model.CreateArticleRequest{
			Title:     "直接发布",
			ContentMd: "正文",
			Status:    model.ArticleStatusPublished,
		})
		if err != nil {
			t.Fatalf("Create() error = %v", err)
		}
		if resp.PublishedAt == nil {
			t.Error("发布时的文章应有发布时间")
		}
		e := waitEvent(t, env.events)
		if !e.FirstPublish {
			t.Error("创建即发布应标记为首次发布")
		}
	})

	t.Run("定时发布时间必须是未来", func(t *testing.T) {
		env := newTestEnv()
		past := time.Now().Add(-1 * time.Hour).Format(time.RFC3339)

		_, err := env.svc.Create(ctx, &model.CreateArticleRequest{
			Title:       "迟到的定时",
			ScheduledAt: &past,
		})
		if !errors.Is(err, constant.ErrBadRequest) {
			t.Errorf("err = %v, want ErrBadRequest", err)
		}
	})

	t.Run("提供定时时间默认进入定时状态", func(t *testing.T) {
		env := newTestEnv()
		future := time.Now().Add(2 * time.Hour).Format(time.RFC3339)

		resp, err := env.svc.Create(ctx, &model.CreateArticleRequest{
			Title:       "定时文章",
			ScheduledAt: &future,
		})
		if err != nil {
			t.Fatalf("Create() error = %v", err)
		}
		if resp.Status != model.ArticleStatusScheduled {
			t.Errorf("状态 = %s, want SCHEDULED", resp.Status)
		}
		if resp.ScheduledAt == nil {
			t.Error("定时文章应记录定时时间")
		}
	})

	t.Run("定时状态缺少定时时间被拒绝", func(t *testing.T) {
		env := newTestEnv()

		_, err := env.svc.Create(ctx, &model.CreateArticleRequest{
			Title:  "没有时间的定时",
			Status: model.ArticleStatusScheduled,
		})
		if !errors.Is(err, constant.ErrBadRequest) {
			t.Errorf("err = %v, want ErrBadRequest", err)
		}
	})

	t.Run("分类被归一化去重", func(t *testing.T) {
		env := newTestEnv()

		resp, err := env.svc.Create(ctx, &model.CreateArticleRequest{
			Title:      "分类测试",
			Categories: []string{" Go ", "go", "JavaScript", ""},
		})
		if err != nil {
			t.Fatalf("Create() error = %v", err)
		}
		want := []string{"go", "javascript"}
		if len(resp.Categories) != 2 || resp.Categories[0] != want[0] || resp.Categories[1] != want[1] {
			t.Errorf("Categories = %v, want %v", resp.Categories, want)
		}
	})
}

func TestServiceUpdate(t *testing.T) {
	ctx := context.Background()

	t.Run("更新正文重新渲染HTML", func(t *testing.T) {
		env := newTestEnv()
		a := env.repo.seed(&model.Article{Title: "旧标题", Status: model.ArticleStatusDraft})

		resp, err := env.svc.Update(ctx, articlePublicID(t, a.ID), &model.UpdateArticleRequest{
			ContentMd: strPtr("## 新的内容"),
		})
		if err != nil {
			t.Fatalf("Update() error = %v", err)
		}
		if !strings.Contains(resp.ContentHTML, "<h2") {
			t.Errorf("正文未重新渲染: %q", resp.ContentHTML)
		}
	})

	t.Run("置为发布触发首发事件", func(t *testing.T) {
		env := newTestEnv()
		a := env.repo.seed(&model.Article{Title: "草稿", Status: model.ArticleStatusDraft})

		resp, err := env.svc.Update(ctx, articlePublicID(t, a.ID), &model.UpdateArticleRequest{
			Status: strPtr(model.ArticleStatusPublished),
		})
		if err != nil {
			t.Fatalf("Update() error = %v", err)
		}
		if resp.PublishedAt == nil {
			t.Error("发布后应有发布时间")
		}
		e := waitEvent(t, env.events)
		if !e.FirstPublish {
			t.Error("草稿首次置为发布应标记为首次发布")
		}
	})

	t.Run("已发布文章编辑不改变发布时间", func(t *testing.T) {
		env := newTestEnv()
		publishedAt := time.Now().Add(-48 * time.Hour)
		a := env.repo.seed(&model.Article{
			Title:       "已发布",
			Status:      model.ArticleStatusPublished,
			PublishedAt: &publishedAt,
		})

		resp, err := env.svc.Update(ctx, articlePublicID(t, a.ID), &model.UpdateArticleRequest{
			Title: strPtr("改了标题"),
		})
		if err != nil {
			t.Fatalf("Update() error = %v", err)
		}
		if resp.PublishedAt == nil || !resp.PublishedAt.Equal(publishedAt) {
			t.Error("编辑已发布文章不应改变原发布时间")
		}
		assertNoEvent(t, env.events)
	})

	t.Run("文章不存在返回未找到", func(t *testing.T) {
		env := newTestEnv()

		_, err := env.svc.Update(ctx, articlePublicID(t, 99), &model.UpdateArticleRequest{})
		if !errors.Is(err, constant.ErrNotFound) {
			t.Errorf("err = %v, want ErrNotFound", err)
		}
	})
}

func TestServicePublish(t *testing.T) {
	ctx := context.Background()

	t.Run("首次发布触发推送事件", func(t *testing.T) {
		env := newTestEnv()
		a := env.repo.seed(&model.Article{Title: "草稿", Status: model.ArticleStatusDraft})

		resp, err := env.svc.Publish(ctx, articlePublicID(t, a.ID))
		if err != nil {
			t.Fatalf("Publish() error = %v", err)
		}
		if resp.Status != model.ArticleStatusPublished || resp.PublishedAt == nil {
			t.Errorf("发布结果 = %+v", resp)
		}
		e := waitEvent(t, env.events)
		if !e.FirstPublish {
			t.Error("首次发布应标记 FirstPublish")
		}
	})

	t.Run("重复发布不算首发", func(t *testing.T) {
		env := newTestEnv()
		publishedAt := time.Now().Add(-24 * time.Hour)
		a := env.repo.seed(&model.Article{
			Title:       "再发一次",
			Status:      model.ArticleStatusPublished,
			PublishedAt: &publishedAt,
		})

		resp, err := env.svc.Publish(ctx, articlePublicID(t, a.ID))
		if err != nil {
			t.Fatalf("Publish() error = %v", err)
		}
		if !resp.PublishedAt.Equal(publishedAt) {
			t.Error("重复发布不应改变首次发布时间")
		}
		e := waitEvent(t, env.events)
		if e.FirstPublish {
			t.Error("重复发布不应标记 FirstPublish")
		}
	})

	t.Run("文章不存在返回未找到", func(t *testing.T) {
		env := newTestEnv()

		_, err := env.svc.Publish(ctx, articlePublicID(t, 42))
		if !errors.Is(err, constant.ErrNotFound) {
			t.Errorf("err = %v, want ErrNotFound", err)
		}
	})
}

func TestServiceGetPublic(t *testing.T) {
	ctx := context.Background()

	t.Run("草稿按未发布处理", func(t *testing.T) {
		env := newTestEnv()
		a := env.repo.seed(&model.Article{Title: "草稿", Status: model.ArticleStatusDraft})

		_, err := env.svc.GetPublic(ctx, articlePublicID(t, a.ID))
		if !errors.Is(err, constant.ErrArticleNotPublished) {
			t.Errorf("err = %v, want ErrArticleNotPublished", err)
		}
	})

	t.Run("浏览量合并缓存中的增量", func(t *testing.T) {
		env := newTestEnv()
		now := time.Now()
		a := env.repo.seed(&model.Article{
			Title:       "热门文章",
			Status:      model.ArticleStatusPublished,
			PublishedAt: &now,
			ViewCount:   100,
		})
		pid := articlePublicID(t, a.ID)
		if err := env.cache.Set(ctx, viewCountKeyPrefix+pid, 5, 0); err != nil {
			t.Fatalf("预置缓存失败: %v", err)
		}

		resp, err := env.svc.GetPublic(ctx, pid)
		if err != nil {
			t.Fatalf("GetPublic() error = %v", err)
		}
		// 本次访问的异步自增可能恰好落在读取之前
		if resp.ViewCount != 105 && resp.ViewCount != 106 {
			t.Errorf("ViewCount = %d, want 105 或 106", resp.ViewCount)
		}
	})

	t.Run("填充已通过的评论数", func(t *testing.T) {
		env := newTestEnv()
		now := time.Now()
		a := env.repo.seed(&model.Article{
			Title:       "有评论的文章",
			Status:      model.ArticleStatusPublished,
			PublishedAt: &now,
		})
		env.comments.approvedCounts[a.ID] = 7

		resp, err := env.svc.GetPublic(ctx, articlePublicID(t, a.ID))
		if err != nil {
			t.Fatalf("GetPublic() error = %v", err)
		}
		if resp.CommentCount != 7 {
			t.Errorf("CommentCount = %d, want 7", resp.CommentCount)
		}
	})

	t.Run("无法解码的ID按未发布处理", func(t *testing.T) {
		env := newTestEnv()

		_, err := env.svc.GetPublic(ctx, "not-a-valid-id")
		if !errors.Is(err, constant.ErrArticleNotPublished) {
			t.Errorf("err = %v, want ErrArticleNotPublished", err)
		}
	})
}

func TestServiceListPublic(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()
	now := time.Now()
	env.repo.seed(&model.Article{Title: "Go 文章", Status: model.ArticleStatusPublished, PublishedAt: &now, Categories: []string{"go"}})
	env.repo.seed(&model.Article{Title: "JS 文章", Status: model.ArticleStatusPublished, PublishedAt: &now, Categories: []string{"javascript"}})
	env.repo.seed(&model.Article{Title: "未发布草稿", Status: model.ArticleStatusDraft})

	t.Run("只返回已发布的文章", func(t *testing.T) {
		resp, err := env.svc.ListPublic(ctx, 1, 10, "")
		if err != nil {
			t.Fatalf("ListPublic() error = %v", err)
		}
		if resp.Total != 2 || len(resp.List) != 2 {
			t.Errorf("结果 = total %d, len %d, want 2/2", resp.Total, len(resp.List))
		}
		for _, item := range resp.List {
			if item.ContentMd != "" || item.ContentHTML != "" {
				t.Error("列表不应携带正文")
			}
		}
	})

	t.Run("按分类过滤", func(t *testing.T) {
		resp, err := env.svc.ListPublic(ctx, 1, 10, "go")
		if err != nil {
			t.Fatalf("ListPublic() error = %v", err)
		}
		if resp.Total != 1 || resp.List[0].Title != "Go 文章" {
			t.Errorf("分类过滤结果 = %+v", resp)
		}
	})
}

func TestServicePublishDueScheduled(t *testing.T) {
	ctx := context.Background()

	t.Run("到期文章全部发布", func(t *testing.T) {
		env := newTestEnv()
		due := time.Now().Add(-5 * time.Minute)
		env.repo.seed(&model.Article{Title: "到期一", Status: model.ArticleStatusScheduled, ScheduledAt: &due})
		env.repo.seed(&model.Article{Title: "到期二", Status: model.ArticleStatusScheduled, ScheduledAt: &due})
		notDue := time.Now().Add(1 * time.Hour)
		env.repo.seed(&model.Article{Title: "还没到", Status: model.ArticleStatusScheduled, ScheduledAt: &notDue})

		published, err := env.svc.PublishDueScheduled(ctx, time.Now())
		if err != nil {
			t.Fatalf("PublishDueScheduled() error = %v", err)
		}
		if published != 2 {
			t.Errorf("发布数量 = %d, want 2", published)
		}
		for i := 0; i < 2; i++ {
			e := waitEvent(t, env.events)
			if !e.FirstPublish {
				t.Error("定时发布应标记为首次发布")
			}
		}
	})

	t.Run("单篇失败不影响其余", func(t *testing.T) {
		env := newTestEnv()
		due := time.Now().Add(-5 * time.Minute)
		bad := env.repo.seed(&model.Article{Title: "会失败", Status: model.ArticleStatusScheduled, ScheduledAt: &due})
		env.repo.seed(&model.Article{Title: "正常", Status: model.ArticleStatusScheduled, ScheduledAt: &due})
		env.repo.publishErr[bad.ID] = errors.New("数据库连接中断")

		published, err := env.svc.PublishDueScheduled(ctx, time.Now())
		if err != nil {
			t.Fatalf("PublishDueScheduled() error = %v", err)
		}
		if published != 1 {
			t.Errorf("发布数量 = %d, want 1", published)
		}
	})
}

func TestServiceFlushViewCounts(t *testing.T) {
	ctx := context.Background()

	t.Run("缓存增量批量落库并清空", func(t *testing.T) {
		env := newTestEnv()
		now := time.Now()
		a1 := env.repo.seed(&model.Article{Title: "一", Status: model.ArticleStatusPublished, PublishedAt: &now})
		a2 := env.repo.seed(&model.Article{Title: "二", Status: model.ArticleStatusPublished, PublishedAt: &now})
		pid1 := articlePublicID(t, a1.ID)
		pid2 := articlePublicID(t, a2.ID)

		for i := 0; i < 3; i++ {
			if _, err := env.cache.Increment(ctx, viewCountKeyPrefix+pid1); err != nil {
				t.Fatalf("预置浏览量失败: %v", err)
			}
		}
		for i := 0; i < 2; i++ {
			if _, err := env.cache.Increment(ctx, viewCountKeyPrefix+pid2); err != nil {
				t.Fatalf("预置浏览量失败: %v", err)
			}
		}

		flushed, err := env.svc.FlushViewCounts(ctx)
		if err != nil {
			t.Fatalf("FlushViewCounts() error = %v", err)
		}
		if flushed != 2 {
			t.Errorf("涉及文章数 = %d, want 2", flushed)
		}
		if env.repo.viewUpdates[a1.ID] != 3 || env.repo.viewUpdates[a2.ID] != 2 {
			t.Errorf("落库增量 = %v, want {%d:3 %d:2}", env.repo.viewUpdates, a1.ID, a2.ID)
		}

		// 再次刷新应无事可做
		flushed, err = env.svc.FlushViewCounts(ctx)
		if err != nil {
			t.Fatalf("二次 FlushViewCounts() error = %v", err)
		}
		if flushed != 0 {
			t.Errorf("二次刷新涉及文章数 = %d, want 0", flushed)
		}
	})

	t.Run("无法识别的缓存键被忽略", func(t *testing.T) {
		env := newTestEnv()
		if err := env.cache.Set(ctx, viewCountKeyPrefix+"not-a-real-id", 4, 0); err != nil {
			t.Fatalf("预置缓存失败: %v", err)
		}

		flushed, err := env.svc.FlushViewCounts(ctx)
		if err != nil {
			t.Fatalf("FlushViewCounts() error = %v", err)
		}
		if flushed != 0 {
			t.Errorf("涉及文章数 = %d, want 0", flushed)
		}
	})
}

func TestServiceDelete(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()
	a := env.repo.seed(&model.Article{Title: "要删的", Status: model.ArticleStatusDraft})
	pid := articlePublicID(t, a.ID)

	if err := env.svc.Delete(ctx, pid); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if got, _ := env.repo.FindByID(ctx, a.ID); got != nil {
		t.Error("文章应已删除")
	}
	if err := env.svc.Delete(ctx, pid); !errors.Is(err, constant.ErrNotFound) {
		t.Errorf("删除不存在的文章 err = %v, want ErrNotFound", err)
	}
}
