// pkg/service/article/service.go
package article

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/linkfable/folio-app/internal/pkg/event"
	"github.com/linkfable/folio-app/internal/pkg/parser"
	"github.com/linkfable/folio-app/internal/pkg/strutil"
	"github.com/linkfable/folio-app/pkg/constant"
	"github.com/linkfable/folio-app/pkg/domain/model"
	"github.com/linkfable/folio-app/pkg/domain/repository"
	"github.com/linkfable/folio-app/pkg/idgen"
	"github.com/linkfable/folio-app/pkg/service/setting"
	"github.com/linkfable/folio-app/pkg/service/utility"
)

// 摘要缺省时从正文截取的最大长度
const summaryMaxLength = 200

// 浏览量先在缓存中累积，由 FlushViewCounts 定期批量写回数据库
const viewCountKeyPrefix = "article:view_count:"

// ArticlePublishedEvent 是文章发布事件的载荷。
// FirstPublish 标记这是否是该文章的首次发布，订阅推送只关心首次。
type ArticlePublishedEvent struct {
	Article      *model.Article
	FirstPublish bool
}

type Service interface {
	Create(ctx context.Context, req *model.CreateArticleRequest) (*model.ArticleResponse, error)
	Get(ctx context.Context, publicID string) (*model.ArticleResponse, error)
	Update(ctx context.Context, publicID string, req *model.UpdateArticleRequest) (*model.ArticleResponse, error)
	Delete(ctx context.Context, publicID string) error
	List(ctx context.Context, options *model.ListArticlesOptions) (*model.ArticleListResponse, error)
	Publish(ctx context.Context, publicID string) (*model.ArticleResponse, error)

	GetPublic(ctx context.Context, publicID string) (*model.ArticleResponse, error)
	ListPublic(ctx context.Context, page, pageSize int, category string) (*model.ArticleListResponse, error)
	// ListRecentPublished 返回最新发布的文章并携带正文，供 RSS 输出使用，不累积浏览量。
	ListRecentPublished(ctx context.Context, limit int) ([]*model.ArticleResponse, error)

	// PublishDueScheduled 发布所有定时时间已到的文章，返回发布数量，由调度任务调用。
	PublishDueScheduled(ctx context.Context, now time.Time) (int, error)
	// FlushViewCounts 把缓存中累积的浏览量批量写回数据库，返回涉及的文章数。
	FlushViewCounts(ctx context.Context) (int, error)
}

type serviceImpl struct {
	repo        repository.ArticleRepository
	commentRepo repository.CommentRepository
	settingSvc  setting.SettingService
	cacheSvc    utility.CacheService
	eventBus    *event.EventBus
}

func NewService(
	repo repository.ArticleRepository,
	commentRepo repository.CommentRepository,
	settingSvc setting.SettingService,
	cacheSvc utility.CacheService,
	eventBus *event.EventBus,
) Service {
	return &serviceImpl{
		repo:        repo,
		commentRepo: commentRepo,
		settingSvc:  settingSvc,
		cacheSvc:    cacheSvc,
		eventBus:    eventBus,
	}
}

// Create 处理创建新文章的完整业务流程。
// 正文由 Markdown 渲染为净化后的 HTML；摘要缺省时从正文截取。
func (s *serviceImpl) Create(ctx context.Context, req *model.CreateArticleRequest) (*model.ArticleResponse, error) {
	status := req.Status
	if status == "" {
		status = model.ArticleStatusDraft
	}

	scheduledAt, err := parseScheduledAt(req.ScheduledAt)
	if err != nil {
		return nil, err
	}
	if status == model.ArticleStatusScheduled && scheduledAt == nil {
		return nil, fmt.Errorf("%w: 定时发布需要提供 scheduled_at", constant.ErrBadRequest)
	}
	if status == model.ArticleStatusPublished && scheduledAt != nil {
		return nil, fmt.Errorf("%w: 已发布的文章不能再设置定时发布时间", constant.ErrBadRequest)
	}
	// 提供了定时时间但未显式指定状态时，按定时发布处理
	if scheduledAt != nil && status == model.ArticleStatusDraft && req.Status == "" {
		status = model.ArticleStatusScheduled
	}

	contentHTML, err := parser.MarkdownToHTML(req.ContentMd)
	if err != nil {
		return nil, fmt.Errorf("渲染文章内容失败: %w", err)
	}

	coverURL := req.CoverURL
	if coverURL == "" {
		coverURL = s.settingSvc.Get(constant.KeyPostDefaultCover.String())
	}

	article := &model.Article{
		Title:       strings.TrimSpace(req.Title),
		Summary:     strings.TrimSpace(req.Summary),
		ContentMd:   req.ContentMd,
		ContentHTML: contentHTML,
		CoverURL:    coverURL,
		Categories:  normalizeCategories(req.Categories),
		Status:      status,
		ScheduledAt: scheduledAt,
	}
	if article.Summary == "" {
		article.Summary = strutil.Truncate(parser.StripHTML(contentHTML), summaryMaxLength)
	}
	if status == model.ArticleStatusPublished {
		now := time.Now()
		article.PublishedAt = &now
	}

	if err := s.repo.Create(ctx, article); err != nil {
		return nil, err
	}
	log.Printf("[Article.Create] 新文章已创建: %q (状态 %s)", article.Title, article.Status)

	if article.IsPublished() {
		s.publishEvent(article, true)
	}
	return s.toAPIResponse(article, true), nil
}

// Get 根据公共ID检索单篇文章，包含正文，草稿也可见，供后台编辑使用。
func (s *serviceImpl) Get(ctx context.Context, publicID string) (*model.ArticleResponse, error) {
	article, err := s.findByPublicID(ctx, publicID)
	if err != nil {
		return nil, err
	}
	resp := s.toAPIResponse(article, true)
	s.fillCommentCounts(ctx, []*model.ArticleResponse{resp}, []uint{article.ID})
	return resp, nil
}

// Update 按字段更新一篇文章。指针字段区分"未提供"和"显式清空"。
func (s *serviceImpl) Update(ctx context.Context, publicID string, req *model.UpdateArticleRequest) (*model.ArticleResponse, error) {
	article, err := s.findByPublicID(ctx, publicID)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		article.Title = strings.TrimSpace(*req.Title)
	}
	if req.Summary != nil {
		article.Summary = strings.TrimSpace(*req.Summary)
	}
	if req.ContentMd != nil {
		contentHTML, err := parser.MarkdownToHTML(*req.ContentMd)
		if err != nil {
			return nil, fmt.Errorf("渲染文章内容失败: %w", err)
		}
		article.ContentMd = *req.ContentMd
		article.ContentHTML = contentHTML
	}
	if article.Summary == "" && article.ContentHTML != "" {
		article.Summary = strutil.Truncate(parser.StripHTML(article.ContentHTML), summaryMaxLength)
	}
	if req.CoverURL != nil {
		article.CoverURL = *req.CoverURL
	}
	if req.Categories != nil {
		article.Categories = normalizeCategories(req.Categories)
	}

	if req.ScheduledAt != nil {
		if *req.ScheduledAt == "" {
			article.ScheduledAt = nil
			if article.Status == model.ArticleStatusScheduled {
				article.Status = model.ArticleStatusDraft
			}
		} else {
			scheduledAt, err := parseScheduledAt(req.ScheduledAt)
			if err != nil {
				return nil, err
			}
			article.ScheduledAt = scheduledAt
		}
	}

	firstPublish := false
	if req.Status != nil && *req.Status != article.Status {
		switch *req.Status {
		case model.ArticleStatusPublished:
			firstPublish = article.PublishedAt == nil
			if firstPublish {
				now := time.Now()
				article.PublishedAt = &now
			}
			article.ScheduledAt = nil
		case model.ArticleStatusScheduled:
			if article.ScheduledAt == nil {
				return nil, fmt.Errorf("%w: 定时发布需要提供 scheduled_at", constant.ErrBadRequest)
			}
		}
		article.Status = *req.Status
	}

	if err := s.repo.Update(ctx, article); err != nil {
		return nil, err
	}

	if firstPublish {
		log.Printf("[Article.Update] 文章首次发布: %q", article.Title)
		s.publishEvent(article, true)
	}
	return s.toAPIResponse(article, true), nil
}

// Delete 删除一篇文章，其下的评论由外键级联一并删除。
func (s *serviceImpl) Delete(ctx context.Context, publicID string) error {
	article, err := s.findByPublicID(ctx, publicID)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, article.ID); err != nil {
		return err
	}
	// 已删除文章的浏览量增量不再有意义
	if err := s.cacheSvc.Delete(ctx, s.viewCountKey(publicID)); err != nil {
		log.Printf("[Article.Delete] 清理文章 %s 的浏览量缓存失败: %v", publicID, err)
	}
	log.Printf("[Article.Delete] 文章已删除: %q", article.Title)
	return nil
}

// List 后台文章列表，支持按状态、分类和标题关键字过滤。
func (s *serviceImpl) List(ctx context.Context, options *model.ListArticlesOptions) (*model.ArticleListResponse, error) {
	if options.Page < 1 {
		options.Page = 1
	}
	if options.PageSize < 1 || options.PageSize > 100 {
		options.PageSize = 10
	}
	if options.Status != "" && !isValidStatus(options.Status) {
		return nil, fmt.Errorf("%w: 无效的文章状态 %q", constant.ErrBadRequest, options.Status)
	}
	options.WithContent = false

	articles, total, err := s.repo.List(ctx, options)
	if err != nil {
		return nil, err
	}
	return s.toListResponse(ctx, articles, total, options.Page, options.PageSize), nil
}

// Publish 后台的显式发布动作。
// 首次发布与否由仓储层在同一条语句内原子判定，并发的重复发布只会触发一次推送。
func (s *serviceImpl) Publish(ctx context.Context, publicID string) (*model.ArticleResponse, error) {
	id, err := s.decodeArticleID(publicID)
	if err != nil {
		return nil, err
	}
	article, firstPublish, err := s.repo.Publish(ctx, id, time.Now())
	if err != nil {
		return nil, err
	}
	if article == nil {
		return nil, constant.ErrNotFound
	}

	log.Printf("[Article.Publish] 文章已发布: %q (首次发布 %t)", article.Title, firstPublish)
	s.publishEvent(article, firstPublish)
	return s.toAPIResponse(article, true), nil
}

// GetPublic 获取公开的文章详情，只返回已发布的文章。
// 浏览量的累加是异步的，响应里合并缓存中尚未落库的增量。
func (s *serviceImpl) GetPublic(ctx context.Context, publicID string) (*model.ArticleResponse, error) {
	id, entityType, err := idgen.DecodePublicID(publicID)
	if err != nil || entityType != idgen.EntityTypeArticle {
		return nil, constant.ErrArticleNotPublished
	}
	article, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("查询文章失败: %w", err)
	}
	if article == nil || !article.IsPublished() {
		return nil, constant.ErrArticleNotPublished
	}

	viewKey := s.viewCountKey(publicID)
	go func() {
		if _, err := s.cacheSvc.Increment(context.Background(), viewKey); err != nil {
			log.Printf("[警告] 无法为文章 %s 累积浏览量: %v", publicID, err)
		}
	}()
	if pending, err := s.cacheSvc.Get(ctx, viewKey); err == nil && pending != "" {
		if n, convErr := strconv.Atoi(pending); convErr == nil {
			article.ViewCount += n
		}
	}

	resp := s.toAPIResponse(article, true)
	s.fillCommentCounts(ctx, []*model.ArticleResponse{resp}, []uint{article.ID})
	return resp, nil
}

// ListPublic 公开的文章列表，只包含已发布的文章，不携带正文。
func (s *serviceImpl) ListPublic(ctx context.Context, page, pageSize int, category string) (*model.ArticleListResponse, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = s.settingSvc.GetInt(constant.KeyPostPageSize.String())
		if pageSize < 1 {
			pageSize = 10
		}
	}
	options := &model.ListArticlesOptions{
		Page:     page,
		PageSize: pageSize,
		Status:   model.ArticleStatusPublished,
		Category: category,
	}
	articles, total, err := s.repo.List(ctx, options)
	if err != nil {
		return nil, err
	}
	return s.toListResponse(ctx, articles, total, page, pageSize), nil
}

// ListRecentPublished 返回最新发布的文章并携带正文。
func (s *serviceImpl) ListRecentPublished(ctx context.Context, limit int) ([]*model.ArticleResponse, error) {
	if limit < 1 || limit > 100 {
		limit = 20
	}
	options := &model.ListArticlesOptions{
		Page:        1,
		PageSize:    limit,
		Status:      model.ArticleStatusPublished,
		WithContent: true,
	}
	articles, _, err := s.repo.List(ctx, options)
	if err != nil {
		return nil, err
	}
	result := make([]*model.ArticleResponse, 0, len(articles))
	for _, a := range articles {
		result = append(result, s.toAPIResponse(a, true))
	}
	return result, nil
}

// PublishDueScheduled 发布定时时间已到的文章，逐篇处理，单篇失败不影响其余。
func (s *serviceImpl) PublishDueScheduled(ctx context.Context, now time.Time) (int, error) {
	due, err := s.repo.FindDueScheduled(ctx, now)
	if err != nil {
		return 0, err
	}

	published := 0
	for _, a := range due {
		article, firstPublish, err := s.repo.Publish(ctx, a.ID, now)
		if err != nil {
			log.Printf("[Article.PublishDueScheduled] 发布文章 %d 失败: %v", a.ID, err)
			continue
		}
		if article == nil {
			continue
		}
		published++
		log.Printf("[Article.PublishDueScheduled] 定时文章已发布: %q", article.Title)
		s.publishEvent(article, firstPublish)
	}
	return published, nil
}

// FlushViewCounts 扫描缓存中累积的浏览量增量并批量写回数据库。
func (s *serviceImpl) FlushViewCounts(ctx context.Context) (int, error) {
	keys, err := s.cacheSvc.Scan(ctx, viewCountKeyPrefix+"*")
	if err != nil {
		return 0, fmt.Errorf("扫描浏览量缓存键失败: %w", err)
	}
	if len(keys) == 0 {
		return 0, nil
	}

	increments, err := s.cacheSvc.GetAndDeleteMany(ctx, keys)
	if err != nil {
		return 0, fmt.Errorf("读取浏览量缓存失败: %w", err)
	}

	updates := make(map[uint]int)
	for key, increment := range increments {
		publicID := strings.TrimPrefix(key, viewCountKeyPrefix)
		dbID, entityType, err := idgen.DecodePublicID(publicID)
		if err != nil || entityType != idgen.EntityTypeArticle {
			log.Printf("[Article.FlushViewCounts] 忽略无法识别的缓存键: %s", key)
			continue
		}
		updates[dbID] = increment
	}
	if len(updates) == 0 {
		return 0, nil
	}

	if err := s.repo.UpdateViewCounts(ctx, updates); err != nil {
		return 0, err
	}
	return len(updates), nil
}

// --- 内部辅助 ---

func (s *serviceImpl) viewCountKey(publicID string) string {
	return viewCountKeyPrefix + publicID
}

// decodeArticleID 解码后台路径里的文章公共ID，无法解码按不存在处理。
func (s *serviceImpl) decodeArticleID(publicID string) (uint, error) {
	id, entityType, err := idgen.DecodePublicID(publicID)
	if err != nil || entityType != idgen.EntityTypeArticle {
		return 0, constant.ErrNotFound
	}
	return id, nil
}

func (s *serviceImpl) findByPublicID(ctx context.Context, publicID string) (*model.Article, error) {
	id, err := s.decodeArticleID(publicID)
	if err != nil {
		return nil, err
	}
	article, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("查询文章失败: %w", err)
	}
	if article == nil {
		return nil, constant.ErrNotFound
	}
	return article, nil
}

func (s *serviceImpl) publishEvent(article *model.Article, firstPublish bool) {
	if s.eventBus == nil {
		return
	}
	s.eventBus.Publish(event.ArticlePublished, &ArticlePublishedEvent{
		Article:      article,
		FirstPublish: firstPublish,
	})
}

// toAPIResponse 把领域模型转换为 API 响应，includeContent 控制是否携带正文。
func (s *serviceImpl) toAPIResponse(a *model.Article, includeContent bool) *model.ArticleResponse {
	publicID, err := idgen.GeneratePublicID(a.ID, idgen.EntityTypeArticle)
	if err != nil {
		log.Printf("[警告] 生成文章 %d 的公共ID失败: %v", a.ID, err)
	}
	resp := &model.ArticleResponse{
		ID:           publicID,
		CreatedAt:    a.CreatedAt,
		UpdatedAt:    a.UpdatedAt,
		Title:        a.Title,
		Summary:      a.Summary,
		CoverURL:     a.CoverURL,
		Categories:   a.Categories,
		Status:       a.Status,
		ViewCount:    a.ViewCount,
		CommentCount: a.CommentCount,
		PublishedAt:  a.PublishedAt,
		ScheduledAt:  a.ScheduledAt,
	}
	if includeContent {
		resp.ContentMd = a.ContentMd
		resp.ContentHTML = a.ContentHTML
	}
	if resp.Categories == nil {
		resp.Categories = []string{}
	}
	return resp
}

func (s *serviceImpl) toListResponse(ctx context.Context, articles []*model.Article, total int64, page, pageSize int) *model.ArticleListResponse {
	list := make([]*model.ArticleResponse, len(articles))
	ids := make([]uint, len(articles))
	for i, a := range articles {
		list[i] = s.toAPIResponse(a, false)
		ids[i] = a.ID
	}
	s.fillCommentCounts(ctx, list, ids)
	return &model.ArticleListResponse{List: list, Total: total, Page: page, PageSize: pageSize}
}

// fillCommentCounts 批量填充已审核通过的评论数，失败只记录日志不影响主流程。
func (s *serviceImpl) fillCommentCounts(ctx context.Context, responses []*model.ArticleResponse, ids []uint) {
	if len(ids) == 0 || s.commentRepo == nil {
		return
	}
	counts, err := s.commentRepo.CountApprovedByArticleIDs(ctx, ids)
	if err != nil {
		log.Printf("[警告] 批量查询评论数失败: %v", err)
		return
	}
	for i, id := range ids {
		responses[i].CommentCount = int(counts[id])
	}
}

func parseScheduledAt(raw *string) (*time.Time, error) {
	if raw == nil || *raw == "" {
		return nil, nil
	}
	parsed, err := time.Parse(time.RFC3339, *raw)
	if err != nil {
		return nil, fmt.Errorf("%w: scheduled_at 必须是 RFC3339 格式", constant.ErrBadRequest)
	}
	if parsed.Before(time.Now()) {
		return nil, fmt.Errorf("%w: 定时发布时间必须是未来时间", constant.ErrBadRequest)
	}
	return &parsed, nil
}

func isValidStatus(status string) bool {
	switch status {
	case model.ArticleStatusDraft, model.ArticleStatusPublished, model.ArticleStatusScheduled:
		return true
	}
	return false
}

func normalizeCategories(raw []string) []string {
	out := make([]string, 0, len(raw))
	seen := make(map[string]struct{}, len(raw))
	for _, c := range raw {
		c = strings.ToLower(strings.TrimSpace(c))
		if c == "" {
			continue
		}
		if _, dup := seen[c]; dup {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	return out
}
