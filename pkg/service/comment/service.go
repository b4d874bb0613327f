// pkg/service/comment/service.go
package comment

import (
	"context"
	"crypto/md5"
	"fmt"
	"log"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/linkfable/folio-app/internal/pkg/event"
	"github.com/linkfable/folio-app/internal/pkg/parser"
	"github.com/linkfable/folio-app/internal/pkg/utils"
	"github.com/linkfable/folio-app/pkg/constant"
	"github.com/linkfable/folio-app/pkg/domain/model"
	"github.com/linkfable/folio-app/pkg/domain/repository"
	"github.com/linkfable/folio-app/pkg/handler/comment/dto"
	"github.com/linkfable/folio-app/pkg/idgen"
	"github.com/linkfable/folio-app/pkg/service/setting"
	"github.com/linkfable/folio-app/pkg/service/utility"
)

// CommentCreatedEvent 是新评论入库后发布到事件总线的载荷。
type CommentCreatedEvent struct {
	Comment *model.Comment
	Article *model.Article
}

// Service 评论服务的核心业务逻辑。
type Service struct {
	repo        repository.CommentRepository
	articleRepo repository.ArticleRepository
	settingSvc  setting.SettingService
	cacheSvc    utility.CacheService
	eventBus    *event.EventBus
}

// NewService 创建一个新的评论服务实例。
func NewService(
	repo repository.CommentRepository,
	articleRepo repository.ArticleRepository,
	settingSvc setting.SettingService,
	cacheSvc utility.CacheService,
	eventBus *event.EventBus,
) *Service {
	return &Service{
		repo:        repo,
		articleRepo: articleRepo,
		settingSvc:  settingSvc,
		cacheSvc:    cacheSvc,
		eventBus:    eventBus,
	}
}

// Create 处理访客提交的新评论。
// 新评论一律以待审核状态入库，审核通过前对公众不可见。
func (s *Service) Create(ctx context.Context, articlePublicID string, req *dto.CreateRequest, ip, ua string) (*dto.CreateResponse, error) {
	if !s.settingSvc.GetBool(constant.KeyCommentEnable.String()) {
		return nil, constant.ErrForbidden
	}

	limit := s.settingSvc.GetInt(constant.KeyCommentLimitPerMinute.String())
	if limit > 0 {
		redisKey := fmt.Sprintf("comment:rate_limit:%s:%s", ip, time.Now().Format("200601021504"))
		count, err := s.cacheSvc.Increment(ctx, redisKey)
		if err != nil {
			log.Printf("警告: 评论频率限制检查失败: %v", err)
		} else {
			if count == 1 {
				s.cacheSvc.Expire(ctx, redisKey, 70*time.Second)
			}
			if count > int64(limit) {
				return nil, constant.ErrRateLimited
			}
		}
	}

	article, err := s.findPublishedArticle(ctx, articlePublicID)
	if err != nil {
		return nil, err
	}

	// 评论长度上限可由站点配置收紧，表单校验只保证全局硬上限
	if maxLen := s.settingSvc.GetInt(constant.KeyCommentLimitLength.String()); maxLen > 0 {
		if utf8.RuneCountInString(req.Content) > maxLen {
			return nil, fmt.Errorf("%w: 评论内容不能超过 %d 个字符", constant.ErrBadRequest, maxLen)
		}
	}

	var parentDBID *uint
	if req.ParentID != nil && *req.ParentID != "" {
		pID, entityType, err := idgen.DecodePublicID(*req.ParentID)
		if err != nil || entityType != idgen.EntityTypeComment {
			return nil, constant.ErrParentCommentNotFound
		}
		// 父评论必须属于同一篇文章，防止跨文章挂接回复
		parent, err := s.repo.FindByArticleAndID(ctx, article.ID, pID)
		if err != nil {
			return nil, fmt.Errorf("查询父评论失败: %w", err)
		}
		if parent == nil {
			return nil, constant.ErrParentCommentNotFound
		}
		parentDBID = &pID
	}

	contentHTML, err := parser.MarkdownToHTML(req.Content)
	if err != nil {
		return nil, fmt.Errorf("评论内容解析失败: %w", err)
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	emailMD5 := fmt.Sprintf("%x", md5.Sum([]byte(email)))

	params := &repository.CreateCommentParams{
		ArticleID:   article.ID,
		ParentID:    parentDBID,
		Name:        strings.TrimSpace(req.Name),
		Email:       email,
		EmailMD5:    emailMD5,
		Website:     req.Website,
		Content:     req.Content,
		ContentHTML: contentHTML,
		IPAddress:   ip,
		UserAgent:   ua,
		Status:      model.CommentStatusPending,
	}

	newComment, err := s.repo.Create(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("保存评论失败: %w", err)
	}

	if s.eventBus != nil {
		s.eventBus.Publish(event.CommentCreated, &CommentCreatedEvent{
			Comment: newComment,
			Article: article,
		})
	}

	publicID, _ := idgen.GeneratePublicID(newComment.ID, idgen.EntityTypeComment)
	return &dto.CreateResponse{CommentID: publicID}, nil
}

// ListByArticle 返回指定文章的已通过评论树（分页）。
// 分页切片作用在过滤排序后的扁平序列上，之后才组装树，
// 因此翻页边界上父评论不在当前页的回复会作为根节点返回。
func (s *Service) ListByArticle(ctx context.Context, articlePublicID string, page, pageSize int, sortOrder string) (*dto.ListResponse, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = s.settingSvc.GetInt(constant.KeyCommentPageSize.String())
		if pageSize < 1 {
			pageSize = 10
		}
	}

	article, err := s.findPublishedArticle(ctx, articlePublicID)
	if err != nil {
		return nil, err
	}

	allComments, err := s.repo.FindAllByArticle(ctx, article.ID)
	if err != nil {
		return nil, fmt.Errorf("获取评论列表失败: %w", err)
	}

	window, total := pageWindow(allComments, model.CommentStatusApproved, sortOrder, page, pageSize)
	roots := assembleTree(window, s.toResponseDTO)

	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	return &dto.ListResponse{
		Comments: roots,
		Pagination: dto.Pagination{
			CurrentPage:   page,
			TotalPages:    totalPages,
			TotalComments: total,
			HasNextPage:   page < totalPages,
			HasPrevPage:   page > 1,
		},
	}, nil
}

// ModerateOne 审核单条评论，写入状态与审核人信息。
func (s *Service) ModerateOne(ctx context.Context, articlePublicID, commentPublicID string, req *dto.ModerateRequest, moderatorPublicID string) (*dto.AdminResponse, error) {
	status := model.CommentStatus(req.Status)
	if !status.IsValid() {
		return nil, fmt.Errorf("%w: 无效的审核状态 %q", constant.ErrBadRequest, req.Status)
	}

	moderatorID, err := s.decodeModerator(moderatorPublicID)
	if err != nil {
		return nil, err
	}

	articleID, commentID, err := decodeCommentPath(articlePublicID, commentPublicID)
	if err != nil {
		return nil, err
	}

	comment, err := s.repo.FindByArticleAndID(ctx, articleID, commentID)
	if err != nil {
		return nil, fmt.Errorf("查询评论失败: %w", err)
	}
	if comment == nil {
		return nil, constant.ErrNotFound
	}

	updated, err := s.repo.Moderate(ctx, commentID, &repository.ModerateParams{
		Status:      status,
		ModeratorID: moderatorID,
		Note:        req.ModeratorNote,
		ModeratedAt: time.Now(),
	})
	if err != nil {
		return nil, fmt.Errorf("更新评论状态失败: %w", err)
	}
	if updated == nil {
		return nil, constant.ErrNotFound
	}
	return s.toAdminResponseDTO(updated), nil
}

// ModerateBulk 批量审核评论。单条失败不会中断整个批次，
// 每条评论的处理结果都会出现在返回值里，成功数与失败数之和等于请求条数。
func (s *Service) ModerateBulk(ctx context.Context, req *dto.BulkModerateRequest, moderatorPublicID string) (*dto.BulkModerateResult, error) {
	status := model.CommentStatus(req.Status)
	if status != model.CommentStatusApproved && status != model.CommentStatusRejected {
		return nil, fmt.Errorf("%w: 批量审核只支持 approved 或 rejected", constant.ErrBadRequest)
	}

	moderatorID, err := s.decodeModerator(moderatorPublicID)
	if err != nil {
		return nil, err
	}

	result := &dto.BulkModerateResult{
		Results: make([]dto.BulkModerateItem, 0, len(req.CommentIDs)),
	}
	for _, ref := range req.CommentIDs {
		if errMsg := s.moderateOneOfBulk(ctx, ref, status, moderatorID, req.ModeratorNote); errMsg != "" {
			result.Failed++
			result.Results = append(result.Results, dto.BulkModerateItem{
				CommentID: ref.CommentID,
				Success:   false,
				Error:     errMsg,
			})
			continue
		}
		result.Successful++
		result.Results = append(result.Results, dto.BulkModerateItem{
			CommentID: ref.CommentID,
			Success:   true,
		})
	}
	return result, nil
}

// moderateOneOfBulk 处理批量审核中的一条，返回空字符串表示成功。
func (s *Service) moderateOneOfBulk(ctx context.Context, ref dto.BulkCommentRef, status model.CommentStatus, moderatorID uint, note *string) string {
	articleID, commentID, err := decodeCommentPath(ref.BlogID, ref.CommentID)
	if err != nil {
		return "无效的评论ID"
	}
	comment, err := s.repo.FindByArticleAndID(ctx, articleID, commentID)
	if err != nil {
		log.Printf("警告: 批量审核查询评论 %s 失败: %v", ref.CommentID, err)
		return "查询评论失败"
	}
	if comment == nil {
		return "评论不存在或不属于该文章"
	}
	updated, err := s.repo.Moderate(ctx, commentID, &repository.ModerateParams{
		Status:      status,
		ModeratorID: moderatorID,
		Note:        note,
		ModeratedAt: time.Now(),
	})
	if err != nil {
		log.Printf("警告: 批量审核更新评论 %s 失败: %v", ref.CommentID, err)
		return "更新评论状态失败"
	}
	if updated == nil {
		return "评论不存在或不属于该文章"
	}
	return ""
}

// Delete 删除单条评论。仍有子回复的评论不允许删除。
func (s *Service) Delete(ctx context.Context, articlePublicID, commentPublicID string) error {
	articleID, commentID, err := decodeCommentPath(articlePublicID, commentPublicID)
	if err != nil {
		return err
	}

	comment, err := s.repo.FindByArticleAndID(ctx, articleID, commentID)
	if err != nil {
		return fmt.Errorf("查询评论失败: %w", err)
	}
	if comment == nil {
		return constant.ErrNotFound
	}

	deleted, err := s.repo.Delete(ctx, commentID)
	if err != nil {
		return fmt.Errorf("删除评论失败: %w", err)
	}
	if !deleted {
		// 删除未生效：要么刚刚长出了子回复，要么已被并发删除
		hasChildren, cerr := s.repo.HasChildren(ctx, commentID)
		if cerr == nil && hasChildren {
			return constant.ErrCommentHasChildren
		}
		return constant.ErrNotFound
	}
	return nil
}

// AdminList 管理员根据条件分页查询评论列表。
func (s *Service) AdminList(ctx context.Context, req *dto.AdminListRequest) (*dto.AdminListResponse, error) {
	if req.Page < 1 {
		req.Page = 1
	}
	if req.PageSize < 1 || req.PageSize > 100 {
		req.PageSize = 10
	}

	var status *model.CommentStatus
	if req.Status != nil && *req.Status != "" {
		st := model.CommentStatus(*req.Status)
		if !st.IsValid() {
			return nil, fmt.Errorf("%w: 无效的审核状态 %q", constant.ErrBadRequest, *req.Status)
		}
		status = &st
	}

	params := &repository.AdminCommentListParams{
		Page:      req.Page,
		PageSize:  req.PageSize,
		SortOrder: req.SortOrder,
		Status:    status,
		Search:    req.Search,
	}
	comments, total, err := s.repo.FindWithConditions(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("获取评论列表失败: %w", err)
	}

	responses := make([]*dto.AdminResponse, len(comments))
	for i, comment := range comments {
		responses[i] = s.toAdminResponseDTO(comment)
	}
	return &dto.AdminListResponse{
		List:     responses,
		Total:    total,
		Page:     req.Page,
		PageSize: req.PageSize,
	}, nil
}

// Stats 汇总评论的状态分布和最近30天的每日新增数。
func (s *Service) Stats(ctx context.Context) (*model.CommentStats, error) {
	counts, err := s.repo.StatusCounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("统计评论状态失败: %w", err)
	}

	since := utils.StartOfDayInChina(time.Now().AddDate(0, 0, -29))
	daily, err := s.repo.DailyCounts(ctx, since)
	if err != nil {
		return nil, fmt.Errorf("统计每日评论数失败: %w", err)
	}

	stats := &model.CommentStats{
		Pending:        counts[model.CommentStatusPending],
		Approved:       counts[model.CommentStatusApproved],
		Rejected:       counts[model.CommentStatusRejected],
		RecentActivity: fillDailyCounts(daily, since, 30),
	}
	stats.Total = stats.Pending + stats.Approved + stats.Rejected
	return stats, nil
}

// fillDailyCounts 把稀疏的按日统计补齐成从 from 开始的连续 days 天序列，缺失日期计为0。
func fillDailyCounts(sparse []model.CommentDailyCount, from time.Time, days int) []model.CommentDailyCount {
	byDate := make(map[string]int64, len(sparse))
	for _, dc := range sparse {
		byDate[dc.Date] = dc.Count
	}
	filled := make([]model.CommentDailyCount, 0, days)
	for i := 0; i < days; i++ {
		date := from.AddDate(0, 0, i).Format("2006-01-02")
		filled = append(filled, model.CommentDailyCount{Date: date, Count: byDate[date]})
	}
	return filled
}

// findPublishedArticle 解析文章公共ID并确认文章已发布。
// 未发布和不存在的文章对访客表现一致，避免泄露草稿。
func (s *Service) findPublishedArticle(ctx context.Context, articlePublicID string) (*model.Article, error) {
	articleID, entityType, err := idgen.DecodePublicID(articlePublicID)
	if err != nil || entityType != idgen.EntityTypeArticle {
		return nil, constant.ErrArticleNotPublished
	}
	article, err := s.articleRepo.FindByID(ctx, articleID)
	if err != nil {
		return nil, fmt.Errorf("查询文章失败: %w", err)
	}
	if article == nil || !article.IsPublished() {
		return nil, constant.ErrArticleNotPublished
	}
	return article, nil
}

// decodeModerator 从JWT声明里的用户公共ID解出数据库ID。
func (s *Service) decodeModerator(moderatorPublicID string) (uint, error) {
	uid, entityType, err := idgen.DecodePublicID(moderatorPublicID)
	if err != nil || entityType != idgen.EntityTypeUser {
		return 0, constant.ErrUnauthorized
	}
	return uid, nil
}

// decodeCommentPath 解析路径上的文章ID与评论ID。
// 解不开的ID与不存在的资源同样按未找到处理。
func decodeCommentPath(articlePublicID, commentPublicID string) (articleID, commentID uint, err error) {
	articleID, articleType, err := idgen.DecodePublicID(articlePublicID)
	if err != nil || articleType != idgen.EntityTypeArticle {
		return 0, 0, constant.ErrNotFound
	}
	commentID, commentType, err := idgen.DecodePublicID(commentPublicID)
	if err != nil || commentType != idgen.EntityTypeComment {
		return 0, 0, constant.ErrNotFound
	}
	return articleID, commentID, nil
}

// toResponseDTO 将评论转换为公开接口的响应结构。
// 不携带邮箱明文、IP等敏感字段，头像统一通过 emailMd5 交给前端拼 Gravatar。
func (s *Service) toResponseDTO(c *model.Comment) *dto.Response {
	if c == nil {
		return nil
	}
	publicID, _ := idgen.GeneratePublicID(c.ID, idgen.EntityTypeComment)

	var parentPublicID *string
	if c.ParentID != nil {
		pID, _ := idgen.GeneratePublicID(*c.ParentID, idgen.EntityTypeComment)
		parentPublicID = &pID
	}

	return &dto.Response{
		ID:          publicID,
		ParentID:    parentPublicID,
		Name:        c.Author.Name,
		EmailMD5:    c.Author.EmailMD5,
		Website:     c.Author.Website,
		ContentHTML: c.ContentHTML,
		CreatedAt:   c.CreatedAt,
		Children:    []*dto.Response{},
	}
}

// toAdminResponseDTO 将评论转换为后台接口的响应结构，包含审核元数据。
func (s *Service) toAdminResponseDTO(c *model.Comment) *dto.AdminResponse {
	if c == nil {
		return nil
	}
	publicID, _ := idgen.GeneratePublicID(c.ID, idgen.EntityTypeComment)
	articlePublicID, _ := idgen.GeneratePublicID(c.ArticleID, idgen.EntityTypeArticle)

	var parentPublicID *string
	if c.ParentID != nil {
		pID, _ := idgen.GeneratePublicID(*c.ParentID, idgen.EntityTypeComment)
		parentPublicID = &pID
	}
	var moderatedBy *string
	if c.ModeratedBy != nil {
		mID, _ := idgen.GeneratePublicID(*c.ModeratedBy, idgen.EntityTypeUser)
		moderatedBy = &mID
	}

	return &dto.AdminResponse{
		ID:            publicID,
		ArticleID:     articlePublicID,
		ParentID:      parentPublicID,
		Name:          c.Author.Name,
		Email:         c.Author.Email,
		Website:       c.Author.Website,
		Content:       c.Content,
		ContentHTML:   c.ContentHTML,
		IPAddress:     c.Author.IP,
		UserAgent:     c.Author.UserAgent,
		Status:        string(c.Status),
		ModeratedBy:   moderatedBy,
		ModeratedAt:   c.ModeratedAt,
		ModeratorNote: c.ModeratorNote,
		CreatedAt:     c.CreatedAt,
	}
}
