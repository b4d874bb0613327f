/*
 * @Description: RSS Feed 处理器
 * @Author: 林远
 * @Date: 2025-09-21 17:30:08
 * @LastEditTime: 2026-05-11 10:40:19
 * @LastEditors: 林远
 */
package rss

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/linkfable/folio-app/pkg/constant"
	"github.com/linkfable/folio-app/pkg/response"
	"github.com/linkfable/folio-app/pkg/service/rss"
	"github.com/linkfable/folio-app/pkg/service/setting"

	"github.com/gin-gonic/gin"
)

// Handler RSS 处理器
type Handler struct {
	rssService rss.Service
	settingSvc setting.SettingService
}

// NewHandler 创建 RSS 处理器
func NewHandler(rssService rss.Service, settingSvc setting.SettingService) *Handler {
	return &Handler{
		rssService: rssService,
		settingSvc: settingSvc,
	}
}

// GetRSSFeed
// @Summary      获取RSS订阅源
// @Description  获取站点的RSS订阅源（XML格式），内容缓存1小时
// @Tags         辅助工具
// @Produce      xml
// @Success      200 {string} string "RSS XML内容"
// @Failure      404 {object} response.Response "RSS功能未开启"
// @Failure      500 {object} response.Response "生成RSS feed失败"
// @Router       /rss [get]
func (h *Handler) GetRSSFeed(c *gin.Context) {
	opts := &rss.RSSOptions{
		BaseURL:   h.getSiteURL(c),
		BuildTime: time.Now(),
	}

	feed, err := h.rssService.GenerateFeed(c.Request.Context(), opts)
	if err != nil {
		// 功能未开启时对外表现为 404，不暴露配置状态
		if errors.Is(err, constant.ErrForbidden) {
			response.Fail(c, http.StatusNotFound, response.CodeNotFound, "RSS订阅源不存在")
			return
		}
		log.Printf("[RSS Handler] 生成 RSS feed 失败: %v", err)
		response.Fail(c, http.StatusInternalServerError, response.CodeInternalError, "生成RSS feed失败")
		return
	}

	xmlContent := h.rssService.GenerateXML(feed)

	c.Header("Content-Type", "application/rss+xml; charset=utf-8")
	c.Header("Cache-Control", "public, max-age=3600")
	c.Header("X-Content-Type-Options", "nosniff")
	c.Header("Last-Modified", time.Now().Format(http.TimeFormat))

	c.String(http.StatusOK, xmlContent)
}

// getSiteURL 获取站点 URL
func (h *Handler) getSiteURL(c *gin.Context) string {
	// 优先从配置中获取站点 URL
	if siteURL := h.settingSvc.Get(constant.KeySiteURL.String()); siteURL != "" {
		return strings.TrimRight(siteURL, "/")
	}

	// 配置缺失时退回到请求本身的协议和主机名
	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	if proto := c.GetHeader("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}

	return fmt.Sprintf("%s://%s", scheme, c.Request.Host)
}
