/*
 * @Description: RSS Feed 类型定义
 * @Author: 林远
 * @Date: 2025-09-21 16:40:12
 * @LastEditTime: 2026-03-29 21:02:47
 * @LastEditors: 林远
 */
package rss

import "time"

// RSSItem RSS 条目结构
type RSSItem struct {
	Title       string
	Link        string
	Description string
	// ContentEncoded 仅在开启全文输出时填充，对应 content:encoded 元素
	ContentEncoded string
	PubDate        string
	GUID           string
	Author         string
	Categories     []string
}

// RSSFeed RSS Feed 结构
type RSSFeed struct {
	Title         string
	Link          string
	Description   string
	Language      string
	PubDate       string
	LastBuildDate string
	Items         []RSSItem
}

// RSSOptions RSS 生成选项
type RSSOptions struct {
	// ItemCount 返回的文章数量，0 表示使用站点配置
	ItemCount int
	// BaseURL 站点地址，为空时取站点配置
	BaseURL string
	// BuildTime Feed 构建时间
	BuildTime time.Time
}
