/*
 * @Description: 监听配置变更事件，刷新受影响的派生缓存。
 * @Author: 林远
 * @Date: 2026-03-08 11:12:06
 * @LastEditTime: 2026-03-08 11:47:29
 * @LastEditors: 林远
 */
package listener

import (
	"context"
	"log"
	"strings"

	"github.com/linkfable/folio-app/internal/pkg/event"
	"github.com/linkfable/folio-app/pkg/constant"
	rss_service "github.com/linkfable/folio-app/pkg/service/rss"
	setting_service "github.com/linkfable/folio-app/pkg/service/setting"
)

// SettingChangeListener 监听 SettingsUpdated 事件。
// RSS 输出内嵌了站点标题、描述等配置，这些键变更后缓存的 XML 就过期了。
type SettingChangeListener struct {
	rssSvc rss_service.Service
}

// NewSettingChangeListener 是 SettingChangeListener 的构造函数。
func NewSettingChangeListener(eventBus *event.EventBus, rssSvc rss_service.Service) *SettingChangeListener {
	listener := &SettingChangeListener{
		rssSvc: rssSvc,
	}
	eventBus.Subscribe(event.SettingsUpdated, listener.handleSettingUpdated)
	return listener
}

// handleSettingUpdated 是事件处理器，每个变更的键触发一次。
func (l *SettingChangeListener) handleSettingUpdated(payload interface{}) {
	evt, ok := payload.(setting_service.SettingUpdatedEvent)
	if !ok {
		log.Printf("[SettingChangeListener] 错误：收到的 SettingsUpdated 事件负载类型不正确")
		return
	}

	if !affectsRSSFeed(evt.Key) {
		return
	}

	log.Printf("[SettingChangeListener] 配置项 %q 已变更，清除 RSS 缓存。", evt.Key)
	if err := l.rssSvc.InvalidateCache(context.Background()); err != nil {
		log.Printf("[SettingChangeListener] 警告: 清除 RSS 缓存失败: %v", err)
	}
}

// affectsRSSFeed 判断配置键是否参与 RSS 输出的渲染。
func affectsRSSFeed(key string) bool {
	if strings.HasPrefix(key, "rss.") {
		return true
	}
	switch key {
	case constant.KeyAppName.String(), constant.KeySubTitle.String(),
		constant.KeySiteDescription.String(), constant.KeySiteURL.String(),
		constant.KeySiteOwnerName.String(), constant.KeySiteOwnerEmail.String():
		return true
	}
	return false
}
