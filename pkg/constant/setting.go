// pkg/constant/setting.go
/*
 * @Description:
 * @Author: 林远
 * @Date: 2025-09-12 11:03:44
 * @LastEditTime: 2026-07-18 20:15:32
 * @LastEditors: 林远
 */
package constant

// SettingKey 为所有在应用中使用的配置键定义了类型安全的常量。
type SettingKey string

// String 方便地将 SettingKey 转换为 string 类型。
func (k SettingKey) String() string {
	return string(k)
}

const (
	// --- 站点基础配置 (可暴露给前端) ---
	KeyAppName         SettingKey = "APP_NAME"
	KeySubTitle        SettingKey = "SUB_TITLE"
	KeySiteURL         SettingKey = "SITE_URL"
	KeyAppVersion      SettingKey = "APP_VERSION"
	KeySiteKeywords    SettingKey = "SITE_KEYWORDS"
	KeySiteDescription SettingKey = "SITE_DESCRIPTION"
	KeyIconURL         SettingKey = "ICON_URL"
	KeyUserAvatar      SettingKey = "USER_AVATAR"
	KeyGravatarURL     SettingKey = "GRAVATAR_URL"

	KeySiteOwnerName  SettingKey = "frontDesk.siteOwner.name"
	KeySiteOwnerEmail SettingKey = "frontDesk.siteOwner.email"

	// --- 安全配置 ---
	KeyJWTSecret SettingKey = "JWT_SECRET"
	KeyIDSeed    SettingKey = "id_seed"

	// --- SMTP 邮件发送配置 ---
	KeySmtpHost         SettingKey = "SMTP_HOST"
	KeySmtpPort         SettingKey = "SMTP_PORT"
	KeySmtpUsername     SettingKey = "SMTP_USERNAME"
	KeySmtpPassword     SettingKey = "SMTP_PASSWORD"
	KeySmtpSenderName   SettingKey = "SMTP_SENDER_NAME"
	KeySmtpSenderEmail  SettingKey = "SMTP_SENDER_EMAIL"
	KeySmtpReplyToEmail SettingKey = "SMTP_REPLY_TO_EMAIL"
	KeySmtpForceSSL     SettingKey = "SMTP_FORCE_SSL"

	// --- 评论配置 ---
	KeyCommentEnable            SettingKey = "comment.enable"
	KeyCommentPageSize          SettingKey = "comment.page_size"
	KeyCommentLimitPerMinute    SettingKey = "comment.limit_per_minute"
	KeyCommentLimitLength       SettingKey = "comment.limit_length"
	KeyCommentNotifyAdmin       SettingKey = "comment.notify_admin"
	KeyCommentMailSubjectAdmin  SettingKey = "comment.mail_subject_admin"
	KeyCommentMailTemplateAdmin SettingKey = "comment.mail_template_admin"

	// --- 文章配置 ---
	KeyPostDefaultCover SettingKey = "post.default.cover"
	KeyPostPageSize     SettingKey = "post.page_size"

	// --- 订阅与邮件推送配置 ---
	KeySubscribeEnable          SettingKey = "post.subscribe.enable"
	KeySubscribeConfirmSubject  SettingKey = "post.subscribe.confirm_subject"
	KeySubscribeConfirmTemplate SettingKey = "post.subscribe.confirm_template"
	KeySubscribeWelcomeSubject  SettingKey = "post.subscribe.welcome_subject"
	KeySubscribeWelcomeTemplate SettingKey = "post.subscribe.welcome_template"
	KeySubscribeMailSubject     SettingKey = "post.subscribe.mail_subject"
	KeySubscribeMailTemplate    SettingKey = "post.subscribe.mail_template"

	// --- RSS 配置 ---
	KeyRSSEnable   SettingKey = "rss.enable"
	KeyRSSPageSize SettingKey = "rss.page_size"
	KeyRSSFullText SettingKey = "rss.full_text"
)
