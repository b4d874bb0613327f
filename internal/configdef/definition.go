package configdef

import (
	"github.com/linkfable/folio-app/pkg/constant"
)

// Definition 定义了单个配置项的所有属性。
type Definition struct {
	Key      constant.SettingKey
	Value    string
	Comment  string
	IsPublic bool
}

// UserGroupDefinition 定义了单个用户组的所有属性。
type UserGroupDefinition struct {
	ID          uint
	Name        string
	Description string
}

// AllSettings 是我们系统中所有配置项的"单一事实来源"
var AllSettings = []Definition{
	// --- 站点基础配置 ---
	{Key: constant.KeyAppName, Value: "Folio", Comment: "应用名称", IsPublic: true},
	{Key: constant.KeySubTitle, Value: "写下来，寄出去", Comment: "应用副标题", IsPublic: true},
	{Key: constant.KeySiteURL, Value: "https://blog.linkfable.com", Comment: "应用URL", IsPublic: true},
	{Key: constant.KeyAppVersion, Value: "1.0.0", Comment: "应用版本", IsPublic: true},
	{Key: constant.KeySiteKeywords, Value: "Folio,博客,blog,订阅,newsletter,评论", Comment: "站点关键词", IsPublic: true},
	{Key: constant.KeySiteDescription, Value: "一个带邮件订阅推送和评论审核的轻量博客引擎。", Comment: "站点描述", IsPublic: true},
	{Key: constant.KeyIconURL, Value: "/static/img/favicon.ico", Comment: "Icon图标URL", IsPublic: true},
	{Key: constant.KeyUserAvatar, Value: "/static/img/avatar.webp", Comment: "用户默认头像URL", IsPublic: true},
	{Key: constant.KeyGravatarURL, Value: "https://cravatar.cn/", Comment: "Gravatar 服务器地址", IsPublic: true},

	// --- FrontDesk 配置 ---
	{Key: constant.KeySiteOwnerName, Value: "林远", Comment: "前台网站拥有者名", IsPublic: true},
	{Key: constant.KeySiteOwnerEmail, Value: "hi@linkfable.com", Comment: "前台网站拥有者邮箱", IsPublic: true},

	// --- 评论配置 ---
	{Key: constant.KeyCommentEnable, Value: "true", Comment: "是否开启评论功能 (true/false)", IsPublic: true},
	{Key: constant.KeyCommentPageSize, Value: "10", Comment: "评论每页显示的顶级评论数量", IsPublic: true},
	{Key: constant.KeyCommentLimitPerMinute, Value: "5", Comment: "单个IP每分钟允许提交的评论数量", IsPublic: false},
	{Key: constant.KeyCommentLimitLength, Value: "1000", Comment: "评论内容最大长度（字符数）", IsPublic: true},
	{Key: constant.KeyCommentNotifyAdmin, Value: "true", Comment: "有新评论等待审核时是否邮件通知管理员 (true/false)", IsPublic: false},
	{Key: constant.KeyCommentMailSubjectAdmin, Value: "【{{.SITE_NAME}}】有新评论等待审核", Comment: "新评论管理员通知邮件主题模板", IsPublic: false},
	{Key: constant.KeyCommentMailTemplateAdmin, Value: `<div style="max-width:600px;margin:0 auto;padding:20px;font-family:-apple-system,BlinkMacSystemFont,'Segoe UI',Roboto,sans-serif;"><div style="text-align:center;padding:20px 0;border-bottom:1px solid #eee;"><h1 style="margin:0;color:#333;font-size:24px;">{{.SITE_NAME}}</h1></div><div style="padding:30px 0;"><h2 style="margin:0 0 20px;color:#333;font-size:20px;">💬 新评论等待审核</h2><div style="background:#f8f9fa;border-radius:8px;padding:20px;margin-bottom:20px;"><p style="margin:0 0 10px;color:#333;"><strong>{{.AUTHOR}}</strong> 在《{{.POST_TITLE}}》下留言：</p><p style="margin:0;color:#666;font-size:14px;line-height:1.6;">{{.CONTENT}}</p></div><a href="{{.POST_URL}}" style="display:inline-block;background:#1a73e8;color:#fff;padding:12px 24px;border-radius:6px;text-decoration:none;font-weight:500;">前往处理</a></div></div>`, Comment: "新评论管理员通知邮件HTML模板，支持变量：{{.SITE_NAME}}站点名称、{{.AUTHOR}}评论者、{{.POST_TITLE}}文章标题、{{.CONTENT}}评论内容、{{.POST_URL}}文章链接", IsPublic: false},

	// --- 文章配置 ---
	{Key: constant.KeyPostDefaultCover, Value: "/static/img/default-cover.webp", Comment: "文章默认封面URL", IsPublic: true},
	{Key: constant.KeyPostPageSize, Value: "10", Comment: "公开文章列表每页数量", IsPublic: true},

	// --- 文章订阅配置 ---
	{Key: constant.KeySubscribeEnable, Value: "true", Comment: "是否启用文章订阅功能 (true/false)", IsPublic: true},
	{Key: constant.KeySubscribeConfirmSubject, Value: "【{{.SITE_NAME}}】请确认您的订阅", Comment: "订阅确认邮件主题模板", IsPublic: false},
	{Key: constant.KeySubscribeConfirmTemplate, Value: `<div style="max-width:600px;margin:0 auto;padding:20px;font-family:-apple-system,BlinkMacSystemFont,'Segoe UI',Roboto,sans-serif;"><div style="text-align:center;padding:20px 0;border-bottom:1px solid #eee;"><h1 style="margin:0;color:#333;font-size:24px;">{{.SITE_NAME}}</h1></div><div style="padding:30px 0;"><h2 style="margin:0 0 20px;color:#333;font-size:20px;">📮 确认订阅</h2><p style="margin:0 0 20px;color:#666;font-size:14px;line-height:1.6;">感谢订阅 {{.SITE_NAME}}！请点击下方按钮确认您的邮箱地址（此链接24小时内有效）：</p><a href="{{.CONFIRM_URL}}" style="display:inline-block;background:#1a73e8;color:#fff;padding:12px 24px;border-radius:6px;text-decoration:none;font-weight:500;">确认订阅</a><p style="margin:20px 0 0;color:#999;font-size:12px;">如果您没有订阅过本站，请忽略此邮件。</p></div></div>`, Comment: "订阅确认邮件HTML模板，支持变量：{{.SITE_NAME}}站点名称、{{.CONFIRM_URL}}确认链接", IsPublic: false},
	{Key: constant.KeySubscribeWelcomeSubject, Value: "【{{.SITE_NAME}}】订阅成功，欢迎加入", Comment: "订阅欢迎邮件主题模板", IsPublic: false},
	{Key: constant.KeySubscribeWelcomeTemplate, Value: `<div style="max-width:600px;margin:0 auto;padding:20px;font-family:-apple-system,BlinkMacSystemFont,'Segoe UI',Roboto,sans-serif;"><div style="text-align:center;padding:20px 0;border-bottom:1px solid #eee;"><h1 style="margin:0;color:#333;font-size:24px;">{{.SITE_NAME}}</h1></div><div style="padding:30px 0;"><h2 style="margin:0 0 20px;color:#333;font-size:20px;">🎉 订阅成功</h2><p style="margin:0 0 20px;color:#666;font-size:14px;line-height:1.6;">您已成功订阅 {{.SITE_NAME}} 的文章更新，新文章发布时会第一时间推送到您的邮箱。</p><a href="{{.SITE_URL}}" style="display:inline-block;background:#1a73e8;color:#fff;padding:12px 24px;border-radius:6px;text-decoration:none;font-weight:500;">去逛逛</a></div><div style="padding:20px 0;border-top:1px solid #eee;text-align:center;color:#999;font-size:12px;"><p style="margin:0;"><a href="{{.UNSUBSCRIBE_URL}}" style="color:#999;">取消订阅</a></p></div></div>`, Comment: "订阅欢迎邮件HTML模板，支持变量：{{.SITE_NAME}}站点名称、{{.SITE_URL}}站点链接、{{.UNSUBSCRIBE_URL}}退订链接", IsPublic: false},
	{Key: constant.KeySubscribeMailSubject, Value: "【{{.SITE_NAME}}】新文章发布：{{.TITLE}}", Comment: "订阅推送邮件主题模板，支持变量：{{.SITE_NAME}}站点名称、{{.TITLE}}文章标题", IsPublic: false},
	{Key: constant.KeySubscribeMailTemplate, Value: `<div style="max-width:600px;margin:0 auto;padding:20px;font-family:-apple-system,BlinkMacSystemFont,'Segoe UI',Roboto,sans-serif;"><div style="text-align:center;padding:20px 0;border-bottom:1px solid #eee;"><h1 style="margin:0;color:#333;font-size:24px;">{{.SITE_NAME}}</h1></div><div style="padding:30px 0;"><h2 style="margin:0 0 20px;color:#333;font-size:20px;">📝 新文章发布</h2><div style="background:#f8f9fa;border-radius:8px;padding:20px;margin-bottom:20px;"><h3 style="margin:0 0 10px;color:#333;"><a href="{{.POST_URL}}" style="color:#1a73e8;text-decoration:none;">{{.TITLE}}</a></h3><p style="margin:0;color:#666;font-size:14px;line-height:1.6;">{{.SUMMARY}}</p></div><a href="{{.POST_URL}}" style="display:inline-block;background:#1a73e8;color:#fff;padding:12px 24px;border-radius:6px;text-decoration:none;font-weight:500;">阅读全文</a></div><div style="padding:20px 0;border-top:1px solid #eee;text-align:center;color:#999;font-size:12px;"><p style="margin:0 0 10px;">您收到此邮件是因为您订阅了 {{.SITE_NAME}} 的文章更新。</p><p style="margin:0;"><a href="{{.UNSUBSCRIBE_URL}}" style="color:#999;">取消订阅</a></p></div></div>`, Comment: "订阅推送邮件HTML模板，支持变量：{{.SITE_NAME}}站点名称、{{.TITLE}}文章标题、{{.SUMMARY}}文章摘要、{{.POST_URL}}文章链接、{{.UNSUBSCRIBE_URL}}退订链接", IsPublic: false},

	// --- RSS 配置 ---
	{Key: constant.KeyRSSEnable, Value: "true", Comment: "是否启用RSS订阅输出 (true/false)", IsPublic: true},
	{Key: constant.KeyRSSPageSize, Value: "20", Comment: "RSS输出的文章数量", IsPublic: true},
	{Key: constant.KeyRSSFullText, Value: "false", Comment: "RSS是否输出全文 (true/false)，否则仅输出摘要", IsPublic: true},

	// --- 内部或敏感配置 ---
	{Key: constant.KeyJWTSecret, Value: "", Comment: "JWT密钥", IsPublic: false},
	{Key: constant.KeySmtpHost, Value: "smtp.qq.com", Comment: "SMTP 服务器地址", IsPublic: false},
	{Key: constant.KeySmtpPort, Value: "587", Comment: "SMTP 服务器端口 (587 for STARTTLS, 465 for SSL)", IsPublic: false},
	{Key: constant.KeySmtpUsername, Value: "user@example.com", Comment: "SMTP 登录用户名", IsPublic: false},
	{Key: constant.KeySmtpPassword, Value: "", Comment: "SMTP 登录密码", IsPublic: false},
	{Key: constant.KeySmtpSenderName, Value: "Folio", Comment: "邮件发送人名称", IsPublic: false},
	{Key: constant.KeySmtpSenderEmail, Value: "user@example.com", Comment: "邮件发送人邮箱地址", IsPublic: false},
	{Key: constant.KeySmtpReplyToEmail, Value: "", Comment: "回信邮箱地址", IsPublic: false},
	{Key: constant.KeySmtpForceSSL, Value: "false", Comment: "是否强制使用 SSL (设为true通常配合465端口)", IsPublic: false},
}

// AllUserGroups 是所有默认用户组的"单一事实来源"
var AllUserGroups = []UserGroupDefinition{
	{
		ID:          1,
		Name:        "管理员",
		Description: "拥有所有权限的系统管理员",
	},
	{
		ID:          2,
		Name:        "读者",
		Description: "普通注册用户，仅能访问公开内容",
	},
}
