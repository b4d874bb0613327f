// pkg/service/utility/email_service.go
package utility

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"html/template"
	"log"
	"net"
	"net/smtp"
	"strconv"
	"strings"
	"time"

	"github.com/linkfable/folio-app/internal/pkg/strutil"
	"github.com/linkfable/folio-app/pkg/constant"
	"github.com/linkfable/folio-app/pkg/domain/model"
	"github.com/linkfable/folio-app/pkg/idgen"
	"github.com/linkfable/folio-app/pkg/service/setting"
)

// EmailService 定义了发送业务邮件的接口。
// 订阅确认、欢迎和评论通知都是尽力而为的异步发送，不会阻塞调用方的写路径；
// 文章推送是同步发送，由调度方自行统计成败。
type EmailService interface {
	// SendTestEmail 发送一封测试邮件，同步等待发送结果
	SendTestEmail(ctx context.Context, toEmail string) error
	// SendConfirmationEmail 发送订阅确认邮件，链接中携带明文令牌
	SendConfirmationEmail(ctx context.Context, toEmail, confirmToken string) error
	// SendWelcomeEmail 发送订阅成功的欢迎邮件
	SendWelcomeEmail(ctx context.Context, toEmail, unsubscribeToken string) error
	// SendNewsletterEmail 同步发送文章推送邮件，返回发送结果
	SendNewsletterEmail(ctx context.Context, toEmail, unsubscribeToken string, article *model.Article) error
	// SendCommentNotification 通知站长有新评论等待审核
	SendCommentNotification(comment *model.Comment, article *model.Article)
}

// emailService 是 EmailService 接口的实现
type emailService struct {
	settingSvc setting.SettingService
}

// NewEmailService 是 emailService 的构造函数
func NewEmailService(settingSvc setting.SettingService) EmailService {
	return &emailService{
		settingSvc: settingSvc,
	}
}

// siteURL 返回配置的站点地址，未配置时回退到默认域名
func (s *emailService) siteURL() string {
	siteURL := s.settingSvc.Get(constant.KeySiteURL.String())
	if siteURL == "" || siteURL == "https://" || siteURL == "http://" {
		log.Printf("[WARNING] 站点URL未正确配置（当前值: %s），使用默认值 https://blog.linkfable.com", siteURL)
		siteURL = "https://blog.linkfable.com"
	}
	return strings.TrimRight(siteURL, "/")
}

// SendTestEmail 负责发送一封测试邮件
func (s *emailService) SendTestEmail(ctx context.Context, toEmail string) error {
	appName := s.settingSvc.Get(constant.KeyAppName.String())
	siteURL := s.siteURL()

	subject := fmt.Sprintf("这是一封来自「%s」的测试邮件", appName)
	body := fmt.Sprintf(`<p>你好！</p>
	<p>这是一封来自 <a href="%s">%s</a> 的测试邮件。</p>
	<p>如果您收到了这封邮件，那么证明您的网站邮件服务配置正确。</p>`, siteURL, appName)

	// 创建30秒超时的context，避免 SMTP 服务器无响应时长时间挂起
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	errChan := make(chan error, 1)
	go func() {
		errChan <- s.send(toEmail, subject, body)
	}()

	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
		log.Printf("[ERROR] 发送测试邮件超时 (30s): %s", toEmail)
		return fmt.Errorf("发送测试邮件超时，请稍后重试")
	}
}

// SendConfirmationEmail 发送订阅确认邮件。
// 邮件在独立 goroutine 中发送，发送失败只记录日志，不影响订阅记录的落库。
func (s *emailService) SendConfirmationEmail(ctx context.Context, toEmail, confirmToken string) error {
	appName := s.settingSvc.Get(constant.KeyAppName.String())
	siteURL := s.siteURL()
	confirmURL := fmt.Sprintf("%s/api/subscriptions/confirm/%s", siteURL, confirmToken)

	subjectTpl := s.settingSvc.Get(constant.KeySubscribeConfirmSubject.String())
	bodyTpl := s.settingSvc.Get(constant.KeySubscribeConfirmTemplate.String())

	data := map[string]interface{}{
		"SITE_NAME":   appName,
		"SITE_URL":    siteURL,
		"CONFIRM_URL": confirmURL,
	}

	subject, err := renderTemplate(subjectTpl, data)
	if err != nil {
		return fmt.Errorf("渲染订阅确认邮件主题失败: %w", err)
	}
	body, err := renderTemplate(bodyTpl, data)
	if err != nil {
		return fmt.Errorf("渲染订阅确认邮件正文失败: %w", err)
	}

	go func() {
		if err := s.send(toEmail, subject, body); err != nil {
			log.Printf("[ERROR] 发送订阅确认邮件失败 (Email: %s): %v", toEmail, err)
		} else {
			log.Printf("[INFO] 订阅确认邮件已发送到: %s", toEmail)
		}
	}()

	return nil
}

// SendWelcomeEmail 发送订阅成功的欢迎邮件，异步尽力而为
func (s *emailService) SendWelcomeEmail(ctx context.Context, toEmail, unsubscribeToken string) error {
	appName := s.settingSvc.Get(constant.KeyAppName.String())
	siteURL := s.siteURL()
	unsubscribeURL := fmt.Sprintf("%s/api/subscriptions/unsubscribe/%s", siteURL, unsubscribeToken)

	subjectTpl := s.settingSvc.Get(constant.KeySubscribeWelcomeSubject.String())
	bodyTpl := s.settingSvc.Get(constant.KeySubscribeWelcomeTemplate.String())

	data := map[string]interface{}{
		"SITE_NAME":       appName,
		"SITE_URL":        siteURL,
		"UNSUBSCRIBE_URL": unsubscribeURL,
	}

	subject, err := renderTemplate(subjectTpl, data)
	if err != nil {
		return fmt.Errorf("渲染欢迎邮件主题失败: %w", err)
	}
	body, err := renderTemplate(bodyTpl, data)
	if err != nil {
		return fmt.Errorf("渲染欢迎邮件正文失败: %w", err)
	}

	go func() {
		if err := s.send(toEmail, subject, body); err != nil {
			log.Printf("[ERROR] 发送欢迎邮件失败 (Email: %s): %v", toEmail, err)
		} else {
			log.Printf("[INFO] 欢迎邮件已发送到: %s", toEmail)
		}
	}()

	return nil
}

// SendNewsletterEmail 发送文章更新推送邮件。
// 与其他邮件不同，这里同步发送并把错误返回给调用方，
// 推送调度器依赖返回值来统计每个收件人的成败。
func (s *emailService) SendNewsletterEmail(ctx context.Context, toEmail, unsubscribeToken string, article *model.Article) error {
	appName := s.settingSvc.Get(constant.KeyAppName.String())
	siteURL := s.siteURL()

	publicID, err := idgen.GeneratePublicID(article.ID, idgen.EntityTypeArticle)
	if err != nil {
		return fmt.Errorf("生成文章公开ID失败: %w", err)
	}
	articleURL := fmt.Sprintf("%s/posts/%s", siteURL, publicID)
	unsubscribeURL := fmt.Sprintf("%s/api/subscriptions/unsubscribe/%s", siteURL, unsubscribeToken)

	subjectTpl := s.settingSvc.Get(constant.KeySubscribeMailSubject.String())
	bodyTpl := s.settingSvc.Get(constant.KeySubscribeMailTemplate.String())

	summary := article.Summary
	if summary == "" {
		summary = strutil.Truncate(article.ContentMd, 100)
	}

	data := map[string]interface{}{
		"SITE_NAME":       appName,
		"SITE_URL":        siteURL,
		"TITLE":           article.Title,
		"SUMMARY":         summary,
		"POST_URL":        articleURL,
		"COVER":           article.CoverURL,
		"UNSUBSCRIBE_URL": unsubscribeURL,
	}

	subject, err := renderTemplate(subjectTpl, data)
	if err != nil {
		return fmt.Errorf("渲染文章推送邮件主题失败: %w", err)
	}
	body, err := renderTemplate(bodyTpl, data)
	if err != nil {
		return fmt.Errorf("渲染文章推送邮件正文失败: %w", err)
	}

	return s.send(toEmail, subject, body)
}

// SendCommentNotification 通知站长有新评论等待审核。
// 评论落库后由事件监听器触发，发送失败只记录日志。
func (s *emailService) SendCommentNotification(comment *model.Comment, article *model.Article) {
	notifyAdmin := s.settingSvc.GetBool(constant.KeyCommentNotifyAdmin.String())
	if !notifyAdmin {
		log.Printf("[DEBUG] 评论邮件通知未开启（notifyAdmin=false），跳过发送")
		return
	}

	adminEmail := strings.TrimSpace(s.settingSvc.Get(constant.KeySiteOwnerEmail.String()))
	if adminEmail == "" {
		log.Printf("[WARNING] 站长邮箱未配置（frontDesk.siteOwner.email 为空），无法发送评论通知邮件")
		return
	}

	// 站长自己的评论不用通知自己
	if strings.EqualFold(comment.Author.Email, adminEmail) {
		log.Printf("[DEBUG] 评论来自站长本人，跳过通知")
		return
	}

	appName := s.settingSvc.Get(constant.KeyAppName.String())
	siteURL := s.siteURL()

	publicID, err := idgen.GeneratePublicID(article.ID, idgen.EntityTypeArticle)
	if err != nil {
		log.Printf("[ERROR] 生成文章公开ID失败，无法发送评论通知: %v", err)
		return
	}
	articleURL := fmt.Sprintf("%s/posts/%s", siteURL, publicID)

	subjectTpl := s.settingSvc.Get(constant.KeyCommentMailSubjectAdmin.String())
	bodyTpl := s.settingSvc.Get(constant.KeyCommentMailTemplateAdmin.String())

	data := map[string]interface{}{
		"SITE_NAME":  appName,
		"SITE_URL":   siteURL,
		"AUTHOR":     comment.Author.Name,
		"POST_TITLE": article.Title,
		"CONTENT":    template.HTML(comment.ContentHTML),
		"POST_URL":   articleURL,
	}

	subject, err := renderTemplate(subjectTpl, data)
	if err != nil {
		log.Printf("[ERROR] 渲染评论通知邮件主题失败: %v", err)
		return
	}
	body, err := renderTemplate(bodyTpl, data)
	if err != nil {
		log.Printf("[ERROR] 渲染评论通知邮件正文失败: %v", err)
		return
	}

	go func() {
		if err := s.send(adminEmail, subject, body); err != nil {
			log.Printf("[ERROR] 发送评论通知邮件失败: %v", err)
		} else {
			log.Printf("[INFO] 评论通知邮件已发送到: %s", adminEmail)
		}
	}()
}

// send 是一个底层的、私有的邮件发送函数
func (s *emailService) send(to, subject, body string) error {
	host := s.settingSvc.Get(constant.KeySmtpHost.String())
	portStr := s.settingSvc.Get(constant.KeySmtpPort.String())
	username := s.settingSvc.Get(constant.KeySmtpUsername.String())
	password := s.settingSvc.Get(constant.KeySmtpPassword.String())
	senderName := s.settingSvc.Get(constant.KeySmtpSenderName.String())
	senderEmail := s.settingSvc.Get(constant.KeySmtpSenderEmail.String())
	replyToEmail := s.settingSvc.Get(constant.KeySmtpReplyToEmail.String())
	forceSSL := s.settingSvc.GetBool(constant.KeySmtpForceSSL.String())

	// 验证端口配置是否为数字
	if _, err := strconv.Atoi(portStr); err != nil {
		msg := fmt.Sprintf("SMTP端口配置无效 '%s'", portStr)
		log.Printf("错误: %s: %v", msg, err)
		return fmt.Errorf("%s: %w", msg, err)
	}

	headers := make(map[string]string)
	headers["From"] = fmt.Sprintf("%s <%s>", senderName, senderEmail)
	headers["To"] = to
	headers["Subject"] = subject
	headers["Content-Type"] = "text/html; charset=UTF-8"
	if replyToEmail != "" {
		headers["Reply-To"] = replyToEmail
	}

	var messageBuilder strings.Builder
	for k, v := range headers {
		messageBuilder.WriteString(fmt.Sprintf("%s: %s\r\n", k, v))
	}
	messageBuilder.WriteString("\r\n")
	messageBuilder.WriteString(body)
	message := []byte(messageBuilder.String())

	auth := smtp.PlainAuth("", username, password, host)
	addr := net.JoinHostPort(host, portStr)

	if forceSSL {
		if err := sendMailSSL(addr, auth, senderEmail, []string{to}, message); err != nil {
			log.Printf("错误: [SSL] 发送邮件到 %s 失败: %v", to, err)
			return err
		}
		return nil
	}

	// 使用带超时的拨号（15秒超时）
	conn, err := net.DialTimeout("tcp", addr, 15*time.Second)
	if err != nil {
		log.Printf("错误: [STARTTLS] Dialing failed: %v", err)
		return err
	}

	c, err := smtp.NewClient(conn, host)
	if err != nil {
		conn.Close()
		log.Printf("错误: [STARTTLS] 创建SMTP客户端失败: %v", err)
		return err
	}
	defer c.Close()

	if ok, _ := c.Extension("STARTTLS"); ok {
		tlsConfig := &tls.Config{
			ServerName:         host,
			InsecureSkipVerify: true,
		}
		if err = c.StartTLS(tlsConfig); err != nil {
			log.Printf("错误: [STARTTLS] c.StartTLS failed: %v", err)
			return err
		}
	}

	if auth != nil {
		if err = c.Auth(auth); err != nil {
			log.Printf("错误: [STARTTLS] c.Auth failed: %v", err)
			return err
		}
	}

	if err = c.Mail(senderEmail); err != nil {
		return err
	}
	if err = c.Rcpt(to); err != nil {
		return err
	}

	w, err := c.Data()
	if err != nil {
		return err
	}
	_, err = w.Write(message)
	if err != nil {
		return err
	}
	err = w.Close()
	if err != nil {
		return err
	}

	if err := c.Quit(); err != nil {
		log.Printf("警告: [STARTTLS] SMTP c.Quit() 执行失败: %v。这通常不影响邮件发送。", err)
	}

	return nil
}

// renderTemplate 是一个渲染 Go 模板的辅助函数
func renderTemplate(tplStr string, data interface{}) (string, error) {
	tpl, err := template.New("email").Parse(tplStr)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := tpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// sendMailSSL 是用于处理直接SSL连接的辅助函数
func sendMailSSL(addr string, auth smtp.Auth, from string, to []string, message []byte) error {
	host, port, _ := net.SplitHostPort(addr)
	tlsConfig := &tls.Config{
		InsecureSkipVerify: true,
		ServerName:         host,
		MinVersion:         tls.VersionTLS12, // 最低支持TLS 1.2
	}

	// 设置15秒超时
	dialer := &net.Dialer{
		Timeout: 15 * time.Second,
	}

	log.Printf("[邮件发送] 尝试通过SSL连接到 %s:%s", host, port)
	conn, err := tls.DialWithDialer(dialer, "tcp", addr, tlsConfig)
	if err != nil {
		return fmt.Errorf("TLS拨号失败 (请检查端口是否正确，SSL通常使用465端口): %w", err)
	}
	defer conn.Close()
	client, err := smtp.NewClient(conn, host)
	if err != nil {
		return fmt.Errorf("创建SMTP客户端失败: %w", err)
	}
	defer client.Close()
	if auth != nil {
		if err = client.Auth(auth); err != nil {
			return fmt.Errorf("SMTP认证失败: %w", err)
		}
	}
	if err = client.Mail(from); err != nil {
		return fmt.Errorf("设置发件人失败: %w", err)
	}
	for _, recipient := range to {
		if err = client.Rcpt(recipient); err != nil {
			return fmt.Errorf("设置收件人 %s 失败: %w", recipient, err)
		}
	}
	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("获取数据写入器失败: %w", err)
	}
	_, err = w.Write(message)
	if err != nil {
		return fmt.Errorf("写入邮件内容失败: %w", err)
	}
	err = w.Close()
	if err != nil {
		return fmt.Errorf("关闭写入器失败: %w", err)
	}
	if err := client.Quit(); err != nil {
		log.Printf("警告: SMTP client.Quit() 执行失败: %v。这通常不影响邮件发送。", err)
	}
	return nil
}
