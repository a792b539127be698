package mail

import (
	"context"
	"fmt"
	"mime"
	"net/mail"
	"net/smtp"
	"strings"

	"mac-advisor/internal/platform/id"
)

// SMTPSender 通过外部 SMTP 服务投递邮件。
// 标准库 net/smtp 不接受 context，发送前检查一次取消状态。
type SMTPSender struct {
	addr string
	host string
	auth smtp.Auth
	from string
}

// NewSMTPSender 构建 SMTP 投递器。username 为空时走匿名投递（本地 relay 场景）。
func NewSMTPSender(host string, port int, username, password, from string) *SMTPSender {
	s := &SMTPSender{
		addr: fmt.Sprintf("%s:%d", host, port),
		host: host,
		from: from,
	}
	if username != "" {
		s.auth = smtp.PlainAuth("", username, password, host)
	}
	return s
}

func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := mail.ParseAddress(msg.To); err != nil {
		return fmt.Errorf("send mail: invalid recipient %q: %w", msg.To, err)
	}
	body := buildMIME(s.from, msg)
	if err := smtp.SendMail(s.addr, s.auth, s.from, []string{msg.To}, body); err != nil {
		return fmt.Errorf("send mail to %s: %w", msg.To, err)
	}
	return nil
}

// buildMIME 组装 multipart/alternative 报文：
// text/plain 在前，text/html 在后，客户端按约定取最后一个可渲染的部分。
func buildMIME(from string, msg Message) []byte {
	boundary := "advisor-" + id.New("part")

	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", msg.To)
	fmt.Fprintf(&b, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", msg.Subject))
	b.WriteString("MIME-Version: 1.0\r\n")
	fmt.Fprintf(&b, "Content-Type: multipart/alternative; boundary=%q\r\n", boundary)
	b.WriteString("\r\n")

	writePart := func(contentType, body string) {
		fmt.Fprintf(&b, "--%s\r\n", boundary)
		fmt.Fprintf(&b, "Content-Type: %s; charset=utf-8\r\n", contentType)
		b.WriteString("\r\n")
		b.WriteString(strings.ReplaceAll(body, "\n", "\r\n"))
		b.WriteString("\r\n")
	}
	writePart("text/plain", msg.TextBody)
	if msg.HTMLBody != "" {
		writePart("text/html", msg.HTMLBody)
	}
	fmt.Fprintf(&b, "--%s--\r\n", boundary)
	return []byte(b.String())
}
