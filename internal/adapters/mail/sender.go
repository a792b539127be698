package mail

import "context"

// Message 是一封待发送的邮件，正文同时带纯文本与 HTML 两个版本。
type Message struct {
	To       string
	Subject  string
	TextBody string
	HTMLBody string
}

// Sender 抽象邮件投递。生产环境走 SMTP，测试注入假实现。
type Sender interface {
	Send(ctx context.Context, msg Message) error
}
