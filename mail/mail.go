package mail

import (
	"context"
	"fmt"
	"log/slog"

	"gopkg.in/gomail.v2"
)

type Sender interface {
	Send(ctx context.Context, to, subject, body string) error
}

// SMTPSender 透過SMTP寄送純文字信件
type SMTPSender struct {
	from   string
	dialer *gomail.Dialer
}

func NewSMTPSender(host string, port int, username, password, from string) *SMTPSender {
	return &SMTPSender{
		from:   from,
		dialer: gomail.NewDialer(host, port, username, password),
	}
}

func (s *SMTPSender) Send(ctx context.Context, to, subject, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.dialer.DialAndSend(newMessage(s.from, to, subject, body)); err != nil {
		return fmt.Errorf("send mail to %s: %w", to, err)
	}
	return nil
}

func newMessage(from, to, subject, body string) *gomail.Message {
	m := gomail.NewMessage()
	m.SetHeader("From", from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)
	return m
}

// LogSender 在沒有設定SMTP時使用，只記錄收件者和主旨
type LogSender struct {
	Logger *slog.Logger
}

func (s LogSender) Send(ctx context.Context, to, subject, _ string) error {
	s.Logger.WarnContext(ctx, "smtp not configured, mail dropped", "to", to, "subject", subject)
	return nil
}
