package pkg

import (
	"crypto/tls"
	"fmt"
	"time"

	"gopkg.in/gomail.v2"
)

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string // 显示的发件人，可与 Username 相同
}

// Mailer 发送一封 HTML 邮件
type Mailer func(to, subject, htmlBody string) error

// NewSMTPMailer 基于 gomail 的 Mailer
func NewSMTPMailer(cfg SMTPConfig) Mailer {
	return func(to, subject, htmlBody string) error {
		m := gomail.NewMessage()
		m.SetHeader("From", cfg.From)
		m.SetHeader("To", to)
		m.SetHeader("Subject", subject)
		m.SetBody("text/html", htmlBody)

		d := gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
		d.TLSConfig = &tls.Config{ServerName: cfg.Host}
		return d.DialAndSend(m)
	}
}

func ResetCodeHTML(username, code string, ttl time.Duration) string {
	return fmt.Sprintf(`<p>Здравствуйте, %s!</p><p>Код для сброса пароля: <b style="font-size:18px;">%s</b>.</p><p>Код действует %d мин. Никому его не сообщайте.</p>`,
		username, code, int(ttl.Minutes()))
}
