package email

import (
	"fmt"
	"log"
	"net/smtp"
)

// Sender 是寄信的介面邊界，實際的投遞方式由部署環境決定
type Sender interface {
	Send(to, subject, body string) error
}

// SMTPSender 透過 SMTP 寄送純文字郵件
type SMTPSender struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
}

// Send 寄出一封郵件
func (s *SMTPSender) Send(to, subject, body string) error {
	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s\r\n", s.From, to, subject, body)
	auth := smtp.PlainAuth("", s.Username, s.Password, s.Host)
	addr := s.Host + ":" + s.Port
	return smtp.SendMail(addr, auth, s.From, []string{to}, []byte(msg))
}

// LogSender 只把郵件內容寫到日誌，開發環境未設定 SMTP 時使用
type LogSender struct{}

// Send 記錄郵件內容
func (s *LogSender) Send(to, subject, body string) error {
	log.Printf("Email to %s | %s\n%s", to, subject, body)
	return nil
}

// NewSender 依設定選擇寄信方式：沒有 SMTP 主機時退回日誌輸出
func NewSender(host, port, username, password, from string) Sender {
	if host == "" {
		log.Println("SMTP_HOST not set, emails will be logged instead of sent.")
		return &LogSender{}
	}
	return &SMTPSender{Host: host, Port: port, Username: username, Password: password, From: from}
}
