package utils

import (
	"CloudVault/config"
	"crypto/tls"
	"errors"
	"net/smtp"
	"strconv"

	"github.com/jordan-wright/email"
)

var ErrSMTPConfigMissing = errors.New("smtp config missing")

// SendMail sends an HTML mail using the SMTP_* settings.
func SendMail(to, subject, html string) error {
	cfg := config.AppConfig
	if cfg.SMTPHost == "" || cfg.SMTPUser == "" || cfg.SMTPPass == "" || cfg.SMTPFrom == "" {
		return ErrSMTPConfigMissing
	}

	e := email.NewEmail()
	e.From = cfg.SMTPFrom
	e.To = []string{to}
	e.Subject = subject
	e.HTML = []byte(html)

	port := strconv.Itoa(cfg.SMTPPort)
	addr := cfg.SMTPHost + ":" + port
	auth := smtp.PlainAuth("", cfg.SMTPUser, cfg.SMTPPass, cfg.SMTPHost)
	tlsConfig := &tls.Config{ServerName: cfg.SMTPHost}

	if cfg.SMTPTLS || port == "465" {
		return e.SendWithTLS(addr, auth, tlsConfig)
	}
	if cfg.SMTPStartTLS {
		return e.SendWithStartTLS(addr, auth, tlsConfig)
	}
	return e.Send(addr, auth)
}
