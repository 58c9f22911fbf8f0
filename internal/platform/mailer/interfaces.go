package mailer

import (
	"github.com/eleqt/eleqt-rides/internal/domain"
	"github.com/eleqt/eleqt-rides/pkg/config"
)

// Service sends rider-facing booking notifications.
type Service interface {
	SendBookingConfirmed(toEmail, toName string, b *domain.Booking) error
	SendBookingCancelled(toEmail, toName string, b *domain.Booking) error
}

// New picks the mailer for the current environment: dev mode logs instead of
// sending, a MailerSend key selects the API client, otherwise plain SMTP.
func New(cfg config.EmailConfig) Service {
	if cfg.DevMode {
		return NewDevMailer()
	}
	if cfg.MailerSendKey != "" {
		return NewMailerSend(cfg.MailerSendKey, cfg.FromName, cfg.SMTPFrom)
	}
	return NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPFrom, cfg.SMTPUser, cfg.SMTPPass, cfg.SMTPUseTLS)
}
