package mailer

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mailersend/mailersend-go"

	"github.com/eleqt/eleqt-rides/internal/domain"
)

type MailerSendClient struct {
	client  *mailersend.Mailersend
	from    mailersend.From
	enabled bool
}

func NewMailerSend(apiKey, fromName, fromEmail string) *MailerSendClient {
	m := &MailerSendClient{
		enabled: apiKey != "" && fromEmail != "",
		from: mailersend.From{
			Name:  fromName,
			Email: fromEmail,
		},
	}
	if m.enabled {
		m.client = mailersend.NewMailersend(apiKey)
	}
	return m
}

func (m *MailerSendClient) SendBookingConfirmed(toEmail, toName string, b *domain.Booking) error {
	if !m.enabled {
		return fmt.Errorf("MailerSend not configured")
	}
	return m.sendEmail(toEmail, toName, confirmedSubject(b), confirmedText(toName, b), confirmedHTML(toName, b))
}

func (m *MailerSendClient) SendBookingCancelled(toEmail, toName string, b *domain.Booking) error {
	if !m.enabled {
		return fmt.Errorf("MailerSend not configured")
	}
	return m.sendEmail(toEmail, toName, cancelledSubject(b), cancelledText(toName, b), cancelledHTML(toName, b))
}

func (m *MailerSendClient) sendEmail(toEmail, toName, subject, text, html string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	msg := m.client.Email.NewMessage()
	msg.SetFrom(m.from)
	msg.SetRecipients([]mailersend.Recipient{{Name: toName, Email: toEmail}})
	msg.SetSubject(subject)

	if strings.TrimSpace(text) != "" {
		msg.SetText(text)
	}
	if strings.TrimSpace(html) != "" {
		msg.SetHTML(html)
	}

	_, err := m.client.Email.Send(ctx, msg)
	return err
}
