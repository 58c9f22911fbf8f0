package mailer

import (
	"github.com/eleqt/eleqt-rides/internal/domain"
	"github.com/eleqt/eleqt-rides/pkg/logger"
)

// DevMailer logs notifications instead of sending them.
type DevMailer struct{}

func NewDevMailer() *DevMailer {
	return &DevMailer{}
}

func (d *DevMailer) SendBookingConfirmed(toEmail, toName string, b *domain.Booking) error {
	logger.Info("[DEV MAIL] booking confirmed",
		"to", toEmail,
		"name", toName,
		"booking_id", b.ID,
		"ride_type", b.RideType,
		"start_time", b.StartTime,
		"amount_paise", b.Payment.Amount,
	)
	return nil
}

func (d *DevMailer) SendBookingCancelled(toEmail, toName string, b *domain.Booking) error {
	logger.Info("[DEV MAIL] booking cancelled",
		"to", toEmail,
		"name", toName,
		"booking_id", b.ID,
		"ride_type", b.RideType,
		"start_time", b.StartTime,
	)
	return nil
}
