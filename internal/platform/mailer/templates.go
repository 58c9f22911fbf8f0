package mailer

import (
	"fmt"
	"strings"

	"github.com/eleqt/eleqt-rides/internal/domain"
)

const timeLayout = "Mon, 02 Jan 2006 15:04 MST"

func confirmedSubject(b *domain.Booking) string {
	return fmt.Sprintf("Your Eleqt ride #%d is confirmed", b.ID)
}

func confirmedText(toName string, b *domain.Booking) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Hi %s,\n\n", toName)
	fmt.Fprintf(&sb, "Your %s ride is confirmed.\n\n", b.RideType)
	fmt.Fprintf(&sb, "Pickup: %s\n", b.PickUp.Address)
	fmt.Fprintf(&sb, "Drop-off: %s\n", b.DropOff.Address)
	fmt.Fprintf(&sb, "Start: %s\n", b.StartTime.Format(timeLayout))
	fmt.Fprintf(&sb, "Amount paid: Rs. %.2f\n", float64(b.Payment.Amount)/100)
	if b.CarNumber != "" {
		fmt.Fprintf(&sb, "\nVehicle: %s (%s)\n", b.CarModel, b.CarNumber)
		fmt.Fprintf(&sb, "Driver: %s, %s\n", b.DriverName, b.DriverPhone)
	}
	sb.WriteString("\nThank you for riding with Eleqt.\n")
	return sb.String()
}

func confirmedHTML(toName string, b *domain.Booking) string {
	vehicle := ""
	if b.CarNumber != "" {
		vehicle = fmt.Sprintf(
			"<p>Vehicle: <strong>%s (%s)</strong><br>Driver: %s, %s</p>",
			b.CarModel, b.CarNumber, b.DriverName, b.DriverPhone)
	}
	return fmt.Sprintf(`
		<h2>Your ride is confirmed</h2>
		<p>Hi %s,</p>
		<p>Your %s ride <strong>#%d</strong> is booked and paid.</p>
		<p>Pickup: %s<br>Drop-off: %s<br>Start: %s</p>
		<p>Amount paid: <strong>Rs. %.2f</strong></p>
		%s
		<p>Thank you for riding with Eleqt.</p>
	`, toName, b.RideType, b.ID, b.PickUp.Address, b.DropOff.Address,
		b.StartTime.Format(timeLayout), float64(b.Payment.Amount)/100, vehicle)
}

func cancelledSubject(b *domain.Booking) string {
	return fmt.Sprintf("Your Eleqt ride #%d has been cancelled", b.ID)
}

func cancelledText(toName string, b *domain.Booking) string {
	return fmt.Sprintf(
		"Hi %s,\n\nYour %s ride #%d scheduled for %s has been cancelled.\n\nIf a payment went through, the refund will follow as per policy.\n",
		toName, b.RideType, b.ID, b.StartTime.Format(timeLayout))
}

func cancelledHTML(toName string, b *domain.Booking) string {
	return fmt.Sprintf(`
		<h2>Ride cancelled</h2>
		<p>Hi %s,</p>
		<p>Your %s ride <strong>#%d</strong> scheduled for %s has been cancelled.</p>
		<p>If a payment went through, the refund will follow as per policy.</p>
	`, toName, b.RideType, b.ID, b.StartTime.Format(timeLayout))
}
