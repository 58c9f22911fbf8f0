package booking

import (
	"context"
	"time"

	"github.com/eleqt/eleqt-rides/internal/domain"
	"github.com/eleqt/eleqt-rides/internal/platform/auth"
	"github.com/eleqt/eleqt-rides/internal/platform/mailer"
	"github.com/eleqt/eleqt-rides/internal/platform/payment"
	"github.com/eleqt/eleqt-rides/internal/pricing"
	"github.com/eleqt/eleqt-rides/internal/repo/postgres"
	"github.com/eleqt/eleqt-rides/pkg/events"
	"github.com/eleqt/eleqt-rides/pkg/logger"
)

const currency = "INR"

// Config carries the service-level knobs the lifecycle needs.
type Config struct {
	LuxuryFarePaise int64
	JWTSecret       []byte
	PaymentTokenTTL time.Duration
}

// Service orchestrates the booking lifecycle: validate, classify, price,
// persist, claim a vehicle, open a payment order, and verify or cancel.
type Service struct {
	bookings postgres.BookingRepo
	vehicles postgres.VehicleRepo
	users    postgres.UsersRepo
	idem     postgres.IdempotencyRepo
	gateway  payment.Gateway
	mail     mailer.Service
	bus      events.Publisher
	cfg      Config

	now func() time.Time
}

func NewService(
	bookings postgres.BookingRepo,
	vehicles postgres.VehicleRepo,
	users postgres.UsersRepo,
	idem postgres.IdempotencyRepo,
	gateway payment.Gateway,
	mail mailer.Service,
	bus events.Publisher,
	cfg Config,
) *Service {
	return &Service{
		bookings: bookings,
		vehicles: vehicles,
		users:    users,
		idem:     idem,
		gateway:  gateway,
		mail:     mail,
		bus:      bus,
		cfg:      cfg,
		now:      time.Now,
	}
}

// Quote is a priced, unclaimed booking preview.
type Quote struct {
	CarType   domain.VehicleClass `json:"car_type"`
	FarePaise int64               `json:"fare_paise"`
	Currency  string              `json:"currency"`
}

// CheckoutSession is what the client needs to launch gateway checkout.
type CheckoutSession struct {
	Booking  *domain.Booking `json:"booking"`
	OrderID  string          `json:"order_id"`
	Amount   int64           `json:"amount"`
	Currency string          `json:"currency"`
}

func (s *Service) QuoteHourly(ctx context.Context, req HourlyRequest) (*Quote, error) {
	v, err := validateCommon(req.BaseRequest, domain.RideHourly, s.now())
	if err != nil {
		return nil, err
	}
	fare, err := pricing.HourlyFare(req.DurationHrs, v.Class, v.AddOns)
	if err != nil {
		return nil, err
	}
	return &Quote{CarType: v.Class, FarePaise: fare, Currency: currency}, nil
}

func (s *Service) QuoteOutstation(ctx context.Context, req OutstationRequest) (*Quote, error) {
	v, err := validateCommon(req.BaseRequest, domain.RideOutstation, s.now())
	if err != nil {
		return nil, err
	}
	details, err := validateOutstation(req, v)
	if err != nil {
		return nil, err
	}
	fare, err := pricing.OutstationFare(details.TotalDistanceKm, v.Class, details.IsRoundTrip, v.StartTime, details.ReturnTime, v.AddOns)
	if err != nil {
		return nil, err
	}
	return &Quote{CarType: v.Class, FarePaise: fare, Currency: currency}, nil
}

func (s *Service) CreateHourly(ctx context.Context, userID int64, req HourlyRequest, idemKey string) (*CheckoutSession, error) {
	v, err := validateCommon(req.BaseRequest, domain.RideHourly, s.now())
	if err != nil {
		return nil, err
	}
	fare, err := pricing.HourlyFare(req.DurationHrs, v.Class, v.AddOns)
	if err != nil {
		return nil, err
	}

	if session, ok, err := s.replayIdempotent(ctx, idemKey); err != nil {
		return nil, err
	} else if ok {
		return session, nil
	}

	b := s.newBooking(userID, domain.RideHourly, req.BaseRequest, v, fare)
	b.Hourly = &domain.HourlyDetails{DurationHrs: req.DurationHrs}

	// Hourly rentals are dispatched from the shared fleet, no exclusive claim.
	return s.checkout(ctx, b, nil, idemKey)
}

func (s *Service) CreateOutstation(ctx context.Context, userID int64, req OutstationRequest, idemKey string) (*CheckoutSession, error) {
	v, err := validateCommon(req.BaseRequest, domain.RideOutstation, s.now())
	if err != nil {
		return nil, err
	}
	details, err := validateOutstation(req, v)
	if err != nil {
		return nil, err
	}
	fare, err := pricing.OutstationFare(details.TotalDistanceKm, v.Class, details.IsRoundTrip, v.StartTime, details.ReturnTime, v.AddOns)
	if err != nil {
		return nil, err
	}

	if session, ok, err := s.replayIdempotent(ctx, idemKey); err != nil {
		return nil, err
	} else if ok {
		return session, nil
	}

	car, err := s.vehicles.ClaimAvailable(ctx, v.Class)
	if err != nil {
		return nil, err
	}

	b := s.newBooking(userID, domain.RideOutstation, req.BaseRequest, v, fare)
	b.Outstation = details
	b.VehicleID = &car.ID

	return s.checkout(ctx, b, car, idemKey)
}

// CreateLuxury books a flat-fare luxury ride. Like outstation, it holds one
// car exclusively from creation until trip end.
func (s *Service) CreateLuxury(ctx context.Context, userID int64, req LuxuryRequest, idemKey string) (*CheckoutSession, error) {
	v, err := validateCommon(req.BaseRequest, domain.RideLuxury, s.now())
	if err != nil {
		return nil, err
	}

	if session, ok, err := s.replayIdempotent(ctx, idemKey); err != nil {
		return nil, err
	} else if ok {
		return session, nil
	}

	car, err := s.vehicles.ClaimAvailable(ctx, v.Class)
	if err != nil {
		return nil, err
	}

	fare := s.cfg.LuxuryFarePaise + pricing.ToPaise(pricing.AddOnTotal(v.AddOns))
	b := s.newBooking(userID, domain.RideLuxury, req.BaseRequest, v, fare)
	b.VehicleID = &car.ID

	return s.checkout(ctx, b, car, idemKey)
}

func (s *Service) newBooking(userID int64, rideType domain.RideType, req BaseRequest, v Validated, fare int64) *domain.Booking {
	return &domain.Booking{
		UserID:     userID,
		RideType:   rideType,
		CarType:    v.Class,
		Passengers: v.Passengers,
		Luggage:    v.Luggage,
		PickUp:     req.PickUp,
		DropOff:    req.DropOff,
		Stops:      req.Stops,
		AddOns:     v.AddOns,
		StartTime:  v.StartTime,
		Status:     domain.BookingPending,
		Payment: domain.Payment{
			Method: domain.PaymentMethodGateway,
			Amount: fare,
			Status: domain.PaymentPending,
		},
	}
}

// replayIdempotent returns the session for a booking previously created
// under the same Idempotency-Key, if one exists.
func (s *Service) replayIdempotent(ctx context.Context, idemKey string) (*CheckoutSession, bool, error) {
	if idemKey == "" {
		return nil, false, nil
	}
	existingID, err := s.idem.CheckOrCreate(ctx, idemKey, 0)
	if err != nil || existingID == 0 {
		return nil, false, err
	}
	b, err := s.bookings.GetByID(ctx, existingID)
	if err != nil {
		return nil, false, err
	}
	logger.InfoContext(ctx, "replaying idempotent booking", "booking_id", b.ID)
	return &CheckoutSession{
		Booking:  b,
		OrderID:  b.Payment.OrderID,
		Amount:   b.Payment.Amount,
		Currency: currency,
	}, true, nil
}

// checkout persists the pending booking and opens the payment order. Any
// failure past the vehicle claim compensates explicitly: the claim and the
// booking row are separate writes, so rollback is ours to do.
func (s *Service) checkout(ctx context.Context, b *domain.Booking, car *domain.LuxuryCar, idemKey string) (*CheckoutSession, error) {
	created, err := s.bookings.Create(ctx, b)
	if err != nil {
		s.releaseClaim(ctx, car)
		return nil, err
	}

	s.publish(ctx, events.BookingCreated, events.BookingCreatedEvent{
		BookingID:  created.ID,
		UserID:     created.UserID,
		RideType:   string(created.RideType),
		CarType:    string(created.CarType),
		FarePaise:  created.Payment.Amount,
		StartTime:  created.StartTime,
		Passengers: created.Passengers,
		CreatedAt:  created.CreatedAt,
	})

	order, err := s.gateway.CreateOrder(ctx, payment.CreateOrderParams{
		Amount:    created.Payment.Amount,
		Currency:  currency,
		UserID:    created.UserID,
		BookingID: created.ID,
	})
	if err != nil {
		// Compensating rollback: the client must never see a half-created
		// booking with a fare attached.
		if delErr := s.bookings.Delete(ctx, created.ID); delErr != nil {
			logger.ErrorContext(ctx, "rollback failed to delete booking", "booking_id", created.ID, "error", delErr)
		}
		s.releaseClaim(ctx, car)
		s.publish(ctx, events.PaymentFailed, events.PaymentFailedEvent{
			BookingID: created.ID,
			UserID:    created.UserID,
			Reason:    err.Error(),
		})
		return nil, err
	}

	if err := s.bookings.SetOrder(ctx, created.ID, order.ID, order.Receipt, order.Amount); err != nil {
		if delErr := s.bookings.Delete(ctx, created.ID); delErr != nil {
			logger.ErrorContext(ctx, "rollback failed to delete booking", "booking_id", created.ID, "error", delErr)
		}
		s.releaseClaim(ctx, car)
		return nil, err
	}
	created.Payment.OrderID = order.ID
	created.Payment.Receipt = order.Receipt
	created.Payment.Amount = order.Amount

	if car != nil {
		releaseAt := created.TripEnd()
		if err := s.vehicles.ScheduleRelease(ctx, car.ID, releaseAt); err != nil {
			// Best effort: a missed deadline only delays the car's return.
			logger.ErrorContext(ctx, "failed to schedule vehicle release", "vehicle_id", car.ID, "error", err)
		}
		s.publish(ctx, events.VehicleClaimed, events.VehicleClaimedEvent{
			VehicleID: car.ID,
			BookingID: created.ID,
			CarNumber: car.CarNumber,
			ReleaseAt: releaseAt,
		})
	}

	if idemKey != "" {
		if _, err := s.idem.CheckOrCreate(ctx, idemKey, created.ID); err != nil {
			logger.WarnContext(ctx, "failed to record idempotency key", "booking_id", created.ID, "error", err)
		}
	}

	s.publish(ctx, events.PaymentOrderCreated, events.PaymentOrderCreatedEvent{
		BookingID:   created.ID,
		OrderID:     order.ID,
		AmountPaise: order.Amount,
		Currency:    currency,
		Receipt:     order.Receipt,
	})

	return &CheckoutSession{
		Booking:  created,
		OrderID:  order.ID,
		Amount:   order.Amount,
		Currency: currency,
	}, nil
}

func (s *Service) releaseClaim(ctx context.Context, car *domain.LuxuryCar) {
	if car == nil {
		return
	}
	if err := s.vehicles.Release(ctx, car.ID); err != nil {
		logger.ErrorContext(ctx, "failed to release claimed vehicle", "vehicle_id", car.ID, "error", err)
	}
}

// VerifyPayment settles a gateway checkout. The checks run in a fixed order
// and the operation is idempotent: replaying a settled payment lands on
// ErrAlreadyProcessed, never a double charge.
func (s *Service) VerifyPayment(ctx context.Context, bookingID, userID int64, orderID, paymentID, signature string) (string, *domain.Booking, error) {
	if !s.gateway.VerifySignature(orderID, paymentID, signature) {
		return "", nil, domain.ErrInvalidSignature
	}

	exists, err := s.bookings.PaymentIDUsedElsewhere(ctx, paymentID, bookingID)
	if err != nil {
		return "", nil, err
	}
	if exists {
		return "", nil, domain.ErrDuplicatePayment
	}

	b, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return "", nil, err
	}
	if b.Payment.OrderID != orderID {
		return "", nil, domain.ErrOrderMismatch
	}
	if !b.IsUserOwner(userID) {
		return "", nil, domain.ErrForbidden
	}
	if b.Payment.Status != domain.PaymentPending {
		return "", nil, domain.ErrAlreadyProcessed
	}

	if err := s.bookings.MarkPaid(ctx, b.ID, paymentID, signature); err != nil {
		return "", nil, err
	}
	b.Payment.Status = domain.PaymentPaid
	b.Payment.PaymentID = paymentID
	b.Payment.Signature = signature
	b.Status = domain.BookingConfirmed

	s.publish(ctx, events.PaymentVerified, events.BookingConfirmedEvent{
		BookingID:   b.ID,
		UserID:      b.UserID,
		OrderID:     orderID,
		PaymentID:   paymentID,
		AmountPaise: b.Payment.Amount,
		ConfirmedAt: s.now(),
	})
	s.publish(ctx, events.BookingConfirmed, events.BookingConfirmedEvent{
		BookingID:   b.ID,
		UserID:      b.UserID,
		OrderID:     orderID,
		PaymentID:   paymentID,
		AmountPaise: b.Payment.Amount,
		ConfirmedAt: s.now(),
	})
	s.notifyConfirmed(ctx, b)

	token, err := auth.NewPaymentToken(s.cfg.JWTSecret, userID, orderID, paymentID, s.cfg.PaymentTokenTTL)
	if err != nil {
		logger.ErrorContext(ctx, "failed to sign payment token", "booking_id", b.ID, "error", err)
		return "", b, nil
	}
	return token, b, nil
}

// CancelWindow is how close to the start a ride can no longer be cancelled.
const CancelWindow = 2 * time.Hour

func (s *Service) Cancel(ctx context.Context, bookingID, userID int64) (*domain.Booking, error) {
	b, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !b.IsUserOwner(userID) {
		return nil, domain.ErrForbidden
	}

	switch b.Status {
	case domain.BookingCancelled, domain.BookingCompleted, domain.BookingOngoing:
		return nil, domain.ErrCannotCancel
	}
	if b.Payment.Status != domain.PaymentPending && b.Payment.Status != domain.PaymentFailed {
		return nil, domain.ErrCannotCancel
	}

	// The no-cancel window only applies to upcoming rides; a start time
	// already in the past does not block cancellation.
	untilStart := b.StartTime.Sub(s.now())
	if untilStart > 0 && untilStart <= CancelWindow {
		return nil, domain.ErrCannotCancel
	}

	if err := s.bookings.Cancel(ctx, b.ID); err != nil {
		return nil, err
	}
	b.Status = domain.BookingCancelled

	if b.VehicleID != nil {
		s.releaseClaim(ctx, &domain.LuxuryCar{ID: *b.VehicleID})
	}

	s.publish(ctx, events.BookingCancelled, events.BookingCancelledEvent{
		BookingID:   b.ID,
		UserID:      b.UserID,
		Reason:      "cancelled by rider",
		CancelledAt: s.now(),
	})
	s.notifyCancelled(ctx, b)

	return b, nil
}

func (s *Service) Get(ctx context.Context, bookingID, userID int64) (*domain.Booking, error) {
	b, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !b.IsUserOwner(userID) {
		return nil, domain.ErrForbidden
	}
	return b, nil
}

// List returns the caller's bookings split into upcoming-or-running and
// finished. The filter narrows by status and ride type and pages the result
// before the split.
func (s *Service) List(ctx context.Context, userID int64, f postgres.BookingFilter) (active, past []domain.Booking, err error) {
	all, err := s.bookings.ListByUser(ctx, userID, f)
	if err != nil {
		return nil, nil, err
	}
	now := s.now()
	active = make([]domain.Booking, 0, len(all))
	past = make([]domain.Booking, 0, len(all))
	for _, b := range all {
		if b.IsActive(now) {
			active = append(active, b)
		} else {
			past = append(past, b)
		}
	}
	return active, past, nil
}

func (s *Service) publish(ctx context.Context, subject string, payload any) {
	if s.bus == nil {
		return
	}
	if err := s.bus.Publish(ctx, subject, payload); err != nil {
		logger.WarnContext(ctx, "failed to publish event", "subject", subject, "error", err)
	}
}

// Notifications are fire-and-forget: a mail failure is logged and never
// blocks the booking flow.
func (s *Service) notifyConfirmed(ctx context.Context, b *domain.Booking) {
	if s.mail == nil || s.users == nil {
		return
	}
	u, err := s.users.FindByID(ctx, b.UserID)
	if err != nil || u == nil {
		logger.WarnContext(ctx, "could not load user for confirmation email", "user_id", b.UserID, "error", err)
		return
	}
	booking := *b
	go func() {
		if err := s.mail.SendBookingConfirmed(u.Email, u.Name, &booking); err != nil {
			logger.Warn("failed to send confirmation email", "booking_id", booking.ID, "error", err)
		}
	}()
}

func (s *Service) notifyCancelled(ctx context.Context, b *domain.Booking) {
	if s.mail == nil || s.users == nil {
		return
	}
	u, err := s.users.FindByID(ctx, b.UserID)
	if err != nil || u == nil {
		logger.WarnContext(ctx, "could not load user for cancellation email", "user_id", b.UserID, "error", err)
		return
	}
	booking := *b
	go func() {
		if err := s.mail.SendBookingCancelled(u.Email, u.Name, &booking); err != nil {
			logger.Warn("failed to send cancellation email", "booking_id", booking.ID, "error", err)
		}
	}()
}
