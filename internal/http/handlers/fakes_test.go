package handlers

import (
	"context"
	"fmt"
	"time"

	"github.com/eleqt/eleqt-rides/internal/domain"
	"github.com/eleqt/eleqt-rides/internal/platform/payment"
	"github.com/eleqt/eleqt-rides/internal/repo/postgres"
)

type fakeUsersRepo struct {
	nextID int64
	users  map[string]*postgres.User
}

func newFakeUsersRepo() *fakeUsersRepo {
	return &fakeUsersRepo{nextID: 1, users: map[string]*postgres.User{}}
}

func (r *fakeUsersRepo) Create(ctx context.Context, email, hash, name, phone string) (*postgres.User, error) {
	u := &postgres.User{ID: r.nextID, Role: "user", Email: email, PasswordHash: hash, Name: name, Phone: phone}
	r.nextID++
	r.users[email] = u
	return u, nil
}

func (r *fakeUsersRepo) FindByEmail(ctx context.Context, email string) (*postgres.User, error) {
	return r.users[email], nil
}

func (r *fakeUsersRepo) FindByID(ctx context.Context, id int64) (*postgres.User, error) {
	for _, u := range r.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, nil
}

var _ postgres.UsersRepo = (*fakeUsersRepo)(nil)

type fakeVehicleRepo struct {
	nextID int64
	cars   map[int64]*domain.LuxuryCar
}

func newFakeVehicleRepo() *fakeVehicleRepo {
	return &fakeVehicleRepo{nextID: 1, cars: map[int64]*domain.LuxuryCar{}}
}

func (r *fakeVehicleRepo) Create(ctx context.Context, car *domain.LuxuryCar) (*domain.LuxuryCar, error) {
	cp := *car
	cp.ID = r.nextID
	r.nextID++
	cp.IsAvailable = true
	r.cars[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (r *fakeVehicleRepo) GetByID(ctx context.Context, id int64) (*domain.LuxuryCar, error) {
	c, ok := r.cars[id]
	if !ok {
		return nil, domain.ErrVehicleNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *fakeVehicleRepo) List(ctx context.Context) ([]domain.LuxuryCar, error) {
	var out []domain.LuxuryCar
	for _, c := range r.cars {
		out = append(out, *c)
	}
	return out, nil
}

func (r *fakeVehicleRepo) Update(ctx context.Context, car *domain.LuxuryCar) (*domain.LuxuryCar, error) {
	if _, ok := r.cars[car.ID]; !ok {
		return nil, domain.ErrVehicleNotFound
	}
	cp := *car
	r.cars[car.ID] = &cp
	return car, nil
}

func (r *fakeVehicleRepo) Delete(ctx context.Context, id int64) error {
	if _, ok := r.cars[id]; !ok {
		return domain.ErrVehicleNotFound
	}
	delete(r.cars, id)
	return nil
}

func (r *fakeVehicleRepo) ClaimAvailable(ctx context.Context, class domain.VehicleClass) (*domain.LuxuryCar, error) {
	for _, c := range r.cars {
		if c.Class == class && c.IsAvailable {
			c.IsAvailable = false
			cp := *c
			return &cp, nil
		}
	}
	return nil, domain.ErrNoAvailableVehicle
}

func (r *fakeVehicleRepo) Release(ctx context.Context, id int64) error {
	if c, ok := r.cars[id]; ok {
		c.IsAvailable = true
	}
	return nil
}

func (r *fakeVehicleRepo) ScheduleRelease(ctx context.Context, vehicleID int64, releaseAt time.Time) error {
	return nil
}

func (r *fakeVehicleRepo) TakeDueReleases(ctx context.Context, now time.Time, limit int) ([]domain.ScheduledRelease, error) {
	return nil, nil
}

var _ postgres.VehicleRepo = (*fakeVehicleRepo)(nil)

type fakeBookingRepo struct {
	nextID   int64
	bookings map[int64]*domain.Booking
}

func newFakeBookingRepo() *fakeBookingRepo {
	return &fakeBookingRepo{nextID: 1, bookings: map[int64]*domain.Booking{}}
}

func (r *fakeBookingRepo) Create(ctx context.Context, b *domain.Booking) (*domain.Booking, error) {
	cp := *b
	cp.ID = r.nextID
	r.nextID++
	cp.CreatedAt = time.Now()
	r.bookings[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (r *fakeBookingRepo) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	b, ok := r.bookings[id]
	if !ok {
		return nil, domain.ErrBookingNotFound
	}
	cp := *b
	return &cp, nil
}

func (r *fakeBookingRepo) PaymentIDUsedElsewhere(ctx context.Context, paymentID string, excludeID int64) (bool, error) {
	for _, b := range r.bookings {
		if b.Payment.PaymentID == paymentID && b.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeBookingRepo) SetOrder(ctx context.Context, id int64, orderID, receipt string, amount int64) error {
	b, ok := r.bookings[id]
	if !ok {
		return domain.ErrBookingNotFound
	}
	b.Payment.OrderID = orderID
	b.Payment.Receipt = receipt
	b.Payment.Amount = amount
	return nil
}

func (r *fakeBookingRepo) MarkPaid(ctx context.Context, id int64, paymentID, signature string) error {
	b, ok := r.bookings[id]
	if !ok {
		return domain.ErrBookingNotFound
	}
	if b.Payment.Status != domain.PaymentPending {
		return domain.ErrAlreadyProcessed
	}
	b.Payment.Status = domain.PaymentPaid
	b.Payment.PaymentID = paymentID
	b.Status = domain.BookingConfirmed
	return nil
}

func (r *fakeBookingRepo) Cancel(ctx context.Context, id int64) error {
	b, ok := r.bookings[id]
	if !ok {
		return domain.ErrCannotCancel
	}
	b.Status = domain.BookingCancelled
	return nil
}

func (r *fakeBookingRepo) Delete(ctx context.Context, id int64) error {
	delete(r.bookings, id)
	return nil
}

func (r *fakeBookingRepo) ListByUser(ctx context.Context, userID int64, f postgres.BookingFilter) ([]domain.Booking, error) {
	var out []domain.Booking
	for _, b := range r.bookings {
		if b.UserID != userID {
			continue
		}
		if f.Status != "" && string(b.Status) != f.Status {
			continue
		}
		if f.RideType != "" && string(b.RideType) != f.RideType {
			continue
		}
		out = append(out, *b)
	}
	return out, nil
}

var _ postgres.BookingRepo = (*fakeBookingRepo)(nil)

type fakeIdemRepo struct{ keys map[string]int64 }

func newFakeIdemRepo() *fakeIdemRepo { return &fakeIdemRepo{keys: map[string]int64{}} }

func (r *fakeIdemRepo) CheckOrCreate(ctx context.Context, key string, bookingID int64) (int64, error) {
	if existing, ok := r.keys[key]; ok {
		return existing, nil
	}
	if bookingID > 0 {
		r.keys[key] = bookingID
	}
	return 0, nil
}

func (r *fakeIdemRepo) CleanupExpired(ctx context.Context) (int64, error) { return 0, nil }

var _ postgres.IdempotencyRepo = (*fakeIdemRepo)(nil)

func testSignature(orderID, paymentID string) string {
	return fmt.Sprintf("sig(%s|%s)", orderID, paymentID)
}

type fakeGateway struct{ orders int }

func (g *fakeGateway) CreateOrder(ctx context.Context, p payment.CreateOrderParams) (*payment.Order, error) {
	g.orders++
	return &payment.Order{
		ID:       fmt.Sprintf("order_%d", g.orders),
		Amount:   p.Amount,
		Currency: p.Currency,
		Receipt:  fmt.Sprintf("rcpt_%d", g.orders),
		Status:   "created",
	}, nil
}

func (g *fakeGateway) VerifySignature(orderID, paymentID, signature string) bool {
	return signature == testSignature(orderID, paymentID)
}

var _ payment.Gateway = (*fakeGateway)(nil)
