package booking

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/eleqt/eleqt-rides/internal/domain"
	"github.com/eleqt/eleqt-rides/internal/platform/payment"
	"github.com/eleqt/eleqt-rides/internal/repo/postgres"
)

type fakeBookingRepo struct {
	nextID    int64
	bookings  map[int64]*domain.Booking
	createErr error
	orderErr  error
	deleted   []int64
}

func newFakeBookingRepo() *fakeBookingRepo {
	return &fakeBookingRepo{nextID: 1, bookings: map[int64]*domain.Booking{}}
}

func (r *fakeBookingRepo) Create(ctx context.Context, b *domain.Booking) (*domain.Booking, error) {
	if r.createErr != nil {
		return nil, r.createErr
	}
	cp := *b
	cp.ID = r.nextID
	r.nextID++
	cp.CreatedAt = time.Now()
	cp.UpdatedAt = cp.CreatedAt
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
	if r.orderErr != nil {
		return r.orderErr
	}
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
	b.Payment.Signature = signature
	b.Status = domain.BookingConfirmed
	return nil
}

func (r *fakeBookingRepo) Cancel(ctx context.Context, id int64) error {
	b, ok := r.bookings[id]
	if !ok {
		return domain.ErrCannotCancel
	}
	switch b.Status {
	case domain.BookingCancelled, domain.BookingCompleted, domain.BookingOngoing:
		return domain.ErrCannotCancel
	}
	b.Status = domain.BookingCancelled
	return nil
}

func (r *fakeBookingRepo) Delete(ctx context.Context, id int64) error {
	delete(r.bookings, id)
	r.deleted = append(r.deleted, id)
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

type fakeVehicleRepo struct {
	cars     map[int64]*domain.LuxuryCar
	releases []domain.ScheduledRelease
	relID    int64
	claimErr error
}

func newFakeVehicleRepo(cars ...*domain.LuxuryCar) *fakeVehicleRepo {
	r := &fakeVehicleRepo{cars: map[int64]*domain.LuxuryCar{}}
	for _, c := range cars {
		r.cars[c.ID] = c
	}
	return r
}

func (r *fakeVehicleRepo) Create(ctx context.Context, car *domain.LuxuryCar) (*domain.LuxuryCar, error) {
	cp := *car
	cp.ID = int64(len(r.cars) + 1)
	cp.IsAvailable = true
	r.cars[cp.ID] = &cp
	return &cp, nil
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
	if r.claimErr != nil {
		return nil, r.claimErr
	}
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
	r.relID++
	r.releases = append(r.releases, domain.ScheduledRelease{ID: r.relID, VehicleID: vehicleID, ReleaseAt: releaseAt})
	return nil
}

func (r *fakeVehicleRepo) TakeDueReleases(ctx context.Context, now time.Time, limit int) ([]domain.ScheduledRelease, error) {
	var due, rest []domain.ScheduledRelease
	for _, rel := range r.releases {
		if !rel.ReleaseAt.After(now) && len(due) < limit {
			due = append(due, rel)
		} else {
			rest = append(rest, rel)
		}
	}
	r.releases = rest
	return due, nil
}

var _ postgres.VehicleRepo = (*fakeVehicleRepo)(nil)

type fakeUsersRepo struct {
	users map[int64]*postgres.User
}

func newFakeUsersRepo(users ...*postgres.User) *fakeUsersRepo {
	r := &fakeUsersRepo{users: map[int64]*postgres.User{}}
	for _, u := range users {
		r.users[u.ID] = u
	}
	return r
}

func (r *fakeUsersRepo) Create(ctx context.Context, email, hash, name, phone string) (*postgres.User, error) {
	u := &postgres.User{ID: int64(len(r.users) + 1), Role: "user", Email: email, PasswordHash: hash, Name: name, Phone: phone}
	r.users[u.ID] = u
	return u, nil
}

func (r *fakeUsersRepo) FindByEmail(ctx context.Context, email string) (*postgres.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, nil
}

func (r *fakeUsersRepo) FindByID(ctx context.Context, id int64) (*postgres.User, error) {
	return r.users[id], nil
}

var _ postgres.UsersRepo = (*fakeUsersRepo)(nil)

type fakeIdemRepo struct {
	keys map[string]int64
}

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

type fakeGateway struct {
	failCreate bool
	orders     int
}

func (g *fakeGateway) CreateOrder(ctx context.Context, p payment.CreateOrderParams) (*payment.Order, error) {
	if g.failCreate {
		return nil, &domain.GatewayError{Op: "create order", Err: fmt.Errorf("gateway down")}
	}
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

type fakeMailer struct {
	mu        sync.Mutex
	confirmed []int64
	cancelled []int64
}

func (m *fakeMailer) SendBookingConfirmed(toEmail, toName string, b *domain.Booking) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.confirmed = append(m.confirmed, b.ID)
	return nil
}

func (m *fakeMailer) SendBookingCancelled(toEmail, toName string, b *domain.Booking) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cancelled = append(m.cancelled, b.ID)
	return nil
}

func (m *fakeMailer) confirmedCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.confirmed)
}

type fakeBus struct {
	subjects []string
}

func (b *fakeBus) Publish(ctx context.Context, subject string, data interface{}) error {
	b.subjects = append(b.subjects, subject)
	return nil
}

func (b *fakeBus) Close() error { return nil }
