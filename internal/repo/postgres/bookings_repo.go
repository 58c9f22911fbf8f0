package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/eleqt/eleqt-rides/internal/domain"
)

type BookingRepo interface {
	Create(ctx context.Context, b *domain.Booking) (*domain.Booking, error)
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	PaymentIDUsedElsewhere(ctx context.Context, paymentID string, excludeID int64) (bool, error)
	SetOrder(ctx context.Context, id int64, orderID, receipt string, amount int64) error
	MarkPaid(ctx context.Context, id int64, paymentID, signature string) error
	Cancel(ctx context.Context, id int64) error
	Delete(ctx context.Context, id int64) error
	ListByUser(ctx context.Context, userID int64, f BookingFilter) ([]domain.Booking, error)
}

// BookingFilter narrows ListByUser. Zero values mean no constraint.
type BookingFilter struct {
	Status   string
	RideType string
	Limit    int
	Offset   int
}

type BookingRepoImpl struct{ pool *pgxpool.Pool }

func NewBookingRepo(pool *pgxpool.Pool) *BookingRepoImpl { return &BookingRepoImpl{pool: pool} }

var _ BookingRepo = (*BookingRepoImpl)(nil)

// Vehicle columns come from a LEFT JOIN on luxury_cars so a booking carries
// its assigned car and driver without a second query.
const bookingCols = `b.id, b.user_id, b.ride_type, b.car_type,
b.passengers, b.luggage,
b.pickup, b.dropoff, b.stops, b.add_ons, b.start_time,
b.duration_hrs, b.total_distance_km, b.is_round_trip, b.return_time,
b.status,
b.payment_method, b.payment_amount, b.payment_status,
b.payment_order_id, b.payment_id, b.payment_signature, b.payment_receipt,
b.vehicle_id, b.created_at, b.updated_at,
COALESCE(c.car_number, ''), COALESCE(c.car_model, ''),
COALESCE(c.driver_name, ''), COALESCE(c.driver_phone, '')`

const bookingFrom = ` FROM bookings b LEFT JOIN luxury_cars c ON c.id = b.vehicle_id `

func scanBooking(row pgx.Row) (*domain.Booking, error) {
	var (
		b          domain.Booking
		durationHrs *int
		distanceKm  *float64
		roundTrip   *bool
		returnTime  *time.Time
	)
	err := row.Scan(
		&b.ID, &b.UserID, &b.RideType, &b.CarType,
		&b.Passengers, &b.Luggage,
		&b.PickUp, &b.DropOff, &b.Stops, &b.AddOns, &b.StartTime,
		&durationHrs, &distanceKm, &roundTrip, &returnTime,
		&b.Status,
		&b.Payment.Method, &b.Payment.Amount, &b.Payment.Status,
		&b.Payment.OrderID, &b.Payment.PaymentID, &b.Payment.Signature, &b.Payment.Receipt,
		&b.VehicleID, &b.CreatedAt, &b.UpdatedAt,
		&b.CarNumber, &b.CarModel, &b.DriverName, &b.DriverPhone,
	)
	if err != nil {
		return nil, err
	}
	if durationHrs != nil {
		b.Hourly = &domain.HourlyDetails{DurationHrs: *durationHrs}
	}
	if distanceKm != nil {
		b.Outstation = &domain.OutstationDetails{
			TotalDistanceKm: *distanceKm,
			ReturnTime:      returnTime,
		}
		if roundTrip != nil {
			b.Outstation.IsRoundTrip = *roundTrip
		}
	}
	return &b, nil
}

func (r *BookingRepoImpl) Create(ctx context.Context, in *domain.Booking) (*domain.Booking, error) {
	const q = `
WITH inserted AS (
  INSERT INTO bookings (
    user_id, ride_type, car_type, passengers, luggage,
    pickup, dropoff, stops, add_ons, start_time,
    duration_hrs, total_distance_km, is_round_trip, return_time,
    status, payment_method, payment_amount, payment_status, vehicle_id
  ) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,'pending',$15,$16,'pending',$17)
  RETURNING *
)
SELECT ` + bookingCols + ` FROM inserted b LEFT JOIN luxury_cars c ON c.id = b.vehicle_id`

	var (
		durationHrs *int
		distanceKm  *float64
		roundTrip   *bool
		returnTime  *time.Time
	)
	if in.Hourly != nil {
		durationHrs = &in.Hourly.DurationHrs
	}
	if in.Outstation != nil {
		distanceKm = &in.Outstation.TotalDistanceKm
		roundTrip = &in.Outstation.IsRoundTrip
		returnTime = in.Outstation.ReturnTime
	}
	stops := in.Stops
	if stops == nil {
		stops = []domain.Waypoint{}
	}

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	row := r.pool.QueryRow(ctx, q,
		in.UserID, in.RideType, in.CarType, in.Passengers, in.Luggage,
		in.PickUp, in.DropOff, stops, in.AddOns, in.StartTime,
		durationHrs, distanceKm, roundTrip, returnTime,
		in.Payment.Method, in.Payment.Amount, in.VehicleID,
	)
	return scanBooking(row)
}

func (r *BookingRepoImpl) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	const q = `SELECT ` + bookingCols + bookingFrom + `WHERE b.id=$1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	b, err := scanBooking(r.pool.QueryRow(ctx, q, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrBookingNotFound
	}
	return b, err
}

// PaymentIDUsedElsewhere is the uniqueness guard against replaying one
// gateway payment across bookings. The booking under verification is
// excluded so a replay of its own settled payment reads as already
// processed, not as a duplicate.
func (r *BookingRepoImpl) PaymentIDUsedElsewhere(ctx context.Context, paymentID string, excludeID int64) (bool, error) {
	const q = `SELECT EXISTS (SELECT 1 FROM bookings WHERE payment_id=$1 AND id <> $2)`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var exists bool
	err := r.pool.QueryRow(ctx, q, paymentID, excludeID).Scan(&exists)
	return exists, err
}

func (r *BookingRepoImpl) SetOrder(ctx context.Context, id int64, orderID, receipt string, amount int64) error {
	const q = `UPDATE bookings
SET payment_order_id=$2, payment_receipt=$3, payment_amount=$4, updated_at=now()
WHERE id=$1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	ct, err := r.pool.Exec(ctx, q, id, orderID, receipt, amount)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return domain.ErrBookingNotFound
	}
	return nil
}

func (r *BookingRepoImpl) MarkPaid(ctx context.Context, id int64, paymentID, signature string) error {
	const q = `UPDATE bookings
SET payment_status='paid', payment_id=$2, payment_signature=$3, status='confirmed', updated_at=now()
WHERE id=$1 AND payment_status='pending'`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	ct, err := r.pool.Exec(ctx, q, id, paymentID, signature)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return domain.ErrAlreadyProcessed
	}
	return nil
}

func (r *BookingRepoImpl) Cancel(ctx context.Context, id int64) error {
	const q = `UPDATE bookings SET status='cancelled', updated_at=now()
WHERE id=$1 AND status NOT IN ('cancelled','completed','ongoing')`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	ct, err := r.pool.Exec(ctx, q, id)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return domain.ErrCannotCancel
	}
	return nil
}

func (r *BookingRepoImpl) Delete(ctx context.Context, id int64) error {
	const q = `DELETE FROM bookings WHERE id=$1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	_, err := r.pool.Exec(ctx, q, id)
	return err
}

func (r *BookingRepoImpl) ListByUser(ctx context.Context, userID int64, f BookingFilter) ([]domain.Booking, error) {
	q := `SELECT ` + bookingCols + bookingFrom + `WHERE b.user_id=$1`
	args := []any{userID}
	if f.Status != "" {
		args = append(args, f.Status)
		q += fmt.Sprintf(" AND b.status=$%d", len(args))
	}
	if f.RideType != "" {
		args = append(args, f.RideType)
		q += fmt.Sprintf(" AND b.ride_type=$%d", len(args))
	}
	q += " ORDER BY b.start_time DESC"
	if f.Limit > 0 {
		args = append(args, f.Limit)
		q += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if f.Offset > 0 {
		args = append(args, f.Offset)
		q += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bs []domain.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bs = append(bs, *b)
	}
	return bs, rows.Err()
}
