package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/eleqt/eleqt-rides/internal/domain"
)

type VehicleRepo interface {
	Create(ctx context.Context, car *domain.LuxuryCar) (*domain.LuxuryCar, error)
	GetByID(ctx context.Context, id int64) (*domain.LuxuryCar, error)
	List(ctx context.Context) ([]domain.LuxuryCar, error)
	Update(ctx context.Context, car *domain.LuxuryCar) (*domain.LuxuryCar, error)
	Delete(ctx context.Context, id int64) error

	ClaimAvailable(ctx context.Context, class domain.VehicleClass) (*domain.LuxuryCar, error)
	Release(ctx context.Context, id int64) error
	ScheduleRelease(ctx context.Context, vehicleID int64, releaseAt time.Time) error
	TakeDueReleases(ctx context.Context, now time.Time, limit int) ([]domain.ScheduledRelease, error)
}

type VehicleRepoImpl struct{ pool *pgxpool.Pool }

func NewVehicleRepo(pool *pgxpool.Pool) *VehicleRepoImpl { return &VehicleRepoImpl{pool: pool} }

var _ VehicleRepo = (*VehicleRepoImpl)(nil)

const carCols = `id, car_number, car_model, class, owner_name, owner_phone,
driver_name, driver_phone, is_available, created_at, updated_at`

func scanCar(row pgx.Row) (*domain.LuxuryCar, error) {
	var c domain.LuxuryCar
	err := row.Scan(
		&c.ID, &c.CarNumber, &c.CarModel, &c.Class, &c.OwnerName, &c.OwnerPhone,
		&c.DriverName, &c.DriverPhone, &c.IsAvailable, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *VehicleRepoImpl) Create(ctx context.Context, car *domain.LuxuryCar) (*domain.LuxuryCar, error) {
	const q = `INSERT INTO luxury_cars (
  car_number, car_model, class, owner_name, owner_phone, driver_name, driver_phone, is_available
) VALUES ($1,$2,$3,$4,$5,$6,$7,true)
RETURNING ` + carCols
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	return scanCar(r.pool.QueryRow(ctx, q,
		car.CarNumber, car.CarModel, car.Class,
		car.OwnerName, car.OwnerPhone, car.DriverName, car.DriverPhone,
	))
}

func (r *VehicleRepoImpl) GetByID(ctx context.Context, id int64) (*domain.LuxuryCar, error) {
	const q = `SELECT ` + carCols + ` FROM luxury_cars WHERE id=$1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	c, err := scanCar(r.pool.QueryRow(ctx, q, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrVehicleNotFound
	}
	return c, err
}

func (r *VehicleRepoImpl) List(ctx context.Context) ([]domain.LuxuryCar, error) {
	const q = `SELECT ` + carCols + ` FROM luxury_cars ORDER BY id`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cars []domain.LuxuryCar
	for rows.Next() {
		c, err := scanCar(rows)
		if err != nil {
			return nil, err
		}
		cars = append(cars, *c)
	}
	return cars, rows.Err()
}

func (r *VehicleRepoImpl) Update(ctx context.Context, car *domain.LuxuryCar) (*domain.LuxuryCar, error) {
	const q = `UPDATE luxury_cars
SET car_number=$2, car_model=$3, class=$4, owner_name=$5, owner_phone=$6,
    driver_name=$7, driver_phone=$8, updated_at=now()
WHERE id=$1
RETURNING ` + carCols
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	c, err := scanCar(r.pool.QueryRow(ctx, q,
		car.ID, car.CarNumber, car.CarModel, car.Class,
		car.OwnerName, car.OwnerPhone, car.DriverName, car.DriverPhone,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrVehicleNotFound
	}
	return c, err
}

func (r *VehicleRepoImpl) Delete(ctx context.Context, id int64) error {
	const q = `DELETE FROM luxury_cars WHERE id=$1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	ct, err := r.pool.Exec(ctx, q, id)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return domain.ErrVehicleNotFound
	}
	return nil
}

// ClaimAvailable flips one available car of the class to unavailable and
// returns it. SKIP LOCKED keeps two concurrent claims off the same row, so
// the test-and-set is atomic without explicit transactions.
func (r *VehicleRepoImpl) ClaimAvailable(ctx context.Context, class domain.VehicleClass) (*domain.LuxuryCar, error) {
	const q = `UPDATE luxury_cars
SET is_available=false, updated_at=now()
WHERE id = (
  SELECT id FROM luxury_cars
  WHERE class=$1 AND is_available=true
  ORDER BY id
  LIMIT 1
  FOR UPDATE SKIP LOCKED
)
RETURNING ` + carCols
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	c, err := scanCar(r.pool.QueryRow(ctx, q, class))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNoAvailableVehicle
	}
	return c, err
}

// Release is idempotent: releasing a car that is already available is a
// no-op, not an error.
func (r *VehicleRepoImpl) Release(ctx context.Context, id int64) error {
	const q = `UPDATE luxury_cars SET is_available=true, updated_at=now() WHERE id=$1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	_, err := r.pool.Exec(ctx, q, id)
	return err
}

// ScheduleRelease persists a release deadline so the sweep survives process
// restarts.
func (r *VehicleRepoImpl) ScheduleRelease(ctx context.Context, vehicleID int64, releaseAt time.Time) error {
	const q = `INSERT INTO vehicle_releases (vehicle_id, release_at) VALUES ($1,$2)`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	_, err := r.pool.Exec(ctx, q, vehicleID, releaseAt)
	return err
}

// TakeDueReleases deletes and returns deadlines at or before now. Deleting
// in the same statement means a deadline is handed to exactly one sweep even
// with several instances running.
func (r *VehicleRepoImpl) TakeDueReleases(ctx context.Context, now time.Time, limit int) ([]domain.ScheduledRelease, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	const q = `DELETE FROM vehicle_releases
WHERE id IN (
  SELECT id FROM vehicle_releases
  WHERE release_at <= $1
  ORDER BY release_at
  LIMIT $2
  FOR UPDATE SKIP LOCKED
)
RETURNING id, vehicle_id, release_at`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	rows, err := r.pool.Query(ctx, q, now, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var due []domain.ScheduledRelease
	for rows.Next() {
		var rel domain.ScheduledRelease
		if err := rows.Scan(&rel.ID, &rel.VehicleID, &rel.ReleaseAt); err != nil {
			return nil, err
		}
		due = append(due, rel)
	}
	return due, rows.Err()
}
