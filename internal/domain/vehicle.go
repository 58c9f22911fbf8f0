package domain

import "time"

// LuxuryCar is the exclusive-inventory vehicle claimed by outstation and
// luxury bookings. A car with IsAvailable=false is held by at most one
// active booking.
type LuxuryCar struct {
	ID          int64        `json:"id"`
	CarNumber   string       `json:"car_number"`
	CarModel    string       `json:"car_model"`
	Class       VehicleClass `json:"class"`
	OwnerName   string       `json:"owner_name"`
	OwnerPhone  string       `json:"owner_phone"`
	DriverName  string       `json:"driver_name"`
	DriverPhone string       `json:"driver_phone"`
	IsAvailable bool         `json:"is_available"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// ScheduledRelease is a persisted deadline after which a claimed vehicle is
// flipped back to available by the sweeper.
type ScheduledRelease struct {
	ID        int64     `json:"id"`
	VehicleID int64     `json:"vehicle_id"`
	ReleaseAt time.Time `json:"release_at"`
}
